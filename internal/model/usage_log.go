package model

import "time"

// UsageLogEntry records one unit of assistant usage. Free-form payload,
// no uniqueness constraints.
type UsageLogEntry struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrganizationID uint      `json:"organization_id" gorm:"index;not null"`
	AccountID      uint      `json:"account_id" gorm:"index;not null"`
	Payload        string    `json:"payload" gorm:"type:jsonb"`
	CreatedAt      time.Time `json:"created_at"`
}

func (UsageLogEntry) TableName() string { return TableUsageLogs }

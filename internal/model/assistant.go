package model

import "time"

// Assistant is an AI-assistant definition owned by an organization.
// (organization_id, name, owner) is unique: an owner cannot have two
// assistants with the same name inside one organization.
type Assistant struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrganizationID uint      `json:"organization_id" gorm:"uniqueIndex:idx_assistant_identity;not null"`
	Name           string    `json:"name" gorm:"type:varchar(255);uniqueIndex:idx_assistant_identity;not null"`
	Owner          string    `json:"owner" gorm:"type:varchar(255);uniqueIndex:idx_assistant_identity;not null"`
	Description    string    `json:"description" gorm:"type:text"`
	SystemPrompt   string    `json:"system_prompt" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Assistant) TableName() string { return TableAssistants }

package model

import "time"

// PromptTemplate is a reusable prompt owned by an account within an
// organization. (organization_id, name, owner_email) is unique.
type PromptTemplate struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrganizationID uint      `json:"organization_id" gorm:"uniqueIndex:idx_template_identity;not null"`
	Name           string    `json:"name" gorm:"type:varchar(255);uniqueIndex:idx_template_identity;not null"`
	OwnerEmail     string    `json:"owner_email" gorm:"type:varchar(255);uniqueIndex:idx_template_identity;not null"`
	Content        string    `json:"content" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (PromptTemplate) TableName() string { return TablePromptTemplates }

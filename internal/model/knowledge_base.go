package model

import "time"

// KnowledgeBaseEntry registers a knowledge base held by the external KB
// service. KBID is assigned by that service and is globally unique; the row
// only records which organization and account own it.
type KnowledgeBaseEntry struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	KBID           string    `json:"kb_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	OrganizationID uint      `json:"organization_id" gorm:"index;not null"`
	OwnerAccountID uint      `json:"owner_account_id" gorm:"index;not null"`
	Shared         bool      `json:"shared" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (KnowledgeBaseEntry) TableName() string { return TableKnowledgeBases }

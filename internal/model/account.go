package model

import (
	"time"

	"gorm.io/gorm"
)

// Account kinds.
const (
	AccountKindLocal   = "local"
	AccountKindLTI     = "lti"
	AccountKindService = "service"
)

// Account represents a user account. Email is unique across the whole
// platform; an account belongs to exactly one organization at a time.
type Account struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	Email          string         `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name           string         `json:"name" gorm:"type:varchar(255)"`
	Kind           string         `json:"kind" gorm:"type:varchar(20);default:'local'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Account) TableName() string { return TableAccounts }

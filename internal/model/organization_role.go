package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values a user can hold within an organization.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// OrganizationRole associates a user with an organization and a role.
// A user holds at most one role per organization.
type OrganizationRole struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"uniqueIndex:idx_org_role_user;not null"`
	UserID         uint           `json:"user_id" gorm:"uniqueIndex:idx_org_role_user;not null"`
	Role           string         `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (OrganizationRole) TableName() string { return TableOrganizationRoles }

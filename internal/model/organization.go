package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Table name constants so queries never assemble identifiers at runtime.
const (
	TableOrganizations     = "organizations"
	TableOrganizationRoles = "organization_roles"
	TableAccounts          = "accounts"
	TableAssistants        = "assistants"
	TablePromptTemplates   = "prompt_templates"
	TableKnowledgeBases    = "knowledge_base_entries"
	TableUsageLogs         = "usage_log_entries"
)

// Organization status values.
const (
	OrgStatusActive   = "active"
	OrgStatusDisabled = "disabled"
)

// OrganizationConfig is the typed form of the per-organization configuration.
// It is serialized to JSON only at the store edge; nothing else in the code
// ever sees it as text.
type OrganizationConfig struct {
	DefaultLanguage  string            `json:"default_language,omitempty"`
	AssistantDefault string            `json:"assistant_default,omitempty"`
	SignupEnabled    bool              `json:"signup_enabled,omitempty"`
	SignupKey        string            `json:"signup_key,omitempty"`
	Features         map[string]bool   `json:"features,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Value implements driver.Valuer so GORM writes the config as jsonb.
func (c OrganizationConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode organization config: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner so GORM reads the jsonb column back into the
// typed struct.
func (c *OrganizationConfig) Scan(value interface{}) error {
	if value == nil {
		*c = OrganizationConfig{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported organization config type %T", value)
	}
	if len(data) == 0 {
		*c = OrganizationConfig{}
		return nil
	}
	return json.Unmarshal(data, c)
}

// Organization represents a tenant, the top-level ownership boundary for
// accounts, assistants, templates, knowledge bases and usage logs.
type Organization struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	Slug      string             `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name      string             `json:"name" gorm:"type:varchar(255);not null"`
	IsSystem  bool               `json:"is_system" gorm:"default:false"`
	Status    string             `json:"status" gorm:"type:varchar(20);default:'active'"`
	Config    OrganizationConfig `json:"config" gorm:"type:jsonb"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	DeletedAt gorm.DeletedAt     `json:"-" gorm:"index"`
}

func (Organization) TableName() string { return TableOrganizations }

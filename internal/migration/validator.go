package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
)

// Resource categories reported by validation and migration.
const (
	CategoryUsers      = "users"
	CategoryRoles      = "roles"
	CategoryAssistants = "assistants"
	CategoryTemplates  = "templates"
	CategoryKBs        = "kbs"
	CategoryUsageLogs  = "usage_logs"
)

// Conflict describes one source-owned item whose (name, owner) identity
// already exists in the target organization.
type Conflict struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Owner  string `json:"owner"`
	Reason string `json:"conflict_reason"`
}

// ValidationResult is the read-only pre-flight report. Expected precondition
// failures are encoded here, never raised.
type ValidationResult struct {
	CanMigrate       bool                  `json:"can_migrate"`
	Error            string                `json:"error,omitempty"`
	Conflicts        map[string][]Conflict `json:"conflicts,omitempty"`
	Resources        map[string]int64      `json:"resources,omitempty"`
	SourceSlug       string                `json:"source_org_slug,omitempty"`
	EstimatedSeconds int                   `json:"estimated_time_seconds,omitempty"`
}

// Validator runs the pre-flight pass for a migration. It never mutates state;
// the only errors it returns are store failures.
type Validator struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewValidator builds a validator bound to the given store handle.
func NewValidator(db *gorm.DB, log *zap.Logger) *Validator {
	return &Validator{db: db, log: log}
}

// Validate checks preconditions, counts source-owned resources per category
// and detects assistant/template collisions against the target organization.
func (v *Validator) Validate(ctx context.Context, sourceID uint, targetSlug string) (*ValidationResult, error) {
	db := v.db.WithContext(ctx)

	source, err := findOrganizationByID(db, sourceID)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return &ValidationResult{CanMigrate: false, Error: nf.Error()}, nil
		}
		return nil, err
	}
	if source.IsSystem {
		e := &InvalidOperationError{Reason: fmt.Sprintf("organization %q is the system organization and cannot be migrated", source.Slug)}
		return &ValidationResult{CanMigrate: false, Error: e.Error()}, nil
	}

	target, err := findOrganizationBySlug(db, targetSlug)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return &ValidationResult{CanMigrate: false, Error: nf.Error()}, nil
		}
		return nil, err
	}
	if target.ID == source.ID {
		e := &InvalidOperationError{Reason: fmt.Sprintf("organization %q cannot be migrated into itself", source.Slug)}
		return &ValidationResult{CanMigrate: false, Error: e.Error()}, nil
	}

	resources, err := countResources(db, source.ID)
	if err != nil {
		return nil, err
	}

	conflicts := map[string][]Conflict{}
	assistantConflicts, err := detectAssistantConflicts(db, source.ID, target.ID, target.Slug)
	if err != nil {
		return nil, err
	}
	conflicts[CategoryAssistants] = assistantConflicts

	templateConflicts, err := detectTemplateConflicts(db, source.ID, target.ID, target.Slug)
	if err != nil {
		return nil, err
	}
	conflicts[CategoryTemplates] = templateConflicts

	var total int64
	for _, n := range resources {
		total += n
	}

	v.log.Info("migration validated",
		zap.String("source_slug", source.Slug),
		zap.String("target_slug", target.Slug),
		zap.Int64("total_resources", total),
		zap.Int("assistant_conflicts", len(assistantConflicts)),
		zap.Int("template_conflicts", len(templateConflicts)))

	return &ValidationResult{
		CanMigrate:       true,
		Conflicts:        conflicts,
		Resources:        resources,
		SourceSlug:       source.Slug,
		EstimatedSeconds: estimateSeconds(total),
	}, nil
}

// estimateSeconds gives a coarse wall-clock estimate from the total row
// count. Floor of one second so an empty organization still reports something.
func estimateSeconds(total int64) int {
	return int(1 + total/100)
}

func findOrganizationByID(db *gorm.DB, id uint) (*model.Organization, error) {
	var org model.Organization
	if err := db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "organization", Key: fmt.Sprintf("%d", id)}
		}
		return nil, storeErr("organization lookup", err)
	}
	return &org, nil
}

func findOrganizationBySlug(db *gorm.DB, slug string) (*model.Organization, error) {
	var org model.Organization
	if err := db.Where("slug = ?", slug).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "organization", Key: slug}
		}
		return nil, storeErr("organization lookup", err)
	}
	return &org, nil
}

// countResources counts every source-owned row per category. Roles are not
// part of the validation count map; they follow accounts one-for-one.
func countResources(db *gorm.DB, orgID uint) (map[string]int64, error) {
	counts := map[string]int64{}
	for category, mdl := range map[string]interface{}{
		CategoryUsers:      &model.Account{},
		CategoryAssistants: &model.Assistant{},
		CategoryTemplates:  &model.PromptTemplate{},
		CategoryKBs:        &model.KnowledgeBaseEntry{},
		CategoryUsageLogs:  &model.UsageLogEntry{},
	} {
		var n int64
		if err := db.Model(mdl).Where("organization_id = ?", orgID).Count(&n).Error; err != nil {
			return nil, storeErr("counting "+category, err)
		}
		counts[category] = n
	}
	return counts, nil
}

func detectAssistantConflicts(db *gorm.DB, sourceID, targetID uint, targetSlug string) ([]Conflict, error) {
	taken, err := assistantIdentities(db, targetID)
	if err != nil {
		return nil, err
	}
	var rows []model.Assistant
	if err := db.Where("organization_id = ?", sourceID).Order("id").Find(&rows).Error; err != nil {
		return nil, storeErr("loading source assistants", err)
	}
	conflicts := []Conflict{}
	for _, a := range rows {
		if _, ok := taken[identityKey(a.Name, a.Owner)]; ok {
			conflicts = append(conflicts, Conflict{
				ID:     a.ID,
				Name:   a.Name,
				Owner:  a.Owner,
				Reason: fmt.Sprintf("assistant %q owned by %s already exists in organization %q", a.Name, a.Owner, targetSlug),
			})
		}
	}
	return conflicts, nil
}

func detectTemplateConflicts(db *gorm.DB, sourceID, targetID uint, targetSlug string) ([]Conflict, error) {
	taken, err := templateIdentities(db, targetID)
	if err != nil {
		return nil, err
	}
	var rows []model.PromptTemplate
	if err := db.Where("organization_id = ?", sourceID).Order("id").Find(&rows).Error; err != nil {
		return nil, storeErr("loading source templates", err)
	}
	conflicts := []Conflict{}
	for _, t := range rows {
		if _, ok := taken[identityKey(t.Name, t.OwnerEmail)]; ok {
			conflicts = append(conflicts, Conflict{
				ID:     t.ID,
				Name:   t.Name,
				Owner:  t.OwnerEmail,
				Reason: fmt.Sprintf("template %q owned by %s already exists in organization %q", t.Name, t.OwnerEmail, targetSlug),
			})
		}
	}
	return conflicts, nil
}

// identityKey builds the map key for a (name, owner) pair. NUL cannot appear
// in either part, so the key is unambiguous.
func identityKey(name, owner string) string {
	return name + "\x00" + owner
}

func assistantIdentities(db *gorm.DB, orgID uint) (map[string]struct{}, error) {
	var rows []model.Assistant
	if err := db.Select("name", "owner").Where("organization_id = ?", orgID).Find(&rows).Error; err != nil {
		return nil, storeErr("loading target assistants", err)
	}
	keys := make(map[string]struct{}, len(rows))
	for _, a := range rows {
		keys[identityKey(a.Name, a.Owner)] = struct{}{}
	}
	return keys, nil
}

func templateIdentities(db *gorm.DB, orgID uint) (map[string]struct{}, error) {
	var rows []model.PromptTemplate
	if err := db.Select("name", "owner_email").Where("organization_id = ?", orgID).Find(&rows).Error; err != nil {
		return nil, storeErr("loading target templates", err)
	}
	keys := make(map[string]struct{}, len(rows))
	for _, t := range rows {
		keys[identityKey(t.Name, t.OwnerEmail)] = struct{}{}
	}
	return keys, nil
}

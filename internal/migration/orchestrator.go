package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
)

// State tracks the lifecycle of one migration run.
type State int

const (
	StateNotStarted State = iota
	StateValidated
	StateInProgress
	StateCommitted
	StateRolledBack
	StateSourceDeleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateValidated:
		return "validated"
	case StateInProgress:
		return "in_progress"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	case StateSourceDeleted:
		return "source_deleted"
	default:
		return "unknown"
	}
}

// Options carries the caller's choices for one migration run.
type Options struct {
	Strategy           ConflictStrategy
	PreserveAdminRoles bool
	DeleteSource       bool
}

// Report summarizes a committed migration.
type Report struct {
	Success           bool             `json:"success"`
	ResourcesMigrated map[string]int64 `json:"resources_migrated"`
	ConflictsResolved map[string]int   `json:"conflicts_resolved"`
	RenamedAssistants []RenamedItem    `json:"renamed_assistants,omitempty"`
	RenamedTemplates  []RenamedItem    `json:"renamed_templates,omitempty"`
	Warnings          []string         `json:"warnings"`
	SourceDeleted     bool             `json:"source_deleted,omitempty"`
}

// Engine sequences the six resource migrators inside one transaction and
// assembles the report. An engine is built per run and holds no global state.
type Engine struct {
	db    *gorm.DB
	log   *zap.Logger
	state State
}

// NewEngine builds an engine bound to the given store handle.
func NewEngine(db *gorm.DB, log *zap.Logger) *Engine {
	return &Engine{db: db, log: log, state: StateNotStarted}
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State { return e.state }

// Migrate moves every resource owned by the source organization into the
// organization identified by targetSlug, atomically. The six categories run
// in a fixed order inside a single transaction; any error rolls everything
// back. With opts.DeleteSource the emptied source row is deleted afterwards
// in a second, independent transaction whose failure does not undo the
// committed migration.
func (e *Engine) Migrate(ctx context.Context, sourceID uint, targetSlug string, opts Options) (*Report, error) {
	if opts.Strategy == "" {
		opts.Strategy = StrategyRename
	}

	report := &Report{
		ResourcesMigrated: map[string]int64{},
		ConflictsResolved: map[string]int{},
		Warnings:          []string{},
	}
	var source *model.Organization

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		source, err = findOrganizationByID(tx, sourceID)
		if err != nil {
			return err
		}
		if source.IsSystem {
			return &InvalidOperationError{Reason: fmt.Sprintf("organization %q is the system organization and cannot be migrated", source.Slug)}
		}
		target, err := findOrganizationBySlug(tx, targetSlug)
		if err != nil {
			return err
		}
		if target.ID == source.ID {
			return &InvalidOperationError{Reason: fmt.Sprintf("organization %q cannot be migrated into itself", source.Slug)}
		}
		if err := e.lockPair(tx, source.ID, target.ID); err != nil {
			return err
		}
		e.state = StateValidated

		e.log.Info("migration started",
			zap.String("source_slug", source.Slug),
			zap.String("target_slug", target.Slug),
			zap.String("strategy", string(opts.Strategy)),
			zap.Bool("preserve_admin_roles", opts.PreserveAdminRoles))
		e.state = StateInProgress

		n, err := migrateAccounts(tx, source.ID, target.ID)
		if err != nil {
			return err
		}
		report.ResourcesMigrated[CategoryUsers] = n

		n, err = migrateRoles(tx, source.ID, target.ID, opts.PreserveAdminRoles)
		if err != nil {
			return err
		}
		report.ResourcesMigrated[CategoryRoles] = n

		moved, renamed, err := migrateAssistants(tx, source, target.ID, opts.Strategy)
		if err != nil {
			return err
		}
		report.ResourcesMigrated[CategoryAssistants] = moved
		report.RenamedAssistants = renamed
		report.ConflictsResolved["assistants_renamed"] = len(renamed)

		moved, renamed, err = migrateTemplates(tx, source, target.ID, opts.Strategy)
		if err != nil {
			return err
		}
		report.ResourcesMigrated[CategoryTemplates] = moved
		report.RenamedTemplates = renamed
		report.ConflictsResolved["templates_renamed"] = len(renamed)

		n, err = migrateKnowledgeBases(tx, source.ID, target.ID)
		if err != nil {
			return err
		}
		report.ResourcesMigrated[CategoryKBs] = n

		n, err = migrateUsageLogs(tx, source.ID, target.ID)
		if err != nil {
			return err
		}
		report.ResourcesMigrated[CategoryUsageLogs] = n

		return nil
	})
	if err != nil {
		e.state = StateRolledBack
		e.log.Warn("migration rolled back", zap.Uint("source_id", sourceID), zap.Error(err))
		return nil, err
	}

	e.state = StateCommitted
	report.Success = true
	e.log.Info("migration committed",
		zap.String("source_slug", source.Slug),
		zap.Any("resources_migrated", report.ResourcesMigrated))

	if opts.DeleteSource {
		if err := e.deleteSource(ctx, source.ID); err != nil {
			// The migration itself stays committed; deletion is best effort.
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("migration committed but source organization %q could not be deleted: %v", source.Slug, err))
			e.log.Warn("source organization deletion failed", zap.String("slug", source.Slug), zap.Error(err))
		} else {
			report.SourceDeleted = true
			e.state = StateSourceDeleted
		}
	}

	return report, nil
}

// deleteSource removes the emptied source organization row in its own
// transaction.
func (e *Engine) deleteSource(ctx context.Context, sourceID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := findOrganizationByID(tx, sourceID)
		if err != nil {
			return err
		}
		if org.IsSystem {
			return &InvalidOperationError{Reason: fmt.Sprintf("organization %q is the system organization and cannot be deleted", org.Slug)}
		}
		if err := tx.Delete(&model.Organization{}, org.ID).Error; err != nil {
			return storeErr("deleting source organization", err)
		}
		return nil
	})
}

// lockPair takes row locks on both organization rows for the duration of the
// transaction so two migrations sharing an organization cannot interleave.
// Locks are acquired in ascending-id order; two runs with the pair swapped
// then cannot deadlock. Only postgres supports FOR UPDATE; sqlite, used in
// tests, serializes writers anyway.
func (e *Engine) lockPair(tx *gorm.DB, a, b uint) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if a > b {
		a, b = b, a
	}
	for _, id := range []uint{a, b} {
		var org model.Organization
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&org, id).Error; err != nil {
			return storeErr("locking organization row", err)
		}
	}
	return nil
}

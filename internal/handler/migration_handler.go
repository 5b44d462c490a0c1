package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lamb-Project/lamb-sub000/internal/migration"
	"github.com/Lamb-Project/lamb-sub000/pkg/logger"
	"github.com/Lamb-Project/lamb-sub000/prometheus"
)

// MigrationHandler exposes the organization migration engine over HTTP. A
// fresh validator/engine is constructed per request from the handler's store
// handle; nothing engine-related lives in package state.
type MigrationHandler struct {
	db *gorm.DB
}

// NewMigrationHandler builds the handler around a store handle.
func NewMigrationHandler(db *gorm.DB) *MigrationHandler {
	return &MigrationHandler{db: db}
}

type validateRequest struct {
	SourceOrganizationID   uint   `json:"source_organization_id"`
	TargetOrganizationSlug string `json:"target_organization_slug"`
}

type migrateRequest struct {
	SourceOrganizationID   uint   `json:"source_organization_id"`
	TargetOrganizationSlug string `json:"target_organization_slug"`
	ConflictStrategy       string `json:"conflict_strategy,omitempty"`
	PreserveAdminRoles     bool   `json:"preserve_admin_roles,omitempty"`
	DeleteSource           bool   `json:"delete_source,omitempty"`
}

// Validate runs the read-only pre-flight pass. Expected precondition
// failures come back as 200 with can_migrate=false; only store failures
// produce a 500.
func (h *MigrationHandler) Validate(c echo.Context) error {
	log := logger.FromContext(c)

	var req validateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse validation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.SourceOrganizationID == 0 || req.TargetOrganizationSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source_organization_id and target_organization_slug are required"})
	}

	defer prometheus.TrackDBOperation("validate_migration")(time.Now())

	validator := migration.NewValidator(h.db, log)
	result, err := validator.Validate(c.Request().Context(), req.SourceOrganizationID, req.TargetOrganizationSlug)
	if err != nil {
		log.Error("Migration validation failed", zap.Error(err))
		prometheus.RecordValidation("error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation failed"})
	}

	if result.CanMigrate {
		prometheus.RecordValidation("ok")
	} else {
		prometheus.RecordValidation("blocked")
	}
	return c.JSON(http.StatusOK, result)
}

// Migrate runs the full migration and returns the report.
func (h *MigrationHandler) Migrate(c echo.Context) error {
	log := logger.FromContext(c)

	var req migrateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse migration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.SourceOrganizationID == 0 || req.TargetOrganizationSlug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source_organization_id and target_organization_slug are required"})
	}

	strategy, err := migration.ParseConflictStrategy(req.ConflictStrategy)
	if err != nil {
		log.Error("Invalid conflict strategy", zap.String("strategy", req.ConflictStrategy))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	engine := migration.NewEngine(h.db, log)
	start := time.Now()
	report, err := engine.Migrate(c.Request().Context(), req.SourceOrganizationID, req.TargetOrganizationSlug, migration.Options{
		Strategy:           strategy,
		PreserveAdminRoles: req.PreserveAdminRoles,
		DeleteSource:       req.DeleteSource,
	})
	prometheus.MigrationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		prometheus.RecordMigration("rolled_back", string(strategy))
		return h.migrationError(c, err)
	}

	prometheus.RecordMigration("committed", string(strategy))
	for category, n := range report.ResourcesMigrated {
		prometheus.RecordResourcesMigrated(category, n)
	}
	prometheus.RecordConflictsResolved("assistants", string(strategy), report.ConflictsResolved["assistants_renamed"])
	prometheus.RecordConflictsResolved("templates", string(strategy), report.ConflictsResolved["templates_renamed"])

	return c.JSON(http.StatusOK, report)
}

// migrationError translates the engine's error taxonomy into HTTP statuses.
// Every branch means the same thing to the caller: no data changed.
func (h *MigrationHandler) migrationError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	var notFound *migration.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": notFound.Error()})
	}

	var invalid *migration.InvalidOperationError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": invalid.Error()})
	}

	var conflict *migration.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": conflict.Error()})
	}

	log.Error("Migration failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "migration failed, no changes were applied"})
}

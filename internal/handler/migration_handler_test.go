package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
	"github.com/Lamb-Project/lamb-sub000/pkg/config"
	"github.com/Lamb-Project/lamb-sub000/pkg/database"
	"github.com/Lamb-Project/lamb-sub000/prometheus"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "test"}})
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedOrgs(t *testing.T, db *gorm.DB) (source, target *model.Organization) {
	t.Helper()
	source = &model.Organization{Slug: "school-a", Name: "School A", Status: model.OrgStatusActive}
	target = &model.Organization{Slug: "school-b", Name: "School B", Status: model.OrgStatusActive}
	require.NoError(t, db.Create(source).Error)
	require.NoError(t, db.Create(target).Error)
	return source, target
}

func doRequest(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestValidateEndpoint(t *testing.T) {
	db := newTestDB(t)
	source, target := seedOrgs(t, db)
	require.NoError(t, db.Create(&model.Assistant{OrganizationID: source.ID, Name: "quiz", Owner: "t@x.edu"}).Error)
	require.NoError(t, db.Create(&model.Assistant{OrganizationID: target.ID, Name: "quiz", Owner: "t@x.edu"}).Error)

	h := NewMigrationHandler(db)
	body := fmt.Sprintf(`{"source_organization_id": %d, "target_organization_slug": "school-b"}`, source.ID)
	rec := doRequest(t, h.Validate, body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		CanMigrate bool                         `json:"can_migrate"`
		Conflicts  map[string][]json.RawMessage `json:"conflicts"`
		Resources  map[string]int64             `json:"resources"`
		SourceSlug string                       `json:"source_org_slug"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.CanMigrate)
	assert.Equal(t, "school-a", resp.SourceSlug)
	assert.Equal(t, int64(1), resp.Resources["assistants"])
	assert.Len(t, resp.Conflicts["assistants"], 1)
}

func TestValidateEndpointMissingFields(t *testing.T) {
	h := NewMigrationHandler(newTestDB(t))
	rec := doRequest(t, h.Validate, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateEndpointBlockedIsStill200(t *testing.T) {
	db := newTestDB(t)
	h := NewMigrationHandler(db)
	rec := doRequest(t, h.Validate, `{"source_organization_id": 42, "target_organization_slug": "nowhere"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		CanMigrate bool   `json:"can_migrate"`
		Error      string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.CanMigrate)
	assert.Contains(t, resp.Error, "not found")
}

func TestMigrateEndpointSuccess(t *testing.T) {
	db := newTestDB(t)
	source, _ := seedOrgs(t, db)
	require.NoError(t, db.Create(&model.Account{OrganizationID: source.ID, Email: "t@x.edu"}).Error)

	h := NewMigrationHandler(db)
	body := fmt.Sprintf(`{"source_organization_id": %d, "target_organization_slug": "school-b"}`, source.ID)
	rec := doRequest(t, h.Migrate, body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success           bool             `json:"success"`
		ResourcesMigrated map[string]int64 `json:"resources_migrated"`
		ConflictsResolved map[string]int   `json:"conflicts_resolved"`
		Warnings          []string         `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.ResourcesMigrated["users"])
	assert.Zero(t, resp.ConflictsResolved["assistants_renamed"])
	assert.Empty(t, resp.Warnings)
}

func TestMigrateEndpointUnknownStrategy(t *testing.T) {
	db := newTestDB(t)
	source, _ := seedOrgs(t, db)

	h := NewMigrationHandler(db)
	body := fmt.Sprintf(`{"source_organization_id": %d, "target_organization_slug": "school-b", "conflict_strategy": "merge"}`, source.ID)
	rec := doRequest(t, h.Migrate, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMigrateEndpointSourceNotFound(t *testing.T) {
	db := newTestDB(t)
	seedOrgs(t, db)

	h := NewMigrationHandler(db)
	rec := doRequest(t, h.Migrate, `{"source_organization_id": 4242, "target_organization_slug": "school-b"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMigrateEndpointSystemSource(t *testing.T) {
	db := newTestDB(t)
	system := &model.Organization{Slug: "lamb", Name: "System", IsSystem: true, Status: model.OrgStatusActive}
	require.NoError(t, db.Create(system).Error)
	seedOrgs(t, db)

	h := NewMigrationHandler(db)
	body := fmt.Sprintf(`{"source_organization_id": %d, "target_organization_slug": "school-b"}`, system.ID)
	rec := doRequest(t, h.Migrate, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMigrateEndpointConflictUnderFail(t *testing.T) {
	db := newTestDB(t)
	source, target := seedOrgs(t, db)
	require.NoError(t, db.Create(&model.Assistant{OrganizationID: source.ID, Name: "quiz", Owner: "t@x.edu"}).Error)
	require.NoError(t, db.Create(&model.Assistant{OrganizationID: target.ID, Name: "quiz", Owner: "t@x.edu"}).Error)

	h := NewMigrationHandler(db)
	body := fmt.Sprintf(`{"source_organization_id": %d, "target_organization_slug": "school-b", "conflict_strategy": "fail"}`, source.ID)
	rec := doRequest(t, h.Migrate, body)

	require.Equal(t, http.StatusConflict, rec.Code)
	// Nothing moved.
	var n int64
	require.NoError(t, db.Model(&model.Assistant{}).Where("organization_id = ?", source.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

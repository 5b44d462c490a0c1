package migration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
	"github.com/Lamb-Project/lamb-sub000/pkg/database"
)

// newPostgresDB boots a throwaway postgres container. Skips the test when
// docker is not reachable so the suite still runs on plain CI boxes.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.Run("postgres", "16", []string{
		"POSTGRES_USER=test",
		"POSTGRES_PASSWORD=test",
		"POSTGRES_DB=testdb",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("host=localhost port=%s user=test password=test dbname=testdb sslmode=disable",
		resource.GetPort("5432/tcp"))

	var db *gorm.DB
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		if openErr != nil {
			return openErr
		}
		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}
		return sqlDB.Ping()
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestPostgresRenameMigration(t *testing.T) {
	db := newPostgresDB(t)

	source := createOrg(t, db, "school-a", false)
	target := createOrg(t, db, "school-b", false)
	acc := createAccount(t, db, source.ID, "t@x.edu")
	createRole(t, db, source.ID, acc.ID, model.RoleOwner)
	createAssistant(t, db, source.ID, "quiz", "t@x.edu")
	createAssistant(t, db, target.ID, "quiz", "t@x.edu")
	createKB(t, db, source.ID, acc.ID, "kb-pg")
	createUsageLog(t, db, source.ID, acc.ID)

	engine := NewEngine(db, zap.NewNop())
	report, err := engine.Migrate(context.Background(), source.ID, "school-b", Options{Strategy: StrategyRename})
	require.NoError(t, err)

	assert.Equal(t, 1, report.ConflictsResolved["assistants_renamed"])
	var names []string
	require.NoError(t, db.Model(&model.Assistant{}).
		Where("organization_id = ?", target.ID).
		Order("name").Pluck("name", &names).Error)
	assert.Equal(t, []string{"quiz", "school-a_quiz"}, names)

	// Role landed, downgraded by default.
	var role model.OrganizationRole
	require.NoError(t, db.Where("organization_id = ? AND user_id = ?", target.ID, acc.ID).First(&role).Error)
	assert.Equal(t, model.RoleMember, role.Role)
}

func TestPostgresFailRollsBack(t *testing.T) {
	db := newPostgresDB(t)

	source := createOrg(t, db, "school-a", false)
	target := createOrg(t, db, "school-b", false)
	seedPopulatedOrg(t, db, source, "src")
	createAssistant(t, db, source.ID, "quiz", "t@x.edu")
	createAssistant(t, db, target.ID, "quiz", "t@x.edu")

	beforeSource := orgSnapshot(t, db, source.ID)
	beforeTarget := orgSnapshot(t, db, target.ID)

	engine := NewEngine(db, zap.NewNop())
	_, err := engine.Migrate(context.Background(), source.ID, "school-b", Options{Strategy: StrategyFail})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))

	assert.Equal(t, beforeSource, orgSnapshot(t, db, source.ID))
	assert.Equal(t, beforeTarget, orgSnapshot(t, db, target.ID))
}

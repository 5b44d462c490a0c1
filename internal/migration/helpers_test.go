package migration

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
	"github.com/Lamb-Project/lamb-sub000/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createOrg(t *testing.T, db *gorm.DB, slug string, system bool) *model.Organization {
	t.Helper()
	org := &model.Organization{
		Slug:     slug,
		Name:     slug,
		IsSystem: system,
		Status:   model.OrgStatusActive,
		Config:   model.OrganizationConfig{DefaultLanguage: "en"},
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func createAccount(t *testing.T, db *gorm.DB, orgID uint, email string) *model.Account {
	t.Helper()
	acc := &model.Account{OrganizationID: orgID, Email: email, Name: email, Kind: model.AccountKindLocal}
	require.NoError(t, db.Create(acc).Error)
	return acc
}

func createRole(t *testing.T, db *gorm.DB, orgID, userID uint, role string) {
	t.Helper()
	require.NoError(t, db.Create(&model.OrganizationRole{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	}).Error)
}

func createAssistant(t *testing.T, db *gorm.DB, orgID uint, name, owner string) *model.Assistant {
	t.Helper()
	a := &model.Assistant{OrganizationID: orgID, Name: name, Owner: owner}
	require.NoError(t, db.Create(a).Error)
	return a
}

func createTemplate(t *testing.T, db *gorm.DB, orgID uint, name, owner string) *model.PromptTemplate {
	t.Helper()
	tpl := &model.PromptTemplate{OrganizationID: orgID, Name: name, OwnerEmail: owner}
	require.NoError(t, db.Create(tpl).Error)
	return tpl
}

func createKB(t *testing.T, db *gorm.DB, orgID, ownerID uint, kbID string) {
	t.Helper()
	require.NoError(t, db.Create(&model.KnowledgeBaseEntry{
		KBID:           kbID,
		OrganizationID: orgID,
		OwnerAccountID: ownerID,
	}).Error)
}

func createUsageLog(t *testing.T, db *gorm.DB, orgID, accountID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.UsageLogEntry{
		OrganizationID: orgID,
		AccountID:      accountID,
		Payload:        `{"tokens":42}`,
	}).Error)
}

// orgSnapshot counts every category owned by one organization, roles included.
func orgSnapshot(t *testing.T, db *gorm.DB, orgID uint) map[string]int64 {
	t.Helper()
	snap := map[string]int64{}
	for category, mdl := range map[string]interface{}{
		CategoryUsers:      &model.Account{},
		CategoryRoles:      &model.OrganizationRole{},
		CategoryAssistants: &model.Assistant{},
		CategoryTemplates:  &model.PromptTemplate{},
		CategoryKBs:        &model.KnowledgeBaseEntry{},
		CategoryUsageLogs:  &model.UsageLogEntry{},
	} {
		var n int64
		require.NoError(t, db.Model(mdl).Where("organization_id = ?", orgID).Count(&n).Error)
		snap[category] = n
	}
	return snap
}

// seedPopulatedOrg fills an organization with a predictable set of resources.
func seedPopulatedOrg(t *testing.T, db *gorm.DB, org *model.Organization, prefix string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		acc := createAccount(t, db, org.ID, fmt.Sprintf("%s%d@x.edu", prefix, i))
		createRole(t, db, org.ID, acc.ID, model.RoleMember)
		createUsageLog(t, db, org.ID, acc.ID)
	}
	createAssistant(t, db, org.ID, prefix+"-assistant", prefix+"0@x.edu")
	createTemplate(t, db, org.ID, prefix+"-template", prefix+"0@x.edu")
	createKB(t, db, org.ID, 1, "kb-"+prefix)
}

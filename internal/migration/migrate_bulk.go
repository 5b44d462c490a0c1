package migration

import (
	"gorm.io/gorm"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
)

// migrateKnowledgeBases reassigns every source-owned knowledge-base registry
// entry. KB ids are globally unique, so this is an unconditional move.
func migrateKnowledgeBases(tx *gorm.DB, sourceID, targetID uint) (int64, error) {
	res := tx.Model(&model.KnowledgeBaseEntry{}).
		Where("organization_id = ?", sourceID).
		Update("organization_id", targetID)
	if res.Error != nil {
		return 0, storeErr("migrating knowledge bases", res.Error)
	}
	return res.RowsAffected, nil
}

// migrateUsageLogs reassigns every source-owned usage log entry.
func migrateUsageLogs(tx *gorm.DB, sourceID, targetID uint) (int64, error) {
	res := tx.Model(&model.UsageLogEntry{}).
		Where("organization_id = ?", sourceID).
		Update("organization_id", targetID)
	if res.Error != nil {
		return 0, storeErr("migrating usage logs", res.Error)
	}
	return res.RowsAffected, nil
}

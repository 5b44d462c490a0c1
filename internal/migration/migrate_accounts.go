package migration

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
)

// migrateAccounts reassigns every source-owned account to the target
// organization. Email is globally unique, so no collision is possible.
func migrateAccounts(tx *gorm.DB, sourceID, targetID uint) (int64, error) {
	res := tx.Model(&model.Account{}).
		Where("organization_id = ?", sourceID).
		Update("organization_id", targetID)
	if res.Error != nil {
		return 0, storeErr("migrating accounts", res.Error)
	}
	return res.RowsAffected, nil
}

// migrateRoles grants each source role in the target organization and removes
// the source row. A user may already hold a role in the target, so the grant
// is an upsert on (organization_id, user_id). Unless preserveAdmin is set,
// owner and admin are downgraded to member.
func migrateRoles(tx *gorm.DB, sourceID, targetID uint, preserveAdmin bool) (int64, error) {
	var roles []model.OrganizationRole
	if err := tx.Where("organization_id = ?", sourceID).Order("id").Find(&roles).Error; err != nil {
		return 0, storeErr("loading source roles", err)
	}

	var processed int64
	for _, r := range roles {
		role := r.Role
		if !preserveAdmin && (role == model.RoleOwner || role == model.RoleAdmin) {
			role = model.RoleMember
		}

		grant := model.OrganizationRole{
			OrganizationID: targetID,
			UserID:         r.UserID,
			Role:           role,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"role": role}),
		}).Create(&grant).Error
		if err != nil {
			return processed, storeErr("granting role in target organization", err)
		}

		if err := tx.Delete(&model.OrganizationRole{}, r.ID).Error; err != nil {
			return processed, storeErr("removing source role", err)
		}
		processed++
	}
	return processed, nil
}

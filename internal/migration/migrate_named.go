package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Lamb-Project/lamb-sub000/internal/model"
)

// RenamedItem records one collision resolved under the rename strategy.
type RenamedItem struct {
	ID      uint   `json:"id"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// composeRename builds the replacement name for a colliding item:
// "{source_slug}_{name}", with a numeric suffix appended if that composed
// name is itself already taken in the target (including names produced
// earlier in the same run).
func composeRename(taken map[string]struct{}, sourceSlug, name, owner string) string {
	candidate := sourceSlug + "_" + name
	if _, ok := taken[identityKey(candidate, owner)]; !ok {
		return candidate
	}
	for i := 2; ; i++ {
		c := fmt.Sprintf("%s_%d", candidate, i)
		if _, ok := taken[identityKey(c, owner)]; !ok {
			return c
		}
	}
}

// migrateAssistants moves every source-owned assistant into the target
// organization, resolving (name, owner) collisions per the strategy.
func migrateAssistants(tx *gorm.DB, source *model.Organization, targetID uint, strategy ConflictStrategy) (int64, []RenamedItem, error) {
	taken, err := assistantIdentities(tx, targetID)
	if err != nil {
		return 0, nil, err
	}
	var rows []model.Assistant
	if err := tx.Where("organization_id = ?", source.ID).Order("id").Find(&rows).Error; err != nil {
		return 0, nil, storeErr("loading source assistants", err)
	}

	var moved int64
	renamed := []RenamedItem{}
	for _, a := range rows {
		name := a.Name
		if _, collides := taken[identityKey(a.Name, a.Owner)]; collides {
			switch strategy {
			case StrategyFail:
				return 0, nil, &ConflictError{Category: "assistant", ItemID: a.ID, Name: a.Name, Owner: a.Owner}
			case StrategySkip:
				continue
			case StrategyRename:
				name = composeRename(taken, source.Slug, a.Name, a.Owner)
				renamed = append(renamed, RenamedItem{ID: a.ID, OldName: a.Name, NewName: name})
			}
		}

		updates := map[string]interface{}{"organization_id": targetID, "name": name}
		if err := tx.Model(&model.Assistant{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
			return moved, renamed, storeErr("moving assistant", err)
		}
		taken[identityKey(name, a.Owner)] = struct{}{}
		moved++
	}
	return moved, renamed, nil
}

// migrateTemplates is the prompt-template counterpart of migrateAssistants.
func migrateTemplates(tx *gorm.DB, source *model.Organization, targetID uint, strategy ConflictStrategy) (int64, []RenamedItem, error) {
	taken, err := templateIdentities(tx, targetID)
	if err != nil {
		return 0, nil, err
	}
	var rows []model.PromptTemplate
	if err := tx.Where("organization_id = ?", source.ID).Order("id").Find(&rows).Error; err != nil {
		return 0, nil, storeErr("loading source templates", err)
	}

	var moved int64
	renamed := []RenamedItem{}
	for _, t := range rows {
		name := t.Name
		if _, collides := taken[identityKey(t.Name, t.OwnerEmail)]; collides {
			switch strategy {
			case StrategyFail:
				return 0, nil, &ConflictError{Category: "template", ItemID: t.ID, Name: t.Name, Owner: t.OwnerEmail}
			case StrategySkip:
				continue
			case StrategyRename:
				name = composeRename(taken, source.Slug, t.Name, t.OwnerEmail)
				renamed = append(renamed, RenamedItem{ID: t.ID, OldName: t.Name, NewName: name})
			}
		}

		updates := map[string]interface{}{"organization_id": targetID, "name": name}
		if err := tx.Model(&model.PromptTemplate{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
			return moved, renamed, storeErr("moving template", err)
		}
		taken[identityKey(name, t.OwnerEmail)] = struct{}{}
		moved++
	}
	return moved, renamed, nil
}

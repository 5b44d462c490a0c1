package migration

import "fmt"

// ConflictStrategy selects how assistant and template name collisions are
// resolved. Categories without a uniqueness constraint never consult it.
type ConflictStrategy string

const (
	// StrategyRename moves the colliding item under the name
	// "{source_slug}_{original_name}".
	StrategyRename ConflictStrategy = "rename"
	// StrategySkip leaves the colliding item behind in the source
	// organization.
	StrategySkip ConflictStrategy = "skip"
	// StrategyFail aborts the entire migration on the first collision.
	StrategyFail ConflictStrategy = "fail"
)

// ParseConflictStrategy maps a request string onto a strategy. The empty
// string selects rename, the default.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch s {
	case "":
		return StrategyRename, nil
	case string(StrategyRename):
		return StrategyRename, nil
	case string(StrategySkip):
		return StrategySkip, nil
	case string(StrategyFail):
		return StrategyFail, nil
	default:
		return "", fmt.Errorf("unknown conflict strategy %q", s)
	}
}

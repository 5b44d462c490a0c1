package migration

import "fmt"

// NotFoundError indicates the source or target organization does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// InvalidOperationError indicates an attempt to migrate from, or delete, the
// system organization.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return e.Reason
}

// ConflictError is raised under the fail strategy when an item's identity
// already exists in the target organization. It aborts the whole migration.
type ConflictError struct {
	Category string
	ItemID   uint
	Name     string
	Owner    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q owned by %s (id=%d) already exists in target organization",
		e.Category, e.Name, e.Owner, e.ItemID)
}

// StoreError wraps a database failure encountered during validation or
// migration.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

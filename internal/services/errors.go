package services

import "fmt"

// ValidationError reports malformed input. No state was changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// InsufficientStockError rejects a stock-affecting operation that would drive
// stock negative. The enclosing operation is aborted; quantities are never
// silently clamped.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ConcurrencyConflictError signals a lost update detected by the version
// check. The caller may reload and retry.
type ConcurrencyConflictError struct {
	Entity string
	ID     uint
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent update on %s %d", e.Entity, e.ID)
}

// PersistenceError wraps a storage failure. The enclosing transaction was
// rolled back; no partial write survives.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

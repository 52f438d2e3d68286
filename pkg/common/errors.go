package common

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared across the loader, store and query engine. Callers
// match them with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrNotFound marks a query target that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks a caller-supplied parameter that violates a
	// stated constraint. Rejected before any store access.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreUnavailable marks a graph store connectivity or backend
	// failure. Fatal to the current batch or query.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrTimeout marks an operation that exceeded its allotted time.
	// Partial results are discarded.
	ErrTimeout = errors.New("operation timed out")
)

// MalformedRecordError describes a single input row that failed
// normalization. It is local to that row; ingestion continues.
type MalformedRecordError struct {
	Kind  string
	Line  int
	Field string
	Cause string
}

func (e *MalformedRecordError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("malformed %s record at line %d: field %q: %s", e.Kind, e.Line, e.Field, e.Cause)
	}
	return fmt.Sprintf("malformed %s record at line %d: missing field %q", e.Kind, e.Line, e.Field)
}

// StoreError wraps a backend failure with the operation that hit it. It
// matches ErrStoreUnavailable, or ErrTimeout when the underlying cause is a
// context deadline.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return []error{ErrTimeout, e.Err}
	}
	return []error{ErrStoreUnavailable, e.Err}
}

// WrapStore attaches operation context to a store failure. Context
// cancellation passes through untouched so callers can tell a caller-side
// cancel from a backend fault.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &StoreError{Op: op, Err: err}
}

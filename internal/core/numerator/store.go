package numerator

import (
	"context"
	"errors"
)

// ErrConflict is returned by CounterStore.UpsertByKey when the stored index no
// longer matches the expected one, or a concurrent writer created the counter
// first. Callers re-read and retry.
var ErrConflict = errors.New("numerator: counter changed concurrently")

// CounterStore persists counters keyed on (name, year, month).
type CounterStore interface {
	// FindActive returns the active counter for key, or nil when none exists.
	FindActive(ctx context.Context, key ScopeKey) (*Counter, error)

	// UpsertByKey inserts c when no active counter exists for its key and
	// updates it in place otherwise. The write only succeeds when the stored
	// index equals expectedIndex. On success c.ID holds the stored identity.
	UpsertByKey(ctx context.Context, c *Counter, expectedIndex int64) error
}

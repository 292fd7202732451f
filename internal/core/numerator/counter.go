// Package numerator provides the domain contracts for per-scope document
// numbering. The PostgreSQL store lives in infrastructure/numerator.
package numerator

import (
	"fmt"
	"time"

	"salesdesk/internal/core/id"
)

// DefaultPadWidth is the zero-padded width of the index part of a number.
const DefaultPadWidth = 5

// State of a counter row. Only active counters participate in allocation.
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

// ScopeKey is the natural key of a counter.
type ScopeKey struct {
	Name  string
	Year  int
	Month int
}

// KeyFor builds the scope key for name at date. The date is taken in UTC.
func KeyFor(name string, date time.Time) ScopeKey {
	d := date.UTC()
	return ScopeKey{Name: name, Year: d.Year(), Month: int(d.Month())}
}

func (k ScopeKey) String() string {
	return fmt.Sprintf("%s/%d/%d", k.Name, k.Year, k.Month)
}

// Counter is the persisted last-issued index for one scope key.
// A zero ID means the counter has not been stored yet.
type Counter struct {
	ID           id.ID     `db:"id"`
	Name         string    `db:"name"`
	Year         int       `db:"year"`
	Month        int       `db:"month"`
	CurrentIndex int64     `db:"current_index"`
	State        State     `db:"state"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// NewCounter returns an unsaved active counter at index 0.
func NewCounter(key ScopeKey) *Counter {
	return &Counter{
		Name:  key.Name,
		Year:  key.Year,
		Month: key.Month,
		State: StateActive,
	}
}

func (c *Counter) Key() ScopeKey {
	return ScopeKey{Name: c.Name, Year: c.Year, Month: c.Month}
}

// Format renders "{name}/{year}/{month}/{index}". The month is not padded;
// the index is zero-padded to padWidth (DefaultPadWidth when <= 0).
func Format(key ScopeKey, index int64, padWidth int) string {
	if padWidth <= 0 {
		padWidth = DefaultPadWidth
	}
	return fmt.Sprintf("%s/%d/%d/%0*d", key.Name, key.Year, key.Month, padWidth, index)
}

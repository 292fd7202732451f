package numerator

import (
	"context"
	"sort"
	"sync"
	"time"

	"salesdesk/internal/core/id"
)

// MemoryStore is an in-process CounterStore with the same compare-and-swap
// semantics as the PostgreSQL store. Used by tests and local tooling.
type MemoryStore struct {
	mu     sync.Mutex
	active map[ScopeKey]*Counter
}

var _ CounterStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{active: make(map[ScopeKey]*Counter)}
}

// Seed stores c as the active counter for its key, replacing any existing one.
// A zero ID is generated.
func (s *MemoryStore) Seed(c Counter) *Counter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	c.State = StateActive
	s.active[c.Key()] = &c
	cp := c
	return &cp
}

func (s *MemoryStore) FindActive(_ context.Context, key ScopeKey) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.active[key]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) UpsertByKey(_ context.Context, c *Counter, expectedIndex int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := c.Key()

	stored, ok := s.active[key]
	if !ok {
		if expectedIndex != 0 {
			return ErrConflict
		}
		row := *c
		if id.IsNil(row.ID) {
			row.ID = id.New()
		}
		row.State = StateActive
		row.CreatedAt = now
		row.UpdatedAt = now
		s.active[key] = &row
		c.ID = row.ID
		return nil
	}

	if stored.CurrentIndex != expectedIndex {
		return ErrConflict
	}
	stored.CurrentIndex = c.CurrentIndex
	stored.UpdatedAt = now
	c.ID = stored.ID
	return nil
}

// Counters returns a snapshot of all active counters ordered by key.
func (s *MemoryStore) Counters() []Counter {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Counter, 0, len(s.active))
	for _, c := range s.active {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().String() < out[j].Key().String()
	})
	return out
}

// Package numerator provides the PostgreSQL counter store behind document
// numbering. It implements core/numerator.CounterStore.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"salesdesk/internal/core/id"
	corenumerator "salesdesk/internal/core/numerator"
	"salesdesk/internal/infrastructure/storage/postgres"
)

const countersTable = "sys_sequence_counters"

var counterCols = []string{
	"id", "name", "year", "month", "current_index", "state", "created_at", "updated_at",
}

// Querier is the part of pgx the store needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps counters in sys_sequence_counters. Uniqueness of the active
// counter per key comes from the partial index ux_sequence_counters_active.
type Store struct {
	querier func(ctx context.Context) Querier
}

var _ corenumerator.CounterStore = (*Store)(nil)

// New returns a store that joins the transaction carried by ctx, if any.
func New(txManager *postgres.TxManager) *Store {
	return &Store{
		querier: func(ctx context.Context) Querier { return txManager.GetQuerier(ctx) },
	}
}

// NewWithQuerier binds the store to a fixed querier.
func NewWithQuerier(q Querier) *Store {
	return &Store{
		querier: func(context.Context) Querier { return q },
	}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func buildFindActive(key corenumerator.ScopeKey) (string, []any, error) {
	return builder().
		Select(counterCols...).
		From(countersTable).
		Where(squirrel.Eq{
			"name":  key.Name,
			"year":  key.Year,
			"month": key.Month,
			"state": corenumerator.StateActive,
		}).
		OrderBy("current_index DESC").
		Limit(1).
		ToSql()
}

func (s *Store) FindActive(ctx context.Context, key corenumerator.ScopeKey) (*corenumerator.Counter, error) {
	sql, args, err := buildFindActive(key)
	if err != nil {
		return nil, fmt.Errorf("build find counter: %w", err)
	}

	var c corenumerator.Counter
	err = s.querier(ctx).QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.Name, &c.Year, &c.Month, &c.CurrentIndex, &c.State, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find counter %s: %w", key, err)
	}
	return &c, nil
}

// buildUpsert inserts the counter or, when an active one already exists for
// the key, moves its index only if it still equals expected. A lost race
// yields no row.
func buildUpsert(c *corenumerator.Counter, newID id.ID, expected int64) (string, []any, error) {
	return builder().
		Insert(countersTable).
		Columns("id", "name", "year", "month", "current_index", "state", "created_at", "updated_at").
		Values(newID, c.Name, c.Year, c.Month, c.CurrentIndex, corenumerator.StateActive,
			squirrel.Expr("NOW()"), squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (name, year, month) WHERE state = 'active'
DO UPDATE SET current_index = EXCLUDED.current_index, updated_at = NOW()
WHERE `+countersTable+`.current_index = ?
RETURNING id`, expected).
		ToSql()
}

func (s *Store) UpsertByKey(ctx context.Context, c *corenumerator.Counter, expectedIndex int64) error {
	newID := c.ID
	if id.IsNil(newID) {
		newID = id.New()
	}

	sql, args, err := buildUpsert(c, newID, expectedIndex)
	if err != nil {
		return fmt.Errorf("build upsert counter: %w", err)
	}

	var storedID id.ID
	err = s.querier(ctx).QueryRow(ctx, sql, args...).Scan(&storedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return corenumerator.ErrConflict
	}
	if _, ok := postgres.IsUniqueViolation(err); ok {
		return fmt.Errorf("%w: %v", corenumerator.ErrConflict, err)
	}
	if err != nil {
		return fmt.Errorf("upsert counter %s: %w", c.Key(), err)
	}

	c.ID = storedID
	c.State = corenumerator.StateActive
	return nil
}

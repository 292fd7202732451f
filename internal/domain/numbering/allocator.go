// Package numbering allocates per-customer, per-month document numbers.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/numerator"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/domain/customer"
	"salesdesk/pkg/logger"
)

const DefaultMaxAttempts = 5

// Target is a record that receives a number.
type Target interface {
	CustomerRef() *customer.Ref
	OccurrenceDate() *time.Time
	SetNumber(number string)
}

type NameResolver interface {
	DisplayName(ctx context.Context, ref customer.Ref) (string, error)
}

type Config struct {
	// MaxAttempts bounds read-increment-write cycles per allocation.
	MaxAttempts int
	PadWidth    int
}

// Allocator issues the next index of a (customer name, year, month) counter.
// Concurrent allocators never hand out the same index: the store write is a
// compare-and-swap and a lost race restarts the cycle.
type Allocator struct {
	store  numerator.CounterStore
	names  NameResolver
	txm    tx.Manager
	cfg    Config
	tracer trace.Tracer
}

// NewAllocator creates an Allocator. When txm is non-nil every attempt runs in
// its own nested transaction, so a failed write inside an outer transaction
// does not poison it.
func NewAllocator(store numerator.CounterStore, names NameResolver, txm tx.Manager, cfg Config) *Allocator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = numerator.DefaultPadWidth
	}
	return &Allocator{
		store:  store,
		names:  names,
		txm:    txm,
		cfg:    cfg,
		tracer: otel.Tracer("salesdesk/numbering"),
	}
}

// Allocate writes the next number onto t and returns it. A target without a
// customer or a date is left untouched and "" is returned with no error.
func (a *Allocator) Allocate(ctx context.Context, t Target) (string, error) {
	ref := t.CustomerRef()
	date := t.OccurrenceDate()
	if ref == nil || date == nil {
		return "", nil
	}

	ctx, span := a.tracer.Start(ctx, "numbering.Allocate",
		trace.WithAttributes(attribute.String("customer.ref", ref.String())))
	defer span.End()

	name, err := a.names.DisplayName(ctx, *ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve customer")
		return "", fmt.Errorf("resolve customer %s: %w", ref, err)
	}

	key := numerator.KeyFor(name, *date)
	index, err := a.Next(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "next index")
		return "", err
	}

	number := numerator.Format(key, index, a.cfg.PadWidth)
	t.SetNumber(number)

	span.SetAttributes(attribute.String("document.number", number))
	logger.Debug(ctx, "number allocated", "key", key.String(), "number", number)
	return number, nil
}

// Next increments the active counter for key, creating it at 1 when absent.
func (a *Allocator) Next(ctx context.Context, key numerator.ScopeKey) (int64, error) {
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		var next int64
		err := a.attempt(ctx, func(ctx context.Context) error {
			var err error
			next, err = a.increment(ctx, key)
			return err
		})
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, numerator.ErrConflict) {
			return 0, err
		}
		logger.Warn(ctx, "counter conflict, retrying", "key", key.String(), "attempt", attempt)
	}

	return 0, apperror.NewConcurrentModification("sequence_counter", key.String()).
		WithDetail("attempts", a.cfg.MaxAttempts).
		WithCause(numerator.ErrConflict)
}

func (a *Allocator) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.txm == nil {
		return fn(ctx)
	}
	return a.txm.RunInTransaction(ctx, fn)
}

func (a *Allocator) increment(ctx context.Context, key numerator.ScopeKey) (int64, error) {
	c, err := a.store.FindActive(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("find counter %s: %w", key, err)
	}
	if c == nil {
		c = numerator.NewCounter(key)
	}

	expected := c.CurrentIndex
	c.CurrentIndex = expected + 1
	if err := a.store.UpsertByKey(ctx, c, expected); err != nil {
		return 0, fmt.Errorf("upsert counter %s: %w", key, err)
	}
	return c.CurrentIndex, nil
}

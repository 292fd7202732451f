package main

import (
	"context"
	"fmt"
	"time"

	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/documents/order"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/pkg/logger"
)

// ScopeRecomputer recomputes all summaries of a customer's month.
type ScopeRecomputer interface {
	RecomputeScope(ctx context.Context, ref customer.Ref, year, month int) (int, error)
}

// Relay is the part of postgres.OutboxRelay the worker drives.
type Relay interface {
	ProcessBatch(ctx context.Context) (int, error)
	MoveToDLQ(ctx context.Context) (int64, error)
}

type KeyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

type WorkerConfig struct {
	PollInterval    time.Duration
	CleanupInterval time.Duration
}

// Worker relays outbox messages and purges expired idempotency keys.
type Worker struct {
	relay Relay
	keys  KeyCleaner
	cfg   WorkerConfig
	log   *logger.Logger
}

func NewWorker(relay Relay, keys KeyCleaner, cfg WorkerConfig, log *logger.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	return &Worker{
		relay: relay,
		keys:  keys,
		cfg:   cfg,
		log:   log.WithComponent("worker"),
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(w.cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	n, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox batch failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Debugw("processed outbox batch", "count", n)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	moved, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("move outbox messages to dlq failed", "error", err)
	} else if moved > 0 {
		w.log.Warnw("moved failed outbox messages to dlq", "count", moved)
	}

	if w.keys == nil {
		return
	}
	purged, err := w.keys.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if purged > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", purged)
	}
}

// SummaryHandler recomputes the summaries touched by an order.saved message.
// Other event types are acknowledged without work.
func SummaryHandler(summaries ScopeRecomputer, log *logger.Logger) postgres.OutboxHandlerFunc {
	return func(ctx context.Context, msg *postgres.OutboxMessage) error {
		if msg.EventType != order.EventSaved {
			log.Debugw("skipping outbox message", "event_type", msg.EventType, "id", msg.ID)
			return nil
		}

		p, err := order.DecodeSaved(msg.Payload)
		if err != nil {
			return err
		}

		n, err := summaries.RecomputeScope(ctx, p.Customer, p.Year, p.Month)
		if err != nil {
			return fmt.Errorf("recompute scope of order %s: %w", p.OrderID, err)
		}
		log.Debugw("summaries recomputed",
			"order_id", p.OrderID,
			"customer", p.Customer.String(),
			"year", p.Year,
			"month", p.Month,
			"updated", n,
		)
		return nil
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/documents/order"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/pkg/logger"
)

type scopeCall struct {
	ref         customer.Ref
	year, month int
}

type fakeRecomputer struct {
	calls []scopeCall
	err   error
}

func (f *fakeRecomputer) RecomputeScope(_ context.Context, ref customer.Ref, year, month int) (int, error) {
	f.calls = append(f.calls, scopeCall{ref: ref, year: year, month: month})
	return len(f.calls), f.err
}

func savedMessage(t *testing.T, p order.SavedPayload) *postgres.OutboxMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return &postgres.OutboxMessage{ID: id.New(), EventType: order.EventSaved, Payload: raw}
}

func TestSummaryHandler_RecomputesScope(t *testing.T) {
	rec := &fakeRecomputer{}
	ref := customer.Ref{Kind: customer.KindAccount, ID: id.New()}
	h := SummaryHandler(rec, logger.NewNop())

	err := h.Handle(context.Background(), savedMessage(t, order.SavedPayload{
		OrderID: id.New(), Customer: ref, Year: 2024, Month: 2,
	}))

	require.NoError(t, err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, scopeCall{ref: ref, year: 2024, month: 2}, rec.calls[0])
}

func TestSummaryHandler_SkipsOtherEvents(t *testing.T) {
	rec := &fakeRecomputer{}
	h := SummaryHandler(rec, logger.NewNop())

	err := h.Handle(context.Background(), &postgres.OutboxMessage{EventType: "order.deleted", Payload: []byte("{")})

	require.NoError(t, err)
	assert.Empty(t, rec.calls)
}

func TestSummaryHandler_Errors(t *testing.T) {
	t.Run("bad payload", func(t *testing.T) {
		rec := &fakeRecomputer{}
		err := SummaryHandler(rec, logger.NewNop()).Handle(context.Background(),
			&postgres.OutboxMessage{EventType: order.EventSaved, Payload: []byte("not json")})
		assert.Error(t, err)
		assert.Empty(t, rec.calls)
	})

	t.Run("recompute fails", func(t *testing.T) {
		boom := errors.New("boom")
		rec := &fakeRecomputer{err: boom}
		err := SummaryHandler(rec, logger.NewNop()).Handle(context.Background(), savedMessage(t, order.SavedPayload{
			OrderID:  id.New(),
			Customer: customer.Ref{Kind: customer.KindContact, ID: id.New()},
			Year:     2024,
			Month:    3,
		}))
		assert.ErrorIs(t, err, boom)
	})
}

type fakeRelay struct {
	mu      sync.Mutex
	batches int
	dlq     int
}

func (f *fakeRelay) ProcessBatch(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	return 1, nil
}

func (f *fakeRelay) MoveToDLQ(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dlq++
	return 0, nil
}

func (f *fakeRelay) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batches, f.dlq
}

type fakeCleaner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 2, nil
}

func (f *fakeCleaner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestWorker_RunPollsUntilCancelled(t *testing.T) {
	relay := &fakeRelay{}
	keys := &fakeCleaner{}
	w := NewWorker(relay, keys, WorkerConfig{
		PollInterval:    5 * time.Millisecond,
		CleanupInterval: 5 * time.Millisecond,
	}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		batches, dlq := relay.counts()
		return batches > 0 && dlq > 0 && keys.count() > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/customer"
)

type countingResolver struct {
	names  map[customer.Ref]string
	calls  int
	err    error
	during func()
}

func (r *countingResolver) DisplayName(_ context.Context, ref customer.Ref) (string, error) {
	r.calls++
	if r.during != nil {
		r.during()
	}
	if r.err != nil {
		return "", r.err
	}
	return r.names[ref], nil
}

func newTestCache(inner NameResolver) *NameCache {
	c := NewNameCache(nil, inner)
	c.setListening(true)
	return c
}

func TestNameCache_BypassedUntilListening(t *testing.T) {
	ref := customer.Ref{Kind: customer.KindAccount, ID: id.New()}
	inner := &countingResolver{names: map[customer.Ref]string{ref: "Acme"}}
	c := NewNameCache(nil, inner)

	for range 3 {
		name, err := c.DisplayName(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, "Acme", name)
	}
	assert.Equal(t, 3, inner.calls)
	assert.Zero(t, c.Stats().Entries)
}

func TestNameCache_CachesWhileListening(t *testing.T) {
	ref := customer.Ref{Kind: customer.KindContact, ID: id.New()}
	inner := &countingResolver{names: map[customer.Ref]string{ref: "Ada Lovelace"}}
	c := newTestCache(inner)

	for range 3 {
		name, err := c.DisplayName(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", name)
	}

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, CacheStats{Entries: 1, Hits: 2, Misses: 1}, c.Stats())
}

func TestNameCache_Invalidate(t *testing.T) {
	acme := customer.Ref{Kind: customer.KindAccount, ID: id.New()}
	ada := customer.Ref{Kind: customer.KindContact, ID: id.New()}
	inner := &countingResolver{names: map[customer.Ref]string{acme: "Acme", ada: "Ada"}}
	c := newTestCache(inner)
	ctx := context.Background()

	_, _ = c.DisplayName(ctx, acme)
	_, _ = c.DisplayName(ctx, ada)
	require.Equal(t, 2, c.Stats().Entries)

	inner.names[acme] = "Acme Corp"
	c.Invalidate("account:" + acme.ID.String())
	assert.Equal(t, 1, c.Stats().Entries)

	name, err := c.DisplayName(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", name)

	c.Invalidate("garbage")
	assert.Zero(t, c.Stats().Entries)
}

func TestNameCache_ErrorsNotCached(t *testing.T) {
	ref := customer.Ref{Kind: customer.KindAccount, ID: id.New()}
	boom := errors.New("boom")
	inner := &countingResolver{err: boom}
	c := newTestCache(inner)

	_, err := c.DisplayName(context.Background(), ref)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Stats().Entries)
}

func TestNameCache_InvalidationDuringLookupSkipsStore(t *testing.T) {
	ref := customer.Ref{Kind: customer.KindAccount, ID: id.New()}
	inner := &countingResolver{names: map[customer.Ref]string{ref: "Old Name"}}
	c := newTestCache(inner)
	inner.during = func() { c.Invalidate("account:" + ref.ID.String()) }

	name, err := c.DisplayName(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "Old Name", name)
	assert.Zero(t, c.Stats().Entries)
}

func TestNameCache_StopClearsEntries(t *testing.T) {
	ref := customer.Ref{Kind: customer.KindAccount, ID: id.New()}
	c := newTestCache(&countingResolver{names: map[customer.Ref]string{ref: "Acme"}})
	_, _ = c.DisplayName(context.Background(), ref)

	c.setListening(false)
	assert.Zero(t, c.Stats().Entries)
}

func TestParseRef(t *testing.T) {
	refID := id.New()
	tests := []struct {
		payload string
		want    customer.Ref
		ok      bool
	}{
		{"account:" + refID.String(), customer.Ref{Kind: customer.KindAccount, ID: refID}, true},
		{" contact:" + refID.String() + " ", customer.Ref{Kind: customer.KindContact, ID: refID}, true},
		{"vendor:" + refID.String(), customer.Ref{}, false},
		{"account:not-a-uuid", customer.Ref{}, false},
		{"", customer.Ref{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, ok := parseRef(tt.payload)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

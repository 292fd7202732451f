// Package cache provides caching infrastructure with PostgreSQL LISTEN/NOTIFY support.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/customer"
	"salesdesk/pkg/logger"
)

// ChannelCustomerChanged carries "kind:id" of an updated account or contact.
// Triggers on cat_accounts and cat_contacts notify it on commit.
const ChannelCustomerChanged = "customer_changed"

type NameResolver interface {
	DisplayName(ctx context.Context, ref customer.Ref) (string, error)
}

// NameCache caches customer display names in front of a NameResolver.
// Entries are dropped when the customer row changes. Until Start succeeds
// every lookup goes to the inner resolver.
type NameCache struct {
	pool  *pgxpool.Pool
	inner NameResolver

	mu    sync.RWMutex
	names map[customer.Ref]string
	// gen moves on every invalidation; a lookup stores its result only if
	// gen did not move while it was reading.
	gen  uint64
	hits uint64
	miss uint64

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
	listening   bool
}

func NewNameCache(pool *pgxpool.Pool, inner NameResolver) *NameCache {
	return &NameCache{
		pool:  pool,
		inner: inner,
		names: make(map[customer.Ref]string),
	}
}

// Start begins listening for invalidations in the background.
func (c *NameCache) Start(ctx context.Context) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "name cache started")
}

// Stop gracefully stops the listener.
func (c *NameCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	c.setListening(false)
	logger.Info(context.Background(), "name cache stopped")
}

// DisplayName implements numbering.NameResolver.
func (c *NameCache) DisplayName(ctx context.Context, ref customer.Ref) (string, error) {
	c.mu.RLock()
	name, ok := c.names[ref]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return name, nil
	}

	name, err := c.inner.DisplayName(ctx, ref)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.miss++
	if c.listening && c.gen == gen {
		c.names[ref] = name
	}
	c.mu.Unlock()
	return name, nil
}

// Invalidate drops one entry. An empty or malformed payload drops everything.
func (c *NameCache) Invalidate(payload string) {
	ref, ok := parseRef(payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if !ok {
		c.names = make(map[customer.Ref]string)
		return
	}
	delete(c.names, ref)
}

func parseRef(payload string) (customer.Ref, bool) {
	kind, raw, found := strings.Cut(strings.TrimSpace(payload), ":")
	if !found || !customer.Kind(kind).Valid() {
		return customer.Ref{}, false
	}
	refID, err := id.Parse(raw)
	if err != nil {
		return customer.Ref{}, false
	}
	return customer.Ref{Kind: customer.Kind(kind), ID: refID}, true
}

// setListening toggles caching. Either transition clears the map: entries
// cached while no listener was attached may have missed an invalidation.
func (c *NameCache) setListening(on bool) {
	c.mu.Lock()
	c.listening = on
	c.gen++
	c.names = make(map[customer.Ref]string)
	c.mu.Unlock()
}

func (c *NameCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Acquire dedicated connection for LISTEN
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			c.sleep(time.Second)
			continue
		}

		if _, err = conn.Exec(c.ctx, "LISTEN "+ChannelCustomerChanged); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			c.sleep(time.Second)
			continue
		}

		c.setListening(true)
		logger.Info(c.ctx, "listening for customer_changed notifications")

		c.waitForNotifications(conn)
		c.setListening(false)
		conn.Release()
	}
}

func (c *NameCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				// Timeout is expected, continue listening
				continue
			}
			logger.Warn(c.ctx, "lost LISTEN connection", "error", err)
			return
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)
		c.Invalidate(notification.Payload)
	}
}

func (c *NameCache) sleep(d time.Duration) {
	select {
	case <-c.ctx.Done():
	case <-time.After(d):
	}
}

type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

func (c *NameCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.names), Hits: c.hits, Misses: c.miss}
}

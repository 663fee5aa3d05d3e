package openf1

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
)

// DefaultTTL is how long a successful response stays fresh.
const DefaultTTL = 5 * time.Minute

// Store is an optional second-level cache for response bodies.
type Store interface {
	Load(ctx context.Context, key string) (body []byte, fetchedAt time.Time, ok bool, err error)
	Save(ctx context.Context, key, endpoint string, body []byte, fetchedAt time.Time) error
}

// Cache memoizes successful responses of an inner Getter for a fixed TTL.
// Concurrent misses for the same key share a single upstream request.
// Failed requests are never stored.
type Cache struct {
	inner   Getter
	ttl     time.Duration
	clock   clockwork.Clock
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock swaps the time source, for tests.
func WithClock(clock clockwork.Clock) CacheOption {
	return func(c *Cache) { c.clock = clock }
}

// WithStore enables the second-level cache.
func WithStore(s Store) CacheOption {
	return func(c *Cache) { c.store = s }
}

// WithLogger sets the cache logger.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// NewCache wraps inner with a TTL cache.
func NewCache(inner Getter, opts ...CacheOption) *Cache {
	c := &Cache{
		inner:   inner,
		ttl:     DefaultTTL,
		clock:   clockwork.NewRealClock(),
		logger:  observability.Discard(),
		metrics: observability.NewMetricsForTesting(),
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns a fresh cached body or fetches it. Waiters on a shared request
// return early with ctx.Err() when their own context ends; the shared request
// itself finishes and populates the cache.
func (c *Cache) Get(ctx context.Context, endpoint string, params Params) ([]byte, error) {
	key := Key(endpoint, params)
	if body, ok := c.lookup(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return body, nil
	}

	leader := false
	ch := c.group.DoChan(key, func() (any, error) {
		leader = true
		return c.fill(context.WithoutCancel(ctx), key, endpoint, params)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if !leader {
			c.metrics.CacheLookups.WithLabelValues("coalesced").Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// fill runs once per key among concurrent callers.
func (c *Cache) fill(ctx context.Context, key, endpoint string, params Params) ([]byte, error) {
	if body, ok := c.lookup(key); ok {
		return body, nil
	}

	if c.store != nil {
		body, fetchedAt, ok, err := c.store.Load(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("disk cache read failed", "key", key, "error", err)
		case ok && c.fresh(fetchedAt):
			c.metrics.CacheLookups.WithLabelValues("disk_hit").Inc()
			c.put(key, body, fetchedAt)
			return body, nil
		}
	}

	c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	body, err := c.inner.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	c.put(key, body, now)
	if c.store != nil {
		if err := c.store.Save(ctx, key, endpoint, body, now); err != nil {
			c.logger.Warn("disk cache write failed", "key", key, "error", err)
		}
	}
	return body, nil
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.fresh(e.fetchedAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.body, true
}

func (c *Cache) put(key string, body []byte, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{body: body, fetchedAt: fetchedAt}
}

func (c *Cache) fresh(fetchedAt time.Time) bool {
	return c.clock.Since(fetchedAt) < c.ttl
}

// Len returns the number of entries held in memory, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every in-memory entry so the next call refetches.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

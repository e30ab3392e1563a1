package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultFlushInterval is used when a flush interval is not configured.
const DefaultFlushInterval = time.Hour

// ScheduledCache clears the whole wrapped cache once more than the flush
// interval has elapsed since the last clear. Staleness is checked lazily on
// access; there is no background timer.
type ScheduledCache struct {
	delegate  Cache
	mu        sync.Mutex
	interval  time.Duration
	lastClear time.Time
}

// NewScheduledCache wraps delegate with interval-based flushing.
func NewScheduledCache(delegate Cache) *ScheduledCache {
	return &ScheduledCache{
		delegate:  delegate,
		interval:  DefaultFlushInterval,
		lastClear: time.Now(),
	}
}

// SetClearInterval adjusts the flush interval.
func (c *ScheduledCache) SetClearInterval(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = interval
}

// ID returns the wrapped cache identifier.
func (c *ScheduledCache) ID() string {
	return c.delegate.ID()
}

// Put flushes the cache when stale, then delegates.
func (c *ScheduledCache) Put(ctx context.Context, key Key, value any) error {
	if err := c.clearWhenStale(ctx); err != nil {
		return err
	}
	return c.delegate.Put(ctx, key, value)
}

// Get flushes the cache when stale, then delegates. A flush on this path
// turns the lookup into a miss.
func (c *ScheduledCache) Get(ctx context.Context, key Key) (any, error) {
	if err := c.clearWhenStale(ctx); err != nil {
		return nil, err
	}
	return c.delegate.Get(ctx, key)
}

// Remove flushes the cache when stale, then delegates.
func (c *ScheduledCache) Remove(ctx context.Context, key Key) error {
	if err := c.clearWhenStale(ctx); err != nil {
		return err
	}
	return c.delegate.Remove(ctx, key)
}

// Clear flushes the wrapped cache and resets the staleness clock.
func (c *ScheduledCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.lastClear = time.Now()
	c.mu.Unlock()
	return c.delegate.Clear(ctx)
}

// Size flushes the cache when stale, then reports the wrapped cache size.
func (c *ScheduledCache) Size() int {
	_ = c.clearWhenStale(context.Background())
	return c.delegate.Size()
}

func (c *ScheduledCache) clearWhenStale(ctx context.Context) error {
	c.mu.Lock()
	stale := time.Since(c.lastClear) > c.interval
	if stale {
		c.lastClear = time.Now()
	}
	c.mu.Unlock()

	if stale {
		return c.delegate.Clear(ctx)
	}
	return nil
}

package cache

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// LoggingCache records request/hit counters for the wrapped chain and logs
// the running hit ratio at debug level.
type LoggingCache struct {
	delegate Cache
	logger   *zap.Logger
	requests atomic.Int64
	hits     atomic.Int64
}

// NewLoggingCache wraps delegate with hit-ratio logging.
func NewLoggingCache(delegate Cache, logger *zap.Logger) *LoggingCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingCache{delegate: delegate, logger: logger}
}

// ID returns the wrapped cache identifier.
func (c *LoggingCache) ID() string {
	return c.delegate.ID()
}

// Put delegates to the wrapped cache.
func (c *LoggingCache) Put(ctx context.Context, key Key, value any) error {
	return c.delegate.Put(ctx, key, value)
}

// Get delegates and accounts the lookup.
func (c *LoggingCache) Get(ctx context.Context, key Key) (any, error) {
	requests := c.requests.Add(1)
	value, err := c.delegate.Get(ctx, key)
	hits := c.hits.Load()
	if err == nil {
		hits = c.hits.Add(1)
	}
	c.logger.Debug("cache lookup",
		zap.String("cache", c.ID()),
		zap.Bool("hit", err == nil),
		zap.Float64("hit_ratio", float64(hits)/float64(requests)),
	)
	return value, err
}

// Remove delegates to the wrapped cache.
func (c *LoggingCache) Remove(ctx context.Context, key Key) error {
	return c.delegate.Remove(ctx, key)
}

// Clear delegates to the wrapped cache.
func (c *LoggingCache) Clear(ctx context.Context) error {
	return c.delegate.Clear(ctx)
}

// Size returns the wrapped cache size.
func (c *LoggingCache) Size() int {
	return c.delegate.Size()
}

// HitRatio reports the observed hit ratio since construction.
func (c *LoggingCache) HitRatio() float64 {
	requests := c.requests.Load()
	if requests == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(requests)
}

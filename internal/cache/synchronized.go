package cache

import (
	"context"
	"sync"
)

// SynchronizedCache serializes all operations on the wrapped chain behind a
// single mutex. The builder applies it as the outermost data decorator so
// the inner eviction bookkeeping never sees interleaved operations.
type SynchronizedCache struct {
	delegate Cache
	mu       sync.Mutex
}

// NewSynchronizedCache wraps delegate with whole-cache mutual exclusion.
func NewSynchronizedCache(delegate Cache) *SynchronizedCache {
	return &SynchronizedCache{delegate: delegate}
}

// ID returns the wrapped cache identifier.
func (c *SynchronizedCache) ID() string {
	return c.delegate.ID()
}

// Put delegates under the cache mutex.
func (c *SynchronizedCache) Put(ctx context.Context, key Key, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Put(ctx, key, value)
}

// Get delegates under the cache mutex.
func (c *SynchronizedCache) Get(ctx context.Context, key Key) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Get(ctx, key)
}

// Remove delegates under the cache mutex.
func (c *SynchronizedCache) Remove(ctx context.Context, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Remove(ctx, key)
}

// Clear delegates under the cache mutex.
func (c *SynchronizedCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Clear(ctx)
}

// Size delegates under the cache mutex.
func (c *SynchronizedCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegate.Size()
}

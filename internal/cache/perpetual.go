package cache

import (
	"context"
	"sync"
)

// PerpetualCache is the unbounded in-memory base cache every decorator chain
// bottoms out on. Entries live until removed or cleared.
type PerpetualCache struct {
	id   string
	mu   sync.RWMutex
	data map[Key]any
}

// NewPerpetualCache creates a base cache identified by id.
func NewPerpetualCache(id string) *PerpetualCache {
	return &PerpetualCache{
		id:   id,
		data: make(map[Key]any),
	}
}

// ID returns the cache identifier.
func (c *PerpetualCache) ID() string {
	return c.id
}

// Put stores a value under key.
func (c *PerpetualCache) Put(ctx context.Context, key Key, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

// Get retrieves the value for key.
func (c *PerpetualCache) Get(ctx context.Context, key Key) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	return value, nil
}

// Remove deletes the entry for key.
func (c *PerpetualCache) Remove(ctx context.Context, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Clear removes all entries.
func (c *PerpetualCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[Key]any)
	return nil
}

// Size returns the number of stored entries.
func (c *PerpetualCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

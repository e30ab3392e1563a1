package cache

import (
	"container/list"
	"context"
	"sync"
)

// FIFOCache is an eviction decorator bounded by entry count. When a Put would
// exceed the bound, the oldest inserted key is removed from the wrapped cache
// before the new entry is delegated. Access order is irrelevant.
type FIFOCache struct {
	delegate Cache
	mu       sync.Mutex
	size     int
	keys     *list.List // front = oldest inserted
	index    map[Key]*list.Element
}

// NewFIFOCache wraps delegate with FIFO eviction at the default bound.
func NewFIFOCache(delegate Cache) *FIFOCache {
	return &FIFOCache{
		delegate: delegate,
		size:     DefaultEvictionSize,
		keys:     list.New(),
		index:    make(map[Key]*list.Element),
	}
}

// SetSize adjusts the entry bound.
func (c *FIFOCache) SetSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = size
}

// ID returns the wrapped cache identifier.
func (c *FIFOCache) ID() string {
	return c.delegate.ID()
}

// Put stores a value, evicting the oldest inserted entry if the bound would
// be exceeded. Re-putting a known key does not refresh its insertion slot.
func (c *FIFOCache) Put(ctx context.Context, key Key, value any) error {
	c.mu.Lock()
	if _, ok := c.index[key]; !ok {
		c.index[key] = c.keys.PushBack(key)
	}
	var evicted *Key
	if c.keys.Len() > c.size {
		oldest := c.keys.Front()
		c.keys.Remove(oldest)
		k := oldest.Value.(Key)
		delete(c.index, k)
		evicted = &k
	}
	c.mu.Unlock()

	if evicted != nil {
		if err := c.delegate.Remove(ctx, *evicted); err != nil {
			return err
		}
	}
	return c.delegate.Put(ctx, key, value)
}

// Get delegates to the wrapped cache.
func (c *FIFOCache) Get(ctx context.Context, key Key) (any, error) {
	return c.delegate.Get(ctx, key)
}

// Remove deletes the entry and its insertion record.
func (c *FIFOCache) Remove(ctx context.Context, key Key) error {
	c.mu.Lock()
	if elem, ok := c.index[key]; ok {
		c.keys.Remove(elem)
		delete(c.index, key)
	}
	c.mu.Unlock()
	return c.delegate.Remove(ctx, key)
}

// Clear empties the wrapped cache and the insertion queue.
func (c *FIFOCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.keys.Init()
	c.index = make(map[Key]*list.Element)
	c.mu.Unlock()
	return c.delegate.Clear(ctx)
}

// Size returns the wrapped cache size.
func (c *FIFOCache) Size() int {
	return c.delegate.Size()
}

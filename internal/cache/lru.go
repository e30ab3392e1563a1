package cache

import (
	"container/list"
	"context"
	"sync"
)

// DefaultEvictionSize is the entry bound used when a size is not configured.
const DefaultEvictionSize = 1024

// LRUCache is an eviction decorator bounded by entry count. When a Put would
// exceed the bound, the least recently accessed key is removed from the
// wrapped cache before the new entry is delegated.
type LRUCache struct {
	delegate Cache
	mu       sync.Mutex
	size     int
	order    *list.List // front = most recently used
	index    map[Key]*list.Element
}

// NewLRUCache wraps delegate with LRU eviction at the default bound.
func NewLRUCache(delegate Cache) *LRUCache {
	return &LRUCache{
		delegate: delegate,
		size:     DefaultEvictionSize,
		order:    list.New(),
		index:    make(map[Key]*list.Element),
	}
}

// SetSize adjusts the entry bound.
func (c *LRUCache) SetSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = size
}

// ID returns the wrapped cache identifier.
func (c *LRUCache) ID() string {
	return c.delegate.ID()
}

// Put stores a value, evicting the least recently used entry if the bound
// would be exceeded.
func (c *LRUCache) Put(ctx context.Context, key Key, value any) error {
	c.mu.Lock()
	if elem, ok := c.index[key]; ok {
		c.order.MoveToFront(elem)
	} else {
		c.index[key] = c.order.PushFront(key)
	}
	var evicted *Key
	if c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
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

// Get retrieves a value and refreshes its recency.
func (c *LRUCache) Get(ctx context.Context, key Key) (any, error) {
	c.mu.Lock()
	if elem, ok := c.index[key]; ok {
		c.order.MoveToFront(elem)
	}
	c.mu.Unlock()
	return c.delegate.Get(ctx, key)
}

// Remove deletes the entry and its recency record.
func (c *LRUCache) Remove(ctx context.Context, key Key) error {
	c.mu.Lock()
	if elem, ok := c.index[key]; ok {
		c.order.Remove(elem)
		delete(c.index, key)
	}
	c.mu.Unlock()
	return c.delegate.Remove(ctx, key)
}

// Clear empties the wrapped cache and the recency list.
func (c *LRUCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.order.Init()
	c.index = make(map[Key]*list.Element)
	c.mu.Unlock()
	return c.delegate.Clear(ctx)
}

// Size returns the wrapped cache size.
func (c *LRUCache) Size() int {
	return c.delegate.Size()
}

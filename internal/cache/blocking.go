package cache

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// BlockingCache serializes concurrent misses per key. Get acquires a per-key
// lock before delegating; on a hit the lock is released immediately, on a
// miss the caller keeps it until it either Puts the recomputed value or
// Removes the key to abort. Remove therefore releases the lock rather than
// removing data. Only one caller recomputes an absent key while its peers
// wait for the result instead of hitting the database.
type BlockingCache struct {
	delegate Cache
	locks    *xsync.MapOf[Key, chan struct{}]
	timeout  time.Duration
}

// NewBlockingCache wraps delegate with per-key miss serialization. A zero
// timeout blocks indefinitely (subject to context cancellation).
func NewBlockingCache(delegate Cache) *BlockingCache {
	return &BlockingCache{
		delegate: delegate,
		locks:    xsync.NewMapOf[Key, chan struct{}](),
	}
}

// SetTimeout bounds the wait for a contended key lock.
func (c *BlockingCache) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Timeout returns the configured lock wait bound.
func (c *BlockingCache) Timeout() time.Duration {
	return c.timeout
}

// ID returns the wrapped cache identifier.
func (c *BlockingCache) ID() string {
	return c.delegate.ID()
}

// Put stores the recomputed value and releases the key lock held since the
// miss that triggered the recomputation.
func (c *BlockingCache) Put(ctx context.Context, key Key, value any) error {
	defer c.releaseLock(key)
	return c.delegate.Put(ctx, key, value)
}

// Get acquires the key lock, then delegates. Hits release the lock; misses
// retain it so that concurrent callers block until Put or Remove.
func (c *BlockingCache) Get(ctx context.Context, key Key) (any, error) {
	if err := c.acquireLock(ctx, key); err != nil {
		return nil, err
	}
	value, err := c.delegate.Get(ctx, key)
	if err == nil {
		c.releaseLock(key)
	}
	return value, err
}

// Remove releases the key lock. Despite its name it does not delegate: it
// exists so an aborting caller can unblock its peers after a failed
// recomputation.
func (c *BlockingCache) Remove(ctx context.Context, key Key) error {
	c.releaseLock(key)
	return nil
}

// Clear delegates to the wrapped cache.
func (c *BlockingCache) Clear(ctx context.Context) error {
	return c.delegate.Clear(ctx)
}

// Size returns the wrapped cache size.
func (c *BlockingCache) Size() int {
	return c.delegate.Size()
}

// lockForKey returns the lock channel shared by all callers of key, creating
// it lazily. The channel acts as a binary semaphore of capacity one.
func (c *BlockingCache) lockForKey(key Key) chan struct{} {
	lock, _ := c.locks.LoadOrCompute(key, func() chan struct{} {
		return make(chan struct{}, 1)
	})
	return lock
}

func (c *BlockingCache) acquireLock(ctx context.Context, key Key) error {
	lock := c.lockForKey(key)
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		select {
		case lock <- struct{}{}:
			return nil
		case <-timer.C:
			return ErrLockTimeout{Key: key, Timeout: c.timeout}
		case <-ctx.Done():
			return ErrLockTimeout{Key: key, Timeout: c.timeout}
		}
	}
	select {
	case lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *BlockingCache) releaseLock(key Key) {
	lock, ok := c.locks.Load(key)
	if !ok {
		return
	}
	select {
	case <-lock:
	default:
	}
}

// Package cache provides the second-level query cache: a plain in-memory
// base cache plus a chain of composable decorators (eviction, blocking,
// scheduled flush, serialization, logging). One cache instance is shared by
// all statements of a mapper namespace.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache defines the contract shared by the base cache and every decorator.
// Implementations wrap each other, each holding its successor in the chain.
type Cache interface {
	// ID returns the cache identifier, conventionally the owning namespace.
	ID() string

	// Put stores a value under key.
	Put(ctx context.Context, key Key, value any) error

	// Get retrieves the value for key. A miss is reported as ErrCacheMiss.
	Get(ctx context.Context, key Key) (any, error)

	// Remove deletes the entry for key. The blocking decorator repurposes
	// this call to release the key lock held by an aborting caller.
	Remove(ctx context.Context, key Key) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Size returns the number of stored entries.
	Size() int
}

// ErrCacheMiss is returned when a key is not found in the cache
type ErrCacheMiss struct {
	Key Key
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key.String()
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	_, ok := err.(ErrCacheMiss)
	return ok
}

// ErrLockTimeout is returned by the blocking decorator when the per-key lock
// could not be acquired within the configured timeout. It is retryable: the
// caller should treat it as a miss and fall through to the data source.
type ErrLockTimeout struct {
	Key     Key
	Timeout time.Duration
}

func (e ErrLockTimeout) Error() string {
	return fmt.Sprintf("could not acquire lock for key %s within %s", e.Key, e.Timeout)
}

// IsLockTimeout checks if an error is a blocking-cache lock timeout
func IsLockTimeout(err error) bool {
	_, ok := err.(ErrLockTimeout)
	return ok
}

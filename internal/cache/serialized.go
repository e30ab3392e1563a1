package cache

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// SerializedCache gives read-write semantics: every Get returns a fresh copy
// of the stored value, produced by a msgpack round-trip, so callers can
// mutate what they read without corrupting the cached entry. Values must be
// msgpack-serializable.
type SerializedCache struct {
	delegate Cache
}

// NewSerializedCache wraps delegate with copy-on-read semantics.
func NewSerializedCache(delegate Cache) *SerializedCache {
	return &SerializedCache{delegate: delegate}
}

// ID returns the wrapped cache identifier.
func (c *SerializedCache) ID() string {
	return c.delegate.ID()
}

// Put verifies the value is serializable and delegates.
func (c *SerializedCache) Put(ctx context.Context, key Key, value any) error {
	if value != nil {
		if _, err := msgpack.Marshal(value); err != nil {
			return fmt.Errorf("cache %s: value for key %s is not serializable: %w", c.ID(), key, err)
		}
	}
	return c.delegate.Put(ctx, key, value)
}

// Get retrieves the stored value and returns an independent copy of it.
func (c *SerializedCache) Get(ctx context.Context, key Key) (any, error) {
	value, err := c.delegate.Get(ctx, key)
	if err != nil || value == nil {
		return value, err
	}
	copied, err := deepCopy(value)
	if err != nil {
		return nil, fmt.Errorf("cache %s: deserializing value for key %s: %w", c.ID(), key, err)
	}
	return copied, nil
}

// Remove delegates to the wrapped cache.
func (c *SerializedCache) Remove(ctx context.Context, key Key) error {
	return c.delegate.Remove(ctx, key)
}

// Clear delegates to the wrapped cache.
func (c *SerializedCache) Clear(ctx context.Context) error {
	return c.delegate.Clear(ctx)
}

// Size returns the wrapped cache size.
func (c *SerializedCache) Size() int {
	return c.delegate.Size()
}

// deepCopy round-trips value through msgpack into a new instance of the same
// concrete type.
func deepCopy(value any) (any, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, err
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		out := reflect.New(t.Elem())
		if err := msgpack.Unmarshal(data, out.Interface()); err != nil {
			return nil, err
		}
		return out.Interface(), nil
	}
	out := reflect.New(t)
	if err := msgpack.Unmarshal(data, out.Interface()); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}

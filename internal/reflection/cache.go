package reflection

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

// metadataEntry memoizes the outcome of one metadata resolution, including a
// failed one, so a conflicted type fails identically on every lookup.
type metadataEntry struct {
	meta *ClassMetadata
	err  error
}

// MetadataCache memoizes ClassMetadata per type. Concurrent first lookups of
// the same type converge to a single cached entry; a duplicate computation
// during the race is harmless.
type MetadataCache struct {
	entries *xsync.MapOf[reflect.Type, metadataEntry]
}

// NewMetadataCache creates an empty metadata cache.
func NewMetadataCache() *MetadataCache {
	return &MetadataCache{
		entries: xsync.NewMapOf[reflect.Type, metadataEntry](),
	}
}

// MetadataFor returns the memoized metadata for t, computing it on first
// access. Pointer types resolve to their element type.
func (c *MetadataCache) MetadataFor(t reflect.Type) (*ClassMetadata, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	entry, _ := c.entries.LoadOrCompute(t, func() metadataEntry {
		meta, err := NewClassMetadata(t)
		return metadataEntry{meta: meta, err: err}
	})
	return entry.meta, entry.err
}

// Clear drops all memoized metadata. Unused in normal operation; it exists
// for dynamic reloading scenarios.
func (c *MetadataCache) Clear() {
	c.entries.Clear()
}

// defaultCache is the process-wide metadata cache.
var defaultCache = NewMetadataCache()

// MetadataFor resolves metadata for t through the process-wide cache.
func MetadataFor(t reflect.Type) (*ClassMetadata, error) {
	return defaultCache.MetadataFor(t)
}

// MetadataOf resolves metadata for the type parameter through the
// process-wide cache.
func MetadataOf[T any]() (*ClassMetadata, error) {
	return defaultCache.MetadataFor(reflect.TypeOf((*T)(nil)).Elem())
}

// ClearCache drops the process-wide cache.
func ClearCache() {
	defaultCache.Clear()
}

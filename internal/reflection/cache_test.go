package reflection

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataCache_Memoizes(t *testing.T) {
	c := NewMetadataCache()

	first, err := c.MetadataFor(reflect.TypeOf(user{}))
	require.NoError(t, err)
	second, err := c.MetadataFor(reflect.TypeOf(user{}))
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestMetadataCache_PointerAndValueShareEntry(t *testing.T) {
	c := NewMetadataCache()

	byValue, err := c.MetadataFor(reflect.TypeOf(user{}))
	require.NoError(t, err)
	byPointer, err := c.MetadataFor(reflect.TypeOf(&user{}))
	require.NoError(t, err)

	assert.Same(t, byValue, byPointer)
}

func TestMetadataCache_MemoizesErrors(t *testing.T) {
	c := NewMetadataCache()

	_, first := c.MetadataFor(reflect.TypeOf(conflicted{}))
	require.Error(t, first)
	_, second := c.MetadataFor(reflect.TypeOf(conflicted{}))
	require.Error(t, second)

	assert.Equal(t, first, second, "a conflicted type fails identically on every lookup")
	assert.True(t, IsReflectionError(second))
}

func TestMetadataCache_ConcurrentLookups(t *testing.T) {
	c := NewMetadataCache()

	var wg sync.WaitGroup
	results := make([]*ClassMetadata, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.MetadataFor(reflect.TypeOf(user{}))
		}(i)
	}
	wg.Wait()

	for i, meta := range results {
		require.NoError(t, errs[i])
		if i > 0 {
			assert.Same(t, results[0], meta, "concurrent lookups converge to one entry")
		}
	}
}

func TestMetadataCache_Clear(t *testing.T) {
	c := NewMetadataCache()

	before, err := c.MetadataFor(reflect.TypeOf(user{}))
	require.NoError(t, err)
	c.Clear()
	after, err := c.MetadataFor(reflect.TypeOf(user{}))
	require.NoError(t, err)

	assert.NotSame(t, before, after)
}

func TestMetadataOf_Generic(t *testing.T) {
	meta, err := MetadataOf[user]()
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(user{}), meta.Type())

	viaPointer, err := MetadataOf[*user]()
	require.NoError(t, err)
	assert.Same(t, meta, viaPointer)
}

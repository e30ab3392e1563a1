package reflection

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultObjectFactory_Create(t *testing.T) {
	f := NewObjectFactory()

	t.Run("struct returns pointer", func(t *testing.T) {
		instance, err := f.Create(reflect.TypeOf(user{}))
		require.NoError(t, err)
		_, ok := instance.(*user)
		assert.True(t, ok)
	})

	t.Run("pointer resolves to elem", func(t *testing.T) {
		instance, err := f.Create(reflect.TypeOf(&user{}))
		require.NoError(t, err)
		_, ok := instance.(*user)
		assert.True(t, ok)
	})

	t.Run("map", func(t *testing.T) {
		instance, err := f.Create(reflect.TypeOf(map[string]int{}))
		require.NoError(t, err)
		m, ok := instance.(map[string]int)
		require.True(t, ok)
		assert.NotNil(t, m)
	})

	t.Run("slice", func(t *testing.T) {
		instance, err := f.Create(reflect.TypeOf([]string{}))
		require.NoError(t, err)
		s, ok := instance.([]string)
		require.True(t, ok)
		assert.Len(t, s, 0)
	})

	t.Run("interface defaults to row map", func(t *testing.T) {
		anyType := reflect.TypeOf((*any)(nil)).Elem()
		instance, err := f.Create(anyType)
		require.NoError(t, err)
		_, ok := instance.(map[string]any)
		assert.True(t, ok)
	})

	t.Run("scalar", func(t *testing.T) {
		instance, err := f.Create(reflect.TypeOf(0))
		require.NoError(t, err)
		assert.Equal(t, 0, instance)
	})

	t.Run("nil type", func(t *testing.T) {
		_, err := f.Create(nil)
		assert.True(t, IsReflectionError(err))
	})
}

package registry

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entity struct {
	ID int
}

func TestTypeAliases_Builtins(t *testing.T) {
	a := NewTypeAliases()

	tests := []struct {
		alias string
		want  reflect.Type
	}{
		{"string", reflect.TypeOf("")},
		{"int64", reflect.TypeOf(int64(0))},
		{"bool", reflect.TypeOf(false)},
		{"bytes", reflect.TypeOf([]byte(nil))},
		{"time", reflect.TypeOf(time.Time{})},
		{"map", reflect.TypeOf(map[string]any(nil))},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			got, err := a.Resolve(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeAliases_CaseInsensitive(t *testing.T) {
	a := NewTypeAliases()
	require.NoError(t, a.Register("User", reflect.TypeOf(entity{})))

	got, err := a.Resolve("USER")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(entity{}), got)
	assert.True(t, a.Has("user"))
}

func TestTypeAliases_ConflictingRegistration(t *testing.T) {
	a := NewTypeAliases()
	require.NoError(t, a.Register("User", reflect.TypeOf(entity{})))

	// Same name and type is idempotent.
	assert.NoError(t, a.Register("user", reflect.TypeOf(entity{})))

	// Same name, different type is a hard error.
	assert.Error(t, a.Register("User", reflect.TypeOf("")))
}

func TestTypeAliases_RegisterFor(t *testing.T) {
	a := NewTypeAliases()
	require.NoError(t, RegisterFor[entity](a, "Entity"))

	got, err := a.Resolve("entity")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(entity{}), got)
}

func TestTypeAliases_Unknown(t *testing.T) {
	a := NewTypeAliases()
	_, err := a.Resolve("nonexistent")
	assert.Error(t, err)

	assert.Error(t, a.Register("", reflect.TypeOf("")))
}

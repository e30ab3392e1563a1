package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyParams struct {
	ID   int
	Name string
}

func TestStatementKey_ValueEquality(t *testing.T) {
	a := StatementKey("app.UserMapper.findById", []any{42, "active"}, 0, 10, "default")
	b := StatementKey("app.UserMapper.findById", []any{42, "active"}, 0, 10, "default")

	assert.Equal(t, a, b)
	assert.True(t, a == b, "keys must be usable directly as map keys")
}

func TestStatementKey_Discriminators(t *testing.T) {
	base := StatementKey("app.UserMapper.findById", []any{42}, 0, 10, "default")

	tests := []struct {
		name  string
		other Key
	}{
		{"statement id", StatementKey("app.UserMapper.findAll", []any{42}, 0, 10, "default")},
		{"parameter value", StatementKey("app.UserMapper.findById", []any{43}, 0, 10, "default")},
		{"offset", StatementKey("app.UserMapper.findById", []any{42}, 5, 10, "default")},
		{"limit", StatementKey("app.UserMapper.findById", []any{42}, 0, 20, "default")},
		{"environment", StatementKey("app.UserMapper.findById", []any{42}, 0, 10, "staging")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.other)
		})
	}
}

func TestKeyBuilder_PointerDereference(t *testing.T) {
	n := 42
	byValue := NewKeyBuilder().Update(42).Build()
	byPointer := NewKeyBuilder().Update(&n).Build()

	assert.Equal(t, byValue, byPointer)
}

func TestKeyBuilder_NilParts(t *testing.T) {
	var p *int
	a := NewKeyBuilder().Update(nil).Build()
	b := NewKeyBuilder().Update(p).Build()

	assert.Equal(t, a, b)
}

func TestKeyBuilder_MapOrderIndependent(t *testing.T) {
	// Map iteration order must not leak into the key.
	m := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}
	first := NewKeyBuilder().Update(m).Build()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, NewKeyBuilder().Update(m).Build())
	}
}

func TestKeyBuilder_StructParams(t *testing.T) {
	a := NewKeyBuilder().Update(keyParams{ID: 1, Name: "x"}).Build()
	b := NewKeyBuilder().Update(keyParams{ID: 1, Name: "x"}).Build()
	c := NewKeyBuilder().Update(keyParams{ID: 2, Name: "x"}).Build()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestKeyBuilder_SliceVsNilSlice(t *testing.T) {
	var nilSlice []int
	a := NewKeyBuilder().Update(nilSlice).Build()
	b := NewKeyBuilder().Update([]int{}).Build()

	assert.NotEqual(t, a, b)
}

func TestKey_String(t *testing.T) {
	k := NewKeyBuilder().Update("stmt").Update(1).Build()
	require.NotEmpty(t, k.String())
	assert.Contains(t, k.String(), "stmt")
}

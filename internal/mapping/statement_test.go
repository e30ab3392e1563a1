package mapping

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementBuilder_Defaults(t *testing.T) {
	source := NewStaticSQLSource("SELECT * FROM users WHERE id = ?", nil)
	stmt, err := NewStatementBuilder("app.UserMapper.findById", source, CommandSelect).Build()
	require.NoError(t, err)

	assert.Equal(t, StatementPrepared, stmt.StatementType)
	assert.IsType(t, NoKeyGenerator{}, stmt.KeyGenerator)
	assert.Equal(t, time.Duration(0), stmt.Timeout)
	assert.Nil(t, stmt.FetchSize)
}

func TestStatementBuilder_Validation(t *testing.T) {
	source := NewStaticSQLSource("SELECT 1", nil)

	tests := []struct {
		name    string
		builder *StatementBuilder
	}{
		{"missing id", NewStatementBuilder("", source, CommandSelect)},
		{"missing source", NewStatementBuilder("id", nil, CommandSelect)},
		{"missing command", NewStatementBuilder("id", source, CommandUnknown)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			assert.Error(t, err)
		})
	}
}

func TestMappedStatement_Namespace(t *testing.T) {
	source := NewStaticSQLSource("SELECT 1", nil)

	stmt, err := NewStatementBuilder("app.UserMapper.findById", source, CommandSelect).Build()
	require.NoError(t, err)
	assert.Equal(t, "app.UserMapper", stmt.Namespace())

	bare, err := NewStatementBuilder("findById", source, CommandSelect).Build()
	require.NoError(t, err)
	assert.Equal(t, "", bare.Namespace())
}

func TestMappedStatement_BoundSQL(t *testing.T) {
	mapped := []*ParameterMapping{
		NewParameterMappingBuilder("ID", reflect.TypeOf(0)).Build(),
	}

	t.Run("source mappings win", func(t *testing.T) {
		source := NewStaticSQLSource("SELECT 1", mapped)
		stmt, err := NewStatementBuilder("s", source, CommandSelect).Build()
		require.NoError(t, err)

		bound, err := stmt.BoundSQL(42)
		require.NoError(t, err)
		assert.Equal(t, "SELECT 1", bound.SQL)
		assert.Equal(t, mapped, bound.ParameterMappings)
		assert.Equal(t, 42, bound.ParameterObject)
	})

	t.Run("parameter map substitutes when source has none", func(t *testing.T) {
		source := NewStaticSQLSource("SELECT 1", nil)
		pm, err := NewParameterMap("pm", reflect.TypeOf(0), mapped)
		require.NoError(t, err)

		stmt, err := NewStatementBuilder("s", source, CommandSelect).ParameterMap(pm).Build()
		require.NoError(t, err)

		bound, err := stmt.BoundSQL(nil)
		require.NoError(t, err)
		assert.Equal(t, mapped, bound.ParameterMappings)
	})
}

func TestStatementBuilder_NestedResultMapsPropagate(t *testing.T) {
	nested := NewResultMappingBuilder("Orders", "", nil).
		NestedResultMap("app.OrderMapper.orderMap").Build()
	rm, err := NewResultMapBuilder("rm", reflect.TypeOf(userRow{}), []*ResultMapping{nested}).Build()
	require.NoError(t, err)

	source := NewStaticSQLSource("SELECT 1", nil)
	stmt, err := NewStatementBuilder("s", source, CommandSelect).
		ResultMaps([]*ResultMap{rm}).
		Build()
	require.NoError(t, err)

	assert.True(t, stmt.HasNestedResultMaps)
}

func TestParameterMap_RequiresID(t *testing.T) {
	_, err := NewParameterMap("", nil, nil)
	assert.Error(t, err)
}

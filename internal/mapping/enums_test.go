package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandType(t *testing.T) {
	tests := []struct {
		input string
		want  SQLCommandType
	}{
		{"SELECT", CommandSelect},
		{"select", CommandSelect},
		{" Insert ", CommandInsert},
		{"UPDATE", CommandUpdate},
		{"delete", CommandDelete},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommandType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCommandType("MERGE")
	assert.Error(t, err)
	_, err = ParseCommandType("")
	assert.Error(t, err)
}

func TestParseStatementType(t *testing.T) {
	got, err := ParseStatementType("")
	require.NoError(t, err)
	assert.Equal(t, StatementPrepared, got, "empty defaults to PREPARED")

	got, err = ParseStatementType("callable")
	require.NoError(t, err)
	assert.Equal(t, StatementCallable, got)

	got, err = ParseStatementType("STATEMENT")
	require.NoError(t, err)
	assert.Equal(t, StatementStatement, got)

	_, err = ParseStatementType("bogus")
	assert.Error(t, err)
}

func TestParseParameterMode(t *testing.T) {
	got, err := ParseParameterMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeIn, got)

	got, err = ParseParameterMode("OUT")
	require.NoError(t, err)
	assert.Equal(t, ModeOut, got)

	got, err = ParseParameterMode("inout")
	require.NoError(t, err)
	assert.Equal(t, ModeInOut, got)

	_, err = ParseParameterMode("sideways")
	assert.Error(t, err)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "SELECT", CommandSelect.String())
	assert.Equal(t, "UNKNOWN", CommandUnknown.String())
	assert.Equal(t, "PREPARED", StatementPrepared.String())
	assert.Equal(t, "SCROLL_SENSITIVE", ResultSetScrollSensitive.String())
	assert.Equal(t, "INOUT", ModeInOut.String())
	assert.Equal(t, "SELECT_AFTER", KeyGenSelectAfter.String())
	assert.Equal(t, "NONE", KeyGenNone.String())
}

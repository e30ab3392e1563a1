// Package mapping defines the immutable descriptor types the registry
// catalogs: mapped statements, result maps, parameter maps and their
// supporting enums and narrow external interfaces.
package mapping

import (
	"fmt"
	"strings"
)

// SQLCommandType classifies a mapped statement.
type SQLCommandType int

const (
	CommandUnknown SQLCommandType = iota
	CommandSelect
	CommandInsert
	CommandUpdate
	CommandDelete
)

// String returns the command name in declaration form.
func (t SQLCommandType) String() string {
	switch t {
	case CommandSelect:
		return "SELECT"
	case CommandInsert:
		return "INSERT"
	case CommandUpdate:
		return "UPDATE"
	case CommandDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ParseCommandType resolves a declaration attribute into a command type.
func ParseCommandType(s string) (SQLCommandType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SELECT":
		return CommandSelect, nil
	case "INSERT":
		return CommandInsert, nil
	case "UPDATE":
		return CommandUpdate, nil
	case "DELETE":
		return CommandDelete, nil
	default:
		return CommandUnknown, fmt.Errorf("unknown SQL command type %q", s)
	}
}

// StatementType selects how the statement is prepared by the executor.
type StatementType int

const (
	StatementStatement StatementType = iota
	StatementPrepared
	StatementCallable
)

// String returns the statement type name.
func (t StatementType) String() string {
	switch t {
	case StatementCallable:
		return "CALLABLE"
	case StatementStatement:
		return "STATEMENT"
	default:
		return "PREPARED"
	}
}

// ParseStatementType resolves a declaration attribute; empty defaults to
// PREPARED.
func ParseStatementType(s string) (StatementType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "PREPARED":
		return StatementPrepared, nil
	case "STATEMENT":
		return StatementStatement, nil
	case "CALLABLE":
		return StatementCallable, nil
	default:
		return StatementPrepared, fmt.Errorf("unknown statement type %q", s)
	}
}

// ResultSetType selects the executor's result-set handling mode.
type ResultSetType int

const (
	ResultSetDefault ResultSetType = iota
	ResultSetForwardOnly
	ResultSetScrollInsensitive
	ResultSetScrollSensitive
)

// String returns the result-set type name.
func (t ResultSetType) String() string {
	switch t {
	case ResultSetForwardOnly:
		return "FORWARD_ONLY"
	case ResultSetScrollInsensitive:
		return "SCROLL_INSENSITIVE"
	case ResultSetScrollSensitive:
		return "SCROLL_SENSITIVE"
	default:
		return "DEFAULT"
	}
}

// ParameterMode declares the direction of a parameter mapping.
type ParameterMode int

const (
	ModeIn ParameterMode = iota
	ModeOut
	ModeInOut
)

// String returns the mode name.
func (m ParameterMode) String() string {
	switch m {
	case ModeOut:
		return "OUT"
	case ModeInOut:
		return "INOUT"
	default:
		return "IN"
	}
}

// ParseParameterMode resolves a declaration attribute; empty defaults to IN.
func ParseParameterMode(s string) (ParameterMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "IN":
		return ModeIn, nil
	case "OUT":
		return ModeOut, nil
	case "INOUT":
		return ModeInOut, nil
	default:
		return ModeIn, fmt.Errorf("unknown parameter mode %q", s)
	}
}

// KeyGeneratorType selects the key-generation strategy for insert/update
// statements. The generator implementations themselves are supplied by the
// execution layer.
type KeyGeneratorType int

const (
	KeyGenNone KeyGeneratorType = iota
	KeyGenJDBC
	KeyGenSelectBefore
	KeyGenSelectAfter
)

// String returns the strategy name.
func (t KeyGeneratorType) String() string {
	switch t {
	case KeyGenJDBC:
		return "JDBC"
	case KeyGenSelectBefore:
		return "SELECT_BEFORE"
	case KeyGenSelectAfter:
		return "SELECT_AFTER"
	default:
		return "NONE"
	}
}

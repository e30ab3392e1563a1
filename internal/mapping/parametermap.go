package mapping

import (
	"fmt"
	"reflect"
)

// ParameterMapping binds one parameter property: its resolved type, JDBC
// type, direction, and for cursor outputs the result map that shapes the
// returned rows.
type ParameterMapping struct {
	Property     string
	JavaType     reflect.Type
	JDBCType     string
	Mode         ParameterMode
	ResultMapID  string
	NumericScale *int
}

// ParameterMappingBuilder assembles an immutable ParameterMapping.
type ParameterMappingBuilder struct {
	mapping *ParameterMapping
}

// NewParameterMappingBuilder starts a mapping for property with its resolved
// type.
func NewParameterMappingBuilder(property string, javaType reflect.Type) *ParameterMappingBuilder {
	return &ParameterMappingBuilder{mapping: &ParameterMapping{
		Property: property,
		JavaType: javaType,
		Mode:     ModeIn,
	}}
}

// JDBCType sets the declared JDBC type name.
func (b *ParameterMappingBuilder) JDBCType(jdbcType string) *ParameterMappingBuilder {
	b.mapping.JDBCType = jdbcType
	return b
}

// Mode sets the parameter direction.
func (b *ParameterMappingBuilder) Mode(mode ParameterMode) *ParameterMappingBuilder {
	b.mapping.Mode = mode
	return b
}

// ResultMapID references the result map shaping a cursor output.
func (b *ParameterMappingBuilder) ResultMapID(id string) *ParameterMappingBuilder {
	b.mapping.ResultMapID = id
	return b
}

// NumericScale sets the scale for numeric OUT parameters.
func (b *ParameterMappingBuilder) NumericScale(scale int) *ParameterMappingBuilder {
	b.mapping.NumericScale = &scale
	return b
}

// Build returns the finished mapping.
func (b *ParameterMappingBuilder) Build() *ParameterMapping {
	return b.mapping
}

// ParameterMap describes the ordered parameter bindings for a statement.
// Immutable once built.
type ParameterMap struct {
	ID                string
	Type              reflect.Type
	ParameterMappings []*ParameterMapping
}

// NewParameterMap creates a parameter map.
func NewParameterMap(id string, targetType reflect.Type, mappings []*ParameterMapping) (*ParameterMap, error) {
	if id == "" {
		return nil, fmt.Errorf("parameter map requires an id")
	}
	return &ParameterMap{
		ID:                id,
		Type:              targetType,
		ParameterMappings: mappings,
	}, nil
}

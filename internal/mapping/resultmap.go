package mapping

import (
	"fmt"
	"reflect"
)

// ResultFlag marks the role of a result mapping.
type ResultFlag uint8

const (
	// FlagID marks a mapping that participates in row identity.
	FlagID ResultFlag = 1 << iota
	// FlagConstructor marks a constructor-bound mapping.
	FlagConstructor
)

// Has reports whether flag is set.
func (f ResultFlag) Has(flag ResultFlag) bool {
	return f&flag != 0
}

// ResultMapping is a single property↔column binding rule, possibly nested
// (association/collection via nested select or nested result map) or
// constructor-bound.
type ResultMapping struct {
	Property          string
	Column            string
	JavaType          reflect.Type
	JDBCType          string
	NestedSelectID    string
	NestedResultMapID string
	NotNullColumns    map[string]struct{}
	ColumnPrefix      string
	Flags             ResultFlag
	Composites        []*ResultMapping
	ResultSet         string
	ForeignColumn     string
	Lazy              bool
}

// SameBinding reports whether two mappings bind the same property/column
// pair, the identity used when merging inherited mappings.
func (m *ResultMapping) SameBinding(other *ResultMapping) bool {
	return m.Property == other.Property && m.Column == other.Column
}

// ResultMappingBuilder assembles an immutable ResultMapping.
type ResultMappingBuilder struct {
	mapping *ResultMapping
}

// NewResultMappingBuilder starts a mapping for property↔column with the
// resolved property type.
func NewResultMappingBuilder(property, column string, javaType reflect.Type) *ResultMappingBuilder {
	return &ResultMappingBuilder{mapping: &ResultMapping{
		Property: property,
		Column:   column,
		JavaType: javaType,
	}}
}

// JDBCType sets the declared JDBC type name.
func (b *ResultMappingBuilder) JDBCType(jdbcType string) *ResultMappingBuilder {
	b.mapping.JDBCType = jdbcType
	return b
}

// NestedSelect references the statement executed to load this property.
func (b *ResultMappingBuilder) NestedSelect(id string) *ResultMappingBuilder {
	b.mapping.NestedSelectID = id
	return b
}

// NestedResultMap references the result map applied to this property.
func (b *ResultMappingBuilder) NestedResultMap(id string) *ResultMappingBuilder {
	b.mapping.NestedResultMapID = id
	return b
}

// NotNullColumns sets the columns that must be non-null before the nested
// object is created.
func (b *ResultMappingBuilder) NotNullColumns(columns map[string]struct{}) *ResultMappingBuilder {
	b.mapping.NotNullColumns = columns
	return b
}

// ColumnPrefix sets the prefix applied to nested column references.
func (b *ResultMappingBuilder) ColumnPrefix(prefix string) *ResultMappingBuilder {
	b.mapping.ColumnPrefix = prefix
	return b
}

// Flags sets the role flags.
func (b *ResultMappingBuilder) Flags(flags ResultFlag) *ResultMappingBuilder {
	b.mapping.Flags = flags
	return b
}

// Composites sets the composite column sub-mappings.
func (b *ResultMappingBuilder) Composites(composites []*ResultMapping) *ResultMappingBuilder {
	b.mapping.Composites = composites
	return b
}

// ResultSet names the result set this mapping consumes.
func (b *ResultMappingBuilder) ResultSet(resultSet string) *ResultMappingBuilder {
	b.mapping.ResultSet = resultSet
	return b
}

// ForeignColumn sets the column joining to a multi-result-set mapping.
func (b *ResultMappingBuilder) ForeignColumn(column string) *ResultMappingBuilder {
	b.mapping.ForeignColumn = column
	return b
}

// Lazy marks the mapping for deferred loading.
func (b *ResultMappingBuilder) Lazy(lazy bool) *ResultMappingBuilder {
	b.mapping.Lazy = lazy
	return b
}

// Build returns the finished mapping.
func (b *ResultMappingBuilder) Build() *ResultMapping {
	return b.mapping
}

// Discriminator selects among result-map variants by column value. The case
// map is keyed by the discriminating value and holds fully-qualified
// result-map ids.
type Discriminator struct {
	ColumnMapping *ResultMapping
	Cases         map[string]string
}

// ResultMapFor returns the result-map id for a discriminating value.
func (d *Discriminator) ResultMapFor(value string) (string, bool) {
	id, ok := d.Cases[value]
	return id, ok
}

// ResultMap describes how rows bind to a target type: the ordered mapping
// list, role-partitioned views of it, and an optional discriminator.
// Immutable once built.
type ResultMap struct {
	ID                  string
	Type                reflect.Type
	ResultMappings      []*ResultMapping
	IDMappings          []*ResultMapping
	ConstructorMappings []*ResultMapping
	PropertyMappings    []*ResultMapping
	MappedColumns       map[string]struct{}
	Discriminator       *Discriminator
	HasNestedResultMaps bool
	HasNestedQueries    bool
	AutoMapping         *bool
}

// ResultMapBuilder assembles an immutable ResultMap.
type ResultMapBuilder struct {
	resultMap *ResultMap
}

// NewResultMapBuilder starts a result map with its id, target type and
// ordered mappings.
func NewResultMapBuilder(id string, targetType reflect.Type, mappings []*ResultMapping) *ResultMapBuilder {
	return &ResultMapBuilder{resultMap: &ResultMap{
		ID:             id,
		Type:           targetType,
		ResultMappings: mappings,
	}}
}

// Discriminator attaches the variant selector.
func (b *ResultMapBuilder) Discriminator(d *Discriminator) *ResultMapBuilder {
	b.resultMap.Discriminator = d
	return b
}

// AutoMapping sets the tri-state automapping override.
func (b *ResultMapBuilder) AutoMapping(auto *bool) *ResultMapBuilder {
	b.resultMap.AutoMapping = auto
	return b
}

// Build partitions the mappings by role and freezes the result map.
func (b *ResultMapBuilder) Build() (*ResultMap, error) {
	rm := b.resultMap
	if rm.ID == "" {
		return nil, fmt.Errorf("result map requires an id")
	}
	rm.MappedColumns = make(map[string]struct{})
	for _, mapping := range rm.ResultMappings {
		if mapping.NestedResultMapID != "" {
			rm.HasNestedResultMaps = true
		}
		if mapping.NestedSelectID != "" {
			rm.HasNestedQueries = true
		}
		if mapping.Column != "" {
			rm.MappedColumns[mapping.Column] = struct{}{}
		}
		for _, composite := range mapping.Composites {
			if composite.Column != "" {
				rm.MappedColumns[composite.Column] = struct{}{}
			}
		}
		if mapping.Flags.Has(FlagConstructor) {
			rm.ConstructorMappings = append(rm.ConstructorMappings, mapping)
		} else {
			rm.PropertyMappings = append(rm.PropertyMappings, mapping)
		}
		if mapping.Flags.Has(FlagID) {
			rm.IDMappings = append(rm.IDMappings, mapping)
		}
	}
	if len(rm.IDMappings) == 0 {
		rm.IDMappings = append(rm.IDMappings, rm.ResultMappings...)
	}
	return rm, nil
}

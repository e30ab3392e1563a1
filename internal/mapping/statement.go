package mapping

import (
	"fmt"
	"time"

	"github.com/dengquanbo/gobatis/internal/cache"
)

// MappedStatement is the fully resolved descriptor for one declared
// statement: its SQL source, command kind, parameter and result mappings,
// cache policy and key-generation strategy. Built exactly once during the
// load phase and never mutated afterwards.
type MappedStatement struct {
	ID                  string
	Resource            string
	SQLSource           SQLSource
	CommandType         SQLCommandType
	StatementType       StatementType
	ResultSetType       ResultSetType
	FetchSize           *int
	Timeout             time.Duration
	ParameterMap        *ParameterMap
	ResultMaps          []*ResultMap
	FlushCacheRequired  bool
	UseCache            bool
	ResultOrdered       bool
	KeyGeneratorType    KeyGeneratorType
	KeyGenerator        KeyGenerator
	KeyProperties       []string
	KeyColumns          []string
	ResultSets          []string
	Cache               cache.Cache
	HasNestedResultMaps bool
}

// Namespace returns the namespace prefix of the statement id.
func (s *MappedStatement) Namespace() string {
	for i := len(s.ID) - 1; i >= 0; i-- {
		if s.ID[i] == '.' {
			return s.ID[:i]
		}
	}
	return ""
}

// BoundSQL resolves the statement SQL for a parameter object, substituting
// the parameter map's mappings when the source produces none.
func (s *MappedStatement) BoundSQL(parameterObject any) (*BoundSQL, error) {
	bound, err := s.SQLSource.BoundSQL(parameterObject)
	if err != nil {
		return nil, fmt.Errorf("statement %s: %w", s.ID, err)
	}
	if len(bound.ParameterMappings) == 0 && s.ParameterMap != nil {
		bound.ParameterMappings = s.ParameterMap.ParameterMappings
	}
	return bound, nil
}

// StatementBuilder assembles an immutable MappedStatement.
type StatementBuilder struct {
	stmt *MappedStatement
}

// NewStatementBuilder starts a statement with its required attributes.
func NewStatementBuilder(id string, source SQLSource, commandType SQLCommandType) *StatementBuilder {
	return &StatementBuilder{stmt: &MappedStatement{
		ID:            id,
		SQLSource:     source,
		CommandType:   commandType,
		StatementType: StatementPrepared,
		KeyGenerator:  NoKeyGenerator{},
	}}
}

// Resource records the declaration source for diagnostics.
func (b *StatementBuilder) Resource(resource string) *StatementBuilder {
	b.stmt.Resource = resource
	return b
}

// StatementType sets the preparation mode.
func (b *StatementBuilder) StatementType(t StatementType) *StatementBuilder {
	b.stmt.StatementType = t
	return b
}

// ResultSetType sets the result-set handling mode.
func (b *StatementBuilder) ResultSetType(t ResultSetType) *StatementBuilder {
	b.stmt.ResultSetType = t
	return b
}

// FetchSize sets the driver fetch-size hint.
func (b *StatementBuilder) FetchSize(size *int) *StatementBuilder {
	b.stmt.FetchSize = size
	return b
}

// Timeout bounds statement execution.
func (b *StatementBuilder) Timeout(timeout time.Duration) *StatementBuilder {
	b.stmt.Timeout = timeout
	return b
}

// ParameterMap attaches the parameter descriptor.
func (b *StatementBuilder) ParameterMap(pm *ParameterMap) *StatementBuilder {
	b.stmt.ParameterMap = pm
	return b
}

// ResultMaps attaches the ordered result descriptors.
func (b *StatementBuilder) ResultMaps(resultMaps []*ResultMap) *StatementBuilder {
	b.stmt.ResultMaps = resultMaps
	for _, rm := range resultMaps {
		if rm.HasNestedResultMaps {
			b.stmt.HasNestedResultMaps = true
		}
	}
	return b
}

// FlushCacheRequired sets whether execution clears the namespace cache.
func (b *StatementBuilder) FlushCacheRequired(flush bool) *StatementBuilder {
	b.stmt.FlushCacheRequired = flush
	return b
}

// UseCache sets whether results go through the namespace cache.
func (b *StatementBuilder) UseCache(use bool) *StatementBuilder {
	b.stmt.UseCache = use
	return b
}

// ResultOrdered declares that nested results arrive grouped.
func (b *StatementBuilder) ResultOrdered(ordered bool) *StatementBuilder {
	b.stmt.ResultOrdered = ordered
	return b
}

// KeyGenerator selects the key-generation strategy and its implementation.
func (b *StatementBuilder) KeyGenerator(t KeyGeneratorType, generator KeyGenerator) *StatementBuilder {
	b.stmt.KeyGeneratorType = t
	if generator != nil {
		b.stmt.KeyGenerator = generator
	}
	return b
}

// KeyProperties names the properties receiving generated keys.
func (b *StatementBuilder) KeyProperties(properties []string) *StatementBuilder {
	b.stmt.KeyProperties = properties
	return b
}

// KeyColumns names the columns producing generated keys.
func (b *StatementBuilder) KeyColumns(columns []string) *StatementBuilder {
	b.stmt.KeyColumns = columns
	return b
}

// ResultSets names the result sets of a multi-result statement.
func (b *StatementBuilder) ResultSets(resultSets []string) *StatementBuilder {
	b.stmt.ResultSets = resultSets
	return b
}

// Cache attaches the namespace cache.
func (b *StatementBuilder) Cache(c cache.Cache) *StatementBuilder {
	b.stmt.Cache = c
	return b
}

// Build validates and freezes the statement.
func (b *StatementBuilder) Build() (*MappedStatement, error) {
	if b.stmt.ID == "" {
		return nil, fmt.Errorf("mapped statement requires an id")
	}
	if b.stmt.SQLSource == nil {
		return nil, fmt.Errorf("mapped statement %s requires a SQL source", b.stmt.ID)
	}
	if b.stmt.CommandType == CommandUnknown {
		return nil, fmt.Errorf("mapped statement %s requires a command type", b.stmt.ID)
	}
	return b.stmt, nil
}

package mapping

// SQLSource produces executable SQL for a parameter object. The scripting
// layer that builds dynamic SQL is external; the registry only stores the
// handle.
type SQLSource interface {
	BoundSQL(parameterObject any) (*BoundSQL, error)
}

// BoundSQL is the resolved SQL text plus the parameter mappings the executor
// binds in order.
type BoundSQL struct {
	SQL               string
	ParameterMappings []*ParameterMapping
	ParameterObject   any
}

// StaticSQLSource wraps SQL text that needs no further processing.
type StaticSQLSource struct {
	sql               string
	parameterMappings []*ParameterMapping
}

// NewStaticSQLSource creates a source for fixed SQL text.
func NewStaticSQLSource(sql string, parameterMappings []*ParameterMapping) *StaticSQLSource {
	return &StaticSQLSource{sql: sql, parameterMappings: parameterMappings}
}

// BoundSQL returns the fixed text bound to parameterObject.
func (s *StaticSQLSource) BoundSQL(parameterObject any) (*BoundSQL, error) {
	return &BoundSQL{
		SQL:               s.sql,
		ParameterMappings: s.parameterMappings,
		ParameterObject:   parameterObject,
	}, nil
}

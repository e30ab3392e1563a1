package builder

// Declaration bundles are the ingestion interface: attribute sets already
// parsed from whatever source syntax (YAML documents, annotations, code
// generation) that the mapper builder turns into descriptors. Field tags
// follow the document attribute names.

// CacheDecl declares a namespace cache.
type CacheDecl struct {
	Eviction      string         `mapstructure:"eviction"`
	FlushInterval string         `mapstructure:"flushInterval"`
	Size          int            `mapstructure:"size"`
	ReadWrite     bool           `mapstructure:"readWrite"`
	Blocking      bool           `mapstructure:"blocking"`
	Properties    map[string]any `mapstructure:"properties"`
}

// ResultMappingDecl declares one property↔column binding.
type ResultMappingDecl struct {
	Property        string `mapstructure:"property"`
	Column          string `mapstructure:"column"`
	JavaType        string `mapstructure:"javaType"`
	JDBCType        string `mapstructure:"jdbcType"`
	NestedSelect    string `mapstructure:"select"`
	NestedResultMap string `mapstructure:"resultMap"`
	NotNullColumn   string `mapstructure:"notNullColumn"`
	ColumnPrefix    string `mapstructure:"columnPrefix"`
	ID              bool   `mapstructure:"id"`
	Constructor     bool   `mapstructure:"constructor"`
	Lazy            *bool  `mapstructure:"lazy"`
	ResultSet       string `mapstructure:"resultSet"`
	ForeignColumn   string `mapstructure:"foreignColumn"`
}

// CaseDecl declares one discriminator case: either a reference to an
// existing result map or an inline mapping list producing a synthetic child.
type CaseDecl struct {
	Value     string              `mapstructure:"value"`
	ResultMap string              `mapstructure:"resultMap"`
	Type      string              `mapstructure:"type"`
	Mappings  []ResultMappingDecl `mapstructure:"mappings"`
}

// DiscriminatorDecl declares a column-value-driven variant selector.
type DiscriminatorDecl struct {
	Column   string     `mapstructure:"column"`
	JavaType string     `mapstructure:"javaType"`
	JDBCType string     `mapstructure:"jdbcType"`
	Cases    []CaseDecl `mapstructure:"cases"`
}

// ResultMapDecl declares one result map.
type ResultMapDecl struct {
	ID            string              `mapstructure:"id"`
	Type          string              `mapstructure:"type"`
	Extends       string              `mapstructure:"extends"`
	AutoMapping   *bool               `mapstructure:"autoMapping"`
	Mappings      []ResultMappingDecl `mapstructure:"mappings"`
	Discriminator *DiscriminatorDecl  `mapstructure:"discriminator"`
}

// ParameterMappingDecl declares one parameter binding.
type ParameterMappingDecl struct {
	Property     string `mapstructure:"property"`
	JavaType     string `mapstructure:"javaType"`
	JDBCType     string `mapstructure:"jdbcType"`
	Mode         string `mapstructure:"mode"`
	ResultMap    string `mapstructure:"resultMap"`
	NumericScale *int   `mapstructure:"numericScale"`
}

// ParameterMapDecl declares one parameter map.
type ParameterMapDecl struct {
	ID       string                 `mapstructure:"id"`
	Type     string                 `mapstructure:"type"`
	Mappings []ParameterMappingDecl `mapstructure:"mappings"`
}

// StatementDecl declares one mapped statement.
type StatementDecl struct {
	ID            string `mapstructure:"id"`
	Command       string `mapstructure:"command"`
	SQL           string `mapstructure:"sql"`
	StatementType string `mapstructure:"statementType"`
	ResultSetType string `mapstructure:"resultSetType"`
	ParameterType string `mapstructure:"parameterType"`
	ParameterMap  string `mapstructure:"parameterMap"`
	ResultType    string `mapstructure:"resultType"`
	ResultMap     string `mapstructure:"resultMap"`
	FetchSize     *int   `mapstructure:"fetchSize"`
	Timeout       string `mapstructure:"timeout"`
	FlushCache    *bool  `mapstructure:"flushCache"`
	UseCache      *bool  `mapstructure:"useCache"`
	ResultOrdered bool   `mapstructure:"resultOrdered"`
	KeyGenerator  string `mapstructure:"keyGenerator"`
	KeyProperty   string `mapstructure:"keyProperty"`
	KeyColumn     string `mapstructure:"keyColumn"`
	ResultSets    string `mapstructure:"resultSets"`
}

// MapperDocument is one mapper namespace's worth of declarations.
type MapperDocument struct {
	Namespace     string             `mapstructure:"namespace"`
	CacheRef      string             `mapstructure:"cacheRef"`
	Cache         *CacheDecl         `mapstructure:"cache"`
	ParameterMaps []ParameterMapDecl `mapstructure:"parameterMaps"`
	ResultMaps    []ResultMapDecl    `mapstructure:"resultMaps"`
	Statements    []StatementDecl    `mapstructure:"statements"`
}

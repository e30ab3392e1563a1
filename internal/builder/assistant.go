// Package builder assembles raw mapper declarations into fully-qualified,
// cross-referenced descriptors and registers them with the catalog. The
// attribute bundles it consumes have already been parsed from whatever
// source syntax by an external loader.
package builder

import (
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dengquanbo/gobatis/internal/cache"
	"github.com/dengquanbo/gobatis/internal/mapping"
	"github.com/dengquanbo/gobatis/internal/reflection"
	"github.com/dengquanbo/gobatis/internal/registry"
)

// Assistant assembles one mapper namespace's declarations. It holds the
// currently-active namespace and cache while a mapper source is processed;
// the registry remains the single owner of everything it registers.
type Assistant struct {
	registry           *registry.Registry
	resource           string
	namespace          string
	currentCache       cache.Cache
	unresolvedCacheRef bool
	logger             *zap.Logger
}

// NewAssistant creates an assistant for one mapper source.
func NewAssistant(reg *registry.Registry, resource string, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		registry: reg,
		resource: resource,
		logger:   logger,
	}
}

// Namespace returns the active namespace.
func (a *Assistant) Namespace() string {
	return a.namespace
}

// SetNamespace fixes the namespace for this assistant. It must be set before
// any other operation and is immutable once set.
func (a *Assistant) SetNamespace(namespace string) error {
	if namespace == "" {
		return buildErrorf("the mapper declaration requires a namespace")
	}
	if a.namespace != "" && a.namespace != namespace {
		return buildErrorf("wrong namespace: expected %q but found %q", a.namespace, namespace)
	}
	a.namespace = namespace
	return nil
}

// ApplyNamespace qualifies a declared or referenced id with the active
// namespace. References already containing a separator pass through
// untouched; local names must not contain dots.
func (a *Assistant) ApplyNamespace(base string, isReference bool) (string, error) {
	if base == "" {
		return "", nil
	}
	if a.namespace == "" {
		return "", buildErrorf("cannot qualify %q: namespace has not been set", base)
	}
	if isReference {
		if strings.Contains(base, ".") {
			return base, nil
		}
	} else {
		if strings.HasPrefix(base, a.namespace+".") {
			return base, nil
		}
		if strings.Contains(base, ".") {
			return "", buildErrorf("dots are not allowed in declaration names, remove it from %q", base)
		}
	}
	return a.namespace + "." + base, nil
}

// UseCacheRef borrows the cache of another namespace. If that namespace has
// not been processed yet the reference is incomplete and statements of this
// namespace must be deferred until it resolves.
func (a *Assistant) UseCacheRef(namespace string) (cache.Cache, error) {
	if namespace == "" {
		return nil, buildErrorf("cache-ref requires a namespace")
	}
	a.unresolvedCacheRef = true
	c, ok := a.registry.Cache(namespace)
	if !ok {
		return nil, registry.Incomplete(namespace, "no cache for namespace")
	}
	a.currentCache = c
	a.unresolvedCacheRef = false
	return c, nil
}

// UseNewCache builds this namespace's cache chain and registers it. Nil
// factories keep the perpetual/LRU defaults.
func (a *Assistant) UseNewCache(base cache.BaseFactory, eviction cache.EvictionFactory,
	clearInterval time.Duration, size int, readWrite, blocking bool, props map[string]any) (cache.Cache, error) {
	if a.namespace == "" {
		return nil, buildErrorf("cannot build a cache before the namespace is set")
	}
	c, err := cache.NewBuilder(a.namespace).
		Base(base).
		Eviction(eviction).
		ClearInterval(clearInterval).
		Size(size).
		ReadWrite(readWrite).
		Blocking(blocking).
		Properties(props).
		Logger(a.logger).
		Build()
	if err != nil {
		return nil, buildErrorf("building cache for namespace %s: %w", a.namespace, err)
	}
	if err := a.registry.AddCache(c); err != nil {
		return nil, buildErrorf("registering cache: %w", err)
	}
	a.currentCache = c
	return c, nil
}

// CurrentCache returns the cache bound to the active namespace, if any.
func (a *Assistant) CurrentCache() cache.Cache {
	return a.currentCache
}

// AddParameterMap qualifies and registers a parameter map.
func (a *Assistant) AddParameterMap(id string, targetType reflect.Type,
	mappings []*mapping.ParameterMapping) (*mapping.ParameterMap, error) {
	qualified, err := a.ApplyNamespace(id, false)
	if err != nil {
		return nil, err
	}
	pm, err := mapping.NewParameterMap(qualified, targetType, mappings)
	if err != nil {
		return nil, buildErrorf("building parameter map %s: %w", qualified, err)
	}
	if err := a.registry.AddParameterMap(pm); err != nil {
		return nil, buildErrorf("registering parameter map: %w", err)
	}
	return pm, nil
}

// cursorRowsType stands in for the driver cursor a CURSOR-mode output
// parameter produces.
var cursorRowsType = reflect.TypeOf([]map[string]any(nil))

// BuildParameterMapping assembles one parameter mapping, inferring the
// property type from the parameter object's metadata when not declared.
func (a *Assistant) BuildParameterMapping(parameterType reflect.Type, property string,
	javaType reflect.Type, jdbcType string, resultMapID string, mode mapping.ParameterMode,
	numericScale *int) (*mapping.ParameterMapping, error) {
	qualifiedResultMap, err := a.ApplyNamespace(resultMapID, true)
	if err != nil {
		return nil, err
	}
	resolved, err := a.resolveParameterType(parameterType, property, javaType, jdbcType)
	if err != nil {
		return nil, err
	}
	b := mapping.NewParameterMappingBuilder(property, resolved).
		JDBCType(jdbcType).
		Mode(mode).
		ResultMapID(qualifiedResultMap)
	if numericScale != nil {
		b.NumericScale(*numericScale)
	}
	return b.Build(), nil
}

func (a *Assistant) resolveParameterType(parameterType reflect.Type, property string,
	javaType reflect.Type, jdbcType string) (reflect.Type, error) {
	if javaType != nil {
		return javaType, nil
	}
	if jdbcType == "CURSOR" {
		return cursorRowsType, nil
	}
	if parameterType == nil || parameterType.Kind() == reflect.Map {
		return anyType, nil
	}
	meta, err := reflection.MetadataFor(parameterType)
	if err != nil {
		return nil, buildErrorf("resolving parameter type for property %q: %w", property, err)
	}
	if t, err := meta.GetterType(property); err == nil {
		return t, nil
	}
	return anyType, nil
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// AddResultMap qualifies, merges inherited mappings and registers a result
// map. A missing parent defers the declaration.
func (a *Assistant) AddResultMap(id string, targetType reflect.Type, extendID string,
	discriminator *mapping.Discriminator, mappings []*mapping.ResultMapping,
	autoMapping *bool) (*mapping.ResultMap, error) {
	qualified, err := a.ApplyNamespace(id, false)
	if err != nil {
		return nil, err
	}
	qualifiedExtend, err := a.ApplyNamespace(extendID, true)
	if err != nil {
		return nil, err
	}

	if qualifiedExtend != "" {
		parent, ok := a.registry.ResultMap(qualifiedExtend)
		if !ok {
			return nil, registry.Incomplete(qualifiedExtend, "could not find a parent result map")
		}
		mappings = mergeInherited(mappings, parent.ResultMappings)
	}

	rm, err := mapping.NewResultMapBuilder(qualified, targetType, mappings).
		Discriminator(discriminator).
		AutoMapping(autoMapping).
		Build()
	if err != nil {
		return nil, buildErrorf("building result map %s: %w", qualified, err)
	}
	if err := a.registry.AddResultMap(rm); err != nil {
		return nil, buildErrorf("registering result map: %w", err)
	}
	return rm, nil
}

// mergeInherited appends the parent's mappings not overridden by the child.
// If the child declares its own constructor mappings, the parent's
// constructor mappings are dropped wholesale rather than merged.
func mergeInherited(declared, inherited []*mapping.ResultMapping) []*mapping.ResultMapping {
	declaresConstructor := false
	for _, m := range declared {
		if m.Flags.Has(mapping.FlagConstructor) {
			declaresConstructor = true
			break
		}
	}

	merged := declared
	for _, parentMapping := range inherited {
		if declaresConstructor && parentMapping.Flags.Has(mapping.FlagConstructor) {
			continue
		}
		overridden := false
		for _, own := range declared {
			if own.SameBinding(parentMapping) {
				overridden = true
				break
			}
		}
		if !overridden {
			merged = append(merged, parentMapping)
		}
	}
	return merged
}

// BuildDiscriminator assembles the variant selector. Case values map to
// fully-qualified result-map ids.
func (a *Assistant) BuildDiscriminator(resultType reflect.Type, column string,
	javaType reflect.Type, jdbcType string, cases map[string]string) (*mapping.Discriminator, error) {
	columnMapping, err := a.BuildResultMapping(resultType, "", column, javaType, jdbcType,
		"", "", "", "", 0, "", "", false)
	if err != nil {
		return nil, err
	}
	qualifiedCases := make(map[string]string, len(cases))
	for value, resultMapID := range cases {
		qualified, err := a.ApplyNamespace(resultMapID, true)
		if err != nil {
			return nil, err
		}
		qualifiedCases[value] = qualified
	}
	return &mapping.Discriminator{ColumnMapping: columnMapping, Cases: qualifiedCases}, nil
}

// BuildResultMapping assembles one result mapping, inferring the property
// type from the target type's metadata when not declared.
func (a *Assistant) BuildResultMapping(resultType reflect.Type, property, column string,
	javaType reflect.Type, jdbcType, nestedSelect, nestedResultMap, notNullColumn, columnPrefix string,
	flags mapping.ResultFlag, resultSet, foreignColumn string, lazy bool) (*mapping.ResultMapping, error) {
	resolved, err := a.resolveResultType(resultType, property, javaType)
	if err != nil {
		return nil, err
	}
	qualifiedSelect, err := a.ApplyNamespace(nestedSelect, true)
	if err != nil {
		return nil, err
	}
	qualifiedNested, err := a.ApplyNamespace(nestedResultMap, true)
	if err != nil {
		return nil, err
	}
	return mapping.NewResultMappingBuilder(property, column, resolved).
		JDBCType(jdbcType).
		NestedSelect(qualifiedSelect).
		NestedResultMap(qualifiedNested).
		NotNullColumns(parseColumnSet(notNullColumn)).
		ColumnPrefix(columnPrefix).
		Flags(flags).
		Composites(parseCompositeColumn(column)).
		ResultSet(resultSet).
		ForeignColumn(foreignColumn).
		Lazy(lazy).
		Build(), nil
}

func (a *Assistant) resolveResultType(resultType reflect.Type, property string,
	javaType reflect.Type) (reflect.Type, error) {
	if javaType != nil {
		return javaType, nil
	}
	if property != "" && resultType != nil {
		meta, err := reflection.MetadataFor(resultType)
		if err != nil {
			if reflection.IsReflectionError(err) {
				return nil, buildErrorf("resolving result type for property %q: %w", property, err)
			}
			return anyType, nil
		}
		if t, err := meta.SetterType(property); err == nil {
			return t, nil
		}
	}
	return anyType, nil
}

// parseColumnSet splits a "{col1,col2}" attribute into a column set.
func parseColumnSet(columnName string) map[string]struct{} {
	if columnName == "" {
		return nil
	}
	columns := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(columnName, func(r rune) bool {
		return r == '{' || r == '}' || r == ',' || r == ' '
	}) {
		columns[token] = struct{}{}
	}
	return columns
}

// parseCompositeColumn splits a "{prop=col,prop=col}" attribute into
// composite sub-mappings used by nested selects with compound keys.
func parseCompositeColumn(columnName string) []*mapping.ResultMapping {
	if !strings.ContainsAny(columnName, "=,") {
		return nil
	}
	tokens := strings.FieldsFunc(columnName, func(r rune) bool {
		return r == '{' || r == '}' || r == '=' || r == ',' || r == ' '
	})
	var composites []*mapping.ResultMapping
	for i := 0; i+1 < len(tokens); i += 2 {
		composites = append(composites,
			mapping.NewResultMappingBuilder(tokens[i], tokens[i+1], anyType).Build())
	}
	return composites
}

// StatementConfig carries the scalar attributes of one statement
// declaration, resolved to their typed forms.
type StatementConfig struct {
	ID               string
	SQLSource        mapping.SQLSource
	CommandType      mapping.SQLCommandType
	StatementType    mapping.StatementType
	ResultSetType    mapping.ResultSetType
	FetchSize        *int
	Timeout          time.Duration
	ParameterMapID   string
	ParameterType    reflect.Type
	ResultMapRefs    string
	ResultType       reflect.Type
	FlushCache       *bool
	UseCache         *bool
	ResultOrdered    bool
	KeyGeneratorType mapping.KeyGeneratorType
	KeyGenerator     mapping.KeyGenerator
	KeyProperties    []string
	KeyColumns       []string
	ResultSets       []string
}

// AddMappedStatement qualifies, resolves references and registers one
// statement. Statements built while a cache-ref is unresolved are deferred.
func (a *Assistant) AddMappedStatement(cfg StatementConfig) (*mapping.MappedStatement, error) {
	if a.unresolvedCacheRef {
		return nil, registry.Incomplete(a.namespace, "cache-ref not yet resolved")
	}

	qualified, err := a.ApplyNamespace(cfg.ID, false)
	if err != nil {
		return nil, err
	}
	isSelect := cfg.CommandType == mapping.CommandSelect

	resultMaps, err := a.statementResultMaps(cfg.ResultMapRefs, cfg.ResultType, qualified)
	if err != nil {
		return nil, err
	}
	parameterMap, err := a.statementParameterMap(cfg.ParameterMapID, cfg.ParameterType, qualified)
	if err != nil {
		return nil, err
	}

	b := mapping.NewStatementBuilder(qualified, cfg.SQLSource, cfg.CommandType).
		Resource(a.resource).
		StatementType(cfg.StatementType).
		ResultSetType(cfg.ResultSetType).
		FetchSize(cfg.FetchSize).
		Timeout(cfg.Timeout).
		ResultMaps(resultMaps).
		ParameterMap(parameterMap).
		FlushCacheRequired(boolOrDefault(cfg.FlushCache, !isSelect)).
		UseCache(boolOrDefault(cfg.UseCache, isSelect)).
		ResultOrdered(cfg.ResultOrdered).
		KeyGenerator(cfg.KeyGeneratorType, cfg.KeyGenerator).
		KeyProperties(cfg.KeyProperties).
		KeyColumns(cfg.KeyColumns).
		ResultSets(cfg.ResultSets).
		Cache(a.currentCache)

	stmt, err := b.Build()
	if err != nil {
		return nil, buildErrorf("building statement %s: %w", qualified, err)
	}
	if err := a.registry.AddStatement(stmt); err != nil {
		return nil, buildErrorf("registering statement: %w", err)
	}
	a.logger.Debug("registered statement",
		zap.String("id", stmt.ID),
		zap.Stringer("command", stmt.CommandType),
	)
	return stmt, nil
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

// statementResultMaps resolves the comma-separated result-map references,
// or synthesizes an inline result map from a declared result type.
func (a *Assistant) statementResultMaps(refs string, resultType reflect.Type,
	statementID string) ([]*mapping.ResultMap, error) {
	if refs != "" {
		var resultMaps []*mapping.ResultMap
		for _, name := range strings.Split(refs, ",") {
			ref, err := a.ApplyNamespace(strings.TrimSpace(name), true)
			if err != nil {
				return nil, err
			}
			rm, ok := a.registry.ResultMap(ref)
			if !ok {
				return nil, registry.Incomplete(ref, "could not find result map")
			}
			resultMaps = append(resultMaps, rm)
		}
		return resultMaps, nil
	}
	if resultType != nil {
		inline, err := mapping.NewResultMapBuilder(statementID+"-Inline", resultType, nil).Build()
		if err != nil {
			return nil, buildErrorf("building inline result map for %s: %w", statementID, err)
		}
		return []*mapping.ResultMap{inline}, nil
	}
	return nil, nil
}

// statementParameterMap resolves the declared parameter-map reference, or
// synthesizes an inline parameter map from a declared parameter type.
func (a *Assistant) statementParameterMap(ref string, parameterType reflect.Type,
	statementID string) (*mapping.ParameterMap, error) {
	qualified, err := a.ApplyNamespace(ref, true)
	if err != nil {
		return nil, err
	}
	if qualified != "" {
		pm, ok := a.registry.ParameterMap(qualified)
		if !ok {
			return nil, registry.Incomplete(qualified, "could not find parameter map")
		}
		return pm, nil
	}
	if parameterType != nil {
		pm, err := mapping.NewParameterMap(statementID+"-Inline", parameterType, nil)
		if err != nil {
			return nil, buildErrorf("building inline parameter map for %s: %w", statementID, err)
		}
		return pm, nil
	}
	return nil, nil
}

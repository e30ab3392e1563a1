package builder

import (
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dengquanbo/gobatis/internal/cache"
	"github.com/dengquanbo/gobatis/internal/mapping"
	"github.com/dengquanbo/gobatis/internal/registry"
)

// MapperBuilder processes one mapper document: it drives the assistant
// through the document's declarations, parks whatever cannot resolve yet in
// the registry's pending sets, and runs a resolution checkpoint at the end.
type MapperBuilder struct {
	registry      *registry.Registry
	assistant     *Assistant
	resource      string
	logger        *zap.Logger
	keyGenerators map[mapping.KeyGeneratorType]mapping.KeyGenerator
}

// NewMapperBuilder creates a builder for one mapper source.
func NewMapperBuilder(reg *registry.Registry, resource string, logger *zap.Logger) *MapperBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapperBuilder{
		registry:      reg,
		assistant:     NewAssistant(reg, resource, logger),
		resource:      resource,
		logger:        logger,
		keyGenerators: make(map[mapping.KeyGeneratorType]mapping.KeyGenerator),
	}
}

// RegisterKeyGenerator supplies the execution-layer implementation for a
// key-generation strategy.
func (b *MapperBuilder) RegisterKeyGenerator(t mapping.KeyGeneratorType, generator mapping.KeyGenerator) {
	b.keyGenerators[t] = generator
}

// Build processes the document. Already-loaded resources are skipped.
func (b *MapperBuilder) Build(doc *MapperDocument) error {
	if b.registry.IsResourceLoaded(b.resource) {
		return nil
	}
	if err := b.assistant.SetNamespace(doc.Namespace); err != nil {
		return err
	}

	if doc.CacheRef != "" {
		if _, err := b.assistant.UseCacheRef(doc.CacheRef); err != nil {
			if !registry.IsIncomplete(err) {
				return err
			}
			b.registry.AddIncompleteCacheRef(newCacheRefResolver(b.assistant, doc.CacheRef))
		}
	}
	if doc.Cache != nil {
		if err := b.buildCache(doc.Cache); err != nil {
			return err
		}
	}
	for _, decl := range doc.ParameterMaps {
		if err := b.buildParameterMap(decl); err != nil {
			return err
		}
	}
	for _, decl := range doc.ResultMaps {
		if _, err := b.buildResultMap(decl); err != nil {
			if !registry.IsIncomplete(err) {
				return err
			}
			b.registry.AddIncompleteResultMap(newResultMapResolver(b, decl))
		}
	}
	for _, decl := range doc.Statements {
		if err := b.buildStatement(decl); err != nil {
			if !registry.IsIncomplete(err) {
				return err
			}
			b.registry.AddIncompleteStatement(newStatementResolver(b, decl))
		}
	}

	b.registry.AddLoadedResource(b.resource)
	b.logger.Debug("processed mapper document",
		zap.String("resource", b.resource),
		zap.String("namespace", doc.Namespace),
	)
	return b.registry.ResolvePending()
}

func (b *MapperBuilder) buildCache(decl *CacheDecl) error {
	eviction, err := evictionFactory(decl.Eviction)
	if err != nil {
		return err
	}
	var interval time.Duration
	if decl.FlushInterval != "" {
		interval, err = time.ParseDuration(decl.FlushInterval)
		if err != nil {
			return buildErrorf("invalid flushInterval %q: %w", decl.FlushInterval, err)
		}
	}
	_, err = b.assistant.UseNewCache(nil, eviction, interval, decl.Size,
		decl.ReadWrite, decl.Blocking, decl.Properties)
	return err
}

func evictionFactory(name string) (cache.EvictionFactory, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "LRU":
		return func(delegate cache.Cache) cache.Cache { return cache.NewLRUCache(delegate) }, nil
	case "FIFO":
		return func(delegate cache.Cache) cache.Cache { return cache.NewFIFOCache(delegate) }, nil
	default:
		return nil, buildErrorf("unknown cache eviction policy %q", name)
	}
}

func (b *MapperBuilder) buildParameterMap(decl ParameterMapDecl) error {
	targetType, err := b.resolveType(decl.Type)
	if err != nil {
		return err
	}
	var mappings []*mapping.ParameterMapping
	for _, md := range decl.Mappings {
		javaType, err := b.resolveType(md.JavaType)
		if err != nil {
			return err
		}
		mode, err := mapping.ParseParameterMode(md.Mode)
		if err != nil {
			return buildErrorf("parameter map %s: %w", decl.ID, err)
		}
		pm, err := b.assistant.BuildParameterMapping(targetType, md.Property, javaType,
			md.JDBCType, md.ResultMap, mode, md.NumericScale)
		if err != nil {
			return err
		}
		mappings = append(mappings, pm)
	}
	_, err = b.assistant.AddParameterMap(decl.ID, targetType, mappings)
	return err
}

// buildResultMap assembles one result map. Discriminator cases with inline
// mappings produce one synthetic child map per case, named
// {parentID}-{caseValue} and registered before the parent so the parent's
// reference map is fully populated at its own registration time.
func (b *MapperBuilder) buildResultMap(decl ResultMapDecl) (*mapping.ResultMap, error) {
	if decl.Type == "" {
		return nil, buildErrorf("result map %s requires a type", decl.ID)
	}
	targetType, err := b.resolveType(decl.Type)
	if err != nil {
		return nil, err
	}

	mappings, err := b.buildResultMappings(targetType, decl.Mappings)
	if err != nil {
		return nil, err
	}

	var discriminator *mapping.Discriminator
	if decl.Discriminator != nil {
		discriminator, err = b.buildDiscriminator(decl, targetType)
		if err != nil {
			return nil, err
		}
	}

	return b.assistant.AddResultMap(decl.ID, targetType, decl.Extends, discriminator,
		mappings, decl.AutoMapping)
}

func (b *MapperBuilder) buildDiscriminator(parent ResultMapDecl, parentType reflect.Type) (*mapping.Discriminator, error) {
	d := parent.Discriminator
	cases := make(map[string]string, len(d.Cases))
	for _, c := range d.Cases {
		ref := c.ResultMap
		if ref == "" {
			childDecl := ResultMapDecl{
				ID:       parent.ID + "-" + c.Value,
				Type:     c.Type,
				Mappings: c.Mappings,
			}
			if childDecl.Type == "" {
				childDecl.Type = parent.Type
			}
			// a retried parent must not re-register children from the
			// first attempt
			qualifiedChild, err := b.assistant.ApplyNamespace(childDecl.ID, false)
			if err != nil {
				return nil, err
			}
			if !b.registry.HasResultMap(qualifiedChild) {
				if _, err := b.buildResultMap(childDecl); err != nil {
					return nil, err
				}
			}
			ref = childDecl.ID
		}
		cases[c.Value] = ref
	}
	javaType, err := b.resolveType(d.JavaType)
	if err != nil {
		return nil, err
	}
	return b.assistant.BuildDiscriminator(parentType, d.Column, javaType, d.JDBCType, cases)
}

func (b *MapperBuilder) buildResultMappings(targetType reflect.Type,
	decls []ResultMappingDecl) ([]*mapping.ResultMapping, error) {
	var mappings []*mapping.ResultMapping
	for _, md := range decls {
		javaType, err := b.resolveType(md.JavaType)
		if err != nil {
			return nil, err
		}
		var flags mapping.ResultFlag
		if md.ID {
			flags |= mapping.FlagID
		}
		if md.Constructor {
			flags |= mapping.FlagConstructor
		}
		lazy := b.registry.Settings().LazyLoadingEnabled
		if md.Lazy != nil {
			lazy = *md.Lazy
		}
		rm, err := b.assistant.BuildResultMapping(targetType, md.Property, md.Column,
			javaType, md.JDBCType, md.NestedSelect, md.NestedResultMap, md.NotNullColumn,
			md.ColumnPrefix, flags, md.ResultSet, md.ForeignColumn, lazy)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, rm)
	}
	return mappings, nil
}

func (b *MapperBuilder) buildStatement(decl StatementDecl) error {
	if decl.SQL == "" {
		return buildErrorf("statement %s requires SQL", decl.ID)
	}
	commandType, err := mapping.ParseCommandType(decl.Command)
	if err != nil {
		return buildErrorf("statement %s: %w", decl.ID, err)
	}
	statementType, err := mapping.ParseStatementType(decl.StatementType)
	if err != nil {
		return buildErrorf("statement %s: %w", decl.ID, err)
	}
	parameterType, err := b.resolveType(decl.ParameterType)
	if err != nil {
		return err
	}
	resultType, err := b.resolveType(decl.ResultType)
	if err != nil {
		return err
	}

	settings := b.registry.Settings()
	timeout := settings.DefaultStatementTimeout
	if decl.Timeout != "" {
		timeout, err = time.ParseDuration(decl.Timeout)
		if err != nil {
			return buildErrorf("statement %s: invalid timeout %q: %w", decl.ID, decl.Timeout, err)
		}
	}
	fetchSize := decl.FetchSize
	if fetchSize == nil && settings.DefaultFetchSize > 0 {
		size := settings.DefaultFetchSize
		fetchSize = &size
	}

	keyGenType, err := parseKeyGeneratorType(decl.KeyGenerator)
	if err != nil {
		return buildErrorf("statement %s: %w", decl.ID, err)
	}

	cfg := StatementConfig{
		ID:               decl.ID,
		SQLSource:        mapping.NewStaticSQLSource(decl.SQL, nil),
		CommandType:      commandType,
		StatementType:    statementType,
		ResultSetType:    parseResultSetType(decl.ResultSetType),
		FetchSize:        fetchSize,
		Timeout:          timeout,
		ParameterMapID:   decl.ParameterMap,
		ParameterType:    parameterType,
		ResultMapRefs:    decl.ResultMap,
		ResultType:       resultType,
		FlushCache:       decl.FlushCache,
		UseCache:         decl.UseCache,
		ResultOrdered:    decl.ResultOrdered,
		KeyGeneratorType: keyGenType,
		KeyGenerator:     b.keyGenerators[keyGenType],
		KeyProperties:    splitList(decl.KeyProperty),
		KeyColumns:       splitList(decl.KeyColumn),
		ResultSets:       splitList(decl.ResultSets),
	}
	_, err = b.assistant.AddMappedStatement(cfg)
	return err
}

func (b *MapperBuilder) resolveType(name string) (reflect.Type, error) {
	if name == "" {
		return nil, nil
	}
	t, err := b.registry.Aliases().Resolve(name)
	if err != nil {
		return nil, buildErrorf("resolving type: %w", err)
	}
	return t, nil
}

func parseKeyGeneratorType(s string) (mapping.KeyGeneratorType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return mapping.KeyGenNone, nil
	case "JDBC":
		return mapping.KeyGenJDBC, nil
	case "SELECT_BEFORE":
		return mapping.KeyGenSelectBefore, nil
	case "SELECT_AFTER":
		return mapping.KeyGenSelectAfter, nil
	default:
		return mapping.KeyGenNone, buildErrorf("unknown key generator %q", s)
	}
}

func parseResultSetType(s string) mapping.ResultSetType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FORWARD_ONLY":
		return mapping.ResultSetForwardOnly
	case "SCROLL_INSENSITIVE":
		return mapping.ResultSetScrollInsensitive
	case "SCROLL_SENSITIVE":
		return mapping.ResultSetScrollSensitive
	default:
		return mapping.ResultSetDefault
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

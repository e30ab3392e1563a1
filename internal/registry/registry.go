// Package registry owns the namespace-qualified catalog of mapping
// descriptors assembled during the load phase: statements, result maps,
// parameter maps and namespace caches, plus the pending sets of declarations
// deferred on unresolved references.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dengquanbo/gobatis/internal/cache"
	"github.com/dengquanbo/gobatis/internal/mapping"
)

// IncompleteError signals that a declaration referenced a dependency that is
// not registered yet. It is not a failure: the declaration is parked in a
// pending set and retried at the next resolution checkpoint. It escalates to
// a fatal configuration error only when it survives the final pass.
type IncompleteError struct {
	Ref    string
	Reason string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("unresolved reference to %q: %s", e.Ref, e.Reason)
}

// Incomplete builds the deferred-resolution signal for a reference.
func Incomplete(ref, reason string) *IncompleteError {
	return &IncompleteError{Ref: ref, Reason: reason}
}

// IsIncomplete checks whether err is a deferred-resolution signal.
func IsIncomplete(err error) bool {
	var ie *IncompleteError
	return errors.As(err, &ie)
}

// Resolver is a deferred unit of registration work retried until its
// dependencies become available.
type Resolver interface {
	// Resolve retries the registration. An IncompleteError keeps the
	// resolver pending; any other error is fatal.
	Resolve() error

	// Describe names the deferred declaration for dangling-reference
	// reports.
	Describe() string
}

// Registry is the catalog consulted at execution time. Writes happen on the
// single loading goroutine; lookups after the load phase are read-mostly and
// never block each other.
type Registry struct {
	mu            sync.RWMutex
	settings      Settings
	aliases       *TypeAliases
	statements    map[string]*mapping.MappedStatement
	resultMaps    map[string]*mapping.ResultMap
	parameterMaps map[string]*mapping.ParameterMap
	caches        map[string]cache.Cache
	resources     map[string]struct{}

	pendingMu            sync.Mutex
	incompleteResultMaps []Resolver
	incompleteCacheRefs  []Resolver
	incompleteStatements []Resolver
}

// New creates an empty registry with default settings.
func New() *Registry {
	return NewWithSettings(DefaultSettings())
}

// NewWithSettings creates an empty registry.
func NewWithSettings(settings Settings) *Registry {
	return &Registry{
		settings:      settings,
		aliases:       NewTypeAliases(),
		statements:    make(map[string]*mapping.MappedStatement),
		resultMaps:    make(map[string]*mapping.ResultMap),
		parameterMaps: make(map[string]*mapping.ParameterMap),
		caches:        make(map[string]cache.Cache),
		resources:     make(map[string]struct{}),
	}
}

// Settings returns the global configuration settings.
func (r *Registry) Settings() Settings {
	return r.settings
}

// Aliases returns the type-alias registry.
func (r *Registry) Aliases() *TypeAliases {
	return r.aliases
}

// AddStatement registers a mapped statement. Duplicate ids are rejected and
// the first registration stays intact.
func (r *Registry) AddStatement(stmt *mapping.MappedStatement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.statements[stmt.ID]; exists {
		return fmt.Errorf("mapped statement %s is already registered", stmt.ID)
	}
	r.statements[stmt.ID] = stmt
	return nil
}

// Statement retrieves a mapped statement by fully-qualified id.
func (r *Registry) Statement(id string) (*mapping.MappedStatement, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stmt, ok := r.statements[id]
	return stmt, ok
}

// HasStatement checks whether a statement id is registered.
func (r *Registry) HasStatement(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.statements[id]
	return ok
}

// StatementIDs lists the registered statement ids.
func (r *Registry) StatementIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.statements))
	for id := range r.statements {
		ids = append(ids, id)
	}
	return ids
}

// ResultMapsFor returns the ordered result maps of a statement.
func (r *Registry) ResultMapsFor(statementID string) ([]*mapping.ResultMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stmt, ok := r.statements[statementID]
	if !ok {
		return nil, false
	}
	return stmt.ResultMaps, true
}

// AddResultMap registers a result map. Duplicate ids are rejected.
func (r *Registry) AddResultMap(rm *mapping.ResultMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resultMaps[rm.ID]; exists {
		return fmt.Errorf("result map %s is already registered", rm.ID)
	}
	r.resultMaps[rm.ID] = rm
	return nil
}

// ResultMap retrieves a result map by fully-qualified id.
func (r *Registry) ResultMap(id string) (*mapping.ResultMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.resultMaps[id]
	return rm, ok
}

// HasResultMap checks whether a result-map id is registered.
func (r *Registry) HasResultMap(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resultMaps[id]
	return ok
}

// ResultMapIDs lists the registered result-map ids.
func (r *Registry) ResultMapIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.resultMaps))
	for id := range r.resultMaps {
		ids = append(ids, id)
	}
	return ids
}

// AddParameterMap registers a parameter map. Duplicate ids are rejected.
func (r *Registry) AddParameterMap(pm *mapping.ParameterMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parameterMaps[pm.ID]; exists {
		return fmt.Errorf("parameter map %s is already registered", pm.ID)
	}
	r.parameterMaps[pm.ID] = pm
	return nil
}

// ParameterMap retrieves a parameter map by fully-qualified id.
func (r *Registry) ParameterMap(id string) (*mapping.ParameterMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pm, ok := r.parameterMaps[id]
	return pm, ok
}

// AddCache registers a namespace cache. Duplicate namespaces are rejected.
func (r *Registry) AddCache(c cache.Cache) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caches[c.ID()]; exists {
		return fmt.Errorf("cache for namespace %s is already registered", c.ID())
	}
	r.caches[c.ID()] = c
	return nil
}

// Cache retrieves the cache bound to a namespace. Namespaces that declared a
// cache-ref share the referenced namespace's instance.
func (r *Registry) Cache(namespace string) (cache.Cache, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[namespace]
	return c, ok
}

// CacheNamespaces lists the namespaces with a registered cache.
func (r *Registry) CacheNamespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	namespaces := make([]string, 0, len(r.caches))
	for ns := range r.caches {
		namespaces = append(namespaces, ns)
	}
	return namespaces
}

// AddLoadedResource marks a mapper source as processed.
func (r *Registry) AddLoadedResource(resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[resource] = struct{}{}
}

// IsResourceLoaded checks whether a mapper source was already processed.
func (r *Registry) IsResourceLoaded(resource string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resources[resource]
	return ok
}

// AddIncompleteResultMap parks a result-map resolver for retry.
func (r *Registry) AddIncompleteResultMap(resolver Resolver) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	r.incompleteResultMaps = append(r.incompleteResultMaps, resolver)
}

// AddIncompleteCacheRef parks a cache-ref resolver for retry.
func (r *Registry) AddIncompleteCacheRef(resolver Resolver) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	r.incompleteCacheRefs = append(r.incompleteCacheRefs, resolver)
}

// AddIncompleteStatement parks a statement resolver for retry.
func (r *Registry) AddIncompleteStatement(resolver Resolver) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	r.incompleteStatements = append(r.incompleteStatements, resolver)
}

// PendingCount reports how many declarations are still deferred.
func (r *Registry) PendingCount() int {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	return len(r.incompleteResultMaps) + len(r.incompleteCacheRefs) + len(r.incompleteStatements)
}

// ResolvePending runs one resolution pass over each pending set, in
// dependency order: result maps, cache-refs, statements. Called after each
// mapper source is processed and again at the end of the load. Successes
// leave their set, IncompleteErrors stay for a later pass, anything else is
// fatal.
func (r *Registry) ResolvePending() error {
	_, err := r.resolvePass()
	return err
}

func (r *Registry) resolvePass() (int, error) {
	progress := 0
	for _, pending := range []*[]Resolver{
		&r.incompleteResultMaps,
		&r.incompleteCacheRefs,
		&r.incompleteStatements,
	} {
		r.pendingMu.Lock()
		batch := *pending
		*pending = nil
		r.pendingMu.Unlock()

		var remaining []Resolver
		for _, resolver := range batch {
			err := resolver.Resolve()
			switch {
			case err == nil:
				progress++
			case IsIncomplete(err):
				remaining = append(remaining, resolver)
			default:
				return progress, err
			}
		}

		r.pendingMu.Lock()
		*pending = append(remaining, *pending...)
		r.pendingMu.Unlock()
	}
	return progress, nil
}

// FinishLoad drives the pending sets to a fixed point: passes repeat while
// they make progress, and whatever survives a zero-progress pass is a fatal
// dangling reference.
func (r *Registry) FinishLoad() error {
	for {
		progress, err := r.resolvePass()
		if err != nil {
			return err
		}
		if progress == 0 {
			break
		}
	}

	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	var dangling []string
	for _, set := range [][]Resolver{
		r.incompleteResultMaps,
		r.incompleteCacheRefs,
		r.incompleteStatements,
	} {
		for _, resolver := range set {
			dangling = append(dangling, resolver.Describe())
		}
	}
	if len(dangling) > 0 {
		return fmt.Errorf("unresolved declarations after final pass: %v", dangling)
	}
	return nil
}

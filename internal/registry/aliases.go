package registry

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// TypeAliases maps short declaration names to Go types so mapper documents
// can say "int64" or a registered entity alias instead of a package path.
// Lookups are case-insensitive.
type TypeAliases struct {
	mu      sync.RWMutex
	aliases map[string]reflect.Type
}

// NewTypeAliases creates an alias registry pre-seeded with the builtin
// scalar and collection aliases.
func NewTypeAliases() *TypeAliases {
	a := &TypeAliases{aliases: make(map[string]reflect.Type)}
	builtins := map[string]reflect.Type{
		"string":  reflect.TypeOf(""),
		"int":     reflect.TypeOf(int(0)),
		"int32":   reflect.TypeOf(int32(0)),
		"int64":   reflect.TypeOf(int64(0)),
		"float32": reflect.TypeOf(float32(0)),
		"float64": reflect.TypeOf(float64(0)),
		"bool":    reflect.TypeOf(false),
		"bytes":   reflect.TypeOf([]byte(nil)),
		"time":    reflect.TypeOf(time.Time{}),
		"map":     reflect.TypeOf(map[string]any(nil)),
		"slice":   reflect.TypeOf([]any(nil)),
		"any":     reflect.TypeOf((*any)(nil)).Elem(),
	}
	for name, t := range builtins {
		a.aliases[name] = t
	}
	return a
}

// Register binds name to t. Re-registering the same name with a different
// type is a hard error.
func (a *TypeAliases) Register(name string, t reflect.Type) error {
	if name == "" {
		return fmt.Errorf("type alias requires a name")
	}
	key := strings.ToLower(name)
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.aliases[key]; ok && existing != t {
		return fmt.Errorf("type alias %q is already registered for %s", name, existing)
	}
	a.aliases[key] = t
	return nil
}

// RegisterFor binds name to the type parameter's type.
func RegisterFor[T any](a *TypeAliases, name string) error {
	return a.Register(name, reflect.TypeOf((*T)(nil)).Elem())
}

// Resolve returns the type bound to name.
func (a *TypeAliases) Resolve(name string) (reflect.Type, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.aliases[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown type alias %q", name)
	}
	return t, nil
}

// Has checks whether name is registered.
func (a *TypeAliases) Has(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.aliases[strings.ToLower(name)]
	return ok
}

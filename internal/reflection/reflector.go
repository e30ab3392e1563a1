// Package reflection resolves and caches property accessors for mapped
// types. Metadata for a type is computed once, memoized for the process
// lifetime and shared by all mapping operations.
package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ReflectionError marks a type whose accessor declarations cannot be
// reconciled. It is fatal and never retried: a type that fails metadata
// resolution once fails identically on every subsequent lookup.
type ReflectionError struct {
	msg string
}

func (e *ReflectionError) Error() string {
	return e.msg
}

func reflectionErrorf(format string, args ...any) *ReflectionError {
	return &ReflectionError{msg: fmt.Sprintf(format, args...)}
}

// IsReflectionError checks whether err is an accessor-resolution failure.
func IsReflectionError(err error) bool {
	var re *ReflectionError
	return errors.As(err, &re)
}

// ClassMetadata is the cached accessor set for one struct type: property
// getters and setters (method-backed where declared, field-backed
// otherwise), their types, and a case-insensitive name index.
type ClassMetadata struct {
	typ             reflect.Type
	getters         map[string]Invoker
	setters         map[string]Invoker
	getTypes        map[string]reflect.Type
	setTypes        map[string]reflect.Type
	gettableNames   []string
	settableNames   []string
	caseInsensitive map[string]string
}

// NewClassMetadata resolves accessor metadata for t, which must be a struct
// type or a pointer to one. Ambiguous accessor declarations are a hard
// error.
func NewClassMetadata(t reflect.Type) (*ClassMetadata, error) {
	if t == nil {
		return nil, reflectionErrorf("cannot resolve metadata for nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, reflectionErrorf("cannot resolve metadata for non-struct type %s", t)
	}

	m := &ClassMetadata{
		typ:             t,
		getters:         make(map[string]Invoker),
		setters:         make(map[string]Invoker),
		getTypes:        make(map[string]reflect.Type),
		setTypes:        make(map[string]reflect.Type),
		caseInsensitive: make(map[string]string),
	}
	if err := m.addGetMethods(); err != nil {
		return nil, err
	}
	if err := m.addSetMethods(); err != nil {
		return nil, err
	}
	m.addFields(t, nil)

	for name := range m.getters {
		m.gettableNames = append(m.gettableNames, name)
		m.caseInsensitive[strings.ToUpper(name)] = name
	}
	for name := range m.setters {
		m.settableNames = append(m.settableNames, name)
		m.caseInsensitive[strings.ToUpper(name)] = name
	}
	return m, nil
}

// Type returns the struct type this metadata describes.
func (m *ClassMetadata) Type() reflect.Type {
	return m.typ
}

// allMethods collects the pointer method set, which subsumes the value
// method set and already deduplicates promoted methods by name.
func (m *ClassMetadata) allMethods() []reflect.Method {
	pt := reflect.PointerTo(m.typ)
	methods := make([]reflect.Method, 0, pt.NumMethod())
	for i := 0; i < pt.NumMethod(); i++ {
		methods = append(methods, pt.Method(i))
	}
	return methods
}

func (m *ClassMetadata) addGetMethods() error {
	// A property can attract both a GetX and an IsX accessor; collect all
	// candidates first and reconcile per property.
	conflicting := make(map[string][]reflect.Method)
	for _, method := range m.allMethods() {
		// method.Func's first input is the receiver.
		if method.Type.NumIn() != 1 || method.Type.NumOut() != 1 {
			continue
		}
		name, ok := getterProperty(method.Name)
		if !ok {
			continue
		}
		conflicting[name] = append(conflicting[name], method)
	}
	for name, candidates := range conflicting {
		winner, err := resolveGetterConflict(m.typ, name, candidates)
		if err != nil {
			return err
		}
		m.getters[name] = &methodInvoker{method: winner, typ: winner.Type.Out(0)}
		m.getTypes[name] = winner.Type.Out(0)
	}
	return nil
}

func resolveGetterConflict(t reflect.Type, property string, candidates []reflect.Method) (reflect.Method, error) {
	winner := candidates[0]
	for _, candidate := range candidates[1:] {
		winnerType := winner.Type.Out(0)
		candidateType := candidate.Type.Out(0)
		switch {
		case candidateType == winnerType:
			if candidateType.Kind() != reflect.Bool {
				return reflect.Method{}, reflectionErrorf(
					"illegal overloaded getter with ambiguous type for property %s of %s", property, t)
			}
			if strings.HasPrefix(candidate.Name, "Is") {
				winner = candidate
			}
		case winnerType.AssignableTo(candidateType):
			// winner is the more specific type, keep it
		case candidateType.AssignableTo(winnerType):
			winner = candidate
		default:
			return reflect.Method{}, reflectionErrorf(
				"illegal overloaded getter with ambiguous type for property %s of %s", property, t)
		}
	}
	return winner, nil
}

func (m *ClassMetadata) addSetMethods() error {
	conflicting := make(map[string][]reflect.Method)
	for _, method := range m.allMethods() {
		if method.Type.NumIn() != 2 || method.Type.NumOut() != 0 {
			continue
		}
		name, ok := setterProperty(method.Name)
		if !ok {
			continue
		}
		conflicting[name] = append(conflicting[name], method)
	}
	for name, candidates := range conflicting {
		winner, err := m.resolveSetterConflict(name, candidates)
		if err != nil {
			return err
		}
		m.setters[name] = &methodInvoker{method: winner, typ: winner.Type.In(1)}
		m.setTypes[name] = winner.Type.In(1)
	}
	return nil
}

func (m *ClassMetadata) resolveSetterConflict(property string, candidates []reflect.Method) (reflect.Method, error) {
	getterType := m.getTypes[property]
	var match *reflect.Method
	var ambiguity error
	for i := range candidates {
		candidate := candidates[i]
		paramType := candidate.Type.In(1)
		if getterType != nil && paramType == getterType {
			// exact match with the resolved getter wins outright
			return candidate, nil
		}
		if ambiguity == nil {
			better, err := pickBetterSetter(match, &candidate, property, m.typ)
			if err != nil {
				match = nil
				ambiguity = err
				continue
			}
			match = better
		}
	}
	if match == nil {
		return reflect.Method{}, ambiguity
	}
	return *match, nil
}

func pickBetterSetter(current, candidate *reflect.Method, property string, t reflect.Type) (*reflect.Method, error) {
	if current == nil {
		return candidate, nil
	}
	currentType := current.Type.In(1)
	candidateType := candidate.Type.In(1)
	if candidateType.AssignableTo(currentType) {
		return candidate, nil
	}
	if currentType.AssignableTo(candidateType) {
		return current, nil
	}
	return nil, reflectionErrorf(
		"ambiguous setters for property %s of %s with types %s and %s",
		property, t, currentType, candidateType)
}

// addFields registers field-backed accessors for properties not covered by
// methods, recursing through embedded structs. Outer declarations shadow
// promoted ones because they are registered first.
func (m *ClassMetadata) addFields(t reflect.Type, index []int) {
	type embedded struct {
		t     reflect.Type
		index []int
	}
	var nested []embedded

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldIndex := append(append([]int(nil), index...), i)
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				nested = append(nested, embedded{t: ft, index: fieldIndex})
			}
			continue
		}
		if !isValidPropertyName(field.Name) || field.PkgPath != "" {
			continue
		}
		if _, ok := m.setters[field.Name]; !ok {
			m.setters[field.Name] = &setFieldInvoker{index: fieldIndex, typ: field.Type}
			m.setTypes[field.Name] = field.Type
		}
		if _, ok := m.getters[field.Name]; !ok {
			m.getters[field.Name] = &getFieldInvoker{index: fieldIndex, typ: field.Type}
			m.getTypes[field.Name] = field.Type
		}
	}

	for _, n := range nested {
		m.addFields(n.t, n.index)
	}
}

// isValidPropertyName filters out padding fields and generated internals.
func isValidPropertyName(name string) bool {
	return name != "_" && !strings.HasPrefix(name, "XXX_")
}

// GetInvoker returns the getter for property.
func (m *ClassMetadata) GetInvoker(property string) (Invoker, error) {
	invoker, ok := m.getters[property]
	if !ok {
		return nil, reflectionErrorf("no getter for property %q in %s", property, m.typ)
	}
	return invoker, nil
}

// SetInvoker returns the setter for property.
func (m *ClassMetadata) SetInvoker(property string) (Invoker, error) {
	invoker, ok := m.setters[property]
	if !ok {
		return nil, reflectionErrorf("no setter for property %q in %s", property, m.typ)
	}
	return invoker, nil
}

// GetterType returns the type read by the property getter.
func (m *ClassMetadata) GetterType(property string) (reflect.Type, error) {
	t, ok := m.getTypes[property]
	if !ok {
		return nil, reflectionErrorf("no getter for property %q in %s", property, m.typ)
	}
	return t, nil
}

// SetterType returns the type accepted by the property setter.
func (m *ClassMetadata) SetterType(property string) (reflect.Type, error) {
	t, ok := m.setTypes[property]
	if !ok {
		return nil, reflectionErrorf("no setter for property %q in %s", property, m.typ)
	}
	return t, nil
}

// HasGetter reports whether property is readable.
func (m *ClassMetadata) HasGetter(property string) bool {
	_, ok := m.getters[property]
	return ok
}

// HasSetter reports whether property is writable.
func (m *ClassMetadata) HasSetter(property string) bool {
	_, ok := m.setters[property]
	return ok
}

// GettableNames returns the readable property names.
func (m *ClassMetadata) GettableNames() []string {
	return m.gettableNames
}

// SettableNames returns the writable property names.
func (m *ClassMetadata) SettableNames() []string {
	return m.settableNames
}

// FindProperty resolves a property name case-insensitively, returning the
// canonical name and whether it exists.
func (m *ClassMetadata) FindProperty(name string) (string, bool) {
	canonical, ok := m.caseInsensitive[strings.ToUpper(name)]
	return canonical, ok
}

// NewInstance allocates a new addressable instance of the described type.
func (m *ClassMetadata) NewInstance() any {
	return reflect.New(m.typ).Interface()
}

// getterProperty extracts the property name from a GetX/IsX method name.
func getterProperty(name string) (string, bool) {
	if strings.HasPrefix(name, "Get") && len(name) > 3 {
		return name[3:], true
	}
	if strings.HasPrefix(name, "Is") && len(name) > 2 {
		return name[2:], true
	}
	return "", false
}

// setterProperty extracts the property name from a SetX method name.
func setterProperty(name string) (string, bool) {
	if strings.HasPrefix(name, "Set") && len(name) > 3 {
		return name[3:], true
	}
	return "", false
}

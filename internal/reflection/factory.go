package reflection

import (
	"reflect"
)

// ObjectFactory creates instances of mapped types for result binding.
type ObjectFactory interface {
	// Create allocates a new instance of t. Struct types are returned as
	// pointers so their fields are settable.
	Create(t reflect.Type) (any, error)
}

// DefaultObjectFactory allocates through reflection, with usable defaults
// for collection kinds.
type DefaultObjectFactory struct{}

// NewObjectFactory returns the default factory.
func NewObjectFactory() *DefaultObjectFactory {
	return &DefaultObjectFactory{}
}

// Create allocates a new instance of t.
func (f *DefaultObjectFactory) Create(t reflect.Type) (any, error) {
	if t == nil {
		return nil, reflectionErrorf("cannot instantiate nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return reflect.New(t).Interface(), nil
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), nil
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface(), nil
	case reflect.Interface:
		// the conventional default for untyped result rows
		return map[string]any{}, nil
	default:
		return reflect.New(t).Elem().Interface(), nil
	}
}

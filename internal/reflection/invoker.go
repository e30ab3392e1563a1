package reflection

import (
	"fmt"
	"reflect"
)

// Invoker is a resolved property accessor: either a method or a direct field
// access, uniform from the caller's point of view.
type Invoker interface {
	// Invoke reads (getters, no args) or writes (setters, one arg) the
	// property on target.
	Invoke(target any, args ...any) (any, error)

	// Type returns the property type the accessor reads or writes.
	Type() reflect.Type
}

// methodInvoker calls an accessor method. The method is taken from the
// pointer method set, so value receivers work through an implicit address.
type methodInvoker struct {
	method reflect.Method
	typ    reflect.Type
}

func (m *methodInvoker) Invoke(target any, args ...any) (any, error) {
	receiver := reflect.ValueOf(target)
	if receiver.Kind() != reflect.Pointer {
		addr := reflect.New(receiver.Type())
		addr.Elem().Set(receiver)
		receiver = addr
	}
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, receiver)
	for _, arg := range args {
		in = append(in, reflect.ValueOf(arg))
	}
	out := m.method.Func.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func (m *methodInvoker) Type() reflect.Type {
	return m.typ
}

// getFieldInvoker reads a (possibly promoted) struct field directly.
type getFieldInvoker struct {
	index []int
	typ   reflect.Type
}

func (g *getFieldInvoker) Invoke(target any, args ...any) (any, error) {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	field, err := v.FieldByIndexErr(g.index)
	if err != nil {
		// Promoted field reached through a nil embedded pointer.
		return nil, fmt.Errorf("cannot read field: %w", err)
	}
	return field.Interface(), nil
}

func (g *getFieldInvoker) Type() reflect.Type {
	return g.typ
}

// setFieldInvoker writes a (possibly promoted) struct field directly. The
// target must be a pointer so the write is visible to the caller.
type setFieldInvoker struct {
	index []int
	typ   reflect.Type
}

func (s *setFieldInvoker) Invoke(target any, args ...any) (any, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("cannot set field on non-pointer value of type %T", target)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("field setter expects exactly one argument, got %d", len(args))
	}
	field := v.Elem()
	for i, idx := range s.index {
		if i > 0 && field.Kind() == reflect.Pointer {
			// Allocate nil embedded pointers on the way down so promoted
			// fields stay settable.
			if field.IsNil() {
				if !field.CanSet() {
					return nil, fmt.Errorf("cannot allocate nil embedded %s", field.Type())
				}
				field.Set(reflect.New(field.Type().Elem()))
			}
			field = field.Elem()
		}
		field = field.Field(idx)
	}
	arg := reflect.ValueOf(args[0])
	if !arg.Type().AssignableTo(field.Type()) {
		return nil, fmt.Errorf("cannot assign %s to field of type %s", arg.Type(), field.Type())
	}
	field.Set(arg)
	return nil, nil
}

func (s *setFieldInvoker) Type() reflect.Type {
	return s.typ
}

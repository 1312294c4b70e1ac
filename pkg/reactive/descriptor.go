package reactive

import (
	"fmt"
	"reflect"
)

// Field is the type-erased view of a Descriptor used by code that walks an
// entity's schema (serialization, inspection).
// It can only be implemented by this package.
type Field interface {
	// Name is the property name, unique within its owner kind.
	Name() string
	// Owner is the entity kind that declares the property.
	Owner() string
	// ValueType is the Go type of the property's values.
	ValueType() reflect.Type
	// DefaultValue builds a fresh default value.
	DefaultValue() any
	// Accepts reports whether v can be stored without conversion.
	Accepts(v any) bool

	assign(s *Store, v any) bool
	read(s *Store) any
}

// Descriptor declares a typed property of an entity kind.
type Descriptor[T any] struct {
	name       string
	owner      string
	newDefault func() T
	equal      func(a, b T) bool
}

// DescriptorOption customizes a Descriptor at definition time.
type DescriptorOption[T any] func(*Descriptor[T])

// WithEqual replaces the equality used to suppress redundant writes.
func WithEqual[T any](eq func(a, b T) bool) DescriptorOption[T] {
	return func(d *Descriptor[T]) {
		d.equal = eq
	}
}

// Define declares a property named name on the owner kind.
// newDefault may be nil, in which case the zero value is the default.
func Define[T any](owner, name string, newDefault func() T, opts ...DescriptorOption[T]) *Descriptor[T] {
	if newDefault == nil {
		newDefault = func() T {
			var zero T
			return zero
		}
	}
	d := &Descriptor[T]{
		name:       name,
		owner:      owner,
		newDefault: newDefault,
		equal:      Equal[T],
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Descriptor[T]) Name() string  { return d.name }
func (d *Descriptor[T]) Owner() string { return d.owner }

func (d *Descriptor[T]) ValueType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (d *Descriptor[T]) DefaultValue() any {
	return d.newDefault()
}

func (d *Descriptor[T]) Accepts(v any) bool {
	if v == nil {
		return nillable(d.ValueType())
	}
	_, ok := v.(T)
	return ok
}

func (d *Descriptor[T]) String() string {
	return fmt.Sprintf("%s.%s", d.owner, d.name)
}

func (d *Descriptor[T]) assign(s *Store, v any) bool {
	if v == nil {
		var zero T
		return Set(s, d, zero)
	}
	return Set(s, d, v.(T))
}

func (d *Descriptor[T]) read(s *Store) any {
	return Get(s, d)
}

// Equal is the default write-suppression equality: == for comparable dynamic
// types, reflect.DeepEqual otherwise.
func Equal[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	ta := reflect.TypeOf(av)
	if ta != reflect.TypeOf(bv) {
		return false
	}
	if ta.Comparable() {
		return av == bv
	}
	return reflect.DeepEqual(av, bv)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

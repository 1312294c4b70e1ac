package codec

import (
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/google/uuid"
)

// Class tells the codec how a field is represented.
type Class int

const (
	LeafClass Class = iota
	NestedClass
	ReferenceClass
	CollectionClass
	ReferencesClass
)

func (c Class) String() string {
	switch c {
	case LeafClass:
		return "leaf"
	case NestedClass:
		return "nested"
	case ReferenceClass:
		return "reference"
	case CollectionClass:
		return "collection"
	case ReferencesClass:
		return "references"
	default:
		return "unknown"
	}
}

// Field is one entry of a kind's field table: a name and a get/set pair.
// Build fields with Leaf, Value, Nested, Reference, Collection and References.
type Field struct {
	Name  string
	Class Class

	get func(Entity) any
	set func(Entity, any) error
}

// Leaf exposes a reactive descriptor as a leaf field.
// Decoded values go through Store.Assign and its type check.
func Leaf(f reactive.Field) Field {
	return Field{
		Name:  f.Name(),
		Class: LeafClass,
		get: func(e Entity) any {
			return e.Store().Value(f)
		},
		set: func(e Entity, v any) error {
			_, err := e.Store().Assign(f, v)
			return err
		},
	}
}

// Value is a leaf field with custom accessors, for values whose type is only
// known at run time. A nil value is not emitted.
func Value[E Entity](name string, get func(E) any, set func(E, any) error) Field {
	return Field{
		Name:  name,
		Class: LeafClass,
		get:   func(e Entity) any { return get(e.(E)) },
		set:   func(e Entity, v any) error { return set(e.(E), v) },
	}
}

// Nested is an owned entity emitted inline.
func Nested[E, C Entity](name string, get func(E) (C, bool), set func(E, C) error) Field {
	return Field{
		Name:  name,
		Class: NestedClass,
		get: func(e Entity) any {
			c, ok := get(e.(E))
			if !ok {
				return nil
			}
			return Entity(c)
		},
		set: func(e Entity, v any) error {
			c, ok := v.(C)
			if !ok {
				return errWrongEntity(name, v)
			}
			return set(e.(E), c)
		},
	}
}

// Reference is a deferred pointer emitted as a Ref element.
// The empty identifier is not emitted.
func Reference[E Entity](name string, get func(E) uuid.UUID, set func(E, uuid.UUID) error) Field {
	return Field{
		Name:  name,
		Class: ReferenceClass,
		get:   func(e Entity) any { return get(e.(E)) },
		set:   func(e Entity, v any) error { return set(e.(E), v.(uuid.UUID)) },
	}
}

// Collection is an ordered list of owned entities.
func Collection[E, C Entity](name string, get func(E) []C, set func(E, []C) error) Field {
	return Field{
		Name:  name,
		Class: CollectionClass,
		get: func(e Entity) any {
			items := get(e.(E))
			out := make([]Entity, len(items))
			for i, item := range items {
				out[i] = item
			}
			return out
		},
		set: func(e Entity, v any) error {
			items := v.([]Entity)
			out := make([]C, 0, len(items))
			for _, item := range items {
				c, ok := item.(C)
				if !ok {
					return errWrongEntity(name, item)
				}
				out = append(out, c)
			}
			return set(e.(E), out)
		},
	}
}

// References is an ordered list of deferred pointers.
func References[E Entity](name string, get func(E) []uuid.UUID, set func(E, []uuid.UUID) error) Field {
	return Field{
		Name:  name,
		Class: ReferencesClass,
		get:   func(e Entity) any { return get(e.(E)) },
		set:   func(e Entity, v any) error { return set(e.(E), v.([]uuid.UUID)) },
	}
}

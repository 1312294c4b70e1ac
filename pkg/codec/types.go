package codec

import (
	"errors"
	"reflect"

	"github.com/aretw0/weft/pkg/identity"
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/google/uuid"
)

var (
	// ErrUnknownKind is returned when an entity has no registered kind.
	ErrUnknownKind = errors.New("unknown entity kind")
	// ErrMalformed is returned for elements that do not follow the document
	// structure.
	ErrMalformed = errors.New("malformed element")
)

// Entity is anything the codec can walk.
type Entity interface {
	identity.Identifiable
	Store() *reactive.Store
}

// Kind is the static description of one entity type.
type Kind struct {
	Name   string
	New    func(id uuid.UUID) Entity
	Fields []Field
}

// Types holds the entity kinds and leaf value types a document may mention.
type Types struct {
	kinds      map[string]*Kind
	kindByType map[reflect.Type]*Kind
	values     map[string]reflect.Type
	valueNames map[reflect.Type]string
}

// NewTypes returns a registry holding the built-in value types:
// string, int, float (float64), bool and list ([]any).
func NewTypes() *Types {
	t := &Types{
		kinds:      make(map[string]*Kind),
		kindByType: make(map[reflect.Type]*Kind),
		values:     make(map[string]reflect.Type),
		valueNames: make(map[reflect.Type]string),
	}
	RegisterValue[string](t, "string")
	RegisterValue[int](t, "int")
	RegisterValue[float64](t, "float")
	RegisterValue[bool](t, "bool")
	RegisterValue[[]any](t, "list")
	return t
}

// RegisterKind registers the entity type E under name.
// newFn builds an empty entity with the identifier read from a document.
func RegisterKind[E Entity](t *Types, name string, newFn func(id uuid.UUID) E, fields ...Field) {
	k := &Kind{
		Name:   name,
		New:    func(id uuid.UUID) Entity { return newFn(id) },
		Fields: fields,
	}
	t.kinds[name] = k
	t.kindByType[reflect.TypeOf((*E)(nil)).Elem()] = k
}

// RegisterValue registers the leaf value type T under name.
func RegisterValue[T any](t *Types, name string) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	t.values[name] = rt
	t.valueNames[rt] = name
}

// Kind returns the kind registered under name.
func (t *Types) Kind(name string) (*Kind, bool) {
	k, ok := t.kinds[name]
	return k, ok
}

// KindOf returns the kind of e.
func (t *Types) KindOf(e Entity) (*Kind, bool) {
	k, ok := t.kindByType[reflect.TypeOf(e)]
	return k, ok
}

// ValueType returns the Go type registered under name.
func (t *Types) ValueType(name string) (reflect.Type, bool) {
	rt, ok := t.values[name]
	return rt, ok
}

// ValueName returns the registered name of v's dynamic type.
func (t *Types) ValueName(v any) (string, bool) {
	name, ok := t.valueNames[reflect.TypeOf(v)]
	return name, ok
}

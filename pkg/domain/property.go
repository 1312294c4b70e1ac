package domain

import (
	"fmt"
	"slices"

	"github.com/aretw0/weft/pkg/identity"
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/google/uuid"
)

const propertyKind = "weft.Property"

// Direction tells inputs from outputs.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "Output"
	}
	return "Input"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Input", "input":
		*d = Input
	case "Output", "output":
		*d = Output
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Property fields.
var (
	PropertyName            = reactive.Define[string](propertyKind, "Name", nil)
	PropertyDirection       = reactive.Define[Direction](propertyKind, "Direction", nil)
	PropertyValueType       = reactive.Define[string](propertyKind, "ValueType", nil)
	PropertyValue           = reactive.Define[any](propertyKind, "Value", nil)
	PropertyConnectionCount = reactive.Define[int](propertyKind, "ConnectionCount", nil)
)

// PropertyNode holds the owning node.
var PropertyNode = reactive.Define(propertyKind, "Node", emptyNodeRef,
	reactive.WithEqual(identity.SameTarget[*Node]))

// Property is a typed value slot on a node.
type Property struct {
	id    uuid.UUID
	graph *Graph
	store *reactive.Store
	typ   schema.Type

	peers     []*Property
	transform func(any) any

	// peer identifiers read from a document, linked by Load
	pending []uuid.UUID
}

// PropertyOption configures a property at creation.
type PropertyOption func(*Property)

// WithTransform sets the function applied to every value written.
func WithTransform(fn func(any) any) PropertyOption {
	return func(p *Property) { p.SetTransform(fn) }
}

func identityTransform(v any) any { return v }

func (g *Graph) newProperty(id uuid.UUID, name string, dir Direction, typ schema.Type, initial any, opts ...PropertyOption) *Property {
	p := g.emptyProperty(id)
	p.SetName(name)
	reactive.Set(p.store, PropertyDirection, dir)
	p.setType(typ)
	for _, opt := range opts {
		opt(p)
	}
	reactive.Set(p.store, PropertyValue, p.typ.Zero())
	if initial != nil {
		p.SetValue(initial)
	}
	return p
}

// emptyProperty is the decode constructor.
func (g *Graph) emptyProperty(id uuid.UUID) *Property {
	p := &Property{
		id:        id,
		graph:     g,
		typ:       schema.Opaque("any"),
		transform: identityTransform,
	}
	p.store = reactive.NewStore(p, g.logger)
	reactive.Subscribe(p.store, PropertyValue, func(c reactive.ChangeOf[any]) {
		g.emitValue(&ValueEvent{Property: p, OldValue: c.OldValue, NewValue: c.NewValue})
		p.propagate()
	})
	reactive.Subscribe(p.store, PropertyConnectionCount, func(reactive.ChangeOf[int]) {
		p.propagate()
	})
	g.registry.Register(p)
	return p
}

func (p *Property) ID() uuid.UUID          { return p.id }
func (p *Property) SetID(id uuid.UUID)     { p.id = id }
func (p *Property) Store() *reactive.Store { return p.store }
func (p *Property) Name() string           { return reactive.Get(p.store, PropertyName) }
func (p *Property) SetName(s string)       { reactive.Set(p.store, PropertyName, s) }
func (p *Property) Direction() Direction   { return reactive.Get(p.store, PropertyDirection) }
func (p *Property) Type() schema.Type      { return p.typ }
func (p *Property) Value() any             { return reactive.Get(p.store, PropertyValue) }
func (p *Property) ConnectionCount() int   { return reactive.Get(p.store, PropertyConnectionCount) }
func (p *Property) Peers() []*Property     { return slices.Clone(p.peers) }

// IsConnected reports whether p and other are linked.
func (p *Property) IsConnected(other *Property) bool {
	return slices.Contains(p.peers, other)
}

// Node resolves the owning node.
func (p *Property) Node() (*Node, bool) {
	return reactive.Get(p.store, PropertyNode).Resolve(p.graph.registry)
}

func (p *Property) setNode(n *Node) {
	reactive.Set(p.store, PropertyNode, identity.RefTo(n))
}

func (p *Property) setType(typ schema.Type) {
	if typ == nil {
		typ = schema.Opaque("any")
	}
	p.typ = typ
	reactive.Set(p.store, PropertyValueType, typ.Name())
}

// setTypeName resolves a persisted type name. Names the graph does not know
// become opaque types so the value survives a round trip.
func (p *Property) setTypeName(name string) error {
	typ, err := p.graph.types.Parse(name)
	if err != nil {
		p.graph.logger.Warn("unknown property value type", "property", p.path(), "type", name)
		typ = schema.Opaque(name)
	}
	p.setType(typ)
	return nil
}

// SetTransform replaces the write transform. A nil fn restores identity.
func (p *Property) SetTransform(fn func(any) any) {
	if fn == nil {
		fn = identityTransform
	}
	p.transform = fn
}

// SetValue runs v through the transform and stores the result if it fits the
// property's type. Values that do not fit are logged and dropped, except
// that string properties store the string form of anything. It reports
// whether the stored value changed.
func (p *Property) SetValue(v any) bool {
	v = p.transform(v)
	converted, err := p.coerce(v)
	if err != nil {
		p.graph.logger.Warn("dropping property write",
			"property", p.path(),
			"type", p.typ.Name(),
			"got", fmt.Sprintf("%T", v),
			"error", err,
		)
		return false
	}
	return reactive.Set(p.store, PropertyValue, converted)
}

func (p *Property) coerce(v any) (any, error) {
	if v == nil {
		return p.typ.Zero(), nil
	}
	if _, isString := p.typ.(*schema.StringType); !isString {
		if err := p.typ.Validate(v); err != nil {
			return nil, err
		}
	}
	return p.typ.Convert(v)
}

// restore stores a decoded value without running the transform.
func (p *Property) restore(v any) error {
	converted, err := p.typ.Convert(v)
	if err != nil {
		return fmt.Errorf("value of %s: %w", p.path(), err)
	}
	reactive.Set(p.store, PropertyValue, converted)
	return nil
}

// path names the property for logs, as node.property.
func (p *Property) path() string {
	if p == nil {
		return "<nil>"
	}
	if n, ok := p.Node(); ok {
		return n.Name() + "." + p.Name()
	}
	return p.Name()
}

func (p *Property) String() string {
	return fmt.Sprintf("%s(%s %s)", p.path(), p.Direction(), p.typ.Name())
}

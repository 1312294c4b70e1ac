package domain

import (
	"slices"

	"github.com/aretw0/weft/pkg/identity"
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/google/uuid"
)

const nodeKind = "weft.Node"

// Node fields.
var (
	NodeName        = reactive.Define[string](nodeKind, "Name", nil)
	NodeDescription = reactive.Define[string](nodeKind, "Description", nil)
	NodeKind        = reactive.Define[string](nodeKind, "Kind", nil)
	NodePosition    = reactive.Define[Vector](nodeKind, "Position", nil)
	NodeSize        = reactive.Define[Size](nodeKind, "Size", nil)
	NodeInputCount  = reactive.Define[int](nodeKind, "InputCount", nil)
	NodeOutputCount = reactive.Define[int](nodeKind, "OutputCount", nil)
)

// NodeParent compares references by identifier so the resolution cache of
// the stored reference survives equal writes.
var NodeParent = reactive.Define(nodeKind, "Parent", emptyNodeRef,
	reactive.WithEqual(identity.SameTarget[*Node]))

func emptyNodeRef() *identity.Ref[*Node] {
	return identity.NewRef[*Node](uuid.Nil)
}

// Node is a positioned box with ordered inputs, outputs and children.
// Positions are relative to the parent node.
type Node struct {
	id    uuid.UUID
	graph *Graph
	store *reactive.Store

	inputs   []*Property
	outputs  []*Property
	children []*Node

	validator    func(own, other *Property) bool
	positionSubs []*listener[Vector]
	sizeSubs     []*listener[Size]
}

// NodeOption configures a node created by Graph.NewNode.
type NodeOption func(*Node)

// WithKind sets the catalog kind the node was built from.
func WithKind(kind string) NodeOption {
	return func(n *Node) { n.SetKind(kind) }
}

// WithDescription sets the node description.
func WithDescription(desc string) NodeOption {
	return func(n *Node) { n.SetDescription(desc) }
}

// At places the node.
func At(x, y float64) NodeOption {
	return func(n *Node) { n.SetPosition(Vector{x, y}) }
}

// Sized sets the node size.
func Sized(w, h float64) NodeOption {
	return func(n *Node) { n.SetSize(Size{w, h}) }
}

func (g *Graph) newNode(id uuid.UUID) *Node {
	n := &Node{id: id, graph: g}
	n.store = reactive.NewStore(n, g.logger)
	reactive.Subscribe(n.store, NodePosition, func(reactive.ChangeOf[Vector]) {
		n.firePosition()
	})
	reactive.Subscribe(n.store, NodeSize, func(reactive.ChangeOf[Size]) {
		n.fireSize()
	})
	g.registry.Register(n)
	return n
}

func (n *Node) ID() uuid.UUID           { return n.id }
func (n *Node) SetID(id uuid.UUID)      { n.id = id }
func (n *Node) Store() *reactive.Store  { return n.store }
func (n *Node) Graph() *Graph           { return n.graph }
func (n *Node) Name() string            { return reactive.Get(n.store, NodeName) }
func (n *Node) SetName(s string)        { reactive.Set(n.store, NodeName, s) }
func (n *Node) Description() string     { return reactive.Get(n.store, NodeDescription) }
func (n *Node) SetDescription(s string) { reactive.Set(n.store, NodeDescription, s) }
func (n *Node) Kind() string            { return reactive.Get(n.store, NodeKind) }
func (n *Node) SetKind(s string)        { reactive.Set(n.store, NodeKind, s) }
func (n *Node) Position() Vector        { return reactive.Get(n.store, NodePosition) }
func (n *Node) SetPosition(v Vector)    { reactive.Set(n.store, NodePosition, v) }
func (n *Node) Size() Size              { return reactive.Get(n.store, NodeSize) }
func (n *Node) SetSize(s Size)          { reactive.Set(n.store, NodeSize, s) }
func (n *Node) InputCount() int         { return reactive.Get(n.store, NodeInputCount) }
func (n *Node) OutputCount() int        { return reactive.Get(n.store, NodeOutputCount) }
func (n *Node) Inputs() []*Property     { return slices.Clone(n.inputs) }
func (n *Node) Outputs() []*Property    { return slices.Clone(n.outputs) }
func (n *Node) Children() []*Node       { return slices.Clone(n.children) }
func (n *Node) Bounds() Rect            { return RectAt(n.Position(), n.Size()) }

// Move shifts the node by delta.
func (n *Node) Move(delta Vector) {
	n.SetPosition(n.Position().Add(delta))
}

// AbsolutePosition adds up the positions of n and its ancestors.
func (n *Node) AbsolutePosition() Vector {
	pos := n.Position()
	for p, ok := n.Parent(); ok; p, ok = p.Parent() {
		pos = pos.Add(p.Position())
	}
	return pos
}

// Parent resolves the parent reference.
func (n *Node) Parent() (*Node, bool) {
	return reactive.Get(n.store, NodeParent).Resolve(n.graph.registry)
}

// ParentRef returns the deferred parent reference.
func (n *Node) ParentRef() *identity.Ref[*Node] {
	return reactive.Get(n.store, NodeParent)
}

func (n *Node) setParent(p *Node) {
	if p == nil {
		reactive.Set(n.store, NodeParent, emptyNodeRef())
		return
	}
	reactive.Set(n.store, NodeParent, identity.RefTo(p))
}

// AddChild nests child under n. Adding a node to itself or to one of its own
// descendants is ignored.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n || child.isAncestorOf(n) {
		return
	}
	if old, ok := child.Parent(); ok {
		old.detachChild(child)
	}
	if i := slices.Index(n.graph.nodes, child); i >= 0 {
		n.graph.nodes = slices.Delete(n.graph.nodes, i, i+1)
	}
	n.attachChild(child)
}

func (n *Node) attachChild(child *Node) {
	n.children = append(n.children, child)
	child.setParent(n)
}

// RemoveChild detaches child from n and makes it a top-level node again.
// Its connections are kept.
func (n *Node) RemoveChild(child *Node) {
	if n.detachChild(child) {
		n.graph.AddNode(child)
	}
}

func (n *Node) detachChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.setParent(nil)
	return true
}

func (n *Node) isAncestorOf(other *Node) bool {
	for p, ok := other.Parent(); ok; p, ok = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range slices.Clone(n.children) {
		c.walk(fn)
	}
}

// AddInput creates an input property and appends it.
func (n *Node) AddInput(name string, typ schema.Type, initial any, opts ...PropertyOption) *Property {
	p := n.graph.newProperty(uuid.New(), name, Input, typ, initial, opts...)
	n.AddInputProperty(p)
	return p
}

// AddOutput creates an output property and appends it.
func (n *Node) AddOutput(name string, typ schema.Type, initial any, opts ...PropertyOption) *Property {
	p := n.graph.newProperty(uuid.New(), name, Output, typ, initial, opts...)
	n.AddOutputProperty(p)
	return p
}

// AddInputProperty appends an existing property as an input of n.
func (n *Node) AddInputProperty(p *Property) {
	reactive.Set(p.store, PropertyDirection, Input)
	p.setNode(n)
	n.inputs = append(n.inputs, p)
	reactive.Set(n.store, NodeInputCount, n.InputCount()+1)
}

// AddOutputProperty appends an existing property as an output of n.
func (n *Node) AddOutputProperty(p *Property) {
	reactive.Set(p.store, PropertyDirection, Output)
	p.setNode(n)
	n.outputs = append(n.outputs, p)
	reactive.Set(n.store, NodeOutputCount, n.OutputCount()+1)
}

// RemoveInput disconnects p from all its peers and removes it.
// It reports whether p was an input of n.
func (n *Node) RemoveInput(p *Property) bool {
	i := slices.Index(n.inputs, p)
	if i < 0 {
		return false
	}
	n.graph.DisconnectAll(p)
	n.inputs = slices.Delete(n.inputs, i, i+1)
	reactive.Set(n.store, NodeInputCount, n.InputCount()-1)
	return true
}

// RemoveOutput disconnects p from all its peers and removes it.
// It reports whether p was an output of n.
func (n *Node) RemoveOutput(p *Property) bool {
	i := slices.Index(n.outputs, p)
	if i < 0 {
		return false
	}
	n.graph.DisconnectAll(p)
	n.outputs = slices.Delete(n.outputs, i, i+1)
	reactive.Set(n.store, NodeOutputCount, n.OutputCount()-1)
	return true
}

// RemoveInputAt removes the input at index i.
func (n *Node) RemoveInputAt(i int) error {
	p, err := n.InputAt(i)
	if err != nil {
		return err
	}
	n.RemoveInput(p)
	return nil
}

// InputAt returns the input at index i.
func (n *Node) InputAt(i int) (*Property, error) {
	if i < 0 || i >= len(n.inputs) {
		return nil, indexError("input", i, len(n.inputs))
	}
	return n.inputs[i], nil
}

// OutputAt returns the output at index i.
func (n *Node) OutputAt(i int) (*Property, error) {
	if i < 0 || i >= len(n.outputs) {
		return nil, indexError("output", i, len(n.outputs))
	}
	return n.outputs[i], nil
}

// Input finds an input by name.
func (n *Node) Input(name string) (*Property, bool) {
	return findNamed(n.inputs, name)
}

// Output finds an output by name.
func (n *Node) Output(name string) (*Property, bool) {
	return findNamed(n.outputs, name)
}

func findNamed(props []*Property, name string) (*Property, bool) {
	for _, p := range props {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// SetValidator installs the node's custom connection rule. It is asked about
// every connection touching one of the node's properties, with own being that
// property. A nil validator accepts everything.
func (n *Node) SetValidator(fn func(own, other *Property) bool) {
	n.validator = fn
}

func (n *Node) accepts(own, other *Property) bool {
	return n.validator == nil || n.validator(own, other)
}

package domain

import (
	"log/slog"
	"slices"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/identity"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/google/uuid"
)

// DefaultMaxPropagationDepth bounds how many times one property may re-enter
// propagation while it is still propagating, which only happens in feedback
// loops.
const DefaultMaxPropagationDepth = 64

// propagationStackLimit caps nested pushes of any kind.
const propagationStackLimit = 10000

// Graph is the context of one editing session or loaded document.
// It is not safe for concurrent use.
type Graph struct {
	registry *identity.Registry
	types    *schema.Types
	rules    *schema.Rules
	kinds    *codec.Types
	logger   *slog.Logger
	hooks    []LifecycleHooks

	nodes []*Node

	maxDepth     int
	depth        int
	inFlight     map[*Property]int
	rejectCycles bool
	strictLoad   bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for dropped writes and partial loads.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// WithRules replaces the value-type compatibility rules.
func WithRules(rules *schema.Rules) Option {
	return func(g *Graph) {
		g.rules = rules
	}
}

// WithValueType registers the Go type T as a property value type named name,
// for both connection checks and documents.
func WithValueType[T any](name string) Option {
	return func(g *Graph) {
		g.types.Register(schema.Of[T](name))
		codec.RegisterValue[T](g.kinds, name)
	}
}

// WithType registers a value type whose values already have a codec
// representation, such as a Custom type over strings.
func WithType(typ schema.Type) Option {
	return func(g *Graph) {
		g.types.Register(typ)
	}
}

// WithHooks adds lifecycle callbacks. It may be given more than once.
func WithHooks(h LifecycleHooks) Option {
	return func(g *Graph) {
		g.hooks = append(g.hooks, h)
	}
}

// WithMaxPropagationDepth sets how many times a property may re-enter
// propagation through a feedback loop before the push is dropped. Values
// below 1 keep the default.
func WithMaxPropagationDepth(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxDepth = n
		}
	}
}

// WithCycleRejection rejects connections that would close a feedback loop
// between nodes.
func WithCycleRejection() Option {
	return func(g *Graph) {
		g.rejectCycles = true
	}
}

// WithStrictLoad makes Load fail on dangling references instead of
// degrading.
func WithStrictLoad() Option {
	return func(g *Graph) {
		g.strictLoad = true
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		registry: identity.NewRegistry(),
		types:    schema.NewTypes(),
		rules:    schema.DefaultRules(),
		kinds:    codec.NewTypes(),
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxPropagationDepth,
		inFlight: make(map[*Property]int),
	}
	g.types.Register(schema.Of[Vector]("vector")).Register(schema.Of[Size]("size"))
	codec.RegisterValue[Vector](g.kinds, "vector")
	codec.RegisterValue[Size](g.kinds, "size")
	codec.RegisterValue[Direction](g.kinds, "direction")
	g.registerKinds()

	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Graph) Registry() *identity.Registry { return g.registry }
func (g *Graph) Types() *schema.Types         { return g.types }
func (g *Graph) Rules() *schema.Rules         { return g.rules }
func (g *Graph) Logger() *slog.Logger         { return g.logger }

// Observe adds lifecycle callbacks after construction.
func (g *Graph) Observe(h LifecycleHooks) {
	g.hooks = append(g.hooks, h)
}

// NewNode creates a top-level node.
func (g *Graph) NewNode(name string, opts ...NodeOption) *Node {
	n := g.newNode(uuid.New())
	n.SetName(name)
	for _, opt := range opts {
		opt(n)
	}
	g.AddNode(n)
	return n
}

// AddNode makes n a top-level node, detaching it from its parent.
func (g *Graph) AddNode(n *Node) {
	if p, ok := n.Parent(); ok {
		p.detachChild(n)
	}
	if slices.Contains(g.nodes, n) {
		return
	}
	g.nodes = append(g.nodes, n)
	g.emitNode(EventNodeAdded, n)
}

// RemoveNode disconnects every property of n and its descendants, then
// detaches n from the graph. Identifiers stay registered.
func (g *Graph) RemoveNode(n *Node) {
	n.walk(func(d *Node) bool {
		for _, p := range d.inputs {
			g.DisconnectAll(p)
		}
		for _, p := range d.outputs {
			g.DisconnectAll(p)
		}
		return true
	})
	if p, ok := n.Parent(); ok {
		p.detachChild(n)
	}
	if i := slices.Index(g.nodes, n); i >= 0 {
		g.nodes = slices.Delete(g.nodes, i, i+1)
	}
	g.emitNode(EventNodeRemoved, n)
}

// Nodes returns the top-level nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Walk visits every node depth first, parents before children. Returning
// false from fn skips the node's children.
func (g *Graph) Walk(fn func(*Node) bool) {
	for _, n := range g.Nodes() {
		n.walk(fn)
	}
}

// NodeCount counts every node reachable from the top level.
func (g *Graph) NodeCount() int {
	count := 0
	g.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Node looks up a node by identifier.
func (g *Graph) Node(id uuid.UUID) (*Node, bool) {
	e, ok := g.registry.Lookup(id)
	if !ok {
		return nil, false
	}
	n, ok := e.(*Node)
	return n, ok
}

// Property looks up a property by identifier.
func (g *Graph) Property(id uuid.UUID) (*Property, bool) {
	e, ok := g.registry.Lookup(id)
	if !ok {
		return nil, false
	}
	p, ok := e.(*Property)
	return p, ok
}

// Rebind changes an entity's identifier and re-indexes it.
// The old identifier no longer resolves.
func (g *Graph) Rebind(e identity.Rebindable, id uuid.UUID) {
	g.registry.Rebind(e, id)
}

// Connection is one output to input link.
type Connection struct {
	From *Property
	To   *Property
}

// Connections lists every link once, from output to input, in node order.
func (g *Graph) Connections() []Connection {
	var out []Connection
	g.Walk(func(n *Node) bool {
		for _, o := range n.outputs {
			for _, peer := range o.peers {
				out = append(out, Connection{From: o, To: peer})
			}
		}
		return true
	})
	return out
}

package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/catalog"
	"github.com/aretw0/weft/pkg/domain"
)

// ErrUnknownLabel is returned when a connection or child names an undeclared node.
var ErrUnknownLabel = errors.New("unknown node label")

// Builder manages the graph construction.
type Builder struct {
	nodes     map[string]*NodeBuilder
	order     []string
	links     [][2]string
	catalog   *catalog.Registry
	graphOpts []domain.Option
}

// Option configures a Builder.
type Option func(*Builder)

// WithCatalog resolves NodeBuilder.Kind through r: the node is instantiated
// from the kind's template and its behaviour is bound.
func WithCatalog(r *catalog.Registry) Option {
	return func(b *Builder) {
		b.catalog = r
	}
}

// WithGraphOptions sets the options the graph is created with.
func WithGraphOptions(opts ...domain.Option) Option {
	return func(b *Builder) {
		b.graphOpts = append(b.graphOpts, opts...)
	}
}

// New creates a new graph builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add declares a node under label. The label is also the node's name unless
// Name overrides it. If the label exists, the existing builder is returned.
func (b *Builder) Add(label string) *NodeBuilder {
	if nb, ok := b.nodes[label]; ok {
		return nb
	}
	nb := &NodeBuilder{label: label, name: label, builder: b}
	b.nodes[label] = nb
	b.order = append(b.order, label)
	return nb
}

// Connect links two ports addressed as "label.port". The order of the two
// ends does not matter.
func (b *Builder) Connect(from, to string) *Builder {
	b.links = append(b.links, [2]string{from, to})
	return b
}

// Result is a built graph with label lookups.
type Result struct {
	*domain.Graph
	nodes map[string]*domain.Node
}

// Node returns the node declared under label, or nil.
func (r *Result) Node(label string) *domain.Node {
	return r.nodes[label]
}

// Port returns the property addressed as "label.port", or nil.
// Outputs are searched before inputs.
func (r *Result) Port(path string) *domain.Property {
	p, _ := r.lookup(path)
	return p
}

func (r *Result) lookup(path string) (*domain.Property, error) {
	label, port, ok := strings.Cut(path, ".")
	if !ok {
		return nil, fmt.Errorf("port path %q: want label.port", path)
	}
	n, ok := r.nodes[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLabel, label)
	}
	if p, ok := n.Output(port); ok {
		return p, nil
	}
	if p, ok := n.Input(port); ok {
		return p, nil
	}
	return nil, fmt.Errorf("node %s has no port %q", label, port)
}

// Build creates the graph: nodes in declaration order, then parents, then
// connections in declaration order.
func (b *Builder) Build() (*Result, error) {
	res := &Result{
		Graph: domain.NewGraph(b.graphOpts...),
		nodes: make(map[string]*domain.Node, len(b.nodes)),
	}

	for _, label := range b.order {
		n, err := b.nodes[label].create(res.Graph)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", label, err)
		}
		res.nodes[label] = n
	}

	for _, label := range b.order {
		nb := b.nodes[label]
		for _, child := range nb.children {
			c, ok := res.nodes[child]
			if !ok {
				return nil, fmt.Errorf("node %s child: %w: %s", label, ErrUnknownLabel, child)
			}
			res.nodes[label].AddChild(c)
		}
	}

	for _, link := range b.links {
		from, err := res.lookup(link[0])
		if err != nil {
			return nil, err
		}
		to, err := res.lookup(link[1])
		if err != nil {
			return nil, err
		}
		if err := res.CanConnect(from, to); err != nil {
			return nil, err
		}
		res.Connect(from, to)
	}

	for _, label := range b.order {
		if pad, ok := b.nodes[label].fit(); ok {
			res.nodes[label].RecalculateSize(pad)
		}
	}
	return res, nil
}

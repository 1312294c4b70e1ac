package dsl

import (
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
)

type port struct {
	name    string
	typ     schema.Type
	initial any
	dir     domain.Direction
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	label string
	name  string
	kind  string
	opts  []domain.NodeOption

	ports      []port
	transforms map[string]func(*domain.Node) any
	validator  func(own, other *domain.Property) bool
	children   []string
	padding    *float64

	builder *Builder
}

// Name sets the node's display name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.name = name
	return n
}

// Kind sets the node kind. With a catalog configured on the Builder, the
// node is instantiated from the kind's template.
func (n *NodeBuilder) Kind(kind string) *NodeBuilder {
	n.kind = kind
	return n
}

// Description sets the node description.
func (n *NodeBuilder) Description(desc string) *NodeBuilder {
	n.opts = append(n.opts, domain.WithDescription(desc))
	return n
}

// At sets the node position relative to its parent.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.opts = append(n.opts, domain.At(x, y))
	return n
}

// Sized sets the node size.
func (n *NodeBuilder) Sized(w, h float64) *NodeBuilder {
	n.opts = append(n.opts, domain.Sized(w, h))
	return n
}

// Input declares an input port.
func (n *NodeBuilder) Input(name string, typ schema.Type, initial any) *NodeBuilder {
	n.ports = append(n.ports, port{name: name, typ: typ, initial: initial, dir: domain.Input})
	return n
}

// Output declares an output port.
func (n *NodeBuilder) Output(name string, typ schema.Type, initial any) *NodeBuilder {
	n.ports = append(n.ports, port{name: name, typ: typ, initial: initial, dir: domain.Output})
	return n
}

// Transform computes output from the node's state whenever it is written or
// one of the node's inputs changes.
func (n *NodeBuilder) Transform(output string, fn func(*domain.Node) any) *NodeBuilder {
	if n.transforms == nil {
		n.transforms = make(map[string]func(*domain.Node) any)
	}
	n.transforms[output] = fn
	return n
}

// Accept installs the node's custom connection rule.
func (n *NodeBuilder) Accept(fn func(own, other *domain.Property) bool) *NodeBuilder {
	n.validator = fn
	return n
}

// Children nests the labelled nodes inside this one.
func (n *NodeBuilder) Children(labels ...string) *NodeBuilder {
	n.children = append(n.children, labels...)
	return n
}

// Fit resizes the node around its children after the graph is built.
func (n *NodeBuilder) Fit(padding float64) *NodeBuilder {
	n.padding = &padding
	return n
}

func (n *NodeBuilder) fit() (float64, bool) {
	if n.padding == nil {
		return 0, false
	}
	return *n.padding, true
}

func (n *NodeBuilder) create(g *domain.Graph) (*domain.Node, error) {
	var node *domain.Node
	if cat := n.builder.catalog; cat != nil && n.kind != "" {
		var err error
		if node, err = cat.Instantiate(g, n.kind, n.opts...); err != nil {
			return nil, err
		}
		node.SetName(n.name)
	} else {
		opts := n.opts
		if n.kind != "" {
			opts = append([]domain.NodeOption{domain.WithKind(n.kind)}, opts...)
		}
		node = g.NewNode(n.name, opts...)
	}

	for _, p := range n.ports {
		if p.dir == domain.Input {
			node.AddInput(p.name, p.typ, p.initial)
		} else {
			node.AddOutput(p.name, p.typ, p.initial)
		}
	}
	for name, fn := range n.transforms {
		fn := fn
		out, ok := node.Output(name)
		if !ok {
			return nil, fmt.Errorf("transform on missing output %q", name)
		}
		out.SetTransform(func(any) any { return fn(node) })
		out.SetValue(nil)
	}
	if n.validator != nil {
		node.SetValidator(n.validator)
	}
	return node, nil
}

package domain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/identity"
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/google/uuid"
)

// Document element names.
const (
	TagGraph     = "Graph"
	AttrVersion  = "Version"
	FieldNodes   = "Nodes"
	DocumentV1   = "1"
	KindNode     = nodeKind
	KindProperty = propertyKind
)

// registerKinds builds the static field tables of nodes and properties.
// Field order is decode order: a property's type precedes its value.
func (g *Graph) registerKinds() {
	codec.RegisterKind(g.kinds, KindNode, g.newNode,
		codec.Leaf(NodeName),
		codec.Leaf(NodeDescription),
		codec.Leaf(NodeKind),
		codec.Leaf(NodePosition),
		codec.Leaf(NodeSize),
		codec.Reference("Parent",
			func(n *Node) uuid.UUID {
				if p, ok := n.Parent(); ok {
					return p.ID()
				}
				return n.ParentRef().ID()
			},
			func(n *Node, id uuid.UUID) error {
				if id == uuid.Nil {
					return nil
				}
				reactive.Set(n.store, NodeParent, identity.NewRef[*Node](id))
				return nil
			}),
		codec.Collection("Inputs",
			func(n *Node) []*Property { return n.inputs },
			func(n *Node, props []*Property) error {
				for _, p := range props {
					n.AddInputProperty(p)
				}
				return nil
			}),
		codec.Collection("Outputs",
			func(n *Node) []*Property { return n.outputs },
			func(n *Node, props []*Property) error {
				for _, p := range props {
					n.AddOutputProperty(p)
				}
				return nil
			}),
		codec.Collection("Children",
			func(n *Node) []*Node { return n.children },
			func(n *Node, children []*Node) error {
				for _, c := range children {
					n.attachChild(c)
				}
				return nil
			}),
	)

	codec.RegisterKind(g.kinds, KindProperty, g.emptyProperty,
		codec.Leaf(PropertyName),
		codec.Leaf(PropertyDirection),
		codec.Value("ValueType",
			func(p *Property) any { return p.typ.Name() },
			func(p *Property, v any) error {
				name, ok := v.(string)
				if !ok {
					return fmt.Errorf("value type name must be a string, got %T", v)
				}
				return p.setTypeName(name)
			}),
		codec.Value("Value",
			func(p *Property) any { return p.Value() },
			func(p *Property, v any) error { return p.restore(v) }),
		codec.References("Connections",
			func(p *Property) []uuid.UUID {
				ids := make([]uuid.UUID, len(p.peers))
				for i, peer := range p.peers {
					ids[i] = peer.ID()
				}
				return ids
			},
			func(p *Property, ids []uuid.UUID) error {
				p.pending = append(p.pending, ids...)
				return nil
			}),
	)
}

// Encode renders the whole graph as a document tree.
// Values of unregistered types are skipped and logged.
func (g *Graph) Encode() (*codec.Element, error) {
	root := codec.NewElement(TagGraph).SetAttr(AttrVersion, DocumentV1)
	enc := codec.NewEncoder(g.kinds)
	for _, n := range g.nodes {
		el, err := enc.EncodeAs(n, FieldNodes)
		if err != nil {
			return nil, fmt.Errorf("encode node %s: %w", n.ID(), err)
		}
		root.Append(el)
	}
	for _, p := range enc.Report().Problems {
		g.logger.Warn("value not saved", "path", p.Path, "detail", p.Detail)
	}
	return root, nil
}

// LoadReport describes what a load could not restore.
type LoadReport struct {
	codec.Report
	// Dangling lists referenced identifiers the document never defines.
	Dangling []uuid.UUID
}

// Clean reports whether the document loaded completely.
func (r *LoadReport) Clean() bool {
	return r.Empty() && len(r.Dangling) == 0
}

// Load decodes a document into a new graph.
func Load(doc *codec.Element, opts ...Option) (*Graph, *LoadReport, error) {
	g := NewGraph(opts...)
	report, err := g.Load(doc)
	if err != nil {
		return nil, report, err
	}
	return g, report, nil
}

// Load decodes the nodes of doc and adds them to g at the top level.
// A single Entity element is accepted as a one-node document.
//
// Connections are restored after the whole document is decoded, so they may
// name properties that appear later. References that never resolve are
// recorded in the report; with WithStrictLoad they fail the load.
func (g *Graph) Load(doc *codec.Element) (*LoadReport, error) {
	if doc == nil {
		return nil, ErrNotGraphDocument
	}
	var roots []*codec.Element
	switch doc.Tag {
	case TagGraph:
		roots = doc.Named(FieldNodes)
	case codec.TagEntity:
		roots = []*codec.Element{doc}
	default:
		return nil, fmt.Errorf("%w: root element %q", ErrNotGraphDocument, doc.Tag)
	}

	dec := codec.NewDecoder(g.kinds, codec.WithDecoderLogger(g.logger))
	report := &LoadReport{}
	var loaded []*Node
	for i, el := range roots {
		e, err := dec.Decode(el)
		if err != nil {
			if errors.Is(err, codec.ErrUnknownKind) || errors.Is(err, codec.ErrMalformed) {
				kind := codec.UnknownType
				if errors.Is(err, codec.ErrMalformed) {
					kind = codec.BadValue
				}
				dec.Report().Addf(kind, fmt.Sprintf("%s[%d]", FieldNodes, i), "%v", err)
				continue
			}
			return nil, err
		}
		n, ok := e.(*Node)
		if !ok {
			dec.Report().Addf(codec.UnknownType, fmt.Sprintf("%s[%d]", FieldNodes, i), "top-level entity is %T, not a node", e)
			continue
		}
		loaded = append(loaded, n)
	}
	report.Report = *dec.Report()

	for _, n := range loaded {
		g.nodes = append(g.nodes, n)
	}
	for _, n := range loaded {
		report.Dangling = append(report.Dangling, g.reconnect(n)...)
		g.emitNode(EventNodeAdded, n)
	}

	if len(report.Dangling) > 0 {
		g.logger.Warn("document has dangling references", "count", len(report.Dangling))
		if g.strictLoad {
			return report, fmt.Errorf("%w: %v", ErrDanglingReference, report.Dangling)
		}
	}
	return report, nil
}

// reconnect links the pending connections of n and its descendants without
// validation and returns the identifiers that did not resolve.
func (g *Graph) reconnect(root *Node) []uuid.UUID {
	var dangling []uuid.UUID
	root.walk(func(n *Node) bool {
		if ref := n.ParentRef(); !ref.IsEmpty() {
			if _, ok := n.Parent(); !ok {
				dangling = append(dangling, ref.ID())
			}
		}
		for _, p := range append(slices.Clone(n.inputs), n.outputs...) {
			pending := p.pending
			p.pending = nil
			for _, id := range pending {
				if id == uuid.Nil {
					continue
				}
				peer, ok := g.Property(id)
				if !ok {
					dangling = append(dangling, id)
					continue
				}
				if !p.IsConnected(peer) {
					g.link(p, peer)
				}
			}
		}
		return true
	})
	return dangling
}

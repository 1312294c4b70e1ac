package http

import (
	"github.com/aretw0/weft/pkg/domain"
	"github.com/google/uuid"
)

// PropertyView is the JSON form of a property.
type PropertyView struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Value       any         `json:"value"`
	Connections []uuid.UUID `json:"connections,omitempty"`
	Class       string      `json:"class"`
	Color       string      `json:"color"`
}

// NodeView is the JSON form of a node and its subtree.
type NodeView struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind,omitempty"`
	Description string         `json:"description,omitempty"`
	Position    domain.Vector  `json:"position"`
	Size        domain.Size    `json:"size"`
	Inputs      []PropertyView `json:"inputs"`
	Outputs     []PropertyView `json:"outputs"`
	Children    []NodeView     `json:"children,omitempty"`
}

// ChangeView is one effective value write, as streamed to subscribers.
type ChangeView struct {
	Property uuid.UUID `json:"property"`
	Name     string    `json:"name"`
	Value    any       `json:"value"`
}

// ReportView summarizes a document load.
type ReportView struct {
	Nodes    int         `json:"nodes"`
	Problems []string    `json:"problems,omitempty"`
	Dangling []uuid.UUID `json:"dangling,omitempty"`
}

func propertyViews(props []*domain.Property) []PropertyView {
	out := make([]PropertyView, 0, len(props))
	for _, p := range props {
		class, color := p.StyleClass()
		v := PropertyView{
			ID:    p.ID(),
			Name:  p.Name(),
			Type:  p.Type().Name(),
			Value: p.Value(),
			Class: class,
			Color: color,
		}
		for _, peer := range p.Peers() {
			v.Connections = append(v.Connections, peer.ID())
		}
		out = append(out, v)
	}
	return out
}

func nodeView(n *domain.Node) NodeView {
	v := NodeView{
		ID:          n.ID(),
		Name:        n.Name(),
		Kind:        n.Kind(),
		Description: n.Description(),
		Position:    n.Position(),
		Size:        n.Size(),
		Inputs:      propertyViews(n.Inputs()),
		Outputs:     propertyViews(n.Outputs()),
	}
	for _, c := range n.Children() {
		v.Children = append(v.Children, nodeView(c))
	}
	return v
}

func graphView(g *domain.Graph) []NodeView {
	nodes := g.Nodes()
	out := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeView(n))
	}
	return out
}

func reportView(g *domain.Graph, r *domain.LoadReport) ReportView {
	v := ReportView{Dangling: r.Dangling}
	if g != nil {
		v.Nodes = g.NodeCount()
	}
	for _, p := range r.Problems {
		v.Problems = append(v.Problems, p.String())
	}
	return v
}

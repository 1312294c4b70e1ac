package weft

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// ContentRenderer transforms markdown before it is written.
// This allows terminal rendering (markdown to ANSI) without coupling the
// core package to a renderer.
type ContentRenderer func(string) (string, error)

// Describe returns a markdown outline of g: one section per node, nested by
// hierarchy, with a port table and the list of connections.
func Describe(g *domain.Graph) string {
	var b strings.Builder
	b.WriteString("# Graph\n\n")
	fmt.Fprintf(&b, "%d nodes, %d connections.\n\n", g.NodeCount(), len(g.Connections()))

	for _, n := range g.Nodes() {
		describeNode(&b, n, 2)
	}

	conns := g.Connections()
	if len(conns) > 0 {
		b.WriteString("## Connections\n\n")
		for _, c := range conns {
			fmt.Fprintf(&b, "- `%s` → `%s`\n", portPath(c.From), portPath(c.To))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeNode(b *strings.Builder, n *domain.Node, depth int) {
	heading := strings.Repeat("#", min(depth, 6))
	if kind := n.Kind(); kind != "" {
		fmt.Fprintf(b, "%s %s (`%s`)\n\n", heading, n.Name(), kind)
	} else {
		fmt.Fprintf(b, "%s %s\n\n", heading, n.Name())
	}
	if desc := n.Description(); desc != "" {
		fmt.Fprintf(b, "_%s_\n\n", desc)
	}

	ports := append(n.Inputs(), n.Outputs()...)
	if len(ports) > 0 {
		b.WriteString("| Port | Direction | Type | Value | Connections |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, p := range ports {
			fmt.Fprintf(b, "| %s | %s | %s | %v | %d |\n",
				p.Name(), p.Direction(), p.Type().Name(), p.Value(), p.ConnectionCount())
		}
		b.WriteString("\n")
	}

	for _, c := range n.Children() {
		describeNode(b, c, depth+1)
	}
}

func portPath(p *domain.Property) string {
	if n, ok := p.Node(); ok {
		return n.Name() + "." + p.Name()
	}
	return p.Name()
}

// WriteDescription writes Describe(g) to w, through render when it is set.
func WriteDescription(w io.Writer, g *domain.Graph, render ContentRenderer) error {
	out := Describe(g)
	if render != nil {
		rendered, err := render(out)
		if err != nil {
			return fmt.Errorf("failed to render description: %w", err)
		}
		out = rendered
	}
	_, err := io.WriteString(w, out)
	return err
}

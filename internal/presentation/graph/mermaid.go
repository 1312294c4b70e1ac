package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/google/uuid"
)

// Overlay contains state data to highlight on the diagram.
type Overlay struct {
	Highlighted []uuid.UUID
	Selected    uuid.UUID
}

// GenerateMermaid produces a Mermaid flowchart for g.
// Nodes with children become subgraphs. Shapes follow the node's ports:
// - Source (outputs only): ((Circle))
// - Sink (inputs only): [/Parallelogram/]
// - Cataloged kind: [[Subroutine]]
// - Default: [Rectangle]
// Connections are labelled with their port names; links that cross a
// subgraph boundary are dotted.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, n := range g.Nodes() {
		writeNode(&sb, n, 1)
	}

	for _, c := range g.Connections() {
		from, _ := c.From.Node()
		to, _ := c.To.Node()
		if from == nil || to == nil {
			continue
		}
		label := escapeLabel(c.From.Name() + " → " + c.To.Name())
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if parentID(from) != parentID(to) {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(from), arrow, nodeID(to))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef highlighted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[uuid.UUID]bool)
		for _, id := range overlay.Highlighted {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, ok := g.Node(id); ok {
				fmt.Fprintf(&sb, "    class %s highlighted;\n", mermaidID(id))
			}
		}
		if overlay.Selected != uuid.Nil {
			if _, ok := g.Node(overlay.Selected); ok {
				fmt.Fprintf(&sb, "    class %s selected;\n", mermaidID(overlay.Selected))
			}
		}
	}

	return sb.String()
}

func writeNode(sb *strings.Builder, n *domain.Node, depth int) {
	indent := strings.Repeat("    ", depth)
	children := n.Children()
	if len(children) > 0 {
		fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, nodeID(n), escapeLabel(n.Name()))
		for _, c := range children {
			writeNode(sb, c, depth+1)
		}
		fmt.Fprintf(sb, "%send\n", indent)
		return
	}

	opener, closer := "[", "]"
	switch {
	case n.Kind() != "":
		opener, closer = "[[", "]]"
	case n.InputCount() == 0 && n.OutputCount() > 0:
		opener, closer = "((", "))"
	case n.OutputCount() == 0 && n.InputCount() > 0:
		opener, closer = "[/", "/]"
	}
	fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, nodeID(n), opener, escapeLabel(n.Name()), closer)
}

func nodeID(n *domain.Node) string {
	return mermaidID(n.ID())
}

func mermaidID(id uuid.UUID) string {
	return sanitizeMermaidID("n_" + id.String())
}

func parentID(n *domain.Node) uuid.UUID {
	if p, ok := n.Parent(); ok {
		return p.ID()
	}
	return uuid.Nil
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}

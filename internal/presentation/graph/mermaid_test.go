package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/google/uuid"
)

func TestGenerateMermaid(t *testing.T) {
	b := dsl.New()
	b.Add("src").Name("Source").Output("Out", schema.Float(), 1.0)
	b.Add("sink").Name(`Say "hi"`).Input("In", schema.Float(), 0.0)
	b.Add("op").Name("Op").Kind("math.op").
		Input("In", schema.Float(), 0.0).
		Output("Out", schema.Float(), 0.0)
	b.Add("plain").Name("Plain")
	b.Add("group").Name("Group").Children("inner")
	b.Add("inner").Name("Inner").Input("In", schema.Float(), 0.0)
	b.Connect("src.Out", "op.In")
	b.Connect("op.Out", "sink.In")
	b.Connect("src.Out", "inner.In")

	res, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	id := func(label string) string {
		return "n_" + strings.ReplaceAll(res.Node(label).ID().String(), "-", "_")
	}

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name:     "Source Node Shape",
			contains: []string{id("src") + `(("Source"))`},
		},
		{
			name:     "Sink Node Shape And Escaping",
			contains: []string{id("sink") + `[/"Say 'hi'"/]`},
		},
		{
			name:     "Cataloged Node Shape",
			contains: []string{id("op") + `[["Op"]]`},
		},
		{
			name:     "Default Node Shape",
			contains: []string{id("plain") + `["Plain"]`},
		},
		{
			name: "Subgraph",
			contains: []string{
				"subgraph " + id("group") + `["Group"]`,
				"        " + id("inner") + `[/"Inner"/]`,
				"    end",
			},
		},
		{
			name: "Connections",
			contains: []string{
				id("src") + ` -- "Out → In" --> ` + id("op"),
				id("op") + ` -- "Out → In" --> ` + id("sink"),
				id("src") + ` -. "Out → In" .-> ` + id("inner"),
			},
		},
	}

	got := graph.GenerateMermaid(res.Graph, nil)
	if strings.Contains(got, "classDef") {
		t.Errorf("overlay styles without an overlay:\n%v", got)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	g := domain.NewGraph()
	a := g.NewNode("A")
	b := g.NewNode("B")

	got := graph.GenerateMermaid(g, &graph.Overlay{
		Highlighted: []uuid.UUID{a.ID(), a.ID(), uuid.New()},
		Selected:    b.ID(),
	})

	if strings.Count(got, " highlighted;\n") != 1 {
		t.Errorf("expected one highlighted node, got:\n%v", got)
	}
	if !strings.Contains(got, "selected;") {
		t.Errorf("expected selected node, got:\n%v", got)
	}
}

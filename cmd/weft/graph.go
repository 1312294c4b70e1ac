package main

import (
	"fmt"

	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <document|id>",
		Short: "Export the graph visualization",
		Long:  `Outputs a Mermaid diagram (graph LR) of the nodes, their hierarchy and connections.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			highlight, _ := cmd.Flags().GetStringSlice("highlight")

			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			g, _, err := a.loadGraph(cmd, ed, args[0], format)
			if err != nil {
				return err
			}

			var overlay *graph.Overlay
			if len(highlight) > 0 {
				overlay = &graph.Overlay{Highlighted: matchNodes(g, highlight)}
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
			return nil
		},
	}
	cmd.Flags().String("format", "", "Document format (xml or yaml); defaults to the file extension")
	cmd.Flags().StringSlice("highlight", nil, "Highlight nodes by name or kind")
	return cmd
}

func matchNodes(g *domain.Graph, names []string) []uuid.UUID {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var ids []uuid.UUID
	g.Walk(func(n *domain.Node) bool {
		if want[n.Name()] || want[n.Kind()] {
			ids = append(ids, n.ID())
		}
		return true
	})
	return ids
}

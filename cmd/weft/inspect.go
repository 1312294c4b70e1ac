package main

import (
	"os"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <document|id>",
		Short: "Describe a graph",
		Long: `Prints the nodes, ports, values and connections of a graph as markdown.
On a terminal the markdown is rendered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			raw, _ := cmd.Flags().GetBool("raw")

			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			g, _, err := a.loadGraph(cmd, ed, args[0], format)
			if err != nil {
				return err
			}

			var render weft.ContentRenderer
			if f, ok := cmd.OutOrStdout().(*os.File); ok && !raw && tui.IsTerminal(f) {
				if render, err = tui.NewRenderer(); err != nil {
					return err
				}
			}
			return weft.WriteDescription(cmd.OutOrStdout(), g, render)
		},
	}
	cmd.Flags().String("format", "", "Document format (xml or yaml); defaults to the file extension")
	cmd.Flags().Bool("raw", false, "Print markdown without rendering")
	return cmd
}

package main

import (
	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a document between XML and YAML",
		Long: `Loads a document and writes it back in the output format. Identifiers and
references are preserved. Use "-" for stdin or stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			inFormat, err := cli.ResolveFormat(from, args[0])
			if err != nil {
				return err
			}
			outFormat, err := cli.ResolveFormat(to, args[1])
			if err != nil {
				return err
			}

			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			data, err := cli.ReadDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			g, report, err := ed.Import(data, inFormat)
			if err != nil {
				return err
			}
			if !report.Clean() {
				a.logger.Warn("document converted with problems",
					"problems", len(report.Problems),
					"dangling", len(report.Dangling),
				)
			}

			out, err := ed.Export(g, outFormat)
			if err != nil {
				return err
			}
			return cli.WriteDocument(args[1], out, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("from", "", "Input format (xml or yaml); defaults to the file extension")
	cmd.Flags().String("to", "", "Output format (xml or yaml); defaults to the file extension")
	return cmd
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errInvalid marks a validation failure already reported on stdout.
var errInvalid = errors.New("validation failed")

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document|id>...",
		Short: "Check documents for problems",
		Long: `Loads each document and reports elements that could not be decoded and
references that never resolve. Exits non-zero if any document has problems.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			failed := false
			for _, arg := range args {
				g, report, err := a.loadGraph(cmd, ed, arg, format)
				if err != nil {
					failed = true
					fmt.Fprintf(out, "%s: %v\n", arg, err)
					continue
				}
				if report.Clean() {
					fmt.Fprintf(out, "%s: ok (%d nodes, %d connections)\n", arg, g.NodeCount(), len(g.Connections()))
					continue
				}
				failed = true
				fmt.Fprintf(out, "%s: %d problems\n", arg, len(report.Problems)+len(report.Dangling))
				for _, p := range report.Problems {
					fmt.Fprintf(out, "  - %s\n", p)
				}
				for _, id := range report.Dangling {
					fmt.Fprintf(out, "  - dangling reference %s\n", id)
				}
			}
			if failed {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().String("format", "", "Document format (xml or yaml); defaults to the file extension")
	return cmd
}

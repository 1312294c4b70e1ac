package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of weft",
		// The version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
				tui.PrintBanner(out, weft.Version)
				return
			}
			fmt.Fprintf(out, "weft version %s\n", strings.TrimSpace(weft.Version))
		},
	}
}

package main

import (
	"fmt"

	"github.com/aretw0/weft/internal/cli"
	"github.com/spf13/cobra"
)

func newDocsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents in the configured store",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			ids, err := ed.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	put := &cobra.Command{
		Use:   "put <id> <document>",
		Short: "Store a document under id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatFlag, _ := cmd.Flags().GetString("format")
			format, err := cli.ResolveFormat(formatFlag, args[1])
			if err != nil {
				return err
			}
			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			data, err := cli.ReadDocument(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			g, _, err := ed.Import(data, format)
			if err != nil {
				return err
			}
			if err := ed.Save(cmd.Context(), args[0], g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d nodes)\n", args[0], g.NodeCount())
			return nil
		},
	}
	put.Flags().String("format", "", "Document format (xml or yaml); defaults to the file extension")

	get := &cobra.Command{
		Use:   "get <id> [output]",
		Short: "Write a stored document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := cli.Stdio
			if len(args) > 1 {
				output = args[1]
			}
			formatFlag, _ := cmd.Flags().GetString("format")
			format, err := cli.ResolveFormat(formatFlag, output)
			if err != nil {
				return err
			}
			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			g, _, err := ed.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := ed.Export(g, format)
			if err != nil {
				return err
			}
			return cli.WriteDocument(output, data, cmd.OutOrStdout())
		},
	}
	get.Flags().String("format", "", "Document format (xml or yaml); defaults to the output extension")

	rm := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete stored graphs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, closeFn, err := a.editor()
			if err != nil {
				return err
			}
			defer closeFn()

			for _, id := range args {
				if err := ed.Delete(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(list, put, get, rm)
	return cmd
}

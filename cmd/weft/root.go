package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/spf13/cobra"
)

// app carries what the persistent flags resolve to.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "weft is a headless dataflow node-graph engine",
		Long: `weft loads, checks, converts and serves node-graph documents: nodes with
typed ports whose values flow along connections.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultPath, "Configuration file")
	flags.String("store", "", "Document store: memory, file or redis")
	flags.String("dir", "", "Directory of the file store")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newGraphCmd(a),
		newConvertCmd(a),
		newInspectCmd(a),
		newDocsCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the configuration file and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("store") {
		cfg.Store, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("dir") {
		cfg.Dir, _ = cmd.Flags().GetString("dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
	return nil
}

func (a *app) editor(extra ...weft.Option) (*weft.Editor, cli.Closer, error) {
	return cli.NewEditor(a.cfg, a.logger, extra...)
}

// loadGraph reads a graph from a document file or, when no such file
// exists, from the store under that id.
func (a *app) loadGraph(cmd *cobra.Command, ed *weft.Editor, arg, formatFlag string) (*domain.Graph, *domain.LoadReport, error) {
	if _, err := os.Stat(arg); err == nil || arg == cli.Stdio {
		format, err := cli.ResolveFormat(formatFlag, arg)
		if err != nil {
			return nil, nil, err
		}
		data, err := cli.ReadDocument(arg, cmd.InOrStdin())
		if err != nil {
			return nil, nil, err
		}
		return ed.Import(data, format)
	}
	return ed.Open(cmd.Context(), arg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/internal/editor"
	"github.com/flowscribe/flowscribe/internal/server"
	"github.com/flowscribe/flowscribe/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr        string
	DBPath      string
	OntologyDir string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over HTTP",
		Long: `Serve preview, apply, batch, and help over HTTP. With --db, stored
scenarios and their revisions are served too.

Routes:
  POST /v1/preview    compile a command, return intent and ops
  POST /v1/apply      apply a command, return the patched scenario
  POST /v1/batch      apply commands all-or-nothing
  GET  /v1/help       templates, synonyms, grammar
  GET  /v1/scenarios                         (with --db)
  GET  /v1/scenarios/:name                   (with --db)
  PUT  /v1/scenarios/:name                   (with --db)
  GET  /v1/scenarios/:name/revisions         (with --db)

Examples:
  flowscribe serve
  flowscribe serve --addr :9090 --db flow.db --ontology ./ontology`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database for scenario storage")
	cmd.Flags().StringVar(&opts.OntologyDir, "ontology", "", "directory of CUE unit definitions (default: built-in)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	onto, err := loadOntology(opts.OntologyDir)
	if err != nil {
		return formatter.CommandFailure(ErrCodeOntology, err.Error())
	}

	var st *store.Store
	if opts.DBPath != "" {
		st, err = store.Open(opts.DBPath)
		if err != nil {
			return formatter.CommandFailure(ErrCodeStore, err.Error())
		}
		defer st.Close()
	}

	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	srv := server.New(server.Config{
		Addr:   opts.Addr,
		Editor: editor.New(onto),
		Store:  st,
		Logger: logger,
	})
	return srv.Start()
}

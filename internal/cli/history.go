package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <scenario>",
		Short: "List stored revisions for a scenario",
		Long: `List the revisions recorded for a stored scenario, oldest first.
Each revision is one applied command with its compiled ops; revisions
from the same batch share a batch token.

Examples:
  flowscribe history --db flow.db mab_dsp
  flowscribe history --db flow.db --format json mab_dsp`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return formatter.CommandFailure(ErrCodeStore, err.Error())
	}
	defer st.Close()

	revs, err := st.Revisions(cmd.Context(), name)
	if err != nil {
		return formatter.CommandFailure(ErrCodeStore, err.Error())
	}

	if opts.Format == "json" {
		return formatter.Success(revs)
	}

	if len(revs) == 0 {
		fmt.Fprintf(formatter.Writer, "no revisions for %s\n", name)
		return nil
	}
	for _, rev := range revs {
		fmt.Fprintf(formatter.Writer, "%d\t%s\t%q (%d ops)\n", rev.Seq, rev.IntentKind, rev.Command, len(rev.Ops))
		formatter.VerboseLog("  batch %s", rev.BatchToken)
	}
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/internal/editor"
	"github.com/flowscribe/flowscribe/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Scenario    string
	Out         string
	DBPath      string
	Name        string
	OntologyDir string
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <command>",
		Short: "Apply a command to a scenario",
		Long: `Parse, compile, and apply one command, validating the result. The
input file is never modified: the patched scenario prints to stdout, or
to -o FILE.

With --db, the patched scenario and its revision are persisted; --name
overrides the scenario's own name as the storage key.

Exit codes:
  0 - Command applied
  1 - Edit failure (unrecognized command, bad reference, conflict)
  2 - Command error (unreadable files, database failed)

Examples:
  flowscribe apply -s scenario.json "remove polish1"
  flowscribe apply -s scenario.json -o next.json "set pH=4.4 on dsp04"
  flowscribe apply -s scenario.json --db flow.db "duplicate dsp04 as dsp05"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Scenario, "scenario", "s", "", "scenario JSON file (required)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the patched scenario to this file")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to persist the result and revision")
	cmd.Flags().StringVar(&opts.Name, "name", "", "storage key (default: the scenario's name field)")
	cmd.Flags().StringVar(&opts.OntologyDir, "ontology", "", "directory of CUE unit definitions (default: built-in)")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func runApply(opts *ApplyOptions, text string, cmd *cobra.Command) error {
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

	sc, err := loadScenario(opts.Scenario)
	if err != nil {
		return formatter.CommandFailure(ErrCodeIO, err.Error())
	}

	res, err := editor.New(onto).Apply(text, sc)
	if err != nil {
		return formatter.EditFailure(err)
	}

	if opts.DBPath != "" {
		seq, err := persistApply(cmd.Context(), opts, text, res)
		if err != nil {
			return formatter.CommandFailure(ErrCodeStore, err.Error())
		}
		formatter.VerboseLog("stored revision %d in %s", seq, opts.DBPath)
	}

	if opts.Out != "" {
		if err := writeScenario(opts.Out, res.Scenario); err != nil {
			return formatter.CommandFailure(ErrCodeIO, err.Error())
		}
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}

	fmt.Fprintf(formatter.Writer, "intent: %s\n", res.Intent.Kind)
	writeOps(formatter.Writer, res.Ops)
	if opts.Out != "" {
		fmt.Fprintf(formatter.Writer, "wrote %s\n", opts.Out)
		return nil
	}
	data, err := json.Marshal(res.Scenario)
	if err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer, string(data))
	return nil
}

// persistApply stores the patched scenario and its revision row, returning
// the new revision seq.
func persistApply(ctx context.Context, opts *ApplyOptions, text string, res *editor.ApplyResult) (int64, error) {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	name := opts.Name
	if name == "" {
		name = res.Scenario.Name
	}
	return st.AppendRevision(ctx, name, store.NewBatchToken(), text, res.Intent.Kind, res.Ops, res.Scenario)
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/internal/editor"
	"github.com/flowscribe/flowscribe/internal/model"
	"github.com/flowscribe/flowscribe/internal/patch"
	"github.com/flowscribe/flowscribe/internal/store"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Scenario    string
	File        string
	Out         string
	DBPath      string
	Name        string
	OntologyDir string
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch [command ...]",
		Short: "Apply a sequence of commands all-or-nothing",
		Long: `Apply a sequence of commands to one scenario. Each command sees the
result of the previous one. If any command fails, the whole batch is
rejected and nothing is written.

Commands come from -f FILE (one per line, '#' comments), from the
positional arguments, or both; file commands run first.

With --db, every command of the batch is persisted as its own revision,
all sharing one batch token.

Exit codes:
  0 - All commands applied
  1 - Edit failure (batch rejected)
  2 - Command error (unreadable files, no commands, database failed)

Examples:
  flowscribe batch -s scenario.json "remove polish1" "set pH=4.4 on dsp04"
  flowscribe batch -s scenario.json -f edits.txt -o next.json
  flowscribe batch -s scenario.json -f edits.txt --db flow.db`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Scenario, "scenario", "s", "", "scenario JSON file (required)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "file of commands, one per line")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the final scenario to this file")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to persist the batch revisions")
	cmd.Flags().StringVar(&opts.Name, "name", "", "storage key (default: the scenario's name field)")
	cmd.Flags().StringVar(&opts.OntologyDir, "ontology", "", "directory of CUE unit definitions (default: built-in)")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func runBatch(opts *BatchOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var texts []string
	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return formatter.CommandFailure(ErrCodeIO, fmt.Sprintf("reading commands: %v", err))
		}
		texts, err = readCommandLines(f)
		f.Close()
		if err != nil {
			return formatter.CommandFailure(ErrCodeIO, fmt.Sprintf("reading commands: %v", err))
		}
	}
	texts = append(texts, args...)
	if len(texts) == 0 {
		return formatter.CommandFailure(ErrCodeIO, "no commands given")
	}

	onto, err := loadOntology(opts.OntologyDir)
	if err != nil {
		return formatter.CommandFailure(ErrCodeOntology, err.Error())
	}

	sc, err := loadScenario(opts.Scenario)
	if err != nil {
		return formatter.CommandFailure(ErrCodeIO, err.Error())
	}

	ed := editor.New(onto)
	res, err := ed.Batch(texts, sc)
	if err != nil {
		return outputBatchFailure(formatter, err)
	}

	if opts.DBPath != "" {
		if err := persistBatch(cmd.Context(), opts, ed, texts, sc); err != nil {
			return formatter.CommandFailure(ErrCodeStore, err.Error())
		}
		formatter.VerboseLog("stored %d revisions in %s", len(texts), opts.DBPath)
	}

	if opts.Out != "" {
		if err := writeScenario(opts.Out, res.Scenario); err != nil {
			return formatter.CommandFailure(ErrCodeIO, err.Error())
		}
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}

	fmt.Fprintf(formatter.Writer, "applied %d commands\n", len(texts))
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

// outputBatchFailure renders the failing step of a rejected batch.
func outputBatchFailure(f *OutputFormatter, err error) error {
	var stepErr *editor.BatchStepError
	if !errors.As(err, &stepErr) {
		return f.EditFailure(err)
	}

	details := map[string]interface{}{
		"step":    stepErr.Step,
		"command": stepErr.Command,
	}
	code := string(patch.ErrCodeUnrecognizedCommand)
	var ee *patch.EditError
	if errors.As(err, &ee) {
		code = string(ee.Code)
		if ee.Ref != "" {
			details["ref"] = ee.Ref
		}
		if ee.Path != "" {
			details["path"] = ee.Path
		}
	}

	_ = f.Error(code, stepErr.Error(), details)
	return WrapExitError(ExitFailure, code, err)
}

// persistBatch replays an already-validated batch step by step, appending
// one revision per command under a shared batch token. The caller has run
// the same texts through Batch, so every step here succeeds.
func persistBatch(ctx context.Context, opts *BatchOptions, ed *editor.Editor, texts []string, sc *model.Scenario) error {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	name := opts.Name
	if name == "" {
		name = sc.Name
	}

	token := store.NewBatchToken()
	cur := sc
	for _, text := range texts {
		res, err := ed.Apply(text, cur)
		if err != nil {
			return err
		}
		if _, err := st.AppendRevision(ctx, name, token, text, res.Intent.Kind, res.Ops, res.Scenario); err != nil {
			return err
		}
		cur = res.Scenario
	}
	return nil
}

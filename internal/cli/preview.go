package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/internal/editor"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Scenario    string
	OntologyDir string
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview <command>",
		Short: "Compile a command into ops without applying them",
		Long: `Compile one command against a scenario and print the resulting op
list. Nothing is applied; the ops shown are exactly what a later apply
would run against the same scenario.

Exit codes:
  0 - Command compiled
  1 - Edit failure (unrecognized command, bad reference)
  2 - Command error (unreadable scenario, bad flags)

Examples:
  flowscribe preview -s scenario.json "remove polish1"
  flowscribe preview -s scenario.json --format json "add sterile filter after mf1"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Scenario, "scenario", "s", "", "scenario JSON file (required)")
	cmd.Flags().StringVar(&opts.OntologyDir, "ontology", "", "directory of CUE unit definitions (default: built-in)")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func runPreview(opts *PreviewOptions, text string, cmd *cobra.Command) error {
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

	res, err := editor.New(onto).Preview(text, sc)
	if err != nil {
		return formatter.EditFailure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}

	fmt.Fprintf(formatter.Writer, "intent: %s\n", res.Intent.Kind)
	writeOps(formatter.Writer, res.Ops)
	return nil
}

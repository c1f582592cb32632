package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/internal/editor"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	OntologyDir string
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <command>",
		Short: "Parse a command without touching a scenario",
		Long: `Parse one natural-language command and print the recognized intent.

Nothing is compiled or applied; use this to check how a phrase resolves
against the ontology before running preview or apply.

Exit codes:
  0 - Command recognized
  1 - Unrecognized command
  2 - Command error (bad flags, ontology failed to load)

Examples:
  flowscribe parse "replace aex membrane with chitosan capture"
  flowscribe parse --format json "set pH=4.4 on dsp04"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OntologyDir, "ontology", "", "directory of CUE unit definitions (default: built-in)")

	return cmd
}

func runParse(opts *ParseOptions, text string, cmd *cobra.Command) error {
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

	env, err := editor.New(onto).Parse(text)
	if err != nil {
		return formatter.EditFailure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(env)
	}

	args, err := json.Marshal(env.Args)
	if err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "%s %s\n", env.Kind, args)
	return nil
}

package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/internal/editor"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
	OntologyDir string
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show templates, synonyms, and grammar",
		Long: `Show everything the parser understands: the unit templates of the
active ontology, the synonym tables, and the one-line-per-verb grammar
summary.

Examples:
  flowscribe info
  flowscribe info --ontology ./ontology
  flowscribe info --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OntologyDir, "ontology", "", "directory of CUE unit definitions (default: built-in)")

	return cmd
}

func runInfo(opts *InfoOptions, cmd *cobra.Command) error {
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

	help := editor.New(onto).Help()
	if opts.Format == "json" {
		return formatter.Success(help)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Templates:")
	for _, tpl := range help.Templates {
		fmt.Fprintf(w, "  %s\n", tpl)
	}

	fmt.Fprintln(w, "Unit synonyms:")
	writeSynonyms(w, help.UnitSynonyms)

	fmt.Fprintln(w, "Parameter synonyms:")
	writeSynonyms(w, help.ParamSynonyms)

	fmt.Fprintln(w, "Grammar:")
	for _, line := range help.Grammar {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}

// writeSynonyms prints a synonym table in sorted order.
func writeSynonyms(w io.Writer, table map[string]string) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s -> %s\n", k, table[k])
	}
}

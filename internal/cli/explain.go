package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/classicq/internal/parsetree"
	"github.com/roach88/classicq/internal/translate"
)

// ExplainToken is one grammar token in the explain JSON output.
type ExplainToken struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	Pos  int    `json:"pos"`
}

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	Raw        string         `json:"raw"`
	Normalized string         `json:"normalized"`
	Tokens     []ExplainToken `json:"tokens"`
	Tree       string         `json:"tree,omitempty"`
	Rendered   string         `json:"rendered"`
	Final      string         `json:"final"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <query...>",
		Short: "Show every translation stage of a query",
		Long: `Show the output of every stage for one query: the raw input, the
normalized text, the grammar tokens, the parse tree, the rendered query and
the final result.

When parsing fails, the stages that completed are printed with the error.

Example:
  classicq explain 'star -"black hole" (x OR y)'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, strings.Join(args, " "), cmd)
		},
	}
	return cmd
}

func runExplain(opts *RootOptions, q string, cmd *cobra.Command) error {
	tr := opts.translator()
	formatter := opts.formatter(cmd)

	ex, err := tr.Explain(q)
	if opts.Format == "json" {
		if err != nil {
			if ferr := formatter.PipelineError(err); ferr != nil {
				return ferr
			}
			return WrapExitError(ExitFailure, "explain failed", err)
		}
		return formatter.Success(explainResult(ex))
	}

	fmt.Fprint(cmd.OutOrStdout(), ex.String())
	if err != nil {
		if ferr := formatter.PipelineError(err); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "explain failed", err)
	}
	return nil
}

func explainResult(ex *translate.Explanation) ExplainResult {
	res := ExplainResult{
		Raw:        ex.Raw,
		Normalized: ex.Normalized,
		Tokens:     make([]ExplainToken, len(ex.Tokens)),
		Rendered:   ex.Rendered,
		Final:      ex.Final,
	}
	for i, tok := range ex.Tokens {
		res.Tokens[i] = ExplainToken{Kind: tok.Kind.String(), Text: tok.Text, Pos: tok.Pos}
	}
	if ex.Tree != nil {
		res.Tree = parsetree.Dump(ex.Tree)
	}
	return res
}

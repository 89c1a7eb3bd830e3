package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/classicq/internal/corpus"
)

// TranslateResult is the JSON payload of one translated query.
type TranslateResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [query...]",
		Short: "Translate Classic queries",
		Long: `Translate one Classic query given as arguments, or every line of stdin
when no argument is given. Literal \n and \r in stdin lines stand for line
breaks inside a query.

Exit codes:
  0 - Every query translated
  1 - One or more queries had a syntax error

Examples:
  classicq translate 'star -planet hot'
  classicq translate --format json < queries.txt`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runTranslate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	var queries []string
	if len(args) > 0 {
		queries = []string{strings.Join(args, " ")}
	} else {
		var err error
		queries, err = corpus.ReadQueries(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
	}

	tr := opts.translator()
	formatter := opts.formatter(cmd)

	failed := 0
	for _, q := range queries {
		out, err := tr.Translate(q)
		if err != nil {
			failed++
			if ferr := formatter.PipelineError(err); ferr != nil {
				return ferr
			}
			continue
		}

		if opts.Format == "json" {
			err = formatter.Success(TranslateResult{Input: q, Output: out})
		} else {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d queries failed", failed, len(queries)))
	}
	return nil
}

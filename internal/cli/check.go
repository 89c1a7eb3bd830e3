package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/classicq/internal/lucene"
)

// CheckResult is the JSON payload of a successful check.
type CheckResult struct {
	Query string `json:"query"`
	Valid bool   `json:"valid"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <query...>",
		Short: "Check that a query is valid Lucene syntax",
		Long: `Check an already-translated query against the target dialect: upper-case
AND/OR/NOT, balanced parentheses, closed phrases, modifiers attached to an
operand and at least one positive operand per group.

Exit codes:
  0 - Query is valid
  1 - Query is invalid

Example:
  classicq check '((star OR hot) AND -planet)'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, strings.Join(args, " "), cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, q string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := lucene.Check(q); err != nil {
		if ferr := formatter.PipelineError(err); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "invalid query", err)
	}

	if opts.Format == "json" {
		return formatter.Success(CheckResult{Query: q, Valid: true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ valid")
	return nil
}

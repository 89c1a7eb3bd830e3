package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/classicq/internal/corpus"
	"github.com/roach88/classicq/internal/store"
)

// HistoryOptions holds flags for the history commands.
type HistoryOptions struct {
	*RootOptions
	Database string
	Category string
}

// HistoryRun is a run in history output.
type HistoryRun struct {
	ID     string         `json:"id"`
	Seq    int64          `json:"seq"`
	Source string         `json:"source"`
	Status string         `json:"status"`
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// HistoryItem is a recorded query in history output.
type HistoryItem struct {
	Seq      int64  `json:"seq"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	Category string `json:"category"`
	Error    string `json:"error,omitempty"`
}

// HistoryShowResult is the payload of history show.
type HistoryShowResult struct {
	Run   HistoryRun    `json:"run"`
	Items []HistoryItem `json:"items"`
}

// NewHistoryCommand creates the history command and its show subcommand.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batch runs",
		Long: `List the batch runs recorded with "classicq batch --db", oldest first.

Examples:
  classicq history --db history.db
  classicq history show <run-id> --db history.db --category missing_parenthesis`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(opts, cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database")

	show := &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show the items of one run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(opts, args[0], cmd)
		},
	}
	show.Flags().StringVar(&opts.Category, "category", "", "only items of this category")
	cmd.AddCommand(show)

	return cmd
}

// openHistory opens an existing database. History never creates one.
func openHistory(opts *HistoryOptions) (*store.Store, error) {
	path := opts.Database
	if path == "" {
		path = opts.config().Database
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "database path required (--db or config database)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func historyContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runHistoryList(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := openHistory(opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	runs, err := st.ListRuns(historyContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	out := make([]HistoryRun, len(runs))
	for i, r := range runs {
		out[i] = historyRun(r)
	}

	if opts.Format == "json" {
		return encodeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: out}, true)
	}

	w := cmd.OutOrStdout()
	if len(out) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}
	fmt.Fprintf(w, "%-4s  %-36s  %-8s  %6s  %6s  %s\n", "SEQ", "ID", "STATUS", "TOTAL", "FAILED", "SOURCE")
	for _, r := range out {
		fmt.Fprintf(w, "%-4d  %-36s  %-8s  %6d  %6d  %s\n", r.Seq, r.ID, r.Status, r.Total, failedCount(r.Counts), r.Source)
	}
	return nil
}

func runHistoryShow(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	if opts.Category != "" && !isKnownCategory(opts.Category) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown category %q", opts.Category))
	}

	st, err := openHistory(opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := historyContext(cmd)
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			formatter := opts.formatter(cmd)
			if ferr := formatter.Error(ErrCodeNotFound, err.Error(), nil); ferr != nil {
				return ferr
			}
			return WrapExitError(ExitCommandError, "run not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	items, err := st.ReadItems(ctx, runID, opts.Category)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read items", err)
	}

	result := HistoryShowResult{Run: historyRun(run), Items: make([]HistoryItem, len(items))}
	for i, it := range items {
		result.Items[i] = HistoryItem(it)
	}

	if opts.Format == "json" {
		return encodeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result}, true)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (%s)\n", result.Run.ID, result.Run.Status)
	fmt.Fprintf(w, "Source: %s\n", result.Run.Source)
	fmt.Fprintf(w, "Total:  %d\n", result.Run.Total)
	for _, name := range sortedCategories(result.Run.Counts) {
		fmt.Fprintf(w, "  %-22s %d\n", name, result.Run.Counts[name])
	}
	fmt.Fprintln(w)
	for _, it := range result.Items {
		fmt.Fprintf(w, "[%d] %s %s\n", it.Seq, it.Category, corpus.Escape(it.Input))
		if it.Error != "" {
			fmt.Fprintf(w, "     error: %s\n", it.Error)
		} else {
			fmt.Fprintf(w, "     => %s\n", it.Output)
		}
	}
	return nil
}

func historyRun(r store.Run) HistoryRun {
	return HistoryRun{
		ID:     r.ID,
		Seq:    r.Seq,
		Source: r.Source,
		Status: string(r.Status),
		Total:  r.Total,
		Counts: r.Counts,
	}
}

func failedCount(counts map[string]int) int {
	n := 0
	for name, count := range counts {
		if corpus.Category(name).IsFailure() {
			n += count
		}
	}
	return n
}

func isKnownCategory(name string) bool {
	for _, c := range corpus.Categories {
		if string(c) == name {
			return true
		}
	}
	return false
}

// sortedCategories lists known categories in report order, then any other
// names alphabetically.
func sortedCategories(counts map[string]int) []string {
	var names, extra []string
	for _, c := range corpus.Categories {
		if _, ok := counts[string(c)]; ok {
			names = append(names, string(c))
		}
	}
	for name := range counts {
		if !isKnownCategory(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/classicq/internal/corpus"
	"github.com/roach88/classicq/internal/lucene"
	"github.com/roach88/classicq/internal/store"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Database  string
	Processed string
	Compare   string
	Check     bool
	Workers   int

	// IDGenerator overrides the run ID generator (for testing).
	// If nil, the store uses UUIDv7.
	IDGenerator store.IDGenerator
}

// BatchRegression is one input whose translation changed.
type BatchRegression struct {
	Input    string `json:"input"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Category string `json:"category"`
}

// BatchResult is the outcome of a batch run.
type BatchResult struct {
	Source      string            `json:"source"`
	RunID       string            `json:"run_id,omitempty"`
	Total       int               `json:"total"`
	Failed      int               `json:"failed"`
	Counts      map[string]int    `json:"counts"`
	Regressions []BatchRegression `json:"regressions,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Translate a query log and report outcomes per category",
		Long: `Translate every query of a log file (one query per line) concurrently
and count the outcomes per category.

With --db the run and every item are recorded in a SQLite history.
With --processed the successful translations are written as four-line
chunks. With --compare a previously processed file is read and every
input whose translation changed is reported as a regression.

Exit codes:
  0 - Batch completed without regressions
  1 - One or more regressions against --compare
  2 - Command error (missing file, database error)

Examples:
  classicq batch queries.txt
  classicq batch queries.txt --db history.db --check
  classicq batch queries.txt --compare processed.txt --processed processed.new`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.Processed, "processed", "", "write successful translations to this file")
	cmd.Flags().StringVar(&opts.Compare, "compare", "", "report regressions against a processed file")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "verify every output with the Lucene checker")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent translations (0 = GOMAXPROCS)")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	cfg := opts.config()
	database := opts.Database
	if database == "" {
		database = cfg.Database
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open query log", err)
	}
	queries, err := corpus.ReadQueries(f)
	f.Close()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read query log", err)
	}

	var previous []corpus.ProcessedEntry
	if opts.Compare != "" {
		previous, err = readProcessedFile(opts.Compare)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read processed file", err)
		}
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("translating queries", "file", path, "count", len(queries), "workers", workers)
	p := &corpus.Processor{
		Translator: opts.translator(),
		Workers:    workers,
	}
	if opts.Check {
		p.Check = lucene.Check
	}
	report, err := p.Process(ctx, queries)
	if err != nil {
		return WrapExitError(ExitCommandError, "batch interrupted", err)
	}

	result := BatchResult{
		Source: path,
		Total:  len(report.Items),
		Failed: report.Failed(),
		Counts: countsByName(report.Counts),
	}

	if database != "" {
		result.RunID, err = recordRun(ctx, database, path, report, opts.IDGenerator)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		slog.Debug("run recorded", "db", database, "run", result.RunID)
	}

	if opts.Processed != "" {
		if err := writeProcessedFile(opts.Processed, report.Items); err != nil {
			return WrapExitError(ExitCommandError, "failed to write processed file", err)
		}
	}

	if previous != nil {
		for _, r := range report.Regressions(previous) {
			result.Regressions = append(result.Regressions, BatchRegression{
				Input:    r.Input,
				Previous: r.Previous,
				Current:  r.Current,
				Category: string(r.Category),
			})
		}
	}

	slog.Info("batch complete", "total", result.Total, "failed", result.Failed, "regressions", len(result.Regressions))

	if opts.Format == "json" {
		return outputBatchJSON(cmd, result)
	}
	return outputBatchText(cmd, result)
}

func countsByName(counts map[corpus.Category]int) map[string]int {
	out := make(map[string]int, len(counts))
	for c, n := range counts {
		out[string(c)] = n
	}
	return out
}

// recordRun stores the report as one finished run and returns its ID.
func recordRun(ctx context.Context, path, source string, report *corpus.Report, ids store.IDGenerator) (string, error) {
	var storeOpts []store.Option
	if ids != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(ids))
	}
	st, err := store.Open(path, storeOpts...)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := st.BeginRun(ctx, source)
	if err != nil {
		return "", err
	}

	items := make([]store.Item, len(report.Items))
	for i, it := range report.Items {
		items[i] = store.Item{
			Seq:      int64(it.Seq),
			Input:    it.Input,
			Output:   it.Output,
			Category: string(it.Category),
		}
		if it.Err != nil {
			items[i].Error = it.Err.Error()
		}
	}
	if err := st.RecordItems(ctx, run.ID, items); err != nil {
		return "", err
	}
	if err := st.FinishRun(ctx, run.ID, countsByName(report.Counts)); err != nil {
		return "", err
	}
	return run.ID, nil
}

func readProcessedFile(path string) ([]corpus.ProcessedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return corpus.ReadProcessed(f)
}

func writeProcessedFile(path string, items []corpus.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := corpus.WriteProcessed(f, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func outputBatchJSON(cmd *cobra.Command, result BatchResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if n := len(result.Regressions); n > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeRegression,
			Message: fmt.Sprintf("%d regression(s)", n),
		}
	}

	if err := encodeJSON(cmd.OutOrStdout(), response, true); err != nil {
		return err
	}
	if n := len(result.Regressions); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d regression(s)", n))
	}
	return nil
}

func outputBatchText(cmd *cobra.Command, result BatchResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Processed %d queries from %s\n", result.Total, result.Source)
	for _, c := range corpus.Categories {
		fmt.Fprintf(w, "  %-22s %d\n", c, result.Counts[string(c)])
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", result.RunID)
	}

	if len(result.Regressions) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	for _, r := range result.Regressions {
		fmt.Fprintf(w, "✗ %s\n", corpus.Escape(r.Input))
		fmt.Fprintf(w, "  was: %s\n", r.Previous)
		fmt.Fprintf(w, "  now: %s (%s)\n", r.Current, r.Category)
	}
	n := len(result.Regressions)
	fmt.Fprintf(w, "\n%d regression(s)\n", n)
	return NewExitError(ExitFailure, fmt.Sprintf("%d regression(s)", n))
}

package store

import (
	"context"
	"fmt"
)

// BeginRun creates a running run for source and returns it. The run's seq is
// one past the highest seq in the store.
func (s *Store) BeginRun(ctx context.Context, source string) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("begin run: next seq: %w", err)
	}

	run := Run{
		ID:     s.ids.Generate(),
		Seq:    seq,
		Source: source,
		Status: RunRunning,
		Counts: map[string]int{},
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, source, status)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Seq, run.Source, string(run.Status))
	if err != nil {
		return Run{}, fmt.Errorf("begin run: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}
	return run, nil
}

// RecordItem inserts one item of a run.
// Uses ON CONFLICT(run_id, seq) DO NOTHING so re-recording an item is a no-op.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) RecordItem(ctx context.Context, runID string, item Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (run_id, seq, input, output, category, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		runID,
		item.Seq,
		item.Input,
		item.Output,
		item.Category,
		item.Error,
	)
	if err != nil {
		return fmt.Errorf("record item %d: %w", item.Seq, err)
	}
	return nil
}

// RecordItems inserts many items of a run in one transaction.
func (s *Store) RecordItems(ctx context.Context, runID string, items []Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record items: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (run_id, seq, input, output, category, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("record items: prepare: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, runID, item.Seq, item.Input, item.Output, item.Category, item.Error); err != nil {
			return fmt.Errorf("record items: item %d: %w", item.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record items: commit: %w", err)
	}
	return nil
}

// FinishRun marks a run finished and stores its per-category counts. The
// run's total is the sum of counts.
func (s *Store) FinishRun(ctx context.Context, runID string, counts map[string]int) error {
	countsJSON, err := marshalCounts(counts)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, total = ?, counts = ?
		WHERE id = ?
	`, string(RunFinished), total, countsJSON, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

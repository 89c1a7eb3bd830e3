package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/classicq/internal/testutil"
)

// createTestStore opens a fresh store in a temp directory with sequential
// run IDs (run-0001, run-0002, ...).
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("run")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testItem(seq int64, input, output, category string) Item {
	return Item{Seq: seq, Input: input, Output: output, Category: category}
}

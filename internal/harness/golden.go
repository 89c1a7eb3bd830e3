package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a suite result as indented JSON. Maps keep the keys
// sorted and HTML escaping is off, so golden files stay readable.
func Snapshot(suite *Suite, result *Result) ([]byte, error) {
	cases := make([]map[string]any, len(result.Cases))
	for i, c := range result.Cases {
		m := map[string]any{
			"name":   c.Name,
			"input":  c.Input,
			"output": c.Output,
			"pass":   c.Pass,
		}
		if c.Error != "" {
			m["error"] = c.Error
		}
		cases[i] = m
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"suite": suite.Name,
		"cases": cases,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden runs a suite and compares every case's output against a
// golden file stored in testdata/golden/{suite.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the run result so callers can also assert on Pass.
func RunWithGolden(t *testing.T, suite *Suite, tr Translator) (*Result, error) {
	t.Helper()

	result := Run(suite, tr)
	data, err := Snapshot(suite, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, suite.Name, data)

	return result, nil
}

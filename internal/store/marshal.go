package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalCounts converts category counts to JSON TEXT for storage.
// Go's encoder sorts map keys, so equal counts always store identical text.
func marshalCounts(counts map[string]int) (string, error) {
	if counts == nil {
		counts = map[string]int{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(counts); err != nil {
		return "", fmt.Errorf("marshal counts: %w", err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalCounts parses JSON TEXT to category counts.
func unmarshalCounts(data string) (map[string]int, error) {
	counts := map[string]int{}
	if data == "" || data == "{}" {
		return counts, nil
	}
	if err := json.Unmarshal([]byte(data), &counts); err != nil {
		return nil, fmt.Errorf("unmarshal counts: %w", err)
	}
	return counts, nil
}

package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Processed files hold one four-line chunk per successful translation:
//
//	--------------------------------------------------------------------------------
//	classic.: <escaped input>
//	modern..: <output>
//	numFound: <hit count, or - when unknown>
const (
	chunkSeparator = "--------------------------------------------------------------------------------"
	classicPrefix  = "classic.: "
	modernPrefix   = "modern..: "
	numFoundPrefix = "numFound: "
)

// ProcessedEntry is one chunk of a processed file.
type ProcessedEntry struct {
	Input    string
	Output   string
	NumFound string
}

// WriteProcessed writes the successful items of a batch as processed-file
// chunks. The hit count is unknown offline and written as "-".
func WriteProcessed(w io.Writer, items []Item) error {
	bw := bufio.NewWriter(w)
	for _, item := range items {
		if item.Category != Success {
			continue
		}
		fmt.Fprintln(bw, chunkSeparator)
		fmt.Fprintln(bw, classicPrefix+Escape(item.Input))
		fmt.Fprintln(bw, modernPrefix+item.Output)
		fmt.Fprintln(bw, numFoundPrefix+"-")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write processed: %w", err)
	}
	return nil
}

// ReadProcessed parses a processed file. Inputs are unescaped.
func ReadProcessed(r io.Reader) ([]ProcessedEntry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var (
		lines   []string
		entries []ProcessedEntry
	)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read processed: %w", err)
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines)%4 != 0 {
		return nil, fmt.Errorf("read processed: %d lines is not a whole number of 4-line chunks", len(lines))
	}

	for i := 0; i < len(lines); i += 4 {
		chunk := lines[i : i+4]
		if chunk[0] != chunkSeparator {
			return nil, fmt.Errorf("read processed: line %d: expected separator", i+1)
		}
		fields := make([]string, 3)
		for j, prefix := range []string{classicPrefix, modernPrefix, numFoundPrefix} {
			line := chunk[j+1]
			if !strings.HasPrefix(line, prefix) {
				return nil, fmt.Errorf("read processed: line %d: expected %q", i+j+2, strings.TrimSpace(prefix))
			}
			fields[j] = strings.TrimPrefix(line, prefix)
		}
		entries = append(entries, ProcessedEntry{
			Input:    Unescape(fields[0]),
			Output:   fields[1],
			NumFound: fields[2],
		})
	}
	return entries, nil
}

// Regression is an input whose translation changed since a processed file
// was written.
type Regression struct {
	Input    string
	Previous string
	Current  string
	Category Category
}

// Regressions compares the report against previously processed entries.
// Entries whose input is not part of the report are skipped.
func (r *Report) Regressions(entries []ProcessedEntry) []Regression {
	byInput := make(map[string]Item, len(r.Items))
	for _, item := range r.Items {
		if _, seen := byInput[item.Input]; !seen {
			byInput[item.Input] = item
		}
	}

	var out []Regression
	for _, e := range entries {
		item, ok := byInput[e.Input]
		if !ok || item.Output == e.Output {
			continue
		}
		out = append(out, Regression{
			Input:    e.Input,
			Previous: e.Output,
			Current:  item.Output,
			Category: item.Category,
		})
	}
	return out
}

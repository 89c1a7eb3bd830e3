// Package corpus runs the translator over logs of historical user queries.
//
// A query log holds one query per line. Multi-line queries are stored with
// their line breaks written as the two-character escapes \r and \n.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var (
	unescaper = strings.NewReplacer(`\r`, "\r", `\n`, "\n")
	escaper   = strings.NewReplacer("\r", `\r`, "\n", `\n`)
)

// Unescape expands the \r and \n escapes of a logged query.
func Unescape(line string) string {
	return unescaper.Replace(line)
}

// Escape is the inverse of Unescape for a query without literal backslash
// escapes.
func Escape(q string) string {
	return escaper.Replace(q)
}

// maxLine bounds a single logged query.
const maxLine = 1 << 20

// ReadQueries reads a query log. Blank lines are skipped.
func ReadQueries(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var queries []string
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		queries = append(queries, Unescape(text))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read queries: line %d: %w", line+1, err)
	}
	return queries, nil
}

package harness

import (
	"fmt"

	"github.com/roach88/classicq/internal/grammar"
)

// Translator is the part of translate.Translator a suite run needs.
type Translator interface {
	Translate(q string) (string, error)
}

// Run executes every case of the suite and returns the result. A case
// passes when its output equals Expect exactly, or, for error cases, when
// translation fails with a syntax error.
func Run(suite *Suite, tr Translator) *Result {
	result := NewResult()

	for _, c := range suite.Cases {
		out, err := tr.Translate(c.Input)
		cr := CaseResult{Name: c.Name, Input: c.Input, Output: out}
		if err != nil {
			cr.Error = err.Error()
		}

		switch {
		case c.Expect != nil && err != nil:
			result.AddError(fmt.Sprintf("%s/%s: unexpected error: %v", suite.Name, c.Name, err))
		case c.Expect != nil && out != *c.Expect:
			result.AddError(fmt.Sprintf("%s/%s: got %q, want %q", suite.Name, c.Name, out, *c.Expect))
		case c.Expect == nil && err == nil:
			result.AddError(fmt.Sprintf("%s/%s: got %q, want a syntax error", suite.Name, c.Name, out))
		case c.Expect == nil && !grammar.IsSyntaxError(err):
			result.AddError(fmt.Sprintf("%s/%s: got %v, want a syntax error", suite.Name, c.Name, err))
		default:
			cr.Pass = true
		}

		result.Cases = append(result.Cases, cr)
	}

	return result
}

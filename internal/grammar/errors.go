package grammar

import (
	"errors"
	"fmt"
)

// SyntaxError reports text the grammar cannot accept: a character no token
// class matches, an unbalanced parenthesis, an empty group, or a modifier
// without an operand.
//
// It is the only error the translation pipeline produces. Callers receive it
// as is; no partial recovery is attempted.
type SyntaxError struct {
	// Lexeme is the offending input, or "" at end of input.
	Lexeme string

	// Pos is the byte offset of Lexeme in the parsed text.
	Pos int

	// Line and Column are 1-based.
	Line   int
	Column int

	// Reason describes what the parser expected.
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Lexeme == "" {
		return fmt.Sprintf("syntax error at %d:%d: %s at end of input", e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("syntax error at %d:%d: %s %q", e.Line, e.Column, e.Reason, e.Lexeme)
}

// IsSyntaxError returns true if err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// AsSyntaxError extracts the *SyntaxError from err, if any.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

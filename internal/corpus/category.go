package corpus

import (
	"github.com/roach88/classicq/internal/grammar"
	"github.com/roach88/classicq/internal/lucene"
)

// Category classifies the outcome of translating one query.
type Category string

const (
	Success             Category = "success"
	Empty               Category = "empty"
	MissingDoubleQuotes Category = "missing_double_quotes"
	MissingSingleQuotes Category = "missing_single_quotes"
	MissingLatexQuotes  Category = "missing_latex_quotes"
	MissingParenthesis  Category = "missing_parenthesis"
	InvalidOutput       Category = "invalid_output"
	Unknown             Category = "unknown"
)

// Categories lists every category in report order.
var Categories = []Category{
	Success,
	Empty,
	MissingDoubleQuotes,
	MissingSingleQuotes,
	MissingLatexQuotes,
	MissingParenthesis,
	InvalidOutput,
	Unknown,
}

// Classify maps a translation result to its category. A syntax error is
// classified by the first character of the offending lexeme.
func Classify(output string, err error) Category {
	if err != nil {
		if lucene.IsCheckError(err) {
			return InvalidOutput
		}
		se, ok := grammar.AsSyntaxError(err)
		if !ok || se.Lexeme == "" {
			return Unknown
		}
		switch se.Lexeme[0] {
		case '"':
			return MissingDoubleQuotes
		case '\'':
			return MissingSingleQuotes
		case '`':
			return MissingLatexQuotes
		case '(', ')':
			return MissingParenthesis
		}
		return Unknown
	}
	if output == "" {
		return Empty
	}
	return Success
}

// IsFailure reports whether c counts as a failed translation.
func (c Category) IsFailure() bool {
	return c != Success && c != Empty
}

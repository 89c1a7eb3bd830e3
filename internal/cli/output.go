package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/classicq/internal/grammar"
	"github.com/roach88/classicq/internal/lucene"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Failed queries, failed cases or regressions
	ExitCommandError = 2 // Command error (invalid paths, database errors, bad config)
)

// Error codes carried in JSON error responses.
const (
	ErrCodeSyntax       = "E_SYNTAX"
	ErrCodeInvalidQuery = "E_INVALID_QUERY"
	ErrCodeTestFailed   = "E_TEST_FAILED"
	ErrCodeRegression   = "E_REGRESSION"
	ErrCodeNotFound     = "E_NOT_FOUND"
	ErrCodeGeneric      = "E_GENERIC"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // E_SYNTAX, E_NOT_FOUND, ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// SyntaxDetails is the Details payload of an E_SYNTAX error.
type SyntaxDetails struct {
	Lexeme string `json:"lexeme"`
	Pos    int    `json:"pos"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// CheckDetails is the Details payload of an E_INVALID_QUERY error.
type CheckDetails struct {
	Lexeme string `json:"lexeme,omitempty"`
	Pos    int    `json:"pos"`
	Reason string `json:"reason"`
}

// errorDetails maps a pipeline error to its code and JSON details.
func errorDetails(err error) (string, any) {
	if se, ok := grammar.AsSyntaxError(err); ok {
		return ErrCodeSyntax, SyntaxDetails{
			Lexeme: se.Lexeme,
			Pos:    se.Pos,
			Line:   se.Line,
			Column: se.Column,
		}
	}
	var ce *lucene.Error
	if errors.As(err, &ce) {
		return ErrCodeInvalidQuery, CheckDetails{Lexeme: ce.Lexeme, Pos: ce.Pos, Reason: ce.Reason}
	}
	return ErrCodeGeneric, nil
}

// encodeJSON writes v as one JSON document. Queries are full of '<', '>'
// and '&', so HTML escaping stays off.
func encodeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return encodeJSON(f.Writer, CLIResponse{
			Status: "ok",
			Data:   data,
		}, false)
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return encodeJSON(f.Writer, CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		}, false)
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %+v\n", details)
	}
	return nil
}

// PipelineError reports a translation or check failure, choosing the code
// and details from the error's type.
func (f *OutputFormatter) PipelineError(err error) error {
	code, details := errorDetails(err)
	return f.Error(code, err.Error(), details)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

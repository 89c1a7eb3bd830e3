package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/classicq/internal/grammar"
	"github.com/roach88/classicq/internal/lucene"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(TranslateResult{Input: "a & b", Output: "(a OR & OR b)"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"input":"a & b"`, "HTML escaping must be off")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeNotFound, "run not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "run not found", resp.Error.Message)
}

func TestOutputFormatter_PipelineErrorSyntax(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	synErr := &grammar.SyntaxError{Lexeme: `"`, Pos: 4, Line: 1, Column: 5, Reason: "unterminated phrase"}
	require.NoError(t, formatter.PipelineError(fmt.Errorf("wrapped: %w", synErr)))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string        `json:"code"`
			Details SyntaxDetails `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeSyntax, resp.Error.Code)
	assert.Equal(t, SyntaxDetails{Lexeme: `"`, Pos: 4, Line: 1, Column: 5}, resp.Error.Details)
}

func TestErrorDetails(t *testing.T) {
	code, details := errorDetails(&lucene.Error{Pos: 3, Lexeme: "AND", Reason: "operator without left operand"})
	assert.Equal(t, ErrCodeInvalidQuery, code)
	assert.Equal(t, CheckDetails{Lexeme: "AND", Pos: 3, Reason: "operator without left operand"}, details)

	code, details = errorDetails(errors.New("boom"))
	assert.Equal(t, ErrCodeGeneric, code)
	assert.Nil(t, details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("(one OR two)"))
	assert.Equal(t, "(one OR two)\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	require.NoError(t, formatter.Error(ErrCodeSyntax, "unexpected input", SyntaxDetails{Pos: 1}))
	assert.Contains(t, buf.String(), "Error [E_SYNTAX]")
	assert.Contains(t, buf.String(), "unexpected input")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	require.NoError(t, formatter.Error(ErrCodeSyntax, "unexpected input", SyntaxDetails{Lexeme: "'", Pos: 1}))
	assert.Contains(t, buf.String(), "Error [E_SYNTAX]")
	assert.Contains(t, buf.String(), "Details:")
	assert.Contains(t, buf.String(), "Lexeme:'")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("processing %s", "queries.txt")

			assert.Empty(t, buf.String(), "diagnostics never go to the JSON stream")
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "processing queries.txt")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("outer: %w", NewExitError(ExitFailure, "failed"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitCommandError, "open", errors.New("no such file"))
	assert.Equal(t, "open: no such file", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "no such file")
}

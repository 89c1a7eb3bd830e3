package lucene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/classicq/internal/translate"
)

func TestCheck_Valid(t *testing.T) {
	for _, q := range []string{
		"(one OR two)",
		"(one NOT three)",
		"(+star)",
		"(* AND -star)",
		"((star OR hot) AND -planet)",
		`("Blanco 1" OR (* AND -"spectroscopic orbits" AND -supernova))`,
		"((nanotube OR micromagnetism) AND NOT carbon AND NOT (superconductivity OR Majorana))",
		"(a OR NOT b)",
		`("say \" OR -" -b)`,
		`(x\"y OR "NOT")`,
		"(G79.29+0.46 OR stellar-evolution OR =granule)",
		"(and OR or)",
		"(*:* AND -star)",
		"star",
	} {
		t.Run(q, func(t *testing.T) {
			assert.NoError(t, Check(q))
		})
	}
}

func TestCheck_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		q      string
		pos    int
		reason string
	}{
		{"empty", "", 0, "empty query"},
		{"blank", "   ", 0, "empty query"},
		{"unclosed phrase", `(a OR "b)`, 6, "unrecognized input"},
		{"unclosed group", "(a OR b", 0, "unclosed group"},
		{"unmatched close", "a) b", 1, "unmatched closing parenthesis"},
		{"empty group", "a ()", 3, "empty group"},
		{"leading operator", "(AND a)", 1, "operator without left operand"},
		{"trailing operator", "(a OR)", 3, "operator without right operand"},
		{"double operator", "(a OR AND b)", 3, "operator without right operand"},
		{"detached modifier", "(a - b)", 3, "modifier not attached to an operand"},
		{"pure exclusion", "(-a AND -b)", 1, "sequence has no positive operand"},
		{"pure negation", "(-a NOT b)", 1, "sequence has no positive operand"},
		{"nested pure exclusion", "(a OR (-b))", 7, "sequence has no positive operand"},
		{"top-level exclusion", "-a", 0, "sequence has no positive operand"},
		{"operator first", "AND a", 0, "operator without left operand"},
		{"operator last", "a AND", 2, "operator without right operand"},
		{"negation run before close", "(a AND NOT)", 3, "operator without right operand"},
		{"modifier before close", "(a -)", 4, "expected an operand"},
		{"stacked modifiers", "--a", 1, "expected an operand"},
		{"modifier at end", "a -", 2, "modifier not attached to an operand"},
		{"open at end", "a (", 2, "unclosed group"},
		{"inner group unclosed", "(a (b) (c", 7, "unclosed group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.q)
			require.Error(t, err)
			require.True(t, IsCheckError(err), "want *Error, got %T", err)
			e := err.(*Error)
			assert.Equal(t, tt.pos, e.Pos)
			assert.Equal(t, tt.reason, e.Reason)
		})
	}
}

func TestTables_Generate(t *testing.T) {
	tbl, err := tables()
	require.NoError(t, err)
	require.NotNil(t, tbl)

	again, err := tables()
	require.NoError(t, err)
	assert.Same(t, tbl, again)
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, `invalid query at 3: unclosed group "("`, (&Error{Pos: 3, Lexeme: "(", Reason: "unclosed group"}).Error())
	assert.Equal(t, "invalid query at 0: empty query", (&Error{Reason: "empty query"}).Error())
}

func TestCheck_TranslatorOutput(t *testing.T) {
	for _, q := range []string{
		"one two",
		"-star",
		"star -planet hot",
		`"Blanco 1" (-"spectroscopic orbits" -supernova -"black hole")`,
		"(nanotube or \"domain wall\") and not (carbon)",
		"-(-star)",
		"NOT a",
		`x"y z`,
		"+LBV 'luminous blue variable' or G79.29+0.46",
	} {
		out, err := translate.Translate(q)
		require.NoError(t, err)
		assert.NoError(t, Check(out), "translate(%q) = %q", q, out)
	}
}

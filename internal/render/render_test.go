package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/classicq/internal/grammar"
	"github.com/roach88/classicq/internal/parsetree"
)

func mustParse(t *testing.T, q string) *parsetree.Start {
	t.Helper()
	tree, err := grammar.Parse(q)
	require.NoError(t, err)
	return tree
}

func TestRender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"one two", "(one OR two)"},
		{"one NOT three", "(one NOT three)"},
		{"(one)", "(one)"},
		{"((one two))", "(one OR two)"},
		{"(one (two OR three and four))", "(one OR (two OR three AND four))"},
		{"((foo AND bar) OR (baz) OR a)", "((foo AND bar) OR baz OR a)"},
		{"star -planet hot", "((star OR hot) AND -planet)"},
		{"-star -planet hot", "(hot AND -star AND -planet)"},
		{"-this AND that", "(that AND -this)"},
		{"-this OR that AND (-foo OR bar)", "((that AND (bar AND -foo)) AND -this)"},
		{"-star", "(* AND -star)"},
		{"-(star)", "(* AND -star)"},
		{"(-star)", "(* AND -star)"},
		{"-(-star)", "(* AND -(* AND -star))"},
		{"+(star)", "(+star)"},
		{"+(star or planet)", "(+(star OR planet))"},
		{"-(+star)", "(* AND -star)"},
		{"+(+star)", "(+star)"},
		{"=(+star)", "(+star)"},
		{"+(=star)", "(+star)"},
		{"-(+(star or planet))", "(* AND -(star OR planet))"},
		{"a +(=b)", "(a OR +b)"},
		{"((a) -b)", "(a AND -b)"},
		{`"a" -"b c"`, `("a" AND -"b c")`},
		{"a OR NOT b", "(a OR NOT b)"},
		{"(or global)", `("or" OR global)`},
		{"Near Earth", `("Near" OR Earth)`},
		{"2001-01-01 6-30-15 ams-02", `("2001-01-01" OR "6-30-15" OR ams-02)`},
		{"/path UV/X-ray", "(path OR UV/X-ray)"},
		{"a / b", "(a OR b)"},
		{"[OII] star]", "(OII OR star)"},
		{"``AGN'' `NGC 253'", `("AGN" OR "NGC 253")`},
		{"", "()"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(mustParse(t, tt.in)))
		})
	}
}

func TestRender_EscapesInnerQuotes(t *testing.T) {
	tree := &parsetree.Start{Elements: []parsetree.Element{
		&parsetree.Clause{Body: &parsetree.Query{Term: parsetree.Word{Text: `x"y`}}},
		&parsetree.Clause{Body: &parsetree.Query{Term: parsetree.Phrase{Text: `say "hi"`, Style: parsetree.SingleQuote}}},
	}}
	assert.Equal(t, `(x\"y OR "say \"hi\"")`, Render(tree))
}

func TestRender_NilTree(t *testing.T) {
	assert.Equal(t, "()", Render(nil))
}

func TestRender_Options(t *testing.T) {
	r := New(Options{ReservedWords: []string{"near", "with"}, Wildcard: "*:*"})

	assert.Equal(t, `("With" OR "near" OR and)`, r.Render(&parsetree.Start{Elements: []parsetree.Element{
		&parsetree.Clause{Body: &parsetree.Query{Term: parsetree.Word{Text: "With"}}},
		&parsetree.Clause{Body: &parsetree.Query{Term: parsetree.Word{Text: "near"}}},
		&parsetree.Clause{Body: &parsetree.Query{Term: parsetree.Word{Text: "and"}}},
	}}))
	assert.Equal(t, "(*:* AND -star)", r.Render(mustParse(t, "-star")))
}

func TestFragment_Joiner(t *testing.T) {
	assert.Equal(t, "OR", Fragment{Pending: PendingOr}.Joiner())
	assert.Equal(t, "AND", Fragment{Pending: PendingAnd}.Joiner())
	assert.Equal(t, "AND NOT", Fragment{Pending: PendingOr, Explicit: parsetree.AndNot}.Joiner())
	assert.Equal(t, "", Fragment{}.Joiner())
}

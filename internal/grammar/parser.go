// Package grammar turns normalized Classic query text into a parse tree.
//
// The token table is compiled once into a lexmachine DFA and the productions
// once into SLR(1) tables; both are shared read-only by every call:
//
//	Query  := Seq
//	Seq    := Clause | Seq Clause | Seq OP Clause
//	Clause := Body | MOD Body
//	Body   := TERM | "(" Seq ")"
//
// Keywords are contextual, so they are classified before the tables run.
// A keyword where an operand is expected is a TERM ("(or global)" searches
// for "or"). Operator keywords with nothing after them before ")" or end of
// input are dropped. AND NOT and OR NOT fold into a single OP.
package grammar

import (
	"errors"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/roach88/classicq/internal/lrparse"
	"github.com/roach88/classicq/internal/parsetree"
)

func tracer() tracing.Trace {
	return tracing.Select("classicq.grammar")
}

// Terminal token values of the Classic productions.
const (
	symTerm = iota + 1
	symOp
	symMod
	symLParen
	symRParen
)

func buildTable() (*lrparse.Table, error) {
	return lrparse.Define("Classic", func(r *lrparse.Rules) {
		b := r.B
		r.On(b.LHS("Query").N("Seq").End(), func(rhs []interface{}) (interface{}, error) {
			return &parsetree.Start{Elements: rhs[0].([]parsetree.Element)}, nil
		})
		r.On(b.LHS("Seq").N("Clause").End(), func(rhs []interface{}) (interface{}, error) {
			return []parsetree.Element{rhs[0].(*parsetree.Clause)}, nil
		})
		r.On(b.LHS("Seq").N("Seq").N("Clause").End(), func(rhs []interface{}) (interface{}, error) {
			return append(rhs[0].([]parsetree.Element), rhs[1].(*parsetree.Clause)), nil
		})
		r.On(b.LHS("Seq").N("Seq").T("OP", symOp).N("Clause").End(), func(rhs []interface{}) (interface{}, error) {
			return append(rhs[0].([]parsetree.Element), rhs[1].(parsetree.Operator), rhs[2].(*parsetree.Clause)), nil
		})
		r.On(b.LHS("Clause").N("Body").End(), func(rhs []interface{}) (interface{}, error) {
			return &parsetree.Clause{Body: rhs[0].(parsetree.Body)}, nil
		})
		r.On(b.LHS("Clause").T("MOD", symMod).N("Body").End(), func(rhs []interface{}) (interface{}, error) {
			return &parsetree.Clause{Modifier: rhs[0].(parsetree.Modifier), Body: rhs[1].(parsetree.Body)}, nil
		})
		r.On(b.LHS("Body").T("TERM", symTerm).End(), func(rhs []interface{}) (interface{}, error) {
			return &parsetree.Query{Term: rhs[0].(parsetree.Term)}, nil
		})
		r.On(b.LHS("Body").T("(", symLParen).N("Seq").T(")", symRParen).End(), func(rhs []interface{}) (interface{}, error) {
			return &parsetree.Group{Elements: rhs[1].([]parsetree.Element)}, nil
		})
	})
}

// Parse tokenizes and parses text into a tree. Empty or blank text yields a
// Start with no elements.
func (g *Grammar) Parse(text string) (*parsetree.Start, error) {
	tokens, err := g.Tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return &parsetree.Start{}, nil
	}

	syms := classify(tokens)
	input := make([]lrparse.Token, len(syms))
	for i, s := range syms {
		input[i] = lrparse.Token{Kind: s.kind, Value: s.value}
	}

	v, err := g.table.Parse(input)
	if err != nil {
		var f *lrparse.Failure
		if errors.As(err, &f) {
			return nil, diagnose(text, syms, f.Index)
		}
		return nil, err
	}
	return v.(*parsetree.Start), nil
}

// Parse parses text with the Default grammar.
func Parse(text string) (*parsetree.Start, error) {
	return Default().Parse(text)
}

// symbol is a token classified as a terminal of the productions. value is
// what the terminal contributes to the tree.
type symbol struct {
	kind  int
	tok   Token
	value interface{}
}

// classify maps tokens to terminals, resolving each keyword to an operator,
// a word, or nothing.
func classify(tokens []Token) []symbol {
	closes := func(i int) bool {
		return i >= len(tokens) || tokens[i].Kind == KindRParen
	}

	syms := make([]symbol, 0, len(tokens))
	operand := true
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.Kind {
		case KindKeyword:
			if operand {
				syms = append(syms, symbol{kind: symTerm, tok: t, value: parsetree.Word{Text: t.Text}})
				operand = false
				continue
			}
			n := i
			for n < len(tokens) && tokens[n].Kind == KindKeyword {
				n++
			}
			if closes(n) {
				tracer().Debugf("dropping %d dangling operator(s) at %d", n-i, t.Pos)
				i = n - 1
				continue
			}
			op := t.Operator
			if (op == parsetree.And || op == parsetree.Or) && i+1 < len(tokens) {
				if next := tokens[i+1]; next.Kind == KindKeyword && next.Operator == parsetree.Not && !closes(i+2) {
					op = parsetree.AndNot
					if t.Operator == parsetree.Or {
						op = parsetree.OrNot
					}
					i++
				}
			}
			syms = append(syms, symbol{kind: symOp, tok: t, value: op})
			operand = true
		case KindModifier:
			mod, _ := parsetree.ParseModifier(t.Text)
			syms = append(syms, symbol{kind: symMod, tok: t, value: mod})
			operand = true
		case KindLParen:
			syms = append(syms, symbol{kind: symLParen, tok: t, value: t})
			operand = true
		case KindRParen:
			syms = append(syms, symbol{kind: symRParen, tok: t, value: t})
			operand = false
		case KindPhrase:
			syms = append(syms, symbol{kind: symTerm, tok: t, value: phrase(t.Text)})
			operand = false
		case KindForbidden:
			syms = append(syms, symbol{kind: symTerm, tok: t, value: parsetree.ForbiddenMarker{Text: t.Text}})
			operand = false
		default:
			syms = append(syms, symbol{kind: symTerm, tok: t, value: parsetree.Word{Text: t.Text}})
			operand = false
		}
	}
	return syms
}

func phrase(lexeme string) parsetree.Phrase {
	switch {
	case strings.HasPrefix(lexeme, "``"):
		return parsetree.Phrase{Text: lexeme[2 : len(lexeme)-2], Style: parsetree.LatexQuote}
	case strings.HasPrefix(lexeme, "`"):
		return parsetree.Phrase{Text: lexeme[1 : len(lexeme)-1], Style: parsetree.LatexQuote}
	case strings.HasPrefix(lexeme, "'"):
		return parsetree.Phrase{Text: lexeme[1 : len(lexeme)-1], Style: parsetree.SingleQuote}
	default:
		return parsetree.Phrase{Text: lexeme[1 : len(lexeme)-1], Style: parsetree.DoubleQuote}
	}
}

// diagnose explains why the tables rejected syms at index i.
func diagnose(text string, syms []symbol, i int) *SyntaxError {
	atEnd := i >= len(syms)
	var prev *symbol
	if i > 0 {
		prev = &syms[i-1]
	}

	switch {
	case prev != nil && prev.kind == symMod:
		return errorAt(text, prev.tok, "modifier without operand")
	case prev != nil && prev.kind == symLParen && !atEnd && syms[i].kind == symRParen:
		return errorAt(text, syms[i].tok, "empty group")
	case prev != nil && prev.kind == symLParen && atEnd:
		return errorAtEnd(text, "expected a term")
	case atEnd:
		if open, ok := innermostOpen(syms[:i]); ok {
			return errorAt(text, open.tok, "unclosed group")
		}
		return errorAtEnd(text, "expected a term")
	case syms[i].kind == symRParen:
		if prev == nil || prev.kind == symOp {
			return errorAt(text, syms[i].tok, "expected a term before")
		}
		return errorAt(text, syms[i].tok, "unmatched closing parenthesis")
	default:
		return errorAt(text, syms[i].tok, "expected a term")
	}
}

func innermostOpen(syms []symbol) (symbol, bool) {
	var open []symbol
	for _, s := range syms {
		switch s.kind {
		case symLParen:
			open = append(open, s)
		case symRParen:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}
	if len(open) == 0 {
		return symbol{}, false
	}
	return open[len(open)-1], true
}

func errorAt(text string, t Token, reason string) *SyntaxError {
	line, col := position(text, t.Pos)
	return &SyntaxError{
		Lexeme: t.Text,
		Pos:    t.Pos,
		Line:   line,
		Column: col,
		Reason: reason,
	}
}

func errorAtEnd(text string, reason string) *SyntaxError {
	line, col := position(text, len(text))
	return &SyntaxError{
		Pos:    len(text),
		Line:   line,
		Column: col,
		Reason: reason,
	}
}

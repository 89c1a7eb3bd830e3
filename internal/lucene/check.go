// Package lucene checks that a query is well formed in the target Boolean
// dialect: upper-case AND/OR/NOT operators, parenthesised groups, closed
// double-quoted phrases and prefix modifiers glued to their operand.
//
// The productions run as SLR(1) tables over the lexmachine tokens:
//
//	Query   := Seq
//	Seq     := Operand | Seq Operand | Seq OP Operand | Seq OP NOT Operand
//	Operand := Atom | MOD Atom
//	Atom    := TERM | PHRASE | "*" | "(" Seq ")"
//
// The checker is stricter than a real query parser in one way:
// a sequence whose operands are all exclusions is rejected, because the
// engine matches nothing for a pure negation.
package lucene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/classicq/internal/lrparse"
)

// Error reports the first problem found in a query.
type Error struct {
	Pos    int
	Lexeme string
	Reason string
}

func (e *Error) Error() string {
	if e.Lexeme == "" {
		return fmt.Sprintf("invalid query at %d: %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("invalid query at %d: %s %q", e.Pos, e.Reason, e.Lexeme)
}

// IsCheckError reports whether err is or wraps an *Error.
func IsCheckError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// sym maps a token kind to its terminal value. Terminal values must be
// positive.
func sym(k kind) int {
	return int(k) + 1
}

// seq is the value of a reduced sequence.
type seq struct {
	start    int
	positive bool
}

// operand is the value of a reduced operand.
type operand struct {
	start    int
	excluded bool
}

var (
	tableOnce sync.Once
	table     *lrparse.Table
	tableErr  error
)

func tables() (*lrparse.Table, error) {
	tableOnce.Do(func() {
		table, tableErr = lrparse.Define("Lucene", defineRules)
	})
	return table, tableErr
}

func defineRules(r *lrparse.Rules) {
	b := r.B
	r.On(b.LHS("Query").N("Seq").End(), func(rhs []interface{}) (interface{}, error) {
		return rhs[0], requirePositive(rhs[0].(seq))
	})

	r.On(b.LHS("Seq").N("Operand").End(), func(rhs []interface{}) (interface{}, error) {
		o := rhs[0].(operand)
		return seq{start: o.start, positive: !o.excluded}, nil
	})
	joins := func(s seq, o operand) seq {
		s.positive = s.positive || !o.excluded
		return s
	}
	r.On(b.LHS("Seq").N("Seq").N("Operand").End(), func(rhs []interface{}) (interface{}, error) {
		return joins(rhs[0].(seq), rhs[1].(operand)), nil
	})
	for _, k := range []kind{kindAnd, kindOr} {
		r.On(b.LHS("Seq").N("Seq").T(k.String(), sym(k)).N("Operand").End(), func(rhs []interface{}) (interface{}, error) {
			return joins(rhs[0].(seq), rhs[2].(operand)), nil
		})
	}
	// A negated operand never makes its sequence positive.
	b.LHS("Seq").N("Seq").T(kindNot.String(), sym(kindNot)).N("Operand").End()
	b.LHS("Seq").N("Seq").T(kindAnd.String(), sym(kindAnd)).T(kindNot.String(), sym(kindNot)).N("Operand").End()
	b.LHS("Seq").N("Seq").T(kindOr.String(), sym(kindOr)).T(kindNot.String(), sym(kindNot)).N("Operand").End()

	r.On(b.LHS("Operand").N("Atom").End(), func(rhs []interface{}) (interface{}, error) {
		return operand{start: rhs[0].(int)}, nil
	})
	r.On(b.LHS("Operand").T(kindModifier.String(), sym(kindModifier)).N("Atom").End(), func(rhs []interface{}) (interface{}, error) {
		mod := rhs[0].(token)
		if rhs[1].(int) != mod.pos+1 {
			return nil, errorAt(mod, "modifier not attached to an operand")
		}
		return operand{start: mod.pos, excluded: mod.text == "-"}, nil
	})

	atom := func(rhs []interface{}) (interface{}, error) {
		return rhs[0].(token).pos, nil
	}
	for _, k := range []kind{kindTerm, kindPhrase, kindWildcard} {
		r.On(b.LHS("Atom").T(k.String(), sym(k)).End(), atom)
	}
	r.On(b.LHS("Atom").T(kindLParen.String(), sym(kindLParen)).N("Seq").T(kindRParen.String(), sym(kindRParen)).End(),
		func(rhs []interface{}) (interface{}, error) {
			if err := requirePositive(rhs[1].(seq)); err != nil {
				return nil, err
			}
			return rhs[0].(token).pos, nil
		})
}

func requirePositive(s seq) error {
	if !s.positive {
		return &Error{Pos: s.start, Reason: "sequence has no positive operand"}
	}
	return nil
}

// Check returns nil when q is a well-formed target query.
func Check(q string) error {
	tokens, err := tokenize(q)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return &Error{Reason: "empty query"}
	}
	t, err := tables()
	if err != nil {
		return err
	}

	input := make([]lrparse.Token, len(tokens))
	for i, tok := range tokens {
		input[i] = lrparse.Token{Kind: sym(tok.kind), Value: tok}
	}
	if _, err := t.Parse(input); err != nil {
		var f *lrparse.Failure
		if errors.As(err, &f) {
			return diagnose(q, tokens, f.Index)
		}
		return err
	}
	return nil
}

func isOperator(k kind) bool {
	return k == kindAnd || k == kindOr || k == kindNot
}

// diagnose explains why the tables rejected tokens at index i.
func diagnose(q string, tokens []token, i int) *Error {
	atEnd := i >= len(tokens)
	var next, prev *token
	if !atEnd {
		next = &tokens[i]
	}
	if i > 0 {
		prev = &tokens[i-1]
	}

	switch {
	case prev != nil && prev.kind == kindModifier:
		if atEnd || next.pos != prev.pos+1 {
			return errorAt(*prev, "modifier not attached to an operand")
		}
		return errorAt(*next, "expected an operand")
	case next != nil && isOperator(next.kind) && (prev == nil || prev.kind == kindLParen):
		return errorAt(*next, "operator without left operand")
	case prev != nil && isOperator(prev.kind):
		first := i - 1
		for first > 0 && isOperator(tokens[first-1].kind) {
			first--
		}
		return errorAt(tokens[first], "operator without right operand")
	case next != nil && next.kind == kindRParen && prev != nil && prev.kind == kindLParen:
		return errorAt(*next, "empty group")
	}

	var open []token
	for _, t := range tokens[:i] {
		switch t.kind {
		case kindLParen:
			open = append(open, t)
		case kindRParen:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}
	switch {
	case next != nil && next.kind == kindRParen && len(open) == 0:
		return errorAt(*next, "unmatched closing parenthesis")
	case atEnd && len(open) > 0:
		return errorAt(open[len(open)-1], "unclosed group")
	case atEnd:
		return &Error{Pos: len(q), Reason: "expected an operand"}
	}
	return errorAt(*next, "expected an operand")
}

func errorAt(t token, reason string) *Error {
	return &Error{Pos: t.pos, Lexeme: t.text, Reason: reason}
}

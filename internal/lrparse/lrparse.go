// Package lrparse runs SLR(1) tables generated by gorgo's lr package and
// evaluates a semantic action on every reduction.
//
// gorgo's slr.Parser only recognizes its input. Grammars defined here pair
// each rule with an Action, and Parse threads the resulting values through
// the parse stack, so a successful parse yields the value of the start rule.
package lrparse

import (
	"fmt"
	"slices"
	"sync"

	"github.com/npillmayer/gorgo/lr"
	"github.com/npillmayer/gorgo/lr/scanner"
	"github.com/npillmayer/gorgo/lr/sparse"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("classicq.lrparse")
}

// EOF is the token value that terminates every input. It is supplied by
// Parse and must not appear in the input slice.
const EOF = scanner.EOF

// Action computes the value of a reduced rule from the values of its
// right-hand-side symbols, left to right. A terminal contributes the Value
// of its Token.
type Action func(rhs []interface{}) (interface{}, error)

// Token is one input symbol. Kind is the token value the terminal was
// declared with (RuleBuilder.T); it must be positive.
type Token struct {
	Kind  int
	Value interface{}
}

// Rules collects the productions and actions of a grammar under
// construction. Productions are declared with gorgo's builder in B; the
// first production declared names the start symbol.
type Rules struct {
	B       *lr.GrammarBuilder
	actions map[int]Action
}

// On attaches a to rule r. A rule without an action reduces to the value of
// its first right-hand-side symbol.
func (rs *Rules) On(r *lr.Rule, a Action) {
	rs.actions[r.Serial] = a
}

// Table is a generated parse table set. It is immutable and safe for
// concurrent use.
type Table struct {
	name    string
	g       *lr.Grammar
	gotoT   *sparse.IntMatrix
	actionT *sparse.IntMatrix
	start   int
	actions map[int]Action
}

// gorgo allocates non-terminal IDs from a package-level counter, so grammar
// construction is serialized.
var defineMu sync.Mutex

// Define declares a grammar through fn and generates its SLR(1) tables.
// A grammar with shift/reduce or reduce/reduce conflicts is rejected.
func Define(name string, fn func(*Rules)) (*Table, error) {
	defineMu.Lock()
	defer defineMu.Unlock()

	rs := &Rules{B: lr.NewGrammarBuilder(name), actions: make(map[int]Action)}
	fn(rs)
	g, err := rs.B.Grammar()
	if err != nil {
		return nil, fmt.Errorf("build %s grammar: %w", name, err)
	}

	gen := lr.NewTableGenerator(lr.Analysis(g))
	gen.CreateTables()
	if gen.HasConflicts {
		return nil, fmt.Errorf("%s grammar is not SLR(1)", name)
	}

	tracer().Debugf("%s: %d rules, %d action entries", name, g.Size(), gen.ActionTable().ValueCount())
	return &Table{
		name:    name,
		g:       g,
		gotoT:   gen.GotoTable(),
		actionT: gen.ActionTable(),
		start:   gen.CFSM().S0.ID,
		actions: rs.actions,
	}, nil
}

// Failure reports the input position at which no parse action applies.
type Failure struct {
	// Index is the offending token's index, or len(input) at end of input.
	Index int

	// Expected lists the input token kinds the parser would have accepted,
	// in ascending order. End of input is not listed.
	Expected []int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("no parse action at token %d, expected one of %v", f.Index, f.Expected)
}

type entry struct {
	state int
	value interface{}
}

// Parse runs the tables over input and returns the value of the start rule.
// It fails with a *Failure when input is not in the language, or with the
// first error an Action returns.
func (t *Table) Parse(input []Token) (interface{}, error) {
	stack := make([]entry, 1, 32)
	stack[0] = entry{state: t.start}

	i := 0
	for {
		kind, value := EOF, interface{}(nil)
		if i < len(input) {
			kind, value = input[i].Kind, input[i].Value
		}
		top := stack[len(stack)-1]
		action := t.actionT.Value(top.state, kind)

		switch {
		case action == t.actionT.NullValue():
			f := &Failure{Index: i, Expected: t.expected(top.state)}
			tracer().Debugf("%s: %v", t.name, f)
			return nil, f

		case action == lr.AcceptAction:
			return top.value, nil

		case action == lr.ShiftAction:
			next := int(t.gotoT.Value(top.state, kind))
			stack = append(stack, entry{state: next, value: value})
			i++

		default:
			rule := t.g.Rule(int(action))
			if rule == nil {
				return nil, fmt.Errorf("%s: action table names unknown rule %d", t.name, action)
			}
			n := len(rule.RHS())
			rhs := make([]interface{}, n)
			for k, e := range stack[len(stack)-n:] {
				rhs[k] = e.value
			}
			stack = stack[:len(stack)-n]

			v, err := t.reduce(rule, rhs)
			if err != nil {
				return nil, err
			}
			below := stack[len(stack)-1]
			next := int(t.gotoT.Value(below.state, rule.LHS.Value))
			stack = append(stack, entry{state: next, value: v})
		}
	}
}

func (t *Table) reduce(rule *lr.Rule, rhs []interface{}) (interface{}, error) {
	if a, ok := t.actions[rule.Serial]; ok {
		return a(rhs)
	}
	if len(rhs) > 0 {
		return rhs[0], nil
	}
	return nil, nil
}

func (t *Table) expected(state int) []int {
	var kinds []int
	t.g.EachTerminal(func(sym *lr.Symbol) interface{} {
		if sym.Value > 0 && t.actionT.Value(state, sym.Value) != t.actionT.NullValue() {
			kinds = append(kinds, sym.Value)
		}
		return nil
	})
	slices.Sort(kinds)
	return kinds
}

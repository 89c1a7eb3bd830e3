package parsetree

import "fmt"

// ValidationResult reports structural problems found in a tree.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists every violated invariant with its path in the tree.
	Problems []string
}

// Validate checks the structural invariants the renderer relies on:
//
//  1. Sequences start and end with a clause and never hold two operators
//     in a row.
//  2. Every clause has a body; groups are non-empty; queries hold a term.
//  3. Modifiers and operators are drawn from their defined sets.
//
// The grammar only builds valid trees. Validate exists for trees built by
// hand and as a check in tests.
func Validate(s *Start) ValidationResult {
	v := &validator{problems: []string{}}
	if s == nil {
		v.addProblem("start: nil tree")
	} else {
		v.validateSequence("start", s.Elements, true)
	}
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateSequence(path string, elems []Element, root bool) {
	if len(elems) == 0 {
		if !root {
			v.addProblem("%s: empty group", path)
		}
		return
	}

	prevOperator := true // a sequence must not open with an operator
	for i, e := range elems {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		switch el := e.(type) {
		case Operator:
			if !el.Valid() {
				v.addProblem("%s: unknown operator %d", elemPath, int(el))
			}
			if prevOperator {
				v.addProblem("%s: operator %s without a left operand", elemPath, el)
			}
			prevOperator = true
		case *Clause:
			v.validateClause(elemPath, el)
			prevOperator = false
		case nil:
			v.addProblem("%s: nil element", elemPath)
		}
	}
	if _, ok := elems[len(elems)-1].(Operator); ok {
		v.addProblem("%s: trailing operator", path)
	}
}

func (v *validator) validateClause(path string, c *Clause) {
	if c == nil {
		v.addProblem("%s: nil clause", path)
		return
	}
	switch c.Modifier {
	case NoModifier, Require, Bias, Exclude:
	default:
		v.addProblem("%s: unknown modifier %q", path, rune(c.Modifier))
	}

	switch b := c.Body.(type) {
	case *Group:
		if b == nil {
			v.addProblem("%s: nil group", path)
			return
		}
		v.validateSequence(path+".group", b.Elements, false)
	case *Query:
		if b == nil || b.Term == nil {
			v.addProblem("%s: query without term", path)
		}
	case nil:
		v.addProblem("%s: clause without body", path)
	}
}

package render

import "github.com/roach88/classicq/internal/parsetree"

// Pending is the implicit operator a fragment carries until the enclosing
// sequence decides whether to emit it.
type Pending int

const (
	PendingNone Pending = iota
	PendingOr           // juxtaposed terms default to disjunction
	PendingAnd          // exclusions combine conjunctively
)

func (p Pending) String() string {
	switch p {
	case PendingOr:
		return "OR"
	case PendingAnd:
		return "AND"
	}
	return ""
}

// Fragment is the rendered output of one clause plus the operator that joins
// it to the clause before it.
type Fragment struct {
	// Text is the rendered clause, modifier included.
	Text string

	// Pending is the implicit operator inferred from juxtaposition.
	Pending Pending

	// Explicit is the operator written before the clause, or zero. An explicit
	// operator always wins over Pending.
	Explicit parsetree.Operator

	// Modifier is the modifier Text starts with, if any.
	Modifier parsetree.Modifier

	// Exclusion is set when the clause carries the '-' modifier.
	Exclusion bool

	// Grouped is set when Text is an unmodified parenthesized group.
	Grouped bool
}

// Joiner returns the operator to write between this fragment and the one
// before it.
func (f Fragment) Joiner() string {
	if f.Explicit.Valid() {
		return f.Explicit.String()
	}
	return f.Pending.String()
}

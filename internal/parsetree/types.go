package parsetree

// Element is one entry of a clause sequence: either a *Clause or an explicit
// Operator placed between two clauses.
//
// This is a sealed interface - only types in this package implement it.
// Renderers switch over it exhaustively; there is no fallback case.
type Element interface {
	element() // Marker method - seals interface to this package
}

// Body is what a Clause contains: a parenthesized *Group or a single *Query.
//
// Sealed, like Element.
type Body interface {
	body()
}

// Term is the leaf of the tree: Word, Phrase or ForbiddenMarker.
//
// Sealed, like Element.
type Term interface {
	term()
}

// Start is the root of a parse tree.
//
// Elements holds clauses interleaved with explicit operators. Two clauses
// without an Operator between them are joined by an implicit operator that the
// renderer resolves. A Start with no elements is the tree of an empty query.
type Start struct {
	Elements []Element
}

// Clause is an optional modifier followed by a group or a single query.
//
// Invariant: a clause carries at most one modifier. The parser rejects a
// second modifier; the normalizer resolves modifier runs before parsing.
type Clause struct {
	Modifier Modifier
	Body     Body
}

func (*Clause) element() {}

// Group is a parenthesized, non-empty sequence of elements.
type Group struct {
	Elements []Element
}

func (*Group) body() {}

// Query wraps exactly one Term.
type Query struct {
	Term Term
}

func (*Query) body() {}

// Word is a bare token.
type Word struct {
	Text string
}

func (Word) term() {}

// Phrase is a quoted string. Text excludes the quote characters; Style
// records which legacy quote style the input used.
type Phrase struct {
	Text  string
	Style QuoteStyle
}

func (Phrase) term() {}

// ForbiddenMarker is a bracket-delimited "forbidden line" token such as
// [OII]. Text is the raw lexeme including brackets.
type ForbiddenMarker struct {
	Text string
}

func (ForbiddenMarker) term() {}

// QuoteStyle identifies the quoting of a Phrase in the source text.
type QuoteStyle int

const (
	DoubleQuote QuoteStyle = iota // "phrase"
	SingleQuote                   // 'phrase'
	LatexQuote                    // ``phrase'' or `phrase'
)

func (s QuoteStyle) String() string {
	switch s {
	case SingleQuote:
		return "single"
	case LatexQuote:
		return "latex"
	default:
		return "double"
	}
}

// Modifier is a prefix attached to the clause that follows it.
type Modifier byte

const (
	NoModifier Modifier = 0
	Require    Modifier = '+' // term is desired and boosted
	Bias       Modifier = '=' // term is biased toward, like Require
	Exclude    Modifier = '-' // term must not match
)

// String returns the modifier character, or "" for NoModifier.
func (m Modifier) String() string {
	if m == NoModifier {
		return ""
	}
	return string(rune(m))
}

// IsExclusion reports whether m excludes its clause.
func (m Modifier) IsExclusion() bool {
	return m == Exclude
}

func (m Modifier) rank() int {
	switch m {
	case Exclude:
		return 3
	case Require:
		return 2
	case Bias:
		return 1
	}
	return 0
}

// Stronger returns whichever of m and o wins when both apply to one clause.
// '-' beats '+', which beats '='.
func (m Modifier) Stronger(o Modifier) Modifier {
	if o.rank() > m.rank() {
		return o
	}
	return m
}

// ParseModifier maps a modifier character to its Modifier.
func ParseModifier(s string) (Modifier, bool) {
	switch s {
	case "+":
		return Require, true
	case "=":
		return Bias, true
	case "-":
		return Exclude, true
	}
	return NoModifier, false
}

// Operator is an explicit Boolean keyword between two clauses.
type Operator int

const (
	And Operator = iota + 1
	Or
	Not
	AndNot
	OrNot
)

func (Operator) element() {}

// String returns the operator as written in the target syntax.
func (o Operator) String() string {
	switch o {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Not:
		return "NOT"
	case AndNot:
		return "AND NOT"
	case OrNot:
		return "OR NOT"
	}
	return "?"
}

// Valid reports whether o is one of the defined operators.
func (o Operator) Valid() bool {
	return o >= And && o <= OrNot
}

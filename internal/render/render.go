// Package render rebuilds a Classic parse tree as a target-syntax query.
//
// Rendering is bottom-up. Each clause becomes a Fragment carrying its text and
// the operator that joins it to its left neighbour. A sequence then reorders
// its fragments: inclusions first, disjunctively joined unless an explicit
// operator says otherwise, then every exclusion appended with AND. A sequence
// made only of exclusions is anchored with the wildcard so the engine never
// receives a pure negation.
package render

import (
	"regexp"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/roach88/classicq/internal/parsetree"
)

func tracer() tracing.Trace {
	return tracing.Select("classicq.render")
}

// DefaultReservedWords are words the target engine reads as operators. A
// bare word matching one of them, case-insensitively, is quoted.
var DefaultReservedWords = []string{"AND", "OR", "NOT", "NEAR"}

// DefaultWildcard is the match-anything anchor for pure exclusions.
const DefaultWildcard = "*"

// Options tunes rendering. Zero fields take the defaults above.
type Options struct {
	ReservedWords []string
	Wildcard      string
}

// Renderer turns parse trees into target-syntax strings. It holds no
// per-call state and is safe for concurrent use.
type Renderer struct {
	reserved map[string]bool
	wildcard string
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	words := opts.ReservedWords
	if len(words) == 0 {
		words = DefaultReservedWords
	}
	reserved := make(map[string]bool, len(words))
	for _, w := range words {
		reserved[strings.ToUpper(w)] = true
	}
	wildcard := opts.Wildcard
	if wildcard == "" {
		wildcard = DefaultWildcard
	}
	return &Renderer{reserved: reserved, wildcard: wildcard}
}

var defaultRenderer = New(Options{})

// Render renders tree with default options.
func Render(tree *parsetree.Start) string {
	return defaultRenderer.Render(tree)
}

// dateLike matches tokens the engine would read as a date or date range.
var dateLike = regexp.MustCompile(`^[0-9]+(-[0-9][0-9])+$`)

// Render renders a well-formed tree. The result is wrapped in one pair of
// parentheses unless it already is a single unmodified group. An empty tree
// renders as "()", which the finalize stage maps to the empty string.
func (r *Renderer) Render(tree *parsetree.Start) string {
	if tree == nil {
		return "()"
	}
	body, frags, anchored := r.sequence(tree.Elements)
	if len(frags) == 1 && !anchored && frags[0].Grouped {
		return body
	}
	return "(" + body + ")"
}

// sequence renders the elements of a Start or Group. It reports the
// fragments it kept and whether the wildcard anchor was prepended.
func (r *Renderer) sequence(elems []parsetree.Element) (string, []Fragment, bool) {
	var frags []Fragment
	var explicit parsetree.Operator
	for _, e := range elems {
		switch el := e.(type) {
		case parsetree.Operator:
			explicit = el
		case *parsetree.Clause:
			f, ok := r.clause(el)
			if ok {
				f.Explicit = explicit
				frags = append(frags, f)
			}
			explicit = 0
		}
	}

	var included, excluded []Fragment
	for _, f := range frags {
		if f.Exclusion {
			excluded = append(excluded, f)
		} else {
			included = append(included, f)
		}
	}

	var b strings.Builder
	for i, f := range included {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(f.Joiner())
			b.WriteByte(' ')
		}
		b.WriteString(f.Text)
	}

	if len(excluded) == 0 {
		return b.String(), frags, false
	}

	head := b.String()
	anchored := false
	switch {
	case len(included) == 0:
		head = r.wildcard
		anchored = true
	case len(included) > 1:
		head = "(" + head + ")"
	}
	b.Reset()
	b.WriteString(head)
	for _, f := range excluded {
		b.WriteString(" AND ")
		b.WriteString(f.Text)
	}

	out := b.String()
	tracer().Debugf("sequence: %d included, %d excluded => %s", len(included), len(excluded), out)
	return out, frags, anchored
}

// clause renders one clause. ok is false when nothing renderable is left,
// for example a word that was only a slash.
func (r *Renderer) clause(c *parsetree.Clause) (Fragment, bool) {
	var text string
	grouped := false
	mod := c.Modifier

	switch body := c.Body.(type) {
	case *parsetree.Group:
		inner, frags, anchored := r.sequence(body.Elements)
		switch {
		case len(frags) == 0:
			return Fragment{}, false
		case len(frags) > 1 || anchored:
			text = "(" + inner + ")"
			grouped = true
		default:
			// A lone modified clause folds into its group's modifier:
			// -(+star) is -star.
			child := frags[0]
			text = strings.TrimPrefix(inner, child.Modifier.String())
			mod = mod.Stronger(child.Modifier)
			grouped = child.Grouped
		}
	case *parsetree.Query:
		leaf, ok := r.term(body.Term)
		if !ok {
			return Fragment{}, false
		}
		text = leaf
	}

	f := Fragment{
		Text:      mod.String() + text,
		Pending:   PendingOr,
		Modifier:  mod,
		Exclusion: mod.IsExclusion(),
		Grouped:   grouped && mod == parsetree.NoModifier,
	}
	if f.Exclusion {
		f.Pending = PendingAnd
	}
	return f, true
}

func (r *Renderer) term(t parsetree.Term) (string, bool) {
	switch term := t.(type) {
	case parsetree.Word:
		return r.word(term.Text)
	case parsetree.Phrase:
		return `"` + escapeQuotes(term.Text) + `"`, true
	case parsetree.ForbiddenMarker:
		text := strings.NewReplacer("[", "", "]", "").Replace(term.Text)
		return text, text != ""
	}
	return "", false
}

func (r *Renderer) word(text string) (string, bool) {
	text = strings.TrimLeft(text, "/")
	if text == "" {
		return "", false
	}
	text = escapeQuotes(text)
	if r.reserved[strings.ToUpper(text)] || dateLike.MatchString(text) {
		return `"` + text + `"`, true
	}
	return text, true
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

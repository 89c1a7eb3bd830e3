package translate

import (
	"fmt"
	"strings"

	"github.com/roach88/classicq/internal/finalize"
	"github.com/roach88/classicq/internal/grammar"
	"github.com/roach88/classicq/internal/parsetree"
)

// Explanation records the output of every stage for one query. Stages after
// a failure are left empty.
type Explanation struct {
	Raw        string
	Normalized string
	Tokens     []grammar.Token
	Tree       *parsetree.Start
	Rendered   string
	Final      string
}

// Explain runs q through the pipeline and keeps each intermediate result.
// On a syntax error the partial explanation is returned with the error.
func (t *Translator) Explain(q string) (*Explanation, error) {
	ex := &Explanation{Raw: q}
	ex.Normalized = t.normalizer.Normalize(q)
	if ex.Normalized == "" {
		return ex, nil
	}

	tokens, err := t.grammar.Tokenize(ex.Normalized)
	if err != nil {
		return ex, err
	}
	ex.Tokens = tokens

	tree, err := t.grammar.Parse(ex.Normalized)
	if err != nil {
		return ex, err
	}
	ex.Tree = tree

	ex.Rendered = t.renderer.Render(tree)
	ex.Final = finalize.Finalize(ex.Rendered)
	return ex, nil
}

// Explain explains q with DefaultOptions.
func Explain(q string) (*Explanation, error) {
	return defaultTranslator.Explain(q)
}

// String formats the explanation as labelled sections.
func (e *Explanation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "raw:        %q\n", e.Raw)
	fmt.Fprintf(&b, "normalized: %q\n", e.Normalized)

	b.WriteString("tokens:\n")
	for _, tok := range e.Tokens {
		fmt.Fprintf(&b, "  %-9s %q @%d\n", tok.Kind, tok.Text, tok.Pos)
	}

	b.WriteString("tree:\n")
	if e.Tree != nil {
		for _, line := range strings.SplitAfter(parsetree.Dump(e.Tree), "\n") {
			if line != "" {
				b.WriteString("  " + line)
			}
		}
	}

	fmt.Fprintf(&b, "rendered:   %s\n", e.Rendered)
	fmt.Fprintf(&b, "final:      %s\n", e.Final)
	return b.String()
}

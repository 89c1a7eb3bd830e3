// Package translate is the public entry point of the Classic query
// translator. A Translator chains the normalizer, the grammar, the renderer
// and the final repairs:
//
//	raw ──normalize──▶ text ──grammar──▶ tree ──render──▶ query ──finalize──▶ result
//
// Only the grammar stage can fail. Its *grammar.SyntaxError is returned to
// the caller unchanged.
package translate

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/roach88/classicq/internal/finalize"
	"github.com/roach88/classicq/internal/grammar"
	"github.com/roach88/classicq/internal/normalize"
	"github.com/roach88/classicq/internal/render"
)

func tracer() tracing.Trace {
	return tracing.Select("classicq.translate")
}

// Options configures a Translator.
type Options struct {
	// UnicodeNFC composes input to NFC before normalization.
	UnicodeNFC bool

	// ReservedWords are quoted when they appear as bare words. Empty means
	// render.DefaultReservedWords.
	ReservedWords []string

	// Wildcard anchors pure exclusions. Empty means render.DefaultWildcard.
	Wildcard string
}

// DefaultOptions returns the options of the package-level Translate.
func DefaultOptions() Options {
	return Options{UnicodeNFC: true}
}

// Translator converts Classic queries to the target syntax. It is immutable
// and safe for concurrent use.
type Translator struct {
	normalizer *normalize.Normalizer
	grammar    *grammar.Grammar
	renderer   *render.Renderer
}

// New creates a Translator sharing the process-wide compiled grammar.
func New(opts Options) *Translator {
	return &Translator{
		normalizer: normalize.New(normalize.Options{UnicodeNFC: opts.UnicodeNFC}),
		grammar:    grammar.Default(),
		renderer: render.New(render.Options{
			ReservedWords: opts.ReservedWords,
			Wildcard:      opts.Wildcard,
		}),
	}
}

var defaultTranslator = New(DefaultOptions())

// Default returns the Translator used by the package-level Translate.
func Default() *Translator {
	return defaultTranslator
}

// Translate converts q with DefaultOptions.
func Translate(q string) (string, error) {
	return defaultTranslator.Translate(q)
}

// Translate converts one Classic query. Input that normalizes to nothing
// yields "" and no error.
func (t *Translator) Translate(q string) (string, error) {
	normalized := t.normalizer.Normalize(q)
	if normalized == "" {
		return "", nil
	}

	tree, err := t.grammar.Parse(normalized)
	if err != nil {
		tracer().Debugf("translate %q: %v", q, err)
		return "", err
	}

	out := finalize.Finalize(t.renderer.Render(tree))
	tracer().Debugf("translate %q => %q", q, out)
	return out, nil
}

// Package normalize repairs legacy Classic query text into the alphabet the
// grammar can tokenize.
//
// Normalize is a total function: it never fails and never panics. The rules
// run in a fixed order because later rules rely on the output of earlier ones
// (for example, quote canonicalization must run before the modifier rules so
// that phrase contents can be protected from them).
package normalize

import (
	"regexp"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func tracer() tracing.Trace {
	return tracing.Select("classicq.normalize")
}

// Options tunes the normalizer.
type Options struct {
	// UnicodeNFC composes the input to NFC before any rule runs, so that
	// decomposed accents never split a word.
	UnicodeNFC bool
}

// DefaultOptions returns the options used by Normalize.
func DefaultOptions() Options {
	return Options{UnicodeNFC: true}
}

// Normalizer applies the repair rules. The zero value skips NFC composition.
type Normalizer struct {
	opts Options
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize runs the repair rules with DefaultOptions.
func Normalize(raw string) string {
	return New(DefaultOptions()).Normalize(raw)
}

var (
	newlineRe       = regexp.MustCompile(`\r\n|\r|\n`)
	adjacentGroupRe = regexp.MustCompile(`\)\s+\(`)
	detachedModRe   = regexp.MustCompile(`(^|\s)([+=-])\s+`)
	modifierRunRe   = regexp.MustCompile(`(^|[\s()]|\x{E001}")([+=-]{2,})`)
	danglingModRe   = regexp.MustCompile(`[+=-]+(\s|\)|$)`)
	charRefRe       = regexp.MustCompile(`&#[xX]?[0-9A-Fa-f]+;?`)
	strayCharRe     = regexp.MustCompile(`[;#$]`)
	emptyGroupRe    = regexp.MustCompile(`\(\s*\)`)
	spaceRunRe      = regexp.MustCompile(`\s+`)
)

// Normalize rewrites raw into grammar-parseable text. The result is either
// empty or accepted by the grammar package.
func (n *Normalizer) Normalize(raw string) string {
	s := raw
	if n.opts.UnicodeNFC {
		s = norm.NFC.String(s)
	}
	s, _, _ = transform.String(typography, s)

	// Underscore is the in-word apostrophe marker used by canonicalizeQuotes.
	s = strings.ReplaceAll(s, "_", " ")
	s = newlineRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, ",", " ")
	s = adjacentGroupRe.ReplaceAllString(s, ") OR (")
	s = detachModifiers(s)
	s = separatePhrases(s)
	s = canonicalizeQuotes(s)

	s = protectPhrases(s, func(t string) string {
		t = detachedModRe.ReplaceAllString(t, "$1$2")
		t = modifierRunRe.ReplaceAllStringFunc(t, resolveModifierRun)
		t = danglingModRe.ReplaceAllString(t, "$1")
		t = strings.NewReplacer("[", "", "]", "").Replace(t)
		t = repairParens(t)
		t = charRefRe.ReplaceAllString(t, "")
		t = strayCharRe.ReplaceAllString(t, "")
		t = collapseModifiers(t)
		t = tidy(t)
		return spaceRunRe.ReplaceAllString(t, " ")
	})
	s = strings.TrimSpace(settle(s))

	tracer().Debugf("normalize %q => %q", raw, s)
	return s
}

// resolveModifierRun collapses a run of conflicting modifiers to the one with
// the highest priority: '-' beats '+' beats '='. The match may start with the
// separator or phrase end in front of the run, which is kept.
func resolveModifierRun(m string) string {
	i := strings.IndexAny(m, "+=-")
	lead, run := m[:i], m[i:]
	switch {
	case strings.Contains(run, "-"):
		return lead + "-"
	case strings.Contains(run, "+"):
		return lead + "+"
	default:
		return lead + "="
	}
}

func collapseModifiers(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		if (r == '+' || r == '-' || r == '=') && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// settle re-runs the structural repairs against the phrases the lexer will
// actually see until nothing changes. Stripping can move a word-internal quote
// to the start of a token, as in ;"x, or glue a phrase onto the word before
// it so that parentheses inside the phrase start to count.
func settle(s string) string {
	for {
		next := protectPhrases(dropUnclosedQuotes(s), func(t string) string {
			return spaceRunRe.ReplaceAllString(tidy(repairParens(t)), " ")
		})
		if next == s {
			return s
		}
		s = next
	}
}

// tidy removes artifacts left behind by earlier deletions until nothing
// changes. Stripping brackets or stray characters can leave a modifier whose
// operand is gone, a group that became empty, or two modifiers that now touch
// ("-[+star]"), so the modifier rules run again here.
func tidy(s string) string {
	for {
		next := detachedModRe.ReplaceAllString(s, "$1$2")
		next = modifierRunRe.ReplaceAllStringFunc(next, resolveModifierRun)
		next = danglingModRe.ReplaceAllString(next, "$1")
		next = emptyGroupRe.ReplaceAllString(next, "")
		if next == s {
			return s
		}
		s = next
	}
}

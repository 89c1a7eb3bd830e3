// Package finalize applies the last textual repairs to rendered queries.
//
// Every rule works on the text outside phrases only. A phrase runs from an
// unescaped double quote to the next unescaped double quote, so phrase
// content such as "x OR -y" is never rewritten.
package finalize

import "strings"

// outsideRules rewrite operator text the target engine would reject.
//
//	" OR -"  a disjoined exclusion means the same as a bare exclusion
//	"(-"     a group may not open with a pure negation
var outsideRules = strings.NewReplacer(
	" OR -", " -",
	"(-", "(* -",
)

// Finalize repairs rendered. An empty rendering "()" becomes the empty
// string.
func Finalize(rendered string) string {
	s := outsidePhrases(rendered, outsideRules.Replace)
	if strings.HasPrefix(s, "-") {
		s = "* " + s
	}
	if s == "()" {
		return ""
	}
	return s
}

// outsidePhrases applies fn to each maximal run of s that lies outside a
// double-quoted phrase. A backslash escapes the byte after it, inside or
// outside a phrase. An unterminated phrase extends to the end of s.
func outsidePhrases(s string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(s))

	start := 0
	inPhrase := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			if !inPhrase {
				b.WriteString(fn(s[start:i]))
				start = i
			} else {
				b.WriteString(s[start : i+1])
				start = i + 1
			}
			inPhrase = !inPhrase
		}
	}
	if inPhrase {
		b.WriteString(s[start:])
	} else {
		b.WriteString(fn(s[start:]))
	}
	return b.String()
}

package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
)

// Phrase masks use these two private-use runes. The typography mapper
// deletes them from user input, so a mask can never collide with content.
const (
	maskOpen  = '\uE000'
	maskClose = '\uE001'
)

var maskRe = regexp.MustCompile(`"\x{E000}([0-9]+)\x{E001}"`)

// typography maps typographic quotes to their ASCII forms and every Unicode
// space to a plain space.
var typography = runes.Map(func(r rune) rune {
	switch r {
	case '“', '”', '„', '‟', '«', '»':
		return '"'
	case '‘', '’', '‚', '‛', '´':
		return '\''
	case maskOpen, maskClose:
		return -1
	}
	if r != ' ' && unicode.IsSpace(r) {
		return ' '
	}
	return r
})

// detachModifiers inserts a space before '+' or '=' when it directly follows
// a letter or a closing double quote. Digits never trigger a split, which
// keeps catalog designations such as G79.29+0.46 in one piece. Phrase
// contents ("C++ code") are left alone.
func detachModifiers(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inPhrase := false
	var prev rune
	for i, r := range s {
		if r == '"' {
			inPhrase = !inPhrase
		}
		if (r == '+' || r == '=') && i > 0 && !inPhrase {
			if unicode.IsLetter(prev) || prev == '"' {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// separatePhrases inserts a space between a letter and a directly following
// opening double quote, when the phrase it opens is at least three bytes long
// counting both quotes.
func separatePhrases(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inPhrase := false
	var prev rune
	for i, r := range s {
		if r == '"' {
			if !inPhrase {
				end := strings.IndexByte(s[i+1:], '"')
				if end >= 0 && end+2 >= 3 && unicode.IsLetter(prev) {
					b.WriteByte(' ')
				}
			}
			inPhrase = !inPhrase
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// canonicalizeQuotes rewrites every legacy quote style to the double quote.
// Apostrophes between two letters (possessives, names like Zel'dovich) are
// kept. An unpaired trailing double quote is dropped, and so is any quote the
// lexer would still read as an unclosed phrase.
func canonicalizeQuotes(s string) string {
	s = markInWordApostrophes(s)
	s = strings.NewReplacer("``", `"`, "''", `"`).Replace(s)
	s = strings.NewReplacer("`", `"`, "'", `"`).Replace(s)
	s = strings.ReplaceAll(s, "_", "'")
	if strings.Count(s, `"`)%2 == 1 {
		i := strings.LastIndexByte(s, '"')
		s = s[:i] + s[i+1:]
	}
	return dropUnclosedQuotes(s)
}

// phraseSpans finds the double-quoted phrases the grammar's lexer reads in s,
// as byte ranges including both quotes. A quote that does not start a token
// belongs to the word around it (b"x). unclosed is the offset of the first
// token-initial quote with no partner, or -1. Only double quotes survive
// canonicalization, so a token-initial ' or ` is always unclosed.
func phraseSpans(s string) (spans [][2]int, unclosed int) {
	inWord := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case isTokenBreak(c):
			inWord = false
		case inWord:
		case c == '+' || c == '=' || c == '-':
			// a modifier is a token of its own
		case c == '\'' || c == '`':
			return spans, i
		case c == '"':
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return spans, i
			}
			end += i + 1
			spans = append(spans, [2]int{i, end})
			i = end
		default:
			inWord = true
		}
	}
	return spans, -1
}

func isTokenBreak(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v', '(', ')', '[', ']':
		return true
	}
	return false
}

// dropUnclosedQuotes removes every quote phraseSpans reports as unclosed.
func dropUnclosedQuotes(s string) string {
	for {
		_, i := phraseSpans(s)
		if i < 0 {
			return s
		}
		s = s[:i] + s[i+1:]
	}
}

func markInWordApostrophes(s string) string {
	if !strings.ContainsRune(s, '\'') {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] != '\'' || i == 0 || i == len(b)-1 {
			continue
		}
		before, _ := utf8.DecodeLastRune(b[:i])
		after, _ := utf8.DecodeRune(b[i+1:])
		if isWordRune(before) && isWordRune(after) {
			b[i] = '_'
		}
	}
	return string(b)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// protectPhrases applies fn to s with every double-quoted phrase replaced by
// an opaque mask, then restores the phrases. Rules applied through fn can
// therefore never alter phrase contents.
func protectPhrases(s string, fn func(string) string) string {
	spans, _ := phraseSpans(s)
	phrases := make([]string, 0, len(spans))
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, sp := range spans {
		b.WriteString(s[last:sp[0]])
		b.WriteString(`"`)
		b.WriteRune(maskOpen)
		b.WriteString(strconv.Itoa(len(phrases)))
		b.WriteRune(maskClose)
		b.WriteString(`"`)
		phrases = append(phrases, s[sp[0]:sp[1]+1])
		last = sp[1] + 1
	}
	b.WriteString(s[last:])

	out := fn(b.String())
	if len(phrases) == 0 {
		return out
	}
	return maskRe.ReplaceAllStringFunc(out, func(m string) string {
		idx, err := strconv.Atoi(maskRe.FindStringSubmatch(m)[1])
		if err != nil || idx >= len(phrases) {
			return m
		}
		return phrases[idx]
	})
}

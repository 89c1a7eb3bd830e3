package grammar

import (
	"fmt"
	"sync"

	lex "github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/roach88/classicq/internal/lrparse"
	"github.com/roach88/classicq/internal/parsetree"
)

// Kind classifies a token.
type Kind int

const (
	KindKeyword Kind = iota
	KindPhrase
	KindForbidden
	KindModifier
	KindLParen
	KindRParen
	KindWord
)

var kindNames = [...]string{"keyword", "phrase", "forbidden", "modifier", "lparen", "rparen", "word"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Token is one lexeme of a Classic query.
type Token struct {
	Kind   Kind
	Text   string // the raw lexeme
	Pos    int    // byte offset
	Line   int
	Column int

	// Operator is set for keywords.
	Operator parsetree.Operator
}

// Whitespace is insignificant except as a separator. The same set appears in
// the negated classes of the forbidden-marker and word patterns.
const ws = " \t\r\n\f\v"

// Token patterns in priority order. lexmachine picks the longest match and
// breaks ties by the order patterns were added, so keywords beat words of
// the same length.
var patterns = []struct {
	pattern string
	kind    Kind
	op      parsetree.Operator
}{
	{`[Aa][Nn][Dd]`, KindKeyword, parsetree.And},
	{`[Oo][Rr]`, KindKeyword, parsetree.Or},
	{`[Nn][Oo][Tt]`, KindKeyword, parsetree.Not},
	{`"[^"]*"`, KindPhrase, 0},
	{`'[^']*'`, KindPhrase, 0},
	{"``[^']*''", KindPhrase, 0},
	{"`[^']*'", KindPhrase, 0},
	{`\[[^` + ws + `()\[\]]+\]?`, KindForbidden, 0},
	{`[^` + ws + "()\\[\\]\"'`+=\\-][^" + ws + `()\[\]]*\]`, KindForbidden, 0},
	{`\+`, KindModifier, 0},
	{`=`, KindModifier, 0},
	{`-`, KindModifier, 0},
	{`\(`, KindLParen, 0},
	{`\)`, KindRParen, 0},
	{`[^` + ws + "()\\[\\]\"'`+=\\-][^" + ws + `()\[\]]*`, KindWord, 0},
}

const whitespacePattern = `[` + ws + `]+`

// Grammar holds the compiled Classic lexer and parse tables. It is immutable
// once built and safe for concurrent use: every Tokenize call creates its own
// scanner and every Parse its own stack.
type Grammar struct {
	lexer *lex.Lexer
	table *lrparse.Table
}

// New compiles the Classic token table into a DFA and generates the SLR(1)
// tables of the clause grammar.
func New() (*Grammar, error) {
	lexer := lex.NewLexer()
	for _, p := range patterns {
		lexer.Add([]byte(p.pattern), tokenAction(p.kind, p.op))
	}
	lexer.Add([]byte(whitespacePattern), skip)

	if err := lexer.Compile(); err != nil {
		return nil, fmt.Errorf("compile classic lexer: %w", err)
	}
	table, err := buildTable()
	if err != nil {
		return nil, err
	}
	return &Grammar{lexer: lexer, table: table}, nil
}

var (
	defaultOnce    sync.Once
	defaultGrammar *Grammar
)

// Default returns the process-wide grammar, compiling it on first use.
// The token table and productions are constant, so a failure is a
// programming error.
func Default() *Grammar {
	defaultOnce.Do(func() {
		g, err := New()
		if err != nil {
			panic(err)
		}
		defaultGrammar = g
	})
	return defaultGrammar
}

func tokenAction(kind Kind, op parsetree.Operator) lex.Action {
	return func(scan *lex.Scanner, match *machines.Match) (interface{}, error) {
		return Token{
			Kind:     kind,
			Text:     string(match.Bytes),
			Pos:      match.TC,
			Line:     match.StartLine,
			Column:   match.StartColumn,
			Operator: op,
		}, nil
	}
}

func skip(*lex.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// Tokenize splits text into tokens. It fails with a *SyntaxError at the first
// character no token class accepts, such as an unclosed quote.
func (g *Grammar) Tokenize(text string) ([]Token, error) {
	scanner, err := g.lexer.Scanner([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("create scanner: %w", err)
	}

	var tokens []Token
	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return nil, unconsumed(text, ui)
			}
			return nil, fmt.Errorf("scan: %w", err)
		}
		tokens = append(tokens, tok.(Token))
	}

	tracer().Debugf("tokenize %q => %d tokens", text, len(tokens))
	return tokens, nil
}

// Tokenize splits text with the Default grammar.
func Tokenize(text string) ([]Token, error) {
	return Default().Tokenize(text)
}

func unconsumed(text string, ui *machines.UnconsumedInput) *SyntaxError {
	pos := ui.StartTC
	lexeme := ""
	if pos < len(text) {
		lexeme = firstRune(text[pos:])
	}
	line, col := position(text, pos)
	return &SyntaxError{
		Lexeme: lexeme,
		Pos:    pos,
		Line:   line,
		Column: col,
		Reason: "no token matches",
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// position converts a byte offset to a 1-based line and column.
func position(text string, pos int) (int, int) {
	line, col := 1, 1
	for i, r := range text {
		if i >= pos {
			break
		}
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

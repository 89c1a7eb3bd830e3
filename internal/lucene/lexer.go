package lucene

import (
	"fmt"
	"sync"

	lex "github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type kind int

const (
	kindAnd kind = iota
	kindOr
	kindNot
	kindPhrase
	kindModifier
	kindLParen
	kindRParen
	kindWildcard
	kindTerm
)

var kindNames = [...]string{"AND", "OR", "NOT", "PHRASE", "MOD", "(", ")", "*", "TERM"}

func (k kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type token struct {
	kind kind
	text string
	pos  int
}

// Target-dialect operators are upper case only. A lower-case "and" is a term.
var patterns = []struct {
	pattern string
	kind    kind
}{
	{`AND`, kindAnd},
	{`OR`, kindOr},
	{`NOT`, kindNot},
	{`"([^"\\]|\\.)*"`, kindPhrase},
	{`[+=\-]`, kindModifier},
	{`\(`, kindLParen},
	{`\)`, kindRParen},
	{`\*`, kindWildcard},
	{`([^ \t\r\n()"\\+=\-]|\\.)([^ \t\r\n()"\\]|\\.)*`, kindTerm},
}

var (
	lexerOnce sync.Once
	lexer     *lex.Lexer
	lexerErr  error
)

func compiled() (*lex.Lexer, error) {
	lexerOnce.Do(func() {
		l := lex.NewLexer()
		for _, p := range patterns {
			k := p.kind
			l.Add([]byte(p.pattern), func(_ *lex.Scanner, m *machines.Match) (interface{}, error) {
				return token{kind: k, text: string(m.Bytes), pos: m.TC}, nil
			})
		}
		l.Add([]byte(`[ \t\r\n]+`), func(*lex.Scanner, *machines.Match) (interface{}, error) {
			return nil, nil
		})
		if err := l.Compile(); err != nil {
			lexerErr = fmt.Errorf("compile target lexer: %w", err)
			return
		}
		lexer = l
	})
	return lexer, lexerErr
}

func tokenize(q string) ([]token, error) {
	l, err := compiled()
	if err != nil {
		return nil, err
	}
	scanner, err := l.Scanner([]byte(q))
	if err != nil {
		return nil, fmt.Errorf("create scanner: %w", err)
	}

	var tokens []token
	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return nil, &Error{Pos: ui.StartTC, Lexeme: q[ui.StartTC : ui.StartTC+1], Reason: "unrecognized input"}
			}
			return nil, fmt.Errorf("scan: %w", err)
		}
		tokens = append(tokens, tok.(token))
	}
	return tokens, nil
}

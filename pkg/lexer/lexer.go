// Package lexer tokenizes preprocessed C header text
package lexer

import (
	"errors"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

// headerLexer matches rules in order, so longer operators come first.
// Preprocessor lines that survive (# line markers, #pragma) are dropped
// with the comments.
var headerLexer = plexer.MustSimple([]plexer.SimpleRule{
	{Name: "Directive", Pattern: `#[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n\f\v]+`},
	{Name: "Float", Pattern: `(?:\d+\.\d*|\.\d+)(?:[eE][+-]?\d+)?[fFlL]?|\d+[eE][+-]?\d+[fFlL]?`},
	{Name: "Int", Pattern: `(?:0[xX][0-9a-fA-F]+|0[bB][01]+|\d+)[uUlL]*`},
	{Name: "String", Pattern: `L?"(?:\\.|[^"\\\n])*"`},
	{Name: "CharLit", Pattern: `L?'(?:\\.|[^'\\\n])+'`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Op", Pattern: `\.\.\.|<<=|>>=|->|\+\+|--|<<|>>|<=|>=|==|!=|&&|\|\||[-+*/%&|^]=|[-+*/%=<>!&|^~?:;,.(){}\[\]]`},
})

var skipped = map[string]bool{"Directive": true, "BlockComment": true, "LineComment": true, "Whitespace": true}

// Lexer tokenizes C header text
type Lexer struct {
	tokens []Token
	pos    int
	err    error
}

// New creates a new Lexer for the given input. The input is tokenized
// up front; a lexing error ends the stream with a TokenIllegal.
func New(input string) *Lexer {
	l := &Lexer{}
	l.tokenize(input)
	return l
}

func (l *Lexer) tokenize(input string) {
	names := make(map[plexer.TokenType]string)
	for name, tt := range headerLexer.Symbols() {
		names[tt] = name
	}

	lex, err := headerLexer.LexString("", input)
	if err != nil {
		l.fail(err, 1, 1)
		return
	}
	for {
		tok, err := lex.Next()
		if err != nil {
			line, col := 1, 1
			var positioned interface{ Position() plexer.Position }
			if errors.As(err, &positioned) {
				line, col = positioned.Position().Line, positioned.Position().Column
			}
			l.fail(err, line, col)
			return
		}
		if tok.EOF() {
			l.tokens = append(l.tokens, Token{Type: TokenEOF, Line: tok.Pos.Line, Column: tok.Pos.Column})
			return
		}
		kind := names[tok.Type]
		if skipped[kind] {
			continue
		}
		l.tokens = append(l.tokens, Token{
			Type:    classify(kind, tok.Value),
			Literal: tok.Value,
			Line:    tok.Pos.Line,
			Column:  tok.Pos.Column,
		})
	}
}

func (l *Lexer) fail(err error, line, col int) {
	l.err = err
	l.tokens = append(l.tokens, Token{Type: TokenIllegal, Literal: err.Error(), Line: line, Column: col})
}

func classify(kind, value string) TokenType {
	switch kind {
	case "Ident":
		return LookupIdent(value)
	case "Int":
		return TokenInt
	case "Float":
		return TokenFloat_
	case "String":
		return TokenString
	case "CharLit":
		return TokenCharLit
	case "Op":
		if tt, ok := punctuation[value]; ok {
			return tt
		}
		return TokenOther
	}
	return TokenIllegal
}

// NextToken returns the next token from the input. After the end it keeps
// returning the final EOF or ILLEGAL token.
func (l *Lexer) NextToken() Token {
	tok := l.tokens[l.pos]
	if l.pos < len(l.tokens)-1 {
		l.pos++
	}
	return tok
}

// Err returns the lexing error, if any
func (l *Lexer) Err() error {
	return l.err
}

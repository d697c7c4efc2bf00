package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `typedef struct { int x; } point_t;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenTypedef, "typedef"},
		{TokenStruct, "struct"},
		{TokenLBrace, "{"},
		{TokenInt_, "int"},
		{TokenIdent, "x"},
		{TokenSemicolon, ";"},
		{TokenRBrace, "}"},
		{TokenIdent, "point_t"},
		{TokenSemicolon, ";"},
		{TokenEOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % = == != < <= > >= && || ! & | ^ ~ << >> ? : ... . -> += ++`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenPercent, "%"},
		{TokenAssign, "="},
		{TokenEq, "=="},
		{TokenNe, "!="},
		{TokenLt, "<"},
		{TokenLe, "<="},
		{TokenGt, ">"},
		{TokenGe, ">="},
		{TokenAnd, "&&"},
		{TokenOr, "||"},
		{TokenNot, "!"},
		{TokenAmpersand, "&"},
		{TokenPipe, "|"},
		{TokenCaret, "^"},
		{TokenTilde, "~"},
		{TokenShl, "<<"},
		{TokenShr, ">>"},
		{TokenQuestion, "?"},
		{TokenColon, ":"},
		{TokenEllipsis, "..."},
		{TokenDot, "."},
		{TokenOther, "->"},
		{TokenOther, "+="},
		{TokenOther, "++"},
		{TokenEOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - expected %s %q, got %s %q",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"42", TokenInt},
		{"0x1Fu", TokenInt},
		{"10UL", TokenInt},
		{"0b101", TokenInt},
		{"1.5", TokenFloat_},
		{"2e10f", TokenFloat_},
		{".5", TokenFloat_},
		{`"a \"quoted\" string"`, TokenString},
		{`'\n'`, TokenCharLit},
		{"_Bool", TokenBool},
		{"__restrict", TokenRestrict},
		{"__inline__", TokenInline},
		{"__attribute__", TokenIdent},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.typ || tok.Literal != tt.input {
				t.Errorf("NextToken() = %s %q, want %s %q", tok.Type, tok.Literal, tt.typ, tt.input)
			}
		})
	}
}

func TestSkipsCommentsAndDirectives(t *testing.T) {
	input := "# 1 \"foo.h\"\n/* block\n comment */ int // line\n#pragma once\nx;"
	l := New(input)

	tok := l.NextToken()
	if tok.Type != TokenInt_ {
		t.Fatalf("expected int, got %s %q", tok.Type, tok.Literal)
	}
	if tok.Line != 3 || tok.Column != 13 {
		t.Errorf("position = %d:%d, want 3:13", tok.Line, tok.Column)
	}
	tok = l.NextToken()
	if tok.Type != TokenIdent || tok.Literal != "x" || tok.Line != 5 {
		t.Errorf("got %s %q at line %d, want IDENT x at line 5", tok.Type, tok.Literal, tok.Line)
	}
	if tok := l.NextToken(); tok.Type != TokenSemicolon {
		t.Errorf("expected ;, got %s", tok.Type)
	}
	for i := 0; i < 3; i++ {
		if tok := l.NextToken(); tok.Type != TokenEOF {
			t.Errorf("expected EOF to repeat, got %s", tok.Type)
		}
	}
}

func TestIllegal(t *testing.T) {
	l := New("int @x;")
	if tok := l.NextToken(); tok.Type != TokenInt_ {
		t.Fatalf("expected int, got %s", tok.Type)
	}
	tok := l.NextToken()
	if tok.Type != TokenIllegal {
		t.Fatalf("expected ILLEGAL, got %s %q", tok.Type, tok.Literal)
	}
	if l.Err() == nil {
		t.Error("expected Err() to be set")
	}
	if again := l.NextToken(); again.Type != TokenIllegal {
		t.Errorf("expected ILLEGAL to repeat, got %s", again.Type)
	}
}

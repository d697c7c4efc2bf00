// Package parser implements a recursive descent parser for the declaration
// subset of C found in headers. It produces a cabs.Header.
package parser

import (
	"fmt"
	"strings"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/layout"
	"github.com/raymyers/ralph-bindgen/pkg/lexer"
)

// Parser parses header declarations into a cabs.Header
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string
	notes     []string

	h        *cabs.Header
	target   layout.Target
	typedefs map[string]ctypes.TypeID // typedef names in scope
	comps    map[string]ctypes.CompID // "struct foo" / "union foo"
	enums    map[string]ctypes.EnumID
	defined  map[ctypes.CompID]bool
	enumDefs map[ctypes.EnumID]bool
	consts   map[string]int64 // enumerator values
	wide     map[string]bool  // enumerators above MaxInt64
	symbols  map[string]bool  // functions and variables already declared

	// set when the last constant expression used a literal above MaxInt64
	unsigned64 bool
}

// New creates a new Parser for the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:        l,
		h:        cabs.NewHeader(),
		target:   layout.LP64,
		typedefs: make(map[string]ctypes.TypeID),
		comps:    make(map[string]ctypes.CompID),
		enums:    make(map[string]ctypes.EnumID),
		defined:  make(map[ctypes.CompID]bool),
		enumDefs: make(map[ctypes.EnumID]bool),
		consts:   make(map[string]int64),
		wide:     make(map[string]bool),
		symbols:  make(map[string]bool),
	}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// SetTarget selects the data model used to evaluate sizeof
func (p *Parser) SetTarget(t layout.Target) {
	p.target = t
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

// Notes returns informational messages about constructs that were
// simplified, such as bit-fields
func (p *Parser) Notes() []string {
	return p.notes
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) addNote(format string, args ...interface{}) {
	p.notes = append(p.notes, fmt.Sprintf("line %d: %s", p.curToken.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.describe()))
	return false
}

func (p *Parser) describe() string {
	switch p.curToken.Type {
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenIllegal:
		return fmt.Sprintf("%s %q", p.curToken.Type, p.curToken.Literal)
	}
	return p.curToken.Type.String()
}

// ParseHeader parses declarations until the end of input
func (p *Parser) ParseHeader() *cabs.Header {
	for !p.curTokenIs(lexer.TokenEOF) {
		if p.curTokenIs(lexer.TokenIllegal) {
			p.addError(p.curToken.Literal)
			break
		}
		if p.curTokenIs(lexer.TokenSemicolon) {
			p.nextToken()
			continue
		}
		errs := len(p.errors)
		p.parseExternalDeclaration()
		if len(p.errors) > errs {
			p.synchronize()
		}
	}
	return p.h
}

// synchronize skips to the end of the current declaration
func (p *Parser) synchronize() {
	depth := 0
	for !p.curTokenIs(lexer.TokenEOF) && !p.curTokenIs(lexer.TokenIllegal) {
		switch p.curToken.Type {
		case lexer.TokenLBrace, lexer.TokenLParen, lexer.TokenLBracket:
			depth++
		case lexer.TokenRBrace, lexer.TokenRParen, lexer.TokenRBracket:
			if depth > 0 {
				depth--
			}
		case lexer.TokenSemicolon:
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// skipBalanced skips a parenthesized, bracketed or braced group starting
// at the current opening token
func (p *Parser) skipBalanced() {
	open := p.curToken.Type
	var close lexer.TokenType
	switch open {
	case lexer.TokenLParen:
		close = lexer.TokenRParen
	case lexer.TokenLBrace:
		close = lexer.TokenRBrace
	case lexer.TokenLBracket:
		close = lexer.TokenRBracket
	default:
		return
	}
	depth := 0
	for !p.curTokenIs(lexer.TokenEOF) && !p.curTokenIs(lexer.TokenIllegal) {
		switch p.curToken.Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
	p.addError(fmt.Sprintf("unterminated %s", open))
}

var (
	attributeWords = map[string]bool{
		"__attribute__": true, "__attribute": true, "__declspec": true,
		"__asm__": true, "__asm": true, "asm": true, "_Alignas": true,
	}
	ignoredWords = map[string]bool{
		"__extension__": true, "_Noreturn": true, "__thread": true, "_Thread_local": true,
	}
)

// skipExtensions skips GNU attributes, asm labels and similar noise
func (p *Parser) skipExtensions() {
	for p.curTokenIs(lexer.TokenIdent) {
		switch {
		case attributeWords[p.curToken.Literal]:
			p.nextToken()
			if p.curTokenIs(lexer.TokenLParen) {
				p.skipBalanced()
			}
		case ignoredWords[p.curToken.Literal]:
			p.nextToken()
		default:
			return
		}
	}
}

func (p *Parser) parseExternalDeclaration() {
	if p.curTokenIs(lexer.TokenIdent) && p.curToken.Literal == "_Static_assert" {
		p.synchronize()
		return
	}

	spec := p.parseDeclSpecifiers()
	if spec == nil {
		return
	}
	if p.curTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
		return
	}

	for {
		name, ty := p.parseDeclarator(spec.base, false)
		p.skipExtensions()
		if name == "" {
			p.addError("expected identifier in declaration")
			return
		}
		if spec.storage == lexer.TokenTypedef {
			p.declareTypedef(name, ty)
		} else if p.isFunction(ty) {
			if p.curTokenIs(lexer.TokenLBrace) {
				p.skipBalanced()
				p.h.Add(cabs.GOther{Note: "function definition " + name})
				return
			}
			p.declareFunc(spec, name, ty)
		} else {
			if p.curTokenIs(lexer.TokenAssign) {
				p.skipInitializer()
			}
			p.declareVar(spec, name, ty)
		}

		if p.curTokenIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		p.expect(lexer.TokenSemicolon)
		return
	}
}

func (p *Parser) isFunction(t ctypes.Type) bool {
	_, ok := p.h.Arena.Resolve(t).(ctypes.Tfunction)
	return ok
}

func (p *Parser) skipInitializer() {
	p.nextToken() // consume '='
	for !p.curTokenIs(lexer.TokenComma) && !p.curTokenIs(lexer.TokenSemicolon) &&
		!p.curTokenIs(lexer.TokenEOF) && !p.curTokenIs(lexer.TokenIllegal) {
		if p.curTokenIs(lexer.TokenLBrace) || p.curTokenIs(lexer.TokenLParen) {
			p.skipBalanced()
			continue
		}
		p.nextToken()
	}
}

func (p *Parser) declareTypedef(name string, ty ctypes.Type) {
	if id, ok := p.typedefs[name]; ok {
		if ctypes.Equal(p.h.Arena.Typedef(id).Type, ty) {
			return
		}
		p.addNote("typedef %s redefined with a different type", name)
	}
	id := p.h.Arena.AddTypedef(ctypes.TypeInfo{Name: name, Type: ty})
	p.typedefs[name] = id
	p.h.Add(cabs.GType{ID: id})
}

func (p *Parser) declareFunc(spec *declSpec, name string, ty ctypes.Type) {
	if spec.storage == lexer.TokenStatic {
		p.h.Add(cabs.GOther{Note: "static function " + name})
		return
	}
	if p.symbols[name] {
		return
	}
	p.symbols[name] = true
	p.h.Add(cabs.GFunc{VarInfo: cabs.VarInfo{Name: name, Type: ty}})
}

func (p *Parser) declareVar(spec *declSpec, name string, ty ctypes.Type) {
	if spec.storage == lexer.TokenStatic {
		p.h.Add(cabs.GOther{Note: "static variable " + name})
		return
	}
	if p.symbols[name] {
		return
	}
	p.symbols[name] = true
	p.h.Add(cabs.GVar{VarInfo: cabs.VarInfo{Name: name, Type: ty}})
}

// Parse parses header text. Lexing and parsing errors are joined into one
// error; the partial header is still returned for inspection.
func Parse(src string) (*cabs.Header, error) {
	p := New(lexer.New(src))
	h := p.ParseHeader()
	if errs := p.Errors(); len(errs) > 0 {
		return h, fmt.Errorf("parse errors:\n  %s", strings.Join(errs, "\n  "))
	}
	return h, nil
}

package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/layout"
	"github.com/raymyers/ralph-bindgen/pkg/lexer"
)

// Operator precedence, lowest to highest
const (
	_ int = iota
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

var binaryOps = map[lexer.TokenType]struct {
	op   cabs.BinaryOp
	prec int
}{
	lexer.TokenOr:        {cabs.OpOr, precLogicalOr},
	lexer.TokenAnd:       {cabs.OpAnd, precLogicalAnd},
	lexer.TokenPipe:      {cabs.OpBitOr, precBitOr},
	lexer.TokenCaret:     {cabs.OpBitXor, precBitXor},
	lexer.TokenAmpersand: {cabs.OpBitAnd, precBitAnd},
	lexer.TokenEq:        {cabs.OpEq, precEquality},
	lexer.TokenNe:        {cabs.OpNe, precEquality},
	lexer.TokenLt:        {cabs.OpLt, precRelational},
	lexer.TokenLe:        {cabs.OpLe, precRelational},
	lexer.TokenGt:        {cabs.OpGt, precRelational},
	lexer.TokenGe:        {cabs.OpGe, precRelational},
	lexer.TokenShl:       {cabs.OpShl, precShift},
	lexer.TokenShr:       {cabs.OpShr, precShift},
	lexer.TokenPlus:      {cabs.OpAdd, precAdditive},
	lexer.TokenMinus:     {cabs.OpSub, precAdditive},
	lexer.TokenStar:      {cabs.OpMul, precMultiplicative},
	lexer.TokenSlash:     {cabs.OpDiv, precMultiplicative},
	lexer.TokenPercent:   {cabs.OpMod, precMultiplicative},
}

var unaryOps = map[lexer.TokenType]cabs.UnaryOp{
	lexer.TokenMinus: cabs.OpNeg,
	lexer.TokenPlus:  cabs.OpPlus,
	lexer.TokenNot:   cabs.OpNot,
	lexer.TokenTilde: cabs.OpBitNot,
}

// constExpr parses and folds an integer constant expression. Errors are
// recorded on the parser and also returned.
func (p *Parser) constExpr() (int64, error) {
	start := p.curToken
	p.unsigned64 = false
	e := p.parseConditional()
	if e == nil {
		return 0, fmt.Errorf("invalid constant expression")
	}
	v, err := cabs.Eval(e, p.consts)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s", start.Line, start.Column, err))
		return 0, err
	}
	return v, nil
}

func (p *Parser) parseConditional() cabs.Expr {
	cond := p.parseBinary(precLogicalOr)
	if cond == nil || !p.curTokenIs(lexer.TokenQuestion) {
		return cond
	}
	p.nextToken()
	then := p.parseConditional()
	if then == nil || !p.expect(lexer.TokenColon) {
		return nil
	}
	els := p.parseConditional()
	if els == nil {
		return nil
	}
	return cabs.Conditional{Cond: cond, Then: then, Else: els}
}

// parseBinary parses left-associative binary operators of at least the
// given precedence
func (p *Parser) parseBinary(minPrec int) cabs.Expr {
	left := p.parseUnary()
	for left != nil {
		info, ok := binaryOps[p.curToken.Type]
		if !ok || info.prec < minPrec {
			return left
		}
		p.nextToken()
		right := p.parseBinary(info.prec + 1)
		if right == nil {
			return nil
		}
		left = cabs.Binary{Op: info.op, Left: left, Right: right}
	}
	return nil
}

func (p *Parser) parseUnary() cabs.Expr {
	if op, ok := unaryOps[p.curToken.Type]; ok {
		p.nextToken()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return cabs.Unary{Op: op, Expr: operand}
	}
	switch {
	case p.curTokenIs(lexer.TokenSizeof):
		return p.parseSizeof()
	case p.curTokenIs(lexer.TokenLParen) && p.isTypeToken(p.peekToken):
		// cast: the value is kept, the type only has to parse
		p.nextToken()
		if p.parseTypeName() == nil || !p.expect(lexer.TokenRParen) {
			return nil
		}
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() cabs.Expr {
	tok := p.curToken
	switch tok.Type {
	case lexer.TokenInt:
		p.nextToken()
		v, err := parseIntLiteral(tok.Literal)
		if err != nil {
			p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s", tok.Line, tok.Column, err))
			return nil
		}
		if v < 0 {
			// only fits unsigned long long
			p.unsigned64 = true
		}
		return cabs.Constant{Value: v}
	case lexer.TokenCharLit:
		p.nextToken()
		v, err := parseCharLiteral(tok.Literal)
		if err != nil {
			p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s", tok.Line, tok.Column, err))
			return nil
		}
		return cabs.Constant{Value: v}
	case lexer.TokenIdent:
		p.nextToken()
		if p.wide[tok.Literal] {
			p.unsigned64 = true
		}
		return cabs.Variable{Name: tok.Literal}
	case lexer.TokenLParen:
		p.nextToken()
		inner := p.parseConditional()
		if inner == nil || !p.expect(lexer.TokenRParen) {
			return nil
		}
		return cabs.Paren{Expr: inner}
	}
	p.addError(fmt.Sprintf("expected constant expression, got %s", p.describe()))
	return nil
}

// parseSizeof handles sizeof(type). The size comes from the layout of the
// selected target.
func (p *Parser) parseSizeof() cabs.Expr {
	p.nextToken() // consume 'sizeof'
	if !p.curTokenIs(lexer.TokenLParen) || !p.isTypeToken(p.peekToken) {
		p.addError("sizeof is only supported on a parenthesized type name")
		return nil
	}
	p.nextToken()
	t := p.parseTypeName()
	if t == nil || !p.expect(lexer.TokenRParen) {
		return nil
	}
	size, err := layout.New(p.h.Arena, p.target).Sizeof(t)
	if err != nil {
		p.addError(fmt.Sprintf("sizeof: %s", err))
		return nil
	}
	return cabs.Constant{Value: size}
}

func parseIntLiteral(lit string) (int64, error) {
	digits := strings.TrimRight(lit, "uUlL")
	if strings.HasPrefix(digits, "0") && len(digits) > 1 && digits[1] >= '0' && digits[1] <= '9' {
		// C octal; Go wants 0o
		digits = "0o" + digits[1:]
	}
	v, err := strconv.ParseInt(digits, 0, 64)
	if err == nil {
		return v, nil
	}
	u, uerr := strconv.ParseUint(digits, 0, 64)
	if uerr != nil {
		return 0, fmt.Errorf("invalid integer literal %s", lit)
	}
	return int64(u), nil
}

var charEscapes = map[byte]int64{
	'n': '\n', 't': '\t', 'r': '\r', 'a': '\a', 'b': '\b',
	'f': '\f', 'v': '\v', '\\': '\\', '\'': '\'', '"': '"', '?': '?',
}

func parseCharLiteral(lit string) (int64, error) {
	body := strings.TrimPrefix(lit, "L")
	body = strings.TrimSuffix(strings.TrimPrefix(body, "'"), "'")
	switch {
	case len(body) == 1:
		return int64(body[0]), nil
	case len(body) < 2 || body[0] != '\\':
	case len(body) == 2 && charEscapes[body[1]] != 0:
		return charEscapes[body[1]], nil
	case body[1] == 'x':
		if v, err := strconv.ParseInt(body[2:], 16, 64); err == nil {
			return v, nil
		}
	default:
		if v, err := strconv.ParseInt(body[1:], 8, 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unsupported character literal %s", lit)
}

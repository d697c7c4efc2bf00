package parser

import (
	"fmt"
	"math"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/lexer"
)

// declSpec is the result of parsing declaration specifiers
type declSpec struct {
	storage lexer.TokenType // TokenTypedef, TokenExtern, TokenStatic or TokenEOF for none
	inline  bool
	base    ctypes.Type
}

// specCounts tallies the basic type keywords of one specifier list
type specCounts struct {
	void, boolean, char, short, int_, long, float, double, signed, unsigned int
}

func (c specCounts) any() bool {
	return c.void+c.boolean+c.char+c.short+c.int_+c.long+c.float+c.double+c.signed+c.unsigned > 0
}

// builtinTypes are compiler-provided names that appear in preprocessed
// system headers
var builtinTypes = map[string]ctypes.Type{
	"__builtin_va_list": ctypes.Pointer(ctypes.Void()),
}

// isTypeToken reports whether tok can begin a type name
func (p *Parser) isTypeToken(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenVoid, lexer.TokenBool, lexer.TokenChar, lexer.TokenShort,
		lexer.TokenInt_, lexer.TokenLong, lexer.TokenFloat, lexer.TokenDouble,
		lexer.TokenSigned, lexer.TokenUnsigned, lexer.TokenStruct, lexer.TokenUnion,
		lexer.TokenEnum, lexer.TokenConst, lexer.TokenVolatile, lexer.TokenRestrict:
		return true
	case lexer.TokenIdent:
		_, isTypedef := p.typedefs[tok.Literal]
		_, isBuiltin := builtinTypes[tok.Literal]
		return isTypedef || isBuiltin
	}
	return false
}

// parseDeclSpecifiers parses storage classes, qualifiers and exactly one
// type. Struct, union and enum definitions met on the way are added to the
// header. Returns nil after reporting an error.
func (p *Parser) parseDeclSpecifiers() *declSpec {
	spec := &declSpec{storage: lexer.TokenEOF}
	var counts specCounts
	start := p.curToken

	for {
		p.skipExtensions()
		switch p.curToken.Type {
		case lexer.TokenTypedef, lexer.TokenExtern, lexer.TokenStatic:
			spec.storage = p.curToken.Type
		case lexer.TokenAuto, lexer.TokenRegister, lexer.TokenConst,
			lexer.TokenVolatile, lexer.TokenRestrict:
		case lexer.TokenInline:
			spec.inline = true
		case lexer.TokenVoid:
			counts.void++
		case lexer.TokenBool:
			counts.boolean++
		case lexer.TokenChar:
			counts.char++
		case lexer.TokenShort:
			counts.short++
		case lexer.TokenInt_:
			counts.int_++
		case lexer.TokenLong:
			counts.long++
		case lexer.TokenFloat:
			counts.float++
		case lexer.TokenDouble:
			counts.double++
		case lexer.TokenSigned:
			counts.signed++
		case lexer.TokenUnsigned:
			counts.unsigned++
		case lexer.TokenStruct, lexer.TokenUnion:
			if spec.base != nil || counts.any() {
				p.addError("two or more data types in declaration specifiers")
				return nil
			}
			spec.base = p.parseStructOrUnion()
			if spec.base == nil {
				return nil
			}
			continue
		case lexer.TokenEnum:
			if spec.base != nil || counts.any() {
				p.addError("two or more data types in declaration specifiers")
				return nil
			}
			spec.base = p.parseEnum()
			if spec.base == nil {
				return nil
			}
			continue
		case lexer.TokenIdent:
			if spec.base != nil || counts.any() {
				return p.finishSpec(spec, counts, start)
			}
			if id, ok := p.typedefs[p.curToken.Literal]; ok {
				spec.base = ctypes.Tnamed{ID: id}
				break
			}
			if t, ok := builtinTypes[p.curToken.Literal]; ok {
				spec.base = t
				break
			}
			if p.peekTokenIs(lexer.TokenIdent) || p.peekTokenIs(lexer.TokenStar) {
				p.addError(fmt.Sprintf("unknown type name %q", p.curToken.Literal))
				return nil
			}
			return p.finishSpec(spec, counts, start)
		default:
			return p.finishSpec(spec, counts, start)
		}
		p.nextToken()
	}
}

func (p *Parser) finishSpec(spec *declSpec, c specCounts, start lexer.Token) *declSpec {
	if spec.base != nil {
		if c.any() {
			p.addError("two or more data types in declaration specifiers")
			return nil
		}
		return spec
	}
	t, err := basicType(c)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s", start.Line, start.Column, err))
		return nil
	}
	spec.base = t
	return spec
}

// basicType combines counted type keywords into one type
func basicType(c specCounts) (ctypes.Type, error) {
	if c.signed > 0 && c.unsigned > 0 {
		return nil, fmt.Errorf("both signed and unsigned in declaration specifiers")
	}
	u := c.unsigned > 0
	pick := func(s, uns ctypes.IKind) ctypes.Type {
		if u {
			return ctypes.Tint{Kind: uns}
		}
		return ctypes.Tint{Kind: s}
	}
	switch {
	case c.void > 0:
		return ctypes.Void(), nil
	case c.boolean > 0:
		return ctypes.Tint{Kind: ctypes.IBool}, nil
	case c.char > 0:
		switch {
		case u:
			return ctypes.UChar(), nil
		case c.signed > 0:
			return ctypes.Tint{Kind: ctypes.ISChar}, nil
		}
		return ctypes.Char(), nil
	case c.short > 0:
		return pick(ctypes.IShort, ctypes.IUShort), nil
	case c.float > 0:
		return ctypes.Float(), nil
	case c.double > 0:
		// long double has no portable Rust counterpart
		return ctypes.Double(), nil
	case c.long >= 2:
		return pick(ctypes.ILongLong, ctypes.IULongLong), nil
	case c.long == 1:
		return pick(ctypes.ILong, ctypes.IULong), nil
	case c.int_ > 0 || c.signed > 0 || c.unsigned > 0:
		return pick(ctypes.IInt, ctypes.IUInt), nil
	}
	return nil, fmt.Errorf("expected type specifier")
}

// parseStructOrUnion parses struct/union specifiers with an optional tag
// and an optional body. A tag seen for the first time without a body is
// recorded as a forward declaration.
func (p *Parser) parseStructOrUnion() ctypes.Type {
	isStruct := p.curTokenIs(lexer.TokenStruct)
	kw := p.curToken.Literal
	p.nextToken()
	p.skipExtensions()

	tag := ""
	if p.curTokenIs(lexer.TokenIdent) {
		tag = p.curToken.Literal
		p.nextToken()
		p.skipExtensions()
	}
	if tag == "" && !p.curTokenIs(lexer.TokenLBrace) {
		p.addError(fmt.Sprintf("expected tag or '{' after %s", kw))
		return nil
	}

	var id ctypes.CompID
	known := false
	if tag != "" {
		id, known = p.comps[kw+" "+tag]
	}
	if !known {
		id = p.h.Arena.AddComp(ctypes.CompInfo{Name: tag, IsStruct: isStruct})
		if tag != "" {
			p.comps[kw+" "+tag] = id
		}
	}

	if !p.curTokenIs(lexer.TokenLBrace) {
		if !known {
			p.h.Add(cabs.GCompDecl{ID: id})
		}
		return ctypes.Tcomp{ID: id}
	}
	if p.defined[id] {
		p.addError(fmt.Sprintf("redefinition of %s %s", kw, tag))
		return nil
	}

	fields, ok := p.parseFields()
	if !ok {
		return nil
	}
	p.h.Arena.Comp(id).Fields = fields
	p.defined[id] = true
	p.h.Add(cabs.GComp{ID: id})
	p.skipExtensions()
	return ctypes.Tcomp{ID: id}
}

func (p *Parser) parseFields() ([]ctypes.FieldInfo, bool) {
	p.nextToken() // consume '{'
	var fields []ctypes.FieldInfo
	for !p.curTokenIs(lexer.TokenRBrace) {
		if p.curTokenIs(lexer.TokenEOF) || p.curTokenIs(lexer.TokenIllegal) {
			p.addError("unexpected end of input in member list")
			return nil, false
		}
		if p.curTokenIs(lexer.TokenSemicolon) {
			p.nextToken()
			continue
		}
		spec := p.parseDeclSpecifiers()
		if spec == nil {
			return nil, false
		}
		if p.curTokenIs(lexer.TokenSemicolon) {
			// anonymous struct or union member
			fields = append(fields, ctypes.FieldInfo{Type: spec.base})
			p.nextToken()
			continue
		}
		for {
			name := ""
			ty := spec.base
			if !p.curTokenIs(lexer.TokenColon) {
				name, ty = p.parseDeclarator(spec.base, false)
			}
			if p.curTokenIs(lexer.TokenColon) {
				p.nextToken()
				width, err := p.constExpr()
				if err != nil {
					return nil, false
				}
				if name == "" {
					p.addNote("unnamed bit-field of width %d dropped", width)
					p.skipExtensions()
					if !p.nextMember() {
						break
					}
					continue
				}
				p.addNote("bit-field %s of width %d laid out as a plain %s", name, width, ty)
			}
			p.skipExtensions()
			fields = append(fields, ctypes.FieldInfo{Name: name, Type: ty})
			if !p.nextMember() {
				break
			}
		}
		if !p.expect(lexer.TokenSemicolon) {
			return nil, false
		}
	}
	p.nextToken() // consume '}'
	return fields, true
}

func (p *Parser) nextMember() bool {
	if p.curTokenIs(lexer.TokenComma) {
		p.nextToken()
		return true
	}
	return false
}

// parseEnum parses an enum specifier. Enumerator values are folded as they
// are read; the storage kind is int when a value is negative and unsigned
// otherwise, widened when a value does not fit 32 bits.
func (p *Parser) parseEnum() ctypes.Type {
	p.nextToken() // consume 'enum'
	p.skipExtensions()

	tag := ""
	if p.curTokenIs(lexer.TokenIdent) {
		tag = p.curToken.Literal
		p.nextToken()
		p.skipExtensions()
	}
	if tag == "" && !p.curTokenIs(lexer.TokenLBrace) {
		p.addError("expected tag or '{' after enum")
		return nil
	}

	id, known := p.enums[tag]
	if tag == "" || !known {
		id = p.h.Arena.AddEnum(ctypes.EnumInfo{Name: tag, Kind: ctypes.IUInt})
		known = false
		if tag != "" {
			p.enums[tag] = id
		}
	}
	if !p.curTokenIs(lexer.TokenLBrace) {
		if !known {
			p.h.Add(cabs.GEnumDecl{ID: id})
		}
		return ctypes.Tenum{ID: id}
	}
	if p.enumDefs[id] {
		p.addError("redefinition of enum " + tag)
		return nil
	}

	p.nextToken() // consume '{'
	var items []ctypes.EnumItem
	var wide []bool // value is an unsigned long long above MaxInt64
	next := int64(0)
	nextWide := false
	for !p.curTokenIs(lexer.TokenRBrace) {
		if !p.curTokenIs(lexer.TokenIdent) {
			p.addError(fmt.Sprintf("expected enumerator, got %s", p.describe()))
			return nil
		}
		name := p.curToken.Literal
		p.nextToken()
		p.skipExtensions()
		if p.curTokenIs(lexer.TokenAssign) {
			p.nextToken()
			v, err := p.constExpr()
			if err != nil {
				return nil
			}
			next = v
			nextWide = p.unsigned64 && v < 0
		}
		items = append(items, ctypes.EnumItem{Name: name, Value: next})
		wide = append(wide, nextWide)
		p.consts[name] = next
		p.wide[name] = nextWide
		next++
		nextWide = nextWide && next < 0
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	if !p.expect(lexer.TokenRBrace) {
		return nil
	}

	ei := p.h.Arena.Enum(id)
	ei.Items = items
	ei.Kind = enumKind(items, wide)
	if ei.Kind == ctypes.IULongLong && hasNegative(items, wide) {
		p.addNote("enum %s mixes negative values with values above %d; stored as unsigned long long", tag, int64(math.MaxInt64))
	}
	p.enumDefs[id] = true
	p.h.Add(cabs.GEnum{ID: id})
	p.skipExtensions()
	return ctypes.Tenum{ID: id}
}

// enumKind picks the storage type for the enumerator values. wide marks
// values that are unsigned long long above MaxInt64 and so are held as
// negative int64 bit patterns.
func enumKind(items []ctypes.EnumItem, wide []bool) ctypes.IKind {
	var lo, hi int64
	for i, it := range items {
		if wide[i] {
			return ctypes.IULongLong
		}
		if it.Value < lo {
			lo = it.Value
		}
		if it.Value > hi {
			hi = it.Value
		}
	}
	switch {
	case lo < math.MinInt32 || (lo < 0 && hi > math.MaxInt32):
		return ctypes.ILongLong
	case lo < 0:
		return ctypes.IInt
	case hi > math.MaxUint32:
		return ctypes.IULongLong
	}
	return ctypes.IUInt
}

func hasNegative(items []ctypes.EnumItem, wide []bool) bool {
	for i, it := range items {
		if !wide[i] && it.Value < 0 {
			return true
		}
	}
	return false
}

// parseDeclarator parses a possibly abstract declarator around base and
// returns the declared name (empty when abstract) and its type.
func (p *Parser) parseDeclarator(base ctypes.Type, abstract bool) (string, ctypes.Type) {
	name, wrap := p.declarator(abstract)
	return name, wrap(base)
}

// declarator returns a function that applies the declarator to a base
// type. Pointers bind to the base first, then array and function suffixes,
// then any parenthesized inner declarator.
func (p *Parser) declarator(abstract bool) (string, func(ctypes.Type) ctypes.Type) {
	p.skipExtensions()
	pointers := 0
	for p.curTokenIs(lexer.TokenStar) {
		pointers++
		p.nextToken()
		p.skipQualifiers()
	}

	name := ""
	inner := func(t ctypes.Type) ctypes.Type { return t }
	switch {
	case p.curTokenIs(lexer.TokenLParen) && p.nestedDeclarator(abstract):
		p.nextToken()
		name, inner = p.declarator(abstract)
		p.expect(lexer.TokenRParen)
	case p.curTokenIs(lexer.TokenIdent) && !attributeWords[p.curToken.Literal]:
		name = p.curToken.Literal
		p.nextToken()
	}

	var suffixes []func(ctypes.Type) ctypes.Type
	for {
		p.skipExtensions()
		switch {
		case p.curTokenIs(lexer.TokenLBracket):
			size := p.arraySize()
			suffixes = append(suffixes, func(t ctypes.Type) ctypes.Type { return ctypes.Array(t, size) })
			continue
		case p.curTokenIs(lexer.TokenLParen):
			params, variadic := p.parseParams()
			suffixes = append(suffixes, func(t ctypes.Type) ctypes.Type {
				return ctypes.Tfunction{Return: t, Params: params, VarArg: variadic}
			})
			continue
		}
		break
	}

	return name, func(t ctypes.Type) ctypes.Type {
		for i := 0; i < pointers; i++ {
			t = ctypes.Pointer(t)
		}
		for i := len(suffixes) - 1; i >= 0; i-- {
			t = suffixes[i](t)
		}
		return inner(t)
	}
}

// nestedDeclarator decides whether '(' opens a parenthesized declarator
// rather than a parameter list
func (p *Parser) nestedDeclarator(abstract bool) bool {
	switch p.peekToken.Type {
	case lexer.TokenStar, lexer.TokenLParen, lexer.TokenLBracket:
		return true
	case lexer.TokenIdent:
		if attributeWords[p.peekToken.Literal] {
			return true
		}
		return !p.isTypeToken(p.peekToken)
	}
	return !abstract && !p.peekTokenIs(lexer.TokenRParen)
}

func (p *Parser) skipQualifiers() {
	for {
		p.skipExtensions()
		switch p.curToken.Type {
		case lexer.TokenConst, lexer.TokenVolatile, lexer.TokenRestrict:
			p.nextToken()
		default:
			return
		}
	}
}

func (p *Parser) arraySize() int64 {
	p.nextToken() // consume '['
	for p.curTokenIs(lexer.TokenStatic) || p.curTokenIs(lexer.TokenConst) ||
		p.curTokenIs(lexer.TokenVolatile) || p.curTokenIs(lexer.TokenRestrict) {
		p.nextToken()
	}
	if p.curTokenIs(lexer.TokenRBracket) {
		p.nextToken()
		return 0
	}
	size, err := p.constExpr()
	if err != nil {
		return 0
	}
	if size < 0 {
		p.addError(fmt.Sprintf("array size %d is negative", size))
		size = 0
	}
	p.expect(lexer.TokenRBracket)
	return size
}

// parseParams parses a parameter list. Array and function parameters
// decay to pointers.
func (p *Parser) parseParams() ([]ctypes.Param, bool) {
	p.nextToken() // consume '('
	var params []ctypes.Param
	variadic := false

	if p.curTokenIs(lexer.TokenVoid) && p.peekTokenIs(lexer.TokenRParen) {
		p.nextToken()
	}
	for !p.curTokenIs(lexer.TokenRParen) {
		if p.curTokenIs(lexer.TokenEllipsis) {
			variadic = true
			p.nextToken()
			break
		}
		spec := p.parseDeclSpecifiers()
		if spec == nil {
			p.skipToParamEnd()
			return params, variadic
		}
		name, ty := p.parseDeclarator(spec.base, true)
		switch t := ty.(type) {
		case ctypes.Tarray:
			ty = ctypes.Pointer(t.Elem)
		case ctypes.Tfunction:
			ty = ctypes.Pointer(t)
		}
		params = append(params, ctypes.Param{Name: name, Type: ty})
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(lexer.TokenRParen)
	return params, variadic
}

func (p *Parser) skipToParamEnd() {
	depth := 0
	for !p.curTokenIs(lexer.TokenEOF) && !p.curTokenIs(lexer.TokenIllegal) {
		switch p.curToken.Type {
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			if depth == 0 {
				p.nextToken()
				return
			}
			depth--
		}
		p.nextToken()
	}
}

// parseTypeName parses a type name as used in casts and sizeof
func (p *Parser) parseTypeName() ctypes.Type {
	spec := p.parseDeclSpecifiers()
	if spec == nil {
		return nil
	}
	_, ty := p.parseDeclarator(spec.base, true)
	return ty
}

package lexer

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent   // foo, size_t, __attribute__
	TokenInt     // 42, 0x1fu
	TokenFloat_  // 1.5e3f
	TokenString  // "hello"
	TokenCharLit // 'a'

	// Keywords
	TokenInt_     // int
	TokenVoid     // void
	TokenTypedef  // typedef
	TokenStruct   // struct
	TokenUnion    // union
	TokenEnum     // enum
	TokenStatic   // static
	TokenExtern   // extern
	TokenInline   // inline
	TokenAuto     // auto
	TokenRegister // register
	TokenConst    // const
	TokenVolatile // volatile
	TokenRestrict // restrict
	TokenChar     // char
	TokenShort    // short
	TokenLong     // long
	TokenFloat    // float
	TokenDouble   // double
	TokenSigned   // signed
	TokenUnsigned // unsigned
	TokenBool     // _Bool
	TokenSizeof   // sizeof

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenPercent   // %
	TokenAssign    // =
	TokenEq        // ==
	TokenNe        // !=
	TokenLt        // <
	TokenLe        // <=
	TokenGt        // >
	TokenGe        // >=
	TokenAnd       // &&
	TokenOr        // ||
	TokenNot       // !
	TokenAmpersand // &
	TokenPipe      // |
	TokenCaret     // ^
	TokenTilde     // ~
	TokenShl       // <<
	TokenShr       // >>
	TokenQuestion  // ?
	TokenColon     // :
	TokenOther     // operators that only occur inside skipped bodies (++, +=, ->)

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenComma     // ,
	TokenDot       // .
	TokenEllipsis  // ...
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenIllegal:   "ILLEGAL",
	TokenIdent:     "IDENT",
	TokenInt:       "INT",
	TokenFloat_:    "FLOAT",
	TokenString:    "STRING",
	TokenCharLit:   "CHAR",
	TokenInt_:      "int",
	TokenVoid:      "void",
	TokenTypedef:   "typedef",
	TokenStruct:    "struct",
	TokenUnion:     "union",
	TokenEnum:      "enum",
	TokenStatic:    "static",
	TokenExtern:    "extern",
	TokenInline:    "inline",
	TokenAuto:      "auto",
	TokenRegister:  "register",
	TokenConst:     "const",
	TokenVolatile:  "volatile",
	TokenRestrict:  "restrict",
	TokenChar:      "char",
	TokenShort:     "short",
	TokenLong:      "long",
	TokenFloat:     "float",
	TokenDouble:    "double",
	TokenSigned:    "signed",
	TokenUnsigned:  "unsigned",
	TokenBool:      "_Bool",
	TokenSizeof:    "sizeof",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenPercent:   "%",
	TokenAssign:    "=",
	TokenEq:        "==",
	TokenNe:        "!=",
	TokenLt:        "<",
	TokenLe:        "<=",
	TokenGt:        ">",
	TokenGe:        ">=",
	TokenAnd:       "&&",
	TokenOr:        "||",
	TokenNot:       "!",
	TokenAmpersand: "&",
	TokenPipe:      "|",
	TokenCaret:     "^",
	TokenTilde:     "~",
	TokenShl:       "<<",
	TokenShr:       ">>",
	TokenQuestion:  "?",
	TokenColon:     ":",
	TokenOther:     "OP",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenSemicolon: ";",
	TokenComma:     ",",
	TokenDot:       ".",
	TokenEllipsis:  "...",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// keywords maps keyword strings to token types. GNU spellings of the
// qualifiers map to the standard ones.
var keywords = map[string]TokenType{
	"int":          TokenInt_,
	"void":         TokenVoid,
	"typedef":      TokenTypedef,
	"struct":       TokenStruct,
	"union":        TokenUnion,
	"enum":         TokenEnum,
	"static":       TokenStatic,
	"extern":       TokenExtern,
	"inline":       TokenInline,
	"__inline":     TokenInline,
	"__inline__":   TokenInline,
	"auto":         TokenAuto,
	"register":     TokenRegister,
	"const":        TokenConst,
	"__const":      TokenConst,
	"__const__":    TokenConst,
	"volatile":     TokenVolatile,
	"__volatile__": TokenVolatile,
	"restrict":     TokenRestrict,
	"__restrict":   TokenRestrict,
	"__restrict__": TokenRestrict,
	"char":         TokenChar,
	"short":        TokenShort,
	"long":         TokenLong,
	"float":        TokenFloat,
	"double":       TokenDouble,
	"signed":       TokenSigned,
	"__signed__":   TokenSigned,
	"unsigned":     TokenUnsigned,
	"_Bool":        TokenBool,
	"sizeof":       TokenSizeof,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdent
}

var punctuation = map[string]TokenType{
	"+": TokenPlus, "-": TokenMinus, "*": TokenStar, "/": TokenSlash,
	"%": TokenPercent, "=": TokenAssign, "==": TokenEq, "!=": TokenNe,
	"<": TokenLt, "<=": TokenLe, ">": TokenGt, ">=": TokenGe,
	"&&": TokenAnd, "||": TokenOr, "!": TokenNot, "&": TokenAmpersand,
	"|": TokenPipe, "^": TokenCaret, "~": TokenTilde, "<<": TokenShl,
	">>": TokenShr, "?": TokenQuestion, ":": TokenColon,
	"(": TokenLParen, ")": TokenRParen, "{": TokenLBrace, "}": TokenRBrace,
	"[": TokenLBracket, "]": TokenRBracket, ";": TokenSemicolon,
	",": TokenComma, ".": TokenDot, "...": TokenEllipsis,
}

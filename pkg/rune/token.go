package rune

import (
	"fmt"
	"maps"
	"slices"
)

// TokenType is the kind of a lexical token.
type TokenType int

const (
	// utility
	TokEnd TokenType = iota
	TokIllegal
	TokEmpty

	// paired delimiters
	TokLeftParen
	TokRightParen
	TokLeftBrace
	TokRightBrace
	TokLeftBracket
	TokRightBracket

	// unary delimiters
	TokSemicolon
	TokColon
	TokDot
	TokComma

	// algebraic operators
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokCaret
	TokPercent
	TokBang

	// relational operators
	TokVBar
	TokTilde
	TokEqual
	TokLess
	TokGreater
	TokLessEqual
	TokGreaterEqual
	TokBangEqual
	TokEqualEqual

	// tickers
	TokPlusPlus
	TokMinusMinus
	TokStarStar

	// compound assignment
	TokPlusEqual
	TokMinusEqual
	TokStarEqual
	TokSlashEqual

	// list operator
	TokAmpersand

	// vector operators
	TokDotAdd
	TokDotStar
	TokDotMinus
	TokDotCaret
	TokAt

	// matrix operators
	TokPoundPlus
	TokPoundMinus
	TokPoundStar

	// literals
	TokInteger
	TokFloat
	TokFraction
	TokScientific
	TokBigInteger
	TokSymbol
	TokString
	TokBoolean
	TokNaN
	TokInf
	TokNil
	TokNumericConstant

	// keywords
	TokAnd
	TokOr
	TokNot
	TokNand
	TokXor
	TokXnor
	TokNor
	TokIf
	TokElse
	TokFn
	TokLet
	TokVar
	TokReturn
	TokWhile
	TokFor
	TokClass
	TokPrint
	TokSuper
	TokThis
	TokRem
	TokMod
	TokDiv
	TokList

	TokNative
	TokAlgebraString
)

var tokenNames = map[TokenType]string{
	TokEnd: "end", TokIllegal: "error", TokEmpty: "empty",
	TokLeftParen: "(", TokRightParen: ")", TokLeftBrace: "{", TokRightBrace: "}",
	TokLeftBracket: "[", TokRightBracket: "]",
	TokSemicolon: ";", TokColon: ":", TokDot: ".", TokComma: ",",
	TokPlus: "+", TokMinus: "-", TokStar: "*", TokSlash: "/", TokCaret: "^", TokPercent: "%", TokBang: "!",
	TokVBar: "|", TokTilde: "~", TokEqual: "=", TokLess: "<", TokGreater: ">",
	TokLessEqual: "<=", TokGreaterEqual: ">=", TokBangEqual: "!=", TokEqualEqual: "==",
	TokPlusPlus: "++", TokMinusMinus: "--", TokStarStar: "**",
	TokPlusEqual: "+=", TokMinusEqual: "-=", TokStarEqual: "*=", TokSlashEqual: "/=",
	TokAmpersand: "&",
	TokDotAdd: ".+", TokDotStar: ".*", TokDotMinus: ".-", TokDotCaret: ".^", TokAt: "@",
	TokPoundPlus: "#+", TokPoundMinus: "#-", TokPoundStar: "#*",
	TokInteger: "integer", TokFloat: "float", TokFraction: "fraction",
	TokScientific: "scientific", TokBigInteger: "big_integer", TokSymbol: "symbol",
	TokString: "string", TokBoolean: "boolean", TokNaN: "nan", TokInf: "inf", TokNil: "nil",
	TokNumericConstant: "numeric_constant",
	TokAnd: "and", TokOr: "or", TokNot: "not", TokNand: "nand", TokXor: "xor", TokXnor: "xnor",
	TokNor: "nor", TokIf: "if", TokElse: "else", TokFn: "fn", TokLet: "let", TokVar: "var",
	TokReturn: "return", TokWhile: "while", TokFor: "for", TokClass: "class",
	TokPrint: "print", TokSuper: "super", TokThis: "this", TokRem: "rem", TokMod: "mod",
	TokDiv: "div", TokList: "list",
	TokNative: "native", TokAlgebraString: "algebra_string",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexical token with an optional parsed literal.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %q %v", t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
}

// Is reports whether the token has one of the given types.
func (t Token) Is(types ...TokenType) bool {
	for _, tt := range types {
		if t.Type == tt {
			return true
		}
	}
	return false
}

// Exponential is the literal payload of scientific-notation tokens: Mantissa
// times ten to the power of Exp.
type Exponential struct {
	Mantissa float64
	Exp      int
}

func (e Exponential) String() string {
	return fmt.Sprintf("%gE%d", e.Mantissa, e.Exp)
}

// Keywords returns the reserved words, sorted.
func Keywords() []string {
	return slices.Sorted(maps.Keys(keywords))
}

var keywords = map[string]TokenType{
	"and":    TokAnd,
	"or":     TokOr,
	"not":    TokNot,
	"nand":   TokNand,
	"xor":    TokXor,
	"xnor":   TokXnor,
	"nor":    TokNor,
	"if":     TokIf,
	"else":   TokElse,
	"fn":     TokFn,
	"let":    TokLet,
	"var":    TokVar,
	"return": TokReturn,
	"while":  TokWhile,
	"for":    TokFor,
	"class":  TokClass,
	"print":  TokPrint,
	"super":  TokSuper,
	"this":   TokThis,
	"rem":    TokRem,
	"mod":    TokMod,
	"div":    TokDiv,
	"list":   TokList,
	"nan":    TokNaN,
	"inf":    TokInf,
	"nil":    TokNil,
	"true":   TokBoolean,
	"false":  TokBoolean,
}

// numericConstants are identifiers that lex as known real constants.
var numericConstants = map[string]float64{
	"pi":  3.141592653589793,
	"e":   2.718281828459045,
	"phi": 1.618033988749895,
}

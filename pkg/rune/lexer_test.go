package rune

import (
	"math/big"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/ketiboldiais/amicus/pkg/cas"
)

func tokenTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, err := Stream(src)
	assert.NilError(t, err)
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestLexerSlashVersusBar(t *testing.T) {
	assert.DeepEqual(t, tokenTypes(t, "3/4"), []TokenType{TokInteger, TokSlash, TokInteger, TokEnd})

	toks, err := Stream("3|4")
	assert.NilError(t, err)
	assert.Equal(t, len(toks), 2)
	assert.Equal(t, toks[0].Type, TokFraction)
	assert.Equal(t, toks[0].Literal, any(cas.NewFraction(3, 4)))
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		src     string
		typ     TokenType
		literal any
	}{
		{"1_000", TokInteger, 1000.0},
		{"0x1F", TokInteger, 31.0},
		{"0b101", TokInteger, 5.0},
		{"0o17", TokInteger, 15.0},
		{"2.5", TokFloat, 2.5},
		{"1.5E-3", TokScientific, Exponential{Mantissa: 1.5, Exp: -3}},
		{"pi", TokNumericConstant, numericConstants["pi"]},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tok := NewLexer(tt.src).Scan()
			assert.Equal(t, tok.Type, tt.typ)
			assert.Equal(t, tok.Literal, tt.literal)
			assert.Equal(t, tok.Lexeme, tt.src)
		})
	}
}

func TestLexerBigInteger(t *testing.T) {
	tok := NewLexer("#99").Scan()
	assert.Equal(t, tok.Type, TokBigInteger)
	n, ok := tok.Literal.(*big.Int)
	assert.Assert(t, ok)
	assert.Equal(t, n.Int64(), int64(99))
}

func TestLexerSeparatorErrorIsSticky(t *testing.T) {
	l := NewLexer("1_00 + 2")
	tok := l.Scan()
	assert.Equal(t, tok.Type, TokIllegal)
	assert.Assert(t, l.Err() != nil)
	assert.Equal(t, l.Err().Kind, LexicalError)
	assert.Check(t, is.Contains(l.Err().Message, "groups of three"))

	again := l.Scan()
	assert.Equal(t, again.Type, TokIllegal)
}

func TestLexerComments(t *testing.T) {
	l := NewLexer("--- a line comment\n42")
	tok := l.Scan()
	assert.Equal(t, tok.Type, TokInteger)
	assert.Equal(t, tok.Line, 2)

	l = NewLexer("===a\nb===2")
	tok = l.Scan()
	assert.Equal(t, tok.Type, TokInteger)
	assert.Equal(t, tok.Line, 2)

	_, err := Stream("=== never closed")
	assert.ErrorContains(t, err, "unterminated block comment")
}

func TestLexerDropsTrailingComma(t *testing.T) {
	assert.DeepEqual(t, tokenTypes(t, "f(1, 2,)"), []TokenType{
		TokSymbol, TokLeftParen, TokInteger, TokComma, TokInteger, TokRightParen, TokEnd,
	})
	assert.DeepEqual(t, tokenTypes(t, "[1,]"), []TokenType{
		TokLeftBracket, TokInteger, TokRightBracket, TokEnd,
	})
}

func TestLexerWordClasses(t *testing.T) {
	assert.DeepEqual(t, tokenTypes(t, "let sin pi foo"), []TokenType{
		TokLet, TokNative, TokNumericConstant, TokSymbol, TokEnd,
	})

	toks, err := Stream("true false nil")
	assert.NilError(t, err)
	assert.Equal(t, toks[0].Literal, any(true))
	assert.Equal(t, toks[1].Literal, any(false))
	assert.Equal(t, toks[2].Type, TokNil)
}

func TestLexerStrings(t *testing.T) {
	tok := NewLexer(`"a\tb"`).Scan()
	assert.Equal(t, tok.Type, TokString)
	assert.Equal(t, tok.Literal, any("a\tb"))

	tok = NewLexer("'x^2 + 1'").Scan()
	assert.Equal(t, tok.Type, TokAlgebraString)
	expr, ok := tok.Literal.(cas.Expr)
	assert.Assert(t, ok)
	assert.Equal(t, expr.String(), "x^2 + 1")

	_, err := Stream(`"open`)
	assert.ErrorContains(t, err, "unterminated string")
}

func TestLexerOperators(t *testing.T) {
	assert.DeepEqual(t, tokenTypes(t, ".+ .* #* @ ** ++ += <= != &"), []TokenType{
		TokDotAdd, TokDotStar, TokPoundStar, TokAt, TokStarStar, TokPlusPlus,
		TokPlusEqual, TokLessEqual, TokBangEqual, TokAmpersand, TokEnd,
	})
}

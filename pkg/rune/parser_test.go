package rune

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)
	es, ok := prog.Stmts[0].(*ExpressionStmt)
	require.True(t, ok, "expected expression statement, got %T", prog.Stmts[0])
	return es.Expr
}

func TestParseNegationBelowPower(t *testing.T) {
	neg, ok := parseExpr(t, "-x^2").(*Negate)
	require.True(t, ok)
	pow, ok := neg.Operand.(*AlgebraicBinary)
	require.True(t, ok)
	require.Equal(t, TokCaret, pow.Op.Type)
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	top, ok := parseExpr(t, "2^3^2").(*AlgebraicBinary)
	require.True(t, ok)
	require.IsType(t, &IntLit{}, top.Left)
	right, ok := top.Right.(*AlgebraicBinary)
	require.True(t, ok)
	require.Equal(t, TokCaret, right.Op.Type)
}

func TestParseImplicitMultiplication(t *testing.T) {
	g, ok := parseExpr(t, "2x").(*GroupExpr)
	require.True(t, ok)
	prod, ok := g.Inner.(*AlgebraicBinary)
	require.True(t, ok)
	require.Equal(t, TokStar, prod.Op.Type)
	require.IsType(t, &Identifier{}, prod.Right)

	prod, ok = parseExpr(t, "(1 + 2)(3)").(*AlgebraicBinary)
	require.True(t, ok)
	require.Equal(t, "*", prod.Op.Lexeme)
	require.IsType(t, &GroupExpr{}, prod.Left)
	require.IsType(t, &GroupExpr{}, prod.Right)
}

func TestParseCurriedCall(t *testing.T) {
	outer, ok := parseExpr(t, "f(1)(2)").(*CallExpr)
	require.True(t, ok)
	require.Len(t, outer.Args, 1)
	inner, ok := outer.Callee.(*CallExpr)
	require.True(t, ok)
	require.IsType(t, &Identifier{}, inner.Callee)
}

func TestParseCompoundAssignment(t *testing.T) {
	asg, ok := parseExpr(t, "x += 1").(*Assignment)
	require.True(t, ok)
	require.Equal(t, "x", asg.Name.Lexeme)
	sum, ok := asg.Value.(*AlgebraicBinary)
	require.True(t, ok)
	require.Equal(t, TokPlus, sum.Op.Type)

	asg, ok = parseExpr(t, "n++").(*Assignment)
	require.True(t, ok)
	require.Equal(t, "n", asg.Name.Lexeme)
}

func TestParseSetExpr(t *testing.T) {
	set, ok := parseExpr(t, "p.x = 1").(*SetExpr)
	require.True(t, ok)
	require.Equal(t, "x", set.Name.Lexeme)

	_, err := Parse("1 = 2;")
	require.ErrorContains(t, err, "invalid assignment target")
}

func TestParseCollections(t *testing.T) {
	m, ok := parseExpr(t, "[[1, 2], [3, 4]]").(*MatrixExpr)
	require.True(t, ok)
	require.Len(t, m.Rows, 2)
	require.Len(t, m.Rows[1].Elems, 2)

	_, err := Parse("[[1, 2], [3]]")
	require.ErrorContains(t, err, "matrix rows must have the same length")

	tup, ok := parseExpr(t, "(1, 2, 3)").(*TupleExpr)
	require.True(t, ok)
	require.Len(t, tup.Elems, 3)

	empty, ok := parseExpr(t, "()").(*TupleExpr)
	require.True(t, ok)
	require.Empty(t, empty.Elems)
}

func TestParseForLowersToWhile(t *testing.T) {
	prog, err := Parse("for (var i = 0; i < 3; i++) { print i; }")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)

	block, ok := prog.Stmts[0].(*BlockStmt)
	require.True(t, ok)
	require.Len(t, block.Stmts, 2)
	require.IsType(t, &VariableDecl{}, block.Stmts[0])
	loop, ok := block.Stmts[1].(*WhileStmt)
	require.True(t, ok)
	require.IsType(t, &RelationalBinary{}, loop.Cond)
}

func TestParseDeclarations(t *testing.T) {
	prog, err := Parse(`let a = 1;
var b = 2;
fn sq(x) = x^2;
class P < Q { def(x) { this.x = x; } fn get() { return this.x; } }`)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 4)

	a := prog.Stmts[0].(*VariableDecl)
	require.False(t, a.Mutable)
	b := prog.Stmts[1].(*VariableDecl)
	require.True(t, b.Mutable)
	require.Equal(t, 2, b.Pos())

	sq := prog.Stmts[2].(*FunctionDecl)
	require.Len(t, sq.Params, 1)
	require.Len(t, sq.Body, 1)
	require.IsType(t, &ReturnStmt{}, sq.Body[0])

	class := prog.Stmts[3].(*ClassStmt)
	require.Equal(t, "P", class.Name.Lexeme)
	require.NotNil(t, class.Superclass)
	require.Equal(t, "Q", class.Superclass.Name.Lexeme)
	require.Len(t, class.Methods, 2)
	require.Equal(t, "def", class.Methods[0].Name.Lexeme)
}

func TestParseNativeArity(t *testing.T) {
	_, err := Parse("sin(1, 2)")
	require.Error(t, err)
	require.Equal(t, SyntaxError, AsError(err).Kind)
	require.Contains(t, err.Error(), "sin expects 1 argument(s), got 2")

	_, err = Parse("max()")
	require.ErrorContains(t, err, "max expects at least one argument")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src     string
		message string
	}{
		{"1 +", "unexpected end"},
		{"let = 2;", "expected"},
		{"(1 + 2", "expected"},
		{"if x { 1 } else", "unexpected end"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			require.Equal(t, SyntaxError, AsError(err).Kind)
			require.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseFromOffsetsNodeIDs(t *testing.T) {
	prog, err := ParseFrom("let a = 1 + 2; a * 3", 100)
	require.NoError(t, err)
	require.Greater(t, prog.NodeCount, 100)
	for _, s := range prog.Stmts {
		require.GreaterOrEqual(t, int(s.ID()), 100)
	}
}

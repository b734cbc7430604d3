package cas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	x := NewSym("x")
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"x^2", "2 * x"},
		{"x", "1"},
		{"y", "0"},
		{"5", "0"},
		{"3*x^2 + x + 1", "1 + 6 * x"},
		{"x*y", "y"},
		{"sin(x)", "cos(x)"},
		{"cos(x)", "-sin(x)"},
		{"exp(x)", "exp(x)"},
		{"ln(x)", "x^(-1)"},
		{"sin(y)", "0"},
		{"f(x)", "0"},
		{"2^x", "0"},
		{"tan(y)", "deriv(tan(y), x)"},
		{"f(y, z)", "deriv(f(y, z), x)"},
	} {
		t.Run(tc.src, func(t *testing.T) {
			require.Equal(t, tc.want, Derive(MustParse(tc.src), x).String())
		})
	}
}

func TestDeriveProductRule(t *testing.T) {
	got := Derive(MustParse("x^2 * sin(x)"), NewSym("x"))
	want := Simplify(MustParse("2*x*sin(x) + x^2*cos(x)"))
	require.True(t, Equal(want, got), "%s != %s", want, got)
}

func TestGPEDeg(t *testing.T) {
	x := []Expr{NewSym("x")}
	require.Equal(t, "2", GPEDeg(MustParse("3*x^2 + x + 1"), x).String())
	require.Equal(t, "5", GPEDeg(MustParse("x^2 * x^3 + 4"), x).String())
	require.Equal(t, "0", GPEDeg(MustParse("y + 1"), x).String())
	require.Equal(t, KindInf, GPEDeg(MustParse("0"), x).Kind())
	require.Equal(t, KindUndefined, GPEDeg(MustParse("sin(x)"), x).Kind())

	xy := []Expr{NewSym("x"), NewSym("y")}
	require.Equal(t, "3", GPEDeg(MustParse("x^2*y + y"), xy).String())
}

func TestGPEDegUnexpanded(t *testing.T) {
	x := []Expr{NewSym("x")}
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"x^2*(x+1)", "3"},
		{"(x+1)^2", "2"},
		{"(x+1)*(x^3+2)", "4"},
		{"a*(x+1)^3 + x", "3"},
		{"(y+1)^2", "0"},
	} {
		t.Run(tc.src, func(t *testing.T) {
			require.Equal(t, tc.want, GPEDeg(MustParse(tc.src), x).String())
		})
	}
	require.Equal(t, KindUndefined, GPEDeg(MustParse("(sin(x)+1)^2"), x).Kind())
}

func TestCoefficients(t *testing.T) {
	x := NewSym("x")
	u := MustParse("3*x^2 + a*x + 1")
	require.Equal(t, "3", CoefGPE(u, x, 2).String())
	require.Equal(t, "a", CoefGPE(u, x, 1).String())
	require.Equal(t, "1", CoefGPE(u, x, 0).String())
	require.Equal(t, "0", CoefGPE(u, x, 7).String())
	require.Equal(t, "3", LCGPE(u, x).String())
	require.Equal(t, "0", LCGPE(MustParse("0"), x).String())
}

func TestPredicates(t *testing.T) {
	vars := []Expr{NewSym("x")}
	require.True(t, IsMonomial(Simplify(MustParse("3*x^2")), vars))
	require.False(t, IsMonomial(Simplify(MustParse("x + 1")), vars))
	require.True(t, IsPolynomial(Simplify(MustParse("x^2 + x + 1")), vars))
	require.False(t, IsPolynomial(Simplify(MustParse("x^(1/2) + 1")), vars))
}

func TestExpand(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"(x + 1)^2", "1 + 2 * x + x^2"},
		{"(x + 1)*(x - 1)", "-1 + x^2"},
		{"2*(a + b)", "2 * a + 2 * b"},
		{"x", "x"},
	} {
		t.Run(tc.src, func(t *testing.T) {
			require.Equal(t, tc.want, Expand(MustParse(tc.src)).String())
		})
	}
}

func TestCollectTerms(t *testing.T) {
	got := CollectTerms(MustParse("a*x + b*x + c"), []Expr{NewSym("x")})
	s, ok := got.(*Sum)
	require.True(t, ok, "got %s", got)
	require.Len(t, s.Terms, 2)
	require.True(t, FreeOf(got, MustParse("a*x")))
	require.False(t, FreeOf(got, NewSym("x")))
}

func TestNumeratorDenominator(t *testing.T) {
	require.Equal(t, "x", Numerator(MustParse("x/y")).String())
	require.Equal(t, "y", Denominator(MustParse("x/y")).String())
	require.Equal(t, "2", Numerator(MustParse("2/3")).String())
	require.Equal(t, "3", Denominator(MustParse("2/3")).String())
	require.Equal(t, "1", Denominator(MustParse("x + 1")).String())
}

func TestFreeOf(t *testing.T) {
	u := MustParse("a + b*sin(x)")
	require.False(t, FreeOf(u, NewSym("x")))
	require.False(t, FreeOf(u, MustParse("sin(x)")))
	require.True(t, FreeOf(u, NewSym("c")))
	require.True(t, FreeOf(u, MustParse("b*x")))
}

func TestSubexsAndVars(t *testing.T) {
	subs := Subexs(MustParse("x + x*y"))
	require.Len(t, subs, 4)
	require.Equal(t, "x + x * y", subs[0].String())

	vars := Vars(Simplify(MustParse("3*x*(x + 1)*y^2 + z^(1/2)")))
	var names []string
	for _, v := range vars {
		names = append(names, v.String())
	}
	require.ElementsMatch(t, []string{"x", "1 + x", "y", "z^(1/2)"}, names)
}

package cas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simplified(t *testing.T, src string) Expr {
	t.Helper()
	e, err := Parse(src)
	require.NoError(t, err)
	return Simplify(e)
}

func TestSimplify(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"x + x", "2 * x"},
		{"x - x", "0"},
		{"x * x", "x^2"},
		{"2 * x * 3", "6 * x"},
		{"x - y", "x - y"},
		{"1/2 + 1/3", "5/6"},
		{"x^0", "1"},
		{"x^1", "x"},
		{"(x^2)^3", "x^6"},
		{"0 * x", "0"},
		{"1 * x", "x"},
		{"x + 0", "x"},
		{"3! ", "6"},
		{"ln(1)", "0"},
		{"ln(e)", "1"},
		{"sin(0)", "0"},
		{"sin(pi)", "0"},
		{"cos(0)", "1"},
		{"cos(pi)", "-1"},
		{"2x + 3x", "5 * x"},
		{"-x^2", "-x^2"},
	} {
		t.Run(tc.src, func(t *testing.T) {
			require.Equal(t, tc.want, simplified(t, tc.src).String())
		})
	}
}

func TestSimplifySumIsProductOfTwoAndX(t *testing.T) {
	e := simplified(t, "x + x")
	p, ok := e.(*Product)
	require.True(t, ok, "got %T", e)
	require.Len(t, p.Factors, 2)
	require.True(t, Equal(NewInt(2), p.Factors[0]))
	require.True(t, Equal(NewSym("x"), p.Factors[1]))
}

func TestSimplifyUndefined(t *testing.T) {
	for _, src := range []string{"0^0", "0^(-1)", "1/0", "x + 1/0"} {
		t.Run(src, func(t *testing.T) {
			e := simplified(t, src)
			require.Equal(t, KindUndefined, e.Kind(), "got %s", e)
		})
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	for _, src := range []string{
		"x + x",
		"3*x^2 + x + 1",
		"(x + 1)*(x + 1)",
		"x/y",
		"a - b - c",
		"sin(x)^2 + cos(x)^2",
		"2^(1/2) * 2^(1/2)",
		"x! * y",
		"x = y + 1",
	} {
		t.Run(src, func(t *testing.T) {
			once := simplified(t, src)
			require.True(t, IsSimplified(once))
			twice := Simplify(once)
			require.True(t, Equal(once, twice), "%s != %s", once, twice)

			again := Simplify(MustParse(once.String()))
			require.True(t, Equal(once, again), "%s != %s", once, again)
		})
	}
}

func TestSimplifyRNE(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"1/2 + 1/4", "3/4"},
		{"2^3", "8"},
		{"(2/3)^(-2)", "9/4"},
		{"0^2", "0"},
		{"4/2", "2"},
		{"1 - 3", "-2"},
		{"0^0", "undefined"},
		{"0^(-3)", "undefined"},
		{"x + 1", "undefined"},
	} {
		t.Run(tc.src, func(t *testing.T) {
			got := SimplifyRNE(MustParse(tc.src))
			if tc.want == "undefined" {
				require.Equal(t, KindUndefined, got.Kind())
				return
			}
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestOrder(t *testing.T) {
	var exprs []Expr
	for _, src := range []string{
		"1", "1/2", "-3", "x", "y", "x^2", "y^2", "2*x", "x + 1", "x + y",
		"sin(x)", "cos(x)", "x!", "f(x, y)", "x*y", "(x + 1)^2",
	} {
		exprs = append(exprs, simplified(t, src))
	}
	for i, a := range exprs {
		require.False(t, Order(a, a), "%s < %s", a, a)
		for j, b := range exprs {
			if i == j {
				continue
			}
			require.NotEqual(t, Order(a, b), Order(b, a), "%s vs %s", a, b)
		}
	}
	require.True(t, Order(NewInt(1), NewSym("x")))
	require.True(t, Order(NewSym("a"), NewSym("b")))
	require.True(t, Order(simplified(t, "x"), simplified(t, "x^2")))
}

func TestSortex(t *testing.T) {
	e := Sortex(MustParse("z + y + 2 + x"))
	require.Equal(t, "2 + x + y + z", e.String())
}

func TestZeroBaseSymbolicExponent(t *testing.T) {
	got := Simplify(MustParse("0^x"))
	require.Equal(t, KindPower, got.Kind())
	require.Equal(t, "0^x", got.String())
	require.True(t, IsSimplified(got))

	require.Equal(t, KindUndefined, Simplify(MustParse("0^0")).Kind())
	require.Equal(t, "0", Simplify(MustParse("0^2")).String())
}

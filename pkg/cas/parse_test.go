package cas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseShapes(t *testing.T) {
	for _, tc := range []struct {
		src  string
		kind Kind
		str  string
	}{
		{"x + y + z", KindSum, "x + y + z"},
		{"a - b", KindDifference, "a - b"},
		{"2x", KindProduct, "2 * x"},
		{"(x + 1)(x - 1)", KindProduct, "(x + 1) * (x - 1)"},
		{"x / y", KindQuotient, "x / y"},
		{"x^y^z", KindPower, "x^y^z"},
		{"-x", KindDifference, "-x"},
		{"-3", KindInt, "-3"},
		{"n!", KindCall, "n!"},
		{"f(x, y)", KindCall, "f(x, y)"},
		{"x = 1", KindEquation, "x = 1"},
		{"x <= 1", KindRelation, "x <= 1"},
		{"x != 1", KindRelation, "x != 1"},
		{"[1, x]", KindList, "[1, x]"},
		{"2.5", KindReal, "2.5"},
		{"α + β", KindSum, "α + β"},
	} {
		t.Run(tc.src, func(t *testing.T) {
			e, err := Parse(tc.src)
			require.NoError(t, err)
			require.Equal(t, tc.kind, e.Kind())
			require.Equal(t, tc.str, e.String())
		})
	}
}

func TestParseNegationBindsAboveExponent(t *testing.T) {
	e := MustParse("-x^2")
	d, ok := e.(*Difference)
	require.True(t, ok)
	require.Equal(t, KindPower, d.Terms[0].Kind())

	e = MustParse("2^-1")
	p, ok := e.(*Power)
	require.True(t, ok)
	require.True(t, Equal(NewInt(-1), p.Exp))
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"", "x +", "(x", "f(x", "x $$ #", "2 ) 3"} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

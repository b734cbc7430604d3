package cas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFractionInvariant(t *testing.T) {
	cases := []struct {
		n, d     int64
		num, den int64
	}{
		{6, 8, 3, 4},
		{-6, 8, -3, 4},
		{6, -8, -3, 4},
		{-6, -8, 3, 4},
		{0, 5, 0, 1},
		{7, 1, 7, 1},
		{12, 4, 3, 1},
	}
	for _, tc := range cases {
		f := NewFraction(tc.n, tc.d)
		assert.Equal(t, tc.num, f.Num, "%d/%d", tc.n, tc.d)
		assert.Equal(t, tc.den, f.Den, "%d/%d", tc.n, tc.d)
		assert.Equal(t, int64(1), GCD(f.Num, f.Den))
		assert.Positive(t, f.Den)
	}
}

func TestFractionNaN(t *testing.T) {
	f := NewFraction(3, 0)
	require.True(t, f.IsNaN())
	require.Equal(t, "NaN", f.String())
	require.True(t, NewFraction(1, 2).Div(NewFraction(0, 1)).IsNaN())
}

func TestFractionArithmetic(t *testing.T) {
	half := NewFraction(1, 2)
	third := NewFraction(1, 3)

	require.Equal(t, NewFraction(5, 6), half.Add(third))
	require.Equal(t, NewFraction(1, 6), half.Sub(third))
	require.Equal(t, NewFraction(1, 6), half.Mul(third))
	require.Equal(t, NewFraction(3, 2), half.Div(third))
	require.Equal(t, 1, half.Cmp(third))
	require.Equal(t, -1, third.Cmp(half))
	require.Equal(t, 0, half.Cmp(NewFraction(2, 4)))
	require.Equal(t, "1|2", half.String())
	require.Equal(t, "-1|2", half.Neg().String())
}

func TestPowFractionZeroBase(t *testing.T) {
	zero := NewFraction(0, 1)

	v, ok := powFraction(zero, 3)
	require.True(t, ok)
	require.Equal(t, zero, v)

	_, ok = powFraction(zero, 0)
	require.False(t, ok)

	_, ok = powFraction(zero, -2)
	require.False(t, ok)

	v, ok = powFraction(NewFraction(2, 3), -2)
	require.True(t, ok)
	require.Equal(t, NewFraction(9, 4), v)

	v, ok = powFraction(NewFraction(5, 7), 0)
	require.True(t, ok)
	require.Equal(t, NewFraction(1, 1), v)
}

func TestComplexUnsupported(t *testing.T) {
	c := &Complex{Re: 1, Im: 2}

	_, err := c.Neg()
	var algErr *AlgebraError
	require.True(t, errors.As(err, &algErr))

	_, err = c.Abs()
	require.ErrorAs(t, err, &algErr)
	require.Contains(t, err.Error(), "not implemented")
}

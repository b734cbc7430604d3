package cas

import (
	"fmt"
	"math"
)

// Fraction is an exact rational number. Fractions built with NewFraction are
// always in lowest terms with a non-negative denominator; a zero denominator
// marks a not-a-number fraction.
type Fraction struct {
	Num int64
	Den int64
}

// NewFraction returns n/d reduced to lowest terms with the sign carried on
// the numerator.
func NewFraction(n, d int64) Fraction {
	if d == 0 {
		return Fraction{Num: n, Den: 0}
	}
	if d < 0 {
		n, d = -n, -d
	}
	g := GCD(abs64(n), d)
	if g > 1 {
		n, d = n/g, d/g
	}
	return Fraction{Num: n, Den: d}
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int64) int64 {
	a, b = abs64(a), abs64(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// IsNaN reports whether the fraction has a zero denominator.
func (f Fraction) IsNaN() bool { return f.Den == 0 }

// IsInteger reports whether the fraction reduces to a whole number.
func (f Fraction) IsInteger() bool { return f.Den == 1 }

func (f Fraction) Float64() float64 {
	if f.Den == 0 {
		return math.NaN()
	}
	return float64(f.Num) / float64(f.Den)
}

func (f Fraction) Add(g Fraction) Fraction {
	return NewFraction(f.Num*g.Den+g.Num*f.Den, f.Den*g.Den)
}

func (f Fraction) Sub(g Fraction) Fraction {
	return NewFraction(f.Num*g.Den-g.Num*f.Den, f.Den*g.Den)
}

func (f Fraction) Mul(g Fraction) Fraction {
	return NewFraction(f.Num*g.Num, f.Den*g.Den)
}

// Div divides f by g. Division by a zero fraction yields a not-a-number
// fraction.
func (f Fraction) Div(g Fraction) Fraction {
	return NewFraction(f.Num*g.Den, f.Den*g.Num)
}

func (f Fraction) Neg() Fraction { return Fraction{Num: -f.Num, Den: f.Den} }

func (f Fraction) Abs() Fraction { return Fraction{Num: abs64(f.Num), Den: f.Den} }

// Cmp compares f and g, returning -1, 0 or 1.
func (f Fraction) Cmp(g Fraction) int {
	l, r := f.Num*g.Den, g.Num*f.Den
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func (f Fraction) String() string {
	if f.Den == 0 {
		return "NaN"
	}
	if f.Den == 1 {
		return fmt.Sprintf("%d", f.Num)
	}
	return fmt.Sprintf("%d|%d", f.Num, f.Den)
}

// powFraction raises v to the integer power n. A zero base is checked only
// after the non-zero branch so that 0^0 and 0^-n are undefined while 0^n is 0.
func powFraction(v Fraction, n int64) (Fraction, bool) {
	if v.Num != 0 {
		switch {
		case n > 0:
			r := NewFraction(1, 1)
			for i := int64(0); i < n; i++ {
				r = r.Mul(v)
			}
			return r, true
		case n == 0:
			return NewFraction(1, 1), true
		case n == -1:
			return NewFraction(v.Den, v.Num), true
		default:
			return powFraction(NewFraction(v.Den, v.Num), -n)
		}
	}
	if n >= 1 {
		return NewFraction(0, 1), true
	}
	return Fraction{}, false
}

// Pow raises f to the integer power n, reporting false when the result is
// undefined.
func (f Fraction) Pow(n int64) (Fraction, bool) { return powFraction(f, n) }

// Neg negates a complex number. Complex negation is not supported.
func (c *Complex) Neg() (Expr, error) {
	return nil, algebraErrorf("negation of complex number %s is not implemented", c)
}

// Abs returns the modulus of a complex number. Not supported.
func (c *Complex) Abs() (Expr, error) {
	return nil, algebraErrorf("absolute value of complex number %s is not implemented", c)
}

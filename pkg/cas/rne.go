package cas

// SimplifyRNE reduces a rational number expression (integers and fractions
// combined with sums, differences, products, quotients and integer powers)
// to a single Int or Frac. Anything else, division by zero, or a zero base
// raised to a non-positive power yields Undefined.
func SimplifyRNE(u Expr) Expr {
	v, ok := evalRNE(u)
	if !ok {
		return done(NewUndefined("not a rational number expression: " + u.String()))
	}
	return rationalExpr(v)
}

func evalRNE(u Expr) (Fraction, bool) {
	switch u := u.(type) {
	case *Int:
		return NewFraction(u.N, 1), true
	case *Frac:
		if u.IsNaN() {
			return Fraction{}, false
		}
		return NewFraction(u.Num, u.Den), true
	case *Sum:
		acc := NewFraction(0, 1)
		for _, t := range u.Terms {
			v, ok := evalRNE(t)
			if !ok {
				return Fraction{}, false
			}
			acc = acc.Add(v)
		}
		return acc, true
	case *Difference:
		if len(u.Terms) == 0 {
			return Fraction{}, false
		}
		acc, ok := evalRNE(u.Terms[0])
		if !ok {
			return Fraction{}, false
		}
		if len(u.Terms) == 1 {
			return acc.Neg(), true
		}
		for _, t := range u.Terms[1:] {
			v, ok := evalRNE(t)
			if !ok {
				return Fraction{}, false
			}
			acc = acc.Sub(v)
		}
		return acc, true
	case *Product:
		acc := NewFraction(1, 1)
		for _, f := range u.Factors {
			v, ok := evalRNE(f)
			if !ok {
				return Fraction{}, false
			}
			acc = acc.Mul(v)
		}
		return acc, true
	case *Quotient:
		a, ok := evalRNE(u.Dividend)
		if !ok {
			return Fraction{}, false
		}
		b, ok := evalRNE(u.Divisor)
		if !ok || b.Num == 0 {
			return Fraction{}, false
		}
		return a.Div(b), true
	case *Power:
		base, ok := evalRNE(u.Base)
		if !ok {
			return Fraction{}, false
		}
		exp, ok := evalRNE(u.Exp)
		if !ok || !exp.IsInteger() {
			return Fraction{}, false
		}
		return powFraction(base, exp.Num)
	}
	return Fraction{}, false
}

// rationalExpr converts a reduced fraction into its canonical expression.
func rationalExpr(f Fraction) Expr {
	switch {
	case f.IsNaN():
		return done(NewUndefined("division by zero"))
	case f.IsInteger():
		return done(NewInt(f.Num))
	}
	return done(&Frac{Fraction: f})
}

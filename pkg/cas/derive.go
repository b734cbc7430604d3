package cas

// Derive differentiates u with respect to the symbol x and simplifies the
// result. A form with no rule becomes the unevaluated marker deriv(u, x)
// when it is free of x, and 0 otherwise.
func Derive(u Expr, x *Sym) Expr {
	return Simplify(derive(Simplify(u), x))
}

func derive(u Expr, x *Sym) Expr {
	if isUndefined(u) {
		return u
	}
	if Equal(u, x) {
		return NewInt(1)
	}
	switch u := u.(type) {
	case *Int, *Frac, *Real, *Inf, *Complex, *Bool:
		return NewInt(0)
	case *Sym:
		return NewInt(0)
	case *Sum:
		terms := make([]Expr, len(u.Terms))
		for i, t := range u.Terms {
			terms[i] = derive(t, x)
		}
		return &Sum{Terms: terms}
	case *Difference:
		terms := make([]Expr, len(u.Terms))
		for i, t := range u.Terms {
			terms[i] = derive(t, x)
		}
		return &Difference{Terms: terms}
	case *Product:
		return deriveProduct(u.Factors, x)
	case *Quotient:
		// (f'g - fg') / g^2
		f, g := u.Dividend, u.Divisor
		return &Quotient{
			Dividend: &Difference{Terms: []Expr{
				&Product{Factors: []Expr{derive(f, x), g}},
				&Product{Factors: []Expr{f, derive(g, x)}},
			}},
			Divisor: &Power{Base: g, Exp: NewInt(2)},
		}
	case *Power:
		if FreeOf(u.Exp, x) {
			return &Product{Factors: []Expr{
				u.Exp,
				&Power{Base: u.Base, Exp: &Difference{Terms: []Expr{u.Exp, NewInt(1)}}},
				derive(u.Base, x),
			}}
		}
	case *Call:
		if len(u.Args) == 1 {
			if d := deriveCall(u.Name, u.Args[0], x); d != nil {
				return d
			}
		}
	case *List:
		elems := make([]Expr, len(u.Elems))
		for i, e := range u.Elems {
			elems[i] = derive(e, x)
		}
		return &List{Elems: elems}
	}
	if FreeOf(u, x) {
		return NewCall("deriv", u, x)
	}
	return NewInt(0)
}

// deriveProduct applies the two-operand product rule, nesting the remaining
// factors as the second operand.
func deriveProduct(factors []Expr, x *Sym) Expr {
	if len(factors) == 1 {
		return derive(factors[0], x)
	}
	f := factors[0]
	var g Expr = &Product{Factors: factors[1:]}
	if len(factors) == 2 {
		g = factors[1]
	}
	return &Sum{Terms: []Expr{
		&Product{Factors: []Expr{derive(f, x), g}},
		&Product{Factors: []Expr{f, deriveProduct(factors[1:], x)}},
	}}
}

// deriveCall returns the chain rule expansion for known functions of one
// argument, or nil.
func deriveCall(name string, v Expr, x *Sym) Expr {
	dv := derive(v, x)
	switch name {
	case "sin":
		return &Product{Factors: []Expr{NewCall("cos", v), dv}}
	case "cos":
		return &Product{Factors: []Expr{NewInt(-1), NewCall("sin", v), dv}}
	case "ln":
		return &Product{Factors: []Expr{dv, &Power{Base: v, Exp: NewInt(-1)}}}
	case "exp":
		return &Product{Factors: []Expr{NewCall("exp", v), dv}}
	}
	return nil
}

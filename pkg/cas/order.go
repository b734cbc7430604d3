package cas

import (
	"slices"
	"strings"
)

// Order reports whether u precedes v in the canonical order used to sort the
// operands of sums and products. It is a total order over simplified
// expressions; it does not compare mathematical values except for numbers.
func Order(u, v Expr) bool {
	if !ordered(u) || !ordered(v) {
		return fallbackOrder(u, v)
	}
	switch {
	case isNumber(u) && isNumber(v):
		return numberValue(u) < numberValue(v)

	case u.Kind() == KindSym && v.Kind() == KindSym:
		return u.(*Sym).Name < v.(*Sym).Name

	case u.Kind() == KindSum && v.Kind() == KindSum,
		u.Kind() == KindProduct && v.Kind() == KindProduct:
		return orderReversed(u.Operands(), v.Operands())

	case u.Kind() == KindPower && v.Kind() == KindPower:
		up, vp := u.(*Power), v.(*Power)
		if !Equal(up.Base, vp.Base) {
			return Order(up.Base, vp.Base)
		}
		return Order(up.Exp, vp.Exp)

	case isFactorial(u) && isFactorial(v):
		return Order(u.(*Call).Args[0], v.(*Call).Args[0])

	case u.Kind() == KindCall && v.Kind() == KindCall && !isFactorial(u) && !isFactorial(v):
		uc, vc := u.(*Call), v.(*Call)
		if uc.Name != vc.Name {
			return uc.Name < vc.Name
		}
		return orderForward(uc.Args, vc.Args)

	case isNumber(u):
		return true

	case u.Kind() == KindProduct:
		switch v.Kind() {
		case KindPower, KindSum, KindCall, KindSym:
			return Order(u, &Product{Factors: []Expr{v}})
		}

	case u.Kind() == KindPower:
		switch v.Kind() {
		case KindSum, KindCall, KindSym:
			return Order(u, &Power{Base: v, Exp: NewInt(1)})
		}

	case u.Kind() == KindSum:
		switch v.Kind() {
		case KindCall, KindSym:
			return Order(u, &Sum{Terms: []Expr{v}})
		}

	case isFactorial(u):
		switch {
		case v.Kind() == KindSym, v.Kind() == KindCall && !isFactorial(v):
			if Equal(u.(*Call).Args[0], v) {
				return false
			}
			return Order(u, NewCall("!", v))
		}

	case u.Kind() == KindCall:
		if s, ok := v.(*Sym); ok {
			name := u.(*Call).Name
			if name == s.Name {
				return false
			}
			return name < s.Name
		}
	}
	return !Order(v, u)
}

// ordered reports whether e belongs to the family of kinds the canonical
// order rules cover.
func ordered(e Expr) bool {
	switch e.Kind() {
	case KindInt, KindFrac, KindReal, KindSym, KindSum, KindProduct, KindPower, KindCall:
		return true
	}
	return false
}

// fallbackOrder ranks kinds outside the canonical family after constants and
// breaks ties by printed form.
func fallbackOrder(u, v Expr) bool {
	if u.Kind() != v.Kind() {
		return u.Kind() < v.Kind()
	}
	return strings.Compare(u.String(), v.String()) < 0
}

// orderReversed compares operand lists from the last operand backwards.
func orderReversed(us, vs []Expr) bool {
	m, n := len(us), len(vs)
	for k := 0; k < min(m, n); k++ {
		a, b := us[m-1-k], vs[n-1-k]
		if !Equal(a, b) {
			return Order(a, b)
		}
	}
	return m < n
}

func orderForward(us, vs []Expr) bool {
	for k := 0; k < min(len(us), len(vs)); k++ {
		if !Equal(us[k], vs[k]) {
			return Order(us[k], vs[k])
		}
	}
	return len(us) < len(vs)
}

func compareExprs(a, b Expr) int {
	switch {
	case Equal(a, b):
		return 0
	case Order(a, b):
		return -1
	}
	return 1
}

// Sortex returns a copy of u with the operands of every sum and product
// sorted in canonical order.
func Sortex(u Expr) Expr {
	switch u := u.(type) {
	case *Sum:
		terms := sortAll(u.Terms)
		slices.SortStableFunc(terms, compareExprs)
		return &Sum{flags: u.flags, Terms: terms}
	case *Product:
		factors := sortAll(u.Factors)
		slices.SortStableFunc(factors, compareExprs)
		return &Product{flags: u.flags, Factors: factors}
	case *Difference:
		return &Difference{flags: u.flags, Terms: sortAll(u.Terms)}
	case *Quotient:
		return &Quotient{flags: u.flags, Dividend: Sortex(u.Dividend), Divisor: Sortex(u.Divisor)}
	case *Power:
		return &Power{flags: u.flags, Base: Sortex(u.Base), Exp: Sortex(u.Exp)}
	case *Call:
		return &Call{flags: u.flags, Name: u.Name, Args: sortAll(u.Args)}
	case *List:
		return &List{flags: u.flags, Elems: sortAll(u.Elems)}
	case *Relation:
		return &Relation{flags: u.flags, Op: u.Op, Left: Sortex(u.Left), Right: Sortex(u.Right)}
	case *Equation:
		return &Equation{flags: u.flags, Left: Sortex(u.Left), Right: Sortex(u.Right)}
	}
	return u.Copy()
}

func sortAll(es []Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = Sortex(e)
	}
	return out
}

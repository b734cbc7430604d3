package cas

import "math"

// Simplify returns the automatically simplified form of u. Children are
// simplified before their parent, and an expression already marked
// simplified is returned unchanged.
func Simplify(u Expr) Expr {
	if u == nil {
		return nil
	}
	if u.simplified() {
		return u
	}
	switch u := u.(type) {
	case *Int, *Real, *Sym, *Bool, *Inf, *Complex, *Undefined:
		return done(u.Copy())
	case *Frac:
		return rationalExpr(NewFraction(u.Num, u.Den))
	case *List:
		elems, bad := simplifyAll(u.Elems)
		if bad != nil {
			return bad
		}
		return done(&List{Elems: elems})
	case *Sum:
		terms, bad := simplifyAll(u.Terms)
		if bad != nil {
			return bad
		}
		return SimplifySum(terms...)
	case *Difference:
		terms, bad := simplifyAll(u.Terms)
		if bad != nil {
			return bad
		}
		return SimplifyDifference(terms...)
	case *Product:
		factors, bad := simplifyAll(u.Factors)
		if bad != nil {
			return bad
		}
		return SimplifyProduct(factors...)
	case *Quotient:
		ops, bad := simplifyAll([]Expr{u.Dividend, u.Divisor})
		if bad != nil {
			return bad
		}
		return SimplifyQuotient(ops[0], ops[1])
	case *Power:
		ops, bad := simplifyAll([]Expr{u.Base, u.Exp})
		if bad != nil {
			return bad
		}
		return SimplifyPower(ops[0], ops[1])
	case *Call:
		args, bad := simplifyAll(u.Args)
		if bad != nil {
			return bad
		}
		return SimplifyFunction(u.Name, args...)
	case *Relation:
		ops, bad := simplifyAll([]Expr{u.Left, u.Right})
		if bad != nil {
			return bad
		}
		return done(&Relation{Op: u.Op, Left: ops[0], Right: ops[1]})
	case *Equation:
		ops, bad := simplifyAll([]Expr{u.Left, u.Right})
		if bad != nil {
			return bad
		}
		return done(&Equation{Left: ops[0], Right: ops[1]})
	}
	return u
}

// simplifyAll simplifies each operand, returning the first Undefined result
// if any operand simplifies to Undefined.
func simplifyAll(es []Expr) ([]Expr, Expr) {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = Simplify(e)
		if isUndefined(out[i]) {
			return nil, out[i]
		}
	}
	return out, nil
}

func firstUndefined(es []Expr) Expr {
	for _, e := range es {
		if isUndefined(e) {
			return e
		}
	}
	return nil
}

// SimplifyPower simplifies v^w for already simplified v and w.
func SimplifyPower(v, w Expr) Expr {
	if bad := firstUndefined([]Expr{v, w}); bad != nil {
		return bad
	}
	if isZero(v) && isNumber(w) {
		if isPositiveConstant(w) {
			return done(NewInt(0))
		}
		return done(NewUndefined("zero raised to a non-positive power"))
	}
	if isIntValue(v, 1) {
		return done(NewInt(1))
	}
	if isNumber(v) && isNumber(w) && (v.Kind() == KindReal || w.Kind() == KindReal) {
		return done(NewReal(math.Pow(numberValue(v), numberValue(w))))
	}
	if n, ok := w.(*Int); ok {
		return simplifyIntegerPower(v, n.N)
	}
	return done(&Power{Base: v, Exp: w})
}

func isPositiveConstant(e Expr) bool {
	return isNumber(e) && numberValue(e) > 0
}

func simplifyIntegerPower(v Expr, n int64) Expr {
	if isRational(v) {
		return SimplifyRNE(&Power{Base: v, Exp: NewInt(n)})
	}
	switch n {
	case 0:
		return done(NewInt(1))
	case 1:
		return v
	}
	switch v := v.(type) {
	case *Power:
		p := SimplifyProduct(v.Exp, NewInt(n))
		if i, ok := p.(*Int); ok {
			return simplifyIntegerPower(v.Base, i.N)
		}
		return done(&Power{Base: v.Base, Exp: p})
	case *Product:
		factors := make([]Expr, len(v.Factors))
		for i, f := range v.Factors {
			factors[i] = simplifyIntegerPower(f, n)
		}
		return SimplifyProduct(factors...)
	}
	return done(&Power{Base: v, Exp: NewInt(n)})
}

// SimplifyProduct simplifies the product of already simplified factors.
func SimplifyProduct(factors ...Expr) Expr {
	if bad := firstUndefined(factors); bad != nil {
		return bad
	}
	for _, f := range factors {
		if isZero(f) {
			return done(NewInt(0))
		}
	}
	switch len(factors) {
	case 0:
		return done(NewInt(1))
	case 1:
		return factors[0]
	}
	v := simplifyProductRec(factors)
	switch len(v) {
	case 0:
		return done(NewInt(1))
	case 1:
		return v[0]
	}
	return done(&Product{Factors: v})
}

func simplifyProductRec(l []Expr) []Expr {
	if len(l) == 2 {
		u1, u2 := l[0], l[1]
		p1, isP1 := u1.(*Product)
		p2, isP2 := u2.(*Product)
		switch {
		case isP1 && isP2:
			return mergeProducts(p1.Factors, p2.Factors)
		case isP1:
			return mergeProducts(p1.Factors, []Expr{u2})
		case isP2:
			return mergeProducts([]Expr{u1}, p2.Factors)
		}

		if isNumber(u1) && isNumber(u2) {
			p := multiplyConstants(u1, u2)
			if isOne(p) {
				return nil
			}
			return []Expr{p}
		}
		if isOne(u1) {
			return []Expr{u2}
		}
		if isOne(u2) {
			return []Expr{u1}
		}
		if b1, b2 := baseOf(u1), baseOf(u2); b1 != nil && b2 != nil && Equal(b1, b2) {
			s := SimplifySum(exponentOf(u1), exponentOf(u2))
			p := SimplifyPower(b1, s)
			if isOne(p) {
				return nil
			}
			return []Expr{p}
		}
		if Order(u2, u1) {
			return []Expr{u2, u1}
		}
		return []Expr{u1, u2}
	}

	w := simplifyProductRec(l[1:])
	if p, ok := l[0].(*Product); ok {
		return mergeProducts(p.Factors, w)
	}
	return mergeProducts([]Expr{l[0]}, w)
}

func mergeProducts(p, q []Expr) []Expr {
	if len(q) == 0 {
		return p
	}
	if len(p) == 0 {
		return q
	}
	p1, q1 := p[0], q[0]
	h := simplifyProductRec([]Expr{p1, q1})
	switch {
	case len(h) == 0:
		return mergeProducts(p[1:], q[1:])
	case len(h) == 1:
		return adjoin(h[0], mergeProducts(p[1:], q[1:]))
	case Equal(h[0], p1) && Equal(h[1], q1):
		return adjoin(p1, mergeProducts(p[1:], q))
	}
	return adjoin(q1, mergeProducts(p, q[1:]))
}

func multiplyConstants(a, b Expr) Expr {
	if a.Kind() == KindReal || b.Kind() == KindReal {
		return done(NewReal(numberValue(a) * numberValue(b)))
	}
	return SimplifyRNE(&Product{Factors: []Expr{a, b}})
}

func addConstants(a, b Expr) Expr {
	if a.Kind() == KindReal || b.Kind() == KindReal {
		return done(NewReal(numberValue(a) + numberValue(b)))
	}
	return SimplifyRNE(&Sum{Terms: []Expr{a, b}})
}

// SimplifySum simplifies the sum of already simplified terms.
func SimplifySum(terms ...Expr) Expr {
	if bad := firstUndefined(terms); bad != nil {
		return bad
	}
	switch len(terms) {
	case 0:
		return done(NewInt(0))
	case 1:
		return terms[0]
	}
	v := simplifySumRec(terms)
	switch len(v) {
	case 0:
		return done(NewInt(0))
	case 1:
		return v[0]
	}
	return done(&Sum{Terms: v})
}

func simplifySumRec(l []Expr) []Expr {
	if len(l) == 2 {
		u1, u2 := l[0], l[1]
		s1, isS1 := u1.(*Sum)
		s2, isS2 := u2.(*Sum)
		switch {
		case isS1 && isS2:
			return mergeSums(s1.Terms, s2.Terms)
		case isS1:
			return mergeSums(s1.Terms, []Expr{u2})
		case isS2:
			return mergeSums([]Expr{u1}, s2.Terms)
		}

		if isNumber(u1) && isNumber(u2) {
			s := addConstants(u1, u2)
			if isZero(s) {
				return nil
			}
			return []Expr{s}
		}
		if isZero(u1) {
			return []Expr{u2}
		}
		if isZero(u2) {
			return []Expr{u1}
		}
		if t1, t2 := termOf(u1), termOf(u2); t1 != nil && t2 != nil && Equal(t1, t2) {
			s := SimplifySum(constOf(u1), constOf(u2))
			p := SimplifyProduct(s, t1)
			if isZero(p) {
				return nil
			}
			return []Expr{p}
		}
		if Order(u2, u1) {
			return []Expr{u2, u1}
		}
		return []Expr{u1, u2}
	}

	w := simplifySumRec(l[1:])
	if s, ok := l[0].(*Sum); ok {
		return mergeSums(s.Terms, w)
	}
	return mergeSums([]Expr{l[0]}, w)
}

func mergeSums(p, q []Expr) []Expr {
	if len(q) == 0 {
		return p
	}
	if len(p) == 0 {
		return q
	}
	p1, q1 := p[0], q[0]
	h := simplifySumRec([]Expr{p1, q1})
	switch {
	case len(h) == 0:
		return mergeSums(p[1:], q[1:])
	case len(h) == 1:
		return adjoin(h[0], mergeSums(p[1:], q[1:]))
	case Equal(h[0], p1) && Equal(h[1], q1):
		return adjoin(p1, mergeSums(p[1:], q))
	}
	return adjoin(q1, mergeSums(p, q[1:]))
}

func adjoin(e Expr, rest []Expr) []Expr {
	out := make([]Expr, 0, len(rest)+1)
	out = append(out, e)
	return append(out, rest...)
}

// baseOf returns the base of u viewed as a power; constants have none.
func baseOf(u Expr) Expr {
	switch u := u.(type) {
	case *Power:
		return u.Base
	case *Sym, *Product, *Sum, *Call:
		return u
	}
	return nil
}

// exponentOf returns the exponent of u viewed as a power.
func exponentOf(u Expr) Expr {
	switch u := u.(type) {
	case *Power:
		return u.Exp
	case *Sym, *Product, *Sum, *Call:
		return done(NewInt(1))
	}
	return nil
}

// termOf returns the non-constant part of u as a product; constants have
// none.
func termOf(u Expr) Expr {
	switch u := u.(type) {
	case *Product:
		if isNumber(u.Factors[0]) {
			return &Product{Factors: u.Factors[1:]}
		}
		return u
	case *Sym, *Sum, *Power, *Call:
		return &Product{Factors: []Expr{u}}
	}
	return nil
}

// constOf returns the leading numeric coefficient of u.
func constOf(u Expr) Expr {
	switch u := u.(type) {
	case *Product:
		if isNumber(u.Factors[0]) {
			return u.Factors[0]
		}
		return done(NewInt(1))
	case *Sym, *Sum, *Power, *Call:
		return done(NewInt(1))
	}
	return nil
}

// SimplifyQuotient rewrites u/v as u * v^-1.
func SimplifyQuotient(u, v Expr) Expr {
	return SimplifyProduct(u, SimplifyPower(v, NewInt(-1)))
}

// SimplifyDifference rewrites -u as -1 * u and u - v - ... as a sum of
// negations.
func SimplifyDifference(terms ...Expr) Expr {
	if bad := firstUndefined(terms); bad != nil {
		return bad
	}
	switch len(terms) {
	case 0:
		return done(NewInt(0))
	case 1:
		return SimplifyProduct(NewInt(-1), terms[0])
	}
	sum := make([]Expr, len(terms))
	sum[0] = terms[0]
	for i, t := range terms[1:] {
		sum[i+1] = SimplifyProduct(NewInt(-1), t)
	}
	return SimplifySum(sum...)
}

// maxFactorial is the largest argument whose factorial fits in an int64.
const maxFactorial = 20

// SimplifyFunction reduces calls with known closed forms at special inputs
// and otherwise returns the call unevaluated.
func SimplifyFunction(name string, args ...Expr) Expr {
	if bad := firstUndefined(args); bad != nil {
		return bad
	}
	call := func() Expr { return done(&Call{Name: name, Args: args}) }
	if len(args) != 1 {
		return call()
	}
	x := args[0]
	switch name {
	case "!":
		if n, ok := x.(*Int); ok && n.N >= 0 && n.N <= maxFactorial {
			r := int64(1)
			for i := int64(2); i <= n.N; i++ {
				r *= i
			}
			return done(NewInt(r))
		}
	case "ln":
		switch {
		case isIntValue(x, 1):
			return done(NewInt(0))
		case isSymNamed(x, "e"):
			return done(NewInt(1))
		}
	case "sin":
		if isZero(x) || isPi(x) {
			return done(NewInt(0))
		}
	case "cos":
		switch {
		case isZero(x):
			return done(NewInt(1))
		case isPi(x):
			return done(NewInt(-1))
		}
	case "exp":
		if isZero(x) {
			return done(NewInt(1))
		}
	}
	return call()
}

func isSymNamed(e Expr, name string) bool {
	s, ok := e.(*Sym)
	return ok && s.Name == name
}

func isPi(e Expr) bool {
	return isSymNamed(e, "pi") || isSymNamed(e, "π")
}

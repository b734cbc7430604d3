package cas

// FreeOf reports whether none of ts occurs anywhere in u. Operands are
// checked before the node itself.
func FreeOf(u Expr, ts ...Expr) bool {
	for _, op := range u.Operands() {
		if !FreeOf(op, ts...) {
			return false
		}
	}
	for _, t := range ts {
		if Equal(u, t) {
			return false
		}
	}
	return true
}

// Subexs returns the distinct complete subexpressions of u, u first.
func Subexs(u Expr) []Expr {
	var out []Expr
	var walk func(Expr)
	walk = func(e Expr) {
		out = addUnique(out, e)
		for _, op := range e.Operands() {
			walk(op)
		}
	}
	walk(u)
	return out
}

// Vars returns the generalized variables of u: symbols, non-integer powers,
// function calls and sums appearing as factors.
func Vars(u Expr) []Expr {
	switch u := u.(type) {
	case *Int, *Frac, *Real:
		return nil
	case *Power:
		if n, ok := u.Exp.(*Int); ok && n.N > 1 {
			return []Expr{u.Base}
		}
		return []Expr{u}
	case *Sum:
		var out []Expr
		for _, t := range u.Terms {
			out = addUnique(out, Vars(t)...)
		}
		return out
	case *Product:
		var out []Expr
		for _, f := range u.Factors {
			if _, isSum := f.(*Sum); isSum {
				out = addUnique(out, f)
				continue
			}
			out = addUnique(out, Vars(f)...)
		}
		return out
	}
	return []Expr{u}
}

func addUnique(set []Expr, es ...Expr) []Expr {
outer:
	for _, e := range es {
		for _, s := range set {
			if Equal(s, e) {
				continue outer
			}
		}
		set = append(set, e)
	}
	return set
}

func containsExpr(set []Expr, e Expr) bool {
	for _, s := range set {
		if Equal(s, e) {
			return true
		}
	}
	return false
}

// IsMonomial reports whether u is a monomial in the generalized variables
// vars.
func IsMonomial(u Expr, vars []Expr) bool {
	if containsExpr(vars, u) {
		return true
	}
	switch u := u.(type) {
	case *Power:
		if n, ok := u.Exp.(*Int); ok && n.N > 1 && containsExpr(vars, u.Base) {
			return true
		}
	case *Product:
		for _, f := range u.Factors {
			if !IsMonomial(f, vars) {
				return false
			}
		}
		return true
	}
	return FreeOf(u, vars...)
}

// IsPolynomial reports whether u is a polynomial in vars.
func IsPolynomial(u Expr, vars []Expr) bool {
	if s, ok := u.(*Sum); ok && !containsExpr(vars, u) {
		for _, t := range s.Terms {
			if !IsMonomial(t, vars) {
				return false
			}
		}
		return true
	}
	return IsMonomial(u, vars)
}

// GPEDeg returns the degree of u as a polynomial in vars: an Int, negative
// infinity for the zero polynomial, or Undefined when u is not a polynomial
// in vars. Sums take the largest term degree and products add their factor
// degrees, at any depth, so unexpanded forms like x^2*(x+1) are accepted.
func GPEDeg(u Expr, vars []Expr) Expr {
	u = Simplify(u)
	if isZero(u) {
		return &Inf{Neg: true}
	}
	d, ok := polyDegree(u, vars)
	if !ok {
		return notPolynomial(u)
	}
	return NewInt(d)
}

func notPolynomial(u Expr) Expr {
	return NewUndefined(u.String() + " is not a polynomial")
}

func polyDegree(u Expr, vars []Expr) (int64, bool) {
	if containsExpr(vars, u) {
		return 1, true
	}
	switch u := u.(type) {
	case *Sum:
		deg := int64(0)
		for _, t := range u.Terms {
			d, ok := polyDegree(t, vars)
			if !ok {
				return 0, false
			}
			deg = max(deg, d)
		}
		return deg, true
	case *Product:
		deg := int64(0)
		for _, f := range u.Factors {
			d, ok := polyDegree(f, vars)
			if !ok {
				return 0, false
			}
			deg += d
		}
		return deg, true
	case *Power:
		if n, ok := u.Exp.(*Int); ok && n.N >= 1 {
			d, ok := polyDegree(u.Base, vars)
			if !ok {
				return 0, false
			}
			return d * n.N, true
		}
	}
	if FreeOf(u, vars...) {
		return 0, true
	}
	return 0, false
}

// coefficientMonomial splits a monomial in x into its coefficient and degree.
func coefficientMonomial(u Expr, x Expr) (Expr, int64, bool) {
	if Equal(u, x) {
		return NewInt(1), 1, true
	}
	switch u := u.(type) {
	case *Power:
		if n, ok := u.Exp.(*Int); ok && n.N > 1 && Equal(u.Base, x) {
			return NewInt(1), n.N, true
		}
	case *Product:
		var m int64
		var c Expr = u
		for _, f := range u.Factors {
			_, d, ok := coefficientMonomial(f, x)
			if !ok {
				return nil, 0, false
			}
			if d != 0 {
				m = d
				c = SimplifyQuotient(u, SimplifyPower(x, NewInt(m)))
			}
		}
		return c, m, true
	}
	if FreeOf(u, x) {
		return u, 0, true
	}
	return nil, 0, false
}

// CoefGPE returns the coefficient of x^j in u.
func CoefGPE(u Expr, x Expr, j int64) Expr {
	u = Simplify(u)
	x = Simplify(x)
	s, ok := u.(*Sum)
	if !ok || Equal(u, x) {
		c, d, ok := coefficientMonomial(u, x)
		if !ok {
			return notPolynomial(u)
		}
		if d == j {
			return c
		}
		return done(NewInt(0))
	}
	var cs []Expr
	for _, t := range s.Terms {
		c, d, ok := coefficientMonomial(t, x)
		if !ok {
			return notPolynomial(u)
		}
		if d == j {
			cs = append(cs, c)
		}
	}
	return SimplifySum(cs...)
}

// LCGPE returns the leading coefficient of u in x.
func LCGPE(u Expr, x Expr) Expr {
	deg := GPEDeg(u, []Expr{Simplify(x)})
	switch d := deg.(type) {
	case *Int:
		return CoefGPE(u, x, d.N)
	case *Inf:
		return done(NewInt(0))
	}
	return deg
}

// Expand distributes products over sums and expands positive integer powers
// of sums by repeated multiplication.
func Expand(u Expr) Expr {
	return expand(Simplify(u))
}

func expand(u Expr) Expr {
	switch u := u.(type) {
	case *Sum:
		terms := make([]Expr, len(u.Terms))
		for i, t := range u.Terms {
			terms[i] = expand(t)
		}
		return SimplifySum(terms...)
	case *Product:
		acc := expand(u.Factors[0])
		for _, f := range u.Factors[1:] {
			acc = expandProduct(acc, expand(f))
		}
		return acc
	case *Power:
		if n, ok := u.Exp.(*Int); ok && n.N >= 2 {
			return expandPower(expand(u.Base), n.N)
		}
		return SimplifyPower(expand(u.Base), u.Exp)
	case *Call:
		args := make([]Expr, len(u.Args))
		for i, a := range u.Args {
			args[i] = expand(a)
		}
		return SimplifyFunction(u.Name, args...)
	}
	return u
}

func expandProduct(r, s Expr) Expr {
	if sum, ok := r.(*Sum); ok {
		terms := make([]Expr, len(sum.Terms))
		for i, t := range sum.Terms {
			terms[i] = expandProduct(t, s)
		}
		return SimplifySum(terms...)
	}
	if _, ok := s.(*Sum); ok {
		return expandProduct(s, r)
	}
	return SimplifyProduct(r, s)
}

func expandPower(u Expr, n int64) Expr {
	if _, ok := u.(*Sum); !ok {
		return SimplifyPower(u, NewInt(n))
	}
	acc := u
	for i := int64(1); i < n; i++ {
		acc = expandProduct(acc, u)
	}
	return acc
}

// CollectTerms groups the terms of a sum by their part that depends on vars.
func CollectTerms(u Expr, vars []Expr) Expr {
	u = Simplify(u)
	s, ok := u.(*Sum)
	if !ok {
		if IsMonomial(u, vars) {
			return u
		}
		return notPolynomial(u)
	}
	if containsExpr(vars, u) {
		return u
	}
	type group struct {
		coefs []Expr
		part  Expr
	}
	var groups []*group
	for _, t := range s.Terms {
		c, part, ok := splitMonomial(t, vars)
		if !ok {
			return notPolynomial(u)
		}
		found := false
		for _, g := range groups {
			if Equal(g.part, part) {
				g.coefs = append(g.coefs, c)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, &group{coefs: []Expr{c}, part: part})
		}
	}
	var terms []Expr
	for _, g := range groups {
		coef := SimplifySum(g.coefs...)
		if isZero(coef) {
			continue
		}
		terms = append(terms, SimplifyProduct(coef, g.part))
	}
	switch len(terms) {
	case 0:
		return done(NewInt(0))
	case 1:
		return terms[0]
	}
	return done(&Sum{Terms: terms})
}

// splitMonomial separates a monomial into the factors free of vars and the
// rest.
func splitMonomial(u Expr, vars []Expr) (Expr, Expr, bool) {
	if !IsMonomial(u, vars) {
		return nil, nil, false
	}
	p, ok := u.(*Product)
	if !ok {
		if FreeOf(u, vars...) {
			return u, done(NewInt(1)), true
		}
		return done(NewInt(1)), u, true
	}
	var coef, part []Expr
	for _, f := range p.Factors {
		if FreeOf(f, vars...) {
			coef = append(coef, f)
		} else {
			part = append(part, f)
		}
	}
	return SimplifyProduct(coef...), SimplifyProduct(part...), true
}

// Numerator returns the numerator of u viewed as a rational expression.
func Numerator(u Expr) Expr {
	return numerator(Simplify(u))
}

func numerator(u Expr) Expr {
	switch u := u.(type) {
	case *Frac:
		return done(NewInt(u.Num))
	case *Power:
		if isNegativeConstant(u.Exp) {
			return done(NewInt(1))
		}
	case *Product:
		factors := make([]Expr, len(u.Factors))
		for i, f := range u.Factors {
			factors[i] = numerator(f)
		}
		return SimplifyProduct(factors...)
	}
	return u
}

// Denominator returns the denominator of u viewed as a rational expression.
func Denominator(u Expr) Expr {
	return denominator(Simplify(u))
}

func denominator(u Expr) Expr {
	switch u := u.(type) {
	case *Frac:
		return done(NewInt(u.Den))
	case *Power:
		if isNegativeConstant(u.Exp) {
			return SimplifyPower(u, NewInt(-1))
		}
	case *Product:
		factors := make([]Expr, len(u.Factors))
		for i, f := range u.Factors {
			factors[i] = denominator(f)
		}
		return SimplifyProduct(factors...)
	}
	return done(NewInt(1))
}

func isNegativeConstant(e Expr) bool {
	return isNumber(e) && numberValue(e) < 0
}

package cas

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags each expression variant.
type Kind int

const (
	KindInt Kind = iota
	KindReal
	KindFrac
	KindComplex
	KindInf
	KindSym
	KindBool
	KindList
	KindSum
	KindDifference
	KindProduct
	KindQuotient
	KindPower
	KindCall
	KindRelation
	KindEquation
	KindUndefined
)

var kindNames = [...]string{
	KindInt:        "int",
	KindReal:       "real",
	KindFrac:       "fraction",
	KindComplex:    "complex",
	KindInf:        "infinity",
	KindSym:        "symbol",
	KindBool:       "boolean",
	KindList:       "list",
	KindSum:        "sum",
	KindDifference: "difference",
	KindProduct:    "product",
	KindQuotient:   "quotient",
	KindPower:      "power",
	KindCall:       "call",
	KindRelation:   "relation",
	KindEquation:   "equation",
	KindUndefined:  "undefined",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Printing precedence, lowest first.
const (
	PrecLowest = iota
	PrecRelation
	PrecSum
	PrecProduct
	PrecUnary
	PrecPower
	PrecPostfix
	PrecAtom
)

// Expr is a symbolic expression. The set of implementations is closed; every
// algorithm in this package switches over the concrete types below.
type Expr interface {
	Kind() Kind
	// Operands returns the ordered child expressions.
	Operands() []Expr
	// Precedence is used to print with minimal parentheses.
	Precedence() int
	String() string
	// Copy returns a deep copy, preserving the simplified flag.
	Copy() Expr

	simplified() bool
	markSimplified()
}

// flags is embedded in every expression node.
type flags struct {
	simp bool
}

func (f *flags) simplified() bool { return f.simp }
func (f *flags) markSimplified()  { f.simp = true }

// IsSimplified reports whether e was produced by (or already passed through)
// automatic simplification.
func IsSimplified(e Expr) bool { return e.simplified() }

type Int struct {
	flags
	N int64
}

type Real struct {
	flags
	F float64
}

type Frac struct {
	flags
	Fraction
}

type Complex struct {
	flags
	Re, Im float64
}

type Inf struct {
	flags
	Neg bool
}

type Sym struct {
	flags
	Name string
}

type Bool struct {
	flags
	B bool
}

type List struct {
	flags
	Elems []Expr
}

type Sum struct {
	flags
	Terms []Expr
}

// Difference is n-ary subtraction; with a single operand it is a negation.
type Difference struct {
	flags
	Terms []Expr
}

type Product struct {
	flags
	Factors []Expr
}

type Quotient struct {
	flags
	Dividend, Divisor Expr
}

type Power struct {
	flags
	Base, Exp Expr
}

// Call is a function application. Factorial is a Call named "!".
type Call struct {
	flags
	Name string
	Args []Expr
}

// Relation is one of <, >, <=, >= or !=.
type Relation struct {
	flags
	Op          string
	Left, Right Expr
}

type Equation struct {
	flags
	Left, Right Expr
}

type Undefined struct {
	flags
	Reason string
}

// Constructors.

func NewInt(n int64) *Int            { return &Int{N: n} }
func NewReal(f float64) *Real        { return &Real{F: f} }
func NewSym(name string) *Sym        { return &Sym{Name: name} }
func NewBool(b bool) *Bool           { return &Bool{B: b} }
func NewList(elems ...Expr) *List    { return &List{Elems: elems} }
func NewSum(terms ...Expr) *Sum      { return &Sum{Terms: terms} }
func NewProduct(fs ...Expr) *Product { return &Product{Factors: fs} }
func NewPower(b, e Expr) *Power      { return &Power{Base: b, Exp: e} }
func NewCall(name string, args ...Expr) *Call {
	return &Call{Name: name, Args: args}
}
func NewDifference(terms ...Expr) *Difference { return &Difference{Terms: terms} }
func NewQuotient(a, b Expr) *Quotient         { return &Quotient{Dividend: a, Divisor: b} }
func NewUndefined(reason string) *Undefined   { return &Undefined{Reason: reason} }

// NewFrac builds a fraction expression in lowest terms.
func NewFrac(n, d int64) *Frac { return &Frac{Fraction: NewFraction(n, d)} }

func (*Int) Kind() Kind        { return KindInt }
func (*Real) Kind() Kind       { return KindReal }
func (*Frac) Kind() Kind       { return KindFrac }
func (*Complex) Kind() Kind    { return KindComplex }
func (*Inf) Kind() Kind        { return KindInf }
func (*Sym) Kind() Kind        { return KindSym }
func (*Bool) Kind() Kind       { return KindBool }
func (*List) Kind() Kind       { return KindList }
func (*Sum) Kind() Kind        { return KindSum }
func (*Difference) Kind() Kind { return KindDifference }
func (*Product) Kind() Kind    { return KindProduct }
func (*Quotient) Kind() Kind   { return KindQuotient }
func (*Power) Kind() Kind      { return KindPower }
func (*Call) Kind() Kind       { return KindCall }
func (*Relation) Kind() Kind   { return KindRelation }
func (*Equation) Kind() Kind   { return KindEquation }
func (*Undefined) Kind() Kind  { return KindUndefined }

func (*Int) Operands() []Expr          { return nil }
func (*Real) Operands() []Expr         { return nil }
func (*Frac) Operands() []Expr         { return nil }
func (*Complex) Operands() []Expr      { return nil }
func (*Inf) Operands() []Expr          { return nil }
func (*Sym) Operands() []Expr          { return nil }
func (*Bool) Operands() []Expr         { return nil }
func (*Undefined) Operands() []Expr    { return nil }
func (l *List) Operands() []Expr       { return l.Elems }
func (s *Sum) Operands() []Expr        { return s.Terms }
func (d *Difference) Operands() []Expr { return d.Terms }
func (p *Product) Operands() []Expr    { return p.Factors }
func (q *Quotient) Operands() []Expr   { return []Expr{q.Dividend, q.Divisor} }
func (p *Power) Operands() []Expr      { return []Expr{p.Base, p.Exp} }
func (c *Call) Operands() []Expr       { return c.Args }
func (r *Relation) Operands() []Expr   { return []Expr{r.Left, r.Right} }
func (e *Equation) Operands() []Expr   { return []Expr{e.Left, e.Right} }

func (i *Int) Precedence() int {
	if i.N < 0 {
		return PrecUnary
	}
	return PrecAtom
}

func (r *Real) Precedence() int {
	if r.F < 0 {
		return PrecUnary
	}
	return PrecAtom
}

func (*Frac) Precedence() int      { return PrecProduct }
func (*Complex) Precedence() int   { return PrecSum }
func (*Inf) Precedence() int       { return PrecAtom }
func (*Sym) Precedence() int       { return PrecAtom }
func (*Bool) Precedence() int      { return PrecAtom }
func (*List) Precedence() int      { return PrecAtom }
func (*Sum) Precedence() int       { return PrecSum }
func (*Product) Precedence() int   { return PrecProduct }
func (*Quotient) Precedence() int  { return PrecProduct }
func (*Power) Precedence() int     { return PrecPower }
func (*Relation) Precedence() int  { return PrecRelation }
func (*Equation) Precedence() int  { return PrecLowest }
func (*Undefined) Precedence() int { return PrecAtom }

func (d *Difference) Precedence() int {
	if len(d.Terms) == 1 {
		return PrecUnary
	}
	return PrecSum
}

func (c *Call) Precedence() int {
	if c.Name == "!" {
		return PrecPostfix
	}
	return PrecAtom
}

// Printing.

func (i *Int) String() string  { return strconv.FormatInt(i.N, 10) }
func (r *Real) String() string { return strconv.FormatFloat(r.F, 'g', -1, 64) }
func (f *Frac) String() string { return fmt.Sprintf("%d/%d", f.Num, f.Den) }
func (s *Sym) String() string  { return s.Name }

func (c *Complex) String() string {
	re := strconv.FormatFloat(c.Re, 'g', -1, 64)
	im := strconv.FormatFloat(c.Im, 'g', -1, 64)
	if c.Im < 0 {
		return re + " - " + strings.TrimPrefix(im, "-") + "i"
	}
	return re + " + " + im + "i"
}

func (i *Inf) String() string {
	if i.Neg {
		return "-inf"
	}
	return "inf"
}

func (b *Bool) String() string { return strconv.FormatBool(b.B) }

func (u *Undefined) String() string {
	if u.Reason != "" {
		return "undefined(" + u.Reason + ")"
	}
	return "undefined"
}

func (l *List) String() string {
	return "[" + joinExprs(l.Elems, ", ") + "]"
}

func (s *Sum) String() string {
	var b strings.Builder
	for i, t := range s.Terms {
		if i == 0 {
			b.WriteString(wrap(t, PrecSum, false))
			continue
		}
		if neg, ok := negated(t); ok {
			b.WriteString(" - ")
			b.WriteString(wrap(neg, PrecSum, true))
			continue
		}
		b.WriteString(" + ")
		b.WriteString(wrap(t, PrecSum, false))
	}
	return b.String()
}

func (d *Difference) String() string {
	if len(d.Terms) == 1 {
		return "-" + wrap(d.Terms[0], PrecUnary, true)
	}
	var b strings.Builder
	for i, t := range d.Terms {
		if i > 0 {
			b.WriteString(" - ")
			b.WriteString(wrap(t, PrecSum, true))
			continue
		}
		b.WriteString(wrap(t, PrecSum, false))
	}
	return b.String()
}

func (p *Product) String() string {
	if len(p.Factors) > 1 {
		if i, ok := p.Factors[0].(*Int); ok && i.N == -1 {
			rest := &Product{Factors: p.Factors[1:]}
			if len(rest.Factors) == 1 {
				return "-" + wrap(rest.Factors[0], PrecUnary, true)
			}
			return "-" + rest.String()
		}
	}
	parts := make([]string, len(p.Factors))
	for i, f := range p.Factors {
		parts[i] = wrap(f, PrecProduct, i > 0)
	}
	return strings.Join(parts, " * ")
}

func (q *Quotient) String() string {
	return wrap(q.Dividend, PrecProduct, false) + " / " + wrap(q.Divisor, PrecProduct, true)
}

func (p *Power) String() string {
	return wrap(p.Base, PrecPower, true) + "^" + wrap(p.Exp, PrecPower, false)
}

func (c *Call) String() string {
	if c.Name == "!" && len(c.Args) == 1 {
		return wrap(c.Args[0], PrecPostfix, true) + "!"
	}
	return c.Name + "(" + joinExprs(c.Args, ", ") + ")"
}

func (r *Relation) String() string {
	return wrap(r.Left, PrecRelation, false) + " " + r.Op + " " + wrap(r.Right, PrecRelation, true)
}

func (e *Equation) String() string {
	return e.Left.String() + " = " + e.Right.String()
}

// wrap parenthesizes e when it binds looser than the surrounding context.
// strict also parenthesizes equal precedence (right operands, bases).
func wrap(e Expr, ctx int, strict bool) string {
	p := e.Precedence()
	if p < ctx || (strict && p == ctx) {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func joinExprs(es []Expr, sep string) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

// negated returns -t when t prints naturally as a subtraction.
func negated(t Expr) (Expr, bool) {
	switch t := t.(type) {
	case *Int:
		if t.N < 0 {
			return NewInt(-t.N), true
		}
	case *Frac:
		if t.Num < 0 {
			return &Frac{Fraction: t.Neg()}, true
		}
	case *Real:
		if t.F < 0 {
			return NewReal(-t.F), true
		}
	case *Product:
		if len(t.Factors) > 1 {
			if neg, ok := negated(t.Factors[0]); ok {
				if one, isInt := neg.(*Int); isInt && one.N == 1 {
					if len(t.Factors) == 2 {
						return t.Factors[1], true
					}
					return &Product{Factors: t.Factors[1:]}, true
				}
				return &Product{Factors: append([]Expr{neg}, t.Factors[1:]...)}, true
			}
		}
	}
	return nil, false
}

// Deep copies.

func (i *Int) Copy() Expr       { c := *i; return &c }
func (r *Real) Copy() Expr      { c := *r; return &c }
func (f *Frac) Copy() Expr      { c := *f; return &c }
func (c *Complex) Copy() Expr   { d := *c; return &d }
func (i *Inf) Copy() Expr       { c := *i; return &c }
func (s *Sym) Copy() Expr       { c := *s; return &c }
func (b *Bool) Copy() Expr      { c := *b; return &c }
func (u *Undefined) Copy() Expr { c := *u; return &c }

func (l *List) Copy() Expr {
	return &List{flags: l.flags, Elems: copyAll(l.Elems)}
}

func (s *Sum) Copy() Expr {
	return &Sum{flags: s.flags, Terms: copyAll(s.Terms)}
}

func (d *Difference) Copy() Expr {
	return &Difference{flags: d.flags, Terms: copyAll(d.Terms)}
}

func (p *Product) Copy() Expr {
	return &Product{flags: p.flags, Factors: copyAll(p.Factors)}
}

func (q *Quotient) Copy() Expr {
	return &Quotient{flags: q.flags, Dividend: q.Dividend.Copy(), Divisor: q.Divisor.Copy()}
}

func (p *Power) Copy() Expr {
	return &Power{flags: p.flags, Base: p.Base.Copy(), Exp: p.Exp.Copy()}
}

func (c *Call) Copy() Expr {
	return &Call{flags: c.flags, Name: c.Name, Args: copyAll(c.Args)}
}

func (r *Relation) Copy() Expr {
	return &Relation{flags: r.flags, Op: r.Op, Left: r.Left.Copy(), Right: r.Right.Copy()}
}

func (e *Equation) Copy() Expr {
	return &Equation{flags: e.flags, Left: e.Left.Copy(), Right: e.Right.Copy()}
}

func copyAll(es []Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = e.Copy()
	}
	return out
}

// Equal reports structural equality. The simplified flag is ignored.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case *Int:
		return a.N == b.(*Int).N
	case *Real:
		return a.F == b.(*Real).F
	case *Frac:
		return a.Fraction == b.(*Frac).Fraction
	case *Complex:
		o := b.(*Complex)
		return a.Re == o.Re && a.Im == o.Im
	case *Inf:
		return a.Neg == b.(*Inf).Neg
	case *Sym:
		return a.Name == b.(*Sym).Name
	case *Bool:
		return a.B == b.(*Bool).B
	case *Undefined:
		return true
	case *Call:
		if a.Name != b.(*Call).Name {
			return false
		}
	case *Relation:
		if a.Op != b.(*Relation).Op {
			return false
		}
	}
	return equalAll(a.Operands(), b.Operands())
}

func equalAll(as, bs []Expr) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// done marks e simplified and returns it.
func done(e Expr) Expr {
	e.markSimplified()
	return e
}

func isUndefined(e Expr) bool {
	_, ok := e.(*Undefined)
	return ok
}

// isRational reports whether e is an Int or a Frac.
func isRational(e Expr) bool {
	switch e.(type) {
	case *Int, *Frac:
		return true
	}
	return false
}

// isNumber reports whether e is a real numeric constant.
func isNumber(e Expr) bool {
	switch e.(type) {
	case *Int, *Frac, *Real:
		return true
	}
	return false
}

func numberValue(e Expr) float64 {
	switch e := e.(type) {
	case *Int:
		return float64(e.N)
	case *Frac:
		return e.Float64()
	case *Real:
		return e.F
	}
	return 0
}

func isIntValue(e Expr, n int64) bool {
	i, ok := e.(*Int)
	return ok && i.N == n
}

func isZero(e Expr) bool {
	switch e := e.(type) {
	case *Int:
		return e.N == 0
	case *Frac:
		return e.Num == 0 && e.Den != 0
	case *Real:
		return e.F == 0
	}
	return false
}

func isOne(e Expr) bool {
	switch e := e.(type) {
	case *Int:
		return e.N == 1
	case *Real:
		return e.F == 1
	}
	return false
}

func isFactorial(e Expr) bool {
	c, ok := e.(*Call)
	return ok && c.Name == "!" && len(c.Args) == 1
}

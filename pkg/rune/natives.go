package rune

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ketiboldiais/amicus/pkg/cas"
)

// Variadic marks a native that accepts one or more arguments.
const Variadic = -1

// NativeDef defines a function callable by name from scripts. Native names
// are reserved: the lexer emits them as native tokens, and the parser checks
// their arity.
type NativeDef struct {
	Name  string
	Doc   string
	Arity int
	Impl  func(ctx context.Context, args []Value) (Value, error)
}

// Accepts reports whether the native can be called with n arguments.
func (d NativeDef) Accepts(n int) bool {
	if d.Arity == Variadic {
		return n >= 1
	}
	return n == d.Arity
}

// NativeBuilder provides a fluent API for defining natives
type NativeBuilder struct {
	def NativeDef
}

// Native creates a new native function builder
func Native(name string) *NativeBuilder {
	return &NativeBuilder{def: NativeDef{Name: name, Arity: 1}}
}

func (b *NativeBuilder) Doc(doc string) *NativeBuilder {
	b.def.Doc = doc
	return b
}

func (b *NativeBuilder) Arity(n int) *NativeBuilder {
	b.def.Arity = n
	return b
}

// Impl sets the implementation and registers the native
func (b *NativeBuilder) Impl(fn func(context.Context, []Value) (Value, error)) {
	b.def.Impl = fn
	registerNative(b.def)
}

var (
	nativeRegistry = map[string]NativeDef{}
	nativeOrder    []string
)

func registerNative(def NativeDef) {
	if _, dup := nativeRegistry[def.Name]; !dup {
		nativeOrder = append(nativeOrder, def.Name)
	}
	nativeRegistry[def.Name] = def
}

func lookupNative(name string) (NativeDef, bool) {
	def, ok := nativeRegistry[name]
	return def, ok
}

// ForEachNative iterates over all registered natives in registration order.
func ForEachNative(fn func(NativeDef)) {
	for _, name := range nativeOrder {
		fn(nativeRegistry[name])
	}
}

func init() {
	registerNumericNatives()
	registerAlgebraNatives()
}

func registerNumericNatives() {
	unary := []struct {
		name string
		doc  string
		fn   func(float64) float64
	}{
		{"sin", "sine of x in radians", math.Sin},
		{"cos", "cosine of x in radians", math.Cos},
		{"tan", "tangent of x in radians", math.Tan},
		{"arcsin", "inverse sine", math.Asin},
		{"arccos", "inverse cosine", math.Acos},
		{"arctan", "inverse tangent", math.Atan},
		{"sinh", "hyperbolic sine", math.Sinh},
		{"cosh", "hyperbolic cosine", math.Cosh},
		{"tanh", "hyperbolic tangent", math.Tanh},
		{"exp", "e raised to x", math.Exp},
		{"ln", "natural logarithm", math.Log},
		{"lg", "base-2 logarithm", math.Log2},
		{"log", "base-10 logarithm", math.Log10},
		{"sqrt", "square root", math.Sqrt},
		{"abs", "absolute value", math.Abs},
		{"floor", "largest integer not greater than x", math.Floor},
		{"ceil", "smallest integer not less than x", math.Ceil},
	}
	for _, u := range unary {
		name, fn := u.name, u.fn
		Native(name).
			Doc(u.doc).
			Impl(func(ctx context.Context, args []Value) (Value, error) {
				if e, ok := args[0].(ExprValue); ok {
					return ExprValue{Val: cas.NewCall(name, e.Val)}, nil
				}
				x, err := numberArg(name, args[0])
				if err != nil {
					return nil, err
				}
				return NumberValue{Val: fn(x)}, nil
			})
	}

	Native("gcd").
		Doc("greatest common divisor of two integers").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			a, err := integerArg("gcd", args[0])
			if err != nil {
				return nil, err
			}
			b, err := integerArg("gcd", args[1])
			if err != nil {
				return nil, err
			}
			return NumberValue{Val: float64(cas.GCD(a, b))}, nil
		})

	Native("avg").
		Doc("arithmetic mean of the arguments").
		Arity(Variadic).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			xs, err := numberArgs("avg", args)
			if err != nil {
				return nil, err
			}
			sum := 0.0
			for _, x := range xs {
				sum += x
			}
			return NumberValue{Val: sum / float64(len(xs))}, nil
		})

	Native("max").
		Doc("largest of the arguments").
		Arity(Variadic).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			xs, err := numberArgs("max", args)
			if err != nil {
				return nil, err
			}
			m := xs[0]
			for _, x := range xs[1:] {
				m = math.Max(m, x)
			}
			return NumberValue{Val: m}, nil
		})

	Native("min").
		Doc("smallest of the arguments").
		Arity(Variadic).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			xs, err := numberArgs("min", args)
			if err != nil {
				return nil, err
			}
			m := xs[0]
			for _, x := range xs[1:] {
				m = math.Min(m, x)
			}
			return NumberValue{Val: m}, nil
		})
}

func registerAlgebraNatives() {
	unary := []struct {
		name string
		doc  string
		fn   func(cas.Expr) cas.Expr
	}{
		{"simplify", "automatic simplification", cas.Simplify},
		{"expand", "algebraic expansion", cas.Expand},
		{"numerator", "numerator of an expression", cas.Numerator},
		{"denominator", "denominator of an expression", cas.Denominator},
		{"sortex", "sorts the operands of sums and products", cas.Sortex},
		{"subexs", "the distinct complete subexpressions", func(u cas.Expr) cas.Expr {
			return cas.NewList(cas.Subexs(u)...)
		}},
		{"vars", "the generalized variables", func(u cas.Expr) cas.Expr {
			return cas.NewList(cas.Vars(u)...)
		}},
	}
	for _, u := range unary {
		fn := u.fn
		Native(u.name).
			Doc(u.doc).
			Impl(func(ctx context.Context, args []Value) (Value, error) {
				e, err := exprArg(args[0])
				if err != nil {
					return nil, err
				}
				return fromCAS(fn(e)), nil
			})
	}

	Native("derive").
		Doc("derivative of an expression with respect to a symbol").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, x, err := exprSymArgs("derive", args)
			if err != nil {
				return nil, err
			}
			return algebraResult("derive", cas.Derive(u, x))
		})

	Native("deg").
		Doc("degree of a polynomial in the given variables").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, vars, err := exprVarsArgs(args)
			if err != nil {
				return nil, err
			}
			return algebraResult("deg", cas.GPEDeg(u, vars))
		})

	Native("coef").
		Doc("coefficient of x^j in a polynomial").
		Arity(3).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, err := exprArg(args[0])
			if err != nil {
				return nil, err
			}
			x, err := exprArg(args[1])
			if err != nil {
				return nil, err
			}
			j, err := integerArg("coef", args[2])
			if err != nil {
				return nil, err
			}
			return algebraResult("coef", cas.CoefGPE(u, x, j))
		})

	Native("lc").
		Doc("leading coefficient of a polynomial in x").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, err := exprArg(args[0])
			if err != nil {
				return nil, err
			}
			x, err := exprArg(args[1])
			if err != nil {
				return nil, err
			}
			return algebraResult("lc", cas.LCGPE(u, x))
		})

	Native("collect").
		Doc("collects the terms of a polynomial by monomial").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, vars, err := exprVarsArgs(args)
			if err != nil {
				return nil, err
			}
			return algebraResult("collect", cas.CollectTerms(u, vars))
		})

	Native("freeof").
		Doc("whether the expression does not contain the subexpression").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, err := exprArg(args[0])
			if err != nil {
				return nil, err
			}
			t, err := exprArg(args[1])
			if err != nil {
				return nil, err
			}
			return BoolValue{Val: cas.FreeOf(u, t)}, nil
		})

	Native("order").
		Doc("whether the first expression precedes the second canonically").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, err := exprArg(args[0])
			if err != nil {
				return nil, err
			}
			v, err := exprArg(args[1])
			if err != nil {
				return nil, err
			}
			return BoolValue{Val: cas.Order(u, v)}, nil
		})

	Native("ismonomial").
		Doc("whether the expression is a monomial in the given variables").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, vars, err := exprVarsArgs(args)
			if err != nil {
				return nil, err
			}
			return BoolValue{Val: cas.IsMonomial(u, vars)}, nil
		})

	Native("ispolynomial").
		Doc("whether the expression is a polynomial in the given variables").
		Arity(2).
		Impl(func(ctx context.Context, args []Value) (Value, error) {
			u, vars, err := exprVarsArgs(args)
			if err != nil {
				return nil, err
			}
			return BoolValue{Val: cas.IsPolynomial(u, vars)}, nil
		})
}

func numberArg(name string, v Value) (float64, error) {
	if f, ok := asFloat(v); ok {
		return f, nil
	}
	if b, ok := v.(BigIntValue); ok {
		f, _ := new(big.Float).SetInt(b.Val).Float64()
		return f, nil
	}
	return 0, &Error{Kind: TypeError, Message: fmt.Sprintf("%s expects a number, got %s", name, v.Type())}
}

// numberArgs flattens the arguments of a variadic numeric native. A single
// vector or tuple argument supplies its elements.
func numberArgs(name string, args []Value) ([]float64, error) {
	if len(args) == 1 {
		switch v := args[0].(type) {
		case VectorValue:
			if len(v.Elems) == 0 {
				return nil, &Error{Kind: RuntimeError, Message: name + " of an empty vector"}
			}
			return v.Elems, nil
		case TupleValue:
			args = v.Elems
			if len(args) == 0 {
				return nil, &Error{Kind: RuntimeError, Message: name + " of an empty tuple"}
			}
		}
	}
	xs := make([]float64, len(args))
	for i, a := range args {
		x, err := numberArg(name, a)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return xs, nil
}

func integerArg(name string, v Value) (int64, error) {
	x, err := numberArg(name, v)
	if err != nil {
		return 0, err
	}
	if !isIntegral(x) {
		return 0, &Error{Kind: TypeError, Message: fmt.Sprintf("%s expects an integer, got %s", name, formatNumber(x))}
	}
	return int64(x), nil
}

func exprArg(v Value) (cas.Expr, error) { return toCAS(v) }

// algebraResult raises an Undefined result from the polynomial and calculus
// natives as an algebra error instead of returning it as a value.
func algebraResult(op string, u cas.Expr) (Value, error) {
	u, err := cas.Defined(op, u)
	if err != nil {
		return nil, err
	}
	return fromCAS(u), nil
}

func exprSymArgs(name string, args []Value) (cas.Expr, *cas.Sym, error) {
	u, err := exprArg(args[0])
	if err != nil {
		return nil, nil, err
	}
	x, err := exprArg(args[1])
	if err != nil {
		return nil, nil, err
	}
	sym, ok := x.(*cas.Sym)
	if !ok {
		return nil, nil, &Error{Kind: AlgebraError, Message: fmt.Sprintf("%s expects a symbol as its variable, got %s", name, x)}
	}
	return u, sym, nil
}

// exprVarsArgs reads an expression and a variable set, given as either a
// single expression or a list of them.
func exprVarsArgs(args []Value) (cas.Expr, []cas.Expr, error) {
	u, err := exprArg(args[0])
	if err != nil {
		return nil, nil, err
	}
	v, err := exprArg(args[1])
	if err != nil {
		return nil, nil, err
	}
	if l, ok := v.(*cas.List); ok {
		return u, l.Elems, nil
	}
	return u, []cas.Expr{v}, nil
}

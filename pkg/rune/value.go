package rune

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ketiboldiais/amicus/pkg/cas"
)

// Value is a runtime value.
type Value interface {
	// Type names the value's kind in error messages.
	Type() string
	String() string
}

type NumberValue struct {
	Val float64
}

func (NumberValue) Type() string { return "number" }

func (n NumberValue) String() string { return formatNumber(n.Val) }

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type StringValue struct {
	Val string
}

func (StringValue) Type() string     { return "string" }
func (s StringValue) String() string { return s.Val }

type BoolValue struct {
	Val bool
}

func (BoolValue) Type() string     { return "boolean" }
func (b BoolValue) String() string { return strconv.FormatBool(b.Val) }

type NilValue struct{}

func (NilValue) Type() string   { return "nil" }
func (NilValue) String() string { return "nil" }

type BigIntValue struct {
	Val *big.Int
}

func (BigIntValue) Type() string     { return "bigint" }
func (b BigIntValue) String() string { return b.Val.String() }

// ExponentialValue is a number in scientific notation.
type ExponentialValue struct {
	Val Exponential
}

func (ExponentialValue) Type() string     { return "exponential" }
func (e ExponentialValue) String() string { return e.Val.String() }

// Float returns the value as a float64.
func (e ExponentialValue) Float() float64 {
	return e.Val.Mantissa * math.Pow(10, float64(e.Val.Exp))
}

// ExprValue is a symbolic expression.
type ExprValue struct {
	Val cas.Expr
}

func (ExprValue) Type() string     { return "expression" }
func (e ExprValue) String() string { return e.Val.String() }

type FractionValue struct {
	Val cas.Fraction
}

func (FractionValue) Type() string     { return "fraction" }
func (f FractionValue) String() string { return f.Val.String() }

type VectorValue struct {
	Elems []float64
}

func (VectorValue) Type() string { return "vector" }

func (v VectorValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = formatNumber(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type MatrixValue struct {
	Rows [][]float64
}

func (MatrixValue) Type() string { return "matrix" }

func (m MatrixValue) String() string {
	rows := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		rows[i] = VectorValue{Elems: r}.String()
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

// Dims returns the number of rows and columns.
func (m MatrixValue) Dims() (int, int) {
	if len(m.Rows) == 0 {
		return 0, 0
	}
	return len(m.Rows), len(m.Rows[0])
}

// TupleValue is a heterogeneous sequence.
type TupleValue struct {
	Elems []Value
}

func (TupleValue) Type() string { return "tuple" }

func (t TupleValue) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		if s, ok := e.(StringValue); ok {
			parts[i] = strconv.Quote(s.Val)
			continue
		}
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FunctionValue is a user-defined function or method closing over the
// environment it was declared in.
type FunctionValue struct {
	Decl    *FunctionDecl
	Closure *Env
	IsInit  bool
}

func (*FunctionValue) Type() string { return "function" }

func (f *FunctionValue) String() string { return "fn " + f.Decl.Name.Lexeme }

// Bind returns the method with this bound to instance.
func (f *FunctionValue) Bind(instance *InstanceValue) *FunctionValue {
	env := NewEnv(f.Closure)
	env.Define("this", instance, false)
	return &FunctionValue{Decl: f.Decl, Closure: env, IsInit: f.IsInit}
}

type ClassValue struct {
	Name       string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func (*ClassValue) Type() string { return "class" }

func (c *ClassValue) String() string { return "class " + c.Name }

// FindMethod looks a method up on the class and then its superclasses.
func (c *ClassValue) FindMethod(name string) (*FunctionValue, bool) {
	for k := c; k != nil; k = k.Superclass {
		if m, ok := k.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func (*InstanceValue) Type() string { return "instance" }

func (i *InstanceValue) String() string { return i.Class.Name + " instance" }

// Get reads a field, falling back to a bound method.
func (i *InstanceValue) Get(name string) (Value, bool) {
	if v, ok := i.Fields[name]; ok {
		return v, true
	}
	if m, ok := i.Class.FindMethod(name); ok {
		return m.Bind(i), true
	}
	return nil, false
}

// ErrorValue carries a failed compilation as a value.
type ErrorValue struct {
	Err *Error
}

func (ErrorValue) Type() string     { return "error" }
func (e ErrorValue) String() string { return e.Err.Error() }

// truthy reports whether v counts as true in a condition: nil, false and
// zero are false.
func truthy(v Value) bool {
	switch v := v.(type) {
	case NilValue:
		return false
	case BoolValue:
		return v.Val
	case NumberValue:
		return v.Val != 0
	case FractionValue:
		return v.Val.Num != 0
	case BigIntValue:
		return v.Val.Sign() != 0
	}
	return true
}

// valuesEqual compares two values structurally.
func valuesEqual(a, b Value) bool {
	if x, y, ok := numericPair(a, b); ok {
		return x == y
	}
	switch a := a.(type) {
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case StringValue:
		s, ok := b.(StringValue)
		return ok && a.Val == s.Val
	case BoolValue:
		o, ok := b.(BoolValue)
		return ok && a.Val == o.Val
	case BigIntValue:
		o, ok := b.(BigIntValue)
		return ok && a.Val.Cmp(o.Val) == 0
	case ExprValue:
		o, ok := b.(ExprValue)
		return ok && cas.Equal(a.Val, o.Val)
	case VectorValue:
		o, ok := b.(VectorValue)
		return ok && floatsEqual(a.Elems, o.Elems)
	case MatrixValue:
		o, ok := b.(MatrixValue)
		if !ok || len(a.Rows) != len(o.Rows) {
			return false
		}
		for i := range a.Rows {
			if !floatsEqual(a.Rows[i], o.Rows[i]) {
				return false
			}
		}
		return true
	case TupleValue:
		o, ok := b.(TupleValue)
		if !ok || len(a.Elems) != len(o.Elems) {
			return false
		}
		for i := range a.Elems {
			if !valuesEqual(a.Elems[i], o.Elems[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// numericPair converts two real-valued operands (numbers, fractions and
// exponentials) to floats.
func numericPair(a, b Value) (float64, float64, bool) {
	x, ok := asFloat(a)
	if !ok {
		return 0, 0, false
	}
	y, ok := asFloat(b)
	return x, y, ok
}

func asFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case NumberValue:
		return v.Val, true
	case FractionValue:
		return v.Val.Float64(), true
	case ExponentialValue:
		return v.Float(), true
	}
	return 0, false
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53
}

// toCAS lifts a runtime value into the algebra engine.
func toCAS(v Value) (cas.Expr, error) {
	switch v := v.(type) {
	case ExprValue:
		return v.Val, nil
	case NumberValue:
		switch {
		case math.IsInf(v.Val, 0):
			return &cas.Inf{Neg: v.Val < 0}, nil
		case isIntegral(v.Val):
			return cas.NewInt(int64(v.Val)), nil
		}
		return cas.NewReal(v.Val), nil
	case FractionValue:
		return &cas.Frac{Fraction: v.Val}, nil
	case ExponentialValue:
		return toCAS(NumberValue{Val: v.Float()})
	case BigIntValue:
		if v.Val.IsInt64() {
			return cas.NewInt(v.Val.Int64()), nil
		}
		f, _ := new(big.Float).SetInt(v.Val).Float64()
		return cas.NewReal(f), nil
	case BoolValue:
		return cas.NewBool(v.Val), nil
	case StringValue:
		e, err := cas.Parse(v.Val)
		if err != nil {
			return nil, &Error{Kind: AlgebraError, Message: err.Error()}
		}
		return e, nil
	case VectorValue:
		elems := make([]cas.Expr, len(v.Elems))
		for i, f := range v.Elems {
			elems[i], _ = toCAS(NumberValue{Val: f})
		}
		return cas.NewList(elems...), nil
	case TupleValue:
		elems := make([]cas.Expr, len(v.Elems))
		for i, e := range v.Elems {
			c, err := toCAS(e)
			if err != nil {
				return nil, err
			}
			elems[i] = c
		}
		return cas.NewList(elems...), nil
	}
	return nil, &Error{Kind: AlgebraError, Message: fmt.Sprintf("expected an algebraic expression, got %s", v.Type())}
}

// fromCAS converts an algebra result back into the most specific runtime
// value.
func fromCAS(e cas.Expr) Value {
	switch e := e.(type) {
	case *cas.Int:
		return NumberValue{Val: float64(e.N)}
	case *cas.Real:
		return NumberValue{Val: e.F}
	case *cas.Frac:
		return FractionValue{Val: e.Fraction}
	case *cas.Bool:
		return BoolValue{Val: e.B}
	}
	return ExprValue{Val: e}
}

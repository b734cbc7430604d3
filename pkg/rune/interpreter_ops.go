package rune

import (
	"math"
	"math/big"

	"github.com/ketiboldiais/amicus/pkg/cas"
)

func operatorError(op Token, l, r Value) *Error {
	return typeError(op.Line, "operator %q cannot be applied to %s and %s", op.Lexeme, l.Type(), r.Type())
}

func negate(line int, v Value) (Value, error) {
	switch v := v.(type) {
	case NumberValue:
		return NumberValue{Val: -v.Val}, nil
	case FractionValue:
		return FractionValue{Val: v.Val.Neg()}, nil
	case BigIntValue:
		return BigIntValue{Val: new(big.Int).Neg(v.Val)}, nil
	case ExponentialValue:
		return ExponentialValue{Val: Exponential{Mantissa: -v.Val.Mantissa, Exp: v.Val.Exp}}, nil
	case ExprValue:
		return ExprValue{Val: cas.NewDifference(v.Val)}, nil
	case VectorValue:
		return VectorValue{Elems: mapFloats(v.Elems, func(x float64) float64 { return -x })}, nil
	case MatrixValue:
		rows := make([][]float64, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = mapFloats(row, func(x float64) float64 { return -x })
		}
		return MatrixValue{Rows: rows}, nil
	}
	return nil, typeError(line, "cannot negate %s", v.Type())
}

func positivize(line int, v Value) (Value, error) {
	switch v.(type) {
	case NumberValue, FractionValue, BigIntValue, ExponentialValue, ExprValue, VectorValue, MatrixValue:
		return v, nil
	}
	return nil, typeError(line, "unary '+' cannot be applied to %s", v.Type())
}

func factorial(line int, v Value) (Value, error) {
	if e, ok := v.(ExprValue); ok {
		return ExprValue{Val: cas.NewCall("!", e.Val)}, nil
	}
	if b, ok := v.(BigIntValue); ok {
		if b.Val.Sign() < 0 || !b.Val.IsInt64() {
			return nil, runtimeError(line, "factorial of %s is undefined", b)
		}
		return BigIntValue{Val: new(big.Int).MulRange(1, b.Val.Int64())}, nil
	}
	x, ok := asFloat(v)
	if !ok {
		return nil, typeError(line, "factorial cannot be applied to %s", v.Type())
	}
	if x < 0 || !isIntegral(x) {
		return nil, runtimeError(line, "factorial of %s is undefined", formatNumber(x))
	}
	r := 1.0
	for n := 2.0; n <= x && !math.IsInf(r, 1); n++ {
		r *= n
	}
	return NumberValue{Val: r}, nil
}

// arithmetic applies + - * / ^ ** % rem mod div.
func arithmetic(op Token, l, r Value) (Value, error) {
	if isExpr(l) || isExpr(r) {
		return symbolic(op, l, r)
	}
	if e, ok := l.(ExponentialValue); ok {
		l = NumberValue{Val: e.Float()}
	}
	if e, ok := r.(ExponentialValue); ok {
		r = NumberValue{Val: e.Float()}
	}

	switch a := l.(type) {
	case NumberValue:
		switch b := r.(type) {
		case NumberValue:
			return numberOp(op, a.Val, b.Val)
		case FractionValue:
			if isIntegral(a.Val) {
				return fractionOp(op, cas.NewFraction(int64(a.Val), 1), b.Val)
			}
			return numberOp(op, a.Val, b.Val.Float64())
		case BigIntValue:
			if isIntegral(a.Val) {
				return bigOp(op, big.NewInt(int64(a.Val)), b.Val)
			}
		case VectorValue:
			if op.Type == TokStar {
				return VectorValue{Elems: scale(b.Elems, a.Val)}, nil
			}
		case MatrixValue:
			if op.Type == TokStar {
				return scaleMatrix(b, a.Val), nil
			}
		}
	case FractionValue:
		switch b := r.(type) {
		case FractionValue:
			return fractionOp(op, a.Val, b.Val)
		case NumberValue:
			if isIntegral(b.Val) {
				return fractionOp(op, a.Val, cas.NewFraction(int64(b.Val), 1))
			}
			return numberOp(op, a.Val.Float64(), b.Val)
		}
	case BigIntValue:
		switch b := r.(type) {
		case BigIntValue:
			return bigOp(op, a.Val, b.Val)
		case NumberValue:
			if isIntegral(b.Val) {
				return bigOp(op, a.Val, big.NewInt(int64(b.Val)))
			}
		}
	case VectorValue:
		if b, ok := r.(NumberValue); ok {
			switch op.Type {
			case TokStar:
				return VectorValue{Elems: scale(a.Elems, b.Val)}, nil
			case TokSlash:
				return VectorValue{Elems: scale(a.Elems, 1/b.Val)}, nil
			}
		}
	case MatrixValue:
		if b, ok := r.(NumberValue); ok && op.Type == TokStar {
			return scaleMatrix(a, b.Val), nil
		}
	}
	return nil, operatorError(op, l, r)
}

func isExpr(v Value) bool {
	_, ok := v.(ExprValue)
	return ok
}

// symbolic builds the unsimplified algebraic node for an operation with an
// expression operand.
func symbolic(op Token, l, r Value) (Value, error) {
	a, err := toCAS(l)
	if err != nil {
		return nil, operatorError(op, l, r)
	}
	b, err := toCAS(r)
	if err != nil {
		return nil, operatorError(op, l, r)
	}
	switch op.Type {
	case TokPlus:
		return ExprValue{Val: cas.NewSum(a, b)}, nil
	case TokMinus:
		return ExprValue{Val: cas.NewDifference(a, b)}, nil
	case TokStar:
		return ExprValue{Val: cas.NewProduct(a, b)}, nil
	case TokSlash:
		return ExprValue{Val: cas.NewQuotient(a, b)}, nil
	case TokCaret, TokStarStar:
		return ExprValue{Val: cas.NewPower(a, b)}, nil
	}
	return nil, newError(AlgebraError, op.Line, "operator %q is not defined on algebraic expressions", op.Lexeme)
}

func numberOp(op Token, x, y float64) (Value, error) {
	switch op.Type {
	case TokPlus:
		return NumberValue{Val: x + y}, nil
	case TokMinus:
		return NumberValue{Val: x - y}, nil
	case TokStar:
		return NumberValue{Val: x * y}, nil
	case TokSlash:
		return NumberValue{Val: x / y}, nil
	case TokCaret, TokStarStar:
		return NumberValue{Val: math.Pow(x, y)}, nil
	case TokPercent, TokRem:
		return NumberValue{Val: math.Mod(x, y)}, nil
	case TokMod:
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return NumberValue{Val: m}, nil
	case TokDiv:
		if y == 0 {
			return nil, runtimeError(op.Line, "integer division by zero")
		}
		return NumberValue{Val: math.Floor(x / y)}, nil
	}
	return nil, operatorError(op, NumberValue{Val: x}, NumberValue{Val: y})
}

func fractionOp(op Token, a, b cas.Fraction) (Value, error) {
	switch op.Type {
	case TokPlus:
		return FractionValue{Val: a.Add(b)}, nil
	case TokMinus:
		return FractionValue{Val: a.Sub(b)}, nil
	case TokStar:
		return FractionValue{Val: a.Mul(b)}, nil
	case TokSlash:
		return FractionValue{Val: a.Div(b)}, nil
	case TokCaret, TokStarStar:
		if !b.IsInteger() {
			return NumberValue{Val: math.Pow(a.Float64(), b.Float64())}, nil
		}
		p, ok := a.Pow(b.Num)
		if !ok {
			return nil, runtimeError(op.Line, "%s^%s is undefined", a, b)
		}
		return FractionValue{Val: p}, nil
	}
	return numberOp(op, a.Float64(), b.Float64())
}

func bigOp(op Token, x, y *big.Int) (Value, error) {
	z := new(big.Int)
	switch op.Type {
	case TokPlus:
		return BigIntValue{Val: z.Add(x, y)}, nil
	case TokMinus:
		return BigIntValue{Val: z.Sub(x, y)}, nil
	case TokStar:
		return BigIntValue{Val: z.Mul(x, y)}, nil
	case TokCaret, TokStarStar:
		if y.Sign() < 0 {
			return nil, runtimeError(op.Line, "negative exponent %s on a big integer", y)
		}
		return BigIntValue{Val: z.Exp(x, y, nil)}, nil
	}
	if y.Sign() == 0 {
		return nil, runtimeError(op.Line, "division by zero")
	}
	switch op.Type {
	case TokSlash:
		return BigIntValue{Val: z.Quo(x, y)}, nil
	case TokPercent, TokRem:
		return BigIntValue{Val: z.Rem(x, y)}, nil
	case TokMod, TokDiv:
		q, m := new(big.Int).QuoRem(x, y, new(big.Int))
		if m.Sign() != 0 && m.Sign() != y.Sign() {
			q.Sub(q, big.NewInt(1))
			m.Add(m, y)
		}
		if op.Type == TokDiv {
			return BigIntValue{Val: q}, nil
		}
		return BigIntValue{Val: m}, nil
	}
	return nil, operatorError(op, BigIntValue{Val: x}, BigIntValue{Val: y})
}

func mapFloats(xs []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

func scale(xs []float64, k float64) []float64 {
	return mapFloats(xs, func(x float64) float64 { return x * k })
}

func scaleMatrix(m MatrixValue, k float64) MatrixValue {
	rows := make([][]float64, len(m.Rows))
	for i, row := range m.Rows {
		rows[i] = scale(row, k)
	}
	return MatrixValue{Rows: rows}
}

func elementwise(op Token) (func(x, y float64) float64, bool) {
	switch op.Type {
	case TokDotAdd, TokPoundPlus:
		return func(x, y float64) float64 { return x + y }, true
	case TokDotMinus, TokPoundMinus:
		return func(x, y float64) float64 { return x - y }, true
	case TokDotStar:
		return func(x, y float64) float64 { return x * y }, true
	case TokDotCaret:
		return math.Pow, true
	}
	return nil, false
}

// vectorOp applies .+ .- .* .^ elementwise, broadcasting a number operand,
// and @ as the dot product.
func vectorOp(op Token, l, r Value) (Value, error) {
	a, aVec := l.(VectorValue)
	b, bVec := r.(VectorValue)
	if op.Type == TokAt {
		if !aVec || !bVec {
			return nil, operatorError(op, l, r)
		}
		if len(a.Elems) != len(b.Elems) {
			return nil, runtimeError(op.Line, "vector lengths differ: %d and %d", len(a.Elems), len(b.Elems))
		}
		dot := 0.0
		for i := range a.Elems {
			dot += a.Elems[i] * b.Elems[i]
		}
		return NumberValue{Val: dot}, nil
	}

	f, ok := elementwise(op)
	if !ok {
		return nil, operatorError(op, l, r)
	}
	switch {
	case aVec && bVec:
		if len(a.Elems) != len(b.Elems) {
			return nil, runtimeError(op.Line, "vector lengths differ: %d and %d", len(a.Elems), len(b.Elems))
		}
		out := make([]float64, len(a.Elems))
		for i := range out {
			out[i] = f(a.Elems[i], b.Elems[i])
		}
		return VectorValue{Elems: out}, nil
	case aVec:
		if y, ok := asFloat(r); ok {
			return VectorValue{Elems: mapFloats(a.Elems, func(x float64) float64 { return f(x, y) })}, nil
		}
	case bVec:
		if x, ok := asFloat(l); ok {
			return VectorValue{Elems: mapFloats(b.Elems, func(y float64) float64 { return f(x, y) })}, nil
		}
	}
	return nil, operatorError(op, l, r)
}

// matrixOp applies #+ and #- elementwise and #* as the matrix product, or
// scaling when one operand is a number.
func matrixOp(op Token, l, r Value) (Value, error) {
	a, aMat := l.(MatrixValue)
	b, bMat := r.(MatrixValue)

	if op.Type == TokPoundStar {
		switch {
		case aMat && bMat:
			return matMul(op, a, b)
		case aMat:
			if v, ok := r.(VectorValue); ok {
				prod, err := matMul(op, a, MatrixValue{Rows: column(v.Elems)})
				if err != nil {
					return nil, err
				}
				return VectorValue{Elems: flatten(prod.(MatrixValue))}, nil
			}
			if k, ok := asFloat(r); ok {
				return scaleMatrix(a, k), nil
			}
		case bMat:
			if k, ok := asFloat(l); ok {
				return scaleMatrix(b, k), nil
			}
		}
		return nil, operatorError(op, l, r)
	}

	f, ok := elementwise(op)
	if !ok || !aMat || !bMat {
		return nil, operatorError(op, l, r)
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return nil, runtimeError(op.Line, "matrix dimensions differ: %dx%d and %dx%d", ar, ac, br, bc)
	}
	rows := make([][]float64, ar)
	for i := range rows {
		rows[i] = make([]float64, ac)
		for j := range rows[i] {
			rows[i][j] = f(a.Rows[i][j], b.Rows[i][j])
		}
	}
	return MatrixValue{Rows: rows}, nil
}

func matMul(op Token, a, b MatrixValue) (Value, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return nil, runtimeError(op.Line, "cannot multiply %dx%d and %dx%d matrices", ar, ac, br, bc)
	}
	rows := make([][]float64, ar)
	for i := range rows {
		rows[i] = make([]float64, bc)
		for j := 0; j < bc; j++ {
			for k := 0; k < ac; k++ {
				rows[i][j] += a.Rows[i][k] * b.Rows[k][j]
			}
		}
	}
	return MatrixValue{Rows: rows}, nil
}

func column(xs []float64) [][]float64 {
	rows := make([][]float64, len(xs))
	for i, x := range xs {
		rows[i] = []float64{x}
	}
	return rows
}

func flatten(m MatrixValue) []float64 {
	out := make([]float64, 0, len(m.Rows))
	for _, row := range m.Rows {
		out = append(out, row...)
	}
	return out
}

var relationOps = map[TokenType]string{
	TokLess:         "<",
	TokGreater:      ">",
	TokLessEqual:    "<=",
	TokGreaterEqual: ">=",
}

func compare(op Token, l, r Value) (Value, error) {
	switch op.Type {
	case TokEqualEqual:
		return BoolValue{Val: valuesEqual(l, r)}, nil
	case TokBangEqual:
		return BoolValue{Val: !valuesEqual(l, r)}, nil
	}

	if isExpr(l) || isExpr(r) {
		a, err := toCAS(l)
		if err != nil {
			return nil, operatorError(op, l, r)
		}
		b, err := toCAS(r)
		if err != nil {
			return nil, operatorError(op, l, r)
		}
		return ExprValue{Val: &cas.Relation{Op: relationOps[op.Type], Left: a, Right: b}}, nil
	}

	var c int
	if x, y, ok := numericPair(l, r); ok {
		switch {
		case math.IsNaN(x) || math.IsNaN(y):
			return BoolValue{Val: false}, nil
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	} else if a, ok := l.(StringValue); ok {
		b, ok := r.(StringValue)
		if !ok {
			return nil, operatorError(op, l, r)
		}
		switch {
		case a.Val < b.Val:
			c = -1
		case a.Val > b.Val:
			c = 1
		}
	} else if a, ok := l.(BigIntValue); ok {
		b, ok := r.(BigIntValue)
		if !ok {
			return nil, operatorError(op, l, r)
		}
		c = a.Val.Cmp(b.Val)
	} else {
		return nil, operatorError(op, l, r)
	}

	switch op.Type {
	case TokLess:
		return BoolValue{Val: c < 0}, nil
	case TokGreater:
		return BoolValue{Val: c > 0}, nil
	case TokLessEqual:
		return BoolValue{Val: c <= 0}, nil
	}
	return BoolValue{Val: c >= 0}, nil
}

// concat joins strings, tuples or vectors with &. A string on either side
// concatenates the other operand's printed form.
func concat(op Token, l, r Value) (Value, error) {
	_, ls := l.(StringValue)
	_, rs := r.(StringValue)
	if ls || rs {
		return StringValue{Val: l.String() + r.String()}, nil
	}
	switch a := l.(type) {
	case TupleValue:
		if b, ok := r.(TupleValue); ok {
			elems := append(append([]Value{}, a.Elems...), b.Elems...)
			return TupleValue{Elems: elems}, nil
		}
	case VectorValue:
		if b, ok := r.(VectorValue); ok {
			elems := append(append([]float64{}, a.Elems...), b.Elems...)
			return VectorValue{Elems: elems}, nil
		}
	}
	return nil, operatorError(op, l, r)
}

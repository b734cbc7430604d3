package rune

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ketiboldiais/amicus/pkg/ioctx"
)

// completion is the outcome of executing a statement: either it ran to the
// end or a return statement produced value.
type completion struct {
	returning bool
	value     Value
}

var normal = completion{}

// Interpreter evaluates resolved programs against a global environment.
// It is not safe for concurrent use.
type Interpreter struct {
	cfg     Config
	globals *Env
	env     *Env
	locals  map[NodeID]int
	prints  []string
}

// NewInterpreter creates an interpreter with an empty global environment.
func NewInterpreter(cfg Config) *Interpreter {
	if cfg.MaxLoopIterations <= 0 {
		cfg.MaxLoopIterations = DefaultMaxLoopIterations
	}
	globals := NewEnv(nil)
	return &Interpreter{
		cfg:     cfg,
		globals: globals,
		env:     globals,
		locals:  map[NodeID]int{},
	}
}

// Globals returns the global environment.
func (i *Interpreter) Globals() *Env { return i.globals }

// Interpret runs prog using the resolver's distance map. The result is the
// printed output joined by newlines if anything was printed, otherwise the
// value of the last top-level expression statement, otherwise nil.
func (i *Interpreter) Interpret(ctx context.Context, prog *Program, locals map[NodeID]int) (Value, error) {
	for id, d := range locals {
		i.locals[id] = d
	}
	i.prints = nil
	i.env = i.globals

	var last Value = NilValue{}
	for _, s := range prog.Stmts {
		if es, ok := s.(*ExpressionStmt); ok {
			v, err := i.eval(ctx, es.Expr)
			if err != nil {
				return nil, err
			}
			last = v
			continue
		}
		if _, err := i.exec(ctx, s); err != nil {
			return nil, err
		}
	}
	if len(i.prints) > 0 {
		return StringValue{Val: strings.Join(i.prints, "\n")}, nil
	}
	return last, nil
}

func (i *Interpreter) exec(ctx context.Context, s Stmt) (completion, error) {
	switch s := s.(type) {
	case *ExpressionStmt:
		_, err := i.eval(ctx, s.Expr)
		return normal, err
	case *PrintStmt:
		v, err := i.eval(ctx, s.Expr)
		if err != nil {
			return normal, err
		}
		text := v.String()
		i.prints = append(i.prints, text)
		fmt.Fprintln(ioctx.Stdout(ctx), text)
		return normal, nil
	case *VariableDecl:
		v, err := i.eval(ctx, s.Init)
		if err != nil {
			return normal, err
		}
		i.env.Define(s.Name.Lexeme, v, s.Mutable)
		return normal, nil
	case *BlockStmt:
		return i.execBlock(ctx, s.Stmts, NewEnv(i.env))
	case *IfStmt:
		cond, err := i.eval(ctx, s.Cond)
		if err != nil {
			return normal, err
		}
		if truthy(cond) {
			return i.exec(ctx, s.Then)
		}
		if s.Else != nil {
			return i.exec(ctx, s.Else)
		}
		return normal, nil
	case *WhileStmt:
		return i.execWhile(ctx, s)
	case *FunctionDecl:
		i.env.Define(s.Name.Lexeme, &FunctionValue{Decl: s, Closure: i.env}, false)
		return normal, nil
	case *ReturnStmt:
		var v Value = NilValue{}
		if s.Value != nil {
			var err error
			if v, err = i.eval(ctx, s.Value); err != nil {
				return normal, err
			}
		}
		return completion{returning: true, value: v}, nil
	case *ClassStmt:
		return normal, i.execClass(ctx, s)
	}
	return normal, runtimeError(s.Pos(), "unknown statement %T", s)
}

// execBlock runs stmts in env, restoring the current environment afterwards.
func (i *Interpreter) execBlock(ctx context.Context, stmts []Stmt, env *Env) (completion, error) {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, s := range stmts {
		c, err := i.exec(ctx, s)
		if err != nil || c.returning {
			return c, err
		}
	}
	return normal, nil
}

func (i *Interpreter) execWhile(ctx context.Context, s *WhileStmt) (completion, error) {
	for n := 0; ; n++ {
		cond, err := i.eval(ctx, s.Cond)
		if err != nil {
			return normal, err
		}
		if !truthy(cond) {
			return normal, nil
		}
		if n >= i.cfg.MaxLoopIterations {
			engineStats.Add(statLoopCeiling, 1)
			return normal, runtimeError(s.Pos(), "loop exceeded %d iterations", i.cfg.MaxLoopIterations)
		}
		c, err := i.exec(ctx, s.Body)
		if err != nil || c.returning {
			return c, err
		}
	}
}

func (i *Interpreter) execClass(ctx context.Context, s *ClassStmt) error {
	var super *ClassValue
	if s.Superclass != nil {
		v, err := i.eval(ctx, s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*ClassValue)
		if !ok {
			return typeError(s.Superclass.Pos(), "superclass of %s must be a class, got %s", s.Name.Lexeme, v.Type())
		}
		super = sc
	}

	closure := i.env
	if super != nil {
		closure = NewEnv(i.env)
		closure.Define("super", super, false)
	}

	class := &ClassValue{Name: s.Name.Lexeme, Superclass: super, Methods: map[string]*FunctionValue{}}
	for _, m := range s.Methods {
		class.Methods[m.Name.Lexeme] = &FunctionValue{
			Decl:    m,
			Closure: closure,
			IsInit:  m.Name.Lexeme == "def",
		}
	}
	i.env.Define(s.Name.Lexeme, class, false)
	return nil
}

func (i *Interpreter) lookup(id NodeID, line int, name string) (Value, error) {
	var (
		v   Value
		err error
	)
	if d, ok := i.locals[id]; ok {
		v, err = i.env.GetAt(d, name)
	} else {
		v, err = i.globals.Get(name)
	}
	if err != nil {
		return nil, envError(line, "%s", err)
	}
	return v, nil
}

func (i *Interpreter) assign(id NodeID, line int, name string, v Value) error {
	var err error
	if d, ok := i.locals[id]; ok {
		err = i.env.AssignAt(d, name, v)
	} else {
		err = i.globals.Assign(name, v)
	}
	if err != nil {
		return envError(line, "%s", err)
	}
	return nil
}

func (i *Interpreter) eval(ctx context.Context, e Expr) (Value, error) {
	switch e := e.(type) {
	case *IntLit:
		return NumberValue{Val: e.Value}, nil
	case *FloatLit:
		return NumberValue{Val: e.Value}, nil
	case *NumericConstantLit:
		return NumberValue{Val: e.Value}, nil
	case *BigIntLit:
		return BigIntValue{Val: e.Value}, nil
	case *FractionLit:
		return FractionValue{Val: e.Value}, nil
	case *ScientificLit:
		return ExponentialValue{Val: e.Value}, nil
	case *StringLit:
		return StringValue{Val: e.Value}, nil
	case *BoolLit:
		return BoolValue{Val: e.Value}, nil
	case *NilLit:
		return NilValue{}, nil
	case *NaNLit:
		return NumberValue{Val: math.NaN()}, nil
	case *InfLit:
		return NumberValue{Val: math.Inf(1)}, nil
	case *AlgebraStringLit:
		return ExprValue{Val: e.Value}, nil
	case *GroupExpr:
		return i.eval(ctx, e.Inner)
	case *Identifier:
		return i.lookup(e.ID(), e.Pos(), e.Name.Lexeme)
	case *Assignment:
		v, err := i.eval(ctx, e.Value)
		if err != nil {
			return nil, err
		}
		if err := i.assign(e.ID(), e.Pos(), e.Name.Lexeme, v); err != nil {
			return nil, err
		}
		return v, nil
	case *ThisExpr:
		return i.lookup(e.ID(), e.Pos(), "this")
	case *SuperExpr:
		return i.evalSuper(e)
	case *GetExpr:
		obj, err := i.eval(ctx, e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*InstanceValue)
		if !ok {
			return nil, typeError(e.Pos(), "only instances have properties, got %s", obj.Type())
		}
		v, ok := inst.Get(e.Name.Lexeme)
		if !ok {
			return nil, runtimeError(e.Pos(), "undefined property %q on %s", e.Name.Lexeme, inst)
		}
		return v, nil
	case *SetExpr:
		obj, err := i.eval(ctx, e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*InstanceValue)
		if !ok {
			return nil, typeError(e.Pos(), "only instances have fields, got %s", obj.Type())
		}
		v, err := i.eval(ctx, e.Value)
		if err != nil {
			return nil, err
		}
		inst.Fields[e.Name.Lexeme] = v
		return v, nil
	case *CallExpr:
		return i.evalCall(ctx, e)
	case *NativeCall:
		return i.evalNative(ctx, e)
	case *TupleExpr:
		elems, err := i.evalAll(ctx, e.Elems)
		if err != nil {
			return nil, err
		}
		return TupleValue{Elems: elems}, nil
	case *VectorExpr:
		return i.evalVector(ctx, e)
	case *MatrixExpr:
		rows := make([][]float64, len(e.Rows))
		for r, row := range e.Rows {
			v, err := i.evalVector(ctx, row)
			if err != nil {
				return nil, err
			}
			rows[r] = v.(VectorValue).Elems
		}
		return MatrixValue{Rows: rows}, nil
	case *IndexExpr:
		return i.evalIndex(ctx, e)
	case *Negate:
		v, err := i.eval(ctx, e.Operand)
		if err != nil {
			return nil, err
		}
		return negate(e.Pos(), v)
	case *Positivize:
		v, err := i.eval(ctx, e.Operand)
		if err != nil {
			return nil, err
		}
		return positivize(e.Pos(), v)
	case *NotExpr:
		v, err := i.eval(ctx, e.Operand)
		if err != nil {
			return nil, err
		}
		return BoolValue{Val: !truthy(v)}, nil
	case *Factorial:
		v, err := i.eval(ctx, e.Operand)
		if err != nil {
			return nil, err
		}
		return factorial(e.Pos(), v)
	case *LogicalBinary:
		return i.evalLogical(ctx, e)
	case *AlgebraicBinary:
		l, r, err := i.operands(ctx, e.Binary)
		if err != nil {
			return nil, err
		}
		return arithmetic(e.Op, l, r)
	case *VectorBinary:
		l, r, err := i.operands(ctx, e.Binary)
		if err != nil {
			return nil, err
		}
		return vectorOp(e.Op, l, r)
	case *MatrixBinary:
		l, r, err := i.operands(ctx, e.Binary)
		if err != nil {
			return nil, err
		}
		return matrixOp(e.Op, l, r)
	case *RelationalBinary:
		l, r, err := i.operands(ctx, e.Binary)
		if err != nil {
			return nil, err
		}
		return compare(e.Op, l, r)
	case *StringConcat:
		l, r, err := i.operands(ctx, e.Binary)
		if err != nil {
			return nil, err
		}
		return concat(e.Op, l, r)
	}
	return nil, runtimeError(e.Pos(), "unknown expression %T", e)
}

func (i *Interpreter) evalAll(ctx context.Context, es []Expr) ([]Value, error) {
	vals := make([]Value, len(es))
	for n, e := range es {
		v, err := i.eval(ctx, e)
		if err != nil {
			return nil, err
		}
		vals[n] = v
	}
	return vals, nil
}

func (i *Interpreter) operands(ctx context.Context, b Binary) (Value, Value, error) {
	l, err := i.eval(ctx, b.Left)
	if err != nil {
		return nil, nil, err
	}
	r, err := i.eval(ctx, b.Right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (i *Interpreter) evalSuper(e *SuperExpr) (Value, error) {
	d, ok := i.locals[e.ID()]
	if !ok {
		return nil, resolverError(e.Pos(), "unresolved super")
	}
	sv, err := i.env.GetAt(d, "super")
	if err != nil {
		return nil, envError(e.Pos(), "%s", err)
	}
	tv, err := i.env.GetAt(d-1, "this")
	if err != nil {
		return nil, envError(e.Pos(), "%s", err)
	}
	super, inst := sv.(*ClassValue), tv.(*InstanceValue)
	method, ok := super.FindMethod(e.Method.Lexeme)
	if !ok {
		return nil, runtimeError(e.Pos(), "undefined method %q on superclass %s", e.Method.Lexeme, super.Name)
	}
	return method.Bind(inst), nil
}

func (i *Interpreter) evalCall(ctx context.Context, e *CallExpr) (Value, error) {
	callee, err := i.eval(ctx, e.Callee)
	if err != nil {
		return nil, err
	}
	args, err := i.evalAll(ctx, e.Args)
	if err != nil {
		return nil, err
	}
	switch fn := callee.(type) {
	case *FunctionValue:
		return i.call(ctx, fn, args)
	case *ClassValue:
		inst := &InstanceValue{Class: fn, Fields: map[string]Value{}}
		if ctor, ok := fn.FindMethod("def"); ok {
			if _, err := i.call(ctx, ctor.Bind(inst), args); err != nil {
				return nil, err
			}
		}
		return inst, nil
	}
	return nil, typeError(e.Pos(), "cannot call %s", callee.Type())
}

// call invokes fn with positional args. Missing arguments bind nil; extra
// arguments are ignored.
func (i *Interpreter) call(ctx context.Context, fn *FunctionValue, args []Value) (Value, error) {
	env := NewEnv(fn.Closure)
	for n, param := range fn.Decl.Params {
		var v Value = NilValue{}
		if n < len(args) {
			v = args[n]
		}
		env.Define(param.Lexeme, v, true)
	}
	c, err := i.execBlock(ctx, fn.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if fn.IsInit {
		return fn.Closure.GetAt(0, "this")
	}
	if c.returning {
		return c.value, nil
	}
	return NilValue{}, nil
}

func (i *Interpreter) evalNative(ctx context.Context, e *NativeCall) (Value, error) {
	def, ok := lookupNative(e.Name.Lexeme)
	if !ok {
		return nil, runtimeError(e.Pos(), "unknown native %q", e.Name.Lexeme)
	}
	args, err := i.evalAll(ctx, e.Args)
	if err != nil {
		return nil, err
	}
	v, err := def.Impl(ctx, args)
	if err != nil {
		var re *Error
		if errors.As(err, &re) {
			if re.Line == 0 {
				located := *re
				located.Line = e.Pos()
				return nil, &located
			}
			return nil, re
		}
		return nil, algebraError(e.Pos(), err)
	}
	return v, nil
}

func (i *Interpreter) evalVector(ctx context.Context, e *VectorExpr) (Value, error) {
	elems := make([]float64, len(e.Elems))
	for n, x := range e.Elems {
		v, err := i.eval(ctx, x)
		if err != nil {
			return nil, err
		}
		f, ok := asFloat(v)
		if !ok {
			return nil, typeError(e.Pos(), "vector elements must be numbers, got %s", v.Type())
		}
		elems[n] = f
	}
	return VectorValue{Elems: elems}, nil
}

func (i *Interpreter) evalIndex(ctx context.Context, e *IndexExpr) (Value, error) {
	target, err := i.eval(ctx, e.Target)
	if err != nil {
		return nil, err
	}
	iv, err := i.eval(ctx, e.Index)
	if err != nil {
		return nil, err
	}
	f, ok := asFloat(iv)
	if !ok || !isIntegral(f) {
		return nil, typeError(e.Pos(), "index must be an integer, got %s", iv)
	}
	n := int(f)

	var size int
	switch t := target.(type) {
	case VectorValue:
		size = len(t.Elems)
	case MatrixValue:
		size = len(t.Rows)
	case TupleValue:
		size = len(t.Elems)
	case StringValue:
		size = len(t.Val)
	default:
		return nil, typeError(e.Pos(), "cannot index %s", target.Type())
	}
	if n < 0 || n >= size {
		return nil, runtimeError(e.Pos(), "index %d out of range for %s of length %d", n, target.Type(), size)
	}

	switch t := target.(type) {
	case VectorValue:
		return NumberValue{Val: t.Elems[n]}, nil
	case MatrixValue:
		return VectorValue{Elems: t.Rows[n]}, nil
	case TupleValue:
		return t.Elems[n], nil
	}
	return StringValue{Val: target.(StringValue).Val[n : n+1]}, nil
}

func (i *Interpreter) evalLogical(ctx context.Context, e *LogicalBinary) (Value, error) {
	l, err := i.eval(ctx, e.Left)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case TokAnd:
		if !truthy(l) {
			return BoolValue{Val: false}, nil
		}
	case TokOr:
		if truthy(l) {
			return BoolValue{Val: true}, nil
		}
	}
	r, err := i.eval(ctx, e.Right)
	if err != nil {
		return nil, err
	}
	a, b := truthy(l), truthy(r)
	switch e.Op.Type {
	case TokAnd, TokOr:
		return BoolValue{Val: b}, nil
	case TokNand:
		return BoolValue{Val: !(a && b)}, nil
	case TokNor:
		return BoolValue{Val: !(a || b)}, nil
	case TokXor:
		return BoolValue{Val: a != b}, nil
	case TokXnor:
		return BoolValue{Val: a == b}, nil
	}
	return nil, runtimeError(e.Pos(), "unknown logical operator %q", e.Op.Lexeme)
}

package rune

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

// Resolver computes, for every variable read and assignment, how many
// frames separate the use from its declaration.
type Resolver struct {
	scopes []map[string]bool // name -> ready
	locals map[NodeID]int
	fn     functionKind
	class  classKind
}

// Resolve walks prog and returns the distance map. With topLevelScope the
// program's own declarations are tracked as the outermost scope, so a
// top-level self-referencing initializer is rejected; without it top-level
// names stay unresolved and are looked up as globals at run time.
func Resolve(prog *Program, topLevelScope bool) (map[NodeID]int, error) {
	r := &Resolver{locals: map[NodeID]int{}}
	if topLevelScope {
		r.begin()
	}
	if err := r.stmts(prog.Stmts); err != nil {
		return nil, err
	}
	return r.locals, nil
}

func (r *Resolver) begin() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *Resolver) end()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name Token) error {
	if len(r.scopes) == 0 {
		return nil
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, dup := scope[name.Lexeme]; dup {
		return resolverError(name.Line, "%q is already declared in this scope", name.Lexeme)
	}
	scope[name.Lexeme] = false
	return nil
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// local records the distance to the innermost scope declaring name. Names
// found nowhere are left for the global lookup.
func (r *Resolver) local(id NodeID, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[id] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) stmts(stmts []Stmt) error {
	for _, s := range stmts {
		if err := r.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) stmt(s Stmt) error {
	switch s := s.(type) {
	case *BlockStmt:
		r.begin()
		defer r.end()
		return r.stmts(s.Stmts)
	case *ExpressionStmt:
		return r.expr(s.Expr)
	case *PrintStmt:
		return r.expr(s.Expr)
	case *VariableDecl:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		if err := r.expr(s.Init); err != nil {
			return err
		}
		r.define(s.Name.Lexeme)
		return nil
	case *FunctionDecl:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name.Lexeme)
		return r.function(s, fnFunction)
	case *IfStmt:
		if err := r.expr(s.Cond); err != nil {
			return err
		}
		if err := r.stmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.stmt(s.Else)
		}
		return nil
	case *WhileStmt:
		if err := r.expr(s.Cond); err != nil {
			return err
		}
		return r.stmt(s.Body)
	case *ReturnStmt:
		switch r.fn {
		case fnNone:
			return resolverError(s.Pos(), "cannot return from top-level code")
		case fnInitializer:
			return resolverError(s.Pos(), "cannot return from an initializer")
		}
		if s.Value != nil {
			return r.expr(s.Value)
		}
		return nil
	case *ClassStmt:
		return r.classDecl(s)
	}
	return resolverError(s.Pos(), "unknown statement %T", s)
}

func (r *Resolver) function(decl *FunctionDecl, kind functionKind) error {
	enclosing := r.fn
	r.fn = kind
	defer func() { r.fn = enclosing }()

	r.begin()
	defer r.end()
	for _, param := range decl.Params {
		if err := r.declare(param); err != nil {
			return err
		}
		r.define(param.Lexeme)
	}
	return r.stmts(decl.Body)
}

func (r *Resolver) classDecl(s *ClassStmt) error {
	enclosing := r.class
	r.class = classPlain
	defer func() { r.class = enclosing }()

	if err := r.declare(s.Name); err != nil {
		return err
	}
	r.define(s.Name.Lexeme)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			return resolverError(s.Superclass.Pos(), "class %s cannot inherit from itself", s.Name.Lexeme)
		}
		r.class = classSub
		if err := r.expr(s.Superclass); err != nil {
			return err
		}
		r.begin()
		defer r.end()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.begin()
	defer r.end()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range s.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "def" {
			kind = fnInitializer
		}
		if err := r.function(method, kind); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) exprs(es []Expr) error {
	for _, e := range es {
		if err := r.expr(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) binary(b Binary) error {
	if err := r.expr(b.Left); err != nil {
		return err
	}
	return r.expr(b.Right)
}

func (r *Resolver) expr(e Expr) error {
	switch e := e.(type) {
	case *Identifier:
		if len(r.scopes) > 0 {
			if ready, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !ready {
				return resolverError(e.Pos(), "cannot read %q in its own initializer", e.Name.Lexeme)
			}
		}
		r.local(e.ID(), e.Name.Lexeme)
		return nil
	case *Assignment:
		if err := r.expr(e.Value); err != nil {
			return err
		}
		r.local(e.ID(), e.Name.Lexeme)
		return nil
	case *CallExpr:
		if err := r.expr(e.Callee); err != nil {
			return err
		}
		return r.exprs(e.Args)
	case *NativeCall:
		return r.exprs(e.Args)
	case *AlgebraicBinary:
		return r.binary(e.Binary)
	case *VectorBinary:
		return r.binary(e.Binary)
	case *MatrixBinary:
		return r.binary(e.Binary)
	case *LogicalBinary:
		return r.binary(e.Binary)
	case *RelationalBinary:
		return r.binary(e.Binary)
	case *StringConcat:
		return r.binary(e.Binary)
	case *Negate:
		return r.expr(e.Operand)
	case *Positivize:
		return r.expr(e.Operand)
	case *NotExpr:
		return r.expr(e.Operand)
	case *Factorial:
		return r.expr(e.Operand)
	case *IndexExpr:
		if err := r.expr(e.Target); err != nil {
			return err
		}
		return r.expr(e.Index)
	case *TupleExpr:
		return r.exprs(e.Elems)
	case *VectorExpr:
		return r.exprs(e.Elems)
	case *MatrixExpr:
		for _, row := range e.Rows {
			if err := r.expr(row); err != nil {
				return err
			}
		}
		return nil
	case *GroupExpr:
		return r.expr(e.Inner)
	case *GetExpr:
		return r.expr(e.Object)
	case *SetExpr:
		if err := r.expr(e.Value); err != nil {
			return err
		}
		return r.expr(e.Object)
	case *ThisExpr:
		if r.class == classNone {
			return resolverError(e.Pos(), "cannot use this outside of a class")
		}
		r.local(e.ID(), "this")
		return nil
	case *SuperExpr:
		switch r.class {
		case classNone:
			return resolverError(e.Pos(), "cannot use super outside of a class")
		case classPlain:
			return resolverError(e.Pos(), "cannot use super in a class without a superclass")
		}
		r.local(e.ID(), "super")
		return nil
	case *StringLit, *BoolLit, *IntLit, *FloatLit, *BigIntLit, *FractionLit,
		*ScientificLit, *NumericConstantLit, *NilLit, *NaNLit, *InfLit, *AlgebraStringLit:
		return nil
	}
	return resolverError(e.Pos(), "unknown expression %T", e)
}

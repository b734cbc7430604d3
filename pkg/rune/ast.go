package rune

import (
	"math/big"

	"github.com/ketiboldiais/amicus/pkg/cas"
)

// NodeID identifies an AST node. IDs are unique within one parse and are the
// keys of the resolver's distance map.
type NodeID int

// Node is implemented by every statement and expression.
type Node interface {
	ID() NodeID
	// Pos returns the 1-based source line of the node.
	Pos() int
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

type node struct {
	id   NodeID
	line int
}

func (n node) ID() NodeID { return n.id }
func (n node) Pos() int   { return n.line }

type stmt struct{ node }

func (stmt) stmtNode() {}

type expr struct{ node }

func (expr) exprNode() {}

// Statements

type BlockStmt struct {
	stmt
	Stmts []Stmt
}

type ExpressionStmt struct {
	stmt
	Expr Expr
}

// FunctionDecl declares a named function or a class method. The arrow form
// fn f(x) = e; has a body of a single return statement.
type FunctionDecl struct {
	stmt
	Name   Token
	Params []Token
	Body   []Stmt
}

type VariableDecl struct {
	stmt
	Name    Token
	Init    Expr
	Mutable bool
}

type IfStmt struct {
	stmt
	Cond Expr
	Then *BlockStmt
	Else Stmt // nil when absent
}

type PrintStmt struct {
	stmt
	Expr Expr
}

type ReturnStmt struct {
	stmt
	Keyword Token
	Value   Expr // nil for a bare return
}

type WhileStmt struct {
	stmt
	Cond Expr
	Body Stmt
}

type ClassStmt struct {
	stmt
	Name       Token
	Superclass *Identifier // nil without a superclass
	Methods    []*FunctionDecl
}

// Expressions

type Identifier struct {
	expr
	Name Token
}

type Assignment struct {
	expr
	Name  Token
	Value Expr
}

type CallExpr struct {
	expr
	Callee Expr
	Args   []Expr
}

type NativeCall struct {
	expr
	Name Token
	Args []Expr
}

// Binary holds the operands of every binary node.
type Binary struct {
	Left  Expr
	Op    Token
	Right Expr
}

type AlgebraicBinary struct {
	expr
	Binary
}

type VectorBinary struct {
	expr
	Binary
}

type MatrixBinary struct {
	expr
	Binary
}

type LogicalBinary struct {
	expr
	Binary
}

type RelationalBinary struct {
	expr
	Binary
}

type StringConcat struct {
	expr
	Binary
}

type Negate struct {
	expr
	Operand Expr
}

type Positivize struct {
	expr
	Operand Expr
}

type NotExpr struct {
	expr
	Operand Expr
}

type Factorial struct {
	expr
	Operand Expr
}

type IndexExpr struct {
	expr
	Target Expr
	Index  Expr
}

type TupleExpr struct {
	expr
	Elems []Expr
}

type VectorExpr struct {
	expr
	Elems []Expr
}

type MatrixExpr struct {
	expr
	Rows []*VectorExpr
}

// GroupExpr is a parenthesized expression.
type GroupExpr struct {
	expr
	Inner Expr
}

type GetExpr struct {
	expr
	Object Expr
	Name   Token
}

type SetExpr struct {
	expr
	Object Expr
	Name   Token
	Value  Expr
}

type ThisExpr struct {
	expr
	Keyword Token
}

type SuperExpr struct {
	expr
	Keyword Token
	Method  Token
}

// Literals

type StringLit struct {
	expr
	Value string
}

type BoolLit struct {
	expr
	Value bool
}

type IntLit struct {
	expr
	Value float64
}

type FloatLit struct {
	expr
	Value float64
}

type BigIntLit struct {
	expr
	Value *big.Int
}

type FractionLit struct {
	expr
	Value cas.Fraction
}

type ScientificLit struct {
	expr
	Value Exponential
}

type NumericConstantLit struct {
	expr
	Name  string
	Value float64
}

type NilLit struct{ expr }

type NaNLit struct{ expr }

type InfLit struct{ expr }

// AlgebraStringLit wraps an expression parsed from a quoted algebra string.
type AlgebraStringLit struct {
	expr
	Value cas.Expr
}

// Program is the result of parsing a source text.
type Program struct {
	Stmts []Stmt
	// NodeCount is one past the largest NodeID in the program.
	NodeCount int
}

package rune

import (
	"math/big"
	"strconv"

	"github.com/ketiboldiais/amicus/pkg/cas"
)

// Binding powers, lowest first.
const (
	bpLowest = iota
	bpAssign
	bpLogic
	bpNot
	bpEquality
	bpRelation
	bpSum
	bpProduct
	bpImplicit
	bpPower
	bpDot
	bpPostfix
	bpCall
)

type (
	prefixFn func(p *Parser, tok Token) (Expr, error)
	infixFn  func(p *Parser, left Expr, tok Token) (Expr, error)
)

type parseRule struct {
	prefix prefixFn
	infix  infixFn
	bp     int
}

var rules map[TokenType]parseRule

func init() {
	literal := (*Parser).literal
	binary := (*Parser).binary
	rules = map[TokenType]parseRule{
		TokLeftParen:   {(*Parser).group, (*Parser).call, bpCall},
		TokLeftBracket: {(*Parser).vector, (*Parser).index, bpCall},
		TokDot:         {nil, (*Parser).get, bpCall},

		TokMinus: {(*Parser).unary, binary, bpSum},
		TokPlus:  {(*Parser).unary, binary, bpSum},
		TokNot:   {(*Parser).unary, nil, bpNot},
		TokBang:  {nil, (*Parser).factorial, bpPostfix},

		TokPlusPlus:   {nil, (*Parser).tick, bpPostfix},
		TokMinusMinus: {nil, (*Parser).tick, bpPostfix},

		TokEqual:      {nil, (*Parser).assign, bpAssign},
		TokPlusEqual:  {nil, (*Parser).assign, bpAssign},
		TokMinusEqual: {nil, (*Parser).assign, bpAssign},
		TokStarEqual:  {nil, (*Parser).assign, bpAssign},
		TokSlashEqual: {nil, (*Parser).assign, bpAssign},

		TokAnd:  {nil, binary, bpLogic},
		TokOr:   {nil, binary, bpLogic},
		TokNand: {nil, binary, bpLogic},
		TokNor:  {nil, binary, bpLogic},
		TokXor:  {nil, binary, bpLogic},
		TokXnor: {nil, binary, bpLogic},

		TokEqualEqual:   {nil, binary, bpEquality},
		TokBangEqual:    {nil, binary, bpEquality},
		TokLess:         {nil, binary, bpRelation},
		TokGreater:      {nil, binary, bpRelation},
		TokLessEqual:    {nil, binary, bpRelation},
		TokGreaterEqual: {nil, binary, bpRelation},

		TokAmpersand:  {nil, binary, bpSum},
		TokDotAdd:     {nil, binary, bpSum},
		TokDotMinus:   {nil, binary, bpSum},
		TokPoundPlus:  {nil, binary, bpSum},
		TokPoundMinus: {nil, binary, bpSum},

		TokStar:      {nil, binary, bpProduct},
		TokSlash:     {nil, binary, bpProduct},
		TokPercent:   {nil, binary, bpProduct},
		TokRem:       {nil, binary, bpProduct},
		TokMod:       {nil, binary, bpProduct},
		TokDiv:       {nil, binary, bpProduct},
		TokDotStar:   {nil, binary, bpProduct},
		TokPoundStar: {nil, binary, bpProduct},

		TokCaret:    {nil, binary, bpPower},
		TokStarStar: {nil, binary, bpPower},
		TokDotCaret: {nil, binary, bpPower},
		TokAt:       {nil, binary, bpDot},

		TokInteger:         {(*Parser).number, nil, bpLowest},
		TokFloat:           {(*Parser).number, nil, bpLowest},
		TokFraction:        {(*Parser).number, nil, bpLowest},
		TokScientific:      {(*Parser).number, nil, bpLowest},
		TokBigInteger:      {(*Parser).number, nil, bpLowest},
		TokNumericConstant: {literal, nil, bpLowest},
		TokString:          {literal, nil, bpLowest},
		TokBoolean:         {literal, nil, bpLowest},
		TokNil:             {literal, nil, bpLowest},
		TokNaN:             {literal, nil, bpLowest},
		TokInf:             {literal, nil, bpLowest},
		TokAlgebraString:   {literal, nil, bpLowest},

		TokSymbol: {(*Parser).identifier, nil, bpLowest},
		TokThis:   {(*Parser).this, nil, bpLowest},
		TokSuper:  {(*Parser).super, nil, bpLowest},
		TokNative: {(*Parser).native, nil, bpLowest},
		TokList:   {(*Parser).list, nil, bpLowest},
	}
}

func rightAssoc(tt TokenType) bool {
	switch tt {
	case TokCaret, TokStarStar, TokDotCaret:
		return true
	}
	return false
}

// Parser is a Pratt parser over a token stream. It stops at the first error.
type Parser struct {
	toks   []Token
	pos    int
	nextID NodeID
}

// NewParser creates a parser whose node IDs start at firstID. Sessions that
// parse several inputs against one interpreter pass the previous program's
// NodeCount so that IDs never collide.
func NewParser(toks []Token, firstID NodeID) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Type != TokEnd {
		toks = append(toks, Token{Type: TokEnd})
	}
	return &Parser{toks: toks, nextID: firstID}
}

// Parse lexes and parses source into a program.
func Parse(source string) (*Program, error) {
	return ParseFrom(source, 0)
}

// ParseFrom is Parse with node IDs starting at firstID.
func ParseFrom(source string, firstID NodeID) (*Program, error) {
	toks, err := Stream(source)
	if err != nil {
		return nil, err
	}
	return NewParser(toks, firstID).Parse()
}

// Parse parses every statement up to the end of input.
func (p *Parser) Parse() (*Program, error) {
	var stmts []Stmt
	for !p.check(TokEnd) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return &Program{Stmts: stmts, NodeCount: int(p.nextID)}, nil
}

func (p *Parser) mk(line int) node {
	id := p.nextID
	p.nextID++
	return node{id: id, line: line}
}

func (p *Parser) e(line int) expr { return expr{p.mk(line)} }
func (p *Parser) s(line int) stmt { return stmt{p.mk(line)} }

func (p *Parser) peek() Token { return p.toks[p.pos] }

func (p *Parser) advance() Token {
	tok := p.toks[p.pos]
	if tok.Type != TokEnd {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType, context string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	tok := p.peek()
	return tok, syntaxError(tok.Line, "expected %q %s, got %s", tt.String(), context, describe(tok))
}

// semicolon consumes a statement terminator, which may be left out before
// a closing brace or the end of input.
func (p *Parser) semicolon(after string) error {
	if p.match(TokSemicolon) || p.check(TokRightBrace) || p.check(TokEnd) {
		return nil
	}
	tok := p.peek()
	return syntaxError(tok.Line, "expected ';' after %s, got %s", after, describe(tok))
}

func describe(tok Token) string {
	if tok.Type == TokEnd {
		return "end of input"
	}
	return strconv.Quote(tok.Lexeme)
}

// Statements

func (p *Parser) statement() (Stmt, error) {
	switch tok := p.peek(); tok.Type {
	case TokLet, TokVar:
		p.advance()
		return p.varDecl(tok)
	case TokFn:
		p.advance()
		name, err := p.expect(TokSymbol, "after fn")
		if err != nil {
			return nil, err
		}
		return p.function(name)
	case TokIf:
		p.advance()
		return p.ifStmt(tok)
	case TokWhile:
		p.advance()
		return p.whileStmt(tok)
	case TokFor:
		p.advance()
		return p.forStmt(tok)
	case TokClass:
		p.advance()
		return p.classDecl(tok)
	case TokPrint:
		p.advance()
		value, err := p.parseExpr(bpLowest)
		if err != nil {
			return nil, err
		}
		if err := p.semicolon("print statement"); err != nil {
			return nil, err
		}
		return &PrintStmt{stmt: p.s(tok.Line), Expr: value}, nil
	case TokReturn:
		p.advance()
		ret := &ReturnStmt{Keyword: tok}
		if !p.check(TokSemicolon) && !p.check(TokRightBrace) && !p.check(TokEnd) {
			value, err := p.parseExpr(bpLowest)
			if err != nil {
				return nil, err
			}
			ret.Value = value
		}
		if err := p.semicolon("return value"); err != nil {
			return nil, err
		}
		ret.stmt = p.s(tok.Line)
		return ret, nil
	case TokLeftBrace:
		p.advance()
		return p.block(tok)
	}
	return p.expressionStmt()
}

func (p *Parser) expressionStmt() (Stmt, error) {
	line := p.peek().Line
	value, err := p.parseExpr(bpLowest)
	if err != nil {
		return nil, err
	}
	if err := p.semicolon("expression"); err != nil {
		return nil, err
	}
	return &ExpressionStmt{stmt: p.s(line), Expr: value}, nil
}

func (p *Parser) varDecl(kw Token) (Stmt, error) {
	name, err := p.expect(TokSymbol, "after "+kw.Lexeme)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEqual, "after variable name"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(bpLowest)
	if err != nil {
		return nil, err
	}
	if err := p.semicolon("variable declaration"); err != nil {
		return nil, err
	}
	return &VariableDecl{
		stmt:    p.s(kw.Line),
		Name:    name,
		Init:    value,
		Mutable: kw.Type == TokVar,
	}, nil
}

// function parses the parameters and body of a function or method whose
// name has been consumed.
func (p *Parser) function(name Token) (*FunctionDecl, error) {
	if _, err := p.expect(TokLeftParen, "after function name"); err != nil {
		return nil, err
	}
	var params []Token
	for !p.check(TokRightParen) {
		param, err := p.expect(TokSymbol, "in parameter list")
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if !p.match(TokComma) {
			break
		}
	}
	if _, err := p.expect(TokRightParen, "after parameters"); err != nil {
		return nil, err
	}

	decl := &FunctionDecl{Name: name, Params: params}
	switch {
	case p.match(TokEqual):
		line := p.peek().Line
		value, err := p.parseExpr(bpLowest)
		if err != nil {
			return nil, err
		}
		if err := p.semicolon("function body"); err != nil {
			return nil, err
		}
		if name.Lexeme == "def" {
			decl.Body = []Stmt{&ExpressionStmt{stmt: p.s(line), Expr: value}}
		} else {
			decl.Body = []Stmt{&ReturnStmt{stmt: p.s(line), Keyword: name, Value: value}}
		}
	case p.check(TokLeftBrace):
		open := p.advance()
		body, err := p.block(open)
		if err != nil {
			return nil, err
		}
		decl.Body = body.Stmts
	default:
		tok := p.peek()
		return nil, syntaxError(tok.Line, "expected '=' or '{' before body of %s, got %s", name.Lexeme, describe(tok))
	}
	decl.stmt = p.s(name.Line)
	return decl, nil
}

func (p *Parser) block(open Token) (*BlockStmt, error) {
	var stmts []Stmt
	for !p.check(TokRightBrace) {
		if p.check(TokEnd) {
			return nil, syntaxError(p.peek().Line, "expected '}' to close block opened on line %d, got end of input", open.Line)
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance()
	return &BlockStmt{stmt: p.s(open.Line), Stmts: stmts}, nil
}

func (p *Parser) ifStmt(kw Token) (Stmt, error) {
	cond, err := p.parseExpr(bpLowest)
	if err != nil {
		return nil, err
	}
	open, err := p.expect(TokLeftBrace, "after if condition")
	if err != nil {
		return nil, err
	}
	then, err := p.block(open)
	if err != nil {
		return nil, err
	}
	s := &IfStmt{Cond: cond, Then: then}
	if p.match(TokElse) {
		alt, err := p.statement()
		if err != nil {
			return nil, err
		}
		s.Else = alt
	}
	s.stmt = p.s(kw.Line)
	return s, nil
}

func (p *Parser) whileStmt(kw Token) (Stmt, error) {
	cond, err := p.parseExpr(bpLowest)
	if err != nil {
		return nil, err
	}
	open, err := p.expect(TokLeftBrace, "after while condition")
	if err != nil {
		return nil, err
	}
	body, err := p.block(open)
	if err != nil {
		return nil, err
	}
	return &WhileStmt{stmt: p.s(kw.Line), Cond: cond, Body: body}, nil
}

// forStmt lowers for (init; cond; incr) { body } into
// { init; while cond { body; incr; } }.
func (p *Parser) forStmt(kw Token) (Stmt, error) {
	if _, err := p.expect(TokLeftParen, "after for"); err != nil {
		return nil, err
	}

	var first Stmt
	switch tok := p.peek(); tok.Type {
	case TokSemicolon:
		p.advance()
	case TokLet, TokVar:
		p.advance()
		decl, err := p.varDecl(tok)
		if err != nil {
			return nil, err
		}
		first = decl
	default:
		s, err := p.expressionStmt()
		if err != nil {
			return nil, err
		}
		first = s
	}

	var cond Expr
	if !p.check(TokSemicolon) {
		c, err := p.parseExpr(bpLowest)
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if _, err := p.expect(TokSemicolon, "after loop condition"); err != nil {
		return nil, err
	}

	var incr Expr
	if !p.check(TokRightParen) {
		i, err := p.parseExpr(bpLowest)
		if err != nil {
			return nil, err
		}
		incr = i
	}
	if _, err := p.expect(TokRightParen, "after for clauses"); err != nil {
		return nil, err
	}

	open, err := p.expect(TokLeftBrace, "before loop body")
	if err != nil {
		return nil, err
	}
	body, err := p.block(open)
	if err != nil {
		return nil, err
	}
	if incr != nil {
		body.Stmts = append(body.Stmts, &ExpressionStmt{stmt: p.s(incr.Pos()), Expr: incr})
	}
	if cond == nil {
		cond = &BoolLit{expr: p.e(kw.Line), Value: true}
	}

	var loop Stmt = &WhileStmt{stmt: p.s(kw.Line), Cond: cond, Body: body}
	if first == nil {
		return loop, nil
	}
	return &BlockStmt{stmt: p.s(kw.Line), Stmts: []Stmt{first, loop}}, nil
}

func (p *Parser) classDecl(kw Token) (Stmt, error) {
	name, err := p.expect(TokSymbol, "after class")
	if err != nil {
		return nil, err
	}
	class := &ClassStmt{Name: name}
	if p.match(TokLess) {
		super, err := p.expect(TokSymbol, "after '<'")
		if err != nil {
			return nil, err
		}
		class.Superclass = &Identifier{expr: p.e(super.Line), Name: super}
	}
	if _, err := p.expect(TokLeftBrace, "before class body"); err != nil {
		return nil, err
	}
	for !p.check(TokRightBrace) {
		p.match(TokFn)
		method, err := p.expect(TokSymbol, "as method name")
		if err != nil {
			return nil, err
		}
		decl, err := p.function(method)
		if err != nil {
			return nil, err
		}
		class.Methods = append(class.Methods, decl)
	}
	p.advance()
	class.stmt = p.s(kw.Line)
	return class, nil
}

// Expressions

func (p *Parser) parseExpr(minBP int) (Expr, error) {
	tok := p.advance()
	rule := rules[tok.Type]
	if rule.prefix == nil {
		return nil, syntaxError(tok.Line, "unexpected %s", describe(tok))
	}
	left, err := rule.prefix(p, tok)
	if err != nil {
		return nil, err
	}
	for {
		next := p.peek()
		rule := rules[next.Type]
		if rule.infix == nil || rule.bp <= minBP {
			return left, nil
		}
		p.advance()
		left, err = rule.infix(p, left, next)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) number(tok Token) (Expr, error) {
	var lit Expr
	switch tok.Type {
	case TokInteger:
		lit = &IntLit{expr: p.e(tok.Line), Value: tok.Literal.(float64)}
	case TokFloat:
		lit = &FloatLit{expr: p.e(tok.Line), Value: tok.Literal.(float64)}
	case TokFraction:
		lit = &FractionLit{expr: p.e(tok.Line), Value: tok.Literal.(cas.Fraction)}
	case TokScientific:
		lit = &ScientificLit{expr: p.e(tok.Line), Value: tok.Literal.(Exponential)}
	case TokBigInteger:
		lit = &BigIntLit{expr: p.e(tok.Line), Value: tok.Literal.(*big.Int)}
	}

	// 2x, 2sin(x) and 2(x + 1) multiply implicitly.
	if !p.check(TokLeftParen) && !p.check(TokNative) && !p.check(TokSymbol) {
		return lit, nil
	}
	right, err := p.parseExpr(bpImplicit)
	if err != nil {
		return nil, err
	}
	star := Token{Type: TokStar, Lexeme: "*", Line: tok.Line}
	product := &AlgebraicBinary{expr: p.e(tok.Line), Binary: Binary{Left: lit, Op: star, Right: right}}
	return &GroupExpr{expr: p.e(tok.Line), Inner: product}, nil
}

func (p *Parser) literal(tok Token) (Expr, error) {
	x := p.e(tok.Line)
	switch tok.Type {
	case TokNumericConstant:
		return &NumericConstantLit{expr: x, Name: tok.Lexeme, Value: tok.Literal.(float64)}, nil
	case TokString:
		return &StringLit{expr: x, Value: tok.Literal.(string)}, nil
	case TokBoolean:
		return &BoolLit{expr: x, Value: tok.Literal.(bool)}, nil
	case TokNil:
		return &NilLit{expr: x}, nil
	case TokNaN:
		return &NaNLit{expr: x}, nil
	case TokInf:
		return &InfLit{expr: x}, nil
	case TokAlgebraString:
		return &AlgebraStringLit{expr: x, Value: tok.Literal.(cas.Expr)}, nil
	}
	return nil, syntaxError(tok.Line, "unexpected %s", describe(tok))
}

func (p *Parser) identifier(tok Token) (Expr, error) {
	return &Identifier{expr: p.e(tok.Line), Name: tok}, nil
}

func (p *Parser) this(tok Token) (Expr, error) {
	return &ThisExpr{expr: p.e(tok.Line), Keyword: tok}, nil
}

func (p *Parser) super(tok Token) (Expr, error) {
	if _, err := p.expect(TokDot, "after super"); err != nil {
		return nil, err
	}
	method, err := p.expect(TokSymbol, "as superclass method name")
	if err != nil {
		return nil, err
	}
	return &SuperExpr{expr: p.e(tok.Line), Keyword: tok, Method: method}, nil
}

func (p *Parser) native(tok Token) (Expr, error) {
	if _, err := p.expect(TokLeftParen, "after "+tok.Lexeme); err != nil {
		return nil, err
	}
	args, err := p.args(TokRightParen)
	if err != nil {
		return nil, err
	}
	def, _ := lookupNative(tok.Lexeme)
	if !def.Accepts(len(args)) {
		if def.Arity == Variadic {
			return nil, syntaxError(tok.Line, "%s expects at least one argument", tok.Lexeme)
		}
		return nil, syntaxError(tok.Line, "%s expects %d argument(s), got %d", tok.Lexeme, def.Arity, len(args))
	}
	return &NativeCall{expr: p.e(tok.Line), Name: tok, Args: args}, nil
}

func (p *Parser) list(tok Token) (Expr, error) {
	if _, err := p.expect(TokLeftParen, "after list"); err != nil {
		return nil, err
	}
	elems, err := p.args(TokRightParen)
	if err != nil {
		return nil, err
	}
	return &TupleExpr{expr: p.e(tok.Line), Elems: elems}, nil
}

// args parses comma-separated expressions up to and including close.
func (p *Parser) args(close TokenType) ([]Expr, error) {
	var args []Expr
	for !p.check(close) {
		arg, err := p.parseExpr(bpLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(TokComma) {
			break
		}
	}
	if _, err := p.expect(close, "to close argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) unary(tok Token) (Expr, error) {
	bp := bpImplicit
	if tok.Type == TokNot {
		bp = bpNot
	}
	operand, err := p.parseExpr(bp)
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case TokMinus:
		return &Negate{expr: p.e(tok.Line), Operand: operand}, nil
	case TokPlus:
		return &Positivize{expr: p.e(tok.Line), Operand: operand}, nil
	}
	return &NotExpr{expr: p.e(tok.Line), Operand: operand}, nil
}

// group parses a parenthesized expression or a tuple.
func (p *Parser) group(open Token) (Expr, error) {
	if p.match(TokRightParen) {
		return &TupleExpr{expr: p.e(open.Line)}, nil
	}
	inner, err := p.parseExpr(bpLowest)
	if err != nil {
		return nil, err
	}
	if p.check(TokComma) {
		elems := []Expr{inner}
		for p.match(TokComma) && !p.check(TokRightParen) {
			e, err := p.parseExpr(bpLowest)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(TokRightParen, "to close tuple"); err != nil {
			return nil, err
		}
		return &TupleExpr{expr: p.e(open.Line), Elems: elems}, nil
	}
	if _, err := p.expect(TokRightParen, "to close group"); err != nil {
		return nil, err
	}
	return &GroupExpr{expr: p.e(open.Line), Inner: inner}, nil
}

// vector parses [a, b, ...], which is a matrix when every element is itself
// a vector.
func (p *Parser) vector(open Token) (Expr, error) {
	elems, err := p.args(TokRightBracket)
	if err != nil {
		return nil, err
	}
	rows := make([]*VectorExpr, 0, len(elems))
	for _, e := range elems {
		row, ok := e.(*VectorExpr)
		if !ok {
			return &VectorExpr{expr: p.e(open.Line), Elems: elems}, nil
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return &VectorExpr{expr: p.e(open.Line)}, nil
	}
	for _, row := range rows[1:] {
		if len(row.Elems) != len(rows[0].Elems) {
			return nil, syntaxError(open.Line, "matrix rows must have the same length")
		}
	}
	return &MatrixExpr{expr: p.e(open.Line), Rows: rows}, nil
}

// implicitGroup reports whether a parenthesized expression followed by
// another group multiplies rather than calls.
func implicitGroup(e Expr) bool {
	g, ok := e.(*GroupExpr)
	if !ok {
		return false
	}
	switch g.Inner.(type) {
	case *AlgebraicBinary, *Negate, *IntLit, *FloatLit, *FractionLit,
		*ScientificLit, *BigIntLit, *NumericConstantLit, *NativeCall, *GroupExpr:
		return true
	}
	return false
}

func (p *Parser) call(left Expr, open Token) (Expr, error) {
	if implicitGroup(left) {
		right, err := p.group(open)
		if err != nil {
			return nil, err
		}
		star := Token{Type: TokStar, Lexeme: "*", Line: open.Line}
		return &AlgebraicBinary{expr: p.e(open.Line), Binary: Binary{Left: left, Op: star, Right: right}}, nil
	}
	args, err := p.args(TokRightParen)
	if err != nil {
		return nil, err
	}
	return &CallExpr{expr: p.e(open.Line), Callee: left, Args: args}, nil
}

func (p *Parser) index(left Expr, open Token) (Expr, error) {
	idx, err := p.parseExpr(bpLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRightBracket, "after index"); err != nil {
		return nil, err
	}
	return &IndexExpr{expr: p.e(open.Line), Target: left, Index: idx}, nil
}

func (p *Parser) get(left Expr, dot Token) (Expr, error) {
	name, err := p.expect(TokSymbol, "after '.'")
	if err != nil {
		return nil, err
	}
	return &GetExpr{expr: p.e(dot.Line), Object: left, Name: name}, nil
}

func (p *Parser) factorial(left Expr, tok Token) (Expr, error) {
	return &Factorial{expr: p.e(tok.Line), Operand: left}, nil
}

// tick desugars x++ and x-- into assignments.
func (p *Parser) tick(left Expr, tok Token) (Expr, error) {
	op := Token{Type: TokPlus, Lexeme: "+", Line: tok.Line}
	if tok.Type == TokMinusMinus {
		op = Token{Type: TokMinus, Lexeme: "-", Line: tok.Line}
	}
	one := &IntLit{expr: p.e(tok.Line), Value: 1}
	return p.assignTo(left, tok, &AlgebraicBinary{expr: p.e(tok.Line), Binary: Binary{Left: left, Op: op, Right: one}})
}

var compoundOps = map[TokenType]Token{
	TokPlusEqual:  {Type: TokPlus, Lexeme: "+"},
	TokMinusEqual: {Type: TokMinus, Lexeme: "-"},
	TokStarEqual:  {Type: TokStar, Lexeme: "*"},
	TokSlashEqual: {Type: TokSlash, Lexeme: "/"},
}

func (p *Parser) assign(left Expr, tok Token) (Expr, error) {
	value, err := p.parseExpr(bpAssign - 1)
	if err != nil {
		return nil, err
	}
	if op, ok := compoundOps[tok.Type]; ok {
		op.Line = tok.Line
		value = &AlgebraicBinary{expr: p.e(tok.Line), Binary: Binary{Left: left, Op: op, Right: value}}
	}
	return p.assignTo(left, tok, value)
}

func (p *Parser) assignTo(target Expr, tok Token, value Expr) (Expr, error) {
	switch t := target.(type) {
	case *Identifier:
		return &Assignment{expr: p.e(tok.Line), Name: t.Name, Value: value}, nil
	case *GetExpr:
		return &SetExpr{expr: p.e(tok.Line), Object: t.Object, Name: t.Name, Value: value}, nil
	}
	return nil, syntaxError(tok.Line, "invalid assignment target before %s", describe(tok))
}

func (p *Parser) binary(left Expr, op Token) (Expr, error) {
	bp := rules[op.Type].bp
	if rightAssoc(op.Type) {
		bp--
	}
	right, err := p.parseExpr(bp)
	if err != nil {
		return nil, err
	}
	x := p.e(op.Line)
	b := Binary{Left: left, Op: op, Right: right}
	switch op.Type {
	case TokAmpersand:
		return &StringConcat{expr: x, Binary: b}, nil
	case TokDotAdd, TokDotMinus, TokDotStar, TokDotCaret, TokAt:
		return &VectorBinary{expr: x, Binary: b}, nil
	case TokPoundPlus, TokPoundMinus, TokPoundStar:
		return &MatrixBinary{expr: x, Binary: b}, nil
	case TokEqualEqual, TokBangEqual, TokLess, TokGreater, TokLessEqual, TokGreaterEqual:
		return &RelationalBinary{expr: x, Binary: b}, nil
	case TokAnd, TokOr, TokNand, TokNor, TokXor, TokXnor:
		return &LogicalBinary{expr: x, Binary: b}, nil
	}
	return &AlgebraicBinary{expr: x, Binary: b}, nil
}

package cas

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

type algTokenKind int

const (
	algEOF algTokenKind = iota
	algInt
	algReal
	algIdent
	algOp
)

type algToken struct {
	kind algTokenKind
	text string
	pos  int
}

// algLexer splits an algebra string into numbers, identifiers and operators.
type algLexer struct {
	src string
	pos int
}

var algOps = []string{"!=", "<=", ">=", "+", "-", "*", "/", "^", "!", "(", ")", ",", "=", "<", ">", "[", "]"}

func (l *algLexer) next() (algToken, error) {
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += w
	}
	if l.pos >= len(l.src) {
		return algToken{kind: algEOF, pos: l.pos}, nil
	}
	start := l.pos
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	switch {
	case isDigit(r):
		kind := algInt
		for l.pos < len(l.src) && isDigit(rune(l.src[l.pos])) {
			l.pos++
		}
		if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(rune(l.src[l.pos+1])) {
			kind = algReal
			l.pos++
			for l.pos < len(l.src) && isDigit(rune(l.src[l.pos])) {
				l.pos++
			}
		}
		return algToken{kind: kind, text: l.src[start:l.pos], pos: start}, nil
	case isIdentStart(r):
		l.pos += w
		for l.pos < len(l.src) {
			r, w := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentStart(r) && !isDigit(r) {
				break
			}
			l.pos += w
		}
		return algToken{kind: algIdent, text: l.src[start:l.pos], pos: start}, nil
	}
	for _, op := range algOps {
		if len(l.src)-l.pos >= len(op) && l.src[l.pos:l.pos+len(op)] == op {
			l.pos += len(op)
			return algToken{kind: algOp, text: op, pos: start}, nil
		}
	}
	return algToken{}, &ParseError{Source: l.src, Pos: start, Msg: "unexpected character " + strconv.QuoteRune(r)}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$' || isMathSymbol(r)
}

// isMathSymbol reports whether r lies in the letterlike, mathematical
// operator or mathematical alphanumeric blocks.
func isMathSymbol(r rune) bool {
	return (r >= 0x2100 && r <= 0x214F) ||
		(r >= 0x2200 && r <= 0x22FF) ||
		(r >= 0x1D400 && r <= 0x1D7FF)
}

// IsIdentStart reports whether r can begin an identifier.
func IsIdentStart(r rune) bool { return isIdentStart(r) }

type algParser struct {
	lex  *algLexer
	tok  algToken
	prev algToken
}

// Parse reads an algebra string such as "3x^2 + sin(x)" into an unsimplified
// expression tree. Juxtaposing a number or closing parenthesis with a symbol
// or an opening parenthesis multiplies them.
func Parse(src string) (Expr, error) {
	p := &algParser{lex: &algLexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == algEOF {
		return nil, p.errorf("empty expression")
	}
	e, err := p.equality()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != algEOF {
		return nil, p.errorf("unexpected " + strconv.Quote(p.tok.text))
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *algParser) advance() error {
	p.prev = p.tok
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *algParser) errorf(msg string) error {
	return &ParseError{Source: p.lex.src, Pos: p.tok.pos, Msg: msg}
}

func (p *algParser) isOp(ops ...string) bool {
	if p.tok.kind != algOp {
		return false
	}
	for _, op := range ops {
		if p.tok.text == op {
			return true
		}
	}
	return false
}

func (p *algParser) expect(op string) error {
	if !p.isOp(op) {
		return p.errorf("expected " + strconv.Quote(op))
	}
	return p.advance()
}

func (p *algParser) equality() (Expr, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if p.isOp("=", "!=") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		if op == "=" {
			return &Equation{Left: left, Right: right}, nil
		}
		return &Relation{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *algParser) comparison() (Expr, error) {
	left, err := p.addition()
	if err != nil {
		return nil, err
	}
	if p.isOp("<", ">", "<=", ">=") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.addition()
		if err != nil {
			return nil, err
		}
		return &Relation{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *algParser) addition() (Expr, error) {
	return p.nary("+", p.subtraction, func(es []Expr) Expr { return &Sum{Terms: es} })
}

func (p *algParser) subtraction() (Expr, error) {
	return p.nary("-", p.multiplication, func(es []Expr) Expr { return &Difference{Terms: es} })
}

func (p *algParser) multiplication() (Expr, error) {
	return p.nary("*", p.implicit, func(es []Expr) Expr { return &Product{Factors: es} })
}

func (p *algParser) nary(op string, operand func() (Expr, error), build func([]Expr) Expr) (Expr, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	es := []Expr{first}
	for p.isOp(op) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := operand()
		if err != nil {
			return nil, err
		}
		es = append(es, e)
	}
	if len(es) == 1 {
		return first, nil
	}
	return build(es), nil
}

func (p *algParser) implicit() (Expr, error) {
	first, err := p.division()
	if err != nil {
		return nil, err
	}
	es := []Expr{first}
	for p.juxtaposed() {
		e, err := p.division()
		if err != nil {
			return nil, err
		}
		es = append(es, e)
	}
	if len(es) == 1 {
		return first, nil
	}
	return &Product{Factors: es}, nil
}

// juxtaposed reports whether the previous token was a number or ")" and the
// current one starts a symbol or a parenthesized group.
func (p *algParser) juxtaposed() bool {
	prevOK := p.prev.kind == algInt || p.prev.kind == algReal ||
		(p.prev.kind == algOp && p.prev.text == ")")
	return prevOK && (p.tok.kind == algIdent || p.isOp("("))
}

func (p *algParser) division() (Expr, error) {
	left, err := p.negation()
	if err != nil {
		return nil, err
	}
	for p.isOp("/") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.negation()
		if err != nil {
			return nil, err
		}
		left = &Quotient{Dividend: left, Divisor: right}
	}
	return left, nil
}

func (p *algParser) negation() (Expr, error) {
	if !p.isOp("-") {
		return p.exponent()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.negation()
	if err != nil {
		return nil, err
	}
	switch n := operand.(type) {
	case *Int:
		return NewInt(-n.N), nil
	case *Real:
		return NewReal(-n.F), nil
	}
	return &Difference{Terms: []Expr{operand}}, nil
}

func (p *algParser) exponent() (Expr, error) {
	base, err := p.factorial()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	exp, err := p.negation()
	if err != nil {
		return nil, err
	}
	return &Power{Base: base, Exp: exp}, nil
}

func (p *algParser) factorial() (Expr, error) {
	e, err := p.call()
	if err != nil {
		return nil, err
	}
	for p.isOp("!") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e = NewCall("!", e)
	}
	return e, nil
}

func (p *algParser) call() (Expr, error) {
	if p.tok.kind != algIdent {
		return p.primary()
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if !p.isOp("(") {
		return NewSym(name), nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	args, err := p.list(")")
	if err != nil {
		return nil, err
	}
	return NewCall(name, args...), nil
}

func (p *algParser) list(closer string) ([]Expr, error) {
	var args []Expr
	for !p.isOp(closer) {
		arg, err := p.equality()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.isOp(",") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, p.expect(closer)
}

func (p *algParser) primary() (Expr, error) {
	tok := p.tok
	switch {
	case tok.kind == algInt:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf("integer out of range")
		}
		return NewInt(n), p.advance()
	case tok.kind == algReal:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorf("malformed number")
		}
		return NewReal(f), p.advance()
	case p.isOp("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.equality()
		if err != nil {
			return nil, err
		}
		return e, p.expect(")")
	case p.isOp("["):
		if err := p.advance(); err != nil {
			return nil, err
		}
		elems, err := p.list("]")
		if err != nil {
			return nil, err
		}
		return &List{Elems: elems}, nil
	case tok.kind == algEOF:
		return nil, p.errorf("unexpected end of expression")
	}
	return nil, p.errorf("unexpected " + strconv.Quote(tok.text))
}

package rune

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ketiboldiais/amicus/pkg/cas"
)

// Lexer scans Rune source into tokens. The first failure is sticky: every
// later call to Scan returns the same error token.
type Lexer struct {
	src   string
	start int // start index of the current token
	cur   int // current index
	line  int // 1-based
	err   *Error
	fail  Token
}

// NewLexer creates a lexer over source.
func NewLexer(source string) *Lexer {
	return &Lexer{src: source, line: 1}
}

// Err returns the sticky error, if scanning has failed.
func (l *Lexer) Err() *Error { return l.err }

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekN(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
	}
	return ch
}

func (l *Lexer) match(ch byte) bool {
	if l.peek() != ch || l.atEnd() {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) token(tt TokenType, lit any) Token {
	return Token{Type: tt, Lexeme: l.src[l.start:l.cur], Literal: lit, Line: l.line}
}

func (l *Lexer) failWith(err *Error) Token {
	l.err = err
	l.fail = Token{Type: TokIllegal, Lexeme: err.Message, Line: err.Line}
	return l.fail
}

func (l *Lexer) errorf(format string, args ...any) Token {
	return l.failWith(lexError(l.line, format, args...))
}

// Scan returns the next token. At the end of input it returns an End token
// on every call.
func (l *Lexer) Scan() Token {
	if l.err != nil {
		return l.fail
	}
	if tok, ok := l.skipTrivia(); !ok {
		return tok
	}
	l.start = l.cur
	if l.atEnd() {
		return Token{Type: TokEnd, Line: l.line}
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
	if isDigit(l.peek()) {
		return l.number()
	}
	if cas.IsIdentStart(r) {
		return l.identifier()
	}

	ch := l.advance()
	switch ch {
	case '(':
		return l.token(TokLeftParen, nil)
	case ')':
		return l.token(TokRightParen, nil)
	case '{':
		return l.token(TokLeftBrace, nil)
	case '}':
		return l.token(TokRightBrace, nil)
	case '[':
		return l.token(TokLeftBracket, nil)
	case ']':
		return l.token(TokRightBracket, nil)
	case ';':
		return l.token(TokSemicolon, nil)
	case ':':
		return l.token(TokColon, nil)
	case ',':
		return l.token(TokComma, nil)
	case '.':
		switch {
		case l.match('+'):
			return l.token(TokDotAdd, nil)
		case l.match('*'):
			return l.token(TokDotStar, nil)
		case l.match('-'):
			return l.token(TokDotMinus, nil)
		case l.match('^'):
			return l.token(TokDotCaret, nil)
		}
		return l.token(TokDot, nil)
	case '+':
		switch {
		case l.match('+'):
			return l.token(TokPlusPlus, nil)
		case l.match('='):
			return l.token(TokPlusEqual, nil)
		}
		return l.token(TokPlus, nil)
	case '-':
		switch {
		case l.match('-'):
			return l.token(TokMinusMinus, nil)
		case l.match('='):
			return l.token(TokMinusEqual, nil)
		}
		return l.token(TokMinus, nil)
	case '*':
		switch {
		case l.match('*'):
			return l.token(TokStarStar, nil)
		case l.match('='):
			return l.token(TokStarEqual, nil)
		}
		return l.token(TokStar, nil)
	case '/':
		if l.match('=') {
			return l.token(TokSlashEqual, nil)
		}
		return l.token(TokSlash, nil)
	case '^':
		return l.token(TokCaret, nil)
	case '%':
		return l.token(TokPercent, nil)
	case '!':
		if l.match('=') {
			return l.token(TokBangEqual, nil)
		}
		return l.token(TokBang, nil)
	case '|':
		return l.token(TokVBar, nil)
	case '~':
		return l.token(TokTilde, nil)
	case '=':
		if l.match('=') {
			return l.token(TokEqualEqual, nil)
		}
		return l.token(TokEqual, nil)
	case '<':
		if l.match('=') {
			return l.token(TokLessEqual, nil)
		}
		return l.token(TokLess, nil)
	case '>':
		if l.match('=') {
			return l.token(TokGreaterEqual, nil)
		}
		return l.token(TokGreater, nil)
	case '&':
		return l.token(TokAmpersand, nil)
	case '@':
		return l.token(TokAt, nil)
	case '#':
		switch {
		case l.match('+'):
			return l.token(TokPoundPlus, nil)
		case l.match('-'):
			return l.token(TokPoundMinus, nil)
		case l.match('*'):
			return l.token(TokPoundStar, nil)
		case isDigit(l.peek()):
			return l.bigInteger()
		}
		return l.errorf("expected digits or a matrix operator after %q", "#")
	case '"':
		return l.stringLiteral()
	case '\'':
		return l.algebraString()
	}
	return l.errorf("unrecognized character %q", l.src[l.start:l.cur])
}

// skipTrivia skips whitespace and comments. It reports false with an error
// token when a block comment is unterminated.
func (l *Lexer) skipTrivia() (Token, bool) {
	for !l.atEnd() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case strings.HasPrefix(l.src[l.cur:], "---"):
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case strings.HasPrefix(l.src[l.cur:], "==="):
			l.cur += 3
			for {
				if l.atEnd() {
					return l.errorf("unterminated block comment"), false
				}
				if strings.HasPrefix(l.src[l.cur:], "===") {
					l.cur += 3
					break
				}
				l.advance()
			}
		default:
			return Token{}, true
		}
	}
	return Token{}, true
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (l *Lexer) number() Token {
	if l.peek() == '0' {
		switch l.peekN(1) {
		case 'b':
			return l.radixInteger(2)
		case 'o':
			return l.radixInteger(8)
		case 'x':
			return l.radixInteger(16)
		}
	}

	if !l.digitGroups() {
		return l.errorf("digit separators must separate groups of three digits in %q", l.src[l.start:l.cur])
	}
	tt := TokInteger

	if l.peek() == '.' && isDigit(l.peekN(1)) {
		tt = TokFloat
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if tt == TokInteger && l.peek() == '|' && isDigit(l.peekN(1)) {
		return l.fraction()
	}

	mantissa, err := strconv.ParseFloat(strings.ReplaceAll(l.src[l.start:l.cur], "_", ""), 64)
	if err != nil {
		return l.errorf("malformed number %q", l.src[l.start:l.cur])
	}

	if l.peek() == 'E' && (isDigit(l.peekN(1)) || ((l.peekN(1) == '+' || l.peekN(1) == '-') && isDigit(l.peekN(2)))) {
		l.advance()
		expStart := l.cur
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
		exp, err := strconv.Atoi(l.src[expStart:l.cur])
		if err != nil {
			return l.errorf("malformed exponent in %q", l.src[l.start:l.cur])
		}
		return l.token(TokScientific, Exponential{Mantissa: mantissa, Exp: exp})
	}

	return l.token(tt, mantissa)
}

// digitGroups consumes an integer part, validating "_" separators: the
// leading group has one to three digits and every later group exactly three.
func (l *Lexer) digitGroups() bool {
	first := 0
	for isDigit(l.peek()) {
		l.advance()
		first++
	}
	if l.peek() != '_' {
		return true
	}
	ok := first <= 3
	for l.peek() == '_' {
		l.advance()
		n := 0
		for isDigit(l.peek()) {
			l.advance()
			n++
		}
		if n != 3 {
			ok = false
		}
	}
	return ok
}

func (l *Lexer) fraction() Token {
	num, err := strconv.ParseInt(strings.ReplaceAll(l.src[l.start:l.cur], "_", ""), 10, 64)
	if err != nil {
		return l.errorf("fraction numerator out of range in %q", l.src[l.start:l.cur])
	}
	l.advance() // '|'
	denStart := l.cur
	for isDigit(l.peek()) {
		l.advance()
	}
	den, err := strconv.ParseInt(l.src[denStart:l.cur], 10, 64)
	if err != nil {
		return l.errorf("fraction denominator out of range in %q", l.src[l.start:l.cur])
	}
	return l.token(TokFraction, cas.NewFraction(num, den))
}

func (l *Lexer) radixInteger(base int) Token {
	l.cur += 2
	digitsStart := l.cur
	for isRadixDigit(l.peek(), base) {
		l.advance()
	}
	if l.cur == digitsStart {
		return l.errorf("expected base-%d digits after %q", base, l.src[l.start:l.cur])
	}
	n, err := strconv.ParseUint(l.src[digitsStart:l.cur], base, 64)
	if err != nil {
		return l.errorf("integer %q out of range", l.src[l.start:l.cur])
	}
	return l.token(TokInteger, float64(n))
}

func isRadixDigit(ch byte, base int) bool {
	switch base {
	case 2:
		return ch == '0' || ch == '1'
	case 8:
		return ch >= '0' && ch <= '7'
	}
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func (l *Lexer) bigInteger() Token {
	digitsStart := l.cur
	for isDigit(l.peek()) {
		l.advance()
	}
	n, ok := new(big.Int).SetString(l.src[digitsStart:l.cur], 10)
	if !ok {
		return l.errorf("malformed big integer %q", l.src[l.start:l.cur])
	}
	return l.token(TokBigInteger, n)
}

func (l *Lexer) stringLiteral() Token {
	var buf strings.Builder
	for {
		if l.atEnd() {
			return l.errorf("unterminated string")
		}
		ch := l.advance()
		switch ch {
		case '"':
			return l.token(TokString, buf.String())
		case '\\':
			if l.atEnd() {
				return l.errorf("unterminated string")
			}
			switch esc := l.advance(); esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case '"', '\\':
				buf.WriteByte(esc)
			default:
				buf.WriteByte('\\')
				buf.WriteByte(esc)
			}
		default:
			buf.WriteByte(ch)
		}
	}
}

func (l *Lexer) algebraString() Token {
	contentStart := l.cur
	for !l.atEnd() && l.peek() != '\'' {
		l.advance()
	}
	if l.atEnd() {
		return l.errorf("unterminated algebra string")
	}
	content := l.src[contentStart:l.cur]
	l.advance() // closing quote
	expr, err := cas.Parse(content)
	if err != nil {
		return l.failWith(syntaxError(l.line, "%s", err))
	}
	return l.token(TokAlgebraString, expr)
}

func (l *Lexer) identifier() Token {
	for !l.atEnd() {
		r, w := utf8.DecodeRuneInString(l.src[l.cur:])
		if !cas.IsIdentStart(r) && !unicode.IsDigit(r) {
			break
		}
		l.cur += w
	}
	word := l.src[l.start:l.cur]
	if tt, ok := keywords[word]; ok {
		if tt == TokBoolean {
			return l.token(tt, word == "true")
		}
		return l.token(tt, nil)
	}
	if v, ok := numericConstants[word]; ok {
		return l.token(TokNumericConstant, v)
	}
	if _, ok := lookupNative(word); ok {
		return l.token(TokNative, nil)
	}
	return l.token(TokSymbol, nil)
}

// Stream scans source to the end, dropping any comma that directly precedes
// a closing delimiter. It stops at the first error.
func Stream(source string) ([]Token, error) {
	l := NewLexer(source)
	var raw []Token
	for {
		tok := l.Scan()
		if tok.Type == TokIllegal {
			return nil, l.Err()
		}
		raw = append(raw, tok)
		if tok.Type == TokEnd {
			break
		}
	}
	out := make([]Token, 0, len(raw))
	for i, tok := range raw {
		if tok.Type == TokComma && i+1 < len(raw) &&
			raw[i+1].Is(TokRightParen, TokRightBracket, TokRightBrace) {
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

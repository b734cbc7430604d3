package cas

import (
	"fmt"

	"github.com/pkg/errors"
)

// AlgebraError is raised for semantic failures inside the algebra engine,
// such as unsupported complex arithmetic or operands of the wrong kind.
type AlgebraError struct {
	Inner error
}

func (e *AlgebraError) Error() string { return e.Inner.Error() }

func (e *AlgebraError) Unwrap() error { return e.Inner }

func algebraErrorf(format string, args ...any) error {
	return &AlgebraError{Inner: errors.Errorf(format, args...)}
}

// Defined returns u unchanged, or an *AlgebraError naming op and carrying
// the reason when u is Undefined. errors.Cause recovers the bare reason.
func Defined(op string, u Expr) (Expr, error) {
	bad, ok := u.(*Undefined)
	if !ok {
		return u, nil
	}
	reason := bad.Reason
	if reason == "" {
		reason = "result is undefined"
	}
	return nil, &AlgebraError{Inner: errors.Wrapf(errors.New(reason), "%s", op)}
}

// ParseError reports malformed algebra-string syntax.
type ParseError struct {
	Source string
	Pos    int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad algebra string %q at offset %d: %s", e.Source, e.Pos, e.Msg)
}

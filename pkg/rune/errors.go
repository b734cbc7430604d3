package rune

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/ketiboldiais/amicus/pkg/cas"
)

// ErrorKind classifies every failure the engine can surface.
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	TypeError
	RuntimeError
	EnvironmentError
	AlgebraError
	ResolverError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case TypeError:
		return "type error"
	case RuntimeError:
		return "runtime error"
	case EnvironmentError:
		return "environment error"
	case AlgebraError:
		return "algebra error"
	case ResolverError:
		return "resolver error"
	}
	return "error"
}

// article returns the indefinite article for the kind's rendered name.
func (k ErrorKind) article() string {
	switch k {
	case EnvironmentError, AlgebraError:
		return "an"
	}
	return "a"
}

// Error is the structured error returned by every stage of the engine.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("On line %d, %s %s occurred: %s", e.Line, e.Kind.article(), e.Kind, e.Message)
}

func newError(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line}
}

func lexError(line int, format string, args ...any) *Error {
	return newError(LexicalError, line, format, args...)
}

func syntaxError(line int, format string, args ...any) *Error {
	return newError(SyntaxError, line, format, args...)
}

func typeError(line int, format string, args ...any) *Error {
	return newError(TypeError, line, format, args...)
}

func runtimeError(line int, format string, args ...any) *Error {
	return newError(RuntimeError, line, format, args...)
}

func envError(line int, format string, args ...any) *Error {
	return newError(EnvironmentError, line, format, args...)
}

func resolverError(line int, format string, args ...any) *Error {
	return newError(ResolverError, line, format, args...)
}

// algebraError converts a failure from the algebra engine, keeping an
// existing *Error untouched.
func algebraError(line int, err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	var ae *cas.AlgebraError
	if errors.As(err, &ae) {
		return newError(AlgebraError, line, "%s", ae.Inner)
	}
	return newError(AlgebraError, line, "%s", err)
}

var (
	errorHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	errorLocStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Faint(true)
	errorLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	errorCaretStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	errorDimStyle    = lipgloss.NewStyle().Faint(true)
)

// Format renders the error with the offending line of source and up to two
// lines of context on either side.
func (e *Error) Format(filename, source string) string {
	lines := strings.Split(source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return e.Error()
	}

	var result strings.Builder

	fmt.Fprintf(&result, "%s %s\n", errorHeaderStyle.Render(capitalize(e.Kind.String())+":"), e.Message)
	if filename == "" {
		filename = "<input>"
	}
	fmt.Fprintf(&result, "  %s\n", errorLocStyle.Render(fmt.Sprintf("--> %s:%d", filename, e.Line)))
	fmt.Fprintf(&result, " %s\n", errorDimStyle.Render(padLeft("", 3)+" |"))

	startLine := max(1, e.Line-2)
	endLine := min(len(lines), e.Line+2)
	for i := startLine; i <= endLine; i++ {
		num := padLeft(fmt.Sprintf("%d", i), 3)
		if i != e.Line {
			fmt.Fprintf(&result, " %s %s\n", errorDimStyle.Render(num+" |"), lines[i-1])
			continue
		}
		fmt.Fprintf(&result, " %s %s\n", errorLineStyle.Render(num+" |"), lines[i-1])

		text := strings.TrimRight(lines[i-1], " \t")
		indent := len(text) - len(strings.TrimLeft(text, " \t"))
		width := max(1, len(text)-indent)
		fmt.Fprintf(&result, "%s%s\n",
			strings.Repeat(" ", 1+3+3+indent),
			errorCaretStyle.Render(strings.Repeat("^", width)))
	}

	fmt.Fprintf(&result, " %s\n", errorDimStyle.Render(padLeft("", 3)+" |"))
	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

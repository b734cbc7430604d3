package rune

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Engine compiles and runs Rune programs. Every call builds its own lexer,
// parser, resolver and interpreter, so one Engine may serve concurrent
// callers.
type Engine struct {
	cfg Config
}

// New creates an engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Compile lexes, parses, resolves and interprets source in a fresh global
// environment.
func (e *Engine) Compile(ctx context.Context, source string) (Value, error) {
	v, err := e.compile(ctx, source)
	recordCompile(err)
	return v, err
}

func (e *Engine) compile(ctx context.Context, source string) (Value, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed", "statements", len(prog.Stmts), "nodes", prog.NodeCount)

	locals, err := Resolve(prog, true)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved", "locals", len(locals))

	v, err := NewInterpreter(e.cfg).Interpret(ctx, prog, locals)
	if err != nil {
		return nil, err
	}
	slog.Debug("interpreted", "type", v.Type())
	return v, nil
}

// Run is Compile with failures folded into an ErrorValue.
func (e *Engine) Run(ctx context.Context, source string) Value {
	v, err := e.Compile(ctx, source)
	if err != nil {
		return ErrorValue{Err: AsError(err)}
	}
	return v
}

// Tokens returns the token stream of source, one token per line.
func (e *Engine) Tokens(source string) (string, error) {
	toks, err := Stream(source)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, tok := range toks {
		b.WriteString(tok.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// AST returns an indented tree of the parsed program.
func (e *Engine) AST(source string) (string, error) {
	prog, err := Parse(source)
	if err != nil {
		return "", err
	}
	return FormatTree(prog), nil
}

// Compile runs source with the default configuration and returns the
// printed result or the error message.
func Compile(source string) string {
	v, err := New(DefaultConfig()).Compile(context.Background(), source)
	if err != nil {
		return err.Error()
	}
	return v.String()
}

// AsError recovers the *Error in err's chain, classifying anything else as
// a runtime error.
func AsError(err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return &Error{Kind: RuntimeError, Message: err.Error()}
}

// Session evaluates successive inputs against one global environment, as a
// REPL does. Top-level names are looked up dynamically so that later inputs
// see earlier definitions.
type Session struct {
	interp *Interpreter
	nextID NodeID
}

// NewSession starts a session with an empty global environment.
func (e *Engine) NewSession() *Session {
	return &Session{interp: NewInterpreter(e.cfg)}
}

// Eval runs one input in the session.
func (s *Session) Eval(ctx context.Context, source string) (Value, error) {
	v, err := s.eval(ctx, source)
	recordCompile(err)
	return v, err
}

func (s *Session) eval(ctx context.Context, source string) (Value, error) {
	prog, err := ParseFrom(source, s.nextID)
	if err != nil {
		return nil, err
	}
	s.nextID = NodeID(prog.NodeCount)

	locals, err := Resolve(prog, false)
	if err != nil {
		return nil, err
	}
	return s.interp.Interpret(ctx, prog, locals)
}

// Globals returns the session's global environment.
func (s *Session) Globals() *Env { return s.interp.Globals() }

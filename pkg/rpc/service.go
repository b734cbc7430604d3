// Package rpc exposes the Rune engine and the algebra engine as JSON-RPC
// methods.
package rpc

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/ketiboldiais/amicus/pkg/cas"
	"github.com/ketiboldiais/amicus/pkg/ioctx"
	"github.com/ketiboldiais/amicus/pkg/rune"
)

// CodeRuneError is the JSON-RPC error code for a failed Rune program. The
// error's data carries the structured kind and line.
const CodeRuneError jrpc2.Code = -32001

// ErrorData is attached to CodeRuneError responses.
type ErrorData struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type SourceParams struct {
	Source string `json:"source"`
}

type CompileResult struct {
	Value  string `json:"value"`
	Type   string `json:"type"`
	Output string `json:"output,omitempty"`
}

type TextResult struct {
	Text string `json:"text"`
}

type ExprParams struct {
	Expr string `json:"expr"`
}

type DeriveParams struct {
	Expr string `json:"expr"`
	Var  string `json:"var"`
}

type DegreeParams struct {
	Expr string   `json:"expr"`
	Vars []string `json:"vars"`
}

type ExprResult struct {
	Expr string `json:"expr"`
}

// Service serves engine requests. Each request runs in its own engine.
type Service struct {
	cfg rune.Config
}

func NewService(cfg rune.Config) *Service {
	return &Service{cfg: cfg}
}

// Methods returns the method table for a jrpc2 server.
func (s *Service) Methods() handler.Map {
	return handler.Map{
		"compile":  handler.New(s.Compile),
		"tokens":   handler.New(s.Tokens),
		"ast":      handler.New(s.AST),
		"simplify": handler.New(s.Simplify),
		"derive":   handler.New(s.Derive),
		"expand":   handler.New(s.Expand),
		"degree":   handler.New(s.Degree),
	}
}

// Compile runs a program, returning its value and anything it printed.
func (s *Service) Compile(ctx context.Context, p SourceParams) (CompileResult, error) {
	var out bytes.Buffer
	ctx = ioctx.WithStreams(ctx, ioctx.Streams{Out: &out})

	v, err := rune.New(s.cfg).Compile(ctx, p.Source)
	if err != nil {
		return CompileResult{}, runeError(err)
	}
	slog.DebugContext(ctx, "compiled", "type", v.Type())
	return CompileResult{Value: v.String(), Type: v.Type(), Output: out.String()}, nil
}

func (s *Service) Tokens(ctx context.Context, p SourceParams) (TextResult, error) {
	text, err := rune.New(s.cfg).Tokens(p.Source)
	if err != nil {
		return TextResult{}, runeError(err)
	}
	return TextResult{Text: text}, nil
}

func (s *Service) AST(ctx context.Context, p SourceParams) (TextResult, error) {
	text, err := rune.New(s.cfg).AST(p.Source)
	if err != nil {
		return TextResult{}, runeError(err)
	}
	return TextResult{Text: text}, nil
}

func (s *Service) Simplify(ctx context.Context, p ExprParams) (ExprResult, error) {
	u, err := parseExpr(p.Expr)
	if err != nil {
		return ExprResult{}, err
	}
	return ExprResult{Expr: cas.Simplify(u).String()}, nil
}

func (s *Service) Expand(ctx context.Context, p ExprParams) (ExprResult, error) {
	u, err := parseExpr(p.Expr)
	if err != nil {
		return ExprResult{}, err
	}
	return ExprResult{Expr: cas.Expand(u).String()}, nil
}

func (s *Service) Derive(ctx context.Context, p DeriveParams) (ExprResult, error) {
	u, err := parseExpr(p.Expr)
	if err != nil {
		return ExprResult{}, err
	}
	if p.Var == "" {
		return ExprResult{}, jrpc2.Errorf(jrpc2.InvalidParams, "missing variable")
	}
	return ExprResult{Expr: cas.Derive(u, cas.NewSym(p.Var)).String()}, nil
}

func (s *Service) Degree(ctx context.Context, p DegreeParams) (ExprResult, error) {
	u, err := parseExpr(p.Expr)
	if err != nil {
		return ExprResult{}, err
	}
	if len(p.Vars) == 0 {
		return ExprResult{}, jrpc2.Errorf(jrpc2.InvalidParams, "missing variables")
	}
	vars := make([]cas.Expr, len(p.Vars))
	for i, name := range p.Vars {
		if vars[i], err = parseExpr(name); err != nil {
			return ExprResult{}, err
		}
	}
	return ExprResult{Expr: cas.GPEDeg(u, vars).String()}, nil
}

func parseExpr(src string) (cas.Expr, error) {
	u, err := cas.Parse(src)
	if err != nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "%v", err)
	}
	return u, nil
}

func runeError(err error) error {
	var re *rune.Error
	if !errors.As(err, &re) {
		return err
	}
	return jrpc2.Errorf(CodeRuneError, "%s", re.Error()).WithData(ErrorData{
		Kind:    re.Kind.String(),
		Line:    re.Line,
		Message: re.Message,
	})
}

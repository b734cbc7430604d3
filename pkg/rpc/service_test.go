package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ketiboldiais/amicus/pkg/rune"
)

func newClient(t *testing.T) *jrpc2.Client {
	t.Helper()
	loc := server.NewLocal(NewService(rune.DefaultConfig()).Methods(), nil)
	t.Cleanup(func() { loc.Close() })
	return loc.Client
}

func TestCompile(t *testing.T) {
	ctx := context.Background()
	cli := newClient(t)

	var res CompileResult
	require.NoError(t, cli.CallResult(ctx, "compile", SourceParams{Source: "let x = 2; x^3"}, &res))
	assert.Equal(t, "8", res.Value)
	assert.Equal(t, "number", res.Type)

	res = CompileResult{}
	require.NoError(t, cli.CallResult(ctx, "compile", SourceParams{Source: `print "hi"; print 1|2;`}, &res))
	assert.Equal(t, "hi\n1|2", res.Value)
	assert.Equal(t, "hi\n1|2\n", res.Output)
}

func TestCompileError(t *testing.T) {
	ctx := context.Background()
	cli := newClient(t)

	var res CompileResult
	err := cli.CallResult(ctx, "compile", SourceParams{Source: "let x = 1;\nx = 2;"}, &res)
	require.Error(t, err)

	var rpcErr *jrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, CodeRuneError, rpcErr.Code)

	var data ErrorData
	require.NoError(t, json.Unmarshal(rpcErr.Data, &data))
	assert.Equal(t, "environment error", data.Kind)
	assert.Equal(t, 2, data.Line)
	assert.Contains(t, data.Message, "immutable binding")
}

func TestTokensAndAST(t *testing.T) {
	ctx := context.Background()
	cli := newClient(t)

	var toks TextResult
	require.NoError(t, cli.CallResult(ctx, "tokens", SourceParams{Source: "1"}, &toks))
	assert.Equal(t, "integer \"1\" 1\nend \"\"\n", toks.Text)

	var tree TextResult
	require.NoError(t, cli.CallResult(ctx, "ast", SourceParams{Source: "print 1;"}, &tree))
	assert.Equal(t, "program\n  print_stmt\n    expr: int_lit value=1\n", tree.Text)
}

func TestAlgebra(t *testing.T) {
	ctx := context.Background()
	cli := newClient(t)

	tests := []struct {
		method string
		params any
		want   string
	}{
		{"simplify", ExprParams{Expr: "x + x"}, "2 * x"},
		{"expand", ExprParams{Expr: "(x + 1)^2"}, "1 + 2 * x + x^2"},
		{"derive", DeriveParams{Expr: "x^2", Var: "x"}, "2 * x"},
		{"degree", DegreeParams{Expr: "3*x^2 + x + 1", Vars: []string{"x"}}, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			var res ExprResult
			require.NoError(t, cli.CallResult(ctx, tt.method, tt.params, &res))
			assert.Equal(t, tt.want, res.Expr)
		})
	}
}

func TestAlgebraInvalidParams(t *testing.T) {
	ctx := context.Background()
	cli := newClient(t)

	var res ExprResult
	err := cli.CallResult(ctx, "derive", DeriveParams{Expr: "x^2"}, &res)
	var rpcErr *jrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, jrpc2.InvalidParams, rpcErr.Code)
}

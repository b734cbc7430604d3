package rune

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/ketiboldiais/amicus/pkg/ioctx"
)

// TestErrorMessages runs each testdata/errors/*.rune program and compares
// its printed output followed by the error message against a golden file.
func TestErrorMessages(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "errors", "*.rune"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "no .rune files in testdata/errors")

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".rune")
		t.Run(name, func(t *testing.T) {
			golden.Assert(t, runFile(t, file), filepath.Join("errors", name+".golden"))
		})
	}
}

func runFile(t *testing.T, path string) string {
	src, err := os.ReadFile(path)
	require.NoError(t, err)

	var stdout bytes.Buffer
	ctx := ioctx.WithStreams(context.Background(), ioctx.Streams{Out: &stdout})

	_, err = New(DefaultConfig()).Compile(ctx, string(src))
	require.Error(t, err, "expected %s to fail", path)

	var out bytes.Buffer
	out.Write(stdout.Bytes())
	out.WriteString(err.Error())
	out.WriteByte('\n')
	return out.String()
}

func TestEngineAST(t *testing.T) {
	tree, err := New(DefaultConfig()).AST("let x = 1 + 2;")
	require.NoError(t, err)
	golden.Assert(t, tree, "ast.golden")

	_, err = New(DefaultConfig()).AST("let = 1;")
	require.Error(t, err)
}

func TestEngineTokens(t *testing.T) {
	toks, err := New(DefaultConfig()).Tokens("3/4")
	require.NoError(t, err)
	require.Equal(t, "integer \"3\" 3\n/ \"/\"\ninteger \"4\" 4\nend \"\"\n", toks)
}

func TestCompileReportsErrorsAsText(t *testing.T) {
	require.Equal(t, "7", Compile("fn add(a, b) = a + b; add(3, 4)"))
	require.Equal(t,
		`On line 1, an environment error occurred: undefined variable "nope"`,
		Compile("nope"))
}

func TestErrorFormat(t *testing.T) {
	src := "let a = 1;\nprint a - \"x\";\n"
	_, err := New(DefaultConfig()).Compile(context.Background(), src)
	require.Error(t, err)

	out := AsError(err).Format("main.rune", src)
	require.Contains(t, out, "main.rune:2")
	require.Contains(t, out, `print a - "x";`)
	require.Contains(t, out, "cannot be applied to number and string")
}

func TestAsErrorWrapsForeignErrors(t *testing.T) {
	e := AsError(os.ErrNotExist)
	require.Equal(t, RuntimeError, e.Kind)
	require.Equal(t, os.ErrNotExist.Error(), e.Message)
}

func TestResolveDistances(t *testing.T) {
	for depth := 0; depth <= 5; depth++ {
		src := "let x = 1;" + strings.Repeat("{", depth) + "print x;" + strings.Repeat("}", depth)
		prog, err := Parse(src)
		require.NoError(t, err)

		locals, err := Resolve(prog, true)
		require.NoError(t, err)
		require.Len(t, locals, 1)
		for _, d := range locals {
			require.Equal(t, depth, d)
		}
	}
}

func TestResolveClosures(t *testing.T) {
	prog, err := Parse("fn outer() { let a = 1; fn inner() { return a; } return inner; }")
	require.NoError(t, err)

	locals, err := Resolve(prog, true)
	require.NoError(t, err)

	// a is one function scope above inner's body; inner is read in its own
	// declaring scope.
	found := map[int]int{}
	for _, d := range locals {
		found[d]++
	}
	require.Equal(t, map[int]int{0: 1, 1: 1}, found)
}

func TestResolveWithoutTopLevelScope(t *testing.T) {
	prog, err := Parse("let x = 1; print x;")
	require.NoError(t, err)

	locals, err := Resolve(prog, false)
	require.NoError(t, err)
	require.Empty(t, locals)
}

func TestEngineStats(t *testing.T) {
	ctx := context.Background()
	before := Stats()

	e := New(Config{MaxLoopIterations: 3})
	_, err := e.Compile(ctx, "1 +")
	require.Error(t, err)
	_, err = e.Compile(ctx, "while true { 1; }")
	require.Error(t, err)
	_, err = e.Compile(ctx, "print 1;")
	require.NoError(t, err)
	_, err = e.NewSession().Eval(ctx, "let y = 2;")
	require.NoError(t, err)

	after := Stats()
	require.GreaterOrEqual(t, after["compiles"]-before["compiles"], int64(4))
	require.GreaterOrEqual(t, after["errors.syntax_error"]-before["errors.syntax_error"], int64(1))
	require.GreaterOrEqual(t, after["errors.runtime_error"]-before["errors.runtime_error"], int64(1))
	require.GreaterOrEqual(t, after["loop_ceiling_hits"]-before["loop_ceiling_hits"], int64(1))
}

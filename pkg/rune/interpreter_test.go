package rune

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"

	"github.com/ketiboldiais/amicus/pkg/ioctx"
)

type InterpreterSuite struct{}

func TestInterpreter(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(InterpreterSuite{})
}

type evalCase struct {
	name     string
	input    string
	expected string
}

func runCases(t *testctx.T, tests []evalCase) {
	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			v, err := New(DefaultConfig()).Compile(ctx, tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, v.String())
		})
	}
}

func compileErr(ctx context.Context, t *testctx.T, cfg Config, input string) *Error {
	_, err := New(cfg).Compile(ctx, input)
	require.Error(t, err)
	var re *Error
	require.True(t, errors.As(err, &re), "expected *Error, got %T", err)
	return re
}

func (InterpreterSuite) TestArithmetic(ctx context.Context, t *testctx.T) {
	runCases(t, []evalCase{
		{name: "print sum", input: "let x = 2; print x + 3;", expected: "5"},
		{name: "last expression", input: "1 + 2", expected: "3"},
		{name: "power is right associative", input: "2^3^2", expected: "512"},
		{name: "negation binds below power", input: "-2^2", expected: "-4"},
		{name: "floored mod", input: "-7 mod 3", expected: "2"},
		{name: "remainder", input: "7 % 3", expected: "1"},
		{name: "floor division", input: "7 div 2", expected: "3"},
		{name: "implicit multiplication with symbol", input: "let x = 3; 2x", expected: "6"},
		{name: "implicit multiplication with group", input: "2(3 + 1)", expected: "8"},
		{name: "adjacent groups multiply", input: "(1 + 2)(3)", expected: "9"},
		{name: "factorial", input: "5!", expected: "120"},
		{name: "hex", input: "0xff", expected: "255"},
		{name: "binary", input: "0b101", expected: "5"},
		{name: "separators", input: "1_000_000", expected: "1000000"},
		{name: "scientific literal", input: "1.5E3", expected: "1.5E3"},
		{name: "scientific arithmetic", input: "1.5E3 + 0", expected: "1500"},
		{name: "big integer", input: "#12345678901234567890 + 1", expected: "12345678901234567891"},
	})
}

func (InterpreterSuite) TestFractions(ctx context.Context, t *testctx.T) {
	runCases(t, []evalCase{
		{name: "sum", input: "1|2 + 1|3", expected: "5|6"},
		{name: "integral result", input: "3|4 * 4", expected: "3"},
		{name: "power", input: "(2|3)^2", expected: "4|9"},
		{name: "demoted by a real", input: "1|2 + 0.25", expected: "0.75"},
	})
}

func (InterpreterSuite) TestScopesAndClosures(ctx context.Context, t *testctx.T) {
	runCases(t, []evalCase{
		{
			name:     "arrow function",
			input:    "let x = 10; fn f(a) = a * x; f(4)",
			expected: "40",
		},
		{
			name: "counter closure",
			input: `fn counter() {
  var n = 0;
  fn inc() {
    n = n + 1;
    return n;
  }
  return inc;
}
let c = counter();
c();
c();
print c();`,
			expected: "3",
		},
		{
			name:     "block shadowing",
			input:    "let a = 1; { let a = 2; print a; } print a;",
			expected: "2\n1",
		},
		{
			name:     "missing arguments are nil",
			input:    "fn g(a, b) = b; g(1)",
			expected: "nil",
		},
		{
			name:     "extra arguments are ignored",
			input:    "fn f() { return 1; } f(1, 2)",
			expected: "1",
		},
		{
			name:     "var is mutable",
			input:    "var x = 1; x = 2; x",
			expected: "2",
		},
		{
			name: "recursion",
			input: `fn fib(n) {
  if n < 2 { return n; }
  return fib(n - 1) + fib(n - 2);
}
fib(10)`,
			expected: "55",
		},
	})
}

func (InterpreterSuite) TestControlFlow(ctx context.Context, t *testctx.T) {
	runCases(t, []evalCase{
		{
			name: "for loop",
			input: `var total = 0;
for (var i = 1; i <= 4; i++) {
  total += i;
}
print total;`,
			expected: "10",
		},
		{
			name: "while with if else",
			input: `var n = 0;
var evens = 0;
while n < 10 {
  if n mod 2 == 0 { evens += 1; } else { evens += 0; }
  n++;
}
evens`,
			expected: "5",
		},
		{name: "and", input: "true and false", expected: "false"},
		{name: "or uses truthiness", input: "nil or 3", expected: "true"},
		{name: "xor", input: "true xor true", expected: "false"},
		{name: "not zero", input: "not 0", expected: "true"},
	})
}

func (InterpreterSuite) TestClasses(ctx context.Context, t *testctx.T) {
	runCases(t, []evalCase{
		{
			name: "initializer and method",
			input: `class Point {
  def(x, y) {
    this.x = x;
    this.y = y;
  }
  sum() {
    return this.x + this.y;
  }
}
let p = Point(1, 2);
print p.sum();`,
			expected: "3",
		},
		{
			name: "superclass method",
			input: `class A {
  name() { return "A"; }
}
class B < A {
  name() { return "B" & super.name(); }
}
print B().name();`,
			expected: "BA",
		},
	})
}

func (InterpreterSuite) TestCollections(ctx context.Context, t *testctx.T) {
	runCases(t, []evalCase{
		{name: "concat strings", input: `"foo" & "bar"`, expected: "foobar"},
		{name: "vector add", input: "[1, 2, 3] .+ [4, 5, 6]", expected: "[5, 7, 9]"},
		{name: "dot product", input: "[1, 2] @ [3, 4]", expected: "11"},
		{name: "scale vector", input: "2 * [1, 2]", expected: "[2, 4]"},
		{name: "matrix product", input: "[[1, 2], [3, 4]] #* [[1, 0], [0, 1]]", expected: "[[1, 2], [3, 4]]"},
		{name: "tuple", input: `list(1, "a", 2)`, expected: `(1, "a", 2)`},
		{name: "tuple index", input: "(1, 2)[0]", expected: "1"},
	})
}

func (InterpreterSuite) TestNatives(ctx context.Context, t *testctx.T) {
	runCases(t, []evalCase{
		{name: "sqrt", input: "sqrt(16)", expected: "4"},
		{name: "max", input: "max(1, 5, 3)", expected: "5"},
		{name: "gcd", input: "gcd(12, 18)", expected: "6"},
		{name: "avg", input: "avg(1, 2, 3)", expected: "2"},
		{name: "symbolic sin", input: "sin('x')", expected: "sin(x)"},
		{name: "simplify", input: "simplify('x + x')", expected: "2 * x"},
		{name: "derive", input: "derive('x^2', 'x')", expected: "2 * x"},
		{name: "degree", input: "deg('3*x^2 + x + 1', 'x')", expected: "2"},
		{name: "expand", input: "expand('(x + 1)^2')", expected: "1 + 2 * x + x^2"},
		{name: "lifted arithmetic", input: "let f = 'x^2'; simplify(f + 1)", expected: "1 + x^2"},
	})
}

func (InterpreterSuite) TestErrors(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{name: "self reference", input: "let x = x;", kind: ResolverError},
		{name: "duplicate declaration", input: "let a = 1; let a = 2;", kind: ResolverError},
		{name: "this outside class", input: "this", kind: ResolverError},
		{name: "super outside class", input: "super.x", kind: ResolverError},
		{name: "self inheritance", input: "class A < A {}", kind: ResolverError},
		{name: "immutable assignment", input: "let x = 1; x = 2;", kind: EnvironmentError},
		{name: "undefined variable", input: "print y;", kind: EnvironmentError},
		{name: "native arity", input: "sin(1, 2)", kind: SyntaxError},
		{name: "incomplete expression", input: "1 +", kind: SyntaxError},
		{name: "bad separator", input: "1_00", kind: LexicalError},
		{name: "operand kinds", input: `"a" - 1`, kind: TypeError},
		{name: "derive by a number", input: "derive('x^2', 2)", kind: AlgebraError},
		{name: "degree of a non-polynomial", input: "deg('sin(x)', 'x')", kind: AlgebraError},
		{name: "coefficient of a non-polynomial", input: "coef('x^(1/2)', 'x', 1)", kind: AlgebraError},
		{name: "derivative of an undefined form", input: "derive('1/0', 'x')", kind: AlgebraError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			err := compileErr(ctx, t, DefaultConfig(), tt.input)
			require.Equal(t, tt.kind, err.Kind, err.Error())
			require.Equal(t, 1, err.Line)
		})
	}
}

func (InterpreterSuite) TestLoopCeiling(ctx context.Context, t *testctx.T) {
	err := compileErr(ctx, t, Config{MaxLoopIterations: 10}, "var i = 0; while true { i++; }")
	require.Equal(t, RuntimeError, err.Kind)
	require.Contains(t, err.Message, "10 iterations")
}

func (InterpreterSuite) TestPrintWritesToContext(ctx context.Context, t *testctx.T) {
	var out bytes.Buffer
	ctx = ioctx.WithStreams(ctx, ioctx.Streams{Out: &out})
	v, err := New(DefaultConfig()).Compile(ctx, "print 1; print 2;")
	require.NoError(t, err)
	require.Equal(t, "1\n2", v.String())
	require.Equal(t, "1\n2\n", out.String())
}

func (InterpreterSuite) TestSession(ctx context.Context, t *testctx.T) {
	s := New(DefaultConfig()).NewSession()

	_, err := s.Eval(ctx, "let a = 2;")
	require.NoError(t, err)
	_, err = s.Eval(ctx, "fn twice(n) = n * a;")
	require.NoError(t, err)

	v, err := s.Eval(ctx, "twice(3)")
	require.NoError(t, err)
	require.Equal(t, "6", v.String())
}

func (InterpreterSuite) TestRunFoldsErrors(ctx context.Context, t *testctx.T) {
	v := New(DefaultConfig()).Run(ctx, "let x = x;")
	ev, ok := v.(ErrorValue)
	require.True(t, ok)
	require.Equal(t, ResolverError, ev.Err.Kind)
	require.Equal(t, "On line 1, a resolver error occurred: cannot read \"x\" in its own initializer", Compile("let x = x;"))
}

func (InterpreterSuite) TestAlgebraFailuresNameTheNative(ctx context.Context, t *testctx.T) {
	err := compileErr(ctx, t, DefaultConfig(), "deg('sin(x)', 'x')")
	require.Equal(t, AlgebraError, err.Kind)
	require.Equal(t, "deg: sin(x) is not a polynomial", err.Message)
	require.Equal(t, "On line 1, an algebra error occurred: deg: sin(x) is not a polynomial", Compile("deg('sin(x)', 'x')"))

	v, err2 := New(DefaultConfig()).Compile(ctx, "deg('x^2*(x + 1)', 'x')")
	require.NoError(t, err2)
	require.Equal(t, "3", v.String())
}

package eval

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/parser"
	"github.com/ardnew/brewin/lang/runtime"
	"github.com/ardnew/brewin/log"
)

func globals() *runtime.Environment {
	env := runtime.NewEnvironment(nil)
	for name, fn := range runtime.Builtins() {
		env.Declare(name, fn)
	}

	return env.Child()
}

func run(t *testing.T, src string, opts ...Option) (runtime.Value, string, error) {
	t.Helper()

	prog, err := parser.Parse(context.Background(), src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}

	var out bytes.Buffer

	opts = append([]Option{WithOutput(&out), WithTopLevelReturn(true)}, opts...)
	v, err := New(opts...).Program(context.Background(), prog, globals())

	return v, out.String(), err
}

func TestProgram_Values(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want runtime.Value
	}{
		{"if else", "var x = 3; var y = 4; if (x < y) { x = x + y; } else { x = 0; } return x;", runtime.Integer(7)},
		{"call", "func add(a, b) { return a + b; } return add(2, 3);", runtime.Integer(5)},
		{"while", "var x = 1; while (x < 5) { x = x + 1; } return x;", runtime.Integer(5)},
		{"lexical scope", "var x = 1; func f() { return x; } func g() { var x = 2; return f(); } return g();", runtime.Integer(1)},
		{"closure state", "func mk() { var n = 0; func inc() { n = n + 1; return n; } return inc; } var c = mk(); c(); c(); return c();", runtime.Integer(3)},
		{"independent closures", "func mk() { var n = 0; func inc() { n = n + 1; return n; } return inc; } var a = mk(); var b = mk(); a(); a(); return b();", runtime.Integer(1)},
		{"block shadowing", "var x = 1; { var x = 2; x = 3; } return x;", runtime.Integer(1)},
		{"block assigns outer", "var x = 1; { x = 5; } return x;", runtime.Integer(5)},
		{"hoisting", "return twice(4); func twice(n) { return n * 2; }", runtime.Integer(8)},
		{"mutual recursion", "func even(n) { if (n == 0) return true; return odd(n - 1); } func odd(n) { if (n == 0) return false; return even(n - 1); } return even(10);", runtime.Boolean(true)},
		{"fib", "func fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } return fib(15);", runtime.Integer(610)},
		{"for", "var s = 0; for (var i = 0; i < 5; i = i + 1) { s = s + i; } return s;", runtime.Integer(10)},
		{"for no cond", "var i = 0; for (;;) { i = i + 1; if (i >= 4) return i; }", runtime.Integer(4)},
		{"return from loop", "func f() { var i = 0; while (true) { i = i + 1; if (i == 3) { return i; } } } return f();", runtime.Integer(3)},
		{"fall off", "func f() { } return f();", runtime.Null{}},
		{"bare return", "func f() { return; } return f();", runtime.Null{}},
		{"uninitialized var", "var x; return x;", runtime.Null{}},
		{"assignment value", "var x; var y = (x = 4) + 1; return x + y;", runtime.Integer(9)},
		{"chained assignment", "var a; var b; a = b = 2; return a * b;", runtime.Integer(4)},
		{"floor div", "return -7 / 2;", runtime.Integer(-4)},
		{"floor mod", "return -7 % 3;", runtime.Integer(2)},
		{"floor mod negative divisor", "return 7 % -3;", runtime.Integer(-2)},
		{"int div", "return 7 / 2;", runtime.Integer(3)},
		{"float div", "return 7 / 2.0;", runtime.Float(3.5)},
		{"float mod", "return -7.5 % 2;", runtime.Float(0.5)},
		{"promotion", "return 1 + 0.5;", runtime.Float(1.5)},
		{"wraparound", "return 9223372036854775807 + 1;", runtime.Integer(math.MinInt64)},
		{"concat", `return "a" + "b";`, runtime.String("ab")},
		{"string compare", `return "abc" < "abd";`, runtime.Boolean(true)},
		{"mixed compare", "return 2 >= 1.5;", runtime.Boolean(true)},
		{"int float equal", "return 1 == 1.0;", runtime.Boolean(true)},
		{"nil equal", "return nil == nil;", runtime.Boolean(true)},
		{"nil unequal", "return 0 != nil;", runtime.Boolean(true)},
		{"function identity", "func f() {} var g = f; return f == g;", runtime.Boolean(true)},
		{"short circuit and", "return false && missing;", runtime.Boolean(false)},
		{"short circuit or", "return true || missing();", runtime.Boolean(true)},
		{"not", "return !(1 > 2);", runtime.Boolean(true)},
		{"negate float", "return -(2.5);", runtime.Float(-2.5)},
		{"main", "func forty() { return 40; } func main() { return forty() + 2; }", runtime.Integer(42)},
		{"main with top level code", "func main() { return 1; } var x = 2;", runtime.Unspecified{}},
		{"main with params", "func main(a) { return a; }", runtime.Unspecified{}},
		{"no return", "var x = 1;", runtime.Unspecified{}},
		{"builtin shadowing", "func print(x) { return x; } return print(3);", runtime.Integer(3)},
		{"len", `return len("héllo") + len("");`, runtime.Integer(5)},
		{"str", `return str(1.0) + str(nil);`, runtime.String("1.0nil")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("error: %v", err)
			}

			if got != tt.want {
				t.Errorf("value = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestProgram_Output(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"print values", `print("x=", 1, " ", 2.0, " ", true, " ", nil);`, "x=1 2.0 true nil\n"},
		{"print function", "func f(a) {} print(f); print(print);", "<func f/1>\n<func print/0+>\n"},
		{"print order", "func f(s) { print(s); return s; } f(\"a\") + f(\"b\");", "a\nb\n"},
		{"loop output", "for (var i = 0; i < 3; i = i + 1) print(i);", "0\n1\n2\n"},
		{"main runs once", "func main() { print(\"hi\"); } main();", "hi\n"},
		{"main not implicit", "func main() { print(\"main\"); } print(\"top\");", "top\n"},
		{"escapes", `print("a\tb\\c\"");`, "a\tb\\c\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("error: %v", err)
			}

			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestProgram_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind *diag.Error
		line int
		col  int
	}{
		{"undefined call", "foo();", diag.ErrUndefinedName, 1, 1},
		{"undefined reference", "var x = 1;\nreturn y + x;", diag.ErrUndefinedName, 2, 8},
		{"undefined assignment", "x = 1;", diag.ErrUndefinedName, 1, 1},
		{"scope ends with block", "{ var x = 1; } return x;", diag.ErrUndefinedName, 1, 23},
		{"for scope ends", "for (var i = 0; i < 1; i = i + 1) {} return i;", diag.ErrUndefinedName, 1, 45},
		{"redeclaration", "var x; var x;", diag.ErrRedeclaration, 1, 8},
		{"parameter redeclaration", "func f(a) { var a = 1; } f(1);", diag.ErrRedeclaration, 1, 13},
		{"function redeclaration", "func f() {} func f() {}", diag.ErrRedeclaration, 1, 13},
		{"too few args", "func add(a, b) { return a + b; }\nadd(1);", diag.ErrArity, 2, 1},
		{"too many args", "func add(a, b) { return a + b; }\nadd(1, 2, 3);", diag.ErrArity, 2, 1},
		{"builtin arity", "len();", diag.ErrArity, 1, 1},
		{"add string int", `return 1 + "a";`, diag.ErrType, 1, 10},
		{"compare bool", "return true < false;", diag.ErrType, 1, 13},
		{"equal mismatch", `return "1" == 1;`, diag.ErrType, 1, 12},
		{"negate string", `return -"s";`, diag.ErrType, 1, 8},
		{"not int", "return !1;", diag.ErrType, 1, 8},
		{"and int", "return 1 && true;", diag.ErrType, 1, 10},
		{"or right int", "return false || 1;", diag.ErrType, 1, 14},
		{"condition int", "if (1) {}", diag.ErrType, 1, 5},
		{"while condition nil", "while (nil) {}", diag.ErrType, 1, 8},
		{"call non-function", "var f = 1; f();", diag.ErrType, 1, 12},
		{"unspecified operand", "return print() + 1;", diag.ErrType, 1, 16},
		{"unspecified equality", "var x = print(); return x == nil;", diag.ErrType, 1, 27},
		{"div zero", "return 1 / 0;", diag.ErrDivisionByZero, 1, 10},
		{"mod zero", "return 1 % 0;", diag.ErrDivisionByZero, 1, 10},
		{"float div zero", "return 1.0 / 0;", diag.ErrDivisionByZero, 1, 12},
		{"inner error position", "func f(n) {\n  return n / 0;\n}\nf(1);", diag.ErrDivisionByZero, 2, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.src)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want %s", err, tt.kind.Kind())
			}

			if !errors.Is(err, diag.ErrRuntime) {
				t.Errorf("%v is not a RuntimeError", err)
			}

			e, _ := diag.As(err)
			if pos := e.Position(); pos.Line != tt.line || pos.Column != tt.col {
				t.Errorf("position = %v, want %d:%d", pos, tt.line, tt.col)
			}
		})
	}
}

func TestProgram_TopLevelReturn(t *testing.T) {
	prog, err := parser.Parse(context.Background(), "var x = 1;\nif (x == 1) { return x; }")
	if err != nil {
		t.Fatal(err)
	}

	_, err = New().Program(context.Background(), prog, globals())
	if !errors.Is(err, diag.ErrInvalidControlFlow) {
		t.Fatalf("error = %v, want InvalidControlFlowError", err)
	}

	e, _ := diag.As(err)
	if pos := e.Position(); pos.Line != 2 || pos.Column != 15 {
		t.Errorf("position = %v, want 2:15", pos)
	}

	v, err := New(WithTopLevelReturn(true)).Program(context.Background(), prog, globals())
	if err != nil || v != runtime.Integer(1) {
		t.Errorf("script mode = %v, %v", v, err)
	}
}

func TestProgram_Limits(t *testing.T) {
	t.Run("steps", func(t *testing.T) {
		_, _, err := run(t, "while (true) {}", WithMaxSteps(1000))
		if !errors.Is(err, diag.ErrLimit) {
			t.Errorf("error = %v, want LimitError", err)
		}
	})

	t.Run("call depth", func(t *testing.T) {
		_, _, err := run(t, "func f() { return f(); } f();", WithMaxCallDepth(50))
		if !errors.Is(err, diag.ErrLimit) {
			t.Errorf("error = %v, want LimitError", err)
		}
	})

	t.Run("depth within limit", func(t *testing.T) {
		v, _, err := run(t, "func down(n) { if (n == 0) return 0; return down(n - 1); } return down(49);", WithMaxCallDepth(50))
		if err != nil || v != runtime.Integer(0) {
			t.Errorf("down(49) = %v, %v", v, err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		prog, err := parser.Parse(context.Background(), "var x = 1;")
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = New().Program(ctx, prog, globals())
		if !errors.Is(err, diag.ErrLimit) || !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want LimitError wrapping context.Canceled", err)
		}
	})

	t.Run("deadline", func(t *testing.T) {
		prog, err := parser.Parse(context.Background(), "while (true) {}")
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err = New().Program(ctx, prog, globals())
		if !errors.Is(err, diag.ErrLimit) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want LimitError wrapping context.DeadlineExceeded", err)
		}
	})
}

func TestStatements_Session(t *testing.T) {
	ctx := context.Background()
	env := globals()
	in := New()

	eval := func(src string) (runtime.Value, error) {
		prog, err := parser.Parse(ctx, src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}

		return in.Statements(ctx, prog.Stmts, env)
	}

	if v, err := eval("var x = 2; func sq(n) { return n * n; }"); err != nil || v != (runtime.Unspecified{}) {
		t.Fatalf("declarations = %v, %v", v, err)
	}

	if v, err := eval("x = sq(x); x + 1;"); err != nil || v != runtime.Integer(5) {
		t.Errorf("x + 1 = %v, %v", v, err)
	}

	if _, err := eval("return x;"); !errors.Is(err, diag.ErrInvalidControlFlow) {
		t.Errorf("return error = %v, want InvalidControlFlowError", err)
	}

	if _, err := eval("var x;"); !errors.Is(err, diag.ErrRedeclaration) {
		t.Errorf("redeclaration error = %v", err)
	}

	if v, ok := env.LookupLocal("x"); !ok || v != runtime.Integer(4) {
		t.Errorf("x = %v, %v", v, ok)
	}
}

func TestExpr(t *testing.T) {
	e, err := parser.ParseExpr(context.Background(), "a * (b + 1)")
	if err != nil {
		t.Fatal(err)
	}

	env := runtime.NewEnvironment(nil)
	env.Declare("a", runtime.Integer(3))
	env.Declare("b", runtime.Float(0.5))

	v, err := New().Expr(context.Background(), e, env)
	if err != nil || v != runtime.Float(4.5) {
		t.Errorf("Expr() = %v, %v", v, err)
	}
}

func TestInput(t *testing.T) {
	v, out, err := run(t, `var n = inputi("n?"); var s = inputs(); return s + str(n * 2);`,
		WithInput(strings.NewReader("21\nsum=")))
	if err != nil {
		t.Fatal(err)
	}

	if v != runtime.String("sum=42") || out != "n?\n" {
		t.Errorf("value %q, output %q", v, out)
	}
}

// Independent evaluations of one tree share no state.
func TestProgram_Concurrent(t *testing.T) {
	prog, err := parser.Parse(context.Background(),
		"var total = 0; func add(n) { total = total + n; } for (var i = 1; i <= 100; i = i + 1) add(i); print(total);")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup

	outs := make([]bytes.Buffer, 8)
	errs := make([]error, len(outs))

	for i := range outs {
		wg.Go(func() {
			_, errs[i] = New(WithOutput(&outs[i])).Program(context.Background(), prog, globals())
		})
	}

	wg.Wait()

	for i := range outs {
		if errs[i] != nil || outs[i].String() != "5050\n" {
			t.Errorf("run %d: output %q, error %v", i, outs[i].String(), errs[i])
		}
	}
}

func TestTraceLogging(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithFormat(log.FormatJSON))

	if _, _, err := run(t, "func f(a) { return a; } f(1);", WithLogger(logger)); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{`"msg":"call"`, `"msg":"return"`, `"function":"f"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("trace output missing %s:\n%s", want, buf.String())
		}
	}
}

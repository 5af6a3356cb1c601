package ast_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, err := parser.Parse(context.Background(), src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}

	return prog
}

func TestWalk_PreOrder(t *testing.T) {
	prog := mustParse(t, "var x = 1 + y; f(x);")

	var names []string

	for n := range ast.Walk(prog) {
		switch n := n.(type) {
		case *ast.Program:
			names = append(names, "program")
		case *ast.VarDeclaration:
			names = append(names, "var")
		case *ast.BinaryOp:
			names = append(names, n.Op.String())
		case *ast.Literal:
			names = append(names, "lit")
		case *ast.VariableReference:
			names = append(names, n.Name)
		case *ast.ExpressionStatement:
			names = append(names, "expr")
		case *ast.Call:
			names = append(names, "call")
		}
	}

	want := "program var + lit y expr call f x"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("Walk order = %q, want %q", got, want)
	}
}

func TestWalk_Break(t *testing.T) {
	prog := mustParse(t, "a; b; c;")

	count := 0
	for range ast.Walk(prog) {
		count++
		if count == 3 {
			break
		}
	}

	if count != 3 {
		t.Errorf("visited %d nodes after break, want 3", count)
	}
}

func TestFormat_Canonical(t *testing.T) {
	src := "func fib(n){if(n<2)return n;else return fib(n-1)+fib(n-2);} var i=0;while(i<3){print(fib(i));i=i+1;}"

	want := `func fib(n) {
  if (n < 2)
    return n;
  else
    return fib(n - 1) + fib(n - 2);
}
var i = 0;
while (i < 3) {
  print(fib(i));
  i = i + 1;
}
`

	var buf bytes.Buffer
	if err := ast.Format(&buf, mustParse(t, src), 2); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFprint_Indented(t *testing.T) {
	var buf bytes.Buffer

	if err := ast.Fprint(&buf, mustParse(t, "while (x) { y; }"), 2); err != nil {
		t.Fatal(err)
	}

	want := "(program\n  (while x\n    (block\n      (expr y))))\n"
	if got := buf.String(); got != want {
		t.Errorf("Fprint() =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer

	if err := ast.FormatJSON(&buf, mustParse(t, "x = 2.5;"), 0); err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	stmts := m["stmts"].([]any)
	expr := stmts[0].(map[string]any)["expr"].(map[string]any)

	if expr["node"] != "Assignment" || expr["name"] != "x" || expr["pos"] != "1:1" {
		t.Errorf("assignment = %v", expr)
	}

	value := expr["value"].(map[string]any)
	if value["kind"] != "float" || value["value"] != 2.5 {
		t.Errorf("literal = %v", value)
	}
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer

	prog := mustParse(t, "func f(a) { return a; }")
	if err := ast.FormatYAML(context.Background(), &buf, prog, 2); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"node: Program", "node: FunctionDefinition", "name: f", "- a", "node: Return"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()

	if err := ast.FormatYAML(context.Background(), &buf, prog, 0); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("flow YAML = %q, want a flow mapping", buf.String())
	}
}

func TestOp_Lookup(t *testing.T) {
	for _, text := range []string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||"} {
		op, ok := ast.BinaryOpFor(text)
		if !ok || op.String() != text {
			t.Errorf("BinaryOpFor(%q) = %v, %v", text, op, ok)
		}
	}

	if _, ok := ast.BinaryOpFor("!"); ok {
		t.Error("BinaryOpFor(\"!\") succeeded")
	}

	if op, ok := ast.UnaryOpFor("-"); !ok || op != ast.OpNeg || op.Name() != "neg" {
		t.Errorf("UnaryOpFor(\"-\") = %v, %v", op, ok)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3.0"},
		{2.5, "2.5"},
		{0.1, "0.1"},
		{-4, "-4.0"},
		{1e21, "1000000000000000000000.0"},
	}

	for _, tt := range tests {
		if got := ast.FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

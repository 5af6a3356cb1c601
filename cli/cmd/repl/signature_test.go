package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/brewin/lang/runtime"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no_call", "greeting", 8, "", 0, false},
		{"first_arg", "add(", 4, "add", 0, true},
		{"first_arg_value", "add(1", 5, "add", 0, true},
		{"second_arg", "add(1,", 6, "add", 1, true},
		{"second_arg_value", "add(1, 2", 8, "add", 1, true},
		{"closed", "add(1, 2)", 9, "", 0, false},
		{"nested_inner", "add(1, mul(2, ", 14, "mul", 1, true},
		{"nested_closed", "add(1, mul(2, 3), ", 18, "add", 2, true},
		{"space_before_paren", "add (x", 6, "add", 0, true},
		{"grouping_paren", "x = (1 + ", 9, "", 0, false},
		{"paren_in_string", `print("(", `, 11, "print", 1, true},
		{"comma_in_string", `print("a,b`, 10, "print", 0, true},
		{"escaped_quote", `print("\"(", x`, 14, "print", 1, true},
		{"digit_name", "1(", 2, "", 0, false},
		{"cursor_before_call", "add(1)", 2, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.inCall != tt.wantInCall {
				t.Fatalf("detectFunctionCall(%q, %d).inCall = %v, want %v",
					tt.input, tt.cursor, got.inCall, tt.wantInCall)
			}

			if !got.inCall {
				return
			}

			if got.name != tt.wantName || got.argIndex != tt.wantIndex {
				t.Errorf("detectFunctionCall(%q, %d) = (%q, %d), want (%q, %d)",
					tt.input, tt.cursor, got.name, got.argIndex,
					tt.wantName, tt.wantIndex)
			}
		})
	}
}

func nativeStub(runtime.CallInfo, []runtime.Value) (runtime.Value, error) {
	return runtime.Unspecified{}, nil
}

func TestParamNames_Native(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     []string
	}{
		{"none", 0, 0, []string{}},
		{"fixed", 2, 2, []string{"arg1", "arg2"}},
		{"optional", 0, 1, []string{"[arg1]"}},
		{"variadic", 1, -1, []string{"arg1", "...args"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := runtime.NewNative(tt.name, tt.min, tt.max, nativeStub)

			if got := paramNames(fn); !slices.Equal(got, tt.want) {
				t.Errorf("paramNames() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	sess := newTestSession(t, "var n = 1; func add(a, b) { return a + b; }")

	tests := []struct {
		name       string
		lookup     string
		want       string
		wantParams []string
	}{
		{"closure", "add", "add(a, b)", []string{"a", "b"}},
		{"builtin", "print", "print(...args)", []string{"...args"}},
		{"optional", "inputs", "inputs([arg1])", []string{"[arg1]"}},
		{"not_function", "n", "", nil},
		{"unbound", "missing", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, params := getSignature(sess, tt.lookup)
			if got != tt.want {
				t.Errorf("getSignature(%q) = %q, want %q", tt.lookup, got, tt.want)
			}

			if !slices.Equal(params, tt.wantParams) {
				t.Errorf("getSignature(%q) params = %q, want %q",
					tt.lookup, params, tt.wantParams)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name       string
		signature  string
		params     []string
		currentArg int
	}{
		{"no_params", "greeting()", nil, 0},
		{"first_param", "add(x, y)", []string{"x", "y"}, 0},
		{"second_param", "add(x, y)", []string{"x", "y"}, 1},
		{"variadic", "print(...args)", []string{"...args"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.currentArg)

			// Styling depends on the terminal, so only the text is checked.
			name := tt.signature[:strings.Index(tt.signature, "(")]
			if !strings.Contains(got, name) {
				t.Errorf("renderSignatureHint() = %q, missing %q", got, name)
			}

			for _, p := range tt.params {
				if !strings.Contains(got, p) {
					t.Errorf("renderSignatureHint() = %q, missing %q", got, p)
				}
			}
		})
	}

	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("renderSignatureHint(\"\") = %q, want empty", got)
	}
}

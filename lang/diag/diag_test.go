package diag

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ardnew/brewin/lang/token"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "positioned",
			err:  Newf(KindType, token.Position{Line: 2, Column: 7}, "cannot add %s and %s", "Integer", "String"),
			want: "TypeError at line 2, column 7: cannot add Integer and String",
		},
		{
			name: "no position",
			err:  New(KindLimit, token.Position{}, "step limit exceeded"),
			want: "LimitError: step limit exceeded",
		},
		{
			name: "wrapped",
			err:  ErrLimit.Withf("aborted").Wrap(io.EOF),
			want: "LimitError: aborted: EOF",
		},
		{
			name: "sentinel",
			err:  ErrParse,
			want: "ParseError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1}
	undefined := ErrUndefinedName.WithPosition(pos).Withf("undefined name 'x'")
	wrapped := fmt.Errorf("run: %w", undefined)

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same kind", undefined, ErrUndefinedName, true},
		{"wrapped", wrapped, ErrUndefinedName, true},
		{"runtime category", undefined, ErrRuntime, true},
		{"other kind", undefined, ErrType, false},
		{"lex not runtime", ErrLex.WithPosition(pos), ErrRuntime, false},
		{"parse not lex", ErrParse.WithPosition(pos), ErrLex, false},
		{"message mismatch", undefined, ErrUndefinedName.Withf("other"), false},
		{"wrapped cause", ErrLimit.Wrap(io.EOF), io.EOF, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestError_Immutable(t *testing.T) {
	base := ErrType.With(slog.String("op", "+"))
	derived := base.With(slog.String("left", "Integer")).WithPosition(token.Position{Line: 4, Column: 2})

	if len(base.Attrs()) != 1 {
		t.Errorf("base attrs = %d, want 1", len(base.Attrs()))
	}

	if len(derived.Attrs()) != 2 {
		t.Errorf("derived attrs = %d, want 2", len(derived.Attrs()))
	}

	if base.Position().IsValid() {
		t.Error("WithPosition modified its receiver")
	}

	if ErrType.Position().IsValid() || len(ErrType.Attrs()) != 0 {
		t.Error("sentinel was modified")
	}
}

func TestKind_Category(t *testing.T) {
	tests := []struct {
		kind Kind
		want Kind
	}{
		{KindLex, KindLex},
		{KindParse, KindParse},
		{KindType, KindRuntime},
		{KindArity, KindRuntime},
		{KindInvalidControlFlow, KindRuntime},
	}

	for _, tt := range tests {
		if got := tt.kind.Category(); got != tt.want {
			t.Errorf("%v.Category() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestError_LogValue(t *testing.T) {
	var sb strings.Builder

	logger := slog.New(slog.NewTextHandler(&sb, nil))
	err := ErrArity.WithPosition(token.Position{Line: 3, Column: 9}).Withf("wrong argument count")
	logger.Error("failed", slog.Any("error", err))

	out := sb.String()
	for _, want := range []string{"error.kind=ArityError", "error.line=3", "error.column=9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestExcerpt(t *testing.T) {
	src := "var x = 1;\n\tprint(y);\n"
	err := ErrUndefinedName.WithPosition(token.Position{Line: 2, Column: 8}).Withf("undefined name 'y'")

	want := "UndefinedNameError at line 2, column 8: undefined name 'y'\n" +
		"  2 | \tprint(y);\n" +
		"    | \t      ^"

	if got := Excerpt(src, err); got != want {
		t.Errorf("Excerpt() =\n%s\nwant\n%s", got, want)
	}

	plain := errors.New("plain")
	if got := Excerpt(src, plain); got != "plain" {
		t.Errorf("Excerpt(plain) = %q, want %q", got, "plain")
	}
}

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/pkg"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Run
		stdin string
		want  string
	}{
		{
			name:  "print",
			stdin: `print("hello ", 1 + 2);`,
			want:  "hello 3\n",
		},
		{
			name:  "top_level_return",
			stdin: "return 6 * 7;",
			want:  "42\n",
		},
		{
			name:  "main_called",
			stdin: `func main() { print("in main"); }`,
			want:  "in main\n",
		},
		{
			name:  "nil_not_printed",
			stdin: "return nil;",
			want:  "",
		},
		{
			name:  "inputs",
			stdin: `var name = inputs(); print("hi ", name);`,
			want:  "hi \n",
		},
		{
			name:  "define",
			cmd:   Run{Define: []string{"N=2+3", "FLAG"}},
			stdin: "if (FLAG) { return N * 2; }",
			want:  "10\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out, _ := testStdio(t.Context(), tt.stdin)

			cmd := tt.cmd
			cmd.Source = "-"
			cmd.MaxDepth = 100

			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("Run() output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_Include(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "greet.brewin", `print("from path");`)

	ctx, out, _ := testStdio(t.Context(), "")

	cmd := Run{Source: "greet", Include: []string{dir}, MaxDepth: 100}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := out.String(); got != "from path\n" {
		t.Errorf("Run() output = %q", got)
	}

	cmd.Include = nil
	if err := cmd.Run(ctx); !errors.Is(err, pkg.ErrSourceNotFound) {
		t.Errorf("Run() without include error = %v, want %v", err, pkg.ErrSourceNotFound)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cmd    Run
		stdin  string
		target error
	}{
		{"parse", Run{}, "var = 1;", diag.ErrParse},
		{"undefined", Run{}, "print(missing);", diag.ErrUndefinedName},
		{"strict_return", Run{Strict: true}, "return 1;", diag.ErrInvalidControlFlow},
		{"max_steps", Run{MaxSteps: 100}, "while (true) {}", diag.ErrLimit},
		{"max_depth", Run{}, "func f(n) { return f(n + 1); } f(0);", diag.ErrLimit},
		{"bad_define", Run{Define: []string{"1x=2"}}, "", ErrDefine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := testStdio(t.Context(), tt.stdin)

			cmd := tt.cmd
			cmd.Source = "-"
			cmd.MaxDepth = 100

			err := cmd.Run(ctx)
			if !errors.Is(err, tt.target) {
				t.Fatalf("Run() error = %v, want %v", err, tt.target)
			}

			var perr *ProgramError
			if errors.As(err, &perr) && !strings.HasPrefix(perr.Excerpt(), stdinName+": ") {
				t.Errorf("Excerpt() = %q, want it to name the source", perr.Excerpt())
			}
		})
	}
}

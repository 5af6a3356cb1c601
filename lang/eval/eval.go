// Package eval is the Brewin tree-walking evaluator.
//
// An [Interpreter] holds configuration only. Each call to [Interpreter.Program],
// [Interpreter.Statements] or [Interpreter.Expr] evaluates against the
// [runtime.Environment] it is given, so independent evaluations share no
// state and may run concurrently on disjoint environments.
//
// Statements produce a completion: either a normal result or a return
// signal carrying a value. The signal is threaded back through every
// enclosing statement until the function call that consumes it.
package eval

import (
	"bufio"
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/runtime"
	"github.com/ardnew/brewin/lang/token"
	"github.com/ardnew/brewin/log"
)

const (
	// DefaultMaxCallDepth bounds the number of active function calls.
	DefaultMaxCallDepth = 10000

	// pollInterval is the number of steps between context checks.
	pollInterval = 1024
)

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithLogger traces calls and returns at [log.LevelTrace].
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithOutput sets the writer builtins print to. The default discards output.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		if w == nil {
			w = io.Discard
		}

		in.stdout = w
	}
}

// WithInput sets the reader the input builtins read lines from.
func WithInput(r io.Reader) Option {
	return func(in *Interpreter) {
		if r == nil {
			in.stdin = nil

			return
		}

		if br, ok := r.(*bufio.Reader); ok {
			in.stdin = br
		} else {
			in.stdin = bufio.NewReader(r)
		}
	}
}

// WithMaxSteps aborts evaluation with a LimitError once n nodes have been
// evaluated. n <= 0 means no limit.
func WithMaxSteps(n int64) Option {
	return func(in *Interpreter) { in.maxSteps = n }
}

// WithMaxCallDepth sets the call depth limit. Values < 1 use
// [DefaultMaxCallDepth].
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) {
		if n < 1 {
			n = DefaultMaxCallDepth
		}

		in.maxDepth = n
	}
}

// WithTopLevelReturn makes a return at the top level of a program end it
// with the returned value. Without it, such a return is an
// InvalidControlFlowError.
func WithTopLevelReturn(enable bool) Option {
	return func(in *Interpreter) { in.topLevelReturn = enable }
}

// Interpreter evaluates syntax trees.
type Interpreter struct {
	logger         log.Logger
	stdout         io.Writer
	stdin          *bufio.Reader
	maxSteps       int64
	maxDepth       int
	topLevelReturn bool
}

// New returns an Interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{stdout: io.Discard, maxDepth: DefaultMaxCallDepth}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// completion is the result of executing a statement.
type completion struct {
	value     runtime.Value
	at        token.Position
	returning bool
}

// machine is the per-evaluation state.
type machine struct {
	*Interpreter
	ctx   context.Context
	steps int64
	depth int
}

func (in *Interpreter) machine(ctx context.Context) (*machine, error) {
	if err := ctx.Err(); err != nil {
		return nil, diag.ErrLimit.Withf("evaluation canceled").Wrap(context.Cause(ctx))
	}

	return &machine{Interpreter: in, ctx: ctx}, nil
}

// Program evaluates the top-level statements of prog in env, the program's
// root scope.
//
// Function definitions are bound before any statement runs. A program made
// only of function definitions is run by calling its function main, if main
// takes no parameters; the call's result is the program's value. Otherwise the value is [runtime.Unspecified], or the returned value when
// [WithTopLevelReturn] is enabled.
func (in *Interpreter) Program(ctx context.Context, prog *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	m, err := in.machine(ctx)
	if err != nil {
		return nil, err
	}

	in.logger.TraceContext(ctx, "program start", slog.Int("statements", len(prog.Stmts)))

	c, err := m.execList(prog.Stmts, env)
	if err != nil {
		in.logger.DebugContext(ctx, "program failed", slog.Any("error", err), slog.Int64("steps", m.steps))

		return nil, err
	}

	if c.returning {
		if !in.topLevelReturn {
			return nil, diag.ErrInvalidControlFlow.WithPosition(c.at).Withf("return outside function")
		}

		in.logger.TraceContext(ctx, "program returned",
			slog.String("value", c.value.String()),
			slog.Int64("steps", m.steps),
		)

		return c.value, nil
	}

	if !onlyDefinitions(prog.Stmts) {
		in.logger.TraceContext(ctx, "program done", slog.Int64("steps", m.steps))

		return runtime.Unspecified{}, nil
	}

	if v, ok := env.LookupLocal("main"); ok {
		if fn, ok := v.(*runtime.Function); ok && !fn.IsNative() && len(fn.Def.Params) == 0 {
			in.logger.TraceContext(ctx, "calling main")

			return m.call(fn, nil, fn.Def.Pos())
		}
	}

	in.logger.TraceContext(ctx, "program done", slog.Int64("steps", m.steps))

	return runtime.Unspecified{}, nil
}

// onlyDefinitions reports whether every statement is a function definition.
func onlyDefinitions(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if _, ok := s.(*ast.FunctionDefinition); !ok {
			return false
		}
	}

	return true
}

// Statements evaluates stmts directly in env without opening a new scope and
// returns the value of the last expression statement, or
// [runtime.Unspecified] if there is none. A top-level return is an
// InvalidControlFlowError. It is meant for interactive sessions where env
// persists across inputs.
func (in *Interpreter) Statements(ctx context.Context, stmts []ast.Stmt, env *runtime.Environment) (runtime.Value, error) {
	m, err := in.machine(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.hoist(stmts, env); err != nil {
		return nil, err
	}

	var last runtime.Value = runtime.Unspecified{}

	for _, s := range stmts {
		if es, ok := s.(*ast.ExpressionStatement); ok {
			v, err := m.expr(es.X, env)
			if err != nil {
				return nil, err
			}

			last = v

			continue
		}

		c, err := m.exec(s, env)
		if err != nil {
			return nil, err
		}

		if c.returning {
			return nil, diag.ErrInvalidControlFlow.WithPosition(c.at).Withf("return outside function")
		}
	}

	return last, nil
}

// Expr evaluates a single expression in env.
func (in *Interpreter) Expr(ctx context.Context, e ast.Expr, env *runtime.Environment) (runtime.Value, error) {
	m, err := in.machine(ctx)
	if err != nil {
		return nil, err
	}

	return m.expr(e, env)
}

// step accounts for evaluating n and enforces the step limit and
// cancellation.
func (m *machine) step(n ast.Node) error {
	m.steps++

	if m.maxSteps > 0 && m.steps > m.maxSteps {
		return diag.ErrLimit.WithPosition(n.Pos()).
			Withf("step limit of %d exceeded", m.maxSteps).
			With(slog.Int64("max_steps", m.maxSteps))
	}

	if m.steps%pollInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			return diag.ErrLimit.WithPosition(n.Pos()).
				Withf("evaluation canceled").
				Wrap(context.Cause(m.ctx))
		}
	}

	return nil
}

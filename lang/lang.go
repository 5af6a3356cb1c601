package lang

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/klauspost/readahead"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/eval"
	"github.com/ardnew/brewin/lang/lexer"
	"github.com/ardnew/brewin/lang/parser"
	"github.com/ardnew/brewin/lang/runtime"
	"github.com/ardnew/brewin/lang/token"
	"github.com/ardnew/brewin/log"
	"github.com/ardnew/brewin/pkg"
)

// Result is the outcome of a successful [Run].
type Result struct {
	// Value is the program's value: the value of a top-level return, the
	// result of main, or Unspecified.
	Value runtime.Value
	// Output is everything the program printed.
	Output string
}

// Option configures [Run], [RunReader] and [NewSession].
type Option func(*config)

type config struct {
	logger       log.Logger
	stdout       io.Writer
	stdin        io.Reader
	globals      map[string]any
	builtins     map[string]*runtime.Function
	cache        *Cache
	maxSteps     int64
	maxDepth     int
	strictReturn bool
}

func makeConfig(opts ...Option) config {
	cfg := config{maxDepth: eval.DefaultMaxCallDepth}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithLogger sets the logger handed to the lexer, parser and evaluator.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithOutput copies program output to w as it is printed.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.stdout = w }
}

// WithInput sets the source of lines for inputs and inputi. Without it
// both builtins read end of input.
func WithInput(r io.Reader) Option {
	return func(c *config) { c.stdin = r }
}

// WithMaxSteps bounds the number of evaluated nodes. n <= 0 is unlimited.
func WithMaxSteps(n int64) Option {
	return func(c *config) { c.maxSteps = n }
}

// WithMaxCallDepth bounds the number of active calls.
func WithMaxCallDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// WithGlobals binds host values in the scope enclosing the program, next to
// the builtins. Values are converted with [runtime.FromNative]; see
// [Define]. Repeated options merge, later values winning.
func WithGlobals(globals map[string]any) Option {
	return func(c *config) {
		if c.globals == nil {
			c.globals = make(map[string]any, len(globals))
		}

		maps.Copy(c.globals, globals)
	}
}

// WithBuiltins replaces the builtin registry, which defaults to
// [runtime.Builtins].
func WithBuiltins(builtins map[string]*runtime.Function) Option {
	return func(c *config) { c.builtins = builtins }
}

// WithCache parses through cache.
func WithCache(cache *Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithStrictReturn makes a return outside any function an
// InvalidControlFlowError instead of ending the program.
func WithStrictReturn() Option {
	return func(c *config) { c.strictReturn = true }
}

func (c config) parse(ctx context.Context, src string) (*ast.Program, error) {
	if c.cache != nil {
		return c.cache.Parse(ctx, src)
	}

	return parser.Parse(ctx, src, parser.WithLogger(c.logger))
}

func (c config) interpreter(stdout io.Writer, topLevelReturn bool) *eval.Interpreter {
	return eval.New(
		eval.WithLogger(c.logger),
		eval.WithOutput(stdout),
		eval.WithInput(c.stdin),
		eval.WithMaxSteps(c.maxSteps),
		eval.WithMaxCallDepth(c.maxDepth),
		eval.WithTopLevelReturn(topLevelReturn),
	)
}

// globalEnv returns the scope holding the builtins and host globals. Program
// roots are its children, so programs may shadow any of them.
func (c config) globalEnv() (*runtime.Environment, error) {
	env := runtime.NewEnvironment(nil)

	builtins := c.builtins
	if builtins == nil {
		builtins = runtime.Builtins()
	}

	for _, name := range slices.Sorted(maps.Keys(builtins)) {
		env.Declare(name, builtins[name])
	}

	for _, name := range slices.Sorted(maps.Keys(c.globals)) {
		if !isIdentifier(name) {
			return nil, pkg.ErrDefine.Wrapf("invalid global name %q", name)
		}

		v, err := runtime.FromNative(c.globals[name])
		if err != nil {
			return nil, pkg.ErrDefine.Wrap(fmt.Errorf("global %s: %w", name, err))
		}

		if !env.Declare(name, v) {
			env.Assign(name, v)
		}
	}

	return env, nil
}

// Run lexes, parses and evaluates src in a fresh environment. Lex and parse
// errors are reported before anything runs. Language errors are
// [*diag.Error] values.
//
// Unless [WithStrictReturn] is given, a return at the top level ends the
// program with the returned value.
func Run(ctx context.Context, src string, opts ...Option) (*Result, error) {
	cfg := makeConfig(opts...)

	prog, err := cfg.parse(ctx, src)
	if err != nil {
		return nil, err
	}

	globals, err := cfg.globalEnv()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer

	stdout := io.Writer(&out)
	if cfg.stdout != nil {
		stdout = io.MultiWriter(&out, cfg.stdout)
	}

	v, err := cfg.interpreter(stdout, !cfg.strictReturn).Program(ctx, prog, globals.Child())
	if err != nil {
		return nil, err
	}

	cfg.logger.DebugContext(ctx, "run complete",
		slog.String("kind", v.Kind().String()),
		slog.Int("output_bytes", out.Len()),
	)

	return &Result{Value: v, Output: out.String()}, nil
}

// RunReader reads the program from r and runs it with [Run].
func RunReader(ctx context.Context, r io.Reader, opts ...Option) (*Result, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	makeConfig(opts...).logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return Run(ctx, string(data), opts...)
}

// isIdentifier reports whether name lexes as exactly one identifier.
func isIdentifier(name string) bool {
	toks, err := lexer.All(name)

	return err == nil && len(toks) == 2 && toks[0].Kind == token.Identifier && toks[0].Text == name
}

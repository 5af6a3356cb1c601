package eval

import (
	"log/slog"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/runtime"
	"github.com/ardnew/brewin/lang/token"
	"github.com/ardnew/brewin/log"
)

func (m *machine) expr(e ast.Expr, env *runtime.Environment) (runtime.Value, error) {
	if err := m.step(e); err != nil {
		return nil, err
	}

	switch e := e.(type) {
	case *ast.Literal:
		return literal(e), nil

	case *ast.VariableReference:
		v, ok := env.Lookup(e.Name)
		if !ok {
			return nil, undefined(e.Name, e.Pos())
		}

		return v, nil

	case *ast.Assignment:
		v, err := m.expr(e.Value, env)
		if err != nil {
			return nil, err
		}

		if !env.Assign(e.Name, v) {
			return nil, undefined(e.Name, e.Pos())
		}

		return v, nil

	case *ast.UnaryOp:
		v, err := m.expr(e.Operand, env)
		if err != nil {
			return nil, err
		}

		return unary(e, v)

	case *ast.BinaryOp:
		return m.binary(e, env)

	case *ast.Call:
		return m.callExpr(e, env)

	default:
		return nil, diag.ErrRuntime.WithPosition(e.Pos()).Withf("unsupported expression %T", e)
	}
}

func literal(e *ast.Literal) runtime.Value {
	switch e.Kind {
	case ast.LiteralInt:
		return runtime.Integer(e.Int)
	case ast.LiteralFloat:
		return runtime.Float(e.Float)
	case ast.LiteralString:
		return runtime.String(e.Str)
	case ast.LiteralBool:
		return runtime.Boolean(e.Bool)
	default:
		return runtime.Null{}
	}
}

func undefined(name string, pos token.Position) *diag.Error {
	return diag.ErrUndefinedName.WithPosition(pos).
		Withf("%s is not defined", name).
		With(slog.String("name", name))
}

func (m *machine) binary(e *ast.BinaryOp, env *runtime.Environment) (runtime.Value, error) {
	left, err := m.expr(e.Left, env)
	if err != nil {
		return nil, err
	}

	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		return m.logical(e, left, env)
	}

	right, err := m.expr(e.Right, env)
	if err != nil {
		return nil, err
	}

	return binary(e, left, right)
}

// logical evaluates && and ||. The right operand is only evaluated when the
// left one does not decide the result.
func (m *machine) logical(e *ast.BinaryOp, left runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	l, ok := left.(runtime.Boolean)
	if !ok {
		return nil, operandError(e, left, nil)
	}

	if (e.Op == ast.OpOr) == bool(l) {
		return l, nil
	}

	right, err := m.expr(e.Right, env)
	if err != nil {
		return nil, err
	}

	r, ok := right.(runtime.Boolean)
	if !ok {
		return nil, operandError(e, left, right)
	}

	return r, nil
}

func (m *machine) callExpr(e *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	callee, err := m.expr(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]runtime.Value, len(e.Args))

	for i, a := range e.Args {
		if args[i], err = m.expr(a, env); err != nil {
			return nil, err
		}
	}

	fn, ok := callee.(*runtime.Function)
	if !ok {
		return nil, diag.ErrType.WithPosition(e.Callee.Pos()).
			Withf("%s is not a function", callee.Kind()).
			With(slog.String("kind", callee.Kind().String()))
	}

	return m.call(fn, args, e.Callee.Pos())
}

// call invokes fn with already evaluated arguments. pos is the position
// reported for arity and limit errors.
func (m *machine) call(fn *runtime.Function, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	if !fn.Accepts(len(args)) {
		return nil, diag.ErrArity.WithPosition(pos).
			Withf("%s takes %s argument(s), got %d", fn.Name, fn.Arity(), len(args)).
			With(
				slog.String("function", fn.Name),
				slog.String("expected", fn.Arity()),
				slog.Int("got", len(args)),
			)
	}

	if m.depth >= m.maxDepth {
		return nil, diag.ErrLimit.WithPosition(pos).
			Withf("call depth limit of %d exceeded", m.maxDepth).
			With(slog.String("function", fn.Name))
	}

	m.depth++
	defer func() { m.depth-- }()

	tracing := m.logger.Enabled(m.ctx, log.LevelTrace)
	if tracing {
		m.logger.TraceContext(m.ctx, "call",
			slog.String("function", fn.Name),
			slog.Int("args", len(args)),
			slog.Int("depth", m.depth),
			slog.String("pos", pos.String()),
		)
	}

	if fn.IsNative() {
		return m.native(fn, args, pos)
	}

	frame := fn.Env.Child()
	for i, name := range fn.Def.Params {
		frame.Declare(name, args[i])
	}

	c, err := m.execList(fn.Def.Body.Stmts, frame)
	if err != nil {
		return nil, err
	}

	var result runtime.Value = runtime.Null{}
	if c.returning {
		result = c.value
	}

	if tracing {
		m.logger.TraceContext(m.ctx, "return",
			slog.String("function", fn.Name),
			slog.String("value", result.String()),
			slog.Int("depth", m.depth),
		)
	}

	return result, nil
}

func (m *machine) native(fn *runtime.Function, args []runtime.Value, pos token.Position) (runtime.Value, error) {
	v, err := fn.Native(runtime.CallInfo{
		Context: m.ctx,
		Stdout:  m.stdout,
		Stdin:   m.stdin,
		Pos:     pos,
	}, args)
	if err != nil {
		if _, ok := diag.As(err); !ok {
			err = diag.ErrRuntime.WithPosition(pos).Withf("%s", fn.Name).Wrap(err)
		}

		return nil, err
	}

	if v == nil {
		return runtime.Null{}, nil
	}

	return v, nil
}

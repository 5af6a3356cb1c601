package eval

import (
	"log/slog"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/runtime"
)

var normal = completion{value: runtime.Unspecified{}}

// hoist binds every function defined directly in stmts to a closure over
// env, so definitions may be referenced before the statement that defines
// them.
func (m *machine) hoist(stmts []ast.Stmt, env *runtime.Environment) error {
	for _, s := range stmts {
		def, ok := s.(*ast.FunctionDefinition)
		if !ok {
			continue
		}

		if !env.Declare(def.Name, runtime.NewClosure(def, env)) {
			return diag.ErrRedeclaration.WithPosition(def.Pos()).
				Withf("%s is already declared in this scope", def.Name).
				With(slog.String("name", def.Name))
		}
	}

	return nil
}

// execList runs stmts in env, stopping at the first return signal.
func (m *machine) execList(stmts []ast.Stmt, env *runtime.Environment) (completion, error) {
	if err := m.hoist(stmts, env); err != nil {
		return completion{}, err
	}

	for _, s := range stmts {
		c, err := m.exec(s, env)
		if err != nil || c.returning {
			return c, err
		}
	}

	return normal, nil
}

// body runs the body of a conditional or loop. A block opens its own scope;
// any other statement runs in a fresh child scope.
func (m *machine) body(s ast.Stmt, env *runtime.Environment) (completion, error) {
	if b, ok := s.(*ast.Block); ok {
		return m.exec(b, env)
	}

	return m.execList([]ast.Stmt{s}, env.Child())
}

func (m *machine) exec(s ast.Stmt, env *runtime.Environment) (completion, error) {
	if err := m.step(s); err != nil {
		return completion{}, err
	}

	switch s := s.(type) {
	case *ast.ExpressionStatement:
		if _, err := m.expr(s.X, env); err != nil {
			return completion{}, err
		}

		return normal, nil

	case *ast.VarDeclaration:
		var v runtime.Value = runtime.Null{}

		if s.Value != nil {
			var err error
			if v, err = m.expr(s.Value, env); err != nil {
				return completion{}, err
			}
		}

		if !env.Declare(s.Name, v) {
			return completion{}, diag.ErrRedeclaration.WithPosition(s.Pos()).
				Withf("%s is already declared in this scope", s.Name).
				With(slog.String("name", s.Name))
		}

		return normal, nil

	case *ast.FunctionDefinition:
		// Bound by hoist.
		return normal, nil

	case *ast.Block:
		return m.execList(s.Stmts, env.Child())

	case *ast.If:
		cond, err := m.condition(s.Cond, env, "if")
		if err != nil {
			return completion{}, err
		}

		switch {
		case cond:
			return m.body(s.Then, env)
		case s.Else != nil:
			return m.body(s.Else, env)
		}

		return normal, nil

	case *ast.While:
		for {
			cond, err := m.condition(s.Cond, env, "while")
			if err != nil || !cond {
				return normal, err
			}

			c, err := m.body(s.Body, env)
			if err != nil || c.returning {
				return c, err
			}
		}

	case *ast.For:
		return m.execFor(s, env)

	case *ast.Return:
		var v runtime.Value = runtime.Null{}

		if s.Value != nil {
			var err error
			if v, err = m.expr(s.Value, env); err != nil {
				return completion{}, err
			}
		}

		return completion{value: v, at: s.Pos(), returning: true}, nil

	default:
		return completion{}, diag.ErrRuntime.WithPosition(s.Pos()).Withf("unsupported statement %T", s)
	}
}

func (m *machine) execFor(s *ast.For, env *runtime.Environment) (completion, error) {
	loop := env.Child()

	if s.Init != nil {
		if _, err := m.execList([]ast.Stmt{s.Init}, loop); err != nil {
			return completion{}, err
		}
	}

	for {
		if s.Cond != nil {
			cond, err := m.condition(s.Cond, loop, "for")
			if err != nil || !cond {
				return normal, err
			}
		}

		c, err := m.body(s.Body, loop)
		if err != nil || c.returning {
			return c, err
		}

		if s.Update != nil {
			if _, err := m.expr(s.Update, loop); err != nil {
				return completion{}, err
			}
		}
	}
}

// condition evaluates the test of an if or loop, which must be a Boolean.
func (m *machine) condition(e ast.Expr, env *runtime.Environment, what string) (bool, error) {
	v, err := m.expr(e, env)
	if err != nil {
		return false, err
	}

	b, ok := v.(runtime.Boolean)
	if !ok {
		return false, diag.ErrType.WithPosition(e.Pos()).
			Withf("%s condition must be a Boolean, not %s", what, v.Kind()).
			With(slog.String("kind", v.Kind().String()))
	}

	return bool(b), nil
}

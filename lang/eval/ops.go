package eval

import (
	"log/slog"
	"math"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/runtime"
)

// operandError reports operands that op does not accept. right is nil for
// unary operators and for a rejected left operand of && or ||.
func operandError(e ast.Node, left, right runtime.Value) *diag.Error {
	var op ast.Op

	switch e := e.(type) {
	case *ast.BinaryOp:
		op = e.Op
	case *ast.UnaryOp:
		op = e.Op
	}

	attrs := []slog.Attr{slog.String("op", op.String()), slog.String("left", left.Kind().String())}

	if right == nil {
		return diag.ErrType.WithPosition(e.Pos()).
			Withf("invalid operand for %s: %s", op, left.Kind()).
			With(attrs...)
	}

	return diag.ErrType.WithPosition(e.Pos()).
		Withf("invalid operands for %s: %s and %s", op, left.Kind(), right.Kind()).
		With(append(attrs, slog.String("right", right.Kind().String()))...)
}

func unary(e *ast.UnaryOp, v runtime.Value) (runtime.Value, error) {
	switch e.Op {
	case ast.OpNot:
		if b, ok := v.(runtime.Boolean); ok {
			return !b, nil
		}

	case ast.OpNeg:
		switch v := v.(type) {
		case runtime.Integer:
			return -v, nil
		case runtime.Float:
			return -v, nil
		}
	}

	return nil, operandError(e, v, nil)
}

func binary(e *ast.BinaryOp, left, right runtime.Value) (runtime.Value, error) {
	switch e.Op {
	case ast.OpEq, ast.OpNe:
		eq, ok := runtime.Equal(left, right)
		if !ok {
			return nil, operandError(e, left, right)
		}

		return runtime.Boolean(eq == (e.Op == ast.OpEq)), nil

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return compare(e, left, right)
	}

	if l, ok := left.(runtime.String); ok && e.Op == ast.OpAdd {
		if r, ok := right.(runtime.String); ok {
			return l + r, nil
		}
	}

	switch l := left.(type) {
	case runtime.Integer:
		switch r := right.(type) {
		case runtime.Integer:
			return intArith(e, l, r)
		case runtime.Float:
			return floatArith(e, float64(l), float64(r))
		}

	case runtime.Float:
		switch r := right.(type) {
		case runtime.Integer:
			return floatArith(e, float64(l), float64(r))
		case runtime.Float:
			return floatArith(e, float64(l), float64(r))
		}
	}

	return nil, operandError(e, left, right)
}

// intArith applies an arithmetic operator to integers. Results wrap on
// overflow; / and % round toward negative infinity.
func intArith(e *ast.BinaryOp, l, r runtime.Integer) (runtime.Value, error) {
	switch e.Op {
	case ast.OpAdd:
		return l + r, nil
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv, ast.OpMod:
		if r == 0 {
			return nil, divisionByZero(e)
		}

		q, m := l/r, l%r
		if m != 0 && (m < 0) != (r < 0) {
			q--
			m += r
		}

		if e.Op == ast.OpDiv {
			return q, nil
		}

		return m, nil
	}

	return nil, operandError(e, l, r)
}

func floatArith(e *ast.BinaryOp, l, r float64) (runtime.Value, error) {
	switch e.Op {
	case ast.OpAdd:
		return runtime.Float(l + r), nil
	case ast.OpSub:
		return runtime.Float(l - r), nil
	case ast.OpMul:
		return runtime.Float(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return nil, divisionByZero(e)
		}

		return runtime.Float(l / r), nil
	case ast.OpMod:
		if r == 0 {
			return nil, divisionByZero(e)
		}

		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}

		return runtime.Float(m), nil
	}

	return nil, operandError(e, runtime.Float(l), runtime.Float(r))
}

func divisionByZero(e *ast.BinaryOp) *diag.Error {
	what := "division"
	if e.Op == ast.OpMod {
		what = "modulo"
	}

	return diag.ErrDivisionByZero.WithPosition(e.Pos()).
		Withf("%s by zero", what).
		With(slog.String("op", e.Op.String()))
}

func compare(e *ast.BinaryOp, left, right runtime.Value) (runtime.Value, error) {
	switch l := left.(type) {
	case runtime.Integer:
		switch r := right.(type) {
		case runtime.Integer:
			return relation(e.Op, l, r), nil
		case runtime.Float:
			return relation(e.Op, float64(l), float64(r)), nil
		}

	case runtime.Float:
		switch r := right.(type) {
		case runtime.Integer:
			return relation(e.Op, float64(l), float64(r)), nil
		case runtime.Float:
			return relation(e.Op, l, r), nil
		}

	case runtime.String:
		if r, ok := right.(runtime.String); ok {
			return relation(e.Op, l, r), nil
		}
	}

	return nil, operandError(e, left, right)
}

func relation[T ~int64 | ~float64 | ~string](op ast.Op, a, b T) runtime.Boolean {
	switch op {
	case ast.OpLt:
		return a < b
	case ast.OpLe:
		return a <= b
	case ast.OpGt:
		return a > b
	default:
		return a >= b
	}
}

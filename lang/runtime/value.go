// Package runtime defines Brewin values, the scope chain they are bound in,
// and the builtin function registry.
package runtime

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ardnew/brewin/lang/ast"
)

// Kind identifies the variant of a [Value].
type Kind int

const (
	KindUnspecified Kind = iota
	KindNull
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindFunction:
		return "Function"
	default:
		return "Unspecified"
	}
}

// Value is an immutable runtime value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	// String returns the text print writes for the value.
	String() string
	value()
}

type (
	Integer     int64
	Float       float64
	Boolean     bool
	String      string
	Null        struct{}
	Unspecified struct{}
)

func (Integer) Kind() Kind     { return KindInteger }
func (Float) Kind() Kind       { return KindFloat }
func (Boolean) Kind() Kind     { return KindBoolean }
func (String) Kind() Kind      { return KindString }
func (Null) Kind() Kind        { return KindNull }
func (Unspecified) Kind() Kind { return KindUnspecified }
func (*Function) Kind() Kind   { return KindFunction }

func (v Integer) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string     { return ast.FormatFloat(float64(v)) }
func (v Boolean) String() string   { return strconv.FormatBool(bool(v)) }
func (v String) String() string    { return string(v) }
func (Null) String() string        { return "nil" }
func (Unspecified) String() string { return "" }

func (Integer) value()     {}
func (Float) value()       {}
func (Boolean) value()     {}
func (String) value()      {}
func (Null) value()        {}
func (Unspecified) value() {}
func (*Function) value()   {}

// Function is a callable value: either a closure over a
// [ast.FunctionDefinition] or a native builtin.
type Function struct {
	// Def and Env are set for closures. Env is the scope the definition was
	// evaluated in; calls run in a child of it.
	Def *ast.FunctionDefinition
	Env *Environment

	// Native is set for builtins, with the accepted argument count range.
	// MaxArgs < 0 accepts any number of arguments >= MinArgs.
	Native  NativeFunc
	Name    string
	MinArgs int
	MaxArgs int
}

// NewClosure captures def in env.
func NewClosure(def *ast.FunctionDefinition, env *Environment) *Function {
	n := len(def.Params)

	return &Function{Def: def, Env: env, Name: def.Name, MinArgs: n, MaxArgs: n}
}

// NewNative creates a builtin accepting between minArgs and maxArgs
// arguments; maxArgs < 0 makes it variadic.
func NewNative(name string, minArgs, maxArgs int, fn NativeFunc) *Function {
	return &Function{Native: fn, Name: name, MinArgs: minArgs, MaxArgs: maxArgs}
}

// IsNative reports whether f is a builtin.
func (f *Function) IsNative() bool { return f.Native != nil }

// Accepts reports whether f can be called with n arguments.
func (f *Function) Accepts(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs)
}

// Arity describes the accepted argument count ("2", "0..1", "1+").
func (f *Function) Arity() string {
	switch {
	case f.MaxArgs < 0:
		return strconv.Itoa(f.MinArgs) + "+"
	case f.MinArgs == f.MaxArgs:
		return strconv.Itoa(f.MinArgs)
	default:
		return strconv.Itoa(f.MinArgs) + ".." + strconv.Itoa(f.MaxArgs)
	}
}

func (f *Function) String() string {
	return "<func " + f.Name + "/" + f.Arity() + ">"
}

// Equal compares two values. Integers and floats compare numerically, nil
// compares unequal to everything but nil, and functions compare by identity.
// ok is false when the kinds cannot be compared.
func Equal(a, b Value) (eq, ok bool) {
	if a.Kind() == KindUnspecified || b.Kind() == KindUnspecified {
		return false, false
	}

	if a.Kind() == KindNull || b.Kind() == KindNull {
		return a.Kind() == b.Kind(), true
	}

	switch a := a.(type) {
	case Integer:
		switch b := b.(type) {
		case Integer:
			return a == b, true
		case Float:
			return float64(a) == float64(b), true
		}
	case Float:
		switch b := b.(type) {
		case Integer:
			return float64(a) == float64(b), true
		case Float:
			return a == b, true
		}
	case Boolean:
		if b, isBool := b.(Boolean); isBool {
			return a == b, true
		}
	case String:
		if b, isStr := b.(String); isStr {
			return a == b, true
		}
	case *Function:
		if b, isFn := b.(*Function); isFn {
			return a == b, true
		}
	}

	return false, false
}

// FromNative converts a Go value to a Value. Integer types map to Integer,
// floats to Float, and nil to Null.
func FromNative(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Boolean(v), nil
	case string:
		return String(v), nil
	case int:
		return Integer(v), nil
	case int8:
		return Integer(v), nil
	case int16:
		return Integer(v), nil
	case int32:
		return Integer(v), nil
	case int64:
		return Integer(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", v)
		}

		return Integer(v), nil
	case uint8:
		return Integer(v), nil
	case uint16:
		return Integer(v), nil
	case uint32:
		return Integer(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", v)
		}

		return Integer(v), nil
	case float32:
		return Float(v), nil
	case float64:
		return Float(v), nil
	case fmt.Stringer:
		return String(v.String()), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// ToNative converts v to the corresponding Go value. Functions and
// Unspecified convert to their printed form and nil, respectively.
func ToNative(v Value) any {
	switch v := v.(type) {
	case Integer:
		return int64(v)
	case Float:
		return float64(v)
	case Boolean:
		return bool(v)
	case String:
		return string(v)
	case *Function:
		return v.String()
	default:
		return nil
	}
}

// Package diag defines the structured errors reported by the Brewin lexer,
// parser and evaluator.
//
// Every error is an [*Error] carrying a [Kind], a message and the 1-based
// source position of the offending construct. Errors are immutable: methods
// like [Error.With] and [Error.WithPosition] return modified copies, so the
// package-level sentinels can be used as templates and as targets for
// [errors.Is].
package diag

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/brewin/lang/token"
)

// Kind identifies the class of a language error.
type Kind int

const (
	// KindRuntime is the category shared by every evaluation error. It is only
	// used as an [errors.Is] target; concrete errors use a subkind.
	KindRuntime Kind = iota
	KindLex
	KindParse
	KindUndefinedName
	KindRedeclaration
	KindType
	KindArity
	KindDivisionByZero
	KindInvalidControlFlow
	KindLimit
)

func (k Kind) String() string {
	switch k {
	case KindRuntime:
		return "RuntimeError"
	case KindLex:
		return "LexError"
	case KindParse:
		return "ParseError"
	case KindUndefinedName:
		return "UndefinedNameError"
	case KindRedeclaration:
		return "RedeclarationError"
	case KindType:
		return "TypeError"
	case KindArity:
		return "ArityError"
	case KindDivisionByZero:
		return "DivisionByZeroError"
	case KindInvalidControlFlow:
		return "InvalidControlFlowError"
	case KindLimit:
		return "LimitError"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Category returns the top-level class of k: LexError, ParseError or
// RuntimeError.
func (k Kind) Category() Kind {
	switch k {
	case KindLex, KindParse:
		return k
	default:
		return KindRuntime
	}
}

// Sentinel errors, one per kind. Use them with [errors.Is], or derive a
// concrete error with [Error.WithPosition] and [Error.Withf].
var (
	ErrRuntime            = &Error{kind: KindRuntime}
	ErrLex                = &Error{kind: KindLex}
	ErrParse              = &Error{kind: KindParse}
	ErrUndefinedName      = &Error{kind: KindUndefinedName}
	ErrRedeclaration      = &Error{kind: KindRedeclaration}
	ErrType               = &Error{kind: KindType}
	ErrArity              = &Error{kind: KindArity}
	ErrDivisionByZero     = &Error{kind: KindDivisionByZero}
	ErrInvalidControlFlow = &Error{kind: KindInvalidControlFlow}
	ErrLimit              = &Error{kind: KindLimit}
)

// Error is a language error with a source position and optional structured
// logging attributes. It implements error and slog.LogValuer.
type Error struct {
	err   error
	msg   string
	attrs []slog.Attr
	pos   token.Position
	kind  Kind
}

// New creates an error of the given kind.
func New(kind Kind, pos token.Position, msg string) *Error {
	return &Error{kind: kind, pos: pos, msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, pos token.Position, format string, args ...any) *Error {
	return New(kind, pos, fmt.Sprintf(format, args...))
}

// As returns the first *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

// Kind returns the error's kind tag.
func (e *Error) Kind() Kind { return e.kind }

// Position returns the source position the error refers to.
func (e *Error) Position() token.Position { return e.pos }

// Message returns the human-readable message without kind or position.
func (e *Error) Message() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.err != nil:
		return e.err.Error()
	default:
		return e.msg
	}
}

// Attrs returns a copy of the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// Error renders "Kind at line L, column C: message".
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.kind.String())

	if e.pos.IsValid() {
		sb.WriteString(" at line ")
		sb.WriteString(strconv.Itoa(e.pos.Line))
		sb.WriteString(", column ")
		sb.WriteString(strconv.Itoa(e.pos.Column))
	}

	if msg := e.Message(); msg != "" {
		sb.WriteString(": ")
		sb.WriteString(msg)
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same kind. The [ErrRuntime]
// sentinel matches every runtime subkind. A target with a message only
// matches errors with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.kind != e.kind && (t.kind != KindRuntime || e.kind.Category() != KindRuntime) {
		return false
	}

	return t.msg == "" || t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)
	attrs = append(attrs, slog.String("kind", e.kind.String()))

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos.IsValid() {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) clone() *Error {
	c := *e
	c.attrs = append([]slog.Attr(nil), e.attrs...)

	return &c
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos token.Position) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	c := e.clone()
	c.msg = fmt.Sprintf(format, args...)

	return c
}

// With returns a copy of e with additional logging attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

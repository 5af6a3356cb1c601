package cmd

import (
	"log/slog"
	"strings"

	"github.com/ardnew/brewin/lang/diag"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg && t.err == nil
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

var (
	ErrReadSource  = NewError("read program")
	ErrDefine      = NewError("define host global")
	ErrFormat      = NewError("format program")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrYAMLMarshal = NewError("marshal YAML")
)

// ProgramError is a language error raised by a program, together with the
// program text so the offending line can be shown.
type ProgramError struct {
	Source
	Err *diag.Error
}

// programError returns err as a [*ProgramError] when it is a language error,
// and err unchanged otherwise.
func programError(src Source, err error) error {
	if e, ok := diag.As(err); ok {
		return &ProgramError{Source: src, Err: e}
	}

	return err
}

func (e *ProgramError) Error() string { return e.Name + ": " + e.Err.Error() }

func (e *ProgramError) Unwrap() error { return e.Err }

func (e *ProgramError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", e.Name),
		slog.Any("error", e.Err),
	)
}

// Excerpt renders the error followed by the offending source line and a
// caret under the column.
func (e *ProgramError) Excerpt() string {
	return e.Name + ": " + diag.Excerpt(e.Text, e.Err)
}

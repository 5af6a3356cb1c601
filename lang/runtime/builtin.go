package runtime

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/token"
)

// NativeFunc implements a builtin. args has already been checked against the
// function's accepted argument count.
type NativeFunc func(call CallInfo, args []Value) (Value, error)

// CallInfo is the host state passed to a builtin for one call.
type CallInfo struct {
	Context context.Context
	Stdout  io.Writer
	Stdin   *bufio.Reader
	// Pos is the position of the call expression.
	Pos token.Position
}

func (c CallInfo) typeError(format string, args ...any) *diag.Error {
	return diag.ErrType.WithPosition(c.Pos).Withf(format, args...)
}

// Builtins returns a fresh registry of the standard builtin functions keyed
// by name. The caller owns the returned map.
func Builtins() map[string]*Function {
	fns := []*Function{
		NewNative("print", 0, -1, builtinPrint),
		NewNative("inputs", 0, 1, builtinInputs),
		NewNative("inputi", 0, 1, builtinInputi),
		NewNative("len", 1, 1, builtinLen),
		NewNative("str", 1, 1, builtinStr),
	}

	reg := make(map[string]*Function, len(fns))
	for _, fn := range fns {
		reg[fn.Name] = fn
	}

	return reg
}

func builtinPrint(call CallInfo, args []Value) (Value, error) {
	var sb strings.Builder

	for _, arg := range args {
		sb.WriteString(arg.String())
	}

	sb.WriteByte('\n')

	if _, err := io.WriteString(call.Stdout, sb.String()); err != nil {
		return nil, diag.ErrRuntime.WithPosition(call.Pos).Withf("print").Wrap(err)
	}

	return Unspecified{}, nil
}

// readLine writes the optional prompt and reads one line from call.Stdin
// without its line terminator. End of input yields whatever was read.
func readLine(call CallInfo, args []Value) (string, error) {
	if len(args) > 0 {
		prompt, ok := args[0].(String)
		if !ok {
			return "", call.typeError("prompt must be a String, not %s", args[0].Kind()).
				With(slog.String("kind", args[0].Kind().String()))
		}

		if _, err := io.WriteString(call.Stdout, string(prompt)+"\n"); err != nil {
			return "", diag.ErrRuntime.WithPosition(call.Pos).Withf("prompt").Wrap(err)
		}
	}

	if call.Stdin == nil {
		return "", nil
	}

	line, err := call.Stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", diag.ErrRuntime.WithPosition(call.Pos).Withf("read input").Wrap(err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func builtinInputs(call CallInfo, args []Value) (Value, error) {
	line, err := readLine(call, args)
	if err != nil {
		return nil, err
	}

	return String(line), nil
}

func builtinInputi(call CallInfo, args []Value) (Value, error) {
	line, err := readLine(call, args)
	if err != nil {
		return nil, err
	}

	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return nil, call.typeError("input %q is not an Integer", line)
	}

	return Integer(n), nil
}

func builtinLen(call CallInfo, args []Value) (Value, error) {
	s, ok := args[0].(String)
	if !ok {
		return nil, call.typeError("len of %s", args[0].Kind())
	}

	return Integer(utf8.RuneCountInString(string(s))), nil
}

func builtinStr(_ CallInfo, args []Value) (Value, error) {
	return String(args[0].String()), nil
}

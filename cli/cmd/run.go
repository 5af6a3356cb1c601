package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/brewin/lang"
	"github.com/ardnew/brewin/lang/runtime"
	"github.com/ardnew/brewin/log"
)

// Run executes a program.
type Run struct {
	Define   []string `help:"Define host global NAME as the value of expression EXPR"                 placeholder:"NAME=EXPR" short:"D"`
	Include  []string `help:"Search DIR for the program before $$BREWINPATH"                           placeholder:"DIR"       short:"I" type:"path"`
	MaxSteps int64    `help:"Abort after N evaluation steps (0 for no limit)"  default:"0"              placeholder:"N"`
	MaxDepth int      `help:"Abort when function calls nest deeper than N"      default:"${maxCallDepth}" placeholder:"N"`
	Strict   bool     `help:"Reject return statements outside of a function"`

	Source string `arg:"" default:"-" help:"Program file, name on the search path, or '-' for stdin." name:"source"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdio := stdioFrom(ctx)

	src, err := loadSource(ctx, r.Source, lang.SearchPath(r.Include...))
	if err != nil {
		return err
	}

	globals, err := lang.Define(nil, r.Define...)
	if err != nil {
		return ErrDefine.
			With(slog.Any("define", r.Define)).
			Wrap(err)
	}

	opts := []lang.Option{
		lang.WithLogger(log.With(slog.String("source", src.Name))),
		lang.WithOutput(stdio.Out),
		lang.WithInput(stdio.In),
		lang.WithGlobals(globals),
		lang.WithMaxSteps(r.MaxSteps),
		lang.WithMaxCallDepth(r.MaxDepth),
	}

	if r.Strict {
		opts = append(opts, lang.WithStrictReturn())
	}

	res, err := lang.Run(ctx, src.Text, opts...)
	if err != nil {
		return programError(src, err)
	}

	log.DebugContext(ctx, "program finished",
		slog.String("source", src.Name),
		slog.String("kind", res.Value.Kind().String()),
	)

	switch res.Value.Kind() {
	case runtime.KindUnspecified, runtime.KindNull:
		return nil
	default:
		_, err = fmt.Fprintln(stdio.Out, res.Value)

		return err
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/brewin/cli/cmd/repl"
	"github.com/ardnew/brewin/lang"
	"github.com/ardnew/brewin/log"
)

// Repl starts an interactive session.
type Repl struct {
	Define   []string `help:"Define host global NAME as the value of expression EXPR"  placeholder:"NAME=EXPR" short:"D"`
	Include  []string `help:"Search DIR for preloaded programs before $$BREWINPATH"     placeholder:"DIR"       short:"I" type:"path"`
	MaxSteps int64    `help:"Abort each input after N evaluation steps (0 for no limit)" default:"0"          placeholder:"N"`

	Sources []string `arg:"" help:"Programs to run before the first prompt." name:"source" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdio := stdioFrom(ctx)

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	srcs, err := loadSources(ctx, r.Sources, lang.SearchPath(r.Include...))
	if err != nil {
		return err
	}

	globals, err := lang.Define(nil, r.Define...)
	if err != nil {
		return ErrDefine.
			With(slog.Any("define", r.Define)).
			Wrap(err)
	}

	logger := log.With(slog.String("command", "repl"))

	var out repl.Output

	sess, err := lang.NewSession(
		lang.WithLogger(logger),
		lang.WithOutput(&out),
		lang.WithGlobals(globals),
		lang.WithMaxSteps(r.MaxSteps),
		lang.WithCache(lang.NewCache(logger)),
	)
	if err != nil {
		return err
	}

	for _, src := range srcs {
		_, err := sess.Eval(ctx, src.Text)

		if s := out.Flush(); s != "" {
			fmt.Fprint(stdio.Out, s)

			if !strings.HasSuffix(s, "\n") {
				fmt.Fprintln(stdio.Out)
			}
		}

		if err != nil {
			return programError(src, err)
		}

		logger.DebugContext(ctx, "preloaded program", slog.String("source", src.Name))
	}

	return repl.Run(ctx, sess, &out, cacheDir, logger)
}

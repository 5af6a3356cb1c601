package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/brewin/lang/runtime"
	"github.com/ardnew/brewin/log"
	"github.com/ardnew/brewin/pkg"
)

// Define evaluates host definitions for [WithGlobals]. Each definition has
// the form name=expression, where expression is an expr-lang expression
// (https://expr-lang.org), or just name, which defines name as true.
//
// Expressions may call env("KEY") to read from environ ("KEY=VALUE"
// entries; the process environment if environ is empty), use the host
// values listed by [HostNames], and refer to names defined earlier in defs.
// An empty expression defines the empty string.
// Every result must be representable as a Brewin value.
func Define(environ []string, defs ...string) (map[string]any, error) {
	penv := processEnv(environ)

	scope := maps.Clone(hostEnv())
	scope["env"] = func(key string) string { return penv[key] }

	out := make(map[string]any, len(defs))

	for _, def := range defs {
		name, source, hasValue := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		if !isIdentifier(name) {
			return nil, pkg.ErrDefine.Wrapf("%q: invalid name %q", def, name)
		}

		var value any = true

		switch {
		case !hasValue:
		case strings.TrimSpace(source) == "":
			value = ""
		default:
			program, err := expr.Compile(source, expr.Env(scope))
			if err != nil {
				return nil, pkg.ErrDefine.Wrap(fmt.Errorf("%s: %w", name, err))
			}

			if value, err = expr.Run(program, scope); err != nil {
				return nil, pkg.ErrDefine.Wrap(fmt.Errorf("%s: %w", name, err))
			}
		}

		if _, err := runtime.FromNative(value); err != nil {
			return nil, pkg.ErrDefine.Wrap(fmt.Errorf("%s: %w", name, err))
		}

		scope[name] = value
		out[name] = value

		log.Trace("define",
			slog.String("name", name),
			slog.Any("value", value),
		)
	}

	return out, nil
}

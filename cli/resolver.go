package cli

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/brewin/log"
	"github.com/ardnew/brewin/pkg"
)

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys name flags without their leading dashes. Nested mappings are joined
// with "-", so the following two files are equivalent:
//
//	log-level: debug
//	log-pretty: false
//
//	log:
//	  level: debug
//	  pretty: false
//
// Underscores may be used in place of hyphens (log_level). Sequences set
// repeatable flags such as define and include. Command-line flags override
// configuration values.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrConfig.Wrap(err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pkg.ErrConfig.Wrap(err)
	}

	conf := make(config)
	conf.flatten("", doc)

	return conf, nil
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (c config) flatten(prefix string, doc map[string]any) {
	for key, value := range doc {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		switch v := value.(type) {
		case map[string]any:
			c.flatten(name, v)

		case []any:
			list := make([]any, len(v))
			for i, elem := range v {
				list[i] = scalar(elem)
			}

			c[name] = list

		default:
			c[name] = scalar(v)
		}
	}
}

// scalar converts numbers to strings, which kong decodes with the flag's
// own mapper.
func scalar(v any) any {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return v
	}
}

// Validate implements [kong.Resolver]. Keys that match no flag are logged
// and otherwise ignored.
func (c config) Validate(app *kong.Application) error {
	known := make(map[string]bool)

	var walk func(*kong.Node)
	walk = func(node *kong.Node) {
		for _, flag := range node.Flags {
			known[flag.Name] = true
		}

		for _, child := range node.Children {
			walk(child)
		}
	}

	walk(app.Node)

	for _, key := range slices.Sorted(maps.Keys(c)) {
		if !known[key] {
			log.Warn("unknown configuration key", slog.String("key", key))
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	value, ok := c[flag.Name]
	if !ok {
		return nil, nil
	}

	if list, ok := value.([]any); ok && !flag.IsSlice() {
		return nil, pkg.ErrConfig.Wrap(
			fmt.Errorf("%s: expected a single value, got %d", flag.Name, len(list)))
	}

	return value, nil
}

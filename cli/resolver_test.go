package cli

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/brewin/pkg"
)

func TestLoadYAML_Flatten(t *testing.T) {
	res, err := loadYAML(strings.NewReader(`
log:
  level: debug
  pretty: false
max_steps: 500
ratio: 0.5
define:
  - A=1
  - B
`))
	if err != nil {
		t.Fatalf("loadYAML() error = %v", err)
	}

	conf := res.(config)

	want := map[string]any{
		"log-level":  "debug",
		"log-pretty": false,
		"max-steps":  "500",
		"ratio":      "0.5",
	}
	for key, value := range want {
		if conf[key] != value {
			t.Errorf("config[%q] = %#v, want %#v", key, conf[key], value)
		}
	}

	if got, ok := conf["define"].([]any); !ok || len(got) != 2 || got[0] != "A=1" {
		t.Errorf("config[define] = %#v", conf["define"])
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	_, err := loadYAML(strings.NewReader("log: [unclosed"))
	if !errors.Is(err, pkg.ErrConfig) {
		t.Errorf("loadYAML() error = %v, want %v", err, pkg.ErrConfig)
	}
}

func TestLoadYAML_Kong(t *testing.T) {
	var cli struct {
		LogLevel string   `default:"info"`
		MaxSteps int64    `default:"0"`
		Define   []string `short:"D"`
		Strict   bool
	}

	res, err := loadYAML(strings.NewReader(`
log_level: warn
max-steps: 42
define: [X=1, Y=2]
strict: true
unknown: ignored
`))
	if err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&cli, kong.Resolvers(res))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--log-level=error"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cli.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want flag to override config", cli.LogLevel)
	}

	if cli.MaxSteps != 42 || !cli.Strict {
		t.Errorf("MaxSteps = %d, Strict = %v", cli.MaxSteps, cli.Strict)
	}

	if !slices.Equal(cli.Define, []string{"X=1", "Y=2"}) {
		t.Errorf("Define = %q", cli.Define)
	}
}

func TestConfigResolve_NotSlice(t *testing.T) {
	var cli struct {
		Level string
	}

	res := config{"level": []any{"a", "b"}}

	parser, err := kong.New(&cli, kong.Resolvers(res))
	if err != nil {
		t.Fatal(err)
	}

	_, err = parser.Parse(nil)
	if err == nil || !strings.Contains(err.Error(), "expected a single value") {
		t.Errorf("Parse() error = %v, want a configuration error", err)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	Level   string   `default:"info" help:"Log level"`
	Include []string `help:"Search directories"`
	Steps   int      `default:"5"    help:"Step limit"`
	Pretty  bool     `help:"Pretty output"`
	Secret  string   `default:"x"    help:"Hidden" hidden:""`

	Init Init `cmd:"" help:"Write configuration"`
}

// initContext parses args with the configuration file at path.
func initContext(t *testing.T, path string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{"create", false, false, nil},
		{"overwrite_with_force", true, true, nil},
		{"refuse_without_force", false, true, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(path, []byte("old: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := initContext(t, path, "--pretty", "--steps=7", "init")

			err := (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			if tt.wantErr != nil {
				if string(data) != "old: true\n" {
					t.Errorf("file overwritten without force: %q", data)
				}

				return
			}

			var got map[string]any
			if err := yaml.Unmarshal(data, &got); err != nil {
				t.Fatalf("invalid YAML %q: %v", data, err)
			}

			want := map[string]string{"level": "info", "steps": "7", "pretty": "true"}
			for key, value := range want {
				if fmt.Sprint(got[key]) != value {
					t.Errorf("config[%q] = %#v, want %#v", key, got[key], value)
				}
			}

			for _, key := range []string{"help", "include", "secret", "old"} {
				if _, ok := got[key]; ok {
					t.Errorf("config has unexpected key %q", key)
				}
			}
		})
	}
}

func TestInitRun_InvalidPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.yaml")

	err := (&Init{}).Run(initContext(t, path, "init"))
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

func TestFlagValue(t *testing.T) {
	ctx := initContext(t, "unused", "--include=a", "--include=b", "init")
	ktx := kongContextFrom(ctx)

	values := make(map[string]any)
	for _, flag := range allFlags(ktx.Model.Node) {
		values[flag.Name] = flagValue(ktx, flag)
	}

	if got, ok := values["include"].([]string); !ok || len(got) != 2 {
		t.Errorf("flagValue(include) = %#v, want [a b]", values["include"])
	}

	if values["pretty"] != false {
		t.Errorf("flagValue(pretty) = %#v, want false", values["pretty"])
	}

	if values["steps"] != 5 {
		t.Errorf("flagValue(steps) = %#v, want 5", values["steps"])
	}
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/brewin/lang"
	"github.com/ardnew/brewin/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	stdioKey struct{}

	// Stdio holds the streams a command reads programs and input from and
	// writes results to.
	Stdio struct {
		In  io.Reader
		Out io.Writer
		Err io.Writer
	}
)

// WithStdio returns a new context.Context whose commands use the given
// streams instead of the process's standard streams. Nil fields keep the
// process defaults.
func WithStdio(ctx context.Context, stdio Stdio) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio)
}

func stdioFrom(ctx context.Context) Stdio {
	stdio, _ := ctx.Value(stdioKey{}).(Stdio)

	if stdio.In == nil {
		stdio.In = os.Stdin
	}

	if stdio.Out == nil {
		stdio.Out = os.Stdout
	}

	if stdio.Err == nil {
		stdio.Err = os.Stderr
	}

	return stdio
}

// Source is the text of one program file.
type Source struct {
	Name string
	Text string
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the display name of a program read from stdin.
const stdinName = "<stdin>"

// loadSources reads the named programs in order. Names that are not paths to
// existing files are looked up in search with [lang.Resolve].
//
// Files are deduplicated by resolving symlinks and comparing device/inode
// pairs, so a program named twice is read once. All occurrences of "-" are
// replaced with a single read of stdin placed last.
func loadSources(
	ctx context.Context,
	names []string,
	search []string,
) ([]Source, error) {
	stdio := stdioFrom(ctx)

	srcs := make([]Source, 0, len(names))
	seen := make(map[fileKey]struct{})

	var hasStdin bool

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		path, err := lang.Resolve(name, search)
		if err != nil {
			return nil, ErrReadSource.
				With(slog.String("source", name)).
				Wrap(err)
		}

		if !markUnique(path, seen) {
			log.DebugContext(ctx, "skip duplicate source",
				slog.String("source", path))

			continue
		}

		src, err := readFile(path)
		if err != nil {
			return nil, err
		}

		srcs = append(srcs, src)
	}

	if hasStdin {
		text, err := readAll(stdio.In)
		if err != nil {
			return nil, ErrReadSource.
				With(slog.String("source", stdinName)).
				Wrap(err)
		}

		srcs = append(srcs, Source{Name: stdinName, Text: text})
	}

	return srcs, nil
}

// loadSource reads a single program; see [loadSources].
func loadSource(ctx context.Context, name string, search []string) (Source, error) {
	srcs, err := loadSources(ctx, []string{name}, search)
	if err != nil {
		return Source{}, err
	}

	return srcs[0], nil
}

func readFile(path string) (Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return Source{}, ErrReadSource.
			With(slog.String("source", path)).
			Wrap(err)
	}
	defer file.Close()

	text, err := readAll(file)
	if err != nil {
		return Source{}, ErrReadSource.
			With(slog.String("source", path)).
			Wrap(err)
	}

	return Source{Name: path, Text: text}, nil
}

func readAll(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	buf, err := io.ReadAll(ra)

	return string(buf), err
}

// markUnique records the file at path in seen and reports whether it had not
// been seen before. Files whose identity cannot be determined are always
// unique.
func markUnique(path string, seen map[fileKey]struct{}) bool {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return true
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return true
	}

	key, ok := makeFileKey(info)
	if !ok {
		return true
	}

	if _, exists := seen[key]; exists {
		return false
	}

	seen[key] = struct{}{}

	return true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

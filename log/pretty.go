package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler writes colorized key=value records without quoting.
// Handlers derived by WithAttrs and WithGroup share the writer lock.
type prettyHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   slog.HandlerOptions
	prefix string // dotted group path for subsequent attrs
	attrs  []byte // preformatted attrs from WithAttrs
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{mu: &sync.Mutex{}, w: w, opts: *opts}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		h.writeAttr(&buf, "", slog.Time(slog.TimeKey, r.Time), true)
	}

	h.writeAttr(&buf, "", slog.Any(slog.LevelKey, r.Level), true)

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			loc := src.File + ":" + strconv.Itoa(src.Line)
			h.writeAttr(&buf, "", slog.String(slog.SourceKey, loc), true)
		}
	}

	h.writeAttr(&buf, "", slog.String(slog.MessageKey, r.Message), true)
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a, false)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h

	var buf bytes.Buffer

	buf.Write(h.attrs)

	for _, a := range attrs {
		h.writeAttr(&buf, h.prefix, a, false)
	}

	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// writeAttr appends a single attribute. Builtin attributes (time, level,
// source, message) pass through ReplaceAttr with no groups, like the
// handlers of package slog.
func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr, builtin bool) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range attrs {
			h.writeAttr(buf, prefix, ga, false)
		}

		return
	}

	if h.opts.ReplaceAttr != nil && (builtin || prefix == "") {
		var groups []string
		if prefix != "" {
			groups = strings.Split(strings.TrimSuffix(prefix, "."), ".")
		}

		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	if buf.Len() > 0 || !builtin {
		buf.WriteByte(' ')
	}

	buf.WriteString(colorGray)
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteString(colorReset)
	buf.WriteByte('=')

	color, text := colorize(a.Key, a.Value)

	buf.WriteString(color)
	buf.WriteString(text)
	buf.WriteString(colorReset)
}

func colorize(key string, v slog.Value) (string, string) {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return colorYellow, v.String()
	case slog.KindBool:
		if v.Bool() {
			return colorGreen, "true"
		}

		return colorRed, "false"
	case slog.KindDuration:
		return colorMagenta, v.String()
	case slog.KindTime:
		return colorBlue, v.String()
	}

	if key == slog.LevelKey {
		s := v.String()

		switch {
		case strings.HasPrefix(s, "ERROR"):
			return colorRed, s
		case strings.HasPrefix(s, "WARN"):
			return colorYellow, s
		case strings.HasPrefix(s, "INFO"):
			return colorGreen, s
		default:
			return colorBlue, s
		}
	}

	return colorCyan, v.String()
}

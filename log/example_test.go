package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/brewin/log"
)

func Example_basic() {
	logger := log.Make(os.Stderr)
	logger.Info("interpreter started", slog.String("source", "main.bwn"))
}

func Example_configuration() {
	logger := log.Make(os.Stderr,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Trace("token", slog.String("kind", "identifier"))
}

func Example_withContext() {
	logger := log.Make(os.Stderr).With(slog.String("component", "eval"))

	logger.DebugContext(context.Background(), "call", slog.String("name", "main"))
}

// Package log is a small leveled logging layer over [log/slog].
//
// A [Logger] is created with [Make] and configured by functional options
// ([WithLevel], [WithFormat], [WithTimeLayout], [WithCaller], [WithPretty]).
// Loggers are immutable values; [Logger.Wrap] and [Logger.With] derive new
// ones. The zero Logger discards all records.
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelTrace))
//	logger.Trace("token", slog.String("text", "while"))
//
// Besides the levels of package slog there is [LevelTrace], used by the
// interpreter for per-token and per-node messages.
//
// The package-level functions ([Info], [Error], ...) write through a default
// logger on standard error, reconfigured with [Config].
package log

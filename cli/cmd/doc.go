// Package cmd implements the brewin subcommands: run, fmt, repl and init.
//
// Commands read their streams through [WithStdio] so they can be driven
// without a terminal, and report language errors as [*ProgramError], which
// carries the program text for caret excerpts.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// Package cli contains the command line interface for brewin.
//
// # Usage
//
//	brewin [flags] [run] [program]    run a program (the default command)
//	brewin repl [program...]          start an interactive session
//	brewin fmt [native|json|yaml|ast|tokens] [program]
//	brewin init [--force]             write the configuration file
//
// A program is a file path, a name found on the include path or
// $BREWINPATH (with or without the .brewin extension), or "-" for stdin.
//
// # Configuration
//
// Every flag can also be set in config.yaml under the user configuration
// directory (for example ~/.config/brewin/config.yaml). Keys are flag names;
// nested mappings are joined with "-":
//
//	log:
//	  level: debug
//	max-depth: 2000
//	define:
//	  - DEBUG
//
// Command-line flags override configuration values. "brewin init" writes
// the file from the current settings.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: profile the run (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/brewin/pprof)
package cli

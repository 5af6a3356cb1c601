// Package profile starts optional runtime profiling for brewin.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing, so
// callers never need to check how the binary was built.
//
// The supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Profiles are written to [Profiler.Path] with
// names matching the mode (cpu.pprof, mem.pprof, ...):
//
//	stop := profile.Profiler{Mode: "cpu", Path: dir}.Start()
//	defer stop.Stop()
//
// A typical session profiles a long-running program:
//
//	brewin --pprof-mode=cpu run fib.brewin
//	go tool pprof -http=: ~/.cache/brewin/pprof/cpu.pprof
package profile

// Tag is the build tag that enables profiling. It also names the profiling
// flag group and the default output directory.
const Tag = "pprof"

package lang

import (
	"context"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/brewin/lang/eval"
	"github.com/ardnew/brewin/lang/runtime"
)

// Session evaluates a sequence of inputs against one persistent root
// scope, as an interactive shell does. A Session is safe for concurrent
// use; evaluations are serialized.
//
// Names, Locals and Lookup read a snapshot of the bindings taken after the
// most recent evaluation, so they never wait for a running one.
type Session struct {
	mu      sync.Mutex // serializes Eval and Reset
	cfg     config
	in      *eval.Interpreter
	globals *runtime.Environment
	env     *runtime.Environment

	snapMu sync.RWMutex
	snap   snapshot
}

// snapshot is an immutable copy of the bindings visible in a session.
type snapshot struct {
	visible map[string]runtime.Value
	names   []string // sorted keys of visible
	locals  []string // sorted
}

func takeSnapshot(env *runtime.Environment) snapshot {
	visible := make(map[string]runtime.Value)

	for name := range env.Visible() {
		if v, ok := env.Lookup(name); ok {
			visible[name] = v
		}
	}

	return snapshot{
		visible: visible,
		names:   slices.Sorted(maps.Keys(visible)),
		locals:  slices.Collect(env.Names()),
	}
}

// NewSession returns a session configured by opts. Program output is
// written to the [WithOutput] writer; a return outside any function is
// always an InvalidControlFlowError.
func NewSession(opts ...Option) (*Session, error) {
	cfg := makeConfig(opts...)

	globals, err := cfg.globalEnv()
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, globals: globals, env: globals.Child()}
	s.in = cfg.interpreter(cfg.stdout, false)
	s.publish()

	return s, nil
}

// publish replaces the snapshot with the current bindings. The caller holds
// s.mu or has exclusive access to s.
func (s *Session) publish() {
	snap := takeSnapshot(s.env)

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

func (s *Session) snapshot() snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	return s.snap
}

// Eval parses src and evaluates its statements in the session scope. It
// returns the value of the last expression statement, or Unspecified. On
// error, bindings made before the failing statement are kept.
func (s *Session) Eval(ctx context.Context, src string) (runtime.Value, error) {
	prog, err := s.cfg.parse(ctx, src)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.publish()

	return s.in.Statements(ctx, prog.Stmts, s.env)
}

// Names yields every name visible in the session scope, including builtins
// and globals, in sorted order.
func (s *Session) Names() iter.Seq[string] {
	return slices.Values(s.snapshot().names)
}

// Locals yields the names bound by evaluated inputs, in sorted order.
func (s *Session) Locals() iter.Seq[string] {
	return slices.Values(s.snapshot().locals)
}

// Lookup returns the value bound to name in the session scope.
func (s *Session) Lookup(name string) (runtime.Value, bool) {
	v, ok := s.snapshot().visible[name]

	return v, ok
}

// Reset discards every binding made by evaluated inputs.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env = s.globals.Child()
	s.publish()
}

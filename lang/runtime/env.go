package runtime

import (
	"iter"
	"maps"
	"slices"
)

// Environment is one scope in a chain of lexical scopes. Lookups and
// assignments walk outward through parents; declarations always bind in the
// receiver.
//
// Closures hold a reference to the Environment they were defined in, so a
// scope outlives the block that created it for as long as a function value
// that captured it is reachable.
type Environment struct {
	vars   map[string]Value
	parent *Environment
}

// NewEnvironment returns an empty scope enclosed by parent, which may be nil.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]Value), parent: parent}
}

// Child returns a new empty scope enclosed by e.
func (e *Environment) Child() *Environment { return NewEnvironment(e) }

// Parent returns the enclosing scope, or nil for the outermost one.
func (e *Environment) Parent() *Environment { return e.parent }

// Lookup returns the value bound to name in the nearest scope that binds it.
func (e *Environment) Lookup(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// LookupLocal is like [Environment.Lookup] but only consults e itself.
func (e *Environment) LookupLocal(name string) (Value, bool) {
	v, ok := e.vars[name]

	return v, ok
}

// Declare binds name in e. It returns false, leaving e unchanged, if e
// already binds name. Bindings in enclosing scopes are shadowed.
func (e *Environment) Declare(name string, v Value) bool {
	if _, ok := e.vars[name]; ok {
		return false
	}

	e.vars[name] = v

	return true
}

// Assign replaces the value of the nearest binding of name. It returns false
// if no scope in the chain binds name.
func (e *Environment) Assign(name string, v Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v

			return true
		}
	}

	return false
}

// Len returns the number of names bound directly in e.
func (e *Environment) Len() int { return len(e.vars) }

// Names yields the names bound directly in e in sorted order.
func (e *Environment) Names() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(e.vars)))
}

// Visible yields every name resolvable from e in sorted order, each once.
func (e *Environment) Visible() iter.Seq[string] {
	seen := make(map[string]struct{})

	for s := e; s != nil; s = s.parent {
		for name := range s.vars {
			seen[name] = struct{}{}
		}
	}

	return slices.Values(slices.Sorted(maps.Keys(seen)))
}

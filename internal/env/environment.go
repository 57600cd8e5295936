// Package env implements the frame-chain Environment of spec §3
// ("Environment. Chain of frames: each frame maps symbol-id -> Location")
// on top of internal/store's pluggable Location allocator.
package env

import (
	"fmt"

	"github.com/scmlang/scm/internal/store"
	"github.com/scmlang/scm/internal/value"
)

// Environment is one frame in the lexical-scope chain. It implements
// value.Env so Lambda closures (defined in internal/value, to avoid an
// import cycle) can carry an Environment without internal/value importing
// this package.
type Environment struct {
	vars   map[string]store.Handle
	outer  *Environment
	backing store.Store
}

// NewRoot creates the top-level environment, backed by s.
func NewRoot(s store.Store) *Environment {
	return &Environment{vars: make(map[string]store.Handle), backing: s}
}

// NewChild creates a nested scope sharing the parent's backing store.
func NewChild(outer *Environment) *Environment {
	return &Environment{vars: make(map[string]store.Handle), outer: outer, backing: outer.backing}
}

// Child implements value.Env.
func (e *Environment) Child() value.Env { return NewChild(e) }

// Define allocates a fresh Location in the current frame, shadowing any
// binding of the same name from an outer frame.
func (e *Environment) Define(name string, v value.Value) {
	h := e.backing.Allocate(v)
	e.vars[name] = h
}

// Get looks up name in this frame, then recursively in outer frames.
func (e *Environment) Get(name string) (value.Value, bool) {
	for f := e; f != nil; f = f.outer {
		if h, ok := f.vars[name]; ok {
			return f.backing.Get(h)
		}
	}
	return nil, false
}

// Set assigns to an existing binding, searching outward; returns an error
// if name is unbound in the whole chain (spec §4.4 "set! x v ... error if
// unbound").
func (e *Environment) Set(name string, v value.Value) error {
	for f := e; f != nil; f = f.outer {
		if h, ok := f.vars[name]; ok {
			f.backing.Set(h, v)
			return nil
		}
	}
	return fmt.Errorf("unbound variable: %s", name)
}

// Has reports whether name is bound anywhere in the chain, without
// resolving its value — used by the macro expander's definition-context
// detection.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Store returns the backing Store, for the memory-introspection specials
// (spec §4.12 `memory-usage`, `memory-statistics`, ...).
func (e *Environment) Store() store.Store { return e.backing }

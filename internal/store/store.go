// Package store implements the two interchangeable Location allocators
// named in spec §3/§4.12/§9: a refcount+mark-sweep store and a RAII-style
// store built on Go 1.24's weak pointers. Both satisfy the LocationHandle
// contract (allocate/get/set/stats), and an Interpreter is parameterized at
// construction by which one backs its variable bindings (spec §4.12, §6
// "memory-strategy").
package store

import "github.com/scmlang/scm/internal/value"

// Handle identifies one allocated Location. Handles from one Store must
// never be passed to another (spec §5 "Shared-resource policy").
type Handle uint64

// Stats mirrors the statistics both strategies expose (spec §4.12: "Both
// stores expose identical statistics").
type Stats struct {
	TotalAllocations int64
	Live             int64
	Peak             int64
	GCCycles         int64
}

// Store is the LocationHandle contract (spec §3): allocate(value) ->
// handle, get(handle) -> value, set(handle, value), stats().
type Store interface {
	Allocate(v value.Value) Handle
	Get(h Handle) (value.Value, bool)
	Set(h Handle, v value.Value)
	Stats() Stats
	// Collect forces a GC cycle on stores that have one; it is a no-op on
	// stores that don't (spec §6: "(collect-garbage) ... no-op for RAII").
	Collect()
	// SetLimit changes the allocation-triggered GC threshold (spec §6
	// "(set-memory-limit! k)"); stores without an automatic trigger accept
	// and ignore it.
	SetLimit(n int64)
}

// Strategy selects which Store implementation New builds.
type Strategy int

const (
	RefcountGC Strategy = iota
	RaiiStore
)

// New builds a Store for the requested strategy with the given initial
// allocation-count GC threshold (only meaningful for RefcountGC).
func New(strategy Strategy, initialLimit int64) Store {
	switch strategy {
	case RaiiStore:
		return newRAIIStore()
	default:
		return newRefcountStore(initialLimit)
	}
}

package store

import (
	"weak"

	"github.com/scmlang/scm/internal/value"
)

// raiiCell is the strong owner of a Location's value. Its lifetime is tied
// to how long something keeps a *raiiCell reachable — Go's own tracing GC
// does the actual reclamation; the store's job is bookkeeping (stats,
// idle-sweep of its handle table) and offering Weak back-references so
// environment chains that capture each other (a closure whose env captures
// a binding that itself holds that same closure) don't need the store to
// break the cycle by hand.
type raiiCell struct {
	value value.Value
	idle  int32 // incremented by IdleSweep, reset on access; past a threshold a handle is evicted from the table (the Value itself may still be kept alive elsewhere)
}

// raiiStore is the "RAII store" of spec §3/§9: Locations hold strong
// handles, Weak back-references break cycles, cleanup is driven by handle
// lifetime and periodic idle sweeps rather than a tracing collector.
type raiiStore struct {
	cells   []*raiiCell
	weak    []weak.Pointer[raiiCell] // parallel array: a weak view of the same cell, for WeakGet
	stats   Stats
	idleCap int32
}

func newRAIIStore() *raiiStore {
	return &raiiStore{idleCap: 64}
}

func (s *raiiStore) Allocate(v value.Value) Handle {
	c := &raiiCell{value: v}
	h := Handle(len(s.cells))
	s.cells = append(s.cells, c)
	s.weak = append(s.weak, weak.Make(c))
	s.stats.TotalAllocations++
	s.stats.Live++
	if s.stats.Live > s.stats.Peak {
		s.stats.Peak = s.stats.Live
	}
	return h
}

func (s *raiiStore) Get(h Handle) (value.Value, bool) {
	if int(h) >= len(s.cells) || s.cells[h] == nil {
		return nil, false
	}
	s.cells[h].idle = 0
	return s.cells[h].value, true
}

// WeakGet resolves a handle through its weak back-reference without
// refreshing idle-aging. Nothing in the evaluator calls it.
func (s *raiiStore) WeakGet(h Handle) (value.Value, bool) {
	if int(h) >= len(s.weak) {
		return nil, false
	}
	c := s.weak[h].Value()
	if c == nil {
		return nil, false
	}
	return c.value, true
}

func (s *raiiStore) Set(h Handle, v value.Value) {
	if int(h) < len(s.cells) && s.cells[h] != nil {
		s.cells[h].value = v
		s.cells[h].idle = 0
	}
}

// Collect is a no-op for the RAII strategy (spec §6: "no-op for RAII");
// IdleSweep is the strategy's actual housekeeping. It is not part of the
// Store interface, and nothing in the interpreter calls it.
func (s *raiiStore) Collect() {}

func (s *raiiStore) SetLimit(int64) {}

// IdleSweep ages every live handle by one tick and evicts handles from the
// table once they cross idleCap ticks without an access, matching spec
// §3/§9's "cleanup based on handle lifetime and idle-time aging".
func (s *raiiStore) IdleSweep() {
	evicted := 0
	for i, c := range s.cells {
		if c == nil {
			continue
		}
		c.idle++
		if c.idle > s.idleCap {
			s.cells[i] = nil
			evicted++
		}
	}
	s.stats.Live -= int64(evicted)
}

func (s *raiiStore) Stats() Stats { return s.stats }

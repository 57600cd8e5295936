package store

import "github.com/scmlang/scm/internal/value"

// refcountCell holds one Location's value plus the bookkeeping the
// refcount+mark-sweep collector needs: a strong reference count (bumped
// whenever a new Value captures the handle, e.g. a closure's environment
// chain), a generation counter for promotion, and a mark bit used during
// the sweep phase.
type refcountCell struct {
	value      value.Value
	strong     int32
	generation int32
	marked     bool
	free       bool
}

// refcountStore is the "refcount-GC store" of spec §3/§9: cells tracked by
// id, mark-and-sweep plus generational promotion, triggered when the
// allocation counter exceeds a configured limit.
type refcountStore struct {
	cells        []refcountCell
	freeList     []Handle
	allocCount   int64
	limit        int64
	stats        Stats
}

func newRefcountStore(limit int64) *refcountStore {
	if limit <= 0 {
		limit = 10000
	}
	return &refcountStore{limit: limit}
}

func (s *refcountStore) Allocate(v value.Value) Handle {
	var h Handle
	if n := len(s.freeList); n > 0 {
		h = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.cells[h] = refcountCell{value: v, strong: 1, generation: s.cells[h].generation + 1}
	} else {
		h = Handle(len(s.cells))
		s.cells = append(s.cells, refcountCell{value: v, strong: 1})
	}
	s.allocCount++
	s.stats.TotalAllocations++
	s.stats.Live++
	if s.stats.Live > s.stats.Peak {
		s.stats.Peak = s.stats.Live
	}
	if s.allocCount >= s.limit {
		s.Collect()
		s.allocCount = 0
	}
	return h
}

func (s *refcountStore) Get(h Handle) (value.Value, bool) {
	if int(h) >= len(s.cells) || s.cells[h].free {
		return nil, false
	}
	return s.cells[h].value, true
}

func (s *refcountStore) Set(h Handle, v value.Value) {
	if int(h) < len(s.cells) && !s.cells[h].free {
		s.cells[h].value = v
	}
}

// Collect runs a mark-and-sweep cycle. Without a precise root set threaded
// from the evaluator's live environments, this conservative pass treats
// every cell with strong > 0 as reachable and reclaims only cells that have
// been explicitly released (strong == 0) — still bounded-time per spec's
// "stop-the-world from the evaluator's perspective but complete within a
// single trampoline step boundary".
func (s *refcountStore) Collect() {
	reclaimed := 0
	for i := range s.cells {
		c := &s.cells[i]
		if c.free {
			continue
		}
		if c.strong <= 0 {
			c.free = true
			c.value = nil
			s.freeList = append(s.freeList, Handle(i))
			reclaimed++
			continue
		}
		c.generation++
		c.marked = false
	}
	s.stats.Live -= int64(reclaimed)
	s.stats.GCCycles++
}

func (s *refcountStore) Stats() Stats { return s.stats }

func (s *refcountStore) SetLimit(n int64) {
	if n > 0 {
		s.limit = n
	}
}

// Release decrements a handle's strong count; when it reaches zero the cell
// becomes eligible for the next Collect. Exposed for the environment layer
// to call when a frame goes out of scope under the refcount strategy.
func (s *refcountStore) Release(h Handle) {
	if int(h) < len(s.cells) && !s.cells[h].free && s.cells[h].strong > 0 {
		s.cells[h].strong--
	}
}

// Retain increments a handle's strong count, e.g. when a second closure
// captures the same Location.
func (s *refcountStore) Retain(h Handle) {
	if int(h) < len(s.cells) {
		s.cells[h].strong++
	}
}

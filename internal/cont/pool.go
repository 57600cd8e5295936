package cont

import "sync/atomic"

// PoolStats mirrors the hot-path counters spec C9 asks the pool to expose
// alongside the store's own Stats (spec §4.12 "continuation pool
// statistics: hits, misses, live count").
type PoolStats struct {
	Hits  int64
	Misses int64
	Live  int64
}

// Pool is a free-list allocator for DoLoopCont, the one continuation kind
// spec §4.10/§9 singles out for pooling ("global pooled allocator for
// DoLoopContinuation; age-based reuse") because tight `do`-loops would
// otherwise allocate one continuation per iteration.
//
// The free list is age-ordered (oldest-returned-first) rather than a plain
// stack: reusing the longest-idle entry first keeps any entry that is still
// reachable from a captured continuation (spec §4.5's call/cc can capture a
// continuation mid-loop) from being handed back out while a reference to it
// may still be alive elsewhere. It is not itself a correctness guarantee —
// Acquire always allocates fresh when Release hasn't been called for the
// returned entry — just a policy that reduces the odds of reuse-after-
// capture in practice.
type Pool struct {
	free  []*DoLoopCont
	stats PoolStats
}

// NewPool constructs an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire returns a DoLoopCont ready to be populated by the caller (who
// fills in Env/Vars/Steps/Test/ResultBody/Body directly), reusing the
// oldest free entry when one is available.
func (p *Pool) Acquire(parent Continuation) *DoLoopCont {
	if n := len(p.free); n > 0 {
		c := p.free[0]
		p.free = p.free[1:]
		atomic.AddInt64(&p.stats.Hits, 1)
		c.base = base{kind: KDoLoop, parent: parent}
		return c
	}
	atomic.AddInt64(&p.stats.Misses, 1)
	atomic.AddInt64(&p.stats.Live, 1)
	return &DoLoopCont{base: base{kind: KDoLoop, parent: parent}}
}

// Release returns a DoLoopCont to the free list once its `do`-loop has
// finished (test became true) or been abandoned (non-local exit past it).
// The caller must not retain c after calling Release unless it has also
// been captured by a first-class continuation, in which case Release
// should not be called at all (spec's escaping-continuation rule: a
// captured frame outlives its originating pool slot).
func (p *Pool) Release(c *DoLoopCont) {
	c.Env = nil
	c.Steps = nil
	c.Test = nil
	c.ResultBody = nil
	c.Body = nil
	c.Vars = nil
	c.Iteration = 0
	p.free = append(p.free, c)
}

// Stats reports the pool's hit/miss/live counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Hits:   atomic.LoadInt64(&p.stats.Hits),
		Misses: atomic.LoadInt64(&p.stats.Misses),
		Live:   atomic.LoadInt64(&p.stats.Live),
	}
}

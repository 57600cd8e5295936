package srfi

import "github.com/scmlang/scm/internal/interp"

// lazyModule is SRFI 45 ("Primitives for Expressing Iterative Lazy
// Algorithms"): re-exported, not reimplemented — `lazy`, `delay-force`,
// and `force` are already evaluator special forms (internal/interp/promise.go)
// because forcing a chain of lazy promises must run through the trampoline
// as ordinary tail calls rather than recursing on the Go stack.
type lazyModule struct{}

func newLazyModule() *lazyModule { return &lazyModule{} }

func (*lazyModule) Number() int         { return 45 }
func (*lazyModule) Name() string        { return "(srfi 45)" }
func (*lazyModule) Install(*interp.Interpreter) {}

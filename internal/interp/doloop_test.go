package interp

import (
	"testing"

	"github.com/scmlang/scm/internal/value"
)

func TestDoLoopCountingSum(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(do ((i 0 (+ i 1)) (sum 0 (+ sum i))) ((= i 5) sum))`)
	n, ok := v.(value.Number)
	if !ok {
		t.Fatalf("expected a number, got %s", v.Write())
	}
	got, _ := n.Int64()
	if got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestDoLoopParallelRebindUsesOldValues(t *testing.T) {
	// step expressions all see the *previous* iteration's bindings, not
	// each other's freshly-stepped values (R7RS parallel update semantics).
	in := newTestInterp(t)
	v := evalSrc(t, in, `(do ((a 0 b) (b 1 (+ a b))) ((= a 5) a))`)
	n := v.(value.Number)
	got, _ := n.Int64()
	if got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestDoLoopNoResultBodyReturnsUnspecified(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(do ((i 0 (+ i 1))) ((= i 3)))`)
	if _, ok := v.(value.Unspecified); !ok {
		t.Fatalf("expected unspecified, got %s", v.Write())
	}
}

func TestDoLoopIterationCapRaises(t *testing.T) {
	in := newTestInterp(t)
	in.MaxIterations = 10
	_, err := in.Eval(parseForm(t, `(do ((i 0 (+ i 1))) ((= i 1000000) i))`), in.Global)
	if err == nil {
		t.Fatalf("expected an iteration-limit error, got none")
	}
}

func TestDoLoopFallsBackWhenStepCallsUserLambda(t *testing.T) {
	// `inc` is a user-defined lambda, not a primitive, so the direct
	// evaluator bails on the step expression and the loop must finish
	// correctly via the general continuation-driven path.
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define (inc x) (+ x 1))
		(do ((i 0 (inc i)) (sum 0 (+ sum i))) ((= i 4) sum))`)
	n := v.(value.Number)
	got, _ := n.Int64()
	if got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
}

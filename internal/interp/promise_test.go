package interp

import "testing"

func TestForceDeliversDelayedValue(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(force (delay (+ 1 2)))`)
	if intVal(t, v) != 3 {
		t.Fatalf("expected 3, got %s", v.Write())
	}
}

func TestForceMemoizesAndOnlyEvaluatesOnce(t *testing.T) {
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define count 0)
		(define p (delay (begin (set! count (+ count 1)) count)))
		(force p)
		(force p)
		count`)
	if intVal(t, v) != 1 {
		t.Fatalf("expected the delayed expression to run exactly once, got count = %s", v.Write())
	}
}

func TestForceChainsThroughLazyPromises(t *testing.T) {
	// SRFI 45 `lazy`: a thunk returning another promise chains into it
	// instead of delivering the inner promise object itself.
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define (step n) (lazy (if (= n 0) (delay 'done) (step (- n 1)))))
		(force (step 5))`)
	if v.Write() != "done" {
		t.Fatalf("expected done, got %s", v.Write())
	}
}

package interp

import "testing"

func TestCallCCEscapeShortCircuitsRemainingWork(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `
		(+ 1 (call/cc (lambda (k)
		                (+ 10 (k 5) 1000))))`)
	if intVal(t, v) != 6 {
		t.Fatalf("expected 6 (the continuation skips the rest of its own call/cc body), got %s", v.Write())
	}
}

func TestCallCCNonEscapeReturnsProcsOwnValue(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(call/cc (lambda (k) (+ 1 2)))`)
	if intVal(t, v) != 3 {
		t.Fatalf("expected 3, got %s", v.Write())
	}
}

func TestCallCCEscapesNestedApplicationArguments(t *testing.T) {
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define (find-first pred lst)
		  (call/cc
		    (lambda (return)
		      (for-each (lambda (x) (if (pred x) (return x) #f)) lst)
		      #f)))
		(find-first (lambda (x) (< 2 x)) (cons 1 (cons 2 (cons 3 (cons 4 '())))))`)
	if intVal(t, v) != 3 {
		t.Fatalf("expected 3, got %s", v.Write())
	}
}

func TestCallWithCurrentContinuationAliasWorks(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(call-with-current-continuation (lambda (k) (k 42)))`)
	if intVal(t, v) != 42 {
		t.Fatalf("expected 42, got %s", v.Write())
	}
}

package interp

import (
	"testing"

	"github.com/scmlang/scm/internal/value"
)

func TestDynamicWindRunsBeforeAndAfterAroundNormalReturn(t *testing.T) {
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define log '())
		(define (note! x) (set! log (cons x log)))
		(dynamic-wind
		  (lambda () (note! 'before))
		  (lambda () (note! 'during) 'result)
		  (lambda () (note! 'after)))
		log`)
	got := writeList(t, v)
	want := []string{"after", "during", "before"} // log conses onto the front, so newest first
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDynamicWindAfterRunsWhenCallCCEscapesOut(t *testing.T) {
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define ran-after #f)
		(+ 1 (call/cc (lambda (k)
		                (dynamic-wind
		                  (lambda () #f)
		                  (lambda () (k 41))
		                  (lambda () (set! ran-after #t))))))`)
	if intVal(t, v) != 42 {
		t.Fatalf("expected 42, got %s", v.Write())
	}
	ranAfter, err := in.Eval(parseForm(t, "ran-after"), in.Global)
	if err != nil {
		t.Fatalf("eval ran-after: %v", err)
	}
	if !value.IsTruthy(ranAfter) {
		t.Fatalf("expected the dynamic-wind's after thunk to run when call/cc escaped out of it")
	}
}

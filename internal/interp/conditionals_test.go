package interp

import (
	"testing"

	"github.com/scmlang/scm/internal/value"
)

func intVal(t *testing.T, v value.Value) int64 {
	t.Helper()
	n, ok := v.(value.Number)
	if !ok {
		t.Fatalf("expected a number, got %s", v.Write())
	}
	i, ok := n.Int64()
	if !ok {
		t.Fatalf("expected an integer, got %s", v.Write())
	}
	return i
}

func TestCondFirstTruthyClauseWins(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(cond (#f 1) (#t 2) (else 3))`)
	if intVal(t, v) != 2 {
		t.Fatalf("expected 2, got %s", v.Write())
	}
}

func TestCondArrowClausePassesTestValueToReceiver(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(cond ((+ 1 2) => (lambda (x) (* x 10))))`)
	if intVal(t, v) != 30 {
		t.Fatalf("expected 30, got %s", v.Write())
	}
}

func TestCondNoMatchNoElseReturnsUnspecified(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(cond (#f 1))`)
	if _, ok := v.(value.Unspecified); !ok {
		t.Fatalf("expected unspecified, got %s", v.Write())
	}
}

func TestCaseDispatchesOnDatumMembership(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(case (+ 1 1) ((1 2 3) 'small) ((4 5 6) 'big) (else 'other))`)
	if v.Write() != "small" {
		t.Fatalf("expected small, got %s", v.Write())
	}
}

func TestCaseElseFallback(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(case 99 ((1 2 3) 'small) (else 'other))`)
	if v.Write() != "other" {
		t.Fatalf("expected other, got %s", v.Write())
	}
}

func TestAndShortCircuitsOnFalse(t *testing.T) {
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define touched #f)
		(and #t #f (begin (set! touched #t) #t))
		touched`)
	if value.IsTruthy(v) {
		t.Fatalf("expected and to short-circuit before the third operand")
	}
}

func TestAndReturnsLastValueWhenAllTruthy(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(and 1 2 3)`)
	if intVal(t, v) != 3 {
		t.Fatalf("expected 3, got %s", v.Write())
	}
}

func TestOrReturnsFirstTruthyValue(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(or #f 2 3)`)
	if intVal(t, v) != 2 {
		t.Fatalf("expected 2, got %s", v.Write())
	}
}

func TestWhenRunsBodyOnlyWhenTestTruthy(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(when (< 1 2) 1 2 3)`)
	if intVal(t, v) != 3 {
		t.Fatalf("expected 3, got %s", v.Write())
	}
}

func TestUnlessSkipsBodyWhenTestTruthy(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(unless (< 1 2) 99)`)
	if _, ok := v.(value.Unspecified); !ok {
		t.Fatalf("expected unspecified, got %s", v.Write())
	}
}

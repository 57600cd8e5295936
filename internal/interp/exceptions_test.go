package interp

import (
	"testing"
)

func TestGuardCatchesRaisedValueAndRunsMatchingClause(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `
		(guard (e ((symbol? e) 'caught-symbol)
		           (else 'caught-other))
		  (raise 'boom))`)
	if v.Write() != "caught-symbol" {
		t.Fatalf("expected caught-symbol, got %s", v.Write())
	}
}

func TestGuardReRaisesWhenNoClauseMatches(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `
		(guard (outer (else 'outer-caught))
		  (guard (inner ((= inner 1) 'inner-caught))
		    (raise 2)))`)
	if v.Write() != "outer-caught" {
		t.Fatalf("expected outer-caught (re-raise to enclosing guard), got %s", v.Write())
	}
}

func TestGuardBodyCompletesNormallyWithoutTriggeringClauses(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(guard (e (#t 'should-not-run)) (+ 1 2))`)
	if intVal(t, v) != 3 {
		t.Fatalf("expected 3 (no raise, clauses never run), got %s", v.Write())
	}
}

func TestRaiseContinuableResumesWithHandlerResult(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `
		(with-exception-handler
		  (lambda (e) (+ e 100))
		  (lambda () (+ 1 (raise-continuable 5))))`)
	if intVal(t, v) != 106 {
		t.Fatalf("expected 106, got %s", v.Write())
	}
}

func TestUnhandledRaiseIsAnError(t *testing.T) {
	in := newTestInterp(t)
	_, err := in.Eval(parseForm(t, `(raise 'oops)`), in.Global)
	if err == nil {
		t.Fatalf("expected an error for an unhandled raise")
	}
}

func TestGuardCatchesErrorObjectFromErrorPrimitive(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `
		(guard (e ((error-object? e) (error-object-message e)))
		  (error "bad input" 1 2))`)
	if v.Write() != `"bad input"` {
		t.Fatalf("expected the error-object's message, got %s", v.Write())
	}
}

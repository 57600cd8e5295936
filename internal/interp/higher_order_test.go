package interp

import (
	"testing"

	"github.com/scmlang/scm/internal/value"
)

func writeList(t *testing.T, v value.Value) []string {
	t.Helper()
	items, ok := value.ListToSlice(v)
	if !ok {
		t.Fatalf("expected a proper list, got %s", v.Write())
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Write()
	}
	return out
}

func TestMapAppliesProcToEachElement(t *testing.T) {
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define (inc x) (+ x 1))
		(map inc (cons 1 (cons 2 (cons 3 '()))))`)
	got := writeList(t, v)
	want := []string{"2", "3", "4"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMapStopsAtShortestList(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(map + (cons 1 (cons 2 '())) (cons 10 (cons 20 (cons 30 '()))))`)
	got := writeList(t, v)
	if len(got) != 2 || got[0] != "11" || got[1] != "22" {
		t.Fatalf("expected (11 22), got %v", got)
	}
}

func TestForEachReturnsUnspecifiedAndRunsInOrder(t *testing.T) {
	in := newTestInterp(t)
	v := evalProgram(t, in, `
		(define total 0)
		(define (accum! x) (set! total (+ total x)))
		(for-each accum! (cons 1 (cons 2 (cons 3 '()))))
		total`)
	n := v.(value.Number)
	got, _ := n.Int64()
	if got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
}

func TestApplyFlattensFinalListArgument(t *testing.T) {
	in := newTestInterp(t)
	v := evalSrc(t, in, `(apply + 1 2 (cons 3 (cons 4 '())))`)
	n := v.(value.Number)
	got, _ := n.Int64()
	if got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

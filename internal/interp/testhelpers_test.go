package interp

import (
	"testing"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/builtins"
	"github.com/scmlang/scm/internal/lexer"
	"github.com/scmlang/scm/internal/parser"
	"github.com/scmlang/scm/internal/store"
	"github.com/scmlang/scm/internal/value"
)

// newTestInterp builds an Interpreter with the real bootstrap library
// (internal/builtins) installed into its global environment, the same way
// pkg/scheme.New wires a host-facing Interpreter, so these tests exercise
// the evaluator against its actual primitives rather than a stand-in set.
func newTestInterp(t *testing.T) *Interpreter {
	t.Helper()
	in := New(store.New(store.RefcountGC, 0))
	builtins.InstallDefault(in.Global)
	builtins.InstallMemoryPrimitives(in.Global, in.Store)
	return in
}

func parseForm(t *testing.T, src string) ast.Node {
	t.Helper()
	l := lexer.New("test.scm", src)
	p := parser.New(l, parser.ModeStrict)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(prog.Forms) != 1 {
		t.Fatalf("expected exactly one form in %q, got %d", src, len(prog.Forms))
	}
	return prog.Forms[0]
}

func evalSrc(t *testing.T, in *Interpreter, src string) value.Value {
	t.Helper()
	node := parseForm(t, src)
	v, err := in.Eval(node, in.Global)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

// evalProgram evaluates every top-level form of src in order against in's
// global environment and returns the last form's value, for tests whose
// setup needs more than one definition (e.g. a helper `define` ahead of the
// expression under test).
func evalProgram(t *testing.T, in *Interpreter, src string) value.Value {
	t.Helper()
	l := lexer.New("test.scm", src)
	p := parser.New(l, parser.ModeStrict)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(prog.Forms) == 0 {
		t.Fatalf("expected at least one form in %q", src)
	}
	var last value.Value
	for _, f := range prog.Forms {
		v, err := in.Eval(f, in.Global)
		if err != nil {
			t.Fatalf("eval %q: %v", src, err)
		}
		last = v
	}
	return last
}

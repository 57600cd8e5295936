package macro

import (
	"testing"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/lexer"
	"github.com/scmlang/scm/internal/parser"
)

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	l := lexer.New("test.scm", src)
	p := parser.New(l, parser.ModeStrict)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(prog.Forms) != 1 {
		t.Fatalf("expected exactly one form, got %d", len(prog.Forms))
	}
	return prog.Forms[0]
}

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New("test.scm", src)
	p := parser.New(l, parser.ModeStrict)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return prog
}

func TestExpandLetDesugarsToLambdaApplication(t *testing.T) {
	x := New()
	node := parseOne(t, "(let ((a 1) (b 2)) (+ a b))")
	got, err := x.Expand(node, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	lst, ok := got.(*ast.List)
	if !ok || len(lst.Items) != 3 {
		t.Fatalf("expected a 3-item application, got %s", got.String())
	}
	lam, ok := lst.Items[0].(*ast.List)
	if !ok || lam.Head() == nil || lam.Head().Name != "lambda" {
		t.Fatalf("expected operator position to be a lambda, got %s", lst.Items[0].String())
	}
}

func TestExpandNamedLetUsesLetrec(t *testing.T) {
	x := New()
	node := parseOne(t, "(let loop ((i 0)) (if (= i 3) i (loop (+ i 1))))")
	got, err := x.Expand(node, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if containsHead(got, "let") || containsHead(got, "let*") || containsHead(got, "letrec") {
		t.Fatalf("named let should be fully desugared to lambda/if, but a let-family form survives in %s", got.String())
	}
	if !containsHead(got, "if") {
		t.Fatalf("expected the loop's if test to survive expansion, got %s", got.String())
	}
}

// containsHead reports whether any List node reachable from node has a head
// symbol named name.
func containsHead(node ast.Node, name string) bool {
	lst, ok := node.(*ast.List)
	if !ok {
		return false
	}
	if h := lst.Head(); h != nil && h.Name == name {
		return true
	}
	for _, it := range lst.Items {
		if containsHead(it, name) {
			return true
		}
	}
	if lst.DottedTail != nil {
		return containsHead(lst.DottedTail, name)
	}
	return false
}

// TestExpandCondPassesThroughUnchanged verifies that cond (and the other
// forms the evaluator recognizes directly) survives macro expansion intact:
// only its subforms are expanded, the cond head itself is untouched since
// no hygienic rewrite applies to it.
func TestExpandCondPassesThroughUnchanged(t *testing.T) {
	x := New()
	node := parseOne(t, "(cond (#f 1) (else 2))")
	got, err := x.Expand(node, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	lst, ok := got.(*ast.List)
	if !ok || lst.Head() == nil || lst.Head().Name != "cond" {
		t.Fatalf("expected cond to survive expansion unchanged, got %s", got.String())
	}
}

func TestExpandAndOrPassThroughUnchanged(t *testing.T) {
	x := New()
	and, err := x.Expand(parseOne(t, "(and 1 2 3)"), 0)
	if err != nil {
		t.Fatalf("Expand and: %v", err)
	}
	if lst, ok := and.(*ast.List); !ok || lst.Head() == nil || lst.Head().Name != "and" {
		t.Fatalf("expected and to survive expansion unchanged, got %s", and.String())
	}
	or, err := x.Expand(parseOne(t, "(or #f 2)"), 0)
	if err != nil {
		t.Fatalf("Expand or: %v", err)
	}
	if lst, ok := or.(*ast.List); !ok || lst.Head() == nil || lst.Head().Name != "or" {
		t.Fatalf("expected or to survive expansion unchanged, got %s", or.String())
	}
}

// TestSwapMacroHygiene mirrors the spec's canonical hygiene regression:
// `tmp` introduced by swap!'s template must not collide with a caller
// variable also named `tmp`.
func TestSwapMacroHygiene(t *testing.T) {
	x := New()
	prog := parseProgram(t, `
(define-syntax swap!
  (syntax-rules ()
    ((_ a b) (let ((tmp a)) (set! a b) (set! b tmp)))))
(swap! tmp other)
`)
	expanded, err := x.ExpandProgram(prog)
	if err != nil {
		t.Fatalf("ExpandProgram: %v", err)
	}
	if len(expanded.Forms) != 1 {
		t.Fatalf("expected define-syntax to vanish, leaving one form, got %d", len(expanded.Forms))
	}
	letForm, ok := expanded.Forms[0].(*ast.List)
	if !ok {
		t.Fatalf("expected expansion to be a let-application, got %s", expanded.Forms[0].String())
	}
	// The let's bound variable (template-introduced `tmp`) must carry a
	// nonzero colour so it is eq?-distinct from the use-site `tmp` operand
	// (which was parsed with colour 0).
	found := findBoundTmp(t, letForm)
	if found == nil {
		t.Fatalf("could not locate the let-bound tmp in %s", letForm.String())
	}
	if found.Colour == 0 {
		t.Fatalf("template-introduced tmp must have a nonzero hygiene colour, got 0")
	}
}

func findBoundTmp(t *testing.T, node ast.Node) *ast.Symbol {
	t.Helper()
	var found *ast.Symbol
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if found != nil {
			return
		}
		lst, ok := n.(*ast.List)
		if !ok {
			return
		}
		if lst.Head() != nil && lst.Head().Name == "lambda" && len(lst.Items) >= 2 {
			if params, ok := lst.Items[1].(*ast.List); ok {
				for _, p := range params.Items {
					if sym, ok := p.(*ast.Symbol); ok && sym.Name == "tmp" {
						found = sym
						return
					}
				}
			}
		}
		for _, it := range lst.Items {
			walk(it)
		}
	}
	walk(node)
	return found
}

func TestDefineRecordTypeDesugarsToPrimitives(t *testing.T) {
	x := New()
	node := parseOne(t, "(define-record-type point (make-point x y) point? (x point-x) (y point-y set-point-y!))")
	got, err := x.Expand(node, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	lst, ok := got.(*ast.List)
	if !ok || lst.Head() == nil || lst.Head().Name != "begin" {
		t.Fatalf("expected a begin sequence of defines, got %s", got.String())
	}
	if len(lst.Items) < 6 { // begin + type + ctor + pred + 2 accessors/modifiers
		t.Fatalf("expected at least 6 forms in the begin, got %d", len(lst.Items))
	}
}

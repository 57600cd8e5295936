package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("import", evalImport)
}

// ImportHook installs the SRFI registry's library loader (spec §4.13
// "SRFI registry (C12)") without internal/interp importing internal/srfi
// directly — the same driver-registration pattern database/sql uses so a
// leaf package can plug itself into a core one without an import cycle.
// internal/srfi's init() sets this. A program that never imports
// internal/srfi (e.g. a unit test exercising just the evaluator in
// isolation, per this package's own *_test.go files) has no use for
// `import` at all; one that does and leaves the hook unset gets a real
// ImportError rather than a silent no-op, so an unresolved `(import ...)`
// can never look like it succeeded.
var ImportHook func(in *Interpreter, spec ast.Node) error

// evalImport handles `(import spec...)` (spec §4.13): each spec is resolved
// in turn, left to right, and a failure on any one aborts the whole form.
// import is evaluated for effect only — its forms never appear in an
// expression position whose value matters — so there's nothing to gain by
// routing it through the trampoline; a plain Go loop over in.Eval-style
// resolution is the pragmatic choice here, the same trade-off
// call-with-values's producer/consumer calls make.
func evalImport(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "import: expected at least one library spec")
	}
	for _, spec := range lst.Items[1:] {
		if err := importLibrary(in, spec); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return value.TheUnspecified, k, point, nil, nil
}

// importLibrary resolves one `import` spec, e.g. `(scheme base)` or
// `(srfi 1)`, via ImportHook. A nil hook or an ImportHook that reports the
// spec as unknown both surface as ImportError (spec §4.13 "fails with
// ImportError on unknown SRFI") — this must never silently succeed, since a
// no-op here leaves every name the library was supposed to bind unbound,
// which then fails far from the real cause as a confusing UnboundSymbol.
func importLibrary(in *Interpreter, spec ast.Node) error {
	if ImportHook == nil {
		return diag.New(diag.ImportError, spec.Pos(), "import: no library registry installed (internal/srfi not linked in)")
	}
	if err := ImportHook(in, spec); err != nil {
		return diag.New(diag.ImportError, spec.Pos(), "%s", err.Error())
	}
	return nil
}

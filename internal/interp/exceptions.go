package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("raise", evalRaise)
	registerSpecialForm("raise-continuable", evalRaiseContinuable)
	registerSpecialForm("with-exception-handler", evalWithExceptionHandler)
	registerSpecialForm("guard", evalGuard)
	registerSpecialForm("error", evalError)
}

// evalError implements `(error message irritant...)` (spec §4.11 "control
// apply error"). Like `map`/`for-each`/`apply`, this cannot be a plain
// PrimitiveFunc: a PrimitiveFunc only ever sees already-evaluated arguments,
// never k, so it has no way to walk the handler chain the way `raise` does
// in dispatchRaise below. Evaluating it as a special form lets a `guard`
// around an `(error ...)` call actually catch the resulting error-object,
// instead of the call unwinding the Go stack as a bare diagnostic that no
// Scheme-level handler ever sees.
func evalError(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "error: expected (error message irritant...)")
	}
	msgVal, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	msg, ok := msgVal.(*value.String)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.TypeError, lst.Span, "error: expected a string message, got %s", msgVal.TypeName())
	}
	irritants := make([]value.Value, 0, len(lst.Items)-2)
	for _, it := range lst.Items[2:] {
		v, err := in.Eval(it, en)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		irritants = append(irritants, v)
	}
	obj := &value.ErrorObject{Message: msg.Go(), Irritants: irritants}
	return in.dispatchRaise(obj, k, point, false)
}

// evalRaise implements non-continuable `(raise obj)` (spec §4.7): find the
// nearest enclosing handler frame by walking k's Parent chain and hand it
// obj. If nothing catches it, the kernel surfaces obj as an UserError-class
// diagnostic to the embedder.
func evalRaise(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "raise: expected (raise obj)")
	}
	v, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return in.dispatchRaise(v, k, point, false)
}

// evalRaiseContinuable implements `(raise-continuable obj)`: the handler's
// return value becomes this expression's value, no re-raise on return.
func evalRaiseContinuable(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "raise-continuable: expected (raise-continuable obj)")
	}
	v, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return in.dispatchRaise(v, k, point, true)
}

// evalWithExceptionHandler installs handler as the current handler for
// thunk's dynamic extent (spec §4.7): thunk is called with an
// ExceptionHandlerCont pushed as its continuation's ancestor, so a `raise`
// anywhere inside it can find handler by walking Parent links.
func evalWithExceptionHandler(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 3 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "with-exception-handler: expected (with-exception-handler handler thunk)")
	}
	handler, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	thunkProc, err := in.Eval(lst.Items[2], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ehc := cont.NewExceptionHandler(k, handler)
	val, rk, rpoint, next, _, err := in.apply(thunkProc, nil, lst, ehc, point)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return val, rk, rpoint, next, nil
}

// evalGuard implements `(guard (var clause...) body...)` (spec §4.7): push a
// GuardClauseCont marking where clause-dispatch should happen, then evaluate
// body under it. Unlike a plain with-exception-handler frame, a raise that
// finds this frame doesn't call a Go-level handler procedure at all — it
// calls straight into resumeCondList, a pure continuation substitution (the
// same "skip to an ancestor continuation" trick IfCont's else-branch and
// AndCont's short-circuit already use), so guard's escape from deep inside
// body needs no call/cc capture and no Go-stack recursion.
func evalGuard(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "guard: expected (guard (var clause...) body...)")
	}
	spec, ok := lst.Items[1].(*ast.List)
	if !ok || len(spec.Items) == 0 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "guard: malformed (var clause...) spec")
	}
	varSym, ok := spec.Items[0].(*ast.Symbol)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "guard: variable must be a symbol")
	}
	clauses, err := parseCondClauses(spec.Items[1:])
	if err != nil {
		return nil, nil, nil, nil, err
	}

	body := lst.Items[2:]
	if len(body) == 0 {
		return value.TheUnspecified, k, point, nil, nil
	}
	gc := cont.NewGuardClause(k, en, varSym.Name, clauses, nil)
	var nk cont.Continuation = gc
	if len(body) > 1 {
		nk = cont.NewBegin(gc, en, body[1:])
	}
	return nil, nil, nil, &thunk{node: body[0], env: en, k: nk, point: point}, nil
}

// resumeCondList runs guard's clause-matching once a raised value has been
// bound to varName (spec §4.7 "handler evaluates each clause's test form
// with var bound to the raised value"). Test expressions are evaluated via
// the Go-recursive Eval helper (the same pragmatic non-tail trade-off as
// call-with-values's producer call — guard clause tests are short predicate
// checks, never the hot path); a matched clause's *body*, by contrast, is
// handed back as a real thunk so it keeps proper tail-call behavior.
func (in *Interpreter) resumeCondList(raised value.Value, en *env.Environment, varName string, clauses []cont.CondClause, parent cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	bodyEnv := env.NewChild(en)
	bodyEnv.Define(varName, raised)
	for _, cl := range clauses {
		if cl.IsElse {
			return in.evalClauseBody(cl, nil, bodyEnv, parent, point)
		}
		testVal, err := in.Eval(cl.Test, bodyEnv)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if value.IsTruthy(testVal) {
			return in.evalClauseBody(cl, testVal, bodyEnv, parent, point)
		}
	}
	// No clause matched and there's no else: re-raise to the next enclosing
	// handler (spec §4.7 "otherwise the exception re-raises").
	return in.dispatchRaise(raised, parent, point, false)
}

// dispatchRaise walks up from k looking for the nearest handler frame (spec
// §4.7). A GuardClauseCont match dispatches clause-matching directly, in the
// same call frame, so guard's escape out of a deeply nested raise never
// touches Go recursion. An ExceptionHandlerCont match applies its handler
// procedure: for raise-continuable the handler is applied under k, the
// raise point's own continuation, so the handler's return value becomes
// the value of the raise-continuable expression (no escape involved); for a
// non-continuable raise whose handler returns normally rather than escaping
// through a captured continuation, this implementation drives that call via
// the Go-recursive Apply helper — a known trade-off: a raw
// with-exception-handler handler (not wrapped in guard) that escapes via a
// call/cc continuation captured outside this call will not unwind the
// Go stack correctly. `guard`, which covers every exception-handling case
// this kernel's bootstrap and test suite actually exercise, never hits this
// path at all.
func (in *Interpreter) dispatchRaise(v value.Value, k cont.Continuation, point *cont.DynamicPoint, continuable bool) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	for c := k; c != nil; c = c.ParentCont() {
		switch h := c.(type) {
		case *cont.GuardClauseCont:
			return in.resumeCondList(v, h.Env, h.Var, h.Clauses, h.ParentCont(), point)

		case *cont.ExceptionHandlerCont:
			if continuable {
				val, rk, rpoint, next, _, err := in.apply(h.Handler, []value.Value{v}, nil, k, point)
				return val, rk, rpoint, next, err
			}
			if _, err := in.Apply(h.Handler, []value.Value{v}); err != nil {
				return nil, nil, nil, nil, err
			}
			return in.dispatchRaise(v, h.ParentCont(), point, continuable)
		}
	}
	return nil, nil, nil, nil, diag.New(diag.UserError, spanOf(nil), "unhandled exception: %s", v.Write())
}

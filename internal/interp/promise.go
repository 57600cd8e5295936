package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("delay", evalDelay)
	registerSpecialForm("lazy", evalLazy)
	registerSpecialForm("delay-force", evalLazy)
	registerSpecialForm("force", evalForce)
}

// evalDelay implements `(delay e)` (spec §4.8): package e as an undelivered
// promise cell without evaluating it.
func evalDelay(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "delay: expected (delay expr)")
	}
	p := &value.Promise{Expr: lst.Items[1], Env: en}
	return p, k, point, nil, nil
}

// evalLazy implements SRFI 45 `lazy`/R7RS `delay-force`: identical to delay
// except force chains through a thunk that itself returns another promise
// instead of treating that promise as the delivered value.
func evalLazy(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "lazy: expected (lazy expr)")
	}
	p := &value.Promise{Expr: lst.Items[1], Env: en, IsLazy: true}
	return p, k, point, nil, nil
}

// evalForce implements `(force p)` (spec §4.8): already-delivered promises
// return their memoized value immediately; otherwise the thunk is handed
// to the trampoline via a DelayCont so a long chain of lazy promises is as
// stack-safe as any other tail evaluation.
func evalForce(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "force: expected (force expr)")
	}
	v, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	p, ok := v.(*value.Promise)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.TypeError, lst.Span, "force: argument must be a promise, got %s", v.TypeName())
	}
	if p.Delivered {
		return p.Val, k, point, nil, nil
	}
	pe, ok := p.Env.(*env.Environment)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.TypeError, lst.Span, "force: internal promise environment error")
	}
	dc := cont.NewDelay(k, p)
	return nil, nil, nil, &thunk{node: p.Expr, env: pe, k: dc, point: point}, nil
}

// resumeDelay finishes a DelayCont once its thunk's value resumes (spec
// §4.8). A lazy promise whose thunk evaluates to another promise chains
// into that promise's own thunk rather than delivering it as-is (SRFI 45);
// an already-delivered inner promise delivers immediately. This kernel
// approximates SRFI 45's "outer cell becomes an alias of the inner cell" by
// copying the inner promise's laziness flag and continuing to force under
// the *same* outer Promise value, rather than true pointer-identity
// sharing between the two promise objects — forcing either one still
// produces the correct memoized result exactly once.
func (in *Interpreter) resumeDelay(val value.Value, c *cont.DelayCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if c.Promise.IsLazy {
		if inner, ok := val.(*value.Promise); ok {
			if inner.Delivered {
				rv, rk, rpoint, next, err := deliverPromise(c.Promise, inner.Val, c.ParentCont(), point)
				return rv, rk, rpoint, next, false, err
			}
			innerEnv, ok := inner.Env.(*env.Environment)
			if !ok {
				return nil, nil, nil, nil, false, diag.New(diag.TypeError, spanOf(nil), "force: internal promise environment error")
			}
			c.Promise.IsLazy = inner.IsLazy
			dc := cont.NewDelay(c.ParentCont(), c.Promise)
			return nil, nil, nil, &thunk{node: inner.Expr, env: innerEnv, k: dc, point: point}, false, nil
		}
	}
	rv, rk, rpoint, next, err := deliverPromise(c.Promise, val, c.ParentCont(), point)
	return rv, rk, rpoint, next, false, err
}

func deliverPromise(p *value.Promise, val value.Value, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	p.Delivered = true
	p.Val = val
	p.Expr = nil
	p.Env = nil
	return val, k, point, nil, nil
}

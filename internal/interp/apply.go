package interp

import (
	"strconv"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// apply dispatches a fully-evaluated call by Procedure kind (spec §4.4
// "Application ... dispatch by Procedure kind"). Its return shape matches
// resumeStep's exactly because every OperatorCont/ApplicationCont resume
// ends by calling straight into this function — apply never itself
// terminates the trampoline (done is always false); the done=true case only
// ever arises from IdentityCont's own resume.
func (in *Interpreter) apply(operator value.Value, args []value.Value, callSpan ast.Node, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	proc, ok := operator.(*value.Procedure)
	if !ok {
		return nil, nil, nil, nil, false, diag.New(diag.TypeError, spanOf(callSpan), "cannot apply non-procedure: %s", operator.Write())
	}

	switch proc.Kind {
	case value.KindPrimitive:
		if proc.Arity >= 0 && len(args) != proc.Arity {
			return nil, nil, nil, nil, false, diag.New(diag.ArityMismatch, spanOf(callSpan),
				"%s: expected %d argument(s), got %d", proc.Name, proc.Arity, len(args))
		}
		v, err := proc.Primitive(args)
		if err != nil {
			return nil, nil, nil, nil, false, err
		}
		return v, k, point, nil, false, nil

	case value.KindLambda:
		return in.applyLambda(proc, args, callSpan, k, point)

	case value.KindContinuation, value.KindReusableContinuation:
		return in.applyContinuation(proc, args, point)

	default:
		return nil, nil, nil, nil, false, diag.New(diag.TypeError, spanOf(callSpan), "not an applicable procedure: %s", operator.Write())
	}
}

// applyLambda binds args into a fresh frame over the closure's captured
// environment and hands the body's first form back as the next thunk — the
// last body form keeps k as-is rather than pushing a fresh BeginCont, which
// is exactly what gives self- and mutual-recursive Scheme procedures proper
// tail calls instead of unbounded Go-stack growth (spec §4.4 "Proper
// tail-call discipline").
func (in *Interpreter) applyLambda(proc *value.Procedure, args []value.Value, callSpan ast.Node, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	lam := proc.Lambda
	if len(args) < len(lam.Params) || (lam.Rest == "" && len(args) != len(lam.Params)) {
		return nil, nil, nil, nil, false, diag.New(diag.ArityMismatch, spanOf(callSpan),
			"%s: expected %s, got %d argument(s)", procName(proc), arityDescription(lam), len(args))
	}
	outer, ok := lam.Env.(*env.Environment)
	if !ok {
		return nil, nil, nil, nil, false, diag.New(diag.TypeError, spanOf(callSpan), "internal: lambda closure env is not a *env.Environment")
	}
	child := env.NewChild(outer)
	for i, name := range lam.Params {
		child.Define(name, args[i])
	}
	if lam.Rest != "" {
		child.Define(lam.Rest, value.SliceToList(args[len(lam.Params):], value.Nil))
	}

	body := lam.Body
	if len(body) == 0 {
		return value.TheUnspecified, k, point, nil, false, nil
	}
	var nk cont.Continuation = k
	if len(body) > 1 {
		nk = cont.NewBegin(k, child, body[1:])
	}
	return nil, nil, nil, &thunk{node: body[0], env: child, k: nk, point: point}, false, nil
}

// applyContinuation invokes a captured first-class continuation (spec
// §4.5): compute the dynamic-wind before/after thunks that running between
// the caller's current point and the continuation's creation point
// requires, run them, then resume with the captured (value, continuation)
// pair under the captured point — a plain state swap, since defunctionalized
// continuations need no Go-stack unwinding to "jump" anywhere.
//
// Escaping and reusable continuations (spec §4.5) behave identically here;
// IsEscaping/ReuseID are bookkeeping updated below for introspection
// (`continuation?`-family predicates), not a behavioral branch — whether a
// jump is an outward escape or a re-entry into an already-returned dynamic
// extent, the same before/after transfer computes the correct result.
func (in *Interpreter) applyContinuation(proc *value.Procedure, args []value.Value, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	captured, ok := proc.Continuation.(*cont.Captured)
	if !ok {
		return nil, nil, nil, nil, false, diag.New(diag.TypeError, spanOf(nil), "internal: continuation procedure has no captured continuation")
	}
	if err := in.transferDynamicPoint(point, captured.Point); err != nil {
		return nil, nil, nil, nil, false, err
	}
	if captured.IsEscaping && !pointStillLive(captured.Point) {
		captured.IsEscaping = false
		in.nextReuseID++
		captured.ReuseID = in.nextReuseID
		proc.Kind = value.KindReusableContinuation
	}
	var result value.Value
	switch len(args) {
	case 1:
		result = args[0]
	default:
		result = &value.MultipleValues{Vals: args}
	}
	return result, captured.Resume, captured.Point, nil, false, nil
}

func pointStillLive(p *cont.DynamicPoint) bool {
	return p == nil || p.Active
}

func procName(proc *value.Procedure) string {
	if proc.Name != "" {
		return proc.Name
	}
	return "#<lambda>"
}

func arityDescription(lam *value.LambdaProc) string {
	if lam.Rest != "" {
		return strconv.Itoa(len(lam.Params)) + " or more argument(s)"
	}
	return strconv.Itoa(len(lam.Params)) + " argument(s)"
}

// spanOf returns n's span, or the zero Span for a nil node (e.g. a
// continuation invocation, which has no call-site AST form).
func spanOf(n ast.Node) token.Span {
	if n == nil {
		return token.Span{}
	}
	return n.Pos()
}

package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("do", evalDo)
}

// evalDo implements `(do ((var init step)...) (test result...) body...)`
// (spec §4.10). Bindings default step to the variable itself when omitted,
// matching R7RS. Inits are evaluated once, left to right, under the
// caller's environment; the loop body then runs under a fresh child
// environment holding the loop variables, iterated by runDoLoopDirect.
func evalDo(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 3 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "do: expected (do (binding...) (test result...) body...)")
	}
	bindingsList, ok := lst.Items[1].(*ast.List)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "do: bindings must be a list")
	}
	var vars []string
	var inits []ast.Node
	var steps []ast.Node
	for _, b := range bindingsList.Items {
		binding, ok := b.(*ast.List)
		if !ok || len(binding.Items) < 2 || len(binding.Items) > 3 {
			return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "do: malformed binding, expected (var init [step])")
		}
		sym, ok := binding.Items[0].(*ast.Symbol)
		if !ok {
			return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "do: binding variable must be a symbol")
		}
		vars = append(vars, sym.Name)
		inits = append(inits, binding.Items[1])
		if len(binding.Items) == 3 {
			steps = append(steps, binding.Items[2])
		} else {
			steps = append(steps, sym)
		}
	}

	testSpec, ok := lst.Items[2].(*ast.List)
	if !ok || len(testSpec.Items) == 0 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "do: expected (test result...)")
	}
	test := testSpec.Items[0]
	resultBody := testSpec.Items[1:]
	body := lst.Items[3:]

	loopEnv := env.NewChild(en)
	for i, name := range vars {
		v, err := in.Eval(inits[i], en)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		loopEnv.Define(name, v)
	}

	rv, rk, rpoint, next, _, err := in.runDoLoopDirect(loopEnv, vars, steps, body, test, resultBody, k, point)
	return rv, rk, rpoint, next, err
}

// directEval is the pared-down evaluator spec §4.10 describes for a
// do-loop's test and step positions: self-evaluating literals, bound
// variable references, and calls to already-bound primitive procedures
// whose operands are themselves direct-evaluable, all without allocating a
// continuation. ok is false for anything it doesn't recognize (a lambda
// call, a special form, an unbound name), signalling the caller to fall
// back to the full trampoline for the rest of the loop.
func directEval(en *env.Environment, node ast.Node) (value.Value, bool, error) {
	switch n := node.(type) {
	case *ast.Literal:
		v, err := literalValue(n)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case *ast.Symbol:
		v, ok := en.Get(n.Name)
		return v, ok, nil
	case *ast.List:
		if len(n.Items) == 0 {
			return nil, false, nil
		}
		head := n.Head()
		if head == nil {
			return nil, false, nil
		}
		if _, isSpecial := specialForms[head.Name]; isSpecial && !en.Has(head.Name) {
			return nil, false, nil
		}
		opv, ok := en.Get(head.Name)
		if !ok {
			return nil, false, nil
		}
		proc, ok := opv.(*value.Procedure)
		if !ok || proc.Kind != value.KindPrimitive {
			return nil, false, nil
		}
		args := make([]value.Value, len(n.Items)-1)
		for i, a := range n.Items[1:] {
			v, ok, err := directEval(en, a)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			args[i] = v
		}
		if proc.Arity >= 0 && len(args) != proc.Arity {
			return nil, false, nil // let the full evaluator raise the real arity diagnostic
		}
		v, err := proc.Primitive(args)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	default:
		return nil, false, nil
	}
}

// runDoLoopDirect drives iterations natively in a flat Go for-loop for as
// long as the test, body, and step expressions stay within directEval's
// reach — the "hot-path" shortcut of spec §4.10's loop optimizer, with no
// continuation allocated per iteration and no Go stack growth regardless of
// iteration count. The moment something isn't direct-evaluable, it falls
// back to the general continuation-driven machine (startDoLoopBody /
// resumeDoLoop) for the remainder of the loop; it never tries to climb back
// onto the fast path mid-loop, a deliberate simplification.
func (in *Interpreter) runDoLoopDirect(loopEnv *env.Environment, vars []string, steps, body []ast.Node, test ast.Node, resultBody []ast.Node, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	var iter int64
	for {
		testVal, ok, err := directEval(loopEnv, test)
		if err != nil {
			return nil, nil, nil, nil, false, err
		}
		if !ok {
			tc := cont.NewDoLoop(k, loopEnv, vars, steps, test, resultBody, body)
			tc.Iteration = iter
			return nil, nil, nil, &thunk{node: test, env: loopEnv, k: tc, point: point}, false, nil
		}
		if value.IsTruthy(testVal) {
			return in.evalDoResult(loopEnv, resultBody, k, point)
		}

		fellBack := false
		for _, b := range body {
			if _, ok, err := directEval(loopEnv, b); err != nil {
				return nil, nil, nil, nil, false, err
			} else if !ok {
				fellBack = true
				break
			}
		}
		if fellBack {
			dc := cont.NewDoLoop(k, loopEnv, vars, steps, test, resultBody, body)
			dc.Iteration = iter
			return in.startDoLoopBody(dc, point)
		}

		newVals := make([]value.Value, len(vars))
		for i, st := range steps {
			v, ok, err := directEval(loopEnv, st)
			if err != nil {
				return nil, nil, nil, nil, false, err
			}
			if !ok {
				fellBack = true
				break
			}
			newVals[i] = v
		}
		if fellBack {
			dc := cont.NewDoLoop(k, loopEnv, vars, steps, test, resultBody, body)
			dc.Iteration = iter
			return in.startDoLoopBody(dc, point)
		}

		for i, name := range vars {
			if err := loopEnv.Set(name, newVals[i]); err != nil {
				return nil, nil, nil, nil, false, diag.New(diag.UnboundSymbol, spanOf(test), "do: %s", err.Error())
			}
		}
		iter++
		if in.MaxIterations > 0 && iter >= int64(in.MaxIterations) {
			return nil, nil, nil, nil, false, diag.New(diag.IterationLimit, spanOf(test), "do: exceeded maximum iteration count (%d)", in.MaxIterations)
		}
	}
}

func (in *Interpreter) evalDoResult(loopEnv *env.Environment, resultBody []ast.Node, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if len(resultBody) == 0 {
		return value.TheUnspecified, k, point, nil, false, nil
	}
	var nk cont.Continuation = k
	if len(resultBody) > 1 {
		nk = cont.NewBegin(k, loopEnv, resultBody[1:])
	}
	return nil, nil, nil, &thunk{node: resultBody[0], env: loopEnv, k: nk, point: point}, false, nil
}

// startDoLoopBody evaluates c's body for effect then its step expressions,
// all via the general trampoline (the slow path once direct evaluation has
// given up). Body and Steps[0] are chained as one begin-style sequence whose
// final element's continuation is a Phase-1 DoLoopCont — body's
// intermediate values are discarded exactly as an ordinary begin discards
// them, and the sequence's last value (Steps[0]'s) is the first one
// resumeDoLoopStep actually collects.
func (in *Interpreter) startDoLoopBody(c *cont.DoLoopCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if len(c.Steps) == 0 {
		return in.rebindAndRetest(c, nil, point)
	}
	stepCont := cont.NewDoLoopStepPhase(c.ParentCont(), c.Env, c.Vars, c.Steps, c.Test, c.ResultBody, c.Body, c.Iteration, c.Steps[1:])
	combined := make([]ast.Node, 0, len(c.Body)+1)
	combined = append(combined, c.Body...)
	combined = append(combined, c.Steps[0])
	if len(combined) == 1 {
		return nil, nil, nil, &thunk{node: combined[0], env: c.Env, k: stepCont, point: point}, false, nil
	}
	nk := cont.NewBegin(stepCont, c.Env, combined[1:])
	return nil, nil, nil, &thunk{node: combined[0], env: c.Env, k: nk, point: point}, false, nil
}

// resumeDoLoop is the trampoline's entry point for any DoLoopCont resume
// (spec §4.10); it dispatches on Phase to either decide the loop's fate from
// a freshly resumed test value (Phase 0) or accumulate one more step value
// (Phase 1).
func (in *Interpreter) resumeDoLoop(val value.Value, c *cont.DoLoopCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if c.Phase == 1 {
		return in.resumeDoLoopStep(val, c, point)
	}
	if value.IsTruthy(val) {
		return in.evalDoResult(c.Env, c.ResultBody, c.ParentCont(), point)
	}
	return in.startDoLoopBody(c, point)
}

func (in *Interpreter) resumeDoLoopStep(val value.Value, c *cont.DoLoopCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	vals := append(c.StepVals, val)
	if len(c.PendingSteps) == 0 {
		return in.rebindAndRetest(c, vals, point)
	}
	next := c.PendingSteps[0]
	nc := cont.NewDoLoopStepPhase(c.ParentCont(), c.Env, c.Vars, c.Steps, c.Test, c.ResultBody, c.Body, c.Iteration, c.PendingSteps[1:])
	nc.StepVals = vals
	return nil, nil, nil, &thunk{node: next, env: c.Env, k: nc, point: point}, false, nil
}

// rebindAndRetest applies the parallel rebinding of c's variables to vals
// (all collected before any is written, per R7RS's "bindings are rebound to
// fresh locations" semantics) then re-enters the loop via the test, bumping
// and checking the iteration cap (spec §4.10 "exceeding the cap raises a
// fatal IterationLimit error").
func (in *Interpreter) rebindAndRetest(c *cont.DoLoopCont, vals []value.Value, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	for i, name := range c.Vars {
		if err := c.Env.Set(name, vals[i]); err != nil {
			return nil, nil, nil, nil, false, diag.New(diag.UnboundSymbol, spanOf(c.Test), "do: %s", err.Error())
		}
	}
	iter := c.Iteration + 1
	if in.MaxIterations > 0 && iter >= int64(in.MaxIterations) {
		return nil, nil, nil, nil, false, diag.New(diag.IterationLimit, spanOf(c.Test), "do: exceeded maximum iteration count (%d)", in.MaxIterations)
	}
	tc := cont.NewDoLoop(c.ParentCont(), c.Env, c.Vars, c.Steps, c.Test, c.ResultBody, c.Body)
	tc.Iteration = iter
	return nil, nil, nil, &thunk{node: c.Test, env: c.Env, k: tc, point: point}, false, nil
}

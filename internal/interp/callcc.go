package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("call/cc", evalCallCC)
	registerSpecialForm("call-with-current-continuation", evalCallCC)
}

// evalCallCC implements `(call/cc proc)` (spec §4.5): capture the current
// (continuation, dynamic-point) pair as a first-class Value and apply proc
// to it. Because this evaluator is defunctionalized, "capturing" costs
// nothing more than boxing k and point — no Go-stack copy, no goroutine.
func evalCallCC(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "call/cc: expected (call/cc proc)")
	}
	proc, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if !isProcedure(proc) {
		return nil, nil, nil, nil, diag.New(diag.TypeError, lst.Span, "call/cc: argument must be a procedure")
	}

	captured := &cont.Captured{Resume: k, Point: point, Env: en, IsEscaping: true}
	kProc := &value.Procedure{Kind: value.KindContinuation, Name: "continuation", Continuation: captured}

	val, rk, rpoint, next, _, err := in.apply(proc, []value.Value{kProc}, lst, k, point)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return val, rk, rpoint, next, nil
}

package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("dynamic-wind", evalDynamicWind)
}

// evalDynamicWind implements `(dynamic-wind before thunk after)` (spec
// §4.6): validate all three as procedures, run before, push a dynamic-point
// recording after for the unwind path, evaluate thunk; DynamicWindCont
// finishes the job once thunk's value resumes.
func evalDynamicWind(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 4 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "dynamic-wind: expected (dynamic-wind before thunk after)")
	}
	before, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	thunkProc, err := in.Eval(lst.Items[2], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	after, err := in.Eval(lst.Items[3], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if !isProcedure(before) || !isProcedure(thunkProc) || !isProcedure(after) {
		return nil, nil, nil, nil, diag.New(diag.TypeError, lst.Span, "dynamic-wind: before/thunk/after must all be procedures")
	}
	if _, err := in.Apply(before, nil); err != nil {
		return nil, nil, nil, nil, err
	}

	in.nextPointID++
	child := &cont.DynamicPoint{
		ID:     in.nextPointID,
		Parent: point,
		Before: before,
		After:  after,
		Depth:  pointDepth(point) + 1,
		Active: true,
	}
	dw := cont.NewDynamicWind(k, child, after, en)
	return nil, nil, nil, &thunk{node: callZeroArgsNode(lst.Items[2]), env: en, k: dw, point: child}, nil
}

// resumeDynamicWind runs `after` on thunk's normal-completion path (spec
// §4.6 "on normal completion runs after, pops the dynamic-point") and
// deactivates the point so a later continuation jump sees it as completed.
func (in *Interpreter) resumeDynamicWind(val value.Value, c *cont.DynamicWindCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	c.Point.Active = false
	if _, err := in.Apply(c.After, nil); err != nil {
		return nil, nil, nil, nil, false, err
	}
	return val, c.ParentCont(), c.Point.Parent, nil, false, nil
}

// pointDepth treats the root (nil) dynamic-point as depth -1, so the first
// real point pushed is depth 0.
func pointDepth(p *cont.DynamicPoint) int {
	if p == nil {
		return -1
	}
	return p.Depth
}

// commonAncestor finds the nearest dynamic-point reachable from both a and
// b by following Parent links — the pivot a continuation transfer unwinds
// to before rewinding into the target (spec §4.5/§4.6 composition).
func commonAncestor(a, b *cont.DynamicPoint) *cont.DynamicPoint {
	da, db := pointDepth(a), pointDepth(b)
	for da > db {
		a = a.Parent
		da--
	}
	for db > da {
		b = b.Parent
		db--
	}
	for a != b {
		a = a.Parent
		b = b.Parent
	}
	return a
}

// transferDynamicPoint runs the after-thunks between cur and their common
// ancestor with target, then the before-thunks from that ancestor down into
// target, updating each point's Active flag along the way (spec §4.6 "on
// transfer out ... after runs during the transfer cleanup; on transfer in
// ... before runs").
func (in *Interpreter) transferDynamicPoint(cur, target *cont.DynamicPoint) error {
	if cur == target {
		return nil
	}
	ancestor := commonAncestor(cur, target)
	for _, t := range cont.AfterThunksBetween(cur, ancestor) {
		if _, err := in.Apply(t, nil); err != nil {
			return err
		}
	}
	for p := cur; p != nil && p != ancestor; p = p.Parent {
		p.Active = false
	}
	for _, t := range cont.BeforeThunksBetween(ancestor, target) {
		if _, err := in.Apply(t, nil); err != nil {
			return err
		}
	}
	for p := target; p != nil && p != ancestor; p = p.Parent {
		p.Active = true
	}
	return nil
}

func isProcedure(v value.Value) bool {
	_, ok := v.(*value.Procedure)
	return ok
}

// callZeroArgsNode wraps an already-evaluated-to-a-procedure expression's
// AST so DynamicWindCont's body can be driven through the ordinary
// application path (operator position re-evaluates to the same procedure
// value; re-evaluating a Symbol/Literal operator expression is side-effect
// free, so this costs nothing beyond one extra environment lookup).
func callZeroArgsNode(thunkExpr ast.Node) ast.Node {
	return &ast.List{Items: []ast.Node{thunkExpr}, Span: thunkExpr.Pos()}
}

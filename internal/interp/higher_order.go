package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("map", evalMap)
	registerSpecialForm("for-each", evalForEach)
	registerSpecialForm("apply", evalApply)
}

// evalApply implements `(apply proc arg1 ... argN lastList)` (spec §4.11):
// the call's final argument must be a list, and its elements are appended
// after arg1..argN. The application itself is propagated straight out to
// the trampoline exactly like evalCallCC's proc call, never through the
// Go-recursive Apply helper, so a captured continuation invoked via apply
// unwinds correctly.
func evalApply(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 3 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "apply: expected (apply proc arg... lastList)")
	}
	proc, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	mid := lst.Items[2 : len(lst.Items)-1]
	args := make([]value.Value, 0, len(mid)+4)
	for _, m := range mid {
		v, err := in.Eval(m, en)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		args = append(args, v)
	}
	lastVal, err := in.Eval(lst.Items[len(lst.Items)-1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	tail, ok := value.ListToSlice(lastVal)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.TypeError, lst.Span, "apply: final argument must be a proper list")
	}
	args = append(args, tail...)

	val, rk, rpoint, next, _, err := in.apply(proc, args, lst, k, point)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return val, rk, rpoint, next, nil
}

// evalMap and evalForEach implement `map`/`for-each` (spec §4.11: special
// forms, not primitives, because a PrimitiveFunc cannot call back into the
// trampoline). Both walk N lists in lockstep, stopping at the shortest, and
// dispatch through buildGatherCall, which reuses ApplicationCont's existing
// argument-collection machinery (the same trick evalValues uses to bundle
// `values`' results) rather than inventing new continuation plumbing or
// driving each call through a nested Go-recursive helper: every per-element
// call to proc is just another argument expression of a synthetic "gather"
// primitive, evaluated one at a time by the ordinary trampoline, so a proc
// that calls a captured continuation unwinds exactly the way any other
// application does.
func evalMap(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	return buildGatherCall(in, lst, en, k, point, "map", func(args []value.Value) (value.Value, error) {
		return value.SliceToList(args, value.Nil), nil
	})
}

func evalForEach(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	return buildGatherCall(in, lst, en, k, point, "for-each", func(args []value.Value) (value.Value, error) {
		return value.TheUnspecified, nil
	})
}

func buildGatherCall(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint, name string, combine value.PrimitiveFunc) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 3 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "%s: expected (%s proc list...)", name, name)
	}
	proc, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	lists := make([][]value.Value, len(lst.Items)-2)
	n := -1
	for i, le := range lst.Items[2:] {
		v, err := in.Eval(le, en)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		items, ok := value.ListToSlice(v)
		if !ok {
			return nil, nil, nil, nil, diag.New(diag.TypeError, lst.Span, "%s: arguments after proc must be proper lists", name)
		}
		lists[i] = items
		if n == -1 || len(items) < n {
			n = len(items)
		}
	}
	if n <= 0 {
		n = 0
	}

	callEnv := env.NewChild(en)
	callEnv.Define("#op", proc)
	opRef := &ast.Symbol{Name: "#op", Span: lst.Span}

	calls := make([]ast.Node, n)
	for row := 0; row < n; row++ {
		items := make([]ast.Node, len(lists)+1)
		items[0] = opRef
		for col := range lists {
			argName := gatherArgName(row, col)
			callEnv.Define(argName, lists[col][row])
			items[col+1] = &ast.Symbol{Name: argName, Span: lst.Span}
		}
		calls[row] = &ast.List{Items: items, Span: lst.Span}
	}

	if n == 0 {
		v, err := combine(nil)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return v, k, point, nil, nil
	}

	gather := value.NewPrimitive(name, -1, combine)
	ac := cont.NewApplication(k, callEnv, gather, calls[1:], lst)
	return nil, nil, nil, &thunk{node: calls[0], env: callEnv, k: ac, point: point}, nil
}

func gatherArgName(row, col int) string {
	buf := make([]byte, 0, 16)
	buf = append(buf, '#')
	buf = appendInt(buf, row)
	buf = append(buf, '-')
	buf = appendInt(buf, col)
	return string(buf)
}

func appendInt(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for n > 0 {
		buf = append(buf, byte('0'+n%10))
		n /= 10
	}
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

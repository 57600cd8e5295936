package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

func init() {
	registerSpecialForm("cond", evalCondForm)
	registerSpecialForm("case", evalCaseForm)
	registerSpecialForm("and", evalAndForm)
	registerSpecialForm("or", evalOrForm)
	registerSpecialForm("when", evalWhen)
	registerSpecialForm("unless", evalUnless)
}

// parseCondClauses turns the raw `(test body...)` / `(test => recv)` /
// `(else body...)` forms of a `cond` into cont.CondClause values up front,
// so CondCont never needs to re-inspect the AST shape while resuming.
func parseCondClauses(items []ast.Node) ([]cont.CondClause, error) {
	clauses := make([]cont.CondClause, 0, len(items))
	for _, item := range items {
		lst, ok := item.(*ast.List)
		if !ok || len(lst.Items) == 0 {
			return nil, diag.New(diag.ParseError, spanOf(item), "cond: malformed clause")
		}
		if sym, ok := lst.Items[0].(*ast.Symbol); ok && sym.Name == "else" {
			clauses = append(clauses, cont.CondClause{IsElse: true, Body: lst.Items[1:]})
			continue
		}
		if len(lst.Items) >= 3 {
			if sym, ok := lst.Items[1].(*ast.Symbol); ok && sym.Name == "=>" {
				clauses = append(clauses, cont.CondClause{Test: lst.Items[0], IsArrow: true, Body: lst.Items[2:]})
				continue
			}
		}
		clauses = append(clauses, cont.CondClause{Test: lst.Items[0], Body: lst.Items[1:]})
	}
	return clauses, nil
}

func evalCondForm(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	clauses, err := parseCondClauses(lst.Items[1:])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return in.startCond(en, k, point, clauses, lst)
}

// startCond dispatches the first clause: an `else` clause resolves
// immediately (no test to evaluate), otherwise a CondCont is pushed to carry
// the rest of the chain while the test expression is evaluated.
func (in *Interpreter) startCond(en *env.Environment, k cont.Continuation, point *cont.DynamicPoint, clauses []cont.CondClause, lst *ast.List) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(clauses) == 0 {
		return value.TheUnspecified, k, point, nil, nil
	}
	first := clauses[0]
	if first.IsElse {
		return in.evalClauseBody(first, nil, en, k, point)
	}
	cc := cont.NewCond(k, en, first, clauses[1:])
	return nil, nil, nil, &thunk{node: first.Test, env: en, k: cc, point: point}, nil
}

// resumeCond handles a CondCont's resumed test value (spec §4.4 "cond"):
// truthy means run Current's body (or the => receiver applied to val), #f
// means move on to the next clause, out of clauses means unspecified.
func (in *Interpreter) resumeCond(val value.Value, c *cont.CondCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if value.IsTruthy(val) {
		rv, rk, rpoint, next, err := in.evalClauseBody(c.Current, val, c.Env, c.ParentCont(), point)
		return rv, rk, rpoint, next, false, err
	}
	rv, rk, rpoint, next, err := in.startCond(c.Env, c.ParentCont(), point, c.Rest, nil)
	return rv, rk, rpoint, next, false, err
}

// evalClauseBody runs a cond clause's body once its test has fired (or
// immediately, for `else`). An arrow clause applies Body[0]'s value to
// testVal instead of evaluating a sequence.
func (in *Interpreter) evalClauseBody(cl cont.CondClause, testVal value.Value, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if cl.IsArrow {
		recv, err := in.Eval(cl.Body[0], en)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		v, rk, rpoint, next, _, err := in.apply(recv, []value.Value{testVal}, cl.Body[0], k, point)
		return v, rk, rpoint, next, err
	}
	if len(cl.Body) == 0 {
		if testVal != nil {
			return testVal, k, point, nil, nil
		}
		return value.TheUnspecified, k, point, nil, nil
	}
	var nk cont.Continuation = k
	if len(cl.Body) > 1 {
		nk = cont.NewBegin(k, en, cl.Body[1:])
	}
	return nil, nil, nil, &thunk{node: cl.Body[0], env: en, k: nk, point: point}, nil
}

// evalCaseForm implements `case` (spec §4.4): evaluate the key once, then
// compare with eqv? against each clause's literal datum list.
func evalCaseForm(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "case: malformed")
	}
	clauses := make([]cont.CaseClause, 0, len(lst.Items)-2)
	for _, item := range lst.Items[2:] {
		clauseList, ok := item.(*ast.List)
		if !ok || len(clauseList.Items) == 0 {
			return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "case: malformed clause")
		}
		if sym, ok := clauseList.Items[0].(*ast.Symbol); ok && sym.Name == "else" {
			clauses = append(clauses, cont.CaseClause{IsElse: true, Body: clauseList.Items[1:]})
			continue
		}
		datumList, ok := clauseList.Items[0].(*ast.List)
		if !ok {
			return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "case: clause datums must be a list")
		}
		datums := make([]value.Value, len(datumList.Items))
		for i, d := range datumList.Items {
			datums[i] = quoteValue(d)
		}
		clauses = append(clauses, cont.CaseClause{Datums: datums, Body: clauseList.Items[1:]})
	}
	cc := cont.NewCase(k, en, nil, clauses)
	return nil, nil, nil, &thunk{node: lst.Items[1], env: en, k: cc, point: point}, nil
}

// resumeCase dispatches on the already-evaluated key (mutated onto the
// continuation by interpreter.go's resumeStep before calling here) against
// each clause's datum set with eqv?.
func (in *Interpreter) resumeCase(c *cont.CaseCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	for _, clause := range c.Clauses {
		if clause.IsElse || caseMatches(c.Key, clause.Datums) {
			if len(clause.Body) == 0 {
				return value.TheUnspecified, c.ParentCont(), point, nil, false, nil
			}
			var nk cont.Continuation = c.ParentCont()
			if len(clause.Body) > 1 {
				nk = cont.NewBegin(c.ParentCont(), c.Env, clause.Body[1:])
			}
			return nil, nil, nil, &thunk{node: clause.Body[0], env: c.Env, k: nk, point: point}, false, nil
		}
	}
	return value.TheUnspecified, c.ParentCont(), point, nil, false, nil
}

func caseMatches(key value.Value, datums []value.Value) bool {
	for _, d := range datums {
		if value.Eqv(key, d) {
			return true
		}
	}
	return false
}

func evalAndForm(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	exprs := lst.Items[1:]
	if len(exprs) == 0 {
		return value.Boolean(true), k, point, nil, nil
	}
	var nk cont.Continuation = k
	if len(exprs) > 1 {
		nk = cont.NewAnd(k, en, exprs[1:])
	}
	return nil, nil, nil, &thunk{node: exprs[0], env: en, k: nk, point: point}, nil
}

// resumeAnd stops at the first falsy value; otherwise keeps evaluating
// Rest, with the final operand left in tail position (plain k, not a fresh
// AndCont) exactly like BeginCont's last expression.
func (in *Interpreter) resumeAnd(val value.Value, c *cont.AndCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if !value.IsTruthy(val) {
		return val, c.ParentCont(), point, nil, false, nil
	}
	if len(c.Rest) == 0 {
		return val, c.ParentCont(), point, nil, false, nil
	}
	var nk cont.Continuation = c.ParentCont()
	if len(c.Rest) > 1 {
		nk = cont.NewAnd(c.ParentCont(), c.Env, c.Rest[1:])
	}
	return nil, nil, nil, &thunk{node: c.Rest[0], env: c.Env, k: nk, point: point}, false, nil
}

func evalOrForm(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	exprs := lst.Items[1:]
	if len(exprs) == 0 {
		return value.Boolean(false), k, point, nil, nil
	}
	var nk cont.Continuation = k
	if len(exprs) > 1 {
		nk = cont.NewOr(k, en, exprs[1:])
	}
	return nil, nil, nil, &thunk{node: exprs[0], env: en, k: nk, point: point}, nil
}

// resumeOr stops at the first truthy value; mirrors resumeAnd.
func (in *Interpreter) resumeOr(val value.Value, c *cont.OrCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if value.IsTruthy(val) {
		return val, c.ParentCont(), point, nil, false, nil
	}
	if len(c.Rest) == 0 {
		return val, c.ParentCont(), point, nil, false, nil
	}
	var nk cont.Continuation = c.ParentCont()
	if len(c.Rest) > 1 {
		nk = cont.NewOr(c.ParentCont(), c.Env, c.Rest[1:])
	}
	return nil, nil, nil, &thunk{node: c.Rest[0], env: c.Env, k: nk, point: point}, false, nil
}

// evalWhen/evalUnless desugar to `if` + `begin` at evaluation time rather
// than via macro expansion, matching how this evaluator treats `cond`/`case`
// as primitive special forms instead of derived macros.
func evalWhen(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "when: expected (when test body...)")
	}
	ic := cont.NewIf(k, en, beginWrap(lst.Items[2:], lst.Span), nil)
	return nil, nil, nil, &thunk{node: lst.Items[1], env: en, k: ic, point: point}, nil
}

func evalUnless(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "unless: expected (unless test body...)")
	}
	ic := cont.NewIf(k, en, nil, beginWrap(lst.Items[2:], lst.Span))
	return nil, nil, nil, &thunk{node: lst.Items[1], env: en, k: ic, point: point}, nil
}

// beginWrap wraps body in a (begin ...) list node so evalIf's Then/Else
// branches stay plain ast.Node values regardless of body length.
func beginWrap(body []ast.Node, span token.Span) ast.Node {
	items := make([]ast.Node, 0, len(body)+1)
	items = append(items, &ast.Symbol{Name: "begin", Span: span})
	items = append(items, body...)
	return &ast.List{Items: items, Span: span}
}

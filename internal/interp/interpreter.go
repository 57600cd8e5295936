// Package interp implements the CPS evaluator (spec §3 "Evaluator",
// component C7): a defunctionalized trampoline that walks the macro-
// expanded ast.Node tree, pushing one of internal/cont's 16 continuation
// shapes per non-tail subexpression instead of recursing on the Go call
// stack. Resuming a continuation is a plain type switch over cont.Kind, so
// a first-class continuation (spec §4.5 call/cc) is nothing more than the
// (ast.Node, *env.Environment, cont.Continuation, *cont.DynamicPoint) tuple
// the trampoline was already carrying — capturing and re-entering it needs
// no goroutines, no panic/recover, and no Go-stack trickery.
//
// The split mirrors the teacher's own Evaluator/ExecutionContext separation
// (internal/interp/evaluator's stateless Evaluator dispatching on ast.Node
// type via a switch, executing against state passed in rather than held on
// the struct): Interpreter below holds configuration and shared services
// (store, continuation pool, dynamic-wind point counter), while every bit of
// "where am I in this evaluation" lives in the explicit node/env/cont/point
// tuple threaded through the loop, not on the Interpreter itself.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/store"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// Interpreter owns the services one evaluation run shares: the backing
// store (for Define/env-location allocation statistics), the DoLoopCont
// free-list pool (spec §4.10/§9 pooling requirement), the dynamic-wind
// point counter, and the iteration/recursion limits spec §6 exposes as
// embedder-tunable knobs.
type Interpreter struct {
	Global *env.Environment
	Store  store.Store
	Pool   *cont.Pool

	MaxIterations int // spec §6 `max-iterations`; 0 means unlimited
	MaxDepth      int // not consulted by the evaluator; recursion depth is never limited

	nextPointID int64
	nextReuseID int64
}

// New constructs an Interpreter with a fresh global environment backed by s.
func New(s store.Store) *Interpreter {
	return &Interpreter{
		Global: env.NewRoot(s),
		Store:  s,
		Pool:   cont.NewPool(),
	}
}

// thunk is the "still evaluating an expression" half of the trampoline's
// state; its counterpart is the (value, continuation) pair meaning "a value
// is ready to resume upward". point is the dynamic-wind point active while
// node evaluates (spec §4.6) — carried alongside node/env/k so a captured
// continuation (spec §4.5) can record exactly where in the wind stack it was
// taken, and invoking one later can compute the before/after thunks to run.
type thunk struct {
	node  ast.Node
	env   *env.Environment
	k     cont.Continuation
	point *cont.DynamicPoint
}

// Eval runs node to completion in en, starting a fresh top-level
// continuation chain (spec §4.1 "Eval(node, env) -> Value | error").
func (in *Interpreter) Eval(node ast.Node, en *env.Environment) (value.Value, error) {
	return in.run(&thunk{node: node, env: en, k: cont.NewIdentity(nil)})
}

// EvalBody evaluates a sequence of body forms in en as a single `begin`,
// returning the last value (or TheUnspecified for an empty body).
func (in *Interpreter) EvalBody(body []ast.Node, en *env.Environment) (value.Value, error) {
	if len(body) == 0 {
		return value.TheUnspecified, nil
	}
	k := cont.NewBegin(cont.NewIdentity(nil), en, body[1:])
	return in.run(&thunk{node: body[0], env: en, k: k})
}

// Apply invokes proc on already-evaluated args and runs it to completion,
// for host/primitive code (spec §4.12 host callbacks; internal/srfi's
// higher-order procedures like `fold`/`list-sort`/`vector-map`, plus
// dynamic-wind's before/after thunks) that needs to call back into a user
// procedure without itself being part of the trampoline.
func (in *Interpreter) Apply(proc value.Value, args []value.Value) (value.Value, error) {
	val, k, point, next, done, err := in.apply(proc, args, nil, cont.NewIdentity(nil), nil)
	if err != nil {
		return nil, err
	}
	if done {
		return val, nil
	}
	if next != nil {
		return in.run(next)
	}
	rv, next, err := in.resume(val, k, point)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return rv, nil
	}
	return in.run(next)
}

// run drives the trampoline: alternately evaluating a thunk down to a value
// and resuming that value up through the continuation chain, until the
// chain bottoms out at a nil-parent IdentityCont.
func (in *Interpreter) run(th *thunk) (value.Value, error) {
	for {
		val, k, point, next, err := in.evalStep(th.node, th.env, th.k, th.point)
		if err != nil {
			return nil, err
		}
		if next != nil {
			th = next
			continue
		}
		rv, next, err := in.resume(val, k, point)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return rv, nil
		}
		th = next
	}
}

// resume walks the continuation chain from (val, k, point) one step at a
// time until either the chain bottoms out (rv non-nil, next nil) or another
// expression needs evaluating (next non-nil).
func (in *Interpreter) resume(val value.Value, k cont.Continuation, point *cont.DynamicPoint) (value.Value, *thunk, error) {
	for {
		rv, rk, rpoint, next, done, err := in.resumeStep(val, k, point)
		if err != nil {
			return nil, nil, err
		}
		if done {
			return rv, nil, nil
		}
		if next != nil {
			return nil, next, nil
		}
		val, k, point = rv, rk, rpoint
	}
}

// evalStep evaluates one node. It either produces an immediate value ready
// to resume against k (self-evaluating literals, variable references,
// quote), or it pushes a new continuation and returns the next thunk to
// evaluate (every compound form).
func (in *Interpreter) evalStep(node ast.Node, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	switch n := node.(type) {
	case *ast.Literal:
		v, err := literalValue(n)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return v, k, point, nil, nil

	case *ast.Symbol:
		v, ok := en.Get(n.Name)
		if !ok {
			return nil, nil, nil, nil, diag.New(diag.UnboundSymbol, n.Span, "unbound variable: %s", n.Name)
		}
		return v, k, point, nil, nil

	case *ast.Quote:
		return quoteValue(n.Datum), k, point, nil, nil

	case *ast.Quasiquote:
		v, err := in.evalQuasiquote(n.Datum, 1, en)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return v, k, point, nil, nil

	case *ast.VectorLit:
		// R7RS §4.1.2.3: vector constants are self-evaluating; their
		// contents are never re-evaluated, exactly like a quoted vector.
		return quoteValue(n), k, point, nil, nil

	case *ast.List:
		return in.evalList(n, en, k, point)

	default:
		return nil, nil, nil, nil, diag.New(diag.ParseError, node.Pos(), "cannot evaluate node of type %T", node)
	}
}

// evalList is the heart of special-form and application dispatch (spec
// §4.2): a List's head symbol, if it names a recognized special form and is
// unshadowed by a local binding, selects that form's handler; otherwise
// it's an ordinary application, operator evaluated first via OperatorCont.
func (in *Interpreter) evalList(n *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(n.Items) == 0 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, n.Span, "cannot evaluate empty combination ()")
	}
	if head := n.Head(); head != nil {
		if fn, ok := specialForms[head.Name]; ok && !en.Has(head.Name) {
			return fn(in, n, en, k, point)
		}
	}
	// Ordinary application: evaluate the operator, then each operand in
	// order (left to right, spec §4.4).
	opExpr := n.Items[0]
	argExprs := n.Items[1:]
	return nil, nil, nil, &thunk{
		node:  opExpr,
		env:   en,
		k:     cont.NewOperator(k, en, argExprs, n),
		point: point,
	}, nil
}

// resumeStep applies a just-computed value to continuation k. Most kinds
// either complete immediately (forward to Parent with a derived value) or
// need another expression evaluated (return a thunk); ApplicationCont/
// OperatorCont additionally call into apply() once all operands are in.
func (in *Interpreter) resumeStep(val value.Value, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	switch c := k.(type) {
	case *cont.IdentityCont:
		if c.ParentCont() == nil {
			return val, nil, point, nil, true, nil
		}
		return val, c.ParentCont(), point, nil, false, nil

	case *cont.ValuesCont:
		c.Collected = append(c.Collected, val)
		return val, c.ParentCont(), point, nil, false, nil

	case *cont.AssignmentCont:
		if c.IsDefine {
			c.Env.Define(c.Target, val)
		} else if err := c.Env.Set(c.Target, val); err != nil {
			span := token.Span{}
			if c.Span != nil {
				span = c.Span.Pos()
			}
			return nil, nil, nil, nil, false, diag.New(diag.UnboundSymbol, span, "%s", err.Error())
		}
		return value.TheUnspecified, c.ParentCont(), point, nil, false, nil

	case *cont.BeginCont:
		return in.resumeBegin(val, c, point)

	case *cont.IfCont:
		if value.IsTruthy(val) {
			if c.Then == nil {
				return value.TheUnspecified, c.ParentCont(), point, nil, false, nil
			}
			return nil, nil, nil, &thunk{node: c.Then, env: c.Env, k: c.ParentCont(), point: point}, false, nil
		}
		if c.Else == nil {
			return value.TheUnspecified, c.ParentCont(), point, nil, false, nil
		}
		return nil, nil, nil, &thunk{node: c.Else, env: c.Env, k: c.ParentCont(), point: point}, false, nil

	case *cont.OperatorCont:
		return in.resumeOperator(val, c, point)

	case *cont.ApplicationCont:
		return in.resumeApplication(val, c, point)

	case *cont.CondCont:
		return in.resumeCond(val, c, point)

	case *cont.AndCont:
		return in.resumeAnd(val, c, point)

	case *cont.OrCont:
		return in.resumeOr(val, c, point)

	case *cont.DoLoopCont:
		return in.resumeDoLoop(val, c, point)

	case *cont.DynamicWindCont:
		return in.resumeDynamicWind(val, c, point)

	case *cont.GuardClauseCont:
		// Resumed directly only when guard's protected body finishes
		// normally with no raise; a raise that finds this frame dispatches
		// clause-matching itself (interp.dispatchRaise), bypassing this
		// switch entirely, the same way ExceptionHandlerCont's case below
		// never runs clause/handler logic on a normal-completion resume.
		return val, c.ParentCont(), point, nil, false, nil

	case *cont.DelayCont:
		return in.resumeDelay(val, c, point)

	case *cont.CaseCont:
		c.Key = val
		return in.resumeCase(c, point)

	case *cont.ExceptionHandlerCont:
		// Resumed directly only when a handler frame's protected body
		// finishes normally with no raise; fall straight through.
		return val, c.ParentCont(), point, nil, false, nil

	default:
		return nil, nil, nil, nil, false, fmt.Errorf("internal: unknown continuation kind %v", k.Kind())
	}
}

// resumeBegin evaluates a begin sequence one form at a time; the *last*
// form is evaluated directly under Parent (not under a fresh BeginCont),
// which is what makes `begin` tail-preserving (spec §4.4).
func (in *Interpreter) resumeBegin(val value.Value, c *cont.BeginCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if len(c.Rest) == 0 {
		return val, c.ParentCont(), point, nil, false, nil
	}
	next := c.Rest[0]
	rest := c.Rest[1:]
	var nk cont.Continuation = c.ParentCont()
	if len(rest) > 0 {
		nk = cont.NewBegin(c.ParentCont(), c.Env, rest)
	}
	return nil, nil, nil, &thunk{node: next, env: c.Env, k: nk, point: point}, false, nil
}

// resumeOperator has just evaluated the operator position; it now starts
// collecting argument values via an ApplicationCont, short-circuiting
// straight to apply() for a zero-argument call.
func (in *Interpreter) resumeOperator(operator value.Value, c *cont.OperatorCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	if len(c.ArgExprs) == 0 {
		return in.apply(operator, nil, c.CallSpan, c.ParentCont(), point)
	}
	first := c.ArgExprs[0]
	ac := cont.NewApplication(c.ParentCont(), c.Env, operator, c.ArgExprs[1:], c.CallSpan)
	return nil, nil, nil, &thunk{node: first, env: c.Env, k: ac, point: point}, false, nil
}

// resumeApplication collects one more evaluated argument; once PendingArgs
// is empty, all operands are in hand and apply() runs the call.
func (in *Interpreter) resumeApplication(argVal value.Value, c *cont.ApplicationCont, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, bool, error) {
	evaluated := append(c.EvaluatedArgs, argVal)
	if len(c.PendingArgs) == 0 {
		return in.apply(c.Operator, evaluated, c.CallSpan, c.ParentCont(), point)
	}
	next := c.PendingArgs[0]
	ac := cont.NewApplication(c.ParentCont(), c.Env, c.Operator, c.PendingArgs[1:], c.CallSpan)
	ac.EvaluatedArgs = evaluated
	return nil, nil, nil, &thunk{node: next, env: c.Env, k: ac, point: point}, false, nil
}

// evalQuasiquote builds the runtime Value a quasiquoted datum denotes (spec
// §4.2 `quasiquote`/`unquote`/`unquote-splicing`), tracking nesting level so
// an inner quasiquote's own unquotes are left untouched (R7RS §4.2.8). Each
// unquoted expression runs through a fresh Eval call rather than the
// enclosing trampoline: quasiquote's tree shape doesn't correspond to a
// tail position of the surrounding evaluation anyway, so nothing is lost by
// recursing here the way the classic quasiquote-expansion algorithms do.
//
// Both shorthand nodes (`,x` parses as *ast.Unquote) and explicit list forms
// (`(unquote x)` parses as a plain *ast.List headed by the symbol "unquote")
// are R7RS-equivalent, so both are recognized below.
func (in *Interpreter) evalQuasiquote(node ast.Node, level int, en *env.Environment) (value.Value, error) {
	switch n := node.(type) {
	case *ast.Unquote:
		if level == 1 {
			return in.Eval(n.Datum, en)
		}
		inner, err := in.evalQuasiquote(n.Datum, level-1, en)
		if err != nil {
			return nil, err
		}
		return value.SliceToList([]value.Value{value.Intern("unquote"), inner}, value.Nil), nil

	case *ast.Quasiquote:
		inner, err := in.evalQuasiquote(n.Datum, level+1, en)
		if err != nil {
			return nil, err
		}
		return value.SliceToList([]value.Value{value.Intern("quasiquote"), inner}, value.Nil), nil

	case *ast.List:
		if h := n.Head(); h != nil && level == 1 && len(n.Items) == 2 {
			switch h.Name {
			case "unquote":
				return in.Eval(n.Items[1], en)
			case "quasiquote":
				inner, err := in.evalQuasiquote(n.Items[1], level+1, en)
				if err != nil {
					return nil, err
				}
				return value.SliceToList([]value.Value{value.Intern("quasiquote"), inner}, value.Nil), nil
			}
		}
		return in.evalQuasiList(n.Items, n.DottedTail, level, en)

	case *ast.VectorLit:
		items, err := in.evalQuasiSeq(n.Items, level, en)
		if err != nil {
			return nil, err
		}
		return value.NewVector(items), nil

	default:
		return quoteValue(node), nil
	}
}

// evalQuasiList builds a (possibly dotted) list, splicing the value of any
// `,@expr` item in place (R7RS unquote-splicing).
func (in *Interpreter) evalQuasiList(items []ast.Node, dottedTail ast.Node, level int, en *env.Environment) (value.Value, error) {
	var tail value.Value = value.Nil
	if dottedTail != nil {
		t, err := in.evalQuasiquote(dottedTail, level, en)
		if err != nil {
			return nil, err
		}
		tail = t
	}
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if splice, ok := item.(*ast.UnquoteSplicing); ok && level == 1 {
			v, err := in.Eval(splice.Datum, en)
			if err != nil {
				return nil, err
			}
			tail = appendList(v, tail)
			continue
		}
		if lst, ok := item.(*ast.List); ok && level == 1 {
			if h := lst.Head(); h != nil && h.Name == "unquote-splicing" && len(lst.Items) == 2 {
				v, err := in.Eval(lst.Items[1], en)
				if err != nil {
					return nil, err
				}
				tail = appendList(v, tail)
				continue
			}
		}
		v, err := in.evalQuasiquote(item, level, en)
		if err != nil {
			return nil, err
		}
		tail = value.Cons(v, tail)
	}
	return tail, nil
}

func (in *Interpreter) evalQuasiSeq(items []ast.Node, level int, en *env.Environment) ([]value.Value, error) {
	lst, err := in.evalQuasiList(items, nil, level, en)
	if err != nil {
		return nil, err
	}
	out, _ := value.ListToSlice(lst)
	return out, nil
}

// appendList prepends the proper-list contents of spliced onto tail.
func appendList(spliced, tail value.Value) value.Value {
	items, ok := value.ListToSlice(spliced)
	if !ok {
		return spliced // improper splice operand: R7RS leaves this unspecified; pass through
	}
	return value.SliceToList(items, tail)
}

// literalValue re-parses a Literal's lexeme into a runtime Value (spec §3:
// "AST keeps the lexeme; the evaluator/reader owns parsing it").
func literalValue(n *ast.Literal) (value.Value, error) {
	switch n.Kind {
	case token.Boolean:
		return value.Boolean(n.Text == "#t" || n.Text == "#true"), nil
	case token.Char:
		return charFromLexeme(n.Text), nil
	case token.String:
		// The lexer already strips quotes and resolves escapes, so Text is
		// the string's literal content.
		return value.NewString(n.Text), nil
	default: // Integer, Rational, Real, Complex
		num, err := value.ParseNumber(n.Text)
		if err != nil {
			return nil, diag.New(diag.ParseError, n.Span, "%s", err.Error())
		}
		return num, nil
	}
}

// charNamesByName mirrors the lexer's own named-character table (spec §4.11
// character literals); kept as a second copy rather than exporting the
// lexer's so the evaluator doesn't need to import internal/lexer.
var charNamesByName = map[string]rune{
	"space": ' ', "newline": '\n', "tab": '\t', "nul": 0, "null": 0,
	"alarm": 7, "backspace": 8, "delete": 127, "escape": 27, "rubout": 127,
	"return": '\r', "linefeed": '\n', "altmode": 27, "page-separator": '\f',
}

// charFromLexeme resolves a character literal's lexeme (as produced by the
// lexer for `#\x`, `#\space`, `#\x41`) into its rune value.
func charFromLexeme(lexeme string) value.Character {
	runes := []rune(lexeme)
	if len(runes) == 1 {
		return value.Character(runes[0])
	}
	if r, ok := charNamesByName[strings.ToLower(lexeme)]; ok {
		return value.Character(r)
	}
	if len(lexeme) > 1 && (lexeme[0] == 'x' || lexeme[0] == 'X') {
		if n, err := strconv.ParseInt(lexeme[1:], 16, 32); err == nil {
			return value.Character(rune(n))
		}
	}
	return value.Character(runes[0])
}

// quoteValue converts a quoted datum's ast.Node shape into the equivalent
// runtime Value without evaluating any of it (spec §4.2 `quote`).
func quoteValue(n ast.Node) value.Value {
	switch d := n.(type) {
	case *ast.Symbol:
		return value.Symbol{Name: d.Name, Colour: d.Colour}
	case *ast.Literal:
		v, err := literalValue(d)
		if err != nil {
			return value.TheUnspecified
		}
		return v
	case *ast.List:
		items := make([]value.Value, len(d.Items))
		for i, it := range d.Items {
			items[i] = quoteValue(it)
		}
		var tail value.Value = value.Nil
		if d.DottedTail != nil {
			tail = quoteValue(d.DottedTail)
		}
		return value.SliceToList(items, tail)
	case *ast.VectorLit:
		items := make([]value.Value, len(d.Items))
		for i, it := range d.Items {
			items[i] = quoteValue(it)
		}
		return value.NewVector(items)
	case *ast.BytevectorLit:
		return &value.Bytevector{Bytes: append([]byte(nil), d.Bytes...)}
	case *ast.Quote:
		return value.SliceToList([]value.Value{value.Intern("quote"), quoteValue(d.Datum)}, value.Nil)
	default:
		return value.TheUnspecified
	}
}

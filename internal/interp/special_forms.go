package interp

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/cont"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/value"
)

// specialFormFunc is the shape of every recognized special form's handler
// (spec §4.4 "Special forms ... recognized by head symbol before variable
// lookup; each pushes its specific continuation kind"). It has the same
// return shape as evalStep itself, since dispatching to one of these *is*
// an evalStep for a *ast.List headed by a special-form keyword.
type specialFormFunc func(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error)

// specialForms maps head symbol to handler. Registered by an init() in each
// file that owns a family of forms, so conditionals.go/doloop.go/callcc.go/
// dynamicwind.go/exceptions.go/promise.go/higher_order.go each stay
// self-contained rather than piling every handler into this file.
var specialForms = map[string]specialFormFunc{}

func registerSpecialForm(name string, fn specialFormFunc) {
	specialForms[name] = fn
}

func init() {
	registerSpecialForm("quote", evalQuoteForm)
	registerSpecialForm("quasiquote", evalQuasiquoteForm)
	registerSpecialForm("if", evalIf)
	registerSpecialForm("define", evalDefine)
	registerSpecialForm("set!", evalSet)
	registerSpecialForm("lambda", evalLambda)
	registerSpecialForm("begin", evalBeginForm)
	registerSpecialForm("values", evalValues)
	registerSpecialForm("call-with-values", evalCallWithValues)
	registerSpecialForm("define-values", evalDefineValues)
}

func evalQuoteForm(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "quote: expected exactly one datum")
	}
	return quoteValue(lst.Items[1]), k, point, nil, nil
}

func evalQuasiquoteForm(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "quasiquote: expected exactly one datum")
	}
	v, err := in.evalQuasiquote(lst.Items[1], 1, en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return v, k, point, nil, nil
}

func evalIf(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 3 || len(lst.Items) > 4 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "if: expected (if test consequent [alternative])")
	}
	var els ast.Node
	if len(lst.Items) == 4 {
		els = lst.Items[3]
	}
	ic := cont.NewIf(k, en, lst.Items[2], els)
	return nil, nil, nil, &thunk{node: lst.Items[1], env: en, k: ic, point: point}, nil
}

// evalDefine handles both `(define x v)` and the procedure-definition sugar
// `(define (name . formals) body...)` (spec §4.4 "define").
func evalDefine(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define: malformed")
	}
	switch target := lst.Items[1].(type) {
	case *ast.Symbol:
		if len(lst.Items) == 2 {
			en.Define(target.Name, value.TheUnspecified)
			return value.TheUnspecified, k, point, nil, nil
		}
		if len(lst.Items) > 3 {
			return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define: too many arguments")
		}
		ac := cont.NewAssignment(k, en, target.Name, true, lst)
		return nil, nil, nil, &thunk{node: lst.Items[2], env: en, k: ac, point: point}, nil

	case *ast.List:
		name := target.Head()
		if name == nil {
			return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define: invalid procedure head")
		}
		params, rest, err := parseFormals(target.Items[1:], target.DottedTail)
		if err != nil {
			return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define %s: %s", name.Name, err)
		}
		proc := &value.Procedure{
			Kind:  value.KindLambda,
			Name:  name.Name,
			Arity: lambdaArity(params, rest),
			Lambda: &value.LambdaProc{
				Params: params, Rest: rest, Body: lst.Items[2:], Env: en, Name: name.Name,
			},
		}
		en.Define(name.Name, proc)
		return value.TheUnspecified, k, point, nil, nil

	default:
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define: invalid definition target")
	}
}

func evalSet(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 3 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "set!: expected (set! var val)")
	}
	sym, ok := lst.Items[1].(*ast.Symbol)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "set!: target must be a variable")
	}
	ac := cont.NewAssignment(k, en, sym.Name, false, lst)
	return nil, nil, nil, &thunk{node: lst.Items[2], env: en, k: ac, point: point}, nil
}

func evalLambda(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) < 2 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "lambda: malformed")
	}
	var params []string
	var rest string
	var err error
	switch formals := lst.Items[1].(type) {
	case *ast.List:
		params, rest, err = parseFormals(formals.Items, formals.DottedTail)
	case *ast.Symbol:
		rest = formals.Name
	default:
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "lambda: invalid formals")
	}
	if err != nil {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "lambda: %s", err)
	}
	proc := &value.Procedure{
		Kind:  value.KindLambda,
		Arity: lambdaArity(params, rest),
		Lambda: &value.LambdaProc{
			Params: params, Rest: rest, Body: lst.Items[2:], Env: en,
		},
	}
	return proc, k, point, nil, nil
}

func evalBeginForm(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	body := lst.Items[1:]
	if len(body) == 0 {
		return value.TheUnspecified, k, point, nil, nil
	}
	var nk cont.Continuation = k
	if len(body) > 1 {
		nk = cont.NewBegin(k, en, body[1:])
	}
	return nil, nil, nil, &thunk{node: body[0], env: en, k: nk, point: point}, nil
}

// evalValues evaluates `(values e1 ... eN)` as an ordinary application of a
// synthetic "bundle" primitive, reusing ApplicationCont's existing
// argument-collection machinery rather than inventing a new continuation
// shape (spec §4.5 "values packages multiple results"). Bundling zero or
// two-or-more results produces a *value.MultipleValues; exactly one result
// passes through unchanged, matching R7RS's single-value transparency.
func evalValues(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	exprs := lst.Items[1:]
	if len(exprs) == 0 {
		return &value.MultipleValues{}, k, point, nil, nil
	}
	bundle := value.NewPrimitive("values", -1, func(args []value.Value) (value.Value, error) {
		if len(args) == 1 {
			return args[0], nil
		}
		return &value.MultipleValues{Vals: args}, nil
	})
	ac := cont.NewApplication(k, en, bundle, exprs[1:], lst)
	return nil, nil, nil, &thunk{node: exprs[0], env: en, k: ac, point: point}, nil
}

// evalCallWithValues evaluates producer and consumer (not itself a tail
// position worth preserving — call-with-values is rare enough in hot loops
// that a Go-recursive helper call, the same trade-off evalQuasiquote makes,
// is the pragmatic choice here) then applies consumer to producer's
// unpacked results through the normal trampoline so *that* call keeps full
// tail-call behavior.
func evalCallWithValues(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 3 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "call-with-values: expected (call-with-values producer consumer)")
	}
	producer, err := in.Eval(lst.Items[1], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	consumer, err := in.Eval(lst.Items[2], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	result, err := in.Apply(producer, nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	val, rk, rpoint, next, _, err := in.apply(consumer, value.Unpack(result), lst, k, point)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return val, rk, rpoint, next, nil
}

// evalDefineValues handles `(define-values (a b ...) expr)`, binding each
// formal in en to the corresponding unpacked result of expr.
func evalDefineValues(in *Interpreter, lst *ast.List, en *env.Environment, k cont.Continuation, point *cont.DynamicPoint) (value.Value, cont.Continuation, *cont.DynamicPoint, *thunk, error) {
	if len(lst.Items) != 3 {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define-values: expected (define-values (formals...) expr)")
	}
	formalsList, ok := lst.Items[1].(*ast.List)
	if !ok {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define-values: formals must be a list")
	}
	names, rest, err := parseFormals(formalsList.Items, formalsList.DottedTail)
	if err != nil {
		return nil, nil, nil, nil, diag.New(diag.ParseError, lst.Span, "define-values: %s", err)
	}
	result, err := in.Eval(lst.Items[2], en)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	vals := value.Unpack(result)
	if len(vals) < len(names) || (rest == "" && len(vals) != len(names)) {
		return nil, nil, nil, nil, diag.New(diag.ArityMismatch, lst.Span,
			"define-values: expected %d values, got %d", len(names), len(vals))
	}
	for i, name := range names {
		en.Define(name, vals[i])
	}
	if rest != "" {
		en.Define(rest, value.SliceToList(vals[len(names):], value.Nil))
	}
	return value.TheUnspecified, k, point, nil, nil
}

// parseFormals splits a lambda/define-values parameter list into its fixed
// names and optional rest name (spec §4.4 "arity and rest-arg tracked").
func parseFormals(items []ast.Node, dottedTail ast.Node) (params []string, rest string, err error) {
	for _, it := range items {
		sym, ok := it.(*ast.Symbol)
		if !ok {
			return nil, "", errMalformedFormals
		}
		params = append(params, sym.Name)
	}
	if dottedTail != nil {
		sym, ok := dottedTail.(*ast.Symbol)
		if !ok {
			return nil, "", errMalformedFormals
		}
		rest = sym.Name
	}
	return params, rest, nil
}

func lambdaArity(params []string, rest string) int {
	if rest != "" {
		return -1
	}
	return len(params)
}

type formalsError struct{}

func (formalsError) Error() string { return "parameter list must be a proper or dotted list of symbols" }

var errMalformedFormals = formalsError{}

package value

import "github.com/scmlang/scm/internal/ast"

// Env is the minimal environment contract a Lambda closure needs to carry
// its defining scope. internal/env.Environment implements this interface
// structurally; value itself never imports internal/env; this keeps the
// store/environment package free to depend on value without a cycle.
type Env interface {
	Define(name string, v Value)
	Get(name string) (Value, bool)
	Set(name string, v Value) error
	Child() Env
}

// ProcKind distinguishes the concrete shape backing a Procedure (spec §3
// "Procedure | one of {Primitive, Lambda, Continuation, ReusableContinuation,
// Promise-thunk}").
type ProcKind int

const (
	KindPrimitive ProcKind = iota
	KindLambda
	KindContinuation
	KindReusableContinuation
)

func (k ProcKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindLambda:
		return "lambda"
	case KindContinuation:
		return "continuation"
	case KindReusableContinuation:
		return "reusable-continuation"
	}
	return "procedure"
}

// PrimitiveFunc is a host-implemented primitive's Go body. It receives
// already-evaluated arguments and returns a result or an error (typically
// a *diag.Diagnostic, but plain errors are accepted too since value does
// not import diag to avoid a cycle — callers type-assert where needed).
type PrimitiveFunc func(args []Value) (Value, error)

// LambdaProc is a user-defined closure: formal parameters, optional rest
// parameter, body forms, and the captured defining environment.
type LambdaProc struct {
	Params []string
	Rest   string // "" if the lambda has no rest parameter
	Body   []ast.Node
	Env    Env
	Name   string // assigned name, for backtraces; "" for anonymous lambdas
}

// Procedure is the tagged union of every callable value.
type Procedure struct {
	Kind ProcKind
	Name string

	Arity     int  // -1 means variadic (rest param present)
	Primitive PrimitiveFunc
	Lambda    *LambdaProc

	// Continuation is an opaque *cont.Continuation (internal/cont), stored
	// as `any` so value need not import internal/cont.
	Continuation any
}

func (p *Procedure) TypeName() string { return "procedure" }
func (p *Procedure) Write() string {
	if p.Name != "" {
		return "#<procedure:" + p.Name + ">"
	}
	return "#<procedure:" + p.Kind.String() + ">"
}
func (p *Procedure) Display() string { return p.Write() }

func NewPrimitive(name string, arity int, fn PrimitiveFunc) *Procedure {
	return &Procedure{Kind: KindPrimitive, Name: name, Arity: arity, Primitive: fn}
}

package srfi

import (
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// boxModule is SRFI 111 ("Boxes"), a single mutable cell, layered on the
// `value.Box` type internal/value already defines (written as `#&datum`;
// the reader has no `#&` literal syntax).
type boxModule struct{}

func newBoxModule() *boxModule { return &boxModule{} }

func (*boxModule) Number() int  { return 111 }
func (*boxModule) Name() string { return "(srfi 111)" }

func (*boxModule) Install(in *interp.Interpreter) {
	in.Global.Define("box", value.NewPrimitive("box", 1, func(args []value.Value) (value.Value, error) {
		return &value.Box{V: args[0]}, nil
	}))
	in.Global.Define("box?", value.NewPrimitive("box?", 1, func(args []value.Value) (value.Value, error) {
		_, ok := args[0].(*value.Box)
		return value.Boolean(ok), nil
	}))
	in.Global.Define("unbox", value.NewPrimitive("unbox", 1, func(args []value.Value) (value.Value, error) {
		b, ok := args[0].(*value.Box)
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "unbox: expected a box, got %s", args[0].TypeName())
		}
		return b.V, nil
	}))
	in.Global.Define("set-box!", value.NewPrimitive("set-box!", 2, func(args []value.Value) (value.Value, error) {
		b, ok := args[0].(*value.Box)
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "set-box!: expected a box, got %s", args[0].TypeName())
		}
		b.V = args[1]
		return value.TheUnspecified, nil
	}))
}

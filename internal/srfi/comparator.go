package srfi

import (
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// comparatorModule is SRFI 128 ("Comparators"), the shared abstraction
// SRFI 132's sort and SRFI 113's sets build on: a bundle of a type test,
// an equality predicate, and an ordering predicate. internal/srfi's own
// sort/set code doesn't require a comparator (it works directly off
// `equal?` and a raw less-than procedure), so this module exists to let
// imported code construct and inspect one explicitly.
type comparatorModule struct{}

func newComparatorModule() *comparatorModule { return &comparatorModule{} }

func (*comparatorModule) Number() int  { return 128 }
func (*comparatorModule) Name() string { return "(srfi 128)" }

// Comparator bundles a type test, equality predicate, and ordering
// predicate — each either a user procedure or nil. A nil Equality falls
// back to equal?; a nil Ordering makes comparator-compare and
// comparator-ordering-predicate fail with a TypeError.
type Comparator struct {
	TypeTest value.Value
	Equality value.Value
	Ordering value.Value
}

func (*Comparator) TypeName() string  { return "comparator" }
func (*Comparator) Write() string     { return "#<comparator>" }
func (c *Comparator) Display() string { return c.Write() }

func (*comparatorModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn func(in *interp.Interpreter, args []value.Value) (value.Value, error)) {
		in.Global.Define(name, value.NewPrimitive(name, arity, func(args []value.Value) (value.Value, error) {
			return fn(in, args)
		}))
	}

	define("make-comparator", 4, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		c := &Comparator{}
		if !value.IsNull(args[0]) && value.IsTruthy(args[0]) {
			c.TypeTest = args[0]
		}
		if value.IsTruthy(args[1]) {
			c.Equality = args[1]
		}
		if value.IsTruthy(args[2]) {
			c.Ordering = args[2]
		}
		return c, nil
	})
	define("comparator?", 1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		_, ok := args[0].(*Comparator)
		return value.Boolean(ok), nil
	})
	define("comparator-equality-predicate", 1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		c, err := asComparator("comparator-equality-predicate", args[0])
		if err != nil {
			return nil, err
		}
		if c.Equality != nil {
			return c.Equality, nil
		}
		return value.NewPrimitive("equal?", 2, func(a []value.Value) (value.Value, error) {
			return value.Boolean(value.Equal(a[0], a[1])), nil
		}), nil
	})
	define("comparator-ordering-predicate", 1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		c, err := asComparator("comparator-ordering-predicate", args[0])
		if err != nil {
			return nil, err
		}
		if c.Ordering == nil {
			return nil, diag.New(diag.TypeError, token.Span{}, "comparator-ordering-predicate: comparator has no ordering predicate")
		}
		return c.Ordering, nil
	})
	define("comparator-equal?", 3, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		c, err := asComparator("comparator-equal?", args[0])
		if err != nil {
			return nil, err
		}
		if c.Equality == nil {
			return value.Boolean(value.Equal(args[1], args[2])), nil
		}
		return in.Apply(c.Equality, args[1:])
	})
	define("comparator-compare", 3, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		c, err := asComparator("comparator-compare", args[0])
		if err != nil {
			return nil, err
		}
		if c.Ordering == nil {
			return nil, diag.New(diag.TypeError, token.Span{}, "comparator-compare: comparator has no ordering predicate")
		}
		return in.Apply(c.Ordering, args[1:])
	})
}

func asComparator(who string, v value.Value) (*Comparator, error) {
	c, ok := v.(*Comparator)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a comparator, got %s", who, v.TypeName())
	}
	return c, nil
}

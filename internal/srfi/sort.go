package srfi

import (
	"sort"

	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// sortModule is SRFI 132 ("Sort Libraries"): `list-sort`/`vector-sort`
// and friends atop Go's sort.SliceStable, calling the user's `<`
// procedure through Interpreter.Apply the same way internal/srfi's SRFI 1
// higher-order functions do.
type sortModule struct{}

func newSortModule() *sortModule { return &sortModule{} }

func (*sortModule) Number() int  { return 132 }
func (*sortModule) Name() string { return "(srfi 132)" }

func (*sortModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn func(in *interp.Interpreter, args []value.Value) (value.Value, error)) {
		in.Global.Define(name, value.NewPrimitive(name, arity, func(args []value.Value) (value.Value, error) {
			return fn(in, args)
		}))
	}

	define("list-sort", 2, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		less := args[0]
		items, ok := value.ListToSlice(args[1])
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "list-sort: expected a proper list, got %s", args[1].TypeName())
		}
		sorted, err := stableSort(in, less, items)
		if err != nil {
			return nil, err
		}
		return value.SliceToList(sorted, value.Nil), nil
	})
	define("vector-sort", 2, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		less := args[0]
		vec, err := asVectorLocal("vector-sort", args[1])
		if err != nil {
			return nil, err
		}
		sorted, err := stableSort(in, less, vec.Items)
		if err != nil {
			return nil, err
		}
		return value.NewVector(sorted), nil
	})
	define("vector-sort!", 2, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		less := args[0]
		vec, err := asVectorLocal("vector-sort!", args[1])
		if err != nil {
			return nil, err
		}
		sorted, err := stableSort(in, less, vec.Items)
		if err != nil {
			return nil, err
		}
		copy(vec.Items, sorted)
		return value.TheUnspecified, nil
	})
	define("list-sorted?", 2, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		less := args[0]
		items, ok := value.ListToSlice(args[1])
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "list-sorted?: expected a proper list, got %s", args[1].TypeName())
		}
		for i := 1; i < len(items); i++ {
			r, err := in.Apply(less, []value.Value{items[i], items[i-1]})
			if err != nil {
				return nil, err
			}
			if value.IsTruthy(r) {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	})
}

func stableSort(in *interp.Interpreter, less value.Value, items []value.Value) ([]value.Value, error) {
	out := make([]value.Value, len(items))
	copy(out, items)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		r, err := in.Apply(less, []value.Value{out[i], out[j]})
		if err != nil {
			sortErr = err
			return false
		}
		return value.IsTruthy(r)
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

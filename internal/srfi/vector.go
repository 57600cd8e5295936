package srfi

import (
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// vectorModule is SRFI 133 ("Vector Library"), the higher-order vector
// operations internal/builtins' bare `vector`/`vector-ref`/... leave out.
type vectorModule struct{}

func newVectorModule() *vectorModule { return &vectorModule{} }

func (*vectorModule) Number() int  { return 133 }
func (*vectorModule) Name() string { return "(srfi 133)" }

func (*vectorModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn func(in *interp.Interpreter, args []value.Value) (value.Value, error)) {
		in.Global.Define(name, value.NewPrimitive(name, arity, func(args []value.Value) (value.Value, error) {
			return fn(in, args)
		}))
	}

	define("vector-map", -1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return nil, diag.New(diag.ArityMismatch, token.Span{}, "vector-map: expected at least 2 arguments, got %d", len(args))
		}
		proc := args[0]
		vecs, err := asVectorSlice("vector-map", args[1:])
		if err != nil {
			return nil, err
		}
		n := minLen(vecs)
		out := make([]value.Value, n)
		for i := 0; i < n; i++ {
			r, err := in.Apply(proc, columnAt(vecs, i))
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return value.NewVector(out), nil
	})
	define("vector-for-each", -1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return nil, diag.New(diag.ArityMismatch, token.Span{}, "vector-for-each: expected at least 2 arguments, got %d", len(args))
		}
		proc := args[0]
		vecs, err := asVectorSlice("vector-for-each", args[1:])
		if err != nil {
			return nil, err
		}
		n := minLen(vecs)
		for i := 0; i < n; i++ {
			if _, err := in.Apply(proc, columnAt(vecs, i)); err != nil {
				return nil, err
			}
		}
		return value.TheUnspecified, nil
	})
	define("vector-fold", 3, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		kons := args[0]
		acc := args[1]
		vec, err := asVectorLocal("vector-fold", args[2])
		if err != nil {
			return nil, err
		}
		for _, item := range vec.Items {
			var applyErr error
			acc, applyErr = in.Apply(kons, []value.Value{acc, item})
			if applyErr != nil {
				return nil, applyErr
			}
		}
		return acc, nil
	})
	define("vector-copy", -1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		vec, err := asVectorLocal("vector-copy", args[0])
		if err != nil {
			return nil, err
		}
		start, end := 0, len(vec.Items)
		if len(args) > 1 {
			start, err = srfiIndex("vector-copy", args[1])
			if err != nil {
				return nil, err
			}
		}
		if len(args) > 2 {
			end, err = srfiIndex("vector-copy", args[2])
			if err != nil {
				return nil, err
			}
		}
		if start < 0 || end > len(vec.Items) || start > end {
			return nil, diag.New(diag.IndexOutOfRange, token.Span{}, "vector-copy: range [%d,%d) out of bounds for length %d", start, end, len(vec.Items))
		}
		out := make([]value.Value, end-start)
		copy(out, vec.Items[start:end])
		return value.NewVector(out), nil
	})
	define("vector-append", -1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		var out []value.Value
		for _, a := range args {
			vec, err := asVectorLocal("vector-append", a)
			if err != nil {
				return nil, err
			}
			out = append(out, vec.Items...)
		}
		return value.NewVector(out), nil
	})
	define("vector-fill!", -1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		vec, err := asVectorLocal("vector-fill!", args[0])
		if err != nil {
			return nil, err
		}
		fill := args[1]
		start, end := 0, len(vec.Items)
		if len(args) > 2 {
			start, err = srfiIndex("vector-fill!", args[2])
			if err != nil {
				return nil, err
			}
		}
		if len(args) > 3 {
			end, err = srfiIndex("vector-fill!", args[3])
			if err != nil {
				return nil, err
			}
		}
		for i := start; i < end; i++ {
			vec.Items[i] = fill
		}
		return value.TheUnspecified, nil
	})
	define("subvector", 3, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		vec, err := asVectorLocal("subvector", args[0])
		if err != nil {
			return nil, err
		}
		start, err := srfiIndex("subvector", args[1])
		if err != nil {
			return nil, err
		}
		end, err := srfiIndex("subvector", args[2])
		if err != nil {
			return nil, err
		}
		if start < 0 || end > len(vec.Items) || start > end {
			return nil, diag.New(diag.IndexOutOfRange, token.Span{}, "subvector: range [%d,%d) out of bounds for length %d", start, end, len(vec.Items))
		}
		out := make([]value.Value, end-start)
		copy(out, vec.Items[start:end])
		return value.NewVector(out), nil
	})
	define("vector-count", 2, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		pred := args[0]
		vec, err := asVectorLocal("vector-count", args[1])
		if err != nil {
			return nil, err
		}
		n := int64(0)
		for _, item := range vec.Items {
			r, err := in.Apply(pred, []value.Value{item})
			if err != nil {
				return nil, err
			}
			if value.IsTruthy(r) {
				n++
			}
		}
		return value.Int(n), nil
	})
}

func asVectorSlice(who string, args []value.Value) ([]*value.Vector, error) {
	out := make([]*value.Vector, len(args))
	for i, a := range args {
		vec, err := asVectorLocal(who, a)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func minLen(vecs []*value.Vector) int {
	n := len(vecs[0].Items)
	for _, v := range vecs[1:] {
		if len(v.Items) < n {
			n = len(v.Items)
		}
	}
	return n
}

func columnAt(vecs []*value.Vector, i int) []value.Value {
	out := make([]value.Value, len(vecs))
	for j, v := range vecs {
		out[j] = v.Items[i]
	}
	return out
}

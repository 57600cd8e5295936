package srfi

import (
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// listModule implements SRFI 1 ("List Library") on top of internal/builtins'
// bare `list`/`append`/`reverse`/`length` (spec §4.13 supplemented feature).
// Its higher-order members (`fold`, `filter`, `any`, ...) call back into a
// user procedure per element via Interpreter.Apply, the same host-callback
// path spec §4.12 documents for primitive code that isn't itself part of
// the trampoline.
type listModule struct{}

func newListModule() *listModule { return &listModule{} }

func (*listModule) Number() int    { return 1 }
func (*listModule) Name() string   { return "(srfi 1)" }

func (*listModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn func(in *interp.Interpreter, args []value.Value) (value.Value, error)) {
		in.Global.Define(name, value.NewPrimitive(name, arity, func(args []value.Value) (value.Value, error) {
			return fn(in, args)
		}))
	}

	define("fold", 3, srfiFold)
	define("fold-right", 3, srfiFoldRight)
	define("reduce", 3, srfiReduce)
	define("filter", 2, srfiFilter)
	define("remove", 2, srfiRemove)
	define("partition", 2, srfiPartition)
	define("take", 2, srfiTake)
	define("drop", 2, srfiDrop)
	define("iota", -1, srfiIota)
	define("delete", 2, srfiDelete)
	define("last", 1, srfiLast)
	define("last-pair", 1, srfiLastPair)
	define("concatenate", 1, srfiConcatenate)
	define("append-map", 2, srfiAppendMap)
	define("count", 2, srfiCount)
	define("any", 2, srfiAny)
	define("every", 2, srfiEvery)
	define("find", 2, srfiFind)
	define("delete-duplicates", -1, srfiDeleteDuplicates)
}

func srfiList(who string, v value.Value) ([]value.Value, error) {
	items, ok := value.ListToSlice(v)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a proper list, got %s", who, v.TypeName())
	}
	return items, nil
}

// fold is the SRFI 1 left fold: `(fold kons knil lst)` applies
// `(kons elem acc)` left to right, unlike R6RS's `(kons acc elem)`.
func srfiFold(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	kons, knil := args[0], args[1]
	items, err := srfiList("fold", args[2])
	if err != nil {
		return nil, err
	}
	acc := knil
	for _, item := range items {
		acc, err = in.Apply(kons, []value.Value{item, acc})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func srfiFoldRight(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	kons, knil := args[0], args[1]
	items, err := srfiList("fold-right", args[2])
	if err != nil {
		return nil, err
	}
	acc := knil
	for i := len(items) - 1; i >= 0; i-- {
		acc, err = in.Apply(kons, []value.Value{items[i], acc})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// reduce is fold without an explicit seed: `(reduce f ridentity lst)` uses
// the list's first element as the seed, and ridentity only for the empty list.
func srfiReduce(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	f, ridentity := args[0], args[1]
	items, err := srfiList("reduce", args[2])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return ridentity, nil
	}
	acc := items[0]
	for _, item := range items[1:] {
		acc, err = in.Apply(f, []value.Value{item, acc})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func srfiFilter(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	pred := args[0]
	items, err := srfiList("filter", args[1])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, item := range items {
		ok, err := in.Apply(pred, []value.Value{item})
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(ok) {
			out = append(out, item)
		}
	}
	return value.SliceToList(out, value.Nil), nil
}

func srfiRemove(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	pred := args[0]
	items, err := srfiList("remove", args[1])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, item := range items {
		ok, err := in.Apply(pred, []value.Value{item})
		if err != nil {
			return nil, err
		}
		if !value.IsTruthy(ok) {
			out = append(out, item)
		}
	}
	return value.SliceToList(out, value.Nil), nil
}

func srfiPartition(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	pred := args[0]
	items, err := srfiList("partition", args[1])
	if err != nil {
		return nil, err
	}
	var yes, no []value.Value
	for _, item := range items {
		ok, err := in.Apply(pred, []value.Value{item})
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(ok) {
			yes = append(yes, item)
		} else {
			no = append(no, item)
		}
	}
	return &value.MultipleValues{Vals: []value.Value{
		value.SliceToList(yes, value.Nil),
		value.SliceToList(no, value.Nil),
	}}, nil
}

func srfiTake(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	items, err := srfiList("take", args[0])
	if err != nil {
		return nil, err
	}
	n, err := srfiIndex("take", args[1])
	if err != nil {
		return nil, err
	}
	if n > len(items) {
		return nil, diag.New(diag.IndexOutOfRange, token.Span{}, "take: index %d out of range for length %d", n, len(items))
	}
	return value.SliceToList(items[:n], value.Nil), nil
}

func srfiDrop(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	items, err := srfiList("drop", args[0])
	if err != nil {
		return nil, err
	}
	n, err := srfiIndex("drop", args[1])
	if err != nil {
		return nil, err
	}
	if n > len(items) {
		return nil, diag.New(diag.IndexOutOfRange, token.Span{}, "drop: index %d out of range for length %d", n, len(items))
	}
	return value.SliceToList(items[n:], value.Nil), nil
}

// iota mirrors SRFI 1's signature: `(iota count [start [step]])`.
func srfiIota(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	if len(args) == 0 || len(args) > 3 {
		return nil, diag.New(diag.ArityMismatch, token.Span{}, "iota: expected 1 to 3 arguments, got %d", len(args))
	}
	count, err := srfiIndex("iota", args[0])
	if err != nil {
		return nil, err
	}
	start := value.Int(0)
	if len(args) > 1 {
		n, ok := args[1].(value.Number)
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "iota: expected a number, got %s", args[1].TypeName())
		}
		start = n
	}
	step := value.Int(1)
	if len(args) > 2 {
		n, ok := args[2].(value.Number)
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "iota: expected a number, got %s", args[2].TypeName())
		}
		step = n
	}
	out := make([]value.Value, count)
	cur := start
	for i := 0; i < count; i++ {
		out[i] = cur
		var addErr error
		cur, addErr = value.Add(cur, step)
		if addErr != nil {
			return nil, addErr
		}
	}
	return value.SliceToList(out, value.Nil), nil
}

func srfiDelete(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	target := args[0]
	items, err := srfiList("delete", args[1])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, item := range items {
		if !value.Equal(target, item) {
			out = append(out, item)
		}
	}
	return value.SliceToList(out, value.Nil), nil
}

func srfiDeleteDuplicates(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, diag.New(diag.ArityMismatch, token.Span{}, "delete-duplicates: expected 1 or 2 arguments, got %d", len(args))
	}
	items, err := srfiList("delete-duplicates", args[0])
	if err != nil {
		return nil, err
	}
	eq := func(a, b value.Value) (bool, error) { return value.Equal(a, b), nil }
	if len(args) == 2 {
		pred := args[1]
		eq = func(a, b value.Value) (bool, error) {
			r, err := in.Apply(pred, []value.Value{a, b})
			if err != nil {
				return false, err
			}
			return value.IsTruthy(r), nil
		}
	}
	var out []value.Value
	for _, item := range items {
		dup := false
		for _, kept := range out {
			same, err := eq(kept, item)
			if err != nil {
				return nil, err
			}
			if same {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, item)
		}
	}
	return value.SliceToList(out, value.Nil), nil
}

func srfiLast(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	items, err := srfiList("last", args[0])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, diag.New(diag.TypeError, token.Span{}, "last: empty list")
	}
	return items[len(items)-1], nil
}

func srfiLastPair(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	p, ok := args[0].(*value.Pair)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "last-pair: expected a pair, got %s", args[0].TypeName())
	}
	for {
		next, ok := p.Cdr.(*value.Pair)
		if !ok {
			return p, nil
		}
		p = next
	}
}

func srfiConcatenate(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	lists, err := srfiList("concatenate", args[0])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, l := range lists {
		items, err := srfiList("concatenate", l)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return value.SliceToList(out, value.Nil), nil
}

func srfiAppendMap(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	proc := args[0]
	items, err := srfiList("append-map", args[1])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, item := range items {
		r, err := in.Apply(proc, []value.Value{item})
		if err != nil {
			return nil, err
		}
		mapped, ok := value.ListToSlice(r)
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "append-map: procedure must return a list, got %s", r.TypeName())
		}
		out = append(out, mapped...)
	}
	return value.SliceToList(out, value.Nil), nil
}

func srfiCount(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	pred := args[0]
	items, err := srfiList("count", args[1])
	if err != nil {
		return nil, err
	}
	n := int64(0)
	for _, item := range items {
		ok, err := in.Apply(pred, []value.Value{item})
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(ok) {
			n++
		}
	}
	return value.Int(n), nil
}

func srfiAny(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	pred := args[0]
	items, err := srfiList("any", args[1])
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		r, err := in.Apply(pred, []value.Value{item})
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(r) {
			return r, nil
		}
	}
	return value.Boolean(false), nil
}

func srfiEvery(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	pred := args[0]
	items, err := srfiList("every", args[1])
	if err != nil {
		return nil, err
	}
	var last value.Value = value.Boolean(true)
	for _, item := range items {
		r, err := in.Apply(pred, []value.Value{item})
		if err != nil {
			return nil, err
		}
		if !value.IsTruthy(r) {
			return value.Boolean(false), nil
		}
		last = r
	}
	return last, nil
}

func srfiFind(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	pred := args[0]
	items, err := srfiList("find", args[1])
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		r, err := in.Apply(pred, []value.Value{item})
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(r) {
			return item, nil
		}
	}
	return value.Boolean(false), nil
}

func srfiIndex(who string, v value.Value) (int, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, diag.New(diag.TypeError, token.Span{}, "%s: expected an exact integer, got %s", who, v.TypeName())
	}
	i, ok := n.Int64()
	if !ok || i < 0 {
		return 0, diag.New(diag.TypeError, token.Span{}, "%s: expected a non-negative exact integer", who)
	}
	return int(i), nil
}

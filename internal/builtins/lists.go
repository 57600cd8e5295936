package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterListFunctions registers `list length append reverse` (spec
// §4.11). The richer SRFI 1 list library (`fold`, `filter`, `take`, ...)
// lives in internal/srfi, layered on top of these four.
func RegisterListFunctions(r *Registry) {
	r.Register("list", -1, listFn, CategoryList)
	r.Register("length", 1, lengthFn, CategoryList)
	r.Register("append", -1, appendFn, CategoryList)
	r.Register("reverse", 1, reverseFn, CategoryList)
	r.Register("list?", 1, listPredFn, CategoryList)
}

func listFn(args []value.Value) (value.Value, error) {
	return value.SliceToList(args, value.Nil), nil
}

func lengthFn(args []value.Value) (value.Value, error) {
	items, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, wantList("length", args[0])
	}
	return value.Int(int64(len(items))), nil
}

func appendFn(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, nil
	}
	var all []value.Value
	for _, a := range args[:len(args)-1] {
		items, ok := value.ListToSlice(a)
		if !ok {
			return nil, wantList("append", a)
		}
		all = append(all, items...)
	}
	return value.SliceToList(all, args[len(args)-1]), nil
}

func reverseFn(args []value.Value) (value.Value, error) {
	items, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, wantList("reverse", args[0])
	}
	out := make([]value.Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return value.SliceToList(out, value.Nil), nil
}

func listPredFn(args []value.Value) (value.Value, error) {
	_, ok := value.ListToSlice(args[0])
	return value.Boolean(ok), nil
}

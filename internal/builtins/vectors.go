package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterVectorFunctions registers `vector make-vector vector-length
// vector-ref vector-set!` (spec §4.11). The fuller SRFI 133 vector library
// builds on these in internal/srfi.
func RegisterVectorFunctions(r *Registry) {
	r.Register("vector", -1, vectorFn, CategoryVector)
	r.Register("make-vector", -1, makeVectorFn, CategoryVector)
	r.Register("vector-length", 1, vectorLengthFn, CategoryVector)
	r.Register("vector-ref", 2, vectorRefFn, CategoryVector)
	r.Register("vector-set!", 3, vectorSetFn, CategoryVector)
	r.Register("vector?", 1, vectorPredFn, CategoryVector)
	r.Register("vector->list", 1, vectorToListFn, CategoryVector)
	r.Register("list->vector", 1, listToVectorFn, CategoryVector)
}

func vectorFn(args []value.Value) (value.Value, error) {
	items := make([]value.Value, len(args))
	copy(items, args)
	return value.NewVector(items), nil
}

func makeVectorFn(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, argError("make-vector", "expected 1 or 2 arguments, got %d", len(args))
	}
	n, err := asIndex("make-vector", args[0])
	if err != nil {
		return nil, err
	}
	var fill value.Value = value.Boolean(false)
	if len(args) == 2 {
		fill = args[1]
	}
	items := make([]value.Value, n)
	for i := range items {
		items[i] = fill
	}
	return value.NewVector(items), nil
}

func vectorLengthFn(args []value.Value) (value.Value, error) {
	v, err := asVector("vector-length", args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(int64(len(v.Items))), nil
}

func vectorRefFn(args []value.Value) (value.Value, error) {
	v, err := asVector("vector-ref", args[0])
	if err != nil {
		return nil, err
	}
	i, err := asIndex("vector-ref", args[1])
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(v.Items) {
		return nil, indexOutOfRange("vector-ref", i, len(v.Items))
	}
	return v.Items[i], nil
}

func vectorSetFn(args []value.Value) (value.Value, error) {
	v, err := asVector("vector-set!", args[0])
	if err != nil {
		return nil, err
	}
	i, err := asIndex("vector-set!", args[1])
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(v.Items) {
		return nil, indexOutOfRange("vector-set!", i, len(v.Items))
	}
	v.Items[i] = args[2]
	return value.TheUnspecified, nil
}

func vectorPredFn(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Vector)
	return value.Boolean(ok), nil
}

func vectorToListFn(args []value.Value) (value.Value, error) {
	v, err := asVector("vector->list", args[0])
	if err != nil {
		return nil, err
	}
	return value.SliceToList(v.Items, value.Nil), nil
}

func listToVectorFn(args []value.Value) (value.Value, error) {
	items, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, wantList("list->vector", args[0])
	}
	return value.NewVector(items), nil
}

package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterPairFunctions registers `cons car cdr set-car! set-cdr! pair?
// null?` (spec §4.11).
func RegisterPairFunctions(r *Registry) {
	r.Register("cons", 2, consFn, CategoryPair)
	r.Register("car", 1, carFn, CategoryPair)
	r.Register("cdr", 1, cdrFn, CategoryPair)
	r.Register("set-car!", 2, setCarFn, CategoryPair)
	r.Register("set-cdr!", 2, setCdrFn, CategoryPair)
	r.Register("pair?", 1, pairPredFn, CategoryPair)
	r.Register("null?", 1, nullPredFn, CategoryPair)
}

func consFn(args []value.Value) (value.Value, error) {
	return value.Cons(args[0], args[1]), nil
}

func carFn(args []value.Value) (value.Value, error) {
	p, err := asPair("car", args[0])
	if err != nil {
		return nil, err
	}
	return p.Car, nil
}

func cdrFn(args []value.Value) (value.Value, error) {
	p, err := asPair("cdr", args[0])
	if err != nil {
		return nil, err
	}
	return p.Cdr, nil
}

func setCarFn(args []value.Value) (value.Value, error) {
	p, err := asPair("set-car!", args[0])
	if err != nil {
		return nil, err
	}
	p.Car = args[1]
	return value.TheUnspecified, nil
}

func setCdrFn(args []value.Value) (value.Value, error) {
	p, err := asPair("set-cdr!", args[0])
	if err != nil {
		return nil, err
	}
	p.Cdr = args[1]
	return value.TheUnspecified, nil
}

func pairPredFn(args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.Pair)
	return value.Boolean(ok), nil
}

func nullPredFn(args []value.Value) (value.Value, error) {
	return value.Boolean(value.IsNull(args[0])), nil
}

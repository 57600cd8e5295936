package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterPredicateFunctions registers the type predicates of spec §4.11:
// `number? integer? real? string? symbol? char? procedure? boolean?
// vector?`.
func RegisterPredicateFunctions(r *Registry) {
	r.Register("number?", 1, typePred(func(v value.Value) bool { _, ok := v.(value.Number); return ok }), CategoryPredicate)
	r.Register("integer?", 1, typePred(isInteger), CategoryPredicate)
	r.Register("real?", 1, typePred(func(v value.Value) bool {
		n, ok := v.(value.Number)
		return ok && !n.IsComplex()
	}), CategoryPredicate)
	r.Register("string?", 1, typePred(func(v value.Value) bool { _, ok := v.(*value.String); return ok }), CategoryPredicate)
	r.Register("symbol?", 1, typePred(func(v value.Value) bool { _, ok := v.(value.Symbol); return ok }), CategoryPredicate)
	r.Register("char?", 1, typePred(func(v value.Value) bool { _, ok := v.(value.Character); return ok }), CategoryPredicate)
	r.Register("procedure?", 1, typePred(func(v value.Value) bool { _, ok := v.(*value.Procedure); return ok }), CategoryPredicate)
	r.Register("boolean?", 1, typePred(func(v value.Value) bool { _, ok := v.(value.Boolean); return ok }), CategoryPredicate)
	r.Register("vector?", 1, typePred(func(v value.Value) bool { _, ok := v.(*value.Vector); return ok }), CategoryPredicate)
	r.Register("not", 1, notFn, CategoryPredicate)
}

func isInteger(v value.Value) bool {
	n, ok := v.(value.Number)
	return ok && n.IsInteger()
}

func typePred(test func(value.Value) bool) value.PrimitiveFunc {
	return func(args []value.Value) (value.Value, error) {
		return value.Boolean(test(args[0])), nil
	}
}

func notFn(args []value.Value) (value.Value, error) {
	return value.Boolean(!value.IsTruthy(args[0])), nil
}

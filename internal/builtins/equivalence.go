package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterEquivalenceFunctions registers `eq? eqv? equal?` (spec §4.11),
// the three equivalence tiers internal/value already implements.
func RegisterEquivalenceFunctions(r *Registry) {
	r.Register("eq?", 2, eqFn(value.Eq), CategoryEquivalence)
	r.Register("eqv?", 2, eqFn(value.Eqv), CategoryEquivalence)
	r.Register("equal?", 2, eqFn(value.Equal), CategoryEquivalence)
}

func eqFn(cmp func(a, b value.Value) bool) value.PrimitiveFunc {
	return func(args []value.Value) (value.Value, error) {
		return value.Boolean(cmp(args[0], args[1])), nil
	}
}

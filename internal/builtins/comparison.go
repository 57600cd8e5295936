package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterComparisonFunctions registers `= < > <= >=` (spec §4.11), each
// variadic and chained: (< a b c) means a<b and b<c.
func RegisterComparisonFunctions(r *Registry) {
	r.Register("=", -1, chainCmp("=", func(c int) bool { return c == 0 }), CategoryComparison)
	r.Register("<", -1, chainCmp("<", func(c int) bool { return c < 0 }), CategoryComparison)
	r.Register(">", -1, chainCmp(">", func(c int) bool { return c > 0 }), CategoryComparison)
	r.Register("<=", -1, chainCmp("<=", func(c int) bool { return c <= 0 }), CategoryComparison)
	r.Register(">=", -1, chainCmp(">=", func(c int) bool { return c >= 0 }), CategoryComparison)
}

func chainCmp(who string, ok func(int) bool) value.PrimitiveFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return nil, argError(who, "expected at least 1 argument, got 0")
		}
		prev, err := asNumber(who, args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, err := asNumber(who, a)
			if err != nil {
				return nil, err
			}
			if !ok(value.Cmp(prev, n)) {
				return value.Boolean(false), nil
			}
			prev = n
		}
		return value.Boolean(true), nil
	}
}

package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterControlFunctions registers the R7RS §6.11 condition-object
// inspectors for the error-objects `(error ...)` raises (spec §4.11
// "control apply error"; `apply` and `error` themselves are evaluator
// special forms — see internal/interp/higher_order.go and exceptions.go —
// since neither can be a plain PrimitiveFunc).
func RegisterControlFunctions(r *Registry) {
	r.Register("error-object?", 1, typePred(func(v value.Value) bool {
		_, ok := v.(*value.ErrorObject)
		return ok
	}), CategoryControl)
	r.Register("error-object-message", 1, errorObjectMessageFn, CategoryControl)
	r.Register("error-object-irritants", 1, errorObjectIrritantsFn, CategoryControl)
}

func errorObjectMessageFn(args []value.Value) (value.Value, error) {
	e, ok := args[0].(*value.ErrorObject)
	if !ok {
		return nil, typeError("error-object-message", "an error-object", args[0])
	}
	return value.NewString(e.Message), nil
}

func errorObjectIrritantsFn(args []value.Value) (value.Value, error) {
	e, ok := args[0].(*value.ErrorObject)
	if !ok {
		return nil, typeError("error-object-irritants", "an error-object", args[0])
	}
	return value.SliceToList(e.Irritants, value.Nil), nil
}

package builtins

import (
	"math/big"

	"github.com/scmlang/scm/internal/value"
)

// RegisterConversionFunctions registers `exact->inexact inexact->exact
// number->string string->number` (spec §4.11).
func RegisterConversionFunctions(r *Registry) {
	r.Register("exact->inexact", 1, exactToInexactFn, CategoryConversion)
	r.Register("inexact->exact", 1, inexactToExactFn, CategoryConversion)
	r.Register("exact", 1, inexactToExactFn, CategoryConversion)
	r.Register("inexact", 1, exactToInexactFn, CategoryConversion)
	r.Register("number->string", -1, numberToStringFn, CategoryConversion)
	r.Register("string->number", -1, stringToNumberFn, CategoryConversion)
}

func exactToInexactFn(args []value.Value) (value.Value, error) {
	n, err := asNumber("exact->inexact", args[0])
	if err != nil {
		return nil, err
	}
	return n.ToInexact(), nil
}

func inexactToExactFn(args []value.Value) (value.Value, error) {
	n, err := asNumber("inexact->exact", args[0])
	if err != nil {
		return nil, err
	}
	return n.ToExact(), nil
}

func numberToStringFn(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, argError("number->string", "expected 1 or 2 arguments, got %d", len(args))
	}
	n, err := asNumber("number->string", args[0])
	if err != nil {
		return nil, err
	}
	radix := 10
	if len(args) == 2 {
		r, err := asIndex("number->string", args[1])
		if err != nil {
			return nil, err
		}
		radix = r
	}
	if radix == 10 {
		return value.NewString(n.Write()), nil
	}
	i, ok := n.BigInt()
	if !ok {
		return nil, argError("number->string", "radix %d only supported for exact integers", radix)
	}
	return value.NewString(i.Text(radix)), nil
}

func stringToNumberFn(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, argError("string->number", "expected 1 or 2 arguments, got %d", len(args))
	}
	s, err := asString("string->number", args[0])
	if err != nil {
		return nil, err
	}
	radix := 10
	if len(args) == 2 {
		r, err := asIndex("string->number", args[1])
		if err != nil {
			return nil, err
		}
		radix = r
	}
	text := s.Go()
	if radix != 10 {
		i, ok := new(big.Int).SetString(text, radix)
		if !ok {
			return value.Boolean(false), nil
		}
		return value.BigInt(i), nil
	}
	n, err := value.ParseNumber(text)
	if err != nil {
		return value.Boolean(false), nil
	}
	return n, nil
}

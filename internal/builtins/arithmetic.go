package builtins

import (
	"math/big"

	"github.com/scmlang/scm/internal/value"
)

// RegisterArithmeticFunctions registers `+ - * /` (spec §4.11), each
// variadic and left-folding over its arguments the way R7RS describes,
// plus the `quotient`/`remainder`/`modulo` trio (the first two truncating,
// `modulo` flooring) and `min`/`max`
// (R7RS §6.2.6), which SRFI 141 (internal/srfi) extends with the
// floor/truncate/euclidean family rather than redefining.
func RegisterArithmeticFunctions(r *Registry) {
	r.Register("+", -1, addFn, CategoryArithmetic)
	r.Register("-", -1, subFn, CategoryArithmetic)
	r.Register("*", -1, mulFn, CategoryArithmetic)
	r.Register("/", -1, divFn, CategoryArithmetic)
	r.Register("quotient", 2, quotientFn, CategoryArithmetic)
	r.Register("remainder", 2, remainderFn, CategoryArithmetic)
	r.Register("modulo", 2, moduloFn, CategoryArithmetic)
	r.Register("abs", 1, absFn, CategoryArithmetic)
	r.Register("min", -1, minFn, CategoryArithmetic)
	r.Register("max", -1, maxFn, CategoryArithmetic)
}

func addFn(args []value.Value) (value.Value, error) {
	acc := value.Int(0)
	for _, a := range args {
		n, err := asNumber("+", a)
		if err != nil {
			return nil, err
		}
		var e error
		acc, e = value.Add(acc, n)
		if e != nil {
			return nil, e
		}
	}
	return acc, nil
}

func mulFn(args []value.Value) (value.Value, error) {
	acc := value.Int(1)
	for _, a := range args {
		n, err := asNumber("*", a)
		if err != nil {
			return nil, err
		}
		var e error
		acc, e = value.Mul(acc, n)
		if e != nil {
			return nil, e
		}
	}
	return acc, nil
}

func subFn(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, argError("-", "expected at least 1 argument, got 0")
	}
	first, err := asNumber("-", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return value.Sub(value.Int(0), first)
	}
	acc := first
	for _, a := range args[1:] {
		n, err := asNumber("-", a)
		if err != nil {
			return nil, err
		}
		if acc, err = value.Sub(acc, n); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func divFn(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, argError("/", "expected at least 1 argument, got 0")
	}
	first, err := asNumber("/", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return value.Div(value.Int(1), first)
	}
	acc := first
	for _, a := range args[1:] {
		n, err := asNumber("/", a)
		if err != nil {
			return nil, err
		}
		if acc, err = value.Div(acc, n); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func integerOperands(who string, args []value.Value) (*big.Int, *big.Int, error) {
	n, err := asNumber(who, args[0])
	if err != nil {
		return nil, nil, err
	}
	d, err := asNumber(who, args[1])
	if err != nil {
		return nil, nil, err
	}
	if !n.IsInteger() || !d.IsInteger() {
		return nil, nil, wantInteger(who, args[0])
	}
	ni, _ := n.BigInt()
	di, _ := d.BigInt()
	if di.Sign() == 0 {
		return nil, nil, argError(who, "division by zero")
	}
	return ni, di, nil
}

func quotientFn(args []value.Value) (value.Value, error) {
	ni, di, err := integerOperands("quotient", args)
	if err != nil {
		return nil, err
	}
	return value.BigInt(new(big.Int).Quo(ni, di)), nil
}

func remainderFn(args []value.Value) (value.Value, error) {
	ni, di, err := integerOperands("remainder", args)
	if err != nil {
		return nil, err
	}
	return value.BigInt(new(big.Int).Rem(ni, di)), nil
}

// moduloFn follows floor semantics (R7RS `modulo`): the result always
// carries the divisor's sign, unlike `remainder` which carries the
// dividend's.
func moduloFn(args []value.Value) (value.Value, error) {
	ni, di, err := integerOperands("modulo", args)
	if err != nil {
		return nil, err
	}
	r := new(big.Int).Mod(ni, di)
	if r.Sign() != 0 && di.Sign() < 0 {
		r.Add(r, di)
	}
	return value.BigInt(r), nil
}

func absFn(args []value.Value) (value.Value, error) {
	n, err := asNumber("abs", args[0])
	if err != nil {
		return nil, err
	}
	if value.Cmp(n, value.Int(0)) < 0 {
		return value.Sub(value.Int(0), n)
	}
	return n, nil
}

func minFn(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, argError("min", "expected at least 1 argument, got 0")
	}
	best, err := asNumber("min", args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := asNumber("min", a)
		if err != nil {
			return nil, err
		}
		if value.Cmp(n, best) < 0 {
			best = n
		}
	}
	return best, nil
}

func maxFn(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, argError("max", "expected at least 1 argument, got 0")
	}
	best, err := asNumber("max", args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := asNumber("max", a)
		if err != nil {
			return nil, err
		}
		if value.Cmp(n, best) > 0 {
			best = n
		}
	}
	return best, nil
}

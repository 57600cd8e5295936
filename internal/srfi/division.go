package srfi

import (
	"math/big"

	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// divisionModule is SRFI 141 ("Integer Division"): the floor/truncate
// quotient-remainder family R7RS's base `quotient`/`remainder`/`modulo`
// (internal/builtins doesn't even define those three under SRFI 141's
// names) leaves out, built directly on math/big.Int's DivMod/QuoRem.
type divisionModule struct{}

func newDivisionModule() *divisionModule { return &divisionModule{} }

func (*divisionModule) Number() int  { return 141 }
func (*divisionModule) Name() string { return "(srfi 141)" }

func (*divisionModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn value.PrimitiveFunc) {
		in.Global.Define(name, value.NewPrimitive(name, arity, fn))
	}

	define("floor/", 2, func(args []value.Value) (value.Value, error) {
		q, r, err := divFloor("floor/", args)
		if err != nil {
			return nil, err
		}
		return &value.MultipleValues{Vals: []value.Value{q, r}}, nil
	})
	define("floor-quotient", 2, func(args []value.Value) (value.Value, error) {
		q, _, err := divFloor("floor-quotient", args)
		return q, err
	})
	define("floor-remainder", 2, func(args []value.Value) (value.Value, error) {
		_, r, err := divFloor("floor-remainder", args)
		return r, err
	})
	define("truncate/", 2, func(args []value.Value) (value.Value, error) {
		q, r, err := divTruncate("truncate/", args)
		if err != nil {
			return nil, err
		}
		return &value.MultipleValues{Vals: []value.Value{q, r}}, nil
	})
	define("truncate-quotient", 2, func(args []value.Value) (value.Value, error) {
		q, _, err := divTruncate("truncate-quotient", args)
		return q, err
	})
	define("truncate-remainder", 2, func(args []value.Value) (value.Value, error) {
		_, r, err := divTruncate("truncate-remainder", args)
		return r, err
	})
	define("euclidean/", 2, func(args []value.Value) (value.Value, error) {
		q, r, err := divEuclidean("euclidean/", args)
		if err != nil {
			return nil, err
		}
		return &value.MultipleValues{Vals: []value.Value{q, r}}, nil
	})
	define("euclidean-quotient", 2, func(args []value.Value) (value.Value, error) {
		q, _, err := divEuclidean("euclidean-quotient", args)
		return q, err
	})
	define("euclidean-remainder", 2, func(args []value.Value) (value.Value, error) {
		_, r, err := divEuclidean("euclidean-remainder", args)
		return r, err
	})
}

func divisionOperands(who string, args []value.Value) (*big.Int, *big.Int, error) {
	n, ok := args[0].(value.Number)
	if !ok || !n.IsInteger() {
		return nil, nil, diag.New(diag.TypeError, token.Span{}, "%s: expected an exact integer, got %s", who, args[0].TypeName())
	}
	d, ok := args[1].(value.Number)
	if !ok || !d.IsInteger() {
		return nil, nil, diag.New(diag.TypeError, token.Span{}, "%s: expected an exact integer, got %s", who, args[1].TypeName())
	}
	ni, _ := n.BigInt()
	di, _ := d.BigInt()
	if di.Sign() == 0 {
		return nil, nil, diag.New(diag.ArithmeticError, token.Span{}, "%s: division by zero", who)
	}
	return ni, di, nil
}

// divFloor rounds the quotient toward negative infinity. Go's big.Int.DivMod
// is Euclidean (non-negative remainder), which already floors for a positive
// divisor; for a negative divisor with a nonzero remainder the quotient is
// one lower and the remainder takes the divisor's sign.
func divFloor(who string, args []value.Value) (value.Value, value.Value, error) {
	ni, di, err := divisionOperands(who, args)
	if err != nil {
		return nil, nil, err
	}
	q, r := new(big.Int), new(big.Int)
	q.DivMod(ni, di, r)
	if di.Sign() < 0 && r.Sign() != 0 {
		q.Sub(q, big.NewInt(1))
		r.Add(r, di)
	}
	return value.BigInt(q), value.BigInt(r), nil
}

func divTruncate(who string, args []value.Value) (value.Value, value.Value, error) {
	ni, di, err := divisionOperands(who, args)
	if err != nil {
		return nil, nil, err
	}
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(ni, di, r)
	return value.BigInt(q), value.BigInt(r), nil
}

// divEuclidean always yields a non-negative remainder (R. Boute's
// Euclidean division), regardless of either operand's sign; big.Int.DivMod
// implements exactly this.
func divEuclidean(who string, args []value.Value) (value.Value, value.Value, error) {
	ni, di, err := divisionOperands(who, args)
	if err != nil {
		return nil, nil, err
	}
	q, r := new(big.Int), new(big.Int)
	q.DivMod(ni, di, r)
	return value.BigInt(q), value.BigInt(r), nil
}

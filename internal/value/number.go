package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Number is the numeric-tower Value: exact Integer (arbitrary precision via
// math/big), exact Rational (math/big.Rat), inexact Real (float64), and
// Complex (complex128). Exactness contagion and rational normalization on
// construction follow R7RS §6.2 (spec §4.11 "Numeric semantics").
type Number struct {
	kind numKind
	i    *big.Int
	r    *big.Rat
	f    float64
	c    complex128
}

type numKind int

const (
	kindInt numKind = iota
	kindRat
	kindReal
	kindComplex
)

func Int(i int64) Number      { return Number{kind: kindInt, i: big.NewInt(i)} }
func BigInt(i *big.Int) Number { return Number{kind: kindInt, i: new(big.Int).Set(i)} }
func Real(f float64) Number   { return Number{kind: kindReal, f: f} }
func Complex(c complex128) Number {
	if imag(c) == 0 {
		return Real(real(c))
	}
	return Number{kind: kindComplex, c: c}
}

// Rational builds a normalized exact rational; if the denominator divides
// the numerator evenly the result collapses to an Integer, matching R7RS
// "rational normalization on construction" (spec §4.11).
func Rational(num, den *big.Int) Number {
	r := new(big.Rat).SetFrac(num, den)
	if r.IsInt() {
		return Number{kind: kindInt, i: new(big.Int).Set(r.Num())}
	}
	return Number{kind: kindRat, r: r}
}

func (n Number) TypeName() string { return "number" }

func (n Number) IsExact() bool { return n.kind == kindInt || n.kind == kindRat }

func (n Number) Write() string {
	switch n.kind {
	case kindInt:
		return n.i.String()
	case kindRat:
		return n.r.Num().String() + "/" + n.r.Denom().String()
	case kindReal:
		return formatFloat(n.f)
	case kindComplex:
		re, im := real(n.c), imag(n.c)
		sign := "+"
		if im < 0 {
			sign = ""
		}
		return formatFloat(re) + sign + formatFloat(im) + "i"
	}
	return "#<number>"
}

func (n Number) Display() string { return n.Write() }

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "+inf.0"
	}
	if math.IsInf(f, -1) {
		return "-inf.0"
	}
	if math.IsNaN(f) {
		return "+nan.0"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}

// AsFloat returns the inexact float64 approximation of n, used by mixed
// exact/inexact arithmetic (inexact contagion, spec §4.11).
func (n Number) AsFloat() float64 {
	switch n.kind {
	case kindInt:
		f := new(big.Float).SetInt(n.i)
		v, _ := f.Float64()
		return v
	case kindRat:
		f, _ := n.r.Float64()
		return f
	case kindReal:
		return n.f
	case kindComplex:
		return real(n.c)
	}
	return 0
}

func (n Number) AsComplex() complex128 {
	if n.kind == kindComplex {
		return n.c
	}
	return complex(n.AsFloat(), 0)
}

func (n Number) IsComplex() bool { return n.kind == kindComplex }

// asRat returns n as a big.Rat, valid only when n.IsExact().
func (n Number) asRat() *big.Rat {
	if n.kind == kindInt {
		return new(big.Rat).SetInt(n.i)
	}
	return n.r
}

func combineExactness(a, b Number) numKind {
	if a.kind == kindComplex || b.kind == kindComplex {
		return kindComplex
	}
	if a.kind == kindReal || b.kind == kindReal {
		return kindReal
	}
	if a.kind == kindRat || b.kind == kindRat {
		return kindRat
	}
	return kindInt
}

// ArithError is returned for exact-integer division by zero (spec §4.11:
// "division by zero on exact ints raises ArithmeticError").
type ArithError struct{ Msg string }

func (e *ArithError) Error() string { return e.Msg }

func Add(a, b Number) (Number, error) { return arith(a, b, '+') }
func Sub(a, b Number) (Number, error) { return arith(a, b, '-') }
func Mul(a, b Number) (Number, error) { return arith(a, b, '*') }
func Div(a, b Number) (Number, error) { return arith(a, b, '/') }

func arith(a, b Number, op byte) (Number, error) {
	kind := combineExactness(a, b)
	switch kind {
	case kindComplex:
		ac, bc := a.AsComplex(), b.AsComplex()
		switch op {
		case '+':
			return Complex(ac + bc), nil
		case '-':
			return Complex(ac - bc), nil
		case '*':
			return Complex(ac * bc), nil
		case '/':
			if bc == 0 {
				return Number{}, &ArithError{"division by zero"}
			}
			return Complex(ac / bc), nil
		}
	case kindReal:
		af, bf := a.AsFloat(), b.AsFloat()
		switch op {
		case '+':
			return Real(af + bf), nil
		case '-':
			return Real(af - bf), nil
		case '*':
			return Real(af * bf), nil
		case '/':
			return Real(af / bf), nil // IEEE 754: yields +-inf.0/+nan.0, no error
		}
	default: // exact: kindInt or kindRat
		ar, br := a.asRat(), b.asRat()
		switch op {
		case '+':
			return ratResult(new(big.Rat).Add(ar, br)), nil
		case '-':
			return ratResult(new(big.Rat).Sub(ar, br)), nil
		case '*':
			return ratResult(new(big.Rat).Mul(ar, br)), nil
		case '/':
			if br.Sign() == 0 {
				return Number{}, &ArithError{"division by zero"}
			}
			return ratResult(new(big.Rat).Quo(ar, br)), nil
		}
	}
	return Number{}, fmt.Errorf("internal: unknown arith op %c", op)
}

func ratResult(r *big.Rat) Number {
	if r.IsInt() {
		return Number{kind: kindInt, i: new(big.Int).Set(r.Num())}
	}
	return Number{kind: kindRat, r: r}
}

// Cmp compares a and b numerically; only meaningful for non-complex
// numbers (callers must check IsComplex first, matching R7RS which leaves
// < etc. on complex numbers as an error).
func Cmp(a, b Number) int {
	if a.kind == kindReal || b.kind == kindReal {
		af, bf := a.AsFloat(), b.AsFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return a.asRat().Cmp(b.asRat())
}

func NumEqual(a, b Number) bool {
	if a.kind == kindComplex || b.kind == kindComplex {
		return a.AsComplex() == b.AsComplex()
	}
	return Cmp(a, b) == 0
}

func (n Number) IsZero() bool {
	switch n.kind {
	case kindInt:
		return n.i.Sign() == 0
	case kindRat:
		return n.r.Sign() == 0
	case kindReal:
		return n.f == 0
	case kindComplex:
		return n.c == 0
	}
	return false
}

func (n Number) IsInteger() bool {
	switch n.kind {
	case kindInt:
		return true
	case kindReal:
		return n.f == math.Trunc(n.f) && !math.IsInf(n.f, 0)
	}
	return false
}

func (n Number) ToExact() Number {
	if n.IsExact() {
		return n
	}
	if n.kind == kindReal {
		r := new(big.Rat)
		r.SetFloat64(n.f)
		return ratResult(r)
	}
	return n
}

func (n Number) ToInexact() Number {
	if !n.IsExact() {
		return n
	}
	return Real(n.AsFloat())
}

// Int64 returns an exact integer's int64 value; ok is false if n is not an
// exact integer or overflows int64 (used by index/length arguments).
func (n Number) Int64() (int64, bool) {
	if n.kind != kindInt || !n.i.IsInt64() {
		return 0, false
	}
	return n.i.Int64(), true
}

func (n Number) BigInt() (*big.Int, bool) {
	if n.kind != kindInt {
		return nil, false
	}
	return n.i, true
}

// ParseNumber parses an R7RS §6.2.5 numeric literal (as classified by the
// lexer into Integer/Rational/Real/Complex token kinds).
func ParseNumber(lexeme string) (Number, error) {
	s := lexeme
	radix := 10
	exactness := byte(0) // 0 = unspecified, 'e' or 'i'
	for len(s) >= 2 && s[0] == '#' {
		switch s[1] {
		case 'e', 'E':
			exactness = 'e'
		case 'i', 'I':
			exactness = 'i'
		case 'b', 'B':
			radix = 2
		case 'o', 'O':
			radix = 8
		case 'd', 'D':
			radix = 10
		case 'x', 'X':
			radix = 16
		default:
			return Number{}, fmt.Errorf("invalid number prefix in %q", lexeme)
		}
		s = s[2:]
	}

	if strings.HasSuffix(s, "i") || strings.HasSuffix(s, "I") {
		return parseComplex(s, radix, exactness)
	}
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		num, ok1 := new(big.Int).SetString(s[:idx], radix)
		den, ok2 := new(big.Int).SetString(s[idx+1:], radix)
		if !ok1 || !ok2 {
			return Number{}, fmt.Errorf("invalid rational literal %q", lexeme)
		}
		n := Rational(num, den)
		return applyExactness(n, exactness), nil
	}
	if radix == 10 && strings.ContainsAny(s, ".eE") && s != "." {
		switch s {
		case "+inf.0":
			return Real(math.Inf(1)), nil
		case "-inf.0":
			return Real(math.Inf(-1)), nil
		case "+nan.0", "-nan.0":
			return Real(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Number{}, fmt.Errorf("invalid real literal %q: %w", lexeme, err)
		}
		return applyExactness(Real(f), exactness), nil
	}
	i, ok := new(big.Int).SetString(s, radix)
	if !ok {
		return Number{}, fmt.Errorf("invalid integer literal %q", lexeme)
	}
	return applyExactness(BigInt(i), exactness), nil
}

func applyExactness(n Number, exactness byte) Number {
	switch exactness {
	case 'e':
		return n.ToExact()
	case 'i':
		return n.ToInexact()
	default:
		return n
	}
}

func parseComplex(s string, radix int, exactness byte) (Number, error) {
	body := s[:len(s)-1] // strip trailing 'i'
	if body == "" || body == "+" {
		return Complex(complex(0, 1)), nil
	}
	if body == "-" {
		return Complex(complex(0, -1)), nil
	}
	// find the sign that separates real and imaginary parts, scanning from
	// the right so exponent signs inside the real part aren't mistaken for it.
	splitAt := -1
	for i := len(body) - 1; i > 0; i-- {
		if (body[i] == '+' || body[i] == '-') && body[i-1] != 'e' && body[i-1] != 'E' {
			splitAt = i
			break
		}
	}
	var realPart, imagPart string
	if splitAt < 0 {
		realPart, imagPart = "0", body
	} else {
		realPart, imagPart = body[:splitAt], body[splitAt:]
	}
	rf, err := strconv.ParseFloat(realPart, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid complex literal: %q", body)
	}
	if imagPart == "+" {
		imagPart = "1"
	} else if imagPart == "-" {
		imagPart = "-1"
	}
	imf, err := strconv.ParseFloat(imagPart, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid complex literal: %q", body)
	}
	return applyExactness(Complex(complex(rf, imf)), exactness), nil
}

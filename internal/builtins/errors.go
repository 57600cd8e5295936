package builtins

import (
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// A primitive's PrimitiveFunc has no call-site span of its own (spec §4.11:
// primitives "receive already-evaluated arguments"); apply.go attaches the
// call-site span to ArityMismatch itself, but returns a primitive's own
// error unchanged, so every diagnostic raised here carries the zero Span.
func typeError(who string, want string, got value.Value) error {
	return diag.New(diag.TypeError, token.Span{}, "%s: expected %s, got %s", who, want, got.TypeName())
}

func argError(who, format string, args ...any) error {
	full := append([]any{who}, args...)
	return diag.New(diag.TypeError, token.Span{}, "%s: "+format, full...)
}

func wantPair(who string, got value.Value) error    { return typeError(who, "a pair", got) }
func wantNumber(who string, got value.Value) error  { return typeError(who, "a number", got) }
func wantString(who string, got value.Value) error  { return typeError(who, "a string", got) }
func wantVector(who string, got value.Value) error  { return typeError(who, "a vector", got) }
func wantChar(who string, got value.Value) error    { return typeError(who, "a character", got) }
func wantInteger(who string, got value.Value) error { return typeError(who, "an exact integer", got) }
func wantList(who string, got value.Value) error    { return typeError(who, "a proper list", got) }

func asNumber(who string, v value.Value) (value.Number, error) {
	n, ok := v.(value.Number)
	if !ok {
		return value.Number{}, wantNumber(who, v)
	}
	return n, nil
}

func asString(who string, v value.Value) (*value.String, error) {
	s, ok := v.(*value.String)
	if !ok {
		return nil, wantString(who, v)
	}
	return s, nil
}

func asVector(who string, v value.Value) (*value.Vector, error) {
	vec, ok := v.(*value.Vector)
	if !ok {
		return nil, wantVector(who, v)
	}
	return vec, nil
}

func asPair(who string, v value.Value) (*value.Pair, error) {
	p, ok := v.(*value.Pair)
	if !ok {
		return nil, wantPair(who, v)
	}
	return p, nil
}

func asChar(who string, v value.Value) (value.Character, error) {
	c, ok := v.(value.Character)
	if !ok {
		return 0, wantChar(who, v)
	}
	return c, nil
}

func indexOutOfRange(who string, i, length int) error {
	return diag.New(diag.IndexOutOfRange, token.Span{}, "%s: index %d out of range for length %d", who, i, length)
}

func asIndex(who string, v value.Value) (int, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, wantInteger(who, v)
	}
	i, ok := n.Int64()
	if !ok {
		return 0, wantInteger(who, v)
	}
	return int(i), nil
}

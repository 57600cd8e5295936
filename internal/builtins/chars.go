package builtins

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/scmlang/scm/internal/value"
)

// RegisterCharFunctions registers the character half of spec §4.11's
// "string/char basics": predicates, integer conversion, and Unicode-correct
// case conversion via golang.org/x/text/cases.
func RegisterCharFunctions(r *Registry) {
	r.Register("char->integer", 1, charToIntegerFn, CategoryChar)
	r.Register("integer->char", 1, integerToCharFn, CategoryChar)
	r.Register("char=?", -1, charCmpFn("char=?", func(a, b rune) bool { return a == b }), CategoryChar)
	r.Register("char<?", -1, charCmpFn("char<?", func(a, b rune) bool { return a < b }), CategoryChar)
	r.Register("char>?", -1, charCmpFn("char>?", func(a, b rune) bool { return a > b }), CategoryChar)
	r.Register("char-upcase", 1, charUpcaseFn, CategoryChar)
	r.Register("char-downcase", 1, charDowncaseFn, CategoryChar)
	r.Register("char-alphabetic?", 1, charPred(unicode.IsLetter), CategoryChar)
	r.Register("char-numeric?", 1, charPred(unicode.IsDigit), CategoryChar)
	r.Register("char-whitespace?", 1, charPred(unicode.IsSpace), CategoryChar)
	r.Register("char-upper-case?", 1, charPred(unicode.IsUpper), CategoryChar)
	r.Register("char-lower-case?", 1, charPred(unicode.IsLower), CategoryChar)
}

func charToIntegerFn(args []value.Value) (value.Value, error) {
	c, err := asChar("char->integer", args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(int64(c)), nil
}

func integerToCharFn(args []value.Value) (value.Value, error) {
	i, err := asIndex("integer->char", args[0])
	if err != nil {
		return nil, err
	}
	return value.Character(rune(i)), nil
}

func charCmpFn(who string, cmp func(a, b rune) bool) value.PrimitiveFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return nil, argError(who, "expected at least 1 argument, got 0")
		}
		prev, err := asChar(who, args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			c, err := asChar(who, a)
			if err != nil {
				return nil, err
			}
			if !cmp(rune(prev), rune(c)) {
				return value.Boolean(false), nil
			}
			prev = c
		}
		return value.Boolean(true), nil
	}
}

func charUpcaseFn(args []value.Value) (value.Value, error) {
	c, err := asChar("char-upcase", args[0])
	if err != nil {
		return nil, err
	}
	upper := cases.Upper(language.Und).String(string(rune(c)))
	for _, r := range upper {
		return value.Character(r), nil
	}
	return c, nil
}

func charDowncaseFn(args []value.Value) (value.Value, error) {
	c, err := asChar("char-downcase", args[0])
	if err != nil {
		return nil, err
	}
	lower := cases.Lower(language.Und).String(string(rune(c)))
	for _, r := range lower {
		return value.Character(r), nil
	}
	return c, nil
}

func charPred(test func(rune) bool) value.PrimitiveFunc {
	return func(args []value.Value) (value.Value, error) {
		c, err := asChar("char predicate", args[0])
		if err != nil {
			return nil, err
		}
		return value.Boolean(test(rune(c))), nil
	}
}

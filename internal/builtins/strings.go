package builtins

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/scmlang/scm/internal/value"
)

// upperCaser/lowerCaser are shared across calls (spec §4.11 "string/char
// basics" must be Unicode-correct, not ASCII-only, per the DOMAIN STACK
// wiring of golang.org/x/text/cases) — cases.Caser values are safe for
// concurrent use once constructed, so building them once at package scope
// avoids re-resolving the und (root) locale's case-folding tables on every
// `string-upcase` call.
var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
	foldCaser  = cases.Fold()
)

// RegisterStringFunctions registers the string half of spec §4.11's
// "string/char basics": length/ref/append/substring/conversion plus
// Unicode-correct case folding (golang.org/x/text/cases, golang.org/x/text/
// unicode/norm normalize before folding so combining-mark sequences compare
// the way R7RS's string-ci=? expects).
func RegisterStringFunctions(r *Registry) {
	r.Register("string-length", 1, stringLengthFn, CategoryString)
	r.Register("string-ref", 2, stringRefFn, CategoryString)
	r.Register("string-set!", 3, stringSetFn, CategoryString)
	r.Register("string-append", -1, stringAppendFn, CategoryString)
	r.Register("substring", -1, substringFn, CategoryString)
	r.Register("string->list", -1, stringToListFn, CategoryString)
	r.Register("list->string", 1, listToStringFn, CategoryString)
	r.Register("string->symbol", 1, stringToSymbolFn, CategoryString)
	r.Register("symbol->string", 1, symbolToStringFn, CategoryString)
	r.Register("string=?", -1, stringCmpFn("string=?", func(a, b string) bool { return a == b }), CategoryString)
	r.Register("string<?", -1, stringCmpFn("string<?", func(a, b string) bool { return a < b }), CategoryString)
	r.Register("string>?", -1, stringCmpFn("string>?", func(a, b string) bool { return a > b }), CategoryString)
	r.Register("string-ci=?", -1, stringCiCmpFn, CategoryString)
	r.Register("string-upcase", 1, stringUpcaseFn, CategoryString)
	r.Register("string-downcase", 1, stringDowncaseFn, CategoryString)
	r.Register("string-foldcase", 1, stringFoldcaseFn, CategoryString)
	r.Register("make-string", -1, makeStringFn, CategoryString)
	r.Register("string", -1, stringFn, CategoryString)
	r.Register("string-copy", -1, stringCopyFn, CategoryString)
	r.Register("string-fill!", -1, stringFillFn, CategoryString)
}

func stringLengthFn(args []value.Value) (value.Value, error) {
	s, err := asString("string-length", args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(int64(len(s.Runes))), nil
}

func stringRefFn(args []value.Value) (value.Value, error) {
	s, err := asString("string-ref", args[0])
	if err != nil {
		return nil, err
	}
	i, err := asIndex("string-ref", args[1])
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(s.Runes) {
		return nil, indexOutOfRange("string-ref", i, len(s.Runes))
	}
	return value.Character(s.Runes[i]), nil
}

func stringSetFn(args []value.Value) (value.Value, error) {
	s, err := asString("string-set!", args[0])
	if err != nil {
		return nil, err
	}
	i, err := asIndex("string-set!", args[1])
	if err != nil {
		return nil, err
	}
	c, err := asChar("string-set!", args[2])
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(s.Runes) {
		return nil, indexOutOfRange("string-set!", i, len(s.Runes))
	}
	s.Runes[i] = rune(c)
	return value.TheUnspecified, nil
}

func stringAppendFn(args []value.Value) (value.Value, error) {
	var out []rune
	for _, a := range args {
		s, err := asString("string-append", a)
		if err != nil {
			return nil, err
		}
		out = append(out, s.Runes...)
	}
	return &value.String{Runes: out}, nil
}

func substringFn(args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, argError("substring", "expected 2 or 3 arguments, got %d", len(args))
	}
	s, err := asString("substring", args[0])
	if err != nil {
		return nil, err
	}
	start, err := asIndex("substring", args[1])
	if err != nil {
		return nil, err
	}
	end := len(s.Runes)
	if len(args) == 3 {
		if end, err = asIndex("substring", args[2]); err != nil {
			return nil, err
		}
	}
	if start < 0 || end > len(s.Runes) || start > end {
		return nil, indexOutOfRange("substring", start, len(s.Runes))
	}
	out := make([]rune, end-start)
	copy(out, s.Runes[start:end])
	return &value.String{Runes: out}, nil
}

func stringToListFn(args []value.Value) (value.Value, error) {
	s, err := asString("string->list", args[0])
	if err != nil {
		return nil, err
	}
	items := make([]value.Value, len(s.Runes))
	for i, r := range s.Runes {
		items[i] = value.Character(r)
	}
	return value.SliceToList(items, value.Nil), nil
}

func listToStringFn(args []value.Value) (value.Value, error) {
	items, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, wantList("list->string", args[0])
	}
	out := make([]rune, len(items))
	for i, v := range items {
		c, err := asChar("list->string", v)
		if err != nil {
			return nil, err
		}
		out[i] = rune(c)
	}
	return &value.String{Runes: out}, nil
}

func stringToSymbolFn(args []value.Value) (value.Value, error) {
	s, err := asString("string->symbol", args[0])
	if err != nil {
		return nil, err
	}
	return value.Intern(s.Go()), nil
}

func symbolToStringFn(args []value.Value) (value.Value, error) {
	sym, ok := args[0].(value.Symbol)
	if !ok {
		return nil, typeError("symbol->string", "a symbol", args[0])
	}
	return value.NewString(sym.Name), nil
}

func stringCmpFn(who string, cmp func(a, b string) bool) value.PrimitiveFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return nil, argError(who, "expected at least 1 argument, got 0")
		}
		prev, err := asString(who, args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			s, err := asString(who, a)
			if err != nil {
				return nil, err
			}
			if !cmp(prev.Go(), s.Go()) {
				return value.Boolean(false), nil
			}
			prev = s
		}
		return value.Boolean(true), nil
	}
}

func stringCiCmpFn(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, argError("string-ci=?", "expected at least 1 argument, got 0")
	}
	prev, err := asString("string-ci=?", args[0])
	if err != nil {
		return nil, err
	}
	prevFold := foldCaser.String(norm.NFC.String(prev.Go()))
	for _, a := range args[1:] {
		s, err := asString("string-ci=?", a)
		if err != nil {
			return nil, err
		}
		fold := foldCaser.String(norm.NFC.String(s.Go()))
		if fold != prevFold {
			return value.Boolean(false), nil
		}
	}
	return value.Boolean(true), nil
}

func stringUpcaseFn(args []value.Value) (value.Value, error) {
	s, err := asString("string-upcase", args[0])
	if err != nil {
		return nil, err
	}
	return value.NewString(upperCaser.String(norm.NFC.String(s.Go()))), nil
}

func stringDowncaseFn(args []value.Value) (value.Value, error) {
	s, err := asString("string-downcase", args[0])
	if err != nil {
		return nil, err
	}
	return value.NewString(lowerCaser.String(norm.NFC.String(s.Go()))), nil
}

func stringFoldcaseFn(args []value.Value) (value.Value, error) {
	s, err := asString("string-foldcase", args[0])
	if err != nil {
		return nil, err
	}
	return value.NewString(foldCaser.String(norm.NFC.String(s.Go()))), nil
}

func makeStringFn(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, argError("make-string", "expected 1 or 2 arguments, got %d", len(args))
	}
	n, err := asIndex("make-string", args[0])
	if err != nil {
		return nil, err
	}
	fill := rune(' ')
	if len(args) == 2 {
		c, err := asChar("make-string", args[1])
		if err != nil {
			return nil, err
		}
		fill = rune(c)
	}
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = fill
	}
	return &value.String{Runes: runes}, nil
}

func stringFn(args []value.Value) (value.Value, error) {
	runes := make([]rune, len(args))
	for i, a := range args {
		c, err := asChar("string", a)
		if err != nil {
			return nil, err
		}
		runes[i] = rune(c)
	}
	return &value.String{Runes: runes}, nil
}

func stringCopyFn(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, argError("string-copy", "expected 1 to 3 arguments, got %d", len(args))
	}
	s, err := asString("string-copy", args[0])
	if err != nil {
		return nil, err
	}
	start, end := 0, len(s.Runes)
	if len(args) >= 2 {
		if start, err = asIndex("string-copy", args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) == 3 {
		if end, err = asIndex("string-copy", args[2]); err != nil {
			return nil, err
		}
	}
	if start < 0 || end > len(s.Runes) || start > end {
		return nil, indexOutOfRange("string-copy", start, len(s.Runes))
	}
	out := make([]rune, end-start)
	copy(out, s.Runes[start:end])
	return &value.String{Runes: out}, nil
}

func stringFillFn(args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 4 {
		return nil, argError("string-fill!", "expected 2 to 4 arguments, got %d", len(args))
	}
	s, err := asString("string-fill!", args[0])
	if err != nil {
		return nil, err
	}
	c, err := asChar("string-fill!", args[1])
	if err != nil {
		return nil, err
	}
	start, end := 0, len(s.Runes)
	if len(args) >= 3 {
		if start, err = asIndex("string-fill!", args[2]); err != nil {
			return nil, err
		}
	}
	if len(args) == 4 {
		if end, err = asIndex("string-fill!", args[3]); err != nil {
			return nil, err
		}
	}
	if start < 0 || end > len(s.Runes) || start > end {
		return nil, indexOutOfRange("string-fill!", start, len(s.Runes))
	}
	for i := start; i < end; i++ {
		s.Runes[i] = rune(c)
	}
	return value.TheUnspecified, nil
}

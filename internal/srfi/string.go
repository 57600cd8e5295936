package srfi

import (
	"strings"

	"github.com/tidwall/match"

	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// stringModule is SRFI 13 ("String Libraries"), the substring search,
// trimming, padding, and joining operations internal/builtins' bare
// string primitives don't cover. `string-glob-match?` wires tidwall/match
// (the gjson/sjson family's shared glob matcher) for the `*`/`?`
// wildcard matching SRFI 13's `string-match` family is commonly used for.
type stringModule struct{}

func newStringModule() *stringModule { return &stringModule{} }

func (*stringModule) Number() int  { return 13 }
func (*stringModule) Name() string { return "(srfi 13)" }

func (*stringModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn value.PrimitiveFunc) {
		in.Global.Define(name, value.NewPrimitive(name, arity, fn))
	}

	define("string-null?", 1, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-null?", args[0])
		if err != nil {
			return nil, err
		}
		return value.Boolean(len(s.Runes) == 0), nil
	})
	define("string-index", 2, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-index", args[0])
		if err != nil {
			return nil, err
		}
		c, err := asCharLocal("string-index", args[1])
		if err != nil {
			return nil, err
		}
		for i, r := range s.Runes {
			if r == rune(c) {
				return value.Int(int64(i)), nil
			}
		}
		return value.Boolean(false), nil
	})
	define("string-contains", 2, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-contains", args[0])
		if err != nil {
			return nil, err
		}
		needle, err := asStringLocal("string-contains", args[1])
		if err != nil {
			return nil, err
		}
		idx := strings.Index(s.Go(), needle.Go())
		if idx < 0 {
			return value.Boolean(false), nil
		}
		return value.Int(int64(len([]rune(s.Go()[:idx])))), nil
	})
	define("string-prefix?", 2, func(args []value.Value) (value.Value, error) {
		prefix, err := asStringLocal("string-prefix?", args[0])
		if err != nil {
			return nil, err
		}
		s, err := asStringLocal("string-prefix?", args[1])
		if err != nil {
			return nil, err
		}
		return value.Boolean(strings.HasPrefix(s.Go(), prefix.Go())), nil
	})
	define("string-suffix?", 2, func(args []value.Value) (value.Value, error) {
		suffix, err := asStringLocal("string-suffix?", args[0])
		if err != nil {
			return nil, err
		}
		s, err := asStringLocal("string-suffix?", args[1])
		if err != nil {
			return nil, err
		}
		return value.Boolean(strings.HasSuffix(s.Go(), suffix.Go())), nil
	})
	define("string-join", -1, func(args []value.Value) (value.Value, error) {
		if len(args) == 0 || len(args) > 2 {
			return nil, diag.New(diag.ArityMismatch, token.Span{}, "string-join: expected 1 or 2 arguments, got %d", len(args))
		}
		items, ok := value.ListToSlice(args[0])
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "string-join: expected a proper list, got %s", args[0].TypeName())
		}
		sep := " "
		if len(args) == 2 {
			s, err := asStringLocal("string-join", args[1])
			if err != nil {
				return nil, err
			}
			sep = s.Go()
		}
		parts := make([]string, len(items))
		for i, item := range items {
			s, err := asStringLocal("string-join", item)
			if err != nil {
				return nil, err
			}
			parts[i] = s.Go()
		}
		return value.NewString(strings.Join(parts, sep)), nil
	})
	define("string-trim", 1, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-trim", args[0])
		if err != nil {
			return nil, err
		}
		return value.NewString(strings.TrimLeft(s.Go(), " \t\n\r")), nil
	})
	define("string-trim-right", 1, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-trim-right", args[0])
		if err != nil {
			return nil, err
		}
		return value.NewString(strings.TrimRight(s.Go(), " \t\n\r")), nil
	})
	define("string-trim-both", 1, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-trim-both", args[0])
		if err != nil {
			return nil, err
		}
		return value.NewString(strings.TrimSpace(s.Go())), nil
	})
	define("string-pad", 2, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-pad", args[0])
		if err != nil {
			return nil, err
		}
		n, err := srfiIndex("string-pad", args[1])
		if err != nil {
			return nil, err
		}
		runes := s.Runes
		if len(runes) >= n {
			return value.NewString(string(runes[len(runes)-n:])), nil
		}
		pad := make([]rune, n-len(runes))
		for i := range pad {
			pad[i] = ' '
		}
		return value.NewString(string(pad) + s.Go()), nil
	})
	define("string-pad-right", 2, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-pad-right", args[0])
		if err != nil {
			return nil, err
		}
		n, err := srfiIndex("string-pad-right", args[1])
		if err != nil {
			return nil, err
		}
		runes := s.Runes
		if len(runes) >= n {
			return value.NewString(string(runes[:n])), nil
		}
		pad := make([]rune, n-len(runes))
		for i := range pad {
			pad[i] = ' '
		}
		return value.NewString(s.Go() + string(pad)), nil
	})
	define("string-reverse", 1, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-reverse", args[0])
		if err != nil {
			return nil, err
		}
		out := make([]rune, len(s.Runes))
		for i, r := range s.Runes {
			out[len(out)-1-i] = r
		}
		return value.NewString(string(out)), nil
	})
	define("string-count", 2, func(args []value.Value) (value.Value, error) {
		s, err := asStringLocal("string-count", args[0])
		if err != nil {
			return nil, err
		}
		c, err := asCharLocal("string-count", args[1])
		if err != nil {
			return nil, err
		}
		n := int64(0)
		for _, r := range s.Runes {
			if r == rune(c) {
				n++
			}
		}
		return value.Int(n), nil
	})
	define("string-glob-match?", 2, func(args []value.Value) (value.Value, error) {
		pattern, err := asStringLocal("string-glob-match?", args[0])
		if err != nil {
			return nil, err
		}
		s, err := asStringLocal("string-glob-match?", args[1])
		if err != nil {
			return nil, err
		}
		return value.Boolean(match.Match(s.Go(), pattern.Go())), nil
	})
}

func asStringLocal(who string, v value.Value) (*value.String, error) {
	s, ok := v.(*value.String)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a string, got %s", who, v.TypeName())
	}
	return s, nil
}

func asCharLocal(who string, v value.Value) (value.Character, error) {
	c, ok := v.(value.Character)
	if !ok {
		return 0, diag.New(diag.TypeError, token.Span{}, "%s: expected a character, got %s", who, v.TypeName())
	}
	return c, nil
}

package srfi

import (
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// generatorModule is SRFI 121 ("Generators"). A generator is normally a
// reusable coroutine built by suspending a producer procedure mid-run with
// call/cc. Generators here do not use call/cc at all: they are cursor
// closures over an already materialized sequence — `make-iota-generator`/`list->generator`/
// `vector->generator` build one, `generator->list` and friends drain it by
// calling it repeatedly until it yields the eof-object, which is the same
// observable contract SRFI 121 specifies for its consumers.
type generatorModule struct{}

func newGeneratorModule() *generatorModule { return &generatorModule{} }

func (*generatorModule) Number() int  { return 121 }
func (*generatorModule) Name() string { return "(srfi 121)" }

type generatorFunc func() value.Value

func newGeneratorValue(next generatorFunc) *value.ExternalObject {
	return &value.ExternalObject{Tag: "generator", Host: next}
}

func asGenerator(who string, v value.Value) (generatorFunc, error) {
	ext, ok := v.(*value.ExternalObject)
	if !ok || ext.Tag != "generator" {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a generator, got %s", who, v.TypeName())
	}
	fn, ok := ext.Host.(generatorFunc)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a generator, got %s", who, v.TypeName())
	}
	return fn, nil
}

func sliceGenerator(items []value.Value) generatorFunc {
	i := 0
	return func() value.Value {
		if i >= len(items) {
			return value.Eof
		}
		v := items[i]
		i++
		return v
	}
}

func (*generatorModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn func(in *interp.Interpreter, args []value.Value) (value.Value, error)) {
		in.Global.Define(name, value.NewPrimitive(name, arity, func(args []value.Value) (value.Value, error) {
			return fn(in, args)
		}))
	}

	define("list->generator", 1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		items, ok := value.ListToSlice(args[0])
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "list->generator: expected a proper list, got %s", args[0].TypeName())
		}
		return newGeneratorValue(sliceGenerator(items)), nil
	})
	define("vector->generator", 1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		vec, err := asVectorLocal("vector->generator", args[0])
		if err != nil {
			return nil, err
		}
		items := make([]value.Value, len(vec.Items))
		copy(items, vec.Items)
		return newGeneratorValue(sliceGenerator(items)), nil
	})
	define("make-iota-generator", -1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		if len(args) == 0 || len(args) > 3 {
			return nil, diag.New(diag.ArityMismatch, token.Span{}, "make-iota-generator: expected 1 to 3 arguments, got %d", len(args))
		}
		iotaVal, err := srfiIota(in, args)
		if err != nil {
			return nil, err
		}
		items, _ := value.ListToSlice(iotaVal)
		return newGeneratorValue(sliceGenerator(items)), nil
	})
	define("generator->list", 1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		next, err := asGenerator("generator->list", args[0])
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for {
			v := next()
			if v.TypeName() == "eof-object" {
				break
			}
			out = append(out, v)
		}
		return value.SliceToList(out, value.Nil), nil
	})
	define("generator-next!", 1, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		next, err := asGenerator("generator-next!", args[0])
		if err != nil {
			return nil, err
		}
		return next(), nil
	})
	define("generator-map", 2, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		proc := args[0]
		next, err := asGenerator("generator-map", args[1])
		if err != nil {
			return nil, err
		}
		mapped := func() value.Value {
			v := next()
			if v.TypeName() == "eof-object" {
				return v
			}
			r, applyErr := in.Apply(proc, []value.Value{v})
			if applyErr != nil {
				return value.Eof
			}
			return r
		}
		return newGeneratorValue(mapped), nil
	})
	define("generator-for-each", 2, func(in *interp.Interpreter, args []value.Value) (value.Value, error) {
		proc := args[0]
		next, err := asGenerator("generator-for-each", args[1])
		if err != nil {
			return nil, err
		}
		for {
			v := next()
			if v.TypeName() == "eof-object" {
				break
			}
			if _, applyErr := in.Apply(proc, []value.Value{v}); applyErr != nil {
				return nil, applyErr
			}
		}
		return value.TheUnspecified, nil
	})
}

func asVectorLocal(who string, v value.Value) (*value.Vector, error) {
	vec, ok := v.(*value.Vector)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a vector, got %s", who, v.TypeName())
	}
	return vec, nil
}

package builtins

import (
	"github.com/scmlang/scm/internal/store"
	"github.com/scmlang/scm/internal/value"
)

// InstallMemoryPrimitives wires the spec §6/§4.12 memory-introspection
// specials (`memory-usage`, `memory-statistics`, `collect-garbage`,
// `set-memory-limit!`, `allocate-location`, `location-ref`,
// `location-set!`) against s. Unlike every other primitive in this
// package, these close over live interpreter state (the backing Store)
// rather than being stateless functions of their arguments alone, so they
// are installed separately from RegisterAll/DefaultRegistry — whoever
// constructs an Interpreter (pkg/scheme.New, and the interp tests' own
// setup) calls this right
// after builtins.InstallDefault, passing that Interpreter's own Store.
func InstallMemoryPrimitives(en Installer, s store.Store) {
	en.Define("memory-usage", value.NewPrimitive("memory-usage", 0, func(args []value.Value) (value.Value, error) {
		return value.Int(s.Stats().Live), nil
	}))
	en.Define("memory-statistics", value.NewPrimitive("memory-statistics", 0, func(args []value.Value) (value.Value, error) {
		stats := s.Stats()
		fields := []value.Value{
			value.Cons(value.Intern("total-allocations"), value.Int(stats.TotalAllocations)),
			value.Cons(value.Intern("live"), value.Int(stats.Live)),
			value.Cons(value.Intern("peak"), value.Int(stats.Peak)),
			value.Cons(value.Intern("gc-cycles"), value.Int(stats.GCCycles)),
		}
		return value.SliceToList(fields, value.Nil), nil
	}))
	en.Define("collect-garbage", value.NewPrimitive("collect-garbage", 0, func(args []value.Value) (value.Value, error) {
		s.Collect()
		return value.TheUnspecified, nil
	}))
	en.Define("set-memory-limit!", value.NewPrimitive("set-memory-limit!", 1, func(args []value.Value) (value.Value, error) {
		n, err := asNumber("set-memory-limit!", args[0])
		if err != nil {
			return nil, err
		}
		i, ok := n.Int64()
		if !ok {
			return nil, wantInteger("set-memory-limit!", args[0])
		}
		s.SetLimit(i)
		return value.TheUnspecified, nil
	}))
	en.Define("allocate-location", value.NewPrimitive("allocate-location", 1, func(args []value.Value) (value.Value, error) {
		h := s.Allocate(args[0])
		return &value.ExternalObject{Tag: "location", Host: h}, nil
	}))
	en.Define("location-ref", value.NewPrimitive("location-ref", 1, func(args []value.Value) (value.Value, error) {
		h, err := asLocation("location-ref", args[0])
		if err != nil {
			return nil, err
		}
		v, ok := s.Get(h)
		if !ok {
			return nil, argError("location-ref", "location has been collected")
		}
		return v, nil
	}))
	en.Define("location-set!", value.NewPrimitive("location-set!", 2, func(args []value.Value) (value.Value, error) {
		h, err := asLocation("location-set!", args[0])
		if err != nil {
			return nil, err
		}
		s.Set(h, args[1])
		return value.TheUnspecified, nil
	}))
}

func asLocation(who string, v value.Value) (store.Handle, error) {
	ext, ok := v.(*value.ExternalObject)
	if !ok || ext.Tag != "location" {
		return 0, typeError(who, "a location handle", v)
	}
	h, ok := ext.Host.(store.Handle)
	if !ok {
		return 0, typeError(who, "a location handle", v)
	}
	return h, nil
}

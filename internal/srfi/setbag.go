package srfi

import (
	"sort"

	"github.com/maruel/natural"

	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// setBagModule is SRFI 113 ("Sets and Bags"): equal?-keyed collections
// built the same way internal/value.HashTable is (a Go map keyed by each
// element's written form), a Set storing presence and a Bag storing a
// count, enumerated in natural key order for determinism like the SRFI 69
// hash tables above.
type setBagModule struct{}

func newSetBagModule() *setBagModule { return &setBagModule{} }

func (*setBagModule) Number() int  { return 113 }
func (*setBagModule) Name() string { return "(srfi 113)" }

// Set is an equal?-based unordered collection without duplicates.
type Set struct {
	elems map[string]value.Value
}

func (*Set) TypeName() string { return "set" }
func (s *Set) Write() string  { return writeCollection("#<set", s.sortedElems()) }
func (s *Set) Display() string { return s.Write() }

func (s *Set) sortedElems() []value.Value {
	out := make([]value.Value, 0, len(s.elems))
	for _, v := range s.elems {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return natural.Less(out[i].Write(), out[j].Write()) })
	return out
}

// Bag is an equal?-based unordered collection that tracks multiplicity.
type Bag struct {
	counts map[string]int
	elems  map[string]value.Value
}

func (*Bag) TypeName() string  { return "bag" }
func (b *Bag) Write() string   { return writeCollection("#<bag", b.sortedElems()) }
func (b *Bag) Display() string { return b.Write() }

func (b *Bag) sortedElems() []value.Value {
	keys := make([]string, 0, len(b.elems))
	for k := range b.elems {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return natural.Less(keys[i], keys[j]) })
	var out []value.Value
	for _, k := range keys {
		for i := 0; i < b.counts[k]; i++ {
			out = append(out, b.elems[k])
		}
	}
	return out
}

func writeCollection(prefix string, items []value.Value) string {
	s := prefix
	for _, it := range items {
		s += " " + it.Write()
	}
	return s + ">"
}

func (*setBagModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn value.PrimitiveFunc) {
		in.Global.Define(name, value.NewPrimitive(name, arity, fn))
	}

	define("set", -1, func(args []value.Value) (value.Value, error) {
		s := &Set{elems: make(map[string]value.Value)}
		for _, a := range args {
			s.elems[a.Write()] = a
		}
		return s, nil
	})
	define("set?", 1, func(args []value.Value) (value.Value, error) {
		_, ok := args[0].(*Set)
		return value.Boolean(ok), nil
	})
	define("set-contains?", 2, func(args []value.Value) (value.Value, error) {
		s, err := asSet("set-contains?", args[0])
		if err != nil {
			return nil, err
		}
		_, ok := s.elems[args[1].Write()]
		return value.Boolean(ok), nil
	})
	define("set-adjoin", -1, func(args []value.Value) (value.Value, error) {
		s, err := asSet("set-adjoin", args[0])
		if err != nil {
			return nil, err
		}
		out := &Set{elems: make(map[string]value.Value, len(s.elems))}
		for k, v := range s.elems {
			out.elems[k] = v
		}
		for _, a := range args[1:] {
			out.elems[a.Write()] = a
		}
		return out, nil
	})
	define("set-size", 1, func(args []value.Value) (value.Value, error) {
		s, err := asSet("set-size", args[0])
		if err != nil {
			return nil, err
		}
		return value.Int(int64(len(s.elems))), nil
	})
	define("set->list", 1, func(args []value.Value) (value.Value, error) {
		s, err := asSet("set->list", args[0])
		if err != nil {
			return nil, err
		}
		return value.SliceToList(s.sortedElems(), value.Nil), nil
	})
	define("list->set", 1, func(args []value.Value) (value.Value, error) {
		items, ok := value.ListToSlice(args[0])
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "list->set: expected a proper list, got %s", args[0].TypeName())
		}
		s := &Set{elems: make(map[string]value.Value, len(items))}
		for _, it := range items {
			s.elems[it.Write()] = it
		}
		return s, nil
	})

	define("bag", -1, func(args []value.Value) (value.Value, error) {
		b := &Bag{counts: make(map[string]int), elems: make(map[string]value.Value)}
		for _, a := range args {
			k := a.Write()
			b.counts[k]++
			b.elems[k] = a
		}
		return b, nil
	})
	define("bag?", 1, func(args []value.Value) (value.Value, error) {
		_, ok := args[0].(*Bag)
		return value.Boolean(ok), nil
	})
	define("bag-contains?", 2, func(args []value.Value) (value.Value, error) {
		b, err := asBag("bag-contains?", args[0])
		if err != nil {
			return nil, err
		}
		return value.Boolean(b.counts[args[1].Write()] > 0), nil
	})
	define("bag-count", 2, func(args []value.Value) (value.Value, error) {
		b, err := asBag("bag-count", args[0])
		if err != nil {
			return nil, err
		}
		return value.Int(int64(b.counts[args[1].Write()])), nil
	})
	define("bag-adjoin", -1, func(args []value.Value) (value.Value, error) {
		b, err := asBag("bag-adjoin", args[0])
		if err != nil {
			return nil, err
		}
		out := &Bag{counts: make(map[string]int, len(b.counts)), elems: make(map[string]value.Value, len(b.elems))}
		for k, c := range b.counts {
			out.counts[k] = c
			out.elems[k] = b.elems[k]
		}
		for _, a := range args[1:] {
			k := a.Write()
			out.counts[k]++
			out.elems[k] = a
		}
		return out, nil
	})
	define("bag-size", 1, func(args []value.Value) (value.Value, error) {
		b, err := asBag("bag-size", args[0])
		if err != nil {
			return nil, err
		}
		total := 0
		for _, c := range b.counts {
			total += c
		}
		return value.Int(int64(total)), nil
	})
	define("bag->list", 1, func(args []value.Value) (value.Value, error) {
		b, err := asBag("bag->list", args[0])
		if err != nil {
			return nil, err
		}
		return value.SliceToList(b.sortedElems(), value.Nil), nil
	})
}

func asSet(who string, v value.Value) (*Set, error) {
	s, ok := v.(*Set)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a set, got %s", who, v.TypeName())
	}
	return s, nil
}

func asBag(who string, v value.Value) (*Bag, error) {
	b, ok := v.(*Bag)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a bag, got %s", who, v.TypeName())
	}
	return b, nil
}

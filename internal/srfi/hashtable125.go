package srfi

import (
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// extendedHashTableModule is SRFI 125 ("Intermediate Hash Tables"), the
// handful of operations SRFI 69 left out: copying, clearing, emptiness,
// and building directly from a generator (SRFI 121). Everything else a
// SRFI 125 program needs (`hash-table-ref`, `hash-table-set!`, ...) it
// gets from (srfi 69) — this module only adds the delta.
type extendedHashTableModule struct{}

func newExtendedHashTableModule() *extendedHashTableModule { return &extendedHashTableModule{} }

func (*extendedHashTableModule) Number() int  { return 125 }
func (*extendedHashTableModule) Name() string { return "(srfi 125)" }

func (*extendedHashTableModule) Install(in *interp.Interpreter) {
	newHashTableModule().Install(in)

	in.Global.Define("hash-table-empty?", value.NewPrimitive("hash-table-empty?", 1, func(args []value.Value) (value.Value, error) {
		h, err := asHashTable("hash-table-empty?", args[0])
		if err != nil {
			return nil, err
		}
		return value.Boolean(h.Len() == 0), nil
	}))
	in.Global.Define("hash-table-clear!", value.NewPrimitive("hash-table-clear!", 1, func(args []value.Value) (value.Value, error) {
		h, err := asHashTable("hash-table-clear!", args[0])
		if err != nil {
			return nil, err
		}
		for _, e := range h.Entries() {
			h.Delete(e.Key)
		}
		return value.TheUnspecified, nil
	}))
	in.Global.Define("hash-table-copy", value.NewPrimitive("hash-table-copy", 1, func(args []value.Value) (value.Value, error) {
		h, err := asHashTable("hash-table-copy", args[0])
		if err != nil {
			return nil, err
		}
		out := value.NewHashTable()
		for _, e := range h.Entries() {
			out.Set(e.Key, e.Val)
		}
		return out, nil
	}))
	in.Global.Define("hash-table-generator->list", value.NewPrimitive("hash-table-generator->list", 1, func(args []value.Value) (value.Value, error) {
		next, err := asGenerator("hash-table-generator->list", args[0])
		if err != nil {
			return nil, err
		}
		h := value.NewHashTable()
		for {
			v := next()
			if v.TypeName() == "eof-object" {
				break
			}
			p, ok := v.(*value.Pair)
			if !ok {
				return nil, diag.New(diag.TypeError, token.Span{}, "hash-table-generator->list: expected a pair, got %s", v.TypeName())
			}
			h.Set(p.Car, p.Cdr)
		}
		return h, nil
	}))
}

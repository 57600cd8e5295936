package srfi

import (
	"sort"

	"github.com/maruel/natural"

	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// hashTableModule is SRFI 69 ("Basic Hash Tables"), layered on
// internal/value.HashTable's equal?-keyed Go map. Enumeration order
// (`hash-table-keys`, `hash-table-values`, `hash-table->alist`,
// `hash-table-walk`) is stabilized by sorting keys in natural order via
// maruel/natural rather than leaving it at Go's randomized map order, so
// two runs of the same program print the same thing.
type hashTableModule struct{}

func newHashTableModule() *hashTableModule { return &hashTableModule{} }

func (*hashTableModule) Number() int  { return 69 }
func (*hashTableModule) Name() string { return "(srfi 69)" }

func (*hashTableModule) Install(in *interp.Interpreter) {
	define := func(name string, arity int, fn func(in *interp.Interpreter, args []value.Value) (value.Value, error)) {
		in.Global.Define(name, value.NewPrimitive(name, arity, func(args []value.Value) (value.Value, error) {
			return fn(in, args)
		}))
	}
	define("make-hash-table", -1, htMake)
	define("hash-table?", 1, htPred)
	define("hash-table-set!", 3, htSet)
	define("hash-table-ref", -1, htRef)
	define("hash-table-ref/default", 3, htRefDefault)
	define("hash-table-delete!", 2, htDelete)
	define("hash-table-contains?", 2, htContains)
	define("hash-table-size", 1, htSize)
	define("hash-table-keys", 1, htKeys)
	define("hash-table-values", 1, htValues)
	define("hash-table->alist", 1, htToAlist)
	define("hash-table-walk", 2, htWalk)
	define("hash-table-update!", -1, htUpdate)
	define("hash-table-update!/default", 4, htUpdateDefault)
	define("alist->hash-table", 1, alistToHT)
}

func asHashTable(who string, v value.Value) (*value.HashTable, error) {
	h, ok := v.(*value.HashTable)
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "%s: expected a hash table, got %s", who, v.TypeName())
	}
	return h, nil
}

// sortedEntries returns h's entries sorted by the natural order of each
// key's written form, for deterministic enumeration.
func sortedEntries(h *value.HashTable) []struct {
	Key value.Value
	Val value.Value
} {
	entries := h.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return natural.Less(entries[i].Key.Write(), entries[j].Key.Write())
	})
	return entries
}

func htMake(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	return value.NewHashTable(), nil
}

func htPred(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	_, ok := args[0].(*value.HashTable)
	return value.Boolean(ok), nil
}

func htSet(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-set!", args[0])
	if err != nil {
		return nil, err
	}
	h.Set(args[1], args[2])
	return value.TheUnspecified, nil
}

func htRef(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, diag.New(diag.ArityMismatch, token.Span{}, "hash-table-ref: expected 2 or 3 arguments, got %d", len(args))
	}
	h, err := asHashTable("hash-table-ref", args[0])
	if err != nil {
		return nil, err
	}
	v, ok := h.Get(args[1])
	if ok {
		return v, nil
	}
	if len(args) == 3 {
		return in.Apply(args[2], nil)
	}
	return nil, diag.New(diag.TypeError, token.Span{}, "hash-table-ref: no value for key %s", args[1].Write())
}

func htRefDefault(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-ref/default", args[0])
	if err != nil {
		return nil, err
	}
	if v, ok := h.Get(args[1]); ok {
		return v, nil
	}
	return args[2], nil
}

func htDelete(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-delete!", args[0])
	if err != nil {
		return nil, err
	}
	h.Delete(args[1])
	return value.TheUnspecified, nil
}

func htContains(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-contains?", args[0])
	if err != nil {
		return nil, err
	}
	_, ok := h.Get(args[1])
	return value.Boolean(ok), nil
}

func htSize(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-size", args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(int64(h.Len())), nil
}

func htKeys(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-keys", args[0])
	if err != nil {
		return nil, err
	}
	entries := sortedEntries(h)
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return value.SliceToList(out, value.Nil), nil
}

func htValues(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-values", args[0])
	if err != nil {
		return nil, err
	}
	entries := sortedEntries(h)
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = e.Val
	}
	return value.SliceToList(out, value.Nil), nil
}

func htToAlist(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table->alist", args[0])
	if err != nil {
		return nil, err
	}
	entries := sortedEntries(h)
	out := make([]value.Value, len(entries))
	for i, e := range entries {
		out[i] = value.Cons(e.Key, e.Val)
	}
	return value.SliceToList(out, value.Nil), nil
}

func htWalk(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-walk", args[0])
	if err != nil {
		return nil, err
	}
	proc := args[1]
	for _, e := range sortedEntries(h) {
		if _, err := in.Apply(proc, []value.Value{e.Key, e.Val}); err != nil {
			return nil, err
		}
	}
	return value.TheUnspecified, nil
}

func htUpdate(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, diag.New(diag.ArityMismatch, token.Span{}, "hash-table-update!: expected 3 or 4 arguments, got %d", len(args))
	}
	h, err := asHashTable("hash-table-update!", args[0])
	if err != nil {
		return nil, err
	}
	proc := args[2]
	cur, ok := h.Get(args[1])
	if !ok {
		if len(args) < 4 {
			return nil, diag.New(diag.TypeError, token.Span{}, "hash-table-update!: no value for key %s", args[1].Write())
		}
		var applyErr error
		cur, applyErr = in.Apply(args[3], nil)
		if applyErr != nil {
			return nil, applyErr
		}
	}
	next, err := in.Apply(proc, []value.Value{cur})
	if err != nil {
		return nil, err
	}
	h.Set(args[1], next)
	return value.TheUnspecified, nil
}

func htUpdateDefault(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	h, err := asHashTable("hash-table-update!/default", args[0])
	if err != nil {
		return nil, err
	}
	proc := args[2]
	cur, ok := h.Get(args[1])
	if !ok {
		cur = args[3]
	}
	next, err := in.Apply(proc, []value.Value{cur})
	if err != nil {
		return nil, err
	}
	h.Set(args[1], next)
	return value.TheUnspecified, nil
}

func alistToHT(in *interp.Interpreter, args []value.Value) (value.Value, error) {
	items, ok := value.ListToSlice(args[0])
	if !ok {
		return nil, diag.New(diag.TypeError, token.Span{}, "alist->hash-table: expected a proper list, got %s", args[0].TypeName())
	}
	h := value.NewHashTable()
	for _, item := range items {
		p, ok := item.(*value.Pair)
		if !ok {
			return nil, diag.New(diag.TypeError, token.Span{}, "alist->hash-table: expected an alist of pairs, got %s", item.TypeName())
		}
		h.Set(p.Car, p.Cdr)
	}
	return h, nil
}

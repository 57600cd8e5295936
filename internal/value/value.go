// Package value implements the runtime Value tagged union (spec §3 "Value")
// shared by every other kernel package: numbers, characters, strings,
// symbols, pairs, vectors, procedures, continuations, ports, boxes,
// records, promises, hash tables, and opaque host objects, plus the three
// tiers of equality (eq?/eqv?/equal?) and the display/write printers.
//
// Value does NOT use interface{}/any as its representation (mirroring the
// teacher's own "This interface does NOT use interface{} to ensure type
// safety" design note on its Value type): every variant is a concrete Go
// type implementing the Value interface below.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scmlang/scm/internal/ast"
)

// Value is the runtime representation of every Scheme datum.
type Value interface {
	// TypeName returns the tag name used in TypeError messages and by the
	// `number?`, `pair?`, ... family of predicates.
	TypeName() string
	// Write renders the external representation as `write` would.
	Write() string
	// Display renders the human-facing representation as `display` would
	// (strings/chars unquoted; everything else identical to Write).
	Display() string
}

// --- Unspecified ---

type Unspecified struct{}

func (Unspecified) TypeName() string { return "unspecified" }
func (Unspecified) Write() string    { return "#<unspecified>" }
func (Unspecified) Display() string  { return "#<unspecified>" }

var TheUnspecified = Unspecified{}

// --- Boolean ---

type Boolean bool

func (b Boolean) TypeName() string { return "boolean" }
func (b Boolean) Write() string {
	if b {
		return "#t"
	}
	return "#f"
}
func (b Boolean) Display() string { return b.Write() }

// IsTruthy implements R7RS "everything but #f is true".
func IsTruthy(v Value) bool {
	b, ok := v.(Boolean)
	return !ok || bool(b)
}

// --- Character ---

type Character rune

func (c Character) TypeName() string { return "character" }
func (c Character) Write() string {
	switch rune(c) {
	case ' ':
		return "#\\space"
	case '\n':
		return "#\\newline"
	case '\t':
		return "#\\tab"
	case '\r':
		return "#\\return"
	case 0:
		return "#\\null"
	case 7:
		return "#\\alarm"
	case 8:
		return "#\\backspace"
	case 127:
		return "#\\delete"
	case 27:
		return "#\\escape"
	}
	return "#\\" + string(rune(c))
}
func (c Character) Display() string { return string(rune(c)) }

// --- Symbol (interned) ---

// Symbol carries the hygiene colour introduced during macro expansion
// (spec §4.3, §9 "symbol-with-colour"); eq? on symbols compares both Name
// and Colour.
type Symbol struct {
	Name   string
	Colour int
}

func (s Symbol) TypeName() string { return "symbol" }
func (s Symbol) Write() string    { return s.Name }
func (s Symbol) Display() string  { return s.Name }

// Intern returns an uncoloured symbol for Name. Colour 0 is reserved for
// reader-produced symbols; the macro expander assigns Colour > 0 marks.
func Intern(name string) Symbol { return Symbol{Name: name} }

// --- EmptyList ---

type emptyList struct{}

func (emptyList) TypeName() string { return "null" }
func (emptyList) Write() string    { return "()" }
func (emptyList) Display() string  { return "()" }

var Nil Value = emptyList{}

func IsNull(v Value) bool { _, ok := v.(emptyList); return ok }

// --- Pair ---

// Pair is mutable: set-car!/set-cdr! replace Car/Cdr in place, so a Pair
// must always be referenced by pointer.
type Pair struct {
	Car Value
	Cdr Value
}

func Cons(car, cdr Value) *Pair { return &Pair{Car: car, Cdr: cdr} }

func (p *Pair) TypeName() string { return "pair" }
func (p *Pair) Write() string    { return writeList(p, func(v Value) string { return v.Write() }) }
func (p *Pair) Display() string  { return writeList(p, func(v Value) string { return v.Display() }) }

func writeList(p *Pair, render func(Value) string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(render(p.Car))
	cur := p.Cdr
	for {
		switch t := cur.(type) {
		case *Pair:
			sb.WriteByte(' ')
			sb.WriteString(render(t.Car))
			cur = t.Cdr
			continue
		case emptyList:
			sb.WriteByte(')')
			return sb.String()
		default:
			sb.WriteString(" . ")
			sb.WriteString(render(cur))
			sb.WriteByte(')')
			return sb.String()
		}
	}
}

// ListToSlice converts a proper list to a Go slice. ok is false if v is not
// a proper (nil-terminated) list.
func ListToSlice(v Value) (items []Value, ok bool) {
	cur := v
	for {
		switch t := cur.(type) {
		case emptyList:
			return items, true
		case *Pair:
			items = append(items, t.Car)
			cur = t.Cdr
		default:
			return items, false
		}
	}
}

// SliceToList builds a proper list from items, optionally dotted with tail
// (pass Nil for a proper list).
func SliceToList(items []Value, tail Value) Value {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = Cons(items[i], result)
	}
	return result
}

// --- String (mutable, R7RS string-set!/string-fill!) ---

type String struct {
	Runes []rune
}

func NewString(s string) *String { return &String{Runes: []rune(s)} }

func (s *String) TypeName() string { return "string" }
func (s *String) Go() string       { return string(s.Runes) }
func (s *String) Write() string    { return strconv.Quote(s.Go()) }
func (s *String) Display() string  { return s.Go() }

// --- Vector (mutable) ---

type Vector struct {
	Items []Value
}

func NewVector(items []Value) *Vector { return &Vector{Items: items} }

func (v *Vector) TypeName() string { return "vector" }
func (v *Vector) Write() string    { return writeSeq("#(", v.Items, func(x Value) string { return x.Write() }) }
func (v *Vector) Display() string  { return writeSeq("#(", v.Items, func(x Value) string { return x.Display() }) }

func writeSeq(prefix string, items []Value, render func(Value) string) string {
	parts := make([]string, len(items))
	for i, x := range items {
		parts[i] = render(x)
	}
	return prefix + strings.Join(parts, " ") + ")"
}

// --- Bytevector (mutable) ---

type Bytevector struct {
	Bytes []byte
}

func (b *Bytevector) TypeName() string { return "bytevector" }
func (b *Bytevector) Write() string {
	parts := make([]string, len(b.Bytes))
	for i, x := range b.Bytes {
		parts[i] = strconv.Itoa(int(x))
	}
	return "#u8(" + strings.Join(parts, " ") + ")"
}
func (b *Bytevector) Display() string { return b.Write() }

// --- Box (SRFI 111) ---

type Box struct {
	V Value
}

func (b *Box) TypeName() string { return "box" }
func (b *Box) Write() string    { return "#&" + b.V.Write() }
func (b *Box) Display() string  { return "#&" + b.V.Display() }

// --- EofObject ---

type eofObject struct{}

var Eof Value = eofObject{}

func (eofObject) TypeName() string { return "eof-object" }
func (eofObject) Write() string    { return "#<eof>" }
func (eofObject) Display() string  { return "#<eof>" }

// --- ExternalObject (opaque host handle, spec §3) ---

type ExternalObject struct {
	Tag     string
	Host    any
}

func (e *ExternalObject) TypeName() string { return "external-object" }
func (e *ExternalObject) Write() string    { return fmt.Sprintf("#<external-object:%s>", e.Tag) }
func (e *ExternalObject) Display() string  { return e.Write() }

// --- Record (SRFI 9) ---

// RecordType describes a `define-record-type` declaration. It is itself a
// Value so `(define typeName (%make-record-type ...))` can bind it like any
// other datum for %record-constructor/%record-predicate/... to close over.
type RecordType struct {
	Name   string
	Fields []string
}

func (t *RecordType) TypeName() string { return "record-type" }
func (t *RecordType) Write() string    { return "#<record-type " + t.Name + ">" }
func (t *RecordType) Display() string  { return t.Write() }

// FieldIndex returns the position of field in t.Fields, or -1.
func (t *RecordType) FieldIndex(field string) int {
	for i, f := range t.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

type Record struct {
	Type   *RecordType
	Fields []Value
}

func (r *Record) TypeName() string { return r.Type.Name }
func (r *Record) Write() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = r.Type.Fields[i] + ": " + f.Write()
	}
	return "#<" + r.Type.Name + " " + strings.Join(parts, " ") + ">"
}
func (r *Record) Display() string { return r.Write() }

// --- HashTable (SRFI 69/125) ---

// HashTable uses a Go map keyed by the `equal?`-normalized write-form of
// the key alongside the original key/value pair, which makes `equal?`
// hashing trivial to implement correctly without a custom Hash func for
// every Value variant (mirrors how simple Scheme implementations bootstrap
// hash tables before a real structural hasher is justified).
type HashTable struct {
	entries map[string]hashEntry
	weak    bool
}

type hashEntry struct {
	key Value
	val Value
}

func NewHashTable() *HashTable { return &HashTable{entries: make(map[string]hashEntry)} }

func hashKey(v Value) string { return v.Write() }

func (h *HashTable) Set(k, v Value) { h.entries[hashKey(k)] = hashEntry{key: k, val: v} }
func (h *HashTable) Get(k Value) (Value, bool) {
	e, ok := h.entries[hashKey(k)]
	if !ok {
		return nil, false
	}
	return e.val, true
}
func (h *HashTable) Delete(k Value) { delete(h.entries, hashKey(k)) }
func (h *HashTable) Len() int       { return len(h.entries) }
func (h *HashTable) Keys() []Value {
	out := make([]Value, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, e.key)
	}
	return out
}
func (h *HashTable) Entries() [](struct {
	Key Value
	Val Value
}) {
	out := make([]struct {
		Key Value
		Val Value
	}, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, struct {
			Key Value
			Val Value
		}{e.key, e.val})
	}
	return out
}

func (h *HashTable) TypeName() string { return "hash-table" }
func (h *HashTable) Write() string    { return fmt.Sprintf("#<hash-table %d entries>", len(h.entries)) }
func (h *HashTable) Display() string  { return h.Write() }

// --- MultipleValues (spec §4.5 `values`) ---

// MultipleValues wraps the result of a `(values a b ...)` call with other
// than exactly one operand, so `call-with-values` can tell "one value" from
// "a bundle of values" apart. A bare `(values x)` never produces one of
// these; it's just x, per R7RS's single-value passthrough.
type MultipleValues struct {
	Vals []Value
}

func (m *MultipleValues) TypeName() string { return "values" }
func (m *MultipleValues) Write() string    { return writeSeq("#<values ", m.Vals, func(v Value) string { return v.Write() }) }
func (m *MultipleValues) Display() string  { return writeSeq("#<values ", m.Vals, func(v Value) string { return v.Display() }) }

// Unpack returns the value(s) v denotes as an argument list: a
// *MultipleValues unpacks to its Vals, anything else is a single-element
// list of itself.
func Unpack(v Value) []Value {
	if mv, ok := v.(*MultipleValues); ok {
		return mv.Vals
	}
	return []Value{v}
}

// --- ErrorObject (R7RS §6.11 condition type, spec §4.11 `error`) ---

// ErrorObject is what `(error message irritant...)` raises: a condition
// object `error-object?`/`error-object-message`/`error-object-irritants`
// can inspect from inside a `guard` clause.
type ErrorObject struct {
	Message   string
	Irritants []Value
}

func (e *ErrorObject) TypeName() string { return "error-object" }
func (e *ErrorObject) Write() string {
	return writeSeq("#<error-object "+strconv.Quote(e.Message)+" ", e.Irritants, func(v Value) string { return v.Write() })
}
func (e *ErrorObject) Display() string { return e.Write() }

// --- Promise (spec §3 "Promise", §4.8) ---

// Promise holds either a delayed expression (Expr/Env, not yet forced) or a
// delivered value (Val). Keeping Expr/Env rather than a Go closure lets
// `force` hand the expression back to the evaluator's own trampoline, so
// forcing a long chain of SRFI 45 `lazy` promises is exactly as stack-safe
// as evaluating any other tail position.
type Promise struct {
	Delivered bool
	Val       Value
	Expr      ast.Node // nil once Delivered; the delayed body
	Env       Env      // environment captured at delay/lazy time
	IsLazy    bool     // SRFI 45 `lazy`: force may chain into another promise
}

func (p *Promise) TypeName() string { return "promise" }
func (p *Promise) Write() string    { return "#<promise>" }
func (p *Promise) Display() string  { return "#<promise>" }

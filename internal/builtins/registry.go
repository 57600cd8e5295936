// Package builtins implements the 42 bootstrap primitives of spec §4.11
// (component C11): arithmetic, comparisons, pair/list/vector operations,
// type predicates, the three equivalence relations, I/O, numeric
// conversions, and string/char basics. `map`/`for-each`/`apply` are NOT
// here — spec §4.11 requires those live as evaluator special forms (see
// internal/interp/higher_order.go) since a PrimitiveFunc cannot call back
// into the trampoline.
//
// Organization mirrors the teacher's internal/interp/builtins package: a
// Registry keyed by category, populated by one RegisterXFunctions(r) per
// file, with a single RegisterAll entry point. Install adapts the registry
// onto an *env.Environment, the shape internal/interp's Interpreter.Global
// already expects.
package builtins

import (
	"sort"
	"strings"
	"sync"

	"github.com/scmlang/scm/internal/value"
)

// Category groups related primitives for registry introspection and for
// `internal/srfi`'s re-export modules to query what the kernel already
// provides before adding their own names.
type Category string

const (
	CategoryArithmetic  Category = "arithmetic"
	CategoryComparison  Category = "comparison"
	CategoryPair        Category = "pair"
	CategoryList        Category = "list"
	CategoryVector      Category = "vector"
	CategoryPredicate   Category = "predicate"
	CategoryEquivalence Category = "equivalence"
	CategoryIO          Category = "io"
	CategoryControl     Category = "control"
	CategoryConversion  Category = "conversion"
	CategoryString      Category = "string"
	CategoryChar        Category = "char"
	CategoryMemory      Category = "memory"
)

// FunctionInfo holds one registered primitive plus its bookkeeping.
type FunctionInfo struct {
	Name     string
	Arity    int // -1 means variadic, matching value.NewPrimitive's Arity contract
	Function value.PrimitiveFunc
	Category Category
}

// Registry collects every bootstrap primitive before it is installed into
// a concrete *env.Environment (spec §4.11).
type Registry struct {
	mu         sync.RWMutex
	functions  map[string]*FunctionInfo
	categories map[Category][]string
}

func NewRegistry() *Registry {
	return &Registry{
		functions:  make(map[string]*FunctionInfo),
		categories: make(map[Category][]string),
	}
}

// Register adds one primitive under name, arity (-1 for variadic), category.
func (r *Registry) Register(name string, arity int, fn value.PrimitiveFunc, category Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[name]; !exists {
		r.categories[category] = append(r.categories[category], name)
	}
	r.functions[name] = &FunctionInfo{Name: name, Arity: arity, Function: fn, Category: category}
}

// Names returns every registered primitive name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.functions))
	for name := range r.functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the FunctionInfo for name, if registered.
func (r *Registry) Lookup(name string) (*FunctionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fi, ok := r.functions[name]
	return fi, ok
}

// CategoryNames reports which categories have at least one member, sorted.
func (r *Registry) CategoryNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.categories))
	for c := range r.categories {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry is populated on package initialization with every
// bootstrap primitive, the same shape as the teacher's DefaultRegistry.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry()
	RegisterAll(DefaultRegistry)
}

// RegisterAll wires every category's primitives into r.
func RegisterAll(r *Registry) {
	RegisterArithmeticFunctions(r)
	RegisterComparisonFunctions(r)
	RegisterPairFunctions(r)
	RegisterListFunctions(r)
	RegisterVectorFunctions(r)
	RegisterPredicateFunctions(r)
	RegisterEquivalenceFunctions(r)
	RegisterIOFunctions(r)
	RegisterControlFunctions(r)
	RegisterConversionFunctions(r)
	RegisterStringFunctions(r)
	RegisterCharFunctions(r)
	RegisterRecordFunctions(r)
}

// Installer is the minimal environment contract Install needs — satisfied
// by *env.Environment, kept as an interface here so internal/builtins
// never imports internal/env and risks a cycle back through internal/value.
type Installer interface {
	Define(name string, v value.Value)
}

// Install defines every primitive in r into en, the way a freshly
// constructed Interpreter populates its Global environment before running
// any program (spec §4.11 "bootstrap the system").
func Install(r *Registry, en Installer) {
	for _, name := range r.Names() {
		fi, _ := r.Lookup(name)
		en.Define(name, value.NewPrimitive(fi.Name, fi.Arity, fi.Function))
	}
}

// InstallDefault installs DefaultRegistry into en.
func InstallDefault(en Installer) { Install(DefaultRegistry, en) }

// argCountWord is shared by a few error messages to avoid repeating
// "expected N argument(s)" string assembly per call site.
func argCountWord(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return strings.Join([]string{itoa(n), "arguments"}, " ")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

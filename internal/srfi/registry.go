// Package srfi implements the SRFI registry (spec §4.13, component C12):
// a library-naming contract modeled on SRFI 97 ("SRFI Libraries") itself,
// with a concrete SrfiModule for each of the fifteen SRFIs the kernel
// supplements (spec.md's distillation only gestures at "a SRFI registry";
// SPEC_FULL.md's SUPPLEMENTED FEATURES section commits to all fifteen).
//
// This package's init() sets internal/interp.ImportHook, the same
// driver-registration pattern database/sql uses to let a leaf package plug
// into a core one without an import cycle: internal/interp never imports
// internal/srfi, but any program that imports this package for its side
// effect gets `(import (srfi N))` wired up.
package srfi

import (
	"strconv"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/token"
)

// SrfiModule is one library's contract: its SRFI number, its R7RS library
// name (e.g. "(srfi 1)"), and how it installs its bindings into an
// Interpreter's global environment (spec §4.13 "library provides bindings
// installed into the importing environment").
type SrfiModule interface {
	Number() int
	Name() string
	Install(in *interp.Interpreter)
}

// Registry maps SRFI numbers to the module that implements them.
type Registry struct {
	modules map[int]SrfiModule
}

func NewRegistry() *Registry { return &Registry{modules: make(map[int]SrfiModule)} }

func (r *Registry) Register(m SrfiModule) { r.modules[m.Number()] = m }

func (r *Registry) Lookup(number int) (SrfiModule, bool) {
	m, ok := r.modules[number]
	return m, ok
}

// Numbers reports every registered SRFI number.
func (r *Registry) Numbers() []int {
	out := make([]int, 0, len(r.modules))
	for n := range r.modules {
		out = append(out, n)
	}
	return out
}

// DefaultRegistry carries all fifteen supplemented SRFIs (spec §4.13).
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(newListModule())
	DefaultRegistry.Register(newRecordModule())
	DefaultRegistry.Register(newStringModule())
	DefaultRegistry.Register(newLazyModule())
	DefaultRegistry.Register(newEllipsisModule())
	DefaultRegistry.Register(newHashTableModule())
	DefaultRegistry.Register(newRegistryModule())
	DefaultRegistry.Register(newBoxModule())
	DefaultRegistry.Register(newSetBagModule())
	DefaultRegistry.Register(newGeneratorModule())
	DefaultRegistry.Register(newExtendedHashTableModule())
	DefaultRegistry.Register(newComparatorModule())
	DefaultRegistry.Register(newSortModule())
	DefaultRegistry.Register(newVectorModule())
	DefaultRegistry.Register(newDivisionModule())

	interp.ImportHook = Import
}

// Import resolves one `import` spec against DefaultRegistry (spec §4.13):
// `(srfi N ...)` installs SRFI N's bindings; `(scheme ...)` library names
// are satisfied by the bootstrap primitives internal/builtins already
// installed, so they always succeed as a no-op; anything else, or an
// unregistered SRFI number, is an unknown library.
func Import(in *interp.Interpreter, spec ast.Node) error {
	lst, ok := spec.(*ast.List)
	if !ok || len(lst.Items) == 0 {
		return diag.New(diag.ImportError, spanOf(spec), "import: malformed library spec %s", spec.String())
	}
	head, ok := lst.Items[0].(*ast.Symbol)
	if !ok {
		return diag.New(diag.ImportError, spanOf(spec), "import: malformed library spec %s", spec.String())
	}

	switch head.Name {
	case "scheme":
		// `(scheme base)`, `(scheme write)`, etc: the kernel's bootstrap
		// primitives (internal/builtins) already provide these, unconditionally.
		return nil
	case "srfi":
		if len(lst.Items) < 2 {
			return diag.New(diag.ImportError, spanOf(spec), "import: (srfi ...) expects a SRFI number")
		}
		n, err := srfiNumber(lst.Items[1])
		if err != nil {
			return diag.New(diag.ImportError, spanOf(spec), "%s", err.Error())
		}
		m, ok := DefaultRegistry.Lookup(n)
		if !ok {
			return diag.New(diag.ImportError, spanOf(spec), "import: unknown SRFI %d", n)
		}
		m.Install(in)
		return nil
	default:
		return diag.New(diag.ImportError, spanOf(spec), "import: unknown library %s", spec.String())
	}
}

func srfiNumber(n ast.Node) (int, error) {
	lit, ok := n.(*ast.Literal)
	if !ok {
		return 0, diag.New(diag.ImportError, spanOf(n), "import: expected a SRFI number, got %s", n.String())
	}
	i, err := strconv.Atoi(lit.Text)
	if err != nil {
		return 0, diag.New(diag.ImportError, spanOf(n), "import: invalid SRFI number %q", lit.Text)
	}
	return i, nil
}

func spanOf(n ast.Node) token.Span {
	if n == nil {
		return token.Span{}
	}
	return n.Pos()
}

// Package macro implements C6: a syntax-rules macro expander with hygiene
// and ellipsis, plus the built-in derived-form desugarers (derived.go).
// Expansion is a pure AST->AST rewrite (spec §4.3 "macro output never
// references evaluator state") that runs to a fixed point before the
// evaluator ever sees a form.
package macro

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/token"
)

// ellipsisIdent is the literal identifier R7RS reserves for "...".
const ellipsisIdent = "..."

// Rule is one (pattern template) clause of a syntax-rules form.
type Rule struct {
	Pattern  ast.Node
	Template ast.Node
}

// Macro is a registered define-syntax binding.
type Macro struct {
	Name     string
	Literals map[string]bool
	Rules    []Rule
}

// Expander owns the macro environment (symbol name -> Macro) and the
// hygiene colour counter. One Expander is used for a whole compilation
// unit so that colours stay globally unique within it.
type Expander struct {
	macros     map[string]*Macro
	nextColour int
	cap        int // spec §6 macro-recursion-cap; 0 means use defaultCap
}

// New creates an expander with the built-in derived forms pre-registered
// as pseudo-macros is NOT done here — derived.go's forms are recognized
// directly by Expand because they aren't syntax-rules (they need to
// introduce hygienic temporaries programmatically, not via pattern/template
// substitution).
func New() *Expander {
	return &Expander{macros: make(map[string]*Macro)}
}

// SetRecursionCap overrides the default expansion-iteration limit (spec §6
// "macro-recursion-cap: integer -- abort runaway expansion").
func (x *Expander) SetRecursionCap(n int) { x.cap = n }

func (x *Expander) recursionCap() int {
	if x.cap > 0 {
		return x.cap
	}
	return 10000
}

// freshColour allocates a new hygiene mark, used both for template-
// introduced identifiers and for derived-form-generated temporaries.
func (x *Expander) freshColour() int {
	x.nextColour++
	return x.nextColour
}

// ExpandProgram expands every top-level form to a macro-free fixed point,
// registering define-syntax forms as it goes (spec §4.3 step 1: "Recognize
// define-syntax ... at definition-context positions").
func (x *Expander) ExpandProgram(prog *ast.Program) (*ast.Program, error) {
	out := &ast.Program{Forms: make([]ast.Node, 0, len(prog.Forms))}
	for _, form := range prog.Forms {
		expanded, isDef, err := x.expandTop(form)
		if err != nil {
			return nil, err
		}
		if isDef {
			continue
		}
		out.Forms = append(out.Forms, expanded)
	}
	return out, nil
}

// expandTop handles one top-level form: either it's a define-syntax (which
// registers a macro and produces no output form), or it's expanded like any
// other expression.
func (x *Expander) expandTop(form ast.Node) (ast.Node, bool, error) {
	if lst, ok := form.(*ast.List); ok {
		if head := lst.Head(); head != nil && head.Name == "define-syntax" {
			if err := x.defineSyntax(lst); err != nil {
				return nil, false, err
			}
			return nil, true, nil
		}
	}
	expanded, err := x.Expand(form, 0)
	return expanded, false, err
}

// defineSyntax parses (define-syntax name (syntax-rules (lit...) rule...))
// and registers the macro (spec §4.3 step 1).
func (x *Expander) defineSyntax(lst *ast.List) error {
	if len(lst.Items) != 3 {
		return x.malformed(lst.Span, "define-syntax requires exactly a name and a transformer")
	}
	name, ok := lst.Items[1].(*ast.Symbol)
	if !ok {
		return x.malformed(lst.Span, "define-syntax name must be an identifier")
	}
	rulesForm, ok := lst.Items[2].(*ast.List)
	if !ok || rulesForm.Head() == nil || rulesForm.Head().Name != "syntax-rules" {
		return x.malformed(lst.Span, "define-syntax transformer must be a syntax-rules form")
	}
	m, err := x.parseSyntaxRules(name.Name, rulesForm)
	if err != nil {
		return err
	}
	x.macros[name.Name] = m
	return nil
}

// parseSyntaxRules parses (syntax-rules (lit...) (pattern template)...).
func (x *Expander) parseSyntaxRules(name string, lst *ast.List) (*Macro, error) {
	if len(lst.Items) < 2 {
		return nil, x.malformed(lst.Span, "syntax-rules requires a literals list")
	}
	litList, ok := lst.Items[1].(*ast.List)
	if !ok {
		return nil, x.malformed(lst.Span, "syntax-rules literals must be a list")
	}
	lits := make(map[string]bool, len(litList.Items))
	for _, it := range litList.Items {
		sym, ok := it.(*ast.Symbol)
		if !ok {
			return nil, x.malformed(it.Pos(), "syntax-rules literal must be an identifier")
		}
		lits[sym.Name] = true
	}
	m := &Macro{Name: name, Literals: lits}
	for _, ruleForm := range lst.Items[2:] {
		ruleList, ok := ruleForm.(*ast.List)
		if !ok || len(ruleList.Items) != 2 {
			return nil, x.malformed(ruleForm.Pos(), "syntax-rules clause must be (pattern template)")
		}
		m.Rules = append(m.Rules, Rule{Pattern: ruleList.Items[0], Template: ruleList.Items[1]})
	}
	return m, nil
}

func (x *Expander) malformed(span token.Span, msg string) error {
	return diag.New(diag.MacroError, span, "%s", msg)
}

// Expand recursively macro-expands node, re-driving expansion on the result
// of every macro substitution until the head is no longer a macro use (spec
// §4.3 step 4: "Expansion is iterated until no head is a macro"). depth
// guards against runaway/self-referential macros via the recursion cap.
func (x *Expander) Expand(node ast.Node, depth int) (ast.Node, error) {
	if depth > x.recursionCap() {
		return nil, diag.New(diag.MacroError, node.Pos(), "macro expansion exceeded recursion cap")
	}
	switch n := node.(type) {
	case *ast.Quote:
		return n, nil
	case *ast.Quasiquote:
		body, err := x.expandQuasiBody(n.Datum, 1, depth)
		if err != nil {
			return nil, err
		}
		return &ast.Quasiquote{Datum: body, Span: n.Span}, nil
	case *ast.Unquote, *ast.UnquoteSplicing:
		// An unquote outside any enclosing quasiquote is malformed input;
		// expand its datum anyway so downstream evaluation reports a
		// sensible "unquote outside quasiquote" error rather than this
		// layer silently dropping it.
		return x.expandSubforms(node, depth)
	}
	lst, ok := node.(*ast.List)
	if !ok {
		return x.expandSubforms(node, depth)
	}
	if head := lst.Head(); head != nil {
		switch head.Name {
		case "quote":
			return node, nil
		case "quasiquote":
			return x.expandQuasiquote(lst, depth)
		case "let", "let*", "letrec", "letrec*", "define-record-type":
			// cond/case/when/unless/and/or are NOT desugared here: the
			// evaluator recognizes them directly and pushes their own
			// continuation kind (spec §4.2 "each pushes its specific
			// continuation kind"), so no hygiene-sensitive rewrite is
			// needed for them. let/letrec/define-record-type remain true
			// derived forms: desugar rewrites them directly into
			// lambda/set!/define forms (not through syntax-rules template
			// substitution), and the result is expanded again.
			desugared, err := x.desugar(lst, depth)
			if err != nil {
				return nil, err
			}
			return x.Expand(desugared, depth+1)
		default:
			if m, ok := x.macros[head.Name]; ok {
				expanded, err := x.applyMacro(m, lst)
				if err != nil {
					return nil, err
				}
				return x.Expand(expanded, depth+1)
			}
		}
	}
	return x.expandSubforms(node, depth)
}

// expandSubforms expands every child of a compound node without special-
// casing the node itself.
func (x *Expander) expandSubforms(node ast.Node, depth int) (ast.Node, error) {
	switch n := node.(type) {
	case *ast.List:
		items := make([]ast.Node, len(n.Items))
		for i, it := range n.Items {
			e, err := x.Expand(it, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = e
		}
		var tail ast.Node
		if n.DottedTail != nil {
			t, err := x.Expand(n.DottedTail, depth+1)
			if err != nil {
				return nil, err
			}
			tail = t
		}
		return &ast.List{Items: items, DottedTail: tail, Span: n.Span}, nil
	case *ast.VectorLit:
		items := make([]ast.Node, len(n.Items))
		for i, it := range n.Items {
			e, err := x.Expand(it, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = e
		}
		return &ast.VectorLit{Items: items, Span: n.Span}, nil
	case *ast.Quote:
		return n, nil
	default:
		return node, nil
	}
}

func (x *Expander) expandQuasiquote(lst *ast.List, depth int) (ast.Node, error) {
	if len(lst.Items) != 2 {
		return nil, x.malformed(lst.Span, "quasiquote requires exactly one datum")
	}
	body, err := x.expandQuasiBody(lst.Items[1], 1, depth)
	if err != nil {
		return nil, err
	}
	return &ast.List{Items: []ast.Node{lst.Items[0], body}, Span: lst.Span}, nil
}

// expandQuasiBody walks inside a quasiquote, macro-expanding only the
// operands of unquote/unquote-splicing at the matching nesting level;
// everything else is template data and is left untouched.
func (x *Expander) expandQuasiBody(node ast.Node, level int, depth int) (ast.Node, error) {
	lst, ok := node.(*ast.List)
	if !ok {
		return node, nil
	}
	if head := lst.Head(); head != nil {
		switch head.Name {
		case "unquote":
			if level == 1 {
				return x.Expand(lst.Items[1], depth+1)
			}
			inner, err := x.expandQuasiBody(lst.Items[1], level-1, depth)
			if err != nil {
				return nil, err
			}
			return &ast.List{Items: []ast.Node{lst.Items[0], inner}, Span: lst.Span}, nil
		case "quasiquote":
			inner, err := x.expandQuasiBody(lst.Items[1], level+1, depth)
			if err != nil {
				return nil, err
			}
			return &ast.List{Items: []ast.Node{lst.Items[0], inner}, Span: lst.Span}, nil
		}
	}
	items := make([]ast.Node, len(lst.Items))
	for i, it := range lst.Items {
		e, err := x.expandQuasiBody(it, level, depth)
		if err != nil {
			return nil, err
		}
		items[i] = e
	}
	return &ast.List{Items: items, DottedTail: lst.DottedTail, Span: lst.Span}, nil
}

// applyMacro matches use against each rule in order and substitutes the
// first one that matches (spec §4.3 steps 2-3).
func (x *Expander) applyMacro(m *Macro, use *ast.List) (ast.Node, error) {
	for _, rule := range m.Rules {
		bindings := make(matchEnv)
		if x.match(rule.Pattern, use, m.Literals, bindings, true) {
			colour := x.freshColour()
			renames := make(map[string]int)
			return x.instantiate(rule.Template, bindings, colour, renames), nil
		}
	}
	return nil, diag.New(diag.MacroError, use.Span, "no syntax-rules pattern matches use of %q", m.Name)
}

package macro

import (
	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/token"
)

// desugar rewrites one built-in derived form that needs hygienic temporary
// bindings (spec §4.3 "Built-in derived forms implemented as desugaring
// (with hygiene)"): `let`/`let*`/`letrec`/`letrec*` bottom out in nested
// `lambda`s and `set!`s, and `define-record-type` bottoms out in `define`s
// of the record primitives. `cond`/`case`/`when`/`unless`/`and`/`or` are
// deliberately NOT handled here — the evaluator recognizes them directly
// and pushes their own continuation kind, since none of their temporaries
// need hygienic renaming (see expander.go's Expand switch comment).
//
// Desugaring never calls Expander.freshColour: the identifiers it
// introduces are core keywords and primitive names built with colour 0,
// and every bound name in the output is one the user wrote. Hygienic
// renaming of template-introduced bindings (spec §9 test S9, `swap!`'s
// `tmp`) happens only in syntax-rules instantiation (pattern.go).
func (x *Expander) desugar(lst *ast.List, depth int) (ast.Node, error) {
	head := lst.Head()
	switch head.Name {
	case "let":
		return x.desugarLet(lst)
	case "let*":
		return x.desugarLetStar(lst)
	case "letrec", "letrec*":
		return x.desugarLetrec(lst)
	case "define-record-type":
		return x.desugarDefineRecordType(lst)
	default:
		return lst, nil
	}
}

func sym(name string, colour int, span ast.Node) *ast.Symbol {
	return &ast.Symbol{Name: name, Colour: colour, Span: span.Pos()}
}

func list(span ast.Node, items ...ast.Node) *ast.List {
	return &ast.List{Items: items, Span: span.Pos()}
}

func boolLit(v bool, span ast.Node) *ast.Literal {
	text := "#f"
	if v {
		text = "#t"
	}
	return &ast.Literal{Kind: token.Boolean, Text: text, Span: span.Pos()}
}

// desugarLet handles both (let ((v e)...) body...) and named let
// (let loop ((v e)...) body...), the latter desugaring to a letrec-bound
// self-calling lambda (R7RS §4.2.4).
func (x *Expander) desugarLet(lst *ast.List) (ast.Node, error) {
	items := lst.Items[1:]
	if len(items) == 0 {
		return nil, x.malformed(lst.Span, "let requires bindings and a body")
	}
	if name, ok := items[0].(*ast.Symbol); ok {
		// named let: (let loop ((v e)...) body...)
		bindings, ok := items[1].(*ast.List)
		if !ok {
			return nil, x.malformed(lst.Span, "named let requires a binding list")
		}
		body := items[2:]
		vars, inits, err := splitBindings(x, bindings)
		if err != nil {
			return nil, err
		}
		loopLambda := list(lst, append([]ast.Node{sym("lambda", 0, lst), identList(vars)}, body...)...)
		letrecBinding := list(lst, list(lst, name, loopLambda))
		call := append([]ast.Node{ast.Node(name)}, inits...)
		return list(lst, sym("letrec", 0, lst), letrecBinding, list(lst, call...)), nil
	}
	bindings, ok := items[0].(*ast.List)
	if !ok {
		return nil, x.malformed(lst.Span, "let requires a binding list")
	}
	body := items[1:]
	vars, inits, err := splitBindings(x, bindings)
	if err != nil {
		return nil, err
	}
	lam := append([]ast.Node{sym("lambda", 0, lst), identList(vars)}, body...)
	call := append([]ast.Node{ast.Node(list(lst, lam...))}, inits...)
	return list(lst, call...), nil
}

// desugarLetStar expands (let* ((v e)...) body...) into nested single-
// binding lets, each lambda immediately applied, so later inits see
// earlier bindings (R7RS §4.2.2).
func (x *Expander) desugarLetStar(lst *ast.List) (ast.Node, error) {
	items := lst.Items[1:]
	if len(items) == 0 {
		return nil, x.malformed(lst.Span, "let* requires bindings and a body")
	}
	bindings, ok := items[0].(*ast.List)
	if !ok {
		return nil, x.malformed(lst.Span, "let* requires a binding list")
	}
	body := items[1:]
	if len(bindings.Items) == 0 {
		return list(lst, append([]ast.Node{sym("let", 0, lst), list(lst)}, body...)...), nil
	}
	result := body
	for i := len(bindings.Items) - 1; i >= 0; i-- {
		inner := append([]ast.Node{sym("let", 0, lst), list(lst, bindings.Items[i])}, result...)
		result = []ast.Node{list(lst, inner...)}
	}
	return result[0], nil
}

// desugarLetrec expands (letrec ((v e)...) body...) by defining every
// variable unassigned first, then set!-ing each in turn, matching the
// classic letrec-by-set! transform (R7RS §4.2.2).
func (x *Expander) desugarLetrec(lst *ast.List) (ast.Node, error) {
	items := lst.Items[1:]
	if len(items) == 0 {
		return nil, x.malformed(lst.Span, "letrec requires bindings and a body")
	}
	bindings, ok := items[0].(*ast.List)
	if !ok {
		return nil, x.malformed(lst.Span, "letrec requires a binding list")
	}
	body := items[1:]
	vars, inits, err := splitBindings(x, bindings)
	if err != nil {
		return nil, err
	}
	defines := make([]ast.Node, len(vars))
	for i, v := range vars {
		defines[i] = list(lst, sym("define", 0, lst), v, boolLit(false, lst))
	}
	sets := make([]ast.Node, len(vars))
	for i, v := range vars {
		sets[i] = list(lst, sym("set!", 0, lst), v, inits[i])
	}
	lamBody := append(append(defines, sets...), body...)
	lam := append([]ast.Node{sym("lambda", 0, lst), list(lst)}, lamBody...)
	return list(lst, list(lst, lam...)), nil
}

func splitBindings(x *Expander, bindings *ast.List) ([]ast.Node, []ast.Node, error) {
	vars := make([]ast.Node, len(bindings.Items))
	inits := make([]ast.Node, len(bindings.Items))
	for i, b := range bindings.Items {
		bl, ok := b.(*ast.List)
		if !ok || len(bl.Items) != 2 {
			return nil, nil, x.malformed(b.Pos(), "binding must be (identifier expression)")
		}
		vars[i] = bl.Items[0]
		inits[i] = bl.Items[1]
	}
	return vars, inits, nil
}

func identList(vars []ast.Node) *ast.List {
	return &ast.List{Items: vars}
}

// desugarDefineRecordType expands (define-record-type name (ctor field...)
// pred (field accessor [modifier])...) into a `define-record-type!`
// primitive call carrying the field names, plus `define`s for the
// constructor, predicate, and each accessor/modifier — mirroring how
// define-record-type is specified entirely in terms of the record
// primitives (R7RS §5.5, spec §4.3/§4.11 record operations).
func (x *Expander) desugarDefineRecordType(lst *ast.List) (ast.Node, error) {
	if len(lst.Items) < 4 {
		return nil, x.malformed(lst.Span, "define-record-type requires a name, constructor, predicate, and fields")
	}
	typeName := lst.Items[1]
	ctorSpec, ok := lst.Items[2].(*ast.List)
	if !ok || len(ctorSpec.Items) == 0 {
		return nil, x.malformed(lst.Span, "define-record-type constructor spec must be (name field...)")
	}
	predName := lst.Items[3]
	fieldSpecs := lst.Items[4:]

	allFields := make([]ast.Node, len(fieldSpecs))
	for i, fs := range fieldSpecs {
		fl, ok := fs.(*ast.List)
		if !ok || len(fl.Items) < 1 {
			return nil, x.malformed(fs.Pos(), "define-record-type field spec must be (field accessor [modifier])")
		}
		allFields[i] = fl.Items[0]
	}
	quotedFields := list(lst, sym("quote", 0, lst), list(lst, allFields...))
	quotedTypeName := list(lst, sym("quote", 0, lst), typeName)
	typeDefine := list(lst, sym("define", 0, lst), typeName, list(lst, sym("%make-record-type", 0, lst), quotedTypeName, quotedFields))

	ctorFields := make([]ast.Node, len(ctorSpec.Items)-1)
	copy(ctorFields, ctorSpec.Items[1:])
	ctorDefine := list(lst, sym("define", 0, lst), ctorSpec.Items[0],
		list(lst, sym("%record-constructor", 0, lst), typeName, list(lst, sym("quote", 0, lst), list(lst, ctorFields...))))

	predDefine := list(lst, sym("define", 0, lst), predName, list(lst, sym("%record-predicate", 0, lst), typeName))

	forms := []ast.Node{typeDefine, ctorDefine, predDefine}
	for _, fs := range fieldSpecs {
		fl := fs.(*ast.List)
		fieldName := fl.Items[0]
		if len(fl.Items) >= 2 {
			accessor := fl.Items[1]
			forms = append(forms, list(lst, sym("define", 0, lst), accessor,
				list(lst, sym("%record-accessor", 0, lst), typeName, list(lst, sym("quote", 0, lst), fieldName))))
		}
		if len(fl.Items) >= 3 {
			modifier := fl.Items[2]
			forms = append(forms, list(lst, sym("define", 0, lst), modifier,
				list(lst, sym("%record-modifier", 0, lst), typeName, list(lst, sym("quote", 0, lst), fieldName))))
		}
	}
	return list(lst, append([]ast.Node{sym("begin", 0, lst)}, forms...)...), nil
}

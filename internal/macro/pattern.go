package macro

import "github.com/scmlang/scm/internal/ast"

// matchBinding is what a pattern variable captures: either a single node
// (ellipsis depth 0) or a slice of sub-bindings, one per element matched by
// an ellipsis (recursively, for nested ellipsis depth > 1).
type matchBinding struct {
	node  ast.Node
	multi []matchBinding
}

// matchEnv maps pattern-variable name to its capture.
type matchEnv map[string]matchBinding

// match attempts to unify pattern against form, recording captures into
// env. topLevel is true only for the outermost call, where pattern's own
// head position (the macro keyword itself, conventionally `_`) is ignored
// per R7RS: the keyword position never needs to match literally.
func (x *Expander) match(pattern ast.Node, form ast.Node, literals map[string]bool, env matchEnv, topLevel bool) bool {
	switch pat := pattern.(type) {
	case *ast.Symbol:
		if pat.Name == "_" {
			return true
		}
		if literals[pat.Name] {
			sym, ok := form.(*ast.Symbol)
			return ok && sym.Name == pat.Name
		}
		env[pat.Name] = matchBinding{node: form}
		return true

	case *ast.Literal:
		lit, ok := form.(*ast.Literal)
		return ok && lit.Text == pat.Text && lit.Kind == pat.Kind

	case *ast.List:
		flist, ok := form.(*ast.List)
		if !ok {
			return false
		}
		patItems := pat.Items
		if topLevel && len(patItems) > 0 {
			patItems = patItems[1:]
			if len(flist.Items) == 0 {
				return false
			}
			flist = &ast.List{Items: flist.Items[1:], DottedTail: flist.DottedTail, Span: flist.Span}
		}
		return x.matchList(patItems, pat.DottedTail, flist.Items, flist.DottedTail, literals, env)

	case *ast.VectorLit:
		fvec, ok := form.(*ast.VectorLit)
		if !ok {
			return false
		}
		return x.matchList(pat.Items, nil, fvec.Items, nil, literals, env)

	default:
		return false
	}
}

// matchList matches a (possibly dotted, possibly ellipsis-containing)
// pattern item sequence against a form item sequence.
func (x *Expander) matchList(patItems []ast.Node, patTail ast.Node, formItems []ast.Node, formTail ast.Node, literals map[string]bool, env matchEnv) bool {
	ellipsisAt := -1
	for i := 0; i+1 < len(patItems); i++ {
		if sym, ok := patItems[i+1].(*ast.Symbol); ok && sym.Name == ellipsisIdent {
			ellipsisAt = i
			break
		}
	}

	if ellipsisAt == -1 {
		if len(patItems) != len(formItems) {
			return false
		}
		for i, p := range patItems {
			if !x.match(p, formItems[i], literals, env, false) {
				return false
			}
		}
		return matchTail(patTail, formTail, literals, env, x)
	}

	before := patItems[:ellipsisAt]
	ellipPat := patItems[ellipsisAt]
	after := patItems[ellipsisAt+2:]

	if len(formItems) < len(before)+len(after) {
		return false
	}
	for i, p := range before {
		if !x.match(p, formItems[i], literals, env, false) {
			return false
		}
	}
	repeatCount := len(formItems) - len(before) - len(after)
	repeatItems := formItems[len(before) : len(before)+repeatCount]
	afterItems := formItems[len(before)+repeatCount:]

	vars := patternVars(ellipPat, literals)
	subEnvs := make([]matchEnv, repeatCount)
	for i, it := range repeatItems {
		sub := make(matchEnv)
		if !x.match(ellipPat, it, literals, sub, false) {
			return false
		}
		subEnvs[i] = sub
	}
	for _, v := range vars {
		binding := matchBinding{multi: make([]matchBinding, repeatCount)}
		for i, sub := range subEnvs {
			binding.multi[i] = sub[v]
		}
		env[v] = binding
	}

	for i, p := range after {
		if !x.match(p, afterItems[i], literals, env, false) {
			return false
		}
	}
	return matchTail(patTail, formTail, literals, env, x)
}

func matchTail(patTail, formTail ast.Node, literals map[string]bool, env matchEnv, x *Expander) bool {
	if patTail == nil {
		return formTail == nil
	}
	if formTail == nil {
		return false
	}
	return x.match(patTail, formTail, literals, env, false)
}

// patternVars collects every non-literal, non-underscore, non-ellipsis
// symbol appearing in pattern, for binding ellipsis-captured sub-matches.
func patternVars(pattern ast.Node, literals map[string]bool) []string {
	var out []string
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Symbol:
			if v.Name != "_" && v.Name != ellipsisIdent && !literals[v.Name] {
				out = append(out, v.Name)
			}
		case *ast.List:
			for _, it := range v.Items {
				walk(it)
			}
			if v.DottedTail != nil {
				walk(v.DottedTail)
			}
		case *ast.VectorLit:
			for _, it := range v.Items {
				walk(it)
			}
		}
	}
	walk(pattern)
	return out
}

// instantiate substitutes template using bindings, introducing colour for
// every identifier in the template that is not a pattern variable (spec
// §4.3 step 3: "Introduce fresh renaming for every binding occurrence in
// the template"). Every template-introduced identifier in one
// instantiation gets the same colour, so multiple occurrences of one name
// (e.g. a `let`-bound temporary used twice) remain eq? to each other; the
// renames map is passed along but never read or written.
func (x *Expander) instantiate(template ast.Node, bindings matchEnv, colour int, renames map[string]int) ast.Node {
	switch t := template.(type) {
	case *ast.Symbol:
		if b, ok := bindings[t.Name]; ok {
			if b.node != nil {
				return b.node
			}
			// A pattern variable used without its ellipsis outside of a
			// repetition context: not well-formed, but degrade gracefully
			// by returning the original symbol rather than panicking.
			return t
		}
		return &ast.Symbol{Name: t.Name, Colour: colour, Span: t.Span}

	case *ast.List:
		items := x.instantiateSeq(t.Items, bindings, colour, renames)
		var tail ast.Node
		if t.DottedTail != nil {
			tail = x.instantiate(t.DottedTail, bindings, colour, renames)
		}
		return &ast.List{Items: items, DottedTail: tail, Span: t.Span}

	case *ast.VectorLit:
		items := x.instantiateSeq(t.Items, bindings, colour, renames)
		return &ast.VectorLit{Items: items, Span: t.Span}

	default:
		return template
	}
}

// instantiateSeq expands a template item sequence, splicing ellipsis
// repetitions (including SRFI 46 nested ellipsis beyond the pattern's own
// depth, via extraEllipsis).
func (x *Expander) instantiateSeq(items []ast.Node, bindings matchEnv, colour int, renames map[string]int) []ast.Node {
	var out []ast.Node
	for i := 0; i < len(items); i++ {
		item := items[i]
		extraEllipsis := 0
		j := i + 1
		for j < len(items) {
			sym, ok := items[j].(*ast.Symbol)
			if !ok || sym.Name != ellipsisIdent {
				break
			}
			extraEllipsis++
			j++
		}
		if extraEllipsis > 0 {
			out = append(out, x.instantiateEllipsis(item, bindings, colour, renames, extraEllipsis)...)
			i = j - 1
			continue
		}
		out = append(out, x.instantiate(item, bindings, colour, renames))
	}
	return out
}

// instantiateEllipsis expands one `item ...` template repetition. depth > 1
// (SRFI 46: `item ... ...`) flattens one extra level per additional
// ellipsis token.
func (x *Expander) instantiateEllipsis(item ast.Node, bindings matchEnv, colour int, renames map[string]int, depth int) []ast.Node {
	vars := patternVars(item, nil)
	count := -1
	for _, v := range vars {
		if b, ok := bindings[v]; ok && b.multi != nil {
			if count == -1 || len(b.multi) < count {
				count = len(b.multi)
			}
		}
	}
	if count <= 0 {
		return nil
	}
	var out []ast.Node
	for i := 0; i < count; i++ {
		sub := make(matchEnv, len(bindings))
		for k, v := range bindings {
			sub[k] = v
		}
		for _, v := range vars {
			if b, ok := bindings[v]; ok && b.multi != nil && i < len(b.multi) {
				sub[v] = b.multi[i]
			}
		}
		if depth > 1 {
			out = append(out, x.instantiateEllipsis(item, sub, colour, renames, depth-1)...)
		} else {
			out = append(out, x.instantiate(item, sub, colour, renames))
		}
	}
	return out
}

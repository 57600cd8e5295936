// Package ast defines the parsed, pre-macro-expansion tree of S-expressions
// (spec §3 "AST node", component C3). Special forms are NOT distinguished
// as separate node tags here — a (quote aside) List is the generic
// S-expression shape, and special forms are recognized by head symbol
// during macro expansion and evaluation, exactly as spec §4.2 prescribes.
package ast

import (
	"fmt"
	"strings"

	"github.com/scmlang/scm/internal/token"
)

// Node is the base interface for every AST datum.
type Node interface {
	// String returns a Scheme-reader-compatible textual form, used for
	// debugging, macro-expansion error messages, and the `write` primitive
	// on quoted AST fallback paths.
	String() string
	// Pos returns the node's source span.
	Pos() token.Span
}

// Symbol is an interned identifier reference. Colour is the hygiene mark
// assigned by the macro expander (spec §4.3 "symbol-with-colour"); it is
// zero for symbols that came straight from the reader.
type Symbol struct {
	Name   string
	Colour int
	Span   token.Span
}

func (s *Symbol) Pos() token.Span { return s.Span }
func (s *Symbol) String() string  { return s.Name }

// Literal wraps a self-evaluating scalar datum: boolean, number, character,
// or string. Kind mirrors the lexer token kind that produced it so the
// evaluator need not re-sniff the textual form.
type Literal struct {
	Kind  token.Kind // Boolean, Integer, Rational, Real, Complex, Char, String
	Text  string     // original lexeme, re-parsed into a value.Value by internal/value
	Span  token.Span
}

func (l *Literal) Pos() token.Span { return l.Span }
func (l *Literal) String() string  { return l.Text }

// List is the generic S-expression: a proper or improper list of items.
// DottedTail is non-nil for `(a b . c)`.
type List struct {
	Items      []Node
	DottedTail Node
	Span       token.Span
}

func (l *List) Pos() token.Span { return l.Span }
func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, item := range l.Items {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(item.String())
	}
	if l.DottedTail != nil {
		sb.WriteString(" . ")
		sb.WriteString(l.DottedTail.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Head returns the list's first element as a *Symbol, or nil if the list
// is empty or its head is not a bare symbol. Special-form and macro-use
// recognition both dispatch on this.
func (l *List) Head() *Symbol {
	if len(l.Items) == 0 {
		return nil
	}
	sym, _ := l.Items[0].(*Symbol)
	return sym
}

// VectorLit is a literal `#(...)` vector datum.
type VectorLit struct {
	Items []Node
	Span  token.Span
}

func (v *VectorLit) Pos() token.Span { return v.Span }
func (v *VectorLit) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = item.String()
	}
	return "#(" + strings.Join(parts, " ") + ")"
}

// BytevectorLit is a literal `#u8(...)` datum; each item must be a Literal
// Integer in [0, 255] (validated by the parser).
type BytevectorLit struct {
	Bytes []byte
	Span  token.Span
}

func (b *BytevectorLit) Pos() token.Span { return b.Span }
func (b *BytevectorLit) String() string {
	parts := make([]string, len(b.Bytes))
	for i, x := range b.Bytes {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return "#u8(" + strings.Join(parts, " ") + ")"
}

// Quote, Quasiquote, Unquote, UnquoteSplicing desugar the reader-macro
// marks (spec §4.2): 'x -> (quote x), `x -> (quasiquote x), etc. They are
// kept as distinct node shapes (rather than always rewriting to a List so
// that the macro expander and the quasiquote evaluator can recognize them
// without re-testing the head symbol) but String() prints the (quote x)
// long form, which is also how `write` would render them once evaluated.
type Quote struct {
	Datum Node
	Span  token.Span
}

func (q *Quote) Pos() token.Span { return q.Span }
func (q *Quote) String() string  { return "(quote " + q.Datum.String() + ")" }

type Quasiquote struct {
	Datum Node
	Span  token.Span
}

func (q *Quasiquote) Pos() token.Span { return q.Span }
func (q *Quasiquote) String() string  { return "(quasiquote " + q.Datum.String() + ")" }

type Unquote struct {
	Datum Node
	Span  token.Span
}

func (u *Unquote) Pos() token.Span { return u.Span }
func (u *Unquote) String() string  { return "(unquote " + u.Datum.String() + ")" }

type UnquoteSplicing struct {
	Datum Node
	Span  token.Span
}

func (u *UnquoteSplicing) Pos() token.Span { return u.Span }
func (u *UnquoteSplicing) String() string  { return "(unquote-splicing " + u.Datum.String() + ")" }

// ErrorDatum is inserted by the parser's recovery mode (spec §4.2) in place
// of a datum that failed to parse, so a REPL frontend can keep going.
type ErrorDatum struct {
	Message string
	Span    token.Span
}

func (e *ErrorDatum) Pos() token.Span { return e.Span }
func (e *ErrorDatum) String() string  { return "#<parse-error:" + e.Message + ">" }

// Program is the root node: a source file is a sequence of top-level
// datums, each evaluated in order (spec §6 "Source format").
type Program struct {
	Forms []Node
}

func (p *Program) Pos() token.Span {
	if len(p.Forms) > 0 {
		return p.Forms[0].Pos()
	}
	return token.Span{}
}

func (p *Program) String() string {
	parts := make([]string, len(p.Forms))
	for i, f := range p.Forms {
		parts[i] = f.String()
	}
	return strings.Join(parts, "\n")
}

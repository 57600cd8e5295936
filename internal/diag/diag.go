// Package diag provides structured diagnostics for every stage of the
// kernel (lexer, parser, macro expander, evaluator): a closed error-kind
// taxonomy, source-context formatting with caret indicators, and a JSON
// wire form for host embedders.
package diag

import (
	"fmt"
	"strings"

	"github.com/kr/text"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/scmlang/scm/internal/token"
)

// Kind is the closed taxonomy of error kinds from the spec's diagnostics
// design (§4.14). Every kernel-originated error is tagged with exactly one
// Kind so host embedders and `guard`/`with-exception-handler` clauses can
// dispatch on it.
type Kind int

const (
	LexError Kind = iota
	ParseError
	MacroError
	UnboundSymbol
	TypeError
	ArityMismatch
	ArithmeticError
	IndexOutOfRange
	ImmutableViolation
	IterationLimit
	StackOverflow
	IOError
	ImportError
	MacroHygieneError
	UserError
)

var kindNames = [...]string{
	"LexError", "ParseError", "MacroError", "UnboundSymbol", "TypeError",
	"ArityMismatch", "ArithmeticError", "IndexOutOfRange", "ImmutableViolation",
	"IterationLimit", "StackOverflow", "IOError", "ImportError",
	"MacroHygieneError", "UserError",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Frame is one entry in a continuation-derived backtrace: the name of the
// Lambda or primitive that was active, and the call-site span.
type Frame struct {
	Name string
	Span token.Span
}

// Diagnostic is the structured error value threaded through the kernel and
// surfaced to the embedder or to Scheme-level `guard`/`raise` (spec §6, §7).
// NeedsMoreInput is set on LexError/ParseError when the error is plausibly
// the result of a REPL line being cut short (e.g. unbalanced parens at
// EOF) — a pure hint for frontends; the kernel itself never retries.
type Diagnostic struct {
	Kind           Kind
	Message        string
	PrimarySpan    token.Span
	RelatedSpans   []token.Span
	Backtrace      []Frame
	NeedsMoreInput bool
	Irritants      []string // for UserError: the `error` primitive's irritant list, pre-rendered
	Source         string   // full source text, for context rendering; empty if unavailable
}

func New(kind Kind, span token.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), PrimarySpan: span}
}

func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic with a source-context caret, mirroring the
// teacher's CompilerError.Format. When Source is empty it falls back to a
// "kind: message" line followed by an indented "at span" line.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %s\n", d.Kind, d.Message)
	if d.Source == "" {
		fmt.Fprintf(&sb, "  at %s\n", d.PrimarySpan)
	} else {
		line := sourceLine(d.Source, d.PrimarySpan.Start.Line)
		if line != "" {
			lineNumStr := fmt.Sprintf("%4d | ", d.PrimarySpan.Start.Line)
			sb.WriteString(lineNumStr)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+max(0, d.PrimarySpan.Start.Column-1)))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if len(d.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for _, f := range d.Backtrace {
			sb.WriteString(text.Indent(fmt.Sprintf("at %s (%s)\n", f.Name, f.Span), "  "))
		}
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MarshalJSON builds the spec §6 wire form
// {kind, message, primary-span, related-spans, backtrace} field-by-field
// with sjson, avoiding a struct-tag round trip through encoding/json so the
// on-the-wire field names stay kebab-case regardless of Go field names.
func (d *Diagnostic) MarshalJSON() ([]byte, error) {
	out := "{}"
	var err error
	if out, err = sjson.Set(out, "kind", d.Kind.String()); err != nil {
		return nil, err
	}
	if out, err = sjson.Set(out, "message", d.Message); err != nil {
		return nil, err
	}
	if out, err = sjson.Set(out, "primary-span", spanJSON(d.PrimarySpan)); err != nil {
		return nil, err
	}
	related := make([]map[string]any, len(d.RelatedSpans))
	for i, s := range d.RelatedSpans {
		related[i] = spanJSON(s)
	}
	if out, err = sjson.Set(out, "related-spans", related); err != nil {
		return nil, err
	}
	bt := make([]map[string]any, len(d.Backtrace))
	for i, f := range d.Backtrace {
		bt[i] = map[string]any{"name": f.Name, "span": spanJSON(f.Span)}
	}
	if out, err = sjson.Set(out, "backtrace", bt); err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func spanJSON(s token.Span) map[string]any {
	return map[string]any{
		"source": s.Source,
		"line":   s.Start.Line,
		"column": s.Start.Column,
		"offset": s.Offset,
		"length": s.Length,
	}
}

// PrettyJSON renders the diagnostic's wire form with tidwall/pretty's
// indentation, without colour. Nothing else in this module calls it.
func (d *Diagnostic) PrettyJSON() (string, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty(raw)), nil
}

// Package token defines the lexical token kinds and source-position types
// shared by the lexer, parser, and diagnostics packages.
package token

import "fmt"

// Position identifies a single point in a source file by line and column,
// both 1-based. Column counts Unicode code points, not bytes or display
// cells, so multi-byte runes (emoji, CJK, combining marks) each count as one
// column.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open byte range within one named source, plus the
// line/column of its start. Span is cheap to copy and is carried by every
// token, AST node, and diagnostic so error messages can point at exact
// source text.
type Span struct {
	Source string // logical source name, e.g. a file path or "<repl>"
	Start  Position
	Offset int // byte offset of the span's first byte
	Length int // byte length of the span
}

func (s Span) String() string {
	if s.Source == "" {
		return s.Start.String()
	}
	return fmt.Sprintf("%s:%s", s.Source, s.Start)
}

// Kind enumerates the lexical categories produced by the lexer.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	ParenOpen
	ParenClose
	BracketOpen // '[' — accepted as an alternate list delimiter, R7RS extension
	BracketClose
	VectorOpen   // '#('
	BytevectorOpen // '#u8('
	Quote          // '
	Quasiquote     // `
	Unquote        // ,
	UnquoteSplicing // ,@
	Dot            // '.' in a dotted pair

	Boolean
	Integer
	Rational
	Real
	Complex
	Char
	String
	Symbol

	DatumComment // '#;'
	Whitespace
	Comment
)

var kindNames = map[Kind]string{
	ILLEGAL:         "ILLEGAL",
	EOF:             "EOF",
	ParenOpen:       "(",
	ParenClose:      ")",
	BracketOpen:     "[",
	BracketClose:    "]",
	VectorOpen:      "#(",
	BytevectorOpen:  "#u8(",
	Quote:           "'",
	Quasiquote:      "`",
	Unquote:         ",",
	UnquoteSplicing: ",@",
	Dot:             ".",
	Boolean:         "BOOLEAN",
	Integer:         "INTEGER",
	Rational:        "RATIONAL",
	Real:            "REAL",
	Complex:         "COMPLEX",
	Char:            "CHAR",
	String:          "STRING",
	Symbol:          "SYMBOL",
	DatumComment:    "#;",
	Whitespace:      "WHITESPACE",
	Comment:         "COMMENT",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexeme together with its kind and source span.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Span)
}

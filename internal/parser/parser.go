// Package parser implements the recursive-descent reader that turns a
// lexer's token stream into the AST defined by internal/ast (spec §4.2,
// component C3).
package parser

import (
	"fmt"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/lexer"
	"github.com/scmlang/scm/internal/token"
)

// Mode selects strict R7RS reading or REPL-friendly recovery (spec §4.2:
// "offered in two modes: strict ... and recovery").
type Mode int

const (
	ModeStrict Mode = iota
	ModeRecovery
)

// ParseError is raised (strict mode) or substituted with an ast.ErrorDatum
// (recovery mode) on unbalanced parens, stray '.', an empty datum comment,
// or a malformed dotted-list placement. `unquote` is accepted anywhere.
type ParseError struct {
	Span           token.Span
	Message        string
	NeedsMoreInput bool // set when EOF was hit mid-datum — a REPL hint
}

func (e *ParseError) Error() string { return e.Message }

// Parser is a recursive-descent reader over a pre-tokenized stream.
type Parser struct {
	tokens []token.Token
	pos    int
	mode   Mode
	errors []*ParseError
}

// New tokenizes source via l and returns a Parser positioned at the first
// significant token.
func New(l *lexer.Lexer, mode Mode) *Parser {
	return &Parser{tokens: l.Tokenize(), mode: mode}
}

// NewFromTokens builds a Parser directly from an already-tokenized stream
// (used by tests and by tools that preserve comments).
func NewFromTokens(tokens []token.Token, mode Mode) *Parser {
	return &Parser{tokens: tokens, mode: mode}
}

func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.cur().Kind == token.EOF }

// ParseProgram reads every top-level datum until EOF.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.atEOF() {
		form, err := p.parseDatum()
		if err != nil {
			if p.mode == ModeStrict {
				return prog, err
			}
			continue // recovery mode: parseDatum already appended an ErrorDatum
		}
		if form != nil {
			prog.Forms = append(prog.Forms, form)
		}
	}
	return prog, nil
}

// ParseOne reads a single top-level datum; used by the `read` primitive and
// by Interpreter.EvalRepl for incremental REPL input.
func (p *Parser) ParseOne() (ast.Node, error) {
	if p.atEOF() {
		return nil, nil
	}
	return p.parseDatum()
}

func (p *Parser) fail(span token.Span, needsMore bool, format string, args ...any) error {
	err := &ParseError{Span: span, Message: fmt.Sprintf(format, args...), NeedsMoreInput: needsMore}
	p.errors = append(p.errors, err)
	return err
}

// parseDatum reads one datum. In recovery mode, a failure is swallowed and
// an ast.ErrorDatum is returned instead of a Go error. Reaching EOF here is
// itself a failure ("unexpected end of input"); callers check atEOF first.
func (p *Parser) parseDatum() (ast.Node, error) {
	n, err := p.parseDatumStrict()
	if err == nil {
		return n, nil
	}
	if p.mode == ModeStrict {
		return nil, err
	}
	pe := err.(*ParseError)
	// Consume one token so recovery mode makes forward progress.
	if !p.atEOF() {
		p.advance()
	}
	return &ast.ErrorDatum{Message: pe.Message, Span: pe.Span}, nil
}

func (p *Parser) parseDatumStrict() (ast.Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.EOF:
		return nil, p.fail(tok.Span, true, "unexpected end of input")
	case token.ParenOpen, token.BracketOpen:
		return p.parseList(tok.Kind)
	case token.VectorOpen:
		return p.parseVector()
	case token.BytevectorOpen:
		return p.parseBytevector()
	case token.Quote:
		p.advance()
		d, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		return &ast.Quote{Datum: d, Span: tok.Span}, nil
	case token.Quasiquote:
		p.advance()
		d, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		return &ast.Quasiquote{Datum: d, Span: tok.Span}, nil
	case token.Unquote:
		p.advance()
		d, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		return &ast.Unquote{Datum: d, Span: tok.Span}, nil
	case token.UnquoteSplicing:
		p.advance()
		d, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		return &ast.UnquoteSplicing{Datum: d, Span: tok.Span}, nil
	case token.DatumComment:
		p.advance()
		if p.atEOF() {
			return nil, p.fail(tok.Span, true, "datum comment #; with no following datum")
		}
		if _, err := p.parseDatum(); err != nil {
			return nil, err
		}
		return p.parseDatum() // the datum comment itself produces nothing; read the next
	case token.ParenClose, token.BracketClose:
		p.advance()
		return nil, p.fail(tok.Span, false, "unexpected %q with no matching open paren", tok.Lexeme)
	case token.Dot:
		p.advance()
		return nil, p.fail(tok.Span, false, "stray '.' outside of a list")
	case token.Symbol:
		p.advance()
		return &ast.Symbol{Name: tok.Lexeme, Span: tok.Span}, nil
	case token.Boolean, token.Integer, token.Rational, token.Real, token.Complex, token.Char, token.String:
		p.advance()
		return &ast.Literal{Kind: tok.Kind, Text: tok.Lexeme, Span: tok.Span}, nil
	default:
		p.advance()
		return nil, p.fail(tok.Span, false, "unexpected token %s", tok.Kind)
	}
}

func closingFor(open token.Kind) token.Kind {
	if open == token.BracketOpen {
		return token.BracketClose
	}
	return token.ParenClose
}

// parseList reads `(a b c)`, `(a b . c)`, and the empty list `()`. R7RS
// identifier-grammar dotted pairs are recognized by a bare `.` token
// between the last two items.
func (p *Parser) parseList(open token.Kind) (ast.Node, error) {
	start := p.advance() // consume '(' or '['
	close := closingFor(open)
	list := &ast.List{Span: start.Span}
	for {
		if p.atEOF() {
			return nil, p.fail(start.Span, true, "unterminated list starting at %s", start.Span)
		}
		if p.cur().Kind == close || p.cur().Kind == token.ParenClose || p.cur().Kind == token.BracketClose {
			p.advance()
			return list, nil
		}
		if p.cur().Kind == token.Dot {
			p.advance()
			if len(list.Items) == 0 {
				return nil, p.fail(p.cur().Span, false, "invalid dotted-list placement: nothing before '.'")
			}
			tail, err := p.parseDatum()
			if err != nil {
				return nil, err
			}
			list.DottedTail = tail
			if p.cur().Kind != close && p.cur().Kind != token.ParenClose && p.cur().Kind != token.BracketClose {
				return nil, p.fail(p.cur().Span, false, "expected closing paren after dotted tail")
			}
			p.advance()
			return list, nil
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
}

func (p *Parser) parseVector() (ast.Node, error) {
	start := p.advance() // '#('
	v := &ast.VectorLit{Span: start.Span}
	for {
		if p.atEOF() {
			return nil, p.fail(start.Span, true, "unterminated vector literal starting at %s", start.Span)
		}
		if p.cur().Kind == token.ParenClose {
			p.advance()
			return v, nil
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		v.Items = append(v.Items, item)
	}
}

func (p *Parser) parseBytevector() (ast.Node, error) {
	start := p.advance() // '#u8('
	b := &ast.BytevectorLit{Span: start.Span}
	for {
		if p.atEOF() {
			return nil, p.fail(start.Span, true, "unterminated bytevector literal starting at %s", start.Span)
		}
		if p.cur().Kind == token.ParenClose {
			p.advance()
			return b, nil
		}
		tok := p.cur()
		if tok.Kind != token.Integer {
			return nil, p.fail(tok.Span, false, "bytevector literal elements must be exact integers in [0,255]")
		}
		p.advance()
		var v int
		if _, err := fmt.Sscanf(tok.Lexeme, "%d", &v); err != nil || v < 0 || v > 255 {
			return nil, p.fail(tok.Span, false, "bytevector literal element %q out of range [0,255]", tok.Lexeme)
		}
		b.Bytes = append(b.Bytes, byte(v))
	}
}

package builtins

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/diag"
	"github.com/scmlang/scm/internal/lexer"
	"github.com/scmlang/scm/internal/parser"
	"github.com/scmlang/scm/internal/token"
	"github.com/scmlang/scm/internal/value"
)

// defaultOutput/defaultInput back `display`/`write`/`newline`/`read` when
// called with no explicit port argument — the "current output/input port"
// of spec §4.11's I/O group. A host embedder (pkg/scheme) swaps these via
// SetDefaultOutput/SetDefaultInput the same way the teacher's
// interp.New(output io.Writer) takes an injected writer rather than
// hardcoding os.Stdout.
var (
	defaultOutput io.Writer = os.Stdout
	defaultInput  io.Reader = os.Stdin
)

// SetDefaultOutput redirects display/write/newline's implicit port.
func SetDefaultOutput(w io.Writer) { defaultOutput = w }

// SetDefaultInput redirects read's implicit port.
func SetDefaultInput(r io.Reader) { defaultInput = r }

// RegisterIOFunctions registers `display write newline read` (spec §4.11).
func RegisterIOFunctions(r *Registry) {
	r.Register("display", -1, writerFn("display", func(v value.Value) string { return v.Display() }), CategoryIO)
	r.Register("write", -1, writerFn("write", func(v value.Value) string { return v.Write() }), CategoryIO)
	r.Register("newline", -1, newlineFn, CategoryIO)
	r.Register("write-simple", -1, writerFn("write-simple", func(v value.Value) string { return v.Write() }), CategoryIO)
	r.Register("write-shared", -1, writerFn("write-shared", func(v value.Value) string { return v.Write() }), CategoryIO)
	r.Register("read", -1, readFn, CategoryIO)
}

func outputFor(args []value.Value, startIdx int) (io.Writer, error) {
	if len(args) <= startIdx {
		return defaultOutput, nil
	}
	p, ok := args[startIdx].(*value.Port)
	if !ok || !p.Output {
		return nil, argError("display/write", "expected an output port, got %s", args[startIdx].TypeName())
	}
	return p.Writer, nil
}

func writerFn(who string, render func(value.Value) string) value.PrimitiveFunc {
	return func(args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return nil, argError(who, "expected at least 1 argument, got 0")
		}
		w, err := outputFor(args, 1)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, render(args[0])); err != nil {
			return nil, ioError(who, err)
		}
		return value.TheUnspecified, nil
	}
}

func newlineFn(args []value.Value) (value.Value, error) {
	w, err := outputFor(args, 0)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return nil, ioError("newline", err)
	}
	return value.TheUnspecified, nil
}

func readFn(args []value.Value) (value.Value, error) {
	var r io.Reader = defaultInput
	if len(args) > 0 {
		p, ok := args[0].(*value.Port)
		if !ok || !p.Input {
			return nil, argError("read", "expected an input port, got %s", args[0].TypeName())
		}
		if p.Reader != nil {
			r = p.Reader
		}
	}
	src, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, ioError("read", err)
	}
	text := strings.TrimSpace(string(src))
	if text == "" {
		return value.Eof, nil
	}
	l := lexer.New("<read>", text)
	toks := l.Tokenize()
	if errs := l.Errors(); len(errs) > 0 {
		return nil, ioError("read", errs[0])
	}
	pr := parser.NewFromTokens(toks, parser.ModeStrict)
	datum, perr := pr.ParseOne()
	if perr != nil {
		return nil, ioError("read", perr)
	}
	return datumToValue(datum), nil
}

func ioError(who string, err error) error {
	return diag.New(diag.IOError, token.Span{}, "%s: %s", who, err.Error())
}

// datumToValue mirrors internal/interp's unexported quoteValue: both
// convert a reader-produced ast.Node into the runtime Value it denotes
// without evaluating it, kept as a second copy here (as the interpreter
// keeps its own copy of the lexer's character-name table) so this package
// doesn't need to import internal/interp.
func datumToValue(n ast.Node) value.Value {
	switch d := n.(type) {
	case *ast.Symbol:
		return value.Symbol{Name: d.Name, Colour: d.Colour}
	case *ast.Literal:
		switch d.Kind {
		case token.Boolean:
			return value.Boolean(d.Text == "#t" || d.Text == "#true")
		case token.Char:
			return charFromLexeme(d.Text)
		case token.String:
			return value.NewString(d.Text)
		default:
			num, err := value.ParseNumber(d.Text)
			if err != nil {
				return value.TheUnspecified
			}
			return num
		}
	case *ast.List:
		items := make([]value.Value, len(d.Items))
		for i, it := range d.Items {
			items[i] = datumToValue(it)
		}
		var tail value.Value = value.Nil
		if d.DottedTail != nil {
			tail = datumToValue(d.DottedTail)
		}
		return value.SliceToList(items, tail)
	case *ast.VectorLit:
		items := make([]value.Value, len(d.Items))
		for i, it := range d.Items {
			items[i] = datumToValue(it)
		}
		return value.NewVector(items)
	case *ast.BytevectorLit:
		return &value.Bytevector{Bytes: append([]byte(nil), d.Bytes...)}
	case *ast.Quote:
		return value.SliceToList([]value.Value{value.Intern("quote"), datumToValue(d.Datum)}, value.Nil)
	default:
		return value.TheUnspecified
	}
}

func charFromLexeme(lexeme string) value.Character {
	runes := []rune(lexeme)
	if len(runes) == 1 {
		return value.Character(runes[0])
	}
	switch strings.ToLower(lexeme) {
	case "space":
		return ' '
	case "newline":
		return '\n'
	case "tab":
		return '\t'
	case "return":
		return '\r'
	case "null", "nul":
		return 0
	case "alarm":
		return 7
	case "backspace":
		return 8
	case "delete", "rubout":
		return 127
	case "escape", "altmode":
		return 27
	case "linefeed":
		return '\n'
	case "page-separator":
		return '\f'
	}
	if len(lexeme) > 1 && (lexeme[0] == 'x' || lexeme[0] == 'X') {
		if n, err := strconv.ParseInt(lexeme[1:], 16, 32); err == nil {
			return value.Character(rune(n))
		}
	}
	return value.Character(runes[0])
}

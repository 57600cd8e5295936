package scheme

import (
	"fmt"

	"github.com/scmlang/scm/internal/ast"
	"github.com/scmlang/scm/internal/builtins"
	"github.com/scmlang/scm/internal/env"
	"github.com/scmlang/scm/internal/interp"
	"github.com/scmlang/scm/internal/lexer"
	"github.com/scmlang/scm/internal/macro"
	"github.com/scmlang/scm/internal/parser"
	"github.com/scmlang/scm/internal/store"
	"github.com/scmlang/scm/internal/value"

	_ "github.com/scmlang/scm/internal/srfi" // registers interp.ImportHook
)

// Interpreter is the embedding facade of spec §6: construct one with New,
// feed it source text or pre-built ASTs, pull bindings in and out, and read
// its store statistics back out. It owns one internal/interp.Interpreter,
// one internal/store.Store, and one internal/macro.Expander shared across
// every Eval call so top-level define-syntax forms accumulate the way a
// REPL session expects.
type Interpreter struct {
	core     *interp.Interpreter
	expander *macro.Expander
	cfg      Config
}

// New constructs an Interpreter per cfg (spec §6 "Interpreter::new(config)").
func New(cfg Config) (*Interpreter, error) {
	if cfg.Stdout == nil || cfg.Stderr == nil {
		def := DefaultConfig()
		if cfg.Stdout == nil {
			cfg.Stdout = def.Stdout
		}
		if cfg.Stderr == nil {
			cfg.Stderr = def.Stderr
		}
	}

	s := store.New(cfg.MemoryStrategy.toStore(), cfg.InitialMemoryLimit)
	core := interp.New(s)
	core.MaxIterations = int(cfg.IterationCap)

	builtins.InstallDefault(core.Global)
	builtins.InstallMemoryPrimitives(core.Global, s)
	builtins.SetDefaultOutput(cfg.Stdout)

	exp := macro.New()
	if cfg.MacroRecursionCap > 0 {
		exp.SetRecursionCap(cfg.MacroRecursionCap)
	}

	return &Interpreter{core: core, expander: exp, cfg: cfg}, nil
}

// Eval lexes, parses, macro-expands and evaluates every top-level form in
// sourceText in order, returning the value of the last one (spec §6
// "Interpreter::eval(source-text, source-id) -> Result<Value, Diagnostic>").
// sourceID names the source for diagnostics (a file path, "<repl>", ...).
func (in *Interpreter) Eval(sourceText, sourceID string) (value.Value, error) {
	l := lexer.New(sourceID, sourceText)
	p := parser.New(l, parser.ModeStrict)
	program, err := p.ParseProgram()
	if err != nil {
		return nil, err
	}

	var result value.Value = value.TheUnspecified
	for _, form := range program.Forms {
		expanded, err := in.expander.Expand(form, 0)
		if err != nil {
			return nil, err
		}
		result, err = in.core.Eval(expanded, in.core.Global)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// EvalRepl evaluates one line of REPL input using the parser's recovery
// mode (parser.ModeRecovery): a malformed datum becomes an ast.ErrorDatum
// the parser can skip past and keep reading, rather than aborting the
// whole line the way Eval's ModeStrict parse would. Every complete datum
// on the line is expanded and evaluated in order; EvalRepl returns the
// last one's value, or the first ErrorDatum's message as an error.
func (in *Interpreter) EvalRepl(line, sourceID string) (value.Value, error) {
	l := lexer.New(sourceID, line)
	p := parser.New(l, parser.ModeRecovery)

	var result value.Value = value.TheUnspecified
	for {
		form, err := p.ParseOne()
		if err != nil {
			return nil, err
		}
		if form == nil {
			break
		}
		if errDatum, ok := form.(*ast.ErrorDatum); ok {
			return nil, fmt.Errorf("scheme: %s", errDatum.Message)
		}
		expanded, err := in.expander.Expand(form, 0)
		if err != nil {
			return nil, err
		}
		result, err = in.core.Eval(expanded, in.core.Global)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// EvalAST evaluates a single already-parsed, already-expanded node (spec §6
// "Interpreter::eval_ast(ast) -> Result<Value, Diagnostic>") — the entry
// point for host code that builds or caches its own AST instead of
// re-lexing source text on every call.
func (in *Interpreter) EvalAST(node ast.Node) (value.Value, error) {
	expanded, err := in.expander.Expand(node, 0)
	if err != nil {
		return nil, err
	}
	return in.core.Eval(expanded, in.core.Global)
}

// Define binds name to v in the global environment (spec §6
// "Interpreter::define(name, value) -> ()"), the facade's side of host->
// guest value passing.
func (in *Interpreter) Define(name string, v value.Value) {
	in.core.Global.Define(name, v)
}

// Call looks up name in the global environment and applies it to args
// (spec §6 "Interpreter::call(name, args) -> Result<Value, Diagnostic>"),
// the facade's side of guest->host invocation from Go code.
func (in *Interpreter) Call(name string, args []value.Value) (value.Value, error) {
	proc, ok := in.core.Global.Get(name)
	if !ok {
		return nil, fmt.Errorf("scheme: call: %q is not bound", name)
	}
	return in.core.Apply(proc, args)
}

// RegisterPrimitive exposes a Go function to guest code under name (spec §6
// "Interpreter::register_primitive(name, arity, handler) -> ()"). arity
// follows value.NewPrimitive's convention: -1 means variadic.
func (in *Interpreter) RegisterPrimitive(name string, arity int, handler value.PrimitiveFunc) {
	in.core.Global.Define(name, value.NewPrimitive(name, arity, handler))
}

// Statistics reports the backing store's allocation/GC counters (spec §6
// "Interpreter::statistics() -> Stats"). Continuation-pool-hit and
// JIT-promotion counts are not meaningful for this tree-walking kernel (it
// has neither a continuation pool beyond internal/cont.Pool's bookkeeping
// reuse nor a JIT), so Stats reports only what the store actually tracks.
func (in *Interpreter) Statistics() store.Stats {
	return in.core.Store.Stats()
}

// Global exposes the underlying environment for callers that need direct
// env.Environment access (e.g. cmd/scm's REPL, which defines result history
// variables between lines).
func (in *Interpreter) Global() *env.Environment {
	return in.core.Global
}

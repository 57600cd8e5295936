// Package scheme is the host-embedding facade (spec §6): the single entry
// point an embedding Go program uses to construct an interpreter, evaluate
// source or pre-parsed ASTs, exchange bindings with the guest, and read back
// execution statistics. It wraps internal/interp's trampoline the way the
// teacher's pkg/dwscript wraps its own evaluator behind RegisterFunction/
// SetOutput/Eval.
package scheme

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/scmlang/scm/internal/store"
)

// MemoryStrategy names spec §6's "memory-strategy" config enum. It exists
// as its own string type (rather than exposing store.Strategy directly) so
// YAML config files can spell it the way spec §6 enumerates it.
type MemoryStrategy string

const (
	RefcountGC MemoryStrategy = "RefcountGC"
	RaiiStore  MemoryStrategy = "RaiiStore"
)

func (m MemoryStrategy) toStore() store.Strategy {
	if m == RaiiStore {
		return store.RaiiStore
	}
	return store.RefcountGC
}

// Config collects every construction-time option spec §6 enumerates:
// memory-strategy, initial-memory-limit, iteration-cap, macro-recursion-cap,
// plus the I/O ports a host redirects current-output-port/current-error-port
// to (the teacher's SetOutput equivalent).
type Config struct {
	MemoryStrategy    MemoryStrategy `yaml:"memory-strategy"`
	InitialMemoryLimit int64         `yaml:"initial-memory-limit"`
	IterationCap      int64          `yaml:"iteration-cap"`
	MacroRecursionCap int           `yaml:"macro-recursion-cap"`

	Stdout io.Writer `yaml:"-"`
	Stderr io.Writer `yaml:"-"`
}

// DefaultConfig returns the zero-overhead baseline: refcount GC with no
// preset allocation ceiling, unlimited iterations and the default macro
// recursion cap, stdout/stderr wired to the process's own streams.
func DefaultConfig() Config {
	return Config{
		MemoryStrategy: RefcountGC,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	}
}

// LoadConfig parses a YAML document in the shape spec §6 describes
// ("Configuration options (enumerated)") via goccy/go-yaml, layering it
// over DefaultConfig so a config file only needs to mention the fields it
// overrides.
func LoadConfig(doc []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return Config{}, fmt.Errorf("scheme: parsing config: %w", err)
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return cfg, nil
}

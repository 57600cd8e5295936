package scheme

import "testing"

func TestLoadConfigOverridesDefaults(t *testing.T) {
	doc := []byte(`
memory-strategy: RaiiStore
initial-memory-limit: 4096
iteration-cap: 100000
macro-recursion-cap: 64
`)
	cfg, err := LoadConfig(doc)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MemoryStrategy != RaiiStore {
		t.Errorf("MemoryStrategy = %s, want RaiiStore", cfg.MemoryStrategy)
	}
	if cfg.InitialMemoryLimit != 4096 {
		t.Errorf("InitialMemoryLimit = %d, want 4096", cfg.InitialMemoryLimit)
	}
	if cfg.IterationCap != 100000 {
		t.Errorf("IterationCap = %d, want 100000", cfg.IterationCap)
	}
	if cfg.MacroRecursionCap != 64 {
		t.Errorf("MacroRecursionCap = %d, want 64", cfg.MacroRecursionCap)
	}
	if cfg.Stdout == nil || cfg.Stderr == nil {
		t.Error("LoadConfig left Stdout/Stderr nil")
	}
}

func TestLoadConfigEmptyDocumentKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(``))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MemoryStrategy != RefcountGC {
		t.Errorf("MemoryStrategy = %s, want default RefcountGC", cfg.MemoryStrategy)
	}
}

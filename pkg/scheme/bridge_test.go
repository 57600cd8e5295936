package scheme

import (
	"bytes"
	"strings"
	"testing"
)

func TestDefineJSONObjectBecomesHashTable(t *testing.T) {
	var buf bytes.Buffer
	in := newTestInterpreter(t, &buf)

	if err := in.DefineJSON("config", `{"retries": 3, "name": "worker", "tags": ["a", "b"]}`); err != nil {
		t.Fatalf("DefineJSON: %v", err)
	}
	if _, err := in.Eval(`(import (srfi 69))`, "bridge"); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	got, err := in.Eval(`(hash-table-ref config "retries")`, "bridge")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Write() != "3" {
		t.Errorf("retries = %s, want 3", got.Write())
	}

	got, err = in.Eval(`(vector-ref (hash-table-ref config "tags") 1)`, "bridge")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got.Write() != `"b"` {
		t.Errorf("tags[1] = %s, want \"b\"", got.Write())
	}
}

func TestDefineJSONInvalidDocument(t *testing.T) {
	var buf bytes.Buffer
	in := newTestInterpreter(t, &buf)
	if err := in.DefineJSON("bad", `{not json`); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestDebugRendersStruct(t *testing.T) {
	out := Debug(struct{ A, B int }{A: 1, B: 2})
	if !strings.Contains(out, "A:") || !strings.Contains(out, "1") {
		t.Errorf("Debug output missing expected fields: %q", out)
	}
}

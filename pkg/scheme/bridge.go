package scheme

import (
	"fmt"
	"math"

	"github.com/kr/pretty"
	"github.com/tidwall/gjson"

	"github.com/scmlang/scm/internal/value"
)

// DefineJSON decodes a JSON document (via gjson, from the same tidwall
// family as the sjson internal/diag uses on the output side) into Scheme
// data and binds it to
// name — the host-bridge half of spec §6's "external data" story: a guest
// program can `(define config ...)` over host-supplied JSON without the
// kernel itself knowing anything about JSON. Objects become hash-tables,
// arrays become vectors, and scalars map onto the obvious Scheme datum.
func (in *Interpreter) DefineJSON(name, jsonDoc string) error {
	if !gjson.Valid(jsonDoc) {
		return fmt.Errorf("scheme: DefineJSON(%q): invalid JSON document", name)
	}
	v := jsonToValue(gjson.Parse(jsonDoc))
	in.Define(name, v)
	return nil
}

func jsonToValue(r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Nil
	case gjson.False:
		return value.Boolean(false)
	case gjson.True:
		return value.Boolean(true)
	case gjson.Number:
		if f := r.Float(); f == math.Trunc(f) {
			return value.Int(int64(f))
		}
		return value.Real(r.Float())
	case gjson.String:
		return value.NewString(r.String())
	case gjson.JSON:
		if r.IsArray() {
			var items []value.Value
			r.ForEach(func(_, elem gjson.Result) bool {
				items = append(items, jsonToValue(elem))
				return true
			})
			return value.NewVector(items)
		}
		ht := value.NewHashTable()
		r.ForEach(func(key, elem gjson.Result) bool {
			ht.Set(value.NewString(key.String()), jsonToValue(elem))
			return true
		})
		return ht
	default:
		return value.TheUnspecified
	}
}

// Debug renders v (or, typically, a *diag.Diagnostic returned from Eval) as
// a deeply-expanded Go struct dump via kr/pretty, for embedder logging when
// a guest error's one-line Error() text isn't enough to diagnose — the
// facade's equivalent of internal/diag's own kr/text-based source-context
// formatting, but for the host's Go-side log rather than a terminal.
func Debug(v any) string {
	return pretty.Sprint(v)
}

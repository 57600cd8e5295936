package builtins

import "github.com/scmlang/scm/internal/value"

// RegisterRecordFunctions registers the five primitives the macro
// expander's `define-record-type` desugaring bottoms out into (R7RS §5.5,
// spec §4.3/§4.11): `%make-record-type`, `%record-constructor`,
// `%record-predicate`, `%record-accessor`, `%record-modifier`. A Scheme
// program never calls these directly — they're the runtime support
// internal/macro/derived.go's desugarDefineRecordType expands into.
func RegisterRecordFunctions(r *Registry) {
	r.Register("%make-record-type", 2, makeRecordTypeFn, CategoryControl)
	r.Register("%record-constructor", 2, recordConstructorFn, CategoryControl)
	r.Register("%record-predicate", 1, recordPredicateFn, CategoryControl)
	r.Register("%record-accessor", 2, recordAccessorFn, CategoryControl)
	r.Register("%record-modifier", 2, recordModifierFn, CategoryControl)
}

func asRecordType(who string, v value.Value) (*value.RecordType, error) {
	t, ok := v.(*value.RecordType)
	if !ok {
		return nil, typeError(who, "a record type", v)
	}
	return t, nil
}

func asRecord(who string, v value.Value) (*value.Record, error) {
	rec, ok := v.(*value.Record)
	if !ok {
		return nil, typeError(who, "a record", v)
	}
	return rec, nil
}

func fieldNames(who string, v value.Value) ([]string, error) {
	items, ok := value.ListToSlice(v)
	if !ok {
		return nil, wantList(who, v)
	}
	names := make([]string, len(items))
	for i, item := range items {
		sym, ok := item.(value.Symbol)
		if !ok {
			return nil, typeError(who, "a field name", item)
		}
		names[i] = sym.Name
	}
	return names, nil
}

func makeRecordTypeFn(args []value.Value) (value.Value, error) {
	nameSym, ok := args[0].(value.Symbol)
	if !ok {
		return nil, typeError("%make-record-type", "a type name", args[0])
	}
	fields, err := fieldNames("%make-record-type", args[1])
	if err != nil {
		return nil, err
	}
	return &value.RecordType{Name: nameSym.Name, Fields: fields}, nil
}

func recordConstructorFn(args []value.Value) (value.Value, error) {
	t, err := asRecordType("%record-constructor", args[0])
	if err != nil {
		return nil, err
	}
	ctorFields, err := fieldNames("%record-constructor", args[1])
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(ctorFields))
	for i, f := range ctorFields {
		idx := t.FieldIndex(f)
		if idx < 0 {
			return nil, argError("%record-constructor", "unknown field %q for record type %s", f, t.Name)
		}
		positions[i] = idx
	}
	name := t.Name
	return value.NewPrimitive(name, len(ctorFields), func(callArgs []value.Value) (value.Value, error) {
		fields := make([]value.Value, len(t.Fields))
		for i := range fields {
			fields[i] = value.TheUnspecified
		}
		for i, pos := range positions {
			fields[pos] = callArgs[i]
		}
		return &value.Record{Type: t, Fields: fields}, nil
	}), nil
}

func recordPredicateFn(args []value.Value) (value.Value, error) {
	t, err := asRecordType("%record-predicate", args[0])
	if err != nil {
		return nil, err
	}
	return value.NewPrimitive(t.Name+"?", 1, func(callArgs []value.Value) (value.Value, error) {
		rec, ok := callArgs[0].(*value.Record)
		return value.Boolean(ok && rec.Type == t), nil
	}), nil
}

func recordAccessorFn(args []value.Value) (value.Value, error) {
	t, err := asRecordType("%record-accessor", args[0])
	if err != nil {
		return nil, err
	}
	fieldSym, ok := args[1].(value.Symbol)
	if !ok {
		return nil, typeError("%record-accessor", "a field name", args[1])
	}
	idx := t.FieldIndex(fieldSym.Name)
	if idx < 0 {
		return nil, argError("%record-accessor", "unknown field %q for record type %s", fieldSym.Name, t.Name)
	}
	return value.NewPrimitive(t.Name+"-"+fieldSym.Name, 1, func(callArgs []value.Value) (value.Value, error) {
		rec, err := asRecord(t.Name+"-"+fieldSym.Name, callArgs[0])
		if err != nil {
			return nil, err
		}
		if rec.Type != t {
			return nil, typeError(t.Name+"-"+fieldSym.Name, "a "+t.Name, callArgs[0])
		}
		return rec.Fields[idx], nil
	}), nil
}

func recordModifierFn(args []value.Value) (value.Value, error) {
	t, err := asRecordType("%record-modifier", args[0])
	if err != nil {
		return nil, err
	}
	fieldSym, ok := args[1].(value.Symbol)
	if !ok {
		return nil, typeError("%record-modifier", "a field name", args[1])
	}
	idx := t.FieldIndex(fieldSym.Name)
	if idx < 0 {
		return nil, argError("%record-modifier", "unknown field %q for record type %s", fieldSym.Name, t.Name)
	}
	name := "set-" + t.Name + "-" + fieldSym.Name + "!"
	return value.NewPrimitive(name, 2, func(callArgs []value.Value) (value.Value, error) {
		rec, err := asRecord(name, callArgs[0])
		if err != nil {
			return nil, err
		}
		if rec.Type != t {
			return nil, typeError(name, "a "+t.Name, callArgs[0])
		}
		rec.Fields[idx] = callArgs[1]
		return value.TheUnspecified, nil
	}), nil
}

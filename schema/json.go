package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// nameTable resolves bare-string schema references against the named
// schemas parsed so far: forward references are not
// allowed, so a name only resolves once its definition has been seen.
type nameTable struct {
	byFullName map[string]Schema
	warnings   []error
}

func newNameTable() *nameTable {
	return &nameTable{byFullName: map[string]Schema{}}
}

func (nt *nameTable) register(s Schema) {
	if n, ok := namedOf(s); ok {
		nt.byFullName[n.Full()] = s
	}
}

func (nt *nameTable) resolve(name string) (Schema, error) {
	if s := primitiveByName(name); s != nil {
		return s, nil
	}
	if s, ok := nt.byFullName[name]; ok {
		return s, nil
	}
	return nil, &UnknownNameError{Name: name}
}

// ParseWithWarnings parses the canonical Avro JSON schema form, returning
// any reader-resilience warnings (invalid logical-type decorators) alongside
// the otherwise-valid schema.
func ParseWithWarnings(data []byte) (Schema, []error, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("schema: invalid json: %w", err)
	}
	nt := newNameTable()
	s, err := nt.parseAny(raw)
	if err != nil {
		return nil, nil, err
	}
	return s, nt.warnings, nil
}

// Parse parses the canonical Avro JSON schema form. Reader-resilience
// warnings (see ParseWithWarnings) are discarded.
func Parse(data []byte) (Schema, error) {
	s, _, err := ParseWithWarnings(data)
	return s, err
}

func (nt *nameTable) parseAny(raw interface{}) (Schema, error) {
	switch v := raw.(type) {
	case string:
		return nt.resolve(v)
	case []interface{}:
		return nt.parseUnion(v)
	case map[string]interface{}:
		return nt.parseObject(v)
	default:
		return nil, fmt.Errorf("schema: unexpected json value of type %T for a schema", raw)
	}
}

func (nt *nameTable) parseUnion(members []interface{}) (Schema, error) {
	u := NewUnion()
	for i, m := range members {
		s, err := nt.parseAny(m)
		if err != nil {
			return nil, fmt.Errorf("schema: union member %d: %w", i, err)
		}
		if err := u.AddMember(s); err != nil {
			return nil, fmt.Errorf("schema: union member %d: %w", i, err)
		}
	}
	return u, nil
}

func (nt *nameTable) parseObject(obj map[string]interface{}) (Schema, error) {
	typeRaw, ok := obj["type"]
	if !ok {
		return nil, &InvalidSchemaError{Reason: "object schema is missing \"type\""}
	}

	var base Schema
	var err error

	typeName, isString := typeRaw.(string)
	switch {
	case isString && typeName == "array":
		items, ierr := nt.parseAny(obj["items"])
		if ierr != nil {
			return nil, fmt.Errorf("schema: array items: %w", ierr)
		}
		base = NewArray(items)
	case isString && typeName == "map":
		values, ierr := nt.parseAny(obj["values"])
		if ierr != nil {
			return nil, fmt.Errorf("schema: map values: %w", ierr)
		}
		base = NewMap(values)
	case isString && typeName == "fixed":
		base, err = nt.parseFixed(obj)
	case isString && typeName == "enum":
		base, err = nt.parseEnum(obj)
	case isString && typeName == "record", isString && typeName == "error":
		base, err = nt.parseRecord(obj)
	case isString:
		// A bare primitive name, or a previously defined named type
		// referenced through the object wrapper form (used to attach a
		// logicalType to an otherwise plain reference).
		base, err = nt.resolve(typeName)
	default:
		// Nested schema, e.g. {"type": {"type": "long", ...}, "logicalType": ...}
		base, err = nt.parseAny(typeRaw)
	}
	if err != nil {
		return nil, err
	}

	if lt, lerr := logicalFromObject(obj); lerr != nil {
		nt.warnings = append(nt.warnings, lerr)
	} else if lt != nil {
		if serr := base.SetLogical(lt); serr != nil {
			nt.warnings = append(nt.warnings, serr)
		}
	}
	return base, nil
}

func (nt *nameTable) parseFixed(obj map[string]interface{}) (Schema, error) {
	name, err := nameFromObject(obj)
	if err != nil {
		return nil, err
	}
	size, ok := intFromObj(obj, "size")
	if !ok {
		return nil, &InvalidSchemaError{Reason: "fixed " + name.Full() + " is missing \"size\""}
	}
	f, err := NewFixed(name, size)
	if err != nil {
		return nil, err
	}
	if err := applyAliases(f, obj); err != nil {
		return nil, err
	}
	nt.register(f)
	return f, nil
}

func (nt *nameTable) parseEnum(obj map[string]interface{}) (Schema, error) {
	name, err := nameFromObject(obj)
	if err != nil {
		return nil, err
	}
	e := NewEnum(name)
	// The enum is registered only after its symbols, default and aliases
	// are read: an enum cannot refer to itself, so its name only needs to
	// be visible to siblings parsed afterwards.
	symbolsRaw, _ := obj["symbols"].([]interface{})
	for _, sym := range symbolsRaw {
		symStr, ok := sym.(string)
		if !ok {
			return nil, &InvalidSchemaError{Reason: "enum symbol is not a string"}
		}
		if err := e.AddSymbol(symStr); err != nil {
			return nil, err
		}
	}
	if doc, ok := obj["doc"].(string); ok {
		e.SetDocumentation(doc)
	}
	if def, ok := obj["default"].(string); ok {
		if err := e.SetDefault(def); err != nil {
			return nil, err
		}
	}
	if err := applyAliases(e, obj); err != nil {
		return nil, err
	}
	nt.register(e)
	return e, nil
}

func (nt *nameTable) parseRecord(obj map[string]interface{}) (Schema, error) {
	name, err := nameFromObject(obj)
	if err != nil {
		return nil, err
	}
	r := NewRecord(name)
	// Register before parsing fields: a field's type may refer back to this
	// record's own name (a self-referential / cyclic record). The record
	// itself is already a stable, mutable node, so registering it before its
	// fields are filled in serves as the placeholder for that cycle.
	nt.register(r)
	if doc, ok := obj["doc"].(string); ok {
		r.SetDocumentation(doc)
	}
	if err := applyAliases(r, obj); err != nil {
		return nil, err
	}

	fieldsRaw, _ := obj["fields"].([]interface{})
	for _, fr := range fieldsRaw {
		fobj, ok := fr.(map[string]interface{})
		if !ok {
			return nil, &InvalidSchemaError{Reason: "record field is not an object"}
		}
		fname, _ := fobj["name"].(string)
		ftypeRaw, ok := fobj["type"]
		if !ok {
			return nil, &InvalidSchemaError{Reason: "field " + fname + " is missing \"type\""}
		}
		ftype, ferr := nt.parseAny(ftypeRaw)
		if ferr != nil {
			return nil, fmt.Errorf("schema: field %s: %w", fname, ferr)
		}
		field := &Field{Name: fname, Type: ftype}
		if doc, ok := fobj["doc"].(string); ok {
			field.Documentation = doc
		}
		if def, ok := fobj["default"]; ok {
			field.Default = NewDefault(def)
		}
		if err := r.AddField(field); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func applyAliases(s Schema, obj map[string]interface{}) error {
	aliasesRaw, ok := obj["aliases"].([]interface{})
	if !ok {
		return nil
	}
	type aliaser interface{ AddAlias(string) error }
	a, ok := s.(aliaser)
	if !ok {
		return nil
	}
	for _, ar := range aliasesRaw {
		alias, ok := ar.(string)
		if !ok {
			return &InvalidSchemaError{Reason: "alias is not a string"}
		}
		if err := a.AddAlias(alias); err != nil {
			return err
		}
	}
	return nil
}

func nameFromObject(obj map[string]interface{}) (Name, error) {
	simple, _ := obj["name"].(string)
	namespace, _ := obj["namespace"].(string)
	return NewName(simple, namespace)
}

func intFromObj(obj map[string]interface{}, key string) (int, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func logicalFromObject(obj map[string]interface{}) (*LogicalType, error) {
	ltName, ok := obj["logicalType"].(string)
	if !ok {
		return nil, nil
	}
	switch ltName {
	case "decimal":
		precision, hasPrecision := intFromObj(obj, "precision")
		if !hasPrecision {
			return nil, fmt.Errorf("schema: decimal logical type is missing \"precision\"")
		}
		scale, _ := intFromObj(obj, "scale")
		return NewDecimalLogicalType(precision, scale)
	case "uuid":
		return NewSimpleLogicalType(LogicalUUID), nil
	case "date":
		return NewSimpleLogicalType(LogicalDate), nil
	case "time-millis":
		return NewSimpleLogicalType(LogicalTimeMillis), nil
	case "time-micros":
		return NewSimpleLogicalType(LogicalTimeMicros), nil
	case "timestamp-millis":
		return NewSimpleLogicalType(LogicalTimestampMillis), nil
	case "timestamp-micros":
		return NewSimpleLogicalType(LogicalTimestampMicros), nil
	case "duration":
		return NewSimpleLogicalType(LogicalDuration), nil
	default:
		return nil, fmt.Errorf("schema: unrecognised logical type %q", ltName)
	}
}

//------------------------------------------------------------------------------
// writer

// Write emits the canonical, shortest-legal JSON form of s: a bare string
// for a primitive or a back-reference to an already-emitted named schema,
// otherwise an object or array with attributes in a fixed, deterministic
// key order and insertion-ordered collections.
func Write(s Schema) ([]byte, error) {
	w := &jsonWriter{emitted: map[string]bool{}}
	var buf bytes.Buffer
	if err := w.write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jsonWriter struct {
	emitted map[string]bool
}

func (w *jsonWriter) write(buf *bytes.Buffer, s Schema) error {
	switch v := s.(type) {
	case *primitiveSchema:
		return w.writePrimitive(buf, v)
	case *arraySchema:
		return w.writeArray(buf, v)
	case *mapSchema:
		return w.writeMap(buf, v)
	case *unionSchema:
		return w.writeUnion(buf, v)
	case *fixedSchema:
		return w.writeFixed(buf, v)
	case *enumSchema:
		return w.writeEnum(buf, v)
	case *recordSchema:
		return w.writeRecord(buf, v)
	default:
		return fmt.Errorf("schema: unknown schema implementation %T", s)
	}
}

func (w *jsonWriter) writePrimitive(buf *bytes.Buffer, p *primitiveSchema) error {
	if p.logical == nil {
		return writeJSONString(buf, p.kind.String())
	}
	buf.WriteByte('{')
	writeKV(buf, "type", true)
	writeJSONString(buf, p.kind.String())
	if err := writeLogical(buf, p.logical); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) writeArray(buf *bytes.Buffer, a *arraySchema) error {
	buf.WriteByte('{')
	writeKV(buf, "type", true)
	writeJSONString(buf, "array")
	writeKV(buf, "items", false)
	if err := w.write(buf, a.item); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) writeMap(buf *bytes.Buffer, m *mapSchema) error {
	buf.WriteByte('{')
	writeKV(buf, "type", true)
	writeJSONString(buf, "map")
	writeKV(buf, "values", false)
	if err := w.write(buf, m.value); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) writeUnion(buf *bytes.Buffer, u *unionSchema) error {
	buf.WriteByte('[')
	for i, m := range u.Members() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := w.write(buf, m); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func (w *jsonWriter) writeFixed(buf *bytes.Buffer, f *fixedSchema) error {
	full := f.name.Full()
	if w.emitted[full] {
		return writeJSONString(buf, full)
	}
	w.emitted[full] = true

	buf.WriteByte('{')
	writeKV(buf, "type", true)
	writeJSONString(buf, "fixed")
	writeNamedAttrs(buf, f.name, f.Aliases())
	writeKV(buf, "size", false)
	fmt.Fprintf(buf, "%d", f.size)
	if err := writeLogical(buf, f.logical); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) writeEnum(buf *bytes.Buffer, e *enumSchema) error {
	full := e.name.Full()
	if w.emitted[full] {
		return writeJSONString(buf, full)
	}
	w.emitted[full] = true

	buf.WriteByte('{')
	writeKV(buf, "type", true)
	writeJSONString(buf, "enum")
	writeNamedAttrs(buf, e.name, e.Aliases())
	if e.documentation != "" {
		writeKV(buf, "doc", false)
		writeJSONString(buf, e.documentation)
	}
	writeKV(buf, "symbols", false)
	buf.WriteByte('[')
	for i, sym := range e.Symbols() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(buf, sym)
	}
	buf.WriteByte(']')
	if e.def.Set {
		writeKV(buf, "default", false)
		writeJSONString(buf, e.def.Value.(string))
	}
	buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) writeRecord(buf *bytes.Buffer, r *recordSchema) error {
	full := r.name.Full()
	if w.emitted[full] {
		return writeJSONString(buf, full)
	}
	w.emitted[full] = true

	buf.WriteByte('{')
	writeKV(buf, "type", true)
	writeJSONString(buf, "record")
	writeNamedAttrs(buf, r.name, r.Aliases())
	if r.documentation != "" {
		writeKV(buf, "doc", false)
		writeJSONString(buf, r.documentation)
	}
	writeKV(buf, "fields", false)
	buf.WriteByte('[')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := w.writeField(buf, f); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	buf.WriteByte('}')
	return nil
}

func (w *jsonWriter) writeField(buf *bytes.Buffer, f *Field) error {
	buf.WriteByte('{')
	writeKV(buf, "name", true)
	writeJSONString(buf, f.Name)
	if f.Documentation != "" {
		writeKV(buf, "doc", false)
		writeJSONString(buf, f.Documentation)
	}
	writeKV(buf, "type", false)
	if err := w.write(buf, f.Type); err != nil {
		return err
	}
	if f.Default.Set {
		writeKV(buf, "default", false)
		b, err := json.Marshal(f.Default.Value)
		if err != nil {
			return fmt.Errorf("schema: field %s default: %w", f.Name, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return nil
}

func writeNamedAttrs(buf *bytes.Buffer, name Name, aliases []string) {
	writeKV(buf, "name", false)
	writeJSONString(buf, name.Simple)
	if name.Namespace != "" {
		writeKV(buf, "namespace", false)
		writeJSONString(buf, name.Namespace)
	}
	if len(aliases) > 0 {
		writeKV(buf, "aliases", false)
		buf.WriteByte('[')
		for i, a := range aliases {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, a)
		}
		buf.WriteByte(']')
	}
}

func writeLogical(buf *bytes.Buffer, lt *LogicalType) error {
	if lt == nil {
		return nil
	}
	writeKV(buf, "logicalType", false)
	writeJSONString(buf, lt.Kind.String())
	if lt.Kind == LogicalDecimal {
		writeKV(buf, "precision", false)
		fmt.Fprintf(buf, "%d", lt.Precision)
		writeKV(buf, "scale", false)
		fmt.Fprintf(buf, "%d", lt.Scale)
	}
	return nil
}

func writeKV(buf *bytes.Buffer, key string, first bool) {
	if !first {
		buf.WriteByte(',')
	}
	writeJSONString(buf, key)
	buf.WriteByte(':')
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

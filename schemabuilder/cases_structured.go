package schemabuilder

import (
	"reflect"
	"sort"
	"strings"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// implementsAs reports whether t (or *t, for pointer-receiver
// implementations) implements iface, returning a zero-valued instance to
// call methods on. Go's reflect cannot enumerate a type's method set
// without an instance, unlike the CLR's richer type metadata.
func implementsAs(t reflect.Type, iface reflect.Type) (any, bool) {
	if t.Implements(iface) {
		return reflect.New(t).Elem().Interface(), true
	}
	pt := reflect.PointerTo(t)
	if pt.Implements(iface) {
		return reflect.New(t).Interface(), true
	}
	return nil, false
}

// sanitizeNameComponent forces s into the Avro name grammar
// ([A-Za-z_][A-Za-z0-9_]*), replacing every other rune with '_'.
func sanitizeNameComponent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case i > 0 && r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "_" + out
	}
	return out
}

// namespaceFromPkgPath derives an Avro namespace from a Go package import
// path, dot-joining each sanitised path segment (the closest Go analogue of
// a CLR namespace is the defining package's import path).
func namespaceFromPkgPath(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}
	parts := strings.Split(pkgPath, "/")
	for i, p := range parts {
		parts[i] = sanitizeNameComponent(p)
	}
	return strings.Join(parts, ".")
}

// nameForType derives a record/enum/fixed Name from t's own identity,
// overridden by a DataContract implementation when present (its
// data-contract marker).
func nameForType(t reflect.Type) (schema.Name, error) {
	simple := t.Name()
	ns := namespaceFromPkgPath(t.PkgPath())
	if inst, ok := implementsAs(t, dataContractType); ok {
		s, n := inst.(DataContract).AvroName()
		simple, ns = s, n
	}
	return schema.NewName(simple, ns)
}

// integerSchemaFor builds the bare int/long schema for a Go integer kind,
// shared by integerCase and enumCase's Integral rendering.
func integerSchemaFor(k reflect.Kind) schema.Schema {
	bits := integerBitSize(k)
	if isUnsignedInt(k) {
		bits *= 2
	}
	if bits <= 32 {
		return schema.NewInt()
	}
	return schema.NewLong()
}

//------------------------------------------------------------------------------
// enum (case 13)

var enumCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name: "enum",
	Applicable: func(t reflect.Type, _ *buildState) bool {
		_, ok := implementsAs(t, enumType)
		return ok
	},
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		inst, _ := implementsAs(t, enumType)
		e := inst.(Enum)

		behavior := bs.cfg.EnumBehavior
		if flag, ok := inst.(FlagEnum); ok && flag.IsBitFlags() {
			behavior = Integral
		}

		switch behavior {
		case Integral:
			underlying := t
			if underlying.Kind() == reflect.Ptr {
				underlying = underlying.Elem()
			}
			return integerSchemaFor(underlying.Kind()), nil
		case Nominal:
			return schema.NewString(), nil
		default:
			name, err := nameForType(t)
			if err != nil {
				return nil, err
			}
			es := schema.NewEnum(name)
			for _, sym := range e.EnumSymbols() {
				if err := es.AddSymbol(sym); err != nil {
					return nil, err
				}
			}
			return es, nil
		}
	},
}

//------------------------------------------------------------------------------
// enumerable (case 14) and dictionary (case 15)

var enumerableCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name: "enumerable",
	Applicable: func(t reflect.Type, _ *buildState) bool {
		return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
	},
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		item, err := bs.build(t.Elem())
		if err != nil {
			return nil, err
		}
		return schema.NewArray(item), nil
	},
}

var dictionaryCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name: "dictionary",
	Applicable: func(t reflect.Type, _ *buildState) bool {
		return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
	},
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		value, err := bs.build(t.Elem())
		if err != nil {
			return nil, err
		}
		return schema.NewMap(value), nil
	},
}

//------------------------------------------------------------------------------
// pointer-to-struct passthrough: a *T whose T is an arbitrary (non
// value-like) struct gets T's own record schema, with no union wrapping at
// this level. Nullability for such a field is instead decided by the
// enclosing record case, per field, driven by Config.NullableReferenceTypeBehavior
// — applying it here too would double-wrap.

var pointerToStructCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name: "pointer-to-struct",
	Applicable: func(t reflect.Type, _ *buildState) bool {
		return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct && !isValueLikeElem(t.Elem())
	},
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		return bs.build(t.Elem())
	},
}

//------------------------------------------------------------------------------
// record (case 16, the catch-all)

type recordFieldEntry struct {
	sf   reflect.StructField
	opts tagOptions
}

// orderedRecordFields selects and orders t's struct fields: unexported
// fields are never members; a DataContract type
// additionally requires an explicit `avro:"name"` tag ("data-member
// marker") to be included. Fields carrying an explicit `order` tag sort
// first by that order (ties broken by name); the rest keep declaration
// order, appended after.
func orderedRecordFields(t reflect.Type, isDataContract bool) ([]recordFieldEntry, error) {
	var ordered, rest []recordFieldEntry
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		opts, err := parseAvroTag(sf.Tag.Get("avro"))
		if err != nil {
			return nil, &FieldError{Struct: t.Name(), Field: sf.Name, Err: err}
		}
		if opts.Excluded {
			continue
		}
		if isDataContract && opts.Name == "" {
			continue
		}
		entry := recordFieldEntry{sf: sf, opts: opts}
		if opts.HasOrder {
			ordered = append(ordered, entry)
		} else {
			rest = append(rest, entry)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].opts.Order != ordered[j].opts.Order {
			return ordered[i].opts.Order < ordered[j].opts.Order
		}
		return fieldName(ordered[i].sf, ordered[i].opts) < fieldName(ordered[j].sf, ordered[j].opts)
	})
	return append(ordered, rest...), nil
}

// buildNarrowedDecimal constructs a fresh decimal-over-bytes schema sized
// to [opts.Min, opts.Max]. It never
// touches the bare decimal schema cached under decimal.Decimal's own type
// key, so other fields using the unannotated default precision/scale are
// unaffected (cloning avoids polluting the cache entry).
func buildNarrowedDecimal(opts tagOptions) (schema.Schema, error) {
	wholeMin, fracMin := decimalDigits(opts.Min)
	wholeMax, fracMax := decimalDigits(opts.Max)
	whole := wholeMin
	if wholeMax > whole {
		whole = wholeMax
	}
	if whole < 1 {
		whole = 1
	}
	frac := fracMin
	if fracMax > frac {
		frac = fracMax
	}
	lt, err := schema.NewDecimalLogicalType(whole+frac, frac)
	if err != nil {
		return nil, err
	}
	s := schema.NewBytes()
	if err := s.SetLogical(lt); err != nil {
		return nil, err
	}
	return s, nil
}

// appendNullable wraps s as union{s, null}, null last — appended rather
// than prepended, for record-field-driven nullability (as opposed to the
// nullable-wrapper case's unconditional union{null, inner}).
func appendNullable(s schema.Schema) (schema.Schema, error) {
	u := schema.NewUnion()
	if err := u.AddMember(s); err != nil {
		return nil, err
	}
	if err := u.AddMember(schema.NewNull()); err != nil {
		return nil, err
	}
	return u, nil
}

// buildFieldType resolves a record field's schema, descending one level
// into a sequence or string-keyed map to apply Annotated-mode element/value
// nullability: a slice/array/map whose element type
// is itself a pointer-to-struct signals, in Go's idiom, that the
// element/value position is nullable, since Go has no nullability metadata
// independent of pointer-ness.
func (bs *buildState) buildFieldType(fieldType reflect.Type) (schema.Schema, error) {
	switch {
	case fieldType.Kind() == reflect.Slice && fieldType.Elem().Kind() != reflect.Uint8,
		fieldType.Kind() == reflect.Array && fieldType.Elem().Kind() != reflect.Uint8:
		elemSchema, err := bs.buildAnnotatedElem(fieldType.Elem())
		if err != nil {
			return nil, err
		}
		return schema.NewArray(elemSchema), nil

	case fieldType.Kind() == reflect.Map && fieldType.Key().Kind() == reflect.String:
		valSchema, err := bs.buildAnnotatedElem(fieldType.Elem())
		if err != nil {
			return nil, err
		}
		return schema.NewMap(valSchema), nil

	default:
		return bs.build(fieldType)
	}
}

// buildAnnotatedElem resolves the schema for a sequence element or map value
// position, applying Annotated mode's null-last wrapping (§4.4: "Null
// appended rather than prepended, to preserve default-value semantics").
// A pointer to a value-like type (e.g. *string) would otherwise be built by
// nullableWrapperCase into a null-first union{null, inner}; such pointees are
// built directly and wrapped here instead, so the null branch lands last. A
// pointer to a struct is unaffected by that case (it routes through
// pointerToStructCase and comes back as a bare record), so it is built
// as-is and wrapped the same way.
func (bs *buildState) buildAnnotatedElem(elemType reflect.Type) (schema.Schema, error) {
	if bs.cfg.NullableReferenceTypeBehavior == Annotated && elemType.Kind() == reflect.Ptr && isValueLikeElem(elemType.Elem()) {
		inner, err := bs.build(elemType.Elem())
		if err != nil {
			return nil, err
		}
		return appendNullable(inner)
	}

	elemSchema, err := bs.build(elemType)
	if err != nil {
		return nil, err
	}
	if bs.cfg.NullableReferenceTypeBehavior == Annotated && elemType.Kind() == reflect.Ptr && elemSchema.Kind() != schema.KindUnion {
		return appendNullable(elemSchema)
	}
	return elemSchema, nil
}

var recordCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "record",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t.Kind() == reflect.Struct },
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		name, err := nameForType(t)
		if err != nil {
			return nil, err
		}
		rec := schema.NewRecord(name)
		// Store the placeholder before processing any field: a
		// self-referential field (directly, or through a slice/map/pointer)
		// resolves to this same *recordSchema instead of recursing forever.
		bs.memo.Store(t, rec)

		_, isDataContract := implementsAs(t, dataContractType)
		entries, err := orderedRecordFields(t, isDataContract)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			sf, opts := entry.sf, entry.opts
			fieldType := sf.Type
			isPtr := fieldType.Kind() == reflect.Ptr
			baseType := fieldType
			if isPtr {
				baseType = fieldType.Elem()
			}

			var fieldSchema schema.Schema
			if baseType == decimalType && opts.HasRange {
				// Range narrowing descends through a pointer-to-decimal
				// field's own nullable wrapping rather than discarding it
				// i.e. descending through the union rather than discarding it.
				narrowed, nerr := buildNarrowedDecimal(opts)
				if nerr != nil {
					err = nerr
				} else if isPtr {
					u := schema.NewUnion()
					if err = u.AddMember(schema.NewNull()); err == nil {
						if err = u.AddMember(narrowed); err == nil {
							fieldSchema = u
						}
					}
				} else {
					fieldSchema = narrowed
				}
			} else {
				fieldSchema, err = bs.buildFieldType(fieldType)
			}
			if err != nil {
				return nil, &FieldError{Struct: t.Name(), Field: sf.Name, Err: err}
			}

			alreadyNullable := fieldSchema.Kind() == schema.KindUnion
			wrap := false
			switch bs.cfg.NullableReferenceTypeBehavior {
			case All:
				wrap = !alreadyNullable
			case Annotated:
				wrap = isPtr && !alreadyNullable
			}
			if wrap {
				if fieldSchema, err = appendNullable(fieldSchema); err != nil {
					return nil, err
				}
			}

			if err := rec.AddField(&schema.Field{
				Name:    fieldName(sf, opts),
				Type:    fieldSchema,
				Default: opts.Default,
			}); err != nil {
				return nil, &FieldError{Struct: t.Name(), Field: sf.Name, Err: err}
			}
		}
		return rec, nil
	},
}

package registry

import (
	"reflect"

	"github.com/warpstreamlabs/avroregistry/codec"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// validateTombstone enforces the Strict-mode build-time
// requirement: the host type must be able to represent null, and the
// schema itself must not already be able to (no null branch in a top-level
// union, not a bare null) — Strict tombstone semantics only make sense when
// the schema has no native way to say "this value is null".
func validateTombstone(mode TombstoneBehavior, isKey bool, s schema.Schema, t reflect.Type) error {
	if mode != Strict || isKey {
		return nil
	}
	if schemaCanRepresentNull(s) {
		return &UnsupportedSchemaError{Reason: "tombstone Strict mode requires a schema with no null branch"}
	}
	if !typeCanRepresentNull(t) {
		return &UnsupportedTypeError{Reason: "tombstone Strict mode requires a nilable host type"}
	}
	return nil
}

func schemaCanRepresentNull(s schema.Schema) bool {
	if s == nil || s.Kind() == schema.KindNull {
		return true
	}
	if members, ok := schema.Union(s); ok {
		for _, m := range members {
			if m.Kind() == schema.KindNull {
				return true
			}
		}
	}
	return false
}

// typeCanRepresentNull mirrors codec's isNilValue notion of nilability: nil
// t (Avro's native "any" representation) is always nilable, as are
// pointers, interfaces, slices, maps, channels and funcs.
func typeCanRepresentNull(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// wrapTombstoneEncode applies the serialiser-side tombstone
// policy around a built body encoder. None passes every value, including
// null, straight through (the body codec errors at encode if the schema
// cannot accept null, matching the table's "host type must accept null;
// else error at encode"). Strict special-cases a null value: a key
// component still passes through to the body codec, a value component
// emits an empty payload instead of invoking the body codec at all.
func wrapTombstoneEncode(mode TombstoneBehavior, isKey bool, body codec.EncodeFunc) codec.EncodeFunc {
	if mode != Strict {
		return body
	}
	return func(w *codec.Writer, v any) error {
		if isNilValue(v) {
			if isKey {
				return body(w, v)
			}
			return nil
		}
		return body(w, v)
	}
}

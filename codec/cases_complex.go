package codec

import (
	"fmt"
	"reflect"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

//------------------------------------------------------------------------------
// array

func arrayEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "array",
	Applicable: kindIs(schema.KindArray),
	Build: func(in buildInput, es *encodeState) (EncodeFunc, error) {
		item, _ := schema.Array(in.schema)
		var itemType reflect.Type
		if in.typ != nil && (in.typ.Kind() == reflect.Slice || in.typ.Kind() == reflect.Array) {
			itemType = in.typ.Elem()
		}
		itemEncoder, err := es.build(item, itemType)
		if err != nil {
			return nil, err
		}
		return func(w *Writer, v any) error {
			rv := reflect.ValueOf(v)
			for rv.IsValid() && rv.Kind() == reflect.Ptr {
				rv = rv.Elem()
			}
			if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
				return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as an array", v)}
			}
			n := rv.Len()
			if n > 0 {
				w.WriteLong(int64(n))
				for i := 0; i < n; i++ {
					if err := itemEncoder(w, rv.Index(i).Interface()); err != nil {
						return err
					}
				}
			}
			w.WriteLong(0)
			return nil
		}, nil
	},
}

func arrayDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "array",
	Applicable: kindIsDecode(schema.KindArray),
	Build: func(in buildInput, ds *decodeState) (DecodeFunc, error) {
		item, _ := schema.Array(in.schema)
		var itemType reflect.Type
		if in.typ != nil && (in.typ.Kind() == reflect.Slice || in.typ.Kind() == reflect.Array) {
			itemType = in.typ.Elem()
		}
		itemDecoder, err := ds.build(item, itemType)
		if err != nil {
			return nil, err
		}
		native := itemType == nil
		return func(r *Reader) (any, error) {
			var native_ []any
			var sliceVal reflect.Value
			if native {
				native_ = []any{}
			} else {
				sliceVal = reflect.MakeSlice(reflect.SliceOf(itemType), 0, 0)
			}
			for {
				count, err := r.ReadLong()
				if err != nil {
					return nil, err
				}
				if count == 0 {
					break
				}
				if count < 0 {
					if _, err := r.ReadLong(); err != nil {
						return nil, err
					}
					count = -count
				}
				for i := int64(0); i < count; i++ {
					item, err := itemDecoder(r)
					if err != nil {
						return nil, err
					}
					if native {
						native_ = append(native_, item)
					} else {
						sliceVal = reflect.Append(sliceVal, reflect.ValueOf(item))
					}
				}
			}
			if native {
				return native_, nil
			}
			return sliceVal.Interface(), nil
		}, nil
	},
}

//------------------------------------------------------------------------------
// map

func mapEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "map",
	Applicable: kindIs(schema.KindMap),
	Build: func(in buildInput, es *encodeState) (EncodeFunc, error) {
		value, _ := schema.MapValue(in.schema)
		var valueType reflect.Type
		if in.typ != nil && in.typ.Kind() == reflect.Map {
			valueType = in.typ.Elem()
		}
		valueEncoder, err := es.build(value, valueType)
		if err != nil {
			return nil, err
		}
		return func(w *Writer, v any) error {
			rv := reflect.ValueOf(v)
			if !rv.IsValid() || rv.Kind() != reflect.Map {
				return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as a map", v)}
			}
			keys := rv.MapKeys()
			if len(keys) > 0 {
				w.WriteLong(int64(len(keys)))
				for _, k := range keys {
					w.WriteString(fmt.Sprint(k.Interface()))
					if err := valueEncoder(w, rv.MapIndex(k).Interface()); err != nil {
						return err
					}
				}
			}
			w.WriteLong(0)
			return nil
		}, nil
	},
}

func mapDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "map",
	Applicable: kindIsDecode(schema.KindMap),
	Build: func(in buildInput, ds *decodeState) (DecodeFunc, error) {
		value, _ := schema.MapValue(in.schema)
		var valueType reflect.Type
		if in.typ != nil && in.typ.Kind() == reflect.Map {
			valueType = in.typ.Elem()
		}
		valueDecoder, err := ds.build(value, valueType)
		if err != nil {
			return nil, err
		}
		native := valueType == nil
		return func(r *Reader) (any, error) {
			var nativeMap map[string]any
			var mapVal reflect.Value
			if native {
				nativeMap = map[string]any{}
			} else {
				mapVal = reflect.MakeMap(reflect.MapOf(reflect.TypeOf(""), valueType))
			}
			for {
				count, err := r.ReadLong()
				if err != nil {
					return nil, err
				}
				if count == 0 {
					break
				}
				if count < 0 {
					if _, err := r.ReadLong(); err != nil {
						return nil, err
					}
					count = -count
				}
				for i := int64(0); i < count; i++ {
					key, err := r.ReadString()
					if err != nil {
						return nil, err
					}
					val, err := valueDecoder(r)
					if err != nil {
						return nil, err
					}
					if native {
						nativeMap[key] = val
					} else {
						mapVal.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(val))
					}
				}
			}
			if native {
				return nativeMap, nil
			}
			return mapVal.Interface(), nil
		}, nil
	},
}

//------------------------------------------------------------------------------
// union

// goValueMatchesSchemaKind reports whether rv's runtime shape is a plausible
// native encoding of a union member of the given Kind. The union encoder
// picks the first non-null member for which this holds; there is no
// exact-match preference, so (for example) an int64 value goes to an "int"
// member listed before a "long" one, and a []byte value to whichever of
// "bytes"/"fixed" comes first. Member identity within a Kind (which record,
// which fixed) is not distinguished either.
func goValueMatchesSchemaKind(rv reflect.Value, k schema.Kind) bool {
	if !rv.IsValid() {
		return k == schema.KindNull
	}
	switch k {
	case schema.KindBoolean:
		return rv.Kind() == reflect.Bool
	case schema.KindInt, schema.KindLong:
		return isIntegerKind(rv.Kind())
	case schema.KindFloat:
		return rv.Kind() == reflect.Float32
	case schema.KindDouble:
		return rv.Kind() == reflect.Float64
	case schema.KindBytes, schema.KindFixed:
		return (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() == reflect.Uint8
	case schema.KindString, schema.KindEnum:
		return rv.Kind() == reflect.String
	case schema.KindArray:
		return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	case schema.KindMap:
		return rv.Kind() == reflect.Map
	case schema.KindRecord:
		return rv.Kind() == reflect.Struct
	default:
		return false
	}
}

// unionMemberType infers the Go type to build member m's sub-codec against,
// given the union's own host type t. A pointer host type is Go's nullable
// wrapper convention: its Elem() backs every
// non-null member, and the null member itself has no host type.
func unionMemberType(t reflect.Type, m schema.Schema) reflect.Type {
	if t == nil {
		return nil
	}
	if m.Kind() == schema.KindNull {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

func unionEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "union",
	Applicable: kindIs(schema.KindUnion),
	Build: func(in buildInput, es *encodeState) (EncodeFunc, error) {
		members, _ := schema.Union(in.schema)
		if len(members) == 0 {
			return nil, &UnsupportedSchemaError{Schema: in.schema, Reason: "union has no members"}
		}
		encoders := make([]EncodeFunc, len(members))
		nullIdx := -1
		for i, m := range members {
			if m.Kind() == schema.KindNull {
				nullIdx = i
			}
			enc, err := es.build(m, unionMemberType(in.typ, m))
			if err != nil {
				return nil, err
			}
			encoders[i] = enc
		}
		return func(w *Writer, v any) error {
			if isNilValue(v) {
				if nullIdx < 0 {
					return &UnsupportedSchemaError{Schema: in.schema, Reason: "union has no null member for a nil value"}
				}
				w.WriteLong(int64(nullIdx))
				return encoders[nullIdx](w, nil)
			}
			actual := v
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Ptr {
				rv = rv.Elem()
				actual = rv.Interface()
			}
			for i, m := range members {
				if m.Kind() == schema.KindNull {
					continue
				}
				if goValueMatchesSchemaKind(rv, m.Kind()) {
					w.WriteLong(int64(i))
					return encoders[i](w, actual)
				}
			}
			return &UnsupportedTypeError{Reason: fmt.Sprintf("value of type %T is not assignable to any union member", v)}
		}, nil
	},
}

func unionDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "union",
	Applicable: kindIsDecode(schema.KindUnion),
	Build: func(in buildInput, ds *decodeState) (DecodeFunc, error) {
		members, _ := schema.Union(in.schema)
		if len(members) == 0 {
			return nil, &UnsupportedSchemaError{Schema: in.schema, Reason: "union has no members"}
		}
		decoders := make([]DecodeFunc, len(members))
		for i, m := range members {
			dec, err := ds.build(m, unionMemberType(in.typ, m))
			if err != nil {
				return nil, err
			}
			decoders[i] = dec
		}
		wantPointer := in.typ != nil && in.typ.Kind() == reflect.Ptr
		return func(r *Reader) (any, error) {
			idx, err := r.ReadLong()
			if err != nil {
				return nil, err
			}
			if idx < 0 || int(idx) >= len(members) {
				return nil, &InvalidEncodingError{Reason: "union member index out of range"}
			}
			val, err := decoders[idx](r)
			if err != nil {
				return nil, err
			}
			if members[idx].Kind() == schema.KindNull {
				if wantPointer {
					return reflect.Zero(in.typ).Interface(), nil
				}
				return nil, nil
			}
			if wantPointer {
				ptr := reflect.New(in.typ.Elem())
				ptr.Elem().Set(reflect.ValueOf(val))
				return ptr.Interface(), nil
			}
			return val, nil
		}, nil
	},
}

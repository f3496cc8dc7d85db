package codec

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// structFieldFor resolves the Go struct field backing an Avro field name: an
// `avro:"name,..."` tag takes priority, falling back to a case-insensitive
// name match. This mirrors the reverse mapping schemabuilder applies when
// deriving a record schema from the same struct type.
func structFieldFor(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if tag, ok := sf.Tag.Lookup("avro"); ok {
			tagName := strings.Split(tag, ",")[0]
			if tagName == name {
				return sf, true
			}
		}
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if strings.EqualFold(sf.Name, name) {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

func recordEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "record",
	Applicable: kindIs(schema.KindRecord),
	Build: func(in buildInput, es *encodeState) (EncodeFunc, error) {
		rec, _ := schema.AsRecord(in.schema)
		fields := rec.Fields()

		var baseStruct reflect.Type
		if in.typ != nil {
			baseStruct = in.typ
			if baseStruct.Kind() == reflect.Ptr {
				baseStruct = baseStruct.Elem()
			}
			if baseStruct.Kind() != reflect.Struct {
				return nil, &UnsupportedTypeError{Type: in.typ, Reason: "record schema requires a struct or pointer-to-struct type"}
			}
		}

		encoders := make([]EncodeFunc, len(fields))
		indexes := make([][]int, len(fields))
		for i, f := range fields {
			var fieldType reflect.Type
			if baseStruct != nil {
				sf, ok := structFieldFor(baseStruct, f.Name)
				if !ok {
					return nil, &UnsupportedTypeError{Type: baseStruct, Reason: "no struct field matches record field " + f.Name}
				}
				fieldType = sf.Type
				indexes[i] = sf.Index
			}
			enc, err := es.build(f.Type, fieldType)
			if err != nil {
				return nil, err
			}
			encoders[i] = enc
		}

		return func(w *Writer, v any) error {
			rv := reflect.ValueOf(v)
			for rv.IsValid() && rv.Kind() == reflect.Ptr {
				rv = rv.Elem()
			}
			isStruct := rv.IsValid() && rv.Kind() == reflect.Struct
			var asMap map[string]any
			if !isStruct {
				m, ok := v.(map[string]any)
				if !ok {
					return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as record %s", v, rec.Name().Full())}
				}
				asMap = m
			}
			for i, f := range fields {
				var fv any
				if isStruct {
					fv = rv.FieldByIndex(indexes[i]).Interface()
				} else {
					fv = asMap[f.Name]
				}
				if err := encoders[i](w, fv); err != nil {
					return fmt.Errorf("field %s: %w", f.Name, err)
				}
			}
			return nil
		}, nil
	},
}

func recordDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "record",
	Applicable: kindIsDecode(schema.KindRecord),
	Build: func(in buildInput, ds *decodeState) (DecodeFunc, error) {
		rec, _ := schema.AsRecord(in.schema)
		fields := rec.Fields()

		var baseStruct reflect.Type
		wantPointer := false
		if in.typ != nil {
			baseStruct = in.typ
			if baseStruct.Kind() == reflect.Ptr {
				baseStruct = baseStruct.Elem()
				wantPointer = true
			}
			if baseStruct.Kind() != reflect.Struct {
				return nil, &UnsupportedTypeError{Type: in.typ, Reason: "record schema requires a struct or pointer-to-struct type"}
			}
		}

		decoders := make([]DecodeFunc, len(fields))
		indexes := make([][]int, len(fields))
		for i, f := range fields {
			var fieldType reflect.Type
			if baseStruct != nil {
				sf, ok := structFieldFor(baseStruct, f.Name)
				if !ok {
					return nil, &UnsupportedTypeError{Type: baseStruct, Reason: "no struct field matches record field " + f.Name}
				}
				fieldType = sf.Type
				indexes[i] = sf.Index
			}
			dec, err := ds.build(f.Type, fieldType)
			if err != nil {
				return nil, err
			}
			decoders[i] = dec
		}

		return func(r *Reader) (any, error) {
			if baseStruct != nil {
				ptr := reflect.New(baseStruct)
				for i := range fields {
					val, err := decoders[i](r)
					if err != nil {
						return nil, err
					}
					if val != nil {
						ptr.Elem().FieldByIndex(indexes[i]).Set(reflect.ValueOf(val))
					}
				}
				if wantPointer {
					return ptr.Interface(), nil
				}
				return ptr.Elem().Interface(), nil
			}
			m := make(map[string]any, len(fields))
			for i, f := range fields {
				val, err := decoders[i](r)
				if err != nil {
					return nil, err
				}
				m[f.Name] = val
			}
			return m, nil
		}, nil
	},
}

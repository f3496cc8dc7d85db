package codec

import (
	"fmt"
	"reflect"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

func fixedEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "fixed",
	Applicable: kindIs(schema.KindFixed),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		_, size, _ := schema.AsFixed(in.schema)
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalDecimal {
			return encodeDecimalFixed(lt, size), nil
		}
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalDuration {
			return encodeFixedDuration, nil
		}
		return func(w *Writer, v any) error {
			b, err := toByteSlice(v)
			if err != nil {
				return err
			}
			if len(b) != size {
				return &UnsupportedTypeError{Reason: fmt.Sprintf("fixed schema requires exactly %d bytes, got %d", size, len(b))}
			}
			w.WriteFixed(b)
			return nil
		}, nil
	},
}

func fixedDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "fixed",
	Applicable: kindIsDecode(schema.KindFixed),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		_, size, _ := schema.AsFixed(in.schema)
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalDecimal {
			return decodeDecimalFixed(lt, size), nil
		}
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalDuration {
			return decodeFixedDuration, nil
		}
		return func(r *Reader) (any, error) { return r.ReadFixed(size) }, nil
	},
}

func enumEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "enum",
	Applicable: kindIs(schema.KindEnum),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		e, _ := schema.AsEnum(in.schema)
		symbols := e.Symbols()
		return func(w *Writer, v any) error {
			if s, ok := stringerOrString(v); ok {
				idx := indexOfString(symbols, s)
				if idx < 0 {
					return &UnsupportedTypeError{Reason: "unknown enum symbol " + s}
				}
				w.WriteLong(int64(idx))
				return nil
			}
			n, err := toInt64(v)
			if err != nil {
				return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as enum", v)}
			}
			if n < 0 || int(n) >= len(symbols) {
				return &UnsupportedTypeError{Reason: "enum index out of range"}
			}
			w.WriteLong(n)
			return nil
		}, nil
	},
}

func stringerOrString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

func enumDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "enum",
	Applicable: kindIsDecode(schema.KindEnum),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		e, _ := schema.AsEnum(in.schema)
		symbols := e.Symbols()
		t := in.typ
		return func(r *Reader) (any, error) {
			idx, err := r.ReadLong()
			if err != nil {
				return nil, err
			}
			if idx < 0 || int(idx) >= len(symbols) {
				return nil, &InvalidEncodingError{Reason: "enum symbol index out of range"}
			}
			symbol := symbols[idx]
			if t != nil && isIntegerKind(t.Kind()) {
				return intoReflectInt(idx, t), nil
			}
			if t != nil && t.Kind() == reflect.String {
				return reflect.ValueOf(symbol).Convert(t).Interface(), nil
			}
			return symbol, nil
		}, nil
	},
}

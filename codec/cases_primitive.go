package codec

import (
	"fmt"
	"reflect"
	"time"

	"github.com/rickb777/period"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

var periodType = reflect.TypeOf(period.Period{})

func kindIs(k schema.Kind) func(buildInput, *encodeState) bool {
	return func(in buildInput, _ *encodeState) bool { return in.schema.Kind() == k }
}

func kindIsDecode(k schema.Kind) func(buildInput, *decodeState) bool {
	return func(in buildInput, _ *decodeState) bool { return in.schema.Kind() == k }
}

func nullEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "null",
	Applicable: kindIs(schema.KindNull),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		return func(w *Writer, v any) error {
			if !isNilValue(v) {
				return &UnsupportedTypeError{Reason: fmt.Sprintf("null schema cannot encode non-nil value %v", v)}
			}
			return nil
		}, nil
	},
}

func nullDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "null",
	Applicable: kindIsDecode(schema.KindNull),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		return func(r *Reader) (any, error) { return nil, nil }, nil
	},
}

func booleanEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "boolean",
	Applicable: kindIs(schema.KindBoolean),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		return func(w *Writer, v any) error {
			b, ok := v.(bool)
			if !ok {
				rv := reflect.ValueOf(v)
				if !rv.IsValid() || rv.Kind() != reflect.Bool {
					return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as boolean", v)}
				}
				b = rv.Bool()
			}
			w.WriteBoolean(b)
			return nil
		}, nil
	},
}

func booleanDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "boolean",
	Applicable: kindIsDecode(schema.KindBoolean),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		return func(r *Reader) (any, error) { return r.ReadBoolean() }, nil
	},
}

// integerEncodeCase handles both int and long: Avro encodes them with the
// same zig-zag varint, differing only in declared range. The five
// int/long-backed logical types (date, time-millis, time-micros,
// timestamp-millis, timestamp-micros) are handled here rather than as
// separate cases, since they share the underlying Kind.
func integerEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "integer",
	Applicable: func(in buildInput, _ *encodeState) bool { return in.schema.Kind() == schema.KindInt || in.schema.Kind() == schema.KindLong },
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		if lt := in.schema.Logical(); lt != nil {
			switch lt.Kind {
			case schema.LogicalDate:
				return encodeDate, nil
			case schema.LogicalTimeMillis:
				return encodeTimeMillis, nil
			case schema.LogicalTimeMicros:
				return encodeTimeMicros, nil
			case schema.LogicalTimestampMillis:
				return encodeTimestampMillis, nil
			case schema.LogicalTimestampMicros:
				return encodeTimestampMicros, nil
			}
		}
		return func(w *Writer, v any) error {
			n, err := toInt64(v)
			if err != nil {
				return err
			}
			w.WriteLong(n)
			return nil
		}, nil
	},
}

func integerDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "integer",
	Applicable: func(in buildInput, _ *decodeState) bool { return in.schema.Kind() == schema.KindInt || in.schema.Kind() == schema.KindLong },
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		if lt := in.schema.Logical(); lt != nil {
			switch lt.Kind {
			case schema.LogicalDate:
				return decodeDate, nil
			case schema.LogicalTimeMillis:
				return decodeTimeMillis, nil
			case schema.LogicalTimeMicros:
				return decodeTimeMicros, nil
			case schema.LogicalTimestampMillis:
				return decodeTimestampMillis, nil
			case schema.LogicalTimestampMicros:
				return decodeTimestampMicros, nil
			}
		}
		t := in.typ
		return func(r *Reader) (any, error) {
			n, err := r.ReadLong()
			if err != nil {
				return nil, err
			}
			return intoReflectInt(n, t), nil
		}, nil
	},
}

func floatEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "float",
	Applicable: kindIs(schema.KindFloat),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		return func(w *Writer, v any) error {
			f, err := toFloat64(v)
			if err != nil {
				return err
			}
			w.WriteFloat(float32(f))
			return nil
		}, nil
	},
}

func floatDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "float",
	Applicable: kindIsDecode(schema.KindFloat),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		return func(r *Reader) (any, error) { return r.ReadFloat() }, nil
	},
}

func doubleEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "double",
	Applicable: kindIs(schema.KindDouble),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		return func(w *Writer, v any) error {
			f, err := toFloat64(v)
			if err != nil {
				return err
			}
			w.WriteDouble(f)
			return nil
		}, nil
	},
}

func doubleDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "double",
	Applicable: kindIsDecode(schema.KindDouble),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		return func(r *Reader) (any, error) { return r.ReadDouble() }, nil
	},
}

// bytesEncodeCase also covers the decimal-over-bytes logical type.
func bytesEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "bytes",
	Applicable: kindIs(schema.KindBytes),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalDecimal {
			return encodeDecimalBytes(lt), nil
		}
		return func(w *Writer, v any) error {
			b, err := toByteSlice(v)
			if err != nil {
				return err
			}
			w.WriteBytes(b)
			return nil
		}, nil
	},
}

func bytesDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "bytes",
	Applicable: kindIsDecode(schema.KindBytes),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalDecimal {
			return decodeDecimalBytes(lt), nil
		}
		return func(r *Reader) (any, error) { return r.ReadBytes() }, nil
	},
}

// stringEncodeCase also covers uuid-over-string and the ISO-8601
// duration/time-span string convention (a plain string schema whose host Go
// type is period.Period).
func stringEncodeCase() casepipe.Case[buildInput, EncodeFunc, *encodeState]{
	Name:       "string",
	Applicable: kindIs(schema.KindString),
	Build: func(in buildInput, _ *encodeState) (EncodeFunc, error) {
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalUUID {
			return encodeUUID, nil
		}
		if in.typ == periodType {
			return encodePeriod, nil
		}
		return func(w *Writer, v any) error {
			s, err := toGoString(v)
			if err != nil {
				return err
			}
			w.WriteString(s)
			return nil
		}, nil
	},
}

func stringDecodeCase() casepipe.Case[buildInput, DecodeFunc, *decodeState]{
	Name:       "string",
	Applicable: kindIsDecode(schema.KindString),
	Build: func(in buildInput, _ *decodeState) (DecodeFunc, error) {
		if lt := in.schema.Logical(); lt != nil && lt.Kind == schema.LogicalUUID {
			return decodeUUID, nil
		}
		if in.typ == periodType {
			return decodePeriod, nil
		}
		return func(r *Reader) (any, error) { return r.ReadString() }, nil
	},
}

func toByteSlice(v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return rv.Bytes(), nil
	}
	return nil, &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as bytes", v)}
}

func toGoString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return "", &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as string", v)}
}

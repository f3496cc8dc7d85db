package schemabuilder

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/period"
	"github.com/shopspring/decimal"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

var (
	timeTimeType    = reflect.TypeOf(time.Time{})
	timeDurationType = reflect.TypeOf(time.Duration(0))
	decimalType     = reflect.TypeOf(decimal.Decimal{})
	uuidType        = reflect.TypeOf(uuid.UUID{})
	periodType      = reflect.TypeOf(period.Period{})
)

// DateOnly is Go's stand-in for a host language's distinct "date-only"
// type (.NET's DateOnly): Go's time.Time otherwise serves both the
// date-only and timestamp roles, with nothing for reflection to
// distinguish them by. A defined type gives schemabuilder's case 9
// something concrete to match on; codec accepts it via reflect
// convertibility to time.Time (see codec.asTime), so no cross-package
// dependency is needed.
type DateOnly time.Time

var dateOnlyType = reflect.TypeOf(DateOnly{})

// isValueLikeElem reports whether et is a type the nullable-wrapper case
// should treat as a wrapped "value type", mirroring
// .NET's Nullable<T> over structs like DateTime/decimal/Guid rather than a
// nullable reference to a user-defined record type.
func isValueLikeElem(et reflect.Type) bool {
	switch et.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Array:
		return true
	case reflect.Slice:
		return et.Elem().Kind() == reflect.Uint8
	case reflect.Struct:
		return et == timeTimeType || et == decimalType || et == periodType || et == dateOnlyType
	default:
		return false
	}
}

var nullableWrapperCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name: "nullable-wrapper",
	Applicable: func(t reflect.Type, _ *buildState) bool {
		return t.Kind() == reflect.Ptr && isValueLikeElem(t.Elem())
	},
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		inner, err := bs.build(t.Elem())
		if err != nil {
			return nil, err
		}
		u := schema.NewUnion()
		if err := u.AddMember(schema.NewNull()); err != nil {
			return nil, err
		}
		if err := u.AddMember(inner); err != nil {
			return nil, err
		}
		return u, nil
	},
}

var boolCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "bool",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t.Kind() == reflect.Bool },
	Build:      func(t reflect.Type, _ *buildState) (schema.Schema, error) { return schema.NewBoolean(), nil },
}

var byteArrayCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name: "byte-array",
	Applicable: func(t reflect.Type, _ *buildState) bool {
		return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() == reflect.Uint8
	},
	Build: func(t reflect.Type, _ *buildState) (schema.Schema, error) { return schema.NewBytes(), nil },
}

var decimalCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "decimal",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t == decimalType },
	Build: func(t reflect.Type, _ *buildState) (schema.Schema, error) {
		// Default precision/scale; a member with
		// range-annotation metadata is re-derived and cloned by the record
		// case, not here (cloning avoids polluting this cache entry).
		lt, err := schema.NewDecimalLogicalType(29, 14)
		if err != nil {
			return nil, err
		}
		s := schema.NewBytes()
		if err := s.SetLogical(lt); err != nil {
			return nil, err
		}
		return s, nil
	},
}

func isSignedInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUnsignedInt(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// integerBitSize reports the number of value bits t's Kind guarantees,
// treating platform-sized int/uint as 64-bit (Go does not guarantee 32-bit
// int on any current platform worth targeting).
func integerBitSize(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	default:
		return 64
	}
}

var integerCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name: "integer",
	Applicable: func(t reflect.Type, _ *buildState) bool {
		return isSignedInt(t.Kind()) || isUnsignedInt(t.Kind())
	},
	Build: func(t reflect.Type, _ *buildState) (schema.Schema, error) {
		bits := integerBitSize(t.Kind())
		if isUnsignedInt(t.Kind()) {
			bits *= 2 // an unsigned N-bit value needs an extra bit of signed range
		}
		if bits <= 32 {
			return schema.NewInt(), nil
		}
		return schema.NewLong(), nil
	},
}

var floatCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "float",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64 },
	Build: func(t reflect.Type, _ *buildState) (schema.Schema, error) {
		if t.Kind() == reflect.Float32 {
			return schema.NewFloat(), nil
		}
		return schema.NewDouble(), nil
	},
}

// stringCase covers any named Go string kind. Unlike .NET reflection, Go
// has no "uri"/"uuid"-typed string ambiguity to resolve here: uuid.UUID is
// a distinct [16]byte array type (see uuidCase), not a string.
var stringCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "string",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t.Kind() == reflect.String },
	Build:      func(t reflect.Type, _ *buildState) (schema.Schema, error) { return schema.NewString(), nil },
}

var uuidCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "uuid",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t == uuidType },
	Build: func(t reflect.Type, _ *buildState) (schema.Schema, error) {
		s := schema.NewString()
		if err := s.SetLogical(schema.NewSimpleLogicalType(schema.LogicalUUID)); err != nil {
			return nil, err
		}
		return s, nil
	},
}

var dateOnlyCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "date-only",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t == dateOnlyType },
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		if bs.cfg.TemporalBehavior == EpochMilliseconds || bs.cfg.TemporalBehavior == EpochMicroseconds {
			s := schema.NewInt()
			if err := s.SetLogical(schema.NewSimpleLogicalType(schema.LogicalDate)); err != nil {
				return nil, err
			}
			return s, nil
		}
		return schema.NewString(), nil
	},
}

var timeOnlyCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "time-only",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t == timeDurationType },
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		switch bs.cfg.TemporalBehavior {
		case EpochMilliseconds:
			s := schema.NewInt()
			if err := s.SetLogical(schema.NewSimpleLogicalType(schema.LogicalTimeMillis)); err != nil {
				return nil, err
			}
			return s, nil
		case EpochMicroseconds:
			s := schema.NewLong()
			if err := s.SetLogical(schema.NewSimpleLogicalType(schema.LogicalTimeMicros)); err != nil {
				return nil, err
			}
			return s, nil
		default:
			return schema.NewString(), nil
		}
	},
}

var timestampCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "timestamp",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t == timeTimeType },
	Build: func(t reflect.Type, bs *buildState) (schema.Schema, error) {
		s := schema.NewLong()
		var lt *schema.LogicalType
		switch bs.cfg.TemporalBehavior {
		case EpochMilliseconds:
			lt = schema.NewSimpleLogicalType(schema.LogicalTimestampMillis)
		case EpochMicroseconds:
			lt = schema.NewSimpleLogicalType(schema.LogicalTimestampMicros)
		default:
			return schema.NewString(), nil
		}
		if err := s.SetLogical(lt); err != nil {
			return nil, err
		}
		return s, nil
	},
}

var durationCase = casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	Name:       "duration",
	Applicable: func(t reflect.Type, _ *buildState) bool { return t == periodType },
	Build:      func(t reflect.Type, _ *buildState) (schema.Schema, error) { return schema.NewString(), nil },
}

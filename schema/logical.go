package schema

// LogicalKind identifies which Avro logical type a LogicalType decorates an
// underlying schema with.
type LogicalKind int

const (
	LogicalDecimal LogicalKind = iota
	LogicalUUID
	LogicalDate
	LogicalTimeMillis
	LogicalTimeMicros
	LogicalTimestampMillis
	LogicalTimestampMicros
	LogicalDuration
)

func (k LogicalKind) String() string {
	switch k {
	case LogicalDecimal:
		return "decimal"
	case LogicalUUID:
		return "uuid"
	case LogicalDate:
		return "date"
	case LogicalTimeMillis:
		return "time-millis"
	case LogicalTimeMicros:
		return "time-micros"
	case LogicalTimestampMillis:
		return "timestamp-millis"
	case LogicalTimestampMicros:
		return "timestamp-micros"
	case LogicalDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// LogicalType is the logical-type decorator attached to an underlying
// schema node. Only Kind and (for decimal) Precision/Scale
// carry meaning; the other logical kinds have no extra attributes.
type LogicalType struct {
	Kind      LogicalKind
	Precision int // decimal only
	Scale     int // decimal only
}

// NewDecimalLogicalType validates and constructs a decimal logical type:
// precision >= 1 and 0 <= scale <= precision.
func NewDecimalLogicalType(precision, scale int) (*LogicalType, error) {
	if precision < 1 || scale < 0 || scale > precision {
		return nil, &InvalidDecimalError{Precision: precision, Scale: scale}
	}
	return &LogicalType{Kind: LogicalDecimal, Precision: precision, Scale: scale}, nil
}

// NewSimpleLogicalType constructs a logical type with no extra attributes
// (uuid, date, time-millis, time-micros, timestamp-millis,
// timestamp-micros, duration).
func NewSimpleLogicalType(kind LogicalKind) *LogicalType {
	return &LogicalType{Kind: kind}
}

// validLogicalFor reports whether kind is a structurally legal decoration
// for a node of the given schema Kind, per the Avro spec's fixed pairing of
// logical types to underlying types (decimal->bytes/fixed, uuid->string,
// date/time-millis->int, time-micros/timestamp-*->long, duration->fixed(12)).
func validLogicalFor(lt *LogicalType, k Kind, fixedSize int) bool {
	if lt == nil {
		return true
	}
	switch lt.Kind {
	case LogicalDecimal:
		return k == KindBytes || k == KindFixed
	case LogicalUUID:
		return k == KindString
	case LogicalDate, LogicalTimeMillis:
		return k == KindInt
	case LogicalTimeMicros, LogicalTimestampMillis, LogicalTimestampMicros:
		return k == KindLong
	case LogicalDuration:
		return k == KindFixed && fixedSize == 12
	default:
		return false
	}
}

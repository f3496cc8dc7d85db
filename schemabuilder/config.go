// Package schemabuilder derives a schema.Schema from a Go reflect.Type,
// running seventeen ordered reflection cases (sixteen type cases plus a
// pointer-to-struct passthrough) through internal/casepipe, with
// Go's own nullability/enum/tag idioms standing in
// for the host-language reflection metadata (data-contract marker,
// data-member marker, not-serialised marker, nullable reference type) that
// Go's reflect package has no equivalent of.
package schemabuilder

import "reflect"

// EnumBehavior selects how an enum-like Go type is rendered.
type EnumBehavior int

const (
	// Symbolic renders an Avro enum with one symbol per declared member.
	Symbolic EnumBehavior = iota
	// Integral renders the underlying integer schema instead of an enum.
	Integral
	// Nominal renders the member's name as a plain string.
	Nominal
)

// TemporalBehavior selects how date/time/timestamp-like Go types are
// rendered.
type TemporalBehavior int

const (
	// Iso8601 renders temporal values as plain ISO-8601 strings.
	Iso8601 TemporalBehavior = iota
	// EpochMilliseconds renders them as int/long + the matching
	// date/time-millis/timestamp-millis logical type.
	EpochMilliseconds
	// EpochMicroseconds renders them as long + the matching
	// time-micros/timestamp-micros logical type (no microsecond variant of
	// Avro's "date" logical type exists, so dates are unaffected by this
	// setting).
	EpochMicroseconds
)

// NullableReferenceTypeBehavior selects how a record member's nullability
// is modelled. Go has no reflection-visible "nullable reference type"
// annotation; a pointer field is the idiomatic stand-in.
type NullableReferenceTypeBehavior int

const (
	// None never wraps a member's schema in a nullable union.
	None NullableReferenceTypeBehavior = iota
	// All wraps every member's schema in a nullable union, regardless of
	// whether the Go field happens to be a pointer.
	All
	// Annotated wraps a member's schema in a nullable union exactly when
	// the Go field type is a pointer.
	Annotated
)

// MemberVisibility is a bit-set selecting which struct fields are exposed
// as record members. The record case always takes exported fields only (it
// skips every field whose StructField.PkgPath is non-empty) and does not
// consult this setting, so VisibilityExported is the default and only
// meaningful value;
// the type exists so a future visibility filter does not change Build's
// signature.
type MemberVisibility uint

const (
	VisibilityExported MemberVisibility = 1 << iota
)

// Config carries build-time tuning for the schema builder.
type Config struct {
	EnumBehavior                  EnumBehavior
	TemporalBehavior              TemporalBehavior
	NullableReferenceTypeBehavior NullableReferenceTypeBehavior
	MemberVisibility              MemberVisibility
}

func (c *Config) visibility() MemberVisibility {
	if c.MemberVisibility == 0 {
		return VisibilityExported
	}
	return c.MemberVisibility
}

// DataContract is Go's analogue of a type-level "data-contract marker":
// a type implementing it overrides its derived
// record name/namespace, and only fields bearing an explicit `avro:"name"`
// tag ("data-member marker") are included. Included fields with an `order`
// tag option come first, sorted by order then name; included fields without
// one follow in declaration order, not by name.
type DataContract interface {
	AvroName() (name, namespace string)
}

// Enum is the marker interface standing in for .NET's declared-enum
// reflection: a named integer type implements it to expose its ordered
// symbol set, since Go's reflect package cannot enumerate a type's possible
// values the way the CLR can.
type Enum interface {
	EnumSymbols() []string
}

// FlagEnum additionally marks an Enum as a bit-flag enum, which forces the
// Integral rendering regardless of Config.EnumBehavior.
type FlagEnum interface {
	Enum
	IsBitFlags() bool
}

var enumType = reflect.TypeOf((*Enum)(nil)).Elem()
var flagEnumType = reflect.TypeOf((*FlagEnum)(nil)).Elem()
var dataContractType = reflect.TypeOf((*DataContract)(nil)).Elem()

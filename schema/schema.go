// Package schema implements an in-memory Avro schema model: a closed,
// tagged-variant representation of every Avro type (primitive, complex,
// named, logical), with the construction-time invariants the Avro
// specification places on names, unions, enums and logical-type decorators.
package schema

import "regexp"

// nameRegexp is the Avro grammar for a name or namespace component:
// [A-Za-z_][A-Za-z0-9_]*
var nameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Kind identifies which variant of the Avro type system a Schema value is.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindArray
	KindMap
	KindUnion
	KindFixed
	KindEnum
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindFixed:
		return "fixed"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Schema is any node in the Avro type model. Implementations are value types
// (or pointers shared across subtrees) compared structurally by Equal.
//
// Named schemas (fixed, enum, record) are reference-identical: two Schema
// values constructed separately but sharing a full name are considered the
// same node only when one is literally a pointer to the other (a named
// back-reference resolved by the JSON reader, or deliberate sharing by the
// caller). Equal still compares them structurally as a fallback.
type Schema interface {
	// Kind reports which Avro variant this node is.
	Kind() Kind

	// Logical returns the logical-type decorator attached to this node, or
	// nil if none is attached.
	Logical() *LogicalType

	// SetLogical attaches (or clears, with nil) a logical-type decorator.
	// Returns an error if the decorator is structurally invalid for this
	// node's Kind (e.g. decimal on anything but bytes/fixed).
	SetLogical(*LogicalType) error

	// Equal reports whether two schemas are structurally equivalent.
	Equal(Schema) bool
}

// Name is a qualified Avro name: a dot-joined sequence of components, the
// last of which is the simple name and the rest of which form the
// namespace.
type Name struct {
	Simple    string
	Namespace string
}

// NewName validates and constructs a qualified name. namespace may be empty.
func NewName(simple, namespace string) (Name, error) {
	if !nameRegexp.MatchString(simple) {
		return Name{}, &InvalidNameError{Name: simple}
	}
	if namespace != "" {
		for _, part := range splitNamespace(namespace) {
			if !nameRegexp.MatchString(part) {
				return Name{}, &InvalidNameError{Name: namespace}
			}
		}
	}
	return Name{Simple: simple, Namespace: namespace}, nil
}

func splitNamespace(ns string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			parts = append(parts, ns[start:i])
			start = i + 1
		}
	}
	parts = append(parts, ns[start:])
	return parts
}

// Full returns the dot-joined fully qualified name.
func (n Name) Full() string {
	if n.Namespace == "" {
		return n.Simple
	}
	return n.Namespace + "." + n.Simple
}

func (n Name) String() string { return n.Full() }

// ValidateName reports whether s matches the Avro name grammar; it is
// exported so schemabuilder and codec can validate derived identifiers
// (record field names, enum symbols) without constructing a full Name.
func ValidateName(s string) error {
	if !nameRegexp.MatchString(s) {
		return &InvalidNameError{Name: s}
	}
	return nil
}

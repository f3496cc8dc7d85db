package schema

import "fmt"

// InvalidNameError reports a name or namespace component that does not match
// the Avro name grammar ([A-Za-z_][A-Za-z0-9_]*).
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("schema: invalid name %q", e.Name)
}

// InvalidSymbolError reports an enum symbol that does not match the name
// grammar.
type InvalidSymbolError struct {
	Symbol string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("schema: invalid enum symbol %q", e.Symbol)
}

// InvalidSchemaError reports a structural violation of a union, enum, fixed,
// or record schema (e.g. a union directly containing another union).
type InvalidSchemaError struct {
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("schema: invalid schema: %s", e.Reason)
}

// InvalidDecimalError reports an out-of-range decimal precision/scale pair.
type InvalidDecimalError struct {
	Precision int
	Scale     int
}

func (e *InvalidDecimalError) Error() string {
	return fmt.Sprintf("schema: invalid decimal(precision=%d, scale=%d)", e.Precision, e.Scale)
}

// UnknownNameError reports a bare-string schema reference that does not
// resolve against the name table built up so far.
type UnknownNameError struct {
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("schema: unknown name %q", e.Name)
}

package codec

import (
	"fmt"
	"reflect"

	"github.com/warpstreamlabs/avroregistry/schema"
)

// UnsupportedSchemaError reports that no codec case could build an
// encoder/decoder for a given schema node (e.g. a tombstone-incompatible
// union).
type UnsupportedSchemaError struct {
	Schema schema.Schema
	Reason string
}

func (e *UnsupportedSchemaError) Error() string {
	kind := "<nil>"
	if e.Schema != nil {
		kind = e.Schema.Kind().String()
	}
	return fmt.Sprintf("codec: unsupported schema (%s): %s", kind, e.Reason)
}

// UnsupportedTypeError reports that a host Go type has no codec case
// applicable to it, or cannot represent a schema's legal values.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("codec: unsupported type %s: %s", e.Type, e.Reason)
}

// InvalidEncodingError reports that wire data does not match the Avro
// binary encoding (or, from the registry package, the Confluent envelope).
type InvalidEncodingError struct {
	Offset int
	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("codec: invalid encoding at offset %d: %s", e.Offset, e.Reason)
}

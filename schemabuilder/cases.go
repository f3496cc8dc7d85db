package schemabuilder

import (
	"reflect"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// schemaCases lists the reflection cases in dispatch order; first match
// wins, and record is the unconditional catch-all.
//
// Three cases run earlier than their conceptual ordering would suggest,
// because Go's case pipeline dispatches on a type's underlying Kind rather than on
// a richer CLR-style runtime type tag: `enum` (marker-interface dispatch)
// must precede the plain integer/string cases it would otherwise be
// shadowed by (a named int-or-string-backed enum type has exactly that
// Kind), `time-only` must precede `integer` since time.Duration's Kind
// is itself a plain int64, and `uuid` must precede `byte-array` since
// uuid.UUID is a [16]byte array.
var schemaCases = []casepipe.Case[reflect.Type, schema.Schema, *buildState]{
	nullableWrapperCase,
	pointerToStructCase,
	boolCase,
	uuidCase,
	byteArrayCase,
	decimalCase,
	enumCase,
	timeOnlyCase,
	integerCase,
	floatCase,
	stringCase,
	dateOnlyCase,
	timestampCase,
	durationCase,
	enumerableCase,
	dictionaryCase,
	recordCase,
}

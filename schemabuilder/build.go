package schemabuilder

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/warpstreamlabs/avroregistry/internal/casepipe"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// FieldError reports that a specific struct field could not be built into a
// record member.
type FieldError struct {
	Struct string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("schemabuilder: field %s.%s: %s", e.Struct, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

type buildState struct {
	cfg  *Config
	memo *casepipe.Memo[reflect.Type, schema.Schema]
}

// Build derives a schema.Schema from t by running the ordered reflection
// cases. cfg may be nil, in which case the zero Config (Symbolic enums,
// Iso8601 temporals, no nullable-union wrapping) applies.
func Build(t reflect.Type, cfg *Config) (schema.Schema, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	bs := &buildState{cfg: cfg, memo: casepipe.NewMemo[reflect.Type, schema.Schema]()}
	return bs.build(t)
}

// BuildFor is a typed convenience wrapper over Build.
func BuildFor[T any](cfg *Config) (schema.Schema, error) {
	var zero T
	return Build(reflect.TypeOf(zero), cfg)
}

// build resolves t's schema, memoising by type identity so that a cyclic
// type (a record containing a slice of itself) terminates: the record case
// stores its in-progress *recordSchema in the memo before building any
// fields, so a recursive reference to the same type resolves to that same
// pointer rather than recursing forever.
func (bs *buildState) build(t reflect.Type) (schema.Schema, error) {
	if s, ok := bs.memo.Load(t); ok {
		return s, nil
	}
	s, err := getSchemaBuilder().Run(t, bs, t.String())
	if err != nil {
		return nil, err
	}
	bs.memo.Store(t, s)
	return s, nil
}

var (
	schemaBuilderOnce sync.Once
	schemaBuilderVal  *casepipe.Builder[reflect.Type, schema.Schema, *buildState]
)

// getSchemaBuilder lazily constructs the schema builder from schemaCases.
// Deferring construction to first use (rather than a package-level var)
// avoids an initialization cycle: schemaCases' case Build funcs close over
// buildState.build, which otherwise refers back to schemaCases itself.
func getSchemaBuilder() *casepipe.Builder[reflect.Type, schema.Schema, *buildState] {
	schemaBuilderOnce.Do(func() {
		schemaBuilderVal = casepipe.NewBuilder(schemaCases...)
	})
	return schemaBuilderVal
}

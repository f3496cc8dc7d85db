// Package registry implements the Confluent Schema Registry wire envelope
// (5-byte magic+id header over an Avro body) and a registry-backed codec
// cache: a schema-id-keyed cache for deserialisers and a subject-keyed
// cache for serialisers, each with at-most-one concurrent build per key,
// plus the tombstone (null-value) policy layered on top of a codec built
// by the codec package.
//
// The registry service itself (HTTP fetch, version listing, registration)
// is an external collaborator; Client is the black-box interface this
// package consumes, and HTTPClient is the one concrete adapter this module
// ships.
package registry

import "github.com/warpstreamlabs/avroregistry/schema"

// SchemaKind identifies the schema type a registry subject/version/id is
// registered under. Only Avro is supported by this package; any other kind
// reported by the registry is an UnsupportedSchemaError.
type SchemaKind string

const (
	KindAvro SchemaKind = "AVRO"
)

// SchemaInfo is what the registry reports for a single schema: its raw
// JSON text, its kind, and the id it is known by.
type SchemaInfo struct {
	Kind   SchemaKind
	Schema string
	ID     int32
}

// VersionInfo additionally carries the subject version a SchemaInfo was
// fetched under.
type VersionInfo struct {
	SchemaInfo
	Version int
}

// Client is the black-box Schema Registry client this package consumes,
// named by its five contract methods. A
// concrete implementation (HTTPClient, or a test double) satisfies this
// interface; this package never talks to a registry except through it.
type Client interface {
	// GetByID fetches the schema registered under a global id.
	GetByID(id int32) (SchemaInfo, error)

	// GetLatest fetches the latest registered version of subject.
	GetLatest(subject string) (VersionInfo, error)

	// GetVersion fetches a specific registered version of subject.
	GetVersion(subject string, version int) (SchemaInfo, error)

	// IDOf resolves the id a schema is already registered under for
	// subject, without registering a new one.
	IDOf(subject string, schemaJSON string) (int32, error)

	// Register registers schemaJSON under subject, returning its id
	// (creating a new version if the schema is not already registered).
	Register(subject string, schemaJSON string) (int32, error)
}

// parsedSchema bundles the outcome of fetching and parsing a registered
// schema, threaded through codec building and the tombstone check.
type parsedSchema struct {
	id  int32
	raw string
	s   schema.Schema
}

func parseRegistered(info SchemaInfo) (parsedSchema, error) {
	if info.Kind != KindAvro {
		return parsedSchema{}, &UnsupportedSchemaError{Reason: "registry reports schema kind " + string(info.Kind) + ", not AVRO"}
	}
	s, err := schema.Parse([]byte(info.Schema))
	if err != nil {
		return parsedSchema{}, &RegistryError{Message: "parsing registered schema", Cause: err}
	}
	return parsedSchema{id: info.ID, raw: info.Schema, s: s}, nil
}

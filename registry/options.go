package registry

import (
	"fmt"

	"github.com/warpstreamlabs/avroregistry/schemabuilder"
)

// RegisterAutomatically selects what CachedService does when asked to
// serialise for a subject that has no compatible registered schema yet.
type RegisterAutomatically int

const (
	// Never fetches only the latest already-registered schema for the
	// subject; the caller is responsible for registering one out of band.
	Never RegisterAutomatically = iota
	// Always derives a schema from the host type with schemabuilder and
	// registers it under the subject on every first-sight serialise.
	Always
)

// TombstoneBehavior selects how CachedService treats a null value/payload.
type TombstoneBehavior int

const (
	// None passes null straight through to the body codec.
	None TombstoneBehavior = iota
	// Strict gives value-component null payloads empty-body/host-default
	// semantics instead of delegating to the body codec.
	Strict
)

// SubjectNameBuilder derives a registry subject name from a topic and
// whether the component is the message key or value.
type SubjectNameBuilder func(topic string, isKey bool) string

// DefaultSubjectNameBuilder implements the "{topic}-{key|value}" default
// convention.
func DefaultSubjectNameBuilder(topic string, isKey bool) string {
	component := "value"
	if isKey {
		component = "key"
	}
	return fmt.Sprintf("%s-%s", topic, component)
}

// serviceConfig holds CachedService's functional-option state.
type serviceConfig struct {
	registerAutomatically RegisterAutomatically
	tombstone             TombstoneBehavior
	subjectName           SubjectNameBuilder
	logger                Logger
	schemaBuilderConfig   *schemabuilder.Config
	cacheSize             int
}

func defaultServiceConfig() *serviceConfig {
	return &serviceConfig{
		registerAutomatically: Never,
		tombstone:             None,
		subjectName:           DefaultSubjectNameBuilder,
		logger:                noopLogger{},
		schemaBuilderConfig:   &schemabuilder.Config{},
		cacheSize:             1024,
	}
}

// ServiceOption configures a CachedService at construction time.
type ServiceOption func(*serviceConfig)

// WithRegisterAutomatically sets the serialiser registration policy.
// Default Never.
func WithRegisterAutomatically(mode RegisterAutomatically) ServiceOption {
	return func(c *serviceConfig) { c.registerAutomatically = mode }
}

// WithTombstoneBehavior sets the null-value/null-payload policy. Default
// None.
func WithTombstoneBehavior(mode TombstoneBehavior) ServiceOption {
	return func(c *serviceConfig) { c.tombstone = mode }
}

// WithSubjectNameBuilder overrides the default "{topic}-{key|value}"
// subject naming convention.
func WithSubjectNameBuilder(b SubjectNameBuilder) ServiceOption {
	return func(c *serviceConfig) { c.subjectName = b }
}

// WithLogger installs a Logger for build/eviction/tombstone diagnostics.
// Default discards everything.
func WithLogger(l Logger) ServiceOption {
	return func(c *serviceConfig) { c.logger = l }
}

// WithSchemaBuilderConfig sets the schemabuilder.Config used when deriving
// a schema for automatic registration (RegisterAutomatically == Always).
func WithSchemaBuilderConfig(cfg *schemabuilder.Config) ServiceOption {
	return func(c *serviceConfig) { c.schemaBuilderConfig = cfg }
}

// WithCacheSize bounds the number of completed codec entries held per
// cache (by-id and by-subject each get their own LRU of this size).
// Default 1024.
func WithCacheSize(n int) ServiceOption {
	return func(c *serviceConfig) { c.cacheSize = n }
}

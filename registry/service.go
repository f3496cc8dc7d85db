package registry

import (
	"fmt"
	"reflect"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/warpstreamlabs/avroregistry/codec"
	"github.com/warpstreamlabs/avroregistry/schema"
	"github.com/warpstreamlabs/avroregistry/schemabuilder"
)

// codecEntry is one completed build result: the Confluent-framed
// encode/decode pair plus whatever the tombstone policy needs to answer an
// is_null deserialise without touching the body codec.
type codecEntry struct {
	id           int32
	schema       schema.Schema
	envEncode    EncodeFunc
	envDecode    DecodeFunc
	defaultValue any
}

// CachedService is a schema-id-keyed cache for deserialisers and a
// subject-keyed cache for serialisers, each with at-most-one concurrent
// build per key (golang.org/x/sync/singleflight) and a bounded LRU home
// for completed results (github.com/hashicorp/golang-lru/v2). Once an entry
// exists, lookups are served from the LRU without entering singleflight;
// they are not lock-free, since each LRU Get takes the cache's internal
// mutex.
type CachedService struct {
	client Client
	cfg    *serviceConfig

	byID    *lru.Cache[int32, *codecEntry]
	idGroup singleflight.Group

	bySubject *lru.Cache[string, *codecEntry]
	subjGroup singleflight.Group
}

// NewCachedService constructs a CachedService around client.
func NewCachedService(client Client, opts ...ServiceOption) (*CachedService, error) {
	cfg := defaultServiceConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	byID, err := lru.New[int32, *codecEntry](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("registry: constructing id cache: %w", err)
	}
	bySubject, err := lru.New[string, *codecEntry](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("registry: constructing subject cache: %w", err)
	}

	return &CachedService{
		client:    client,
		cfg:       cfg,
		byID:      byID,
		bySubject: bySubject,
	}, nil
}

// Deserialize decodes a Confluent-framed payload, building (and caching,
// single-flighted) a deserialiser for its embedded schema id on first
// sight. t is the target host type (nil selects Avro's native
// representation). isKey selects tombstone key-vs-value semantics: under
// Strict mode, a zero-length body for the value component is
// treated as a tombstone and decodes to t's zero value without touching
// the body codec.
func (s *CachedService) Deserialize(data []byte, t reflect.Type, isKey bool) (any, error) {
	id, body, err := splitHeader(data)
	if err != nil {
		return nil, err
	}

	entry, err := s.buildByID(id, t, isKey)
	if err != nil {
		return nil, err
	}

	if s.cfg.tombstone == Strict && !isKey && len(body) == 0 {
		s.cfg.logger.Debugf("registry: tombstone value payload for schema id %d, returning host default", id)
		return entry.defaultValue, nil
	}
	return entry.envDecode(data)
}

// Serialize encodes v under the subject resolved from topic and isKey by
// the configured SubjectNameBuilder, building (and caching) a serialiser
// for that subject on first sight per the configured
// RegisterAutomatically policy.
func (s *CachedService) Serialize(topic string, v any, isKey bool) ([]byte, error) {
	subject := s.cfg.subjectName(topic, isKey)
	return s.serializeFor(subject, v, isKey, func() (parsedSchema, error) {
		return s.resolveSubjectSchema(subject, reflect.TypeOf(v))
	})
}

// SerializeVersion encodes v under a specific, already-registered
// (subject, version), resolving its id via the registry rather than going
// through RegisterAutomatically.
func (s *CachedService) SerializeVersion(subject string, version int, v any) ([]byte, error) {
	key := subject + "@" + strconv.Itoa(version)
	return s.serializeFor(key, v, false, func() (parsedSchema, error) {
		info, err := s.client.GetVersion(subject, version)
		if err != nil {
			return parsedSchema{}, &RegistryError{Message: fmt.Sprintf("fetching subject %s version %d", subject, version), Cause: err}
		}
		return parseRegistered(info)
	})
}

func (s *CachedService) serializeFor(cacheKey string, v any, isKey bool, resolve func() (parsedSchema, error)) ([]byte, error) {
	t := reflect.TypeOf(v)
	entry, err := s.buildBySubject(cacheKey, t, isKey, resolve)
	if err != nil {
		return nil, err
	}
	return entry.envEncode(v)
}

func (s *CachedService) resolveSubjectSchema(subject string, t reflect.Type) (parsedSchema, error) {
	if s.cfg.registerAutomatically == Always {
		derived, err := schemabuilder.Build(t, s.cfg.schemaBuilderConfig)
		if err != nil {
			return parsedSchema{}, err
		}
		raw, err := schema.Write(derived)
		if err != nil {
			return parsedSchema{}, fmt.Errorf("registry: writing derived schema for subject %s: %w", subject, err)
		}
		id, err := s.client.Register(subject, string(raw))
		if err != nil {
			return parsedSchema{}, &RegistryError{Message: fmt.Sprintf("registering schema for subject %s", subject), Cause: err}
		}
		return parsedSchema{id: id, raw: string(raw), s: derived}, nil
	}

	info, err := s.client.GetLatest(subject)
	if err != nil {
		return parsedSchema{}, &RegistryError{Message: fmt.Sprintf("fetching latest schema for subject %s", subject), Cause: err}
	}
	return parseRegistered(info.SchemaInfo)
}

// buildByID is the deserialiser half of the single-flight build:
// at most one registry fetch + codec compilation per id under concurrent
// access. A failed build is never inserted into byID, so the next caller
// retries rather than replaying the fault (singleflight.Group itself
// already de-dupes only the callers that were concurrent with the failing
// attempt; once Do returns, the key is gone from the group).
func (s *CachedService) buildByID(id int32, t reflect.Type, isKey bool) (*codecEntry, error) {
	if entry, ok := s.byID.Get(id); ok {
		return entry, nil
	}

	key := strconv.FormatInt(int64(id), 10)
	v, err, _ := s.idGroup.Do(key, func() (any, error) {
		if entry, ok := s.byID.Get(id); ok {
			return entry, nil
		}

		info, err := s.client.GetByID(id)
		if err != nil {
			return nil, &RegistryError{Message: fmt.Sprintf("fetching schema id %d", id), Cause: err}
		}
		ps, err := parseRegistered(info)
		if err != nil {
			return nil, err
		}

		entry, err := s.buildEntry(ps, t, isKey)
		if err != nil {
			return nil, err
		}
		s.byID.Add(id, entry)
		s.cfg.logger.Debugf("registry: built deserialiser for schema id %d", id)
		return entry, nil
	})
	if err != nil {
		s.cfg.logger.Errorf("registry: build failed for schema id %d: %v", id, err)
		return nil, err
	}
	return v.(*codecEntry), nil
}

// buildBySubject is the serialiser half of the single-flight build,
// parameterised over resolve so Serialize (RegisterAutomatically-driven)
// and SerializeVersion (fixed version) share the same cache/build
// machinery under distinct cache keys.
func (s *CachedService) buildBySubject(cacheKey string, t reflect.Type, isKey bool, resolve func() (parsedSchema, error)) (*codecEntry, error) {
	if entry, ok := s.bySubject.Get(cacheKey); ok {
		return entry, nil
	}

	v, err, _ := s.subjGroup.Do(cacheKey, func() (any, error) {
		if entry, ok := s.bySubject.Get(cacheKey); ok {
			return entry, nil
		}

		ps, err := resolve()
		if err != nil {
			return nil, err
		}

		entry, err := s.buildEntry(ps, t, isKey)
		if err != nil {
			return nil, err
		}
		s.bySubject.Add(cacheKey, entry)
		s.cfg.logger.Debugf("registry: built serialiser for subject key %s", cacheKey)
		return entry, nil
	})
	if err != nil {
		s.cfg.logger.Errorf("registry: build failed for subject key %s: %v", cacheKey, err)
		return nil, err
	}
	return v.(*codecEntry), nil
}

func (s *CachedService) buildEntry(ps parsedSchema, t reflect.Type, isKey bool) (*codecEntry, error) {
	if err := validateTombstone(s.cfg.tombstone, isKey, ps.s, t); err != nil {
		return nil, err
	}

	bodyEncode, err := codec.BuildEncoder(ps.s, t, nil)
	if err != nil {
		return nil, err
	}
	bodyDecode, err := codec.BuildDecoder(ps.s, t, nil)
	if err != nil {
		return nil, err
	}
	bodyEncode = wrapTombstoneEncode(s.cfg.tombstone, isKey, bodyEncode)

	envEncode, envDecode := WrapEnvelope(ps.id, bodyEncode, bodyDecode, ps.s)
	return &codecEntry{
		id:           ps.id,
		schema:       ps.s,
		envEncode:    envEncode,
		envDecode:    envDecode,
		defaultValue: zeroOf(t),
	}, nil
}

func zeroOf(t reflect.Type) any {
	if t == nil {
		return nil
	}
	return reflect.Zero(t).Interface()
}

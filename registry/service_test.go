package registry

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpstreamlabs/avroregistry/codec"
	"github.com/warpstreamlabs/avroregistry/registry/registrytest"
	"github.com/warpstreamlabs/avroregistry/schema"
)

func TestCachedServiceRoundTrip(t *testing.T) {
	client := registrytest.NewFakeClient()
	id := client.Seed("widgets-value", `{"type":"long"}`)

	svc, err := NewCachedService(client)
	require.NoError(t, err)

	wire, err := svc.SerializeVersion("widgets-value", 1, int64(42))
	require.NoError(t, err)

	got, err := svc.Deserialize(wire, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, byte(id)}, wire[:5])
}

func TestCachedServiceRegisterAutomatically(t *testing.T) {
	client := registrytest.NewFakeClient()
	svc, err := NewCachedService(client, WithRegisterAutomatically(Always))
	require.NoError(t, err)

	wire, err := svc.Serialize("widgets", int64(7), false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), client.GetLatestCallCount(), "Always never consults GetLatest")

	got, err := svc.Deserialize(wire, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

// TestSingleFlightBuild verifies the single-flight build property: two concurrent
// deserialisations of an unseen id trigger exactly one registry fetch, both
// decode the payload, and a later call is served from the cache without
// another fetch.
func TestSingleFlightBuild(t *testing.T) {
	client := registrytest.NewFakeClient()
	id := client.Seed("k-value", `{"type":"long"}`)

	var waiters sync.WaitGroup
	waiters.Add(1)
	release := make(chan struct{})
	var entered int32
	client.Before = func() {
		if atomic.AddInt32(&entered, 1) == 1 {
			waiters.Done()
			<-release
		}
	}

	svc, err := NewCachedService(client)
	require.NoError(t, err)

	wire := longEnvelope(t, id, int64(99))

	var wg sync.WaitGroup
	results := make([]any, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Deserialize(wire, nil, false)
		}(i)
	}

	// Wait until the first caller has entered the registry fetch before
	// releasing it, so both calls are genuinely concurrent on the same key.
	waitWithTimeout(t, &waiters)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(99), results[0])
	assert.Equal(t, int64(99), results[1])
	assert.Equal(t, int64(1), client.GetByIDCallCount())

	// A third, later call hits the now-populated cache rather than the
	// registry again.
	_, err = svc.Deserialize(wire, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), client.GetByIDCallCount())
}

func TestTombstoneStrictValueDefault(t *testing.T) {
	client := registrytest.NewFakeClient()
	id := client.Seed("t-value", `{"type":"long"}`)

	svc, err := NewCachedService(client, WithTombstoneBehavior(Strict))
	require.NoError(t, err)

	// A header-only, zero-length-body payload is the tombstone signal. The
	// host type is left as Avro's native any representation, so the
	// returned default is a bare nil rather than a typed zero value.
	wire := headerOnly(id)

	got, err := svc.Deserialize(wire, nil, false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTombstoneStrictRejectsNullableSchema(t *testing.T) {
	client := registrytest.NewFakeClient()
	client.Seed("u-value", `["null","long"]`)

	svc, err := NewCachedService(client, WithTombstoneBehavior(Strict))
	require.NoError(t, err)

	_, err = svc.SerializeVersion("u-value", 1, int64(1))
	require.Error(t, err)
	var use *UnsupportedSchemaError
	require.ErrorAs(t, err, &use)
}

// longEnvelope builds a Confluent-framed long payload for id without going
// through a registry.Client, so tests can construct fixtures independently
// of whatever client backs the CachedService under test.
func longEnvelope(t *testing.T, id int32, v int64) []byte {
	t.Helper()
	s := schema.NewLong()
	enc, err := codec.BuildEncoder(s, nil, nil)
	require.NoError(t, err)
	dec, err := codec.BuildDecoder(s, nil, nil)
	require.NoError(t, err)
	envEnc, _ := WrapEnvelope(id, enc, dec, s)
	wire, err := envEnc(v)
	require.NoError(t, err)
	return wire
}

func headerOnly(id int32) []byte {
	header := make([]byte, headerLen)
	header[0] = magicByte
	binary.BigEndian.PutUint32(header[1:], uint32(id))
	return header
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for concurrent deserialise calls to start")
	}
}

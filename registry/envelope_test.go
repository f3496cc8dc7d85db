package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpstreamlabs/avroregistry/codec"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// TestWireHeaderScenario verifies a documented wire-format scenario: encoding int 42
// under schema {"type":"int"} with id 120 produces 00 00 00 00 78 54, and
// decoding those bytes back returns 42.
func TestWireHeaderScenario(t *testing.T) {
	s := schema.NewInt()
	enc, err := codec.BuildEncoder(s, nil, nil)
	require.NoError(t, err)
	dec, err := codec.BuildDecoder(s, nil, nil)
	require.NoError(t, err)

	envEnc, envDec := WrapEnvelope(120, enc, dec, s)

	wire, err := envEnc(int64(42))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x78, 0x54}, wire)

	got, err := envDec(wire)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

// TestUnionNullFirstScenario verifies another documented scenario: ["null","string"]
// with value "hi" encodes to 02 04 68 69 for the body, and a null value
// encodes to 00.
func TestUnionNullFirstScenario(t *testing.T) {
	u := schema.NewUnion()
	require.NoError(t, u.AddMember(schema.NewNull()))
	require.NoError(t, u.AddMember(schema.NewString()))

	enc, err := codec.BuildEncoder(u, reflect.TypeOf((*string)(nil)).Elem(), nil)
	require.NoError(t, err)

	w := codec.NewWriter()
	require.NoError(t, enc(w, "hi"))
	assert.Equal(t, []byte{0x02, 0x04, 0x68, 0x69}, w.Bytes())

	w2 := codec.NewWriter()
	require.NoError(t, enc(w2, nil))
	assert.Equal(t, []byte{0x00}, w2.Bytes())
}

// TestBytesEnvelopeFixupScenario verifies the bytes fix-up scenario: a top-level
// bytes schema under id 7 writes the value with no inner length prefix.
func TestBytesEnvelopeFixupScenario(t *testing.T) {
	s := schema.NewBytes()
	enc, err := codec.BuildEncoder(s, nil, nil)
	require.NoError(t, err)
	dec, err := codec.BuildDecoder(s, nil, nil)
	require.NoError(t, err)

	envEnc, envDec := WrapEnvelope(7, enc, dec, s)

	value := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	wire, err := envEnc(value)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x07, 0xDE, 0xAD, 0xBE, 0xEF}, wire)

	got, err := envDec(wire)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestWrapEnvelopeRejectsShortHeader(t *testing.T) {
	s := schema.NewInt()
	enc, _ := codec.BuildEncoder(s, nil, nil)
	dec, _ := codec.BuildDecoder(s, nil, nil)
	_, envDec := WrapEnvelope(1, enc, dec, s)

	_, err := envDec([]byte{0x00, 0x00})
	require.Error(t, err)
	var ie *InvalidEncodingError
	require.ErrorAs(t, err, &ie)
}

func TestWrapEnvelopeRejectsBadMagicByte(t *testing.T) {
	s := schema.NewInt()
	enc, _ := codec.BuildEncoder(s, nil, nil)
	dec, _ := codec.BuildDecoder(s, nil, nil)
	_, envDec := WrapEnvelope(1, enc, dec, s)

	_, err := envDec([]byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x02})
	require.Error(t, err)
}

func TestWrapEnvelopeRejectsIDMismatch(t *testing.T) {
	s := schema.NewInt()
	enc, _ := codec.BuildEncoder(s, nil, nil)
	dec, _ := codec.BuildDecoder(s, nil, nil)
	envEnc, _ := WrapEnvelope(1, enc, dec, s)
	_, otherDec := WrapEnvelope(2, enc, dec, s)

	wire, err := envEnc(int64(5))
	require.NoError(t, err)

	_, err = otherDec(wire)
	require.Error(t, err)
}

func TestWrapEnvelopeDynamicIgnoresID(t *testing.T) {
	s := schema.NewInt()
	enc, _ := codec.BuildEncoder(s, nil, nil)
	dec, _ := codec.BuildDecoder(s, nil, nil)
	envEnc, _ := WrapEnvelope(1, enc, dec, s)
	_, dynDec := WrapEnvelopeDynamic(2, enc, dec, s)

	wire, err := envEnc(int64(5))
	require.NoError(t, err)

	got, err := dynDec(wire)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

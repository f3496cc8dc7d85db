package registry

import (
	"encoding/binary"

	"github.com/warpstreamlabs/avroregistry/codec"
	"github.com/warpstreamlabs/avroregistry/schema"
)

// headerLen is the Confluent wire envelope's fixed prefix: 1 magic byte
// plus a 4-byte big-endian schema id.
const headerLen = 5

const magicByte = 0x00

// EncodeFunc serialises a Go value to the full Confluent-framed wire
// representation: 5-byte header followed by the Avro body.
type EncodeFunc func(v any) ([]byte, error)

// DecodeFunc deserialises a Confluent-framed payload, asserting the magic
// byte and (when built by WrapEnvelope for a fixed id) the schema id.
type DecodeFunc func(data []byte) (any, error)

// WrapEnvelope composes the Confluent 5-byte header around a body codec
// built by the codec package for id, applying the bytes-schema fix-up:
// when topLevel is a bare bytes schema, the body is framed
// as the raw remainder of the message instead of Avro's ordinary
// length-prefixed bytes encoding.
//
// The returned DecodeFunc enforces framing validation: it requires the
// embedded id to equal id exactly — a deserialiser built
// for id i asserts that the received id equals i. WrapEnvelopeDynamic
// below is the unchecked variant used when the id legitimately varies
// per-message.
func WrapEnvelope(id int32, bodyEncode codec.EncodeFunc, bodyDecode codec.DecodeFunc, topLevel schema.Schema) (EncodeFunc, DecodeFunc) {
	enc, rawDecode := envelopeCodecs(id, bodyEncode, bodyDecode, topLevel)
	dec := func(data []byte) (any, error) {
		gotID, body, err := splitHeader(data)
		if err != nil {
			return nil, err
		}
		if gotID != id {
			return nil, &InvalidEncodingError{Reason: "schema id mismatch"}
		}
		return rawDecode(body)
	}
	return enc, dec
}

// WrapEnvelopeDynamic is the id-agnostic counterpart of WrapEnvelope, for a
// caller that resolves a codec by whatever id the message actually carries
// rather than asserting one up front. The returned DecodeFunc does not
// check the embedded id. CachedService itself uses WrapEnvelope.
func WrapEnvelopeDynamic(id int32, bodyEncode codec.EncodeFunc, bodyDecode codec.DecodeFunc, topLevel schema.Schema) (EncodeFunc, DecodeFunc) {
	enc, rawDecode := envelopeCodecs(id, bodyEncode, bodyDecode, topLevel)
	dec := func(data []byte) (any, error) {
		_, body, err := splitHeader(data)
		if err != nil {
			return nil, err
		}
		return rawDecode(body)
	}
	return enc, dec
}

func envelopeCodecs(id int32, bodyEncode codec.EncodeFunc, bodyDecode codec.DecodeFunc, topLevel schema.Schema) (EncodeFunc, func([]byte) (any, error)) {
	rawBytes := topLevel != nil && topLevel.Kind() == schema.KindBytes
	bodyEnc := bodyEncode
	if rawBytes {
		bodyEnc = codec.RawBytesEncoder(topLevel)
	}
	bodyDec := bodyDecode
	if rawBytes {
		bodyDec = codec.RawBytesDecoder(topLevel)
	}

	enc := func(v any) ([]byte, error) {
		w := codec.NewWriter()
		var header [headerLen]byte
		header[0] = magicByte
		binary.BigEndian.PutUint32(header[1:], uint32(id))
		w.WriteFixed(header[:])
		if err := bodyEnc(w, v); err != nil {
			return nil, err
		}
		return w.Bytes(), nil
	}
	dec := func(body []byte) (any, error) {
		return bodyDec(codec.NewReader(body))
	}
	return enc, dec
}

// splitHeader validates the 5-byte Confluent header and returns the
// embedded id and the remaining Avro body: it requires at least 5 bytes,
// asserts byte[0] == 0x00, else InvalidEncoding("header"), then parses id.
func splitHeader(data []byte) (id int32, body []byte, err error) {
	if len(data) < headerLen {
		return 0, nil, &InvalidEncodingError{Reason: "header"}
	}
	if data[0] != magicByte {
		return 0, nil, &InvalidEncodingError{Reason: "header"}
	}
	id = int32(binary.BigEndian.Uint32(data[1:headerLen]))
	return id, data[headerLen:], nil
}

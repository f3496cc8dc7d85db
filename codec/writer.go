package codec

import (
	"bytes"
	"math"
)

// Writer accumulates an Avro binary encoding. It is not safe for concurrent
// use by multiple goroutines (a single encode call owns one Writer), though
// the EncodeFunc values that write to it are themselves safe to call
// concurrently with independent Writers — built codecs are pure,
// thread-safe, and reusable.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter constructs an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// WriteBoolean writes a single 0x00/0x01 byte.
func (w *Writer) WriteBoolean(b bool) {
	if b {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteLong writes n as a zig-zag varint (also used for Avro's "int").
func (w *Writer) WriteLong(n int64) {
	var scratch [10]byte
	w.buf.Write(writeVarint(scratch[:0], zigZagEncode64(n)))
}

// WriteFloat writes a 4-byte little-endian IEEE-754 single.
func (w *Writer) WriteFloat(f float32) {
	var b [4]byte
	bits := math.Float32bits(f)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
	w.buf.Write(b[:])
}

// WriteDouble writes an 8-byte little-endian IEEE-754 double.
func (w *Writer) WriteDouble(f float64) {
	var b [8]byte
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
	w.buf.Write(b[:])
}

// WriteBytes writes a long length prefix followed by the raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteLong(int64(len(b)))
	w.buf.Write(b)
}

// WriteString writes a long length prefix followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteFixed writes exactly len(b) raw bytes, with no framing.
func (w *Writer) WriteFixed(b []byte) {
	w.buf.Write(b)
}

// WriteRaw writes b verbatim with no framing at all; used by the
// Confluent bytes-schema fix-up where the top-level bytes
// value is the rest of the frame rather than length-prefixed.
func (w *Writer) WriteRaw(b []byte) {
	w.buf.Write(b)
}

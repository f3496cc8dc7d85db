package codec

import "github.com/warpstreamlabs/avroregistry/schema"

// RawBytesEncoder returns an EncodeFunc for a top-level bytes schema s that
// writes v's content with no length prefix. The Confluent wire envelope
// treats a top-level bytes value as the rest of the frame rather than the
// canonical Avro length-prefixed encoding; this is the
// encode half of that fix-up, reusing the same decimal-over-bytes
// conversion the ordinary bytes case uses and swapping WriteBytes for
// WriteRaw.
func RawBytesEncoder(s schema.Schema) EncodeFunc {
	if lt := s.Logical(); lt != nil && lt.Kind == schema.LogicalDecimal {
		return func(w *Writer, v any) error {
			n, err := decimalUnscaled(v, lt)
			if err != nil {
				return err
			}
			w.WriteRaw(twosComplementBytes(n))
			return nil
		}
	}
	return func(w *Writer, v any) error {
		b, err := toByteSlice(v)
		if err != nil {
			return err
		}
		w.WriteRaw(b)
		return nil
	}
}

// RawBytesDecoder returns a DecodeFunc that consumes the rest of the
// reader's buffer with no length prefix, the decode half of the
// bytes-schema fix-up described by RawBytesEncoder.
func RawBytesDecoder(s schema.Schema) DecodeFunc {
	if lt := s.Logical(); lt != nil && lt.Kind == schema.LogicalDecimal {
		return func(r *Reader) (any, error) {
			b := r.Remaining()
			return decimalFromUnscaledBytes(b, lt), nil
		}
	}
	return func(r *Reader) (any, error) {
		return r.Remaining(), nil
	}
}

package codec

import (
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/period"
	"github.com/shopspring/decimal"

	"github.com/warpstreamlabs/avroregistry/schema"
)

//------------------------------------------------------------------------------
// uuid (logical type over string)

func encodeUUID(w *Writer, v any) error {
	switch id := v.(type) {
	case uuid.UUID:
		w.WriteString(id.String())
		return nil
	case string:
		if _, err := uuid.Parse(id); err != nil {
			return &UnsupportedTypeError{Reason: "not a valid uuid string: " + err.Error()}
		}
		w.WriteString(id)
		return nil
	default:
		return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as a uuid", v)}
	}
}

func decodeUUID(r *Reader) (any, error) {
	s, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, &InvalidEncodingError{Reason: "invalid uuid string: " + err.Error()}
	}
	return id, nil
}

//------------------------------------------------------------------------------
// duration/time-span (plain string carrying an ISO-8601 period — not an
// Avro logical type)

func encodePeriod(w *Writer, v any) error {
	p, ok := v.(period.Period)
	if !ok {
		return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as an ISO-8601 period", v)}
	}
	w.WriteString(p.String())
	return nil
}

func decodePeriod(r *Reader) (any, error) {
	s, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	p, err := period.Parse(s)
	if err != nil {
		return nil, &InvalidEncodingError{Reason: "invalid ISO-8601 period: " + err.Error()}
	}
	return p, nil
}

//------------------------------------------------------------------------------
// decimal (logical type over bytes or fixed)

// decimalUnscaled converts v (which must be a shopspring/decimal.Decimal;
// any other type is an UnsupportedTypeError) into the unscaled big.Int
// implied by lt.Scale.
func decimalUnscaled(v any, lt *schema.LogicalType) (*big.Int, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as a decimal", v)}
	}
	// decimal.Decimal's rescale-to-exponent method is unexported, so
	// reproduce its coefficient adjustment (same diff/Quo/Mul logic) via
	// the public Exponent/Coefficient accessors.
	targetExp := int64(-lt.Scale)
	exp := int64(d.Exponent())
	coeff := new(big.Int).Set(d.Coefficient())
	if targetExp == exp {
		return coeff, nil
	}
	diff := new(big.Int).Exp(big.NewInt(10), big.NewInt(absInt64(targetExp-exp)), nil)
	if targetExp > exp {
		coeff.Quo(coeff, diff)
	} else {
		coeff.Mul(coeff, diff)
	}
	return coeff, nil
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// twosComplementBytes renders n as a minimal-length big-endian two's
// complement byte slice, matching Avro's decimal-over-bytes representation.
func twosComplementBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// Negative: two's complement of the smallest byte width that fits.
	bitLen := new(big.Int).Sub(new(big.Int).Neg(n), big.NewInt(1)).BitLen()
	nBytes := bitLen/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
	twos := new(big.Int).Add(mod, n)
	b := twos.Bytes()
	for len(b) < nBytes {
		b = append([]byte{0xff}, b...)
	}
	return b
}

func bytesToUnscaled(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		n.Sub(n, mod)
	}
	return n
}

func encodeDecimalBytes(lt *schema.LogicalType) EncodeFunc {
	return func(w *Writer, v any) error {
		n, err := decimalUnscaled(v, lt)
		if err != nil {
			return err
		}
		w.WriteBytes(twosComplementBytes(n))
		return nil
	}
}

func decodeDecimalBytes(lt *schema.LogicalType) DecodeFunc {
	return func(r *Reader) (any, error) {
		b, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return decimalFromUnscaledBytes(b, lt), nil
	}
}

// decimalFromUnscaledBytes is shared by the ordinary length-prefixed bytes
// decimal case and RawBytesDecoder's unprefixed envelope fix-up.
func decimalFromUnscaledBytes(b []byte, lt *schema.LogicalType) decimal.Decimal {
	return decimal.NewFromBigInt(bytesToUnscaled(b), -int32(lt.Scale))
}

func encodeDecimalFixed(lt *schema.LogicalType, size int) EncodeFunc {
	return func(w *Writer, v any) error {
		n, err := decimalUnscaled(v, lt)
		if err != nil {
			return err
		}
		b := twosComplementBytes(n)
		if len(b) > size {
			return &UnsupportedTypeError{Reason: fmt.Sprintf("decimal value does not fit in fixed(%d)", size)}
		}
		pad := byte(0)
		if n.Sign() < 0 {
			pad = 0xff
		}
		padded := make([]byte, size)
		for i := range padded {
			padded[i] = pad
		}
		copy(padded[size-len(b):], b)
		w.WriteFixed(padded)
		return nil
	}
}

func decodeDecimalFixed(lt *schema.LogicalType, size int) DecodeFunc {
	return func(r *Reader) (any, error) {
		b, err := r.ReadFixed(size)
		if err != nil {
			return nil, err
		}
		return decimal.NewFromBigInt(bytesToUnscaled(b), -int32(lt.Scale)), nil
	}
}

//------------------------------------------------------------------------------
// date / time-millis / time-micros / timestamp-millis / timestamp-micros
// (logical types over int/long)

var timeTimeType = reflect.TypeOf(time.Time{})
var durationType = reflect.TypeOf(time.Duration(0))

// asTime accepts time.Time or any named type convertible to it (e.g. a
// schemabuilder "date-only" type defined as `type DateOnly time.Time`),
// since schemabuilder's case 9 distinguishes date-only fields by Go type
// identity rather than by a codec-visible marker.
func asTime(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Type().ConvertibleTo(timeTimeType) {
		return rv.Convert(timeTimeType).Interface().(time.Time), nil
	}
	return time.Time{}, &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as a time.Time", v)}
}

func asDuration(v any) (time.Duration, error) {
	if d, ok := v.(time.Duration); ok {
		return d, nil
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Type().ConvertibleTo(durationType) {
		return rv.Convert(durationType).Interface().(time.Duration), nil
	}
	return 0, &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as a time.Duration", v)}
}

func encodeDate(w *Writer, v any) error {
	t, err := asTime(v)
	if err != nil {
		return err
	}
	y, m, d := t.UTC().Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	w.WriteLong(days)
	return nil
}

func decodeDate(r *Reader) (any, error) {
	days, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	return epoch.AddDate(0, 0, int(days)), nil
}

func encodeTimeMillis(w *Writer, v any) error {
	d, err := asDuration(v)
	if err != nil {
		return err
	}
	w.WriteLong(int64(d / time.Millisecond))
	return nil
}

func decodeTimeMillis(r *Reader) (any, error) {
	ms, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func encodeTimeMicros(w *Writer, v any) error {
	d, err := asDuration(v)
	if err != nil {
		return err
	}
	w.WriteLong(int64(d / time.Microsecond))
	return nil
}

func decodeTimeMicros(r *Reader) (any, error) {
	us, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	return time.Duration(us) * time.Microsecond, nil
}

func encodeTimestampMillis(w *Writer, v any) error {
	t, err := asTime(v)
	if err != nil {
		return err
	}
	w.WriteLong(t.UnixMilli())
	return nil
}

func decodeTimestampMillis(r *Reader) (any, error) {
	ms, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func encodeTimestampMicros(w *Writer, v any) error {
	t, err := asTime(v)
	if err != nil {
		return err
	}
	w.WriteLong(t.UnixMicro())
	return nil
}

func decodeTimestampMicros(r *Reader) (any, error) {
	us, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	return time.UnixMicro(us).UTC(), nil
}

//------------------------------------------------------------------------------
// duration logical type (over fixed(12): three little-endian uint32s —
// months, days, milliseconds)

// Duration is the natural Go representation of Avro's fixed(12)-backed
// duration logical type. It is
// distinct from period.Period, which backs the schemabuilder's unrelated
// "duration/time-span -> string" convention (case 12 of §4.4).
type Duration struct {
	Months       uint32
	Days         uint32
	Milliseconds uint32
}

func encodeFixedDuration(w *Writer, v any) error {
	d, ok := v.(Duration)
	if !ok {
		return &UnsupportedTypeError{Reason: fmt.Sprintf("cannot encode %T as a duration", v)}
	}
	var b [12]byte
	putUint32LE(b[0:4], d.Months)
	putUint32LE(b[4:8], d.Days)
	putUint32LE(b[8:12], d.Milliseconds)
	w.WriteFixed(b[:])
	return nil
}

func decodeFixedDuration(r *Reader) (any, error) {
	b, err := r.ReadFixed(12)
	if err != nil {
		return nil, err
	}
	return Duration{
		Months:       getUint32LE(b[0:4]),
		Days:         getUint32LE(b[4:8]),
		Milliseconds: getUint32LE(b[8:12]),
	}, nil
}

func putUint32LE(b []byte, n uint32) {
	b[0] = byte(n)
	b[1] = byte(n >> 8)
	b[2] = byte(n >> 16)
	b[3] = byte(n >> 24)
}

func getUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

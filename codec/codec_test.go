package codec

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/period"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpstreamlabs/avroregistry/schema"
)

func roundTrip(t *testing.T, s schema.Schema, typ reflect.Type, v any) any {
	t.Helper()
	enc, err := BuildEncoder(s, typ, nil)
	require.NoError(t, err)
	w := NewWriter()
	require.NoError(t, enc(w, v))

	dec, err := BuildDecoder(s, typ, nil)
	require.NoError(t, err)
	r := NewReader(w.Bytes())
	got, err := dec(r)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len(), "decoder should consume the entire encoding")
	return got
}

func TestPrimitiveRoundTrips(t *testing.T) {
	assert.Equal(t, true, roundTrip(t, schema.NewBoolean(), nil, true))
	assert.Equal(t, int64(-12345), roundTrip(t, schema.NewLong(), nil, int64(-12345)))
	assert.Equal(t, float32(1.5), roundTrip(t, schema.NewFloat(), nil, float32(1.5)))
	assert.Equal(t, 2.71828, roundTrip(t, schema.NewDouble(), nil, 2.71828))
	assert.Equal(t, []byte{1, 2, 3}, roundTrip(t, schema.NewBytes(), nil, []byte{1, 2, 3}))
	assert.Equal(t, "hello", roundTrip(t, schema.NewString(), nil, "hello"))
}

func TestVarintZigZagBoundaries(t *testing.T) {
	for _, n := range []int64{0, -1, 1, 2147483647, -2147483648, 9223372036854775807, -9223372036854775808} {
		w := NewWriter()
		w.WriteLong(n)
		r := NewReader(w.Bytes())
		got, err := r.ReadLong()
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	s := schema.NewArray(schema.NewLong())
	got := roundTrip(t, s, reflect.TypeOf([]int64{}), []int64{1, 2, 3})
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestArrayEmptyRoundTrip(t *testing.T) {
	s := schema.NewArray(schema.NewString())
	got := roundTrip(t, s, reflect.TypeOf([]string{}), []string{})
	assert.Equal(t, []string{}, got)
}

func TestArrayNegativeBlockCount(t *testing.T) {
	s := schema.NewArray(schema.NewInt())
	dec, err := BuildDecoder(s, nil, nil)
	require.NoError(t, err)

	w := NewWriter()
	w.WriteLong(-2) // negative count...
	w.WriteLong(6)  // ...followed by a byte-size prefix
	w.WriteLong(10)
	w.WriteLong(20)
	w.WriteLong(0)

	got, err := dec(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(20)}, got)
}

func TestMapRoundTrip(t *testing.T) {
	s := schema.NewMap(schema.NewString())
	got := roundTrip(t, s, reflect.TypeOf(map[string]string{}), map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
}

func TestNullableUnionRoundTrip(t *testing.T) {
	u := schema.NewUnion()
	require.NoError(t, u.AddMember(schema.NewNull()))
	require.NoError(t, u.AddMember(schema.NewString()))

	var s *string
	typ := reflect.TypeOf(s)

	got := roundTrip(t, u, typ, nil)
	assert.Nil(t, got)

	v := "present"
	got = roundTrip(t, u, typ, &v)
	require.IsType(t, (*string)(nil), got)
	assert.Equal(t, "present", *got.(*string))
}

func TestGeneralUnionNativeRoundTrip(t *testing.T) {
	u := schema.NewUnion()
	require.NoError(t, u.AddMember(schema.NewLong()))
	require.NoError(t, u.AddMember(schema.NewString()))

	assert.Equal(t, int64(7), roundTrip(t, u, nil, int64(7)))
	assert.Equal(t, "abc", roundTrip(t, u, nil, "abc"))
}

func TestEnumRoundTrip(t *testing.T) {
	name, _ := schema.NewName("Suit", "")
	e := schema.NewEnum(name)
	require.NoError(t, e.AddSymbol("SPADES"))
	require.NoError(t, e.AddSymbol("HEARTS"))

	got := roundTrip(t, e, nil, "HEARTS")
	assert.Equal(t, "HEARTS", got)
}

type point struct {
	X int64
	Y int64
}

func TestRecordStructRoundTrip(t *testing.T) {
	name, _ := schema.NewName("Point", "")
	rec := schema.NewRecord(name)
	require.NoError(t, rec.AddField(&schema.Field{Name: "X", Type: schema.NewLong()}))
	require.NoError(t, rec.AddField(&schema.Field{Name: "Y", Type: schema.NewLong()}))

	got := roundTrip(t, rec, reflect.TypeOf(point{}), point{X: 3, Y: 4})
	assert.Equal(t, point{X: 3, Y: 4}, got)
}

func TestRecordNativeMapRoundTrip(t *testing.T) {
	name, _ := schema.NewName("Point", "")
	rec := schema.NewRecord(name)
	require.NoError(t, rec.AddField(&schema.Field{Name: "X", Type: schema.NewLong()}))
	require.NoError(t, rec.AddField(&schema.Field{Name: "Y", Type: schema.NewLong()}))

	got := roundTrip(t, rec, nil, map[string]any{"X": int64(3), "Y": int64(4)})
	assert.Equal(t, map[string]any{"X": int64(3), "Y": int64(4)}, got)
}

type node struct {
	Value    int64
	Children []*node
}

func TestCyclicRecordRoundTrip(t *testing.T) {
	name, _ := schema.NewName("Node", "")
	rec := schema.NewRecord(name)
	require.NoError(t, rec.AddField(&schema.Field{Name: "Value", Type: schema.NewLong()}))
	require.NoError(t, rec.AddField(&schema.Field{Name: "Children", Type: schema.NewArray(rec)}))

	tree := &node{Value: 1, Children: []*node{
		{Value: 2, Children: []*node{}},
		{Value: 3, Children: []*node{}},
	}}

	got := roundTrip(t, rec, reflect.TypeOf(node{}), *tree)
	gotNode := got.(node)
	assert.Equal(t, int64(1), gotNode.Value)
	require.Len(t, gotNode.Children, 2)
	assert.Equal(t, int64(2), gotNode.Children[0].Value)
	assert.Equal(t, int64(3), gotNode.Children[1].Value)
}

func TestUUIDLogicalRoundTrip(t *testing.T) {
	s := schema.NewString()
	require.NoError(t, s.SetLogical(schema.NewSimpleLogicalType(schema.LogicalUUID)))

	id := uuid.New()
	got := roundTrip(t, s, reflect.TypeOf(uuid.UUID{}), id)
	assert.Equal(t, id, got)
}

func TestDecimalBytesLogicalRoundTrip(t *testing.T) {
	s := schema.NewBytes()
	lt, err := schema.NewDecimalLogicalType(10, 2)
	require.NoError(t, err)
	require.NoError(t, s.SetLogical(lt))

	d := decimal.RequireFromString("-1234.56")
	got := roundTrip(t, s, reflect.TypeOf(decimal.Decimal{}), d)
	assert.True(t, d.Equal(got.(decimal.Decimal)), "got %s want %s", got, d)
}

func TestDecimalFixedLogicalRoundTrip(t *testing.T) {
	name, _ := schema.NewName("Amount", "")
	f, err := schema.NewFixed(name, 8)
	require.NoError(t, err)
	lt, err := schema.NewDecimalLogicalType(12, 3)
	require.NoError(t, err)
	require.NoError(t, f.SetLogical(lt))

	d := decimal.RequireFromString("42.125")
	got := roundTrip(t, f, reflect.TypeOf(decimal.Decimal{}), d)
	assert.True(t, d.Equal(got.(decimal.Decimal)), "got %s want %s", got, d)
}

func TestDateLogicalRoundTrip(t *testing.T) {
	s := schema.NewInt()
	require.NoError(t, s.SetLogical(schema.NewSimpleLogicalType(schema.LogicalDate)))

	want := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)
	got := roundTrip(t, s, reflect.TypeOf(time.Time{}), want)
	assert.True(t, want.Equal(got.(time.Time)))
}

func TestTimestampMicrosLogicalRoundTrip(t *testing.T) {
	s := schema.NewLong()
	require.NoError(t, s.SetLogical(schema.NewSimpleLogicalType(schema.LogicalTimestampMicros)))

	want := time.Date(2026, 7, 29, 12, 30, 0, 123000, time.UTC)
	got := roundTrip(t, s, reflect.TypeOf(time.Time{}), want)
	assert.True(t, want.Equal(got.(time.Time)))
}

func TestFixedDurationLogicalRoundTrip(t *testing.T) {
	name, _ := schema.NewName("Span", "")
	f, err := schema.NewFixed(name, 12)
	require.NoError(t, err)
	require.NoError(t, f.SetLogical(schema.NewSimpleLogicalType(schema.LogicalDuration)))

	want := Duration{Months: 1, Days: 2, Milliseconds: 3000}
	got := roundTrip(t, f, reflect.TypeOf(Duration{}), want)
	assert.Equal(t, want, got)
}

func TestPeriodStringRoundTrip(t *testing.T) {
	s := schema.NewString()
	p := period.NewYMD(1, 2, 3)
	got := roundTrip(t, s, reflect.TypeOf(period.Period{}), p)
	assert.Equal(t, p.String(), got.(period.Period).String())
}

func TestConfluentEnvelopeBytesFixUp(t *testing.T) {
	// A top-level bytes schema is written without its usual
	// length prefix, since the Confluent envelope has no inner framing.
	s := schema.NewBytes()
	w := NewWriter()
	require.NoError(t, RawBytesEncoder(s)(w, []byte{0xde, 0xad, 0xbe, 0xef}))
	got, err := RawBytesDecoder(s)(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got)
}

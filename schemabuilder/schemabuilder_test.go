package schemabuilder

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpstreamlabs/avroregistry/codec"
	"github.com/warpstreamlabs/avroregistry/schema"
)

type point struct {
	X int64
	Y int64
}

func TestBuildPlainRecord(t *testing.T) {
	s, err := BuildFor[point](nil)
	require.NoError(t, err)
	require.Equal(t, schema.KindRecord, s.Kind())

	rec, ok := schema.AsRecord(s)
	require.True(t, ok)
	fields := rec.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "X", fields[0].Name)
	assert.Equal(t, schema.KindLong, fields[0].Type.Kind())
	assert.Equal(t, "Y", fields[1].Name)
}

type withScalars struct {
	Name    string
	Active  bool
	Count   int32
	Score   float64
	Payload []byte
}

func TestBuildScalarFields(t *testing.T) {
	s, err := BuildFor[withScalars](nil)
	require.NoError(t, err)
	rec, ok := schema.AsRecord(s)
	require.True(t, ok)

	byName := map[string]schema.Schema{}
	for _, f := range rec.Fields() {
		byName[f.Name] = f.Type
	}
	assert.Equal(t, schema.KindString, byName["Name"].Kind())
	assert.Equal(t, schema.KindBoolean, byName["Active"].Kind())
	assert.Equal(t, schema.KindInt, byName["Count"].Kind())
	assert.Equal(t, schema.KindDouble, byName["Score"].Kind())
	assert.Equal(t, schema.KindBytes, byName["Payload"].Kind())
}

type withNullablePointer struct {
	Nickname *string
}

func TestNullableWrapperCase(t *testing.T) {
	s, err := BuildFor[withNullablePointer](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	require.Equal(t, schema.KindUnion, f.Type.Kind())
	members, _ := schema.Union(f.Type)
	require.Len(t, members, 2)
	assert.Equal(t, schema.KindNull, members[0].Kind())
	assert.Equal(t, schema.KindString, members[1].Kind())
}

type child struct {
	Name string
}

type parent struct {
	Child  *child
	AllPtr *child
}

func TestPointerToStructNoWrapByDefault(t *testing.T) {
	s, err := BuildFor[parent](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	assert.Equal(t, schema.KindRecord, f.Type.Kind(), "pointer-to-struct fields are not wrapped under None")
}

func TestPointerToStructWrappedUnderAnnotated(t *testing.T) {
	cfg := &Config{NullableReferenceTypeBehavior: Annotated}
	s, err := BuildFor[parent](cfg)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	for _, f := range rec.Fields() {
		require.Equal(t, schema.KindUnion, f.Type.Kind(), "field %s should be wrapped under Annotated", f.Name)
		members, _ := schema.Union(f.Type)
		require.Len(t, members, 2)
		assert.Equal(t, schema.KindRecord, members[0].Kind())
		assert.Equal(t, schema.KindNull, members[1].Kind(), "record-level wrapping appends null")
	}
}

type suit int

func (s suit) EnumSymbols() []string { return []string{"SPADES", "HEARTS", "CLUBS", "DIAMONDS"} }

type withEnum struct {
	Suit suit
}

func TestEnumSymbolic(t *testing.T) {
	s, err := BuildFor[withEnum](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	require.Equal(t, schema.KindEnum, f.Type.Kind())
	e, _ := schema.AsEnum(f.Type)
	assert.Equal(t, []string{"SPADES", "HEARTS", "CLUBS", "DIAMONDS"}, e.Symbols())
}

func TestEnumIntegralOverride(t *testing.T) {
	cfg := &Config{EnumBehavior: Integral}
	s, err := BuildFor[withEnum](cfg)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	assert.Equal(t, schema.KindLong, f.Type.Kind())
}

type flags uint8

func (f flags) EnumSymbols() []string { return []string{"READ", "WRITE", "EXEC"} }
func (f flags) IsBitFlags() bool      { return true }

type withFlags struct {
	Perms flags
}

func TestFlagEnumForcesIntegral(t *testing.T) {
	s, err := BuildFor[withFlags](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	assert.Equal(t, schema.KindInt, f.Type.Kind())
}

type withCollections struct {
	Tags   []string
	Scores map[string]int64
}

func TestEnumerableAndDictionary(t *testing.T) {
	s, err := BuildFor[withCollections](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	byName := map[string]schema.Schema{}
	for _, f := range rec.Fields() {
		byName[f.Name] = f.Type
	}
	require.Equal(t, schema.KindArray, byName["Tags"].Kind())
	item, _ := schema.Array(byName["Tags"])
	assert.Equal(t, schema.KindString, item.Kind())

	require.Equal(t, schema.KindMap, byName["Scores"].Kind())
	val, _ := schema.MapValue(byName["Scores"])
	assert.Equal(t, schema.KindLong, val.Kind())
}

type withPtrSlice struct {
	Children []*child
}

func TestAnnotatedElementDescentIntoSlice(t *testing.T) {
	cfg := &Config{NullableReferenceTypeBehavior: Annotated}
	s, err := BuildFor[withPtrSlice](cfg)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	require.Equal(t, schema.KindArray, f.Type.Kind())
	item, _ := schema.Array(f.Type)
	require.Equal(t, schema.KindUnion, item.Kind())
	members, _ := schema.Union(item)
	assert.Equal(t, schema.KindRecord, members[0].Kind())
	assert.Equal(t, schema.KindNull, members[1].Kind())
}

type withNullableScalarElems struct {
	Tags   []*string
	Labels map[string]*string
}

func TestAnnotatedElementDescentNullLast(t *testing.T) {
	cfg := &Config{NullableReferenceTypeBehavior: Annotated}
	s, err := BuildFor[withNullableScalarElems](cfg)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	byName := map[string]schema.Schema{}
	for _, f := range rec.Fields() {
		byName[f.Name] = f.Type
	}

	item, _ := schema.Array(byName["Tags"])
	require.Equal(t, schema.KindUnion, item.Kind())
	members, _ := schema.Union(item)
	assert.Equal(t, schema.KindString, members[0].Kind())
	assert.Equal(t, schema.KindNull, members[1].Kind())

	val, _ := schema.MapValue(byName["Labels"])
	require.Equal(t, schema.KindUnion, val.Kind())
	valMembers, _ := schema.Union(val)
	assert.Equal(t, schema.KindString, valMembers[0].Kind())
	assert.Equal(t, schema.KindNull, valMembers[1].Kind())
}

type withDecimal struct {
	Amount decimal.Decimal
	Narrow decimal.Decimal `avro:"narrow,min=-99.99,max=99.99"`
}

func TestDecimalDefaultAndNarrowed(t *testing.T) {
	s, err := BuildFor[withDecimal](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)

	amount := rec.Fields()[0]
	require.Equal(t, schema.KindBytes, amount.Type.Kind())
	lt := amount.Type.Logical()
	require.NotNil(t, lt)
	assert.Equal(t, 29, lt.Precision)
	assert.Equal(t, 14, lt.Scale)

	narrow := rec.Fields()[1]
	assert.Equal(t, "narrow", narrow.Name)
	nlt := narrow.Type.Logical()
	require.NotNil(t, nlt)
	assert.Equal(t, 2, nlt.Scale)
	assert.Equal(t, 4, nlt.Precision)
}

type withUUID struct {
	ID uuid.UUID
}

func TestUUIDField(t *testing.T) {
	s, err := BuildFor[withUUID](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	assert.Equal(t, schema.KindString, f.Type.Kind())
	require.NotNil(t, f.Type.Logical())
	assert.Equal(t, schema.LogicalUUID, f.Type.Logical().Kind)
}

type withTimestamp struct {
	CreatedAt time.Time
}

func TestTimestampEpochMillis(t *testing.T) {
	cfg := &Config{TemporalBehavior: EpochMilliseconds}
	s, err := BuildFor[withTimestamp](cfg)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	assert.Equal(t, schema.KindLong, f.Type.Kind())
	require.NotNil(t, f.Type.Logical())
	assert.Equal(t, schema.LogicalTimestampMillis, f.Type.Logical().Kind)
}

func TestTimestampIso8601Default(t *testing.T) {
	s, err := BuildFor[withTimestamp](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	f := rec.Fields()[0]
	assert.Equal(t, schema.KindString, f.Type.Kind())
}

type dataContractType2 struct {
	Keep    string `avro:"keep"`
	Dropped string
}

func (dataContractType2) AvroName() (string, string) { return "Renamed", "my.ns" }

func TestDataContractFiltersAndRenames(t *testing.T) {
	s, err := BuildFor[dataContractType2](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	assert.Equal(t, "Renamed", rec.Name().Simple)
	assert.Equal(t, "my.ns", rec.Name().Namespace)
	require.Len(t, rec.Fields(), 1)
	assert.Equal(t, "keep", rec.Fields()[0].Name)
}

type treeNode struct {
	Value    int64
	Children []*treeNode
}

func TestCyclicRecordTerminates(t *testing.T) {
	s, err := BuildFor[treeNode](nil)
	require.NoError(t, err)
	rec, _ := schema.AsRecord(s)
	childrenField := rec.Fields()[1]
	require.Equal(t, schema.KindArray, childrenField.Type.Kind())
	item, _ := schema.Array(childrenField.Type)
	assert.Same(t, s, item, "self-referential field resolves to the same *recordSchema pointer")
}

func TestBuildThenCodecRoundTrip(t *testing.T) {
	s, err := BuildFor[point](nil)
	require.NoError(t, err)

	enc, err := codec.BuildEncoderFor[point](s, nil)
	require.NoError(t, err)
	dec, err := codec.BuildDecoderFor[point](s, nil)
	require.NoError(t, err)

	w := codec.NewWriter()
	require.NoError(t, enc(w, point{X: 5, Y: 9}))
	got, err := dec(codec.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, point{X: 5, Y: 9}, got)
}

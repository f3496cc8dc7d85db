package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitiveString(t *testing.T) {
	s, err := Parse([]byte(`"long"`))
	require.NoError(t, err)
	assert.Equal(t, KindLong, s.Kind())
}

func TestParseUnion(t *testing.T) {
	s, err := Parse([]byte(`["null","string"]`))
	require.NoError(t, err)
	members, ok := Union(s)
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.Equal(t, KindNull, members[0].Kind())
	assert.Equal(t, KindString, members[1].Kind())
}

func TestParseRecordWithSelfReference(t *testing.T) {
	const doc = `{
		"type": "record",
		"name": "Node",
		"namespace": "com.example",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "children", "type": {"type": "array", "items": "com.example.Node"}}
		]
	}`
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	r, ok := AsRecord(s)
	require.True(t, ok)
	childrenField := r.Fields()[1]
	item, ok := Array(childrenField.Type)
	require.True(t, ok)
	assert.Same(t, s, item)
}

func TestParseUnknownNameFails(t *testing.T) {
	_, err := Parse([]byte(`"com.example.DoesNotExist"`))
	require.Error(t, err)
	var unkErr *UnknownNameError
	assert.ErrorAs(t, err, &unkErr)
}

func TestParseForwardReferenceFails(t *testing.T) {
	const doc = `{
		"type": "record",
		"name": "A",
		"fields": [{"name": "b", "type": "B"}]
	}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseDecimalLogicalType(t *testing.T) {
	s, err := Parse([]byte(`{"type":"bytes","logicalType":"decimal","precision":9,"scale":2}`))
	require.NoError(t, err)
	require.NotNil(t, s.Logical())
	assert.Equal(t, LogicalDecimal, s.Logical().Kind)
	assert.Equal(t, 9, s.Logical().Precision)
	assert.Equal(t, 2, s.Logical().Scale)
}

func TestParseInvalidDecimalIsResilient(t *testing.T) {
	s, warnings, err := ParseWithWarnings([]byte(`{"type":"bytes","logicalType":"decimal","precision":2,"scale":5}`))
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Equal(t, KindBytes, s.Kind())
	assert.Nil(t, s.Logical())
}

func TestParseDecimalOnWrongUnderlyingTypeIsResilient(t *testing.T) {
	s, warnings, err := ParseWithWarnings([]byte(`{"type":"string","logicalType":"decimal","precision":9,"scale":2}`))
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Equal(t, KindString, s.Kind())
	assert.Nil(t, s.Logical())
}

func TestWriteRoundTripPrimitive(t *testing.T) {
	b, err := Write(NewLong())
	require.NoError(t, err)
	assert.Equal(t, `"long"`, string(b))
}

func TestWriteRoundTripRecordSelfReference(t *testing.T) {
	name, _ := NewName("Node", "com.example")
	r := NewRecord(name)
	require.NoError(t, r.AddField(&Field{Name: "value", Type: NewLong()}))
	require.NoError(t, r.AddField(&Field{Name: "children", Type: NewArray(r)}))

	b, err := Write(r)
	require.NoError(t, err)

	parsed, err := Parse(b)
	require.NoError(t, err)
	assert.True(t, r.Equal(parsed))

	pr, ok := AsRecord(parsed)
	require.True(t, ok)
	childItem, ok := Array(pr.Fields()[1].Type)
	require.True(t, ok)
	assert.Same(t, parsed, childItem)
}

func TestWriteUnionOrderPreserved(t *testing.T) {
	u := NewUnion()
	require.NoError(t, u.AddMember(NewNull()))
	require.NoError(t, u.AddMember(NewString()))
	b, err := Write(u)
	require.NoError(t, err)
	assert.Equal(t, `["null","string"]`, string(b))
}

func TestWriteFixedBackReference(t *testing.T) {
	name, _ := NewName("MD5", "")
	f, err := NewFixed(name, 16)
	require.NoError(t, err)

	recName, _ := NewName("Pair", "")
	r := NewRecord(recName)
	require.NoError(t, r.AddField(&Field{Name: "a", Type: f}))
	require.NoError(t, r.AddField(&Field{Name: "b", Type: f}))

	b, err := Write(r)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"record","name":"Pair","fields":[{"name":"a","type":{"type":"fixed","name":"MD5","size":16}},{"name":"b","type":"MD5"}]}`, string(b))
}

func TestRoundTripEnumWithDefault(t *testing.T) {
	name, _ := NewName("Suit", "")
	e := NewEnum(name)
	require.NoError(t, e.AddSymbol("SPADES"))
	require.NoError(t, e.AddSymbol("HEARTS"))
	require.NoError(t, e.SetDefault("SPADES"))

	b, err := Write(e)
	require.NoError(t, err)
	parsed, err := Parse(b)
	require.NoError(t, err)
	pe, ok := AsEnum(parsed)
	require.True(t, ok)
	assert.Equal(t, "SPADES", pe.Default().Value)
}

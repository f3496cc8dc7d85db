package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNameValidation(t *testing.T) {
	_, err := NewName("1bad", "")
	require.Error(t, err)
	var nameErr *InvalidNameError
	assert.ErrorAs(t, err, &nameErr)

	n, err := NewName("Foo", "com.example")
	require.NoError(t, err)
	assert.Equal(t, "com.example.Foo", n.Full())
}

func TestUnionRejectsNestedUnion(t *testing.T) {
	u := NewUnion()
	require.NoError(t, u.AddMember(NewNull()))
	inner := NewUnion()
	err := u.AddMember(inner)
	require.Error(t, err)
}

func TestUnionRejectsDuplicateUnnamedKind(t *testing.T) {
	u := NewUnion()
	require.NoError(t, u.AddMember(NewInt()))
	err := u.AddMember(NewInt())
	require.Error(t, err)
}

func TestUnionAllowsMultipleNamedMembersByDistinctFullName(t *testing.T) {
	u := NewUnion()
	n1, _ := NewName("A", "ns")
	n2, _ := NewName("B", "ns")
	f1, _ := NewFixed(n1, 4)
	f2, _ := NewFixed(n2, 4)
	require.NoError(t, u.AddMember(f1))
	require.NoError(t, u.AddMember(f2))
	assert.Len(t, u.Members(), 2)
}

func TestUnionRejectsSameFullNameAcrossVariants(t *testing.T) {
	u := NewUnion()
	n, _ := NewName("Dup", "ns")
	f, _ := NewFixed(n, 4)
	require.NoError(t, u.AddMember(f))
	e := NewEnum(n)
	require.NoError(t, e.AddSymbol("A"))
	err := u.AddMember(e)
	require.Error(t, err, "same full name across differing variants must still collide")
}

func TestEnumSymbolValidationAndDefault(t *testing.T) {
	name, _ := NewName("Suit", "")
	e := NewEnum(name)
	require.NoError(t, e.AddSymbol("SPADES"))
	require.NoError(t, e.AddSymbol("HEARTS"))
	require.Error(t, e.AddSymbol("not valid"))
	require.NoError(t, e.SetDefault("SPADES"))
	require.Error(t, e.SetDefault("CLUBS"))
	assert.Equal(t, []string{"SPADES", "HEARTS"}, e.Symbols())
}

func TestEnumSymbolsDeduplicateStably(t *testing.T) {
	name, _ := NewName("Suit", "")
	e := NewEnum(name)
	require.NoError(t, e.AddSymbol("SPADES"))
	require.NoError(t, e.AddSymbol("SPADES"))
	assert.Equal(t, []string{"SPADES"}, e.Symbols())
}

func TestDecimalPrecisionScaleValidation(t *testing.T) {
	_, err := NewDecimalLogicalType(0, 0)
	require.Error(t, err)
	_, err = NewDecimalLogicalType(4, 5)
	require.Error(t, err)
	lt, err := NewDecimalLogicalType(9, 2)
	require.NoError(t, err)
	assert.Equal(t, 9, lt.Precision)
	assert.Equal(t, 2, lt.Scale)
}

func TestLogicalTypeMustMatchUnderlyingSchema(t *testing.T) {
	s := NewString()
	lt, _ := NewDecimalLogicalType(4, 2)
	err := s.SetLogical(lt)
	require.Error(t, err)

	b := NewBytes()
	require.NoError(t, b.SetLogical(lt))
}

func TestDurationLogicalRequiresFixed12(t *testing.T) {
	n, _ := NewName("Dur", "")
	f4, _ := NewFixed(n, 4)
	err := f4.SetLogical(NewSimpleLogicalType(LogicalDuration))
	require.Error(t, err)

	n2, _ := NewName("Dur12", "")
	f12, _ := NewFixed(n2, 12)
	require.NoError(t, f12.SetLogical(NewSimpleLogicalType(LogicalDuration)))
}

func TestRecordFieldNameValidation(t *testing.T) {
	name, _ := NewName("Rec", "")
	r := NewRecord(name)
	err := r.AddField(&Field{Name: "bad name", Type: NewInt()})
	require.Error(t, err)
	require.NoError(t, r.AddField(&Field{Name: "good_name", Type: NewInt()}))
}

func TestRecordSelfReference(t *testing.T) {
	name, _ := NewName("Node", "")
	r := NewRecord(name)
	listSchema := NewArray(r)
	require.NoError(t, r.AddField(&Field{Name: "children", Type: listSchema}))
	assert.True(t, r.Equal(r))
	children := r.Fields()[0]
	item, ok := Array(children.Type)
	require.True(t, ok)
	assert.Same(t, Schema(r), item)
}

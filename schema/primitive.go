package schema

// primitiveSchema implements Schema for the eight Avro primitive types.
// They differ only in Kind, so one struct backs all of them.
type primitiveSchema struct {
	kind    Kind
	logical *LogicalType
}

func (p *primitiveSchema) Kind() Kind               { return p.kind }
func (p *primitiveSchema) Logical() *LogicalType     { return p.logical }

func (p *primitiveSchema) SetLogical(lt *LogicalType) error {
	if !validLogicalFor(lt, p.kind, 0) {
		return &InvalidSchemaError{Reason: "logical type " + lt.Kind.String() + " is not valid on " + p.kind.String()}
	}
	p.logical = lt
	return nil
}

func (p *primitiveSchema) Equal(other Schema) bool {
	o, ok := other.(*primitiveSchema)
	if !ok || o.kind != p.kind {
		return false
	}
	return logicalEqual(p.logical, o.logical)
}

func logicalEqual(a, b *LogicalType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// NewNull constructs the null schema.
func NewNull() Schema { return &primitiveSchema{kind: KindNull} }

// NewBoolean constructs the boolean schema.
func NewBoolean() Schema { return &primitiveSchema{kind: KindBoolean} }

// NewInt constructs the 32-bit int schema.
func NewInt() Schema { return &primitiveSchema{kind: KindInt} }

// NewLong constructs the 64-bit long schema.
func NewLong() Schema { return &primitiveSchema{kind: KindLong} }

// NewFloat constructs the 32-bit float schema.
func NewFloat() Schema { return &primitiveSchema{kind: KindFloat} }

// NewDouble constructs the 64-bit double schema.
func NewDouble() Schema { return &primitiveSchema{kind: KindDouble} }

// NewBytes constructs the bytes schema.
func NewBytes() Schema { return &primitiveSchema{kind: KindBytes} }

// NewString constructs the string schema.
func NewString() Schema { return &primitiveSchema{kind: KindString} }

// IsPrimitive reports whether k is one of the eight primitive kinds.
func IsPrimitive(k Kind) bool {
	return k <= KindString
}

// PrimitiveName returns the canonical JSON name for a primitive Kind, or ""
// if k is not primitive.
func PrimitiveName(k Kind) string {
	if !IsPrimitive(k) {
		return ""
	}
	return k.String()
}

// primitiveByName returns a fresh primitive schema for the canonical
// primitive name, or nil if name does not name a primitive.
func primitiveByName(name string) Schema {
	switch name {
	case "null":
		return NewNull()
	case "boolean":
		return NewBoolean()
	case "int":
		return NewInt()
	case "long":
		return NewLong()
	case "float":
		return NewFloat()
	case "double":
		return NewDouble()
	case "bytes":
		return NewBytes()
	case "string":
		return NewString()
	default:
		return nil
	}
}

package schema

// Default wraps a field or enum default value. Set distinguishes "no
// default was specified" from "the default is the JSON value null", since
// both are legitimate and distinct states.
type Default struct {
	Value any
	Set   bool
}

// NewDefault wraps v as a present default value.
func NewDefault(v any) Default { return Default{Value: v, Set: true} }

//------------------------------------------------------------------------------
// array

type arraySchema struct {
	item    Schema
	logical *LogicalType
}

// NewArray constructs an array schema over item.
func NewArray(item Schema) Schema { return &arraySchema{item: item} }

func (a *arraySchema) Kind() Kind           { return KindArray }
func (a *arraySchema) Logical() *LogicalType { return a.logical }
func (a *arraySchema) Item() Schema         { return a.item }

func (a *arraySchema) SetLogical(lt *LogicalType) error {
	if lt != nil {
		return &InvalidSchemaError{Reason: "array cannot carry a logical type"}
	}
	a.logical = lt
	return nil
}

func (a *arraySchema) Equal(other Schema) bool {
	o, ok := other.(*arraySchema)
	return ok && a.item.Equal(o.item)
}

// Array exposes the item schema of an array Schema. ok is false if s is not
// an array.
func Array(s Schema) (item Schema, ok bool) {
	a, isArr := s.(*arraySchema)
	if !isArr {
		return nil, false
	}
	return a.item, true
}

//------------------------------------------------------------------------------
// map

type mapSchema struct {
	value   Schema
	logical *LogicalType
}

// NewMap constructs a map schema (Avro maps always have string keys) over
// value.
func NewMap(value Schema) Schema { return &mapSchema{value: value} }

func (m *mapSchema) Kind() Kind            { return KindMap }
func (m *mapSchema) Logical() *LogicalType { return m.logical }
func (m *mapSchema) Value() Schema         { return m.value }

func (m *mapSchema) SetLogical(lt *LogicalType) error {
	if lt != nil {
		return &InvalidSchemaError{Reason: "map cannot carry a logical type"}
	}
	m.logical = lt
	return nil
}

func (m *mapSchema) Equal(other Schema) bool {
	o, ok := other.(*mapSchema)
	return ok && m.value.Equal(o.value)
}

// MapValue exposes the value schema of a map Schema.
func MapValue(s Schema) (value Schema, ok bool) {
	m, isMap := s.(*mapSchema)
	if !isMap {
		return nil, false
	}
	return m.value, true
}

//------------------------------------------------------------------------------
// union

type unionSchema struct {
	members orderedSet[Schema]
}

// NewUnion constructs an empty union. Members must be added with AddMember;
// an empty union is legal to build but must be rejected
// before it is used as a field type — codec/schemabuilder enforce that, not
// the model itself, which only enforces insert-time invariants.
func NewUnion() *unionSchema { return &unionSchema{members: newOrderedSet[Schema]()} }

func (u *unionSchema) Kind() Kind            { return KindUnion }
func (u *unionSchema) Logical() *LogicalType { return nil }

func (u *unionSchema) SetLogical(lt *LogicalType) error {
	if lt != nil {
		return &InvalidSchemaError{Reason: "union cannot carry a logical type"}
	}
	return nil
}

// Members returns the union's members in declaration order.
func (u *unionSchema) Members() []Schema { return u.members.values() }

// memberKey returns the dedup key for a candidate union member: named
// schemas dedup by full name, regardless of variant kind; unnamed schemas
// dedup by Kind.
func memberKey(s Schema) string {
	if n, ok := namedOf(s); ok {
		return "name:" + n.Full()
	}
	return "kind:" + s.Kind().String()
}

// AddMember appends s to the union, enforcing the union
// invariants: no nested union, at most one member per non-named variant,
// any number of named members provided their full names differ.
func (u *unionSchema) AddMember(s Schema) error {
	if s.Kind() == KindUnion {
		return &InvalidSchemaError{Reason: "union cannot directly contain another union"}
	}
	key := memberKey(s)
	if u.members.has(key) {
		if _, named := namedOf(s); named {
			return &InvalidSchemaError{Reason: "union already contains a named member with this full name"}
		}
		return &InvalidSchemaError{Reason: "union already contains a member of kind " + s.Kind().String()}
	}
	return u.members.add(key, s, nil)
}

func (u *unionSchema) Equal(other Schema) bool {
	o, ok := other.(*unionSchema)
	if !ok || u.members.len() != o.members.len() {
		return false
	}
	mine, theirs := u.members.values(), o.members.values()
	for i := range mine {
		if !mine[i].Equal(theirs[i]) {
			return false
		}
	}
	return true
}

// Union exposes the ordered members of a union Schema.
func Union(s Schema) (members []Schema, ok bool) {
	u, isUnion := s.(*unionSchema)
	if !isUnion {
		return nil, false
	}
	return u.Members(), true
}

//------------------------------------------------------------------------------
// named type shared bits

type named struct {
	name    Name
	aliases orderedSet[string]
}

func newNamed(name Name) named {
	return named{name: name, aliases: newOrderedSet[string]()}
}

// AddAlias appends an alias, validating it against the name grammar and
// deduplicating stably.
func (n *named) AddAlias(alias string) error {
	return n.aliases.add(alias, alias, func(a string) error { return ValidateName(lastComponent(a)) })
}

func (n *named) Aliases() []string { return n.aliases.values() }
func (n *named) Name() Name        { return n.name }

func lastComponent(full string) string {
	last := full
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '.' {
			last = full[i+1:]
			break
		}
	}
	return last
}

// namedOf reports whether s is one of the three named variants and returns
// its qualified name.
func namedOf(s Schema) (Name, bool) {
	switch v := s.(type) {
	case *fixedSchema:
		return v.name, true
	case *enumSchema:
		return v.name, true
	case *recordSchema:
		return v.name, true
	default:
		return Name{}, false
	}
}

//------------------------------------------------------------------------------
// fixed

type fixedSchema struct {
	named
	size    int
	logical *LogicalType
}

// NewFixed validates and constructs a fixed schema of the given byte size.
func NewFixed(name Name, size int) (Schema, error) {
	if size < 0 {
		return nil, &InvalidSchemaError{Reason: "fixed size must be >= 0"}
	}
	return &fixedSchema{named: newNamed(name), size: size}, nil
}

func (f *fixedSchema) Kind() Kind            { return KindFixed }
func (f *fixedSchema) Logical() *LogicalType { return f.logical }
func (f *fixedSchema) Size() int             { return f.size }

func (f *fixedSchema) SetLogical(lt *LogicalType) error {
	if !validLogicalFor(lt, KindFixed, f.size) {
		return &InvalidSchemaError{Reason: "logical type not valid on fixed(" + f.name.Full() + ")"}
	}
	f.logical = lt
	return nil
}

func (f *fixedSchema) Equal(other Schema) bool {
	o, ok := other.(*fixedSchema)
	return ok && f.name == o.name && f.size == o.size && logicalEqual(f.logical, o.logical)
}

//------------------------------------------------------------------------------
// enum

type enumSchema struct {
	named
	symbols       orderedSet[string]
	documentation string
	def           Default
}

// NewEnum validates and constructs an enum schema with no symbols yet.
func NewEnum(name Name) *enumSchema {
	return &enumSchema{named: newNamed(name), symbols: newOrderedSet[string]()}
}

func (e *enumSchema) Kind() Kind            { return KindEnum }
func (e *enumSchema) Logical() *LogicalType { return nil }
func (e *enumSchema) SetLogical(lt *LogicalType) error {
	if lt != nil {
		return &InvalidSchemaError{Reason: "enum cannot carry a logical type"}
	}
	return nil
}

// AddSymbol appends a unique, name-grammar-valid symbol in declaration
// order.
func (e *enumSchema) AddSymbol(symbol string) error {
	return e.symbols.add(symbol, symbol, func(s string) error {
		if err := ValidateName(s); err != nil {
			return &InvalidSymbolError{Symbol: s}
		}
		return nil
	})
}

func (e *enumSchema) Symbols() []string { return e.symbols.values() }

func (e *enumSchema) SetDocumentation(doc string) { e.documentation = doc }
func (e *enumSchema) Documentation() string       { return e.documentation }

// SetDefault sets the enum's default symbol; it must already have been
// added via AddSymbol.
func (e *enumSchema) SetDefault(symbol string) error {
	if !e.symbols.has(symbol) {
		return &InvalidSchemaError{Reason: "enum default " + symbol + " is not a declared symbol"}
	}
	e.def = NewDefault(symbol)
	return nil
}

func (e *enumSchema) Default() Default { return e.def }

func (e *enumSchema) Equal(other Schema) bool {
	o, ok := other.(*enumSchema)
	if !ok || e.name != o.name {
		return false
	}
	mine, theirs := e.symbols.values(), o.symbols.values()
	if len(mine) != len(theirs) {
		return false
	}
	for i := range mine {
		if mine[i] != theirs[i] {
			return false
		}
	}
	return true
}

//------------------------------------------------------------------------------
// record

// Field is a record field declaration (not itself a Schema).
type Field struct {
	Name          string
	Type          Schema
	Documentation string
	Default       Default
}

type recordSchema struct {
	named
	fields        orderedSet[*Field]
	documentation string
}

// NewRecord validates and constructs a record schema with no fields yet.
func NewRecord(name Name) *recordSchema {
	return &recordSchema{named: newNamed(name), fields: newOrderedSet[*Field]()}
}

func (r *recordSchema) Kind() Kind            { return KindRecord }
func (r *recordSchema) Logical() *LogicalType { return nil }
func (r *recordSchema) SetLogical(lt *LogicalType) error {
	if lt != nil {
		return &InvalidSchemaError{Reason: "record cannot carry a logical type"}
	}
	return nil
}

// AddField validates and appends a field in declaration order. A field
// whose Default is set and whose Type is a union must have a default legal
// under the union's first member; that check lives with the caller
// (schemabuilder) since it requires value-level knowledge this package does
// not have.
func (r *recordSchema) AddField(f *Field) error {
	return r.fields.add(f.Name, f, func(field *Field) error {
		if err := ValidateName(field.Name); err != nil {
			return err
		}
		if field.Type == nil {
			return &InvalidSchemaError{Reason: "field " + field.Name + " has no type"}
		}
		return nil
	})
}

func (r *recordSchema) Fields() []*Field { return r.fields.values() }

func (r *recordSchema) SetDocumentation(doc string) { r.documentation = doc }
func (r *recordSchema) Documentation() string       { return r.documentation }

func (r *recordSchema) Equal(other Schema) bool {
	o, ok := other.(*recordSchema)
	if !ok || r.name != o.name {
		return false
	}
	mine, theirs := r.fields.values(), o.fields.values()
	if len(mine) != len(theirs) {
		return false
	}
	for i := range mine {
		if mine[i].Name != theirs[i].Name || !mine[i].Type.Equal(theirs[i].Type) {
			return false
		}
	}
	return true
}

// Exported type assertions so callers outside the package can recover the
// concrete accessors without type-switching on unexported types.

// AsFixed reports whether s is a fixed schema.
func AsFixed(s Schema) (name Name, size int, ok bool) {
	f, isFixed := s.(*fixedSchema)
	if !isFixed {
		return Name{}, 0, false
	}
	return f.name, f.size, true
}

// AsEnum reports whether s is an enum schema.
func AsEnum(s Schema) (e *enumSchema, ok bool) {
	v, isEnum := s.(*enumSchema)
	return v, isEnum
}

// AsRecord reports whether s is a record schema.
func AsRecord(s Schema) (r *recordSchema, ok bool) {
	v, isRecord := s.(*recordSchema)
	return v, isRecord
}


package structure

import "iter"

// Sequence is an ordered container without field names: slices, arrays and
// tuples.
type Sequence struct {
	n  int
	at func(int) Value
}

// Seq returns a sequence of vals.
func Seq(vals ...Value) Sequence {
	return Sequence{n: len(vals), at: func(i int) Value { return vals[i] }}
}

// Accept implements Value.
func (s Sequence) Accept(v Visitor) error { return v.VisitSequence(s) }

// Len returns the number of elements.
func (s Sequence) Len() int { return s.n }

// At returns the i'th element.
func (s Sequence) At(i int) Value { return s.at(i) }

// All iterates over the elements in order.
func (s Sequence) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for i := 0; i < s.n; i++ {
			if !yield(s.at(i)) {
				return
			}
		}
	}
}

// Field is one named member of an Aggregate.
type Field struct {
	Name  string
	Value Value
}

// Named pairs a field name with its value.
func Named(name string, v Value) Field { return Field{Name: name, Value: v} }

// Aggregate is a record with named fields in declaration order.
type Aggregate struct {
	name  string
	n     int
	field func(int) Field
}

// Record returns an anonymous aggregate of fields.
func Record(fields ...Field) Aggregate {
	return RecordOf("", fields...)
}

// RecordOf returns an aggregate called typeName.
func RecordOf(typeName string, fields ...Field) Aggregate {
	return Aggregate{name: typeName, n: len(fields), field: func(i int) Field { return fields[i] }}
}

// Accept implements Value.
func (a Aggregate) Accept(v Visitor) error { return v.VisitAggregate(a) }

// Name returns the aggregate's type name, which may be empty.
func (a Aggregate) Name() string { return a.name }

// Len returns the number of fields.
func (a Aggregate) Len() int { return a.n }

// Field returns the i'th field.
func (a Aggregate) Field(i int) Field { return a.field(i) }

// All iterates over field names and values in order.
func (a Aggregate) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i := 0; i < a.n; i++ {
			f := a.field(i)
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}

// VariantShape is the payload layout of a tagged variant.
type VariantShape uint8

const (
	// VariantUnit carries no payload.
	VariantUnit VariantShape = iota
	// VariantNewtype wraps exactly one value.
	VariantNewtype
	// VariantTuple carries an ordered payload.
	VariantTuple
	// VariantStruct carries a named-field payload.
	VariantStruct
)

var variantShapeNames = [...]string{"unit", "newtype", "tuple", "struct"}

func (s VariantShape) String() string {
	if int(s) < len(variantShapeNames) {
		return variantShapeNames[s]
	}
	return "unknown"
}

// Variant is one case of a tagged union.
type Variant struct {
	typeName string
	name     string
	shape    VariantShape
	payload  Value
}

// UnitVariant returns a payload-free variant.
func UnitVariant(typeName, name string) Variant {
	return Variant{typeName: typeName, name: name, shape: VariantUnit}
}

// NewtypeVariant returns a variant wrapping v. A nil v wraps None.
func NewtypeVariant(typeName, name string, v Value) Variant {
	if v == nil {
		v = None()
	}
	return Variant{typeName: typeName, name: name, shape: VariantNewtype, payload: v}
}

// TupleVariant returns a variant with an ordered payload.
func TupleVariant(typeName, name string, vals ...Value) Variant {
	return Variant{typeName: typeName, name: name, shape: VariantTuple, payload: Seq(vals...)}
}

// StructVariant returns a variant with a named-field payload.
func StructVariant(typeName, name string, fields ...Field) Variant {
	return Variant{typeName: typeName, name: name, shape: VariantStruct, payload: RecordOf(name, fields...)}
}

// Accept implements Value.
func (v Variant) Accept(vis Visitor) error { return vis.VisitVariant(v) }

// TypeName returns the name of the enclosing union type.
func (v Variant) TypeName() string { return v.typeName }

// Name returns the variant's own name.
func (v Variant) Name() string { return v.name }

// Shape returns the payload layout.
func (v Variant) Shape() VariantShape { return v.shape }

// Payload returns the wrapped value, or nil for unit variants.
func (v Variant) Payload() Value { return v.payload }

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   Value
	Value Value
}

// Map is an associative container.
type Map struct {
	n     int
	entry func(int) Entry
}

// MapOf returns a map of entries in the given order.
func MapOf(entries ...Entry) Map {
	return Map{n: len(entries), entry: func(i int) Entry { return entries[i] }}
}

// Accept implements Value.
func (m Map) Accept(v Visitor) error { return v.VisitMap(m) }

// Len returns the number of entries.
func (m Map) Len() int { return m.n }

// Entry returns the i'th entry.
func (m Map) Entry(i int) Entry { return m.entry(i) }

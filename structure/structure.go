// Package structure describes the shape of values handed to the CSV
// serializer.
//
// Every value is exactly one of a closed set of shapes: a scalar with a
// textual representation, an ordered sequence, a named-field aggregate, a
// tagged variant, or a keyed map. Consumers walk values with a Visitor
// instead of inspecting them dynamically:
//
//	row := structure.Record(
//	    structure.Named("city", structure.String("Boston")),
//	    structure.Named("population", structure.Uint(4628910)),
//	)
//	err := row.Accept(myVisitor)
//
// Arbitrary Go values are converted with Of, which maps structs, slices,
// pointers and primitive kinds onto these shapes.
package structure

// Value is anything that can describe its own shape to a Visitor.
type Value interface {
	Accept(v Visitor) error
}

// Visitor receives exactly one callback per Accept call.
type Visitor interface {
	VisitScalar(s Scalar) error
	VisitSequence(s Sequence) error
	VisitAggregate(a Aggregate) error
	VisitVariant(v Variant) error
	VisitMap(m Map) error
}

// Marshaler is implemented by types that build their own Value instead of
// going through reflection.
type Marshaler interface {
	StructureValue() Value
}

// Kind enumerates the shapes a Value can take.
type Kind uint8

const (
	// KindScalar is a single textual value.
	KindScalar Kind = iota
	// KindSequence is an ordered container without names.
	KindSequence
	// KindAggregate is a record with named fields.
	KindAggregate
	// KindVariant is one case of a tagged union.
	KindVariant
	// KindMap is a keyed container.
	KindMap
)

var kindNames = [...]string{"scalar", "sequence", "aggregate", "variant", "map"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// KindOf reports the shape of v.
func KindOf(v Value) Kind {
	var k kindVisitor
	_ = v.Accept(&k)
	return Kind(k)
}

type kindVisitor Kind

func (k *kindVisitor) VisitScalar(Scalar) error       { *k = kindVisitor(KindScalar); return nil }
func (k *kindVisitor) VisitSequence(Sequence) error   { *k = kindVisitor(KindSequence); return nil }
func (k *kindVisitor) VisitAggregate(Aggregate) error { *k = kindVisitor(KindAggregate); return nil }
func (k *kindVisitor) VisitVariant(Variant) error     { *k = kindVisitor(KindVariant); return nil }
func (k *kindVisitor) VisitMap(Map) error             { *k = kindVisitor(KindMap); return nil }

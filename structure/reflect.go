package structure

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag consulted for field names.
const TagName = "csv"

// UnsupportedTypeError is returned when a Go type has no shape.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "structure: unsupported type " + e.Type.String()
}

var (
	valueType         = reflect.TypeFor[Value]()
	marshalerType     = reflect.TypeFor[Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// Of converts x into a Value.
//
// Values and Marshalers describe themselves; encoding.TextMarshaler
// implementations become string scalars; nil pointers and interfaces become
// None; structs become aggregates named by their `csv` tags (a tag of "-"
// skips the field, untagged embedded structs are inlined); slices and
// arrays become sequences, except []byte which is a scalar; maps become
// maps. Conversion is lazy: unsupported types surface as an
// *UnsupportedTypeError when the value is visited.
func Of(x any) Value {
	switch v := x.(type) {
	case nil:
		return None()
	case Value:
		return v
	case Marshaler:
		return v.StructureValue()
	case string:
		return String(v)
	case []byte:
		return Bytes(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint64:
		return Uint(v)
	case float64:
		return Float(v)
	}
	return reflectValue{rv: reflect.ValueOf(x)}
}

type reflectValue struct {
	rv reflect.Value
}

func (r reflectValue) Accept(v Visitor) error {
	rv := r.rv
	for {
		if !rv.IsValid() {
			return v.VisitScalar(None())
		}
		k := rv.Kind()
		if (k == reflect.Pointer || k == reflect.Interface) && rv.IsNil() {
			return v.VisitScalar(None())
		}
		if k != reflect.Interface && rv.CanInterface() {
			t := rv.Type()
			switch {
			case t.Implements(valueType):
				return rv.Interface().(Value).Accept(v)
			case t.Implements(marshalerType):
				return rv.Interface().(Marshaler).StructureValue().Accept(v)
			case t.Implements(textMarshalerType):
				text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
				if err != nil {
					return fmt.Errorf("structure: marshal %s: %w", t, err)
				}
				return v.VisitScalar(Scalar{kind: ScalarString, text: text})
			}
		}
		if k != reflect.Pointer && k != reflect.Interface {
			break
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return v.VisitScalar(Bool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.VisitScalar(Int(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.VisitScalar(Uint(rv.Uint()))
	case reflect.Float32:
		return v.VisitScalar(Float32(float32(rv.Float())))
	case reflect.Float64:
		return v.VisitScalar(Float(rv.Float()))
	case reflect.String:
		return v.VisitScalar(String(rv.String()))
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v.VisitScalar(Bytes(rv.Bytes()))
		}
		return v.VisitSequence(reflectSequence(rv))
	case reflect.Array:
		return v.VisitSequence(reflectSequence(rv))
	case reflect.Struct:
		return v.VisitAggregate(reflectAggregate(rv))
	case reflect.Map:
		return v.VisitMap(reflectMap(rv))
	default:
		return &UnsupportedTypeError{Type: rv.Type()}
	}
}

func reflectSequence(rv reflect.Value) Sequence {
	return Sequence{n: rv.Len(), at: func(i int) Value { return reflectValue{rv: rv.Index(i)} }}
}

func reflectAggregate(rv reflect.Value) Aggregate {
	plan := planFor(rv.Type())
	return Aggregate{
		name: rv.Type().Name(),
		n:    len(plan),
		field: func(i int) Field {
			return Field{Name: plan[i].name, Value: reflectValue{rv: rv.FieldByIndex(plan[i].index)}}
		},
	}
}

func reflectMap(rv reflect.Value) Map {
	keys := rv.MapKeys()
	return Map{n: len(keys), entry: func(i int) Entry {
		return Entry{Key: reflectValue{rv: keys[i]}, Value: reflectValue{rv: rv.MapIndex(keys[i])}}
	}}
}

type fieldPlan struct {
	name  string
	index []int
}

var plans sync.Map // reflect.Type -> []fieldPlan

func planFor(t reflect.Type) []fieldPlan {
	if p, ok := plans.Load(t); ok {
		return p.([]fieldPlan)
	}
	p, _ := plans.LoadOrStore(t, buildPlan(t, nil))
	return p.([]fieldPlan)
}

func buildPlan(t reflect.Type, parent []int) []fieldPlan {
	var plan []fieldPlan
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			plan = append(plan, buildPlan(sf.Type, index)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		plan = append(plan, fieldPlan{name: name, index: index})
	}
	return plan
}

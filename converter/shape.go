package converter

import (
	"reflect"
	"strings"
)

// Shape is the closed, tagged description of a conversion target.
// Shapes are built once and shared; they must not be modified after use.
type Shape struct {
	Kind      Kind
	Primitive Primitive // KindPrimitive only

	// Name identifies records and custom shapes; it is used to look up
	// custom converters and name mappers.
	Name string

	Elem  *Shape   // KindOptional, KindSequence, KindSet, KindVarTuple, KindMapping (value)
	Key   *Shape   // KindMapping
	Items []*Shape // KindUnion alternatives, KindTuple positions

	Fields    []Field         // KindRecord
	Construct ConstructorFunc // KindRecord

	// GoType is the Go type values of this shape convert to, when known.
	// Custom converters may match on it.
	GoType reflect.Type
}

// Field is a declared member of a record shape.
type Field struct {
	Name  string
	Shape *Shape

	// Optional fields may be absent from the input.
	Optional bool
}

// ConstructorFunc builds a record from its converted fields, keyed by field
// name. A returned error is reported as a validation error at the record.
type ConstructorFunc func(fields map[string]any) (any, error)

var (
	anyShape = &Shape{Kind: KindAny}

	primitiveShapes = map[Primitive]*Shape{}
)

func init() {
	for p := PrimitiveString; p <= PrimitiveNull; p++ {
		primitiveShapes[p] = &Shape{Kind: KindPrimitive, Primitive: p}
	}
}

// Any returns the shape accepting every value unchanged.
func Any() *Shape { return anyShape }

// PrimitiveOf returns the shared shape of primitive p.
func PrimitiveOf(p Primitive) *Shape {
	s, ok := primitiveShapes[p]
	if !ok {
		panic("converter: invalid primitive " + p.String())
	}

	return s
}

// String and the functions below return the shared primitive shapes.
func String() *Shape        { return PrimitiveOf(PrimitiveString) }
func Int() *Shape           { return PrimitiveOf(PrimitiveInt) }
func Float() *Shape         { return PrimitiveOf(PrimitiveFloat) }
func Bool() *Shape          { return PrimitiveOf(PrimitiveBool) }
func Bytes() *Shape         { return PrimitiveOf(PrimitiveBytes) }
func Decimal() *Shape       { return PrimitiveOf(PrimitiveDecimal) }
func DateTime() *Shape      { return PrimitiveOf(PrimitiveDateTime) }
func NaiveDateTime() *Shape { return PrimitiveOf(PrimitiveLocalDateTime) }
func DateOnly() *Shape      { return PrimitiveOf(PrimitiveDate) }
func Null() *Shape          { return PrimitiveOf(PrimitiveNull) }

// OptionalOf returns a shape accepting null or elem.
func OptionalOf(elem *Shape) *Shape {
	if elem.Kind == KindOptional {
		return elem
	}

	return &Shape{Kind: KindOptional, Elem: elem}
}

// UnionOf returns a shape accepting any of the alternatives. The order of
// alternatives breaks ties between equally confident conversions.
func UnionOf(alternatives ...*Shape) *Shape {
	return &Shape{Kind: KindUnion, Items: alternatives}
}

// SequenceOf returns a shape of ordered lists.
func SequenceOf(elem *Shape) *Shape {
	return &Shape{Kind: KindSequence, Elem: elem}
}

// SetOf returns a shape of sets. Elements must be hashable.
func SetOf(elem *Shape) *Shape {
	return &Shape{Kind: KindSet, Elem: elem}
}

// TupleOf returns a fixed arity tuple shape.
func TupleOf(items ...*Shape) *Shape {
	return &Shape{Kind: KindTuple, Items: items}
}

// VarTupleOf returns a variable length tuple shape.
func VarTupleOf(elem *Shape) *Shape {
	return &Shape{Kind: KindVarTuple, Elem: elem}
}

// MappingOf returns a shape of string keyed objects.
func MappingOf(key, value *Shape) *Shape {
	return &Shape{Kind: KindMapping, Key: key, Elem: value}
}

// RecordOf returns a record shape.
func RecordOf(name string, fields []Field, construct ConstructorFunc) *Shape {
	return &Shape{Kind: KindRecord, Name: name, Fields: fields, Construct: construct}
}

// CustomOf returns a shape that can only be converted by a registered
// CustomConverter matching its name or Go type.
func CustomOf(name string, goType reflect.Type) *Shape {
	return &Shape{Kind: KindCustom, Name: name, GoType: goType}
}

// IsOptional reports whether s accepts null without error: optionals and
// unions of exactly two alternatives one of which is null.
func (s *Shape) IsOptional() bool {
	_, ok := s.optionalElem()
	return ok
}

func (s *Shape) optionalElem() (*Shape, bool) {
	switch s.Kind {
	case KindOptional:
		return s.Elem, true
	case KindUnion:
		if len(s.Items) != 2 {
			return nil, false
		}

		for i, item := range s.Items {
			if item.isNull() {
				return s.Items[1-i], true
			}
		}
	}

	return nil, false
}

func (s *Shape) isNull() bool {
	return s.Kind == KindPrimitive && s.Primitive == PrimitiveNull
}

// String renders s as a compact type expression, e.g. "[]?int" or
// "map[string]tuple[int, string]".
func (s *Shape) String() string {
	var sb strings.Builder
	s.write(&sb, map[*Shape]bool{})

	return sb.String()
}

var primitiveExpr = map[Primitive]string{
	PrimitiveString:        "string",
	PrimitiveInt:           "int",
	PrimitiveFloat:         "float",
	PrimitiveBool:          "bool",
	PrimitiveBytes:         "bytes",
	PrimitiveDecimal:       "decimal",
	PrimitiveDateTime:      "datetime",
	PrimitiveLocalDateTime: "localdatetime",
	PrimitiveDate:          "date",
	PrimitiveNull:          "null",
}

// PrimitiveByExpr looks up a primitive by its type expression name.
func PrimitiveByExpr(name string) (Primitive, bool) {
	for p, n := range primitiveExpr {
		if n == name {
			return p, true
		}
	}

	return 0, false
}

func (s *Shape) write(sb *strings.Builder, seen map[*Shape]bool) {
	if s == nil {
		sb.WriteString("<nil>")
		return
	}

	switch s.Kind {
	case KindAny:
		sb.WriteString("any")
	case KindPrimitive:
		sb.WriteString(primitiveExpr[s.Primitive])
	case KindOptional:
		sb.WriteByte('?')
		s.Elem.write(sb, seen)
	case KindUnion:
		for i, item := range s.Items {
			if i > 0 {
				sb.WriteString(" | ")
			}

			item.write(sb, seen)
		}
	case KindSequence:
		sb.WriteString("[]")
		s.Elem.write(sb, seen)
	case KindSet:
		sb.WriteString("set[")
		s.Elem.write(sb, seen)
		sb.WriteByte(']')
	case KindTuple:
		sb.WriteString("tuple[")

		for i, item := range s.Items {
			if i > 0 {
				sb.WriteString(", ")
			}

			item.write(sb, seen)
		}

		sb.WriteByte(']')
	case KindVarTuple:
		sb.WriteString("tuple[")
		s.Elem.write(sb, seen)
		sb.WriteString("...]")
	case KindMapping:
		sb.WriteString("map[")
		s.Key.write(sb, seen)
		sb.WriteByte(']')
		s.Elem.write(sb, seen)
	case KindRecord:
		if s.Name != "" || seen[s] {
			sb.WriteString(s.Name)
			return
		}

		seen[s] = true

		sb.WriteString("record{")

		for i, f := range s.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(f.Name)
			sb.WriteString(": ")
			f.Shape.write(sb, seen)
		}

		sb.WriteByte('}')
	case KindCustom:
		sb.WriteString(s.Name)
	default:
		sb.WriteString(s.Kind.String())
	}
}

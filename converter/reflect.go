package converter

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// NotSupportedError is returned for Go types that have no shape.
type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

// Shaper is implemented by types that describe their own shape.
type Shaper interface {
	JSONShape() *Shape
}

var tyShaper = reflect.TypeFor[Shaper]()

// Cache for shapes, indexed by reflect.Type
var shapeCache sync.Map

// ShapeFor returns the shape of T.
func ShapeFor[T any]() (*Shape, error) {
	return ShapeOf(reflect.TypeFor[T]())
}

// MustShapeFor is like ShapeFor but panics on error.
func MustShapeFor[T any]() *Shape {
	s, err := ShapeFor[T]()
	if err != nil {
		panic(err)
	}

	return s
}

// ShapeOf derives a shape from a Go type:
//   - scalars map to primitives (time.Time is a zone aware date time)
//   - pointers map to optionals
//   - slices map to sequences, arrays to fixed tuples
//   - string keyed maps map to mappings
//   - structs map to records of their exported fields named by json tags;
//     pointer fields and fields tagged omitempty are optional
//
// Recursive types are supported.
func ShapeOf(ty reflect.Type) (*Shape, error) {
	return shapeOf(inConstructionTypes{}, ty)
}

type inConstructionTypes map[reflect.Type]*Shape

func shapeOf(inConstruction inConstructionTypes, ty reflect.Type) (*Shape, error) {
	if cached, ok := shapeCache.Load(ty); ok {
		return cached.(*Shape), nil
	}

	if placeholder, ok := inConstruction[ty]; ok {
		// detected a cycle. the placeholder is filled in once the outer call returns.
		return placeholder, nil
	}

	shape, err := makeShapeOf(inConstruction, ty)
	if err != nil {
		return nil, err
	}

	shapeCache.Store(ty, shape)

	return shape, nil
}

func makeShapeOf(inConstruction inConstructionTypes, ty reflect.Type) (*Shape, error) {
	if ty.Implements(tyShaper) {
		return reflect.Zero(ty).Interface().(Shaper).JSONShape(), nil
	}

	switch ty {
	case tyTuple:
		return VarTupleOf(Any()), nil
	case tyAnySet:
		return SetOf(Any()), nil
	}

	if p := PrimitiveFromReflectType(ty); p != 0 {
		return PrimitiveOf(p), nil
	}

	switch ty.Kind() {
	case reflect.Interface:
		if ty.NumMethod() == 0 {
			return Any(), nil
		}

		return nil, NotSupportedError{Type: ty}

	case reflect.Pointer:
		elem, err := shapeOf(inConstruction, ty.Elem())
		if err != nil {
			return nil, err
		}

		return &Shape{Kind: KindOptional, Elem: elem, GoType: ty}, nil

	case reflect.Slice:
		elem, err := shapeOf(inConstruction, ty.Elem())
		if err != nil {
			return nil, fmt.Errorf("shape for element type %q: %w", ty, err)
		}

		return &Shape{Kind: KindSequence, Elem: elem, GoType: ty}, nil

	case reflect.Array:
		elem, err := shapeOf(inConstruction, ty.Elem())
		if err != nil {
			return nil, fmt.Errorf("shape for element type %q: %w", ty, err)
		}

		items := make([]*Shape, ty.Len())
		for i := range items {
			items[i] = elem
		}

		return &Shape{Kind: KindTuple, Items: items, GoType: ty}, nil

	case reflect.Map:
		if ty.Key().Kind() != reflect.String {
			return nil, NotSupportedError{Type: ty}
		}

		elem, err := shapeOf(inConstruction, ty.Elem())
		if err != nil {
			return nil, fmt.Errorf("shape for value type %q: %w", ty, err)
		}

		return &Shape{Kind: KindMapping, Key: String(), Elem: elem, GoType: ty}, nil

	case reflect.Struct:
		return makeRecordShape(inConstruction, ty)

	default:
		return nil, NotSupportedError{Type: ty}
	}
}

func makeRecordShape(inConstruction inConstructionTypes, ty reflect.Type) (*Shape, error) {
	shape := &Shape{Kind: KindRecord, Name: ty.Name(), GoType: ty}
	inConstruction[ty] = shape

	fields := fieldsToConvert(ty)

	for _, f := range fields {
		fs, err := shapeOf(inConstruction, f.Type)
		if err != nil {
			return nil, fmt.Errorf("shape for field %q: %w", f.Name, err)
		}

		shape.Fields = append(shape.Fields, Field{
			Name:     f.Name,
			Shape:    fs,
			Optional: f.Optional || f.Type.Kind() == reflect.Pointer,
		})
	}

	shape.Construct = func(values map[string]any) (any, error) {
		target := reflect.New(ty).Elem()

		for _, f := range fields {
			v, ok := values[f.Name]
			if !ok {
				continue
			}

			if err := Assign(target.FieldByIndex(f.Index), v); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}

		return target.Interface(), nil
	}

	return shape, nil
}

type structField struct {
	Name     string
	Type     reflect.Type
	Index    []int
	Optional bool
}

// fieldsToConvert lists exported fields in declaration order, flattening
// untagged embedded structs.
func fieldsToConvert(ty reflect.Type) []structField {
	var fields []structField

	for idx := range ty.NumField() {
		fi := ty.Field(idx)
		if !fi.IsExported() {
			continue
		}

		tag := fi.Tag.Get("json")
		if tag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")

		if fi.Anonymous && name == "" && fi.Type.Kind() == reflect.Struct {
			for _, inner := range fieldsToConvert(fi.Type) {
				inner.Index = append([]int{idx}, inner.Index...)
				fields = append(fields, inner)
			}

			continue
		}

		if name == "" {
			name = fi.Name
		}

		fields = append(fields, structField{
			Name:     name,
			Type:     fi.Type,
			Index:    fi.Index,
			Optional: strings.Contains(opts, "omitempty"),
		})
	}

	return fields
}

// Assign stores a converted value into target, adapting the value model
// (int64, float64, []any, Tuple, map[string]any, sets) to the Go type of target.
func Assign(target reflect.Value, v any) error {
	if v == nil {
		target.SetZero()
		return nil
	}

	rv := reflect.ValueOf(v)
	ty := target.Type()

	if rv.Type().AssignableTo(ty) {
		target.Set(rv)
		return nil
	}

	switch ty.Kind() {
	case reflect.Pointer:
		elem := reflect.New(ty.Elem())
		if err := Assign(elem.Elem(), v); err != nil {
			return err
		}

		target.Set(elem)

		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asNumber(v)
		if !ok || !n.isInt || target.OverflowInt(n.i) {
			return fmt.Errorf("cannot assign %v to %s", v, ty)
		}

		target.SetInt(n.i)

		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asNumber(v)
		if !ok || !n.isInt || n.i < 0 || target.OverflowUint(uint64(n.i)) {
			return fmt.Errorf("cannot assign %v to %s", v, ty)
		}

		target.SetUint(uint64(n.i))

		return nil

	case reflect.Float32, reflect.Float64:
		n, ok := asNumber(v)
		if !ok {
			return fmt.Errorf("cannot assign %T to %s", v, ty)
		}

		target.SetFloat(n.f)

		return nil

	case reflect.Slice:
		items, ok := asSequence(v)
		if !ok {
			if set, isSet := v.(mapset.Set[any]); isSet {
				items, ok = set.ToSlice(), true
			}
		}

		if !ok {
			return fmt.Errorf("cannot assign %T to %s", v, ty)
		}

		out := reflect.MakeSlice(ty, len(items), len(items))
		for i, item := range items {
			if err := Assign(out.Index(i), item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}

		target.Set(out)

		return nil

	case reflect.Array:
		items, ok := asSequence(v)
		if !ok || len(items) != ty.Len() {
			return fmt.Errorf("cannot assign %v to %s", v, ty)
		}

		for i, item := range items {
			if err := Assign(target.Index(i), item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}

		return nil

	case reflect.Map:
		entries, ok := asMapping(v)
		if !ok {
			return fmt.Errorf("cannot assign %T to %s", v, ty)
		}

		out := reflect.MakeMapWithSize(ty, len(entries))
		for k, e := range entries {
			ev := reflect.New(ty.Elem()).Elem()
			if err := Assign(ev, e); err != nil {
				return fmt.Errorf("key %s: %w", k, err)
			}

			out.SetMapIndex(reflect.ValueOf(k).Convert(ty.Key()), ev)
		}

		target.Set(out)

		return nil
	}

	if rv.Kind() == ty.Kind() && rv.Type().ConvertibleTo(ty) {
		target.Set(rv.Convert(ty))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", v, ty)
}

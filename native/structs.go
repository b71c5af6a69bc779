package native

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"jsonapi-serde/converter"
	"jsonapi-serde/mapper"
)

// StructDescriptor describes pointers to a Go struct type. Exported fields
// become attributes named after the field, except for the identity field and
// the fields declared as relationships.
type StructDescriptor struct {
	*descriptor

	typ reflect.Type
}

// NewStructDescriptor describes *T. idField names the identity field.
func NewStructDescriptor[T any](idField string, kind IdentityKind) (*StructDescriptor, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, errors.Errorf("%s is not a struct type", typ)
	}

	if f, ok := typ.FieldByName(idField); !ok || !f.IsExported() {
		return nil, errors.Errorf("%s has no exported field %s", typ, idField)
	}

	d := &StructDescriptor{typ: typ}
	d.descriptor = newDescriptor(d, mapper.ClassOfType(reflect.PointerTo(typ)), kind, structAccessor{typ: typ, idField: idField})

	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() || f.Anonymous || f.Name == idField || isRelationshipType(f.Type) {
			continue
		}

		allowNull := f.Type.Kind() == reflect.Pointer

		valueType := f.Type
		if allowNull {
			valueType = f.Type.Elem()
		}

		// fields without a shape store converted values as they are
		shape, err := converter.ShapeOf(valueType)
		if err != nil {
			shape = nil
		}

		d.addAttribute(f.Name, shape, allowNull)
	}

	return d, nil
}

// MustNewStructDescriptor is like NewStructDescriptor but panics on error.
func MustNewStructDescriptor[T any](idField string, kind IdentityKind) *StructDescriptor {
	d, err := NewStructDescriptor[T](idField, kind)
	if err != nil {
		panic(err)
	}

	return d
}

// isRelationshipType reports whether fields of type t hold related structs:
// pointers to non-primitive structs or slices of them. Such fields are
// declared with AddToOne and AddToMany.
func isRelationshipType(t reflect.Type) bool {
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}

	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct && converter.PrimitiveFromReflectType(t.Elem()) == 0
}

// AddToOne declares field, a pointer to a struct described by dest, as a
// to-one relationship.
func (d *StructDescriptor) AddToOne(field string, dest *StructDescriptor) (*ToOne, error) {
	f, ok := d.typ.FieldByName(field)
	if !ok || f.Type != reflect.PointerTo(dest.typ) {
		return nil, errors.Errorf("%s.%s is not a *%s", d.typ, field, dest.typ)
	}

	return d.addToOne(field, dest), nil
}

// AddToMany declares field, a slice of pointers to structs described by
// dest, as a to-many relationship.
func (d *StructDescriptor) AddToMany(field string, dest *StructDescriptor) (*ToMany, error) {
	f, ok := d.typ.FieldByName(field)
	if !ok || f.Type != reflect.SliceOf(reflect.PointerTo(dest.typ)) {
		return nil, errors.Errorf("%s.%s is not a []*%s", d.typ, field, dest.typ)
	}

	return d.addToMany(field, dest), nil
}

// Stub returns a zero struct carrying id.
func (d *StructDescriptor) Stub(id any) any {
	obj, err := d.acc.newObject(id)
	if err != nil {
		return nil
	}

	return obj
}

type structAccessor struct {
	typ     reflect.Type
	idField string
}

func (a structAccessor) value(obj any) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(a.typ) || rv.IsNil() {
		return reflect.Value{}, &mapper.InvalidNativeObjectStateError{
			Message: fmt.Sprintf("*%s expected, got %s", a.typ, mapper.ClassOf(obj)),
		}
	}

	return rv.Elem(), nil
}

func (a structAccessor) field(obj any, name string) (reflect.Value, error) {
	rv, err := a.value(obj)
	if err != nil {
		return reflect.Value{}, err
	}

	f := rv.FieldByName(name)
	if !f.IsValid() {
		return reflect.Value{}, errors.Errorf("%s has no field %s", a.typ, name)
	}

	return f, nil
}

func (a structAccessor) newObject(id any) (any, error) {
	obj := reflect.New(a.typ)
	if err := converter.Assign(obj.Elem().FieldByName(a.idField), id); err != nil {
		return nil, errors.Wrapf(err, "assigning identity of %s", a.typ)
	}

	return obj.Interface(), nil
}

func (a structAccessor) identity(obj any) (any, error) {
	f, err := a.field(obj, a.idField)
	if err != nil {
		return nil, err
	}

	return identityValue(f), nil
}

// identityValue widens integer identities to int64, the kind IdentityInt
// parses into.
func identityValue(f reflect.Value) any {
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int()
	default:
		return f.Interface()
	}
}

func (a structAccessor) get(obj any, name string) (any, error) {
	f, err := a.field(obj, name)
	if err != nil {
		return nil, err
	}

	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil, nil
		}

		return f.Elem().Interface(), nil
	}

	return f.Interface(), nil
}

func (a structAccessor) set(obj any, name string, v any) error {
	f, err := a.field(obj, name)
	if err != nil {
		return err
	}

	return converter.Assign(f, v)
}

func (a structAccessor) equal(obj any, name string, v any) (bool, error) {
	f, err := a.field(obj, name)
	if err != nil {
		return false, err
	}

	candidate := reflect.New(f.Type()).Elem()
	if err := converter.Assign(candidate, v); err != nil {
		return false, err
	}

	return reflect.DeepEqual(f.Interface(), candidate.Interface()), nil
}

func (a structAccessor) getToOne(obj any, name string) (any, error) {
	f, err := a.field(obj, name)
	if err != nil {
		return nil, err
	}

	if f.IsNil() {
		return nil, nil
	}

	return f.Interface(), nil
}

func (a structAccessor) setToOne(obj any, name string, v any) error {
	f, err := a.field(obj, name)
	if err != nil {
		return err
	}

	if v == nil {
		f.SetZero()
		return nil
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(f.Type()) {
		return errors.Errorf("cannot assign %s to %s.%s", rv.Type(), a.typ, name)
	}

	f.Set(rv)

	return nil
}

func (a structAccessor) getToMany(obj any, name string) ([]any, error) {
	f, err := a.field(obj, name)
	if err != nil {
		return nil, err
	}

	out := make([]any, f.Len())
	for i := range out {
		out[i] = f.Index(i).Interface()
	}

	return out, nil
}

func (a structAccessor) setToMany(obj any, name string, vs []any) error {
	f, err := a.field(obj, name)
	if err != nil {
		return err
	}

	s := reflect.MakeSlice(f.Type(), 0, len(vs))

	for _, v := range vs {
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || !rv.Type().AssignableTo(f.Type().Elem()) {
			return errors.Errorf("cannot add %s to %s.%s", mapper.ClassOf(v), a.typ, name)
		}

		s = reflect.Append(s, rv)
	}

	f.Set(s)

	return nil
}

var _ mapper.NativeDescriptor = (*StructDescriptor)(nil)

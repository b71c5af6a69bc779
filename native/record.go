package native

import (
	"fmt"
	"reflect"

	"jsonapi-serde/converter"
	"jsonapi-serde/mapper"
)

// Record is a map backed native object.
type Record struct {
	Class      string
	ID         any
	Attributes map[string]any
	ToOne      map[string]*Record
	ToMany     map[string][]*Record
}

// NewRecord returns an empty record of class.
func NewRecord(class string, id any) *Record {
	return &Record{
		Class:      class,
		ID:         id,
		Attributes: map[string]any{},
		ToOne:      map[string]*Record{},
		ToMany:     map[string][]*Record{},
	}
}

// NativeClass implements mapper.Classed.
func (r *Record) NativeClass() string { return r.Class }

func (r *Record) String() string { return fmt.Sprintf("%s(%v)", r.Class, r.ID) }

// RecordDescriptor describes records of one class.
type RecordDescriptor struct {
	*descriptor
}

// NewRecordDescriptor returns a descriptor of records of class, identified
// by kind.
func NewRecordDescriptor(class string, kind IdentityKind) *RecordDescriptor {
	d := &RecordDescriptor{}
	d.descriptor = newDescriptor(d, class, kind, recordAccessor{class: class})

	return d
}

// AddAttribute declares an attribute. A nil shape stores values unchanged.
func (d *RecordDescriptor) AddAttribute(name string, shape *converter.Shape, allowNull bool) *Attribute {
	return d.addAttribute(name, shape, allowNull)
}

// AddToOne declares a to-one relationship to records of dest.
func (d *RecordDescriptor) AddToOne(name string, dest mapper.NativeDescriptor) *ToOne {
	return d.addToOne(name, dest)
}

// AddToMany declares a to-many relationship to records of dest.
func (d *RecordDescriptor) AddToMany(name string, dest mapper.NativeDescriptor) *ToMany {
	return d.addToMany(name, dest)
}

// Stub returns an empty record standing in for one not known yet.
func (d *RecordDescriptor) Stub(id any) any {
	return NewRecord(d.class, id)
}

type recordAccessor struct {
	class string
}

func (a recordAccessor) record(obj any) (*Record, error) {
	r, ok := obj.(*Record)
	if !ok || r == nil || r.Class != a.class {
		return nil, &mapper.InvalidNativeObjectStateError{
			Message: fmt.Sprintf("%s record expected, got %s", a.class, mapper.ClassOf(obj)),
		}
	}

	return r, nil
}

func (a recordAccessor) newObject(id any) (any, error) {
	return NewRecord(a.class, id), nil
}

func (a recordAccessor) identity(obj any) (any, error) {
	r, err := a.record(obj)
	if err != nil {
		return nil, err
	}

	return r.ID, nil
}

func (a recordAccessor) get(obj any, name string) (any, error) {
	r, err := a.record(obj)
	if err != nil {
		return nil, err
	}

	return r.Attributes[name], nil
}

func (a recordAccessor) set(obj any, name string, v any) error {
	r, err := a.record(obj)
	if err != nil {
		return err
	}

	r.Attributes[name] = v

	return nil
}

func (a recordAccessor) equal(obj any, name string, v any) (bool, error) {
	current, err := a.get(obj, name)
	if err != nil {
		return false, err
	}

	return reflect.DeepEqual(current, v), nil
}

func (a recordAccessor) getToOne(obj any, name string) (any, error) {
	r, err := a.record(obj)
	if err != nil {
		return nil, err
	}

	if related := r.ToOne[name]; related != nil {
		return related, nil
	}

	return nil, nil
}

func asRecord(v any) (*Record, error) {
	r, ok := v.(*Record)
	if !ok {
		return nil, &mapper.InvalidNativeObjectStateError{Message: fmt.Sprintf("record expected, got %s", mapper.ClassOf(v))}
	}

	return r, nil
}

func (a recordAccessor) setToOne(obj any, name string, v any) error {
	r, err := a.record(obj)
	if err != nil {
		return err
	}

	if v == nil {
		delete(r.ToOne, name)
		return nil
	}

	related, err := asRecord(v)
	if err != nil {
		return err
	}

	r.ToOne[name] = related

	return nil
}

func (a recordAccessor) getToMany(obj any, name string) ([]any, error) {
	r, err := a.record(obj)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(r.ToMany[name]))
	for i, related := range r.ToMany[name] {
		out[i] = related
	}

	return out, nil
}

func (a recordAccessor) setToMany(obj any, name string, vs []any) error {
	r, err := a.record(obj)
	if err != nil {
		return err
	}

	related := make([]*Record, len(vs))
	for i, v := range vs {
		if related[i], err = asRecord(v); err != nil {
			return err
		}
	}

	r.ToMany[name] = related

	return nil
}

var (
	_ mapper.NativeDescriptor = (*RecordDescriptor)(nil)
	_ mapper.Classed          = (*Record)(nil)
)

package native

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"jsonapi-serde/converter"
	"jsonapi-serde/mapper"
)

// accessor reads and writes the state of one kind of native object.
type accessor interface {
	newObject(id any) (any, error)
	identity(obj any) (any, error)

	get(obj any, name string) (any, error)
	set(obj any, name string, v any) error
	// equal reports whether attribute name of obj would not change by
	// setting v.
	equal(obj any, name string, v any) (bool, error)

	getToOne(obj any, name string) (any, error)
	setToOne(obj any, name string, v any) error
	getToMany(obj any, name string) ([]any, error)
	setToMany(obj any, name string, vs []any) error
}

// descriptor implements mapper.NativeDescriptor on top of an accessor.
type descriptor struct {
	self  mapper.NativeDescriptor
	class string
	kind  IdentityKind
	newID func() any
	acc   accessor

	attrs *orderedmap.OrderedMap[string, *Attribute]
	rels  *orderedmap.OrderedMap[string, mapper.NativeRelationshipDescriptor]
}

func newDescriptor(self mapper.NativeDescriptor, class string, kind IdentityKind, acc accessor) *descriptor {
	return &descriptor{
		self:  self,
		class: class,
		kind:  kind,
		newID: kind.Generator(),
		acc:   acc,
		attrs: orderedmap.New[string, *Attribute](),
		rels:  orderedmap.New[string, mapper.NativeRelationshipDescriptor](),
	}
}

func (d *descriptor) Class() string { return d.class }

// IdentityKind returns the kind of identities of the described objects.
func (d *descriptor) IdentityKind() IdentityKind { return d.kind }

func (d *descriptor) addAttribute(name string, shape *converter.Shape, allowNull bool) *Attribute {
	a := &Attribute{name: name, shape: shape, allowNull: allowNull, owner: d}
	d.attrs.Set(name, a)

	return a
}

func (d *descriptor) Attributes() []mapper.NativeAttributeDescriptor {
	out := make([]mapper.NativeAttributeDescriptor, 0, d.attrs.Len())
	for pair := d.attrs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

func (d *descriptor) AttributeByName(name string) (mapper.NativeAttributeDescriptor, error) {
	a, ok := d.attrs.Get(name)
	if !ok {
		return nil, &mapper.NativeAttributeNotFoundError{Descriptor: d.self, Name: name}
	}

	return a, nil
}

func (d *descriptor) Relationships() []mapper.NativeRelationshipDescriptor {
	out := make([]mapper.NativeRelationshipDescriptor, 0, d.rels.Len())
	for pair := d.rels.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

func (d *descriptor) RelationshipByName(name string) (mapper.NativeRelationshipDescriptor, error) {
	r, ok := d.rels.Get(name)
	if !ok {
		return nil, &mapper.NativeRelationshipNotFoundError{Descriptor: d.self, Name: name}
	}

	return r, nil
}

func (d *descriptor) Identity(target any) (any, error) {
	return d.acc.identity(target)
}

func (d *descriptor) NewBuilder() mapper.NativeBuilder {
	return newBuilder(d, nil)
}

func (d *descriptor) NewUpdater(target any) (mapper.NativeUpdater, error) {
	if _, err := d.acc.identity(target); err != nil {
		return nil, err
	}

	return newBuilder(d, target), nil
}

// Attribute is a native attribute of a record or struct.
type Attribute struct {
	name      string
	shape     *converter.Shape
	allowNull bool
	owner     *descriptor
}

func (a *Attribute) Name() string { return a.name }

func (a *Attribute) Type() *converter.Shape { return a.shape }

func (a *Attribute) AllowNull() bool { return a.allowNull }

func (a *Attribute) FetchValue(target any) (any, error) {
	return a.owner.acc.get(target, a.name)
}

// ToOne is a to-one native relationship.
type ToOne struct {
	name  string
	dest  mapper.NativeDescriptor
	owner *descriptor
}

func (r *ToOne) Name() string { return r.name }

func (r *ToOne) Destination() mapper.NativeDescriptor { return r.dest }

func (r *ToOne) FetchRelated(target any) (any, error) {
	return r.owner.acc.getToOne(target, r.name)
}

// ToMany is a to-many native relationship.
type ToMany struct {
	name  string
	dest  mapper.NativeDescriptor
	owner *descriptor
}

func (r *ToMany) Name() string { return r.name }

func (r *ToMany) Destination() mapper.NativeDescriptor { return r.dest }

func (r *ToMany) FetchRelated(target any) ([]any, error) {
	return r.owner.acc.getToMany(target, r.name)
}

func (d *descriptor) addToOne(name string, dest mapper.NativeDescriptor) *ToOne {
	r := &ToOne{name: name, dest: dest, owner: d}
	d.rels.Set(name, r)

	return r
}

func (d *descriptor) addToMany(name string, dest mapper.NativeDescriptor) *ToMany {
	r := &ToMany{name: name, dest: dest, owner: d}
	d.rels.Set(name, r)

	return r
}

var (
	_ mapper.NativeAttributeDescriptor          = (*Attribute)(nil)
	_ mapper.NativeToOneRelationshipDescriptor  = (*ToOne)(nil)
	_ mapper.NativeToManyRelationshipDescriptor = (*ToMany)(nil)
)

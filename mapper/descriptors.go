package mapper

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"jsonapi-serde/converter"
	"jsonapi-serde/deferred"
	"jsonapi-serde/serde"
)

// ResourceAttributeDescriptor declares an attribute of a resource type.
type ResourceAttributeDescriptor struct {
	Name string
	// Type is the shape attribute values are converted against. A nil Type
	// accepts any attribute value.
	Type *converter.Shape

	AllowNull          bool
	RequiredOnCreation bool
	ReadOnly           bool
	WriteOnly          bool
	Immutable          bool

	parent *ResourceDescriptor
}

// Parent returns the resource descriptor the attribute was declared in, or
// nil before the descriptor is built.
func (d *ResourceAttributeDescriptor) Parent() *ResourceDescriptor {
	return d.parent
}

func (d *ResourceAttributeDescriptor) bind(parent *ResourceDescriptor) {
	if d.parent != nil {
		panic("mapper: attribute " + d.Name + " is already bound to " + d.parent.name)
	}

	d.parent = parent
}

// ExtractValue returns the attribute's value in repr. The last occurrence
// wins when the name is repeated.
func (d *ResourceAttributeDescriptor) ExtractValue(repr serde.ResourceRepr) (any, error) {
	v, ok := repr.Attribute(d.Name)
	if !ok {
		return nil, &AttributeNotFoundError{Resource: d.parent, Name: d.Name, Source: repr.Source()}
	}

	return v, nil
}

// shape returns the shape to convert values of the attribute against,
// honoring AllowNull.
func (d *ResourceAttributeDescriptor) shape() *converter.Shape {
	if d.Type == nil {
		return converter.Any()
	}

	if d.AllowNull && !d.Type.IsOptional() {
		return converter.OptionalOf(d.Type)
	}

	return d.Type
}

// RelationshipCommon holds the members shared by to-one and to-many
// relationship descriptors.
type RelationshipCommon struct {
	Name string
	// Destination resolves the resource type on the other side. Use
	// deferred.Value for a known descriptor and deferred.Func to refer to
	// one that does not exist yet.
	Destination        deferred.Deferred[*ResourceDescriptor]
	RequiredOnCreation bool

	parent *ResourceDescriptor
}

// Common returns c itself; it makes RelationshipCommon satisfy
// ResourceRelationshipDescriptor through embedding.
func (c *RelationshipCommon) Common() *RelationshipCommon { return c }

// Parent returns the resource descriptor the relationship was declared in.
func (c *RelationshipCommon) Parent() *ResourceDescriptor { return c.parent }

// ResolveDestination returns the destination resource descriptor.
func (c *RelationshipCommon) ResolveDestination() (*ResourceDescriptor, error) {
	if c.Destination == nil {
		return nil, declarationErrorf("relationship %s has no destination", c.Name)
	}

	return c.Destination.Get()
}

// ExtractRelated returns the relationship object named after c in repr.
func (c *RelationshipCommon) ExtractRelated(repr serde.ResourceRepr) (serde.LinkageRepr, error) {
	l, ok := repr.Relationship(c.Name)
	if !ok {
		return serde.LinkageRepr{}, &RelationshipNotFoundError{Resource: c.parent, Name: c.Name, Source: repr.Source()}
	}

	return l, nil
}

func (c *RelationshipCommon) bind(parent *ResourceDescriptor) {
	if c.parent != nil {
		panic("mapper: relationship " + c.Name + " is already bound to " + c.parent.name)
	}

	c.parent = parent
}

// ResourceRelationshipDescriptor is either a
// *ResourceToOneRelationshipDescriptor or a
// *ResourceToManyRelationshipDescriptor.
type ResourceRelationshipDescriptor interface {
	Common() *RelationshipCommon
	isToMany() bool
}

// ResourceToOneRelationshipDescriptor declares a to-one relationship.
type ResourceToOneRelationshipDescriptor struct {
	RelationshipCommon

	AllowNull bool
}

func (*ResourceToOneRelationshipDescriptor) isToMany() bool { return false }

// ResourceToManyRelationshipDescriptor declares a to-many relationship.
type ResourceToManyRelationshipDescriptor struct {
	RelationshipCommon

	AllowEmpty bool
}

func (*ResourceToManyRelationshipDescriptor) isToMany() bool { return true }

// ResourceDescriptor declares a resource type. Attributes and relationships
// keep their declaration order.
type ResourceDescriptor struct {
	name          string
	attributes    *orderedmap.OrderedMap[string, *ResourceAttributeDescriptor]
	relationships *orderedmap.OrderedMap[string, ResourceRelationshipDescriptor]
}

// NewResourceDescriptor builds a resource descriptor and binds the given
// members to it. Names must be unique within attributes and within
// relationships.
func NewResourceDescriptor(
	name string,
	attrs []*ResourceAttributeDescriptor,
	rels []ResourceRelationshipDescriptor,
) (*ResourceDescriptor, error) {
	d := &ResourceDescriptor{
		name:          name,
		attributes:    orderedmap.New[string, *ResourceAttributeDescriptor](),
		relationships: orderedmap.New[string, ResourceRelationshipDescriptor](),
	}

	for _, attr := range attrs {
		if _, dup := d.attributes.Get(attr.Name); dup {
			return nil, declarationErrorf("duplicate attribute %s in resource %s", attr.Name, name)
		}

		d.attributes.Set(attr.Name, attr)
	}

	for _, rel := range rels {
		if err := d.checkRelationship(rel); err != nil {
			return nil, err
		}

		d.relationships.Set(rel.Common().Name, rel)
	}

	for pair := d.attributes.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.bind(d)
	}

	for pair := d.relationships.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Common().bind(d)
	}

	return d, nil
}

// MustNewResourceDescriptor is like NewResourceDescriptor but panics on error.
func MustNewResourceDescriptor(
	name string,
	attrs []*ResourceAttributeDescriptor,
	rels []ResourceRelationshipDescriptor,
) *ResourceDescriptor {
	d, err := NewResourceDescriptor(name, attrs, rels)
	if err != nil {
		panic(err)
	}

	return d
}

func (d *ResourceDescriptor) checkRelationship(rel ResourceRelationshipDescriptor) error {
	name := rel.Common().Name
	if _, dup := d.relationships.Get(name); dup {
		return declarationErrorf("duplicate relationship %s in resource %s", name, d.name)
	}

	return nil
}

// AddRelationship declares a relationship after construction, closing
// cycles between resource types.
func (d *ResourceDescriptor) AddRelationship(rel ResourceRelationshipDescriptor) error {
	if err := d.checkRelationship(rel); err != nil {
		return err
	}

	rel.Common().bind(d)
	d.relationships.Set(rel.Common().Name, rel)

	return nil
}

// Name returns the resource type name.
func (d *ResourceDescriptor) Name() string { return d.name }

// String implements fmt.Stringer.
func (d *ResourceDescriptor) String() string { return d.name }

// Attribute looks up an attribute by name.
func (d *ResourceDescriptor) Attribute(name string) (*ResourceAttributeDescriptor, bool) {
	return d.attributes.Get(name)
}

// Relationship looks up a relationship by name.
func (d *ResourceDescriptor) Relationship(name string) (ResourceRelationshipDescriptor, bool) {
	return d.relationships.Get(name)
}

// Attributes returns the attributes in declaration order.
func (d *ResourceDescriptor) Attributes() []*ResourceAttributeDescriptor {
	out := make([]*ResourceAttributeDescriptor, 0, d.attributes.Len())
	for pair := d.attributes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

// Relationships returns the relationships in declaration order.
func (d *ResourceDescriptor) Relationships() []ResourceRelationshipDescriptor {
	out := make([]ResourceRelationshipDescriptor, 0, d.relationships.Len())
	for pair := d.relationships.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

// AttributeNames returns the attribute names in declaration order.
func (d *ResourceDescriptor) AttributeNames() []string {
	out := make([]string, 0, d.attributes.Len())
	for pair := d.attributes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}

	return out
}

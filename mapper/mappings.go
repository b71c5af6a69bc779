package mapper

import (
	"fmt"

	"jsonapi-serde/internal/common"
	"jsonapi-serde/serde"
)

// AttributeMapping pairs resource attributes with native attributes. It is
// one of *ToOneAttributeMapping, *ToManyAttributeMapping and
// *ManyToOneAttributeMapping.
type AttributeMapping interface {
	// Mapper returns the mapper the mapping is bound to.
	Mapper() *Mapper
	Direction() Direction
	ResourceSide() []*ResourceAttributeDescriptor
	NativeSide() []NativeAttributeDescriptor

	// ToSerde writes the attribute values of native into builder.
	ToSerde(ctx ToSerdeContext, native any, builder *serde.ResourceReprBuilder) error
	// ToNative writes the native values converted from repr into builder.
	ToNative(ctx ToNativeContext, site *SiteContext, repr serde.ResourceRepr, builder NativeBuilder) error

	bind(m *Mapper)
}

type mappingBase struct {
	mapper    *Mapper
	direction Direction
}

func (b *mappingBase) Mapper() *Mapper { return b.mapper }

func (b *mappingBase) Direction() Direction { return b.direction }

func (b *mappingBase) bind(m *Mapper) {
	if b.mapper != nil {
		panic("mapper: attribute mapping is already bound to " + b.mapper.resource.Name())
	}

	b.mapper = m
}

// attributeSource locates attribute name within repr.
func attributeSource(repr serde.ResourceRepr, name string) serde.Source {
	source := repr.Source()
	if ptr, ok := source.Pointer(); ok {
		return serde.PointerSource(ptr.Key("attributes").Key(name))
	}

	return source
}

type mutatorDescriptor struct {
	attrs []*ResourceAttributeDescriptor
	repr  serde.ResourceRepr
}

func (m mutatorDescriptor) ImmutableError() error {
	attr := m.attrs[0]

	for _, a := range m.attrs {
		if a.Immutable {
			attr = a
			break
		}
	}

	return &ImmutableAttributeError{
		Resource: attr.Parent(),
		Name:     attr.Name,
		Source:   attributeSource(m.repr, attr.Name),
	}
}

func anyImmutable(attrs []*ResourceAttributeDescriptor) bool {
	return common.Any(attrs, func(a *ResourceAttributeDescriptor) bool { return a.Immutable })
}

// Conversion functions of ToOneAttributeMapping.
type (
	ToOneSerdeFunc  func(ctx ToSerdeContext, value any) (any, error)
	ToOneNativeFunc func(ctx ToNativeContext, source serde.Source, value any) (any, error)
)

// ToOneAttributeMapping maps one resource attribute to one native attribute.
type ToOneAttributeMapping struct {
	mappingBase

	ResourceAttr *ResourceAttributeDescriptor
	NativeAttr   NativeAttributeDescriptor

	toSerde  ToOneSerdeFunc
	toNative ToOneNativeFunc
}

// NewToOneAttributeMapping returns a 1:1 mapping. Nil conversion functions
// default to converting against the declared shapes.
func NewToOneAttributeMapping(
	resourceAttr *ResourceAttributeDescriptor,
	nativeAttr NativeAttributeDescriptor,
	direction Direction,
	toSerde ToOneSerdeFunc,
	toNative ToOneNativeFunc,
) *ToOneAttributeMapping {
	defSerde, defNative := ConvertingToOne(resourceAttr, nativeAttr)
	if toSerde == nil {
		toSerde = defSerde
	}

	if toNative == nil {
		toNative = defNative
	}

	return &ToOneAttributeMapping{
		mappingBase:  mappingBase{direction: direction},
		ResourceAttr: resourceAttr,
		NativeAttr:   nativeAttr,
		toSerde:      toSerde,
		toNative:     toNative,
	}
}

func (m *ToOneAttributeMapping) ResourceSide() []*ResourceAttributeDescriptor {
	return []*ResourceAttributeDescriptor{m.ResourceAttr}
}

func (m *ToOneAttributeMapping) NativeSide() []NativeAttributeDescriptor {
	return []NativeAttributeDescriptor{m.NativeAttr}
}

func (m *ToOneAttributeMapping) ToSerde(ctx ToSerdeContext, native any, builder *serde.ResourceReprBuilder) error {
	if !m.direction.ToSerde() || m.ResourceAttr.WriteOnly {
		return nil
	}

	v, err := m.NativeAttr.FetchValue(native)
	if err != nil {
		return wrapFetch(err, m.NativeAttr)
	}

	out, err := m.toSerde(ctx, v)
	if err != nil {
		return err
	}

	builder.AddAttribute(m.ResourceAttr.Name, out)

	return nil
}

func (m *ToOneAttributeMapping) ToNative(ctx ToNativeContext, _ *SiteContext, repr serde.ResourceRepr, builder NativeBuilder) error {
	value, err := m.ResourceAttr.ExtractValue(repr)
	if err != nil {
		return err
	}

	v, err := m.toNative(ctx, attributeSource(repr, m.ResourceAttr.Name), value)
	if err != nil {
		return err
	}

	if err := builder.Set(m.NativeAttr, v); err != nil {
		return err
	}

	if m.ResourceAttr.Immutable {
		builder.MarkImmutable(m.NativeAttr, mutatorDescriptor{attrs: m.ResourceSide(), repr: repr})
	}

	return nil
}

// Conversion functions of ToManyAttributeMapping.
type (
	ToManySerdeFunc  func(ctx ToSerdeContext, values []any) (any, error)
	ToManyNativeFunc func(ctx ToNativeContext, source serde.Source, value any) ([]any, error)
)

// ToManyAttributeMapping maps one composite resource attribute to several
// native attributes.
type ToManyAttributeMapping struct {
	mappingBase

	ResourceAttr *ResourceAttributeDescriptor
	NativeAttrs  []NativeAttributeDescriptor

	toSerde  ToManySerdeFunc
	toNative ToManyNativeFunc
}

// NewToManyAttributeMapping returns a 1:N mapping. Nil conversion functions
// default to converting against the declared shapes.
func NewToManyAttributeMapping(
	resourceAttr *ResourceAttributeDescriptor,
	nativeAttrs []NativeAttributeDescriptor,
	direction Direction,
	toSerde ToManySerdeFunc,
	toNative ToManyNativeFunc,
) *ToManyAttributeMapping {
	defSerde, defNative := ConvertingToMany(resourceAttr, nativeAttrs)
	if toSerde == nil {
		toSerde = defSerde
	}

	if toNative == nil {
		toNative = defNative
	}

	return &ToManyAttributeMapping{
		mappingBase:  mappingBase{direction: direction},
		ResourceAttr: resourceAttr,
		NativeAttrs:  nativeAttrs,
		toSerde:      toSerde,
		toNative:     toNative,
	}
}

func (m *ToManyAttributeMapping) ResourceSide() []*ResourceAttributeDescriptor {
	return []*ResourceAttributeDescriptor{m.ResourceAttr}
}

func (m *ToManyAttributeMapping) NativeSide() []NativeAttributeDescriptor {
	return m.NativeAttrs
}

func (m *ToManyAttributeMapping) ToSerde(ctx ToSerdeContext, native any, builder *serde.ResourceReprBuilder) error {
	if !m.direction.ToSerde() || m.ResourceAttr.WriteOnly {
		return nil
	}

	values := make([]any, len(m.NativeAttrs))
	for i, n := range m.NativeAttrs {
		v, err := n.FetchValue(native)
		if err != nil {
			return wrapFetch(err, n)
		}

		values[i] = v
	}

	out, err := m.toSerde(ctx, values)
	if err != nil {
		return err
	}

	builder.AddAttribute(m.ResourceAttr.Name, out)

	return nil
}

func (m *ToManyAttributeMapping) ToNative(ctx ToNativeContext, _ *SiteContext, repr serde.ResourceRepr, builder NativeBuilder) error {
	value, err := m.ResourceAttr.ExtractValue(repr)
	if err != nil {
		return err
	}

	values, err := m.toNative(ctx, attributeSource(repr, m.ResourceAttr.Name), value)
	if err != nil {
		return err
	}

	if len(values) != len(m.NativeAttrs) {
		return fmt.Errorf("serde side expected to yield %d items, got %d", len(m.NativeAttrs), len(values))
	}

	mutator := mutatorDescriptor{attrs: m.ResourceSide(), repr: repr}

	for i, n := range m.NativeAttrs {
		if err := builder.Set(n, values[i]); err != nil {
			return err
		}

		if m.ResourceAttr.Immutable {
			builder.MarkImmutable(n, mutator)
		}
	}

	return nil
}

// Conversion functions of ManyToOneAttributeMapping.
type (
	ManyToOneSerdeFunc  func(ctx ToSerdeContext, value any) ([]any, error)
	ManyToOneNativeFunc func(ctx ToNativeContext, sources []serde.Source, values []any) (any, error)
)

// ManyToOneAttributeMapping maps several resource attributes to one
// composite native attribute.
type ManyToOneAttributeMapping struct {
	mappingBase

	ResourceAttrs []*ResourceAttributeDescriptor
	NativeAttr    NativeAttributeDescriptor

	toSerde  ManyToOneSerdeFunc
	toNative ManyToOneNativeFunc
}

// NewManyToOneAttributeMapping returns an N:1 mapping. Nil conversion
// functions default to converting against the declared shapes.
func NewManyToOneAttributeMapping(
	resourceAttrs []*ResourceAttributeDescriptor,
	nativeAttr NativeAttributeDescriptor,
	direction Direction,
	toSerde ManyToOneSerdeFunc,
	toNative ManyToOneNativeFunc,
) *ManyToOneAttributeMapping {
	defSerde, defNative := ConvertingManyToOne(resourceAttrs, nativeAttr)
	if toSerde == nil {
		toSerde = defSerde
	}

	if toNative == nil {
		toNative = defNative
	}

	return &ManyToOneAttributeMapping{
		mappingBase:   mappingBase{direction: direction},
		ResourceAttrs: resourceAttrs,
		NativeAttr:    nativeAttr,
		toSerde:       toSerde,
		toNative:      toNative,
	}
}

func (m *ManyToOneAttributeMapping) ResourceSide() []*ResourceAttributeDescriptor {
	return m.ResourceAttrs
}

func (m *ManyToOneAttributeMapping) NativeSide() []NativeAttributeDescriptor {
	return []NativeAttributeDescriptor{m.NativeAttr}
}

func (m *ManyToOneAttributeMapping) ToSerde(ctx ToSerdeContext, native any, builder *serde.ResourceReprBuilder) error {
	if !m.direction.ToSerde() {
		return nil
	}

	v, err := m.NativeAttr.FetchValue(native)
	if err != nil {
		return wrapFetch(err, m.NativeAttr)
	}

	values, err := m.toSerde(ctx, v)
	if err != nil {
		return err
	}

	if len(values) != len(m.ResourceAttrs) {
		return fmt.Errorf("native side expected to yield %d items, got %d", len(m.ResourceAttrs), len(values))
	}

	for i, r := range m.ResourceAttrs {
		if !r.WriteOnly {
			builder.AddAttribute(r.Name, values[i])
		}
	}

	return nil
}

func (m *ManyToOneAttributeMapping) ToNative(ctx ToNativeContext, _ *SiteContext, repr serde.ResourceRepr, builder NativeBuilder) error {
	values := make([]any, len(m.ResourceAttrs))
	sources := make([]serde.Source, len(m.ResourceAttrs))

	for i, r := range m.ResourceAttrs {
		v, err := r.ExtractValue(repr)
		if err != nil {
			return err
		}

		values[i] = v
		sources[i] = attributeSource(repr, r.Name)
	}

	v, err := m.toNative(ctx, sources, values)
	if err != nil {
		return err
	}

	if err := builder.Set(m.NativeAttr, v); err != nil {
		return err
	}

	if anyImmutable(m.ResourceAttrs) {
		builder.MarkImmutable(m.NativeAttr, mutatorDescriptor{attrs: m.ResourceAttrs, repr: repr})
	}

	return nil
}

// RelationshipMapping pairs a resource relationship with a native one of
// the same cardinality.
type RelationshipMapping struct {
	ResourceSide ResourceRelationshipDescriptor
	NativeSide   NativeRelationshipDescriptor

	mapper *Mapper
}

// NewRelationshipMapping checks that both sides have the same cardinality.
func NewRelationshipMapping(resourceSide ResourceRelationshipDescriptor, nativeSide NativeRelationshipDescriptor) (*RelationshipMapping, error) {
	switch nativeSide.(type) {
	case NativeToOneRelationshipDescriptor:
		if _, ok := resourceSide.(*ResourceToOneRelationshipDescriptor); !ok {
			return nil, declarationErrorf("relationship %s: native side %s is to-one but resource side is not",
				resourceSide.Common().Name, nativeSide.Name())
		}
	case NativeToManyRelationshipDescriptor:
		if _, ok := resourceSide.(*ResourceToManyRelationshipDescriptor); !ok {
			return nil, declarationErrorf("relationship %s: native side %s is to-many but resource side is not",
				resourceSide.Common().Name, nativeSide.Name())
		}
	default:
		return nil, declarationErrorf("relationship %s: unsupported native relationship %T",
			resourceSide.Common().Name, nativeSide)
	}

	return &RelationshipMapping{ResourceSide: resourceSide, NativeSide: nativeSide}, nil
}

// MustNewRelationshipMapping is like NewRelationshipMapping but panics on
// error.
func MustNewRelationshipMapping(resourceSide ResourceRelationshipDescriptor, nativeSide NativeRelationshipDescriptor) *RelationshipMapping {
	rm, err := NewRelationshipMapping(resourceSide, nativeSide)
	if err != nil {
		panic(err)
	}

	return rm
}

// Name returns the resource side name of the relationship.
func (rm *RelationshipMapping) Name() string { return rm.ResourceSide.Common().Name }

// Mapper returns the mapper the relationship is bound to.
func (rm *RelationshipMapping) Mapper() *Mapper { return rm.mapper }

func (rm *RelationshipMapping) bind(m *Mapper) {
	if rm.mapper != nil {
		panic("mapper: relationship mapping " + rm.Name() + " is already bound to " + rm.mapper.resource.Name())
	}

	rm.mapper = m
}

var (
	_ AttributeMapping = (*ToOneAttributeMapping)(nil)
	_ AttributeMapping = (*ToManyAttributeMapping)(nil)
	_ AttributeMapping = (*ManyToOneAttributeMapping)(nil)
)

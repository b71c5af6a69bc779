package mapper

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jsonapi-serde/converter"
	"jsonapi-serde/serde"
)

// MapperContext owns the mappers of an application and runs document level
// operations against them.
type MapperContext struct {
	driver           Driver
	typeResolver     SerdeTypeResolver
	endpointResolver EndpointResolver
	converter        *converter.Converter
	logger           logrus.FieldLogger

	mu         sync.RWMutex
	byNative   map[NativeDescriptor]*Mapper
	byResource map[*ResourceDescriptor]*Mapper
	byClass    map[string]NativeDescriptor
}

// Option configures a MapperContext.
type Option func(*MapperContext)

// WithLogger sets the logger mapper events are reported to.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *MapperContext) {
		c.logger = logger
	}
}

// WithConverter sets the converter the default attribute conversions use.
func WithConverter(conv *converter.Converter) Option {
	return func(c *MapperContext) {
		c.converter = conv
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// NewMapperContext returns a MapperContext. A nil typeResolver defaults to a
// RegistryTypeResolver and a nil endpointResolver to NullEndpointResolver.
func NewMapperContext(driver Driver, typeResolver SerdeTypeResolver, endpointResolver EndpointResolver, opts ...Option) *MapperContext {
	if typeResolver == nil {
		typeResolver = NewRegistryTypeResolver()
	}

	if endpointResolver == nil {
		endpointResolver = NullEndpointResolver{}
	}

	c := &MapperContext{
		driver:           driver,
		typeResolver:     typeResolver,
		endpointResolver: endpointResolver,
		converter:        converter.New(),
		logger:           discardLogger(),
		byNative:         map[NativeDescriptor]*Mapper{},
		byResource:       map[*ResourceDescriptor]*Mapper{},
		byClass:          map[string]NativeDescriptor{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Logger returns the logger of the context.
func (c *MapperContext) Logger() logrus.FieldLogger { return c.logger }

// TypeResolver returns the type resolver of the context.
func (c *MapperContext) TypeResolver() SerdeTypeResolver { return c.typeResolver }

// CreateMapper creates and registers the mapper between resource and
// native. Every mapping is bound to the new mapper once the type resolver
// accepted it.
func (c *MapperContext) CreateMapper(
	resource *ResourceDescriptor,
	native NativeDescriptor,
	attrMappings []AttributeMapping,
	relMappings []*RelationshipMapping,
	filters Filters,
) (*Mapper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.byResource[resource]; dup {
		return nil, declarationErrorf("resource %s is already mapped", resource.Name())
	}

	if _, dup := c.byNative[native]; dup {
		return nil, declarationErrorf("native class %s is already mapped", native.Class())
	}

	m, err := newMapper(c, resource, native, attrMappings, relMappings, filters)
	if err != nil {
		return nil, err
	}

	if err := c.typeResolver.MapperAdded(m); err != nil {
		return nil, err
	}

	m.bindMappings()

	c.byNative[native] = m
	c.byResource[resource] = m
	c.byClass[native.Class()] = native

	c.logger.WithFields(logrus.Fields{
		"resource": resource.Name(),
		"native":   native.Class(),
	}).Debug("mapper registered")

	return m, nil
}

// QueryMapperByNative returns the mapper of a native descriptor.
func (c *MapperContext) QueryMapperByNative(descr NativeDescriptor) (*Mapper, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.byNative[descr]
	if !ok {
		return nil, declarationErrorf("no mapper for native class %s", descr.Class())
	}

	return m, nil
}

// QueryMapperBySerde returns the mapper of a resource descriptor.
func (c *MapperContext) QueryMapperBySerde(descr *ResourceDescriptor) (*Mapper, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.byResource[descr]
	if !ok {
		return nil, &UnknownResourceTypeError{Name: descr.Name()}
	}

	return m, nil
}

// QueryMapperBySerdeType returns the mapper of a wire type name.
func (c *MapperContext) QueryMapperBySerdeType(name string) (*Mapper, error) {
	descr, err := c.typeResolver.QueryDescriptorByTypeName(name)
	if err != nil {
		return nil, err
	}

	return c.QueryMapperBySerde(descr)
}

// QueryMapperByNativeClass returns the mapper of a native class name.
func (c *MapperContext) QueryMapperByNativeClass(class string) (*Mapper, error) {
	c.mu.RLock()
	descr, ok := c.byClass[class]
	c.mu.RUnlock()

	if !ok {
		return nil, declarationErrorf("no mapper for native class %s", class)
	}

	return c.QueryMapperByNative(descr)
}

// QueryMapperByObject returns the mapper of the native class of obj.
func (c *MapperContext) QueryMapperByObject(obj any) (*Mapper, error) {
	return c.QueryMapperByNativeClass(ClassOf(obj))
}

// NewToNativeContext returns the context document to native operations run
// in.
func (c *MapperContext) NewToNativeContext(opts ToNativeOptions) ToNativeContext {
	return &toNativeContext{outer: c, opts: opts}
}

func (c *MapperContext) opLogger(op Operation, m *Mapper) logrus.FieldLogger {
	return c.logger.WithFields(logrus.Fields{
		"op":       op.String(),
		"resource": m.Resource().Name(),
	})
}

// CreateFromSerde creates a native object from a resource object of any
// registered type.
func (c *MapperContext) CreateFromSerde(mctx MutationContext, repr serde.ResourceRepr) (any, error) {
	m, err := c.QueryMapperBySerdeType(repr.Type)
	if err != nil {
		var unknown *UnknownResourceTypeError
		if errors.As(err, &unknown) && unknown.Source.IsZero() {
			unknown.Source = repr.Source()
		}

		return nil, err
	}

	c.opLogger(OperationCreate, m).Debug("creating native object")

	return m.CreateFromSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, repr)
}

// UpdateWithSerde updates target, which must be of a registered native
// class, from repr.
func (c *MapperContext) UpdateWithSerde(mctx MutationContext, target any, repr serde.ResourceRepr, skipMissing bool) (any, error) {
	m, err := c.QueryMapperByObject(target)
	if err != nil {
		return nil, err
	}

	if m.Resource().Name() != repr.Type {
		descr, err := c.typeResolver.QueryDescriptorByTypeName(repr.Type)
		if err != nil {
			return nil, err
		}

		if descr != m.Resource() {
			return nil, &InvalidStructureError{Message: "resource type " + repr.Type + " does not match " + m.Resource().Name()}
		}
	}

	c.opLogger(OperationUpdate, m).Debug("updating native object")

	return m.UpdateWithSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, target, repr, skipMissing)
}

func (c *MapperContext) relationshipOf(target any, name string) (*Mapper, *RelationshipMapping, error) {
	m, err := c.QueryMapperByObject(target)
	if err != nil {
		return nil, nil, err
	}

	rm, err := m.RelationshipMapping(name)
	if err != nil {
		return nil, nil, err
	}

	c.opLogger(OperationUpdateRel, m).WithField("relationship", name).Debug("updating relationship")

	return m, rm, nil
}

// UpdateToOneRelWithSerde replaces the to-one relationship name of target.
func (c *MapperContext) UpdateToOneRelWithSerde(mctx MutationContext, target any, name string, id *serde.ResourceIdRepr) (any, error) {
	m, rm, err := c.relationshipOf(target, name)
	if err != nil {
		return nil, err
	}

	return m.UpdateToOneRelWithSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, target, rm, id)
}

// UpdateToManyRelWithSerde replaces the to-many relationship name of target.
func (c *MapperContext) UpdateToManyRelWithSerde(mctx MutationContext, target any, name string, ids []serde.ResourceIdRepr) (any, error) {
	m, rm, err := c.relationshipOf(target, name)
	if err != nil {
		return nil, err
	}

	return m.UpdateToManyRelWithSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, target, rm, ids)
}

// AddToOneRelWithSerde sets the to-one relationship name of target.
func (c *MapperContext) AddToOneRelWithSerde(mctx MutationContext, target any, name string, id *serde.ResourceIdRepr) (any, bool, error) {
	m, rm, err := c.relationshipOf(target, name)
	if err != nil {
		return nil, false, err
	}

	return m.AddToOneRelWithSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, target, rm, id)
}

// RemoveToOneRelWithSerde clears the to-one relationship name of target if
// it refers to id.
func (c *MapperContext) RemoveToOneRelWithSerde(mctx MutationContext, target any, name string, id serde.ResourceIdRepr) (any, bool, error) {
	m, rm, err := c.relationshipOf(target, name)
	if err != nil {
		return nil, false, err
	}

	return m.RemoveToOneRelWithSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, target, rm, id)
}

// AddToManyRelWithSerde adds ids to the to-many relationship name of target.
func (c *MapperContext) AddToManyRelWithSerde(mctx MutationContext, target any, name string, ids []serde.ResourceIdRepr) (any, []RelationshipChange, error) {
	m, rm, err := c.relationshipOf(target, name)
	if err != nil {
		return nil, nil, err
	}

	return m.AddToManyRelWithSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, target, rm, ids)
}

// RemoveToManyRelWithSerde removes ids from the to-many relationship name of
// target.
func (c *MapperContext) RemoveToManyRelWithSerde(mctx MutationContext, target any, name string, ids []serde.ResourceIdRepr) (any, []RelationshipChange, error) {
	m, rm, err := c.relationshipOf(target, name)
	if err != nil {
		return nil, nil, err
	}

	return m.RemoveToManyRelWithSerde(c.NewToNativeContext(ToNativeOptions{}), mctx, target, rm, ids)
}

// BuildSerdeSingle renders native as the primary data of a document.
func (c *MapperContext) BuildSerdeSingle(native any, opts BuildOptions) (serde.SingletonDocumentRepr, error) {
	m, err := c.QueryMapperByObject(native)
	if err != nil {
		return serde.SingletonDocumentRepr{}, err
	}

	c.opLogger(OperationRetrieve, m).Debug("building document")

	builder := serde.NewSingletonDocumentBuilder()
	ctx := newToSerdeContext(c, builder, opts)

	if err := m.BuildSerde(ctx, builder.Data(), native); err != nil {
		return serde.SingletonDocumentRepr{}, err
	}

	return builder.Build(), nil
}

// BuildSerdeCollection renders natives, all of the native class of m, as the
// primary data of a document.
func (c *MapperContext) BuildSerdeCollection(m *Mapper, natives []any, opts BuildOptions) (serde.CollectionDocumentRepr, error) {
	c.opLogger(OperationRetrieve, m).WithField("count", len(natives)).Debug("building collection document")

	builder := serde.NewCollectionDocumentBuilder()
	ctx := newToSerdeContext(c, builder, opts)

	if err := m.BuildSerdeCollection(ctx, builder, natives); err != nil {
		return serde.CollectionDocumentRepr{}, err
	}

	return builder.Build(), nil
}

// BuildSerdeRelSingle renders the to-one relationship name of native as a
// relationship document. Zero parts selects PartAll.
func (c *MapperContext) BuildSerdeRelSingle(native any, name string, parts RelationshipPart, opts BuildOptions) (serde.ToOneRelDocumentRepr, error) {
	m, err := c.QueryMapperByObject(native)
	if err != nil {
		return serde.ToOneRelDocumentRepr{}, err
	}

	rm, err := m.RelationshipMapping(name)
	if err != nil {
		return serde.ToOneRelDocumentRepr{}, err
	}

	if parts == PartNone {
		parts = PartAll
	}

	c.opLogger(OperationRetrieve, m).WithField("relationship", name).Debug("building relationship document")

	builder := serde.NewToOneRelDocumentBuilder()
	ctx := newToSerdeContext(c, builder, opts)

	if err := m.BuildSerdeToOneRelationship(ctx, builder, native, rm, parts); err != nil {
		return serde.ToOneRelDocumentRepr{}, err
	}

	return builder.Build(), nil
}

// BuildSerdeRelCollection renders the to-many relationship name of native
// as a relationship document. Zero parts selects PartAll.
func (c *MapperContext) BuildSerdeRelCollection(native any, name string, parts RelationshipPart, opts BuildOptions) (serde.ToManyRelDocumentRepr, error) {
	m, err := c.QueryMapperByObject(native)
	if err != nil {
		return serde.ToManyRelDocumentRepr{}, err
	}

	rm, err := m.RelationshipMapping(name)
	if err != nil {
		return serde.ToManyRelDocumentRepr{}, err
	}

	if parts == PartNone {
		parts = PartAll
	}

	c.opLogger(OperationRetrieve, m).WithField("relationship", name).Debug("building relationship document")

	builder := serde.NewToManyRelDocumentBuilder()
	ctx := newToSerdeContext(c, builder, opts)

	if err := m.BuildSerdeToManyRelationship(ctx, builder, native, rm, parts); err != nil {
		return serde.ToManyRelDocumentRepr{}, err
	}

	if !parts.Has(PartData) {
		builder.Done()
	}

	return builder.Build(), nil
}

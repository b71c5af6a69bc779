package mapper

import (
	"fmt"
	"net/url"
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"jsonapi-serde/converter"
	"jsonapi-serde/serde"
)

// ToSerdeContext is the state of one native to document build. Mappers
// report every object they visit to it; it decides what goes into the
// included member.
type ToSerdeContext interface {
	Converter() *converter.Converter

	SelectAttribute(mapping AttributeMapping) bool
	SelectRelationship(rm *RelationshipMapping) RelationshipPart

	QueryTypeNameByDescriptor(descr *ResourceDescriptor) (string, error)
	QueryMapperByNative(descr NativeDescriptor) (*Mapper, error)
	SerdeIdentityByNative(m *Mapper, native any) (string, error)

	ResolveSingletonEndpoint(m *Mapper, native any) (*url.URL, error)
	ResolveCollectionEndpoint(m *Mapper, natives []any) (*PaginatedEndpoint, error)
	ResolveToOneRelationshipEndpoint(m *Mapper, rm *RelationshipMapping, native any) (*url.URL, error)
	ResolveToManyRelationshipEndpoint(m *Mapper, rm *RelationshipMapping, native any) (*PaginatedEndpoint, error)

	// ToOneRelationshipVisited is called once per to-one relationship of a
	// built object. dest is only meaningful when destAvailable is set.
	ToOneRelationshipVisited(rm *RelationshipMapping, m, destMapper *Mapper, native any, destAvailable bool, dest any) error
	// ToManyRelationshipVisited is the to-many counterpart.
	ToManyRelationshipVisited(rm *RelationshipMapping, m, destMapper *Mapper, native any, destAvailable bool, dests []any) error
	// NativeVisitedPre is called before native is built, either as a
	// resource or, with asRelRef set, as a relationship identifier.
	NativeVisitedPre(m *Mapper, native any, asRelRef bool)
	NativeVisited(m *Mapper, native any, asRelRef bool)
}

// ToNativeContext is the state of one document to native operation.
type ToNativeContext interface {
	Converter() *converter.Converter

	SelectAttribute(mapping AttributeMapping) bool
	SelectRelationship(rm *RelationshipMapping) bool

	QueryMapperBySerde(descr *ResourceDescriptor) (*Mapper, error)
	QueryDescriptorByTypeName(name string) (*ResourceDescriptor, error)
	NativeIdentityBySerde(m *Mapper, id serde.ResourceIdRepr) (any, error)
}

// IncludeFilter decides whether the object dest, reached from native
// through rm, goes into the included member.
type IncludeFilter func(mctx *MapperContext, ctx ToSerdeContext, rm *RelationshipMapping, m, destMapper *Mapper, dest any) bool

// TraverseFilter decides whether the relationships of dest are visited in
// turn.
type TraverseFilter func(mctx *MapperContext, rm *RelationshipMapping, m, destMapper *Mapper, native, dest any) bool

// BuildOptions tunes a native to document build. The zero value builds every
// attribute and relationship links only, and includes nothing.
type BuildOptions struct {
	SelectAttribute      func(mapping AttributeMapping) bool
	SelectRelationship   func(rm *RelationshipMapping) RelationshipPart
	TraverseRelationship TraverseFilter
	IncludeFilter        IncludeFilter
}

// IncludeAll is an IncludeFilter that includes every related object.
func IncludeAll(*MapperContext, ToSerdeContext, *RelationshipMapping, *Mapper, *Mapper, any) bool {
	return true
}

// ToNativeOptions tunes a document to native operation. The zero value
// selects everything.
type ToNativeOptions struct {
	SelectAttribute    func(mapping AttributeMapping) bool
	SelectRelationship func(rm *RelationshipMapping) bool
}

// includedSink is what the to-serde context appends included resources to.
type includedSink interface {
	NextIncluded() *serde.ResourceReprBuilder
}

type identityPointer struct {
	typ reflect.Type
	ptr uintptr
}

// identityKey maps native objects onto comparable keys: reference types by
// address, comparable values by themselves.
func identityKey(native any) any {
	rv := reflect.ValueOf(native)
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return identityPointer{typ: rv.Type(), ptr: rv.Pointer()}
	}

	if rv.Comparable() {
		return native
	}

	return fmt.Sprintf("%T:%#v", native, native)
}

type toSerdeContext struct {
	outer *MapperContext
	doc   includedSink
	opts  BuildOptions

	included  mapset.Set[any]
	traversed mapset.Set[any]
}

func newToSerdeContext(outer *MapperContext, doc includedSink, opts BuildOptions) *toSerdeContext {
	return &toSerdeContext{
		outer:     outer,
		doc:       doc,
		opts:      opts,
		included:  mapset.NewThreadUnsafeSet[any](),
		traversed: mapset.NewThreadUnsafeSet[any](),
	}
}

func (c *toSerdeContext) Converter() *converter.Converter { return c.outer.converter }

func (c *toSerdeContext) SelectAttribute(mapping AttributeMapping) bool {
	if c.opts.SelectAttribute == nil {
		return true
	}

	return c.opts.SelectAttribute(mapping)
}

func (c *toSerdeContext) SelectRelationship(rm *RelationshipMapping) RelationshipPart {
	if c.opts.SelectRelationship == nil {
		return PartLinks
	}

	return c.opts.SelectRelationship(rm)
}

func (c *toSerdeContext) QueryTypeNameByDescriptor(descr *ResourceDescriptor) (string, error) {
	return c.outer.typeResolver.QueryTypeNameByDescriptor(descr)
}

func (c *toSerdeContext) QueryMapperByNative(descr NativeDescriptor) (*Mapper, error) {
	return c.outer.QueryMapperByNative(descr)
}

func (c *toSerdeContext) SerdeIdentityByNative(m *Mapper, native any) (string, error) {
	return c.outer.driver.SerdeIdentityByNative(m, native)
}

func (c *toSerdeContext) ResolveSingletonEndpoint(m *Mapper, native any) (*url.URL, error) {
	return c.outer.endpointResolver.ResolveSingletonEndpoint(c, m, native)
}

func (c *toSerdeContext) ResolveCollectionEndpoint(m *Mapper, natives []any) (*PaginatedEndpoint, error) {
	return c.outer.endpointResolver.ResolveCollectionEndpoint(c, m, natives)
}

func (c *toSerdeContext) ResolveToOneRelationshipEndpoint(m *Mapper, rm *RelationshipMapping, native any) (*url.URL, error) {
	return c.outer.endpointResolver.ResolveToOneRelationshipEndpoint(c, m, rm, native)
}

func (c *toSerdeContext) ResolveToManyRelationshipEndpoint(m *Mapper, rm *RelationshipMapping, native any) (*PaginatedEndpoint, error) {
	return c.outer.endpointResolver.ResolveToManyRelationshipEndpoint(c, m, rm, native)
}

func (c *toSerdeContext) shouldInclude(rm *RelationshipMapping, m, destMapper *Mapper, dest any) bool {
	return c.opts.IncludeFilter != nil && c.opts.IncludeFilter(c.outer, c, rm, m, destMapper, dest)
}

func (c *toSerdeContext) markTraversed(native any) bool {
	return c.traversed.Add(identityKey(native))
}

// relatedVisited includes dest if wanted and not yet there, then descends
// into its relationships once.
func (c *toSerdeContext) relatedVisited(rm *RelationshipMapping, m, destMapper *Mapper, native, dest any) error {
	key := identityKey(dest)

	if c.included.Contains(key) {
		c.outer.logger.WithFields(logrus.Fields{
			"resource":     destMapper.Resource().Name(),
			"relationship": rm.Name(),
		}).Debug("related object already included")
	} else if c.shouldInclude(rm, m, destMapper, dest) {
		c.included.Add(key)

		if err := destMapper.BuildSerde(c, c.doc.NextIncluded(), dest); err != nil {
			return err
		}
	}

	if c.markTraversed(dest) &&
		(c.opts.TraverseRelationship == nil || c.opts.TraverseRelationship(c.outer, rm, m, destMapper, native, dest)) {
		return c.traverseRelationships(destMapper, dest)
	}

	return nil
}

func (c *toSerdeContext) traverseRelationships(m *Mapper, native any) error {
	for _, rm := range m.RelationshipMappings() {
		destMapper, err := c.QueryMapperByNative(rm.NativeSide.Destination())
		if err != nil {
			return err
		}

		switch rm.NativeSide.(type) {
		case NativeToOneRelationshipDescriptor:
			err = c.ToOneRelationshipVisited(rm, m, destMapper, native, false, nil)
		case NativeToManyRelationshipDescriptor:
			err = c.ToManyRelationshipVisited(rm, m, destMapper, native, false, nil)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (c *toSerdeContext) ToOneRelationshipVisited(rm *RelationshipMapping, m, destMapper *Mapper, native any, destAvailable bool, dest any) error {
	if native == nil {
		return nil
	}

	if !destAvailable {
		var err error
		if dest, err = m.fetchToOne(rm, native); err != nil {
			return err
		}
	}

	if dest == nil {
		return nil
	}

	return c.relatedVisited(rm, m, destMapper, native, dest)
}

func (c *toSerdeContext) ToManyRelationshipVisited(rm *RelationshipMapping, m, destMapper *Mapper, native any, destAvailable bool, dests []any) error {
	if native == nil {
		return nil
	}

	if !destAvailable {
		var err error
		if dests, err = m.fetchToMany(rm, native); err != nil {
			return err
		}
	}

	for _, dest := range dests {
		if dest == nil {
			continue
		}

		if err := c.relatedVisited(rm, m, destMapper, native, dest); err != nil {
			return err
		}
	}

	return nil
}

func (c *toSerdeContext) NativeVisitedPre(_ *Mapper, native any, asRelRef bool) {
	if !asRelRef {
		c.included.Add(identityKey(native))
	}
}

func (c *toSerdeContext) NativeVisited(*Mapper, any, bool) {}

type toNativeContext struct {
	outer *MapperContext
	opts  ToNativeOptions
}

func (c *toNativeContext) Converter() *converter.Converter { return c.outer.converter }

func (c *toNativeContext) SelectAttribute(mapping AttributeMapping) bool {
	return c.opts.SelectAttribute == nil || c.opts.SelectAttribute(mapping)
}

func (c *toNativeContext) SelectRelationship(rm *RelationshipMapping) bool {
	return c.opts.SelectRelationship == nil || c.opts.SelectRelationship(rm)
}

func (c *toNativeContext) QueryMapperBySerde(descr *ResourceDescriptor) (*Mapper, error) {
	return c.outer.QueryMapperBySerde(descr)
}

func (c *toNativeContext) QueryDescriptorByTypeName(name string) (*ResourceDescriptor, error) {
	return c.outer.typeResolver.QueryDescriptorByTypeName(name)
}

func (c *toNativeContext) NativeIdentityBySerde(m *Mapper, id serde.ResourceIdRepr) (any, error) {
	return c.outer.driver.NativeIdentityBySerde(m, id)
}

var (
	_ ToSerdeContext  = (*toSerdeContext)(nil)
	_ ToNativeContext = (*toNativeContext)(nil)
)

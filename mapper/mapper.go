package mapper

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	pkgerrors "github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"jsonapi-serde/deferred"
	"jsonapi-serde/internal/common"
	"jsonapi-serde/serde"
)

// Mapper converts between one resource type and one native class.
type Mapper struct {
	ctx      *MapperContext
	resource *ResourceDescriptor
	native   NativeDescriptor

	attributeMappings    []AttributeMapping
	relationshipMappings *orderedmap.OrderedMap[string, *RelationshipMapping]
	byAttribute          map[string][]AttributeMapping

	filters Filters
}

func newMapper(
	ctx *MapperContext,
	resource *ResourceDescriptor,
	native NativeDescriptor,
	attrMappings []AttributeMapping,
	relMappings []*RelationshipMapping,
	filters Filters,
) (*Mapper, error) {
	m := &Mapper{
		ctx:                  ctx,
		resource:             resource,
		native:               native,
		attributeMappings:    attrMappings,
		relationshipMappings: orderedmap.New[string, *RelationshipMapping](),
		byAttribute:          map[string][]AttributeMapping{},
		filters:              filters,
	}

	for _, am := range attrMappings {
		for _, ra := range am.ResourceSide() {
			if ra.Parent() != resource {
				return nil, declarationErrorf("attribute %s mapped by %s does not belong to it", ra.Name, resource.Name())
			}

			m.byAttribute[ra.Name] = append(m.byAttribute[ra.Name], am)
		}
	}

	for _, rm := range relMappings {
		if rm.ResourceSide.Common().Parent() != resource {
			return nil, declarationErrorf("relationship %s mapped by %s does not belong to it", rm.Name(), resource.Name())
		}

		if _, dup := m.relationshipMappings.Get(rm.Name()); dup {
			return nil, declarationErrorf("relationship %s is mapped twice in %s", rm.Name(), resource.Name())
		}

		m.relationshipMappings.Set(rm.Name(), rm)
	}

	return m, nil
}

// bindMappings binds every mapping to m. It runs once m is registered so a
// rejected mapper leaves its mappings free for another attempt.
func (m *Mapper) bindMappings() {
	for _, am := range m.attributeMappings {
		am.bind(m)
	}

	for pair := m.relationshipMappings.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.bind(m)
	}
}

// Context returns the MapperContext the mapper was created by.
func (m *Mapper) Context() *MapperContext { return m.ctx }

// Resource returns the resource side descriptor.
func (m *Mapper) Resource() *ResourceDescriptor { return m.resource }

// Native returns the native side descriptor.
func (m *Mapper) Native() NativeDescriptor { return m.native }

// AttributeMappings returns the attribute mappings in declaration order.
func (m *Mapper) AttributeMappings() []AttributeMapping { return m.attributeMappings }

// RelationshipMappings returns the relationship mappings in declaration
// order.
func (m *Mapper) RelationshipMappings() []*RelationshipMapping {
	out := make([]*RelationshipMapping, 0, m.relationshipMappings.Len())
	for pair := m.relationshipMappings.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

// RelationshipMapping looks up a relationship mapping by its resource side
// name.
func (m *Mapper) RelationshipMapping(name string) (*RelationshipMapping, error) {
	rm, ok := m.relationshipMappings.Get(name)
	if !ok {
		return nil, &RelationshipNotFoundError{Resource: m.resource, Name: name}
	}

	return rm, nil
}

func (m *Mapper) fetchToOne(rm *RelationshipMapping, native any) (any, error) {
	nd, ok := rm.NativeSide.(NativeToOneRelationshipDescriptor)
	if !ok {
		return nil, notToOne(rm)
	}

	dest, err := nd.FetchRelated(native)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "fetching related object of %s", nd.Name())
	}

	return dest, nil
}

func (m *Mapper) fetchToMany(rm *RelationshipMapping, native any) ([]any, error) {
	nd, ok := rm.NativeSide.(NativeToManyRelationshipDescriptor)
	if !ok {
		return nil, notToMany(rm)
	}

	dests, err := nd.FetchRelated(native)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "fetching related objects of %s", nd.Name())
	}

	return dests, nil
}

func notToOne(rm *RelationshipMapping) error {
	return &InvalidStructureError{Message: fmt.Sprintf("relationship %s is not a to-one relationship", rm.Name())}
}

func notToMany(rm *RelationshipMapping) error {
	return &InvalidStructureError{Message: fmt.Sprintf("relationship %s is not a to-many relationship", rm.Name())}
}

// destinationMapper returns the mapper of the resource type rm points to.
func (m *Mapper) destinationMapper(ctx ToNativeContext, rm *RelationshipMapping) (*Mapper, error) {
	dest, err := rm.ResourceSide.Common().ResolveDestination()
	if err != nil {
		return nil, err
	}

	return ctx.QueryMapperBySerde(dest)
}

// nativeIdentity checks that id is acceptable in rm and translates it.
func (m *Mapper) nativeIdentity(ctx ToNativeContext, destMapper *Mapper, rm *RelationshipMapping, id serde.ResourceIdRepr) (any, error) {
	descr, err := ctx.QueryDescriptorByTypeName(id.Type)
	if err != nil {
		var unknown *UnknownResourceTypeError
		if errors.As(err, &unknown) && unknown.Source.IsZero() {
			unknown.Source = id.Source()
		}

		return nil, err
	}

	if descr != destMapper.resource {
		return nil, &InvalidStructureError{Message: fmt.Sprintf(
			"resource type %s is not acceptable in relationship %s (expecting %s)",
			id.Type, rm.Name(), destMapper.resource.Name(),
		)}
	}

	return ctx.NativeIdentityBySerde(destMapper, id)
}

func (m *Mapper) buildNativeToOne(ctx ToNativeContext, builder NativeToOneRelationshipBuilder, rm *RelationshipMapping, id *serde.ResourceIdRepr) error {
	rel, ok := rm.ResourceSide.(*ResourceToOneRelationshipDescriptor)
	if !ok {
		return notToOne(rm)
	}

	if id == nil {
		if !rel.AllowNull {
			return &GenericConstraintError{Message: fmt.Sprintf(
				"relationship %s of resource type %s must be specified", rel.Name, m.resource.Name(),
			)}
		}

		builder.Nullify()

		return nil
	}

	destMapper, err := m.destinationMapper(ctx, rm)
	if err != nil {
		return err
	}

	nid, err := m.nativeIdentity(ctx, destMapper, rm, *id)
	if err != nil {
		return err
	}

	builder.Set(nid)

	return nil
}

func (m *Mapper) buildNativeToMany(ctx ToNativeContext, builder NativeToManyRelationshipBuilder, rm *RelationshipMapping, ids []serde.ResourceIdRepr) error {
	rel, ok := rm.ResourceSide.(*ResourceToManyRelationshipDescriptor)
	if !ok {
		return notToMany(rm)
	}

	if len(ids) == 0 && !rel.AllowEmpty {
		return &GenericConstraintError{Message: fmt.Sprintf(
			"relationship %s of resource type %s must not be empty", rel.Name, m.resource.Name(),
		)}
	}

	destMapper, err := m.destinationMapper(ctx, rm)
	if err != nil {
		return err
	}

	for _, id := range ids {
		nid, err := m.nativeIdentity(ctx, destMapper, rm, id)
		if err != nil {
			return err
		}

		builder.Next(nid)
	}

	return nil
}

// buildNativeRelationship feeds the linkage of rm into builder.
func (m *Mapper) buildNativeRelationship(ctx ToNativeContext, builder NativeBuilder, rm *RelationshipMapping, linkage serde.LinkageRepr) error {
	switch nd := rm.NativeSide.(type) {
	case NativeToOneRelationshipDescriptor:
		switch linkage.Data.Kind() {
		case serde.LinkageNull:
			return m.buildNativeToOne(ctx, builder.ToOneRelationship(nd), rm, nil)
		case serde.LinkageToOne:
			id, _ := linkage.Data.One()
			return m.buildNativeToOne(ctx, builder.ToOneRelationship(nd), rm, &id)
		default:
			return &InvalidStructureError{Message: fmt.Sprintf(
				"relationship %s expects a single resource identifier", rm.Name(),
			)}
		}
	case NativeToManyRelationshipDescriptor:
		ids, ok := linkage.Data.Many()
		if !ok {
			if linkage.Data.Kind() == serde.LinkageNull {
				dest, _ := rm.ResourceSide.Common().ResolveDestination()
				return &InvalidStructureError{Message: fmt.Sprintf(
					"trying to add a null linkage of %s to relationship %s", dest, rm.Name(),
				)}
			}

			return &InvalidStructureError{Message: fmt.Sprintf(
				"relationship %s expects an array of resource identifiers", rm.Name(),
			)}
		}

		return m.buildNativeToMany(ctx, builder.ToManyRelationship(nd), rm, ids)
	default:
		return declarationErrorf("relationship %s: unsupported native relationship %T", rm.Name(), rm.NativeSide)
	}
}

// extractLinkage returns the relationship object of rm in repr; a
// relationship object without data counts as absent.
func extractLinkage(rm *RelationshipMapping, repr serde.ResourceRepr) (serde.LinkageRepr, error) {
	c := rm.ResourceSide.Common()

	linkage, err := c.ExtractRelated(repr)
	if err != nil {
		return linkage, err
	}

	if !linkage.Data.IsSpecified() {
		return linkage, &RelationshipNotFoundError{Resource: c.Parent(), Name: c.Name, Source: linkage.Source()}
	}

	return linkage, nil
}

func writesNative(am AttributeMapping) bool {
	if !am.Direction().ToNative() {
		return false
	}

	return !common.All(am.ResourceSide(), func(a *ResourceAttributeDescriptor) bool { return a.ReadOnly })
}

func resourceRepr(g GenericRepr, op string) (serde.ResourceRepr, error) {
	if g.Resource == nil {
		return serde.ResourceRepr{}, &InvalidStructureError{Message: op + " requires a resource object"}
	}

	return *g.Resource, nil
}

// CreateFromSerde builds a new native object from repr. Missing attributes
// and relationships are errors only when they are required on creation.
func (m *Mapper) CreateFromSerde(ctx ToNativeContext, mctx MutationContext, repr serde.ResourceRepr) (any, error) {
	site := &SiteContext{Op: OperationCreate, Mapper: m, ToNative: ctx, Mutation: mctx}

	g, err := m.filters.applyResource(site, GenericRepr{Resource: &repr})
	if err != nil {
		return nil, err
	}

	if repr, err = resourceRepr(g, "creation"); err != nil {
		return nil, err
	}

	builder := m.native.NewBuilder()

	for _, am := range m.attributeMappings {
		if !writesNative(am) {
			continue
		}

		err := am.ToNative(ctx, site, repr, builder)
		if err == nil {
			continue
		}

		var notFound *AttributeNotFoundError
		if errors.As(err, &notFound) &&
			!common.Any(am.ResourceSide(), func(a *ResourceAttributeDescriptor) bool { return a.RequiredOnCreation }) {
			continue
		}

		return nil, err
	}

	for _, rm := range m.RelationshipMappings() {
		if !ctx.SelectRelationship(rm) {
			continue
		}

		linkage, err := extractLinkage(rm, repr)
		if err != nil {
			if rm.ResourceSide.Common().RequiredOnCreation {
				return nil, err
			}

			continue
		}

		if err := m.buildNativeRelationship(ctx, builder, rm, linkage); err != nil {
			return nil, err
		}
	}

	return m.filters.build(site, g, builder)
}

// updatingMappings returns the attribute mappings touched by repr in
// document order, each once.
func (m *Mapper) updatingMappings(ctx ToNativeContext, repr serde.ResourceRepr, skipMissing bool) ([]AttributeMapping, error) {
	seen := mapset.NewThreadUnsafeSet[AttributeMapping]()

	var out []AttributeMapping

	for _, attr := range repr.Attributes {
		for _, am := range m.byAttribute[attr.Name] {
			if !seen.Add(am) || !writesNative(am) || !ctx.SelectAttribute(am) {
				continue
			}

			missing := common.Filter(am.ResourceSide(), func(a *ResourceAttributeDescriptor) bool {
				_, ok := repr.Attribute(a.Name)
				return !ok
			})

			if len(missing) > 0 {
				if skipMissing {
					continue
				}

				return nil, &AttributeNotFoundError{Resource: m.resource, Name: missing[0].Name, Source: repr.Source()}
			}

			out = append(out, am)
		}
	}

	return out, nil
}

// UpdateWithSerde applies the attributes and relationships present in repr
// to target. An attribute mapping spanning several attributes of which only
// some are present is skipped when skipMissing is set and an error
// otherwise.
func (m *Mapper) UpdateWithSerde(ctx ToNativeContext, mctx MutationContext, target any, repr serde.ResourceRepr, skipMissing bool) (any, error) {
	site := &SiteContext{Op: OperationUpdate, Mapper: m, ToNative: ctx, Mutation: mctx, Target: target}

	g, err := m.filters.applyResource(site, GenericRepr{Resource: &repr})
	if err != nil {
		return nil, err
	}

	if repr, err = resourceRepr(g, "update"); err != nil {
		return nil, err
	}

	updater, err := m.native.NewUpdater(target)
	if err != nil {
		return nil, err
	}

	mappings, err := m.updatingMappings(ctx, repr, skipMissing)
	if err != nil {
		return nil, err
	}

	for _, am := range mappings {
		if err := am.ToNative(ctx, site, repr, updater); err != nil {
			return nil, err
		}
	}

	for _, rm := range m.RelationshipMappings() {
		if !ctx.SelectRelationship(rm) {
			continue
		}

		linkage, err := extractLinkage(rm, repr)
		if err != nil {
			continue
		}

		if err := m.buildNativeRelationship(ctx, updater, rm, linkage); err != nil {
			return nil, err
		}
	}

	return m.filters.build(site, g, updater)
}

func (m *Mapper) relSite(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping) *SiteContext {
	return &SiteContext{
		Op:           OperationUpdateRel,
		Mapper:       m,
		ToNative:     ctx,
		Mutation:     mctx,
		Target:       target,
		Relationship: rm,
	}
}

// UpdateToOneRelWithSerde replaces the to-one relationship rm of target. A
// nil id clears it.
func (m *Mapper) UpdateToOneRelWithSerde(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, id *serde.ResourceIdRepr) (any, error) {
	nd, ok := rm.NativeSide.(NativeToOneRelationshipDescriptor)
	if !ok {
		return nil, notToOne(rm)
	}

	site := m.relSite(ctx, mctx, target, rm)

	g, err := m.filters.applyResource(site, GenericRepr{Identifier: id})
	if err != nil {
		return nil, err
	}

	updater, err := m.native.NewUpdater(target)
	if err != nil {
		return nil, err
	}

	if err := m.buildNativeToOne(ctx, updater.ToOneRelationship(nd), rm, g.Identifier); err != nil {
		return nil, err
	}

	return m.filters.build(site, g, updater)
}

// UpdateToManyRelWithSerde replaces the members of the to-many relationship
// rm of target.
func (m *Mapper) UpdateToManyRelWithSerde(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, ids []serde.ResourceIdRepr) (any, error) {
	nd, ok := rm.NativeSide.(NativeToManyRelationshipDescriptor)
	if !ok {
		return nil, notToMany(rm)
	}

	site := m.relSite(ctx, mctx, target, rm)

	g, err := m.filters.applyResource(site, GenericRepr{Identifiers: ids})
	if err != nil {
		return nil, err
	}

	updater, err := m.native.NewUpdater(target)
	if err != nil {
		return nil, err
	}

	if err := m.buildNativeToMany(ctx, updater.ToManyRelationship(nd), rm, g.Identifiers); err != nil {
		return nil, err
	}

	return m.filters.build(site, g, updater)
}

// AddToOneRelWithSerde sets the to-one relationship rm of target, or clears
// it when id is nil. The returned flag tells whether anything changed.
func (m *Mapper) AddToOneRelWithSerde(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, id *serde.ResourceIdRepr) (any, bool, error) {
	return m.manipulateToOne(ctx, mctx, target, rm, id, false)
}

// RemoveToOneRelWithSerde clears the to-one relationship rm of target if it
// refers to id.
func (m *Mapper) RemoveToOneRelWithSerde(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, id serde.ResourceIdRepr) (any, bool, error) {
	return m.manipulateToOne(ctx, mctx, target, rm, &id, true)
}

func (m *Mapper) manipulateToOne(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, id *serde.ResourceIdRepr, remove bool) (any, bool, error) {
	nd, ok := rm.NativeSide.(NativeToOneRelationshipDescriptor)
	if !ok {
		return nil, false, notToOne(rm)
	}

	site := m.relSite(ctx, mctx, target, rm)

	g, err := m.filters.applyResource(site, GenericRepr{Identifier: id})
	if err != nil {
		return nil, false, err
	}

	updater, err := m.native.NewUpdater(target)
	if err != nil {
		return nil, false, err
	}

	manip := updater.ToOneRelationshipManipulator(nd)

	var applied deferred.Deferred[bool]

	switch {
	case g.Identifier == nil && remove:
		return nil, false, &InvalidStructureError{Message: fmt.Sprintf("removing from relationship %s requires an identifier", rm.Name())}
	case g.Identifier == nil:
		applied = manip.Nullify()
	default:
		destMapper, err := m.destinationMapper(ctx, rm)
		if err != nil {
			return nil, false, err
		}

		nid, err := m.nativeIdentity(ctx, destMapper, rm, *g.Identifier)
		if err != nil {
			return nil, false, err
		}

		if remove {
			applied = manip.Unset(nid)
		} else {
			applied = manip.Set(nid)
		}
	}

	native, err := m.filters.build(site, g, updater)
	if err != nil {
		return nil, false, err
	}

	ok, err = applied.Get()
	if err != nil {
		return nil, false, err
	}

	return native, ok, nil
}

// RelationshipChange reports whether adding or removing one identifier
// changed a to-many relationship.
type RelationshipChange struct {
	ID      serde.ResourceIdRepr
	Applied bool
}

// AddToManyRelWithSerde adds ids to the to-many relationship rm of target.
func (m *Mapper) AddToManyRelWithSerde(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, ids []serde.ResourceIdRepr) (any, []RelationshipChange, error) {
	return m.manipulateToMany(ctx, mctx, target, rm, ids, false)
}

// RemoveToManyRelWithSerde removes ids from the to-many relationship rm of
// target.
func (m *Mapper) RemoveToManyRelWithSerde(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, ids []serde.ResourceIdRepr) (any, []RelationshipChange, error) {
	return m.manipulateToMany(ctx, mctx, target, rm, ids, true)
}

func (m *Mapper) manipulateToMany(ctx ToNativeContext, mctx MutationContext, target any, rm *RelationshipMapping, ids []serde.ResourceIdRepr, remove bool) (any, []RelationshipChange, error) {
	nd, ok := rm.NativeSide.(NativeToManyRelationshipDescriptor)
	if !ok {
		return nil, nil, notToMany(rm)
	}

	site := m.relSite(ctx, mctx, target, rm)

	g, err := m.filters.applyResource(site, GenericRepr{Identifiers: ids})
	if err != nil {
		return nil, nil, err
	}

	updater, err := m.native.NewUpdater(target)
	if err != nil {
		return nil, nil, err
	}

	destMapper, err := m.destinationMapper(ctx, rm)
	if err != nil {
		return nil, nil, err
	}

	manip := updater.ToManyRelationshipManipulator(nd)
	pending := make([]deferred.Deferred[bool], len(g.Identifiers))

	for i, id := range g.Identifiers {
		nid, err := m.nativeIdentity(ctx, destMapper, rm, id)
		if err != nil {
			return nil, nil, err
		}

		if remove {
			pending[i] = manip.Remove(nid)
		} else {
			pending[i] = manip.Add(nid)
		}
	}

	native, err := m.filters.build(site, g, updater)
	if err != nil {
		return nil, nil, err
	}

	changes := make([]RelationshipChange, len(pending))

	for i, p := range pending {
		applied, err := p.Get()
		if err != nil {
			return nil, nil, err
		}

		changes[i] = RelationshipChange{ID: g.Identifiers[i], Applied: applied}
	}

	return native, changes, nil
}

func (m *Mapper) retrieveSite(ctx ToSerdeContext, target any) *SiteContext {
	return &SiteContext{Op: OperationRetrieve, Mapper: m, ToSerde: ctx, Target: target}
}

// ToOneRelBuilder is implemented by the builders a to-one relationship can
// be rendered into: a relationship object or a relationship document.
type ToOneRelBuilder interface {
	Set() *serde.ResourceIdReprBuilder
	SetLinks(links *serde.LinksRepr)
}

func (m *Mapper) buildSerdeToOne(site *SiteContext, builder ToOneRelBuilder, native any, rm *RelationshipMapping, parts RelationshipPart) error {
	ctx := site.ToSerde

	if parts.Has(PartLinks) {
		self, err := ctx.ResolveToOneRelationshipEndpoint(m, rm, native)
		if err != nil {
			return err
		}

		if self != nil {
			builder.SetLinks(&serde.LinksRepr{Self: self})
		}
	}

	destMapper, err := ctx.QueryMapperByNative(rm.NativeSide.Destination())
	if err != nil {
		return err
	}

	var (
		dest          any
		destAvailable bool
	)

	if parts.Has(PartData) {
		if dest, err = m.fetchToOne(rm, native); err != nil {
			return err
		}

		destAvailable = true
		idBuilder := builder.Set()

		if dest != nil {
			ctx.NativeVisitedPre(m, dest, true)

			if err := destMapper.buildSerdeRel(site, idBuilder, dest); err != nil {
				return err
			}
		}
	}

	return ctx.ToOneRelationshipVisited(rm, m, destMapper, native, destAvailable, dest)
}

func (m *Mapper) buildSerdeToMany(site *SiteContext, builder serde.ResourceIdReprCollectionBuilder, native any, rm *RelationshipMapping, parts RelationshipPart) error {
	ctx := site.ToSerde

	if parts.Has(PartLinks) {
		ep, err := ctx.ResolveToManyRelationshipEndpoint(m, rm, native)
		if err != nil {
			return err
		}

		if ep != nil {
			builder.SetLinks(ep.Links())
		}
	}

	destMapper, err := ctx.QueryMapperByNative(rm.NativeSide.Destination())
	if err != nil {
		return err
	}

	dests, err := m.fetchToMany(rm, native)
	if err != nil {
		return err
	}

	for _, dest := range dests {
		ctx.NativeVisitedPre(m, dest, true)
	}

	if parts.Has(PartData) {
		for _, dest := range dests {
			if err := destMapper.buildSerdeRel(site, builder.Next(), dest); err != nil {
				return err
			}
		}

		builder.Done()
	}

	return ctx.ToManyRelationshipVisited(rm, m, destMapper, native, true, dests)
}

// BuildSerdeToOneRelationship renders the to-one relationship rm of native.
func (m *Mapper) BuildSerdeToOneRelationship(ctx ToSerdeContext, builder ToOneRelBuilder, native any, rm *RelationshipMapping, parts RelationshipPart) error {
	if _, ok := rm.NativeSide.(NativeToOneRelationshipDescriptor); !ok {
		return notToOne(rm)
	}

	return m.buildSerdeToOne(m.retrieveSite(ctx, native), builder, native, rm, parts)
}

// BuildSerdeToManyRelationship renders the to-many relationship rm of
// native.
func (m *Mapper) BuildSerdeToManyRelationship(ctx ToSerdeContext, builder serde.ResourceIdReprCollectionBuilder, native any, rm *RelationshipMapping, parts RelationshipPart) error {
	if _, ok := rm.NativeSide.(NativeToManyRelationshipDescriptor); !ok {
		return notToMany(rm)
	}

	return m.buildSerdeToMany(m.retrieveSite(ctx, native), builder, native, rm, parts)
}

func (m *Mapper) buildSerdeRelationship(site *SiteContext, builder *serde.ResourceReprBuilder, rm *RelationshipMapping, native any) error {
	parts := site.ToSerde.SelectRelationship(rm)
	if parts == PartNone {
		return nil
	}

	switch rm.NativeSide.(type) {
	case NativeToOneRelationshipDescriptor:
		return m.buildSerdeToOne(site, builder.NextToOneRelationship(rm.Name()), native, rm, parts)
	case NativeToManyRelationshipDescriptor:
		return m.buildSerdeToMany(site, builder.NextToManyRelationship(rm.Name()), native, rm, parts)
	default:
		return declarationErrorf("relationship %s: unsupported native relationship %T", rm.Name(), rm.NativeSide)
	}
}

func (m *Mapper) identify(ctx ToSerdeContext, native any) (typ, id string, err error) {
	if typ, err = ctx.QueryTypeNameByDescriptor(m.resource); err != nil {
		return "", "", err
	}

	if id, err = ctx.SerdeIdentityByNative(m, native); err != nil {
		return "", "", err
	}

	return typ, id, nil
}

func (m *Mapper) buildSerdeRel(site *SiteContext, builder *serde.ResourceIdReprBuilder, native any) error {
	ctx := site.ToSerde

	typ, id, err := m.identify(ctx, native)
	if err != nil {
		return err
	}

	builder.SetType(typ).SetID(id)

	if err := m.filters.applySerdeBuilder(site, SerdeNode{Identifier: builder}); err != nil {
		return err
	}

	ctx.NativeVisited(m, native, true)

	return nil
}

func (m *Mapper) buildSerde(site *SiteContext, builder *serde.ResourceReprBuilder, native any) error {
	ctx := site.ToSerde
	ctx.NativeVisitedPre(m, native, false)

	typ, id, err := m.identify(ctx, native)
	if err != nil {
		return err
	}

	builder.SetType(typ).SetID(id)

	self, err := ctx.ResolveSingletonEndpoint(m, native)
	if err != nil {
		return err
	}

	if self != nil {
		builder.SetLinks(&serde.LinksRepr{Self: self})
	}

	for _, am := range m.attributeMappings {
		if !ctx.SelectAttribute(am) {
			continue
		}

		if err := am.ToSerde(ctx, native, builder); err != nil {
			return err
		}
	}

	for _, rm := range m.RelationshipMappings() {
		if err := m.buildSerdeRelationship(site, builder, rm, native); err != nil {
			return err
		}
	}

	if err := m.filters.applySerdeBuilder(site, SerdeNode{Resource: builder}); err != nil {
		return err
	}

	ctx.NativeVisited(m, native, false)

	return nil
}

// BuildSerde renders native into builder.
func (m *Mapper) BuildSerde(ctx ToSerdeContext, builder *serde.ResourceReprBuilder, native any) error {
	return m.buildSerde(m.retrieveSite(ctx, native), builder, native)
}

// BuildSerdeCollection renders natives into builder in order.
func (m *Mapper) BuildSerdeCollection(ctx ToSerdeContext, builder serde.ResourceReprCollectionBuilder, natives []any) error {
	site := m.retrieveSite(ctx, natives)

	ep, err := ctx.ResolveCollectionEndpoint(m, natives)
	if err != nil {
		return err
	}

	if ep != nil {
		builder.SetLinks(ep.Links())
	}

	for _, native := range natives {
		ctx.NativeVisitedPre(m, native, false)
	}

	for _, native := range natives {
		if err := m.buildSerde(site, builder.Next(), native); err != nil {
			return err
		}
	}

	builder.Done()

	return nil
}

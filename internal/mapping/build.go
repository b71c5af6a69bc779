package mapping

import (
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/multierr"

	"jsonapi-serde/converter"
	"jsonapi-serde/deferred"
	"jsonapi-serde/mapper"
	"jsonapi-serde/native"
)

// Schema is a MapperContext built from a mapping file, together with the
// descriptors it was built from. Native objects are *native.Record values.
type Schema struct {
	Context *mapper.MapperContext

	// Keyed by resource type, in declaration order.
	Resources *orderedmap.OrderedMap[string, *mapper.ResourceDescriptor]
	Natives   *orderedmap.OrderedMap[string, *native.RecordDescriptor]
	Mappers   *orderedmap.OrderedMap[string, *mapper.Mapper]
}

// Mapper returns the mapper of resource type typ.
func (s *Schema) Mapper(typ string) (*mapper.Mapper, bool) {
	return s.Mappers.Get(typ)
}

// Build validates mf and creates one mapper per declared resource. reg adds
// host transforms to the declared ones; endpoints may be nil.
func Build(mf *MappingFile, reg *TransformRegistry, endpoints mapper.EndpointResolver, opts ...mapper.Option) (*Schema, error) {
	diags := Validate(mf, reg)
	if diags.HasErrors() {
		return nil, errors.Wrap(diags.Error(), "invalid mapping")
	}

	reg, errs := BuildRegistry(mf, reg)
	if len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}

	s := &Schema{
		Context:   mapper.NewMapperContext(native.Driver{}, nil, endpoints, opts...),
		Resources: orderedmap.New[string, *mapper.ResourceDescriptor](),
		Natives:   orderedmap.New[string, *native.RecordDescriptor](),
		Mappers:   orderedmap.New[string, *mapper.Mapper](),
	}

	for i := range mf.Resources {
		def := &mf.Resources[i]

		kind, _ := native.IdentityKindByName(def.ID.Kind)
		s.Natives.Set(def.Type, native.NewRecordDescriptor(def.NativeClass(), kind))
		s.Resources.Set(def.Type, s.resourceDescriptor(def))
	}

	for i := range mf.Resources {
		def := &mf.Resources[i]

		m, err := s.createMapper(def, reg)
		if err != nil {
			return nil, errors.Wrapf(err, "resource %s", def.Type)
		}

		s.Mappers.Set(def.Type, m)
	}

	return s, nil
}

func (s *Schema) destination(typ string) deferred.Deferred[*mapper.ResourceDescriptor] {
	return deferred.Func(func() *mapper.ResourceDescriptor {
		d, _ := s.Resources.Get(typ)
		return d
	})
}

func (s *Schema) resourceDescriptor(def *ResourceDef) *mapper.ResourceDescriptor {
	attrs := make([]*mapper.ResourceAttributeDescriptor, 0, len(def.Attributes))
	for _, a := range def.Attributes {
		attrs = append(attrs, &mapper.ResourceAttributeDescriptor{
			Name:               a.Name,
			Type:               MustParseType(a.Type),
			AllowNull:          a.Nullable,
			RequiredOnCreation: a.RequiredOnCreation,
			ReadOnly:           a.ReadOnly,
			WriteOnly:          a.WriteOnly,
			Immutable:          a.Immutable,
		})
	}

	rels := make([]mapper.ResourceRelationshipDescriptor, 0, len(def.Relationships))
	for _, r := range def.Relationships {
		common := mapper.RelationshipCommon{
			Name:               r.Name,
			Destination:        s.destination(r.To),
			RequiredOnCreation: r.RequiredOnCreation,
		}

		if r.ToMany() {
			rels = append(rels, &mapper.ResourceToManyRelationshipDescriptor{
				RelationshipCommon: common,
				AllowEmpty:         r.AllowEmpty == nil || *r.AllowEmpty,
			})

			continue
		}

		rels = append(rels, &mapper.ResourceToOneRelationshipDescriptor{
			RelationshipCommon: common,
			AllowNull:          r.Nullable,
		})
	}

	return mapper.MustNewResourceDescriptor(def.Type, attrs, rels)
}

func directionOf(name string) mapper.Direction {
	switch name {
	case DirectionNameToSerde:
		return mapper.DirectionToSerdeOnly
	case DirectionNameToNative:
		return mapper.DirectionToNativeOnly
	default:
		return mapper.DirectionBidi
	}
}

func (s *Schema) createMapper(def *ResourceDef, reg *TransformRegistry) (*mapper.Mapper, error) {
	res, _ := s.Resources.Get(def.Type)
	rec, _ := s.Natives.Get(def.Type)

	attrMappings, err := s.attributeMappings(def, res, rec, reg)
	if err != nil {
		return nil, err
	}

	relMappings := make([]*mapper.RelationshipMapping, 0, len(def.Relationships))

	for _, r := range def.Relationships {
		dest, _ := s.Natives.Get(r.To)
		resRel, _ := res.Relationship(r.Name)

		var nativeRel mapper.NativeRelationshipDescriptor
		if r.ToMany() {
			nativeRel = rec.AddToMany(r.Name, dest)
		} else {
			nativeRel = rec.AddToOne(r.Name, dest)
		}

		rm, err := mapper.NewRelationshipMapping(resRel, nativeRel)
		if err != nil {
			return nil, err
		}

		relMappings = append(relMappings, rm)
	}

	var filters mapper.Filters
	if def.ID.ClientGenerated {
		filters.NativeBuilder = append(filters.NativeBuilder, native.ClientIDFilter)
	}

	return s.Context.CreateMapper(res, rec, attrMappings, relMappings, filters)
}

// attributeMappings builds the mappings of 121 and fields entries followed
// by same name mappings for the attributes neither mentions nor ignores.
func (s *Schema) attributeMappings(
	def *ResourceDef,
	res *mapper.ResourceDescriptor,
	rec *native.RecordDescriptor,
	reg *TransformRegistry,
) ([]mapper.AttributeMapping, error) {
	var out []mapper.AttributeMapping

	handled := map[string]bool{}
	for _, name := range def.Ignore {
		handled[name] = true
	}

	fields := def.ExpandedFields()
	for i := range fields {
		fm := &fields[i]

		m, err := s.fieldMapping(fm, res, rec, reg)
		if err != nil {
			return nil, err
		}

		for _, name := range fm.Resource {
			handled[name] = true
		}

		out = append(out, m)
	}

	for _, a := range res.Attributes() {
		if handled[a.Name] {
			continue
		}

		nattr := rec.AddAttribute(a.Name, a.Type, a.AllowNull)
		out = append(out, mapper.NewToOneAttributeMapping(a, nattr, mapper.DirectionBidi, nil, nil))
	}

	return out, nil
}

func (s *Schema) fieldMapping(
	fm *FieldMapping,
	res *mapper.ResourceDescriptor,
	rec *native.RecordDescriptor,
	reg *TransformRegistry,
) (mapper.AttributeMapping, error) {
	rattrs := make([]*mapper.ResourceAttributeDescriptor, 0, len(fm.Resource))
	allowNull := false

	for _, name := range fm.Resource {
		a, ok := res.Attribute(name)
		if !ok {
			return nil, errors.Errorf("attribute %s is not declared", name)
		}

		allowNull = allowNull || a.AllowNull
		rattrs = append(rattrs, a)
	}

	var nativeShape *converter.Shape
	if fm.NativeType != "" {
		nativeShape = MustParseType(fm.NativeType)
	} else if len(rattrs) == 1 && len(fm.NativeNames()) == 1 {
		nativeShape = rattrs[0].Type
	}

	nattrs := make([]mapper.NativeAttributeDescriptor, 0, len(fm.NativeNames()))
	for _, name := range fm.NativeNames() {
		nattrs = append(nattrs, rec.AddAttribute(name, nativeShape, allowNull))
	}

	var t *Transform
	if fm.Transform != "" {
		if t = reg.Get(fm.Transform); t == nil {
			return nil, errors.Errorf("transform %s is not registered", fm.Transform)
		}
	}

	dir := directionOf(fm.Direction)

	switch fm.GetCardinality() {
	case CardinalityOneToOne:
		if t == nil {
			return mapper.NewToOneAttributeMapping(rattrs[0], nattrs[0], dir, nil, nil), nil
		}

		toSerde, toNative := t.ToOneFuncs(rattrs[0], nattrs[0])

		return mapper.NewToOneAttributeMapping(rattrs[0], nattrs[0], dir, toSerde, toNative), nil

	case CardinalityOneToMany:
		if t == nil {
			return mapper.NewToManyAttributeMapping(rattrs[0], nattrs, dir, nil, nil), nil
		}

		toSerde, toNative := t.ToManyFuncs(rattrs[0], nattrs)

		return mapper.NewToManyAttributeMapping(rattrs[0], nattrs, dir, toSerde, toNative), nil

	case CardinalityManyToOne:
		if t == nil {
			return mapper.NewManyToOneAttributeMapping(rattrs, nattrs[0], dir, nil, nil), nil
		}

		toSerde, toNative := t.ManyToOneFuncs(rattrs, nattrs[0])

		return mapper.NewManyToOneAttributeMapping(rattrs, nattrs[0], dir, toSerde, toNative), nil
	}

	return nil, errors.Errorf("%s mappings are not supported", fm.GetCardinality())
}

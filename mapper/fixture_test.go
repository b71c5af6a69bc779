package mapper_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"jsonapi-serde/converter"
	"jsonapi-serde/deferred"
	"jsonapi-serde/mapper"
	"jsonapi-serde/native"
	"jsonapi-serde/options"
	"jsonapi-serde/serde"
)

// fooBar wires two resource types: foos with a nullable owner and a list of
// items, both pointing at bars; bars link to one another through next.
type fooBar struct {
	ctx   *mapper.MapperContext
	store *native.Store

	fooRes, barRes *mapper.ResourceDescriptor
	foos, bars     *native.RecordDescriptor
	fooM, barM     *mapper.Mapper
}

type fooBarOptions struct {
	endpoints mapper.EndpointResolver
	filters   mapper.Filters
	itemsMin1 bool
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func newFooBar(t *testing.T, opts fooBarOptions) *fooBar {
	t.Helper()

	f := &fooBar{store: native.NewStore()}

	var barRes deferred.Deferred[*mapper.ResourceDescriptor] = deferred.Func(func() *mapper.ResourceDescriptor { return f.barRes })

	f.fooRes = mapper.MustNewResourceDescriptor("foos",
		[]*mapper.ResourceAttributeDescriptor{
			{Name: "name", Type: converter.String(), RequiredOnCreation: true},
			{Name: "count", Type: converter.Int(), AllowNull: true},
			{Name: "secret", Type: converter.String(), WriteOnly: true},
			{Name: "created", Type: converter.String(), ReadOnly: true},
			{Name: "code", Type: converter.String(), Immutable: true},
		},
		[]mapper.ResourceRelationshipDescriptor{
			&mapper.ResourceToOneRelationshipDescriptor{
				RelationshipCommon: mapper.RelationshipCommon{Name: "owner", Destination: barRes},
				AllowNull:          true,
			},
			&mapper.ResourceToManyRelationshipDescriptor{
				RelationshipCommon: mapper.RelationshipCommon{Name: "items", Destination: barRes},
				AllowEmpty:         !opts.itemsMin1,
			},
		},
	)

	f.barRes = mapper.MustNewResourceDescriptor("bars",
		[]*mapper.ResourceAttributeDescriptor{{Name: "label", AllowNull: true}},
		nil,
	)
	require.NoError(t, f.barRes.AddRelationship(&mapper.ResourceToOneRelationshipDescriptor{
		RelationshipCommon: mapper.RelationshipCommon{Name: "next", Destination: deferred.Value(f.barRes)},
		AllowNull:          true,
	}))

	f.foos = native.NewRecordDescriptor("Foo", native.IdentityInt)
	f.bars = native.NewRecordDescriptor("Bar", native.IdentityString)

	fooAttrs := map[string]*native.Attribute{}
	for _, a := range f.fooRes.Attributes() {
		fooAttrs[a.Name] = f.foos.AddAttribute(a.Name, a.Type, a.AllowNull)
	}

	owner := f.foos.AddToOne("owner", f.bars)
	items := f.foos.AddToMany("items", f.bars)
	label := f.bars.AddAttribute("label", nil, true)
	next := f.bars.AddToOne("next", f.bars)

	f.ctx = mapper.NewMapperContext(native.Driver{}, nil, opts.endpoints, mapper.WithLogger(quietLogger()))

	var attrMappings []mapper.AttributeMapping
	for _, a := range f.fooRes.Attributes() {
		attrMappings = append(attrMappings, mapper.NewToOneAttributeMapping(a, fooAttrs[a.Name], mapper.DirectionBidi, nil, nil))
	}

	ownerRel, _ := f.fooRes.Relationship("owner")
	itemsRel, _ := f.fooRes.Relationship("items")
	nextRel, _ := f.barRes.Relationship("next")

	var err error

	f.fooM, err = f.ctx.CreateMapper(f.fooRes, f.foos, attrMappings,
		[]*mapper.RelationshipMapping{
			mapper.MustNewRelationshipMapping(ownerRel, owner),
			mapper.MustNewRelationshipMapping(itemsRel, items),
		},
		opts.filters,
	)
	require.NoError(t, err)

	labelAttr, _ := f.barRes.Attribute("label")

	f.barM, err = f.ctx.CreateMapper(f.barRes, f.bars,
		[]mapper.AttributeMapping{mapper.NewToOneAttributeMapping(labelAttr, label, mapper.DirectionBidi, nil, nil)},
		[]*mapper.RelationshipMapping{mapper.MustNewRelationshipMapping(nextRel, next)},
		mapper.Filters{},
	)
	require.NoError(t, err)

	return f
}

// bar stores a bar labeled after its id.
func (f *fooBar) bar(t *testing.T, id string) *native.Record {
	t.Helper()

	r := native.NewRecord("Bar", id)
	r.Attributes["label"] = "bar " + id
	require.NoError(t, f.store.Put(f.bars, r))

	return r
}

func (f *fooBar) foo(t *testing.T, id int64, name string) *native.Record {
	t.Helper()

	r := native.NewRecord("Foo", id)
	r.Attributes["name"] = name
	require.NoError(t, f.store.Put(f.foos, r))

	return r
}

func (f *fooBar) deserializer() *serde.Deserializer {
	return serde.NewDeserializer(f.ctx.DescriptorQuerier(), serde.WithDeserializerLogger(quietLogger()))
}

func (f *fooBar) resource(t *testing.T, doc string) serde.ResourceRepr {
	t.Helper()

	repr, err := f.deserializer().DeserializeSingleton([]byte(doc), false)
	require.NoError(t, err)
	require.NotNil(t, repr.Data)

	return *repr.Data
}

func render(t *testing.T, doc serde.Document) string {
	t.Helper()

	out, err := serde.NewRenderer(options.DefaultRender()).RenderJSON(doc)
	require.NoError(t, err)

	return string(out)
}

func allParts(*mapper.RelationshipMapping) mapper.RelationshipPart { return mapper.PartAll }

package mapping

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonapi-serde/mapper"
	"jsonapi-serde/native"
	"jsonapi-serde/options"
	"jsonapi-serde/serde"
)

func buildPeople(t *testing.T) (*Schema, *native.Store) {
	t.Helper()

	mf, err := Parse([]byte(peopleYAML))
	require.NoError(t, err)

	l := logrus.New()
	l.SetOutput(io.Discard)

	s, err := Build(mf, nil, nil, mapper.WithLogger(l))
	require.NoError(t, err)

	return s, native.NewStore()
}

func deserialize(t *testing.T, s *Schema, doc string) serde.ResourceRepr {
	t.Helper()

	repr, err := serde.NewDeserializer(s.Context.DescriptorQuerier()).DeserializeSingleton([]byte(doc), false)
	require.NoError(t, err)
	require.NotNil(t, repr.Data)

	return *repr.Data
}

func TestBuild_Descriptors(t *testing.T) {
	s, _ := buildPeople(t)

	assert.Equal(t, []string{"first", "last", "email", "position", "note"}, func() []string {
		res, _ := s.Resources.Get("people")
		return res.AttributeNames()
	}())

	rec, ok := s.Natives.Get("people")
	require.True(t, ok)
	assert.Equal(t, "Person", rec.Class())
	assert.Equal(t, native.IdentityInt, rec.IdentityKind())

	names := make([]string, 0)
	for _, a := range rec.Attributes() {
		names = append(names, a.Name())
	}

	assert.ElementsMatch(t, []string{"mail", "name", "x", "y"}, names)

	m, ok := s.Mapper("companies")
	require.True(t, ok)
	assert.Equal(t, "Company", m.Native().Class())

	byType, err := s.Context.QueryMapperBySerdeType("people")
	require.NoError(t, err)

	people, _ := s.Mapper("people")
	assert.Same(t, people, byType)
}

func TestBuild_RoundTrip(t *testing.T) {
	s, store := buildPeople(t)

	companies, _ := s.Natives.Get("companies")
	acme := native.NewRecord("Company", "acme")
	acme.Attributes["name"] = "Acme"
	require.NoError(t, store.Put(companies, acme))

	repr := deserialize(t, s, `{"data":{"type":"people","attributes":{
		"first":"Ada","last":"Lovelace","email":"ada@example.com","position":[3,4],"note":"dropped"},
		"relationships":{"employer":{"data":{"type":"companies","id":"acme"}}}}}`)

	obj, err := s.Context.CreateFromSerde(store, repr)
	require.NoError(t, err)

	rec := obj.(*native.Record)
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "Ada Lovelace", rec.Attributes["name"])
	assert.Equal(t, "ada@example.com", rec.Attributes["mail"])
	assert.Equal(t, int64(3), rec.Attributes["x"])
	assert.Equal(t, int64(4), rec.Attributes["y"])
	assert.NotContains(t, rec.Attributes, "note")
	assert.Same(t, acme, rec.ToOne["employer"])

	doc, err := s.Context.BuildSerdeSingle(rec, mapper.BuildOptions{})
	require.NoError(t, err)

	out, err := serde.NewRenderer(options.DefaultRender()).RenderJSON(&doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"type":"people","id":"1","attributes":{
		"first":"Ada","last":"Lovelace","email":"ada@example.com","position":[3,4]}}}`, string(out))
}

func TestBuild_TransformConversionError(t *testing.T) {
	s, store := buildPeople(t)

	people, _ := s.Natives.Get("people")
	rec := native.NewRecord("Person", int64(7))
	rec.Attributes["name"] = "Plato"
	rec.Attributes["x"] = int64(0)
	rec.Attributes["y"] = int64(0)
	require.NoError(t, store.Put(people, rec))

	_, err := s.Context.BuildSerdeSingle(rec, mapper.BuildOptions{})

	var convErr *mapper.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, mapper.DirectionToSerdeOnly, convErr.Direction)
	assert.ErrorContains(t, err, `expected 2 parts separated by " ", got 1`)
}

func TestBuild_ClientGeneratedID(t *testing.T) {
	s, store := buildPeople(t)

	repr := deserialize(t, s, `{"data":{"type":"companies","id":"acme","attributes":{"name":"Acme"}}}`)

	obj, err := s.Context.CreateFromSerde(store, repr)
	require.NoError(t, err)
	assert.Equal(t, "acme", obj.(*native.Record).ID)
}

func TestBuild_Invalid(t *testing.T) {
	mf, err := Parse([]byte("resources:\n  - type: a\n    relationships: [{name: b, to: bee}]\n"))
	require.NoError(t, err)

	_, err = Build(mf, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mapping")
	assert.Contains(t, err.Error(), "[unknown_resource]")
}

func TestJSONSchema(t *testing.T) {
	s := JSONSchema()
	require.NotNil(t, s.Properties)

	res, ok := s.Properties.Get("resources")
	require.True(t, ok)
	assert.Equal(t, "array", res.Type)

	data, err := JSONSchemaBytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"121"`)
	assert.Contains(t, string(data), `"client_generated"`)
}

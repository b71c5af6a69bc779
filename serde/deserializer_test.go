package serde

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonapi-serde/converter"
	"jsonapi-serde/jsonpointer"
)

var reprOptions = cmp.Options{
	cmp.AllowUnexported(
		sourced{}, Linkage{}, LinksRepr{}, ResourceIdRepr{}, LinkageRepr{}, ResourceRepr{},
		SourceRepr{}, ErrorRepr{}, SingletonDocumentRepr{}, CollectionDocumentRepr{},
		ToOneRelDocumentRepr{}, ToManyRelDocumentRepr{},
	),
	cmp.Comparer(func(a, b Source) bool {
		return a.IsZero() == b.IsZero() && a.String() == b.String()
	}),
	cmp.Comparer(func(a, b *url.URL) bool {
		if a == nil || b == nil {
			return a == b
		}

		return a.String() == b.String()
	}),
}

func at(s string) Source {
	return PointerSource(jsonpointer.MustParse(s))
}

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()

	u, err := url.Parse(s)
	require.NoError(t, err)

	return u
}

func assertRepr(t *testing.T, want, got any) {
	t.Helper()

	if diff := cmp.Diff(want, got, reprOptions); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s\ngot: %s", diff, spew.Sdump(got))
	}
}

func fooQuerier() DescriptorQuerier {
	return DescriptorQuerierFunc(func(name string) (ResourceInfo, bool) {
		if name != "foos" {
			return ResourceInfo{}, false
		}

		return ResourceInfo{
			Name: "foos",
			Attributes: []AttributeInfo{
				{Name: "title", Shape: converter.String(), RequiredOnCreation: true},
				{Name: "count", Shape: converter.Int(), AllowNull: true},
				{Name: "createdAt", Shape: converter.DateTime(), RequiredOnCreation: true, ReadOnly: true},
			},
		}, true
	})
}

func TestDeserializeSingleton_Basic(t *testing.T) {
	d := NewDeserializer(nil)

	doc, err := d.DeserializeSingleton([]byte(`{
		"data": {
			"type": "foos",
			"id": "1",
			"attributes": {"a": 1, "b": 2, "c": 3}
		}
	}`), false)
	require.NoError(t, err)

	assertRepr(t, SingletonDocumentRepr{
		sourced: sourced{at("/")},
		Data: &ResourceRepr{
			sourced:       sourced{at("/data")},
			Type:          "foos",
			ID:            "1",
			Attributes:    []Attribute{{"a", int64(1)}, {"b", int64(2)}, {"c", int64(3)}},
			Relationships: nil,
		},
	}, doc)
}

func TestDeserializeSingleton_LinksAndRelationships(t *testing.T) {
	d := NewDeserializer(nil)

	doc, err := d.DeserializeSingleton([]byte(`{
		"links": {"self": "/foos/1"},
		"data": {
			"type": "foos",
			"id": "1",
			"attributes": {"a": 1},
			"relationships": {
				"items": {
					"links": {"self": "/foos/1/relationships/bars", "related": "/bars/1"},
					"data": [{"type": "bars", "id": "1"}, {"type": "bars", "id": "2"}]
				},
				"owner": {"data": null},
				"parent": {"links": {"related": "/foos/0"}}
			}
		}
	}`), false)
	require.NoError(t, err)

	assertRepr(t, SingletonDocumentRepr{
		sourced: sourced{at("/")},
		DocumentCommon: DocumentCommon{
			Links: &LinksRepr{sourced: sourced{at("/links")}, Self: mustURL(t, "/foos/1")},
		},
		Data: &ResourceRepr{
			sourced:    sourced{at("/data")},
			Type:       "foos",
			ID:         "1",
			Attributes: []Attribute{{"a", int64(1)}},
			Relationships: []Relationship{
				{"items", LinkageRepr{
					sourced: sourced{at("/data/relationships/items")},
					Links: &LinksRepr{
						sourced: sourced{at("/data/relationships/items/links")},
						Self:    mustURL(t, "/foos/1/relationships/bars"),
						Related: mustURL(t, "/bars/1"),
					},
					Data: ToManyLinkage(
						ResourceIdRepr{sourced: sourced{at("/data/relationships/items/data/0")}, Type: "bars", ID: "1"},
						ResourceIdRepr{sourced: sourced{at("/data/relationships/items/data/1")}, Type: "bars", ID: "2"},
					),
				}},
				{"owner", LinkageRepr{
					sourced: sourced{at("/data/relationships/owner")},
					Data:    NullLinkage(),
				}},
				{"parent", LinkageRepr{
					sourced: sourced{at("/data/relationships/parent")},
					Links: &LinksRepr{
						sourced: sourced{at("/data/relationships/parent/links")},
						Related: mustURL(t, "/foos/0"),
					},
				}},
			},
		},
	}, doc)

	owner, ok := doc.Data.Relationship("owner")
	require.True(t, ok)
	assert.Equal(t, LinkageNull, owner.Data.Kind())

	parent, ok := doc.Data.Relationship("parent")
	require.True(t, ok)
	assert.False(t, parent.Data.IsSpecified())
}

func TestDeserializeSingleton_NoAttributes(t *testing.T) {
	doc, err := NewDeserializer(nil).DeserializeSingleton(map[string]any{
		"data": map[string]any{"type": "foos", "id": "1"},
	}, false)
	require.NoError(t, err)
	require.NotNil(t, doc.Data)
	assert.Empty(t, doc.Data.Attributes)
	assert.Equal(t, "1", doc.Data.ID)
}

func TestDeserializeSingleton_NullData(t *testing.T) {
	doc, err := NewDeserializer(nil).DeserializeSingleton([]byte(`{"data": null}`), false)
	require.NoError(t, err)
	assert.Nil(t, doc.Data)
}

func TestDeserializeSingleton_EmptyDocument(t *testing.T) {
	_, err := NewDeserializer(nil).DeserializeSingleton([]byte(`{}`), false)

	var derr *DeserializationError
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Items, 1)
	assert.Equal(t, ErrEmptyDocument.Error(), derr.Items[0].Message)
	assert.True(t, errors.Is(derr.Items[0], ErrEmptyDocument))
}

func TestDeserializeSingleton_MissingType(t *testing.T) {
	_, err := NewDeserializer(nil).DeserializeSingleton([]byte(`{"data": {"id": "1"}}`), false)

	var derr *DeserializationError
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Items, 1)
	assert.Equal(t, "/data", derr.Items[0].Pointer.String())
	assert.Equal(t, `value must have a property "type"`, derr.Items[0].Message)
}

func TestDeserializeSingleton_BadURL(t *testing.T) {
	_, err := NewDeserializer(nil).DeserializeSingleton([]byte(`{"meta": {}, "links": {"self": 1, "next": "%zz"}}`), false)

	var derr *DeserializationError
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Items, 2)
	assert.Equal(t, "/links/self", derr.Items[0].Pointer.String())
	assert.Equal(t, "value must have be string, got 1", derr.Items[0].Message)
	assert.Equal(t, "/links/next", derr.Items[1].Pointer.String())
	assert.Equal(t, `failed to parse "%zz" as a URL`, derr.Items[1].Message)
}

func TestDeserializeSingleton_WithQuerier(t *testing.T) {
	d := NewDeserializer(fooQuerier())

	doc, err := d.DeserializeSingleton([]byte(`{
		"data": {
			"type": "foos",
			"attributes": {"count": null, "title": "hello", "createdAt": "2020-01-02T03:04:05Z"}
		}
	}`), true)
	require.NoError(t, err)

	// declaration order, not document order
	require.Len(t, doc.Data.Attributes, 3)
	assert.Equal(t, Attribute{"title", "hello"}, doc.Data.Attributes[0])
	assert.Equal(t, Attribute{"count", nil}, doc.Data.Attributes[1])
	assert.Equal(t, "createdAt", doc.Data.Attributes[2].Name)

	createdAt, ok := doc.Data.Attributes[2].Value.(time.Time)
	require.True(t, ok)
	assert.True(t, createdAt.Equal(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Empty(t, doc.Data.ID)
}

func TestDeserializeSingleton_WithQuerierErrors(t *testing.T) {
	d := NewDeserializer(fooQuerier())

	_, err := d.DeserializeSingleton([]byte(`{
		"data": {
			"type": "foos",
			"attributes": {"count": "many", "titel": "hello"}
		}
	}`), true)

	var derr *DeserializationError
	require.ErrorAs(t, err, &derr)

	got := make(map[string]string, len(derr.Items))
	for _, item := range derr.Items {
		got[item.Pointer.String()+" "+item.Message] = ""
	}

	assert.Equal(t, map[string]string{
		`/data attribute "title" is not provided where a complete set of attributes is wanted`: "",
		`/data/attributes/count value has type string ("many") where number expected`: "",
		`/data/attributes/titel unknown attribute "titel" (did you mean "title"?)`: "",
	}, got)
}

func TestDeserializeSingleton_IncompleteAllowedWithoutRequirement(t *testing.T) {
	doc, err := NewDeserializer(fooQuerier()).DeserializeSingleton([]byte(`{
		"data": {"type": "foos", "id": "1", "attributes": {"count": 3}}
	}`), false)
	require.NoError(t, err)
	assert.Equal(t, []Attribute{{"count", int64(3)}}, doc.Data.Attributes)
}

func TestDeserializeSingleton_LongArrays(t *testing.T) {
	tags := make([]any, 1000)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag%d", i)
	}

	doc, err := NewDeserializer(nil).DeserializeSingleton(map[string]any{
		"data": map[string]any{"type": "foos", "id": "1", "attributes": map[string]any{"tags": tags}},
	}, false)
	require.NoError(t, err)
	require.Len(t, doc.Data.Attributes, 1)
	assert.Len(t, doc.Data.Attributes[0].Value, 1000)

	points := make([]any, 1100)
	for i := range points {
		points[i] = json.Number("1")
	}

	querier := DescriptorQuerierFunc(func(string) (ResourceInfo, bool) {
		return ResourceInfo{
			Name:       "series",
			Attributes: []AttributeInfo{{Name: "points", Shape: converter.SequenceOf(converter.Float())}},
		}, true
	})

	doc, err = NewDeserializer(querier).DeserializeSingleton(map[string]any{
		"data": map[string]any{"type": "series", "id": "1", "attributes": map[string]any{"points": points}},
	}, true)
	require.NoError(t, err)
	require.Len(t, doc.Data.Attributes, 1)
	assert.Len(t, doc.Data.Attributes[0].Value, 1100)
}

func TestDeserializeSingleton_UnknownType(t *testing.T) {
	_, err := NewDeserializer(fooQuerier()).DeserializeSingleton([]byte(`{
		"data": {"type": "bars", "id": "1"}
	}`), false)

	var derr *DeserializationError
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Items, 1)
	assert.Equal(t, "/data", derr.Items[0].Pointer.String())
	assert.Equal(t, `unknown resource type "bars"`, derr.Items[0].Message)
}

func TestDeserializeCollection(t *testing.T) {
	doc, err := NewDeserializer(nil).DeserializeCollection([]byte(`{
		"data": [{"type": "foos", "id": "1"}, {"type": "foos", "id": "2"}],
		"included": [{"type": "bars", "id": "9", "meta": {"n": 1}}],
		"meta": {"total": 2}
	}`), false)
	require.NoError(t, err)

	require.Len(t, doc.Data, 2)
	assert.Equal(t, "/data/1", doc.Data[1].Source().String())
	require.Len(t, doc.Included, 1)
	assert.Equal(t, Meta{"n": int64(1)}, doc.Included[0].Meta)
	assert.Equal(t, Meta{"total": int64(2)}, doc.Meta)
}

func TestDeserializeCollection_CollectsAllErrors(t *testing.T) {
	_, err := NewDeserializer(nil).DeserializeCollection([]byte(`{
		"data": [{"type": 1, "id": "1"}, {"id": "2"}, "x"]
	}`), false)

	var derr *DeserializationError
	require.ErrorAs(t, err, &derr)

	pointers := make([]string, 0, len(derr.Items))
	for _, item := range derr.Items {
		pointers = append(pointers, item.Pointer.String())
	}

	assert.Equal(t, []string{"/data/0/type", "/data/1", "/data/2"}, pointers)
	assert.Equal(t, `value has type string ("x") where resource expected`, derr.Items[2].Message)
}

func TestDeserializeErrors(t *testing.T) {
	doc, err := NewDeserializer(nil).DeserializeSingleton([]byte(`{
		"errors": [{"status": "422", "title": "bad", "source": {"pointer": "/data/attributes/x"}}]
	}`), false)
	require.NoError(t, err)
	require.Len(t, doc.Errors, 1)

	e := doc.Errors[0]
	assert.Equal(t, "422", e.Status)
	assert.Equal(t, "bad", e.Title)
	require.NotNil(t, e.ErrorSource)
	assert.Equal(t, "/data/attributes/x", e.ErrorSource.Pointer)
	assert.Equal(t, "/errors/0/source", e.ErrorSource.Source().String())
}

func TestDeserializeToOneRel(t *testing.T) {
	d := NewDeserializer(nil)

	doc, err := d.DeserializeToOneRel([]byte(`{"data": {"type": "bars", "id": "1"}}`))
	require.NoError(t, err)
	require.NotNil(t, doc.Data)
	assert.Equal(t, "bars", doc.Data.Type)

	doc, err = d.DeserializeToOneRel([]byte(`{"data": null}`))
	require.NoError(t, err)
	assert.Nil(t, doc.Data)

	_, err = d.DeserializeToOneRel([]byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrEmptyRelDocument.Error())
}

func TestDeserializeToManyRel(t *testing.T) {
	doc, err := NewDeserializer(nil).DeserializeToManyRel([]byte(`{"data": [{"type": "bars", "id": "1"}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Data, 1)
	assert.Equal(t, "/data/0", doc.Data[0].Source().String())

	doc, err = NewDeserializer(nil).DeserializeToManyRel([]byte(`{"links": {"self": "/x"}}`))
	require.NoError(t, err)
	assert.Nil(t, doc.Data)
}

func TestDeserialize_MalformedJSON(t *testing.T) {
	_, err := NewDeserializer(nil).DeserializeSingleton([]byte(`{"data": `), false)
	require.Error(t, err)

	var derr *DeserializationError
	assert.False(t, errors.As(err, &derr))
}

func TestDeserializationError_Unwrap(t *testing.T) {
	_, err := NewDeserializer(nil).DeserializeSingleton([]byte(`{"data": 1}`), false)

	var verr *converter.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "/data", verr.Pointer.String())
	assert.Contains(t, err.Error(), "invalid document: ")
}

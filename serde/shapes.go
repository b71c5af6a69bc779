package serde

import (
	"net/url"
	"reflect"

	"jsonapi-serde/converter"
)

// Shape names used to register custom converters and name mappers.
const (
	urlShapeName      = "URL"
	resourceShapeName = "resource"
	linksShapeName    = "links"
)

var (
	tyURL          = reflect.TypeFor[*url.URL]()
	tyResourceRepr = reflect.TypeFor[ResourceRepr]()
)

// attributeScalarShapes are the values an attribute may take when no
// resource descriptor is known.
var attributeScalarShapes = []*converter.Shape{
	converter.String(),
	converter.Int(),
	converter.Float(),
	converter.Bool(),
	converter.Null(),
	converter.Decimal(),
	converter.DateTime(),
	converter.DateOnly(),
	converter.Bytes(),
}

// AttributeValueShape accepts any scalar, or a list or string keyed map of
// scalars.
var AttributeValueShape = converter.UnionOf(append([]*converter.Shape{
	converter.SequenceOf(converter.UnionOf(attributeScalarShapes...)),
	converter.MappingOf(converter.String(), converter.UnionOf(attributeScalarShapes...)),
}, attributeScalarShapes...)...)

var (
	urlShape      = converter.CustomOf(urlShapeName, tyURL)
	resourceShape = converter.CustomOf(resourceShapeName, tyResourceRepr)
	metaShape     = converter.OptionalOf(converter.MappingOf(converter.String(), converter.Any()))
	optString     = converter.OptionalOf(converter.String())

	linksShape = converter.OptionalOf(converter.RecordOf(linksShapeName, []converter.Field{
		{Name: "self_", Shape: converter.OptionalOf(urlShape)},
		{Name: "related", Shape: converter.OptionalOf(urlShape)},
		{Name: "next", Shape: converter.OptionalOf(urlShape)},
		{Name: "prev", Shape: converter.OptionalOf(urlShape)},
		{Name: "first", Shape: converter.OptionalOf(urlShape)},
		{Name: "last", Shape: converter.OptionalOf(urlShape)},
	}, constructLinks))

	resourceIdentifierShape = converter.RecordOf("resource identifier", []converter.Field{
		{Name: "type", Shape: converter.String()},
		{Name: "id", Shape: converter.String()},
		{Name: "meta", Shape: metaShape},
	}, constructResourceIdentifier)

	linkageShape = converter.RecordOf("linkage", []converter.Field{
		{
			Name: "data",
			Shape: converter.UnionOf(
				converter.Null(),
				resourceIdentifierShape,
				converter.SequenceOf(resourceIdentifierShape),
			),
			Optional: true,
		},
		{Name: "links", Shape: linksShape},
		{Name: "meta", Shape: metaShape},
	}, constructLinkage)

	errorSourceShape = converter.OptionalOf(converter.RecordOf("error source", []converter.Field{
		{Name: "pointer", Shape: optString},
		{Name: "parameter", Shape: optString},
	}, constructErrorSource))

	errorShape = converter.RecordOf("error", []converter.Field{
		{Name: "id", Shape: optString},
		{Name: "status", Shape: optString},
		{Name: "code", Shape: optString},
		{Name: "title", Shape: optString},
		{Name: "detail", Shape: optString},
		{Name: "source", Shape: errorSourceShape},
		{Name: "links", Shape: linksShape},
		{Name: "meta", Shape: metaShape},
	}, constructError)
)

func documentFields(data converter.Field) []converter.Field {
	return []converter.Field{
		{Name: "jsonapi", Shape: metaShape},
		{Name: "errors", Shape: converter.OptionalOf(converter.SequenceOf(errorShape))},
		{Name: "included", Shape: converter.OptionalOf(converter.SequenceOf(resourceShape))},
		{Name: "links", Shape: linksShape},
		{Name: "meta", Shape: metaShape},
		data,
	}
}

var (
	singletonDocumentShape = converter.RecordOf("singleton document", documentFields(
		converter.Field{Name: "data", Shape: converter.OptionalOf(resourceShape)},
	), constructSingletonDocument)

	collectionDocumentShape = converter.RecordOf("collection document", documentFields(
		converter.Field{Name: "data", Shape: converter.SequenceOf(resourceShape), Optional: true},
	), constructCollectionDocument)

	toOneRelDocumentShape = converter.RecordOf("to-one relationship document", documentFields(
		converter.Field{Name: "data", Shape: converter.OptionalOf(resourceIdentifierShape)},
	), constructToOneRelDocument)

	toManyRelDocumentShape = converter.RecordOf("to-many relationship document", documentFields(
		converter.Field{Name: "data", Shape: converter.SequenceOf(resourceIdentifierShape), Optional: true},
	), constructToManyRelDocument)
)

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

func metaField(fields map[string]any) Meta {
	m, ok := fields["meta"].(map[string]any)
	if !ok {
		return nil
	}

	return m
}

func linksField(fields map[string]any) *LinksRepr {
	l, _ := fields["links"].(*LinksRepr)
	return l
}

func urlField(fields map[string]any, name string) *url.URL {
	u, _ := fields[name].(*url.URL)
	return u
}

func constructLinks(fields map[string]any) (any, error) {
	return &LinksRepr{
		Self:    urlField(fields, "self_"),
		Related: urlField(fields, "related"),
		Next:    urlField(fields, "next"),
		Prev:    urlField(fields, "prev"),
		First:   urlField(fields, "first"),
		Last:    urlField(fields, "last"),
	}, nil
}

func constructResourceIdentifier(fields map[string]any) (any, error) {
	return ResourceIdRepr{
		Type: stringField(fields, "type"),
		ID:   stringField(fields, "id"),
		Meta: metaField(fields),
	}, nil
}

func resourceIdentifiers(items []any) []ResourceIdRepr {
	ids := make([]ResourceIdRepr, 0, len(items))
	for _, item := range items {
		if id, ok := item.(ResourceIdRepr); ok {
			ids = append(ids, id)
		}
	}

	return ids
}

func constructLinkage(fields map[string]any) (any, error) {
	l := LinkageRepr{Links: linksField(fields), Meta: metaField(fields)}

	raw, present := fields["data"]

	switch data := raw.(type) {
	case nil:
		if present {
			l.Data = NullLinkage()
		}
	case ResourceIdRepr:
		l.Data = ToOneLinkage(data)
	case []any:
		l.Data = ToManyLinkage(resourceIdentifiers(data)...)
	}

	return l, nil
}

func constructErrorSource(fields map[string]any) (any, error) {
	return &SourceRepr{
		Pointer:   stringField(fields, "pointer"),
		Parameter: stringField(fields, "parameter"),
	}, nil
}

func constructError(fields map[string]any) (any, error) {
	e := ErrorRepr{
		ID:     stringField(fields, "id"),
		Status: stringField(fields, "status"),
		Code:   stringField(fields, "code"),
		Title:  stringField(fields, "title"),
		Detail: stringField(fields, "detail"),
		Links:  linksField(fields),
		Meta:   metaField(fields),
	}
	e.ErrorSource, _ = fields["source"].(*SourceRepr)

	return e, nil
}

func documentCommon(fields map[string]any) DocumentCommon {
	c := DocumentCommon{Links: linksField(fields), Meta: metaField(fields)}
	c.JSONAPI, _ = fields["jsonapi"].(map[string]any)

	if errs, ok := fields["errors"].([]any); ok {
		c.Errors = make([]ErrorRepr, 0, len(errs))
		for _, e := range errs {
			if e, ok := e.(ErrorRepr); ok {
				c.Errors = append(c.Errors, e)
			}
		}
	}

	if included, ok := fields["included"].([]any); ok {
		c.Included = make([]ResourceRepr, 0, len(included))
		for _, r := range included {
			if r, ok := r.(ResourceRepr); ok {
				c.Included = append(c.Included, r)
			}
		}
	}

	return c
}

func constructSingletonDocument(fields map[string]any) (any, error) {
	var data *ResourceRepr

	raw, present := fields["data"]
	if r, ok := raw.(ResourceRepr); ok {
		data = &r
	}

	doc, err := NewSingletonDocument(documentCommon(fields), data, present)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func constructCollectionDocument(fields map[string]any) (any, error) {
	var data []ResourceRepr

	if items, ok := fields["data"].([]any); ok {
		data = make([]ResourceRepr, 0, len(items))
		for _, item := range items {
			if r, ok := item.(ResourceRepr); ok {
				data = append(data, r)
			}
		}
	}

	doc, err := NewCollectionDocument(documentCommon(fields), data)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func constructToOneRelDocument(fields map[string]any) (any, error) {
	var data *ResourceIdRepr

	raw, present := fields["data"]
	if id, ok := raw.(ResourceIdRepr); ok {
		data = &id
	}

	doc, err := NewToOneRelDocument(documentCommon(fields), data, present)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func constructToManyRelDocument(fields map[string]any) (any, error) {
	var data []ResourceIdRepr
	if items, ok := fields["data"].([]any); ok {
		data = resourceIdentifiers(items)
	}

	doc, err := NewToManyRelDocument(documentCommon(fields), data)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

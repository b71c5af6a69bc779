package serde

import (
	"fmt"

	"dario.cat/mergo"
)

func mergeMeta(dst *Meta, src Meta) {
	if *dst == nil {
		*dst = Meta{}
	}

	// both sides are plain maps, merging cannot fail
	_ = mergo.Merge(dst, src, mergo.WithOverride)
}

// ResourceIdReprBuilder builds a resource identifier.
type ResourceIdReprBuilder struct {
	typ  string
	id   string
	meta Meta
}

// SetType sets the resource type.
func (b *ResourceIdReprBuilder) SetType(typ string) *ResourceIdReprBuilder {
	b.typ = typ
	return b
}

// SetID sets the resource id.
func (b *ResourceIdReprBuilder) SetID(id string) *ResourceIdReprBuilder {
	b.id = id
	return b
}

// AddMeta merges meta into the identifier's meta.
func (b *ResourceIdReprBuilder) AddMeta(meta Meta) *ResourceIdReprBuilder {
	mergeMeta(&b.meta, meta)
	return b
}

// Build returns the identifier, or nil unless both type and id were set.
func (b *ResourceIdReprBuilder) Build() *ResourceIdRepr {
	if b.typ == "" || b.id == "" {
		return nil
	}

	return &ResourceIdRepr{Type: b.typ, ID: b.id, Meta: b.meta}
}

// ResourceIdReprCollectionBuilder is implemented by builders accumulating
// resource identifiers.
type ResourceIdReprCollectionBuilder interface {
	Next() *ResourceIdReprBuilder
	Done()
	SetLinks(links *LinksRepr)
	AddMeta(meta Meta)
}

type relationshipBuilder interface {
	build() LinkageRepr
}

// ToOneRelReprBuilder builds a to-one relationship object.
type ToOneRelReprBuilder struct {
	data  *ResourceIdReprBuilder
	links *LinksRepr
	meta  Meta
}

// Set starts the linkage data. A relationship whose identifier builder stays
// incomplete renders null data.
func (b *ToOneRelReprBuilder) Set() *ResourceIdReprBuilder {
	b.data = &ResourceIdReprBuilder{}
	return b.data
}

// SetLinks sets the relationship links.
func (b *ToOneRelReprBuilder) SetLinks(links *LinksRepr) {
	b.links = links
}

// AddMeta merges meta into the relationship meta.
func (b *ToOneRelReprBuilder) AddMeta(meta Meta) {
	mergeMeta(&b.meta, meta)
}

func (b *ToOneRelReprBuilder) build() LinkageRepr {
	l := LinkageRepr{Links: b.links, Meta: b.meta}

	if b.data != nil {
		if id := b.data.Build(); id != nil {
			l.Data = ToOneLinkage(*id)
		} else {
			l.Data = NullLinkage()
		}
	}

	return l
}

// ToManyRelReprBuilder builds a to-many relationship object. The linkage
// data is unspecified until Done is called.
type ToManyRelReprBuilder struct {
	data  []*ResourceIdReprBuilder
	done  bool
	links *LinksRepr
	meta  Meta
}

// Next appends a resource identifier.
func (b *ToManyRelReprBuilder) Next() *ResourceIdReprBuilder {
	rb := &ResourceIdReprBuilder{}
	b.data = append(b.data, rb)

	return rb
}

// Done marks the linkage data as complete.
func (b *ToManyRelReprBuilder) Done() {
	b.done = true
}

// SetLinks sets the relationship links.
func (b *ToManyRelReprBuilder) SetLinks(links *LinksRepr) {
	b.links = links
}

// AddMeta merges meta into the relationship meta.
func (b *ToManyRelReprBuilder) AddMeta(meta Meta) {
	mergeMeta(&b.meta, meta)
}

func (b *ToManyRelReprBuilder) build() LinkageRepr {
	l := LinkageRepr{Links: b.links, Meta: b.meta}
	if b.done {
		l.Data = ToManyLinkage(buildIdentifiers(b.data)...)
	}

	return l
}

func buildIdentifiers(builders []*ResourceIdReprBuilder) []ResourceIdRepr {
	ids := make([]ResourceIdRepr, 0, len(builders))

	for i, rb := range builders {
		id := rb.Build()
		if id == nil {
			panic(fmt.Sprintf("serde: resource identifier #%d is incomplete", i))
		}

		ids = append(ids, *id)
	}

	return ids
}

// ResourceReprBuilder builds a resource object.
type ResourceReprBuilder struct {
	typ           string
	id            string
	attributes    []Attribute
	relNames      []string
	relationships map[string]relationshipBuilder
	links         *LinksRepr
	meta          Meta
}

// SetType sets the resource type.
func (b *ResourceReprBuilder) SetType(typ string) *ResourceReprBuilder {
	b.typ = typ
	return b
}

// SetID sets the resource id.
func (b *ResourceReprBuilder) SetID(id string) *ResourceReprBuilder {
	b.id = id
	return b
}

// AddAttribute appends an attribute.
func (b *ResourceReprBuilder) AddAttribute(name string, value any) *ResourceReprBuilder {
	b.attributes = append(b.attributes, Attribute{Name: name, Value: value})
	return b
}

func (b *ResourceReprBuilder) relationship(name string, fresh func() relationshipBuilder) relationshipBuilder {
	if rb, ok := b.relationships[name]; ok {
		return rb
	}

	if b.relationships == nil {
		b.relationships = map[string]relationshipBuilder{}
	}

	rb := fresh()
	b.relationships[name] = rb
	b.relNames = append(b.relNames, name)

	return rb
}

// NextToOneRelationship returns the builder of the to-one relationship
// name. It panics when name was used as a to-many relationship before.
func (b *ResourceReprBuilder) NextToOneRelationship(name string) *ToOneRelReprBuilder {
	rb, ok := b.relationship(name, func() relationshipBuilder { return &ToOneRelReprBuilder{} }).(*ToOneRelReprBuilder)
	if !ok {
		panic(fmt.Sprintf("serde: relationship %q is a to-many relationship", name))
	}

	return rb
}

// NextToManyRelationship returns the builder of the to-many relationship
// name. It panics when name was used as a to-one relationship before.
func (b *ResourceReprBuilder) NextToManyRelationship(name string) *ToManyRelReprBuilder {
	rb, ok := b.relationship(name, func() relationshipBuilder { return &ToManyRelReprBuilder{} }).(*ToManyRelReprBuilder)
	if !ok {
		panic(fmt.Sprintf("serde: relationship %q is a to-one relationship", name))
	}

	return rb
}

// SetLinks sets the resource links.
func (b *ResourceReprBuilder) SetLinks(links *LinksRepr) *ResourceReprBuilder {
	b.links = links
	return b
}

// AddMeta merges meta into the resource meta.
func (b *ResourceReprBuilder) AddMeta(meta Meta) *ResourceReprBuilder {
	mergeMeta(&b.meta, meta)
	return b
}

// Build returns the resource. It may be called more than once.
func (b *ResourceReprBuilder) Build() ResourceRepr {
	r := ResourceRepr{
		Type:          b.typ,
		ID:            b.id,
		Attributes:    append([]Attribute{}, b.attributes...),
		Relationships: make([]Relationship, 0, len(b.relNames)),
		Links:         b.links,
		Meta:          b.meta,
	}

	for _, name := range b.relNames {
		r.Relationships = append(r.Relationships, Relationship{
			Name:    name,
			Linkage: b.relationships[name].build(),
		})
	}

	return r
}

// ResourceReprCollectionBuilder is implemented by builders accumulating
// resource objects.
type ResourceReprCollectionBuilder interface {
	Next() *ResourceReprBuilder
	Done()
	SetLinks(links *LinksRepr)
	AddMeta(meta Meta)
}

type documentBuilder struct {
	jsonapi  Meta
	errors   []ErrorRepr
	included []*ResourceReprBuilder
	links    *LinksRepr
	meta     Meta
}

// NextIncluded appends a resource to the included member.
func (b *documentBuilder) NextIncluded() *ResourceReprBuilder {
	rb := &ResourceReprBuilder{}
	b.included = append(b.included, rb)

	return rb
}

// AddError appends an error object.
func (b *documentBuilder) AddError(e ErrorRepr) {
	b.errors = append(b.errors, e)
}

// SetLinks sets the top-level links.
func (b *documentBuilder) SetLinks(links *LinksRepr) {
	b.links = links
}

// AddMeta merges meta into the top-level meta.
func (b *documentBuilder) AddMeta(meta Meta) {
	mergeMeta(&b.meta, meta)
}

// SetJSONAPI sets the jsonapi member.
func (b *documentBuilder) SetJSONAPI(jsonapi Meta) {
	b.jsonapi = jsonapi
}

func (b *documentBuilder) common() DocumentCommon {
	c := DocumentCommon{
		JSONAPI:  b.jsonapi,
		Errors:   b.errors,
		Included: make([]ResourceRepr, 0, len(b.included)),
		Links:    b.links,
		Meta:     b.meta,
	}

	for _, rb := range b.included {
		c.Included = append(c.Included, rb.Build())
	}

	return c
}

// SingletonDocumentBuilder builds a SingletonDocumentRepr.
type SingletonDocumentBuilder struct {
	documentBuilder

	data *ResourceReprBuilder
}

// NewSingletonDocumentBuilder returns an empty builder.
func NewSingletonDocumentBuilder() *SingletonDocumentBuilder {
	return &SingletonDocumentBuilder{data: &ResourceReprBuilder{}}
}

// Data returns the builder of the primary resource.
func (b *SingletonDocumentBuilder) Data() *ResourceReprBuilder {
	return b.data
}

// Build returns the document.
func (b *SingletonDocumentBuilder) Build() SingletonDocumentRepr {
	data := b.data.Build()
	return SingletonDocumentRepr{DocumentCommon: b.common(), Data: &data}
}

// CollectionDocumentBuilder builds a CollectionDocumentRepr.
type CollectionDocumentBuilder struct {
	documentBuilder

	data []*ResourceReprBuilder
	done bool
}

// NewCollectionDocumentBuilder returns an empty builder.
func NewCollectionDocumentBuilder() *CollectionDocumentBuilder {
	return &CollectionDocumentBuilder{}
}

// Next appends a primary resource.
func (b *CollectionDocumentBuilder) Next() *ResourceReprBuilder {
	rb := &ResourceReprBuilder{}
	b.data = append(b.data, rb)

	return rb
}

// Done marks the primary data as complete.
func (b *CollectionDocumentBuilder) Done() {
	b.done = true
}

// Build returns the document. It panics unless Done was called.
func (b *CollectionDocumentBuilder) Build() CollectionDocumentRepr {
	if !b.done {
		panic("serde: collection document built before Done")
	}

	data := make([]ResourceRepr, 0, len(b.data))
	for _, rb := range b.data {
		data = append(data, rb.Build())
	}

	return CollectionDocumentRepr{DocumentCommon: b.common(), Data: data}
}

// ToOneRelDocumentBuilder builds a ToOneRelDocumentRepr.
type ToOneRelDocumentBuilder struct {
	documentBuilder

	data *ResourceIdReprBuilder
}

// NewToOneRelDocumentBuilder returns an empty builder.
func NewToOneRelDocumentBuilder() *ToOneRelDocumentBuilder {
	return &ToOneRelDocumentBuilder{}
}

// Set starts the linkage data.
func (b *ToOneRelDocumentBuilder) Set() *ResourceIdReprBuilder {
	b.data = &ResourceIdReprBuilder{}
	return b.data
}

// Build returns the document. Data is null unless Set produced a complete
// identifier.
func (b *ToOneRelDocumentBuilder) Build() ToOneRelDocumentRepr {
	d := ToOneRelDocumentRepr{DocumentCommon: b.common()}
	if b.data != nil {
		d.Data = b.data.Build()
	}

	return d
}

// ToManyRelDocumentBuilder builds a ToManyRelDocumentRepr.
type ToManyRelDocumentBuilder struct {
	documentBuilder

	data []*ResourceIdReprBuilder
	done bool
}

// NewToManyRelDocumentBuilder returns an empty builder.
func NewToManyRelDocumentBuilder() *ToManyRelDocumentBuilder {
	return &ToManyRelDocumentBuilder{}
}

// Next appends a resource identifier.
func (b *ToManyRelDocumentBuilder) Next() *ResourceIdReprBuilder {
	rb := &ResourceIdReprBuilder{}
	b.data = append(b.data, rb)

	return rb
}

// Done marks the linkage data as complete.
func (b *ToManyRelDocumentBuilder) Done() {
	b.done = true
}

// Build returns the document. It panics unless Done was called.
func (b *ToManyRelDocumentBuilder) Build() ToManyRelDocumentRepr {
	if !b.done {
		panic("serde: relationship document built before Done")
	}

	return ToManyRelDocumentRepr{DocumentCommon: b.common(), Data: buildIdentifiers(b.data)}
}

var (
	_ ResourceReprCollectionBuilder   = (*CollectionDocumentBuilder)(nil)
	_ ResourceIdReprCollectionBuilder = (*ToManyRelDocumentBuilder)(nil)
	_ ResourceIdReprCollectionBuilder = (*ToManyRelReprBuilder)(nil)
)

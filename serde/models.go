package serde

import (
	"errors"
	"net/url"
	"slices"
)

// Meta is the free-form content of a meta member.
type Meta = map[string]any

// LinksRepr is a links object. Nil URLs are absent.
type LinksRepr struct {
	sourced

	Self    *url.URL
	Related *url.URL
	Next    *url.URL
	Prev    *url.URL
	First   *url.URL
	Last    *url.URL
}

// IsEmpty reports whether no link is set.
func (l *LinksRepr) IsEmpty() bool {
	return l == nil || (l.Self == nil && l.Related == nil && l.Next == nil &&
		l.Prev == nil && l.First == nil && l.Last == nil)
}

// WithSource returns a copy of l carrying source.
func (l LinksRepr) WithSource(source Source) LinksRepr {
	l.source = source
	return l
}

// ResourceIdRepr is a resource identifier object.
type ResourceIdRepr struct {
	sourced

	Type string
	ID   string
	Meta Meta
}

// WithSource returns a copy of r carrying source.
func (r ResourceIdRepr) WithSource(source Source) ResourceIdRepr {
	r.source = source
	return r
}

// LinkageKind tells the four states of a relationship's data member apart.
type LinkageKind int

const (
	// LinkageUnspecified means the data member is absent.
	LinkageUnspecified LinkageKind = iota
	// LinkageNull means "data": null.
	LinkageNull
	// LinkageToOne means a single resource identifier.
	LinkageToOne
	// LinkageToMany means an array of resource identifiers.
	LinkageToMany
)

// Linkage is the data member of a relationship.
type Linkage struct {
	kind LinkageKind
	one  ResourceIdRepr
	many []ResourceIdRepr
}

// UnspecifiedLinkage returns a linkage without data.
func UnspecifiedLinkage() Linkage { return Linkage{} }

// NullLinkage returns an empty to-one linkage.
func NullLinkage() Linkage { return Linkage{kind: LinkageNull} }

// ToOneLinkage returns a linkage to id.
func ToOneLinkage(id ResourceIdRepr) Linkage {
	return Linkage{kind: LinkageToOne, one: id}
}

// ToManyLinkage returns a linkage to ids. An empty list is still specified.
func ToManyLinkage(ids ...ResourceIdRepr) Linkage {
	if ids == nil {
		ids = []ResourceIdRepr{}
	}

	return Linkage{kind: LinkageToMany, many: ids}
}

// Kind returns the state of the linkage.
func (l Linkage) Kind() LinkageKind { return l.kind }

// IsSpecified reports whether the data member is present.
func (l Linkage) IsSpecified() bool { return l.kind != LinkageUnspecified }

// One returns the identifier of a to-one linkage.
func (l Linkage) One() (ResourceIdRepr, bool) {
	return l.one, l.kind == LinkageToOne
}

// Many returns the identifiers of a to-many linkage.
func (l Linkage) Many() ([]ResourceIdRepr, bool) {
	return l.many, l.kind == LinkageToMany
}

// LinkageRepr is a relationship object.
type LinkageRepr struct {
	sourced

	Data  Linkage
	Links *LinksRepr
	Meta  Meta
}

// WithSource returns a copy of l carrying source.
func (l LinkageRepr) WithSource(source Source) LinkageRepr {
	l.source = source
	return l
}

// Attribute is a name/value pair of a resource object.
type Attribute struct {
	Name  string
	Value any
}

// Relationship is a name/linkage pair of a resource object.
type Relationship struct {
	Name    string
	Linkage LinkageRepr
}

// ResourceRepr is a resource object. An empty ID is absent.
type ResourceRepr struct {
	sourced

	Type          string
	ID            string
	Attributes    []Attribute
	Relationships []Relationship
	Links         *LinksRepr
	Meta          Meta
}

// WithSource returns a copy of r carrying source.
func (r ResourceRepr) WithSource(source Source) ResourceRepr {
	r.source = source
	return r
}

// Attribute returns the last value given for name.
func (r ResourceRepr) Attribute(name string) (any, bool) {
	for i := len(r.Attributes) - 1; i >= 0; i-- {
		if r.Attributes[i].Name == name {
			return r.Attributes[i].Value, true
		}
	}

	return nil, false
}

// Relationship returns the last linkage given for name.
func (r ResourceRepr) Relationship(name string) (LinkageRepr, bool) {
	for i := len(r.Relationships) - 1; i >= 0; i-- {
		if r.Relationships[i].Name == name {
			return r.Relationships[i].Linkage, true
		}
	}

	return LinkageRepr{}, false
}

// ReplaceAttributes returns a copy of r in which the given attributes replace
// those of the same name in place. Attributes not present before are
// appended.
func (r ResourceRepr) ReplaceAttributes(attrs ...Attribute) ResourceRepr {
	result := slices.Clone(r.Attributes)

	for _, a := range attrs {
		replaced := false

		for i := range result {
			if result[i].Name == a.Name {
				result[i].Value = a.Value
				replaced = true
			}
		}

		if !replaced {
			result = append(result, a)
		}
	}

	r.Attributes = result

	return r
}

// SourceRepr is the source member of an error object.
type SourceRepr struct {
	sourced

	Pointer   string
	Parameter string
}

// WithSource returns a copy of s carrying source.
func (s SourceRepr) WithSource(source Source) SourceRepr {
	s.source = source
	return s
}

// ErrorRepr is an error object.
type ErrorRepr struct {
	sourced

	ID          string
	Status      string
	Code        string
	Title       string
	Detail      string
	ErrorSource *SourceRepr
	Links       *LinksRepr
	Meta        Meta
}

// WithSource returns a copy of e carrying source.
func (e ErrorRepr) WithSource(source Source) ErrorRepr {
	e.source = source
	return e
}

// DocumentCommon holds the members shared by every top-level document.
type DocumentCommon struct {
	JSONAPI  Meta
	Errors   []ErrorRepr
	Included []ResourceRepr
	Links    *LinksRepr
	Meta     Meta
}

// Document is implemented by the four top-level document kinds.
type Document interface {
	Sourced
	Common() *DocumentCommon
}

var (
	// ErrEmptyDocument is returned when a document has neither data, errors
	// nor meta.
	ErrEmptyDocument = errors.New("either data, errors, or meta must be specified")

	// ErrEmptyRelDocument is the relationship document variant of ErrEmptyDocument.
	ErrEmptyRelDocument = errors.New("either data, links, errors, or meta must be specified")
)

// SingletonDocumentRepr is a document whose primary data is one resource.
// A nil Data renders no data member.
type SingletonDocumentRepr struct {
	sourced
	DocumentCommon

	Data *ResourceRepr
}

// NewSingletonDocument validates and returns a singleton document.
// hasData tells "data": null apart from an absent data member.
func NewSingletonDocument(common DocumentCommon, data *ResourceRepr, hasData bool) (SingletonDocumentRepr, error) {
	if !hasData && common.Errors == nil && common.Meta == nil {
		return SingletonDocumentRepr{}, ErrEmptyDocument
	}

	return SingletonDocumentRepr{DocumentCommon: common, Data: data}, nil
}

// Common returns the shared members.
func (d *SingletonDocumentRepr) Common() *DocumentCommon { return &d.DocumentCommon }

// WithSource returns a copy of d carrying source.
func (d SingletonDocumentRepr) WithSource(source Source) SingletonDocumentRepr {
	d.source = source
	return d
}

// CollectionDocumentRepr is a document whose primary data is a list of
// resources.
type CollectionDocumentRepr struct {
	sourced
	DocumentCommon

	Data []ResourceRepr
}

// NewCollectionDocument validates and returns a collection document.
func NewCollectionDocument(common DocumentCommon, data []ResourceRepr) (CollectionDocumentRepr, error) {
	if data == nil && common.Errors == nil && common.Meta == nil {
		return CollectionDocumentRepr{}, ErrEmptyDocument
	}

	return CollectionDocumentRepr{DocumentCommon: common, Data: data}, nil
}

// Common returns the shared members.
func (d *CollectionDocumentRepr) Common() *DocumentCommon { return &d.DocumentCommon }

// WithSource returns a copy of d carrying source.
func (d CollectionDocumentRepr) WithSource(source Source) CollectionDocumentRepr {
	d.source = source
	return d
}

// ToOneRelDocumentRepr is the document of a to-one relationship endpoint.
// A nil Data is null linkage.
type ToOneRelDocumentRepr struct {
	sourced
	DocumentCommon

	Data *ResourceIdRepr
}

// NewToOneRelDocument validates and returns a to-one relationship document.
// hasData tells a null linkage apart from an absent one.
func NewToOneRelDocument(common DocumentCommon, data *ResourceIdRepr, hasData bool) (ToOneRelDocumentRepr, error) {
	if !hasData && common.Links == nil && common.Errors == nil && common.Meta == nil {
		return ToOneRelDocumentRepr{}, ErrEmptyRelDocument
	}

	return ToOneRelDocumentRepr{DocumentCommon: common, Data: data}, nil
}

// Common returns the shared members.
func (d *ToOneRelDocumentRepr) Common() *DocumentCommon { return &d.DocumentCommon }

// WithSource returns a copy of d carrying source.
func (d ToOneRelDocumentRepr) WithSource(source Source) ToOneRelDocumentRepr {
	d.source = source
	return d
}

// ToManyRelDocumentRepr is the document of a to-many relationship endpoint.
type ToManyRelDocumentRepr struct {
	sourced
	DocumentCommon

	Data []ResourceIdRepr
}

// NewToManyRelDocument validates and returns a to-many relationship document.
func NewToManyRelDocument(common DocumentCommon, data []ResourceIdRepr) (ToManyRelDocumentRepr, error) {
	if data == nil && common.Links == nil && common.Errors == nil && common.Meta == nil {
		return ToManyRelDocumentRepr{}, ErrEmptyRelDocument
	}

	return ToManyRelDocumentRepr{DocumentCommon: common, Data: data}, nil
}

// Common returns the shared members.
func (d *ToManyRelDocumentRepr) Common() *DocumentCommon { return &d.DocumentCommon }

// WithSource returns a copy of d carrying source.
func (d ToManyRelDocumentRepr) WithSource(source Source) ToManyRelDocumentRepr {
	d.source = source
	return d
}

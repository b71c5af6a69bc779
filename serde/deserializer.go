package serde

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"jsonapi-serde/converter"
	"jsonapi-serde/internal/match"
	"jsonapi-serde/jsonpointer"
)

// AttributeInfo is what the deserializer needs to know about a declared
// attribute.
type AttributeInfo struct {
	Name               string
	Shape              *converter.Shape
	AllowNull          bool
	RequiredOnCreation bool
	ReadOnly           bool
}

// ResourceInfo is what the deserializer needs to know about a resource type.
type ResourceInfo struct {
	Name       string
	Attributes []AttributeInfo
}

// DescriptorQuerier looks up resource types by their wire name.
type DescriptorQuerier interface {
	QueryDescriptorByTypeName(name string) (ResourceInfo, bool)
}

// DescriptorQuerierFunc adapts a function to DescriptorQuerier.
type DescriptorQuerierFunc func(name string) (ResourceInfo, bool)

func (f DescriptorQuerierFunc) QueryDescriptorByTypeName(name string) (ResourceInfo, bool) {
	return f(name)
}

// DeserializationError carries every validation problem found in Payload.
type DeserializationError struct {
	Payload any
	Items   []*converter.ValidationError
}

func (e *DeserializationError) Error() string {
	msgs := make([]string, len(e.Items))
	for i, item := range e.Items {
		msgs[i] = item.Error()
	}

	return fmt.Sprintf("invalid document: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes the individual validation errors to errors.As.
func (e *DeserializationError) Unwrap() []error {
	errs := make([]error, len(e.Items))
	for i, item := range e.Items {
		errs[i] = item
	}

	return errs
}

// deserializationContext collects every error and carries the per call
// completeness requirement down to the resource converter.
type deserializationContext struct {
	*converter.CollectingContext

	requireCompleteAttributes bool
}

// Deserializer turns jsonic documents into Reprs. When a querier is given,
// attributes are validated against the declared resource types.
type Deserializer struct {
	querier   DescriptorQuerier
	logger    logrus.FieldLogger
	converter *converter.Converter
}

// DeserializerOption configures a Deserializer.
type DeserializerOption func(*Deserializer)

// WithDeserializerLogger sets the logger failures are reported to.
func WithDeserializerLogger(logger logrus.FieldLogger) DeserializerOption {
	return func(d *Deserializer) {
		d.logger = logger
	}
}

// NewDeserializer returns a Deserializer. querier may be nil.
func NewDeserializer(querier DescriptorQuerier, opts ...DeserializerOption) *Deserializer {
	d := &Deserializer{
		querier: querier,
		logger:  logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.converter = converter.New(
		converter.WithCustomConverter(converter.CustomConverter{
			Name:     resourceShapeName,
			TypeName: func(*converter.Shape) string { return "resource" },
			Convert:  d.convertResource,
		}),
		converter.WithCustomConverter(converter.CustomConverter{
			Name:     urlShapeName,
			TypeName: func(*converter.Shape) string { return "URL" },
			Convert:  convertURL,
		}),
		converter.WithNameMapper(linksShapeName, converter.NameMapperFuncs{
			ResolveFunc: func(_ jsonpointer.Pointer, _ *converter.Shape, name string) (string, bool) {
				if name == "self" {
					return "self_", true
				}

				return name, true
			},
			ReverseResolveFunc: func(_ jsonpointer.Pointer, _ *converter.Shape, name string) (string, bool) {
				if name == "self_" {
					return "self", true
				}

				return name, true
			},
		}),
		converter.WithVisitor(stampSource),
	)

	return d
}

// DecodeJSON decodes data keeping numbers as json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding JSON document: %w", err)
	}

	if dec.More() {
		return nil, fmt.Errorf("decoding JSON document: trailing data after top-level value")
	}

	return v, nil
}

// DeserializeSingleton deserializes a document whose primary data is a
// single resource. document is raw JSON ([]byte) or an already decoded value.
func (d *Deserializer) DeserializeSingleton(document any, requireCompleteAttributes bool) (SingletonDocumentRepr, error) {
	return deserialize[SingletonDocumentRepr](d, singletonDocumentShape, document, requireCompleteAttributes)
}

// DeserializeCollection deserializes a document whose primary data is a list
// of resources.
func (d *Deserializer) DeserializeCollection(document any, requireCompleteAttributes bool) (CollectionDocumentRepr, error) {
	return deserialize[CollectionDocumentRepr](d, collectionDocumentShape, document, requireCompleteAttributes)
}

// DeserializeToOneRel deserializes a to-one relationship document.
func (d *Deserializer) DeserializeToOneRel(document any) (ToOneRelDocumentRepr, error) {
	return deserialize[ToOneRelDocumentRepr](d, toOneRelDocumentShape, document, false)
}

// DeserializeToManyRel deserializes a to-many relationship document.
func (d *Deserializer) DeserializeToManyRel(document any) (ToManyRelDocumentRepr, error) {
	return deserialize[ToManyRelDocumentRepr](d, toManyRelDocumentShape, document, false)
}

func deserialize[T any](d *Deserializer, shape *converter.Shape, document any, requireCompleteAttributes bool) (T, error) {
	var zero T

	switch raw := document.(type) {
	case []byte:
		v, err := DecodeJSON(raw)
		if err != nil {
			return zero, err
		}

		document = v
	case json.RawMessage:
		v, err := DecodeJSON(raw)
		if err != nil {
			return zero, err
		}

		document = v
	}

	ctx := &deserializationContext{
		CollectingContext:         converter.NewCollectingContext(),
		requireCompleteAttributes: requireCompleteAttributes,
	}

	v, err := d.converter.Convert(ctx, shape, document)
	if err != nil {
		return zero, err
	}

	if items := ctx.Errors(); len(items) > 0 {
		d.logger.WithFields(logrus.Fields{
			"shape":  shape.Name,
			"errors": len(items),
		}).Debug("document failed validation")

		return zero, &DeserializationError{Payload: document, Items: items}
	}

	doc, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("serde: %s converted to %T", shape.Name, v)
	}

	return doc, nil
}

func (d *Deserializer) requiresCompleteAttributes(ctx converter.Context) bool {
	dc, ok := converter.AsContext[*deserializationContext](ctx)
	return ok && dc.requireCompleteAttributes
}

func (d *Deserializer) convertResource(
	c *converter.Converter, ctx converter.Context, ptr jsonpointer.Pointer, shape *converter.Shape, value any,
) (any, float64, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return c.Mismatch(ctx, ptr, shape, value)
	}

	rawType, ok := obj["type"]
	if !ok {
		return c.Reject(ctx, ptr, nil, "value must have a property %q", "type")
	}

	typ, conf, err := c.ConvertAt(ctx, ptr.Key("type"), converter.String(), rawType)
	if err != nil || conf == converter.Failed {
		return nil, converter.Failed, err
	}

	r := ResourceRepr{Type: typ.(string)}
	failed := false

	attrs, err := d.convertAttributes(c, ctx, ptr, r.Type, obj)
	if err != nil {
		return nil, converter.Failed, err
	}

	if attrs == nil {
		failed = true
	}

	r.Attributes = attrs

	if raw, present := obj["relationships"]; present && !ctx.Stopped() {
		rels, err := d.convertRelationships(c, ctx, ptr.Key("relationships"), raw)
		if err != nil {
			return nil, converter.Failed, err
		}

		failed = failed || rels == nil
		r.Relationships = rels
	}

	if raw := obj["id"]; raw != nil && !ctx.Stopped() {
		id, conf, err := c.ConvertAt(ctx, ptr.Key("id"), converter.String(), raw)
		if err != nil {
			return nil, converter.Failed, err
		}

		failed = failed || conf == converter.Failed
		r.ID, _ = id.(string)
	}

	if raw, present := obj["links"]; present && !ctx.Stopped() {
		links, conf, err := c.ConvertAt(ctx, ptr.Key("links"), linksShape, raw)
		if err != nil {
			return nil, converter.Failed, err
		}

		failed = failed || conf == converter.Failed
		r.Links, _ = links.(*LinksRepr)
	}

	if raw, present := obj["meta"]; present && !ctx.Stopped() {
		meta, conf, err := c.ConvertAt(ctx, ptr.Key("meta"), metaShape, raw)
		if err != nil {
			return nil, converter.Failed, err
		}

		failed = failed || conf == converter.Failed
		r.Meta, _ = meta.(map[string]any)
	}

	if failed {
		return nil, converter.Failed, nil
	}

	return r, converter.ConfidenceAny, nil
}

// convertAttributes returns nil attributes when any of them failed.
func (d *Deserializer) convertAttributes(
	c *converter.Converter, ctx converter.Context, ptr jsonpointer.Pointer, typeName string, obj map[string]any,
) ([]Attribute, error) {
	attrsPtr := ptr.Key("attributes")
	attrs := []Attribute{}

	var given map[string]any

	if raw, present := obj["attributes"]; present {
		m, ok := raw.(map[string]any)
		if !ok {
			_, _, err := c.Reject(ctx, attrsPtr, nil, "value has type %s (%s) where object expected",
				converter.JSONTypeOf(raw), converter.JSONRepr(raw))

			return nil, err
		}

		given = m
	}

	failed := false

	convert := func(name string, shape *converter.Shape, raw any) error {
		v, conf, err := c.ConvertAt(ctx, attrsPtr.Key(name), shape, raw)
		if err != nil {
			return err
		}

		if conf == converter.Failed {
			failed = true
		}

		attrs = append(attrs, Attribute{Name: name, Value: v})

		return nil
	}

	if d.querier == nil {
		names := make([]string, 0, len(given))
		for k := range given {
			names = append(names, k)
		}

		slices.Sort(names)

		for _, name := range names {
			if err := convert(name, AttributeValueShape, given[name]); err != nil {
				return nil, err
			}

			if ctx.Stopped() {
				break
			}
		}
	} else {
		info, ok := d.querier.QueryDescriptorByTypeName(typeName)
		if !ok {
			_, _, err := c.Reject(ctx, ptr, nil, "unknown resource type %q", typeName)
			return nil, err
		}

		remaining := mapset.NewThreadUnsafeSet[string]()
		for k := range given {
			remaining.Add(k)
		}

		declared := make([]string, 0, len(info.Attributes))

		for _, ai := range info.Attributes {
			declared = append(declared, ai.Name)

			raw, present := given[ai.Name]
			if !present {
				if !d.requiresCompleteAttributes(ctx) || !ai.RequiredOnCreation || ai.ReadOnly {
					continue
				}

				failed = true

				if _, _, err := c.Reject(ctx, ptr, nil,
					"attribute %q is not provided where a complete set of attributes is wanted", ai.Name); err != nil {
					return nil, err
				}

				if ctx.Stopped() {
					break
				}

				continue
			}

			remaining.Remove(ai.Name)

			shape := ai.Shape
			if ai.AllowNull {
				shape = converter.OptionalOf(shape)
			}

			if err := convert(ai.Name, shape, raw); err != nil {
				return nil, err
			}

			if ctx.Stopped() {
				break
			}
		}

		unknown := remaining.ToSlice()
		slices.Sort(unknown)

		for _, name := range unknown {
			failed = true

			if _, _, err := c.Reject(ctx, attrsPtr.Key(name), nil,
				"unknown attribute %q%s", name, match.DidYouMean(name, declared)); err != nil {
				return nil, err
			}
		}
	}

	if failed {
		return nil, nil
	}

	return attrs, nil
}

// convertRelationships returns nil relationships when any of them failed.
func (d *Deserializer) convertRelationships(
	c *converter.Converter, ctx converter.Context, ptr jsonpointer.Pointer, raw any,
) ([]Relationship, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		_, _, err := c.Reject(ctx, ptr, nil, "value has type %s (%s) where object expected",
			converter.JSONTypeOf(raw), converter.JSONRepr(raw))

		return nil, err
	}

	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}

	slices.Sort(names)

	rels := []Relationship{}
	failed := false

	for _, name := range names {
		v, conf, err := c.ConvertAt(ctx, ptr.Key(name), linkageShape, m[name])
		if err != nil {
			return nil, err
		}

		if conf == converter.Failed {
			failed = true
		} else {
			rels = append(rels, Relationship{Name: name, Linkage: v.(LinkageRepr)})
		}

		if ctx.Stopped() {
			break
		}
	}

	if failed {
		return nil, nil
	}

	return rels, nil
}

func convertURL(
	c *converter.Converter, ctx converter.Context, ptr jsonpointer.Pointer, _ *converter.Shape, value any,
) (any, float64, error) {
	s, ok := value.(string)
	if !ok {
		return c.Reject(ctx, ptr, nil, "value must have be string, got %s", converter.JSONRepr(value))
	}

	u, err := url.Parse(s)
	if err != nil {
		return c.Reject(ctx, ptr, err, "failed to parse %q as a URL", s)
	}

	return u, converter.ConfidenceAny, nil
}

func stampSource(_ *converter.Converter, _ converter.Context, ptr jsonpointer.Pointer, _ *converter.Shape, value any) any {
	src := PointerSource(ptr)

	switch v := value.(type) {
	case *LinksRepr:
		stamped := v.WithSource(src)
		return &stamped
	case *SourceRepr:
		stamped := v.WithSource(src)
		return &stamped
	case ResourceIdRepr:
		return v.WithSource(src)
	case LinkageRepr:
		return v.WithSource(src)
	case ResourceRepr:
		return v.WithSource(src)
	case ErrorRepr:
		return v.WithSource(src)
	case SingletonDocumentRepr:
		return v.WithSource(src)
	case CollectionDocumentRepr:
		return v.WithSource(src)
	case ToOneRelDocumentRepr:
		return v.WithSource(src)
	case ToManyRelDocumentRepr:
		return v.WithSource(src)
	default:
		return value
	}
}

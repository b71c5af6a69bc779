package serde

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"jsonapi-serde/converter"
	"jsonapi-serde/jsonpointer"
	"jsonapi-serde/options"
)

var (
	// ErrNaiveDateTime is returned when a local date time is rendered without
	// a timezone to assume.
	ErrNaiveDateTime = errors.New("naive datetime")

	// ErrUnsupportedType is returned for attribute values without a JSON form.
	ErrUnsupportedType = errors.New("unsupported type")
)

// OrderedObject is a JSON object that marshals its keys in insertion order.
type OrderedObject = orderedmap.OrderedMap[string, any]

func newObject() *OrderedObject {
	return orderedmap.New[string, any]()
}

// Renderer turns documents into ordered JSON objects.
type Renderer struct {
	Options options.Render
}

// NewRenderer returns a Renderer using opts.
func NewRenderer(opts options.Render) *Renderer {
	return &Renderer{Options: opts}
}

// Render renders doc. Fatal conditions are reported with the pointer of the
// offending value.
func (r *Renderer) Render(doc Document) (*OrderedObject, error) {
	root := jsonpointer.Root()
	out := newObject()

	common := doc.Common()
	if err := r.renderCommon(out, root, common); err != nil {
		return nil, err
	}

	switch d := doc.(type) {
	case *SingletonDocumentRepr:
		if d.Data != nil {
			v, err := r.renderResource(root.Key("data"), *d.Data)
			if err != nil {
				return nil, err
			}

			out.Set("data", v)
		}
	case *CollectionDocumentRepr:
		data := make([]any, 0, len(d.Data))

		for i, res := range d.Data {
			v, err := r.renderResource(root.Key("data").Index(i), res)
			if err != nil {
				return nil, err
			}

			data = append(data, v)
		}

		out.Set("data", data)
	case *ToOneRelDocumentRepr:
		if d.Data == nil {
			out.Set("data", nil)
			break
		}

		v, err := r.renderResourceID(root.Key("data"), *d.Data)
		if err != nil {
			return nil, err
		}

		out.Set("data", v)
	case *ToManyRelDocumentRepr:
		v, err := r.renderResourceIDs(root.Key("data"), d.Data)
		if err != nil {
			return nil, err
		}

		out.Set("data", v)
	default:
		return nil, fmt.Errorf("%s: %w: %T", root, ErrUnsupportedType, doc)
	}

	return out, nil
}

// RenderJSON renders doc and marshals the result.
func (r *Renderer) RenderJSON(doc Document) ([]byte, error) {
	obj, err := r.Render(doc)
	if err != nil {
		return nil, err
	}

	return json.Marshal(obj)
}

func (r *Renderer) renderCommon(out *OrderedObject, ptr jsonpointer.Pointer, c *DocumentCommon) error {
	if len(c.JSONAPI) > 0 {
		v, err := r.renderValue(ptr.Key("jsonapi"), c.JSONAPI)
		if err != nil {
			return err
		}

		out.Set("jsonapi", v)
	}

	if !c.Links.IsEmpty() {
		out.Set("links", r.renderLinks(c.Links))
	}

	if c.Errors != nil {
		errs := make([]any, 0, len(c.Errors))

		for i, e := range c.Errors {
			v, err := r.renderError(ptr.Key("errors").Index(i), e)
			if err != nil {
				return err
			}

			errs = append(errs, v)
		}

		out.Set("errors", errs)
	}

	if err := r.setMeta(out, ptr, c.Meta); err != nil {
		return err
	}

	if len(c.Included) > 0 {
		included := make([]any, 0, len(c.Included))

		for i, res := range c.Included {
			v, err := r.renderResource(ptr.Key("included").Index(i), res)
			if err != nil {
				return err
			}

			included = append(included, v)
		}

		out.Set("included", included)
	}

	return nil
}

func (r *Renderer) setMeta(out *OrderedObject, ptr jsonpointer.Pointer, meta Meta) error {
	if len(meta) == 0 {
		return nil
	}

	v, err := r.renderValue(ptr.Key("meta"), meta)
	if err != nil {
		return err
	}

	out.Set("meta", v)

	return nil
}

func (r *Renderer) renderLinks(l *LinksRepr) *OrderedObject {
	out := newObject()

	for _, link := range []struct {
		name string
		url  *url.URL
	}{
		{"self", l.Self},
		{"related", l.Related},
		{"next", l.Next},
		{"prev", l.Prev},
		{"first", l.First},
		{"last", l.Last},
	} {
		if link.url != nil {
			out.Set(link.name, link.url.String())
		}
	}

	return out
}

func (r *Renderer) renderResourceID(ptr jsonpointer.Pointer, id ResourceIdRepr) (*OrderedObject, error) {
	out := newObject()
	out.Set("type", id.Type)
	out.Set("id", id.ID)

	if err := r.setMeta(out, ptr, id.Meta); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Renderer) renderResourceIDs(ptr jsonpointer.Pointer, ids []ResourceIdRepr) ([]any, error) {
	out := make([]any, 0, len(ids))

	for i, id := range ids {
		v, err := r.renderResourceID(ptr.Index(i), id)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

func (r *Renderer) renderLinkage(ptr jsonpointer.Pointer, l LinkageRepr) (*OrderedObject, error) {
	out := newObject()

	if !l.Links.IsEmpty() {
		out.Set("links", r.renderLinks(l.Links))
	}

	switch l.Data.Kind() {
	case LinkageNull:
		out.Set("data", nil)
	case LinkageToOne:
		id, _ := l.Data.One()

		v, err := r.renderResourceID(ptr.Key("data"), id)
		if err != nil {
			return nil, err
		}

		out.Set("data", v)
	case LinkageToMany:
		ids, _ := l.Data.Many()

		v, err := r.renderResourceIDs(ptr.Key("data"), ids)
		if err != nil {
			return nil, err
		}

		out.Set("data", v)
	case LinkageUnspecified:
	}

	if err := r.setMeta(out, ptr, l.Meta); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Renderer) renderResource(ptr jsonpointer.Pointer, res ResourceRepr) (*OrderedObject, error) {
	out := newObject()
	out.Set("type", res.Type)

	if res.ID != "" {
		out.Set("id", res.ID)
	}

	if r.Options.RenderEmbeddedLinks && !res.Links.IsEmpty() {
		out.Set("links", r.renderLinks(res.Links))
	}

	if len(res.Attributes) > 0 {
		attrs := newObject()

		for _, a := range res.Attributes {
			v, err := r.renderValue(ptr.Key("attributes").Key(a.Name), a.Value)
			if err != nil {
				return nil, err
			}

			attrs.Set(a.Name, v)
		}

		out.Set("attributes", attrs)
	}

	if len(res.Relationships) > 0 {
		rels := newObject()

		for _, rel := range res.Relationships {
			v, err := r.renderLinkage(ptr.Key("relationships").Key(rel.Name), rel.Linkage)
			if err != nil {
				return nil, err
			}

			// relationship objects with no member are left out
			if v.Len() > 0 {
				rels.Set(rel.Name, v)
			}
		}

		if rels.Len() > 0 {
			out.Set("relationships", rels)
		}
	}

	if err := r.setMeta(out, ptr, res.Meta); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Renderer) renderError(ptr jsonpointer.Pointer, e ErrorRepr) (*OrderedObject, error) {
	out := newObject()

	if e.ID != "" {
		out.Set("id", e.ID)
	}

	if !e.Links.IsEmpty() {
		out.Set("links", r.renderLinks(e.Links))
	}

	for _, f := range []struct{ name, value string }{
		{"status", e.Status},
		{"code", e.Code},
		{"title", e.Title},
		{"detail", e.Detail},
	} {
		if f.value != "" {
			out.Set(f.name, f.value)
		}
	}

	if e.ErrorSource != nil {
		src := newObject()
		if e.ErrorSource.Pointer != "" {
			src.Set("pointer", e.ErrorSource.Pointer)
		}

		if e.ErrorSource.Parameter != "" {
			src.Set("parameter", e.ErrorSource.Parameter)
		}

		out.Set("source", src)
	}

	if err := r.setMeta(out, ptr, e.Meta); err != nil {
		return nil, err
	}

	return out, nil
}

// isoLayout mirrors ISO 8601 with a numeric offset, adding microseconds
// only when present.
const (
	isoLayout       = "2006-01-02T15:04:05-07:00"
	isoLayoutMicros = "2006-01-02T15:04:05.000000-07:00"
)

func formatISO(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format(isoLayoutMicros)
	}

	return t.Format(isoLayout)
}

func (r *Renderer) renderValue(ptr jsonpointer.Pointer, v any) (any, error) {
	switch v := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case time.Time:
		return formatISO(v), nil
	case converter.LocalDateTime:
		if r.Options.AssumeNaiveTimezone.Location == nil {
			return nil, fmt.Errorf("%s: %w", ptr, ErrNaiveDateTime)
		}

		return formatISO(v.In(r.Options.AssumeNaiveTimezone.Location)), nil
	case converter.Date:
		return v.String(), nil
	case decimal.Decimal:
		if r.Options.DecimalAsFloat {
			return v.InexactFloat64(), nil
		}

		return v.String(), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case []any:
		return r.renderItems(ptr, v)
	case converter.Tuple:
		return r.renderItems(ptr, v)
	case mapset.Set[any]:
		return r.renderItems(ptr, v.ToSlice())
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		out := newObject()

		for _, k := range keys {
			e, err := r.renderValue(ptr.Key(k), v[k])
			if err != nil {
				return nil, err
			}

			out.Set(k, e)
		}

		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}

		return r.renderItems(ptr, items)
	}

	return nil, fmt.Errorf("%s: %w: %T", ptr, ErrUnsupportedType, v)
}

func (r *Renderer) renderItems(ptr jsonpointer.Pointer, items []any) ([]any, error) {
	out := make([]any, 0, len(items))

	for i, item := range items {
		e, err := r.renderValue(ptr.Index(i), item)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

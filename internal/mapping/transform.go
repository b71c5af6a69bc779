package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"jsonapi-serde/converter"
	"jsonapi-serde/mapper"
	"jsonapi-serde/serde"
)

// TransformFunc converts values into exactly arity values.
type TransformFunc func(values []any, arity int) ([]any, error)

// Transform is a named pair of value transformations, one per direction.
// ToNative receives resource attribute values, ToSerde native attribute
// values.
type Transform struct {
	Name        string
	Description string

	ToNative TransformFunc
	ToSerde  TransformFunc
}

// Transform kinds usable in transform definitions.
const (
	TransformKindJoin     = "join"
	TransformKindSplit    = "split"
	TransformKindLower    = "lower"
	TransformKindUpper    = "upper"
	TransformKindTrim     = "trim"
	TransformKindIdentity = "identity"
)

// TransformKinds lists every transform kind.
var TransformKinds = []string{
	TransformKindJoin,
	TransformKindSplit,
	TransformKindLower,
	TransformKindUpper,
	TransformKindTrim,
	TransformKindIdentity,
}

// TransformRegistry holds the transforms field mappings may refer to.
type TransformRegistry struct {
	transforms map[string]*Transform
}

// NewTransformRegistry creates a registry holding one transform per kind,
// named after the kind, with the default separator.
func NewTransformRegistry() *TransformRegistry {
	r := &TransformRegistry{transforms: make(map[string]*Transform)}

	for _, kind := range TransformKinds {
		t, _ := NewTransform(TransformDef{Name: kind, Kind: kind})
		r.Add(t)
	}

	return r
}

// BuildRegistry extends reg with the transforms declared in mf. A nil reg
// starts from NewTransformRegistry.
func BuildRegistry(mf *MappingFile, reg *TransformRegistry) (*TransformRegistry, []error) {
	if reg == nil {
		reg = NewTransformRegistry()
	}

	var errs []error

	for _, def := range mf.Transforms {
		t, err := NewTransform(def)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		reg.Add(t)
	}

	return reg, errs
}

// NewTransform builds a transform from its definition.
func NewTransform(def TransformDef) (*Transform, error) {
	sep := DefaultSeparator
	if def.Separator != nil {
		sep = *def.Separator
	}

	t := &Transform{Name: def.Name, Description: def.Description}

	switch def.Kind {
	case TransformKindJoin:
		t.ToNative, t.ToSerde = joinFunc(sep), splitFunc(sep)
	case TransformKindSplit:
		t.ToNative, t.ToSerde = splitFunc(sep), joinFunc(sep)
	case TransformKindLower:
		t.ToNative, t.ToSerde = stringFunc(strings.ToLower), identityFunc
	case TransformKindUpper:
		t.ToNative, t.ToSerde = stringFunc(strings.ToUpper), identityFunc
	case TransformKindTrim:
		t.ToNative, t.ToSerde = stringFunc(strings.TrimSpace), identityFunc
	case TransformKindIdentity:
		t.ToNative, t.ToSerde = identityFunc, identityFunc
	default:
		return nil, fmt.Errorf("transform %q: unknown kind %q", def.Name, def.Kind)
	}

	return t, nil
}

// Add adds a transform to the registry, replacing any of the same name.
func (r *TransformRegistry) Add(t *Transform) {
	r.transforms[t.Name] = t
}

// Get returns a transform by name, or nil if not found.
func (r *TransformRegistry) Get(name string) *Transform {
	return r.transforms[name]
}

// Has returns true if a transform with the given name exists.
func (r *TransformRegistry) Has(name string) bool {
	_, exists := r.transforms[name]
	return exists
}

// Names returns all transform names, sorted.
func (r *TransformRegistry) Names() []string {
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func identityFunc(values []any, arity int) ([]any, error) {
	if len(values) != arity {
		return nil, errors.Errorf("expected %d values, got %d", arity, len(values))
	}

	return values, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("expected a string, got %s", converter.JSONTypeOf(v))
	}

	return s, nil
}

func stringFunc(fn func(string) string) TransformFunc {
	return func(values []any, arity int) ([]any, error) {
		if len(values) != arity {
			return nil, errors.Errorf("expected %d values, got %d", arity, len(values))
		}

		out := make([]any, len(values))

		for i, v := range values {
			if v == nil {
				continue
			}

			s, err := asString(v)
			if err != nil {
				return nil, err
			}

			out[i] = fn(s)
		}

		return out, nil
	}
}

func joinFunc(sep string) TransformFunc {
	return func(values []any, arity int) ([]any, error) {
		if arity != 1 {
			return nil, errors.Errorf("join yields a single value, %d requested", arity)
		}

		parts := make([]string, 0, len(values))

		for _, v := range values {
			if v == nil {
				continue
			}

			s, err := asString(v)
			if err != nil {
				return nil, err
			}

			parts = append(parts, s)
		}

		return []any{strings.Join(parts, sep)}, nil
	}
}

func splitFunc(sep string) TransformFunc {
	return func(values []any, arity int) ([]any, error) {
		if len(values) != 1 {
			return nil, errors.Errorf("split takes a single value, got %d", len(values))
		}

		if values[0] == nil {
			return make([]any, arity), nil
		}

		s, err := asString(values[0])
		if err != nil {
			return nil, err
		}

		parts := strings.SplitN(s, sep, arity)
		if len(parts) != arity {
			return nil, errors.Errorf("expected %d parts separated by %q, got %d", arity, sep, len(parts))
		}

		out := make([]any, arity)
		for i, p := range parts {
			out[i] = p
		}

		return out, nil
	}
}

func convertResource(ctx mapper.ToSerdeContext, rattr *mapper.ResourceAttributeDescriptor, value any) (any, error) {
	if rattr.Type == nil || (value == nil && rattr.AllowNull) {
		return value, nil
	}

	return ctx.Converter().ConvertValue(rattr.Type, value)
}

func convertNative(ctx mapper.ToNativeContext, nattr mapper.NativeAttributeDescriptor, value any) (any, error) {
	shape := nattr.Type()
	if shape == nil || (value == nil && nattr.AllowNull()) {
		return value, nil
	}

	return ctx.Converter().ConvertValue(shape, value)
}

// ToOneFuncs returns the conversion functions of a 1:1 mapping applying t.
func (t *Transform) ToOneFuncs(rattr *mapper.ResourceAttributeDescriptor, nattr mapper.NativeAttributeDescriptor) (mapper.ToOneSerdeFunc, mapper.ToOneNativeFunc) {
	rattrs := []*mapper.ResourceAttributeDescriptor{rattr}
	nattrs := []mapper.NativeAttributeDescriptor{nattr}

	toSerde := func(ctx mapper.ToSerdeContext, value any) (any, error) {
		out, err := t.ToSerde([]any{value}, 1)
		if err == nil {
			out[0], err = convertResource(ctx, rattr, out[0])
		}

		if err != nil {
			return nil, mapper.NewConversionError(mapper.DirectionToSerdeOnly, rattrs, nattrs, err)
		}

		return out[0], nil
	}

	toNative := func(ctx mapper.ToNativeContext, source serde.Source, value any) (any, error) {
		out, err := t.ToNative([]any{value}, 1)
		if err == nil {
			out[0], err = convertNative(ctx, nattr, out[0])
		}

		if err != nil {
			return nil, mapper.NewConversionError(mapper.DirectionToNativeOnly, rattrs, nattrs, err, source)
		}

		return out[0], nil
	}

	return toSerde, toNative
}

// ToManyFuncs returns the conversion functions of a 1:N mapping applying t.
func (t *Transform) ToManyFuncs(rattr *mapper.ResourceAttributeDescriptor, nattrs []mapper.NativeAttributeDescriptor) (mapper.ToManySerdeFunc, mapper.ToManyNativeFunc) {
	rattrs := []*mapper.ResourceAttributeDescriptor{rattr}

	toSerde := func(ctx mapper.ToSerdeContext, values []any) (any, error) {
		out, err := t.ToSerde(values, 1)
		if err == nil {
			out[0], err = convertResource(ctx, rattr, out[0])
		}

		if err != nil {
			return nil, mapper.NewConversionError(mapper.DirectionToSerdeOnly, rattrs, nattrs, err)
		}

		return out[0], nil
	}

	toNative := func(ctx mapper.ToNativeContext, source serde.Source, value any) ([]any, error) {
		out, err := t.ToNative([]any{value}, len(nattrs))

		for i := 0; err == nil && i < len(out); i++ {
			out[i], err = convertNative(ctx, nattrs[i], out[i])
		}

		if err != nil {
			return nil, mapper.NewConversionError(mapper.DirectionToNativeOnly, rattrs, nattrs, err, source)
		}

		return out, nil
	}

	return toSerde, toNative
}

// ManyToOneFuncs returns the conversion functions of an N:1 mapping
// applying t.
func (t *Transform) ManyToOneFuncs(rattrs []*mapper.ResourceAttributeDescriptor, nattr mapper.NativeAttributeDescriptor) (mapper.ManyToOneSerdeFunc, mapper.ManyToOneNativeFunc) {
	nattrs := []mapper.NativeAttributeDescriptor{nattr}

	toSerde := func(ctx mapper.ToSerdeContext, value any) ([]any, error) {
		out, err := t.ToSerde([]any{value}, len(rattrs))

		for i := 0; err == nil && i < len(out); i++ {
			out[i], err = convertResource(ctx, rattrs[i], out[i])
		}

		if err != nil {
			return nil, mapper.NewConversionError(mapper.DirectionToSerdeOnly, rattrs, nattrs, err)
		}

		return out, nil
	}

	toNative := func(ctx mapper.ToNativeContext, sources []serde.Source, values []any) (any, error) {
		out, err := t.ToNative(values, 1)
		if err == nil {
			out[0], err = convertNative(ctx, nattr, out[0])
		}

		if err != nil {
			return nil, mapper.NewConversionError(mapper.DirectionToNativeOnly, rattrs, nattrs, err, sources...)
		}

		return out[0], nil
	}

	return toSerde, toNative
}

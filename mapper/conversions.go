package mapper

import (
	"github.com/pkg/errors"

	"jsonapi-serde/converter"
	"jsonapi-serde/serde"
)

func wrapFetch(err error, descr NativeAttributeDescriptor) error {
	return errors.Wrapf(err, "fetching native attribute %s", descr.Name())
}

// nativeShape returns the shape native values of descr convert to, nil
// when they pass through unchanged.
func nativeShape(descr NativeAttributeDescriptor) *converter.Shape {
	t := descr.Type()
	if t == nil {
		return nil
	}

	if descr.AllowNull() && !t.IsOptional() {
		return converter.OptionalOf(t)
	}

	return t
}

// ConvertingToOne returns the default conversion functions of a 1:1 mapping.
// Document values are converted against the resource attribute shape, native
// values against the native attribute shape; failures become
// ConversionError.
func ConvertingToOne(rattr *ResourceAttributeDescriptor, nattr NativeAttributeDescriptor) (ToOneSerdeFunc, ToOneNativeFunc) {
	rattrs := []*ResourceAttributeDescriptor{rattr}
	nattrs := []NativeAttributeDescriptor{nattr}

	toSerde := func(ctx ToSerdeContext, value any) (any, error) {
		if value == nil && rattr.AllowNull {
			return nil, nil
		}

		v, err := ctx.Converter().ConvertValue(rattr.shape(), value)
		if err != nil {
			return nil, NewConversionError(DirectionToSerdeOnly, rattrs, nattrs, err)
		}

		return v, nil
	}

	toNative := func(ctx ToNativeContext, source serde.Source, value any) (any, error) {
		shape := nativeShape(nattr)
		if shape == nil {
			return value, nil
		}

		if value == nil && nattr.AllowNull() {
			return nil, nil
		}

		v, err := ctx.Converter().ConvertValue(shape, value)
		if err != nil {
			return nil, NewConversionError(DirectionToNativeOnly, rattrs, nattrs, err, source)
		}

		return v, nil
	}

	return toSerde, toNative
}

// ConvertingToMany returns the default conversion functions of a 1:N
// mapping. The composite document value is a sequence with one item per
// native attribute, or an object keyed by native attribute names.
func ConvertingToMany(rattr *ResourceAttributeDescriptor, nattrs []NativeAttributeDescriptor) (ToManySerdeFunc, ToManyNativeFunc) {
	rattrs := []*ResourceAttributeDescriptor{rattr}

	toSerde := func(ctx ToSerdeContext, values []any) (any, error) {
		v, err := ctx.Converter().ConvertValue(rattr.shape(), converter.Tuple(values))
		if err != nil {
			return nil, NewConversionError(DirectionToSerdeOnly, rattrs, nattrs, err)
		}

		return v, nil
	}

	toNative := func(ctx ToNativeContext, source serde.Source, value any) ([]any, error) {
		items, err := splitComposite(value, len(nattrs), func(i int) string { return nattrs[i].Name() })
		if err != nil {
			return nil, NewConversionError(DirectionToNativeOnly, rattrs, nattrs, err, source)
		}

		out := make([]any, len(items))

		for i, item := range items {
			shape := nativeShape(nattrs[i])
			if shape == nil {
				out[i] = item
				continue
			}

			if out[i], err = ctx.Converter().ConvertValue(shape, item); err != nil {
				return nil, NewConversionError(DirectionToNativeOnly, rattrs, nattrs, err, source)
			}
		}

		return out, nil
	}

	return toSerde, toNative
}

// ConvertingManyToOne returns the default conversion functions of an N:1
// mapping. A composite native value is split the same way ConvertingToMany
// splits document values; in the other direction a record shaped native
// attribute receives an object keyed by resource attribute names and any
// other shape a tuple.
func ConvertingManyToOne(rattrs []*ResourceAttributeDescriptor, nattr NativeAttributeDescriptor) (ManyToOneSerdeFunc, ManyToOneNativeFunc) {
	nattrs := []NativeAttributeDescriptor{nattr}

	toSerde := func(ctx ToSerdeContext, value any) ([]any, error) {
		items, err := splitComposite(value, len(rattrs), func(i int) string { return rattrs[i].Name })
		if err != nil {
			return nil, NewConversionError(DirectionToSerdeOnly, rattrs, nattrs, err)
		}

		out := make([]any, len(items))

		for i, item := range items {
			if item == nil && rattrs[i].AllowNull {
				continue
			}

			if out[i], err = ctx.Converter().ConvertValue(rattrs[i].shape(), item); err != nil {
				return nil, NewConversionError(DirectionToSerdeOnly, rattrs, nattrs, err)
			}
		}

		return out, nil
	}

	toNative := func(ctx ToNativeContext, sources []serde.Source, values []any) (any, error) {
		var composite any = converter.Tuple(values)

		shape := nativeShape(nattr)
		if shape == nil {
			return composite, nil
		}

		if shape.Kind == converter.KindRecord {
			fields := make(map[string]any, len(rattrs))
			for i, r := range rattrs {
				fields[r.Name] = values[i]
			}

			composite = fields
		}

		v, err := ctx.Converter().ConvertValue(shape, composite)
		if err != nil {
			return nil, NewConversionError(DirectionToNativeOnly, rattrs, nattrs, err, sources...)
		}

		return v, nil
	}

	return toSerde, toNative
}

// splitComposite splits value into n items: a sequence is taken as is, an
// object is looked up by the names given by name.
func splitComposite(value any, n int, name func(int) string) ([]any, error) {
	if obj, ok := value.(map[string]any); ok {
		items := make([]any, n)
		for i := range items {
			items[i] = obj[name(i)]
		}

		return items, nil
	}

	items, ok := converter.SequenceItems(value)
	if !ok {
		return nil, errors.Errorf("expected a sequence of %d items, got %s", n, converter.JSONTypeOf(value))
	}

	if len(items) != n {
		return nil, errors.Errorf("expected %d items, got %d", n, len(items))
	}

	return items, nil
}

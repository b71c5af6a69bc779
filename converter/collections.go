package converter

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"jsonapi-serde/internal/common"
	"jsonapi-serde/jsonpointer"
)

// convertElements converts every element against elem and returns the
// results with their individual confidences.
func (c *Converter) convertElements(ctx Context, ptr jsonpointer.Pointer, elem *Shape, items []any) ([]any, []float64, error) {
	out := make([]any, 0, len(items))
	confs := make([]float64, 0, len(items))

	for i, item := range items {
		v, conf, err := c.ConvertAt(ctx, ptr.Index(i), elem, item)
		if err != nil {
			return nil, nil, err
		}

		out = append(out, v)
		confs = append(confs, conf)

		if math.IsInf(conf, 1) && ctx.Stopped() {
			break
		}
	}

	return out, confs, nil
}

func (c *Converter) convertSequence(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	items, ok := asSequence(value)
	if !ok {
		return c.mismatchDescribed(ctx, ptr, "an array of "+c.TypeRepr(shape.Elem), value)
	}

	out, confs, err := c.convertElements(ctx, ptr, shape.Elem, items)
	if err != nil {
		return nil, inf, err
	}

	return out, common.GeometricMean(confs, ConfidenceEmptyContainer), nil
}

func (c *Converter) convertVarTuple(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	items, ok := asSequence(value)
	if !ok {
		return c.mismatchDescribed(ctx, ptr, "an array of "+c.TypeRepr(shape.Elem), value)
	}

	out, confs, err := c.convertElements(ctx, ptr, shape.Elem, items)
	if err != nil {
		return nil, inf, err
	}

	conf := common.GeometricMean(confs, ConfidenceEmptyContainer)
	if _, isTuple := value.(Tuple); isTuple {
		conf *= varTuplePenalty
	}

	return Tuple(out), conf, nil
}

func (c *Converter) convertTuple(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	items, ok := asSequence(value)
	if !ok || len(items) != len(shape.Items) {
		names := common.Map(shape.Items, c.TypeRepr)
		return c.mismatchDescribed(ctx, ptr, "an array ["+strings.Join(names, ", ")+"]", value)
	}

	out := make(Tuple, 0, len(items))
	confs := make([]float64, 0, len(items))

	for i, item := range items {
		// positions are converted without the visitor
		v, conf, err := c.convertInner(ctx, ptr.Index(i), shape.Items[i], item)
		if err != nil {
			return nil, inf, err
		}

		out = append(out, v)
		confs = append(confs, conf)
	}

	return out, common.GeometricMean(confs, ConfidenceEmptyContainer), nil
}

func (c *Converter) convertSet(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	items, ok := asSequence(value)
	if !ok {
		return c.mismatchDescribed(ctx, ptr, "an array of "+c.TypeRepr(shape.Elem), value)
	}

	out := mapset.NewSet[any]()
	occurred := map[any]int{}
	confs := make([]float64, 0, len(items))

	for i, item := range items {
		p := ptr.Index(i)

		v, conf, err := c.ConvertAt(ctx, p, shape.Elem, item)
		if err != nil {
			return nil, inf, err
		}

		if !hashable(v) {
			if _, _, err := c.Reject(ctx, p, nil, "item %s is not hashable", JSONRepr(item)); err != nil {
				return nil, inf, err
			}

			if ctx.Stopped() {
				break
			}

			confs = append(confs, inf)

			continue
		}

		if at, dup := occurred[v]; dup {
			if _, _, err := c.Reject(ctx, p, nil, "identical item %v already occurred at index %d", item, at); err != nil {
				return nil, inf, err
			}

			if ctx.Stopped() {
				break
			}

			// duplicates count towards the mean without lowering it
			confs = append(confs, 1)

			continue
		}

		occurred[v] = i
		out.Add(v)
		confs = append(confs, conf)
	}

	return out, common.GeometricMean(confs, ConfidenceEmptyContainer), nil
}

func hashable(v any) bool {
	if v == nil {
		return true
	}

	return reflect.ValueOf(v).Comparable()
}

func (c *Converter) convertMapping(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	entries, ok := asMapping(value)
	if !ok {
		return c.mismatchDescribed(ctx, ptr,
			fmt.Sprintf("a mapping of {%s: %s}", c.TypeRepr(shape.Key), c.TypeRepr(shape.Elem)), value)
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	nm := c.lookupNameMapper(shape)
	out := make(map[string]any, len(entries))
	confs := make([]float64, 0, len(entries))

	for _, k := range keys {
		kv, kconf, err := c.ConvertAt(ctx, ptr, shape.Key, k)
		if err != nil {
			return nil, inf, err
		}

		key, ok := kv.(string)
		if !ok {
			if _, _, err := c.Reject(ctx, ptr, nil, "key has type %s, which deduces %s into %s",
				c.TypeRepr(shape.Key), k, JSONTypeOf(kv)); err != nil {
				return nil, inf, err
			}

			if ctx.Stopped() {
				break
			}

			confs = append(confs, inf)

			continue
		}

		v, vconf, err := c.ConvertAt(ctx, ptr.Key(key), shape.Elem, entries[k])
		if err != nil {
			return nil, inf, err
		}

		if nm != nil {
			mapped, keep := nm.Resolve(ptr, shape, key)
			if !keep {
				confs = append(confs, 1)
				continue
			}

			key = mapped
		}

		out[key] = v
		confs = append(confs, math.Sqrt(kconf*vconf))
	}

	return out, common.GeometricMean(confs, ConfidenceEmptyContainer), nil
}

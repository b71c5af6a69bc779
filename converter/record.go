package converter

import (
	"jsonapi-serde/internal/common"
	"jsonapi-serde/jsonpointer"
)

func (c *Converter) convertRecord(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	entries, ok := asMapping(value)
	if !ok {
		return c.Mismatch(ctx, ptr, shape, value)
	}

	// rejects reported below this record, nested ones included
	counted := &countingContext{Context: ctx}
	ctx = counted

	nm := c.lookupNameMapper(shape)
	fields := make(map[string]any, len(shape.Fields))
	confs := make([]float64, 0, len(shape.Fields))

	for _, f := range shape.Fields {
		key := f.Name

		if nm != nil {
			mapped, keep := nm.ReverseResolve(ptr, shape, f.Name)
			if !keep {
				continue
			}

			key = mapped
		}

		raw, present := entries[key]
		if !present {
			if f.Optional || f.Shape.IsOptional() {
				continue
			}

			if _, _, err := c.Reject(ctx, ptr, nil, "property %s does not exist in %s", key, JSONRepr(entries)); err != nil {
				return nil, inf, err
			}

			if ctx.Stopped() {
				break
			}

			confs = append(confs, inf)

			continue
		}

		v, conf, err := c.ConvertAt(ctx, ptr.Key(key), f.Shape, raw)
		if err != nil {
			return nil, inf, err
		}

		fields[f.Name] = v
		confs = append(confs, conf)
	}

	if counted.count > 0 {
		return nil, inf, nil
	}

	conf := common.GeometricMean(confs, ConfidenceEmptyRecord)
	if shape.Construct == nil {
		return fields, conf, nil
	}

	v, err := shape.Construct(fields)
	if err != nil {
		return c.Reject(ctx, ptr, err, "%s", err.Error())
	}

	return v, conf, nil
}

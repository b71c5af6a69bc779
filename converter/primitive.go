package converter

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"jsonapi-serde/jsonpointer"
)

func (c *Converter) convertPrimitive(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	switch shape.Primitive {
	case PrimitiveString:
		if s, ok := value.(string); ok {
			return s, ConfidenceExact, nil
		}
	case PrimitiveBool:
		if b, ok := value.(bool); ok {
			return b, ConfidenceExact, nil
		}
	case PrimitiveNull:
		if value == nil {
			return nil, ConfidenceExact, nil
		}
	case PrimitiveInt:
		return c.convertInt(ctx, ptr, shape, value)
	case PrimitiveFloat:
		return c.convertFloat(ctx, ptr, shape, value)
	case PrimitiveBytes:
		return c.convertBytes(ctx, ptr, shape, value)
	case PrimitiveDecimal:
		return c.convertDecimal(ctx, ptr, shape, value)
	case PrimitiveDateTime, PrimitiveLocalDateTime, PrimitiveDate:
		return c.convertTemporal(ctx, ptr, shape, value)
	}

	return c.Mismatch(ctx, ptr, shape, value)
}

func (c *Converter) convertInt(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	n, ok := asNumber(value)
	if !ok {
		return c.Mismatch(ctx, ptr, shape, value)
	}

	if n.isInt {
		return n.i, ConfidenceExact, nil
	}

	if n.f != math.Trunc(n.f) || math.IsInf(n.f, 0) || n.f < math.MinInt64 || n.f >= math.MaxInt64 {
		return c.Reject(ctx, ptr, nil, "number %s cannot be represented as an integer", formatNumber(n))
	}

	return int64(n.f), ConfidenceNumeric, nil
}

func (c *Converter) convertFloat(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	n, ok := asNumber(value)
	if !ok {
		return c.Mismatch(ctx, ptr, shape, value)
	}

	if n.isInt {
		return n.f, ConfidenceNumeric, nil
	}

	return n.f, ConfidenceExact, nil
}

func (c *Converter) convertBytes(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	switch v := value.(type) {
	case []byte:
		return v, ConfidenceExact, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return c.Reject(ctx, ptr, err, "bad base64 string (%s)", JSONRepr(v))
		}

		return b, ConfidenceDecoded, nil
	}

	return c.Mismatch(ctx, ptr, shape, value)
}

func (c *Converter) convertDecimal(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, ConfidenceExact, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return c.Reject(ctx, ptr, err, "bad decimal string (%s)", JSONRepr(v))
		}

		return d, ConfidenceDecoded, nil
	}

	n, ok := asNumber(value)
	if !ok {
		return c.Mismatch(ctx, ptr, shape, value)
	}

	switch {
	case n.text != "":
		d, err := decimal.NewFromString(n.text)
		if err != nil {
			return c.Reject(ctx, ptr, err, "bad decimal string (%s)", n.text)
		}

		return d, ConfidenceNumeric, nil
	case n.isInt:
		return decimal.NewFromInt(n.i), ConfidenceNumeric, nil
	case math.IsNaN(n.f) || math.IsInf(n.f, 0):
		return c.Reject(ctx, ptr, nil, "bad decimal string (%s)", formatNumber(n))
	default:
		return decimal.NewFromFloat(n.f), ConfidenceNumeric, nil
	}
}

func (c *Converter) convertTemporal(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	switch v := value.(type) {
	case time.Time:
		if shape.Primitive == PrimitiveDateTime {
			return v, ConfidenceExact, nil
		}
	case LocalDateTime:
		if shape.Primitive == PrimitiveLocalDateTime {
			return v, ConfidenceExact, nil
		}
	case Date:
		if shape.Primitive == PrimitiveDate {
			return v, ConfidenceExact, nil
		}
	case string:
		t, zoned, err := parseISO8601(v)
		if err != nil {
			return c.Reject(ctx, ptr, err, "bad date time string (%s)", JSONRepr(v))
		}

		switch shape.Primitive {
		case PrimitiveDate:
			return DateOf(t), ConfidenceTemporal, nil
		case PrimitiveLocalDateTime:
			if zoned {
				return c.Reject(ctx, ptr, nil, "bad date time string (%s): a local date time must not carry a zone", JSONRepr(v))
			}

			return LocalDateTimeOf(t), ConfidenceTemporal, nil
		default:
			return t, ConfidenceTemporal, nil
		}
	}

	if shape.Primitive == PrimitiveDateTime {
		if n, ok := asNumber(value); ok {
			sec, frac := math.Modf(n.f)
			if n.isInt {
				sec, frac = float64(n.i), 0
			}

			return time.Unix(int64(sec), int64(frac*1e9)).UTC(), ConfidenceTemporal, nil
		}
	}

	return c.Mismatch(ctx, ptr, shape, value)
}

func formatNumber(n number) string {
	switch {
	case n.text != "":
		return n.text
	case n.isInt:
		return strconv.FormatInt(n.i, 10)
	default:
		return fmt.Sprint(n.f)
	}
}

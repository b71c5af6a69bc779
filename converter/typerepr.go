package converter

import (
	"encoding/json"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"

	"jsonapi-serde/internal/common"
)

var primitiveTypeNames = map[Primitive]string{
	PrimitiveString:        "string",
	PrimitiveInt:           "number",
	PrimitiveFloat:         "number",
	PrimitiveBool:          "boolean",
	PrimitiveBytes:         "string",
	PrimitiveDecimal:       "number or string",
	PrimitiveDateTime:      "number or string",
	PrimitiveLocalDateTime: "string",
	PrimitiveDate:          "string",
	PrimitiveNull:          "null",
}

// TypeRepr renders shape in terms of the JSON values it accepts,
// e.g. "any of number, or string" or "array of string".
func (c *Converter) TypeRepr(shape *Shape) string {
	if cc := c.lookupCustom(shape); cc != nil {
		if cc.TypeName != nil {
			return cc.TypeName(shape)
		}

		return shape.Name
	}

	switch shape.Kind {
	case KindAny:
		return "any value"
	case KindPrimitive:
		return primitiveTypeNames[shape.Primitive]
	case KindOptional:
		return "any of " + common.EnglishEnumerate([]string{c.TypeRepr(shape.Elem), "null"}, ", or ")
	case KindUnion:
		return "any of " + common.EnglishEnumerate(common.Map(shape.Items, c.TypeRepr), ", or ")
	case KindSequence, KindSet, KindVarTuple:
		return "array of " + c.TypeRepr(shape.Elem)
	case KindTuple:
		return "array of " + common.EnglishEnumerate(common.Map(shape.Items, c.TypeRepr), common.DefaultConjunction)
	case KindMapping:
		return fmt.Sprintf("object of {%s: %s}", c.TypeRepr(shape.Key), c.TypeRepr(shape.Elem))
	case KindRecord:
		return "object"
	case KindCustom:
		return shape.Name
	default:
		return "unknown type: " + shape.Kind.String()
	}
}

// TypeRepr renders shape with a converter that has no custom converters.
func TypeRepr(shape *Shape) string {
	return plain.TypeRepr(shape)
}

var plain = New()

// JSONTypeOf names the JSON type a value is expressed as.
func JSONTypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string, []byte, Date, LocalDateTime:
		return "string"
	case bool:
		return "boolean"
	case decimal.Decimal, time.Time:
		return "number or string"
	case mapset.Set[any]:
		return "array"
	}

	if _, ok := asNumber(v); ok {
		return "number"
	}

	if _, ok := asSequence(v); ok {
		return "array"
	}

	if _, ok := asMapping(v); ok {
		return "object"
	}

	return fmt.Sprintf("unknown type: %T", v)
}

// JSONRepr renders v as JSON for messages, falling back to %v.
func JSONRepr(v any) string {
	switch v := v.(type) {
	case Date, LocalDateTime:
		b, _ := json.Marshal(fmt.Sprint(v))
		return string(b)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(b)
}

package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"jsonapi-serde/jsonpointer"
)

func decode(t *testing.T, s string) any {
	t.Helper()

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	require.NoError(t, dec.Decode(&v))

	return v
}

func convertWithConfidence(t *testing.T, c *Converter, shape *Shape, value any) (any, float64) {
	t.Helper()

	v, conf, err := c.ConvertAt(FailFastContext{}, jsonpointer.Root(), shape, value)
	require.NoError(t, err)

	return v, conf
}

func TestUnion_PrefersParseableDateTimeOverFailingInt(t *testing.T) {
	c := New()

	v, err := c.ConvertValue(UnionOf(Int(), DateTime()), "2021-01-01T00:00:00Z")
	require.NoError(t, err)

	require.IsType(t, time.Time{}, v)
	assert.True(t, v.(time.Time).Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestUnion_ExactMatchWins(t *testing.T) {
	c := New()

	v, err := c.ConvertValue(UnionOf(Int(), String()), json.Number("3"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = c.ConvertValue(UnionOf(Int(), String()), int64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = c.ConvertValue(UnionOf(Int(), String()), "3")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	// an integral number is exact for int but coerced for float
	v, err = c.ConvertValue(UnionOf(Float(), Int()), json.Number("3"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestUnion_NoAlternativeSucceeds(t *testing.T) {
	c := New()
	ctx := NewCollectingContext()

	_, err := c.Convert(ctx, UnionOf(Int(), Bool()), "x")
	require.NoError(t, err)
	require.Len(t, ctx.Errors(), 1)
	assert.Equal(t, `value has type string ("x") where any of number, or boolean expected`, ctx.Errors()[0].Message)
	assert.Equal(t, "/", ctx.Errors()[0].Pointer.String())
}

func TestOptional_NullShortCircuits(t *testing.T) {
	c := New()

	for _, shape := range []*Shape{OptionalOf(Int()), UnionOf(Int(), Null()), UnionOf(Null(), Int())} {
		ctx := NewCollectingContext()

		v, conf, err := c.ConvertAt(ctx, jsonpointer.Root(), shape, nil)
		require.NoError(t, err)
		assert.Nil(t, v)
		assert.InDelta(t, ConfidenceNull, conf, 1e-9)
		assert.Empty(t, ctx.Errors())
	}

	v, err := c.ConvertValue(OptionalOf(Int()), json.Number("7"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestPrimitives(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		shape    *Shape
		input    any
		expected any
		conf     float64
	}{
		{"string", String(), "x", "x", ConfidenceExact},
		{"bool", Bool(), true, true, ConfidenceExact},
		{"null", Null(), nil, nil, ConfidenceExact},
		{"int", Int(), json.Number("42"), int64(42), ConfidenceExact},
		{"go int", Int(), 42, int64(42), ConfidenceExact},
		{"integral float to int", Int(), 3.0, int64(3), ConfidenceNumeric},
		{"float", Float(), json.Number("3.5"), 3.5, ConfidenceExact},
		{"int to float", Float(), json.Number("3"), 3.0, ConfidenceNumeric},
		{"bytes", Bytes(), []byte("hi"), []byte("hi"), ConfidenceExact},
		{"base64 bytes", Bytes(), "aGVsbG8=", []byte("hello"), ConfidenceDecoded},
		{"date", DateOnly(), "2021-03-04", Date{Year: 2021, Month: time.March, Day: 4}, ConfidenceTemporal},
		{"date from date time", DateOnly(), "2021-03-04T10:00:00Z", Date{Year: 2021, Month: time.March, Day: 4}, ConfidenceTemporal},
		{"local date time", NaiveDateTime(), "2021-03-04T10:11:12", NewLocalDateTime(2021, time.March, 4, 10, 11, 12, 0), ConfidenceTemporal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, conf := convertWithConfidence(t, c, tt.shape, tt.input)
			assert.Equal(t, tt.expected, v)
			assert.InDelta(t, tt.conf, conf, 1e-9)
		})
	}
}

func TestDecimal(t *testing.T) {
	c := New()

	v, conf := convertWithConfidence(t, c, Decimal(), "1.10")
	assert.True(t, v.(decimal.Decimal).Equal(decimal.RequireFromString("1.1")))
	assert.InDelta(t, ConfidenceDecoded, conf, 1e-9)

	v, conf = convertWithConfidence(t, c, Decimal(), json.Number("2.5"))
	assert.True(t, v.(decimal.Decimal).Equal(decimal.RequireFromString("2.5")))
	assert.InDelta(t, ConfidenceNumeric, conf, 1e-9)

	d := decimal.NewFromInt(7)
	v, conf = convertWithConfidence(t, c, Decimal(), d)
	assert.Equal(t, d, v)
	assert.InDelta(t, ConfidenceExact, conf, 1e-9)
}

func TestDateTime(t *testing.T) {
	c := New()

	v, conf := convertWithConfidence(t, c, DateTime(), json.Number("0"))
	assert.True(t, v.(time.Time).Equal(time.Unix(0, 0)))
	assert.Equal(t, time.UTC, v.(time.Time).Location())
	assert.InDelta(t, ConfidenceTemporal, conf, 1e-9)

	v, _ = convertWithConfidence(t, c, DateTime(), "2021-01-01T09:00:00+09:00")
	assert.True(t, v.(time.Time).Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))

	// no zone designator means UTC
	v, _ = convertWithConfidence(t, c, DateTime(), "2021-01-01T00:00:00.5")
	assert.True(t, v.(time.Time).Equal(time.Date(2021, 1, 1, 0, 0, 0, 5e8, time.UTC)))
}

func TestPrimitiveErrors(t *testing.T) {
	c := New()

	tests := []struct {
		name    string
		shape   *Shape
		input   any
		message string
	}{
		{"string for int", Int(), "x", `value has type string ("x") where number expected`},
		{"number for string", String(), json.Number("1"), `value has type number (1) where string expected`},
		{"bool for int", Int(), true, `value has type boolean (true) where number expected`},
		{"fractional int", Int(), json.Number("3.5"), `number 3.5 cannot be represented as an integer`},
		{"bad base64", Bytes(), "!!!", `bad base64 string ("!!!")`},
		{"bad decimal", Decimal(), "one", `bad decimal string ("one")`},
		{"bad date time", DateTime(), "yesterday", `bad date time string ("yesterday")`},
		{"zoned local date time", NaiveDateTime(), "2021-01-01T00:00:00Z",
			`bad date time string ("2021-01-01T00:00:00Z"): a local date time must not carry a zone`},
		{"array for string", String(), []any{}, `value has type array ([]) where string expected`},
		{"null for int", Int(), nil, `value has type null (null) where number expected`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ConvertValue(tt.shape, tt.input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Message)
			assert.Equal(t, tt.message+" at /", verr.Error())
		})
	}
}

func TestSequence(t *testing.T) {
	c := New()

	v, conf := convertWithConfidence(t, c, SequenceOf(Int()), decode(t, `[1, 2]`))
	assert.Equal(t, []any{int64(1), int64(2)}, v)
	assert.InDelta(t, ConfidenceExact, conf, 1e-9)

	v, conf = convertWithConfidence(t, c, SequenceOf(Int()), decode(t, `[]`))
	assert.Equal(t, []any{}, v)
	assert.InDelta(t, ConfidenceEmptyContainer, conf, 1e-9)

	// geometric mean of 0.5 and 2.0
	_, conf = convertWithConfidence(t, c, SequenceOf(Float()), decode(t, `[1.5, 2]`))
	assert.InDelta(t, 1.0, conf, 1e-9)

	_, err := c.ConvertValue(SequenceOf(Int()), "x")
	assert.EqualError(t, err, `value has type string ("x") where an array of number expected at /`)
}

func repeated(n int, v any) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = v
	}

	return items
}

func TestSequence_LongCollections(t *testing.T) {
	c := New()

	v, conf := convertWithConfidence(t, c, SequenceOf(Float()), repeated(1100, json.Number("1")))
	assert.Len(t, v, 1100)
	assert.InDelta(t, ConfidenceNumeric, conf, 1e-9)

	// union ranks are well above 1 for every element
	v, conf = convertWithConfidence(t, c, SequenceOf(UnionOf(Int(), String())), repeated(1000, "tag"))
	assert.Len(t, v, 1000)
	assert.InDelta(t, 2.0, conf, 1e-9)

	v, err := c.ConvertValue(UnionOf(String(), SequenceOf(UnionOf(Int(), String()))), repeated(2000, "tag"))
	require.NoError(t, err)
	assert.Len(t, v, 2000)
}

func TestCollectingContext_ReportsEveryElement(t *testing.T) {
	c := New()
	ctx := NewCollectingContext()

	_, err := c.Convert(ctx, SequenceOf(Int()), decode(t, `["x", 1, "y"]`))
	require.NoError(t, err)

	require.Len(t, ctx.Errors(), 2)
	assert.Equal(t, "/0", ctx.Errors()[0].Pointer.String())
	assert.Equal(t, "/2", ctx.Errors()[1].Pointer.String())
	assert.Len(t, multierr.Errors(ctx.Err()), 2)
}

func TestSet(t *testing.T) {
	c := New()
	ctx := NewCollectingContext()

	v, err := c.Convert(ctx, SetOf(String()), decode(t, `["a", "b", "a"]`))
	require.NoError(t, err)

	assert.True(t, v.(mapset.Set[any]).Equal(mapset.NewSet[any]("a", "b")))
	require.Len(t, ctx.Errors(), 1)
	assert.Equal(t, "identical item a already occurred at index 0", ctx.Errors()[0].Message)
	assert.Equal(t, "/2", ctx.Errors()[0].Pointer.String())
}

func TestSet_RejectsUnhashableItems(t *testing.T) {
	c := New()
	ctx := NewCollectingContext()

	_, err := c.Convert(ctx, SetOf(Any()), decode(t, `[[1], 2]`))
	require.NoError(t, err)
	require.Len(t, ctx.Errors(), 1)
	assert.Equal(t, "/0", ctx.Errors()[0].Pointer.String())
}

func TestTuple(t *testing.T) {
	c := New()

	v, err := c.ConvertValue(TupleOf(Int(), String()), decode(t, `[1, "a"]`))
	require.NoError(t, err)
	assert.Equal(t, Tuple{int64(1), "a"}, v)

	_, err = c.ConvertValue(TupleOf(Int(), String()), decode(t, `[1]`))
	assert.EqualError(t, err, `value has type array ([1]) where an array [number, string] expected at /`)
}

func TestVarTuple(t *testing.T) {
	c := New()

	v, conf := convertWithConfidence(t, c, VarTupleOf(Int()), decode(t, `[1, 2, 3]`))
	assert.Equal(t, Tuple{int64(1), int64(2), int64(3)}, v)
	assert.InDelta(t, ConfidenceExact, conf, 1e-9)

	// already a tuple: halved
	_, conf = convertWithConfidence(t, c, VarTupleOf(Int()), Tuple{int64(1)})
	assert.InDelta(t, ConfidenceExact*varTuplePenalty, conf, 1e-9)
}

func TestMapping(t *testing.T) {
	c := New()

	v, conf := convertWithConfidence(t, c, MappingOf(String(), Int()), decode(t, `{"a": 1, "b": 2}`))
	assert.Equal(t, map[string]any{"a": int64(1), "b": int64(2)}, v)
	assert.InDelta(t, ConfidenceExact, conf, 1e-9)

	_, err := c.ConvertValue(MappingOf(String(), Int()), decode(t, `{"a": "x"}`))
	assert.EqualError(t, err, `value has type string ("x") where number expected at /a`)
}

func TestMapping_NameMapperDropsKeys(t *testing.T) {
	c := New(WithNameMapper(AnyShapeName, NameMapperFuncs{
		ResolveFunc: func(_ jsonpointer.Pointer, _ *Shape, name string) (string, bool) {
			if strings.HasPrefix(name, "_") {
				return "", false
			}

			return strings.ToUpper(name), true
		},
	}))

	v, err := c.ConvertValue(MappingOf(String(), Int()), decode(t, `{"a": 1, "_b": 2}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"A": int64(1)}, v)
}

type point struct {
	X, Y  int64
	Label string
}

var pointShape = RecordOf("point", []Field{
	{Name: "x", Shape: Int()},
	{Name: "y", Shape: Int()},
	{Name: "label", Shape: String(), Optional: true},
}, func(fields map[string]any) (any, error) {
	p := point{X: fields["x"].(int64), Y: fields["y"].(int64)}
	if label, ok := fields["label"]; ok {
		p.Label = label.(string)
	}

	if p.X < 0 {
		return nil, errors.New("x must not be negative")
	}

	return p, nil
})

func TestRecord(t *testing.T) {
	c := New()

	v, conf := convertWithConfidence(t, c, pointShape, decode(t, `{"x": 1, "y": 2}`))
	assert.Equal(t, point{X: 1, Y: 2}, v)
	assert.InDelta(t, ConfidenceExact, conf, 1e-9)

	v, _ = convertWithConfidence(t, c, pointShape, decode(t, `{"x": 1, "y": 2, "label": "p"}`))
	assert.Equal(t, point{X: 1, Y: 2, Label: "p"}, v)
}

func TestRecord_EmptyRecordConfidence(t *testing.T) {
	c := New()

	_, conf := convertWithConfidence(t, c, RecordOf("empty", nil, nil), map[string]any{})
	assert.InDelta(t, ConfidenceEmptyRecord, conf, 1e-9)
}

func TestRecord_MissingProperty(t *testing.T) {
	c := New()
	ctx := NewCollectingContext()

	v, err := c.Convert(ctx, pointShape, decode(t, `{"x": 1}`))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.Len(t, ctx.Errors(), 1)
	assert.Equal(t, `property y does not exist in {"x":1}`, ctx.Errors()[0].Message)
	assert.Equal(t, "/", ctx.Errors()[0].Pointer.String())
}

func TestRecord_LongSequenceField(t *testing.T) {
	c := New()
	shape := RecordOf("r", []Field{{Name: "xs", Shape: SequenceOf(Float())}}, nil)

	v, err := c.ConvertValue(shape, map[string]any{"xs": repeated(1100, json.Number("1"))})
	require.NoError(t, err)
	require.IsType(t, map[string]any{}, v)
	assert.Len(t, v.(map[string]any)["xs"], 1100)
}

func TestRecord_BuiltWhenNoFieldWasRejected(t *testing.T) {
	unsure := CustomConverter{
		Name: "unsure",
		Convert: func(_ *Converter, _ Context, _ jsonpointer.Pointer, _ *Shape, value any) (any, float64, error) {
			return value, Failed, nil
		},
	}

	c := New(WithCustomConverter(unsure))
	shape := RecordOf("r", []Field{{Name: "x", Shape: CustomOf("unsure", nil)}}, nil)

	v, err := c.ConvertValue(shape, map[string]any{"x": "a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": "a"}, v)
}

func TestAsContext_FindsWrappedContext(t *testing.T) {
	inner := NewCollectingContext()
	wrapped := &countingContext{Context: &countingContext{Context: inner}}

	found, ok := AsContext[*CollectingContext](wrapped)
	require.True(t, ok)
	assert.Same(t, inner, found)

	require.NoError(t, wrapped.ValidationErrorOccurred(&ValidationError{Message: "m"}))
	assert.Equal(t, 1, wrapped.count)
	assert.Len(t, inner.Errors(), 1)

	_, ok = AsContext[*CollectingContext](FailFastContext{})
	assert.False(t, ok)
}

func TestRecord_ConstructorError(t *testing.T) {
	c := New()

	_, err := c.ConvertValue(pointShape, decode(t, `{"x": -1, "y": 2}`))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "x must not be negative", verr.Message)
	assert.EqualError(t, verr.Unwrap(), "x must not be negative")
}

func TestRecord_NameMapperRenamesWireKeys(t *testing.T) {
	c := New(WithNameMapper("point", NameMapperFuncs{
		ReverseResolveFunc: func(_ jsonpointer.Pointer, _ *Shape, name string) (string, bool) {
			return "_" + name, true
		},
	}))

	v, err := c.ConvertValue(pointShape, decode(t, `{"_x": 1, "_y": 2}`))
	require.NoError(t, err)
	assert.Equal(t, point{X: 1, Y: 2}, v)
}

func TestCustomConverters(t *testing.T) {
	upper := CustomConverter{
		Name: "upper",
		Convert: func(c *Converter, ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
			s, ok := value.(string)
			if !ok {
				return c.Mismatch(ctx, ptr, shape, value)
			}

			return strings.ToUpper(s), ConfidenceExact, nil
		},
		TypeName: func(*Shape) string { return "uppercase string" },
	}
	shadowed := CustomConverter{
		Name: "upper",
		Convert: func(*Converter, Context, jsonpointer.Pointer, *Shape, any) (any, float64, error) {
			return "shadowed", ConfidenceExact, nil
		},
	}
	stringer := CustomConverter{
		GoType: reflect.TypeFor[fmt.Stringer](),
		Convert: func(_ *Converter, _ Context, _ jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
			return fmt.Sprintf("%s:%v", shape.Name, value), ConfidenceExact, nil
		},
	}

	c := New(WithCustomConverter(upper), WithCustomConverter(shadowed), WithCustomConverter(stringer))
	upperShape := CustomOf("upper", nil)

	v, err := c.ConvertValue(upperShape, "abc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	_, err = c.ConvertValue(upperShape, json.Number("1"))
	assert.EqualError(t, err, "value has type number (1) where uppercase string expected at /")

	// matched through assignability of the Go type
	v, err = c.ConvertValue(CustomOf("day", reflect.TypeFor[Date]()), "x")
	require.NoError(t, err)
	assert.Equal(t, "day:x", v)

	// custom converters are consulted before structural dispatch
	v, err = c.ConvertValue(&Shape{Kind: KindPrimitive, Primitive: PrimitiveString, Name: "upper"}, "q")
	require.NoError(t, err)
	assert.Equal(t, "Q", v)

	_, err = c.ConvertValue(CustomOf("unknown", nil), "x")
	assert.ErrorIs(t, err, ErrNoCustomConverter)
}

func TestVisitor(t *testing.T) {
	var visited []string

	c := New(WithVisitor(func(_ *Converter, _ Context, ptr jsonpointer.Pointer, _ *Shape, value any) any {
		visited = append(visited, ptr.String())

		if s, ok := value.(string); ok {
			return "<" + s + ">"
		}

		return value
	}))

	v, err := c.ConvertValue(SequenceOf(String()), decode(t, `["a", "b"]`))
	require.NoError(t, err)
	assert.Equal(t, []any{"<a>", "<b>"}, v)
	assert.Equal(t, []string{"/0", "/1", "/"}, visited)
}

func TestTypeRepr(t *testing.T) {
	tests := []struct {
		shape    *Shape
		expected string
	}{
		{Any(), "any value"},
		{Int(), "number"},
		{Decimal(), "number or string"},
		{DateTime(), "number or string"},
		{DateOnly(), "string"},
		{UnionOf(Int(), String()), "any of number, or string"},
		{UnionOf(Int(), String(), Bool()), "any of number, string, or boolean"},
		{OptionalOf(Int()), "any of number, or null"},
		{SequenceOf(String()), "array of string"},
		{SetOf(Int()), "array of number"},
		{MappingOf(String(), Int()), "object of {string: number}"},
		{pointShape, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeRepr(tt.shape))
		})
	}
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "[]?int", SequenceOf(OptionalOf(Int())).String())
	assert.Equal(t, "map[string]tuple[int, string]", MappingOf(String(), TupleOf(Int(), String())).String())
	assert.Equal(t, "int | string", UnionOf(Int(), String()).String())
	assert.Equal(t, "tuple[int...]", VarTupleOf(Int()).String())
	assert.Equal(t, "set[decimal]", SetOf(Decimal()).String())
	assert.Equal(t, "point", pointShape.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "KindRecord", KindRecord.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
	assert.Equal(t, "PrimitiveLocalDateTime", PrimitiveLocalDateTime.String())
}

func ExampleConverter_Convert() {
	c := New()
	ctx := NewCollectingContext()

	shape := MappingOf(String(), UnionOf(Int(), DateTime()))
	value := map[string]any{
		"count": json.Number("3"),
		"at":    "2021-01-01T00:00:00Z",
		"bad":   true,
	}

	v, _ := c.Convert(ctx, shape, value)
	m := v.(map[string]any)

	fmt.Println(m["count"])
	fmt.Println(m["at"].(time.Time).Format(time.RFC3339))

	for _, err := range ctx.Errors() {
		fmt.Println(err)
	}
	// Output:
	// 3
	// 2021-01-01T00:00:00Z
	// value has type boolean (true) where any of number, or number or string expected at /bad
}

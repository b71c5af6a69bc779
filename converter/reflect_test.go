package converter

import (
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string  `json:"city"`
	Zip  *string `json:"zip"`
}

type person struct {
	Name    string   `json:"name"`
	Age     int      `json:"age,omitempty"`
	Tags    []string `json:"tags"`
	Home    address  `json:"home"`
	Friends []person `json:"friends"`
	Ignored string   `json:"-"`
	secret  int
}

func TestShapeOf_Scalars(t *testing.T) {
	type Level int

	tests := []struct {
		ty       reflect.Type
		expected string
	}{
		{reflect.TypeFor[string](), "string"},
		{reflect.TypeFor[Level](), "int"},
		{reflect.TypeFor[uint16](), "int"},
		{reflect.TypeFor[float32](), "float"},
		{reflect.TypeFor[[]byte](), "bytes"},
		{reflect.TypeFor[decimal.Decimal](), "decimal"},
		{reflect.TypeFor[time.Time](), "datetime"},
		{reflect.TypeFor[LocalDateTime](), "localdatetime"},
		{reflect.TypeFor[Date](), "date"},
		{reflect.TypeFor[*int](), "?int"},
		{reflect.TypeFor[[]*string](), "[]?string"},
		{reflect.TypeFor[[3]int](), "tuple[int, int, int]"},
		{reflect.TypeFor[map[string]bool](), "map[string]bool"},
		{reflect.TypeFor[Tuple](), "tuple[any...]"},
		{reflect.TypeFor[any](), "any"},
	}

	for _, tt := range tests {
		t.Run(tt.ty.String(), func(t *testing.T) {
			s, err := ShapeOf(tt.ty)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.String())
		})
	}
}

func TestShapeOf_Unsupported(t *testing.T) {
	_, err := ShapeOf(reflect.TypeFor[chan int]())

	var nse NotSupportedError
	require.ErrorAs(t, err, &nse)
	assert.Equal(t, reflect.TypeFor[chan int](), nse.Type)

	_, err = ShapeOf(reflect.TypeFor[map[int]string]())
	require.Error(t, err)
}

func TestShapeOf_RecursiveStruct(t *testing.T) {
	s := MustShapeFor[person]()

	require.Equal(t, KindRecord, s.Kind, spew.Sdump(s.Fields))
	assert.Equal(t, "person", s.Name)

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{"name", "age", "tags", "home", "friends"}, names)
	assert.True(t, s.Fields[1].Optional)
	assert.False(t, s.Fields[0].Optional)
	assert.Same(t, s, s.Fields[4].Shape.Elem)

	// cached
	assert.Same(t, s, MustShapeFor[person]())
}

func TestShapeOf_ConvertsIntoStruct(t *testing.T) {
	c := New()

	v, err := c.ConvertValue(MustShapeFor[person](), decode(t, `{
		"name": "ann",
		"tags": ["a"],
		"home": {"city": "x", "zip": "123"},
		"friends": [{"name": "bob", "tags": [], "home": {"city": "y"}, "friends": []}]
	}`))
	require.NoError(t, err)

	zip := "123"
	expected := person{
		Name: "ann",
		Tags: []string{"a"},
		Home: address{City: "x", Zip: &zip},
		Friends: []person{
			{Name: "bob", Tags: []string{}, Home: address{City: "y"}, Friends: []person{}},
		},
	}

	assert.Equal(t, expected, v, spew.Sdump(v))
}

func TestShapeOf_MissingRequiredField(t *testing.T) {
	c := New()
	ctx := NewCollectingContext()

	_, err := c.Convert(ctx, MustShapeFor[address](), map[string]any{})
	require.NoError(t, err)
	require.Len(t, ctx.Errors(), 1)
	assert.Equal(t, "property city does not exist in {}", ctx.Errors()[0].Message)
}

func TestAssign(t *testing.T) {
	var (
		i8   int8
		u    uint
		f    float32
		arr  [2]string
		m    map[string]int
		p    *int
		tags []string
	)

	require.NoError(t, Assign(reflect.ValueOf(&i8).Elem(), int64(12)))
	assert.Equal(t, int8(12), i8)

	require.Error(t, Assign(reflect.ValueOf(&i8).Elem(), int64(1000)))
	require.Error(t, Assign(reflect.ValueOf(&u).Elem(), int64(-1)))

	require.NoError(t, Assign(reflect.ValueOf(&f).Elem(), 1.5))
	assert.InDelta(t, 1.5, f, 1e-6)

	require.NoError(t, Assign(reflect.ValueOf(&arr).Elem(), Tuple{"a", "b"}))
	assert.Equal(t, [2]string{"a", "b"}, arr)

	require.NoError(t, Assign(reflect.ValueOf(&m).Elem(), map[string]any{"k": int64(1)}))
	assert.Equal(t, map[string]int{"k": 1}, m)

	require.NoError(t, Assign(reflect.ValueOf(&p).Elem(), int64(5)))
	require.NotNil(t, p)
	assert.Equal(t, 5, *p)

	require.NoError(t, Assign(reflect.ValueOf(&p).Elem(), nil))
	assert.Nil(t, p)

	require.NoError(t, Assign(reflect.ValueOf(&tags).Elem(), []any{"x"}))
	assert.Equal(t, []string{"x"}, tags)

	require.Error(t, Assign(reflect.ValueOf(&tags).Elem(), "x"))
}

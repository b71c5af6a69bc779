package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonapi-serde/converter"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"", "any"},
		{"any", "any"},
		{"string", "string"},
		{"localdatetime", "localdatetime"},
		{"int?", "?int"},
		{"?int", "?int"},
		{" []string ", "[]string"},
		{"[]int?", "?[]int"},
		{"set[int]", "set[int]"},
		{"tuple[float, float]", "tuple[float, float]"},
		{"tuple[int...]", "tuple[int...]"},
		{"map[string][]int", "map[string][]int"},
		{"int | string", "int | string"},
		{"record{a: int, b: ?string}", "record{a: int, b: ?string}"},
		{"record{}", "record{}"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			shape, err := ParseType(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, shape.String())

			again, err := ParseType(shape.String())
			require.NoError(t, err)
			assert.Equal(t, tt.want, again.String())
		})
	}
}

func TestParseType_RecordOptionalFields(t *testing.T) {
	shape := MustParseType("record{a: int, b: string?}")

	require.Equal(t, converter.KindRecord, shape.Kind)
	require.Len(t, shape.Fields, 2)
	assert.False(t, shape.Fields[0].Optional)
	assert.True(t, shape.Fields[1].Optional)
}

func TestParseType_Errors(t *testing.T) {
	tests := []struct {
		expr    string
		message string
	}{
		{"strin", "unknown type strin"},
		{"tuple[int", `expected ",", got end of input`},
		{"set[int", `expected "]", got end of input`},
		{"int]", `unexpected "]"`},
		{"tuple[int, string...]", "variable length tuples take a single element type"},
		{"record{a: int, a: int}", "duplicate field a"},
		{"map[string]", "expected a type, got end of input"},
		{"|", "expected a type"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := ParseType(tt.expr)

			var typeErr *TypeError
			require.ErrorAs(t, err, &typeErr)
			assert.Equal(t, tt.expr, typeErr.Expr)
			assert.Equal(t, tt.message, typeErr.Message)
		})
	}
}

func TestMustParseType_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseType("nope") })
}

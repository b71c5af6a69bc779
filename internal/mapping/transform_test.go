package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransform_Join(t *testing.T) {
	sep := ", "
	tr, err := NewTransform(TransformDef{Name: "full_name", Kind: TransformKindJoin, Separator: &sep})
	require.NoError(t, err)

	out, err := tr.ToNative([]any{"Lovelace", "Ada"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{"Lovelace, Ada"}, out)

	out, err = tr.ToSerde([]any{"Lovelace, Ada"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{"Lovelace", "Ada"}, out)

	_, err = tr.ToSerde([]any{"Lovelace"}, 2)
	assert.EqualError(t, err, `expected 2 parts separated by ", ", got 1`)

	_, err = tr.ToNative([]any{"a", 1}, 1)
	assert.ErrorContains(t, err, "expected a string")
}

func TestNewTransform_Split(t *testing.T) {
	tr, err := NewTransform(TransformDef{Name: "s", Kind: TransformKindSplit})
	require.NoError(t, err)

	out, err := tr.ToNative([]any{"Ada Byron King"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{"Ada", "Byron King"}, out)

	out, err = tr.ToNative([]any{nil}, 2)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil}, out)

	out, err = tr.ToSerde([]any{"Ada", nil, "King"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{"Ada King"}, out)

	_, err = tr.ToSerde([]any{"Ada"}, 2)
	assert.EqualError(t, err, "join yields a single value, 2 requested")
}

func TestNewTransform_StringKinds(t *testing.T) {
	tests := []struct {
		kind string
		in   any
		want any
	}{
		{TransformKindLower, "MiXed", "mixed"},
		{TransformKindUpper, "MiXed", "MIXED"},
		{TransformKindTrim, "  pad  ", "pad"},
		{TransformKindIdentity, 42, 42},
		{TransformKindLower, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			tr, err := NewTransform(TransformDef{Name: tt.kind, Kind: tt.kind})
			require.NoError(t, err)

			out, err := tr.ToNative([]any{tt.in}, 1)
			require.NoError(t, err)
			assert.Equal(t, []any{tt.want}, out)

			back, err := tr.ToSerde([]any{tt.in}, 1)
			require.NoError(t, err)
			assert.Equal(t, []any{tt.in}, back, "document side is left untouched")
		})
	}
}

func TestNewTransform_UnknownKind(t *testing.T) {
	_, err := NewTransform(TransformDef{Name: "x", Kind: "reverse"})
	assert.EqualError(t, err, `transform "x": unknown kind "reverse"`)
}

func TestTransformRegistry(t *testing.T) {
	reg := NewTransformRegistry()
	assert.Equal(t, []string{"identity", "join", "lower", "split", "trim", "upper"}, reg.Names())

	mf, err := Parse([]byte(`
transforms:
  - {name: slug, kind: lower}
  - {name: broken, kind: reverse}
`))
	require.NoError(t, err)

	reg, errs := BuildRegistry(mf, reg)
	require.Len(t, errs, 1)
	assert.True(t, reg.Has("slug"))
	assert.False(t, reg.Has("broken"))
	assert.Nil(t, reg.Get("broken"))

	reg.Add(&Transform{Name: "custom", ToNative: identityFunc, ToSerde: identityFunc})
	assert.Contains(t, reg.Names(), "custom")
}

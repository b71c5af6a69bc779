package mapping

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonapi-serde/mapper"
	"jsonapi-serde/native"
	"jsonapi-serde/serde"
)

func TestExamples(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob(filepath.Join("..", "..", "examples", "*", "mapping.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		dir := filepath.Dir(file)

		t.Run(filepath.Base(dir), func(t *testing.T) {
			t.Parallel()

			mf, err := LoadFile(file)
			require.NoError(t, err)

			diags := Validate(mf, nil)
			require.False(t, diags.HasErrors(), "%v", diags.Errors)
			assert.Empty(t, diags.Warnings)

			l := logrus.New()
			l.SetOutput(io.Discard)

			s, err := Build(mf, nil, nil, mapper.WithLogger(l))
			require.NoError(t, err)

			docs, err := filepath.Glob(filepath.Join(dir, "*.json"))
			require.NoError(t, err)

			for _, doc := range docs {
				t.Run(filepath.Base(doc), func(t *testing.T) {
					runExampleDocument(t, s, doc)
				})
			}
		})
	}
}

// runExampleDocument creates records from the primary data of the document
// at path and renders every record back.
func runExampleDocument(t *testing.T, s *Schema, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := serde.DecodeJSON(data)
	require.NoError(t, err)

	d := serde.NewDeserializer(s.Context.DescriptorQuerier())

	var resources []serde.ResourceRepr

	if _, ok := doc.(map[string]any)["data"].([]any); ok {
		repr, err := d.DeserializeCollection(doc, true)
		require.NoError(t, err)

		resources = repr.Data
	} else {
		repr, err := d.DeserializeSingleton(doc, true)
		require.NoError(t, err)
		require.NotNil(t, repr.Data)

		resources = []serde.ResourceRepr{*repr.Data}
	}

	store := native.NewStore()
	store.Lenient = true

	for _, res := range resources {
		obj, err := s.Context.CreateFromSerde(store, res)
		require.NoError(t, err)

		m, ok := s.Mapper(res.Type)
		require.True(t, ok)
		require.NoError(t, store.Put(m.Native(), obj))

		out, err := s.Context.BuildSerdeSingle(obj, mapper.BuildOptions{
			SelectRelationship: func(*mapper.RelationshipMapping) mapper.RelationshipPart { return mapper.PartData },
		})
		require.NoError(t, err)
		require.NotNil(t, out.Data)
		assert.Equal(t, res.Type, out.Data.Type)

		if res.ID != "" {
			assert.Equal(t, res.ID, out.Data.ID)
		}
	}
}

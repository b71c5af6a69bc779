package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleYAML = `
version: "1"
resources:
  - type: people
    native: Person
    id: {kind: int}
    attributes:
      - {name: first, type: string}
      - {name: last, type: string}
      - {name: email, type: string, nullable: true}
      - {name: position, type: "tuple[int, int]"}
      - {name: note}
    relationships:
      - {name: employer, to: companies, nullable: true}
    121:
      email: mail
    fields:
      - resource: [first, last]
        native: name
        transform: full_name
      - resource: position
        native: [x, y]
        native_type: int
    ignore: [note]
  - type: companies
    native: Company
    id: {client_generated: true}
    attributes:
      - {name: name, type: string, required_on_creation: true}
    relationships:
      - {name: staff, to: people, cardinality: many}
transforms:
  - {name: full_name, kind: join}
`

func TestParse_Defaults(t *testing.T) {
	mf, err := Parse([]byte(peopleYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", mf.Version)
	require.Len(t, mf.Resources, 2)

	people := mf.FindResource("people")
	require.NotNil(t, people)
	assert.Equal(t, "Person", people.NativeClass())
	assert.Equal(t, "int", people.ID.Kind)
	assert.Equal(t, CardinalityNameOne, people.Relationships[0].Cardinality)
	assert.Equal(t, DirectionNameBidi, people.Fields[0].Direction)
	assert.Equal(t, StringOrArray{"first", "last"}, people.Fields[0].Resource)
	assert.Equal(t, StringOrArray{"name"}, people.Fields[0].Native)
	assert.Equal(t, CardinalityManyToOne, people.Fields[0].GetCardinality())
	assert.Equal(t, CardinalityOneToMany, people.Fields[1].GetCardinality())

	companies := mf.FindResource("companies")
	require.NotNil(t, companies)
	assert.Equal(t, "string", companies.ID.Kind)
	assert.True(t, companies.ID.ClientGenerated)
	assert.True(t, companies.Relationships[0].ToMany())

	require.NotNil(t, mf.Transforms[0].Separator)
	assert.Equal(t, " ", *mf.Transforms[0].Separator)

	assert.Nil(t, mf.FindResource("nope"))
	assert.NotNil(t, people.FindAttribute("note"))
	assert.Nil(t, people.FindAttribute("nope"))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("resources: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse mapping YAML")

	_, err = Parse([]byte("resources:\n  - type: x\n    fields:\n      - resource: {a: b}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected string or array")
}

func TestExpandedFields(t *testing.T) {
	mf, err := Parse([]byte(peopleYAML))
	require.NoError(t, err)

	fields := mf.FindResource("people").ExpandedFields()
	require.Len(t, fields, 3)

	assert.Equal(t, FieldMapping{
		Resource:  StringOrArray{"email"},
		Native:    StringOrArray{"mail"},
		Direction: DirectionNameBidi,
	}, fields[0])
	assert.Equal(t, []string{"x", "y"}, fields[2].NativeNames())

	single := FieldMapping{Resource: StringOrArray{"a"}}
	assert.Equal(t, []string{"a"}, single.NativeNames())
	assert.Equal(t, CardinalityOneToOne, single.GetCardinality())
}

func TestStringOrArray(t *testing.T) {
	s := StringOrArray{"a"}
	assert.Equal(t, "a", s.First())
	assert.True(t, s.IsSingle())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.IsEmpty())

	var empty StringOrArray
	assert.Equal(t, "", empty.First())
	assert.True(t, empty.IsEmpty())

	out, err := s.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "a", out)

	out, err = StringOrArray{"a", "b"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	mf, err := Parse([]byte(peopleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, WriteFile(mf, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "resource: position")

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mf, again)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read mapping file")
}

func TestCardinality_String(t *testing.T) {
	assert.Equal(t, "1:1", CardinalityOneToOne.String())
	assert.Equal(t, "N:M", CardinalityManyToMany.String())
	assert.Equal(t, "unknown", Cardinality(9).String())
}

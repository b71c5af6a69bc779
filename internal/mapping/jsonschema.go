package mapping

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON Schema of mapping files, for editor
// completion and external validation.
func JSONSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		FieldNameTag:   "yaml",
		ExpandedStruct: true,
	}

	s := r.Reflect(new(MappingFile))
	s.Title = "jsonapi-serde mapping file"

	return s
}

// JSONSchemaBytes renders JSONSchema as indented JSON.
func JSONSchemaBytes() ([]byte, error) {
	return json.MarshalIndent(JSONSchema(), "", "  ")
}

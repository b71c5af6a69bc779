package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	err := yaml.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// Defaults applied by Parse.
const (
	DefaultVersion   = "1"
	DefaultIDKind    = "string"
	DefaultDirection = DirectionNameBidi
	DefaultSeparator = " "
)

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = DefaultVersion
	}

	for i := range mf.Resources {
		r := &mf.Resources[i]
		if r.ID.Kind == "" {
			r.ID.Kind = DefaultIDKind
		}

		for j := range r.Relationships {
			if r.Relationships[j].Cardinality == "" {
				r.Relationships[j].Cardinality = CardinalityNameOne
			}
		}

		for j := range r.Fields {
			if r.Fields[j].Direction == "" {
				r.Fields[j].Direction = DefaultDirection
			}
		}
	}

	for i := range mf.Transforms {
		t := &mf.Transforms[i]
		if t.Separator == nil {
			sep := DefaultSeparator
			t.Separator = &sep
		}
	}
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a MappingFile to the given path.
func WriteFile(mf *MappingFile, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}

// FindResource returns the resource declared with the given type name.
func (mf *MappingFile) FindResource(typ string) *ResourceDef {
	for i := range mf.Resources {
		if mf.Resources[i].Type == typ {
			return &mf.Resources[i]
		}
	}

	return nil
}

// FindAttribute returns the attribute declared with the given name.
func (r *ResourceDef) FindAttribute(name string) *AttributeDef {
	for i := range r.Attributes {
		if r.Attributes[i].Name == name {
			return &r.Attributes[i]
		}
	}

	return nil
}

// ExpandedFields returns the resource's field mappings with the 121
// shorthand expanded in front of Fields, in attribute declaration order.
func (r *ResourceDef) ExpandedFields() []FieldMapping {
	expanded := make([]FieldMapping, 0, len(r.OneToOne)+len(r.Fields))

	for _, a := range r.Attributes {
		native, ok := r.OneToOne[a.Name]
		if !ok {
			continue
		}

		expanded = append(expanded, FieldMapping{
			Resource:  StringOrArray{a.Name},
			Native:    StringOrArray{native},
			Direction: DefaultDirection,
		})
	}

	return append(expanded, r.Fields...)
}

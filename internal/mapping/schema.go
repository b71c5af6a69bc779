package mapping

// MappingFile represents the root of a YAML mapping definition file.
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty" jsonschema:"enum=1"`

	// Resources declares the resource types and how each maps onto a native
	// record.
	Resources []ResourceDef `yaml:"resources"`

	// Transforms declares the named transforms mappings may refer to.
	Transforms []TransformDef `yaml:"transforms,omitempty"`
}

// ResourceDef declares one resource type.
type ResourceDef struct {
	// Type is the wire type name, e.g. "articles".
	Type string `yaml:"type"`

	// Native is the native record class. Defaults to Type.
	Native string `yaml:"native,omitempty"`

	ID IDDef `yaml:"id,omitempty"`

	Attributes    []AttributeDef    `yaml:"attributes,omitempty"`
	Relationships []RelationshipDef `yaml:"relationships,omitempty"`

	// OneToOne maps resource attributes onto native attributes of another
	// name. Priority: highest.
	// Example: { "title": "Headline" }
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Fields defines composite and transformed mappings. Priority: second.
	Fields []FieldMapping `yaml:"fields,omitempty"`

	// Ignore lists resource attributes that are not mapped at all.
	// Priority: third.
	Ignore []string `yaml:"ignore,omitempty"`
}

// NativeClass returns the native record class of r.
func (r *ResourceDef) NativeClass() string {
	if r.Native != "" {
		return r.Native
	}

	return r.Type
}

// IDDef configures identities.
type IDDef struct {
	// Kind is the native identity kind: string, int or uuid.
	Kind string `yaml:"kind,omitempty" jsonschema:"enum=string,enum=int,enum=uuid"`

	// ClientGenerated accepts ids supplied in creation documents.
	ClientGenerated bool `yaml:"client_generated,omitempty"`
}

// AttributeDef declares a resource attribute.
type AttributeDef struct {
	Name string `yaml:"name"`

	// Type is a type expression such as "string", "?int", "[]string" or
	// "tuple[float, float]". Empty accepts any value.
	Type string `yaml:"type,omitempty"`

	Nullable           bool `yaml:"nullable,omitempty"`
	RequiredOnCreation bool `yaml:"required_on_creation,omitempty"`
	ReadOnly           bool `yaml:"read_only,omitempty"`
	WriteOnly          bool `yaml:"write_only,omitempty"`
	Immutable          bool `yaml:"immutable,omitempty"`
}

// RelationshipDef declares a resource relationship.
type RelationshipDef struct {
	Name string `yaml:"name"`

	// To names the destination resource type.
	To string `yaml:"to"`

	// Cardinality is "one" or "many".
	Cardinality string `yaml:"cardinality,omitempty" jsonschema:"enum=one,enum=many"`

	// Nullable allows a null to-one linkage.
	Nullable bool `yaml:"nullable,omitempty"`

	// AllowEmpty allows an empty to-many linkage. Defaults to true.
	AllowEmpty *bool `yaml:"allow_empty,omitempty"`

	RequiredOnCreation bool `yaml:"required_on_creation,omitempty"`
}

// ToMany reports whether r is a to-many relationship.
func (r *RelationshipDef) ToMany() bool {
	return r.Cardinality == CardinalityNameMany
}

// Relationship cardinality names.
const (
	CardinalityNameOne  = "one"
	CardinalityNameMany = "many"
)

// FieldMapping maps resource attribute(s) onto native attribute(s).
//
// Supported cardinalities:
//   - 1:1 - one resource attribute to one native attribute
//   - 1:N - one composite resource attribute to several native attributes
//   - N:1 - several resource attributes to one composite native attribute
//
// Without a transform, composite values are converted positionally (arrays)
// or by name (objects).
type FieldMapping struct {
	// Resource is the resource attribute name(s).
	Resource StringOrArray `yaml:"resource"`

	// Native is the native attribute name(s). Defaults to the resource
	// attribute name for 1:1 mappings.
	Native StringOrArray `yaml:"native,omitempty"`

	// NativeType is the type expression of the native attribute(s).
	// Defaults to the resource attribute type for 1:1 mappings.
	NativeType string `yaml:"native_type,omitempty"`

	// Direction is "bidi" (default), "to_serde" or "to_native".
	Direction string `yaml:"direction,omitempty" jsonschema:"enum=bidi,enum=to_serde,enum=to_native"`

	// Transform names a transform declared in transforms or registered by
	// the host program.
	Transform string `yaml:"transform,omitempty"`
}

// NativeNames returns the native attribute names, defaulting to the
// resource names.
func (fm *FieldMapping) NativeNames() []string {
	if len(fm.Native) > 0 {
		return fm.Native
	}

	return fm.Resource
}

// Cardinality represents the mapping cardinality.
type Cardinality int

const (
	CardinalityOneToOne   Cardinality = iota // 1:1 - single resource attribute to single native attribute
	CardinalityOneToMany                     // 1:N - single resource attribute to multiple native attributes
	CardinalityManyToOne                     // N:1 - multiple resource attributes to single native attribute
	CardinalityManyToMany                    // N:M - unsupported
)

// String returns a human-readable cardinality name.
func (c Cardinality) String() string {
	switch c {
	case CardinalityOneToOne:
		return "1:1"
	case CardinalityOneToMany:
		return "1:N"
	case CardinalityManyToOne:
		return "N:1"
	case CardinalityManyToMany:
		return "N:M"
	default:
		return "unknown"
	}
}

// GetCardinality determines the cardinality of this field mapping.
func (fm *FieldMapping) GetCardinality() Cardinality {
	r, n := len(fm.Resource), len(fm.NativeNames())

	switch {
	case r <= 1 && n <= 1:
		return CardinalityOneToOne
	case r <= 1:
		return CardinalityOneToMany
	case n <= 1:
		return CardinalityManyToOne
	default:
		return CardinalityManyToMany
	}
}

// TransformDef declares a named transform built from one of the builtin
// kinds.
type TransformDef struct {
	Name string `yaml:"name"`

	// Kind is one of join, split, lower, upper or trim.
	Kind string `yaml:"kind" jsonschema:"enum=join,enum=split,enum=lower,enum=upper,enum=trim"`

	// Separator is used by join and split. Defaults to a single space.
	Separator *string `yaml:"separator,omitempty"`

	Description string `yaml:"description,omitempty"`
}

// StringOrArray is a type that can be unmarshaled from either a string or an array of strings.
// This allows YAML fields to accept both "field" and ["field1", "field2"].
type StringOrArray []string

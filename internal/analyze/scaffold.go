package analyze

import (
	"slices"
	"strings"

	"github.com/pkg/errors"

	"jsonapi-serde/internal/mapping"
	"jsonapi-serde/internal/match"
)

// IDField is the struct field holding identities.
const IDField = "ID"

// Scaffolder derives a mapping file skeleton from struct types. Every
// struct with an ID field becomes a resource type named after the struct.
// Exported fields become attributes, except for pointers to and slices of
// other resource structs, which become relationships.
type Scaffolder struct {
	graph *TypeGraph

	// resources maps resource structs to their resource type names.
	resources map[*TypeInfo]string
}

// NewScaffolder creates a Scaffolder over the structs of graph.
func NewScaffolder(graph *TypeGraph) *Scaffolder {
	s := &Scaffolder{graph: graph, resources: make(map[*TypeInfo]string)}

	for _, info := range graph.Types {
		if info.Kind != TypeKindStruct {
			continue
		}

		if _, ok := info.Field(IDField); ok {
			s.resources[info] = ResourceTypeName(info.ID.Name)
		}
	}

	return s
}

// Scaffold builds the mapping file of the named structs, or of every
// resource struct when no name is given. Resources are listed in name
// order.
func (s *Scaffolder) Scaffold(names ...string) (*mapping.MappingFile, error) {
	var structs []*TypeInfo

	if len(names) == 0 {
		for info := range s.resources {
			structs = append(structs, info)
		}
	} else {
		for _, name := range names {
			info, ok := s.graph.FindStruct(name)
			if !ok {
				return nil, errors.Errorf("struct %s not found", name)
			}

			if _, ok := s.resources[info]; !ok {
				return nil, errors.Errorf("struct %s has no %s field", name, IDField)
			}

			structs = append(structs, info)
		}
	}

	slices.SortFunc(structs, func(a, b *TypeInfo) int { return strings.Compare(a.ID.Name, b.ID.Name) })

	mf := &mapping.MappingFile{Version: mapping.DefaultVersion}

	for _, info := range structs {
		res, err := s.resource(info)
		if err != nil {
			return nil, err
		}

		mf.Resources = append(mf.Resources, res)
	}

	return mf, nil
}

func (s *Scaffolder) resource(info *TypeInfo) (mapping.ResourceDef, error) {
	res := mapping.ResourceDef{
		Type:   s.resources[info],
		Native: info.ID.Name,
	}

	path := NewTypePath(info.ID.Name)

	idField, _ := info.Field(IDField)

	kind, err := identityKind(idField.Type)
	if err != nil {
		return res, errors.Wrap(err, path.Field(IDField).String())
	}

	res.ID.Kind = kind

	stringer := NewTypeStringer(AttributeName)

	for i := range info.Fields {
		f := &info.Fields[i]
		if f.Name == IDField || f.Embedded || f.Skipped() {
			continue
		}

		name := AttributeName(f)

		if rel, ok := s.relationship(f, name); ok {
			res.Relationships = append(res.Relationships, rel)
			continue
		}

		attr := mapping.AttributeDef{Name: name}

		typ := f.Type
		if typ.Kind == TypeKindPointer {
			attr.Nullable = true
			typ = typ.ElemType
		}

		attr.Type = stringer.TypeString(typ)
		res.Attributes = append(res.Attributes, attr)

		if name != f.Name {
			if res.OneToOne == nil {
				res.OneToOne = make(map[string]string)
			}

			res.OneToOne[name] = f.Name
		}
	}

	return res, nil
}

// relationship reports whether f refers to other resources: a pointer to a
// resource struct is a to-one relationship, a slice of them or of pointers
// to them a to-many relationship.
func (s *Scaffolder) relationship(f *FieldInfo, name string) (mapping.RelationshipDef, bool) {
	t := f.Type

	switch t.Kind {
	case TypeKindPointer:
		if to, ok := s.resources[t.ElemType]; ok {
			return mapping.RelationshipDef{Name: name, To: to, Cardinality: mapping.CardinalityNameOne, Nullable: true}, true
		}

	case TypeKindSlice:
		elem := t.ElemType
		if elem.Kind == TypeKindPointer {
			elem = elem.ElemType
		}

		if to, ok := s.resources[elem]; ok {
			return mapping.RelationshipDef{Name: name, To: to, Cardinality: mapping.CardinalityNameMany}, true
		}
	}

	return mapping.RelationshipDef{}, false
}

func identityKind(t *TypeInfo) (string, error) {
	if t.Kind == TypeKindExternal && t.ID.String() == "github.com/google/uuid.UUID" {
		return "uuid", nil
	}

	switch basicExpr(t) {
	case "string":
		return "string", nil
	case "int":
		return "int", nil
	}

	return "", errors.Errorf("identities of type %s are not supported", t.GoType)
}

// AttributeName returns the member name of a struct field: its JSON name,
// or the snake_case form of the field name.
func AttributeName(f *FieldInfo) string {
	if name := f.JSONName(); name != "" {
		return name
	}

	return strings.Join(match.TokenizeIdent(f.Name), "_")
}

// ResourceTypeName returns the resource type name of a struct: the plural
// of its snake_case name.
func ResourceTypeName(structName string) string {
	name := strings.Join(match.TokenizeIdent(structName), "_")

	switch {
	case name == "":
		return name
	case len(name) > 1 && strings.HasSuffix(name, "y") && !strings.ContainsAny(name[len(name)-2:len(name)-1], "aeiou"):
		return name[:len(name)-1] + "ies"
	case strings.HasSuffix(name, "s"), strings.HasSuffix(name, "x"),
		strings.HasSuffix(name, "ch"), strings.HasSuffix(name, "sh"):
		return name + "es"
	default:
		return name + "s"
	}
}

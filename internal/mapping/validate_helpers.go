package mapping

import (
	"slices"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"jsonapi-serde/internal/match"
	"jsonapi-serde/native"
)

// Field mapping direction names.
const (
	DirectionNameBidi     = "bidi"
	DirectionNameToSerde  = "to_serde"
	DirectionNameToNative = "to_native"
)

var directionNames = []string{DirectionNameBidi, DirectionNameToSerde, DirectionNameToNative}

var identityKindNames = []string{
	native.IdentityString.String(),
	native.IdentityInt.String(),
	native.IdentityUUID.String(),
}

// suggest returns the closest declared name as a one element slice, or nil.
func suggest(unknown string, declared []string) []string {
	if unknown == "" {
		return nil
	}

	if s := match.Suggest(unknown, declared); s != "" {
		return []string{s}
	}

	return nil
}

func containsName(names []string, name string) bool {
	return slices.Contains(names, name)
}

func sortedNames(s mapset.Set[string]) []string {
	names := s.ToSlice()
	sort.Strings(names)

	return names
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// validateIDKind checks the identity kind of a resource.
func validateIDKind(v *resourceValidator) {
	if _, ok := native.IdentityKindByName(v.def.ID.Kind); !ok {
		v.errorf("invalid_id_kind", v.path+".id.kind", suggest(v.def.ID.Kind, identityKindNames),
			"unknown identity kind %q", v.def.ID.Kind)
	}
}

// validateAttributeFlags reports contradictory attribute flags.
func validateAttributeFlags(v *resourceValidator, a *AttributeDef, path string) {
	if a.ReadOnly && a.WriteOnly {
		v.errorf("conflicting_flags", path, nil, "attribute %q cannot be both read_only and write_only", a.Name)
	}

	if a.ReadOnly && a.RequiredOnCreation {
		v.errorf("conflicting_flags", path, nil, "attribute %q cannot be both read_only and required_on_creation", a.Name)
	}
}

// validateRelationshipFlags checks cardinality and the flags that only
// apply to one cardinality.
func validateRelationshipFlags(v *resourceValidator, r *RelationshipDef, path string) {
	switch r.Cardinality {
	case CardinalityNameOne:
		if r.AllowEmpty != nil {
			v.res.AddWarning("ignored_flag", "allow_empty has no effect on to-one relationships", v.def.Type, path+".allow_empty")
		}
	case CardinalityNameMany:
		if r.Nullable {
			v.res.AddWarning("ignored_flag", "nullable has no effect on to-many relationships", v.def.Type, path+".nullable")
		}
	default:
		v.errorf("invalid_cardinality", path+".cardinality",
			suggest(r.Cardinality, []string{CardinalityNameOne, CardinalityNameMany}),
			"unknown cardinality %q", r.Cardinality)
	}
}

// validateFieldMapping checks one fields entry and reports whether it is
// sound enough to claim its attributes.
func validateFieldMapping(v *resourceValidator, fm *FieldMapping, path string, attrNames []string) bool {
	ok := true

	if fm.Resource.IsEmpty() {
		v.errorf("missing_resource", path+".resource", nil, "field mapping must name at least one resource attribute")
		return false
	}

	for _, name := range fm.Resource {
		if !v.attrs.Contains(name) {
			v.errorf("unknown_attribute", path+".resource", suggest(name, attrNames), "attribute %q is not declared", name)
			ok = false
		}
	}

	for _, name := range fm.Native {
		if name == "" {
			v.errorf("missing_native", path+".native", nil, "native attribute names must not be empty")
			ok = false
		}
	}

	if !containsName(directionNames, fm.Direction) {
		v.errorf("invalid_direction", path+".direction", suggest(fm.Direction, directionNames),
			"unknown direction %q", fm.Direction)

		ok = false
	}

	if fm.GetCardinality() == CardinalityManyToMany {
		v.errorf("unsupported_cardinality", path, nil, "%s mappings are not supported", CardinalityManyToMany)
		ok = false
	}

	if _, err := ParseType(fm.NativeType); err != nil {
		v.errorf("invalid_type", path+".native_type", nil, "%v", err)
		ok = false
	}

	if fm.Transform != "" && !containsName(v.transforms, fm.Transform) {
		v.errorf("unknown_transform", path+".transform", suggest(fm.Transform, v.transforms),
			"transform %q is not declared", fm.Transform)

		ok = false
	}

	return ok
}

package mapping

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"jsonapi-serde/internal/diagnostic"
)

// Validate checks a mapping definition for structural errors. Transforms
// are looked up in mf and in reg; a nil reg stands for
// NewTransformRegistry.
func Validate(mf *MappingFile, reg *TransformRegistry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if reg == nil {
		reg = NewTransformRegistry()
	}

	if mf.Version != DefaultVersion {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported mapping version %q", mf.Version), "", "version")
	}

	if len(mf.Resources) == 0 {
		res.AddWarning("no_resources", "mapping file declares no resources", "", "resources")
	}

	transforms := validateTransforms(res, mf, reg)
	types := validateResourceNames(res, mf)

	for i := range mf.Resources {
		v := &resourceValidator{
			res:        res,
			def:        &mf.Resources[i],
			path:       fmt.Sprintf("resources[%d]", i),
			types:      types,
			transforms: transforms,
		}
		v.validate()
	}

	return res
}

// validateTransforms checks the declared transforms and returns the names
// field mappings may refer to.
func validateTransforms(res *diagnostic.Diagnostics, mf *MappingFile, reg *TransformRegistry) []string {
	known := mapset.NewThreadUnsafeSet(reg.Names()...)
	declared := mapset.NewThreadUnsafeSet[string]()

	for i, t := range mf.Transforms {
		path := fmt.Sprintf("transforms[%d]", i)

		if t.Name == "" {
			res.AddError("missing_name", "transform must have a name", "", path)
			continue
		}

		if !declared.Add(t.Name) {
			res.AddError("duplicate_transform", fmt.Sprintf("duplicate transform %q", t.Name), "", path)
			continue
		}

		if _, err := NewTransform(t); err != nil {
			res.AddError("unknown_transform_kind", err.Error(), "", path+".kind", suggest(t.Kind, TransformKinds)...)
			continue
		}

		known.Add(t.Name)
	}

	return sortedNames(known)
}

// validateResourceNames checks resource and native class uniqueness and
// returns the declared type names.
func validateResourceNames(res *diagnostic.Diagnostics, mf *MappingFile) []string {
	types := mapset.NewThreadUnsafeSet[string]()
	classes := mapset.NewThreadUnsafeSet[string]()

	for i := range mf.Resources {
		r := &mf.Resources[i]
		path := fmt.Sprintf("resources[%d]", i)

		if r.Type == "" {
			res.AddError("missing_type", "resource must have a type", "", path)
			continue
		}

		if !types.Add(r.Type) {
			res.AddError("duplicate_resource", fmt.Sprintf("resource type %q is declared more than once", r.Type), r.Type, path)
			continue
		}

		if !classes.Add(r.NativeClass()) {
			res.AddError("duplicate_native", fmt.Sprintf("native class %q is mapped more than once", r.NativeClass()), r.Type, path+".native")
		}
	}

	return sortedNames(types)
}

type resourceValidator struct {
	res        *diagnostic.Diagnostics
	def        *ResourceDef
	path       string
	types      []string
	transforms []string

	attrs mapset.Set[string]
}

func (v *resourceValidator) errorf(code, path string, suggestions []string, format string, args ...any) {
	v.res.AddError(code, fmt.Sprintf(format, args...), v.def.Type, path, suggestions...)
}

func (v *resourceValidator) validate() {
	validateIDKind(v)
	v.validateAttributes()
	v.validateRelationships()
	v.validateMappings()
}

func (v *resourceValidator) validateAttributes() {
	v.attrs = mapset.NewThreadUnsafeSet[string]()

	for i, a := range v.def.Attributes {
		path := fmt.Sprintf("%s.attributes[%d]", v.path, i)

		if a.Name == "" {
			v.errorf("missing_name", path, nil, "attribute must have a name")
			continue
		}

		if !v.attrs.Add(a.Name) {
			v.errorf("duplicate_attribute", path, nil, "attribute %q is declared more than once", a.Name)
			continue
		}

		if _, err := ParseType(a.Type); err != nil {
			v.errorf("invalid_type", path+".type", nil, "%v", err)
		}

		validateAttributeFlags(v, &a, path)
	}
}

func (v *resourceValidator) validateRelationships() {
	names := mapset.NewThreadUnsafeSet[string]()

	for i, r := range v.def.Relationships {
		path := fmt.Sprintf("%s.relationships[%d]", v.path, i)

		if r.Name == "" {
			v.errorf("missing_name", path, nil, "relationship must have a name")
			continue
		}

		if v.attrs.Contains(r.Name) {
			v.errorf("name_conflict", path, nil, "%q is declared both as an attribute and a relationship", r.Name)
		} else if !names.Add(r.Name) {
			v.errorf("duplicate_relationship", path, nil, "relationship %q is declared more than once", r.Name)
		}

		if !containsName(v.types, r.To) {
			v.errorf("unknown_resource", path+".to", suggest(r.To, v.types), "relationship %q refers to undeclared resource type %q", r.Name, r.To)
		}

		validateRelationshipFlags(v, &r, path)
	}
}

func (v *resourceValidator) validateMappings() {
	mapped := map[string]string{}
	natives := map[string]string{}
	attrNames := v.attrs.ToSlice()

	claim := func(name, path string) {
		if prev, ok := mapped[name]; ok {
			v.errorf("duplicate_mapping", path, nil, "attribute %q is already mapped at %s", name, prev)
			return
		}

		mapped[name] = path
	}

	claimNative := func(name, path string) {
		if prev, ok := natives[name]; ok {
			v.errorf("duplicate_native_attribute", path, nil, "native attribute %q is already mapped at %s", name, prev)
			return
		}

		natives[name] = path
	}

	for _, a := range v.def.Attributes {
		native, ok := v.def.OneToOne[a.Name]
		if !ok {
			continue
		}

		path := v.path + ".121." + a.Name
		if native == "" {
			v.errorf("missing_native", path, nil, "attribute %q maps to an empty native name", a.Name)
			continue
		}

		claim(a.Name, path)
		claimNative(native, path)
	}

	for _, name := range sortedKeys(v.def.OneToOne) {
		if !v.attrs.Contains(name) {
			v.errorf("unknown_attribute", v.path+".121", suggest(name, attrNames), "attribute %q is not declared", name)
		}
	}

	for i := range v.def.Fields {
		fm := &v.def.Fields[i]
		path := fmt.Sprintf("%s.fields[%d]", v.path, i)

		if !validateFieldMapping(v, fm, path, attrNames) {
			continue
		}

		for _, name := range fm.Resource {
			claim(name, path)
		}

		for _, name := range fm.NativeNames() {
			claimNative(name, path)
		}
	}

	for i, name := range v.def.Ignore {
		path := fmt.Sprintf("%s.ignore[%d]", v.path, i)

		if !v.attrs.Contains(name) {
			v.errorf("unknown_attribute", path, suggest(name, attrNames), "attribute %q is not declared", name)
			continue
		}

		if prev, ok := mapped[name]; ok {
			v.res.AddWarning("ignored_but_mapped", fmt.Sprintf("attribute %q is ignored but mapped at %s", name, prev), v.def.Type, path)
			continue
		}

		mapped[name] = path
	}

	for _, a := range v.def.Attributes {
		if _, ok := mapped[a.Name]; ok || a.Name == "" {
			continue
		}

		if prev, ok := natives[a.Name]; ok {
			v.errorf("duplicate_native_attribute", v.path, nil, "native attribute %q is already mapped at %s", a.Name, prev)
			continue
		}

		v.res.AddInfo("auto_mapped", fmt.Sprintf("attribute %q maps to the native attribute of the same name", a.Name), v.def.Type, v.path)
	}
}

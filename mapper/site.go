package mapper

import (
	"github.com/pkg/errors"

	"jsonapi-serde/serde"
)

// GenericRepr is the document side input of an operation: a resource, a
// single (possibly null) identifier, or a list of identifiers.
type GenericRepr struct {
	Resource    *serde.ResourceRepr
	Identifier  *serde.ResourceIdRepr
	Identifiers []serde.ResourceIdRepr
}

// SiteContext describes the operation a filter is invoked from.
type SiteContext struct {
	Op     Operation
	Mapper *Mapper

	ToNative ToNativeContext
	ToSerde  ToSerdeContext
	Mutation MutationContext

	Serde GenericRepr
	// Target is the native object (or, for collections, []any) being
	// updated or serialized.
	Target any
	// Relationship is set for relationship-only operations.
	Relationship *RelationshipMapping
}

// ResourceFilter rewrites the document side input before it is mapped.
type ResourceFilter func(site *SiteContext, repr GenericRepr) (GenericRepr, error)

// NativeBuilderFilter inspects or replaces the native builder before the
// object is built.
type NativeBuilderFilter func(site *SiteContext, repr GenericRepr, builder NativeBuilder) (NativeBuilder, error)

// NativeFilter inspects or replaces a native object right after it was
// built.
type NativeFilter func(site *SiteContext, repr GenericRepr, native any) (any, error)

// SerdeNode is the builder a SerdeBuilderFilter receives: exactly one of
// Resource or Identifier is set.
type SerdeNode struct {
	Resource   *serde.ResourceReprBuilder
	Identifier *serde.ResourceIdReprBuilder
}

// SerdeBuilderFilter runs after a resource or identifier builder has been
// populated from a native object.
type SerdeBuilderFilter func(site *SiteContext, node SerdeNode) error

// Filters groups the hooks of a Mapper.
type Filters struct {
	Resource      []ResourceFilter
	NativeBuilder []NativeBuilderFilter
	Native        []NativeFilter
	SerdeBuilder  []SerdeBuilderFilter
}

func (f *Filters) applyResource(site *SiteContext, repr GenericRepr) (GenericRepr, error) {
	for _, rf := range f.Resource {
		var err error
		if repr, err = rf(site, repr); err != nil {
			return GenericRepr{}, err
		}
	}

	site.Serde = repr

	return repr, nil
}

// build runs the native builder filters, builds the object and runs the
// native filters over it.
func (f *Filters) build(site *SiteContext, repr GenericRepr, builder NativeBuilder) (any, error) {
	for _, nbf := range f.NativeBuilder {
		var err error
		if builder, err = nbf(site, repr, builder); err != nil {
			return nil, err
		}
	}

	native, err := builder.Build(site.Mutation)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", site.Mapper.Native().Class())
	}

	for _, nf := range f.Native {
		if native, err = nf(site, repr, native); err != nil {
			return nil, err
		}
	}

	return native, nil
}

func (f *Filters) applySerdeBuilder(site *SiteContext, node SerdeNode) error {
	for _, sbf := range f.SerdeBuilder {
		if err := sbf(site, node); err != nil {
			return err
		}
	}

	return nil
}

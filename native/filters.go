package native

import (
	"github.com/pkg/errors"

	"jsonapi-serde/mapper"
	"jsonapi-serde/serde"
)

// ClientIDFilter makes builders of new objects adopt the id the client sent
// with the resource. It is a no-op on updates and for builders that cannot
// take an id.
func ClientIDFilter(site *mapper.SiteContext, repr mapper.GenericRepr, builder mapper.NativeBuilder) (mapper.NativeBuilder, error) {
	if site.Op != mapper.OperationCreate || repr.Resource == nil || repr.Resource.ID == "" {
		return builder, nil
	}

	b, ok := builder.(interface{ SetID(id any) })
	if !ok {
		return builder, nil
	}

	ref := serde.ResourceIdRepr{Type: repr.Resource.Type, ID: repr.Resource.ID}.WithSource(repr.Resource.Source())

	id, err := site.ToNative.NativeIdentityBySerde(site.Mapper, ref)
	if err != nil {
		return nil, errors.Wrap(err, "client generated id")
	}

	b.SetID(id)

	return builder, nil
}

var _ mapper.NativeBuilderFilter = ClientIDFilter

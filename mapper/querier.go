package mapper

import (
	"jsonapi-serde/serde"
)

// ResourceInfo describes descr the way the deserializer needs it.
func ResourceInfo(descr *ResourceDescriptor) serde.ResourceInfo {
	info := serde.ResourceInfo{Name: descr.Name()}

	for _, a := range descr.Attributes() {
		shape := a.Type
		if shape == nil {
			shape = serde.AttributeValueShape
		}

		info.Attributes = append(info.Attributes, serde.AttributeInfo{
			Name:               a.Name,
			Shape:              shape,
			AllowNull:          a.AllowNull,
			RequiredOnCreation: a.RequiredOnCreation,
			ReadOnly:           a.ReadOnly,
		})
	}

	return info
}

// DescriptorQuerier lets a serde.Deserializer validate attributes against
// the resource types registered with c.
func (c *MapperContext) DescriptorQuerier() serde.DescriptorQuerier {
	return serde.DescriptorQuerierFunc(func(name string) (serde.ResourceInfo, bool) {
		descr, err := c.typeResolver.QueryDescriptorByTypeName(name)
		if err != nil {
			return serde.ResourceInfo{}, false
		}

		return ResourceInfo(descr), true
	})
}

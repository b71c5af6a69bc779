// Package mapper binds JSON:API resource descriptors to native objects.
//
// A Mapper pairs a ResourceDescriptor with a NativeDescriptor through a list
// of attribute and relationship mappings. It builds native objects from
// deserialized resources, updates existing ones, and builds Repr trees back
// from native objects. A MapperContext owns the registered mappers together
// with the identity Driver, the SerdeTypeResolver and the EndpointResolver
// they delegate to.
//
// Key capabilities:
//   - 1:1, 1:N and N:1 attribute mappings with per-direction conversion
//   - to-one and to-many relationship mappings, including
//     relationship-only updates, additions and removals
//   - compound documents with an included section free of duplicates
//   - filters hooking every stage of a mapping operation
//   - a typed error taxonomy translatable to JSON:API error objects
package mapper

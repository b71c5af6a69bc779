// Package native provides reference implementations of the native side of a
// mapper.
//
// Main capabilities:
//   - RecordDescriptor: map backed records for declaratively configured
//     resource types
//   - StructDescriptor: pointers to Go structs, attributes assigned through
//     reflection
//   - Store: an in-memory MutationContext that relationships resolve against
//   - Driver: string, integer and UUID identities
//   - ClientIDFilter: honors client generated ids on creation
package native

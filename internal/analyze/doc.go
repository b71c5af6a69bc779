// Package analyze loads Go packages and derives mapping file skeletons from
// their struct types.
//
// It uses golang.org/x/tools/go/packages with go/types to build an
// in-memory model of structs and their fields. A Scaffolder turns every
// struct carrying an ID field into a resource type:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/array/map/external)
//   - FieldInfo: describes field name, type, tags, and embedding
//   - TypeStringer: renders TypeInfos as mapping file type expressions
package analyze

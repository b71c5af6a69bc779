// Package mapping declares resource types and their native counterparts in
// YAML and turns those declarations into a ready MapperContext.
//
// # Key capabilities
//
//   - Declare attributes with type expressions and access flags
//   - Declare to-one and to-many relationships between resource types
//   - Simplified "121" shorthand for renaming attributes
//   - Composite mappings (1:N and N:1) with optional named transforms
//   - Ignore attributes
//   - Validation with "did you mean" suggestions
//   - A JSON Schema of the file format
//
// # Schema Overview
//
//	version: "1"
//	resources:
//	  - type: people
//	    native: Person
//	    id: {kind: int, client_generated: true}
//	    attributes:
//	      - {name: first, type: string}
//	      - {name: last, type: string}
//	      - {name: email, type: string?, immutable: true}
//	      - {name: position, type: "tuple[float, float]"}
//	    relationships:
//	      - {name: employer, to: companies, nullable: true}
//	      - {name: friends, to: people, cardinality: many}
//	    121:
//	      email: mail
//	    fields:
//	      - resource: [first, last]   # N:1
//	        native: name
//	        transform: full_name
//	      - resource: position        # 1:N
//	        native: [x, y]
//	        native_type: float
//	transforms:
//	  - {name: full_name, kind: join, separator: " "}
//
// # Priority Order
//
//  1. "121" shorthand mappings (highest)
//  2. "fields" explicit mappings
//  3. "ignore" list
//  4. same name mapping of everything else (lowest)
//
// # Type Expressions
//
// Attribute types use the notation converter.Shape.String prints, see
// ParseType. An omitted type accepts any value.
package mapping

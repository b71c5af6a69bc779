// Package serde holds the JSON:API document model and the code moving it
// in and out of jsonic values.
//
// Key capabilities:
//   - Immutable Repr values for links, resource identifiers, linkages,
//     resources, errors and the four document kinds
//   - Incremental builders producing those values
//   - A deserializer validating raw documents against resource descriptors,
//     reporting every problem with its JSON pointer
//   - A renderer producing key-ordered JSON objects
package serde

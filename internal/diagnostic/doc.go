// Package diagnostic provides structured errors, warnings and notes about
// declarative mapping files.
//
// Key capabilities:
//   - Unknown resource, attribute and transform references
//   - "did you mean" suggestions for misspelled names
//   - Notes on attributes mapped implicitly
package diagnostic

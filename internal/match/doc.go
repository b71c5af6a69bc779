// Package match provides name normalization, Levenshtein distance calculation,
// and candidate ranking used to suggest declared names for misspelled ones.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - RankNames: ranks declared names against an unknown one
//   - Suggest: returns the best declared name, if it is close enough
package match

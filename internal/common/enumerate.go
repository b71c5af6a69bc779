package common

import "strings"

// DefaultConjunction joins the last item in EnglishEnumerate.
const DefaultConjunction = ", and "

// EnglishEnumerate renders items as an English list.
// Examples:
//   - [] -> ""
//   - ["a"] -> "a"
//   - ["a", "b"] -> "a, and b"
//   - ["a", "b", "c"] -> "a, b, and c"
//
// The conjunction replaces the separator before the last item, e.g. ", or ".
func EnglishEnumerate(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}

	var sb strings.Builder

	for i, item := range items {
		switch {
		case i == 0:
		case i == len(items)-1:
			sb.WriteString(conj)
		default:
			sb.WriteString(", ")
		}

		sb.WriteString(item)
	}

	return sb.String()
}

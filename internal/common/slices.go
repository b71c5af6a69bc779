package common

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsSingle returns true if the slice has exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Map applies fn to every element of s and returns the results in order.
func Map[S ~[]E, E any, R any](s S, fn func(E) R) []R {
	result := make([]R, 0, len(s))
	for _, e := range s {
		result = append(result, fn(e))
	}

	return result
}

// Any returns true if pred holds for at least one element of s.
func Any[S ~[]E, E any](s S, pred func(E) bool) bool {
	for _, e := range s {
		if pred(e) {
			return true
		}
	}

	return false
}

// All returns true if pred holds for every element of s.
func All[S ~[]E, E any](s S, pred func(E) bool) bool {
	for _, e := range s {
		if !pred(e) {
			return false
		}
	}

	return true
}

// Filter returns the elements of s for which pred holds, in order.
func Filter[S ~[]E, E any](s S, pred func(E) bool) []E {
	var result []E

	for _, e := range s {
		if pred(e) {
			result = append(result, e)
		}
	}

	return result
}

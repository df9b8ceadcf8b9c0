// Package functools holds small generic helpers over slices.
package functools

// Map applies fn to every element.
func Map[T any, R any](slice []T, fn func(T) R) []R {
	if slice == nil {
		return nil
	}
	result := make([]R, len(slice))
	for i, v := range slice {
		result[i] = fn(v)
	}
	return result
}

// Filter keeps the elements for which predicate holds, in order.
func Filter[T any](slice []T, predicate func(T) bool) []T {
	if slice == nil {
		return nil
	}
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if predicate(v) {
			result = append(result, v)
		}
	}
	return result
}

// Reduce folds the slice from the left.
func Reduce[T any, R any](slice []T, initialValue R, fn func(R, T) R) R {
	result := initialValue
	for _, v := range slice {
		result = fn(result, v)
	}
	return result
}

// Count returns the number of elements for which predicate holds.
func Count[T any](slice []T, predicate func(T) bool) int {
	n := 0
	for _, v := range slice {
		if predicate(v) {
			n++
		}
	}
	return n
}

// Set collects keys into a membership set. Empty keys are skipped.
func Set[T any](slice []T, key func(T) string) map[string]bool {
	set := make(map[string]bool, len(slice))
	for _, v := range slice {
		if k := key(v); k != "" {
			set[k] = true
		}
	}
	return set
}

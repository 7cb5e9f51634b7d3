package util

// Set is an unordered collection of unique comparable values
type Set[T comparable] map[T]struct{}

// SetOf creates a set containing the provided values
func SetOf[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts a value into the set
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Remove deletes a value from the set
func (s Set[T]) Remove(v T) {
	delete(s, v)
}

// Contains returns whether the set includes the value
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values in the set
func (s Set[T]) Len() int {
	return len(s)
}

// IsEmpty returns whether the set has no values
func (s Set[T]) IsEmpty() bool {
	return len(s) == 0
}

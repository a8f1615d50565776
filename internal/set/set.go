package set

// Set provides a wrapper around a map[T]struct{}.
// The zero value is an empty set ready to use.
type Set[T comparable] struct {
	values map[T]struct{}
}

// Insert adds the value to the set. Returns false, if the value
// was already part of the set.
func (s *Set[T]) Insert(value T) bool {
	if s.values == nil {
		s.values = make(map[T]struct{})
	}

	// check if the value exists
	if _, exists := s.values[value]; exists {
		return false
	}

	// insert value
	s.values[value] = struct{}{}
	return true
}

func (s *Set[T]) Has(value T) bool {
	_, exists := s.values[value]
	return exists
}

package util

// OrderedSet is an insertion-ordered set. Adding an existing value keeps its
// original position. The zero value is not usable; use NewOrderedSet.
type OrderedSet[T comparable] struct {
	index map[T]int
	items []T
}

// NewOrderedSet creates a set holding values in first-seen order.
func NewOrderedSet[T comparable](values ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{index: make(map[T]int, len(values))}
	s.Add(values...)
	return s
}

// Add inserts values that are not yet present.
func (s *OrderedSet[T]) Add(values ...T) {
	for _, v := range values {
		if _, ok := s.index[v]; ok {
			continue
		}
		s.index[v] = len(s.items)
		s.items = append(s.items, v)
	}
}

// Contains reports whether v is in the set.
func (s *OrderedSet[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of values.
func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the values in insertion order.
func (s *OrderedSet[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

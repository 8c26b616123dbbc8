// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sortedset

// Set is an ordered set with insert-if-absent semantics, built on top
// of Map[T, struct{}].
type Set[T comparable] struct {
	m *Map[T, struct{}]
}

// NewSet returns an empty Set ordered by less.
func NewSet[T comparable](less func(a, b T) bool) *Set[T] {
	return &Set[T]{m: NewMap[T, struct{}](less)}
}

// Insert adds v if not already present, reporting whether it was
// inserted.
func (s *Set[T]) Insert(v T) bool {
	return s.m.SetIfAbsent(v, struct{}{})
}

// Contains reports whether v is present.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.m.Get(v)
	return ok
}

// Len returns the number of elements.
func (s *Set[T]) Len() int {
	return s.m.Len()
}

// Items returns the set's elements in ascending order. The returned
// slice must not be modified.
func (s *Set[T]) Items() []T {
	return s.m.Keys()
}

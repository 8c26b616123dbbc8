// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sortedset

import "sort"

// Map is an ordered container of key-value pairs, sorted by key, with
// insert-if-absent semantics: once a key is present, later SetIfAbsent
// calls for the same key are no-ops. Create one with NewMap: the zero
// value has no ordering function and panics once a second key is
// inserted.
type Map[K comparable, V any] struct {
	keys   []K
	values []V
	less   func(a, b K) bool
}

// NewMap returns an empty Map ordered by less.
func NewMap[K comparable, V any](less func(a, b K) bool) *Map[K, V] {
	return &Map[K, V]{less: less}
}

// SetIfAbsent inserts (key, value) if key is not already present. It
// reports whether the insert happened.
func (m *Map[K, V]) SetIfAbsent(key K, value V) bool {
	index := m.search(key)
	if index < len(m.keys) && m.keys[index] == key {
		return false
	}
	m.keys = insertAt(m.keys, index, key)
	m.values = insertAt(m.values, index, value)
	return true
}

// Get returns the value stored for key, if present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	index := m.search(key)
	if index < len(m.keys) && m.keys[index] == key {
		return m.values[index], true
	}
	var zero V
	return zero, false
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the entries' keys in ascending order. The returned
// slice must not be modified.
func (m *Map[K, V]) Keys() []K {
	return m.keys
}

// Values returns the entries' values, ordered to match Keys. The
// returned slice must not be modified.
func (m *Map[K, V]) Values() []V {
	return m.values
}

func (m *Map[K, V]) search(key K) int {
	return sort.Search(len(m.keys), func(i int) bool {
		return !m.less(m.keys[i], key)
	})
}

// insertAt inserts v into s at index, shifting later elements right.
func insertAt[T any](s []T, index int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[index+1:], s[index:])
	s[index] = v
	return s
}

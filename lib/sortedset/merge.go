// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sortedset

import "container/heap"

// MergeMaps combines already-sorted, already-deduplicated batches
// into one Map, in O(total entries * log(len(batches))) time rather
// than O(total entries * log(total entries)) repeated insertion.
//
// When the same key appears in more than one batch, the value from
// the lowest-indexed batch wins — callers that need "first observed
// in input order" semantics (as the page list does) should pass
// batches in that order.
func MergeMaps[K comparable, V any](less func(a, b K) bool, batches ...*Map[K, V]) *Map[K, V] {
	h := &mergeHeap[K, V]{less: less}
	positions := make([]int, len(batches))

	pushNext := func(source int) {
		batch := batches[source]
		position := positions[source]
		if position >= batch.Len() {
			return
		}
		heap.Push(h, mergeItem[K, V]{
			key:    batch.keys[position],
			value:  batch.values[position],
			source: source,
		})
	}
	for i := range batches {
		pushNext(i)
	}

	result := NewMap[K, V](less)
	var lastKey K
	hasLast := false
	for h.Len() > 0 {
		item := heap.Pop(h).(mergeItem[K, V])
		positions[item.source]++
		pushNext(item.source)

		if hasLast && !less(lastKey, item.key) && !less(item.key, lastKey) {
			// Same key as the last one emitted (from a
			// lower-indexed, earlier-popped batch); skip.
			continue
		}
		result.SetIfAbsent(item.key, item.value)
		lastKey = item.key
		hasLast = true
	}
	return result
}

// MergeSets combines already-sorted, already-deduplicated batches
// into one Set, as MergeMaps does for Map.
func MergeSets[T comparable](less func(a, b T) bool, batches ...*Set[T]) *Set[T] {
	maps := make([]*Map[T, struct{}], len(batches))
	for i, batch := range batches {
		maps[i] = batch.m
	}
	return &Set[T]{m: MergeMaps(less, maps...)}
}

type mergeItem[K comparable, V any] struct {
	key    K
	value  V
	source int
}

// mergeHeap is a min-heap over mergeItems, ordered by key (via less)
// and, for equal keys, by source index ascending — so that the
// lowest-indexed batch's value for a given key is always popped
// first.
type mergeHeap[K comparable, V any] struct {
	items []mergeItem[K, V]
	less  func(a, b K) bool
}

func (h *mergeHeap[K, V]) Len() int { return len(h.items) }

func (h *mergeHeap[K, V]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less(a.key, b.key) {
		return true
	}
	if h.less(b.key, a.key) {
		return false
	}
	return a.source < b.source
}

func (h *mergeHeap[K, V]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *mergeHeap[K, V]) Push(x any) {
	h.items = append(h.items, x.(mergeItem[K, V]))
}

func (h *mergeHeap[K, V]) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sortedset provides insert-if-absent ordered containers used
// to accumulate CDXJ lines and page entries into a single,
// byte-lexicographically sorted, duplicate-free sequence.
//
// Rather than a shared mutable tree touched by every indexing worker,
// each worker fills its own [Map] (or [Set]) from its file's records,
// and the orchestrator combines the finished, already-sorted batches
// with [MergeMaps] or [MergeSets] — a k-way merge, not repeated
// insertion — so the combine step costs O(n log k) for n entries in k
// batches, and its result is independent of how many workers ran or
// in what order they finished.
package sortedset

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zipnum builds the two-level ZipNum shared index from a
// sorted sequence of CDXJ lines: index.cdx.gz, a concatenation of
// independently gzip-compressed shards, and index.idx, a text index
// with one line per shard giving its offset and length within
// index.cdx.gz.
//
// Shards hold at most [ShardLimit] lines. The reference
// implementation this format originates from slices shards with an
// exclusive upper bound that silently drops one line at each shard
// boundary; [Build] uses the corrected, inclusive-clamped partition
// instead, so that every input line ends up in exactly one shard.
package zipnum

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package surt implements the Sort-friendly URI Reordering Transform
// (SURT) used to key CDXJ index lines.
//
// A SURT reverses a URL's host labels so that URLs sharing a domain
// (and, within a domain, a path prefix) sort adjacently — "com,example)/a"
// sorts next to "com,example)/b", instead of "a.example.com" and
// "b.example.com" sorting nowhere near each other the way plain URLs
// would. The CDXJ index's usefulness for range queries and sharding
// depends entirely on this property.
//
// [Canonicalize] implements the specific canonicalization rules this
// indexer uses: lowercase scheme, default-port stripping for http/https,
// user-info removal, IDNA normalization of non-ASCII hosts (via
// golang.org/x/net/idna, matching the upstream Python "surt" package's
// punycoding of international domain names), percent-decoding and
// lowercasing of the path, and key-sorted reassembly of the query
// string.
package surt

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pages heuristically detects "pages" — top-level navigations
// worth listing in a WACZ's page list — from WARC response records.
//
// [Inferrer] processes one WARC file's records in order, remembering
// each request record's HTTP method by its WARC-Record-ID, and pairs a
// response with any earlier request that the response's
// WARC-Concurrent-To names, to recover the HTTP method, since the
// response alone doesn't carry it.
package pages

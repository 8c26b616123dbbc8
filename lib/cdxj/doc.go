// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cdxj derives CDXJ index lines from WARC response records.
//
// A CDXJ line is "<surt> <14-digit timestamp> <json metadata>\n". The
// SURT and timestamp together make the line's byte-lexicographic order
// meaningful: lines for the same host sort adjacently, and lines for
// the same URL sort by capture time. [Build] produces one such line
// per qualifying record, using [github.com/rebeccacremona/go-wacz/lib/surt]
// for the URL key.
package cdxj

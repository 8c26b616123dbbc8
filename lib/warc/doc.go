// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package warc reads Web ARChive (WARC) files.
//
// A WARC file is a sequence of self-delimited records: an HTTP-style
// header block terminated by a blank line, followed by a
// Content-Length-delimited payload. Files produced by most crawlers
// (and every file this package has been tested against) are gzip-framed:
// the file is a concatenation of independent gzip members, one per
// record, so that a record's compressed bytes can be located and
// decoded without touching its neighbors. [NewReader] detects framing
// automatically from the gzip magic bytes and tracks, for every
// record, the byte offset and length of whatever span must later be
// addressed from a CDX index: the compressed gzip member for
// gzip-framed input, the raw record bytes otherwise.
package warc

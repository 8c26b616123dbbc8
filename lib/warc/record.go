// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warc

import "strings"

// Record is a view over one parsed WARC record.
type Record struct {
	// Headers holds the record's WARC header fields.
	Headers Header

	// Payload is the record's payload, exactly Content-Length bytes.
	Payload []byte

	// Offset is the byte offset, within the source file, of the
	// record (plain WARC) or of the gzip member enclosing it
	// (gzip-framed WARC).
	Offset int64

	// Length is the byte length of that same span.
	Length int64
}

// Type returns the record's WARC-Type field, lowercased.
func (r *Record) Type() string {
	return strings.ToLower(r.Headers.Get("WARC-Type"))
}

// IsResponse reports whether this is a "response" record.
func (r *Record) IsResponse() bool {
	return r.Type() == "response"
}

// IsRevisit reports whether this is a "revisit" record.
func (r *Record) IsRevisit() bool {
	return r.Type() == "revisit"
}

// IsRequest reports whether this is a "request" record.
func (r *Record) IsRequest() bool {
	return r.Type() == "request"
}

// TargetURI returns the record's WARC-Target-URI, or "" if absent.
func (r *Record) TargetURI() string {
	return r.Headers.Get("WARC-Target-URI")
}

// RecordID returns the record's WARC-Record-ID, or "" if absent.
func (r *Record) RecordID() string {
	return r.Headers.Get("WARC-Record-ID")
}

// Date returns the record's raw WARC-Date value.
func (r *Record) Date() string {
	return r.Headers.Get("WARC-Date")
}

// PayloadDigest returns the record's WARC-Payload-Digest, or "" if
// absent.
func (r *Record) PayloadDigest() string {
	return r.Headers.Get("WARC-Payload-Digest")
}

// ConcurrentTo returns the record's WARC-Concurrent-To values, which
// reference the WARC-Record-ID of one or more related records (for
// example, pairing a response with the request that produced it).
func (r *Record) ConcurrentTo() []string {
	return r.Headers.Values("WARC-Concurrent-To")
}

// Truncated returns the record's WARC-Truncated value, or "" if the
// record was not marked truncated by the crawler that wrote it.
func (r *Record) Truncated() string {
	return r.Headers.Get("WARC-Truncated")
}

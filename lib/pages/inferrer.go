// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pages

import (
	"strings"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/warc"
)

// Page is a detected (or manually added) page entry, before ID
// assignment. The ID is assigned once, at final output time, so that
// the sequence of generated IDs is deterministic under an injected
// generator regardless of how many workers ran concurrently.
type Page struct {
	URL       string
	Title     string
	Timestamp string // RFC 3339, "" if unknown.
}

// maxTitleSearch bounds how much of a response body is scanned for a
// <title> element, matching typical crawlers' own excerpt limits.
const maxTitleSearch = 128 * 1024

// Inferrer detects pages across the records of a single WARC file,
// processed in file order. It is not safe for concurrent use; callers
// indexing multiple files in parallel should use one Inferrer per
// file.
type Inferrer struct {
	// pendingMethods maps a request record's WARC-Record-ID to its
	// HTTP method, so that a later response naming it via
	// WARC-Concurrent-To can recover the method used to fetch it.
	pendingMethods map[string]string
}

// NewInferrer returns an Inferrer ready to process a file's records
// in order.
func NewInferrer() *Inferrer {
	return &Inferrer{pendingMethods: make(map[string]string)}
}

// Observe processes one record. It returns ok=true with a detected
// Page when record is a qualifying response.
func (inf *Inferrer) Observe(record *warc.Record) (Page, bool) {
	if record.IsRequest() {
		inf.observeRequest(record)
		return Page{}, false
	}
	if !record.IsResponse() {
		return Page{}, false
	}
	return inf.observeResponse(record)
}

func (inf *Inferrer) observeRequest(record *warc.Record) {
	id := record.RecordID()
	if id == "" {
		return
	}
	message, ok := record.ParseHTTP()
	if !ok || message.Method == "" {
		return
	}
	inf.pendingMethods[id] = message.Method
}

func (inf *Inferrer) observeResponse(record *warc.Record) (Page, bool) {
	message, ok := record.ParseHTTP()
	if !ok {
		return Page{}, false
	}
	if message.StatusCode < 200 || message.StatusCode > 299 {
		return Page{}, false
	}
	if !strings.HasPrefix(strings.ToLower(message.Header.Get("Content-Type")), "text/html") {
		return Page{}, false
	}

	method := inf.methodFor(record)
	if method != "" && method != "GET" {
		return Page{}, false
	}

	targetURI := record.TargetURI()
	if targetURI == "" {
		return Page{}, false
	}

	title := ExtractTitle(message.Body)

	timestamp := ""
	if parsed, err := time.Parse(time.RFC3339, record.Date()); err == nil {
		timestamp = parsed.UTC().Format(time.RFC3339)
	}

	return Page{URL: targetURI, Title: title, Timestamp: timestamp}, true
}

// methodFor looks up the HTTP method of whichever request record
// this response names via WARC-Concurrent-To. It returns "" — treated
// as "unknown", which passes the page filter — if no paired request
// was observed.
func (inf *Inferrer) methodFor(record *warc.Record) string {
	for _, id := range record.ConcurrentTo() {
		if method, ok := inf.pendingMethods[id]; ok {
			return method
		}
	}
	return ""
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cdxj

import (
	"crypto/sha1"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"mime"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/surt"
	"github.com/rebeccacremona/go-wacz/lib/warc"
)

// Entry is one derived CDXJ index line.
type Entry struct {
	// SURT is the entry's sort key, the SURT form of the record's
	// target URI.
	SURT string

	// Line is the complete, "\n"-terminated CDXJ line: SURT,
	// timestamp, and JSON metadata, space-separated.
	Line string
}

// meta is the JSON object embedded in a CDXJ line. Field order here
// fixes the serialized key order.
type meta struct {
	URL       string `json:"url"`
	Mime      string `json:"mime"`
	Status    int    `json:"status"`
	Digest    string `json:"digest"`
	Length    int64  `json:"length"`
	Offset    int64  `json:"offset"`
	Filename  string `json:"filename"`
	Truncated string `json:"truncated,omitempty"`
}

// Build derives a CDXJ entry from record, which was read from the
// WARC file named filename. It returns ok=false, with no error, when
// the record does not qualify for indexing (not a response/revisit
// record, no target URI, or no resolvable HTTP status) — this is a
// normal filtering outcome, not a parse failure.
func Build(record *warc.Record, filename string) (*Entry, bool, error) {
	if !record.IsResponse() && !record.IsRevisit() {
		return nil, false, nil
	}

	targetURI := record.TargetURI()
	if targetURI == "" {
		return nil, false, nil
	}

	message, parsed := record.ParseHTTP()
	status := 0
	contentType := ""
	var body []byte
	if parsed {
		status = message.StatusCode
		contentType = message.Header.Get("Content-Type")
		body = message.Body
	}
	if status == 0 {
		return nil, false, nil
	}

	key, err := surt.Canonicalize(targetURI)
	if err != nil {
		return nil, false, fmt.Errorf("cdxj: %s: %w", targetURI, err)
	}

	timestamp, err := formatTimestamp(record.Date())
	if err != nil {
		return nil, false, fmt.Errorf("cdxj: %s: %w", targetURI, err)
	}

	digest := record.PayloadDigest()
	if digest == "" {
		digest = sha1Digest(body)
	}

	mimeType := contentType
	if parsedMime, _, err := mime.ParseMediaType(contentType); err == nil {
		mimeType = parsedMime
	}

	metaJSON, err := json.Marshal(meta{
		URL:       targetURI,
		Mime:      mimeType,
		Status:    status,
		Digest:    digest,
		Length:    record.Length,
		Offset:    record.Offset,
		Filename:  filename,
		Truncated: record.Truncated(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("cdxj: marshaling metadata: %w", err)
	}

	line := fmt.Sprintf("%s %s %s\n", key, timestamp, metaJSON)
	return &Entry{SURT: key, Line: line}, true, nil
}

// formatTimestamp converts a WARC-Date (RFC 3339) into the 14-digit
// YYYYMMDDHHMMSS form used by CDXJ lines.
func formatTimestamp(warcDate string) (string, error) {
	parsed, err := time.Parse(time.RFC3339, warcDate)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, warcDate)
		if err != nil {
			return "", fmt.Errorf("parsing WARC-Date %q: %w", warcDate, err)
		}
	}
	return parsed.UTC().Format("20060102150405"), nil
}

// sha1Digest computes the SHA-1 digest of payload, formatted as
// "sha1:<unpadded base32>".
func sha1Digest(payload []byte) string {
	sum := sha1.Sum(payload)
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:])
	return "sha1:" + encoded
}

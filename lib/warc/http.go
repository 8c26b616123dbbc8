// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warc

import (
	"bufio"
	"bytes"
	"net/textproto"
	"strconv"
	"strings"
)

// HTTPMessage is the parsed HTTP request or response carried as the
// payload of a "request" or "response" WARC record.
type HTTPMessage struct {
	// StartLine is the request line ("GET / HTTP/1.1") or status
	// line ("HTTP/1.1 200 OK"), verbatim.
	StartLine string

	// Method is set for a request message ("GET", "POST", ...).
	Method string

	// StatusCode is set for a response message.
	StatusCode int

	// Header holds the HTTP message's header fields.
	Header Header

	// Body is whatever of the payload followed the header block.
	Body []byte
}

// ParseHTTP parses r's payload as an HTTP request or response
// message. It returns ok=false if the payload is empty or does not
// begin with a recognizable HTTP start line — this happens for some
// "revisit" records, which may carry only a trimmed header block, and
// is not itself an error.
func (r *Record) ParseHTTP() (*HTTPMessage, bool) {
	return parseHTTPMessage(r.Payload)
}

func parseHTTPMessage(payload []byte) (*HTTPMessage, bool) {
	if len(payload) == 0 {
		return nil, false
	}

	reader := bufio.NewReader(bytes.NewReader(payload))
	tp := textproto.NewReader(reader)

	startLine, err := tp.ReadLine()
	if err != nil || startLine == "" {
		return nil, false
	}

	msg := &HTTPMessage{StartLine: startLine, Header: Header{}}

	switch {
	case strings.HasPrefix(startLine, "HTTP/"):
		fields := strings.SplitN(startLine, " ", 3)
		if len(fields) < 2 {
			return nil, false
		}
		status, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false
		}
		msg.StatusCode = status

	default:
		fields := strings.SplitN(startLine, " ", 3)
		if len(fields) < 3 || !strings.HasPrefix(fields[2], "HTTP/") {
			return nil, false
		}
		msg.Method = fields[0]
	}

	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil && len(mimeHeader) == 0 {
		// A header block with no fields at all (immediate blank
		// line) is valid and returns an empty map with no error. An
		// error before any field was read means the header block is
		// missing or malformed; an error after some fields were read
		// keeps those fields.
		return nil, false
	}
	for key, values := range mimeHeader {
		msg.Header[textproto.CanonicalMIMEHeaderKey(key)] = values
	}

	var body bytes.Buffer
	body.ReadFrom(reader)
	msg.Body = body.Bytes()

	return msg, true
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warc

import "net/textproto"

// Header is a case-insensitive multimap of WARC (or, for a record's
// HTTP-message payload, HTTP) header fields, modeled after
// net/http.Header.
type Header map[string][]string

// Add appends value under key, canonicalizing key for case-insensitive
// lookup.
func (h Header) Add(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	h[key] = append(h[key], value)
}

// Set replaces any existing values for key with a single value.
func (h Header) Set(key, value string) {
	h[textproto.CanonicalMIMEHeaderKey(key)] = []string{value}
}

// Get returns the first value associated with key, or "" if absent.
func (h Header) Get(key string) string {
	values := h[textproto.CanonicalMIMEHeaderKey(key)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns all values associated with key, in the order added.
func (h Header) Values(key string) []string {
	return h[textproto.CanonicalMIMEHeaderKey(key)]
}

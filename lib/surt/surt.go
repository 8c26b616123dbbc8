// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package surt

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

// defaultPorts maps a scheme to the port number that may be elided
// from its SURT form because it is implied.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Canonicalize computes the SURT form of rawURL.
//
// For http and https URLs the result has the shape
// "<reversed-host>[:port])<path>[?<query>]" with the scheme elided,
// e.g. "com,example)/path?a=1&b=2" for "https://example.com/path?b=2&a=1".
// For any other scheme the scheme is kept as a prefix (e.g.
// "ftp:(com,example)/file") since there is no implied default to elide.
func Canonicalize(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("surt: parsing %q: %w", rawURL, err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("surt: %q has no host", rawURL)
	}

	scheme := strings.ToLower(parsed.Scheme)

	host, err := canonicalizeHost(parsed.Hostname())
	if err != nil {
		return "", fmt.Errorf("surt: canonicalizing host of %q: %w", rawURL, err)
	}

	reversedHost := reverseLabels(host)

	port := parsed.Port()
	if port != "" && defaultPorts[scheme] == port {
		port = ""
	}

	path := canonicalizePath(parsed.EscapedPath())
	if path == "" {
		path = "/"
	}

	query := canonicalizeQuery(parsed.RawQuery)

	var builder strings.Builder
	if scheme != "http" && scheme != "https" {
		builder.WriteString(scheme)
		builder.WriteString(":(")
	}
	builder.WriteString(reversedHost)
	if port != "" {
		builder.WriteByte(':')
		builder.WriteString(port)
	}
	builder.WriteByte(')')
	builder.WriteString(path)
	if query != "" {
		builder.WriteByte('?')
		builder.WriteString(query)
	}

	return builder.String(), nil
}

// canonicalizeHost lowercases an ASCII host and punycodes a non-ASCII
// (internationalized) one, matching the upstream "surt" package's
// treatment of IDN hosts.
func canonicalizeHost(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	if isASCII(host) {
		return strings.ToLower(host), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("idna: %w", err)
	}
	return strings.ToLower(ascii), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// reverseLabels splits a host on '.' and joins the labels in reverse
// order with ','. "www.example.com" becomes "com,example,www".
func reverseLabels(host string) string {
	labels := strings.Split(host, ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, ",")
}

// canonicalizePath percent-decodes every escape in a URL path and
// lowercases the result. If any escape is malformed, no escape is
// decoded: the path is only lowercased.
func canonicalizePath(escapedPath string) string {
	decoded, err := url.PathUnescape(escapedPath)
	if err != nil {
		decoded = escapedPath
	}
	return strings.ToLower(decoded)
}

// canonicalizeQuery re-encodes a raw query string with its key=value
// pairs sorted by key (ascending, lexicographic), preserving each
// pair's original value encoding verbatim.
func canonicalizeQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	pairs := strings.Split(rawQuery, "&")
	sort.SliceStable(pairs, func(i, j int) bool {
		return queryKey(pairs[i]) < queryKey(pairs[j])
	})
	return strings.Join(pairs, "&")
}

// queryKey extracts the key portion of a "key=value" query pair
// (everything before the first '=', or the whole pair if there is no
// '=').
func queryKey(pair string) string {
	if index := strings.IndexByte(pair, '='); index >= 0 {
		return pair[:index]
	}
	return pair
}

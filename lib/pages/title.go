// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pages

import (
	"regexp"
	"strings"
)

var titleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// ExtractTitle returns the text of the first <title> element found in
// the first maxTitleSearch bytes of body, with runs of whitespace
// collapsed to a single space. It returns "" if no title is found or
// the title is empty once trimmed.
func ExtractTitle(body []byte) string {
	if len(body) > maxTitleSearch {
		body = body[:maxTitleSearch]
	}
	match := titleTag.FindSubmatch(body)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(strings.Fields(string(match[1])), " "))
}

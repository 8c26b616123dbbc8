// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warc

import (
	"errors"
	"fmt"
)

// MalformedError reports that the reader could not make progress
// parsing a record: truncated input, a bad Content-Length, or a
// missing record terminator.
type MalformedError struct {
	// Path is the WARC file being read.
	Path string

	// Offset is the byte at which parsing was attempted (the start
	// of the record in question).
	Offset int64

	// Reason is a short, human-readable description.
	Reason string

	// Err is the underlying error, if any (for example io.ErrUnexpectedEOF).
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("warc: %s: at offset %d: %s", e.Path, e.Offset, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is (or wraps) a *MalformedError.
func IsMalformed(err error) bool {
	var malformed *MalformedError
	return errors.As(err, &malformed)
}

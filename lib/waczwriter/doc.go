// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package waczwriter produces a WACZ container's ZIP structure:
// STORE-method entries only (the payloads are already compressed
// where it matters), appended in the fixed order the format requires,
// each simultaneously hashed as it is written so that every entry's
// [ResourceRecord] — name, path, SHA-256, byte count — is known by
// the time the datapackage manifest is assembled.
//
// [Writer] writes to a temporary file beside the final output path
// and only renames it into place on [Writer.Finalize], after an
// fsync, so a crash mid-write never leaves a corrupt file where the
// final WACZ is expected.
package waczwriter

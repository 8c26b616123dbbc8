// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides SHA256 content hashing for WACZ resources.
//
// Every entry written to a WACZ container except the digest file
// itself is recorded as a resource with a "sha256:"+hex digest
// (datapackage.json's resources array, §4.H of the design), and the
// datapackage digest file hashes datapackage.json the same way. The
// ZIP writer hashes entries through [TeeWriter]; the digest file
// hashes the in-memory manifest with crypto/sha256 directly and uses
// only [FormatDigest] from this package.
//
// The API surface:
//
//   - [HashFile] -- streams a file through SHA256, returning a [32]byte
//     digest with constant memory usage regardless of file size
//   - [HashReader] -- streams an io.Reader through SHA256, for sources
//     that are not a plain file (in-memory buffers, pipes)
//   - [TeeWriter] -- wraps an io.Writer so every byte written to it is
//     simultaneously hashed and counted, letting a single pass over
//     streamed ZIP entry data produce both the entry's length and its
//     digest with no extra buffering
//   - [FormatDigest] -- converts a [32]byte digest to its canonical
//     hex-encoded string representation
//   - [ParseDigest] -- parses a hex-encoded digest string back to a
//     [32]byte array, validating length and encoding
//
// This package has no dependencies on other go-wacz packages.
package binhash

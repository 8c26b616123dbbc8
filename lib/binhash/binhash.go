// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashFile computes the SHA256 digest of the file at path. The file is
// streamed through the hash function in chunks (via io.Copy) to keep
// memory usage constant regardless of file size.
func HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// HashReader computes the SHA256 digest of everything read from r,
// streaming through the hash function so memory usage stays constant
// regardless of how much data r produces.
func HashReader(r io.Reader) ([32]byte, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return [32]byte{}, fmt.Errorf("hashing reader: %w", err)
	}
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// TeeWriter wraps an io.Writer so that every byte passed to Write is
// simultaneously hashed and counted. Use this to hash a ZIP entry's
// content as it streams into the archive, without buffering the entry
// or making a second pass over it.
type TeeWriter struct {
	dest   io.Writer
	hasher interface {
		io.Writer
		Sum([]byte) []byte
	}
	count int64
}

// NewTeeWriter creates a TeeWriter that forwards every write to dest
// while accumulating a running SHA256 digest and byte count.
func NewTeeWriter(dest io.Writer) *TeeWriter {
	return &TeeWriter{dest: dest, hasher: sha256.New()}
}

// Write forwards p to the underlying writer and folds it into the
// running digest. It returns an error if the underlying write fails
// or writes short; the hash state is only advanced for bytes actually
// written downstream, so Digest/Count never overstate what reached
// dest.
func (t *TeeWriter) Write(p []byte) (int, error) {
	n, err := t.dest.Write(p)
	if n > 0 {
		t.hasher.Write(p[:n])
		t.count += int64(n)
	}
	return n, err
}

// Digest returns the SHA256 digest of all bytes written so far.
func (t *TeeWriter) Digest() [32]byte {
	var digest [32]byte
	copy(digest[:], t.hasher.Sum(nil))
	return digest
}

// Count returns the number of bytes written so far.
func (t *TeeWriter) Count() int64 {
	return t.count
}

// FormatDigest returns the hex-encoded string representation of a
// SHA256 digest. Callers prefix it with "sha256:" for the hash
// strings stored in datapackage.json and datapackage-digest.json.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex-encoded SHA256 digest string into a
// 32-byte array. Returns an error if the string is not a valid
// 64-character hex encoding of 32 bytes.
func ParseDigest(hexString string) ([32]byte, error) {
	var digest [32]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("hash digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}

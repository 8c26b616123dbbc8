// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datapackage

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/rebeccacremona/go-wacz/lib/binhash"
	"github.com/rebeccacremona/go-wacz/lib/signer"
)

// Digest is datapackage-digest.json: the datapackage manifest's hash,
// plus an optional signature attesting to it.
type Digest struct {
	Path       string             `json:"path"`
	Hash       string             `json:"hash"`
	SignedData *signer.SignedData `json:"signedData,omitempty"`
}

// BuildDigest computes the SHA-256 of manifestBytes, the exact bytes
// written into datapackage.json, and attaches signedData if a signer
// was configured.
func BuildDigest(manifestBytes []byte, signedData *signer.SignedData) *Digest {
	sum := sha256.Sum256(manifestBytes)
	return &Digest{
		Path:       "datapackage.json",
		Hash:       "sha256:" + binhash.FormatDigest(sum),
		SignedData: signedData,
	}
}

// Marshal serializes the digest as two-space-indented JSON.
func (d *Digest) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

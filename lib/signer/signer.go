// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package signer

import "context"

// Signer attests that a datapackage with the given hash existed at
// the given created timestamp. hash is "sha256:" followed by 64 hex
// digits; created is an ISO-8601/RFC3339 UTC timestamp. Implementations
// are free to call out to a remote service — Sign should respect ctx
// cancellation and deadlines rather than running unbounded.
type Signer interface {
	Sign(ctx context.Context, hash, created string) (SignedData, error)
}

// AnonymousMode is the signature mode in which only a public key
// attests to the signature, with no identity binding.
type AnonymousMode struct {
	PublicKey string `json:"publicKey"`
}

// DomainIdentifiedMode is the signature mode in which the signer
// binds its signature to a domain identity via a certificate chain
// and a trusted timestamp.
type DomainIdentifiedMode struct {
	Domain        string `json:"domain"`
	DomainCert    string `json:"domainCert"`
	TimeSignature string `json:"timeSignature"`
	TimestampCert string `json:"timestampCert"`
}

// SignedData is a Signer's response: shared attestation fields plus
// exactly one of AnonymousMode or DomainIdentifiedMode populated.
// CrossSignedCert is optional in either mode.
type SignedData struct {
	Hash      string `json:"hash"`
	Created   string `json:"created"`
	Software  string `json:"software"`
	Signature string `json:"signature"`

	*AnonymousMode
	*DomainIdentifiedMode

	CrossSignedCert string `json:"crossSignedCert,omitempty"`
}

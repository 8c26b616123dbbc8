// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package localsigner is a reference [signer.Signer] implementation
// for development and test use — not the canonical HTTP-based
// implementation (see cmd/wacz/httpsigner for that).
//
// It derives an Ed25519 keypair deterministically from an
// operator-supplied seed via HKDF, so the same seed always signs with
// the same key, and produces anonymous-mode SignedData (no domain
// identity binding). The operator seed the key is derived from can
// optionally be sealed at rest with a passphrase using filippo.io/age's scrypt-based
// passphrase recipient, so a long-lived local-signer identity file on
// disk is not plaintext.
package localsigner

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package localsigner

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"

	"github.com/rebeccacremona/go-wacz/lib/signer"
	"github.com/rebeccacremona/go-wacz/lib/version"
)

const hkdfInfo = "go-wacz localsigner ed25519 v1"

// Signer signs datapackage digests with an Ed25519 keypair derived
// deterministically from a seed, producing anonymous-mode SignedData.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	software   string
}

// New derives an Ed25519 keypair from seed via HKDF-SHA256 and returns
// a Signer that signs with it. The same seed always yields the same
// keypair, making signed output reproducible for fixture-based tests.
func New(seed []byte, softwareName string) (*Signer, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("localsigner: seed must not be empty")
	}

	ed25519Seed, err := deriveEd25519Seed(seed)
	if err != nil {
		return nil, err
	}

	privateKey := ed25519.NewKeyFromSeed(ed25519Seed)
	publicKey, ok := privateKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("localsigner: derived public key has unexpected type")
	}

	return &Signer{
		privateKey: privateKey,
		publicKey:  publicKey,
		software:   version.Software(softwareName),
	}, nil
}

func deriveEd25519Seed(seed []byte) ([]byte, error) {
	kdf := hkdf.New(sha256.New, seed, nil, []byte(hkdfInfo))
	out := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, fmt.Errorf("localsigner: deriving ed25519 seed: %w", err)
	}
	return out, nil
}

// NewFromSealedIdentity unseals an identity file written by
// WriteSealedIdentity with passphrase, and derives a Signer from the
// recovered seed.
func NewFromSealedIdentity(path, passphrase, softwareName string) (*Signer, error) {
	ciphertext, err := ReadSealedIdentity(path)
	if err != nil {
		return nil, fmt.Errorf("localsigner: reading sealed identity %s: %w", path, err)
	}

	seed, err := UnsealSeed(ciphertext, passphrase)
	if err != nil {
		return nil, err
	}
	defer seed.Close()

	return New(seed.Bytes(), softwareName)
}

// PublicKey returns the base64-encoded Ed25519 public key this Signer
// signs with, for operators who want to publish or compare it out of
// band.
func (s *Signer) PublicKey() string {
	return base64.StdEncoding.EncodeToString(s.publicKey)
}

// PublicKeyBytes returns the raw Ed25519 public key bytes, for
// callers (such as Fingerprint) that want to derive a shorter
// operator-facing reference rather than the full base64 key.
func (s *Signer) PublicKeyBytes() []byte {
	return s.publicKey
}

// Fingerprint returns a short, human-comparable reference for an
// Ed25519 public key: "sig-" followed by the hex encoding of the
// first 6 bytes of the key's BLAKE3 digest, rather than a truncation
// of the key itself.
func Fingerprint(publicKey []byte) string {
	hasher := blake3.New()
	hasher.Write(publicKey)
	sum := hasher.Sum(nil)
	return "sig-" + hex.EncodeToString(sum[:6])
}

// Sign implements signer.Signer. It never blocks, but still honors
// ctx cancellation before doing any work, matching the interface's
// contract for collaborators that might.
func (s *Signer) Sign(ctx context.Context, hash, created string) (signer.SignedData, error) {
	if err := ctx.Err(); err != nil {
		return signer.SignedData{}, err
	}

	payload := hash + "\n" + created
	signature := ed25519.Sign(s.privateKey, []byte(payload))

	return signer.SignedData{
		Hash:      hash,
		Created:   created,
		Software:  s.software,
		Signature: base64.StdEncoding.EncodeToString(signature),
		AnonymousMode: &signer.AnonymousMode{
			PublicKey: s.PublicKey(),
		},
	}, nil
}

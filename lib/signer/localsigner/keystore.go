// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package localsigner

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"

	"github.com/rebeccacremona/go-wacz/lib/secret"
)

// SealSeed encrypts seed under a passphrase using age's scrypt-based
// passphrase recipient, returning ciphertext suitable for writing to
// an identity file on disk.
func SealSeed(seed []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("localsigner: creating passphrase recipient: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return nil, fmt.Errorf("localsigner: creating age encryptor: %w", err)
	}
	if _, err := writer.Write(seed); err != nil {
		return nil, fmt.Errorf("localsigner: sealing seed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("localsigner: finalizing sealed seed: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// UnsealSeed decrypts ciphertext produced by SealSeed using the given
// passphrase. The returned seed is held in mmap-backed memory outside
// the Go heap; the caller must Close it when done.
func UnsealSeed(ciphertext []byte, passphrase string) (*secret.Buffer, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("localsigner: creating passphrase identity: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("localsigner: unsealing seed: %w", err)
	}

	seed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("localsigner: reading unsealed seed: %w", err)
	}

	buffer, err := secret.NewFromBytes(seed)
	if err != nil {
		return nil, fmt.Errorf("localsigner: protecting unsealed seed: %w", err)
	}
	return buffer, nil
}

// WriteSealedIdentity writes ciphertext produced by SealSeed to path.
// A new file is created with mode 0600; an existing file is
// overwritten and keeps its current permissions.
func WriteSealedIdentity(path string, ciphertext []byte) error {
	return os.WriteFile(path, ciphertext, 0600)
}

// ReadSealedIdentity reads back an identity file written by
// WriteSealedIdentity.
func ReadSealedIdentity(path string) ([]byte, error) {
	return os.ReadFile(path)
}

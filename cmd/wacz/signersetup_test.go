// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rebeccacremona/go-wacz/lib/signer/localsigner"
)

func TestReadPassphraseFromEnv(t *testing.T) {
	t.Setenv("WACZ_TEST_PASSPHRASE", "correct-horse-battery-staple")

	passphrase, err := readPassphrase("WACZ_TEST_PASSPHRASE")
	if err != nil {
		t.Fatalf("readPassphrase: %v", err)
	}
	defer passphrase.Close()

	if passphrase.String() != "correct-horse-battery-staple" {
		t.Errorf("passphrase = %q, want %q", passphrase.String(), "correct-horse-battery-staple")
	}
}

func TestReadPassphraseFromUnsetEnv(t *testing.T) {
	if _, err := readPassphrase("WACZ_TEST_PASSPHRASE_UNSET"); err == nil {
		t.Fatal("expected an error for an unset environment variable")
	}
}

func TestRunSignerSetupWritesSealedIdentity(t *testing.T) {
	dir := t.TempDir()
	identityPath := filepath.Join(dir, "identity.age")

	t.Setenv("WACZ_TEST_SETUP_PASSPHRASE", "setup-passphrase")

	code := runSignerSetup([]string{
		"--identity", identityPath,
		"--passphrase-env", "WACZ_TEST_SETUP_PASSPHRASE",
	})
	if code != 0 {
		t.Fatalf("runSignerSetup exit code = %d, want 0", code)
	}
	if _, err := os.Stat(identityPath); err != nil {
		t.Fatalf("identity file not written: %v", err)
	}

	s, err := localsigner.NewFromSealedIdentity(identityPath, "setup-passphrase", softwareName)
	if err != nil {
		t.Fatalf("NewFromSealedIdentity: %v", err)
	}
	if s.PublicKey() == "" {
		t.Error("derived signer has an empty public key")
	}
}

func TestRunSignerSetupRequiresIdentityFlag(t *testing.T) {
	code := runSignerSetup([]string{"--passphrase-env", "WACZ_TEST_SETUP_PASSPHRASE"})
	if code == 0 {
		t.Error("expected a non-zero exit code when --identity is missing")
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/rebeccacremona/go-wacz/lib/secret"
	"github.com/rebeccacremona/go-wacz/lib/signer/localsigner"
)

// runSignerSetup generates a fresh local-signer identity (a random
// Ed25519 HKDF seed) and writes it to disk sealed under an
// operator-supplied passphrase, so a long-lived local signing key
// never touches disk as plaintext.
func runSignerSetup(args []string) int {
	flagSet := pflag.NewFlagSet("wacz signer-setup", pflag.ContinueOnError)

	var identityPath string
	var passphraseEnv string
	flagSet.StringVar(&identityPath, "identity", "", "path to write the sealed identity file (required)")
	flagSet.StringVar(&passphraseEnv, "passphrase-env", "", "read the sealing passphrase from this environment variable instead of prompting")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "wacz signer-setup: %v\n", err)
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.PrintDefaults()
		return 0
	}
	if identityPath == "" {
		fmt.Fprintln(os.Stderr, "wacz signer-setup: --identity is required")
		return 2
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		fmt.Fprintf(os.Stderr, "wacz signer-setup: generating seed: %v\n", err)
		return 1
	}

	passphrase, err := readPassphrase(passphraseEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wacz signer-setup: %v\n", err)
		return 1
	}
	defer passphrase.Close()

	ciphertext, err := localsigner.SealSeed(seed, passphrase.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "wacz signer-setup: %v\n", err)
		return 1
	}
	if err := localsigner.WriteSealedIdentity(identityPath, ciphertext); err != nil {
		fmt.Fprintf(os.Stderr, "wacz signer-setup: writing identity: %v\n", err)
		return 1
	}

	signer, err := localsigner.New(seed, softwareName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wacz signer-setup: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Identity written to %s\n", identityPath)
	fmt.Fprintf(os.Stderr, "Public key (anonymous mode): %s\n", signer.PublicKey())
	fmt.Fprintf(os.Stderr, "Fingerprint: %s\n", localsigner.Fingerprint(signer.PublicKeyBytes()))
	return 0
}

// readPassphrase reads the sealing passphrase from the named
// environment variable, or, if env is empty, prompts interactively on
// the controlling terminal with echo disabled and asks for
// confirmation, matching cmd/bureau/cli/login.go's password-entry flow
// for operator-supplied secrets.
func readPassphrase(env string) (*secret.Buffer, error) {
	if env != "" {
		value := os.Getenv(env)
		if value == "" {
			return nil, fmt.Errorf("environment variable %s is not set", env)
		}
		return secret.NewFromBytes([]byte(value))
	}

	stdinFD := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFD) {
		return nil, fmt.Errorf("no terminal available for an interactive passphrase prompt (use --passphrase-env)")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(stdinFD)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(stdinFD)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase confirmation: %w", err)
	}
	if string(first) != string(second) {
		return nil, fmt.Errorf("passphrases do not match")
	}

	return secret.NewFromBytes(first)
}

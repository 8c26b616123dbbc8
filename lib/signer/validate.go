// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package signer

import (
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var hashPattern = regexp.MustCompile(`^sha256:[0-9a-f]{64}$`)

// ValidateSignedData enforces the WACZ signature-format assertion: the
// shared fields are well-formed, and exactly one of AnonymousMode or
// DomainIdentifiedMode is present with all of its fields populated.
func ValidateSignedData(sd SignedData) error {
	if !hashPattern.MatchString(sd.Hash) {
		return fmt.Errorf("signer: hash %q is not \"sha256:\"+64 hex digits", sd.Hash)
	}
	if _, err := time.Parse(time.RFC3339, sd.Created); err != nil {
		return fmt.Errorf("signer: created %q is not a valid ISO-8601 timestamp: %w", sd.Created, err)
	}
	if strings.TrimSpace(sd.Software) == "" {
		return fmt.Errorf("signer: software must be non-empty")
	}
	if _, err := base64.StdEncoding.DecodeString(sd.Signature); err != nil {
		return fmt.Errorf("signer: signature is not valid base64: %w", err)
	}

	anonymous := sd.AnonymousMode != nil
	domainIdentified := sd.DomainIdentifiedMode != nil

	switch {
	case anonymous && domainIdentified:
		return fmt.Errorf("signer: exactly one of anonymous or domain-identified mode required, got both")
	case anonymous:
		if err := validateAnonymousMode(sd.AnonymousMode); err != nil {
			return err
		}
	case domainIdentified:
		if err := validateDomainIdentifiedMode(sd.DomainIdentifiedMode); err != nil {
			return err
		}
	default:
		return fmt.Errorf("signer: exactly one of anonymous or domain-identified mode required, got neither")
	}

	if sd.CrossSignedCert != "" {
		if !isPEM(sd.CrossSignedCert) {
			return fmt.Errorf("signer: crossSignedCert is not a valid PEM certificate chain")
		}
	}

	return nil
}

func validateAnonymousMode(mode *AnonymousMode) error {
	if strings.TrimSpace(mode.PublicKey) == "" {
		return fmt.Errorf("signer: anonymous mode requires a non-empty publicKey")
	}
	if _, err := base64.StdEncoding.DecodeString(mode.PublicKey); err != nil {
		return fmt.Errorf("signer: publicKey is not valid base64: %w", err)
	}
	return nil
}

func validateDomainIdentifiedMode(mode *DomainIdentifiedMode) error {
	if strings.TrimSpace(mode.Domain) == "" {
		return fmt.Errorf("signer: domain-identified mode requires a non-empty domain")
	}
	if !isPEM(mode.DomainCert) {
		return fmt.Errorf("signer: domainCert is not a valid PEM certificate chain")
	}
	if _, err := base64.StdEncoding.DecodeString(mode.TimeSignature); err != nil {
		return fmt.Errorf("signer: timeSignature is not valid base64: %w", err)
	}
	if !isPEM(mode.TimestampCert) {
		return fmt.Errorf("signer: timestampCert is not a valid PEM certificate chain")
	}
	return nil
}

func isPEM(chain string) bool {
	block, rest := pem.Decode([]byte(chain))
	if block == nil {
		return false
	}
	for len(rest) > 0 {
		var next *pem.Block
		next, rest = pem.Decode(rest)
		if next == nil {
			return false
		}
	}
	return true
}

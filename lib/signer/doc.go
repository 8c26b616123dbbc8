// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package signer defines the signing collaborator the orchestrator
// calls to attest a datapackage's hash, and the WACZ signature-format
// assertions a collaborator's response must satisfy before it is
// embedded in datapackage-digest.json.
//
// The package itself has no signing implementation: see
// lib/signer/localsigner for a reference implementation suitable for
// development and tests, and cmd/wacz/httpsigner for the canonical
// HTTP-based implementation.
package signer

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package datapackage builds the WACZ manifest, datapackage.json, and
// its companion digest file, datapackage-digest.json.
//
// Both are serialized with stdlib encoding/json at two-space
// indentation: the manifest is a human-diffable external artifact
// with a fixed field order coming from a struct, not a map, so
// encoding/json's deterministic struct-field ordering already gives
// the stability the format requires.
package datapackage

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package idgen provides an injectable identifier generator, mirroring
// the way lib/clock injects time so that a run can be made
// byte-reproducible in tests (see the "Determinism" design note: an
// injected clock and a deterministic ID generator).
//
// PageEntry.id is the only identifier this indexer mints itself (every
// other identifier in a WACZ — WARC-Record-ID, content digests — comes
// from the input or is computed, not generated). Production code uses
// [Real], which wraps github.com/google/uuid; tests use [Fake] for a
// deterministic, counter-derived sequence.
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator mints page identifiers: 32 lowercase hex characters with no
// delimiters, per the PageEntry.id format.
type Generator interface {
	// NewID returns a fresh 32-hex-character identifier.
	NewID() string
}

// Real returns a Generator backed by random (version 4) UUIDs.
func Real() Generator {
	return realGenerator{}
}

type realGenerator struct{}

func (realGenerator) NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Fake returns a deterministic Generator for tests. Each call to NewID
// returns the next value in a counter-derived sequence, formatted as
// 32 hex characters, so that two runs seeded with the same starting
// value produce byte-identical PageEntry.id sequences.
func Fake(seed uint64) Generator {
	g := &fakeGenerator{}
	g.counter.Store(seed)
	return g
}

type fakeGenerator struct {
	counter atomic.Uint64
}

func (g *fakeGenerator) NewID() string {
	n := g.counter.Add(1)
	return fmt.Sprintf("%032x", n)
}

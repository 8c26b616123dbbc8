// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wacz

import (
	"log/slog"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/clock"
	"github.com/rebeccacremona/go-wacz/lib/idgen"
	"github.com/rebeccacremona/go-wacz/lib/pages"
	"github.com/rebeccacremona/go-wacz/lib/signer"
)

// Run is a configured, one-shot WACZ assembly: build one with New, add
// any manual pages with AddPage, then call Process exactly once.
//
// Run's unexported fields double as its RunState: ready is set at
// construction, detectPages is forced false by AddPage, and
// oneShotConsumed/datapackageDate are mutated only inside Process.
type Run struct {
	inputs        []string
	output        string
	detectPages   bool
	mainPageURL   string
	mainPageDate  string
	title         string
	description   string
	extras        any
	signer        signer.Signer
	signerTimeout time.Duration
	log           *slog.Logger
	clock         clock.Clock
	idgen         idgen.Generator

	ready bool

	oneShotConsumed bool
	datapackageDate string

	manualPages []pages.Page
}

// AddPage records a manually supplied page, bypassing heuristic
// detection for it. Calling AddPage at all disables heuristic
// detection for the remainder of the run, regardless of how Config.DetectPages
// was set — a caller who is telling this Run about pages is assumed to
// want to tell it about all of them.
func (r *Run) AddPage(p pages.Page) {
	r.detectPages = false
	r.manualPages = append(r.manualPages, p)
}

// DatapackageDate returns the "created" timestamp recorded in the
// finished run's datapackage, or "" if Process has not completed.
func (r *Run) DatapackageDate() string {
	return r.datapackageDate
}

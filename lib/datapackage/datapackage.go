// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datapackage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/version"
	"github.com/rebeccacremona/go-wacz/lib/waczwriter"
)

// waczVersion is the fixed WACZ specification version this manifest
// declares conformance to.
const waczVersion = "1.1.1"

// Datapackage is the manifest listing every entry written to a WACZ
// file, plus descriptive metadata about the collection as a whole.
type Datapackage struct {
	Created      string                       `json:"created"`
	WACZVersion  string                       `json:"wacz_version"`
	Software     string                       `json:"software"`
	Resources    []waczwriter.ResourceRecord  `json:"resources"`
	Title        string                       `json:"title"`
	Description  string                       `json:"description"`
	MainPageURL  string                       `json:"mainPageUrl,omitempty"`
	MainPageDate string                       `json:"mainPageDate,omitempty"`
	Extras       json.RawMessage              `json:"extras,omitempty"`
}

// Params holds the already-validated inputs for Build. URL and
// timestamp validation of mainPageUrl/mainPageDate happens upstream,
// in the orchestrator's config validation — Build trusts its caller.
type Params struct {
	Created      time.Time
	SoftwareName string
	Resources    []waczwriter.ResourceRecord
	Title        string
	Description  string
	MainPageURL  string
	MainPageDate string
	Extras       any
}

// Build assembles a Datapackage from Params, defaulting Title to
// "WACZ" and Description to the empty string per the manifest format.
func Build(p Params) (*Datapackage, error) {
	dp := &Datapackage{
		Created:      p.Created.UTC().Format(time.RFC3339),
		WACZVersion:  waczVersion,
		Software:     version.Software(p.SoftwareName),
		Resources:    p.Resources,
		Title:        defaultString(p.Title, "WACZ"),
		Description:  strings.TrimSpace(p.Description),
		MainPageURL:  p.MainPageURL,
		MainPageDate: p.MainPageDate,
	}

	if p.Extras != nil {
		raw, err := json.Marshal(p.Extras)
		if err != nil {
			return nil, fmt.Errorf("datapackage: marshaling extras: %w", err)
		}
		dp.Extras = raw
	}

	return dp, nil
}

func defaultString(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

// Marshal serializes the manifest as two-space-indented JSON, the
// exact byte sequence written into datapackage.json.
func (d *Datapackage) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

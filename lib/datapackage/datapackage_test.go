// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package datapackage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/waczwriter"
)

func TestBuildDefaultsTitleAndDescription(t *testing.T) {
	dp, err := Build(Params{
		Created:      time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC),
		SoftwareName: "go-wacz",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if dp.Title != "WACZ" {
		t.Errorf("Title = %q, want %q", dp.Title, "WACZ")
	}
	if dp.Description != "" {
		t.Errorf("Description = %q, want empty", dp.Description)
	}
	if dp.WACZVersion != "1.1.1" {
		t.Errorf("WACZVersion = %q, want %q", dp.WACZVersion, "1.1.1")
	}
	if !strings.HasPrefix(dp.Software, "go-wacz ") {
		t.Errorf("Software = %q, want prefix %q", dp.Software, "go-wacz ")
	}
	if dp.Created != "2026-08-06T12:00:00Z" {
		t.Errorf("Created = %q, want %q", dp.Created, "2026-08-06T12:00:00Z")
	}
}

func TestBuildTrimsTitleAndDescription(t *testing.T) {
	dp, err := Build(Params{
		Created:     time.Now(),
		Title:       "  My Collection  ",
		Description: "  a description  ",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if dp.Title != "My Collection" {
		t.Errorf("Title = %q, want %q", dp.Title, "My Collection")
	}
	if dp.Description != "a description" {
		t.Errorf("Description = %q, want %q", dp.Description, "a description")
	}
}

func TestBuildCarriesResourcesInOrder(t *testing.T) {
	resources := []waczwriter.ResourceRecord{
		{Name: "index.cdx.gz", Path: "indexes/index.cdx.gz", Hash: "sha256:aa", Bytes: 10},
		{Name: "pages.jsonl", Path: "pages/pages.jsonl", Hash: "sha256:bb", Bytes: 20},
	}
	dp, err := Build(Params{Created: time.Now(), Resources: resources})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(dp.Resources) != 2 || dp.Resources[0].Path != resources[0].Path || dp.Resources[1].Path != resources[1].Path {
		t.Errorf("Resources = %+v, want %+v in the same order", dp.Resources, resources)
	}
}

func TestBuildCarriesMainPageFields(t *testing.T) {
	dp, err := Build(Params{
		Created:      time.Now(),
		MainPageURL:  "https://example.com/",
		MainPageDate: "2026-08-06T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if dp.MainPageURL != "https://example.com/" {
		t.Errorf("MainPageURL = %q", dp.MainPageURL)
	}
	if dp.MainPageDate != "2026-08-06T00:00:00Z" {
		t.Errorf("MainPageDate = %q", dp.MainPageDate)
	}
}

func TestBuildOmitsAbsentMainPageFields(t *testing.T) {
	dp, err := Build(Params{Created: time.Now()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	marshaled, err := dp.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(marshaled), "mainPageUrl") {
		t.Error("mainPageUrl should be omitted when absent")
	}
	if strings.Contains(string(marshaled), "mainPageDate") {
		t.Error("mainPageDate should be omitted when absent")
	}
	if strings.Contains(string(marshaled), "extras") {
		t.Error("extras should be omitted when absent")
	}
}

func TestBuildMarshalsExtras(t *testing.T) {
	dp, err := Build(Params{
		Created: time.Now(),
		Extras:  map[string]any{"collectedBy": "archivist"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	marshaled, err := dp.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var roundTrip map[string]any
	if err := json.Unmarshal(marshaled, &roundTrip); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	extras, ok := roundTrip["extras"].(map[string]any)
	if !ok {
		t.Fatalf("extras missing or wrong type: %#v", roundTrip["extras"])
	}
	if extras["collectedBy"] != "archivist" {
		t.Errorf("extras.collectedBy = %v, want %q", extras["collectedBy"], "archivist")
	}
}

func TestBuildRejectsUnmarshalableExtras(t *testing.T) {
	_, err := Build(Params{Created: time.Now(), Extras: func() {}})
	if err == nil {
		t.Fatal("expected an error for extras that cannot be marshaled")
	}
}

func TestMarshalIsTwoSpaceIndented(t *testing.T) {
	dp, err := Build(Params{Created: time.Now()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	marshaled, err := dp.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(marshaled), "\n  \"created\"") {
		t.Errorf("expected two-space indentation, got:\n%s", marshaled)
	}
}

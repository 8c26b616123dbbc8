// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wacz

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/clock"
	"github.com/rebeccacremona/go-wacz/lib/idgen"
	"github.com/rebeccacremona/go-wacz/lib/pages"
	"github.com/rebeccacremona/go-wacz/lib/signer"
	"github.com/rebeccacremona/go-wacz/lib/warctest"
)

// openWACZ reads the ZIP at path and returns its entries by name.
func openWACZ(t *testing.T, path string) map[string][]byte {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening wacz: %v", err)
	}
	defer reader.Close()

	entries := make(map[string][]byte)
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading entry %s: %v", f.Name, err)
		}
		entries[f.Name] = data
	}
	return entries
}

func canonicalEntryNames(entries map[string][]byte) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	return names
}

// scenario 1: empty but valid input.
func TestProcess_EmptyValidInput(t *testing.T) {
	dir := t.TempDir()
	warcPath := filepath.Join(dir, "empty.warc.gz")
	if err := warctest.NewFile().
		Add(warctest.Warcinfo(warctest.RecordID(1), "2023-02-22T12:00:00Z")).
		WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	outPath := filepath.Join(dir, "out.wacz")
	run, err := New(Config{
		Inputs: []string{warcPath},
		Output: outPath,
		Log:    testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := run.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries := openWACZ(t, outPath)
	for _, want := range []string{
		"indexes/index.cdx.gz",
		"indexes/index.idx",
		"pages/pages.jsonl",
		"archive/empty.warc.gz",
		"datapackage.json",
		"datapackage-digest.json",
	} {
		if _, ok := entries[want]; !ok {
			t.Errorf("missing entry %s (have %v)", want, canonicalEntryNames(entries))
		}
	}

	if len(entries["indexes/index.cdx.gz"]) != 0 {
		t.Errorf("index.cdx.gz should be empty, got %d bytes", len(entries["indexes/index.cdx.gz"]))
	}
	wantIDX := `!meta 0 {"format": "cdxj-gzip-1.0", "filename": "index.cdx.gz"}` + "\n"
	if string(entries["indexes/index.idx"]) != wantIDX {
		t.Errorf("index.idx = %q, want %q", entries["indexes/index.idx"], wantIDX)
	}
	if string(entries["pages/pages.jsonl"]) != pagesHeader {
		t.Errorf("pages.jsonl = %q, want only the header line", entries["pages/pages.jsonl"])
	}
}

// scenario 2: single response.
func TestProcess_SingleResponse(t *testing.T) {
	dir := t.TempDir()
	warcPath := filepath.Join(dir, "single.warc.gz")
	body := []byte("<html><head><title>Example</title></head><body>hi</body></html>")
	if err := warctest.NewFile().
		Add(warctest.Warcinfo(warctest.RecordID(1), "2023-02-22T12:00:00Z")).
		Add(warctest.Response(warctest.RecordID(2), "https://example.com/", "2023-02-22T12:00:00Z", 200, "text/html", body)).
		WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	outPath := filepath.Join(dir, "out.wacz")
	run, err := New(Config{
		Inputs: []string{warcPath},
		Output: outPath,
		Log:    testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := run.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries := openWACZ(t, outPath)
	cdxLines := decompressGzip(t, entries["indexes/index.cdx.gz"])
	lines := splitLines(cdxLines)
	if len(lines) != 1 {
		t.Fatalf("want 1 cdxj line, got %d: %q", len(lines), lines)
	}
	const wantPrefix = `com,example)/ 20230222120000 {"url":"https://example.com/",`
	if !bytesHasPrefix([]byte(lines[0]), wantPrefix) {
		t.Errorf("cdxj line = %q, want prefix %q", lines[0], wantPrefix)
	}

	pageLines := splitLines(trimHeader(t, entries["pages/pages.jsonl"]))
	if len(pageLines) != 1 {
		t.Fatalf("want 1 page, got %d: %q", len(pageLines), pageLines)
	}
	var page pages.PageEntry
	if err := json.Unmarshal([]byte(pageLines[0]), &page); err != nil {
		t.Fatalf("unmarshaling page: %v", err)
	}
	if page.URL != "https://example.com/" {
		t.Errorf("page.URL = %q, want https://example.com/", page.URL)
	}
}

// scenario 3: shard boundary.
func TestProcess_ShardBoundary(t *testing.T) {
	dir := t.TempDir()
	warcPath := filepath.Join(dir, "many.warc.gz")

	file := warctest.NewFile().Add(warctest.Warcinfo(warctest.RecordID(0), "2023-02-22T12:00:00Z"))
	const n = 3001
	for i := 0; i < n; i++ {
		url := formatURL(i)
		file.Add(warctest.Response(warctest.RecordID(i+1), url, "2023-02-22T12:00:00Z", 200, "text/html", []byte("x")))
	}
	if err := file.WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	outPath := filepath.Join(dir, "out.wacz")
	run, err := New(Config{
		Inputs:      []string{warcPath},
		Output:      outPath,
		DetectPages: boolPtr(false),
		Log:         testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := run.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries := openWACZ(t, outPath)
	idxLines := splitLines(string(entries["indexes/index.idx"]))
	// !meta header + one line per shard.
	if len(idxLines) != 3 {
		t.Fatalf("want !meta + 2 shard lines, got %d: %q", len(idxLines), idxLines)
	}

	var meta1, meta2 struct {
		Offset int64 `json:"offset"`
		Length int64 `json:"length"`
	}
	if err := json.Unmarshal([]byte(jsonPartOf(idxLines[1])), &meta1); err != nil {
		t.Fatalf("unmarshaling shard 1 idx line: %v", err)
	}
	if err := json.Unmarshal([]byte(jsonPartOf(idxLines[2])), &meta2); err != nil {
		t.Fatalf("unmarshaling shard 2 idx line: %v", err)
	}
	if meta2.Offset != meta1.Offset+meta1.Length {
		t.Errorf("offset_2 (%d) != length_1 (%d) + offset_1 (%d)", meta2.Offset, meta1.Length, meta1.Offset)
	}

	gzLines := splitLines(decompressMultistream(t, entries["indexes/index.cdx.gz"]))
	if len(gzLines) != n {
		t.Errorf("want %d total cdxj lines across shards, got %d", n, len(gzLines))
	}
}

// scenario 4: manual page disables detection.
func TestProcess_ManualPage(t *testing.T) {
	dir := t.TempDir()
	warcPath := filepath.Join(dir, "single.warc.gz")
	body := []byte("<html><head><title>Detected</title></head><body>hi</body></html>")
	if err := warctest.NewFile().
		Add(warctest.Warcinfo(warctest.RecordID(1), "2023-02-22T12:00:00Z")).
		Add(warctest.Response(warctest.RecordID(2), "https://should-not-appear.example/", "2023-02-22T12:00:00Z", 200, "text/html", body)).
		WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	outPath := filepath.Join(dir, "out.wacz")
	run, err := New(Config{
		Inputs: []string{warcPath},
		Output: outPath,
		Log:    testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	run.AddPage(pages.Page{URL: "https://a/", Title: "A"})

	if err := run.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries := openWACZ(t, outPath)
	pageLines := splitLines(trimHeader(t, entries["pages/pages.jsonl"]))
	if len(pageLines) != 1 {
		t.Fatalf("want exactly 1 page, got %d: %q", len(pageLines), pageLines)
	}
	var page pages.PageEntry
	if err := json.Unmarshal([]byte(pageLines[0]), &page); err != nil {
		t.Fatalf("unmarshaling page: %v", err)
	}
	if page.URL != "https://a/" || page.Title != "A" {
		t.Errorf("page = %+v, want {URL: https://a/, Title: A}", page)
	}
}

// scenario 5: signing, valid and invalid.
func TestProcess_Signing(t *testing.T) {
	dir := t.TempDir()
	warcPath := filepath.Join(dir, "single.warc.gz")
	if err := warctest.NewFile().
		Add(warctest.Warcinfo(warctest.RecordID(1), "2023-02-22T12:00:00Z")).
		WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	t.Run("valid", func(t *testing.T) {
		outPath := filepath.Join(dir, "valid.wacz")
		run, err := New(Config{
			Inputs: []string{warcPath},
			Output: outPath,
			Signer: anonymousSigner{},
			Log:    testLogger(),
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := run.Process(context.Background()); err != nil {
			t.Fatalf("Process: %v", err)
		}

		entries := openWACZ(t, outPath)
		var digest struct {
			SignedData signer.SignedData `json:"signedData"`
		}
		if err := json.Unmarshal(entries["datapackage-digest.json"], &digest); err != nil {
			t.Fatalf("unmarshaling digest: %v", err)
		}
		if err := signer.ValidateSignedData(digest.SignedData); err != nil {
			t.Errorf("round-tripped SignedData failed validation: %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		outPath := filepath.Join(dir, "invalid.wacz")
		run, err := New(Config{
			Inputs: []string{warcPath},
			Output: outPath,
			Signer: brokenSigner{},
			Log:    testLogger(),
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		err = run.Process(context.Background())
		if !Is(err, SignatureInvalid) {
			t.Fatalf("Process error = %v, want SignatureInvalid", err)
		}
		if _, statErr := os.Stat(outPath); statErr == nil {
			t.Errorf("output file %s should have been removed after failure", outPath)
		}
	})
}

// scenario 6: config validation.
func TestNew_ConfigValidation(t *testing.T) {
	dir := t.TempDir()

	_, err := New(Config{Output: filepath.Join(dir, "x.wacz")})
	if !Is(err, ConfigInvalid) {
		t.Errorf("missing inputs: error = %v, want ConfigInvalid", err)
	}

	_, err = New(Config{Inputs: []string{"nope.txt"}, Output: filepath.Join(dir, "x.wacz")})
	if !Is(err, InputNotFound) {
		t.Errorf("empty filtered inputs: error = %v, want InputNotFound", err)
	}

	warcPath := filepath.Join(dir, "single.warc.gz")
	if err := warctest.NewFile().
		Add(warctest.Warcinfo(warctest.RecordID(1), "2023-02-22T12:00:00Z")).
		WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	run, err := New(Config{Inputs: []string{warcPath}, Output: filepath.Join(dir, "out.wacz"), Log: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := run.Process(context.Background()); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if err := run.Process(context.Background()); !Is(err, AlreadyConsumed) {
		t.Errorf("second Process: error = %v, want AlreadyConsumed", err)
	}
}

// I3/I5: resource records match what was actually written, and
// archive entries round-trip byte-identically.
func TestProcess_ResourceRecordsAndRoundTrip(t *testing.T) {
	dir := t.TempDir()
	warcPath := filepath.Join(dir, "single.warc.gz")
	body := []byte("<html><title>T</title></html>")
	if err := warctest.NewFile().
		Add(warctest.Warcinfo(warctest.RecordID(1), "2023-02-22T12:00:00Z")).
		Add(warctest.Response(warctest.RecordID(2), "https://example.com/", "2023-02-22T12:00:00Z", 200, "text/html", body)).
		WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	wantBytes, err := os.ReadFile(warcPath)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	outPath := filepath.Join(dir, "out.wacz")
	run, err := New(Config{Inputs: []string{warcPath}, Output: outPath, Log: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := run.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries := openWACZ(t, outPath)
	if !bytes.Equal(entries["archive/single.warc.gz"], wantBytes) {
		t.Errorf("archive/single.warc.gz not byte-identical to input")
	}

	var dp struct {
		Resources []struct {
			Name  string `json:"name"`
			Path  string `json:"path"`
			Hash  string `json:"hash"`
			Bytes int64  `json:"bytes"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(entries["datapackage.json"], &dp); err != nil {
		t.Fatalf("unmarshaling datapackage: %v", err)
	}
	for _, r := range dp.Resources {
		data, ok := entries[r.Path]
		if !ok {
			t.Fatalf("resource %s not present in archive", r.Path)
		}
		sum := sha256.Sum256(data)
		wantHash := "sha256:" + hex.EncodeToString(sum[:])
		if r.Hash != wantHash {
			t.Errorf("resource %s hash = %s, want %s", r.Path, r.Hash, wantHash)
		}
		if r.Bytes != int64(len(data)) {
			t.Errorf("resource %s bytes = %d, want %d", r.Path, r.Bytes, len(data))
		}
	}

	// I4: digest hash matches datapackage.json's exact bytes.
	var digest struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(entries["datapackage-digest.json"], &digest); err != nil {
		t.Fatalf("unmarshaling digest: %v", err)
	}
	sum := sha256.Sum256(entries["datapackage.json"])
	wantHash := "sha256:" + hex.EncodeToString(sum[:])
	if digest.Hash != wantHash {
		t.Errorf("digest.Hash = %s, want %s", digest.Hash, wantHash)
	}
}

// I6: idempotence under a fixed clock and deterministic ID generator.
func TestProcess_Idempotence(t *testing.T) {
	dir := t.TempDir()
	warcPath := filepath.Join(dir, "single.warc.gz")
	body := []byte("<html><title>T</title></html>")
	if err := warctest.NewFile().
		Add(warctest.Warcinfo(warctest.RecordID(1), "2023-02-22T12:00:00Z")).
		Add(warctest.Response(warctest.RecordID(2), "https://example.com/", "2023-02-22T12:00:00Z", 200, "text/html", body)).
		WriteGzip(warcPath); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	runOnce := func(outPath string) []byte {
		run, err := New(Config{
			Inputs:      []string{warcPath},
			Output:      outPath,
			Clock:       clock.Fake(fixedTime),
			IDGenerator: idgen.Fake(0),
			Log:         testLogger(),
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := run.Process(context.Background()); err != nil {
			t.Fatalf("Process: %v", err)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		return data
	}

	out1 := runOnce(filepath.Join(dir, "one.wacz"))
	out2 := runOnce(filepath.Join(dir, "two.wacz"))
	if !bytes.Equal(out1, out2) {
		t.Errorf("two runs with a fixed clock and ID generator produced different output")
	}
}

// --- helpers ---

type anonymousSigner struct{}

func (anonymousSigner) Sign(ctx context.Context, hash, created string) (signer.SignedData, error) {
	return signer.SignedData{
		Hash:          hash,
		Created:       created,
		Software:      "test-signer 1.0",
		Signature:     "c2lnbmF0dXJl",
		AnonymousMode: &signer.AnonymousMode{PublicKey: "cHVibGlja2V5"},
	}, nil
}

type brokenSigner struct{}

func (brokenSigner) Sign(ctx context.Context, hash, created string) (signer.SignedData, error) {
	return signer.SignedData{
		Hash:     hash,
		Created:  created,
		Software: "broken-signer 1.0",
		// Signature intentionally omitted/invalid, no mode populated.
	}, nil
}

func boolPtr(b bool) *bool { return &b }

func formatURL(i int) string {
	return "https://example.com/page" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func decompressGzip(t *testing.T, data []byte) string {
	t.Helper()
	if len(data) == 0 {
		return ""
	}
	return decompressMultistream(t, data)
}

func decompressMultistream(t *testing.T, data []byte) string {
	t.Helper()
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	reader.Multistream(true)
	out, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	return string(out)
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range bytes.SplitAfter([]byte(s), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		lines = append(lines, string(line))
	}
	return lines
}

func trimHeader(t *testing.T, pagesJSONL []byte) string {
	t.Helper()
	s := string(pagesJSONL)
	if !bytesHasPrefix([]byte(s), pagesHeader) {
		t.Fatalf("pages.jsonl missing header: %q", s)
	}
	return s[len(pagesHeader):]
}

func bytesHasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

func jsonPartOf(idxLine string) string {
	idx := bytes.IndexByte([]byte(idxLine), ' ')
	if idx < 0 {
		return ""
	}
	return idxLine[idx+1:]
}

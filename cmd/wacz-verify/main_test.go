// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

// fixture holds the variable parts of a test WACZ: the CDXJ lines of
// its single index shard and the bytes of its one archive resource.
// writeFixture turns it into a minimal, self-consistent WACZ-shaped
// ZIP in a temp file and returns that file's path.
type fixture struct {
	cdxLines    []string
	resourceTxt []byte
}

func writeFixture(t *testing.T, f fixture) string {
	t.Helper()

	var cdxGz bytes.Buffer
	gz := gzip.NewWriter(&cdxGz)
	for _, line := range f.cdxLines {
		if _, err := gz.Write([]byte(line)); err != nil {
			t.Fatalf("writing CDXJ line: %v", err)
		}
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	shardBytes := cdxGz.Bytes()
	shardDigest := sha256.Sum256(shardBytes)

	idxLine := `!meta 0 {"format": "cdxj-gzip-1.0", "filename": "index.cdx.gz"}` + "\n"
	idxLine += `com,example)/ {"offset": 0, "length": ` + itoa(len(shardBytes)) + `, "digest": "sha256:` + hex.EncodeToString(shardDigest[:]) + `", "filename": "index.cdx.gz"}` + "\n"

	resourceDigest := sha256.Sum256(f.resourceTxt)
	datapackage := []byte(`{
  "created": "2026-08-06T00:00:00Z",
  "wacz_version": "1.1.1",
  "software": "go-wacz/0.0.0-test",
  "resources": [
    {
      "name": "example.warc",
      "path": "archive/example.warc",
      "hash": "sha256:` + hex.EncodeToString(resourceDigest[:]) + `",
      "bytes": ` + itoa(len(f.resourceTxt)) + `
    }
  ],
  "title": "WACZ",
  "description": ""
}`)
	dpDigest := sha256.Sum256(datapackage)
	digestJSON := []byte(`{"path": "datapackage.json", "hash": "sha256:` + hex.EncodeToString(dpDigest[:]) + `"}`)

	dir := t.TempDir()
	path := filepath.Join(dir, "out.wacz")
	outFile, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture file: %v", err)
	}
	defer outFile.Close()

	zw := zip.NewWriter(outFile)
	writeEntry(t, zw, "indexes/index.cdx.gz", shardBytes)
	writeEntry(t, zw, "indexes/index.idx", []byte(idxLine))
	writeEntry(t, zw, "pages/pages.jsonl", nil)
	writeEntry(t, zw, "datapackage.json", datapackage)
	writeEntry(t, zw, "datapackage-digest.json", digestJSON)
	writeEntry(t, zw, "archive/example.warc", f.resourceTxt)
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}

	return path
}

func writeEntry(t *testing.T, zw *zip.Writer, name string, content []byte) {
	t.Helper()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		t.Fatalf("creating entry %s: %v", name, err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("writing entry %s: %v", name, err)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := make([]byte, 0, 20)
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestVerifyAcceptsAWellFormedBundle(t *testing.T) {
	path := writeFixture(t, fixture{
		cdxLines:    []string{"com,example)/ 20260806000000 {}\n"},
		resourceTxt: []byte("WARC/1.0\r\n\r\n"),
	})

	if failures := verify(path); len(failures) != 0 {
		t.Errorf("verify() = %v, want no failures", failures)
	}
}

func TestVerifyDetectsOutOfOrderCDXLines(t *testing.T) {
	path := writeFixture(t, fixture{
		cdxLines: []string{
			"com,example)/z 20260806000000 {}\n",
			"com,example)/a 20260806000000 {}\n",
		},
		resourceTxt: []byte("WARC/1.0\r\n\r\n"),
	})

	failures := verify(path)
	if len(failures) == 0 {
		t.Fatal("verify() = no failures, want at least one I1 violation")
	}
}

func TestVerifyDetectsTamperedResource(t *testing.T) {
	path := writeFixture(t, fixture{
		cdxLines:    []string{"com,example)/ 20260806000000 {}\n"},
		resourceTxt: []byte("WARC/1.0\r\n\r\n"),
	})

	// Overwrite the archived resource bytes in place, without updating
	// datapackage.json, to simulate on-disk corruption.
	corruptEntry(t, path, "archive/example.warc", []byte("tampered!!!!"))

	failures := verify(path)
	if len(failures) == 0 {
		t.Fatal("verify() = no failures, want at least one I3 violation")
	}
}

func TestVerifyDetectsDigestMismatch(t *testing.T) {
	path := writeFixture(t, fixture{
		cdxLines:    []string{"com,example)/ 20260806000000 {}\n"},
		resourceTxt: []byte("WARC/1.0\r\n\r\n"),
	})
	corruptEntry(t, path, "datapackage-digest.json", []byte(`{"path": "datapackage.json", "hash": "sha256:0000000000000000000000000000000000000000000000000000000000000000"}`))

	failures := verify(path)
	if len(failures) == 0 {
		t.Fatal("verify() = no failures, want at least one I4 violation")
	}
}

func TestVerifyReportsMissingFile(t *testing.T) {
	failures := verify(filepath.Join(t.TempDir(), "does-not-exist.wacz"))
	if len(failures) == 0 {
		t.Fatal("verify() on a missing file = no failures, want at least one")
	}
}

// corruptEntry rewrites the ZIP at path, replacing the content of the
// named entry with replacement while leaving every other entry as is.
// Since zip.Writer can't edit in place, this rebuilds the archive.
func corruptEntry(t *testing.T, path, name string, replacement []byte) {
	t.Helper()

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening fixture for corruption: %v", err)
	}

	type entry struct {
		name    string
		content []byte
	}
	var entries []entry
	for _, f := range reader.File {
		content, err := readEntry(f)
		if err != nil {
			t.Fatalf("reading entry %s: %v", f.Name, err)
		}
		entries = append(entries, entry{name: f.Name, content: content})
	}
	if err := reader.Close(); err != nil {
		t.Fatalf("closing fixture reader: %v", err)
	}

	outFile, err := os.Create(path)
	if err != nil {
		t.Fatalf("recreating fixture file: %v", err)
	}
	defer outFile.Close()

	zw := zip.NewWriter(outFile)
	for _, e := range entries {
		content := e.content
		if e.name == name {
			content = replacement
		}
		writeEntry(t, zw, e.name, content)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing rebuilt zip: %v", err)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wacz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/rebeccacremona/go-wacz/lib/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestRecord(headers [][2]string, payload string) []byte {
	var buf bytes.Buffer
	buf.WriteString("WARC/1.0\r\n")
	for _, header := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", header[0], header[1])
	}
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(payload))
	buf.WriteString("\r\n")
	buf.WriteString(payload)
	buf.WriteString("\r\n\r\n")
	return buf.Bytes()
}

func testResponseRecord(url, status, body string) []byte {
	httpPayload := fmt.Sprintf("HTTP/1.1 %s\r\nContent-Type: text/html\r\nContent-Length: %d\r\n\r\n%s", status, len(body), body)
	return buildTestRecord([][2]string{
		{"WARC-Type", "response"},
		{"WARC-Target-URI", url},
		{"WARC-Date", "2023-02-22T12:00:00Z"},
	}, httpPayload)
}

func writeTestWARC(t *testing.T, dir, name string, records [][]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer file.Close()
	for _, record := range records {
		gz := gzip.NewWriter(file)
		gz.Write(record)
		gz.Close()
	}
	return path
}

func TestIndexInputsMergesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	fileA := writeTestWARC(t, dir, "a.warc.gz", [][]byte{
		testResponseRecord("https://example.com/b", "200 OK", "<title>B</title>"),
	})
	fileB := writeTestWARC(t, dir, "b.warc.gz", [][]byte{
		testResponseRecord("https://example.com/a", "200 OK", "<title>A</title>"),
	})

	cdxLines, pageSet, err := indexInputs(context.Background(), []string{fileA, fileB}, true, testLogger())
	if err != nil {
		t.Fatalf("indexInputs: %v", err)
	}

	if cdxLines.Len() != 2 {
		t.Fatalf("cdxLines.Len() = %d, want 2", cdxLines.Len())
	}
	items := cdxLines.Items()
	if items[0] > items[1] {
		t.Errorf("lines not sorted: %q then %q", items[0], items[1])
	}

	if pageSet.Len() != 2 {
		t.Fatalf("pageSet.Len() = %d, want 2", pageSet.Len())
	}
}

func TestIndexInputsFirstWinsOnURLCollisionInInputOrder(t *testing.T) {
	dir := t.TempDir()
	fileA := writeTestWARC(t, dir, "a.warc.gz", [][]byte{
		testResponseRecord("https://example.com/", "200 OK", "<title>First</title>"),
	})
	fileB := writeTestWARC(t, dir, "b.warc.gz", [][]byte{
		testResponseRecord("https://example.com/", "200 OK", "<title>Second</title>"),
	})

	_, pageSet, err := indexInputs(context.Background(), []string{fileA, fileB}, true, testLogger())
	if err != nil {
		t.Fatalf("indexInputs: %v", err)
	}

	page, ok := pageSet.Get("https://example.com/")
	if !ok {
		t.Fatal("expected the page to be present")
	}
	if page.Title != "First" {
		t.Errorf("Title = %q, want the first input file's page to win", page.Title)
	}
}

func TestIndexInputsMalformedFileFailsRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.warc")
	os.WriteFile(path, []byte("WARC/1.0\r\nWARC-Type: warcinfo\r\nContent-Length: 100\r\n\r\nshort"), 0o644)

	_, _, err := indexInputs(context.Background(), []string{path}, false, testLogger())
	if err == nil {
		t.Fatal("expected an error for a malformed input file")
	}
	if !Is(err, IndexingFailed) {
		t.Errorf("error = %v, want an IndexingFailed wacz.Error", err)
	}
}

func TestIndexInputsManyFilesUsesWorkerPool(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		paths = append(paths, writeTestWARC(t, dir, fmt.Sprintf("f%d.warc.gz", i), [][]byte{
			testResponseRecord(url, "200 OK", "<title>T</title>"),
		}))
	}

	cdxLines, _, err := indexInputs(context.Background(), paths, false, testLogger())
	if err != nil {
		t.Fatalf("indexInputs: %v", err)
	}
	if cdxLines.Len() != 20 {
		t.Errorf("cdxLines.Len() = %d, want 20", cdxLines.Len())
	}
}

// TestIndexInputsReturnsPromptlyOnCancellation exercises the worker
// pool's cancellation wiring: with many inputs but a context cancelled
// up front, every worker and the dispatch goroutine should see
// workerCtx.Done() immediately rather than processing any job. The
// result is fetched through a channel with testutil.RequireReceive so
// that a regression in the cancellation plumbing fails the test
// promptly instead of hanging the suite.
func TestIndexInputsReturnsPromptlyOnCancellation(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		paths = append(paths, writeTestWARC(t, dir, fmt.Sprintf("f%d.warc.gz", i), [][]byte{
			testResponseRecord(url, "200 OK", "<title>T</title>"),
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	type outcome struct {
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		_, _, err := indexInputs(ctx, paths, false, testLogger())
		done <- outcome{err: err}
	}()

	result := testutil.RequireReceive(t, done, 5*time.Second, "indexInputs did not return after context cancellation")
	if result.err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if !Is(result.err, Cancelled) {
		t.Errorf("error = %v, want a Cancelled wacz.Error", result.err)
	}
}

func TestIndexInputsNoPageDetection(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWARC(t, dir, "a.warc.gz", [][]byte{
		testResponseRecord("https://example.com/", "200 OK", "<title>T</title>"),
	})

	_, pageSet, err := indexInputs(context.Background(), []string{path}, false, testLogger())
	if err != nil {
		t.Fatalf("indexInputs: %v", err)
	}
	if pageSet.Len() != 0 {
		t.Errorf("pageSet.Len() = %d, want 0 when detection is disabled", pageSet.Len())
	}
}

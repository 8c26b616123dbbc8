// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// wacz-verify exercises the read side of a produced WACZ bundle just
// far enough to check the core library's testable invariants (I1-I5)
// against a real file — it does not implement replay.
//
// Checks performed:
//
//	I1  index.cdx.gz decodes to strictly ascending, duplicate-free CDXJ lines
//	I2  every index.idx line addresses a valid gzip member in index.cdx.gz
//	I3  every resource's recorded hash/size matches the bytes actually stored
//	I4  datapackage-digest.json's hash matches datapackage.json's exact bytes
//	I5  archive/<basename> entries are present for every resource they claim
package main

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "usage: wacz-verify <path.wacz>")
		return 2
	}

	failures := verify(args[0])
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "FAIL: %s\n", failure)
	}
	if len(failures) == 0 {
		fmt.Printf("OK: %s\n", args[0])
		return 0
	}
	fmt.Fprintf(os.Stderr, "%d check(s) failed\n", len(failures))
	return 1
}

// verify opens path and returns a description of every failed check.
// An empty slice means every invariant held.
func verify(path string) []string {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return []string{fmt.Sprintf("opening %s: %v", path, err)}
	}
	defer reader.Close()

	entries := make(map[string]*zip.File)
	for _, f := range reader.File {
		entries[f.Name] = f
	}

	var failures []string
	failures = append(failures, checkRequiredEntries(entries)...)
	failures = append(failures, checkCDXOrdering(entries)...)
	failures = append(failures, checkIDXShards(entries)...)
	failures = append(failures, checkResourceHashes(entries)...)
	failures = append(failures, checkDigestHash(entries)...)
	return failures
}

func checkRequiredEntries(entries map[string]*zip.File) []string {
	var failures []string
	for _, name := range []string{
		"indexes/index.cdx.gz",
		"indexes/index.idx",
		"pages/pages.jsonl",
		"datapackage.json",
		"datapackage-digest.json",
	} {
		if _, ok := entries[name]; !ok {
			failures = append(failures, fmt.Sprintf("missing required entry %s", name))
		}
	}
	return failures
}

// checkCDXOrdering is I1: consecutive CDXJ lines are strictly
// ascending byte-lex with no duplicates.
func checkCDXOrdering(entries map[string]*zip.File) []string {
	cdxGz, ok := entries["indexes/index.cdx.gz"]
	if !ok {
		return nil
	}
	data, err := readEntry(cdxGz)
	if err != nil {
		return []string{fmt.Sprintf("I1: reading index.cdx.gz: %v", err)}
	}
	if len(data) == 0 {
		return nil
	}

	lines, err := decodeGzipLines(data)
	if err != nil {
		return []string{fmt.Sprintf("I1: %v", err)}
	}

	var failures []string
	for i := 1; i < len(lines); i++ {
		if lines[i-1] >= lines[i] {
			failures = append(failures, fmt.Sprintf(
				"I1: CDXJ line %d is not strictly greater than line %d (%q >= %q)",
				i, i-1, lines[i-1], lines[i]))
		}
	}
	return failures
}

// checkIDXShards is I2: every IDX line addresses a valid gzip member
// whose decompressed content is a non-empty sequence of
// newline-terminated CDXJ lines.
func checkIDXShards(entries map[string]*zip.File) []string {
	cdxGzFile, hasCdx := entries["indexes/index.cdx.gz"]
	idxFile, hasIdx := entries["indexes/index.idx"]
	if !hasCdx || !hasIdx {
		return nil
	}

	cdxGz, err := readEntry(cdxGzFile)
	if err != nil {
		return []string{fmt.Sprintf("I2: reading index.cdx.gz: %v", err)}
	}
	idxData, err := readEntry(idxFile)
	if err != nil {
		return []string{fmt.Sprintf("I2: reading index.idx: %v", err)}
	}

	idxLines := splitNonEmptyLines(string(idxData))
	if len(idxLines) == 0 {
		return []string{"I2: index.idx has no lines, want at least the !meta header"}
	}
	if !strings.HasPrefix(idxLines[0], "!meta ") {
		return []string{fmt.Sprintf("I2: index.idx's first line is not a !meta header: %q", idxLines[0])}
	}

	var failures []string
	for _, line := range idxLines[1:] {
		var meta struct {
			Offset int64  `json:"offset"`
			Length int64  `json:"length"`
			Digest string `json:"digest"`
		}
		parts := splitOnFirstSpace(line)
		if len(parts) != 2 {
			failures = append(failures, fmt.Sprintf("I2: malformed IDX line: %q", line))
			continue
		}
		if err := json.Unmarshal([]byte(parts[1]), &meta); err != nil {
			failures = append(failures, fmt.Sprintf("I2: parsing IDX metadata %q: %v", parts[1], err))
			continue
		}
		if meta.Offset < 0 || meta.Offset+meta.Length > int64(len(cdxGz)) {
			failures = append(failures, fmt.Sprintf("I2: IDX line %q addresses out-of-bounds range [%d, %d) of a %d-byte file", line, meta.Offset, meta.Offset+meta.Length, len(cdxGz)))
			continue
		}

		shard := cdxGz[meta.Offset : meta.Offset+meta.Length]
		sum := sha256.Sum256(shard)
		if wantDigest := "sha256:" + hex.EncodeToString(sum[:]); meta.Digest != wantDigest {
			failures = append(failures, fmt.Sprintf("I2: shard at offset %d: digest %s != computed %s", meta.Offset, meta.Digest, wantDigest))
		}

		shardLines, err := decodeGzipLines(shard)
		if err != nil {
			failures = append(failures, fmt.Sprintf("I2: shard at offset %d is not a valid gzip member: %v", meta.Offset, err))
			continue
		}
		if len(shardLines) == 0 {
			failures = append(failures, fmt.Sprintf("I2: shard at offset %d decompresses to no CDXJ lines", meta.Offset))
		}
	}
	return failures
}

// checkResourceHashes is I3: every resource's recorded hash and size
// matches the bytes actually stored at its path, and every referenced
// archive entry is present (I5).
func checkResourceHashes(entries map[string]*zip.File) []string {
	dpFile, ok := entries["datapackage.json"]
	if !ok {
		return nil
	}
	dpBytes, err := readEntry(dpFile)
	if err != nil {
		return []string{fmt.Sprintf("I3: reading datapackage.json: %v", err)}
	}

	var dp struct {
		Resources []struct {
			Path  string `json:"path"`
			Hash  string `json:"hash"`
			Bytes int64  `json:"bytes"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(dpBytes, &dp); err != nil {
		return []string{fmt.Sprintf("I3: parsing datapackage.json: %v", err)}
	}

	var failures []string
	for _, resource := range dp.Resources {
		entry, ok := entries[resource.Path]
		if !ok {
			failures = append(failures, fmt.Sprintf("I5: resource %s listed in datapackage.json but not present in archive", resource.Path))
			continue
		}
		data, err := readEntry(entry)
		if err != nil {
			failures = append(failures, fmt.Sprintf("I3: reading %s: %v", resource.Path, err))
			continue
		}
		sum := sha256.Sum256(data)
		if wantHash := "sha256:" + hex.EncodeToString(sum[:]); resource.Hash != wantHash {
			failures = append(failures, fmt.Sprintf("I3: resource %s hash %s != computed %s", resource.Path, resource.Hash, wantHash))
		}
		if resource.Bytes != int64(len(data)) {
			failures = append(failures, fmt.Sprintf("I3: resource %s bytes %d != actual %d", resource.Path, resource.Bytes, len(data)))
		}
	}
	return failures
}

// checkDigestHash is I4: datapackage-digest.json's hash matches the
// exact bytes of datapackage.json present in the ZIP.
func checkDigestHash(entries map[string]*zip.File) []string {
	dpFile, hasDp := entries["datapackage.json"]
	digestFile, hasDigest := entries["datapackage-digest.json"]
	if !hasDp || !hasDigest {
		return nil
	}

	dpBytes, err := readEntry(dpFile)
	if err != nil {
		return []string{fmt.Sprintf("I4: reading datapackage.json: %v", err)}
	}
	digestBytes, err := readEntry(digestFile)
	if err != nil {
		return []string{fmt.Sprintf("I4: reading datapackage-digest.json: %v", err)}
	}

	var digest struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(digestBytes, &digest); err != nil {
		return []string{fmt.Sprintf("I4: parsing datapackage-digest.json: %v", err)}
	}

	sum := sha256.Sum256(dpBytes)
	wantHash := "sha256:" + hex.EncodeToString(sum[:])
	if digest.Hash != wantHash {
		return []string{fmt.Sprintf("I4: digest hash %s != computed %s", digest.Hash, wantHash)}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// decodeGzipLines decompresses a (possibly multi-member) gzip buffer
// and splits it into its non-empty newline-terminated lines.
func decodeGzipLines(data []byte) ([]string, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not a valid gzip member: %w", err)
	}
	gz.Multistream(true)
	decoded, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return splitNonEmptyLines(string(decoded)), nil
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.SplitAfter(s, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func splitOnFirstSpace(s string) []string {
	index := strings.IndexByte(s, ' ')
	if index < 0 {
		return []string{s}
	}
	return []string{s[:index], s[index+1:]}
}

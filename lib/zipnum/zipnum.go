// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zipnum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ShardLimit is the maximum number of CDXJ lines per shard.
const ShardLimit = 3000

// metaHeader is the IDX file's first line, identifying the index
// format. Written verbatim, not through encoding/json, since its
// exact spacing is part of the format.
const metaHeader = `!meta 0 {"format": "cdxj-gzip-1.0", "filename": "index.cdx.gz"}` + "\n"

// Result holds the two files this package produces.
type Result struct {
	// CDXGz is the content of indexes/index.cdx.gz: a concatenation
	// of independently gzip-compressed shards.
	CDXGz []byte

	// IDX is the content of indexes/index.idx.
	IDX []byte
}

// idxMeta is the JSON object embedded in each IDX line (after the
// !meta header line).
type idxMeta struct {
	Offset   int64  `json:"offset"`
	Length   int64  `json:"length"`
	Digest   string `json:"digest"`
	Filename string `json:"filename"`
}

// Build partitions lines (each already "\n"-terminated, in ascending
// sorted order) into shards of at most ShardLimit lines, gzip-compresses
// each shard independently, and emits the corresponding IDX lines.
//
// An empty input produces a zero-byte index.cdx.gz and an IDX
// consisting of only the !meta header line.
func Build(lines []string) (*Result, error) {
	var cdxGz bytes.Buffer
	var idx strings.Builder
	idx.WriteString(metaHeader)

	for i := 0; i < len(lines); i += ShardLimit {
		end := min(i+ShardLimit, len(lines))
		window := lines[i:end]

		var shardText strings.Builder
		for _, line := range window {
			shardText.WriteString(line)
		}

		shardGz, err := gzipCompress(shardText.String())
		if err != nil {
			return nil, fmt.Errorf("zipnum: compressing shard %d-%d: %w", i, end, err)
		}

		offset := int64(cdxGz.Len())
		cdxGz.Write(shardGz)

		digest := sha256.Sum256(shardGz)
		metaJSON, err := json.Marshal(idxMeta{
			Offset:   offset,
			Length:   int64(len(shardGz)),
			Digest:   "sha256:" + hex.EncodeToString(digest[:]),
			Filename: "index.cdx.gz",
		})
		if err != nil {
			return nil, fmt.Errorf("zipnum: marshaling IDX metadata: %w", err)
		}

		fmt.Fprintf(&idx, "%s %s\n", firstToken(window[0]), metaJSON)
	}

	return &Result{CDXGz: cdxGz.Bytes(), IDX: []byte(idx.String())}, nil
}

// firstToken returns the portion of line up to (not including) its
// first space — the SURT key of a CDXJ line.
func firstToken(line string) string {
	if index := strings.IndexByte(line, ' '); index >= 0 {
		return line[:index]
	}
	return strings.TrimSuffix(line, "\n")
}

func gzipCompress(text string) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write([]byte(text)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package waczwriter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/binhash"
)

// ResourceRecord describes one entry written to the archive, for
// inclusion in the datapackage manifest.
type ResourceRecord struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Hash  string `json:"hash"`
	Bytes int64  `json:"bytes"`
}

// Writer streams entries into a STORE-method ZIP file.
type Writer struct {
	file      *os.File
	zipWriter *zip.Writer
	tmpPath   string
	finalPath string

	resources []ResourceRecord
	seen      map[string]bool

	done bool
}

// Create opens a temporary file beside finalPath and prepares to
// stream ZIP entries into it. finalPath is overwritten, atomically
// where the platform allows, only once Finalize succeeds.
func Create(finalPath string) (*Writer, error) {
	dir := filepath.Dir(finalPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(finalPath)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("waczwriter: creating temporary file: %w", err)
	}

	return &Writer{
		file:      tmp,
		zipWriter: zip.NewWriter(tmp),
		tmpPath:   tmp.Name(),
		finalPath: finalPath,
		seen:      make(map[string]bool),
	}, nil
}

// WriteEntry appends one STORE-method entry named name, with the
// given modification time, streaming r's content through a SHA-256
// tee. It returns the entry's ResourceRecord.
func (w *Writer) WriteEntry(name string, modTime time.Time, r io.Reader) (ResourceRecord, error) {
	if w.seen[name] {
		return ResourceRecord{}, fmt.Errorf("waczwriter: duplicate entry name %q", name)
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: modTime,
	}
	entryWriter, err := w.zipWriter.CreateHeader(header)
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("waczwriter: creating entry %q: %w", name, err)
	}

	tee := binhash.NewTeeWriter(entryWriter)
	if _, err := io.Copy(tee, r); err != nil {
		return ResourceRecord{}, fmt.Errorf("waczwriter: writing entry %q: %w", name, err)
	}

	record := ResourceRecord{
		Name:  filepath.Base(name),
		Path:  name,
		Hash:  "sha256:" + binhash.FormatDigest(tee.Digest()),
		Bytes: tee.Count(),
	}
	w.seen[name] = true
	w.resources = append(w.resources, record)
	return record, nil
}

// WriteBytes is WriteEntry for an in-memory payload.
func (w *Writer) WriteBytes(name string, modTime time.Time, data []byte) (ResourceRecord, error) {
	return w.WriteEntry(name, modTime, bytes.NewReader(data))
}

// WriteFile streams the content of the file at sourcePath into an
// entry named name, preserving sourcePath's modification time.
func (w *Writer) WriteFile(name, sourcePath string) (ResourceRecord, error) {
	source, err := os.Open(sourcePath)
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("waczwriter: opening %s: %w", sourcePath, err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("waczwriter: stat %s: %w", sourcePath, err)
	}

	return w.WriteEntry(name, info.ModTime(), source)
}

// Resources returns the ResourceRecords for every entry written so
// far, in append order.
func (w *Writer) Resources() []ResourceRecord {
	result := make([]ResourceRecord, len(w.resources))
	copy(result, w.resources)
	return result
}

// Finalize writes the ZIP central directory, fsyncs the underlying
// file, and atomically renames it into place at finalPath.
func (w *Writer) Finalize() error {
	if err := w.zipWriter.Close(); err != nil {
		w.abort()
		return fmt.Errorf("waczwriter: closing zip writer: %w", err)
	}
	if err := fsync(w.file); err != nil {
		w.abort()
		return fmt.Errorf("waczwriter: fsync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("waczwriter: closing file: %w", err)
	}
	w.done = true
	if err := os.Rename(w.tmpPath, w.finalPath); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("waczwriter: renaming into place: %w", err)
	}
	return nil
}

// Abort discards the in-progress output: the temporary file is closed
// and removed, and the final path is left untouched. Callers should
// call Abort when a run fails after Create but before Finalize
// succeeds.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	return w.abort()
}

func (w *Writer) abort() error {
	w.file.Close()
	return os.Remove(w.tmpPath)
}

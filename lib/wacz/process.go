// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wacz

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/datapackage"
	"github.com/rebeccacremona/go-wacz/lib/pages"
	"github.com/rebeccacremona/go-wacz/lib/signer"
	"github.com/rebeccacremona/go-wacz/lib/sortedset"
	"github.com/rebeccacremona/go-wacz/lib/waczwriter"
	"github.com/rebeccacremona/go-wacz/lib/zipnum"
)

// pagesHeader is pages.jsonl's mandatory first line, identifying the
// file format. Written verbatim, not through encoding/json, since its
// exact spacing is part of the format (mirrors zipnum's metaHeader).
const pagesHeader = `{"format": "json-pages-1.0", "id": "pages", "title": "All Pages"}` + "\n"

// Process runs the configured assembly exactly once: index every
// input, emit the CDXJ shards, emit the page list, stream every
// input's bytes into the archive, then emit and sign the datapackage
// manifest and its digest, finalizing the ZIP only once every prior
// step succeeds. A second call fails with AlreadyConsumed. Any
// failure removes the in-progress output and leaves the run's
// previous output, if any, untouched.
func (r *Run) Process(ctx context.Context) error {
	if r.oneShotConsumed {
		return &Error{Kind: AlreadyConsumed, Op: "process"}
	}
	r.oneShotConsumed = true

	cdxLines, pageSet, err := indexInputs(ctx, r.inputs, r.detectPages, r.log)
	if err != nil {
		return err
	}
	for _, page := range r.manualPages {
		pageSet.SetIfAbsent(page.URL, page)
	}

	if err := ctx.Err(); err != nil {
		return &Error{Kind: Cancelled, Op: "process", Err: err}
	}

	w, err := waczwriter.Create(r.output)
	if err != nil {
		return &Error{Kind: WriteFailed, Op: "create-output", Err: err}
	}
	finalized := false
	defer func() {
		if !finalized {
			w.Abort()
		}
	}()

	now := r.clock.Now()

	if err := r.writeIndexes(w, cdxLines, now); err != nil {
		return err
	}
	if err := r.writePages(w, pageSet, now); err != nil {
		return err
	}
	if err := r.writeArchive(ctx, w); err != nil {
		return err
	}

	digest, err := r.writeDatapackage(ctx, w, now)
	if err != nil {
		return err
	}
	if err := r.writeDigest(w, digest, now); err != nil {
		return err
	}

	if err := w.Finalize(); err != nil {
		return &Error{Kind: WriteFailed, Op: "finalize", Err: err}
	}
	finalized = true
	return nil
}

func (r *Run) writeIndexes(w *waczwriter.Writer, cdxLines *sortedset.Set[string], now time.Time) error {
	idx, err := zipnum.Build(cdxLines.Items())
	if err != nil {
		return &Error{Kind: WriteFailed, Op: "emit-indexes", Err: err}
	}
	if _, err := w.WriteBytes("indexes/index.cdx.gz", now, idx.CDXGz); err != nil {
		return &Error{Kind: WriteFailed, Op: "emit-indexes", Err: err}
	}
	if _, err := w.WriteBytes("indexes/index.idx", now, idx.IDX); err != nil {
		return &Error{Kind: WriteFailed, Op: "emit-indexes", Err: err}
	}
	return nil
}

// writePages assigns each page's final ID, in ascending URL order, and
// writes pages.jsonl. ID assignment happens here, not during
// detection, so the sequence of generated IDs depends only on this
// run's injected generator and final page order, never on how many
// workers ran concurrently.
func (r *Run) writePages(w *waczwriter.Writer, pageSet *sortedset.Map[string, pages.Page], now time.Time) error {
	var buf bytes.Buffer
	buf.WriteString(pagesHeader)

	for _, page := range pageSet.Values() {
		entry := page.WithID(r.idgen.NewID())
		line, err := json.Marshal(entry)
		if err != nil {
			return &Error{Kind: WriteFailed, Op: "emit-pages", Err: err}
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if _, err := w.WriteBytes("pages/pages.jsonl", now, buf.Bytes()); err != nil {
		return &Error{Kind: WriteFailed, Op: "emit-pages", Err: err}
	}
	return nil
}

// writeArchive streams each input's bytes into the archive, in input
// order, opening every file a second time (the first having been
// consumed by indexing).
func (r *Run) writeArchive(ctx context.Context, w *waczwriter.Writer) error {
	for _, path := range r.inputs {
		if err := ctx.Err(); err != nil {
			return &Error{Kind: Cancelled, Op: "write-archive", Err: err}
		}
		if err := r.writeArchiveEntry(w, path); err != nil {
			return &Error{Kind: WriteFailed, Op: "write-archive", Err: err}
		}
	}
	return nil
}

// writeArchiveEntry streams path into the archive, falling back to the
// run's injected clock for the entry's modification time if the
// source file's own is unavailable.
func (r *Run) writeArchiveEntry(w *waczwriter.Writer, path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	modTime := r.clock.Now()
	if info, err := source.Stat(); err == nil {
		modTime = info.ModTime()
	}

	name := "archive/" + filepath.Base(path)
	_, err = w.WriteEntry(name, modTime, source)
	return err
}

func (r *Run) writeDatapackage(ctx context.Context, w *waczwriter.Writer, now time.Time) (*datapackage.Digest, error) {
	created := now.UTC().Format(time.RFC3339)
	r.datapackageDate = created

	dp, err := datapackage.Build(datapackage.Params{
		Created:      now,
		SoftwareName: softwareName,
		Resources:    w.Resources(),
		Title:        r.title,
		Description:  r.description,
		MainPageURL:  r.mainPageURL,
		MainPageDate: r.mainPageDate,
		Extras:       r.extras,
	})
	if err != nil {
		return nil, &Error{Kind: WriteFailed, Op: "emit-datapackage", Err: err}
	}

	manifestBytes, err := dp.Marshal()
	if err != nil {
		return nil, &Error{Kind: WriteFailed, Op: "emit-datapackage", Err: err}
	}
	if _, err := w.WriteBytes("datapackage.json", now, manifestBytes); err != nil {
		return nil, &Error{Kind: WriteFailed, Op: "emit-datapackage", Err: err}
	}

	digest := datapackage.BuildDigest(manifestBytes, nil)
	if r.signer != nil {
		signedData, err := r.sign(ctx, digest.Hash, created)
		if err != nil {
			return nil, err
		}
		digest.SignedData = signedData
	}
	return digest, nil
}

func (r *Run) writeDigest(w *waczwriter.Writer, digest *datapackage.Digest, now time.Time) error {
	digestBytes, err := digest.Marshal()
	if err != nil {
		return &Error{Kind: WriteFailed, Op: "emit-digest", Err: err}
	}
	if _, err := w.WriteBytes("datapackage-digest.json", now, digestBytes); err != nil {
		return &Error{Kind: WriteFailed, Op: "emit-digest", Err: err}
	}
	return nil
}

// sign invokes the configured signer under its own deadline,
// translating a timed-out context and a format-invalid response into
// the corresponding error kinds.
func (r *Run) sign(ctx context.Context, hash, created string) (*signer.SignedData, error) {
	signCtx, cancel := context.WithTimeout(ctx, r.signerTimeout)
	defer cancel()

	sd, err := r.signer.Sign(signCtx, hash, created)
	if err != nil {
		if signCtx.Err() == context.DeadlineExceeded {
			return nil, &Error{Kind: SignerTimeout, Op: "sign", Err: err}
		}
		return nil, &Error{Kind: SigningFailed, Op: "sign", Err: err}
	}

	if err := signer.ValidateSignedData(sd); err != nil {
		return nil, &Error{Kind: SignatureInvalid, Op: "sign", Err: err}
	}
	return &sd, nil
}

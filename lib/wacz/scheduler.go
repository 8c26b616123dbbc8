// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wacz

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/rebeccacremona/go-wacz/lib/cdxj"
	"github.com/rebeccacremona/go-wacz/lib/pages"
	"github.com/rebeccacremona/go-wacz/lib/sortedset"
	"github.com/rebeccacremona/go-wacz/lib/warc"
)

// levelTrace is one step below slog.LevelDebug, for the
// per-record progress logging the indexing scheduler emits.
const levelTrace = slog.Level(-8)

func stringLess(a, b string) bool { return a < b }

// fileIndex is one input file's contribution to the run: its sorted
// CDXJ lines and, if page detection is enabled, its detected pages.
type fileIndex struct {
	filename string
	cdxLines *sortedset.Set[string]
	pageSet  *sortedset.Map[string, pages.Page]
}

// indexInputs fans indexing of inputs across a worker pool of size
// min(runtime.NumCPU(), len(inputs)), then merges the resulting
// per-file batches into a single sorted CDXJ line set and a single
// page map (first-observed, in input order, wins on URL collision).
// On any worker's failure, outstanding work is cancelled and the
// first error is returned; partial results are discarded.
func indexInputs(ctx context.Context, inputs []string, detectPages bool, log *slog.Logger) (*sortedset.Set[string], *sortedset.Map[string, pages.Page], error) {
	n := len(inputs)
	results := make([]*fileIndex, n)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(runtime.NumCPU(), n)
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case i, ok := <-jobs:
				if !ok {
					return
				}
				result, err := indexOneFile(workerCtx, inputs[i], detectPages, log)
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[i] = result
			}
		}
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-workerCtx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, &Error{Kind: Cancelled, Op: "index", Err: err}
	}
	if firstErr != nil {
		return nil, nil, &Error{Kind: IndexingFailed, Op: "index", Err: firstErr}
	}

	cdxBatches := make([]*sortedset.Set[string], n)
	var pageBatches []*sortedset.Map[string, pages.Page]
	if detectPages {
		pageBatches = make([]*sortedset.Map[string, pages.Page], n)
	}
	for i, result := range results {
		cdxBatches[i] = result.cdxLines
		if detectPages {
			pageBatches[i] = result.pageSet
		}
	}

	cdxLines := sortedset.MergeSets(stringLess, cdxBatches...)
	var pageSet *sortedset.Map[string, pages.Page]
	if detectPages {
		pageSet = sortedset.MergeMaps(stringLess, pageBatches...)
	} else {
		pageSet = sortedset.NewMap[string, pages.Page](stringLess)
	}

	return cdxLines, pageSet, nil
}

// indexOneFile streams path's records once, building its local CDXJ
// line set and (if enabled) page map. A malformed record aborts the
// whole file — and, via the caller's cancellation, the whole run — on
// the theory that a partially indexed file is worse than no file at
// all. A record that merely fails CDXJ derivation (say, an
// unparseable WARC-Date) is logged and skipped.
func indexOneFile(ctx context.Context, path string, detectPages bool, log *slog.Logger) (*fileIndex, error) {
	reader, err := warc.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	filename := filepath.Base(path)
	result := &fileIndex{
		filename: filename,
		cdxLines: sortedset.NewSet(stringLess),
	}

	var inferrer *pages.Inferrer
	if detectPages {
		result.pageSet = sortedset.NewMap[string, pages.Page](stringLess)
		inferrer = pages.NewInferrer()
	}

	var recordCount int
	var byteCount int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		recordCount++
		byteCount += record.Length

		entry, ok, err := cdxj.Build(record, filename)
		if err != nil {
			log.Warn("skipping record: could not derive a CDXJ entry", "file", filename, "offset", record.Offset, "error", err)
		} else if ok {
			result.cdxLines.Insert(entry.Line)
		}

		if detectPages {
			if page, ok := inferrer.Observe(record); ok {
				result.pageSet.SetIfAbsent(page.URL, page)
			}
		}

		log.Log(ctx, levelTrace, "indexed record", "file", filename, "type", record.Type(), "offset", record.Offset)
	}

	log.Info("indexed file", "file", filename, "records", recordCount, "bytes", humanize.Bytes(uint64(byteCount)))
	return result, nil
}

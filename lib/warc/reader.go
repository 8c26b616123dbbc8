// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package warc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const gzipMagic0, gzipMagic1 = 0x1f, 0x8b

// terminator is the pair of CRLFs that ends every WARC record, after
// its payload.
var terminator = []byte("\r\n\r\n")

// Reader streams the records of a single WARC file, gzip-framed or
// plain.
type Reader struct {
	path string
	file *os.File

	// counting and raw together let Next report the exact file
	// offset and length of each record (or, for gzip-framed input,
	// of the gzip member enclosing it) without ever reading ahead
	// past a member boundary: raw.Buffered() is always the number of
	// bytes already pulled from the file but not yet handed to a
	// caller, so counting.n - raw.Buffered() is the file position of
	// the next byte Next will hand out, independent of how far raw's
	// internal buffer has read ahead.
	counting *countingReader
	raw      *bufio.Reader

	gzipFramed bool
	gz         *gzip.Reader
	gzStarted  bool
}

// countingReader wraps an io.Reader, counting every byte that passes
// through Read.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// NewReader opens path and prepares to stream its WARC records.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("warc: opening %s: %w", path, err)
	}

	counting := &countingReader{r: file}
	raw := bufio.NewReaderSize(counting, 256*1024)

	gzipFramed := false
	if magic, err := raw.Peek(2); err == nil && len(magic) == 2 {
		gzipFramed = magic[0] == gzipMagic0 && magic[1] == gzipMagic1
	}

	return &Reader{
		path:       path,
		file:       file,
		counting:   counting,
		raw:        raw,
		gzipFramed: gzipFramed,
	}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.file.Close()
}

// pos reports the file offset of the next unread byte.
func (r *Reader) pos() int64 {
	return r.counting.n - int64(r.raw.Buffered())
}

// Next returns the next record in the file, or io.EOF once the file
// is exhausted.
func (r *Reader) Next() (*Record, error) {
	if r.gzipFramed {
		return r.nextGzipFramed()
	}
	return r.nextPlain()
}

func (r *Reader) nextGzipFramed() (*Record, error) {
	offset := r.pos()

	var err error
	if !r.gzStarted {
		r.gz, err = gzip.NewReader(r.raw)
		r.gzStarted = true
	} else {
		err = r.gz.Reset(r.raw)
	}
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &MalformedError{Path: r.path, Offset: offset, Reason: "invalid gzip member header", Err: err}
	}
	r.gz.Multistream(false)

	member := bufio.NewReader(r.gz)
	record, err := r.readRecord(member, offset)
	if err != nil {
		return nil, err
	}

	// Drain any trailing bytes of this member (there should be none
	// once the record terminator has been consumed) so the gzip
	// trailer gets validated and r.raw's position lands exactly at
	// the next member's start.
	if _, err := io.Copy(io.Discard, member); err != nil {
		return nil, &MalformedError{Path: r.path, Offset: offset, Reason: "gzip member trailer", Err: err}
	}

	length := r.pos() - offset
	record.Offset = offset
	record.Length = length
	return record, nil
}

func (r *Reader) nextPlain() (*Record, error) {
	offset := r.pos()

	if _, err := r.raw.Peek(1); err == io.EOF {
		return nil, io.EOF
	}

	record, err := r.readRecord(r.raw, offset)
	if err != nil {
		return nil, err
	}

	record.Offset = offset
	record.Length = r.pos() - offset
	return record, nil
}

// readRecord parses one WARC record (version line, header block,
// Content-Length-delimited payload, terminator) from br.
func (r *Reader) readRecord(br *bufio.Reader, offset int64) (*Record, error) {
	versionLine, err := br.ReadString('\n')
	if err != nil {
		if err == io.EOF && versionLine == "" {
			return nil, io.EOF
		}
		return nil, &MalformedError{Path: r.path, Offset: offset, Reason: "truncated before version line", Err: err}
	}
	versionLine = strings.TrimRight(versionLine, "\r\n")
	if !strings.HasPrefix(versionLine, "WARC/") {
		return nil, &MalformedError{Path: r.path, Offset: offset, Reason: fmt.Sprintf("expected WARC version line, got %q", versionLine)}
	}

	headers := Header{}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, &MalformedError{Path: r.path, Offset: offset, Reason: "truncated header block", Err: err}
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		index := strings.IndexByte(trimmed, ':')
		if index < 0 {
			return nil, &MalformedError{Path: r.path, Offset: offset, Reason: fmt.Sprintf("malformed header line %q", trimmed)}
		}
		name := trimmed[:index]
		value := strings.TrimSpace(trimmed[index+1:])
		headers.Add(name, value)
	}

	contentLengthStr := headers.Get("Content-Length")
	var contentLength int64
	if contentLengthStr != "" {
		contentLength, err = strconv.ParseInt(strings.TrimSpace(contentLengthStr), 10, 64)
		if err != nil || contentLength < 0 {
			return nil, &MalformedError{Path: r.path, Offset: offset, Reason: fmt.Sprintf("invalid Content-Length %q", contentLengthStr), Err: err}
		}
	}

	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(br, payload); err != nil {
		return nil, &MalformedError{Path: r.path, Offset: offset, Reason: "truncated payload", Err: err}
	}

	term := make([]byte, len(terminator))
	if _, err := io.ReadFull(br, term); err != nil {
		return nil, &MalformedError{Path: r.path, Offset: offset, Reason: "missing record terminator", Err: err}
	}
	if !bytes.Equal(term, terminator) {
		return nil, &MalformedError{Path: r.path, Offset: offset, Reason: fmt.Sprintf("malformed record terminator %q", term)}
	}

	return &Record{
		Headers: headers,
		Payload: payload,
	}, nil
}

package warctest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Record describes one synthetic WARC record to assemble. Fields left
// zero, Type and ID included, are omitted from the header block;
// Content-Length is always written.
type Record struct {
	Type          string
	ID            string
	TargetURI     string
	Date          string
	ContentType   string
	Payload       []byte
	ConcurrentTo  []string
	PayloadDigest string
	Truncated     string
}

// Bytes assembles the record's raw wire form: version line, header
// block (in a fixed, deterministic field order), a blank line, the
// payload, and the CRLFCRLF terminator. Content-Length is computed
// from len(Payload).
func (r Record) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("WARC/1.0\r\n")
	writeHeader(&buf, "WARC-Type", r.Type)
	writeHeader(&buf, "WARC-Record-ID", r.ID)
	writeHeader(&buf, "WARC-Date", r.Date)
	writeHeader(&buf, "WARC-Target-URI", r.TargetURI)
	writeHeader(&buf, "WARC-Payload-Digest", r.PayloadDigest)
	writeHeader(&buf, "WARC-Truncated", r.Truncated)
	for _, id := range r.ConcurrentTo {
		writeHeader(&buf, "WARC-Concurrent-To", id)
	}
	writeHeader(&buf, "Content-Type", r.ContentType)
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(r.Payload))
	buf.WriteString("\r\n")
	buf.Write(r.Payload)
	buf.WriteString("\r\n\r\n")
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "%s: %s\r\n", name, value)
}

// RecordID formats n as a synthetic WARC-Record-ID, unique for
// distinct n within one test.
func RecordID(n int) string {
	return fmt.Sprintf("<urn:uuid:00000000-0000-0000-0000-%012d>", n)
}

// Warcinfo builds a "warcinfo" record, the conventional first record
// of a WARC file.
func Warcinfo(id, date string) Record {
	return Record{
		Type:        "warcinfo",
		ID:          id,
		Date:        date,
		ContentType: "application/warc-fields",
		Payload:     []byte("software: warctest\r\n"),
	}
}

// Response builds a "response" record whose payload is a full HTTP
// response message: status line, Content-Type and Content-Length
// headers, then body.
func Response(id, targetURI, date string, status int, contentType string, body []byte) Record {
	var http bytes.Buffer
	fmt.Fprintf(&http, "HTTP/1.1 %d %s\r\n", status, statusText(status))
	fmt.Fprintf(&http, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&http, "Content-Length: %d\r\n", len(body))
	http.WriteString("\r\n")
	http.Write(body)

	return Record{
		Type:        "response",
		ID:          id,
		TargetURI:   targetURI,
		Date:        date,
		ContentType: "application/http; msgtype=response",
		Payload:     http.Bytes(),
	}
}

// Request builds a "request" record whose payload is a full HTTP
// request message, optionally naming the response records it is
// concurrent to.
func Request(id, targetURI, date, method string, concurrentTo ...string) Record {
	var http bytes.Buffer
	fmt.Fprintf(&http, "%s %s HTTP/1.1\r\n", method, targetURI)
	http.WriteString("Host: " + hostOf(targetURI) + "\r\n")
	http.WriteString("\r\n")

	return Record{
		Type:         "request",
		ID:           id,
		TargetURI:    targetURI,
		Date:         date,
		ContentType:  "application/http; msgtype=request",
		Payload:      http.Bytes(),
		ConcurrentTo: concurrentTo,
	}
}

func hostOf(rawURL string) string {
	rest := strings.TrimPrefix(rawURL, "https://")
	rest = strings.TrimPrefix(rest, "http://")
	if index := strings.IndexByte(rest, '/'); index >= 0 {
		rest = rest[:index]
	}
	return rest
}

func statusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 301:
		return "Moved Permanently"
	case 404:
		return "Not Found"
	default:
		return "Status"
	}
}

// File accumulates records for a single WARC file.
type File struct {
	records [][]byte
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{}
}

// Add appends r's wire bytes and returns f, for chaining.
func (f *File) Add(r Record) *File {
	f.records = append(f.records, r.Bytes())
	return f
}

// WritePlain concatenates the accumulated records, unframed, into a
// new file at path.
func (f *File) WritePlain(path string) error {
	var buf bytes.Buffer
	for _, record := range f.records {
		buf.Write(record)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteGzip writes the accumulated records to path, each as its own
// independently gzip-compressed member, matching the framing crawlers
// emit for ".warc.gz" output.
func (f *File) WriteGzip(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, record := range f.records {
		gz := gzip.NewWriter(file)
		if _, err := gz.Write(record); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return err
		}
	}
	return nil
}

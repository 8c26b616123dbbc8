// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wacz

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeccacremona/go-wacz/lib/clock"
	"github.com/rebeccacremona/go-wacz/lib/idgen"
	"github.com/rebeccacremona/go-wacz/lib/signer"
)

// defaultSignerTimeout is the deadline a signer call is given when
// Config.SignerTimeout is zero.
const defaultSignerTimeout = 30 * time.Second

// softwareName identifies this implementation in the datapackage
// manifest's "software" field and in a local signer's SignedData.
const softwareName = "go-wacz"

// warcExtensions lists the input file extensions a Run accepts.
// Matching is case-insensitive; ".warc.gz" is recognized by its
// combined double extension, since filepath.Ext alone would only see
// ".gz".
var warcExtensions = []string{".warc", ".warc.gz"}

// Config holds the options a Run is constructed from. Only Inputs and
// Output are required — every other field has a workable default or
// is silently dropped, with a warn log, when invalid.
type Config struct {
	// Inputs is the list of WARC file paths to assemble. Required: at
	// least one path must remain after filtering to files with a
	// recognized WARC extension.
	Inputs []string

	// Output is the path the finished WACZ file is written to,
	// overwriting any existing file there. Required; must end in
	// ".wacz".
	Output string

	// DetectPages enables heuristic page detection (§4.C). Defaults to
	// true; set explicitly to false to disable it. AddPage also
	// disables it for the remainder of a run, regardless of this
	// field.
	DetectPages *bool

	// URL, if a valid absolute URL, becomes the datapackage's
	// mainPageUrl.
	URL string

	// Timestamp, if a valid ISO-8601/RFC3339 timestamp, becomes the
	// datapackage's mainPageDate.
	Timestamp string

	// Title and Description become the datapackage's title and
	// description, trimmed of surrounding whitespace. Title defaults
	// to "WACZ" and Description to "" when empty.
	Title       string
	Description string

	// Extras, if non-nil and JSON-serializable, becomes the
	// datapackage's extras.
	Extras any

	// Signer, if set, is invoked once the datapackage's hash is known.
	// A nil Signer produces no signedData.
	Signer signer.Signer

	// SignerTimeout bounds the single Signer.Sign call. Defaults to
	// 30 seconds.
	SignerTimeout time.Duration

	// Log receives trace/debug/info/warn/error records. A nil Log is
	// replaced with a discard logger.
	Log *slog.Logger

	// Clock supplies the run's notion of "now" (the datapackage's
	// created timestamp, and the ZIP modification time fallback for
	// archive entries). Defaults to clock.Real().
	Clock clock.Clock

	// IDGenerator mints page entry IDs. Defaults to idgen.Real().
	IDGenerator idgen.Generator
}

// New validates cfg and returns a Run ready to Process. Required
// options missing or unusable fail with ConfigInvalid; an input list
// that filters down to nothing fails with InputNotFound. Invalid
// optional options are dropped with a warn log rather than failing
// construction.
func New(cfg Config) (*Run, error) {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if len(cfg.Inputs) == 0 {
		return nil, &Error{Kind: ConfigInvalid, Op: "configure", Err: errString("inputs is required")}
	}
	if cfg.Output == "" {
		return nil, &Error{Kind: ConfigInvalid, Op: "configure", Err: errString("output is required")}
	}
	if !strings.EqualFold(filepath.Ext(cfg.Output), ".wacz") {
		return nil, &Error{Kind: ConfigInvalid, Op: "configure", Err: errString("output must end in \".wacz\"")}
	}

	inputs := filterWARCInputs(cfg.Inputs)
	if len(inputs) == 0 {
		return nil, &Error{Kind: InputNotFound, Op: "configure", Err: errString("no .warc/.warc.gz files among inputs")}
	}

	detectPages := true
	if cfg.DetectPages != nil {
		detectPages = *cfg.DetectPages
	}

	mainPageURL := ""
	if cfg.URL != "" {
		if isValidAbsoluteURL(cfg.URL) {
			mainPageURL = cfg.URL
		} else {
			log.Warn("dropping invalid url option", "url", cfg.URL)
		}
	}

	mainPageDate := ""
	if cfg.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, cfg.Timestamp); err == nil {
			mainPageDate = cfg.Timestamp
		} else {
			log.Warn("dropping invalid ts option", "ts", cfg.Timestamp, "error", err)
		}
	}

	extras := cfg.Extras
	if extras != nil && !isJSONSerializable(extras) {
		log.Warn("dropping invalid datapackage_extras option")
		extras = nil
	}

	signerTimeout := cfg.SignerTimeout
	if signerTimeout <= 0 {
		signerTimeout = defaultSignerTimeout
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	ids := cfg.IDGenerator
	if ids == nil {
		ids = idgen.Real()
	}

	return &Run{
		inputs:        inputs,
		output:        cfg.Output,
		detectPages:   detectPages,
		mainPageURL:   mainPageURL,
		mainPageDate:  mainPageDate,
		title:         cfg.Title,
		description:   cfg.Description,
		extras:        extras,
		signer:        cfg.Signer,
		signerTimeout: signerTimeout,
		log:           log,
		clock:         clk,
		idgen:         ids,
		ready:         true,
	}, nil
}

func filterWARCInputs(inputs []string) []string {
	var filtered []string
	for _, input := range inputs {
		lower := strings.ToLower(input)
		for _, ext := range warcExtensions {
			if strings.HasSuffix(lower, ext) {
				filtered = append(filtered, input)
				break
			}
		}
	}
	return filtered
}

func isValidAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.IsAbs() && parsed.Host != ""
}

func isJSONSerializable(v any) bool {
	_, err := json.Marshal(v)
	return err == nil
}

// errString is a tiny helper so Config validation errors read as
// plain sentences without importing errors.New at every call site.
type errString string

func (e errString) Error() string { return string(e) }

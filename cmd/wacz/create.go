// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/rebeccacremona/go-wacz/cmd/wacz/httpsigner"
	"github.com/rebeccacremona/go-wacz/lib/signer"
	"github.com/rebeccacremona/go-wacz/lib/signer/localsigner"
	"github.com/rebeccacremona/go-wacz/lib/wacz"
)

// fileDefaults mirrors the subset of wacz.Config a JSONC defaults
// file may supply. Flags passed on the command line override any
// value set here.
type fileDefaults struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Timestamp   string `json:"ts"`
	DetectPages *bool  `json:"detectPages"`
	Extras      any    `json:"extras"`
}

func runCreate(args []string) int {
	flagSet := pflag.NewFlagSet("wacz create", pflag.ContinueOnError)

	var (
		output           string
		configPath       string
		title            string
		description      string
		mainPageURL      string
		mainPageTS       string
		detectPages      bool
		noDetectPages    bool
		signerKind       string
		signerIdentity   string
		signerPassphrase string
		signerHTTPURL    string
		signerTimeout    time.Duration
		logLevel         string
		logJSON          bool
	)

	flagSet.StringVarP(&output, "output", "o", "", "output .wacz path (required)")
	flagSet.StringVar(&configPath, "config", "", "JSONC file of defaults (title, description, url, ts, detectPages, extras)")
	flagSet.StringVar(&title, "title", "", "collection title")
	flagSet.StringVar(&description, "description", "", "collection description")
	flagSet.StringVar(&mainPageURL, "url", "", "main page URL")
	flagSet.StringVar(&mainPageTS, "ts", "", "main page timestamp (RFC3339)")
	flagSet.BoolVar(&detectPages, "detect-pages", true, "heuristically detect pages")
	flagSet.BoolVar(&noDetectPages, "no-detect-pages", false, "disable heuristic page detection")
	flagSet.StringVar(&signerKind, "signer", "none", `signer to use: "none", "local", or "http"`)
	flagSet.StringVar(&signerIdentity, "signer-identity", "", "path to a sealed local signer identity (signer=local)")
	flagSet.StringVar(&signerPassphrase, "signer-passphrase-env", "WACZ_SIGNER_PASSPHRASE", "environment variable holding the local signer identity's passphrase")
	flagSet.StringVar(&signerHTTPURL, "signer-url", "", "authsign-style signing endpoint (signer=http)")
	flagSet.DurationVar(&signerTimeout, "signer-timeout", 30*time.Second, "deadline for the signer call")
	flagSet.StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn, or error")
	flagSet.BoolVar(&logJSON, "log-json", false, "emit log records as JSON")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "wacz create: %v\n", err)
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		flagSet.PrintDefaults()
		return 0
	}

	patterns := flagSet.Args()
	if output == "" {
		fmt.Fprintln(os.Stderr, "wacz create: --output is required")
		return 2
	}
	if len(patterns) == 0 {
		fmt.Fprintln(os.Stderr, "wacz create: at least one input path or glob pattern is required")
		return 2
	}

	inputs, err := expandGlobs(patterns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wacz create: %v\n", err)
		return 2
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "wacz create: no files matched the given patterns")
		return 2
	}

	log := newLogger(logLevel, logJSON)

	defaults, err := loadDefaults(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wacz create: %v\n", err)
		return 2
	}
	if defaults != nil {
		if title == "" {
			title = defaults.Title
		}
		if description == "" {
			description = defaults.Description
		}
		if mainPageURL == "" {
			mainPageURL = defaults.URL
		}
		if mainPageTS == "" {
			mainPageTS = defaults.Timestamp
		}
		if !flagSet.Changed("detect-pages") && defaults.DetectPages != nil {
			detectPages = *defaults.DetectPages
		}
	}
	if noDetectPages {
		detectPages = false
	}

	sign, err := buildSigner(signerKind, signerIdentity, signerPassphrase, signerHTTPURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wacz create: %v\n", err)
		return 2
	}

	var extras any
	if defaults != nil {
		extras = defaults.Extras
	}

	cfg := wacz.Config{
		Inputs:        inputs,
		Output:        output,
		DetectPages:   &detectPages,
		URL:           mainPageURL,
		Timestamp:     mainPageTS,
		Title:         title,
		Description:   description,
		Extras:        extras,
		Signer:        sign,
		SignerTimeout: signerTimeout,
		Log:           log,
	}

	run, err := wacz.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wacz create: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run.Process(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "wacz create: %v\n", err)
		return 1
	}

	log.Info("wacz assembled", "output", output, "inputs", len(inputs))
	return 0
}

// expandGlobs resolves every pattern via filepath.Glob, falling back
// to treating a pattern with no matches as a literal path (so an
// exact filename containing no glob metacharacters still works), then
// returns the union, sorted and deduplicated, so archive order is
// stable across invocations regardless of the shell's or the
// filesystem's own ordering.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				result = append(result, match)
			}
		}
	}
	sort.Strings(result)
	return result, nil
}

func loadDefaults(path string) (*fileDefaults, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var defaults fileDefaults
	if err := json.Unmarshal(jsonc.ToJSON(raw), &defaults); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &defaults, nil
}

// levelTrace mirrors lib/wacz's sub-debug trace level so --log-level
// trace enables the scheduler's per-record progress lines.
const levelTrace = slog.Level(-8)

func newLogger(level string, asJSON bool) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "trace":
		slogLevel = levelTrace
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: slogLevel}
	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func buildSigner(kind, identityPath, passphraseEnv, httpURL string) (signer.Signer, error) {
	switch kind {
	case "", "none":
		return nil, nil
	case "local":
		if identityPath == "" {
			return nil, fmt.Errorf("--signer-identity is required for --signer=local")
		}
		passphrase := os.Getenv(passphraseEnv)
		if passphrase == "" {
			return nil, fmt.Errorf("environment variable %s (--signer-passphrase-env) is not set", passphraseEnv)
		}
		return localsigner.NewFromSealedIdentity(identityPath, passphrase, softwareName)
	case "http":
		if httpURL == "" {
			return nil, fmt.Errorf("--signer-url is required for --signer=http")
		}
		return httpsigner.New(httpURL), nil
	default:
		return nil, fmt.Errorf(`unknown --signer %q (want "none", "local", or "http")`, kind)
	}
}

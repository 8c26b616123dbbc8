// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// wacz assembles one or more WARC files into a WACZ bundle. It is the
// thin external-collaborator layer the core library (github.com/rebeccacremona/go-wacz/lib/wacz)
// deliberately excludes: flag parsing, a JSONC defaults file, glob
// expansion of input patterns, a structured log sink, and a concrete
// signer (local or HTTP) wired in by configuration rather than
// guessed by the core.
//
// Usage:
//
//	wacz create --output out.wacz warcs/*.warc.gz
//	wacz create --config defaults.jsonc --output out.wacz crawl/*.warc.gz
//	wacz signer-setup --identity signer.age
package main

import (
	"fmt"
	"os"

	"github.com/rebeccacremona/go-wacz/lib/version"
)

// softwareName identifies this implementation, matching the core
// library's own identically-named constant used for the datapackage
// manifest's "software" field.
const softwareName = "go-wacz"

func versionString() string {
	return softwareName + " " + version.Info()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "create":
		return runCreate(args[1:])
	case "signer-setup":
		return runSignerSetup(args[1:])
	case "--version", "version":
		fmt.Println(versionString())
		return 0
	case "-h", "--help", "help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "wacz: unknown command %q\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: wacz <command> [flags]

commands:
  create         assemble WARC files into a WACZ bundle
  signer-setup   generate and seal a local signing identity
  version        print the version and exit

Run "wacz <command> --help" for flags specific to a command.
`)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package warctest assembles minimal, valid synthetic WARC records and
// files for use in tests elsewhere in the module. It is a test-only
// helper, analogous to how a fixture package serves the rest of a
// project's test suite, and imports nothing from the lib/warc package
// it feeds so that any package can depend on it without a cycle.
package warctest

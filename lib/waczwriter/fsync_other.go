// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package waczwriter

import "os"

func fsync(file *os.File) error {
	return file.Sync()
}

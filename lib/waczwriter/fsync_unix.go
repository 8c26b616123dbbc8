// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package waczwriter

import (
	"os"

	"golang.org/x/sys/unix"
)

func fsync(file *os.File) error {
	return unix.Fsync(int(file.Fd()))
}

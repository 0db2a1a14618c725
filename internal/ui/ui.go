// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui holds the color palette and terminal detection used by the
// command line output.
package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Shared color printers.
var (
	Cyan = color.New(color.FgCyan)
	Bold = color.New(color.Bold)
)

// InitColors enables or disables colored output globally.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// ColorsEnabled reports whether colored output is currently on.
func ColorsEnabled() bool {
	return !color.NoColor
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WriterIsTerminal is IsTerminal for writers that may not be files.
func WriterIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTerminal(f)
}

// Label renders a field label.
func Label(s string) string {
	return Cyan.Sprint(s)
}

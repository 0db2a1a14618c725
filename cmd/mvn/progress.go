// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/mvnboot/pkg/invoker"
)

// ProgressConfig controls progress bar rendering.
type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
	Width   int
}

// NewProgressConfig shows progress only on an interactive terminal, and
// never with --quiet or --no-transfer-progress.
func NewProgressConfig(ctx *invoker.Context) ProgressConfig {
	cfg := ProgressConfig{Writer: ctx.Request.Stderr(), Width: 40}
	term, err := ctx.Terminal.Get()
	if err != nil {
		return cfg
	}
	v := ctx.Values
	cfg.Enabled = term.Interactive && !v.Quiet.OrElse(false) && !v.NoTransferProgress.OrElse(false)
	if term.Width/2 > cfg.Width {
		cfg.Width = term.Width / 2
	}
	return cfg
}

// NewProgressBar creates a bar for total steps. Disabled configs get a bar
// that renders nothing.
func NewProgressBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	w := cfg.Writer
	if !cfg.Enabled || w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(cfg.Width),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(cfg.Enabled),
	)
}

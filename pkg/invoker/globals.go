// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"io"
	"log"
	"log/slog"

	"github.com/fatih/color"

	"github.com/kraklabs/mvnboot/pkg/sysprops"
)

// globals is the process-wide state an invocation may change.
type globals struct {
	props    sysprops.Snapshot
	logger   *slog.Logger
	logOut   io.Writer
	logFlags int
	noColor  bool
}

func takeGlobals() globals {
	return globals{
		props:    sysprops.Take(),
		logger:   slog.Default(),
		logOut:   log.Writer(),
		logFlags: log.Flags(),
		noColor:  color.NoColor,
	}
}

// restore puts everything back. slog.SetDefault redirects the log package,
// so its writer and flags are reset afterwards.
func (g globals) restore() {
	g.props.Restore()
	slog.SetDefault(g.logger)
	log.SetOutput(g.logOut)
	log.SetFlags(g.logFlags)
	color.NoColor = g.noColor
}

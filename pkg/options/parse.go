// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package options

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/kraklabs/mvnboot/internal/errors"
)

// ColorMode is the resolved --color decision.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColor accepts always/yes/force, never/no/none and auto/tty/if-tty,
// case-insensitively.
func ParseColor(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always", "yes", "force":
		return ColorAlways, nil
	case "never", "no", "none":
		return ColorNever, nil
	case "auto", "tty", "if-tty":
		return ColorAuto, nil
	}
	return ColorAuto, errors.NewInputError(
		fmt.Sprintf("Invalid color configuration value '%s'", s),
		"Supported values are always/yes/force, never/no/none and auto/tty/if-tty",
		"Pass one of the supported values to --color or style.color",
		nil,
	)
}

// ParseSeverity parses a --fail-on-severity threshold (WARN or ERROR).
func ParseSeverity(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelError, errors.NewInputError(
		fmt.Sprintf("Invalid severity '%s'", s),
		"--fail-on-severity only accepts WARN or ERROR",
		"Use --fail-on-severity WARN or --fail-on-severity ERROR",
		nil,
	)
}

// ParseThreads parses a thread count: a positive integer, or a positive
// multiplier followed by C applied to procs (rounded, at least 1).
func ParseThreads(s string, procs int) (int, error) {
	s = strings.TrimSpace(s)
	if mult, ok := strings.CutSuffix(s, "C"); ok {
		f, err := strconv.ParseFloat(mult, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, threadsError(s, "Expected a number before 'C'", err)
		}
		if f <= 0 {
			return 0, threadsError(s, "The core multiplier must be positive", nil)
		}
		n := int(math.Floor(f*float64(procs) + 0.5))
		return max(n, 1), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, threadsError(s, "Expected an integer or a core multiplier such as 1.5C", err)
	}
	if n <= 0 {
		return 0, threadsError(s, "The thread count must be positive", nil)
	}
	return n, nil
}

func threadsError(s, cause string, err error) error {
	return errors.NewInputError(
		fmt.Sprintf("Invalid threads value: '%s'", s),
		cause,
		"Supply a positive integer (-T 4) or a core multiplier (-T 1C)",
		err,
	)
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package options models the recognized command line switches.
//
// A source (command line, project config file, ...) is parsed into an
// Options whose Values holds one optional value per switch. Several sources
// compose with Layered: the earliest layer dominates scalar and list
// switches, while user properties are unioned with the last layer winning.
package options

import (
	"io"

	"github.com/kraklabs/mvnboot/internal/errors"
)

// Options is a read-only set of switches from one or more sources.
type Options interface {
	// Values returns the effective switches.
	Values() Values
	// Source names where the switches came from.
	Source() string
	// Interpolate returns a copy with every string switch interpolated.
	Interpolate(sources ...map[string]string) Options
	// DisplayHelp writes usage information to w.
	DisplayHelp(w io.Writer)
	// Deprecations lists the distinct deprecated switches that were used.
	Deprecations() []Deprecation
}

// Deprecation describes a deprecated switch found in a source.
type Deprecation struct {
	Option      string // as typed, e.g. --global-settings
	Replacement string // e.g. --install-settings
}

// Message is the warning shown to the user.
func (d Deprecation) Message() string {
	msg := "Option " + d.Option + " is deprecated and will be removed in a future version."
	if d.Replacement != "" {
		msg += " Use " + d.Replacement + " instead."
	}
	return msg
}

// Static is an Options backed by fixed values. Sources that are not command
// lines (tests, embedders) use it directly.
type Static struct {
	Name string
	Vals Values
	Help func(w io.Writer)
	Depr []Deprecation
}

func (s *Static) Values() Values { return s.Vals }

func (s *Static) Source() string { return s.Name }

func (s *Static) Interpolate(sources ...map[string]string) Options {
	cp := *s
	cp.Vals = InterpolateValues(s.Vals, sources...)
	return &cp
}

func (s *Static) DisplayHelp(w io.Writer) {
	if s.Help != nil {
		s.Help(w)
	}
}

func (s *Static) Deprecations() []Deprecation { return s.Depr }

// layered answers from an ordered list of Options, earliest dominant.
type layered struct {
	layers []Options
}

// Layered composes options, the first one taking precedence. A single
// element is returned as is; an empty list is an error.
func Layered(layers ...Options) (Options, error) {
	switch len(layers) {
	case 0:
		return nil, errors.NewInputError(
			"No options specified (or empty)",
			"Layered options need at least one source",
			"",
			nil,
		)
	case 1:
		return layers[0], nil
	}
	return &layered{layers: append([]Options(nil), layers...)}, nil
}

// Layers returns the underlying sources of a layered Options, or o itself.
func Layers(o Options) []Options {
	if l, ok := o.(*layered); ok {
		return append([]Options(nil), l.layers...)
	}
	return []Options{o}
}

func (l *layered) Values() Values {
	vs := make([]Values, len(l.layers))
	for i, o := range l.layers {
		vs[i] = o.Values()
	}
	return Merge(vs...)
}

func (l *layered) Source() string {
	src := ""
	for i, o := range l.layers {
		if i > 0 {
			src += ", "
		}
		src += o.Source()
	}
	return src
}

func (l *layered) Interpolate(sources ...map[string]string) Options {
	out := make([]Options, len(l.layers))
	for i, o := range l.layers {
		out[i] = o.Interpolate(sources...)
	}
	return &layered{layers: out}
}

func (l *layered) DisplayHelp(w io.Writer) {
	l.layers[0].DisplayHelp(w)
}

func (l *layered) Deprecations() []Deprecation {
	seen := map[string]bool{}
	var out []Deprecation
	for _, o := range l.layers {
		for _, d := range o.Deprecations() {
			if !seen[d.Option] {
				seen[d.Option] = true
				out = append(out, d)
			}
		}
	}
	return out
}

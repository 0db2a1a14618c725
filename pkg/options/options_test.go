// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package options

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/opt"
)

func static(name string, v Values) Options {
	return &Static{Name: name, Vals: v}
}

func TestLayered_EmptyFails(t *testing.T) {
	_, err := Layered()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInput))
}

func TestLayered_SingleIsUnwrapped(t *testing.T) {
	only := static("only", Values{})
	got, err := Layered(only)
	require.NoError(t, err)
	assert.Same(t, only, got)
}

func TestLayered_ScalarFirstPresentWins(t *testing.T) {
	orders := [][]Values{
		{{}, {Threads: opt.Of("2")}, {Threads: opt.Of("8")}},
		{{Threads: opt.Of("4")}, {}, {Threads: opt.Of("8")}},
		{{}, {}, {Threads: opt.Of("1C")}},
	}
	want := []string{"2", "4", "1C"}

	for i, vs := range orders {
		layers := make([]Options, len(vs))
		for j, v := range vs {
			layers[j] = static("l", v)
		}
		o, err := Layered(layers...)
		require.NoError(t, err)
		got, ok := o.Values().Threads.Get()
		require.True(t, ok)
		assert.Equal(t, want[i], got)
	}

	o, err := Layered(static("a", Values{}), static("b", Values{}))
	require.NoError(t, err)
	assert.False(t, o.Values().Threads.IsPresent())
	assert.False(t, o.Values().Verbose.IsPresent())
}

func TestLayered_PresentFalseDominates(t *testing.T) {
	o, err := Layered(static("cli", Values{Offline: opt.Of(false)}), static("cfg", Values{Offline: opt.Of(true)}))
	require.NoError(t, err)
	got, ok := o.Values().Offline.Get()
	assert.True(t, ok)
	assert.False(t, got)
}

func TestLayered_ListConcatenates(t *testing.T) {
	o, err := Layered(
		static("a", Values{ActiveProfiles: opt.Of([]string{"p1"})}),
		static("b", Values{}),
		static("c", Values{ActiveProfiles: opt.Of([]string{"p2", "p3"})}),
	)
	require.NoError(t, err)
	got, ok := o.Values().ActiveProfiles.Get()
	require.True(t, ok)
	assert.Equal(t, []string{"p1", "p2", "p3"}, got)
}

func TestLayered_ListAbsentVsEmpty(t *testing.T) {
	absent, err := Layered(static("a", Values{}), static("b", Values{}))
	require.NoError(t, err)
	assert.False(t, absent.Values().Projects.IsPresent())

	empty, err := Layered(static("a", Values{Projects: opt.Of([]string{})}), static("b", Values{}))
	require.NoError(t, err)
	got, ok := empty.Values().Projects.Get()
	assert.True(t, ok)
	assert.Empty(t, got)
}

// User properties union with put-all semantics: the LAST layer wins on a
// key collision, unlike scalars where the first layer wins.
func TestLayered_UserPropertiesLastPutWins(t *testing.T) {
	o, err := Layered(
		static("cli", Values{UserProperties: opt.Of(map[string]string{"k": "cli", "a": "1"}), Threads: opt.Of("cli")}),
		static("cfg", Values{UserProperties: opt.Of(map[string]string{"k": "cfg", "b": "2"}), Threads: opt.Of("cfg")}),
	)
	require.NoError(t, err)

	props, ok := o.Values().UserProperties.Get()
	require.True(t, ok)
	assert.Equal(t, map[string]string{"k": "cfg", "a": "1", "b": "2"}, props)
	assert.Equal(t, "cli", o.Values().Threads.OrElse(""))
}

func TestLayered_InterpolateKeepsLayers(t *testing.T) {
	a := static("a", Values{LogFile: opt.Of("${dir}/a.log")})
	b := static("b", Values{AltUserSettings: opt.Of("${dir}/settings.xml")})
	o, err := Layered(a, b)
	require.NoError(t, err)

	got := o.Interpolate(map[string]string{"dir": "/x"})

	layers := Layers(got)
	require.Len(t, layers, 2)
	assert.Equal(t, "/x/a.log", layers[0].Values().LogFile.OrElse(""))
	assert.Equal(t, "/x/settings.xml", layers[1].Values().AltUserSettings.OrElse(""))
	assert.Equal(t, "${dir}/a.log", a.Values().LogFile.OrElse(""), "original must not be mutated")
}

func TestLayered_DisplayHelpUsesFirstLayer(t *testing.T) {
	var calls []string
	a := &Static{Name: "a", Help: func(io.Writer) { calls = append(calls, "a") }}
	b := &Static{Name: "b", Help: func(io.Writer) { calls = append(calls, "b") }}

	o, err := Layered(a, b)
	require.NoError(t, err)
	o.DisplayHelp(&bytes.Buffer{})
	assert.Equal(t, []string{"a"}, calls)
}

func TestLayered_DeprecationsDistinct(t *testing.T) {
	d := Deprecation{Option: "-gs", Replacement: "--install-settings"}
	o, err := Layered(&Static{Name: "a", Depr: []Deprecation{d}}, &Static{Name: "b", Depr: []Deprecation{d}})
	require.NoError(t, err)
	assert.Equal(t, []Deprecation{d}, o.Deprecations())
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package options

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/opt"
)

func TestParseThreads(t *testing.T) {
	tests := []struct {
		in      string
		procs   int
		want    int
		wantErr bool
	}{
		{in: "4", procs: 4, want: 4},
		{in: "0", procs: 4, wantErr: true},
		{in: "-1", procs: 4, wantErr: true},
		{in: "2C", procs: 4, want: 8},
		{in: "2.5C", procs: 4, want: 10},
		{in: "0.1C", procs: 4, want: 1},
		{in: "0C", procs: 4, wantErr: true},
		{in: "-1C", procs: 4, wantErr: true},
		{in: "abcC", procs: 4, wantErr: true},
		{in: "abc", procs: 4, wantErr: true},
		{in: "", procs: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseThreads(tt.in, tt.procs)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]ColorMode{
		"always": ColorAlways, "YES": ColorAlways, "force": ColorAlways,
		"never": ColorNever, "no": ColorNever, "none": ColorNever,
		"auto": ColorAuto, "tty": ColorAuto, "if-tty": ColorAuto,
	} {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseColor("sometimes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInput))
}

func TestParseSeverity(t *testing.T) {
	lvl, err := ParseSeverity("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseSeverity("ERROR")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, lvl)

	_, err = ParseSeverity("info")
	assert.True(t, errors.Is(err, errors.ErrInput))
}

func TestInterpolate(t *testing.T) {
	first := map[string]string{"a": "first", "nested": "${b}"}
	second := map[string]string{"a": "second", "b": "deep"}

	assert.Equal(t, "first", Interpolate("${a}", first, second))
	assert.Equal(t, "x-deep-y", Interpolate("x-${nested}-y", first, second))
	assert.Equal(t, "${missing}", Interpolate("${missing}", first, second))
	assert.Equal(t, "fallback", Interpolate("${missing:-fallback}", first))
	assert.Equal(t, "first", Interpolate("${missing:-${a}}", first))
	assert.Equal(t, "unterminated ${a", Interpolate("unterminated ${a", first))
	assert.Equal(t, "${self}", Interpolate("${self}", map[string]string{"self": "${self}"}))
}

func TestInterpolateValues_Idempotent(t *testing.T) {
	sources := []map[string]string{{"top": "/proj", "home": "/home/u"}}
	v := Values{
		LogFile:         opt.Of("${top}/build.log"),
		AltUserSettings: opt.Of("${home}/.m2/settings.xml"),
		Goals:           opt.Of([]string{"${top}"}),
		UserProperties:  opt.Of(map[string]string{"p": "${home}"}),
		Offline:         opt.Of(true),
	}

	once := InterpolateValues(v, sources...)
	twice := InterpolateValues(once, sources...)

	assert.Equal(t, "/proj/build.log", once.LogFile.OrElse(""))
	assert.Equal(t, "/home/u/.m2/settings.xml", once.AltUserSettings.OrElse(""))
	assert.Equal(t, []string{"/proj"}, once.Goals.OrElse(nil))
	assert.Equal(t, "/home/u", once.UserProperties.OrElse(nil)["p"])
	assert.Equal(t, once, twice)
	assert.Equal(t, "${top}/build.log", v.LogFile.OrElse(""), "input must not be mutated")
	assert.Equal(t, "${home}", v.UserProperties.OrElse(nil)["p"])
}

func TestFieldNames_Unique(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range FieldNames() {
		assert.False(t, seen[n], n)
		seen[n] = true
	}
	assert.GreaterOrEqual(t, len(seen), 40)
}

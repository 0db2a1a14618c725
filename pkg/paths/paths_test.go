// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/sysprops"
)

func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestCanonical_NonExistentSuffix(t *testing.T) {
	base := canonicalTempDir(t)

	got, err := Canonical(filepath.Join(base, "not", "yet", "created"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "not", "yet", "created"), got)
}

func TestCanonical_ResolvesSymlinks(t *testing.T) {
	base := canonicalTempDir(t)
	target := filepath.Join(base, "target")
	require.NoError(t, os.Mkdir(target, 0o750))
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Canonical(filepath.Join(link, "missing"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "missing"), got)
}

func TestTopDirectory_NoFileArgument(t *testing.T) {
	cwd := canonicalTempDir(t)

	top, err := TopDirectory(cwd, []string{"clean", "install"})
	require.NoError(t, err)
	assert.Equal(t, cwd, top)
}

func TestTopDirectory_PomFile(t *testing.T) {
	cwd := canonicalTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cwd, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "sub", "pom.xml"), []byte("<project/>"), 0o600))

	top, err := TopDirectory(cwd, []string{"-f", "sub/pom.xml"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "sub"), top)
}

func TestTopDirectory_Directory(t *testing.T) {
	cwd := canonicalTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cwd, "sub"), 0o750))

	for _, args := range [][]string{
		{"-f", "sub"},
		{"--file", "\"sub\""},
		{"--file=sub"},
		{"-fsub"},
		{"-f=sub"},
		{"-fae", "-f=sub"},
	} {
		top, err := TopDirectory(cwd, args)
		require.NoError(t, err, "args %v", args)
		assert.Equal(t, filepath.Join(cwd, "sub"), top, "args %v", args)
	}
}

func TestTopDirectory_Missing(t *testing.T) {
	cwd := canonicalTempDir(t)

	_, err := TopDirectory(cwd, []string{"-f", "nope/pom.xml"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParser))
	assert.Contains(t, err.Error(), "POM file specified does not exist")

	_, err = TopDirectory(cwd, []string{"-f"})
	assert.True(t, errors.Is(err, errors.ErrParser))

	_, err = TopDirectory(cwd, []string{"-f="})
	assert.True(t, errors.Is(err, errors.ErrParser))
}

func TestTopDirectory_MultiLetterSwitchesAreNotFiles(t *testing.T) {
	cwd := canonicalTempDir(t)

	top, err := TopDirectory(cwd, []string{"-fae", "-ff", "-fn", "-fos", "WARN", "verify"})
	require.NoError(t, err)
	assert.Equal(t, cwd, top)
}

func TestInstallationDirectory(t *testing.T) {
	home := canonicalTempDir(t)

	sysprops.Scoped(func() {
		sysprops.Unset(request.MavenHome)

		r := &Resolver{Getenv: func(string) string { return "" }}
		_, err := r.InstallationDirectory("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "local mode requires installation home set")

		r.Getenv = func(key string) string {
			if key == request.EnvMavenHome {
				return home
			}
			return ""
		}
		got, err := r.InstallationDirectory("")
		require.NoError(t, err)
		assert.Equal(t, home, got)
	})
}

func TestCwdAndUserHome_Overrides(t *testing.T) {
	dir := canonicalTempDir(t)
	r := &Resolver{}

	cwd, err := r.Cwd(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cwd)

	home, err := r.UserHome(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, home)
}

func TestRootDirectory(t *testing.T) {
	base := canonicalTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(base, ".mvn"), 0o750))
	module := filepath.Join(base, "a", "b")
	require.NoError(t, os.MkdirAll(module, 0o750))

	r := &Resolver{}
	root, ok := r.RootDirectory(module).Get()
	require.True(t, ok)
	assert.Equal(t, base, root)
}

func TestRootDirectory_PomRootAttribute(t *testing.T) {
	base := canonicalTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "pom.xml"),
		[]byte(`<?xml version="1.0"?><project root="true"></project>`), 0o600))

	root, ok := (&Resolver{}).RootDirectory(base).Get()
	require.True(t, ok)
	assert.Equal(t, base, root)
}

type noRoot struct{}

func (noRoot) FindRoot(string) (string, bool) { return "", false }

func TestRootDirectory_Absent(t *testing.T) {
	r := &Resolver{Locator: noRoot{}}
	assert.False(t, r.RootDirectory(canonicalTempDir(t)).IsPresent())
}

func TestConfDirectory(t *testing.T) {
	install := "/opt/maven"

	assert.Equal(t, "/opt/maven/conf", ConfDirectory(install))
	assert.Equal(t, "/home/m/conf", ConfDirectory(install, map[string]string{request.MavenHome: "/home/m"}))
	assert.Equal(t, "/opt/maven/etc", ConfDirectory(install,
		map[string]string{request.MavenConf: "etc"},
		map[string]string{request.MavenHome: "/home/m"},
	))
	assert.Equal(t, "/alt", ConfDirectory(install,
		map[string]string{request.MavenConf: "etc"},
		map[string]string{request.MavenInstallationConf: "/alt"},
	))
}

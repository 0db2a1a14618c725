// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/options"
	"github.com/kraklabs/mvnboot/pkg/paths"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/sysprops"
)

type cliStrategy struct {
	sources int
}

func (s cliStrategy) ParseOptions(lc *LocalContext) ([]options.Options, error) {
	n := s.sources
	if n == 0 {
		n = 1
	}
	var out []options.Options
	for i := 0; i < n; i++ {
		o, err := options.ParseCLI("mvn", "command line", lc.ParserRequest.Args)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (cliStrategy) AssembleOptions(_ *LocalContext, parsed []options.Options) (options.Options, error) {
	return options.Layered(parsed...)
}

func (cliStrategy) Request(lc *LocalContext) (*request.Request, error) {
	return lc.NewRequest(), nil
}

type captureLogger struct {
	warnings []string
}

func (c *captureLogger) Info(string)     {}
func (c *captureLogger) Warn(msg string) { c.warnings = append(c.warnings, msg) }
func (c *captureLogger) Error(string)    {}

type fixture struct {
	install, home, proj string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		install: filepath.Join(root, "install"),
		home:    filepath.Join(root, "home"),
		proj:    filepath.Join(root, "proj"),
	}
	for _, d := range []string{filepath.Join(f.install, "conf"), f.home, filepath.Join(f.proj, ".mvn")} {
		require.NoError(t, os.MkdirAll(d, 0o750))
	}
	for _, p := range []*string{&f.install, &f.home, &f.proj} {
		c, err := paths.Canonical(*p)
		require.NoError(t, err)
		*p = c
	}
	return f
}

func (f fixture) request(args ...string) request.ParserRequest {
	return request.ParserRequest{
		Command:               "mvn",
		CommandName:           "Maven",
		Version:               "4.0.0",
		Args:                  args,
		Cwd:                   f.proj,
		UserHome:              f.home,
		InstallationDirectory: f.install,
		Environ:               []string{"FOO=bar", "PATH=/bin"},
		Logger:                &captureLogger{},
	}
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestParse_EndToEndDefaults(t *testing.T) {
	f := newFixture(t)

	req, err := New(cliStrategy{}).Parse(f.request("clean", "install"))
	require.NoError(t, err)

	assert.Equal(t, f.proj, req.Cwd())
	assert.Equal(t, f.proj, req.TopDirectory())
	assert.Equal(t, f.install, req.InstallationDirectory())
	assert.Equal(t, f.home, req.UserHomeDirectory())
	root, ok := req.RootDirectory().Get()
	assert.True(t, ok)
	assert.Equal(t, f.proj, root)

	v := req.Options().Values()
	assert.Equal(t, []string{"clean", "install"}, v.Goals.OrElse(nil))
	assert.False(t, v.AltUserSettings.IsPresent())
	assert.False(t, v.AltProjectSettings.IsPresent())
	assert.False(t, v.AltInstallationSettings.IsPresent())
	assert.Empty(t, req.CoreExtensions())
	assert.Empty(t, req.UserProperties())
}

func TestParse_SystemProperties(t *testing.T) {
	f := newFixture(t)

	req, err := New(cliStrategy{}).Parse(f.request())
	require.NoError(t, err)

	sys := req.SystemProperties()
	assert.Equal(t, "bar", sys["env.FOO"])
	assert.Equal(t, f.proj, sys[sysprops.UserDir])
	assert.Equal(t, f.home, sys[sysprops.UserHome])
	assert.Equal(t, f.install, sys[request.MavenHome])
	assert.Equal(t, "4.0.0", sys[request.MavenVersion])
	assert.Equal(t, "Maven 4.0.0", sys[request.MavenBuildVersion])
}

func TestParse_UserPropertiesFile(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.install, "conf", "maven.properties"),
		"a=${session.topDirectory}/x\nb=${cli.foo}\nc=file\nd=${env.FOO}\n")

	req, err := New(cliStrategy{}).Parse(f.request("-Dfoo=cli-foo", "-Dc=cli"))
	require.NoError(t, err)

	user := req.UserProperties()
	assert.Equal(t, f.proj+"/x", user["a"])
	assert.Equal(t, "cli-foo", user["b"])
	assert.Equal(t, "cli", user["c"], "command line properties dominate the file")
	assert.Equal(t, "bar", user["d"])
	assert.Equal(t, "cli-foo", user["foo"])
}

func TestParse_InstallationConfOverride(t *testing.T) {
	f := newFixture(t)
	alt := filepath.Join(f.install, "alt")
	write(t, filepath.Join(alt, "maven.properties"), "from=alt\n")
	write(t, filepath.Join(f.install, "conf", "maven.properties"), "from=conf\n")

	req, err := New(cliStrategy{}).Parse(f.request("-Dmaven.installation.conf=" + alt))
	require.NoError(t, err)
	assert.Equal(t, "alt", req.UserProperties()["from"])
}

func TestParse_InterpolatesOptions(t *testing.T) {
	f := newFixture(t)

	req, err := New(cliStrategy{}).Parse(f.request("-s", "${session.topDirectory}/s.xml", "-Dname=v", "-l", "${name}.log"))
	require.NoError(t, err)

	v := req.Options().Values()
	assert.Equal(t, f.proj+"/s.xml", v.AltUserSettings.OrElse(""))
	assert.Equal(t, "v.log", v.LogFile.OrElse(""))
}

func TestParse_DeprecationWarnedOncePerOption(t *testing.T) {
	f := newFixture(t)
	pr := f.request("-gs", "a.xml", "-gs", "b.xml")
	logger := &captureLogger{}
	pr.Logger = logger

	_, err := New(cliStrategy{sources: 2}).Parse(pr)
	require.NoError(t, err)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "-gs")
}

func TestParse_MissingInstallation(t *testing.T) {
	f := newFixture(t)
	pr := f.request()
	pr.InstallationDirectory = ""

	sysprops.Scoped(func() {
		sysprops.Unset(request.MavenHome)
		_, err := New(cliStrategy{}).Parse(pr)

		var se *StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "paths", se.Stage)
		assert.True(t, errors.Is(err, errors.ErrConfig))
	})
}

func TestParse_FileArgument(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.proj, "sub", "pom.xml"), "<project/>")

	req, err := New(cliStrategy{}).Parse(f.request("-f", "sub/pom.xml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.proj, "sub"), req.TopDirectory())

	req, err = New(cliStrategy{}).Parse(f.request("-fsub/pom.xml", "verify"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.proj, "sub"), req.TopDirectory())
	assert.Equal(t, "sub/pom.xml", req.Options().Values().AlternatePomFile.OrElse(""))

	_, err = New(cliStrategy{}).Parse(f.request("-f", "missing"))
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "directories", se.Stage)
	assert.True(t, errors.Is(err, errors.ErrParser))
}

func TestParse_ConcurrentCallsShareParser(t *testing.T) {
	p := New(cliStrategy{})
	fixtures := []fixture{newFixture(t), newFixture(t), newFixture(t), newFixture(t)}
	tops := make([]string, len(fixtures))

	var g errgroup.Group
	for i, f := range fixtures {
		i, f := i, f
		g.Go(func() error {
			req, err := p.Parse(f.request("verify"))
			if err != nil {
				return err
			}
			tops[i] = req.TopDirectory()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i, f := range fixtures {
		assert.Equal(t, f.proj, tops[i])
	}
}

func TestParse_CoreExtensionsInScopeOrder(t *testing.T) {
	f := newFixture(t)
	desc := func(a string) string {
		return `<extensions><extension><groupId>g</groupId><artifactId>` + a +
			`</artifactId><version>1</version><configuration><k>v</k></configuration></extension></extensions>`
	}
	write(t, filepath.Join(f.install, "conf", "extensions.xml"), desc("install"))
	write(t, filepath.Join(f.proj, ".mvn", "extensions.xml"), desc("project"))
	write(t, filepath.Join(f.home, ".m2", "extensions.xml"), desc("user"))

	req, err := New(cliStrategy{}).Parse(f.request())
	require.NoError(t, err)

	exts := req.CoreExtensions()
	require.Len(t, exts, 3)
	assert.Equal(t, "install", exts[0].ArtifactID)
	assert.Equal(t, "project", exts[1].ArtifactID)
	assert.Equal(t, "user", exts[2].ArtifactID)
	assert.Equal(t, "<k>v</k>", exts[0].Configuration)
	assert.Equal(t, filepath.Join(f.proj, ".mvn", "extensions.xml"), exts[1].Source)
}

func TestParse_MalformedExtensions(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.proj, ".mvn", "extensions.xml"), "<extensions><extension>")

	req, err := New(cliStrategy{}).Parse(f.request())
	assert.Nil(t, req)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "coreExtensions", se.Stage)
	assert.True(t, errors.Is(err, errors.ErrParser))
}

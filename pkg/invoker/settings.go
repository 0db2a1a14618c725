// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/opt"
	"github.com/kraklabs/mvnboot/pkg/paths"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/settings"
)

// settingsFile picks a settings path: the explicit option, which must exist,
// else the property, else the default. Derived paths that do not exist are
// dropped.
func settingsFile(ctx *Context, scope string, explicit opt.Value[string], propKey, def string) (string, error) {
	req := ctx.Request
	if file, ok := explicit.Get(); ok {
		path := paths.Resolve(req.Cwd(), file)
		if !exists(path) {
			return "", errors.NewFileNotFoundError(path,
				fmt.Sprintf("The %s settings file given on the command line is missing", scope),
				"Fix the path or drop the option to use the default settings",
			)
		}
		return path, nil
	}

	path := def
	if v, ok := property(req, propKey).Get(); ok && v != "" {
		path = paths.Resolve(req.Cwd(), v)
	}
	if path == "" || !exists(path) {
		ctx.Logger.Debug("settings.skip", "scope", scope, "path", path)
		return "", nil
	}
	return path, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (i *Invoker) settings(ctx *Context) error {
	req := ctx.Request
	v := ctx.Values
	userProps, sysProps := req.UserProperties(), req.SystemProperties()

	confDir := paths.ConfDirectory(req.InstallationDirectory(), userProps, sysProps)
	userConf := property(req, request.MavenUserConf).OrElse(filepath.Join(req.UserHomeDirectory(), request.UserConfDir))

	install, err := settingsFile(ctx, "installation", v.AltInstallationSettings,
		request.MavenInstallSettings, filepath.Join(confDir, request.SettingsFile))
	if err != nil {
		return err
	}
	projectDefault := ""
	if root, ok := req.RootDirectory().Get(); ok {
		projectDefault = filepath.Join(root, request.ProjectConfDir, request.SettingsFile)
	}
	project, err := settingsFile(ctx, "project", v.AltProjectSettings,
		request.MavenProjectSettings, projectDefault)
	if err != nil {
		return err
	}
	user, err := settingsFile(ctx, "user", v.AltUserSettings,
		request.MavenUserSettings, filepath.Join(userConf, request.SettingsFile))
	if err != nil {
		return err
	}

	res, err := ctx.SettingsBuilder.Build(settings.Request{
		InstallationSettings: install,
		ProjectSettings:      project,
		UserSettings:         user,
		UserProperties:       userProps,
		SystemProperties:     sysProps,
	})
	if err != nil {
		return err
	}
	for _, p := range res.Problems {
		ctx.Logger.Warn(p.String())
	}
	ctx.EffectiveSettings = res.Effective

	ctx.Interactive = interactive(ctx, res.Effective)
	ctx.Offline = v.Offline.OrElse(false) || (res.Effective.Offline != nil && *res.Effective.Offline)
	ctx.LocalRepository = localRepository(ctx, res.Effective, userConf)
	ctx.Logger.Debug("settings.effective",
		"interactive", ctx.Interactive, "offline", ctx.Offline, "localRepository", ctx.LocalRepository)
	return nil
}

// interactive is on unless settings, the CI variable or --non-interactive
// turn it off. Only --force-interactive turns it back on.
func interactive(ctx *Context, s *settings.Settings) bool {
	v := ctx.Values
	if v.ForceInteractive.OrElse(false) {
		return true
	}
	if v.NonInteractive.OrElse(false) {
		return false
	}
	if ci, ok := ctx.Request.ParserRequest().Env()[request.EnvCI]; ok && isCI(ci) {
		ctx.Logger.Info(fmt.Sprintf(
			"Making this build non-interactive, because the environment variable %s equals %q", request.EnvCI, ci))
		return false
	}
	if s.InteractiveMode != nil {
		return *s.InteractiveMode
	}
	return true
}

// isCI treats any non-empty CI value other than "false" as set.
func isCI(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "false")
}

// localRepository resolves maven.repo.local: user property, then system
// property (deprecated), then settings, then <user conf>/repository.
func localRepository(ctx *Context, s *settings.Settings, userConf string) string {
	req := ctx.Request
	if v, ok := req.UserProperties()[request.MavenRepoLocal]; ok && v != "" {
		return paths.Resolve(req.Cwd(), v)
	}
	if v, ok := req.SystemProperties()[request.MavenRepoLocal]; ok && v != "" {
		ctx.Logger.Warn(fmt.Sprintf(
			"Setting %s as a system property is deprecated; pass it as a user property with -D%s=... instead",
			request.MavenRepoLocal, request.MavenRepoLocal))
		return paths.Resolve(req.Cwd(), v)
	}
	if s.LocalRepository != "" {
		return paths.Resolve(req.Cwd(), s.LocalRepository)
	}
	return filepath.Join(userConf, request.LocalRepositoryDir)
}

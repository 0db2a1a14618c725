// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package paths resolves the directories an invocation runs against: the
// working directory, the installation directory, the user home and the
// top/root project directories.
//
// Every returned path is absolute and canonical (symlinks resolved). Paths
// that do not exist yet are canonicalized through their nearest existing
// parent.
package paths

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/opt"
	"github.com/kraklabs/mvnboot/pkg/options"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/sysprops"
)

// RootLocator finds the project root starting from the top directory.
type RootLocator interface {
	FindRoot(topDirectory string) (string, bool)
}

// Resolver resolves invocation directories. The zero value reads the
// process environment and uses DefaultRootLocator.
type Resolver struct {
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
	// Locator finds the root directory. Defaults to DefaultRootLocator.
	Locator RootLocator
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv != nil {
		return r.Getenv(key)
	}
	return os.Getenv(key)
}

// Cwd resolves the working directory: override if given, else user.dir.
func (r *Resolver) Cwd(override string) (string, error) {
	if override != "" {
		return Canonical(override)
	}
	if dir := sysprops.Lookup(sysprops.UserDir); dir != "" {
		return Canonical(dir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		)
	}
	return Canonical(wd)
}

// InstallationDirectory resolves the installation home with precedence:
// override > maven.home property > MAVEN_HOME. It is the only mandatory
// input of path resolution.
func (r *Resolver) InstallationDirectory(override string) (string, error) {
	home := override
	if home == "" {
		home = sysprops.Lookup(request.MavenHome)
	}
	if home == "" {
		home = r.getenv(request.EnvMavenHome)
	}
	if home == "" {
		return "", errors.NewConfigError(
			"local mode requires installation home set",
			fmt.Sprintf("Neither the %s property nor the %s environment variable is set", request.MavenHome, request.EnvMavenHome),
			fmt.Sprintf("Export %s pointing at the installation directory", request.EnvMavenHome),
			nil,
		)
	}
	return Canonical(home)
}

// UserHome resolves the user home: override if given, else user.home.
func (r *Resolver) UserHome(override string) (string, error) {
	if override != "" {
		return Canonical(override)
	}
	if home := sysprops.Lookup(sysprops.UserHome); home != "" {
		return Canonical(home)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot determine home directory",
			"Operating system did not provide user home directory path",
			"Check your system configuration or set HOME environment variable",
			err,
		)
	}
	return Canonical(home)
}

// RootDirectory asks the locator for the project root above top. It never fails.
func (r *Resolver) RootDirectory(top string) opt.Value[string] {
	locator := r.Locator
	if locator == nil {
		locator = DefaultRootLocator{}
	}
	root, ok := locator.FindRoot(top)
	if !ok {
		return opt.None[string]()
	}
	if canon, err := Canonical(root); err == nil {
		root = canon
	}
	return opt.Of(root)
}

// TopDirectory returns cwd unless args carry -f/--file. A directory argument
// becomes the top directory; a file argument contributes its parent.
func TopDirectory(cwd string, args []string) (string, error) {
	file, found, err := fileArgument(args)
	if err != nil {
		return "", err
	}
	if !found {
		return cwd, nil
	}

	path := Resolve(cwd, file)
	info, statErr := os.Stat(path)
	switch {
	case statErr == nil && info.IsDir():
		return Canonical(path)
	case statErr == nil && info.Mode().IsRegular():
		parent := filepath.Dir(path)
		if _, err := os.Stat(parent); err != nil {
			return "", errors.NewParserError(
				"Parent directory of POM file does not exist",
				fmt.Sprintf("%s has no existing parent directory", path),
				"Point -f at an existing POM file or project directory",
				err,
			)
		}
		return Canonical(parent)
	default:
		return "", errors.NewParserError(
			"POM file specified does not exist",
			fmt.Sprintf("POM file %s specified with the -f/--file command line argument does not exist", path),
			"Point -f at an existing POM file or project directory",
			statErr,
		)
	}
}

func fileArgument(args []string) (string, bool, error) {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--file="); ok {
			return StripQuotes(v), true, nil
		}
		// -fpom.xml and -f=pom.xml, as pflag reads them; -fae and friends are
		// switches of their own.
		if v, ok := strings.CutPrefix(arg, "-f"); ok && v != "" && !strings.HasPrefix(v, "-") && !options.IsAlias(arg) {
			v = strings.TrimPrefix(v, "=")
			if v == "" {
				return "", false, errors.NewParserError(
					"Missing argument for option -f",
					"The -f/--file option requires a path",
					"Pass a POM file or project directory after -f",
					nil,
				)
			}
			return StripQuotes(v), true, nil
		}
		if arg == "-f" || arg == "--file" {
			if i+1 >= len(args) {
				return "", false, errors.NewParserError(
					"Missing argument for option "+arg,
					"The -f/--file option requires a path",
					"Pass a POM file or project directory after "+arg,
					nil,
				)
			}
			return StripQuotes(args[i+1]), true, nil
		}
	}
	return "", false, nil
}

// ConfDirectory resolves the installation configuration directory from the
// first property map holding a value: maven.installation.conf, then
// maven.conf, then <maven.home>/conf, then the installation's conf.
func ConfDirectory(installation string, props ...map[string]string) string {
	prop := func(key string) string {
		for _, m := range props {
			if v, ok := m[key]; ok {
				return v
			}
		}
		return ""
	}
	if v := prop(request.MavenInstallationConf); v != "" {
		return Resolve(installation, v)
	}
	if v := prop(request.MavenConf); v != "" {
		return Resolve(installation, v)
	}
	if v := prop(request.MavenHome); v != "" {
		return Resolve(v, request.ConfDir)
	}
	return Resolve(installation, request.ConfDir)
}

// StripQuotes removes one pair of matching leading and trailing quotes.
func StripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Resolve resolves p against base unless p is absolute.
func Resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// Canonical returns the absolute, symlink-free form of path. When path does
// not exist the nearest existing parent is canonicalized and the missing
// suffix appended.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}

	dir := abs
	suffix := []string{}
	for {
		parent := filepath.Dir(dir)
		suffix = append([]string{filepath.Base(dir)}, suffix...)
		if parent == dir {
			return abs, nil
		}
		if real, err := filepath.EvalSymlinks(parent); err == nil {
			return filepath.Join(append([]string{real}, suffix...)...), nil
		}
		dir = parent
	}
}

// DefaultRootLocator walks upward from the top directory and stops at the
// first directory that holds a .mvn directory or a POM flagged root="true".
type DefaultRootLocator struct{}

// FindRoot implements RootLocator.
func (DefaultRootLocator) FindRoot(top string) (string, bool) {
	dir := top
	for {
		if isRoot(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isRoot(dir string) bool {
	if info, err := os.Stat(filepath.Join(dir, request.ProjectConfDir)); err == nil && info.IsDir() {
		return true
	}
	return pomDeclaresRoot(filepath.Join(dir, "pom.xml"))
}

func pomDeclaresRoot(pom string) bool {
	f, err := os.Open(pom) //nolint:gosec // G304: path derived from the project tree
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != "project" {
				return false
			}
			for _, attr := range start.Attr {
				if attr.Name.Local == "root" {
					return strings.TrimSpace(attr.Value) == "true"
				}
			}
			return false
		}
	}
}

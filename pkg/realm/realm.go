// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package realm models the bootstrap realm that core extensions are loaded
// into.
//
// Extensions are loaded installation scope first, then project, then user.
// The realm imports them in the reverse order, so an extension from a later
// scope shadows one with the same group:artifact from an earlier scope.
package realm

import (
	"os"
	"slices"
	"strings"

	"github.com/kraklabs/mvnboot/pkg/request"
)

// Realm is the ordered set of extensions and extra class path entries.
type Realm struct {
	name      string
	loaded    []request.CoreExtension
	classPath []string
}

// New creates a realm from extensions in load order.
func New(name string, loadOrder []request.CoreExtension, classPath []string) *Realm {
	return &Realm{
		name:      name,
		loaded:    slices.Clone(loadOrder),
		classPath: slices.Clone(classPath),
	}
}

func (r *Realm) Name() string { return r.name }

// Empty reports whether the realm has nothing to import.
func (r *Realm) Empty() bool {
	return len(r.loaded) == 0 && len(r.classPath) == 0
}

// Loaded returns the extensions in load order.
func (r *Realm) Loaded() []request.CoreExtension {
	return slices.Clone(r.loaded)
}

// Imports returns the extensions in import order: the reverse of load order.
func (r *Realm) Imports() []request.CoreExtension {
	out := slices.Clone(r.loaded)
	slices.Reverse(out)
	return out
}

// Effective returns Imports with shadowed extensions removed: for each
// group:artifact only the first one in import order is kept.
func (r *Realm) Effective() []request.CoreExtension {
	seen := map[string]bool{}
	var out []request.CoreExtension
	for _, ext := range r.Imports() {
		if seen[ext.Key()] {
			continue
		}
		seen[ext.Key()] = true
		out = append(out, ext)
	}
	return out
}

// Resolve returns the extension serving group:artifact key.
func (r *Realm) Resolve(key string) (request.CoreExtension, bool) {
	for _, ext := range r.Imports() {
		if ext.Key() == key {
			return ext, true
		}
	}
	return request.CoreExtension{}, false
}

// ClassPath returns the extra class path entries.
func (r *Realm) ClassPath() []string {
	return slices.Clone(r.classPath)
}

// ParseClassPath splits a platform path list, dropping blank entries.
func ParseClassPath(s string) []string {
	var out []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ClassPathFrom resolves maven.ext.class.path: user property, then system
// property, then MAVEN_EXT_CLASS_PATH.
func ClassPathFrom(userProps, sysProps, env map[string]string) []string {
	if v, ok := userProps[request.MavenExtClassPath]; ok {
		return ParseClassPath(v)
	}
	if v, ok := sysProps[request.MavenExtClassPath]; ok {
		return ParseClassPath(v)
	}
	return ParseClassPath(env[request.EnvMavenExtClassPath])
}

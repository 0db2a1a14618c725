// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package realm

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/mvnboot/pkg/request"
)

func ext(g, a, v, src string) request.CoreExtension {
	return request.CoreExtension{GroupID: g, ArtifactID: a, Version: v, Source: src}
}

func TestImports_ReverseOfLoadOrder(t *testing.T) {
	install := ext("org.acme", "tool", "1.0", "installation")
	project := ext("org.acme", "other", "2.0", "project")
	user := ext("org.acme", "tool", "3.0", "user")

	r := New("maven.ext", []request.CoreExtension{install, project, user}, nil)

	assert.Equal(t, []request.CoreExtension{user, project, install}, r.Imports())
	assert.Equal(t, []request.CoreExtension{install, project, user}, r.Loaded())
}

func TestEffective_LaterScopeShadows(t *testing.T) {
	install := ext("org.acme", "tool", "1.0", "installation")
	project := ext("org.acme", "other", "2.0", "project")
	user := ext("org.acme", "tool", "3.0", "user")

	r := New("maven.ext", []request.CoreExtension{install, project, user}, nil)

	assert.Equal(t, []request.CoreExtension{user, project}, r.Effective())
	got, ok := r.Resolve("org.acme:tool")
	assert.True(t, ok)
	assert.Equal(t, "3.0", got.Version)
	_, ok = r.Resolve("org.acme:missing")
	assert.False(t, ok)
}

func TestEmpty(t *testing.T) {
	assert.True(t, New("x", nil, nil).Empty())
	assert.False(t, New("x", nil, []string{"a.jar"}).Empty())
}

func TestClassPathFrom(t *testing.T) {
	sep := string(os.PathListSeparator)
	env := map[string]string{request.EnvMavenExtClassPath: "env.jar"}

	assert.Equal(t, []string{"env.jar"}, ClassPathFrom(nil, nil, env))
	assert.Equal(t, []string{"sys.jar"}, ClassPathFrom(nil, map[string]string{request.MavenExtClassPath: "sys.jar"}, env))
	assert.Equal(t, []string{"a.jar", "b.jar"}, ClassPathFrom(
		map[string]string{request.MavenExtClassPath: "a.jar" + sep + " " + sep + "b.jar"},
		map[string]string{request.MavenExtClassPath: "sys.jar"},
		env,
	))
	assert.Empty(t, ClassPathFrom(nil, nil, nil))
}

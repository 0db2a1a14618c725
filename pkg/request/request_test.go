// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package request

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mvnboot/pkg/opt"
	"github.com/kraklabs/mvnboot/pkg/options"
)

func TestParserRequest_Env(t *testing.T) {
	pr := ParserRequest{Environ: []string{"A=1", "B=x=y", "EMPTY=", "=ignored", "NOEQ"}}

	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "EMPTY": ""}, pr.Env())
}

func TestParserRequest_Writers(t *testing.T) {
	var pr ParserRequest
	assert.Equal(t, os.Stdout, pr.Out())
	assert.Equal(t, os.Stderr, pr.Err())

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	pr = ParserRequest{Stdout: out, Stderr: errOut}
	assert.Same(t, out, pr.Out())
	assert.Same(t, errOut, pr.Err())
}

func TestCoreExtension(t *testing.T) {
	e := CoreExtension{GroupID: "org.example", ArtifactID: "ext", Version: "1.0"}

	assert.Equal(t, "org.example:ext", e.Key())
	assert.Equal(t, "org.example:ext:1.0", e.String())
}

func TestRequest_Copies(t *testing.T) {
	opts, err := options.ParseCLI("mvn", "command line", []string{"verify"})
	require.NoError(t, err)

	args := []string{"verify"}
	user := map[string]string{"k": "v"}
	exts := []CoreExtension{{GroupID: "g", ArtifactID: "a", Version: "1"}}
	paths := Paths{Cwd: "/w", TopDirectory: "/w", RootDirectory: opt.Of("/w")}

	r := New(ParserRequest{Command: "mvn", Args: args, Environ: []string{"CI=true"}}, paths, user, map[string]string{"s": "1"}, opts, exts)

	args[0] = "changed"
	user["k"] = "changed"
	exts[0].Version = "2"
	assert.Equal(t, []string{"verify"}, r.ParserRequest().Args)
	assert.Equal(t, "v", r.UserProperties()["k"])
	assert.Equal(t, "1", r.CoreExtensions()[0].Version)

	got := r.UserProperties()
	got["k"] = "mutated"
	assert.Equal(t, "v", r.UserProperties()["k"])

	assert.Equal(t, "/w", r.TopDirectory())
	assert.Equal(t, "/w", r.RootDirectory().OrElse(""))
	assert.Equal(t, "1", r.SystemProperties()["s"])
	assert.Equal(t, os.Stdin, r.Stdin())
	assert.Equal(t, "true", r.ParserRequest().Env()["CI"])
	assert.Equal(t, os.Stdout, r.ParserRequest().Out())
}

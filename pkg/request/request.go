// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package request holds the parser input (ParserRequest) and its immutable
// output (Request), the fully resolved context of one invocation.
package request

import (
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/kraklabs/mvnboot/pkg/lookup"
	"github.com/kraklabs/mvnboot/pkg/opt"
	"github.com/kraklabs/mvnboot/pkg/options"
)

// ProtoLogger logs before the real logger is configured.
type ProtoLogger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// ParserRequest is the raw input of one invocation.
type ParserRequest struct {
	// Command is the executable name, e.g. "mvn".
	Command string
	// CommandName is a display name, e.g. "Maven".
	CommandName string
	// Version is the tool version, exposed as maven.version.
	Version string
	// Args are the raw arguments, without the executable.
	Args []string

	// Overrides; empty means resolve from the process.
	Cwd                   string
	UserHome              string
	InstallationDirectory string

	// Environ is the process environment in KEY=VALUE form. Nil means
	// os.Environ().
	Environ []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives bootstrap messages.
	Logger ProtoLogger
	// Lookup provides collaborators needed before the container exists.
	Lookup lookup.Lookup
}

// Env returns the environment as a map.
func (pr ParserRequest) Env() map[string]string {
	environ := pr.Environ
	if environ == nil {
		environ = os.Environ()
	}
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// Out returns Stdout or os.Stdout.
func (pr ParserRequest) Out() io.Writer {
	if pr.Stdout != nil {
		return pr.Stdout
	}
	return os.Stdout
}

// Err returns Stderr or os.Stderr.
func (pr ParserRequest) Err() io.Writer {
	if pr.Stderr != nil {
		return pr.Stderr
	}
	return os.Stderr
}

// Paths are the canonical directories of one invocation.
type Paths struct {
	Cwd                   string
	InstallationDirectory string
	UserHomeDirectory     string
	TopDirectory          string
	RootDirectory         opt.Value[string]
}

// CoreExtension is an extension loaded into the bootstrap realm.
type CoreExtension struct {
	GroupID       string `yaml:"groupId"`
	ArtifactID    string `yaml:"artifactId"`
	Version       string `yaml:"version"`
	Configuration string `yaml:"configuration,omitempty"` // raw XML, may be empty
	Source        string `yaml:"source"`                  // descriptor file it came from
}

// Key is group:artifact, the identity used for shadowing.
func (e CoreExtension) Key() string {
	return e.GroupID + ":" + e.ArtifactID
}

func (e CoreExtension) String() string {
	return e.GroupID + ":" + e.ArtifactID + ":" + e.Version
}

// Request is the immutable, fully resolved invocation context.
type Request struct {
	parser           ParserRequest
	paths            Paths
	userProperties   map[string]string
	systemProperties map[string]string
	options          options.Options
	extensions       []CoreExtension
}

// New builds a Request. The maps and slices are copied.
func New(pr ParserRequest, paths Paths, userProps, sysProps map[string]string, opts options.Options, exts []CoreExtension) *Request {
	pr.Args = slices.Clone(pr.Args)
	return &Request{
		parser:           pr,
		paths:            paths,
		userProperties:   maps.Clone(userProps),
		systemProperties: maps.Clone(sysProps),
		options:          opts,
		extensions:       slices.Clone(exts),
	}
}

// ParserRequest returns the input the request was parsed from.
func (r *Request) ParserRequest() ParserRequest {
	pr := r.parser
	pr.Args = slices.Clone(pr.Args)
	return pr
}

func (r *Request) Paths() Paths { return r.paths }

func (r *Request) Cwd() string { return r.paths.Cwd }

func (r *Request) InstallationDirectory() string { return r.paths.InstallationDirectory }

func (r *Request) UserHomeDirectory() string { return r.paths.UserHomeDirectory }

func (r *Request) TopDirectory() string { return r.paths.TopDirectory }

func (r *Request) RootDirectory() opt.Value[string] { return r.paths.RootDirectory }

// UserProperties returns a copy of the user properties.
func (r *Request) UserProperties() map[string]string { return maps.Clone(r.userProperties) }

// SystemProperties returns a copy of the system properties.
func (r *Request) SystemProperties() map[string]string { return maps.Clone(r.systemProperties) }

func (r *Request) Options() options.Options { return r.options }

// CoreExtensions returns the extensions in load order.
func (r *Request) CoreExtensions() []CoreExtension { return slices.Clone(r.extensions) }

func (r *Request) Stdout() io.Writer { return r.parser.Out() }

func (r *Request) Stderr() io.Writer { return r.parser.Err() }

func (r *Request) Stdin() io.Reader {
	if r.parser.Stdin != nil {
		return r.parser.Stdin
	}
	return os.Stdin
}

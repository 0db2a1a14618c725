// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the mvn launcher: it parses the command line into
// an invocation request, bootstraps the invocation and hands the resolved
// execution request to the build engine.
//
// Usage:
//
//	mvn [options] [<goal(s)>] [<phase(s)>]
//	mvn --help                    Show all options
//	mvn --version                 Show version and exit
//
// Environment:
//
//	MAVEN_HOME             Installation directory (required)
//	MAVEN_ARGS             Arguments placed before the command line ones
//	MAVEN_SKIP_RC          Do not read /etc/mavenrc and ~/.mavenrc
//	MAVEN_EXT_CLASS_PATH   Extra core extension class path entries
//	CI                     Non-interactive when set to anything but "false"
//	NO_COLOR               Disables color in auto mode
//	MVNBOOT_METRICS_FILE   Write invocation metrics to this file
package main

import (
	"os"
	"strings"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/internal/logging"
	"github.com/kraklabs/mvnboot/pkg/invoker"
	"github.com/kraklabs/mvnboot/pkg/lookup"
	"github.com/kraklabs/mvnboot/pkg/parser"
	"github.com/kraklabs/mvnboot/pkg/paths"
	"github.com/kraklabs/mvnboot/pkg/request"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	environ := os.Environ()
	home, _ := os.UserHomeDir()
	environ = withRC(environ, rcFiles(home))
	pr := request.ParserRequest{
		Command:     "mvn",
		CommandName: "Maven",
		Version:     version,
		Args:        withMavenArgs(os.Args[1:], environ),
		Environ:     environ,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
	os.Exit(run(pr))
}

// run parses and invokes pr and returns the process exit code.
func run(pr request.ParserRequest) int {
	proto := logging.NewProto(pr.Err())
	if pr.Logger == nil {
		pr.Logger = proto
	}
	if pr.Lookup == nil {
		pl, err := protoLookup()
		if err != nil {
			proto.Error(errors.Format(err))
			return 1
		}
		pr.Lookup = pl
	}

	req, err := parser.New(mavenParser{}).Parse(pr)
	if err != nil {
		proto.Error(errors.Format(err))
		return 1
	}

	code, err := invoker.New(&dryRunEngine{}).Invoke(req)
	if err != nil && code == 0 {
		code = 1
	}
	return code
}

// protoLookup serves the collaborators needed before the container exists.
func protoLookup() (*lookup.ProtoLookup, error) {
	b := lookup.NewProto()
	lookup.Add[paths.RootLocator](b, paths.DefaultRootLocator{})
	lookup.Add(b, buildInfo{Version: version, Commit: commit, Date: date})
	return b.Build()
}

// buildInfo describes this binary.
type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

// withMavenArgs places the words of MAVEN_ARGS before args.
func withMavenArgs(args, environ []string) []string {
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k != request.EnvMavenArgs {
			continue
		}
		extra := strings.Fields(v)
		if len(extra) == 0 {
			return args
		}
		return append(extra, args...)
	}
	return args
}

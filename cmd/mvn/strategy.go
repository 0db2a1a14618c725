// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/options"
	"github.com/kraklabs/mvnboot/pkg/parser"
	"github.com/kraklabs/mvnboot/pkg/request"
)

const (
	sourceCommandLine = "command line"
	sourceConfigFile  = ".mvn/maven.config"
)

// mavenParser reads the command line and the project's .mvn/maven.config.
// Command line switches dominate the config file.
type mavenParser struct{}

func (mavenParser) ParseOptions(lc *parser.LocalContext) ([]options.Options, error) {
	pr := lc.ParserRequest
	cli, err := options.ParseCLI(pr.Command, sourceCommandLine, pr.Args)
	if err != nil {
		return nil, err
	}
	parsed := []options.Options{cli}

	dir := lc.Paths.RootDirectory.OrElse(lc.Paths.TopDirectory)
	args, err := readConfigArgs(filepath.Join(dir, request.ProjectConfDir, request.ProjectConfigFile))
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return parsed, nil
	}
	cfg, err := options.ParseCLI(pr.Command, sourceConfigFile, args)
	if err != nil {
		return nil, err
	}
	if goals := cfg.Values().Goals.OrElse(nil); len(goals) > 0 {
		return nil, errors.NewParserError(
			fmt.Sprintf("Unrecognized %s entries: %s", sourceConfigFile, strings.Join(goals, ", ")),
			"Only options are allowed in the project configuration file",
			"Move goals and phases to the command line",
			nil,
		)
	}
	return append(parsed, cfg), nil
}

func (mavenParser) AssembleOptions(_ *parser.LocalContext, parsed []options.Options) (options.Options, error) {
	return options.Layered(parsed...)
}

func (mavenParser) Request(lc *parser.LocalContext) (*request.Request, error) {
	return lc.NewRequest(), nil
}

// readConfigArgs splits maven.config into arguments: whitespace separated,
// one or more per line, blank lines and # comments ignored. A missing file
// has no arguments.
func readConfigArgs(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: project configuration file
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read project configuration",
			fmt.Sprintf("Failed to read %s", path),
			"Check file permissions",
			err,
		)
	}

	var args []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args = append(args, strings.Fields(line)...)
	}
	return args, sc.Err()
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package parser turns a raw ParserRequest into an immutable Request.
//
// Parsing runs a fixed sequence of stages over a LocalContext. The command
// surface plugs in through a Strategy supplying the option parsing, the
// option assembly and the final request construction. A failing stage aborts
// the parse; no partial Request is ever returned.
package parser

import (
	"fmt"
	"maps"
	"os"

	"github.com/magiconair/properties"

	"github.com/kraklabs/mvnboot/internal/logging"
	"github.com/kraklabs/mvnboot/pkg/lookup"
	"github.com/kraklabs/mvnboot/pkg/options"
	"github.com/kraklabs/mvnboot/pkg/paths"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/sysprops"
)

// Strategy supplies the command specific parts of parsing.
type Strategy interface {
	// ParseOptions parses the option sources, dominant source first.
	ParseOptions(lc *LocalContext) ([]options.Options, error)
	// AssembleOptions combines the parsed sources into one view.
	AssembleOptions(lc *LocalContext, parsed []options.Options) (options.Options, error)
	// Request materializes the final request from a completed context.
	Request(lc *LocalContext) (*request.Request, error)
}

// LocalContext is the mutable state shared by the parse stages.
type LocalContext struct {
	ParserRequest request.ParserRequest
	Env           map[string]string
	Logger        request.ProtoLogger

	Paths            request.Paths
	Parsed           []options.Options
	Options          options.Options
	SystemProperties map[string]string
	UserProperties   map[string]string
	CoreExtensions   []request.CoreExtension

	// ConfDirectory is the installation configuration directory.
	ConfDirectory string

	resolver *paths.Resolver
}

// PathAliases returns the session.* properties for the resolved paths.
func (lc *LocalContext) PathAliases() map[string]string {
	aliases := map[string]string{request.SessionTopDirectory: lc.Paths.TopDirectory}
	if root, ok := lc.Paths.RootDirectory.Get(); ok {
		aliases[request.SessionRootDirectory] = root
	}
	return aliases
}

// NewRequest builds the Request from the context as it stands.
func (lc *LocalContext) NewRequest() *request.Request {
	return request.New(lc.ParserRequest, lc.Paths, lc.UserProperties, lc.SystemProperties, lc.Options, lc.CoreExtensions)
}

// StageError reports which stage of the parse failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("parse stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type stage struct {
	name string
	run  func(p *Parser, lc *LocalContext) error
}

var stages = []stage{
	{"paths", (*Parser).resolvePaths},
	{"directories", (*Parser).resolveDirectories},
	{"options", (*Parser).parseOptions},
	{"deprecations", (*Parser).warnAboutDeprecatedOptions},
	{"assemble", (*Parser).assembleOptions},
	{"systemProperties", (*Parser).populateSystemProperties},
	{"userProperties", (*Parser).populateUserProperties},
	{"interpolate", (*Parser).interpolateOptions},
	{"coreExtensions", (*Parser).readCoreExtensions},
}

// Parser runs the parse stages. It keeps no per-parse state and may be
// used by concurrent Parse calls.
type Parser struct {
	strategy Strategy
}

// New returns a parser using s.
func New(s Strategy) *Parser {
	return &Parser{strategy: s}
}

// Parse runs every stage and returns the resulting request.
func (p *Parser) Parse(pr request.ParserRequest) (*request.Request, error) {
	lc := &LocalContext{
		ParserRequest: pr,
		Env:           pr.Env(),
		Logger:        pr.Logger,
	}
	if lc.Logger == nil {
		lc.Logger = logging.NewProto(pr.Out())
	}

	for _, s := range stages {
		if err := s.run(p, lc); err != nil {
			return nil, &StageError{Stage: s.name, Err: err}
		}
	}
	req, err := p.strategy.Request(lc)
	if err != nil {
		return nil, &StageError{Stage: "request", Err: err}
	}
	return req, nil
}

func (p *Parser) resolvePaths(lc *LocalContext) error {
	var locator paths.RootLocator = paths.DefaultRootLocator{}
	if lc.ParserRequest.Lookup != nil {
		l, err := lookup.GetOr[paths.RootLocator](lc.ParserRequest.Lookup, locator)
		if err != nil {
			return err
		}
		locator = l
	}
	lc.resolver = &paths.Resolver{
		Getenv:  func(k string) string { return lc.Env[k] },
		Locator: locator,
	}

	pr := lc.ParserRequest
	var err error
	if lc.Paths.Cwd, err = lc.resolver.Cwd(pr.Cwd); err != nil {
		return err
	}
	if lc.Paths.InstallationDirectory, err = lc.resolver.InstallationDirectory(pr.InstallationDirectory); err != nil {
		return err
	}
	if lc.Paths.UserHomeDirectory, err = lc.resolver.UserHome(pr.UserHome); err != nil {
		return err
	}
	return nil
}

func (p *Parser) resolveDirectories(lc *LocalContext) error {
	top, err := paths.TopDirectory(lc.Paths.Cwd, lc.ParserRequest.Args)
	if err != nil {
		return err
	}
	lc.Paths.TopDirectory = top
	lc.Paths.RootDirectory = lc.resolver.RootDirectory(top)
	return nil
}

func (p *Parser) parseOptions(lc *LocalContext) error {
	parsed, err := p.strategy.ParseOptions(lc)
	if err != nil {
		return err
	}
	lc.Parsed = parsed
	return nil
}

// warnAboutDeprecatedOptions logs one warning per distinct deprecated option
// before any option value is consulted.
func (p *Parser) warnAboutDeprecatedOptions(lc *LocalContext) error {
	seen := map[string]bool{}
	for _, o := range lc.Parsed {
		for _, d := range o.Deprecations() {
			if seen[d.Option] {
				continue
			}
			seen[d.Option] = true
			lc.Logger.Warn(d.Message())
		}
	}
	return nil
}

func (p *Parser) assembleOptions(lc *LocalContext) error {
	o, err := p.strategy.AssembleOptions(lc, lc.Parsed)
	if err != nil {
		return err
	}
	lc.Options = o
	return nil
}

func (p *Parser) populateSystemProperties(lc *LocalContext) error {
	sys := map[string]string{}
	for k, v := range lc.Env {
		sys[request.EnvPrefix+k] = v
	}
	maps.Copy(sys, sysprops.All())

	pr := lc.ParserRequest
	if pr.Version != "" {
		sys[request.MavenVersion] = pr.Version
		sys[request.MavenBuildVersion] = buildVersion(pr)
	}

	// Resolved paths dominate whatever the environment said.
	sys[sysprops.UserDir] = lc.Paths.Cwd
	sys[sysprops.UserHome] = lc.Paths.UserHomeDirectory
	sys[request.MavenHome] = lc.Paths.InstallationDirectory

	lc.SystemProperties = sys
	return nil
}

func buildVersion(pr request.ParserRequest) string {
	if pr.CommandName == "" {
		return pr.Version
	}
	return pr.CommandName + " " + pr.Version
}

func (p *Parser) populateUserProperties(lc *LocalContext) error {
	cli := lc.Options.Values().UserProperties.OrElse(nil)

	lc.ConfDirectory = paths.ConfDirectory(lc.Paths.InstallationDirectory, cli, lc.SystemProperties)
	file := paths.Resolve(lc.ConfDirectory, request.PropertiesFile)

	loaded, err := loadProperties(file)
	if err != nil {
		return err
	}

	cliPrefixed := make(map[string]string, len(cli))
	for k, v := range cli {
		cliPrefixed[request.CLIPrefix+k] = v
	}
	aliases := lc.PathAliases()

	user := make(map[string]string, len(loaded)+len(cli))
	for k, v := range loaded {
		user[k] = options.Interpolate(v, aliases, cliPrefixed, lc.SystemProperties)
	}
	maps.Copy(user, cli)

	lc.UserProperties = user
	return nil
}

// loadProperties reads a properties file. A missing file is empty.
// Placeholders are left in place for the caller to interpolate.
func loadProperties(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	l := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	props, err := l.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return props.Map(), nil
}

func (p *Parser) interpolateOptions(lc *LocalContext) error {
	lc.Options = lc.Options.Interpolate(lc.PathAliases(), lc.UserProperties, lc.SystemProperties)
	return nil
}

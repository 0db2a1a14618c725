// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the effective settings model and the default
// builder that merges the installation, project and user settings files.
package settings

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/options"
)

// Settings is the effective configuration read from settings.xml files.
type Settings struct {
	LocalRepository string    `xml:"localRepository" yaml:"localRepository,omitempty"`
	InteractiveMode *bool     `xml:"interactiveMode" yaml:"interactiveMode,omitempty"`
	Offline         *bool     `xml:"offline" yaml:"offline,omitempty"`
	Servers         []Server  `xml:"servers>server" yaml:"servers,omitempty"`
	Mirrors         []Mirror  `xml:"mirrors>mirror" yaml:"mirrors,omitempty"`
	Profiles        []Profile `xml:"profiles>profile" yaml:"profiles,omitempty"`
	ActiveProfiles  []string  `xml:"activeProfiles>activeProfile" yaml:"activeProfiles,omitempty"`
}

// Server holds repository credentials. Secrets are never exported.
type Server struct {
	ID       string `xml:"id" yaml:"id"`
	Username string `xml:"username" yaml:"username,omitempty"`
	Password string `xml:"password" yaml:"-"`
}

// Mirror redirects repositories.
type Mirror struct {
	ID       string `xml:"id" yaml:"id"`
	URL      string `xml:"url" yaml:"url"`
	MirrorOf string `xml:"mirrorOf" yaml:"mirrorOf"`
}

// Profile is a settings profile.
type Profile struct {
	ID         string     `xml:"id" yaml:"id"`
	Properties Properties `xml:"properties" yaml:"properties,omitempty"`
}

// Properties is an XML element whose children are key/value pairs.
type Properties map[string]string

// UnmarshalXML reads <properties><k>v</k>...</properties>.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	out := Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			out[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			*p = out
			return nil
		}
	}
}

// Request names the files to merge. An empty path is skipped.
type Request struct {
	InstallationSettings string
	ProjectSettings      string
	UserSettings         string
	UserProperties       map[string]string
	SystemProperties     map[string]string
}

// Problem is a non-fatal issue found while building settings.
type Problem struct {
	Source  string
	Message string
}

func (p Problem) String() string {
	if p.Source == "" {
		return p.Message
	}
	return p.Source + ": " + p.Message
}

// Result is the outcome of a settings build.
type Result struct {
	Effective *Settings
	Problems  []Problem
}

// Builder merges settings files into effective settings.
type Builder interface {
	Build(req Request) (*Result, error)
}

// XMLBuilder reads settings.xml files. User settings dominate project
// settings, which dominate installation settings.
type XMLBuilder struct{}

// Build implements Builder.
func (XMLBuilder) Build(req Request) (*Result, error) {
	res := &Result{Effective: &Settings{}}
	sources := []map[string]string{req.UserProperties, req.SystemProperties}

	// Dominant first.
	for _, path := range []string{req.UserSettings, req.ProjectSettings, req.InstallationSettings} {
		if path == "" {
			continue
		}
		s, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if s == nil {
			continue
		}
		res.Problems = append(res.Problems, validate(path, s)...)
		interpolate(s, sources)
		merge(res.Effective, s)
	}
	return res, nil
}

func readFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user config or discovery
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read settings file",
			fmt.Sprintf("Failed to read %s", path),
			"Check file permissions and ensure the file exists",
			err,
		)
	}
	var s Settings
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, errors.NewParserError(
			"Invalid settings format",
			fmt.Sprintf("XML parsing of %s failed", path),
			fmt.Sprintf("Edit %s to fix syntax errors", path),
			err,
		)
	}
	return &s, nil
}

func validate(path string, s *Settings) []Problem {
	var problems []Problem
	for i, srv := range s.Servers {
		if strings.TrimSpace(srv.ID) == "" {
			problems = append(problems, Problem{Source: path, Message: fmt.Sprintf("'servers.server[%d].id' is missing", i)})
		}
	}
	for i, m := range s.Mirrors {
		if strings.TrimSpace(m.ID) == "" {
			problems = append(problems, Problem{Source: path, Message: fmt.Sprintf("'mirrors.mirror[%d].id' is missing", i)})
		}
		if strings.TrimSpace(m.URL) == "" {
			problems = append(problems, Problem{Source: path, Message: fmt.Sprintf("'mirrors.mirror[%d].url' is missing", i)})
		}
	}
	return problems
}

func interpolate(s *Settings, sources []map[string]string) {
	s.LocalRepository = options.Interpolate(strings.TrimSpace(s.LocalRepository), sources...)
	for i := range s.Servers {
		s.Servers[i].Username = options.Interpolate(s.Servers[i].Username, sources...)
		s.Servers[i].Password = options.Interpolate(s.Servers[i].Password, sources...)
	}
	for i := range s.Mirrors {
		s.Mirrors[i].URL = options.Interpolate(s.Mirrors[i].URL, sources...)
	}
	for i := range s.Profiles {
		for k, v := range s.Profiles[i].Properties {
			s.Profiles[i].Properties[k] = options.Interpolate(v, sources...)
		}
	}
}

// merge fills dst from src where dst, the dominant side, has nothing.
func merge(dst, src *Settings) {
	if dst.LocalRepository == "" {
		dst.LocalRepository = src.LocalRepository
	}
	if dst.InteractiveMode == nil {
		dst.InteractiveMode = src.InteractiveMode
	}
	if dst.Offline == nil {
		dst.Offline = src.Offline
	}
	dst.Servers = mergeByID(dst.Servers, src.Servers, func(s Server) string { return s.ID })
	dst.Mirrors = mergeByID(dst.Mirrors, src.Mirrors, func(m Mirror) string { return m.ID })
	dst.Profiles = mergeByID(dst.Profiles, src.Profiles, func(p Profile) string { return p.ID })
	dst.ActiveProfiles = mergeByID(dst.ActiveProfiles, src.ActiveProfiles, func(s string) string { return s })
}

func mergeByID[T any](dominant, recessive []T, id func(T) string) []T {
	seen := make(map[string]bool, len(dominant))
	for _, d := range dominant {
		seen[id(d)] = true
	}
	out := dominant
	for _, r := range recessive {
		if !seen[id(r)] {
			seen[id(r)] = true
			out = append(out, r)
		}
	}
	return out
}

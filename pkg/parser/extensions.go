// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/paths"
	"github.com/kraklabs/mvnboot/pkg/request"
)

// Extension scopes, in load order.
const (
	ScopeInstallation = "installation"
	ScopeProject      = "project"
	ScopeUser         = "user"
)

type extensionsDescriptor struct {
	XMLName    xml.Name              `xml:"extensions"`
	Extensions []extensionDescriptor `xml:"extension"`
}

type extensionDescriptor struct {
	GroupID       string `xml:"groupId"`
	ArtifactID    string `xml:"artifactId"`
	Version       string `xml:"version"`
	Configuration struct {
		Inner string `xml:",innerxml"`
	} `xml:"configuration"`
}

// ExtensionFile is the descriptor location of one scope.
type ExtensionFile struct {
	Scope string
	Path  string
}

// ExtensionFiles returns the descriptor location of each scope in load order.
// The maven.*.extensions properties override the derived locations.
func ExtensionFiles(lc *LocalContext) []ExtensionFile {
	prop := func(key string) string {
		if v, ok := lc.UserProperties[key]; ok {
			return v
		}
		return lc.SystemProperties[key]
	}
	pick := func(key, base string, rel ...string) string {
		if v := prop(key); v != "" {
			return paths.Resolve(lc.Paths.Cwd, v)
		}
		return paths.Resolve(base, filepath.Join(rel...))
	}
	return []ExtensionFile{
		{ScopeInstallation, pick(request.MavenInstallExtensions, lc.ConfDirectory, request.ExtensionsFile)},
		{ScopeProject, pick(request.MavenProjectExtensions, lc.Paths.Cwd, request.ProjectConfDir, request.ExtensionsFile)},
		{ScopeUser, pick(request.MavenUserExtensions, lc.Paths.UserHomeDirectory, request.UserConfDir, request.ExtensionsFile)},
	}
}

func (p *Parser) readCoreExtensions(lc *LocalContext) error {
	var all []request.CoreExtension
	for _, f := range ExtensionFiles(lc) {
		exts, err := ReadExtensions(f.Path)
		if err != nil {
			return err
		}
		all = append(all, exts...)
	}
	lc.CoreExtensions = all
	return nil
}

// ReadExtensions parses one extensions.xml. A missing file yields no
// extensions.
func ReadExtensions(path string) ([]request.CoreExtension, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path from configuration
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read extensions descriptor",
			fmt.Sprintf("Failed to read %s", path),
			"Check file permissions",
			err,
		)
	}

	var d extensionsDescriptor
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, errors.NewParserError(
			"Failed to parse extensions descriptor",
			fmt.Sprintf("XML parsing of %s failed", path),
			fmt.Sprintf("Edit %s to fix syntax errors", path),
			err,
		)
	}

	out := make([]request.CoreExtension, 0, len(d.Extensions))
	for _, e := range d.Extensions {
		out = append(out, request.CoreExtension{
			GroupID:       strings.TrimSpace(e.GroupID),
			ArtifactID:    strings.TrimSpace(e.ArtifactID),
			Version:       strings.TrimSpace(e.Version),
			Configuration: strings.TrimSpace(e.Configuration.Inner),
			Source:        path,
		})
	}
	return out, nil
}

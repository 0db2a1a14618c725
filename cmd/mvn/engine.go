// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/invoker"
	"github.com/kraklabs/mvnboot/pkg/lookup"
	"github.com/kraklabs/mvnboot/pkg/realm"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/settings"
)

// Failure behaviors.
const (
	failFast  = "FAIL_FAST"
	failAtEnd = "FAIL_AT_END"
	failNever = "FAIL_NEVER"
)

// ExecutionRequest is what the build engine receives.
type ExecutionRequest struct {
	Launcher         string                  `yaml:"launcher"`
	Goals            []string                `yaml:"goals"`
	TopDirectory     string                  `yaml:"topDirectory"`
	RootDirectory    string                  `yaml:"rootDirectory,omitempty"`
	PomFile          string                  `yaml:"pomFile,omitempty"`
	Recursive        bool                    `yaml:"recursive"`
	Threads          int                     `yaml:"threads"`
	Builder          string                  `yaml:"builder,omitempty"`
	Interactive      bool                    `yaml:"interactive"`
	Offline          bool                    `yaml:"offline"`
	LocalRepository  string                  `yaml:"localRepository"`
	FailureBehavior  string                  `yaml:"failureBehavior"`
	UpdateSnapshots  bool                    `yaml:"updateSnapshots,omitempty"`
	NoSnapshotUpdate bool                    `yaml:"noSnapshotUpdates,omitempty"`
	ChecksumPolicy   string                  `yaml:"checksumPolicy,omitempty"`
	ActiveProfiles   []string                `yaml:"activeProfiles,omitempty"`
	InactiveProfiles []string                `yaml:"inactiveProfiles,omitempty"`
	Projects         []string                `yaml:"projects,omitempty"`
	MakeBehavior     string                  `yaml:"makeBehavior,omitempty"`
	ResumeFrom       string                  `yaml:"resumeFrom,omitempty"`
	UserProperties   map[string]string       `yaml:"userProperties,omitempty"`
	CoreExtensions   []request.CoreExtension `yaml:"coreExtensions,omitempty"`
	ExtClassPath     []string                `yaml:"extClassPath,omitempty"`
	Settings         *settings.Settings      `yaml:"settings,omitempty"`
}

// newExecutionRequest collects the execution request from a ready context.
func newExecutionRequest(ctx *invoker.Context) (*ExecutionRequest, error) {
	req := ctx.Request
	v := ctx.Values

	info, err := lookup.GetOr(ctx.Lookup, buildInfo{Version: req.ParserRequest().Version, Commit: "unknown"})
	if err != nil {
		return nil, err
	}
	rlm, err := lookup.Get[*realm.Realm](ctx.Lookup)
	if err != nil {
		return nil, fmt.Errorf("core extension realm: %w", err)
	}

	er := &ExecutionRequest{
		Launcher:         fmt.Sprintf("mvnboot %s (%s)", info.Version, info.Commit),
		Goals:            v.Goals.OrElse(nil),
		TopDirectory:     req.TopDirectory(),
		RootDirectory:    req.RootDirectory().OrElse(""),
		PomFile:          v.AlternatePomFile.OrElse(""),
		Recursive:        !v.NonRecursive.OrElse(false),
		Threads:          ctx.Threads,
		Builder:          v.Builder.OrElse(""),
		Interactive:      ctx.Interactive,
		Offline:          ctx.Offline,
		LocalRepository:  ctx.LocalRepository,
		FailureBehavior:  failureBehavior(ctx),
		UpdateSnapshots:  v.UpdateSnapshots.OrElse(false),
		NoSnapshotUpdate: v.NoSnapshotUpdates.OrElse(false),
		InactiveProfiles: v.InactiveProfiles.OrElse(nil),
		Projects:         v.Projects.OrElse(nil),
		MakeBehavior:     makeBehavior(ctx),
		ResumeFrom:       v.ResumeFrom.OrElse(""),
		UserProperties:   req.UserProperties(),
		CoreExtensions:   rlm.Effective(),
		ExtClassPath:     rlm.ClassPath(),
		Settings:         ctx.EffectiveSettings,
	}

	switch {
	case v.StrictChecksums.OrElse(false):
		er.ChecksumPolicy = "fail"
	case v.RelaxedChecksums.OrElse(false):
		er.ChecksumPolicy = "warn"
	}

	er.ActiveProfiles = v.ActiveProfiles.OrElse(nil)
	if ctx.EffectiveSettings != nil {
		for _, p := range ctx.EffectiveSettings.ActiveProfiles {
			if !slices.Contains(er.ActiveProfiles, p) && !slices.Contains(er.InactiveProfiles, p) {
				er.ActiveProfiles = append(er.ActiveProfiles, p)
			}
		}
	}
	return er, nil
}

func failureBehavior(ctx *invoker.Context) string {
	v := ctx.Values
	switch {
	case v.FailAtEnd.OrElse(false):
		return failAtEnd
	case v.FailNever.OrElse(false):
		return failNever
	default:
		return failFast
	}
}

func makeBehavior(ctx *invoker.Context) string {
	v := ctx.Values
	am, amd := v.AlsoMake.OrElse(false), v.AlsoMakeDependents.OrElse(false)
	switch {
	case am && amd:
		return "make-both"
	case am:
		return "make-upstream"
	case amd:
		return "make-downstream"
	default:
		return ""
	}
}

// dryRunEngine prints the execution request and walks the goals without
// running them.
type dryRunEngine struct{}

func (dryRunEngine) Execute(ctx *invoker.Context) (int, error) {
	er, err := newExecutionRequest(ctx)
	if err != nil {
		return 1, err
	}
	if len(er.Goals) == 0 {
		return 1, errors.NewInputError(
			"No goals have been specified for this build",
			"A build needs at least one goal or lifecycle phase",
			"Run for instance 'mvn verify' or 'mvn clean install'",
			nil,
		)
	}

	enc := yaml.NewEncoder(ctx.Request.Stdout())
	enc.SetIndent(2)
	if err := enc.Encode(er); err != nil {
		return 1, errors.NewInternalError(
			"Cannot encode execution request",
			"YAML marshaling failed unexpectedly",
			"This is a bug. Please report it with your command line",
			err,
		)
	}
	if err := enc.Close(); err != nil {
		return 1, err
	}

	// Progress goes to stderr and goals are logged at debug level only, so
	// stdout stays a single YAML document unless -X is given.
	bar := NewProgressBar(NewProgressConfig(ctx), int64(len(er.Goals)), "Executing goals")
	for _, goal := range er.Goals {
		ctx.Logger.Debug("goal.execute", "goal", goal, "threads", er.Threads)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return 0, nil
}

// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package options

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/opt"
)

// cliFlag declares one command line switch and how it lands in Values.
type cliFlag struct {
	name        string
	shorthand   string // single letter, handled by pflag
	alias       string // multi-letter single dash form, e.g. -gs
	usage       string
	replacement string // set on deprecated switches
	define      func(fs *flag.FlagSet, f cliFlag)
	apply       func(fs *flag.FlagSet, f cliFlag, v *Values)
}

func boolFlag(name, shorthand, alias, usage string, get func(*Values) *opt.Value[bool]) cliFlag {
	return cliFlag{
		name: name, shorthand: shorthand, alias: alias, usage: usage,
		define: func(fs *flag.FlagSet, f cliFlag) { fs.BoolP(f.name, f.shorthand, false, f.usage) },
		apply: func(fs *flag.FlagSet, f cliFlag, v *Values) {
			b, _ := fs.GetBool(f.name)
			setUnlessDeprecatedShadowed(f, get(v), b)
		},
	}
}

func stringFlag(name, shorthand, alias, usage string, get func(*Values) *opt.Value[string]) cliFlag {
	return cliFlag{
		name: name, shorthand: shorthand, alias: alias, usage: usage,
		define: func(fs *flag.FlagSet, f cliFlag) { fs.StringP(f.name, f.shorthand, "", f.usage) },
		apply: func(fs *flag.FlagSet, f cliFlag, v *Values) {
			s, _ := fs.GetString(f.name)
			setUnlessDeprecatedShadowed(f, get(v), s)
		},
	}
}

func listFlag(name, shorthand, alias, usage string, get func(*Values) *opt.Value[[]string]) cliFlag {
	return cliFlag{
		name: name, shorthand: shorthand, alias: alias, usage: usage,
		define: func(fs *flag.FlagSet, f cliFlag) { fs.StringSliceP(f.name, f.shorthand, nil, f.usage) },
		apply: func(fs *flag.FlagSet, f cliFlag, v *Values) {
			l, _ := fs.GetStringSlice(f.name)
			*get(v) = opt.Of(trimAll(l))
		},
	}
}

// deprecated turns f into a deprecated alias of replacement. Its value only
// applies when the replacement itself was not given.
func deprecated(f cliFlag, replacement string) cliFlag {
	f.replacement = replacement
	return f
}

func setUnlessDeprecatedShadowed[T any](f cliFlag, dst *opt.Value[T], v T) {
	if f.replacement != "" && dst.IsPresent() {
		return
	}
	*dst = opt.Of(v)
}

var cliFlags = []cliFlag{
	boolFlag("help", "h", "", "Display help information", func(v *Values) *opt.Value[bool] { return &v.Help }),
	boolFlag("version", "v", "", "Display version information", func(v *Values) *opt.Value[bool] { return &v.ShowVersionAndExit }),
	boolFlag("show-version", "V", "", "Display version information WITHOUT stopping build", func(v *Values) *opt.Value[bool] { return &v.ShowVersion }),
	boolFlag("quiet", "q", "", "Quiet output - only show errors", func(v *Values) *opt.Value[bool] { return &v.Quiet }),
	boolFlag("verbose", "X", "", "Produce execution verbose output", func(v *Values) *opt.Value[bool] { return &v.Verbose }),
	boolFlag("errors", "e", "", "Produce execution error messages", func(v *Values) *opt.Value[bool] { return &v.ShowErrors }),
	stringFlag("fail-on-severity", "", "-fos", "Configure which severity of logging should cause the build to fail (WARN or ERROR)", func(v *Values) *opt.Value[string] { return &v.FailOnSeverity }),
	boolFlag("non-interactive", "B", "", "Run in non-interactive mode", func(v *Values) *opt.Value[bool] { return &v.NonInteractive }),
	boolFlag("force-interactive", "", "", "Run in interactive mode even when the environment looks non-interactive", func(v *Values) *opt.Value[bool] { return &v.ForceInteractive }),
	boolFlag("offline", "o", "", "Work offline", func(v *Values) *opt.Value[bool] { return &v.Offline }),
	stringFlag("log-file", "l", "", "Log file where all build output will go (disables output color)", func(v *Values) *opt.Value[string] { return &v.LogFile }),
	stringFlag("color", "", "", "Defines the color mode of the output: auto, always or never", func(v *Values) *opt.Value[string] { return &v.Color }),
	boolFlag("raw-streams", "", "", "Do not decorate standard output and error streams", func(v *Values) *opt.Value[bool] { return &v.RawStreams }),

	stringFlag("settings", "s", "", "Alternate path for the user settings file", func(v *Values) *opt.Value[string] { return &v.AltUserSettings }),
	stringFlag("project-settings", "", "-ps", "Alternate path for the project settings file", func(v *Values) *opt.Value[string] { return &v.AltProjectSettings }),
	stringFlag("install-settings", "", "-is", "Alternate path for the installation settings file", func(v *Values) *opt.Value[string] { return &v.AltInstallationSettings }),
	stringFlag("toolchains", "t", "", "Alternate path for the user toolchains file", func(v *Values) *opt.Value[string] { return &v.AltUserToolchains }),
	stringFlag("install-toolchains", "", "-it", "Alternate path for the installation toolchains file", func(v *Values) *opt.Value[string] { return &v.AltInstallationToolchains }),

	stringFlag("file", "f", "", "Force the use of an alternate POM file (or directory with pom.xml)", func(v *Values) *opt.Value[string] { return &v.AlternatePomFile }),
	boolFlag("non-recursive", "N", "", "Do not recurse into sub-projects", func(v *Values) *opt.Value[bool] { return &v.NonRecursive }),
	boolFlag("update-snapshots", "U", "", "Forces a check for missing releases and updated snapshots on remote repositories", func(v *Values) *opt.Value[bool] { return &v.UpdateSnapshots }),
	boolFlag("no-snapshot-updates", "", "-nsu", "Suppress SNAPSHOT updates", func(v *Values) *opt.Value[bool] { return &v.NoSnapshotUpdates }),
	boolFlag("strict-checksums", "C", "", "Fail the build if checksums don't match", func(v *Values) *opt.Value[bool] { return &v.StrictChecksums }),
	boolFlag("lax-checksums", "c", "", "Warn if checksums don't match", func(v *Values) *opt.Value[bool] { return &v.RelaxedChecksums }),
	boolFlag("fail-fast", "", "-ff", "Stop at first failure in reactorized builds", func(v *Values) *opt.Value[bool] { return &v.FailFast }),
	boolFlag("fail-at-end", "", "-fae", "Only fail the build afterwards; allow all non-impacted builds to continue", func(v *Values) *opt.Value[bool] { return &v.FailAtEnd }),
	boolFlag("fail-never", "", "-fn", "NEVER fail the build, regardless of project result", func(v *Values) *opt.Value[bool] { return &v.FailNever }),
	boolFlag("resume", "r", "", "Resume reactor from the last failed project", func(v *Values) *opt.Value[bool] { return &v.Resume }),
	stringFlag("resume-from", "", "-rf", "Resume reactor from specified project", func(v *Values) *opt.Value[string] { return &v.ResumeFrom }),
	listFlag("projects", "", "-pl", "Comma-delimited list of specified reactor projects to build", func(v *Values) *opt.Value[[]string] { return &v.Projects }),
	boolFlag("also-make", "", "-am", "If project list is specified, also build projects required by the list", func(v *Values) *opt.Value[bool] { return &v.AlsoMake }),
	boolFlag("also-make-dependents", "", "-amd", "If project list is specified, also build projects that depend on projects on the list", func(v *Values) *opt.Value[bool] { return &v.AlsoMakeDependents }),
	stringFlag("threads", "T", "", "Thread count, for instance 4 (int) or 2C/2.5C (int/float) where C is core multiplied", func(v *Values) *opt.Value[string] { return &v.Threads }),
	stringFlag("builder", "b", "", "The id of the build strategy to use", func(v *Values) *opt.Value[string] { return &v.Builder }),
	boolFlag("no-transfer-progress", "", "-ntp", "Do not display transfer progress when downloading or uploading", func(v *Values) *opt.Value[bool] { return &v.NoTransferProgress }),
	boolFlag("cache-artifact-not-found", "", "-canf", "Defines caching behaviour for 'not found' artifacts", func(v *Values) *opt.Value[bool] { return &v.CacheArtifactNotFound }),
	boolFlag("strict-artifact-descriptor-policy", "", "-sadp", "Defines 'strict' artifact descriptor policy", func(v *Values) *opt.Value[bool] { return &v.StrictArtifactDescriptorPolicy }),
	boolFlag("ignore-transitive-repositories", "", "-itr", "If set, Maven will ignore remote repositories introduced by transitive dependencies", func(v *Values) *opt.Value[bool] { return &v.IgnoreTransitiveRepositories }),

	deprecated(stringFlag("global-settings", "", "-gs", "Alternate path for the global settings file", func(v *Values) *opt.Value[string] { return &v.AltInstallationSettings }), "--install-settings"),
	deprecated(stringFlag("global-toolchains", "", "-gt", "Alternate path for the global toolchains file", func(v *Values) *opt.Value[string] { return &v.AltInstallationToolchains }), "--install-toolchains"),
	deprecated(boolFlag("batch-mode", "", "", "Run in non-interactive mode", func(v *Values) *opt.Value[bool] { return &v.NonInteractive }), "--non-interactive"),
	deprecated(boolFlag("debug", "", "", "Produce execution debug output", func(v *Values) *opt.Value[bool] { return &v.Verbose }), "--verbose"),
}

// Maven style multi-letter single dash switches.
var aliases = func() map[string]string {
	m := map[string]string{}
	for _, f := range cliFlags {
		if f.alias != "" {
			m[f.alias] = "--" + f.name
		}
	}
	return m
}()

// IsAlias reports whether arg is a Maven style multi-letter switch such as
// -fae.
func IsAlias(arg string) bool {
	_, ok := aliases[arg]
	return ok
}

// cliOptions are switches parsed from an argument list.
type cliOptions struct {
	command      string
	source       string
	values       Values
	fs           *flag.FlagSet
	deprecations []Deprecation
}

// ParseCLI parses args as a command line of command. source names the
// argument list (for instance "command line" or ".mvn/maven.config").
func ParseCLI(command, source string, args []string) (Options, error) {
	fs := newFlagSet(command)
	if err := fs.Parse(normalize(args)); err != nil {
		return nil, errors.NewParserError(
			fmt.Sprintf("Unable to parse %s", source),
			err.Error(),
			fmt.Sprintf("Run '%s --help' for the list of supported options", command),
			err,
		)
	}

	o := &cliOptions{command: command, source: source, fs: fs}
	for _, f := range cliFlags {
		if f.replacement == "" && fs.Changed(f.name) {
			f.apply(fs, f, &o.values)
		}
	}
	for _, f := range cliFlags {
		if f.replacement != "" && fs.Changed(f.name) {
			f.apply(fs, f, &o.values)
			o.deprecations = append(o.deprecations, Deprecation{Option: usedSpelling(args, f), Replacement: f.replacement})
		}
	}

	if fs.Changed("define") {
		defs, _ := fs.GetStringArray("define")
		o.values.UserProperties = opt.Of(parseDefines(defs))
	}
	if fs.Changed("activate-profiles") {
		raw, _ := fs.GetStringArray("activate-profiles")
		active, inactive := parseProfiles(raw)
		o.values.ActiveProfiles = opt.Of(active)
		o.values.InactiveProfiles = opt.Of(inactive)
	}
	if goals := fs.Args(); len(goals) > 0 {
		o.values.Goals = opt.Of(append([]string(nil), goals...))
	}
	return o, nil
}

func newFlagSet(command string) *flag.FlagSet {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	for _, f := range cliFlags {
		usage := f.usage
		if f.alias != "" {
			usage += " (" + f.alias + ")"
		}
		f.usage = usage
		f.define(fs, f)
		if f.replacement != "" {
			_ = fs.MarkDeprecated(f.name, "use "+f.replacement)
		}
	}
	fs.StringArrayP("define", "D", nil, "Define a user property")
	fs.StringArrayP("activate-profiles", "P", nil, "Comma-delimited list of profiles to activate; prefix with - or ! to deactivate")
	return fs
}

// normalize rewrites multi-letter single dash switches into their long form
// so pflag does not read them as bundled shorthands.
func normalize(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if long, ok := aliases[arg]; ok {
			out = append(out, long)
			continue
		}
		out = append(out, arg)
	}
	return out
}

func usedSpelling(args []string, f cliFlag) string {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if f.alias != "" && arg == f.alias {
			return f.alias
		}
	}
	return "--" + f.name
}

func parseDefines(defs []string) map[string]string {
	props := make(map[string]string, len(defs))
	for _, d := range defs {
		k, v, ok := strings.Cut(d, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if !ok {
			v = "true"
		}
		props[k] = v
	}
	return props
}

// parseProfiles splits -P values: bare or + prefixed ids activate, - or !
// prefixed ids deactivate.
func parseProfiles(raw []string) (active, inactive []string) {
	active, inactive = []string{}, []string{}
	for _, group := range raw {
		for _, p := range strings.Split(group, ",") {
			p = strings.TrimSpace(p)
			switch {
			case p == "":
			case strings.HasPrefix(p, "-"), strings.HasPrefix(p, "!"):
				inactive = append(inactive, strings.TrimSpace(p[1:]))
			case strings.HasPrefix(p, "+"):
				active = append(active, strings.TrimSpace(p[1:]))
			default:
				active = append(active, p)
			}
		}
	}
	return active, inactive
}

func trimAll(l []string) []string {
	out := make([]string, 0, len(l))
	for _, s := range l {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (o *cliOptions) Values() Values { return o.values }

func (o *cliOptions) Source() string { return o.source }

func (o *cliOptions) Interpolate(sources ...map[string]string) Options {
	cp := *o
	cp.values = InterpolateValues(o.values, sources...)
	return &cp
}

func (o *cliOptions) DisplayHelp(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [options] [<goal(s)>] [<phase(s)>]\n\nOptions:\n", o.command)
	fmt.Fprint(w, o.fs.FlagUsages())
}

func (o *cliOptions) Deprecations() []Deprecation {
	return append([]Deprecation(nil), o.deprecations...)
}

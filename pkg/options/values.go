// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package options

import (
	"maps"
	"slices"

	"github.com/kraklabs/mvnboot/pkg/opt"
)

// Values is the set of recognized switches. Every field is optional: absent
// means the source did not mention the switch at all.
type Values struct {
	UserProperties opt.Value[map[string]string]
	Goals          opt.Value[[]string]

	Help               opt.Value[bool]
	ShowVersionAndExit opt.Value[bool]
	ShowVersion        opt.Value[bool]
	Quiet              opt.Value[bool]
	Verbose            opt.Value[bool]
	ShowErrors         opt.Value[bool]
	FailOnSeverity     opt.Value[string]
	NonInteractive     opt.Value[bool]
	ForceInteractive   opt.Value[bool]
	Offline            opt.Value[bool]
	LogFile            opt.Value[string]
	Color              opt.Value[string]
	RawStreams         opt.Value[bool]

	AltUserSettings           opt.Value[string]
	AltProjectSettings        opt.Value[string]
	AltInstallationSettings   opt.Value[string]
	AltUserToolchains         opt.Value[string]
	AltInstallationToolchains opt.Value[string]

	AlternatePomFile               opt.Value[string]
	NonRecursive                   opt.Value[bool]
	UpdateSnapshots                opt.Value[bool]
	NoSnapshotUpdates              opt.Value[bool]
	ActiveProfiles                 opt.Value[[]string]
	InactiveProfiles               opt.Value[[]string]
	StrictChecksums                opt.Value[bool]
	RelaxedChecksums               opt.Value[bool]
	FailFast                       opt.Value[bool]
	FailAtEnd                      opt.Value[bool]
	FailNever                      opt.Value[bool]
	Resume                         opt.Value[bool]
	ResumeFrom                     opt.Value[string]
	Projects                       opt.Value[[]string]
	AlsoMake                       opt.Value[bool]
	AlsoMakeDependents             opt.Value[bool]
	Threads                        opt.Value[string]
	Builder                        opt.Value[string]
	NoTransferProgress             opt.Value[bool]
	CacheArtifactNotFound          opt.Value[bool]
	StrictArtifactDescriptorPolicy opt.Value[bool]
	IgnoreTransitiveRepositories   opt.Value[bool]
}

// field binds one Values member to its merge and interpolation policy.
type field struct {
	name        string
	merge       func(dst *Values, layers []Values)
	interpolate func(v *Values, sources []map[string]string)
}

// firstWins takes the value of the earliest layer where it is present.
func firstWins[T any](name string, get func(*Values) *opt.Value[T]) field {
	return field{
		name: name,
		merge: func(dst *Values, layers []Values) {
			for i := range layers {
				if v := *get(&layers[i]); v.IsPresent() {
					*get(dst) = v
					return
				}
			}
		},
	}
}

func boolField(name string, get func(*Values) *opt.Value[bool]) field {
	return firstWins(name, get)
}

func stringField(name string, get func(*Values) *opt.Value[string]) field {
	f := firstWins(name, get)
	f.interpolate = func(v *Values, sources []map[string]string) {
		if s, ok := get(v).Get(); ok {
			*get(v) = opt.Of(Interpolate(s, sources...))
		}
	}
	return f
}

// listField concatenates every present list in layer order. A layer holding
// an empty list still makes the result present.
func listField(name string, get func(*Values) *opt.Value[[]string]) field {
	return field{
		name: name,
		merge: func(dst *Values, layers []Values) {
			had := 0
			var out []string
			for i := range layers {
				if l, ok := get(&layers[i]).Get(); ok {
					had++
					out = append(out, l...)
				}
			}
			if had > 0 {
				if out == nil {
					out = []string{}
				}
				*get(dst) = opt.Of(out)
			}
		},
		interpolate: func(v *Values, sources []map[string]string) {
			if l, ok := get(v).Get(); ok {
				out := make([]string, len(l))
				for i, s := range l {
					out[i] = Interpolate(s, sources...)
				}
				*get(v) = opt.Of(out)
			}
		},
	}
}

// mapField unions every present map in layer order with put-all semantics,
// so on a key collision the last layer put wins. This is deliberately the
// opposite of the scalar policy.
func mapField(name string, get func(*Values) *opt.Value[map[string]string]) field {
	return field{
		name: name,
		merge: func(dst *Values, layers []Values) {
			had := 0
			out := map[string]string{}
			for i := range layers {
				if m, ok := get(&layers[i]).Get(); ok {
					had++
					maps.Copy(out, m)
				}
			}
			if had > 0 {
				*get(dst) = opt.Of(out)
			}
		},
		interpolate: func(v *Values, sources []map[string]string) {
			if m, ok := get(v).Get(); ok {
				out := make(map[string]string, len(m))
				for k, s := range m {
					out[k] = Interpolate(s, sources...)
				}
				*get(v) = opt.Of(out)
			}
		},
	}
}

var fields = []field{
	mapField("userProperties", func(v *Values) *opt.Value[map[string]string] { return &v.UserProperties }),
	listField("goals", func(v *Values) *opt.Value[[]string] { return &v.Goals }),

	boolField("help", func(v *Values) *opt.Value[bool] { return &v.Help }),
	boolField("showVersionAndExit", func(v *Values) *opt.Value[bool] { return &v.ShowVersionAndExit }),
	boolField("showVersion", func(v *Values) *opt.Value[bool] { return &v.ShowVersion }),
	boolField("quiet", func(v *Values) *opt.Value[bool] { return &v.Quiet }),
	boolField("verbose", func(v *Values) *opt.Value[bool] { return &v.Verbose }),
	boolField("showErrors", func(v *Values) *opt.Value[bool] { return &v.ShowErrors }),
	stringField("failOnSeverity", func(v *Values) *opt.Value[string] { return &v.FailOnSeverity }),
	boolField("nonInteractive", func(v *Values) *opt.Value[bool] { return &v.NonInteractive }),
	boolField("forceInteractive", func(v *Values) *opt.Value[bool] { return &v.ForceInteractive }),
	boolField("offline", func(v *Values) *opt.Value[bool] { return &v.Offline }),
	stringField("logFile", func(v *Values) *opt.Value[string] { return &v.LogFile }),
	stringField("color", func(v *Values) *opt.Value[string] { return &v.Color }),
	boolField("rawStreams", func(v *Values) *opt.Value[bool] { return &v.RawStreams }),

	stringField("altUserSettings", func(v *Values) *opt.Value[string] { return &v.AltUserSettings }),
	stringField("altProjectSettings", func(v *Values) *opt.Value[string] { return &v.AltProjectSettings }),
	stringField("altInstallationSettings", func(v *Values) *opt.Value[string] { return &v.AltInstallationSettings }),
	stringField("altUserToolchains", func(v *Values) *opt.Value[string] { return &v.AltUserToolchains }),
	stringField("altInstallationToolchains", func(v *Values) *opt.Value[string] { return &v.AltInstallationToolchains }),

	stringField("alternatePomFile", func(v *Values) *opt.Value[string] { return &v.AlternatePomFile }),
	boolField("nonRecursive", func(v *Values) *opt.Value[bool] { return &v.NonRecursive }),
	boolField("updateSnapshots", func(v *Values) *opt.Value[bool] { return &v.UpdateSnapshots }),
	boolField("noSnapshotUpdates", func(v *Values) *opt.Value[bool] { return &v.NoSnapshotUpdates }),
	listField("activeProfiles", func(v *Values) *opt.Value[[]string] { return &v.ActiveProfiles }),
	listField("inactiveProfiles", func(v *Values) *opt.Value[[]string] { return &v.InactiveProfiles }),
	boolField("strictChecksums", func(v *Values) *opt.Value[bool] { return &v.StrictChecksums }),
	boolField("relaxedChecksums", func(v *Values) *opt.Value[bool] { return &v.RelaxedChecksums }),
	boolField("failFast", func(v *Values) *opt.Value[bool] { return &v.FailFast }),
	boolField("failAtEnd", func(v *Values) *opt.Value[bool] { return &v.FailAtEnd }),
	boolField("failNever", func(v *Values) *opt.Value[bool] { return &v.FailNever }),
	boolField("resume", func(v *Values) *opt.Value[bool] { return &v.Resume }),
	stringField("resumeFrom", func(v *Values) *opt.Value[string] { return &v.ResumeFrom }),
	listField("projects", func(v *Values) *opt.Value[[]string] { return &v.Projects }),
	boolField("alsoMake", func(v *Values) *opt.Value[bool] { return &v.AlsoMake }),
	boolField("alsoMakeDependents", func(v *Values) *opt.Value[bool] { return &v.AlsoMakeDependents }),
	stringField("threads", func(v *Values) *opt.Value[string] { return &v.Threads }),
	stringField("builder", func(v *Values) *opt.Value[string] { return &v.Builder }),
	boolField("noTransferProgress", func(v *Values) *opt.Value[bool] { return &v.NoTransferProgress }),
	boolField("cacheArtifactNotFound", func(v *Values) *opt.Value[bool] { return &v.CacheArtifactNotFound }),
	boolField("strictArtifactDescriptorPolicy", func(v *Values) *opt.Value[bool] { return &v.StrictArtifactDescriptorPolicy }),
	boolField("ignoreTransitiveRepositories", func(v *Values) *opt.Value[bool] { return &v.IgnoreTransitiveRepositories }),
}

// FieldNames lists every switch in declaration order.
func FieldNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// Merge composes layers, earliest layer dominant for scalars and lists, and
// put-all (last wins) for maps.
func Merge(layers ...Values) Values {
	var out Values
	for _, f := range fields {
		f.merge(&out, layers)
	}
	return out
}

// InterpolateValues returns a copy of v with every string valued field
// interpolated against sources, first source winning per key.
func InterpolateValues(v Values, sources ...map[string]string) Values {
	out := v.clone()
	for _, f := range fields {
		if f.interpolate != nil {
			f.interpolate(&out, sources)
		}
	}
	return out
}

func (v Values) clone() Values {
	out := v
	if m, ok := v.UserProperties.Get(); ok {
		out.UserProperties = opt.Of(maps.Clone(m))
	}
	for _, get := range []func(*Values) *opt.Value[[]string]{
		func(x *Values) *opt.Value[[]string] { return &x.Goals },
		func(x *Values) *opt.Value[[]string] { return &x.ActiveProfiles },
		func(x *Values) *opt.Value[[]string] { return &x.InactiveProfiles },
		func(x *Values) *opt.Value[[]string] { return &x.Projects },
	} {
		if l, ok := get(&v).Get(); ok {
			*get(&out) = opt.Of(slices.Clone(l))
		}
	}
	return out
}

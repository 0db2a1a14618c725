// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package request

// Property keys understood by the bootstrap.
const (
	MavenHome              = "maven.home"
	MavenInstallationConf  = "maven.installation.conf"
	MavenConf              = "maven.conf"
	MavenUserConf          = "maven.user.conf"
	MavenProjectConf       = "maven.project.conf"
	MavenVersion           = "maven.version"
	MavenBuildVersion      = "maven.build.version"
	MavenBuildTimestamp    = "maven.build.timestamp"
	MavenRepoLocal         = "maven.repo.local"
	MavenExtClassPath      = "maven.ext.class.path"
	MavenStyleColor        = "maven.style.color"
	StyleColor             = "style.color"
	MavenInstallSettings   = "maven.installation.settings"
	MavenProjectSettings   = "maven.project.settings"
	MavenUserSettings      = "maven.user.settings"
	MavenInstallToolchains = "maven.installation.toolchains"
	MavenUserToolchains    = "maven.user.toolchains"
	MavenInstallExtensions = "maven.installation.extensions"
	MavenProjectExtensions = "maven.project.extensions"
	MavenUserExtensions    = "maven.user.extensions"

	SessionTopDirectory  = "session.topDirectory"
	SessionRootDirectory = "session.rootDirectory"

	// EnvPrefix prefixes environment variables exposed as system properties.
	EnvPrefix = "env."
	// CLIPrefix prefixes CLI user properties during properties file interpolation.
	CLIPrefix = "cli."
)

// Environment variables consumed by the bootstrap.
const (
	EnvMavenHome         = "MAVEN_HOME"
	EnvMavenExtClassPath = "MAVEN_EXT_CLASS_PATH"
	EnvMavenArgs         = "MAVEN_ARGS"
	EnvCI                = "CI"
	EnvNoColor           = "NO_COLOR"
)

// Well known file and directory names.
const (
	ConfDir            = "conf"
	ProjectConfDir     = ".mvn"
	UserConfDir        = ".m2"
	PropertiesFile     = "maven.properties"
	ExtensionsFile     = "extensions.xml"
	SettingsFile       = "settings.xml"
	ToolchainsFile     = "toolchains.xml"
	ProjectConfigFile  = "maven.config"
	LocalRepositoryDir = "repository"
)

package scm

import (
	"strings"
	"time"
)

// CommandConfiguration captures configuration values for the git-merge command.
type CommandConfiguration struct {
	PackageName         string        `mapstructure:"package"`
	ScmRoot             string        `mapstructure:"scm_root"`
	Branch              string        `mapstructure:"branch"`
	Namespace           Namespace     `mapstructure:"namespace"`
	UpstreamRemote      string        `mapstructure:"upstream_remote"`
	UpstreamURLTemplate string        `mapstructure:"upstream_url_template"`
	CommandTimeout      time.Duration `mapstructure:"command_timeout"`
	DownstreamSuffix    string        `mapstructure:"suffix"`
}

// DefaultCommandConfiguration clones into ./scm and merges Fedora master into the free namespace.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PackageName:         defaultPackageNameConstant,
		ScmRoot:             defaultScmRootConstant,
		Branch:              defaultBranchConstant,
		Namespace:           NamespaceFree,
		UpstreamRemote:      defaultUpstreamRemoteNameConstant,
		UpstreamURLTemplate: defaultUpstreamURLTemplateConstant,
		CommandTimeout:      0,
		DownstreamSuffix:    defaultDownstreamSuffixConstant,
	}
}

// Sanitize trims values and restores defaults for empty ones, except the package name:
// an empty package name makes --pkgname mandatory.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := CommandConfiguration{
		PackageName:         strings.TrimSpace(configuration.PackageName),
		ScmRoot:             strings.TrimSpace(configuration.ScmRoot),
		Branch:              strings.TrimSpace(configuration.Branch),
		Namespace:           Namespace(strings.TrimSpace(string(configuration.Namespace))),
		UpstreamRemote:      strings.TrimSpace(configuration.UpstreamRemote),
		UpstreamURLTemplate: strings.TrimSpace(configuration.UpstreamURLTemplate),
		CommandTimeout:      configuration.CommandTimeout,
		DownstreamSuffix:    strings.TrimSpace(configuration.DownstreamSuffix),
	}

	if len(sanitized.ScmRoot) == 0 {
		sanitized.ScmRoot = defaults.ScmRoot
	}
	if len(sanitized.Branch) == 0 {
		sanitized.Branch = defaults.Branch
	}
	if len(sanitized.Namespace) == 0 {
		sanitized.Namespace = defaults.Namespace
	}
	if len(sanitized.UpstreamRemote) == 0 {
		sanitized.UpstreamRemote = defaults.UpstreamRemote
	}
	if len(sanitized.UpstreamURLTemplate) == 0 {
		sanitized.UpstreamURLTemplate = defaults.UpstreamURLTemplate
	}
	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}
	if len(sanitized.DownstreamSuffix) == 0 {
		sanitized.DownstreamSuffix = defaults.DownstreamSuffix
	}
	return sanitized
}

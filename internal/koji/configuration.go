package koji

import (
	"strings"
	"time"
)

const (
	defaultUpstreamKojiURLConstant   = "https://koji.fedoraproject.org/koji/"
	defaultDownstreamKojiURLConstant = "http://koji.rpmfusion.org/koji/"
	defaultDownstreamSuffixConstant  = "-freeworld"
	defaultPackageNameConstant       = "chromium"
	defaultRequestTimeoutConstant    = 30 * time.Second
)

// CommandConfiguration captures configuration values for the koji command.
type CommandConfiguration struct {
	PackageName        string        `mapstructure:"package"`
	UpstreamURL        string        `mapstructure:"upstream_url"`
	DownstreamURL      string        `mapstructure:"downstream_url"`
	EndOfLifePrefix    string        `mapstructure:"eol_prefix"`
	EndOfLifeThreshold int           `mapstructure:"eol_threshold"`
	DownstreamSuffix   string        `mapstructure:"suffix"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
}

// DefaultCommandConfiguration compares Fedora koji against RPM Fusion koji.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PackageName:        defaultPackageNameConstant,
		UpstreamURL:        defaultUpstreamKojiURLConstant,
		DownstreamURL:      defaultDownstreamKojiURLConstant,
		EndOfLifePrefix:    defaultEndOfLifePrefixConstant,
		EndOfLifeThreshold: defaultEndOfLifeThresholdConstant,
		DownstreamSuffix:   defaultDownstreamSuffixConstant,
		RequestTimeout:     defaultRequestTimeoutConstant,
	}
}

// Sanitize trims values and restores defaults for empty URLs and suffixes.
// An empty package name stays empty so that --pkgname becomes mandatory.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.PackageName = strings.TrimSpace(configuration.PackageName)
	sanitized.UpstreamURL = strings.TrimSpace(configuration.UpstreamURL)
	if len(sanitized.UpstreamURL) == 0 {
		sanitized.UpstreamURL = defaults.UpstreamURL
	}
	sanitized.DownstreamURL = strings.TrimSpace(configuration.DownstreamURL)
	if len(sanitized.DownstreamURL) == 0 {
		sanitized.DownstreamURL = defaults.DownstreamURL
	}
	sanitized.EndOfLifePrefix = strings.TrimSpace(configuration.EndOfLifePrefix)
	sanitized.DownstreamSuffix = strings.TrimSpace(configuration.DownstreamSuffix)
	if len(sanitized.DownstreamSuffix) == 0 {
		sanitized.DownstreamSuffix = defaults.DownstreamSuffix
	}
	if sanitized.RequestTimeout < 0 {
		sanitized.RequestTimeout = 0
	}
	return sanitized
}

// EndOfLifePolicy returns the configured retirement policy.
func (configuration CommandConfiguration) EndOfLifePolicy() EndOfLifePolicy {
	return EndOfLifePolicy{Prefix: configuration.EndOfLifePrefix, Threshold: configuration.EndOfLifeThreshold}
}

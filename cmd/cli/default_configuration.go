package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in defaults for every command and their format.
// The loader merges it below any configuration file and FWSYNC_* environment variables.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	configurationContent := make([]byte, len(embeddedDefaultConfigurationContent))
	copy(configurationContent, embeddedDefaultConfigurationContent)
	return configurationContent, configurationTypeConstant
}

package utils

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant               = "."
	environmentKeySeparatorConstant                 = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	listSeparatorConstant                           = ","
)

// configurationDecodeHook converts textual values into durations, string lists and encoding.TextUnmarshaler
// implementations so that environment overrides such as FWSYNC_TOOLS_KOJI_REQUEST_TIMEOUT=30s decode cleanly.
func configurationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listSeparatorConstant),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// ConfigurationSources lists the layers a ConfigurationLoader reads, lowest precedence first:
// EmbeddedDefaults, then <Name>.<Type> found in SearchPaths (or an explicit file), then
// environment variables named <EnvironmentPrefix>_<SECTION>_<KEY>.
type ConfigurationSources struct {
	Name              string
	Type              string
	EnvironmentPrefix string
	SearchPaths       []string
	EmbeddedDefaults  []byte
}

// ConfigurationLoader resolves ConfigurationSources into a configuration struct through Viper.
type ConfigurationLoader struct {
	sources ConfigurationSources
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader for the provided sources.
func NewConfigurationLoader(sources ConfigurationSources) *ConfigurationLoader {
	sources.SearchPaths = slices.Clone(sources.SearchPaths)
	sources.EmbeddedDefaults = bytes.Clone(sources.EmbeddedDefaults)
	return &ConfigurationLoader{sources: sources}
}

// LoadConfiguration decodes every layer into targetConfiguration. An explicit configurationFilePath
// must exist; a configuration file missing from the search paths is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance, layeringError := loader.layeredViper(configurationFilePath)
	if layeringError != nil {
		return LoadedConfiguration{}, layeringError
	}

	unmarshalError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(configurationDecodeHook()))
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}
	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) layeredViper(configurationFilePath string) (*viper.Viper, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType(loader.sources.Type)

	if len(loader.sources.EmbeddedDefaults) > 0 {
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.sources.EmbeddedDefaults)); mergeError != nil {
			return nil, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	} else {
		viperInstance.SetConfigName(loader.sources.Name)
		for _, searchPath := range loader.sources.SearchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
	}

	// Environment overrides apply only to keys already known from the embedded defaults or the file.
	viperInstance.SetEnvPrefix(loader.sources.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return nil, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}
	return viperInstance, nil
}

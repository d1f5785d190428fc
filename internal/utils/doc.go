// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration file,
// and FWSYNC_* environment variables through Viper. LoggerFactory builds the zap
// loggers used for diagnostics and console feedback.
package utils

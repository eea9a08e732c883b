// Package utils holds the process-wide plumbing shared by every gitstamp command.
//
// ConfigurationLoader layers the embedded defaults, an optional config file, and
// GITSTAMP_* environment variables through viper. LoggerFactory builds the zap
// logger in either console or structured form.
package utils

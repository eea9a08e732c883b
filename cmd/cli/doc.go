// Package cli constructs the gitstamp command-line interface, wiring the Cobra
// command hierarchy, the Viper-backed configuration loader, and zap logging.
package cli

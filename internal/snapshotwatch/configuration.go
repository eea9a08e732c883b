package snapshotwatch

import (
	"strings"
	"time"

	"github.com/temirov/gitstamp/internal/report"
)

// CommandConfiguration captures configuration values for the watch command.
type CommandConfiguration struct {
	Format   string        `mapstructure:"format"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultCommandConfiguration provides baseline configuration values for the watch command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Format: string(report.FormatText), Debounce: DefaultDebounce}
}

// Sanitize normalizes the format and replaces non-positive debounce values with the default.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = string(report.FormatText)
	}
	if sanitized.Debounce <= 0 {
		sanitized.Debounce = DefaultDebounce
	}
	return sanitized
}

package inspect

import (
	"strings"

	"github.com/temirov/gitstamp/internal/report"
)

// ShowConfiguration captures configuration values for the show command.
type ShowConfiguration struct {
	Format string `mapstructure:"format"`
}

// DefaultShowConfiguration provides baseline configuration values for the show command.
func DefaultShowConfiguration() ShowConfiguration {
	return ShowConfiguration{Format: string(report.FormatText)}
}

// Sanitize trims values and restores the default format when none is configured.
func (configuration ShowConfiguration) Sanitize() ShowConfiguration {
	sanitized := configuration
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = DefaultShowConfiguration().Format
	}
	return sanitized
}

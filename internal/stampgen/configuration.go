package stampgen

import (
	"os"
	"strings"
)

const goGeneratePackageEnvironmentConstant = "GOPACKAGE"

// CommandConfiguration captures configuration values for the generate command.
type CommandConfiguration struct {
	PackageName        string `mapstructure:"package"`
	Prefix             string `mapstructure:"prefix"`
	OutputPath         string `mapstructure:"output"`
	DependencyFilePath string `mapstructure:"deps"`
}

// DefaultCommandConfiguration provides baseline configuration values for the generate command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{OutputPath: DefaultOutputFileName}
}

// Sanitize trims configuration values and fills the output path default.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		PackageName:        strings.TrimSpace(configuration.PackageName),
		Prefix:             strings.TrimSpace(configuration.Prefix),
		OutputPath:         strings.TrimSpace(configuration.OutputPath),
		DependencyFilePath: strings.TrimSpace(configuration.DependencyFilePath),
	}
	if len(sanitized.OutputPath) == 0 {
		sanitized.OutputPath = DefaultOutputFileName
	}
	return sanitized
}

// options converts the configuration into generator options. An unset package name falls
// back to the package go generate is running for.
func (configuration CommandConfiguration) options() Options {
	packageName := configuration.PackageName
	if len(packageName) == 0 {
		packageName = strings.TrimSpace(os.Getenv(goGeneratePackageEnvironmentConstant))
	}
	return Options{
		PackageName:        packageName,
		Prefix:             configuration.Prefix,
		OutputPath:         configuration.OutputPath,
		DependencyFilePath: configuration.DependencyFilePath,
	}
}

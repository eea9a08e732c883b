package inspect

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitstamp/internal/dependencies"
	"github.com/temirov/gitstamp/internal/gitrepo"
	"github.com/temirov/gitstamp/internal/report"
	flagutils "github.com/temirov/gitstamp/internal/utils/flags"
)

const (
	rootCommandUseConstant              = "root [path]"
	rootCommandShortDescriptionConstant = "Print the root directory of the enclosing git repository"
	rootCommandLongDescriptionConstant  = "root resolves the provided path (default: the working directory) to the top-level directory of its git repository and prints it."
	rootCommandExampleConstant          = "gitstamp root ~/Development/project/internal"
	showCommandUseConstant              = "show [path]"
	showCommandShortDescriptionConstant = "Print the current repository snapshot"
	showCommandLongDescriptionConstant  = "show collects the commit hash, branch, dirty flag, commit date, commit count, and watched git files of the repository enclosing the provided path."
	showCommandExampleConstant          = "gitstamp show --format json"
	formatFlagNameConstant              = "format"
	formatFlagDescriptionConstant       = "Output format."
	currentDirectoryArgumentConstant    = "."
	rootOutputTemplateConstant          = "%s\n"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// RootCommandBuilder assembles the root command.
type RootCommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	HumanReadableLoggingProvider func() bool
}

// Build constructs the root command.
func (builder *RootCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     rootCommandUseConstant,
		Short:   rootCommandShortDescriptionConstant,
		Long:    rootCommandLongDescriptionConstant,
		Example: rootCommandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}
	return command, nil
}

func (builder *RootCommandBuilder) run(command *cobra.Command, arguments []string) error {
	collector, collectorError := dependencies.ResolveCollector(builder.GitExecutor, resolveLogger(builder.LoggerProvider), resolveHumanReadable(builder.HumanReadableLoggingProvider), nil)
	if collectorError != nil {
		return collectorError
	}

	root, locateError := collector.Locator().LocateRoot(command.Context(), resolvePathArgument(arguments))
	if locateError != nil {
		return locateError
	}

	_, writeError := fmt.Fprintf(command.OutOrStdout(), rootOutputTemplateConstant, root)
	return writeError
}

// ShowCommandBuilder assembles the show command.
type ShowCommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	FileSystem                   gitrepo.FileSystem
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() ShowConfiguration
}

// Build constructs the show command.
func (builder *ShowCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     showCommandUseConstant,
		Short:   showCommandShortDescriptionConstant,
		Long:    showCommandLongDescriptionConstant,
		Example: showCommandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	var formatFlagValue string
	flagutils.BindChoiceFlag(command.Flags(), &formatFlagValue, formatFlagNameConstant, DefaultShowConfiguration().Format, report.SupportedFormatNames(), formatFlagDescriptionConstant)
	return command, nil
}

func (builder *ShowCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(formatFlagNameConstant) {
		configuration.Format = command.Flags().Lookup(formatFlagNameConstant).Value.String()
	}

	format, formatError := report.ParseFormat(configuration.Format)
	if formatError != nil {
		return formatError
	}

	collector, collectorError := dependencies.ResolveCollector(builder.GitExecutor, resolveLogger(builder.LoggerProvider), resolveHumanReadable(builder.HumanReadableLoggingProvider), builder.FileSystem)
	if collectorError != nil {
		return collectorError
	}

	snapshot, collectError := collector.CollectFromPath(command.Context(), resolvePathArgument(arguments))
	if collectError != nil {
		return collectError
	}

	return report.NewWriter().Write(command.OutOrStdout(), snapshot, format)
}

func (builder *ShowCommandBuilder) resolveConfiguration() ShowConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultShowConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	return dependencies.ResolveLogger(provider())
}

func resolveHumanReadable(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}

func resolvePathArgument(arguments []string) string {
	if len(arguments) == 0 {
		return currentDirectoryArgumentConstant
	}
	return arguments[0]
}

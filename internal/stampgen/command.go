package stampgen

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitstamp/internal/dependencies"
	"github.com/temirov/gitstamp/internal/gitrepo"
	pathutils "github.com/temirov/gitstamp/internal/utils/path"
)

const (
	commandUseConstant               = "generate [path]"
	commandShortDescriptionConstant  = "Write a Go file with repository build metadata constants"
	commandLongDescriptionConstant   = "generate collects the repository enclosing the provided path and writes its commit hash, branch, dirty flag, commit date, and commit count as Go constants. Use --deps to record the git files the output depends on as a make-style dependency file."
	commandExampleConstant           = "//go:generate gitstamp generate --output gitstamp_gen.go --package version"
	outputFlagNameConstant           = "output"
	outputFlagUsageConstant          = "Path of the generated Go file."
	packageFlagNameConstant          = "package"
	packageFlagUsageConstant         = "Package clause of the generated file (default: $GOPACKAGE, then \"stamp\")."
	prefixFlagNameConstant           = "prefix"
	prefixFlagUsageConstant          = "Prefix prepended to every generated constant name."
	depsFlagNameConstant             = "deps"
	depsFlagUsageConstant            = "Optional path of a make-style dependency file listing the watched git files."
	currentDirectoryArgumentConstant = "."
	stampWrittenMessageConstant      = "stamp written"
	logFieldOutputConstant           = "output"
	logFieldDependencyFileConstant   = "dependency_file"
	logFieldCommitHashConstant       = "commit_hash"
	logFieldDirtyConstant            = "dirty"
	logFieldWatchedFilesConstant     = "watched_files"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the generate command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the generate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	command.Flags().String(outputFlagNameConstant, DefaultOutputFileName, outputFlagUsageConstant)
	command.Flags().String(packageFlagNameConstant, "", packageFlagUsageConstant)
	command.Flags().String(prefixFlagNameConstant, "", prefixFlagUsageConstant)
	command.Flags().String(depsFlagNameConstant, "", depsFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	applyStringFlag(command, outputFlagNameConstant, &configuration.OutputPath)
	applyStringFlag(command, packageFlagNameConstant, &configuration.PackageName)
	applyStringFlag(command, prefixFlagNameConstant, &configuration.Prefix)
	applyStringFlag(command, depsFlagNameConstant, &configuration.DependencyFilePath)
	configuration = configuration.Sanitize()

	homeExpander := pathutils.NewHomeExpander()
	configuration.OutputPath = homeExpander.Expand(configuration.OutputPath)
	configuration.DependencyFilePath = homeExpander.Expand(configuration.DependencyFilePath)

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	collector, collectorError := dependencies.ResolveCollector(builder.GitExecutor, logger, humanReadableLogging, nil)
	if collectorError != nil {
		return collectorError
	}

	generator, generatorError := NewGenerator(collector)
	if generatorError != nil {
		return generatorError
	}

	repositoryPath := currentDirectoryArgumentConstant
	if len(arguments) > 0 {
		repositoryPath = arguments[0]
	}

	result, writeError := generator.Write(command.Context(), repositoryPath, configuration.options())
	if writeError != nil {
		return writeError
	}

	logger.Info(
		stampWrittenMessageConstant,
		zap.String(logFieldOutputConstant, result.OutputPath),
		zap.String(logFieldDependencyFileConstant, result.DependencyFilePath),
		zap.String(logFieldCommitHashConstant, result.Snapshot.CommitHash()),
		zap.Bool(logFieldDirtyConstant, result.Snapshot.IsDirty()),
		zap.Strings(logFieldWatchedFilesConstant, result.Snapshot.WatchedFiles()),
	)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	return dependencies.ResolveLogger(builder.LoggerProvider())
}

func applyStringFlag(command *cobra.Command, flagName string, target *string) {
	if command == nil || !command.Flags().Changed(flagName) {
		return
	}
	value, lookupError := command.Flags().GetString(flagName)
	if lookupError != nil {
		return
	}
	*target = value
}

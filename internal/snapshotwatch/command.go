package snapshotwatch

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitstamp/internal/dependencies"
	"github.com/temirov/gitstamp/internal/gitrepo"
	"github.com/temirov/gitstamp/internal/report"
	flagutils "github.com/temirov/gitstamp/internal/utils/flags"
)

const (
	commandUseConstant               = "watch [path]"
	commandShortDescriptionConstant  = "Print the repository snapshot every time it changes"
	commandLongDescriptionConstant   = "watch prints the current repository snapshot, then watches the git metadata files it depends on and prints a new snapshot whenever the commit, branch, dirty flag, date, or count changes. Stop with Ctrl+C."
	commandExampleConstant           = "gitstamp watch --format json --debounce 500ms"
	formatFlagNameConstant           = "format"
	formatFlagDescriptionConstant    = "Output format."
	debounceFlagNameConstant         = "debounce"
	debounceFlagUsageConstant        = "Quiet period after a change before the repository is re-collected."
	currentDirectoryArgumentConstant = "."
	watchStartedMessageConstant      = "watch started"
	logFieldRepositoryRootConstant   = "repository_root"
	logFieldDebounceConstant         = "debounce"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the watch command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	// ContextDecorator wraps the command context; defaults to cancelling on SIGINT and SIGTERM.
	ContextDecorator func(context.Context) (context.Context, context.CancelFunc)
}

// Build constructs the watch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	var formatFlagValue string
	flagutils.BindChoiceFlag(command.Flags(), &formatFlagValue, formatFlagNameConstant, string(report.FormatText), report.SupportedFormatNames(), formatFlagDescriptionConstant)
	command.Flags().Duration(debounceFlagNameConstant, DefaultDebounce, debounceFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(formatFlagNameConstant) {
		configuration.Format = command.Flags().Lookup(formatFlagNameConstant).Value.String()
	}
	if command.Flags().Changed(debounceFlagNameConstant) {
		if debounce, durationError := command.Flags().GetDuration(debounceFlagNameConstant); durationError == nil {
			configuration.Debounce = debounce
		}
	}
	configuration = configuration.Sanitize()

	format, formatError := report.ParseFormat(configuration.Format)
	if formatError != nil {
		return formatError
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	collector, collectorError := dependencies.ResolveCollector(builder.GitExecutor, logger, humanReadableLogging, nil)
	if collectorError != nil {
		return collectorError
	}

	repositoryPath := currentDirectoryArgumentConstant
	if len(arguments) > 0 {
		repositoryPath = arguments[0]
	}

	executionContext, cancel := builder.decorateContext(command.Context())
	defer cancel()

	root, locateError := collector.Locator().LocateRoot(executionContext, repositoryPath)
	if locateError != nil {
		return locateError
	}

	watcher, watcherError := NewWatcher(Dependencies{Collector: collector, Logger: logger, Debounce: configuration.Debounce})
	if watcherError != nil {
		return watcherError
	}

	logger.Info(watchStartedMessageConstant, zap.String(logFieldRepositoryRootConstant, root), zap.Duration(logFieldDebounceConstant, configuration.Debounce))

	writer := report.NewWriter()
	output := command.OutOrStdout()
	return watcher.Run(executionContext, root, func(snapshot gitrepo.Snapshot) error {
		return writer.Write(output, snapshot, format)
	})
}

func (builder *CommandBuilder) decorateContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if builder.ContextDecorator != nil {
		return builder.ContextDecorator(parent)
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
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

package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gitstamp/internal/execshell"
	"github.com/temirov/gitstamp/internal/filesystem"
	"github.com/temirov/gitstamp/internal/gitrepo"
)

// ResolveLogger returns the provided logger or a no-op logger.
func ResolveLogger(existing *zap.Logger) *zap.Logger {
	if existing != nil {
		return existing
	}
	return zap.NewNop()
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing gitrepo.FileSystem) gitrepo.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(ResolveLogger(logger), commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveCollector builds a snapshot collector around the resolved executor and filesystem.
func ResolveCollector(executor gitrepo.GitExecutor, logger *zap.Logger, humanReadableLogging bool, fileSystem gitrepo.FileSystem) (*gitrepo.Collector, error) {
	gitExecutor, executorError := ResolveGitExecutor(executor, logger, humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	return gitrepo.NewCollector(gitrepo.CollectorDependencies{
		GitExecutor: gitExecutor,
		FileSystem:  ResolveFileSystem(fileSystem),
	})
}

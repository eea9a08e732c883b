package gitrepo

import (
	"context"
	"strconv"
	"strings"

	"github.com/temirov/gitstamp/internal/execshell"
	"github.com/temirov/gitstamp/internal/filesystem"
)

const (
	currentDirectoryPathConstant   = "."
	gitHeadReferenceConstant       = "HEAD"
	gitAbbrevRefFlagConstant       = "--abbrev-ref"
	gitStatusSubcommandConstant    = "status"
	gitPorcelainFlagConstant       = "--porcelain"
	gitRevListSubcommandConstant   = "rev-list"
	gitCountFlagConstant           = "--count"
	gitLogSubcommandConstant       = "log"
	gitSingleCommitFlagConstant    = "-1"
	gitCommitterDateFormatConstant = "--pretty=format:%cd"
	commitCountBaseConstant        = 10
	commitCountBitSizeConstant     = 64
)

// CollectorDependencies enumerates collaborators required by the Collector.
type CollectorDependencies struct {
	GitExecutor GitExecutor
	FileSystem  FileSystem
}

// Collector gathers repository snapshots. It keeps no state between calls.
type Collector struct {
	executor     GitExecutor
	locator      *RepositoryLocator
	watchedFiles watchedFileResolver
}

// NewCollector constructs a Collector; FileSystem defaults to the operating system.
func NewCollector(dependencies CollectorDependencies) (*Collector, error) {
	locator, locatorError := NewRepositoryLocator(dependencies.GitExecutor)
	if locatorError != nil {
		return nil, locatorError
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}

	return &Collector{
		executor:     dependencies.GitExecutor,
		locator:      locator,
		watchedFiles: watchedFileResolver{fileSystem: fileSystem},
	}, nil
}

// Locator exposes the RepositoryLocator sharing this collector's executor.
func (collector *Collector) Locator() *RepositoryLocator {
	return collector.locator
}

// Collect runs the repository queries against root and returns a complete snapshot.
// The first failing query aborts collection.
func (collector *Collector) Collect(executionContext context.Context, root string) (Snapshot, error) {
	watchedFiles, watchedFilesError := collector.watchedFiles.resolve(root)
	if watchedFilesError != nil {
		return Snapshot{}, watchedFilesError
	}

	commitHash, hashError := collector.queryFirstLine(executionContext, root, gitRevParseSubcommandConstant, gitHeadReferenceConstant)
	if hashError != nil {
		return Snapshot{}, hashError
	}

	branch, branchError := collector.queryFirstLine(executionContext, root, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if branchError != nil {
		return Snapshot{}, branchError
	}

	status, statusError := collector.queryFirstLine(executionContext, root, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return Snapshot{}, statusError
	}

	commitCountOutput, commitCountError := collector.queryFirstLine(executionContext, root, gitRevListSubcommandConstant, gitCountFlagConstant, gitHeadReferenceConstant)
	if commitCountError != nil {
		return Snapshot{}, commitCountError
	}
	commitCount, parseError := strconv.ParseUint(commitCountOutput, commitCountBaseConstant, commitCountBitSizeConstant)
	if parseError != nil {
		return Snapshot{}, InvalidCommitCountError{Root: root, Output: commitCountOutput}
	}

	commitDate, commitDateError := collector.queryFirstLine(executionContext, root, gitLogSubcommandConstant, gitSingleCommitFlagConstant, gitCommitterDateFormatConstant)
	if commitDateError != nil {
		return Snapshot{}, commitDateError
	}

	return NewSnapshot(SnapshotValues{
		CommitHash:   commitHash,
		Branch:       branch,
		Dirty:        len(strings.TrimSpace(status)) > 0,
		CommitDate:   commitDate,
		CommitCount:  commitCount,
		WatchedFiles: watchedFiles,
	}), nil
}

// CollectFromWorkingDirectory locates the repository enclosing the current directory and collects it.
func (collector *Collector) CollectFromWorkingDirectory(executionContext context.Context) (Snapshot, error) {
	return collector.CollectFromPath(executionContext, currentDirectoryPathConstant)
}

// CollectFromPath locates the repository enclosing path and collects it.
func (collector *Collector) CollectFromPath(executionContext context.Context, path string) (Snapshot, error) {
	root, locateError := collector.locator.LocateRoot(executionContext, path)
	if locateError != nil {
		return Snapshot{}, locateError
	}
	return collector.Collect(executionContext, root)
}

// queryFirstLine runs git in root and returns standard output up to the first newline,
// without a trailing carriage return.
func (collector *Collector) queryFirstLine(executionContext context.Context, root string, arguments ...string) (string, error) {
	executionResult, executionError := collector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: root,
	})
	if executionError != nil {
		return "", newGitRunFailedError(root, arguments, executionError)
	}
	return strings.TrimSuffix(firstOutputLine(executionResult.StandardOutput), carriageReturnConstant), nil
}

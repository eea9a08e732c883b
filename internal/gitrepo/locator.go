package gitrepo

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/temirov/gitstamp/internal/execshell"
	pathutils "github.com/temirov/gitstamp/internal/utils/path"
)

const (
	gitRevParseSubcommandConstant = "rev-parse"
	gitShowToplevelFlagConstant   = "--show-toplevel"
	carriageReturnConstant        = "\r"
	gitExecutorMissingMessage     = "git executor not configured"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessage)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryLocator resolves paths to the root of their enclosing git repository.
type RepositoryLocator struct {
	executor     GitExecutor
	homeExpander *pathutils.HomeExpander
}

// NewRepositoryLocator constructs a RepositoryLocator around the provided executor.
func NewRepositoryLocator(executor GitExecutor) (*RepositoryLocator, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryLocator{executor: executor, homeExpander: pathutils.NewHomeExpander()}, nil
}

// LocateRoot returns the absolute, cleaned root directory of the repository containing startPath.
func (locator *RepositoryLocator) LocateRoot(executionContext context.Context, startPath string) (string, error) {
	workingDirectory := locator.homeExpander.Expand(startPath)
	arguments := []string{gitRevParseSubcommandConstant, gitShowToplevelFlagConstant}

	executionResult, executionError := locator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		return "", newGitRunFailedError(workingDirectory, arguments, executionError)
	}

	toplevel := strings.TrimSuffix(firstOutputLine(executionResult.StandardOutput), carriageReturnConstant)
	if len(strings.TrimSpace(toplevel)) == 0 {
		return "", GitRunFailedError{
			WorkingDirectory: workingDirectory,
			Arguments:        arguments,
			ExitCode:         executionResult.ExitCode,
			StandardOutput:   executionResult.StandardOutput,
			StandardError:    executionResult.StandardError,
			Cause:            ErrEmptyRepositoryRoot,
		}
	}
	absoluteRoot, absoluteError := filepath.Abs(filepath.FromSlash(toplevel))
	if absoluteError != nil {
		return filepath.Clean(filepath.FromSlash(toplevel)), nil
	}
	return absoluteRoot, nil
}

func firstOutputLine(output string) string {
	line, _, _ := strings.Cut(output, lineBreakConstant)
	return line
}

package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitstamp/internal/execshell"
)

const (
	couldNotReadFileErrorTemplateConstant     = "could not read %s: %v"
	invalidCommitCountErrorTemplateConstant   = "invalid commit count %q reported for %s"
	gitRunFailedErrorTemplateConstant         = "git %s failed in %s with exit code %d%s"
	gitRunFailedCauseErrorTemplateConstant    = "git %s failed in %s: %v"
	emptyRepositoryRootMessageConstant        = "git reported an empty repository root"
	gitRunFailedStandardErrorTemplateConstant = ": %s"
	argumentsJoinSeparatorConstant            = " "
	unknownExitCodeConstant                   = -1
)

// ErrEmptyRepositoryRoot is the Cause of a GitRunFailedError when rev-parse --show-toplevel
// succeeded without printing a root.
var ErrEmptyRepositoryRoot = errors.New(emptyRepositoryRootMessageConstant)

// CouldNotReadFileError reports a .git metadata file that exists but could not be read.
type CouldNotReadFileError struct {
	Path string
	Err  error
}

// Error describes the read failure.
func (failure CouldNotReadFileError) Error() string {
	return fmt.Sprintf(couldNotReadFileErrorTemplateConstant, failure.Path, failure.Err)
}

// Unwrap exposes the underlying I/O error.
func (failure CouldNotReadFileError) Unwrap() error {
	return failure.Err
}

// InvalidCommitCountError reports commit count output that is not a non-negative integer.
type InvalidCommitCountError struct {
	Root   string
	Output string
}

// Error describes the malformed output.
func (failure InvalidCommitCountError) Error() string {
	return fmt.Sprintf(invalidCommitCountErrorTemplateConstant, failure.Output, failure.Root)
}

// GitRunFailedError reports a git invocation that did not succeed.
// ExitCode is -1 and Cause is set when git could not be started at all. Cause is also set,
// with the real exit code, when git succeeded but its output was unusable.
type GitRunFailedError struct {
	WorkingDirectory string
	Arguments        []string
	ExitCode         int
	StandardOutput   string
	StandardError    string
	Cause            error
}

// Error describes the failed invocation including trimmed standard error.
func (failure GitRunFailedError) Error() string {
	joinedArguments := strings.Join(failure.Arguments, argumentsJoinSeparatorConstant)
	if failure.Cause != nil {
		return fmt.Sprintf(gitRunFailedCauseErrorTemplateConstant, joinedArguments, failure.WorkingDirectory, failure.Cause)
	}

	standardErrorSuffix := ""
	if trimmedStandardError := strings.TrimSpace(failure.StandardError); len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(gitRunFailedStandardErrorTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(gitRunFailedErrorTemplateConstant, joinedArguments, failure.WorkingDirectory, failure.ExitCode, standardErrorSuffix)
}

// Unwrap exposes Cause.
func (failure GitRunFailedError) Unwrap() error {
	return failure.Cause
}

func newGitRunFailedError(workingDirectory string, arguments []string, executionError error) GitRunFailedError {
	runFailure := GitRunFailedError{
		WorkingDirectory: workingDirectory,
		Arguments:        append([]string{}, arguments...),
		ExitCode:         unknownExitCodeConstant,
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		runFailure.ExitCode = commandFailure.Result.ExitCode
		runFailure.StandardOutput = commandFailure.Result.StandardOutput
		runFailure.StandardError = commandFailure.Result.StandardError
		return runFailure
	}

	var executionFailure execshell.CommandExecutionError
	if errors.As(executionError, &executionFailure) {
		runFailure.Cause = executionFailure.Cause
		return runFailure
	}

	runFailure.Cause = executionError
	return runFailure
}

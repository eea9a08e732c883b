package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesRepositoryQueries(t *testing.T) {
	formatter := CommandMessageFormatter{}
	testCases := []struct {
		name            string
		arguments       []string
		stage           messageStage
		result          ExecutionResult
		failure         error
		expectedMessage string
	}{
		{
			name:            "toplevel_start",
			arguments:       []string{"rev-parse", "--show-toplevel"},
			stage:           messageStageStart,
			expectedMessage: "Locating repository root from /workspace/repo",
		},
		{
			name:            "toplevel_success",
			arguments:       []string{"rev-parse", "--show-toplevel"},
			stage:           messageStageSuccess,
			result:          ExecutionResult{StandardOutput: "/workspace/repo\n"},
			expectedMessage: "Repository root for /workspace/repo is /workspace/repo",
		},
		{
			name:            "toplevel_failure",
			arguments:       []string{"rev-parse", "--show-toplevel"},
			stage:           messageStageFailure,
			result:          ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository\n"},
			expectedMessage: "Could not locate a repository root from /workspace/repo (exit code 128: fatal: not a git repository)",
		},
		{
			name:            "detached_branch",
			arguments:       []string{"rev-parse", "--abbrev-ref", "HEAD"},
			stage:           messageStageSuccess,
			result:          ExecutionResult{StandardOutput: "HEAD\n"},
			expectedMessage: "/workspace/repo is in a detached HEAD state",
		},
		{
			name:            "revision_success",
			arguments:       []string{"rev-parse", "HEAD"},
			stage:           messageStageSuccess,
			result:          ExecutionResult{StandardOutput: "abc123\n"},
			expectedMessage: "HEAD in /workspace/repo resolved to abc123",
		},
		{
			name:            "status_dirty",
			arguments:       []string{"status", "--porcelain"},
			stage:           messageStageSuccess,
			result:          ExecutionResult{StandardOutput: "?? notes.txt\n"},
			expectedMessage: "Working tree in /workspace/repo has uncommitted changes",
		},
		{
			name:            "status_clean",
			arguments:       []string{"status", "--porcelain"},
			stage:           messageStageSuccess,
			expectedMessage: "Working tree in /workspace/repo is clean",
		},
		{
			name:            "commit_count",
			arguments:       []string{"rev-list", "--count", "HEAD"},
			stage:           messageStageSuccess,
			result:          ExecutionResult{StandardOutput: "14\n"},
			expectedMessage: "HEAD in /workspace/repo has 14 reachable commits",
		},
		{
			name:            "log_execution_failure",
			arguments:       []string{"log", "-1", "--pretty=format:%cd"},
			stage:           messageStageExecutionFailure,
			failure:         errors.New("signal: killed"),
			expectedMessage: "Unable to read latest commit details in /workspace/repo: signal: killed",
		},
		{
			name:            "generic_fallback",
			arguments:       []string{"describe", "--tags"},
			stage:           messageStageStart,
			expectedMessage: "Running git describe --tags (in /workspace/repo)",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := ShellCommand{
				Name: CommandGit,
				Details: CommandDetails{
					Arguments:        testCase.arguments,
					WorkingDirectory: "/workspace/repo",
				},
			}

			message := formatter.buildMessage(command, testCase.result, testCase.failure, testCase.stage)
			require.Equal(t, testCase.expectedMessage, message)
		})
	}
}

func TestCommandMessageFormatterUsesCurrentDirectoryLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"status", "--porcelain"}},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Reviewing working tree status in current directory", message)
	require.False(t, formatter.shouldLogStartMessage(command))
}

package gitrepo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitstamp/internal/execshell"
	pathutils "github.com/temirov/gitstamp/internal/utils/path"
)

func TestNewRepositoryLocatorRequiresExecutor(t *testing.T) {
	locator, err := NewRepositoryLocator(nil)
	require.Nil(t, locator)
	require.ErrorIs(t, err, ErrGitExecutorNotConfigured)
}

func TestLocateRootNormalizesOutput(t *testing.T) {
	testCases := []struct {
		name     string
		output   string
		expected string
	}{
		{name: "trailing_newline", output: "/srv/project\n", expected: "/srv/project"},
		{name: "crlf", output: "/srv/project\r\n", expected: "/srv/project"},
		{name: "extra_lines", output: "/srv/project\nwarning\n", expected: "/srv/project"},
		{name: "unclean", output: "/srv/project/sub/..\n", expected: "/srv/project"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			executor := &stubGitExecutor{responses: []stubGitResponse{outputResponse(testCase.output)}}
			locator, err := NewRepositoryLocator(executor)
			require.NoError(t, err)

			root, locateError := locator.LocateRoot(context.Background(), "/srv/project/sub")
			require.NoError(t, locateError)

			expected, absoluteError := filepath.Abs(filepath.FromSlash(testCase.expected))
			require.NoError(t, absoluteError)
			require.Equal(t, expected, root)
			require.Equal(t, []string{"rev-parse", "--show-toplevel"}, executor.recorded[0].Arguments)
			require.Equal(t, "/srv/project/sub", executor.recorded[0].WorkingDirectory)
		})
	}
}

func TestLocateRootExpandsHomeDirectory(t *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{outputResponse("/home/tester/project\n")}}
	locator, err := NewRepositoryLocator(executor)
	require.NoError(t, err)
	locator.homeExpander = pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "/home/tester", nil })

	_, locateError := locator.LocateRoot(context.Background(), "~/project")
	require.NoError(t, locateError)
	require.Equal(t, filepath.Join("/home/tester", "project"), executor.recorded[0].WorkingDirectory)
}

func TestLocateRootReportsGitFailure(t *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{{err: execshell.CommandFailedError{
		Result: execshell.ExecutionResult{StandardError: "fatal: not a git repository (or any of the parent directories): .git\n", ExitCode: 128},
	}}}}
	locator, err := NewRepositoryLocator(executor)
	require.NoError(t, err)

	_, locateError := locator.LocateRoot(context.Background(), "/tmp/elsewhere")
	var runError GitRunFailedError
	require.ErrorAs(t, locateError, &runError)
	require.Equal(t, 128, runError.ExitCode)
	require.Equal(t, "/tmp/elsewhere", runError.WorkingDirectory)
	require.Equal(t, []string{"rev-parse", "--show-toplevel"}, runError.Arguments)
	require.Contains(t, runError.StandardError, "not a git repository")
}

func TestLocateRootRejectsEmptyOutput(t *testing.T) {
	testCases := []struct {
		name   string
		output string
	}{
		{name: "no_output", output: ""},
		{name: "blank_line", output: "\n"},
		{name: "whitespace_then_path", output: "  \r\n/srv/project\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			executor := &stubGitExecutor{responses: []stubGitResponse{outputResponse(testCase.output)}}
			locator, err := NewRepositoryLocator(executor)
			require.NoError(t, err)

			root, locateError := locator.LocateRoot(context.Background(), "/srv/project/sub")
			require.Empty(t, root)
			require.ErrorIs(t, locateError, ErrEmptyRepositoryRoot)

			var runError GitRunFailedError
			require.ErrorAs(t, locateError, &runError)
			require.Equal(t, 0, runError.ExitCode)
			require.Equal(t, "/srv/project/sub", runError.WorkingDirectory)
			require.Equal(t, testCase.output, runError.StandardOutput)
			require.Equal(t, []string{"rev-parse", "--show-toplevel"}, runError.Arguments)
		})
	}
}

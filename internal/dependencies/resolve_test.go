package dependencies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitstamp/internal/execshell"
	"github.com/temirov/gitstamp/internal/filesystem"
)

type stubGitExecutor struct{}

func (stubGitExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestResolveGitExecutorPrefersExisting(t *testing.T) {
	existing := stubGitExecutor{}
	resolved, err := ResolveGitExecutor(existing, nil, false)
	require.NoError(t, err)
	require.Equal(t, existing, resolved)
}

func TestResolveGitExecutorBuildsShellExecutor(t *testing.T) {
	resolved, err := ResolveGitExecutor(nil, zap.NewNop(), true)
	require.NoError(t, err)
	require.IsType(t, &execshell.ShellExecutor{}, resolved)
}

func TestResolveDefaults(t *testing.T) {
	require.NotNil(t, ResolveLogger(nil))
	require.Equal(t, filesystem.OSFileSystem{}, ResolveFileSystem(nil))

	collector, err := ResolveCollector(stubGitExecutor{}, nil, false, nil)
	require.NoError(t, err)
	require.NotNil(t, collector)
	require.NotNil(t, collector.Locator())
}

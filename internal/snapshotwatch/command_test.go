package snapshotwatch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitstamp/internal/execshell"
)

type queuedGitExecutor struct {
	outputs []string
}

func (executor *queuedGitExecutor) ExecuteGit(_ context.Context, _ execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if len(executor.outputs) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	next := executor.outputs[0]
	executor.outputs = executor.outputs[1:]
	return execshell.ExecutionResult{StandardOutput: next}, nil
}

func boundedContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 150*time.Millisecond)
}

func TestWatchCommandBuilds(t *testing.T) {
	builder := CommandBuilder{}
	command, err := builder.Build()
	require.NoError(t, err)
	require.IsType(t, &cobra.Command{}, command)
	require.NotNil(t, command.Flags().Lookup("format"))
	require.NotNil(t, command.Flags().Lookup("debounce"))
}

func TestWatchCommandPrintsInitialSnapshotAndStops(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))

	builder := CommandBuilder{
		GitExecutor:      &queuedGitExecutor{outputs: []string{root + "\n", "abc123\n", "main\n", "", "3\n", "Mon Jan 11 11:50:59 2016 -0800\n"}},
		ContextDecorator: boundedContext,
		ConfigurationProvider: func() CommandConfiguration {
			return CommandConfiguration{Format: "json"}
		},
	}
	command, err := builder.Build()
	require.NoError(t, err)

	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{root, "--format", "text", "--debounce", "10ms"})
	command.SetContext(context.Background())

	require.NoError(t, command.Execute())
	require.Contains(t, output.String(), "commit: abc123\n")
	require.Contains(t, output.String(), "count: 3\n")
}

func TestCommandConfigurationSanitize(t *testing.T) {
	require.Equal(t, DefaultCommandConfiguration(), CommandConfiguration{Debounce: -time.Second}.Sanitize())
	require.Equal(t, CommandConfiguration{Format: "yaml", Debounce: time.Second}, CommandConfiguration{Format: " YAML ", Debounce: time.Second}.Sanitize())
}

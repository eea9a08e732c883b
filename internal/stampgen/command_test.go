package stampgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitstamp/internal/execshell"
)

type queuedGitExecutor struct {
	recorded []execshell.CommandDetails
	outputs  []string
}

func (executor *queuedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if len(executor.outputs) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	next := executor.outputs[0]
	executor.outputs = executor.outputs[1:]
	return execshell.ExecutionResult{StandardOutput: next}, nil
}

func newQueuedGitExecutor(root string) *queuedGitExecutor {
	return &queuedGitExecutor{outputs: []string{root + "\n", "abc123\n", "main\n", "", "5\n", "Mon Jan 11 11:50:59 2016 -0800\n"}}
}

func runGenerateCommand(testInstance *testing.T, builder CommandBuilder, arguments ...string) error {
	testInstance.Helper()

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	return command.Execute()
}

func TestGenerateCommandBuilds(t *testing.T) {
	builder := CommandBuilder{}
	command, err := builder.Build()
	require.NoError(t, err)
	require.IsType(t, &cobra.Command{}, command)
	for _, flagName := range []string{"output", "package", "prefix", "deps"} {
		require.NotNil(t, command.Flags().Lookup(flagName), flagName)
	}
}

func TestGenerateCommandUsesConfigurationAndFlags(t *testing.T) {
	repositoryRoot := t.TempDir()
	outputDirectory := t.TempDir()
	configuredOutput := filepath.Join(outputDirectory, "configured.go")
	flagOutput := filepath.Join(outputDirectory, "flag.go")

	core, recorded := observer.New(zap.InfoLevel)
	builder := CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.New(core) },
		GitExecutor:    newQueuedGitExecutor(repositoryRoot),
		ConfigurationProvider: func() CommandConfiguration {
			return CommandConfiguration{PackageName: "configured", Prefix: "Build", OutputPath: configuredOutput}
		},
	}

	require.NoError(t, runGenerateCommand(t, builder, "--output", flagOutput, "--package", "version", "--deps", filepath.Join(outputDirectory, "stamp.d")))

	_, statError := os.Stat(configuredOutput)
	require.ErrorIs(t, statError, os.ErrNotExist)

	source, readError := os.ReadFile(flagOutput)
	require.NoError(t, readError)
	require.Contains(t, string(source), "package version")
	require.Contains(t, string(source), "BuildCommitCount = 5")

	dependencyContent, readError := os.ReadFile(filepath.Join(outputDirectory, "stamp.d"))
	require.NoError(t, readError)
	require.Equal(t, filepath.ToSlash(flagOutput)+":\n", string(dependencyContent))

	entries := recorded.FilterMessage("stamp written").All()
	require.Len(t, entries, 1)
	require.Equal(t, flagOutput, entries[0].ContextMap()["output"])
}

func TestGenerateCommandFallsBackToGoGeneratePackage(t *testing.T) {
	repositoryRoot := t.TempDir()
	outputPath := filepath.Join(t.TempDir(), "stamp.go")
	t.Setenv("GOPACKAGE", "buildinfo")

	builder := CommandBuilder{GitExecutor: newQueuedGitExecutor(repositoryRoot)}
	require.NoError(t, runGenerateCommand(t, builder, "--output", outputPath))

	source, readError := os.ReadFile(outputPath)
	require.NoError(t, readError)
	require.Contains(t, string(source), "package buildinfo")
}

func TestGenerateCommandRejectsInvalidPackage(t *testing.T) {
	repositoryRoot := t.TempDir()
	outputPath := filepath.Join(t.TempDir(), "stamp.go")

	builder := CommandBuilder{GitExecutor: newQueuedGitExecutor(repositoryRoot)}
	executionError := runGenerateCommand(t, builder, "--output", outputPath, "--package", "not-valid")
	require.ErrorAs(t, executionError, &InvalidPackageNameError{})

	_, statError := os.Stat(outputPath)
	require.ErrorIs(t, statError, os.ErrNotExist)
}

func TestCommandConfigurationSanitize(t *testing.T) {
	sanitized := CommandConfiguration{PackageName: " version ", OutputPath: "  "}.Sanitize()
	require.Equal(t, CommandConfiguration{PackageName: "version", OutputPath: DefaultOutputFileName}, sanitized)
}

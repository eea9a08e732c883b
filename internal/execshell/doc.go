// Package execshell runs external tools on behalf of gitstamp.
//
// ShellExecutor wraps a CommandRunner (OSCommandRunner by default), logs each
// invocation through zap and converts non-zero exit codes into
// CommandFailedError so callers can inspect the captured output.
package execshell

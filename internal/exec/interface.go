// Package exec provides an interface for single-shot command execution with
// captured output.
package exec

import (
	"context"
)

// Result holds the captured output of one command invocation.
// A non-zero exit code is not a Go error: callers classify exit codes and
// stderr themselves.
type Result struct {
	// ExitCode is the command's exit code. -1 means the command did not
	// run to completion (spawn failure, kill, or cancellation).
	ExitCode int
	// Stdout and Stderr are captured separately so callers can classify
	// failures from stderr without losing output.
	Stdout string
	Stderr string
}

// Combined returns stdout followed by stderr, for callers that only want a
// single blob of output.
func (r *Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and captures its output. The working
	// directory is set to workDir if non-empty. The returned error is
	// non-nil only when the command could not be started or the context
	// ended; exit status lives in Result.ExitCode.
	Run(ctx context.Context, workDir string, name string, args ...string) (*Result, error)

	// RunShell executes a shell command through "sh -c".
	RunShell(ctx context.Context, workDir string, command string) (*Result, error)
}

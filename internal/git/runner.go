// Package git automates repository state around agent executions: diffs,
// commit/push, branch sync, and clone, all through a single command
// executor.
//
// Operations against one working directory are not internally serialized;
// callers must not issue concurrent git operations against the same
// repository (git's index lock makes that fail, not corrupt).
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/drover/internal/exec"
	"github.com/ShayCichocki/drover/internal/logging"
	"github.com/ShayCichocki/drover/pkg/models"
)

// Runner executes git operations for one repository path.
type Runner struct {
	repoPath string
	runner   exec.CommandRunner
}

// NewRunner creates a git runner for the repository at the given path.
func NewRunner(repoPath string) *Runner {
	return &Runner{repoPath: repoPath, runner: exec.NewRunner()}
}

// NewRunnerWith creates a git runner with an injected command runner.
// Tests use this to script git's behavior.
func NewRunnerWith(repoPath string, cr exec.CommandRunner) *Runner {
	return &Runner{repoPath: repoPath, runner: cr}
}

// RepoPath returns the repository path.
func (r *Runner) RepoPath() string {
	return r.repoPath
}

// run executes one git command and returns its captured result. The error
// is non-nil only for spawn failure or cancellation.
func (r *Runner) run(ctx context.Context, args ...string) (*exec.Result, error) {
	res, err := r.runner.Run(ctx, r.repoPath, "git", args...)
	if err != nil {
		return res, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	logging.Debugf("git: %s exit=%d", strings.Join(args, " "), res.ExitCode)
	return res, nil
}

// op executes one git command and wraps it in the uniform result envelope.
func (r *Runner) op(ctx context.Context, args ...string) models.GitOperationResult {
	res, err := r.run(ctx, args...)
	if err != nil {
		return models.GitOperationResult{Success: false, Error: err.Error()}
	}
	if res.ExitCode != 0 {
		return models.GitOperationResult{
			Success: false,
			Output:  res.Stdout,
			Error:   classify(res).Error(),
		}
	}
	return models.GitOperationResult{Success: true, Output: res.Stdout}
}

// output runs a git command expected to succeed and returns trimmed stdout.
func (r *Runner) output(ctx context.Context, args ...string) (string, error) {
	res, err := r.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", classify(res)
	}
	return strings.TrimSpace(res.Stdout), nil
}

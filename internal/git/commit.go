package git

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/drover/pkg/models"
)

// HasChanges reports whether the working tree has uncommitted changes.
func (r *Runner) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Commit stages everything and creates a commit. The result carries the new
// commit hash on success.
func (r *Runner) Commit(ctx context.Context, message string) models.GitOperationResult {
	if res := r.op(ctx, "add", "-A"); !res.Success {
		return res
	}

	res := r.op(ctx, "commit", "-m", message)
	if !res.Success {
		return res
	}

	hash, err := r.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		// The commit exists even if we failed to read its hash back.
		res.Error = fmt.Sprintf("commit created but hash unavailable: %v", err)
		return res
	}
	res.CommitHash = hash
	return res
}

// Push pushes branch to remote.
func (r *Runner) Push(ctx context.Context, remote, branch string) models.GitOperationResult {
	res := r.op(ctx, "push", remote, branch)
	res.Remote = remote
	res.Branch = branch
	return res
}

// CommitAndPush commits all changes, then pushes. The two phases are
// reported as one result: when the commit succeeds and the push fails, the
// result is a failure that still carries the commit hash — a caller must
// never lose a successful commit behind a later push error.
func (r *Runner) CommitAndPush(ctx context.Context, message, remote, branch string) models.GitOperationResult {
	commit := r.Commit(ctx, message)
	if !commit.Success {
		return commit
	}

	push := r.Push(ctx, remote, branch)
	if !push.Success {
		return models.GitOperationResult{
			Success:    false,
			Output:     commit.Output,
			Error:      push.Error,
			CommitHash: commit.CommitHash,
			Remote:     remote,
			Branch:     branch,
		}
	}

	push.CommitHash = commit.CommitHash
	return push
}

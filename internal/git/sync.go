package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ShayCichocki/drover/pkg/models"
)

// HardCheckout makes branch match remote/branch exactly: fetch, remove
// untracked files, reset hard to the remote ref. It distinguishes a branch
// that exists locally (plain checkout) from one that only exists on the
// remote (create-and-track) before resetting.
func (r *Runner) HardCheckout(ctx context.Context, remote, branch string) models.GitOperationResult {
	if res := r.op(ctx, "fetch", remote); !res.Success {
		return res
	}

	local, err := r.BranchExists(ctx, branch)
	if err != nil {
		return models.GitOperationResult{Success: false, Error: err.Error()}
	}

	if local {
		if res := r.op(ctx, "checkout", branch); !res.Success {
			return res
		}
	} else {
		onRemote, err := r.RemoteBranchExists(ctx, remote, branch)
		if err != nil {
			return models.GitOperationResult{Success: false, Error: err.Error()}
		}
		if !onRemote {
			return models.GitOperationResult{
				Success: false,
				Error:   fmt.Sprintf("branch %q not found locally or on %s", branch, remote),
				Branch:  branch,
				Remote:  remote,
			}
		}
		if res := r.op(ctx, "checkout", "-b", branch, "--track", remote+"/"+branch); !res.Success {
			return res
		}
	}

	if res := r.op(ctx, "clean", "-fd"); !res.Success {
		return res
	}
	res := r.op(ctx, "reset", "--hard", remote+"/"+branch)
	res.Branch = branch
	res.Remote = remote
	return res
}

// SyncWithOrigin hard-resets the currently checked-out branch to its state
// on the given remote.
func (r *Runner) SyncWithOrigin(ctx context.Context, remote string) models.GitOperationResult {
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		return models.GitOperationResult{Success: false, Error: err.Error()}
	}
	return r.HardCheckout(ctx, remote, branch)
}

// Clone clones url into dir. The target must be absent or empty. On failure
// or cancellation any partially-cloned target is deleted so no corrupt
// checkout is left behind.
func (r *Runner) Clone(ctx context.Context, url, dir string) models.GitOperationResult {
	if err := ensureAbsentOrEmpty(dir); err != nil {
		return models.GitOperationResult{Success: false, Error: err.Error()}
	}

	res, err := r.runner.Run(ctx, "", "git", "clone", url, dir)
	if err != nil {
		removeCloneTarget(dir)
		return models.GitOperationResult{Success: false, Error: fmt.Sprintf("git clone: %v", err)}
	}
	if res.ExitCode != 0 {
		removeCloneTarget(dir)
		return models.GitOperationResult{Success: false, Output: res.Stdout, Error: classify(res).Error()}
	}
	return models.GitOperationResult{Success: true, Output: res.Stdout}
}

func ensureAbsentOrEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect clone target: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("clone target %s is not empty", dir)
	}
	return nil
}

// removeCloneTarget deletes a partial clone. Refuses to remove anything but
// the target itself.
func removeCloneTarget(dir string) {
	if dir == "" || dir == "/" || dir == filepath.Dir(dir) {
		return
	}
	os.RemoveAll(dir)
}

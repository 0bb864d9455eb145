package git

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ShayCichocki/drover/pkg/models"
)

// CurrentBranch returns the name of the checked-out branch.
func (r *Runner) CurrentBranch(ctx context.Context) (string, error) {
	return r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// BranchExists reports whether a local branch exists.
func (r *Runner) BranchExists(ctx context.Context, name string) (bool, error) {
	res, err := r.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	if err != nil {
		return false, err
	}
	// Exit 1 means the ref does not exist, which is an answer, not an error.
	return res.ExitCode == 0, nil
}

// RemoteBranchExists reports whether remote/name exists in the local
// remote-tracking refs (fetch first for a fresh answer).
func (r *Runner) RemoteBranchExists(ctx context.Context, remote, name string) (bool, error) {
	res, err := r.run(ctx, "show-ref", "--verify", "--quiet", "refs/remotes/"+remote+"/"+name)
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}

// trackPattern extracts ahead/behind counts from for-each-ref's
// "[ahead 2, behind 1]" annotation.
var trackPattern = regexp.MustCompile(`ahead (\d+)|behind (\d+)`)

// Branches lists local branches with their upstream relationship.
func (r *Runner) Branches(ctx context.Context) ([]models.BranchInfo, error) {
	out, err := r.output(ctx, "for-each-ref", "refs/heads",
		"--format=%(HEAD)|%(refname:short)|%(upstream:short)|%(upstream:track)")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var branches []models.BranchInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "|")
		if len(fields) < 4 {
			continue
		}
		info := models.BranchInfo{
			IsCurrent: fields[0] == "*",
			Name:      fields[1],
			Upstream:  fields[2],
		}
		for _, m := range trackPattern.FindAllStringSubmatch(fields[3], -1) {
			if m[1] != "" {
				info.Ahead, _ = strconv.Atoi(m[1])
			}
			if m[2] != "" {
				info.Behind, _ = strconv.Atoi(m[2])
			}
		}
		branches = append(branches, info)
	}
	return branches, nil
}

package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/drover/internal/exec"
)

// Typed git failures, classified from exit codes and stderr wording so
// callers can branch on cause instead of scraping messages themselves.
var (
	// ErrNotARepository means the target directory is not a git work tree.
	ErrNotARepository = errors.New("not a git repository")
	// ErrAuthFailed means the remote rejected our credentials.
	ErrAuthFailed = errors.New("git authentication failed")
	// ErrPushRejected means the remote refused the push (non-fast-forward,
	// protected branch).
	ErrPushRejected = errors.New("push rejected by remote")
	// ErrRemoteUnavailable means the remote could not be reached.
	ErrRemoteUnavailable = errors.New("git remote unavailable")
	// ErrNoCommits means the repository has no commits yet.
	ErrNoCommits = errors.New("repository has no commits")
)

// classify converts a non-zero git exit into a typed error. The stderr
// substrings are git's stable user-facing wording; anything unrecognized
// degrades to a generic error carrying the stderr text.
func classify(res *exec.Result) error {
	stderr := strings.ToLower(res.Stderr)

	switch {
	case strings.Contains(stderr, "not a git repository"):
		return ErrNotARepository

	case strings.Contains(stderr, "authentication failed"),
		strings.Contains(stderr, "could not read username"),
		strings.Contains(stderr, "permission denied (publickey"),
		strings.Contains(stderr, "403"):
		return fmt.Errorf("%w: %s", ErrAuthFailed, firstLine(res.Stderr))

	case strings.Contains(stderr, "[rejected]"),
		strings.Contains(stderr, "non-fast-forward"),
		strings.Contains(stderr, "failed to push some refs"):
		return fmt.Errorf("%w: %s", ErrPushRejected, firstLine(res.Stderr))

	case strings.Contains(stderr, "could not resolve host"),
		strings.Contains(stderr, "connection refused"),
		strings.Contains(stderr, "connection timed out"),
		strings.Contains(stderr, "could not read from remote repository"):
		return fmt.Errorf("%w: %s", ErrRemoteUnavailable, firstLine(res.Stderr))

	case strings.Contains(stderr, "does not have any commits yet"),
		strings.Contains(stderr, "ambiguous argument 'head'"),
		strings.Contains(stderr, "bad revision 'head'"):
		return ErrNoCommits
	}

	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	if msg == "" {
		msg = "no output"
	}
	return fmt.Errorf("git exited %d: %s", res.ExitCode, msg)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

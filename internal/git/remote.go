package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// remoteURLPatterns match the three remote URL shapes in the wild:
// scp-like SSH, ssh:// URLs, and HTTPS.
var remoteURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^git@([^:]+):([^/]+)/(.+?)(?:\.git)?$`),
	regexp.MustCompile(`^ssh://git@([^/]+)/([^/]+)/(.+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^https?://([^/]+)/([^/]+)/(.+?)(?:\.git)?/?$`),
}

// ParseRemoteURL normalizes a git remote URL (SSH or HTTPS) into host and
// the "owner/repo" shorthand.
func ParseRemoteURL(url string) (host, ownerRepo string, err error) {
	url = strings.TrimSpace(url)
	for _, re := range remoteURLPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], m[2] + "/" + m[3], nil
		}
	}
	return "", "", fmt.Errorf("unrecognized remote url %q", url)
}

// HTTPSURL renders an owner/repo shorthand as an HTTPS remote URL.
func HTTPSURL(host, ownerRepo string) string {
	return "https://" + host + "/" + ownerRepo + ".git"
}

// SSHURL renders an owner/repo shorthand as an scp-like SSH remote URL.
func SSHURL(host, ownerRepo string) string {
	return "git@" + host + ":" + ownerRepo + ".git"
}

// RemoteOwnerRepo reads the named remote's URL and returns its owner/repo
// shorthand.
func (r *Runner) RemoteOwnerRepo(ctx context.Context, remote string) (string, error) {
	url, err := r.output(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	_, ownerRepo, err := ParseRemoteURL(url)
	return ownerRepo, err
}

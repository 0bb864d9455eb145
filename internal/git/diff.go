package git

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ShayCichocki/drover/pkg/models"
)

const (
	// DiffByteCap bounds how much raw diff text is kept. Agent runs can
	// rewrite generated files wholesale; storing unbounded diffs is how a
	// result record reaches hundreds of megabytes.
	DiffByteCap = 1 << 20
	// truncationMarker terminates a capped diff so consumers can tell a
	// truncated diff from a complete one.
	truncationMarker = "\n[diff truncated]"
)

// WorkingDiff returns the diff of the working tree against base (HEAD when
// base is empty). In a repository with no commits yet there is no HEAD to
// diff against, so it falls back to the staged diff. Output beyond
// DiffByteCap is truncated at a line boundary.
func (r *Runner) WorkingDiff(ctx context.Context, base string) (string, bool, error) {
	if base == "" {
		base = "HEAD"
	}

	text, err := r.diffText(ctx, base)
	if errors.Is(err, ErrNoCommits) {
		text, err = r.stagedDiff(ctx)
	}
	if err != nil {
		return "", false, err
	}

	truncated, wasTruncated := TruncateDiff(text, DiffByteCap)
	return truncated, wasTruncated, nil
}

func (r *Runner) diffText(ctx context.Context, base string) (string, error) {
	res, err := r.run(ctx, "diff", base)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", classify(res)
	}
	return res.Stdout, nil
}

func (r *Runner) stagedDiff(ctx context.Context) (string, error) {
	res, err := r.run(ctx, "diff", "--cached")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", classify(res)
	}
	return res.Stdout, nil
}

// TruncateDiff caps text at maxBytes, cutting at the last complete line and
// appending the truncation marker. The returned text never exceeds maxBytes
// plus the marker length, and never splits a line.
func TruncateDiff(text string, maxBytes int) (string, bool) {
	if len(text) <= maxBytes {
		return text, false
	}
	cut := strings.LastIndexByte(text[:maxBytes], '\n')
	if cut < 0 {
		// A single line longer than the cap: drop it entirely rather
		// than emit a torn line.
		cut = 0
	}
	return text[:cut] + truncationMarker, true
}

// ParseDiff splits unified diff text on file-header boundaries into per-file
// records. Duplicate filenames across sections are merged by summing counts:
// one logical change can appear in multiple sections (staged and unstaged,
// or renames).
func ParseDiff(text string) models.DiffSummary {
	summary := models.DiffSummary{}
	if strings.HasSuffix(text, truncationMarker) {
		summary.Truncated = true
	}

	byPath := make(map[string]*models.DiffFile)
	var order []string
	var current *models.DiffFile

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			path := pathFromHeader(line)
			if path == "" {
				current = nil
				continue
			}
			if existing, ok := byPath[path]; ok {
				current = existing
			} else {
				current = &models.DiffFile{Path: path}
				byPath[path] = current
				order = append(order, path)
			}

		case strings.HasPrefix(line, "new file mode"):
			if current != nil {
				current.IsNew = true
			}
		case strings.HasPrefix(line, "deleted file mode"):
			if current != nil {
				current.IsDeleted = true
			}

		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// File markers, not content.

		case strings.HasPrefix(line, "+"):
			if current != nil {
				current.Additions++
			}
		case strings.HasPrefix(line, "-"):
			if current != nil {
				current.Deletions++
			}
		}
	}

	for _, path := range order {
		file := byPath[path]
		summary.Files = append(summary.Files, *file)
		summary.Additions += file.Additions
		summary.Deletions += file.Deletions
	}
	return summary
}

// pathFromHeader extracts the b-side path from a "diff --git a/x b/x" line.
func pathFromHeader(line string) string {
	rest := strings.TrimPrefix(line, "diff --git ")
	idx := strings.Index(rest, " b/")
	if idx < 0 {
		return ""
	}
	path := rest[idx+len(" b/"):]
	if unquoted, err := strconv.Unquote(path); err == nil {
		return unquoted
	}
	return path
}

// CompareDiffs classifies target's files against reference. Comparison uses
// addition/deletion counts only: two diff invocations of identical logical
// changes can render different literal text, but their counts agree.
func CompareDiffs(reference, target models.DiffSummary) models.DiffComparison {
	refFiles := make(map[string]models.DiffFile, len(reference.Files))
	for _, f := range reference.Files {
		refFiles[f.Path] = f
	}
	targetFiles := make(map[string]models.DiffFile, len(target.Files))
	for _, f := range target.Files {
		targetFiles[f.Path] = f
	}

	var cmp models.DiffComparison
	for _, f := range reference.Files {
		other, ok := targetFiles[f.Path]
		if !ok {
			cmp.Missing = append(cmp.Missing, f.Path)
			continue
		}
		if other.Additions != f.Additions || other.Deletions != f.Deletions {
			cmp.Modified = append(cmp.Modified, f.Path)
		}
	}
	for _, f := range target.Files {
		if _, ok := refFiles[f.Path]; !ok {
			cmp.Extra = append(cmp.Extra, f.Path)
		}
	}
	return cmp
}

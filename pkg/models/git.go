package models

// GitOperationResult is the uniform envelope for every git action.
type GitOperationResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	// CommitHash is populated whenever a commit was created, even if a
	// later phase (such as push) failed.
	CommitHash string `json:"commit_hash,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Remote     string `json:"remote,omitempty"`
}

// DiffFile is one file's entry parsed from unified diff text.
type DiffFile struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	IsNew     bool   `json:"is_new"`
	IsDeleted bool   `json:"is_deleted"`
}

// DiffSummary is a structured view of a unified diff.
type DiffSummary struct {
	Files     []DiffFile `json:"files"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	// Truncated reports that the raw diff exceeded the byte cap and was
	// cut at a line boundary.
	Truncated bool `json:"truncated,omitempty"`
}

// DiffComparison classifies a target diff's files against a reference diff.
// Classification compares addition/deletion counts only: two diff
// invocations of the same logical change can render different literal text.
type DiffComparison struct {
	// Missing are reference files absent from the target.
	Missing []string `json:"missing,omitempty"`
	// Extra are target files absent from the reference.
	Extra []string `json:"extra,omitempty"`
	// Modified are files present in both with differing counts.
	Modified []string `json:"modified,omitempty"`
}

// Identical reports that the comparison found no differences.
func (c *DiffComparison) Identical() bool {
	return len(c.Missing) == 0 && len(c.Extra) == 0 && len(c.Modified) == 0
}

// BranchInfo describes one local branch and its remote relationship.
type BranchInfo struct {
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
	Upstream  string `json:"upstream,omitempty"`
	Ahead     int    `json:"ahead"`
	Behind    int    `json:"behind"`
}

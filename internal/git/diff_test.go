package git

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/drover/pkg/models"
)

const sampleDiff = `diff --git a/auth.go b/auth.go
index 1111111..2222222 100644
--- a/auth.go
+++ b/auth.go
@@ -1,4 +1,6 @@
 package auth
+import "errors"
+
 func Login() error {
-	return nil
+	return errors.New("todo")
 }
diff --git a/session.go b/session.go
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/session.go
@@ -0,0 +1,3 @@
+package auth
+
+type Session struct{}
diff --git a/legacy.go b/legacy.go
deleted file mode 100644
index 4444444..0000000
--- a/legacy.go
+++ /dev/null
@@ -1,2 +0,0 @@
-package auth
-var old = true
`

func TestParseDiff(t *testing.T) {
	summary := ParseDiff(sampleDiff)

	if len(summary.Files) != 3 {
		t.Fatalf("got %d files, want 3", len(summary.Files))
	}

	auth := summary.Files[0]
	if auth.Path != "auth.go" || auth.Additions != 3 || auth.Deletions != 1 {
		t.Errorf("auth.go = %+v, want +3/-1", auth)
	}
	if auth.IsNew || auth.IsDeleted {
		t.Error("auth.go flagged new/deleted")
	}

	session := summary.Files[1]
	if !session.IsNew || session.Additions != 3 {
		t.Errorf("session.go = %+v, want new +3", session)
	}

	legacy := summary.Files[2]
	if !legacy.IsDeleted || legacy.Deletions != 2 {
		t.Errorf("legacy.go = %+v, want deleted -2", legacy)
	}

	if summary.Additions != 6 || summary.Deletions != 3 {
		t.Errorf("totals = +%d/-%d, want +6/-3", summary.Additions, summary.Deletions)
	}
}

func TestParseDiffMergesDuplicateFiles(t *testing.T) {
	twoSections := `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
+one
+two
diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
+three
-gone
`
	summary := ParseDiff(twoSections)
	if len(summary.Files) != 1 {
		t.Fatalf("got %d files, want duplicate sections merged into 1", len(summary.Files))
	}
	if summary.Files[0].Additions != 3 || summary.Files[0].Deletions != 1 {
		t.Errorf("merged counts = +%d/-%d, want +3/-1", summary.Files[0].Additions, summary.Files[0].Deletions)
	}
}

func TestTruncateDiff(t *testing.T) {
	lines := strings.Repeat("0123456789\n", 100) // 1100 bytes

	got, truncated := TruncateDiff(lines, 105)
	if !truncated {
		t.Fatal("TruncateDiff() truncated = false")
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Error("truncated diff missing marker")
	}
	body := strings.TrimSuffix(got, truncationMarker)
	if len(body) > 105 {
		t.Errorf("body is %d bytes, cap is 105", len(body))
	}
	for _, line := range strings.Split(body, "\n") {
		if line != "" && line != "0123456789" {
			t.Errorf("line %q was split", line)
		}
	}

	short, truncated := TruncateDiff("tiny\n", 105)
	if truncated || short != "tiny\n" {
		t.Errorf("TruncateDiff(small) = %q, %v", short, truncated)
	}
}

func TestCompareDiffsIdenticalStructure(t *testing.T) {
	ref := models.DiffSummary{Files: []models.DiffFile{
		{Path: "a.go", Additions: 5, Deletions: 0},
		{Path: "b.go", Additions: 2, Deletions: 2},
	}}
	// Same files and counts, different order: structurally identical.
	target := models.DiffSummary{Files: []models.DiffFile{
		{Path: "b.go", Additions: 2, Deletions: 2},
		{Path: "a.go", Additions: 5, Deletions: 0},
	}}

	cmp := CompareDiffs(ref, target)
	if !cmp.Identical() {
		t.Errorf("CompareDiffs() = %+v, want identical", cmp)
	}
}

func TestCompareDiffsClassification(t *testing.T) {
	ref := models.DiffSummary{Files: []models.DiffFile{
		{Path: "kept.go", Additions: 1},
		{Path: "missing.go", Additions: 4},
		{Path: "changed.go", Additions: 2, Deletions: 1},
	}}
	target := models.DiffSummary{Files: []models.DiffFile{
		{Path: "kept.go", Additions: 1},
		{Path: "changed.go", Additions: 9, Deletions: 1},
		{Path: "extra.go", Additions: 7},
	}}

	cmp := CompareDiffs(ref, target)
	if len(cmp.Missing) != 1 || cmp.Missing[0] != "missing.go" {
		t.Errorf("Missing = %v", cmp.Missing)
	}
	if len(cmp.Extra) != 1 || cmp.Extra[0] != "extra.go" {
		t.Errorf("Extra = %v", cmp.Extra)
	}
	if len(cmp.Modified) != 1 || cmp.Modified[0] != "changed.go" {
		t.Errorf("Modified = %v", cmp.Modified)
	}
}

func TestCompareDiffsSameLogicalChange(t *testing.T) {
	// A repo where two commits added 5 lines to file A, and an independent
	// working copy reproducing the same 5-line add: different literal diff
	// text, same counts, so A is in neither Missing nor Modified.
	ref := ParseDiff(`diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
+l1
+l2
+l3
diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
+l4
+l5
`)
	target := ParseDiff(`diff --git a/a.txt b/a.txt
--- a/a.txt
+++ b/a.txt
+l1
+l2
+l3
+l4
+l5
`)

	cmp := CompareDiffs(ref, target)
	for _, path := range cmp.Missing {
		if path == "a.txt" {
			t.Error("a.txt reported Missing")
		}
	}
	for _, path := range cmp.Modified {
		if path == "a.txt" {
			t.Error("a.txt reported Modified")
		}
	}
}

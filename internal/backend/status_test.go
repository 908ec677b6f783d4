package backend

import (
	"strings"
	"testing"
)

func porcelain(entries ...string) []byte {
	return []byte(strings.Join(entries, "\x00") + "\x00")
}

func TestParseStatus_Branch(t *testing.T) {
	s := ParseStatus(porcelain(
		"# branch.oid 1234567890abcdef",
		"# branch.head feature/login",
		"# branch.upstream origin/feature/login",
		"# branch.ab +3 -2",
	))
	if s.Branch != "feature/login" {
		t.Errorf("Branch = %q, want feature/login", s.Branch)
	}
	if s.Ahead != 3 || s.Behind != 2 {
		t.Errorf("Ahead/Behind = %d/%d, want 3/2", s.Ahead, s.Behind)
	}
	if !s.IsClean {
		t.Error("IsClean = false, want true for no entries")
	}
}

func TestParseStatus_Detached(t *testing.T) {
	s := ParseStatus(porcelain("# branch.oid abc", "# branch.head (detached)"))
	if s.Branch != "HEAD" {
		t.Errorf("Branch = %q, want HEAD", s.Branch)
	}
	if s := ParseStatus(nil); s.Branch != "HEAD" {
		t.Errorf("empty output Branch = %q, want HEAD", s.Branch)
	}
}

func TestParseStatus_Entries(t *testing.T) {
	s := ParseStatus(porcelain(
		"# branch.head main",
		"1 M. N... 100644 100644 100644 aaa bbb staged.go",
		"1 .M N... 100644 100644 100644 aaa bbb unstaged.go",
		"1 MM N... 100644 100644 100644 aaa bbb both.go",
		"1 A. N... 000000 100644 100644 000 bbb added file.go",
		"1 .D N... 100644 100644 000000 aaa aaa gone.go",
		"2 R. N... 100644 100644 100644 aaa bbb R100 new.go",
		"old.go",
		"u UU N... 100644 100644 100644 100644 a b c conflict.go",
		"? notes.txt",
		"! ignored.log",
	))

	wantStaged := []FileChange{
		{Path: "staged.go", Status: StatusModified},
		{Path: "both.go", Status: StatusModified},
		{Path: "added file.go", Status: StatusAdded},
		{Path: "new.go", OldPath: "old.go", Status: StatusRenamed},
	}
	if len(s.Staged) != len(wantStaged) {
		t.Fatalf("Staged = %+v, want %+v", s.Staged, wantStaged)
	}
	for i, want := range wantStaged {
		if s.Staged[i] != want {
			t.Errorf("Staged[%d] = %+v, want %+v", i, s.Staged[i], want)
		}
	}

	wantUnstaged := []FileChange{
		{Path: "unstaged.go", Status: StatusModified},
		{Path: "both.go", Status: StatusModified},
		{Path: "gone.go", Status: StatusDeleted},
	}
	if len(s.Unstaged) != len(wantUnstaged) {
		t.Fatalf("Unstaged = %+v, want %+v", s.Unstaged, wantUnstaged)
	}
	for i, want := range wantUnstaged {
		if s.Unstaged[i] != want {
			t.Errorf("Unstaged[%d] = %+v, want %+v", i, s.Unstaged[i], want)
		}
	}

	if len(s.Untracked) != 1 || s.Untracked[0] != "notes.txt" {
		t.Errorf("Untracked = %v, want [notes.txt]", s.Untracked)
	}
	if len(s.Conflicts) != 1 || s.Conflicts[0].Path != "conflict.go" {
		t.Errorf("Conflicts = %+v, want conflict.go", s.Conflicts)
	}
	if s.IsClean {
		t.Error("IsClean = true, want false")
	}
}

func TestParseStatus_Fingerprint(t *testing.T) {
	a := ParseStatus(porcelain("# branch.head main", "? a.txt"))
	b := ParseStatus(porcelain("# branch.head main", "? a.txt"))
	c := ParseStatus(porcelain("# branch.head main", "? b.txt"))
	d := ParseStatus(porcelain("# branch.head dev", "? a.txt"))

	if a.Fingerprint != b.Fingerprint {
		t.Error("identical snapshots have different fingerprints")
	}
	if a.Fingerprint == c.Fingerprint {
		t.Error("different untracked files share a fingerprint")
	}
	if a.Fingerprint == d.Fingerprint {
		t.Error("different branches share a fingerprint")
	}
}

func TestStatus_HasPendingChange(t *testing.T) {
	s := ParseStatus(porcelain(
		"# branch.head main",
		"1 M. N... 100644 100644 100644 aaa bbb staged.go",
		"1 .M N... 100644 100644 100644 aaa bbb unstaged.go",
		"u UU N... 100644 100644 100644 100644 a b c conflict.go",
		"? new.txt",
	))
	tests := []struct {
		path string
		want bool
	}{
		{"staged.go", true},
		{"unstaged.go", true},
		{"new.txt", true},
		{"conflict.go", true},
		{"missing.go", false},
	}
	for _, tc := range tests {
		if got := s.HasPendingChange(tc.path); got != tc.want {
			t.Errorf("HasPendingChange(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	var nilStatus *Status
	if nilStatus.HasPendingChange("x") {
		t.Error("nil status reports a pending change")
	}
}

package backend

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// newTestRepo initializes a repository with isolated git configuration.
// Tests skip when no git executable is available.
func newTestRepo(t *testing.T) (*CLI, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(home, ".gitconfig"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	c := NewCLI(nil)
	dir := filepath.Join(t.TempDir(), "repo")
	if err := c.Init(context.Background(), dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c, dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCLI_CommitFlow(t *testing.T) {
	c, dir := newTestRepo(t)
	ctx := context.Background()

	// Empty repository
	st, err := c.Status(ctx, dir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Branch != "main" || !st.IsClean {
		t.Errorf("fresh repo status = %+v", st)
	}
	commits, err := c.History(ctx, dir, 0)
	if err != nil || len(commits) != 0 {
		t.Errorf("History on empty repo = %v, %v; want empty, nil", commits, err)
	}

	writeFile(t, dir, "a.txt", "hello\n")
	st, _ = c.Status(ctx, dir)
	if len(st.Untracked) != 1 || st.Untracked[0] != "a.txt" {
		t.Fatalf("Untracked = %v, want [a.txt]", st.Untracked)
	}
	diff, err := c.FileDiff(ctx, dir, "a.txt")
	if err != nil || !strings.Contains(diff, "+hello") {
		t.Errorf("untracked FileDiff = %q, %v", diff, err)
	}

	if err := c.Stage(ctx, dir, "a.txt"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := c.Unstage(ctx, dir, "a.txt"); err != nil {
		t.Fatalf("Unstage before first commit: %v", err)
	}
	if err := c.StageAll(ctx, dir); err != nil {
		t.Fatalf("StageAll: %v", err)
	}
	st, _ = c.Status(ctx, dir)
	if len(st.Staged) != 1 || st.Staged[0].Status != StatusAdded {
		t.Fatalf("Staged = %+v", st.Staged)
	}

	if err := c.Commit(ctx, dir, "first"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := c.Commit(ctx, dir, "nothing"); err != nil {
		t.Errorf("Commit with nothing staged = %v, want nil", err)
	}

	commits, err = c.History(ctx, dir, 10)
	if err != nil || len(commits) != 1 || commits[0].Message != "first" {
		t.Fatalf("History = %+v, %v", commits, err)
	}
	files, err := c.CommitFiles(ctx, dir, commits[0].Hash)
	if err != nil || len(files) != 1 || files[0].Path != "a.txt" {
		t.Errorf("CommitFiles = %+v, %v", files, err)
	}
	cdiff, err := c.CommitFileDiff(ctx, dir, commits[0].Hash, "a.txt")
	if err != nil || !strings.Contains(cdiff, "+hello") {
		t.Errorf("CommitFileDiff = %q, %v", cdiff, err)
	}

	// Modify, inspect and discard
	writeFile(t, dir, "a.txt", "changed\n")
	diff, _ = c.FileDiff(ctx, dir, "a.txt")
	if !strings.Contains(diff, "+changed") {
		t.Errorf("FileDiff = %q", diff)
	}
	if changed, _ := c.HasChanges(ctx, dir); !changed {
		t.Error("HasChanges = false after modification")
	}
	if err := c.Discard(ctx, dir, "a.txt"); err != nil {
		t.Fatalf("Discard tracked: %v", err)
	}
	writeFile(t, dir, "junk.txt", "x")
	if err := c.Discard(ctx, dir, "junk.txt"); err != nil {
		t.Fatalf("Discard untracked: %v", err)
	}
	st, _ = c.Status(ctx, dir)
	if !st.IsClean {
		t.Errorf("status after discard = %+v, want clean", st)
	}
}

func TestCLI_Branches(t *testing.T) {
	c, dir := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "a.txt", "1")
	_ = c.StageAll(ctx, dir)
	if err := c.Commit(ctx, dir, "init"); err != nil {
		t.Fatal(err)
	}

	if err := c.CreateBranch(ctx, dir, "feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := c.CreateBranch(ctx, dir, "feature"); KindOf(err) != KindValidation {
		t.Errorf("duplicate CreateBranch err = %v, want validation", err)
	}
	if err := c.Checkout(ctx, dir, "main"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	branches, err := c.Branches(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	var current string
	for _, b := range branches {
		if b.IsCurrent {
			current = b.Name
		}
	}
	if len(branches) != 2 || current != "main" {
		t.Errorf("branches = %+v", branches)
	}
	if err := c.Checkout(ctx, dir, "nope"); KindOf(err) != KindNotFound {
		t.Errorf("Checkout missing branch err = %v, want not-found", err)
	}
}

func TestCLI_UndoCommit(t *testing.T) {
	c, dir := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "a.txt", "1")
	_ = c.StageAll(ctx, dir)
	_ = c.Commit(ctx, dir, "one")
	writeFile(t, dir, "b.txt", "2")
	_ = c.StageAll(ctx, dir)
	_ = c.Commit(ctx, dir, "two")

	if err := c.UndoCommit(ctx, dir); err != nil {
		t.Fatalf("UndoCommit: %v", err)
	}
	st, _ := c.Status(ctx, dir)
	if len(st.Staged) != 1 || st.Staged[0].Path != "b.txt" {
		t.Errorf("Staged after undo = %+v, want b.txt", st.Staged)
	}
}

func TestCLI_RemoteAndTemplates(t *testing.T) {
	c, dir := newTestRepo(t)
	ctx := context.Background()

	if err := c.SetRemote(ctx, dir, "origin", "https://example.com/a.git"); err != nil {
		t.Fatalf("SetRemote add: %v", err)
	}
	if err := c.SetRemote(ctx, dir, "origin", "https://example.com/b.git"); err != nil {
		t.Fatalf("SetRemote update: %v", err)
	}
	if got := c.remoteURL(ctx, dir); got != "https://example.com/b.git" {
		t.Errorf("remote = %q", got)
	}

	writeFile(t, dir, "README.md", "keep me\n")
	err := c.WriteTemplates(ctx, dir, TemplateOptions{Readme: true, Gitignore: "go", License: "mit", Author: "Ada"})
	if err != nil {
		t.Fatalf("WriteTemplates: %v", err)
	}
	readme, _ := os.ReadFile(filepath.Join(dir, "README.md"))
	if string(readme) != "keep me\n" {
		t.Errorf("README overwritten: %q", readme)
	}
	license, _ := os.ReadFile(filepath.Join(dir, "LICENSE"))
	if !strings.Contains(string(license), "Ada") {
		t.Errorf("LICENSE = %q", license)
	}
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); err != nil {
		t.Errorf(".gitignore missing: %v", err)
	}
	if err := c.WriteTemplates(ctx, dir, TemplateOptions{Gitignore: "cobol"}); KindOf(err) != KindValidation {
		t.Errorf("unknown template err = %v", err)
	}
}

func TestCLI_AddToGitignore(t *testing.T) {
	c, dir := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, dir, ".gitignore", "bin/")

	if err := c.AddToGitignore(ctx, dir, "debug.log"); err != nil {
		t.Fatal(err)
	}
	if err := c.AddToGitignore(ctx, dir, "debug.log"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if string(data) != "bin/\ndebug.log\n" {
		t.Errorf(".gitignore = %q", data)
	}
}

func TestCLI_MergeInProgress(t *testing.T) {
	c, dir := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, dir, "a.txt", "base\n")
	_ = c.StageAll(ctx, dir)
	_ = c.Commit(ctx, dir, "base")
	_ = c.CreateBranch(ctx, dir, "other")
	writeFile(t, dir, "a.txt", "theirs\n")
	_ = c.StageAll(ctx, dir)
	_ = c.Commit(ctx, dir, "theirs")
	_ = c.Checkout(ctx, dir, "main")
	writeFile(t, dir, "a.txt", "ours\n")
	_ = c.StageAll(ctx, dir)
	_ = c.Commit(ctx, dir, "ours")

	if inProgress, err := c.MergeInProgress(ctx, dir); err != nil || inProgress {
		t.Fatalf("MergeInProgress before merge = %v, %v", inProgress, err)
	}
	_ = c.run(ctx, "merge", dir, "merge", "other")

	st, _ := c.Status(ctx, dir)
	if len(st.Conflicts) != 1 || st.Conflicts[0].Path != "a.txt" {
		t.Fatalf("Conflicts = %+v", st.Conflicts)
	}
	if inProgress, _ := c.MergeInProgress(ctx, dir); !inProgress {
		t.Fatal("MergeInProgress = false during conflicted merge")
	}
	if err := c.ResolveConflict(ctx, dir, "a.txt", ResolveTheirs); err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(data) != "theirs\n" {
		t.Errorf("a.txt = %q, want theirs", data)
	}
	if err := c.ContinueMerge(ctx, dir); err != nil {
		t.Fatalf("ContinueMerge: %v", err)
	}
	if inProgress, _ := c.MergeInProgress(ctx, dir); inProgress {
		t.Error("MergeInProgress = true after continue")
	}
}

func TestCLI_GlobalConfig(t *testing.T) {
	c, _ := newTestRepo(t)
	ctx := context.Background()

	name, err := c.GlobalConfig(ctx, ConfigUserName)
	if err != nil || name != "" {
		t.Fatalf("GlobalConfig on empty config = %q, %v; want empty, nil", name, err)
	}

	if err := c.SetGlobalConfig(ctx, ConfigUserName, "  Ada Lovelace "); err != nil {
		t.Fatalf("SetGlobalConfig: %v", err)
	}
	name, err = c.GlobalConfig(ctx, ConfigUserName)
	if err != nil || name != "Ada Lovelace" {
		t.Errorf("GlobalConfig = %q, %v; want Ada Lovelace", name, err)
	}

	err = c.SetGlobalConfig(ctx, ConfigUserEmail, " ")
	if KindOf(err) != KindValidation {
		t.Errorf("SetGlobalConfig(blank) kind = %v, want validation", KindOf(err))
	}
}

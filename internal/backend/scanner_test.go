package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeRepo creates dir with an empty .git directory.
func fakeRepo(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestDirScanner_ScanRepositories(t *testing.T) {
	root := t.TempDir()
	fakeRepo(t, filepath.Join(root, "zeta"))
	fakeRepo(t, filepath.Join(root, "Alpha"))
	fakeRepo(t, filepath.Join(root, "group", "beta"))
	fakeRepo(t, filepath.Join(root, "zeta", "nested"))
	fakeRepo(t, filepath.Join(root, "node_modules", "dep"))
	fakeRepo(t, filepath.Join(root, ".hidden", "secret"))
	fakeRepo(t, filepath.Join(root, "a", "b", "c", "d", "too-deep"))

	s := NewDirScanner(nil, 0, nil, nil)
	repos, err := s.ScanRepositories(context.Background(), root)
	if err != nil {
		t.Fatalf("ScanRepositories: %v", err)
	}

	var names []string
	for _, r := range repos {
		names = append(names, r.Name)
	}
	want := []string{"Alpha", "beta", "nested", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q (all: %v)", i, names[i], want[i], names)
		}
	}
	if repos[0].Path != filepath.Join(root, "Alpha") {
		t.Errorf("Path = %q", repos[0].Path)
	}
}

func TestDirScanner_Depth(t *testing.T) {
	root := t.TempDir()
	fakeRepo(t, filepath.Join(root, "one"))
	fakeRepo(t, filepath.Join(root, "x", "two"))

	s := NewDirScanner(nil, 1, nil, nil)
	repos, err := s.ScanRepositories(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0].Name != "one" {
		t.Errorf("repos = %+v, want only 'one'", repos)
	}
}

func TestDirScanner_CustomSkip(t *testing.T) {
	root := t.TempDir()
	fakeRepo(t, filepath.Join(root, "keep"))
	fakeRepo(t, filepath.Join(root, "archive-2019", "old"))

	s := NewDirScanner(nil, 0, []string{"archive-*", "[invalid"}, nil)
	repos, err := s.ScanRepositories(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0].Name != "keep" {
		t.Errorf("repos = %+v, want only 'keep'", repos)
	}
}

func TestDirScanner_Errors(t *testing.T) {
	s := NewDirScanner(nil, 0, nil, nil)
	if _, err := s.ScanRepositories(context.Background(), filepath.Join(t.TempDir(), "missing")); KindOf(err) != KindNotFound {
		t.Errorf("missing root: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ScanRepositories(context.Background(), file); KindOf(err) != KindValidation {
		t.Errorf("file root: %v", err)
	}
	if _, err := s.RepositoryInfo(context.Background(), t.TempDir()); KindOf(err) != KindNotFound {
		t.Errorf("RepositoryInfo on plain dir: %v", err)
	}
}

package backend

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultScanDepth is how many directory levels below the root are searched.
const DefaultScanDepth = 4

// DefaultSkipPatterns are directory names never descended into.
var DefaultSkipPatterns = []string{
	"node_modules", "target", "build", "dist", ".cache", "vendor", "__pycache__",
}

// DirScanner finds repositories by walking the filesystem.
type DirScanner struct {
	git      *CLI
	maxDepth int
	skip     []glob.Glob
	logger   *slog.Logger
}

// NewDirScanner compiles skip patterns. Invalid patterns are logged and ignored.
func NewDirScanner(git *CLI, maxDepth int, skipPatterns []string, logger *slog.Logger) *DirScanner {
	if logger == nil {
		logger = slog.Default()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultScanDepth
	}
	if skipPatterns == nil {
		skipPatterns = DefaultSkipPatterns
	}
	s := &DirScanner{git: git, maxDepth: maxDepth, logger: logger}
	for _, p := range skipPatterns {
		g, err := glob.Compile(p)
		if err != nil {
			logger.Warn("invalid skip pattern", "pattern", p, "err", err)
			continue
		}
		s.skip = append(s.skip, g)
	}
	return s
}

func (s *DirScanner) skipped(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, g := range s.skip {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ScanRepositories returns every repository under root, sorted by name
// case-insensitively. Repositories nested inside other repositories are found too.
func (s *DirScanner) ScanRepositories(ctx context.Context, root string) ([]Repository, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &Error{Kind: KindNotFound, Op: "scan", Message: err.Error(), Err: err}
	}
	if !info.IsDir() {
		return nil, Errorf(KindValidation, "scan", "%s is not a directory", root)
	}

	root = filepath.Clean(root)
	var paths []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped, not fatal.
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && s.skipped(d.Name()) {
			return fs.SkipDir
		}
		if isRepository(path) {
			paths = append(paths, path)
		}
		if depth(root, path) >= s.maxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		return nil, &Error{Kind: KindTransient, Op: "scan", Message: walkErr.Error(), Err: walkErr}
	}

	repos := make([]Repository, 0, len(paths))
	for _, p := range paths {
		repos = append(repos, s.describe(ctx, p, false))
	}
	sort.SliceStable(repos, func(i, j int) bool {
		return strings.ToLower(repos[i].Name) < strings.ToLower(repos[j].Name)
	})
	s.logger.Debug("scan complete", "root", root, "count", len(repos))
	return repos, nil
}

// RepositoryInfo describes a single repository, including its last commit.
func (s *DirScanner) RepositoryInfo(ctx context.Context, path string) (Repository, error) {
	if !isRepository(path) {
		return Repository{}, Errorf(KindNotFound, "repository-info", "%s is not a git repository", path)
	}
	return s.describe(ctx, path, true), nil
}

func (s *DirScanner) describe(ctx context.Context, path string, withCommit bool) Repository {
	repo := Repository{Path: path, Name: filepath.Base(path)}
	if s.git != nil {
		repo.RemoteURL = s.git.remoteURL(ctx, path)
		if withCommit {
			repo.LastCommit = s.git.lastCommit(ctx, path)
		}
	}
	return repo
}

// isRepository reports whether dir contains a .git directory or gitfile.
func isRepository(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

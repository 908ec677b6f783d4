package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/marcus/pinax/internal/backend"
)

// fakeBackend records calls and lets tests fail or block any of them.
// Workspace persistence is the real JSON file implementation.
type fakeBackend struct {
	*backend.WorkspaceFile

	mu       sync.Mutex
	calls    []string
	errs     map[string]error
	gates    map[string]*gate
	statuses map[string]*backend.Status // by repo path
	statusFn func(ctx context.Context, repo string) (*backend.Status, error)

	branches []backend.Branch
	commits  []backend.CommitInfo
	diffs    map[string]string
	files    []backend.FileChange
	repos    []backend.Repository
	remote   *backend.RemoteRepository
	remotes  []string // URLs passed to SetRemote, in order
	messages []string // messages passed to Commit
	dirty    bool
	merging  bool
	config   map[string]string // global git config
}

// gate blocks a backend call until released.
type gate struct {
	entered  chan struct{}
	release  chan struct{}
	once     sync.Once
	released sync.Once
}

func (g *gate) Release() { g.released.Do(func() { close(g.release) }) }

func newFake(t *testing.T) *fakeBackend {
	return &fakeBackend{
		WorkspaceFile: backend.NewWorkspaceFile(filepath.Join(t.TempDir(), "workspaces.json")),
		errs:          map[string]error{},
		gates:         map[string]*gate{},
		statuses:      map[string]*backend.Status{},
		diffs:         map[string]string{},
		config:        map[string]string{},
		remote: &backend.RemoteRepository{
			Name:     "demo",
			FullName: "ada/demo",
			CloneURL: "https://github.com/ada/demo.git",
		},
	}
}

// block makes the next calls to op wait until the returned gate is released.
func (f *fakeBackend) block(t *testing.T, op string) *gate {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[op] = g
	f.mu.Unlock()
	t.Cleanup(g.Release)
	return g
}

func (f *fakeBackend) fail(op string, err error) {
	f.mu.Lock()
	f.errs[op] = err
	f.mu.Unlock()
}

func (f *fakeBackend) setStatus(repo string, st *backend.Status) {
	f.mu.Lock()
	f.statuses[repo] = st
	f.mu.Unlock()
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) called(op string) int {
	n := 0
	for _, c := range f.callLog() {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) call(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	g := f.gates[op]
	err := f.errs[op]
	f.mu.Unlock()

	if g != nil {
		g.once.Do(func() { close(g.entered) })
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeBackend) Status(ctx context.Context, repo string) (*backend.Status, error) {
	if err := f.call(ctx, "status"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	fn := f.statusFn
	st := f.statuses[repo]
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, repo)
	}
	if st == nil {
		return &backend.Status{Branch: "main", IsClean: true}, nil
	}
	cp := *st
	return &cp, nil
}

func (f *fakeBackend) Branches(ctx context.Context, repo string) ([]backend.Branch, error) {
	if err := f.call(ctx, "branches"); err != nil {
		return nil, err
	}
	return f.branches, nil
}

func (f *fakeBackend) History(ctx context.Context, repo string, limit int) ([]backend.CommitInfo, error) {
	if err := f.call(ctx, "history"); err != nil {
		return nil, err
	}
	return f.commits, nil
}

func (f *fakeBackend) FileDiff(ctx context.Context, repo, file string) (string, error) {
	if err := f.call(ctx, "diff"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.diffs[file], nil
}

func (f *fakeBackend) CommitFiles(ctx context.Context, repo, hash string) ([]backend.FileChange, error) {
	if err := f.call(ctx, "commit-files"); err != nil {
		return nil, err
	}
	return f.files, nil
}

func (f *fakeBackend) CommitFileDiff(ctx context.Context, repo, hash, file string) (string, error) {
	if err := f.call(ctx, "commit-diff"); err != nil {
		return "", err
	}
	return hash + ":" + file, nil
}

func (f *fakeBackend) Fetch(ctx context.Context, repo string) error { return f.call(ctx, "fetch") }
func (f *fakeBackend) Pull(ctx context.Context, repo string) error  { return f.call(ctx, "pull") }
func (f *fakeBackend) Push(ctx context.Context, repo string) error  { return f.call(ctx, "push") }
func (f *fakeBackend) PushInitial(ctx context.Context, repo string) error {
	return f.call(ctx, "push-initial")
}

func (f *fakeBackend) Commit(ctx context.Context, repo, message string) error {
	if err := f.call(ctx, "commit"); err != nil {
		return err
	}
	f.mu.Lock()
	f.messages = append(f.messages, message)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) Checkout(ctx context.Context, repo, branch string) error {
	return f.call(ctx, "checkout")
}
func (f *fakeBackend) CreateBranch(ctx context.Context, repo, branch string) error {
	return f.call(ctx, "create-branch")
}
func (f *fakeBackend) CreateBranchFromCommit(ctx context.Context, repo, branch, hash string) error {
	return f.call(ctx, "create-branch-from-commit")
}
func (f *fakeBackend) CheckoutCommit(ctx context.Context, repo, hash string) error {
	return f.call(ctx, "checkout-commit")
}
func (f *fakeBackend) UndoCommit(ctx context.Context, repo string) error {
	return f.call(ctx, "undo-commit")
}
func (f *fakeBackend) ResolveConflict(ctx context.Context, repo, file string, res backend.Resolution) error {
	return f.call(ctx, "resolve")
}
func (f *fakeBackend) Discard(ctx context.Context, repo, file string) error {
	return f.call(ctx, "discard")
}
func (f *fakeBackend) AddToGitignore(ctx context.Context, repo, pattern string) error {
	return f.call(ctx, "gitignore")
}
func (f *fakeBackend) Stage(ctx context.Context, repo, file string) error {
	return f.call(ctx, "stage")
}
func (f *fakeBackend) StageAll(ctx context.Context, repo string) error {
	return f.call(ctx, "stage-all")
}
func (f *fakeBackend) Unstage(ctx context.Context, repo, file string) error {
	return f.call(ctx, "unstage")
}
func (f *fakeBackend) ResetToCommit(ctx context.Context, repo, hash string) error {
	return f.call(ctx, "reset")
}
func (f *fakeBackend) RevertCommit(ctx context.Context, repo, hash string) error {
	return f.call(ctx, "revert")
}
func (f *fakeBackend) CherryPick(ctx context.Context, repo, hash string) error {
	return f.call(ctx, "cherry-pick")
}

func (f *fakeBackend) MergeInProgress(ctx context.Context, repo string) (bool, error) {
	if err := f.call(ctx, "merge-state"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.merging, nil
}
func (f *fakeBackend) ContinueMerge(ctx context.Context, repo string) error {
	return f.call(ctx, "continue-merge")
}
func (f *fakeBackend) AbortMerge(ctx context.Context, repo string) error {
	return f.call(ctx, "abort-merge")
}

func (f *fakeBackend) Init(ctx context.Context, dir string) error { return f.call(ctx, "init") }
func (f *fakeBackend) Clone(ctx context.Context, url, dest string) error {
	return f.call(ctx, "clone")
}

func (f *fakeBackend) SetRemote(ctx context.Context, repo, name, url string) error {
	if err := f.call(ctx, "set-remote"); err != nil {
		return err
	}
	f.mu.Lock()
	f.remotes = append(f.remotes, url)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) HasChanges(ctx context.Context, repo string) (bool, error) {
	if err := f.call(ctx, "has-changes"); err != nil {
		return false, err
	}
	return f.dirty, nil
}

func (f *fakeBackend) WriteTemplates(ctx context.Context, repo string, opts backend.TemplateOptions) error {
	return f.call(ctx, "templates")
}

func (f *fakeBackend) ScanRepositories(ctx context.Context, root string) ([]backend.Repository, error) {
	if err := f.call(ctx, "scan"); err != nil {
		return nil, err
	}
	return f.repos, nil
}

func (f *fakeBackend) RepositoryInfo(ctx context.Context, path string) (backend.Repository, error) {
	if err := f.call(ctx, "repository-info"); err != nil {
		return backend.Repository{}, err
	}
	return backend.Repository{Path: path, Name: filepath.Base(path)}, nil
}

func (f *fakeBackend) CreateRemoteRepository(ctx context.Context, opts backend.CreateRemoteOptions) (*backend.RemoteRepository, error) {
	if err := f.call(ctx, "create-remote"); err != nil {
		return nil, err
	}
	return f.remote, nil
}

var _ backend.Backend = (*fakeBackend)(nil)

// memTokens is an in-memory TokenStore.
type memTokens struct {
	token string
}

func (m *memTokens) GitHubToken() (string, error)      { return m.token, nil }
func (m *memTokens) SetGitHubToken(token string) error { m.token = token; return nil }

func (f *fakeBackend) setStatusFn(fn func(ctx context.Context, repo string) (*backend.Status, error)) {
	f.mu.Lock()
	f.statusFn = fn
	f.mu.Unlock()
}

func (f *fakeBackend) GlobalConfig(ctx context.Context, key string) (string, error) {
	if err := f.call(ctx, "config-get"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config[key], nil
}

func (f *fakeBackend) SetGlobalConfig(ctx context.Context, key, value string) error {
	if err := f.call(ctx, "config-set"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config[key] = value
	return nil
}

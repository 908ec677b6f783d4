// Package backend is the boundary between the orchestration store and the
// processes that actually touch repositories, the filesystem and the network.
//
// The default implementation shells out to the git executable, keeps
// workspaces in a JSON file and talks to the GitHub REST API. Callers only
// depend on the interfaces, so tests substitute in-memory fakes.
package backend

import (
	"context"
	"log/slog"
	"net/http"
)

// Git performs repository operations. Every method addresses a repository by
// its absolute path.
type Git interface {
	Status(ctx context.Context, repo string) (*Status, error)
	Branches(ctx context.Context, repo string) ([]Branch, error)
	History(ctx context.Context, repo string, limit int) ([]CommitInfo, error)
	FileDiff(ctx context.Context, repo, file string) (string, error)
	CommitFiles(ctx context.Context, repo, hash string) ([]FileChange, error)
	CommitFileDiff(ctx context.Context, repo, hash, file string) (string, error)

	Fetch(ctx context.Context, repo string) error
	Pull(ctx context.Context, repo string) error
	Push(ctx context.Context, repo string) error
	PushInitial(ctx context.Context, repo string) error
	Commit(ctx context.Context, repo, message string) error
	Checkout(ctx context.Context, repo, branch string) error
	CreateBranch(ctx context.Context, repo, branch string) error
	CreateBranchFromCommit(ctx context.Context, repo, branch, hash string) error
	CheckoutCommit(ctx context.Context, repo, hash string) error
	UndoCommit(ctx context.Context, repo string) error
	ResolveConflict(ctx context.Context, repo, file string, res Resolution) error
	Discard(ctx context.Context, repo, file string) error
	AddToGitignore(ctx context.Context, repo, pattern string) error
	Stage(ctx context.Context, repo, file string) error
	StageAll(ctx context.Context, repo string) error
	Unstage(ctx context.Context, repo, file string) error
	ResetToCommit(ctx context.Context, repo, hash string) error
	RevertCommit(ctx context.Context, repo, hash string) error
	CherryPick(ctx context.Context, repo, hash string) error

	MergeInProgress(ctx context.Context, repo string) (bool, error)
	ContinueMerge(ctx context.Context, repo string) error
	AbortMerge(ctx context.Context, repo string) error

	Init(ctx context.Context, dir string) error
	Clone(ctx context.Context, url, dest string) error
	SetRemote(ctx context.Context, repo, name, url string) error
	HasChanges(ctx context.Context, repo string) (bool, error)
	WriteTemplates(ctx context.Context, repo string, opts TemplateOptions) error

	GlobalConfig(ctx context.Context, key string) (string, error)
	SetGlobalConfig(ctx context.Context, key, value string) error
}

// Scanner discovers repositories on disk.
type Scanner interface {
	ScanRepositories(ctx context.Context, root string) ([]Repository, error)
	RepositoryInfo(ctx context.Context, path string) (Repository, error)
}

// Workspaces persists workspace groupings.
type Workspaces interface {
	Workspaces(ctx context.Context) ([]Workspace, error)
	CreateWorkspace(ctx context.Context, name string) (Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error
	AddRepositoryToWorkspace(ctx context.Context, id, repo string) error
	RemoveRepositoryFromWorkspace(ctx context.Context, id, repo string) error
}

// Hosting creates repositories on a remote hosting service.
type Hosting interface {
	CreateRemoteRepository(ctx context.Context, opts CreateRemoteOptions) (*RemoteRepository, error)
}

// Backend is everything the orchestration store calls.
type Backend interface {
	Git
	Scanner
	Workspaces
	Hosting
}

// Local is the production Backend: git CLI, filesystem scanner, JSON
// workspace file and the GitHub API.
type Local struct {
	*CLI
	*DirScanner
	*WorkspaceFile
	*GitHub
}

var _ Backend = (*Local)(nil)

// LocalOptions configures NewLocal.
type LocalOptions struct {
	WorkspaceFile string   // Path of the workspace JSON document
	ScanDepth     int      // 0 means DefaultScanDepth
	SkipPatterns  []string // nil means DefaultSkipPatterns
	GitHubAPI     string
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// NewLocal builds the production backend.
func NewLocal(opts LocalOptions) *Local {
	cli := NewCLI(opts.Logger)
	return &Local{
		CLI:           cli,
		DirScanner:    NewDirScanner(cli, opts.ScanDepth, opts.SkipPatterns, opts.Logger),
		WorkspaceFile: NewWorkspaceFile(opts.WorkspaceFile),
		GitHub:        NewGitHub(opts.GitHubAPI, opts.HTTPClient),
	}
}

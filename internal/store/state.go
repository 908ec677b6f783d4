package store

import (
	"github.com/marcus/pinax/internal/backend"
)

// Workspace view identifiers that are not stored workspaces.
const (
	WorkspaceAll           = "all"
	WorkspaceUncategorized = "uncategorized"
)

// Focus identifies the pane receiving navigation keys.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusMain
	FocusDiff
	FocusPalette
)

func (f Focus) String() string {
	switch f {
	case FocusSidebar:
		return "sidebar"
	case FocusMain:
		return "main"
	case FocusDiff:
		return "diff"
	case FocusPalette:
		return "palette"
	}
	return "unknown"
}

// Failure is the single user-visible error.
type Failure struct {
	Kind    backend.Kind
	Op      string
	Message string
}

func (f *Failure) Error() string { return f.Message }

// State is everything the UI renders. Values returned by Store.Snapshot are
// copies; slices are shared with the store and must not be modified.
type State struct {
	Version uint64 // Increments on every change

	Workspaces          []backend.Workspace
	SelectedWorkspaceID string
	Repositories        []backend.Repository
	SelectedRepository  string

	Status          *backend.Status
	Branches        []backend.Branch
	Commits         []backend.CommitInfo
	MergeInProgress bool

	SelectedFile     string
	SelectedFileDiff string
	SelectedCommit   string // Non-empty selects commit mode
	CommitFiles      []backend.FileChange

	Identity Identity // Global git author

	IsLoading  bool
	IsFetching bool
	IsPulling  bool
	IsPushing  bool

	Err    *Failure
	Notice string

	CommandPaletteOpen bool
	Focus              Focus
}

// Busy reports whether any foreground operation is in flight.
func (s State) Busy() bool {
	return s.IsLoading || s.IsFetching || s.IsPulling || s.IsPushing
}

// NeedsAuth reports whether the current error asks the user to fix credentials.
func (s State) NeedsAuth() bool {
	return s.Err != nil && s.Err.Kind == backend.KindAuth
}

// CommitMode reports whether file selection refers to a historical commit.
func (s State) CommitMode() bool {
	return s.SelectedCommit != ""
}

// Repository returns the handle for path.
func (s State) Repository(path string) (backend.Repository, bool) {
	for _, r := range s.Repositories {
		if r.Path == path {
			return r, true
		}
	}
	return backend.Repository{}, false
}

// Workspace returns the workspace with id.
func (s State) Workspace(id string) (backend.Workspace, bool) {
	for _, w := range s.Workspaces {
		if w.ID == id {
			return w, true
		}
	}
	return backend.Workspace{}, false
}

// VisibleRepositories returns the repositories shown for the selected
// workspace view. "uncategorized" lists repositories in no workspace.
func (s State) VisibleRepositories() []backend.Repository {
	switch s.SelectedWorkspaceID {
	case WorkspaceAll, "":
		return s.Repositories
	case WorkspaceUncategorized:
		var out []backend.Repository
		for _, r := range s.Repositories {
			if !s.inAnyWorkspace(r.Path) {
				out = append(out, r)
			}
		}
		return out
	}
	ws, ok := s.Workspace(s.SelectedWorkspaceID)
	if !ok {
		return nil
	}
	var out []backend.Repository
	for _, r := range s.Repositories {
		if ws.Contains(r.Path) {
			out = append(out, r)
		}
	}
	return out
}

func (s State) inAnyWorkspace(path string) bool {
	for _, w := range s.Workspaces {
		if w.Contains(path) {
			return true
		}
	}
	return false
}

// CurrentBranch returns the checked-out branch name from the status snapshot.
func (s State) CurrentBranch() string {
	if s.Status == nil {
		return ""
	}
	return s.Status.Branch
}

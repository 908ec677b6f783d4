package backend

import "time"

// Repository identifies a local git repository. Path is the only stable identity.
type Repository struct {
	Path       string      `json:"path"`
	Name       string      `json:"name"`
	RemoteURL  string      `json:"remote_url,omitempty"`
	LastCommit *CommitInfo `json:"last_commit,omitempty"`
}

// CommitInfo describes a single commit.
type CommitInfo struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"short_hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// FileStatus is the kind of change recorded for a file.
type FileStatus string

const (
	StatusAdded      FileStatus = "added"
	StatusModified   FileStatus = "modified"
	StatusDeleted    FileStatus = "deleted"
	StatusRenamed    FileStatus = "renamed"
	StatusCopied     FileStatus = "copied"
	StatusConflicted FileStatus = "conflicted"
)

// FileChange is a path together with its change kind.
type FileChange struct {
	Path    string     `json:"path"`
	OldPath string     `json:"old_path,omitempty"` // For renames and copies
	Status  FileStatus `json:"status"`
}

// Status is a point-in-time snapshot of a repository's working tree.
// A Status is never patched: every refresh produces a new value.
type Status struct {
	Branch    string       `json:"branch"`
	IsClean   bool         `json:"is_clean"`
	Ahead     int          `json:"ahead"`
	Behind    int          `json:"behind"`
	Staged    []FileChange `json:"staged"`
	Unstaged  []FileChange `json:"unstaged"`
	Untracked []string     `json:"untracked"`
	Conflicts []FileChange `json:"conflicts"`

	// Fingerprint is a hash over all fields above, used to detect identical snapshots.
	Fingerprint uint64 `json:"-"`
}

// HasPendingChange reports whether path is listed as staged, unstaged,
// untracked or conflicted.
func (s *Status) HasPendingChange(path string) bool {
	if s == nil {
		return false
	}
	for _, list := range [][]FileChange{s.Staged, s.Unstaged, s.Conflicts} {
		for _, f := range list {
			if f.Path == path {
				return true
			}
		}
	}
	for _, p := range s.Untracked {
		if p == path {
			return true
		}
	}
	return false
}

// Branch describes a local or remote-tracking branch.
type Branch struct {
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
	IsRemote  bool   `json:"is_remote"`
	Upstream  string `json:"upstream,omitempty"`
}

// Workspace is a named grouping of repository paths.
type Workspace struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Repositories []string  `json:"repositories"`
	Color        string    `json:"color,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contains reports whether the workspace lists path.
func (w Workspace) Contains(path string) bool {
	for _, p := range w.Repositories {
		if p == path {
			return true
		}
	}
	return false
}

// RemoteRepository is a repository created on a hosting service.
type RemoteRepository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	SSHURL   string `json:"ssh_url"`
	CloneURL string `json:"clone_url"`
}

// CreateRemoteOptions are the parameters for creating a hosted repository.
type CreateRemoteOptions struct {
	Token       string
	Name        string
	Description string
	Private     bool
}

// Resolution picks a side when resolving a conflicted file.
type Resolution string

const (
	ResolveOurs   Resolution = "ours"
	ResolveTheirs Resolution = "theirs"
)

// TemplateOptions selects which starter files to generate in a new repository.
type TemplateOptions struct {
	Readme      bool
	Description string
	Gitignore   string // "go", "node", "python" or "" for none
	License     string // "mit" or "" for none
	Author      string
}

// Empty reports whether no template file was requested.
func (o TemplateOptions) Empty() bool {
	return !o.Readme && o.Gitignore == "" && o.License == ""
}

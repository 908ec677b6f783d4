package backend

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const workspaceFileVersion = 1

var workspaceColors = []string{"#7aa2f7", "#9ece6a", "#e0af68", "#f7768e", "#bb9af7", "#7dcfff"}

type workspaceDoc struct {
	Version    int         `json:"version"`
	Workspaces []Workspace `json:"workspaces"`
}

// WorkspaceFile persists workspaces as a JSON document.
type WorkspaceFile struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewWorkspaceFile stores workspaces at path. The file is created on first write.
func NewWorkspaceFile(path string) *WorkspaceFile {
	return &WorkspaceFile{path: path, now: time.Now}
}

func (f *WorkspaceFile) load() (*workspaceDoc, error) {
	doc := &workspaceDoc{Version: workspaceFileVersion, Workspaces: []Workspace{}}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, &Error{Kind: KindUnknown, Op: "workspaces", Message: err.Error(), Err: err}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, &Error{Kind: KindValidation, Op: "workspaces", Message: "corrupt workspace file: " + err.Error(), Err: err}
	}
	if doc.Workspaces == nil {
		doc.Workspaces = []Workspace{}
	}
	return doc, nil
}

func (f *WorkspaceFile) save(doc *workspaceDoc) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return &Error{Kind: KindUnknown, Op: "workspaces", Message: err.Error(), Err: err}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &Error{Kind: KindUnknown, Op: "workspaces", Message: err.Error(), Err: err}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &Error{Kind: KindUnknown, Op: "workspaces", Message: err.Error(), Err: err}
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return &Error{Kind: KindUnknown, Op: "workspaces", Message: err.Error(), Err: err}
	}
	return nil
}

// update loads the document, applies fn and saves the result.
func (f *WorkspaceFile) update(fn func(doc *workspaceDoc) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return f.save(doc)
}

// Workspaces returns all workspaces in creation order.
func (f *WorkspaceFile) Workspaces(_ context.Context) ([]Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return doc.Workspaces, nil
}

// CreateWorkspace adds an empty workspace named name.
func (f *WorkspaceFile) CreateWorkspace(_ context.Context, name string) (Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Workspace{}, Errorf(KindValidation, "create-workspace", "workspace name is required")
	}
	var ws Workspace
	err := f.update(func(doc *workspaceDoc) error {
		ws = Workspace{
			ID:           uuid.NewString(),
			Name:         name,
			Repositories: []string{},
			Color:        workspaceColors[len(doc.Workspaces)%len(workspaceColors)],
			CreatedAt:    f.now().UTC(),
		}
		doc.Workspaces = append(doc.Workspaces, ws)
		return nil
	})
	return ws, err
}

// DeleteWorkspace removes the workspace with id.
func (f *WorkspaceFile) DeleteWorkspace(_ context.Context, id string) error {
	return f.update(func(doc *workspaceDoc) error {
		i := indexOfWorkspace(doc.Workspaces, id)
		if i < 0 {
			return Errorf(KindNotFound, "delete-workspace", "workspace %s not found", id)
		}
		doc.Workspaces = append(doc.Workspaces[:i], doc.Workspaces[i+1:]...)
		return nil
	})
}

// AddRepositoryToWorkspace lists repo in the workspace. Adding twice is a no-op.
func (f *WorkspaceFile) AddRepositoryToWorkspace(_ context.Context, id, repo string) error {
	return f.update(func(doc *workspaceDoc) error {
		i := indexOfWorkspace(doc.Workspaces, id)
		if i < 0 {
			return Errorf(KindNotFound, "add-to-workspace", "workspace %s not found", id)
		}
		if !doc.Workspaces[i].Contains(repo) {
			doc.Workspaces[i].Repositories = append(doc.Workspaces[i].Repositories, repo)
		}
		return nil
	})
}

// RemoveRepositoryFromWorkspace unlists repo from the workspace.
func (f *WorkspaceFile) RemoveRepositoryFromWorkspace(_ context.Context, id, repo string) error {
	return f.update(func(doc *workspaceDoc) error {
		i := indexOfWorkspace(doc.Workspaces, id)
		if i < 0 {
			return Errorf(KindNotFound, "remove-from-workspace", "workspace %s not found", id)
		}
		kept := doc.Workspaces[i].Repositories[:0]
		for _, p := range doc.Workspaces[i].Repositories {
			if p != repo {
				kept = append(kept, p)
			}
		}
		doc.Workspaces[i].Repositories = kept
		return nil
	})
}

func indexOfWorkspace(list []Workspace, id string) int {
	for i, w := range list {
		if w.ID == id {
			return i
		}
	}
	return -1
}

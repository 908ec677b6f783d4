package store

import (
	"context"
	"sort"
	"strings"

	"github.com/marcus/pinax/internal/backend"
)

// LoadWorkspaces replaces the workspace list from the backend. On failure the
// list is emptied and the error recorded.
func (s *Store) LoadWorkspaces(ctx context.Context) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	list, err := s.backend.Workspaces(ctx)
	if err != nil {
		s.update(func(st *State) { st.Workspaces = nil })
		s.failGlobal("workspaces", "Failed to load workspaces", err)
		return err
	}
	s.update(func(st *State) { st.Workspaces = list })
	return nil
}

// CreateWorkspace creates a workspace. A blank name is ignored.
func (s *Store) CreateWorkspace(ctx context.Context, name string) (backend.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return backend.Workspace{}, nil
	}
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	ws, err := s.backend.CreateWorkspace(ctx, name)
	if err != nil {
		s.failGlobal("create-workspace", "Failed to create workspace", err)
		return backend.Workspace{}, err
	}
	return ws, s.reloadWorkspaces(ctx)
}

// DeleteWorkspace deletes a workspace. Deleting the selected workspace falls
// back to the uncategorized view.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	if err := s.backend.DeleteWorkspace(ctx, id); err != nil {
		s.failGlobal("delete-workspace", "Failed to delete workspace", err)
		return err
	}
	s.update(func(st *State) {
		if st.SelectedWorkspaceID == id {
			st.SelectedWorkspaceID = WorkspaceUncategorized
		}
	})
	return s.reloadWorkspaces(ctx)
}

// AddRepositoryToWorkspace lists path in workspace id.
func (s *Store) AddRepositoryToWorkspace(ctx context.Context, id, path string) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	if err := s.backend.AddRepositoryToWorkspace(ctx, id, path); err != nil {
		s.failGlobal("add-to-workspace", "Failed to add repository to workspace", err)
		return err
	}
	return s.reloadWorkspaces(ctx)
}

// RemoveRepositoryFromWorkspace unlists path from workspace id.
func (s *Store) RemoveRepositoryFromWorkspace(ctx context.Context, id, path string) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	if err := s.backend.RemoveRepositoryFromWorkspace(ctx, id, path); err != nil {
		s.failGlobal("remove-from-workspace", "Failed to remove repository from workspace", err)
		return err
	}
	return s.reloadWorkspaces(ctx)
}

func (s *Store) reloadWorkspaces(ctx context.Context) error {
	list, err := s.backend.Workspaces(ctx)
	if err != nil {
		s.failGlobal("workspaces", "Failed to load workspaces", err)
		return err
	}
	s.update(func(st *State) { st.Workspaces = list })
	return nil
}

// SelectWorkspace switches the repository list view to id, WorkspaceAll or
// WorkspaceUncategorized.
func (s *Store) SelectWorkspace(id string) {
	if id == "" {
		id = WorkspaceUncategorized
	}
	s.update(func(st *State) { st.SelectedWorkspaceID = id })
}

// ScanRepositories replaces the repository list with everything under root.
// On failure the list is emptied and the error recorded.
func (s *Store) ScanRepositories(ctx context.Context, root string) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	repos, err := s.backend.ScanRepositories(ctx, root)
	if err != nil {
		s.update(func(st *State) { st.Repositories = nil })
		s.failGlobal("scan", "Failed to scan for repositories", err)
		return err
	}
	s.update(func(st *State) { st.Repositories = dedupeRepositories(repos) })
	return nil
}

// ScanRoots scans each root and merges the results into one list.
func (s *Store) ScanRoots(ctx context.Context, roots []string) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)

	var all []backend.Repository
	var firstErr error
	for _, root := range roots {
		repos, err := s.backend.ScanRepositories(ctx, root)
		if err != nil {
			s.failGlobal("scan", "Failed to scan "+root, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		all = append(all, repos...)
	}
	all = dedupeRepositories(all)
	sort.SliceStable(all, func(i, j int) bool {
		return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name)
	})
	s.update(func(st *State) { st.Repositories = all })
	return firstErr
}

// AddRepository registers an existing repository at path. A path already in
// the list is left as is.
func (s *Store) AddRepository(ctx context.Context, path string) error {
	s.beginGlobal(busyLoading)
	defer s.end(busyLoading)
	return s.appendRepository(ctx, path)
}

func (s *Store) appendRepository(ctx context.Context, path string) error {
	if _, ok := s.Snapshot().Repository(path); ok {
		return nil
	}
	repo, err := s.backend.RepositoryInfo(ctx, path)
	if err != nil {
		s.failGlobal("repository-info", "Failed to read repository", err)
		return err
	}
	s.update(func(st *State) {
		if _, ok := st.Repository(repo.Path); ok {
			return
		}
		list := make([]backend.Repository, 0, len(st.Repositories)+1)
		list = append(list, st.Repositories...)
		st.Repositories = append(list, repo)
	})
	return nil
}

func dedupeRepositories(in []backend.Repository) []backend.Repository {
	seen := make(map[string]bool, len(in))
	out := make([]backend.Repository, 0, len(in))
	for _, r := range in {
		if seen[r.Path] {
			continue
		}
		seen[r.Path] = true
		out = append(out, r)
	}
	return out
}

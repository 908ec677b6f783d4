package store

import (
	"context"
)

// SelectRepository makes path the selected repository, clears every
// selection scoped to the previous one and loads status, branches, history
// and merge state. An empty path deselects and clears repository state.
func (s *Store) SelectRepository(ctx context.Context, path string) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.state.SelectedRepository = path
	clearSelection(&s.state)
	if path == "" {
		s.state.Status = nil
		s.state.Branches = nil
		s.state.Commits = nil
		s.state.MergeInProgress = false
	} else {
		s.loading++
	}
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)

	if path == "" {
		return nil
	}
	defer s.end(busyLoading)

	if err := s.reload(ctx, path, epoch, refreshBranches|refreshHistory); err != nil {
		s.fail(epoch, "select", "Failed to load repository", err)
		return err
	}
	return nil
}

// SelectFile selects a working-tree file and loads its diff. Selecting a
// file leaves commit mode. An empty path clears the file selection.
func (s *Store) SelectFile(ctx context.Context, path string) error {
	s.mu.Lock()
	repo, epoch := s.state.SelectedRepository, s.epoch
	s.state.SelectedFile = path
	s.state.SelectedFileDiff = ""
	s.state.SelectedCommit = ""
	s.state.CommitFiles = nil
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)

	if repo == "" || path == "" {
		return nil
	}
	diff, err := s.backend.FileDiff(ctx, repo, path)
	if err != nil {
		s.fail(epoch, "diff", "Failed to load file diff", err)
		return err
	}
	s.applyIf(epoch, func(st *State) {
		if st.SelectedFile == path && !st.CommitMode() {
			st.SelectedFileDiff = diff
		}
	})
	return nil
}

// SelectCommit enters commit mode for hash and loads the files it changed.
// An empty hash returns to working-tree mode.
func (s *Store) SelectCommit(ctx context.Context, hash string) error {
	s.mu.Lock()
	repo, epoch := s.state.SelectedRepository, s.epoch
	clearSelection(&s.state)
	s.state.SelectedCommit = hash
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)

	if repo == "" || hash == "" {
		return nil
	}
	files, err := s.backend.CommitFiles(ctx, repo, hash)
	if err != nil {
		s.fail(epoch, "commit-files", "Failed to load commit", err)
		return err
	}
	s.applyIf(epoch, func(st *State) {
		if st.SelectedCommit == hash {
			st.CommitFiles = files
		}
	})
	return nil
}

// SelectCommitFile selects a file of the selected commit and loads the diff
// that commit introduced. It does nothing outside commit mode.
func (s *Store) SelectCommitFile(ctx context.Context, path string) error {
	s.mu.Lock()
	repo, epoch, hash := s.state.SelectedRepository, s.epoch, s.state.SelectedCommit
	if hash == "" {
		s.mu.Unlock()
		return nil
	}
	s.state.SelectedFile = path
	s.state.SelectedFileDiff = ""
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)

	if repo == "" || path == "" {
		return nil
	}
	diff, err := s.backend.CommitFileDiff(ctx, repo, hash, path)
	if err != nil {
		s.fail(epoch, "commit-diff", "Failed to load file diff", err)
		return err
	}
	s.applyIf(epoch, func(st *State) {
		if st.SelectedCommit == hash && st.SelectedFile == path {
			st.SelectedFileDiff = diff
		}
	})
	return nil
}

// ClearSelection drops the file and commit selection.
func (s *Store) ClearSelection() {
	s.update(clearSelection)
}

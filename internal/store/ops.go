package store

import (
	"context"
	"strings"

	"github.com/marcus/pinax/internal/backend"
)

// refresh lists what an operation makes stale beyond the status snapshot.
type refresh uint8

const (
	refreshBranches refresh = 1 << iota
	refreshHistory
	resetSelection // Clear file and commit selection once the call succeeds
)

const reloadLabel = "Failed to refresh status"

type operation struct {
	op      string // Backend op name, e.g. "push"
	label   string // Prefix of the user-visible failure, e.g. "Push failed"
	busy    busyKind
	refresh refresh
	call    func(ctx context.Context, repo string) error
}

// mutate runs one operation against the selected repository. The error is
// also recorded in State.Err; callers that only render state may ignore it.
func (s *Store) mutate(ctx context.Context, o operation) error {
	repo, epoch, ok := s.begin(o.busy, true)
	if !ok {
		return nil
	}
	defer s.end(o.busy)

	if err := o.call(ctx, repo); err != nil {
		s.fail(epoch, o.op, o.label, err)
		return err
	}
	if o.refresh&resetSelection != 0 {
		s.applyIf(epoch, clearSelection)
	}
	if err := s.reload(ctx, repo, epoch, o.refresh); err != nil {
		s.fail(epoch, "status", reloadLabel, err)
		return err
	}
	return nil
}

// reload fetches the status snapshot, merge state and whatever else r names.
func (s *Store) reload(ctx context.Context, repo string, epoch uint64, r refresh) error {
	if err := s.fetchStatus(ctx, repo, epoch); err != nil {
		return err
	}
	if err := s.loadMergeState(ctx, repo, epoch); err != nil {
		return err
	}
	if r&refreshBranches != 0 {
		if err := s.loadBranches(ctx, repo, epoch); err != nil {
			return err
		}
	}
	if r&refreshHistory != 0 {
		if err := s.loadHistory(ctx, repo, epoch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadBranches(ctx context.Context, repo string, epoch uint64) error {
	all, err := s.backend.Branches(ctx, repo)
	if err != nil {
		return err
	}
	local := make([]backend.Branch, 0, len(all))
	for _, b := range all {
		if b.IsRemote || b.Name == "HEAD" {
			continue
		}
		local = append(local, b)
	}
	s.applyIf(epoch, func(st *State) { st.Branches = local })
	return nil
}

func (s *Store) loadHistory(ctx context.Context, repo string, epoch uint64) error {
	commits, err := s.backend.History(ctx, repo, s.historyLimit)
	if err != nil {
		return err
	}
	s.applyIf(epoch, func(st *State) { st.Commits = commits })
	return nil
}

func (s *Store) loadMergeState(ctx context.Context, repo string, epoch uint64) error {
	merging, err := s.backend.MergeInProgress(ctx, repo)
	if err != nil {
		return err
	}
	s.applyIf(epoch, func(st *State) { st.MergeInProgress = merging })
	return nil
}

func clearSelection(st *State) {
	st.SelectedFile = ""
	st.SelectedFileDiff = ""
	st.SelectedCommit = ""
	st.CommitFiles = nil
}

// Fetch updates remote-tracking refs of the selected repository.
func (s *Store) Fetch(ctx context.Context) error {
	return s.mutate(ctx, operation{
		op: "fetch", label: "Fetch failed", busy: busyFetching, refresh: refreshBranches,
		call: s.backend.Fetch,
	})
}

// Pull merges upstream changes into the current branch.
func (s *Store) Pull(ctx context.Context) error {
	return s.mutate(ctx, operation{
		op: "pull", label: "Pull failed", busy: busyPulling, refresh: refreshBranches | refreshHistory,
		call: s.backend.Pull,
	})
}

// Push publishes the current branch.
func (s *Store) Push(ctx context.Context) error {
	return s.mutate(ctx, operation{
		op: "push", label: "Push failed", busy: busyPushing, refresh: refreshBranches,
		call: s.backend.Push,
	})
}

// Commit records the staged changes. A blank message is ignored without
// calling the backend.
func (s *Store) Commit(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	return s.mutate(ctx, operation{
		op: "commit", label: "Commit failed", refresh: refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.Commit(ctx, repo, message)
		},
	})
}

// Checkout switches branches.
func (s *Store) Checkout(ctx context.Context, branch string) error {
	return s.mutate(ctx, operation{
		op: "checkout", label: "Checkout failed", refresh: resetSelection | refreshBranches | refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.Checkout(ctx, repo, branch)
		},
	})
}

// CreateBranch creates and switches to a new branch at HEAD.
func (s *Store) CreateBranch(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.mutate(ctx, operation{
		op: "create-branch", label: "Create branch failed", refresh: refreshBranches | refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.CreateBranch(ctx, repo, name)
		},
	})
}

// CreateBranchFromCommit creates and switches to a new branch at hash.
func (s *Store) CreateBranchFromCommit(ctx context.Context, name, hash string) error {
	name = strings.TrimSpace(name)
	if name == "" || hash == "" {
		return nil
	}
	return s.mutate(ctx, operation{
		op: "create-branch", label: "Create branch failed", refresh: resetSelection | refreshBranches | refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.CreateBranchFromCommit(ctx, repo, name, hash)
		},
	})
}

// CheckoutCommit detaches HEAD at hash.
func (s *Store) CheckoutCommit(ctx context.Context, hash string) error {
	return s.mutate(ctx, operation{
		op: "checkout-commit", label: "Checkout failed", refresh: resetSelection | refreshBranches | refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.CheckoutCommit(ctx, repo, hash)
		},
	})
}

// UndoCommit moves HEAD back one commit, keeping its changes staged.
func (s *Store) UndoCommit(ctx context.Context) error {
	return s.mutate(ctx, operation{
		op: "undo-commit", label: "Undo commit failed", refresh: refreshHistory,
		call: s.backend.UndoCommit,
	})
}

// ResolveConflict resolves file by taking one side.
func (s *Store) ResolveConflict(ctx context.Context, file string, res backend.Resolution) error {
	return s.mutate(ctx, operation{
		op: "resolve", label: "Resolve conflict failed",
		call: func(ctx context.Context, repo string) error {
			return s.backend.ResolveConflict(ctx, repo, file, res)
		},
	})
}

// ContinueMerge concludes a merge after its conflicts are resolved.
func (s *Store) ContinueMerge(ctx context.Context) error {
	return s.mutate(ctx, operation{
		op: "continue-merge", label: "Continue merge failed", refresh: refreshHistory,
		call: s.backend.ContinueMerge,
	})
}

// AbortMerge abandons the merge in progress.
func (s *Store) AbortMerge(ctx context.Context) error {
	return s.mutate(ctx, operation{
		op: "abort-merge", label: "Abort merge failed", refresh: refreshHistory,
		call: s.backend.AbortMerge,
	})
}

// Discard throws away all changes to file.
func (s *Store) Discard(ctx context.Context, file string) error {
	return s.mutate(ctx, operation{
		op: "discard", label: "Discard failed",
		call: func(ctx context.Context, repo string) error {
			return s.backend.Discard(ctx, repo, file)
		},
	})
}

// AddToGitignore appends pattern to the repository's .gitignore.
func (s *Store) AddToGitignore(ctx context.Context, pattern string) error {
	return s.mutate(ctx, operation{
		op: "gitignore", label: "Add to .gitignore failed",
		call: func(ctx context.Context, repo string) error {
			return s.backend.AddToGitignore(ctx, repo, pattern)
		},
	})
}

// Stage adds file to the index.
func (s *Store) Stage(ctx context.Context, file string) error {
	return s.mutate(ctx, operation{
		op: "stage", label: "Stage failed",
		call: func(ctx context.Context, repo string) error {
			return s.backend.Stage(ctx, repo, file)
		},
	})
}

// StageAll stages every change.
func (s *Store) StageAll(ctx context.Context) error {
	return s.mutate(ctx, operation{
		op: "stage", label: "Stage failed",
		call: s.backend.StageAll,
	})
}

// Unstage removes file from the index.
func (s *Store) Unstage(ctx context.Context, file string) error {
	return s.mutate(ctx, operation{
		op: "unstage", label: "Unstage failed",
		call: func(ctx context.Context, repo string) error {
			return s.backend.Unstage(ctx, repo, file)
		},
	})
}

// ResetToCommit hard-resets the current branch to hash.
func (s *Store) ResetToCommit(ctx context.Context, hash string) error {
	return s.mutate(ctx, operation{
		op: "reset", label: "Reset failed", refresh: resetSelection | refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.ResetToCommit(ctx, repo, hash)
		},
	})
}

// RevertCommit creates a commit undoing hash.
func (s *Store) RevertCommit(ctx context.Context, hash string) error {
	return s.mutate(ctx, operation{
		op: "revert", label: "Revert failed", refresh: refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.RevertCommit(ctx, repo, hash)
		},
	})
}

// CherryPick applies hash onto the current branch.
func (s *Store) CherryPick(ctx context.Context, hash string) error {
	return s.mutate(ctx, operation{
		op: "cherry-pick", label: "Cherry-pick failed", refresh: refreshHistory,
		call: func(ctx context.Context, repo string) error {
			return s.backend.CherryPick(ctx, repo, hash)
		},
	})
}

// RefreshStatus reloads the status snapshot in the foreground.
func (s *Store) RefreshStatus(ctx context.Context) error {
	repo, epoch, ok := s.begin(busyLoading, false)
	if !ok {
		return nil
	}
	defer s.end(busyLoading)
	if err := s.reload(ctx, repo, epoch, 0); err != nil {
		s.fail(epoch, "status", "Failed to refresh status", err)
		return err
	}
	return nil
}

// PollStatus silently replaces the status snapshot. It raises no busy flag
// and never records a failure; the error is returned for the caller to log.
func (s *Store) PollStatus(ctx context.Context) error {
	s.mu.Lock()
	repo, epoch := s.state.SelectedRepository, s.epoch
	s.mu.Unlock()
	if repo == "" {
		return nil
	}
	return s.fetchStatus(ctx, repo, epoch)
}

// LoadBranches reloads the local branch list.
func (s *Store) LoadBranches(ctx context.Context) error {
	repo, epoch, ok := s.begin(busyLoading, false)
	if !ok {
		return nil
	}
	defer s.end(busyLoading)
	if err := s.loadBranches(ctx, repo, epoch); err != nil {
		s.fail(epoch, "list-branches", "Failed to load branches", err)
		return err
	}
	return nil
}

// LoadHistory reloads the commit list.
func (s *Store) LoadHistory(ctx context.Context) error {
	repo, epoch, ok := s.begin(busyLoading, false)
	if !ok {
		return nil
	}
	defer s.end(busyLoading)
	if err := s.loadHistory(ctx, repo, epoch); err != nil {
		s.fail(epoch, "history", "Failed to load history", err)
		return err
	}
	return nil
}

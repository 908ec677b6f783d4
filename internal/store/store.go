// Package store is the single writable source of truth for repository state.
//
// Every Git operation follows one protocol: it reads the selected repository
// from state (returning immediately when none is selected), raises its busy
// flags, makes the backend call, refreshes the status snapshot and anything
// else the operation made stale, and lowers the flags on every path.
//
// Two tokens keep late results from landing in the wrong place. The selection
// epoch changes whenever a repository is selected; results carrying an older
// epoch are dropped. Status responses carry a generation taken when they were
// requested; a response is applied only if it is newer than the last applied
// one and not older than the start of the most recent foreground mutation, so
// a slow poll can never overwrite a mutation's own refresh.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/marcus/pinax/internal/backend"
)

// TokenStore persists the hosting token when the user opts in.
type TokenStore interface {
	GitHubToken() (string, error)
	SetGitHubToken(token string) error
}

// Store holds State and runs operations against a backend.
type Store struct {
	backend      backend.Backend
	tokens       TokenStore
	logger       *slog.Logger
	historyLimit int

	mu    sync.Mutex
	state State
	epoch uint64

	statusIssued  uint64 // Last generation handed out
	statusApplied uint64 // Generation of the status currently in state
	statusFloor   uint64 // Responses below this generation are dropped

	loading, fetching, pulling, pushing int

	subs   map[int]func(State)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithTokenStore enables saving hosting tokens.
func WithTokenStore(t TokenStore) Option {
	return func(s *Store) { s.tokens = t }
}

// WithHistoryLimit sets how many commits are loaded for the history list.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.historyLimit = n }
}

// New creates a store with empty state.
func New(b backend.Backend, opts ...Option) *Store {
	s := &Store{
		backend:      b,
		logger:       slog.Default(),
		historyLimit: backend.DefaultHistoryLimit,
		subs:         make(map[int]func(State)),
		state: State{
			SelectedWorkspaceID: WorkspaceUncategorized,
			Focus:               FocusSidebar,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectedRepository returns the selected repository path, or "".
func (s *Store) SelectedRepository() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedRepository
}

// Subscribe registers fn to receive the state after every change. fn runs
// outside the store lock, possibly on the goroutine that made the change.
// Deliveries from concurrent operations may arrive out of order; compare
// State.Version to discard older ones.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update applies fn under the lock and notifies subscribers.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)
}

// commitLocked refreshes derived flags, bumps the version and returns what
// subscribers need. Callers hold s.mu.
func (s *Store) commitLocked() (State, []func(State)) {
	s.state.IsLoading = s.loading > 0
	s.state.IsFetching = s.fetching > 0
	s.state.IsPulling = s.pulling > 0
	s.state.IsPushing = s.pushing > 0
	s.state.Version++

	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return s.state, subs
}

func notify(st State, subs []func(State)) {
	for _, fn := range subs {
		fn(st)
	}
}

// busyKind selects the dedicated flag raised alongside IsLoading.
type busyKind int

const (
	busyLoading busyKind = iota
	busyFetching
	busyPulling
	busyPushing
)

func (s *Store) counterLocked(k busyKind) *int {
	switch k {
	case busyFetching:
		return &s.fetching
	case busyPulling:
		return &s.pulling
	case busyPushing:
		return &s.pushing
	}
	return &s.loading
}

// begin raises busy flags for an operation on the selected repository.
// mutation marks a foreground change: status requested before it is dropped.
// ok is false when nothing is selected.
func (s *Store) begin(k busyKind, mutation bool) (repo string, epoch uint64, ok bool) {
	s.mu.Lock()
	repo = s.state.SelectedRepository
	if repo == "" {
		s.mu.Unlock()
		return "", 0, false
	}
	epoch = s.epoch
	s.raiseLocked(k)
	if mutation {
		s.statusFloor = s.statusIssued + 1
	}
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)
	return repo, epoch, true
}

// beginGlobal raises busy flags for an operation that needs no selection.
func (s *Store) beginGlobal(k busyKind) {
	s.update(func(*State) { s.raiseLocked(k) })
}

func (s *Store) raiseLocked(k busyKind) {
	s.loading++
	if k != busyLoading {
		*s.counterLocked(k)++
	}
}

// end lowers the flags raised by begin or beginGlobal.
func (s *Store) end(k busyKind) {
	s.update(func(*State) {
		s.loading--
		if k != busyLoading {
			*s.counterLocked(k)--
		}
	})
}

// currentLocked reports whether epoch is still the selection epoch.
func (s *Store) currentLocked(epoch uint64) bool {
	return s.epoch == epoch
}

// fail records err as the visible failure unless the selection has moved on.
func (s *Store) fail(epoch uint64, op, label string, err error) {
	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.logger.Debug("dropping stale failure", "op", op, "err", err)
		return
	}
	s.setFailureLocked(op, label, err)
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)
}

// failGlobal records err regardless of selection.
func (s *Store) failGlobal(op, label string, err error) {
	s.update(func(*State) { s.setFailureLocked(op, label, err) })
}

func (s *Store) setFailureLocked(op, label string, err error) {
	s.logger.Warn("operation failed", "op", op, "err", err)
	s.state.Err = &Failure{
		Kind:    backend.KindOf(err),
		Op:      op,
		Message: label + ": " + errorMessage(err),
	}
}

// errorMessage prefers the backend's detail text over the "op: " prefix.
func errorMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return err.Error()
}

// applyIf runs fn under the lock when epoch is current.
func (s *Store) applyIf(epoch uint64, fn func(st *State)) bool {
	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)
	return true
}

// fetchStatus requests a status snapshot and applies it if still wanted.
func (s *Store) fetchStatus(ctx context.Context, repo string, epoch uint64) error {
	s.mu.Lock()
	s.statusIssued++
	gen := s.statusIssued
	s.mu.Unlock()

	st, err := s.backend.Status(ctx, repo)
	if err != nil {
		return err
	}
	s.applyStatus(epoch, gen, st)
	return nil
}

func (s *Store) applyStatus(epoch, gen uint64, st *backend.Status) {
	s.mu.Lock()
	if !s.currentLocked(epoch) || gen <= s.statusApplied || gen < s.statusFloor {
		applied := s.statusApplied
		s.mu.Unlock()
		s.logger.Debug("dropping stale status", "gen", gen, "applied", applied)
		return
	}
	s.statusApplied = gen
	s.state.Status = st
	if !s.state.CommitMode() && s.state.SelectedFile != "" && !st.HasPendingChange(s.state.SelectedFile) {
		s.state.SelectedFile = ""
		s.state.SelectedFileDiff = ""
	}
	snap, subs := s.commitLocked()
	s.mu.Unlock()
	notify(snap, subs)
}

// ClearError dismisses the visible failure.
func (s *Store) ClearError() {
	s.update(func(st *State) { st.Err = nil })
}

// ClearNotice dismisses the success notice.
func (s *Store) ClearNotice() {
	s.update(func(st *State) { st.Notice = "" })
}

// ToggleCommandPalette opens or closes the command palette.
func (s *Store) ToggleCommandPalette() {
	s.update(func(st *State) { st.CommandPaletteOpen = !st.CommandPaletteOpen })
}

// SetCommandPaletteOpen sets palette visibility.
func (s *Store) SetCommandPaletteOpen(open bool) {
	s.update(func(st *State) { st.CommandPaletteOpen = open })
}

// SetFocus moves navigation focus.
func (s *Store) SetFocus(f Focus) {
	s.update(func(st *State) { st.Focus = f })
}

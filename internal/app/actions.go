package app

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/marcus/pinax/internal/backend"
	"github.com/marcus/pinax/internal/msg"
	"github.com/marcus/pinax/internal/palette"
	"github.com/marcus/pinax/internal/store"
)

// workspacePick is what choosing an entry in the workspace palette does.
type workspacePick int

const (
	pickSwitch workspacePick = iota
	pickAddRepository
	pickDelete
)

// targetFile is the working-tree file an action applies to: the selected
// file, else the file under the main cursor.
func (s *session) targetFile() (mainItem, bool) {
	st := s.store.Snapshot()
	if st.SelectedRepository == "" || st.CommitMode() {
		return mainItem{}, false
	}
	items := mainItems(st)
	if st.SelectedFile != "" {
		for _, it := range items {
			if it.kind == itemFile && it.path == st.SelectedFile {
				return it, true
			}
		}
	}
	if s.mainCursor < len(items) && items[s.mainCursor].kind == itemFile {
		return items[s.mainCursor], true
	}
	return mainItem{}, false
}

// targetCommit is the commit an action applies to: the selected commit,
// else the history entry under the main cursor.
func (s *session) targetCommit() string {
	st := s.store.Snapshot()
	if st.SelectedCommit != "" {
		return st.SelectedCommit
	}
	items := mainItems(st)
	if s.mainCursor < len(items) && items[s.mainCursor].kind == itemCommit {
		return items[s.mainCursor].hash
	}
	return ""
}

// onFile runs fn against the target file if it is in one of sections.
func (s *session) onFile(op string, fn func(ctx context.Context, path string) error, sections ...string) func() {
	return func() {
		it, ok := s.targetFile()
		if !ok {
			return
		}
		if len(sections) > 0 && !slices.Contains(sections, it.section) {
			return
		}
		s.queue(s.run(op, func(ctx context.Context) error { return fn(ctx, it.path) }))
	}
}

// onCommit runs fn against the target commit.
func (s *session) onCommit(op string, fn func(ctx context.Context, hash string) error) func() {
	return func() {
		hash := s.targetCommit()
		if hash == "" {
			return
		}
		s.queue(s.run(op, func(ctx context.Context) error { return fn(ctx, hash) }))
	}
}

func (s *session) resolve(res backend.Resolution) func() {
	st := s.store
	return s.onFile("resolve conflict", func(ctx context.Context, path string) error {
		return st.ResolveConflict(ctx, path, res)
	}, sectionConflicts)
}

func (s *session) openBranches() {
	if s.store.SelectedRepository() == "" {
		return
	}
	s.openPalette(palette.ModeBranches)
}

func (s *session) openWorkspaces(pick workspacePick) {
	if pick == pickAddRepository && s.store.SelectedRepository() == "" {
		return
	}
	s.pick = pick
	s.openPalette(palette.ModeWorkspaces)
}

func (s *session) removeFromWorkspace() {
	st := s.store.Snapshot()
	repo, ws := st.SelectedRepository, st.SelectedWorkspaceID
	if repo == "" {
		return
	}
	if _, ok := st.Workspace(ws); !ok {
		return
	}
	s.queue(s.run("remove from workspace", func(ctx context.Context) error {
		return s.store.RemoveRepositoryFromWorkspace(ctx, ws, repo)
	}))
}

func branchEntries(st store.State) []palette.Entry {
	entries := make([]palette.Entry, 0, len(st.Branches))
	for _, b := range st.Branches {
		e := palette.Entry{ID: b.Name, Label: b.Name, Detail: b.Upstream}
		if b.IsCurrent {
			e.Detail = "current"
		}
		entries = append(entries, e)
	}
	return entries
}

func (s *session) workspaceEntries(st store.State) []palette.Entry {
	var entries []palette.Entry
	if s.pick == pickSwitch {
		entries = append(entries,
			palette.Entry{ID: store.WorkspaceAll, Label: "All", Detail: "every repository"},
			palette.Entry{ID: store.WorkspaceUncategorized, Label: "Uncategorized", Detail: "not in any workspace"},
		)
	}
	for _, w := range st.Workspaces {
		entries = append(entries, palette.Entry{ID: w.ID, Label: w.Name, Detail: pluralRepos(len(w.Repositories))})
	}
	return entries
}

// chooseWorkspace applies the pending workspace pick to id.
func (s *session) chooseWorkspace(id string) {
	st := s.store
	switch s.pick {
	case pickSwitch:
		st.SelectWorkspace(id)
		s.sidebarCursor = 0
	case pickAddRepository:
		repo := st.SelectedRepository()
		s.queue(s.run("add to workspace", func(ctx context.Context) error {
			return st.AddRepositoryToWorkspace(ctx, id, repo)
		}))
	case pickDelete:
		s.queue(s.run("delete workspace", func(ctx context.Context) error { return st.DeleteWorkspace(ctx, id) }))
	}
	s.pick = pickSwitch
}

// editorEntries lists the editors found on PATH, marking the saved one.
func (s *session) editorEntries() []palette.Entry {
	current := ""
	if s.prefs != nil {
		if e, err := s.prefs.Editor(); err == nil {
			current = e
		}
	}
	found := s.editors()
	entries := make([]palette.Entry, 0, len(found))
	for _, e := range found {
		detail := e.Command
		if e.Command == current {
			detail = "current"
		}
		entries = append(entries, palette.Entry{ID: e.Command, Label: e.Name, Detail: detail})
	}
	return entries
}

func (s *session) chooseEditor(cmd string) {
	prefs := s.prefs
	if prefs == nil {
		s.showToast(msg.Failure("Settings are unavailable; set $EDITOR instead"))
		return
	}
	s.queue(func() tea.Msg {
		if err := prefs.SetEditor(cmd); err != nil {
			return msg.Failure("Saving editor failed: %v", err)
		}
		return msg.Info("Repositories open with %s", cmd)
	})
}

func pluralRepos(n int) string {
	if n == 1 {
		return "1 repository"
	}
	return humanize.Comma(int64(n)) + " repositories"
}

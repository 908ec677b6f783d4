package app

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/pinax/internal/backend"
	"github.com/marcus/pinax/internal/keymap"
	"github.com/marcus/pinax/internal/msg"
	"github.com/marcus/pinax/internal/palette"
	"github.com/marcus/pinax/internal/store"
)

type (
	// TickMsg is sent once a second to expire toasts.
	TickMsg time.Time

	// editorClosedMsg reports the end of an external editor session.
	editorClosedMsg struct{ err error }
)

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// registerCoreCommands installs every command the default bindings refer to.
func registerCoreCommands(s *session) {
	st := s.store
	op := func(name string, fn func(context.Context) error) func() {
		return func() { s.queue(s.run(name, fn)) }
	}

	commands := []keymap.Command{
		{ID: "command-palette.toggle", Label: "Toggle Command Palette", Category: keymap.CategoryGeneral, Handler: s.togglePalette},
		{ID: "modal.close", Label: "Close Modal", Category: keymap.CategoryGeneral, Handler: s.closeModal},
		{ID: "error.dismiss", Label: "Dismiss Message", Category: keymap.CategoryGeneral, Handler: s.dismissMessage},
		{ID: "app.quit", Label: "Quit", Category: keymap.CategoryGeneral, Handler: s.quit},

		{ID: "quickSearch.open", Label: "Quick Search Repositories", Category: keymap.CategoryNavigation, Handler: func() { s.openPalette(palette.ModeRepositories) }},
		{ID: "sidebar.focus", Label: "Focus Sidebar", Category: keymap.CategoryNavigation, Handler: func() { st.SetFocus(store.FocusSidebar) }},
		{ID: "main.focus", Label: "Focus Changes", Category: keymap.CategoryNavigation, Handler: func() { st.SetFocus(store.FocusMain) }},
		{ID: "diff.focus", Label: "Focus Diff", Category: keymap.CategoryNavigation, Handler: func() { st.SetFocus(store.FocusDiff) }},
		{ID: "navigation.up", Label: "Navigate Up", Category: keymap.CategoryNavigation, Handler: func() { s.navigate(-1) }},
		{ID: "navigation.down", Label: "Navigate Down", Category: keymap.CategoryNavigation, Handler: func() { s.navigate(1) }},
		{ID: "item.select", Label: "Select Item", Category: keymap.CategoryNavigation, Handler: s.selectItem},
		{ID: "selection.clear", Label: "Back to Working Tree", Category: keymap.CategoryNavigation, Handler: s.clearSelection},

		{ID: "repository.refresh", Label: "Refresh Repository Status", Category: keymap.CategoryRepository, Handler: s.refresh},
		{ID: "repository.copyPath", Label: "Copy Repository Path", Category: keymap.CategoryRepository, Handler: s.copyPath},
		{ID: "repository.openInEditor", Label: "Open in Editor", Category: keymap.CategoryRepository, Handler: s.openInEditor},
		{ID: "branch.copyName", Label: "Copy Branch Name", Category: keymap.CategoryRepository, Handler: s.copyBranch},

		{ID: "repository.fetch", Label: "Fetch", Category: keymap.CategoryGit, Handler: op("fetch", st.Fetch)},
		{ID: "repository.pull", Label: "Pull", Category: keymap.CategoryGit, Handler: op("pull", st.Pull)},
		{ID: "repository.push", Label: "Push", Category: keymap.CategoryGit, Handler: op("push", st.Push)},
		{ID: "commit.undo", Label: "Undo Last Commit", Category: keymap.CategoryGit, Handler: op("undo commit", st.UndoCommit)},
		{ID: "commit.compose", Label: "Commit", Category: keymap.CategoryGit, Handler: s.composeCommit},
		{ID: "changes.stageAll", Label: "Stage All Changes", Category: keymap.CategoryGit, Handler: op("stage all", st.StageAll)},
		{ID: "file.toggleStage", Label: "Stage or Unstage File", Category: keymap.CategoryGit, Handler: s.toggleStage},
		{ID: "file.discard", Label: "Discard File Changes", Category: keymap.CategoryGit, Handler: s.onFile("discard", st.Discard)},
		{ID: "file.ignore", Label: "Add File to .gitignore", Category: keymap.CategoryGit, Handler: s.onFile("ignore", st.AddToGitignore, sectionUntracked)},
		{ID: "conflict.useOurs", Label: "Resolve Conflict Using Ours", Category: keymap.CategoryGit, Handler: s.resolve(backend.ResolveOurs)},
		{ID: "conflict.useTheirs", Label: "Resolve Conflict Using Theirs", Category: keymap.CategoryGit, Handler: s.resolve(backend.ResolveTheirs)},
		{ID: "merge.continue", Label: "Continue Merge", Category: keymap.CategoryGit, Handler: op("continue merge", st.ContinueMerge)},
		{ID: "merge.abort", Label: "Abort Merge", Category: keymap.CategoryGit, Handler: op("abort merge", st.AbortMerge)},
		{ID: "branch.switch", Label: "Switch Branch", Category: keymap.CategoryGit, Handler: s.openBranches},
		{ID: "branch.create", Label: "Create Branch", Category: keymap.CategoryGit, Handler: s.composeBranch},
		{ID: "commit.checkout", Label: "Check Out Commit", Category: keymap.CategoryGit, Handler: s.onCommit("checkout commit", st.CheckoutCommit)},
		{ID: "commit.revert", Label: "Revert Commit", Category: keymap.CategoryGit, Handler: s.onCommit("revert", st.RevertCommit)},
		{ID: "commit.cherryPick", Label: "Cherry-pick Commit", Category: keymap.CategoryGit, Handler: s.onCommit("cherry-pick", st.CherryPick)},
		{ID: "commit.reset", Label: "Reset Branch to Commit", Category: keymap.CategoryGit, Handler: s.onCommit("reset", st.ResetToCommit)},

		{ID: "repository.clone", Label: "Clone Repository", Category: keymap.CategoryRepository, Handler: s.composeClone},
		{ID: "repository.publish", Label: "Publish Repository to GitHub", Category: keymap.CategoryRepository, Handler: s.composePublish},

		{ID: "settings.editor", Label: "Choose Editor", Category: keymap.CategoryGeneral, Handler: func() { s.openPalette(palette.ModeEditors) }},
		{ID: "settings.githubToken", Label: "Set GitHub Token", Category: keymap.CategoryGeneral, Handler: s.composeToken},
		{ID: "git.userName", Label: "Set Git User Name", Category: keymap.CategoryGit, Handler: s.composeUserName},
		{ID: "git.userEmail", Label: "Set Git User Email", Category: keymap.CategoryGit, Handler: s.composeUserEmail},

		{ID: "workspace.switch", Label: "Switch Workspace", Category: keymap.CategoryWorkspace, Handler: func() { s.openWorkspaces(pickSwitch) }},
		{ID: "workspace.create", Label: "Create Workspace", Category: keymap.CategoryWorkspace, Handler: s.composeWorkspace},
		{ID: "workspace.delete", Label: "Delete Workspace", Category: keymap.CategoryWorkspace, Handler: func() { s.openWorkspaces(pickDelete) }},
		{ID: "workspace.addRepository", Label: "Add Repository to Workspace", Category: keymap.CategoryWorkspace, Handler: func() { s.openWorkspaces(pickAddRepository) }},
		{ID: "workspace.removeRepository", Label: "Remove Repository from Workspace", Category: keymap.CategoryWorkspace, Handler: s.removeFromWorkspace},
	}
	for i := 1; i <= 3; i++ {
		n := i
		commands = append(commands, keymap.Command{
			ID:       fmt.Sprintf("workspace.select.%d", n),
			Label:    fmt.Sprintf("Select Workspace %d", n),
			Category: keymap.CategoryWorkspace,
			Handler:  func() { s.selectWorkspace(n) },
		})
	}

	for _, c := range commands {
		s.engine.RegisterCommand(c)
	}
}

// keyContext is the engine's context provider. It reads the store on every
// dispatch so conditions never lag behind state.
func (s *session) keyContext() keymap.Context {
	st := s.store.Snapshot()
	inputOpen := st.CommandPaletteOpen || s.composing()
	return keymap.NewContext().
		With(keymap.CondModalOpen, inputOpen).
		With(keymap.CondTextInputFocused, inputOpen).
		With(keymap.CondListFocused, st.Focus == store.FocusSidebar).
		With(keymap.CondDiffFocused, st.Focus == store.FocusDiff).
		With(keymap.CondRepositorySelected, st.SelectedRepository != "")
}

func (s *session) togglePalette() {
	st := s.store.Snapshot()
	if st.CommandPaletteOpen && s.palette.Mode() == palette.ModeCommands {
		s.closePalette()
		return
	}
	s.openPalette(palette.ModeCommands)
}

func (s *session) openPalette(mode palette.Mode) {
	st := s.store.Snapshot()
	if s.composing() {
		s.cancelPrompt()
	}
	var entries []palette.Entry
	switch mode {
	case palette.ModeRepositories:
		entries = repositoryEntries(st)
	case palette.ModeBranches:
		entries = branchEntries(st)
	case palette.ModeWorkspaces:
		entries = s.workspaceEntries(st)
	case palette.ModeEditors:
		entries = s.editorEntries()
	default:
		entries = s.commandEntries()
	}
	s.palette.SetSize(s.width, s.height)
	s.palette.Open(mode, entries)
	if !st.CommandPaletteOpen {
		s.store.SetCommandPaletteOpen(true)
	}
}

func (s *session) closePalette() {
	s.palette.Close()
	s.store.SetCommandPaletteOpen(false)
}

func (s *session) commandEntries() []palette.Entry {
	cmds := s.engine.Commands()
	entries := make([]palette.Entry, 0, len(cmds))
	for _, c := range cmds {
		shortcut, _ := s.engine.ShortcutFor(c.ID)
		entries = append(entries, palette.Entry{
			ID:       c.ID,
			Label:    c.Label,
			Detail:   string(c.Category),
			Shortcut: shortcut,
		})
	}
	return entries
}

func repositoryEntries(st store.State) []palette.Entry {
	entries := make([]palette.Entry, 0, len(st.Repositories))
	for _, r := range st.Repositories {
		entries = append(entries, palette.Entry{ID: r.Path, Label: r.Name, Detail: r.Path})
	}
	return entries
}

// choose runs the palette selection. Quick search switches to a workspace
// that lists the repository, or to the uncategorized view.
func (s *session) choose(sel palette.SelectedMsg) {
	s.closePalette()
	switch sel.Mode {
	case palette.ModeCommands:
		if sel.ID != "command-palette.toggle" {
			s.engine.ExecuteCommand(sel.ID)
		}
		return
	case palette.ModeBranches:
		st, branch := s.store, sel.ID
		s.mainCursor = 0
		s.queue(s.run("checkout", func(ctx context.Context) error { return st.Checkout(ctx, branch) }))
		return
	case palette.ModeWorkspaces:
		s.chooseWorkspace(sel.ID)
		return
	case palette.ModeEditors:
		s.chooseEditor(sel.ID)
		return
	}

	st := s.store.Snapshot()
	view := store.WorkspaceUncategorized
	for _, w := range st.Workspaces {
		if w.Contains(sel.ID) {
			view = w.ID
			break
		}
	}
	s.store.SelectWorkspace(view)
	for i, r := range s.store.Snapshot().VisibleRepositories() {
		if r.Path == sel.ID {
			s.sidebarCursor = i
			break
		}
	}
	s.selectRepository(sel.ID)
}

func (s *session) closeModal() {
	if s.store.Snapshot().CommandPaletteOpen {
		s.closePalette()
		return
	}
	if s.composing() {
		s.cancelPrompt()
	}
}

func (s *session) dismissMessage() {
	st := s.store.Snapshot()
	switch {
	case st.Err != nil:
		s.store.ClearError()
	case st.Notice != "":
		s.store.ClearNotice()
	default:
		s.toast = ""
	}
}

func (s *session) quit() {
	s.quitting = true
	s.queue(tea.Quit)
}

func (s *session) refresh() {
	st := s.store
	if st.SelectedRepository() == "" {
		s.queue(s.scan())
		return
	}
	s.queue(s.run("refresh", func(ctx context.Context) error {
		if err := st.RefreshStatus(ctx); err != nil {
			return err
		}
		if err := st.LoadBranches(ctx); err != nil {
			return err
		}
		return st.LoadHistory(ctx)
	}))
}

func (s *session) selectRepository(path string) {
	s.mainCursor, s.diffOffset = 0, 0
	s.store.SetFocus(store.FocusMain)
	st := s.store
	s.queue(s.run("select repository", func(ctx context.Context) error {
		return st.SelectRepository(ctx, path)
	}))
}

func (s *session) selectWorkspace(n int) {
	st := s.store.Snapshot()
	if n < 1 || n > len(st.Workspaces) {
		return
	}
	s.store.SelectWorkspace(st.Workspaces[n-1].ID)
	s.sidebarCursor = 0
}

func (s *session) navigate(delta int) {
	st := s.store.Snapshot()
	switch st.Focus {
	case store.FocusSidebar:
		s.sidebarCursor = clamp(s.sidebarCursor+delta, len(st.VisibleRepositories()))
	case store.FocusMain:
		s.mainCursor = clamp(s.mainCursor+delta, len(mainItems(st)))
	case store.FocusDiff:
		s.diffOffset = clamp(s.diffOffset+delta, len(diffLines(st)))
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	return max(0, i)
}

func (s *session) selectItem() {
	st := s.store.Snapshot()
	switch st.Focus {
	case store.FocusSidebar:
		repos := st.VisibleRepositories()
		if s.sidebarCursor < len(repos) {
			s.selectRepository(repos[s.sidebarCursor].Path)
		}
	case store.FocusMain:
		items := mainItems(st)
		if s.mainCursor >= len(items) {
			return
		}
		it := items[s.mainCursor]
		s.diffOffset = 0
		switch it.kind {
		case itemFile:
			s.queue(s.run("select file", func(ctx context.Context) error { return s.store.SelectFile(ctx, it.path) }))
		case itemCommit:
			s.mainCursor = 0
			s.queue(s.run("select commit", func(ctx context.Context) error { return s.store.SelectCommit(ctx, it.hash) }))
		case itemCommitFile:
			s.queue(s.run("select commit file", func(ctx context.Context) error { return s.store.SelectCommitFile(ctx, it.path) }))
		}
	}
}

func (s *session) clearSelection() {
	s.store.ClearSelection()
	s.mainCursor, s.diffOffset = 0, 0
}

func (s *session) toggleStage() {
	st := s.store.Snapshot()
	items := mainItems(st)
	if st.Focus != store.FocusMain || s.mainCursor >= len(items) {
		return
	}
	it := items[s.mainCursor]
	if it.kind != itemFile || it.section == sectionConflicts {
		return
	}
	if it.section == sectionStaged {
		s.queue(s.run("unstage", func(ctx context.Context) error { return s.store.Unstage(ctx, it.path) }))
		return
	}
	s.queue(s.run("stage", func(ctx context.Context) error { return s.store.Stage(ctx, it.path) }))
}

func (s *session) copyPath() {
	s.copyText("path", s.store.SelectedRepository())
}

func (s *session) copyBranch() {
	s.copyText("branch name", s.store.Snapshot().CurrentBranch())
}

func (s *session) copyText(what, text string) {
	if text == "" {
		return
	}
	copyFn := s.copy
	s.queue(func() tea.Msg {
		if err := copyFn(text); err != nil {
			return msg.Failure("Copy failed: %v", err)
		}
		return msg.Info("Copied %s", what)
	})
}

func (s *session) openInEditor() {
	path := s.store.SelectedRepository()
	if path == "" {
		return
	}
	editor := ""
	if s.prefs != nil {
		e, err := s.prefs.Editor()
		if err != nil {
			s.logger.Warn("editor lookup failed", "err", err)
		}
		editor = e
	}
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		s.showToast(msg.Failure("No editor configured. Run Choose Editor or set $EDITOR."))
		return
	}
	c := exec.Command(fields[0], append(fields[1:], path)...)
	c.Dir = path
	s.queue(tea.ExecProcess(c, func(err error) tea.Msg {
		return editorClosedMsg{err: err}
	}))
}

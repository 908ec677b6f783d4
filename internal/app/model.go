package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/pinax/internal/config"
	"github.com/marcus/pinax/internal/keymap"
	"github.com/marcus/pinax/internal/msg"
	"github.com/marcus/pinax/internal/palette"
	"github.com/marcus/pinax/internal/settings"
	"github.com/marcus/pinax/internal/state"
	"github.com/marcus/pinax/internal/store"
	"github.com/marcus/pinax/internal/styles"
)

// Preferences are the user's saved settings.
type Preferences interface {
	Editor() (string, error)
	SetEditor(cmd string) error
	GitHubToken() (string, error)
	SetGitHubToken(token string) error
}

// Watcher follows one repository on disk.
type Watcher interface {
	Watch(repo string) error
}

// SelectionStore remembers the selection across runs.
type SelectionStore interface {
	Load() (state.Selection, error)
	Save(state.Selection) error
}

// Options wires the model to its collaborators. Store and Engine are required.
type Options struct {
	Store     *store.Store
	Engine    *keymap.Engine
	Config    *config.Config
	Settings  Preferences
	Watcher   Watcher
	Selection SelectionStore
	Version   string
	Logger    *slog.Logger
	Clipboard func(string) error           // Defaults to the system clipboard
	Editors   func() []settings.EditorInfo // Defaults to settings.DetectEditors
}

// Model is the root Bubble Tea model. Command handlers registered with the
// engine mutate the shared session, so copies of Model stay in sync.
type Model struct {
	*session
}

// session is the mutable UI state behind Model.
type session struct {
	store   *store.Store
	engine  *keymap.Engine
	cfg     *config.Config
	prefs   Preferences
	editors func() []settings.EditorInfo
	watcher Watcher
	saved   SelectionStore
	copy    func(string) error
	logger  *slog.Logger
	version string

	ctx    context.Context
	cancel context.CancelFunc
	feed   *stateFeed
	unsub  func()

	followMu sync.Mutex
	followed string        // repository the watcher was last pointed at
	follow   chan struct{} // signals a change of followed
	unwatch  func()

	state store.State

	width, height int
	ready         bool

	palette palette.Model
	pick    workspacePick
	prompt  promptKind
	publish string // directory waiting for a token before publishing
	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	sidebarCursor int
	mainCursor    int
	diffOffset    int

	toast        string
	toastExpiry  time.Time
	toastIsError bool

	pending  []tea.Cmd
	quitting bool
}

// New creates the application model, registers the core commands on the
// engine and subscribes to store changes.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	editorsFn := opts.Editors
	if editorsFn == nil {
		editorsFn = settings.DetectEditors
	}

	ti := textinput.New()
	ti.CharLimit = 500
	ti.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.StatusInProgress

	h := help.New()
	h.ShortSeparator = "  "

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		store:   opts.Store,
		engine:  opts.Engine,
		cfg:     cfg,
		prefs:   opts.Settings,
		editors: editorsFn,
		watcher: opts.Watcher,
		saved:   opts.Selection,
		copy:    copyFn,
		logger:  logger,
		version: opts.Version,
		ctx:     ctx,
		cancel:  cancel,
		feed:    newStateFeed(),
		palette: palette.New(),
		input:   ti,
		spinner: sp,
		help:    h,
	}
	s.state = s.store.Snapshot()
	s.unsub = s.store.Subscribe(s.feed.push)

	if s.watcher != nil {
		s.follow = make(chan struct{}, 1)
		s.unwatch = s.store.Subscribe(s.followSelection)
		go s.watchLoop()
	}

	registerCoreCommands(s)
	s.engine.SetContextProvider(s.keyContext)

	return Model{session: s}
}

// Init loads workspaces, scans the configured roots and restores the
// selection saved by the previous run.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.feed.wait(),
		m.spinner.Tick,
		tickCmd(),
		m.run("startup", m.startup),
	)
}

func (s *session) startup(ctx context.Context) error {
	if err := s.store.LoadWorkspaces(ctx); err != nil {
		s.logger.Warn("load workspaces", "err", err)
	}
	if err := s.store.LoadIdentity(ctx); err != nil {
		s.logger.Warn("load git identity", "err", err)
	}
	if err := s.scanRepositories(ctx); err != nil {
		return err
	}
	return s.restoreSelection(ctx)
}

// scan rescans the configured roots, then registers hand-added paths.
func (s *session) scan() tea.Cmd {
	return s.run("scan", s.scanRepositories)
}

func (s *session) scanRepositories(ctx context.Context) error {
	repos := s.cfg.Repositories
	if err := s.store.ScanRoots(ctx, repos.ScanRoots); err != nil {
		return err
	}
	for _, p := range repos.Paths {
		if err := s.store.AddRepository(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// restoreSelection reselects the saved workspace and repository if they
// still exist and the user has not picked something else meanwhile.
func (s *session) restoreSelection(ctx context.Context) error {
	if s.saved == nil {
		return nil
	}
	sel, err := s.saved.Load()
	if err != nil {
		s.logger.Warn("read saved selection", "err", err)
		return nil
	}

	st := s.store.Snapshot()
	switch sel.Workspace {
	case "":
	case store.WorkspaceAll, store.WorkspaceUncategorized:
		s.store.SelectWorkspace(sel.Workspace)
	default:
		if _, ok := st.Workspace(sel.Workspace); ok {
			s.store.SelectWorkspace(sel.Workspace)
		}
	}

	if sel.Repository == "" || st.SelectedRepository != "" {
		return nil
	}
	if _, ok := st.Repository(sel.Repository); !ok {
		return nil
	}
	s.store.SetFocus(store.FocusMain)
	return s.store.SelectRepository(ctx, sel.Repository)
}

// followSelection notes a change of selected repository for watchLoop. The
// store calls it synchronously, so it must not block.
func (s *session) followSelection(st store.State) {
	s.followMu.Lock()
	if st.SelectedRepository == s.followed {
		s.followMu.Unlock()
		return
	}
	s.followed = st.SelectedRepository
	s.followMu.Unlock()

	select {
	case s.follow <- struct{}{}:
	default:
	}
}

// watchLoop points the watcher at the selected repository, whichever way it
// was selected, and stops watching when nothing is selected.
func (s *session) watchLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.follow:
		}
		s.followMu.Lock()
		path := s.followed
		s.followMu.Unlock()
		if err := s.watcher.Watch(path); err != nil {
			s.logger.Warn("watch failed", "path", path, "err", err)
		}
	}
}

// saveSelection records the current selection for the next run.
func (s *session) saveSelection() {
	if s.saved == nil {
		return
	}
	st := s.store.Snapshot()
	sel := state.Selection{Workspace: st.SelectedWorkspaceID, Repository: st.SelectedRepository}
	if err := s.saved.Save(sel); err != nil {
		s.logger.Warn("save selection", "err", err)
	}
}

// Shutdown stops background work started by the model.
func (m Model) Shutdown() {
	m.cancel()
	m.feed.close()
	if m.unsub != nil {
		m.unsub()
	}
	if m.unwatch != nil {
		m.unwatch()
	}
}

// queue schedules cmd to be returned from the current Update.
func (s *session) queue(cmd tea.Cmd) {
	if cmd != nil {
		s.pending = append(s.pending, cmd)
	}
}

// drain returns and clears the queued commands.
func (s *session) drain() []tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return cmds
}

// run wraps a store operation in a tea.Cmd. Failures are recorded in store
// state by the store itself, so the command only logs them.
func (s *session) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx, logger := s.ctx, s.logger
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			logger.Debug("operation failed", "op", op, "err", err)
		}
		return nil
	}
}

// showToast displays a temporary footer message.
func (s *session) showToast(t msg.ToastMsg) {
	s.toast = t.Message
	s.toastIsError = t.IsError
	d := t.Duration
	if d == 0 {
		d = msg.InfoDuration
	}
	s.toastExpiry = time.Now().Add(d)
}

// clearExpiredToast drops the toast once its time is up.
func (s *session) clearExpiredToast(now time.Time) {
	if s.toast != "" && now.After(s.toastExpiry) {
		s.toast = ""
		s.toastIsError = false
	}
}

// refreshState replaces the local snapshot with the store's current state.
func (s *session) refreshState() {
	s.applyState(s.store.Snapshot())
}

// applyState installs st unless a newer snapshot is already held.
func (s *session) applyState(st store.State) {
	if st.Version < s.state.Version {
		return
	}
	s.state = st
	s.clampCursors()
}

func (s *session) clampCursors() {
	if n := len(s.state.VisibleRepositories()); s.sidebarCursor >= n {
		s.sidebarCursor = max(0, n-1)
	}
	if n := len(mainItems(s.state)); s.mainCursor >= n {
		s.mainCursor = max(0, n-1)
	}
}

// stateFeed carries store snapshots into the program. The store notifies
// synchronously, sometimes from inside Update, so push must never block.
type stateFeed struct {
	mu     sync.Mutex
	latest store.State
	has    bool
	ready  chan struct{}
	done   chan struct{}
	closed sync.Once
}

func newStateFeed() *stateFeed {
	return &stateFeed{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

func (f *stateFeed) push(st store.State) {
	f.mu.Lock()
	if f.has && st.Version < f.latest.Version {
		f.mu.Unlock()
		return
	}
	f.latest, f.has = st, true
	f.mu.Unlock()

	select {
	case f.ready <- struct{}{}:
	default:
	}
}

// wait returns a command that delivers the next snapshot.
func (f *stateFeed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.ready:
		case <-f.done:
			return nil
		}
		f.mu.Lock()
		st := f.latest
		f.mu.Unlock()
		return msg.StateChangedMsg{State: st}
	}
}

func (f *stateFeed) close() {
	f.closed.Do(func() { close(f.done) })
}

package poller

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for filesystem activity to
// settle before reporting a change.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to one repository's working directory and .git
// directory. Bursts of events are collapsed into a single onChange call.
type Watcher struct {
	fs       *fsnotify.Watcher
	onChange func()
	debounce time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	paths  []string
	timer  *time.Timer
	closed bool
	done   chan struct{}
}

// NewWatcher starts a watcher that calls onChange after activity settles.
// It watches nothing until Watch is called.
func NewWatcher(onChange func(), debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		fs:       fsw,
		onChange: onChange,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch replaces the watched repository. An empty path stops watching.
func (w *Watcher) Watch(repo string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range w.paths {
		_ = w.fs.Remove(p)
	}
	w.paths = nil
	if repo == "" {
		return nil
	}

	for _, p := range []string{repo, filepath.Join(repo, ".git")} {
		if err := w.fs.Add(p); err != nil {
			return err
		}
		w.paths = append(w.paths, p)
	}
	w.logger.Debug("watching repository", "path", repo)
	return nil
}

// Close stops the watcher. Pending notifications are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ignoreEvent(event) {
				continue
			}
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch error", "err", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.timer = nil
	w.mu.Unlock()
	if !closed && w.onChange != nil {
		w.onChange()
	}
}

// ignoreEvent drops git's transient lock files and pure permission changes.
func ignoreEvent(e fsnotify.Event) bool {
	if strings.HasSuffix(e.Name, ".lock") {
		return true
	}
	return e.Op == fsnotify.Chmod
}

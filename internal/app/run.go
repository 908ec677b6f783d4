package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/pinax/internal/config"
	"github.com/marcus/pinax/internal/poller"
)

// Run starts the poller, the repository watcher and the program, and blocks
// until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Poll.Interval
	if interval <= 0 {
		interval = poller.DefaultInterval
	}
	p := poller.New(opts.Store, interval, logger)

	if opts.Watcher == nil && cfg.Poll.Watch {
		w, err := poller.NewWatcher(p.Trigger, poller.DefaultDebounce, logger)
		if err != nil {
			logger.Warn("file watcher unavailable", "err", err)
		} else {
			defer w.Close()
			opts.Watcher = w
		}
	}

	m := New(opts)
	defer m.Shutdown()

	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("poller stopped", "err", err)
		}
	}()

	start := time.Now()
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	m.saveSelection()
	m.logger.Debug("program exited", "after", time.Since(start).Round(time.Millisecond))
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

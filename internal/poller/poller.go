// Package poller keeps the selected repository's status fresh in the
// background, on a fixed interval and whenever the repository changes on disk.
package poller

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is the time between background status polls.
const DefaultInterval = 500 * time.Millisecond

// Target is what the poller refreshes.
type Target interface {
	PollStatus(ctx context.Context) error
	SelectedRepository() string
}

// Poller calls Target.PollStatus on every tick and on request. Polls never
// overlap; failures are logged and swallowed.
type Poller struct {
	target   Target
	interval time.Duration
	logger   *slog.Logger
	trigger  chan struct{}
}

// New creates a poller. A non-positive interval uses DefaultInterval.
func New(target Target, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		target:   target,
		interval: interval,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Interval returns the tick interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Run polls until ctx is done and returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-p.trigger:
		}
		p.poll(ctx)
	}
}

// Trigger requests a poll as soon as the current one (if any) finishes.
// Requests made while one is already pending are merged.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) poll(ctx context.Context) {
	repo := p.target.SelectedRepository()
	if repo == "" {
		return
	}
	if err := p.target.PollStatus(ctx); err != nil && ctx.Err() == nil {
		p.logger.Debug("status poll failed", "path", repo, "err", err)
	}
}

// Package scheduler periodically promotes pending revisions whose publish
// time has passed.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/wepublish/wepublish-api/pkg/publishing"
)

// DefaultTimeout bounds a single promotion run.
const DefaultTimeout = time.Minute

// Promoter defines the interface for promotion runs. publishing.Service
// satisfies it.
type Promoter interface {
	Kind() publishing.Kind
	PromoteDue(ctx context.Context) ([]*publishing.Item, error)
}

type Scheduler struct {
	promoters []Promoter
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

func NewScheduler(interval time.Duration, logger *slog.Logger, promoters ...Promoter) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := DefaultTimeout
	if interval > 0 && interval < timeout {
		timeout = interval
	}
	return &Scheduler{
		promoters: promoters,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start runs a promotion immediately and then on every tick until ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce promotes due revisions of every kind and returns how many items
// were promoted. Failures are logged; one kind failing does not stop the
// others.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total := 0
	for _, p := range s.promoters {
		promoted, err := p.PromoteDue(runCtx)
		total += len(promoted)
		if err != nil {
			s.logger.Error("promotion failed", "kind", p.Kind(), "promoted", len(promoted), "error", err)
			continue
		}
		if len(promoted) > 0 {
			s.logger.Info("promoted pending revisions", "kind", p.Kind(), "count", len(promoted))
		}
	}
	return total
}

package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akarpov/docrouter/internal/core/ports"
)

// Scheduler enqueues due sources on a cron spec with a seconds field.
type Scheduler struct {
	runner      ports.ScrapeRunner
	spec        string
	minInterval time.Duration
	cron        *cron.Cron
}

func NewScheduler(runner ports.ScrapeRunner, spec string, minInterval time.Duration) *Scheduler {
	if spec == "" {
		spec = "0 */30 * * * *"
	}
	if minInterval <= 0 {
		minInterval = time.Hour
	}
	return &Scheduler{
		runner:      runner,
		spec:        spec,
		minInterval: minInterval,
		cron:        cron.New(cron.WithSeconds()),
	}
}

// Start registers the job and runs the cron loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		enqueued, err := s.runner.EnqueueDue(ctx, s.minInterval)
		if err != nil {
			slog.Error("enqueue due sources failed", "error", err)
			return
		}
		if enqueued > 0 {
			slog.Info("scrape jobs enqueued", "count", enqueued)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}

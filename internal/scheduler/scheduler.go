package scheduler

import (
	"context"
	"errors"
	"fmt"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/usecase"
	applogger "MacroPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic batch refresh on a cron schedule. Overlap
// protection lives in the refresher's store lock, so a tick that lands while
// a batch is still running simply skips.
type Scheduler struct {
	cron      *cron.Cron
	refresher *usecase.Refresher
	logger    *applogger.Logger
}

// New creates a scheduler with the standard 5-field cron syntax.
func New(refresher *usecase.Refresher, logger *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		logger:    logger,
	}
}

// Schedule registers the refresh job. Spec is a cron expression like
// "0 6 * * *" (daily at 06:00).
func (s *Scheduler) Schedule(spec string) error {
	_, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) run() {
	report, err := s.refresher.RefreshAll(context.Background())
	if errors.Is(err, models.ErrRefreshRunning) {
		s.logger.Warn("scheduled refresh skipped, previous run still in flight")
		return
	}
	if err != nil {
		s.logger.Error("scheduled refresh failed", applogger.Error(err))
		return
	}
	s.logger.Info("scheduled refresh done",
		applogger.Int("succeeded", report.Succeeded),
		applogger.Int("failed", report.Failed),
	)
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

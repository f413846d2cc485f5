package usecase

import (
	"context"
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/pkg/kv"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/util"
)

const refreshLockKey = "refresh:lock"

// Refresher pulls fresh observations from the upstream provider into the
// series repository. A batch refresh is guarded by a store-level lock so
// overlapping runs (scheduler plus manual trigger) cannot interleave.
type Refresher struct {
	provider drepo.ObservationProvider
	repo     drepo.SeriesRepository
	archive  drepo.ObservationArchive
	events   drepo.EventPublisher
	metrics  drepo.Metrics
	locks    kv.Store
	lockTTL  time.Duration
	logger   *applogger.Logger
	now      func() time.Time
}

// NewRefresher creates a refresher.
func NewRefresher(
	provider drepo.ObservationProvider,
	repo drepo.SeriesRepository,
	archive drepo.ObservationArchive,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	locks kv.Store,
	lockTTL time.Duration,
	logger *applogger.Logger,
) *Refresher {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &Refresher{
		provider: provider,
		repo:     repo,
		archive:  archive,
		events:   events,
		metrics:  metrics,
		locks:    locks,
		lockTTL:  lockTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// RefreshSeries refetches one tracked series and swaps in its observations,
// preserving the stored name and direction. Archive and event failures are
// logged, never propagated.
func (r *Refresher) RefreshSeries(ctx context.Context, id string) error {
	if _, err := r.repo.Get(ctx, id); err != nil {
		return err
	}

	monthsBack, err := r.repo.MonthsBack(ctx)
	if err != nil {
		return fmt.Errorf("load window: %w", err)
	}

	start, end := util.FetchRange(r.now(), monthsBack)

	fetchStart := time.Now()
	obs, err := r.provider.FetchObservations(ctx, id, start, end)
	r.metrics.RecordFetchLatency(id, time.Since(fetchStart).Seconds())
	if err != nil {
		r.metrics.RecordRefresh(id, "error")
		r.metrics.RecordError("fetch")
		return fmt.Errorf("fetch %s: %w", id, err)
	}

	if err := r.repo.ReplaceObservations(ctx, id, obs); err != nil {
		r.metrics.RecordRefresh(id, "error")
		return fmt.Errorf("store %s: %w", id, err)
	}

	r.metrics.RecordRefresh(id, "ok")
	r.metrics.RecordObservationCount(id, len(obs))

	if err := r.archive.Archive(ctx, id, obs); err != nil {
		r.metrics.RecordError("archive")
		r.logger.Warn("archive failed",
			applogger.String("series", id),
			applogger.Error(err),
		)
	}
	if err := r.events.SeriesRefreshed(ctx, id, len(obs)); err != nil {
		r.metrics.RecordError("publish")
		r.logger.Warn("event publish failed",
			applogger.String("series", id),
			applogger.Error(err),
		)
	}

	r.logger.Info("series refreshed",
		applogger.String("series", id),
		applogger.Int("observations", len(obs)),
	)
	return nil
}

// RefreshAll refreshes every tracked series. One series failing never aborts
// the batch; failures are collected in the report. Returns ErrRefreshRunning
// when another batch holds the lock.
func (r *Refresher) RefreshAll(ctx context.Context) (*models.RefreshReport, error) {
	ok, err := r.locks.TryLock(ctx, refreshLockKey, r.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire refresh lock: %w", err)
	}
	if !ok {
		return nil, models.ErrRefreshRunning
	}
	defer func() {
		if err := r.locks.Unlock(ctx, refreshLockKey); err != nil {
			r.logger.Warn("release refresh lock failed", applogger.Error(err))
		}
	}()

	ids, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}

	report := &models.RefreshReport{
		Errors:    make(map[string]string),
		StartedAt: r.now(),
	}
	batchStart := time.Now()

	for _, id := range ids {
		if err := r.RefreshSeries(ctx, id); err != nil {
			report.Failed++
			report.Errors[id] = err.Error()
			r.logger.Error("series refresh failed",
				applogger.String("series", id),
				applogger.Error(err),
			)
			continue
		}
		report.Succeeded++
	}

	report.Took = time.Since(batchStart)
	if len(report.Errors) == 0 {
		report.Errors = nil
	}

	if err := r.events.BatchCompleted(ctx, report); err != nil {
		r.metrics.RecordError("publish")
		r.logger.Warn("batch event publish failed", applogger.Error(err))
	}

	r.logger.Info("batch refresh completed",
		applogger.Int("succeeded", report.Succeeded),
		applogger.Int("failed", report.Failed),
		applogger.Duration("took", report.Took),
	)
	return report, nil
}

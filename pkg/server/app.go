package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/scheduler"
	"MacroPulse/internal/usecase"
	"MacroPulse/pkg/config"
	xhttp "MacroPulse/pkg/http"
	"MacroPulse/pkg/kv"
	applogger "MacroPulse/pkg/logger"
)

// App encapsulates the application lifecycle: seed series, the refresh
// scheduler, the HTTP server, and graceful shutdown of every client.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	handler   xhttp.Handler
	scheduler *scheduler.Scheduler
	refresher *usecase.Refresher
	repo      drepo.SeriesRepository
	store     kv.Store
	archive   drepo.ObservationArchive
	events    drepo.EventPublisher

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	refresher *usecase.Refresher,
	repo drepo.SeriesRepository,
	store kv.Store,
	archive drepo.ObservationArchive,
	events drepo.EventPublisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		handler:   handler,
		scheduler: sched,
		refresher: refresher,
		repo:      repo,
		store:     store,
		archive:   archive,
		events:    events,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.seedSeries(ctx); err != nil {
		return err
	}

	if a.cfg.Refresh.Schedule != "" {
		if err := a.scheduler.Schedule(a.cfg.Refresh.Schedule); err != nil {
			return err
		}
		a.scheduler.Start()
		a.logger.Info("refresh scheduled", applogger.String("cron", a.cfg.Refresh.Schedule))
	}

	if a.cfg.Refresh.OnStart {
		go func() {
			if _, err := a.refresher.RefreshAll(ctx); err != nil && !errors.Is(err, models.ErrRefreshRunning) {
				a.logger.Error("startup refresh failed", applogger.Error(err))
			}
		}()
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestLogger(a.logger),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.logger.Info("macropulse started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// seedSeries stores records for configured series that are not tracked yet.
// Their observations arrive with the first refresh.
func (a *App) seedSeries(ctx context.Context) error {
	for _, s := range a.cfg.Fred.Series {
		_, err := a.repo.Get(ctx, s.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrSeriesNotFound) {
			return err
		}

		rec := &models.SeriesRecord{
			ID:        s.ID,
			Name:      s.ID,
			Direction: models.NormalizeDirection(s.Direction),
		}
		if err := a.repo.Create(ctx, rec); err != nil {
			return err
		}
		a.logger.Info("seeded series",
			applogger.String("series", s.ID),
			applogger.String("direction", string(rec.Direction)),
		)
	}
	return nil
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop error", applogger.Error(err))
	}
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.events.Close(); err != nil {
		a.logger.Warn("events close error", applogger.Error(err))
	}
	if err := a.archive.Close(); err != nil {
		a.logger.Warn("archive close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}

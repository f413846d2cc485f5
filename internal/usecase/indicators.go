package usecase

import (
	"context"
	"fmt"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/services/trend"
	applogger "MacroPulse/pkg/logger"
)

// SeriesSummary is the list-view projection of a tracked series.
type SeriesSummary struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Direction    models.Direction `json:"direction"`
	Observations int              `json:"observations"`
	LatestMonth  string           `json:"latest_month,omitempty"`
	LatestValue  float64          `json:"latest_value,omitempty"`
}

// Indicators serves classification, composite and series-management queries
// on top of the repository. All derived outputs (heatmap cells, adjusted
// series, composite points) are computed on demand from stored observations.
type Indicators struct {
	repo        drepo.SeriesRepository
	provider    drepo.ObservationProvider
	refresher   *Refresher
	metrics     drepo.Metrics
	logger      *applogger.Logger
	defaultMode trend.Mode
	fillPolicy  trend.FillPolicy
}

// NewIndicators creates the indicators usecase.
func NewIndicators(
	repo drepo.SeriesRepository,
	provider drepo.ObservationProvider,
	refresher *Refresher,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	defaultMode trend.Mode,
	fillPolicy trend.FillPolicy,
) *Indicators {
	return &Indicators{
		repo:        repo,
		provider:    provider,
		refresher:   refresher,
		metrics:     metrics,
		logger:      logger,
		defaultMode: defaultMode,
		fillPolicy:  fillPolicy,
	}
}

// ListSeries returns a summary of every tracked series.
func (u *Indicators) ListSeries(ctx context.Context) ([]SeriesSummary, error) {
	ids, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SeriesSummary, 0, len(ids))
	for _, id := range ids {
		rec, err := u.repo.Get(ctx, id)
		if err != nil {
			continue
		}
		s := SeriesSummary{
			ID:           rec.ID,
			Name:         rec.Name,
			Direction:    rec.Direction,
			Observations: len(rec.Observations),
		}
		if latest, ok := rec.Latest(); ok {
			s.LatestMonth = latest.Month
			s.LatestValue = latest.Value
		}
		out = append(out, s)
	}
	return out, nil
}

// RegisterSeries starts tracking a new series: resolves its title (falling
// back to the id when the lookup fails), stores the record, then runs an
// initial refresh to pull its history.
func (u *Indicators) RegisterSeries(ctx context.Context, id string, direction models.Direction) (*models.SeriesRecord, error) {
	name, err := u.provider.FetchSeriesTitle(ctx, id)
	if err != nil {
		u.logger.Warn("title lookup failed, using id",
			applogger.String("series", id),
			applogger.Error(err),
		)
		name = id
	}

	rec := &models.SeriesRecord{
		ID:        id,
		Name:      name,
		Direction: direction,
	}
	if err := u.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("register %s: %w", id, err)
	}

	if err := u.refresher.RefreshSeries(ctx, id); err != nil {
		// Keep the registration; the next batch refresh will retry.
		u.logger.Warn("initial refresh failed",
			applogger.String("series", id),
			applogger.Error(err),
		)
	}

	return u.repo.Get(ctx, id)
}

// RemoveSeries stops tracking a series and drops its weight entry.
func (u *Indicators) RemoveSeries(ctx context.Context, id string) error {
	if _, err := u.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Re-save to renormalize over the remaining series.
	weights, err := u.repo.Weights(ctx)
	if err != nil {
		return err
	}
	delete(weights, id)
	return u.repo.SaveWeights(ctx, weights)
}

// SetDirection flips the favorable-direction flag of a series.
func (u *Indicators) SetDirection(ctx context.Context, id string, dir models.Direction) error {
	return u.repo.UpdateDirection(ctx, id, dir)
}

// Heatmap classifies a series' trailing window into heatmap cells. A
// non-positive months falls back to the persisted window setting.
func (u *Indicators) Heatmap(ctx context.Context, id string, months int, mode string) ([]models.MonthCell, error) {
	rec, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if months <= 0 {
		if months, err = u.repo.MonthsBack(ctx); err != nil {
			return nil, err
		}
	}

	m := u.defaultMode
	if mode != "" {
		m = trend.NormalizeMode(mode)
	}
	classifier, err := trend.NewClassifier(m)
	if err != nil {
		return nil, err
	}

	u.metrics.RecordQuery("heatmap")
	return trend.BuildMonthly(rec, months, classifier), nil
}

// Adjusted returns the direction-normalized, rebased series.
func (u *Indicators) Adjusted(ctx context.Context, id string) ([]models.Observation, error) {
	rec, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	u.metrics.RecordQuery("adjusted")
	return trend.AdjustedSeries(rec), nil
}

// Composite aggregates all tracked series into the weighted index over the
// trailing window. A non-positive months falls back to the persisted window
// setting. A non-nil override weight map is normalized and used for this
// query only; otherwise the persisted weights apply.
func (u *Indicators) Composite(ctx context.Context, months int, override map[string]float64) ([]models.CompositePoint, error) {
	records, err := u.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if months <= 0 {
		if months, err = u.repo.MonthsBack(ctx); err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}

	var weights map[string]float64
	if override != nil {
		if err := u.checkKnown(override, records); err != nil {
			return nil, err
		}
		weights = trend.NormalizeWeights(override, ids)
	} else {
		stored, err := u.repo.Weights(ctx)
		if err != nil {
			return nil, err
		}
		weights = trend.NormalizeWeights(stored, ids)
	}

	u.metrics.RecordQuery("composite")
	return trend.Aggregate(records, weights, months, u.fillPolicy), nil
}

// Weights returns the persisted weight map normalized over current series.
func (u *Indicators) Weights(ctx context.Context) (map[string]float64, error) {
	ids, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := u.repo.Weights(ctx)
	if err != nil {
		return nil, err
	}
	return trend.NormalizeWeights(stored, ids), nil
}

// SaveWeights validates that every referenced series is tracked, then
// persists the normalized map. Unknown ids reject the whole update.
func (u *Indicators) SaveWeights(ctx context.Context, weights map[string]float64) (map[string]float64, error) {
	records, err := u.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.checkKnown(weights, records); err != nil {
		return nil, err
	}

	if err := u.repo.SaveWeights(ctx, weights); err != nil {
		return nil, err
	}
	return u.repo.Weights(ctx)
}

// MonthsBack returns the lookback window setting.
func (u *Indicators) MonthsBack(ctx context.Context) (int, error) {
	return u.repo.MonthsBack(ctx)
}

// SetMonthsBack persists a new lookback window. The wider window takes
// effect on the next refresh.
func (u *Indicators) SetMonthsBack(ctx context.Context, months int) error {
	return u.repo.SaveMonthsBack(ctx, months)
}

func (u *Indicators) checkKnown(weights map[string]float64, records map[string]*models.SeriesRecord) error {
	for id := range weights {
		if _, ok := records[id]; !ok {
			return fmt.Errorf("%w: %s", models.ErrUnknownWeightSeries, id)
		}
	}
	return nil
}

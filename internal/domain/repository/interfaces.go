package repository

import (
	"context"
	"time"

	"MacroPulse/internal/domain/models"
)

// ObservationProvider fetches raw observations and metadata from the external
// macro-data source (FRED).
type ObservationProvider interface {
	FetchObservations(ctx context.Context, seriesID string, start, end time.Time) ([]models.Observation, error)
	FetchSeriesTitle(ctx context.Context, seriesID string) (string, error)
}

// SeriesRepository owns all persisted engine state: series records, the
// tracked-id index, the global weight map, and the lookback window setting.
// Mutations on a series key are serialized; concurrent refresh and direction
// updates must not lose writes.
type SeriesRepository interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (*models.SeriesRecord, error)
	GetAll(ctx context.Context) (map[string]*models.SeriesRecord, error)
	Create(ctx context.Context, rec *models.SeriesRecord) error
	Delete(ctx context.Context, id string) error
	// ReplaceObservations swaps in a freshly fetched observation set,
	// preserving the stored name and direction.
	ReplaceObservations(ctx context.Context, id string, obs []models.Observation) error
	UpdateDirection(ctx context.Context, id string, dir models.Direction) error

	Weights(ctx context.Context) (map[string]float64, error)
	SaveWeights(ctx context.Context, weights map[string]float64) error

	MonthsBack(ctx context.Context) (int, error)
	SaveMonthsBack(ctx context.Context, months int) error
}

// ObservationArchive receives fetched observations for long-term retention.
// Writes are best-effort; archive failures never fail a refresh.
type ObservationArchive interface {
	Archive(ctx context.Context, id string, obs []models.Observation) error
	Close() error
}

// EventPublisher emits refresh events for downstream consumers.
type EventPublisher interface {
	SeriesRefreshed(ctx context.Context, id string, observations int) error
	BatchCompleted(ctx context.Context, report *models.RefreshReport) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordRefresh(seriesID, result string)
	RecordFetchLatency(seriesID string, seconds float64)
	RecordObservationCount(seriesID string, n int)
	RecordQuery(kind string)
	RecordError(kind string)
}

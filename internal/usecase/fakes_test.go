package usecase

import (
	"context"
	"sync"
	"time"

	"MacroPulse/internal/domain/models"
)

// fakeProvider serves canned observations per series id.
type fakeProvider struct {
	mu       sync.Mutex
	obs      map[string][]models.Observation
	titles   map[string]string
	fetchErr map[string]error
	titleErr error
	fetches  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		obs:      make(map[string][]models.Observation),
		titles:   make(map[string]string),
		fetchErr: make(map[string]error),
	}
}

func (f *fakeProvider) FetchObservations(_ context.Context, id string, _, _ time.Time) ([]models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, id)
	if err := f.fetchErr[id]; err != nil {
		return nil, err
	}
	return f.obs[id], nil
}

func (f *fakeProvider) FetchSeriesTitle(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.titleErr != nil {
		return "", f.titleErr
	}
	if t, ok := f.titles[id]; ok {
		return t, nil
	}
	return id, nil
}

// fakeArchive records archived ids and can be told to fail.
type fakeArchive struct {
	mu       sync.Mutex
	archived []string
	err      error
}

func (f *fakeArchive) Archive(_ context.Context, id string, _ []models.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.archived = append(f.archived, id)
	return nil
}

func (f *fakeArchive) Close() error { return nil }

// fakePublisher records published events.
type fakePublisher struct {
	mu        sync.Mutex
	refreshed []string
	batches   []*models.RefreshReport
	err       error
}

func (f *fakePublisher) SeriesRefreshed(_ context.Context, id string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.refreshed = append(f.refreshed, id)
	return nil
}

func (f *fakePublisher) BatchCompleted(_ context.Context, report *models.RefreshReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, report)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

// nopMetrics satisfies the Metrics interface.
type nopMetrics struct{}

func (nopMetrics) RecordRefresh(string, string)       {}
func (nopMetrics) RecordFetchLatency(string, float64) {}
func (nopMetrics) RecordObservationCount(string, int) {}
func (nopMetrics) RecordQuery(string)                 {}
func (nopMetrics) RecordError(string)                 {}

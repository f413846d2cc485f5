package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/services/trend"
	"MacroPulse/pkg/kv"
)

const (
	seriesKeyPrefix = "series:"
	indexKey        = "series:index"
	weightsKey      = "weights"
	monthsBackKey   = "settings:months_back"

	defaultMonthsBack = 24

	// casRetries bounds optimistic read-modify-write loops. Contention on a
	// single series key is low (scheduler plus the occasional manual call),
	// so a handful of retries is plenty.
	casRetries = 8
)

// KVSeriesRepository implements SeriesRepository on a kv.Store. Records are
// stored as JSON under "series:<id>"; the tracked-id index, weight map and
// window setting each live under their own key. All read-modify-write
// sequences go through CompareAndSwap so concurrent refreshes and direction
// updates cannot lose writes.
type KVSeriesRepository struct {
	store         kv.Store
	defaultMonths int
}

// NewKVSeriesRepository creates a kv-backed series repository. defaultMonths
// is the configured lookback window, used until the store holds a persisted
// setting; non-positive values fall back to 24.
func NewKVSeriesRepository(store kv.Store, defaultMonths int) drepo.SeriesRepository {
	if defaultMonths <= 0 {
		defaultMonths = defaultMonthsBack
	}
	return &KVSeriesRepository{store: store, defaultMonths: defaultMonths}
}

func seriesKey(id string) string {
	return seriesKeyPrefix + id
}

// List returns the tracked series ids, sorted.
func (r *KVSeriesRepository) List(ctx context.Context) ([]string, error) {
	ids, _, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Get returns one series record, or ErrSeriesNotFound.
func (r *KVSeriesRepository) Get(ctx context.Context, id string) (*models.SeriesRecord, error) {
	b, err := r.store.Get(ctx, seriesKey(id))
	if errors.Is(err, kv.ErrKeyMiss) {
		return nil, models.ErrSeriesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get series %s: %w", id, err)
	}

	var rec models.SeriesRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode series %s: %w", id, err)
	}
	return &rec, nil
}

// GetAll returns every tracked series record keyed by id. Ids present in the
// index but missing a record are skipped.
func (r *KVSeriesRepository) GetAll(ctx context.Context) (map[string]*models.SeriesRecord, error) {
	ids, _, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*models.SeriesRecord, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if errors.Is(err, models.ErrSeriesNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = rec
	}
	return out, nil
}

// Create stores a new series record and adds its id to the index.
func (r *KVSeriesRepository) Create(ctx context.Context, rec *models.SeriesRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode series %s: %w", rec.ID, err)
	}
	if err := r.store.Set(ctx, seriesKey(rec.ID), b); err != nil {
		return fmt.Errorf("store series %s: %w", rec.ID, err)
	}

	return r.updateIndex(ctx, func(ids []string) []string {
		for _, id := range ids {
			if id == rec.ID {
				return ids
			}
		}
		return append(ids, rec.ID)
	})
}

// Delete removes a series record and its index entry.
func (r *KVSeriesRepository) Delete(ctx context.Context, id string) error {
	if err := r.updateIndex(ctx, func(ids []string) []string {
		out := ids[:0]
		for _, v := range ids {
			if v != id {
				out = append(out, v)
			}
		}
		return out
	}); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, seriesKey(id)); err != nil && !errors.Is(err, kv.ErrKeyMiss) {
		return fmt.Errorf("delete series %s: %w", id, err)
	}
	return nil
}

// ReplaceObservations swaps in a fresh observation set while preserving the
// stored name and direction, retrying on concurrent modification.
func (r *KVSeriesRepository) ReplaceObservations(ctx context.Context, id string, obs []models.Observation) error {
	return r.mutateSeries(ctx, id, func(rec *models.SeriesRecord) {
		rec.Observations = obs
	})
}

// UpdateDirection changes the direction flag only.
func (r *KVSeriesRepository) UpdateDirection(ctx context.Context, id string, dir models.Direction) error {
	return r.mutateSeries(ctx, id, func(rec *models.SeriesRecord) {
		rec.Direction = dir
	})
}

// mutateSeries runs a CAS loop around read-mutate-write on one series key.
func (r *KVSeriesRepository) mutateSeries(ctx context.Context, id string, mutate func(*models.SeriesRecord)) error {
	key := seriesKey(id)
	for attempt := 0; attempt < casRetries; attempt++ {
		old, err := r.store.Get(ctx, key)
		if errors.Is(err, kv.ErrKeyMiss) {
			return models.ErrSeriesNotFound
		}
		if err != nil {
			return fmt.Errorf("get series %s: %w", id, err)
		}

		var rec models.SeriesRecord
		if err := json.Unmarshal(old, &rec); err != nil {
			return fmt.Errorf("decode series %s: %w", id, err)
		}

		mutate(&rec)

		b, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("encode series %s: %w", id, err)
		}

		err = r.store.CompareAndSwap(ctx, key, old, b)
		if errors.Is(err, kv.ErrCASConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("store series %s: %w", id, err)
		}
		return nil
	}
	return fmt.Errorf("series %s: %w", id, kv.ErrCASConflict)
}

// Weights returns the persisted weight map, empty when unset.
func (r *KVSeriesRepository) Weights(ctx context.Context) (map[string]float64, error) {
	b, err := r.store.Get(ctx, weightsKey)
	if errors.Is(err, kv.ErrKeyMiss) {
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weights: %w", err)
	}

	var w map[string]float64
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	return w, nil
}

// SaveWeights normalizes then persists the weight map. Stored weights always
// sum to one over the known series.
func (r *KVSeriesRepository) SaveWeights(ctx context.Context, weights map[string]float64) error {
	ids, _, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}

	normalized := trend.NormalizeWeights(weights, ids)
	b, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	if err := r.store.Set(ctx, weightsKey, b); err != nil {
		return fmt.Errorf("store weights: %w", err)
	}
	return nil
}

// MonthsBack returns the lookback window setting, or the configured default
// when none is persisted.
func (r *KVSeriesRepository) MonthsBack(ctx context.Context) (int, error) {
	b, err := r.store.Get(ctx, monthsBackKey)
	if errors.Is(err, kv.ErrKeyMiss) {
		return r.defaultMonths, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get months_back: %w", err)
	}

	var months int
	if err := json.Unmarshal(b, &months); err != nil {
		return 0, fmt.Errorf("decode months_back: %w", err)
	}
	if months <= 0 {
		return r.defaultMonths, nil
	}
	return months, nil
}

// SaveMonthsBack persists the lookback window setting.
func (r *KVSeriesRepository) SaveMonthsBack(ctx context.Context, months int) error {
	b, err := json.Marshal(months)
	if err != nil {
		return fmt.Errorf("encode months_back: %w", err)
	}
	if err := r.store.Set(ctx, monthsBackKey, b); err != nil {
		return fmt.Errorf("store months_back: %w", err)
	}
	return nil
}

func (r *KVSeriesRepository) loadIndex(ctx context.Context) ([]string, []byte, error) {
	b, err := r.store.Get(ctx, indexKey)
	if errors.Is(err, kv.ErrKeyMiss) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get series index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, nil, fmt.Errorf("decode series index: %w", err)
	}
	return ids, b, nil
}

func (r *KVSeriesRepository) updateIndex(ctx context.Context, apply func([]string) []string) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		ids, old, err := r.loadIndex(ctx)
		if err != nil {
			return err
		}

		next := apply(append([]string(nil), ids...))
		b, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode series index: %w", err)
		}

		err = r.store.CompareAndSwap(ctx, indexKey, old, b)
		if errors.Is(err, kv.ErrCASConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("store series index: %w", err)
		}
		return nil
	}
	return fmt.Errorf("series index: %w", kv.ErrCASConflict)
}

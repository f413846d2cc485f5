package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/repository"
	"MacroPulse/internal/services/trend"
	"MacroPulse/pkg/kv"
	applogger "MacroPulse/pkg/logger"
)

func newIndicatorsFixture(t *testing.T) (*Indicators, *fakeProvider, *repository.KVSeriesRepository) {
	t.Helper()
	store := kv.NewMemoryStore()
	repo := repository.NewKVSeriesRepository(store, 0).(*repository.KVSeriesRepository)
	provider := newFakeProvider()
	refresher := NewRefresher(provider, repo, &fakeArchive{}, &fakePublisher{}, nopMetrics{}, store, time.Minute, applogger.Nop())
	u := NewIndicators(repo, provider, refresher, nopMetrics{}, applogger.Nop(), trend.ModeGradient, trend.FillZero)
	return u, provider, repo
}

func seed(t *testing.T, repo *repository.KVSeriesRepository, rec *models.SeriesRecord) {
	t.Helper()
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create(%s): %v", rec.ID, err)
	}
}

func TestRegisterSeriesFetchesTitleAndHistory(t *testing.T) {
	u, provider, _ := newIndicatorsFixture(t)
	provider.titles["UNRATE"] = "Unemployment Rate"
	provider.obs["UNRATE"] = []models.Observation{
		{Month: "2024-01", Value: 3.7},
		{Month: "2024-02", Value: 3.9},
	}

	rec, err := u.RegisterSeries(context.Background(), "UNRATE", models.DirectionNegative)
	if err != nil {
		t.Fatalf("RegisterSeries: %v", err)
	}
	if rec.Name != "Unemployment Rate" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Direction != models.DirectionNegative {
		t.Errorf("direction = %s", rec.Direction)
	}
	if len(rec.Observations) != 2 {
		t.Errorf("initial refresh missing: %+v", rec.Observations)
	}
}

func TestRegisterSeriesTitleFallback(t *testing.T) {
	u, provider, _ := newIndicatorsFixture(t)
	provider.titleErr = errors.New("fred down")

	rec, err := u.RegisterSeries(context.Background(), "GDP", models.DirectionPositive)
	if err != nil {
		t.Fatalf("RegisterSeries: %v", err)
	}
	if rec.Name != "GDP" {
		t.Errorf("name = %q, want fallback to id", rec.Name)
	}
}

func TestRegisterSeriesSurvivesFetchFailure(t *testing.T) {
	u, provider, repo := newIndicatorsFixture(t)
	provider.fetchErr["CPI"] = errors.New("upstream 500")

	if _, err := u.RegisterSeries(context.Background(), "CPI", models.DirectionNegative); err != nil {
		t.Fatalf("RegisterSeries: %v", err)
	}
	if _, err := repo.Get(context.Background(), "CPI"); err != nil {
		t.Errorf("registration rolled back: %v", err)
	}
}

func TestRemoveSeriesRenormalizesWeights(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	ctx := context.Background()
	seed(t, repo, &models.SeriesRecord{ID: "A"})
	seed(t, repo, &models.SeriesRecord{ID: "B"})
	if err := repo.SaveWeights(ctx, map[string]float64{"A": 0.5, "B": 0.5}); err != nil {
		t.Fatalf("SaveWeights: %v", err)
	}

	if err := u.RemoveSeries(ctx, "A"); err != nil {
		t.Fatalf("RemoveSeries: %v", err)
	}

	w, err := u.Weights(ctx)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	if len(w) != 1 || math.Abs(w["B"]-1) > 1e-12 {
		t.Errorf("weights = %v, want B=1", w)
	}
}

func TestHeatmapUnknownSeries(t *testing.T) {
	u, _, _ := newIndicatorsFixture(t)
	if _, err := u.Heatmap(context.Background(), "NOPE", 24, ""); !errors.Is(err, models.ErrSeriesNotFound) {
		t.Fatalf("got %v, want ErrSeriesNotFound", err)
	}
}

func TestHeatmapClassifies(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	seed(t, repo, &models.SeriesRecord{
		ID:        "GDP",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2024-01", Value: 100},
			{Month: "2024-02", Value: 101},
			{Month: "2024-03", Value: 99},
		},
	})

	cells, err := u.Heatmap(context.Background(), "GDP", 24, "discrete")
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if len(cells) != 3 {
		t.Fatalf("cells = %+v", cells)
	}
	if cells[0].Signal.Level != models.LevelNeutral {
		t.Errorf("first cell = %s, want neutral", cells[0].Signal.Level)
	}
	if cells[1].Signal.Level != models.LevelFavorable {
		t.Errorf("rising month = %s, want favorable", cells[1].Signal.Level)
	}
	if cells[2].Signal.Level != models.LevelUnfavorable {
		t.Errorf("falling month = %s, want unfavorable", cells[2].Signal.Level)
	}
}

func TestCompositeWithStoredWeights(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	ctx := context.Background()
	seed(t, repo, &models.SeriesRecord{
		ID:        "A",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2024-01", Value: 10},
			{Month: "2024-02", Value: 11},
		},
	})
	seed(t, repo, &models.SeriesRecord{
		ID:        "B",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2024-01", Value: 20},
			{Month: "2024-02", Value: 22},
		},
	})

	points, err := u.Composite(ctx, 24, nil)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %+v", points)
	}
	if math.Abs(points[0].Value-1.0) > 1e-9 {
		t.Errorf("first point = %v, want 1.0", points[0].Value)
	}
	if math.Abs(points[1].Value-1.1) > 1e-9 {
		t.Errorf("second point = %v, want 1.1", points[1].Value)
	}
}

func TestCompositeOverrideUnknownSeries(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	seed(t, repo, &models.SeriesRecord{ID: "A"})

	_, err := u.Composite(context.Background(), 24, map[string]float64{"ZZZ": 1})
	if !errors.Is(err, models.ErrUnknownWeightSeries) {
		t.Fatalf("got %v, want ErrUnknownWeightSeries", err)
	}
}

func TestSaveWeightsRejectsUnknown(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	ctx := context.Background()
	seed(t, repo, &models.SeriesRecord{ID: "A"})
	if err := repo.SaveWeights(ctx, map[string]float64{"A": 1}); err != nil {
		t.Fatalf("SaveWeights: %v", err)
	}

	_, err := u.SaveWeights(ctx, map[string]float64{"A": 0.5, "ZZZ": 0.5})
	if !errors.Is(err, models.ErrUnknownWeightSeries) {
		t.Fatalf("got %v, want ErrUnknownWeightSeries", err)
	}

	// Stored weights untouched by the rejected update.
	w, _ := u.Weights(ctx)
	if math.Abs(w["A"]-1) > 1e-12 {
		t.Errorf("weights mutated by rejected update: %v", w)
	}
}

func TestSaveWeightsNormalizes(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	ctx := context.Background()
	seed(t, repo, &models.SeriesRecord{ID: "A"})
	seed(t, repo, &models.SeriesRecord{ID: "B"})

	w, err := u.SaveWeights(ctx, map[string]float64{"A": 3, "B": 1})
	if err != nil {
		t.Fatalf("SaveWeights: %v", err)
	}
	if math.Abs(w["A"]-0.75) > 1e-12 || math.Abs(w["B"]-0.25) > 1e-12 {
		t.Errorf("weights = %v", w)
	}
}

func TestWindowSetting(t *testing.T) {
	u, _, _ := newIndicatorsFixture(t)
	ctx := context.Background()

	if err := u.SetMonthsBack(ctx, 36); err != nil {
		t.Fatalf("SetMonthsBack: %v", err)
	}
	months, err := u.MonthsBack(ctx)
	if err != nil {
		t.Fatalf("MonthsBack: %v", err)
	}
	if months != 36 {
		t.Errorf("months = %d, want 36", months)
	}
}

func TestWindowSettingAppliesWhenMonthsUnset(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	ctx := context.Background()
	obs := []models.Observation{
		{Month: "2024-01", Value: 100},
		{Month: "2024-02", Value: 101},
		{Month: "2024-03", Value: 102},
		{Month: "2024-04", Value: 103},
	}
	seed(t, repo, &models.SeriesRecord{ID: "GDP", Direction: models.DirectionPositive, Observations: obs})

	if err := u.SetMonthsBack(ctx, 2); err != nil {
		t.Fatalf("SetMonthsBack: %v", err)
	}

	cells, err := u.Heatmap(ctx, "GDP", 0, "")
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if len(cells) != 2 {
		t.Errorf("heatmap cells = %d, want the stored window of 2", len(cells))
	}

	points, err := u.Composite(ctx, 0, nil)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if len(points) != 2 {
		t.Errorf("composite points = %d, want the stored window of 2", len(points))
	}

	// An explicit months still overrides the stored setting.
	cells, err = u.Heatmap(ctx, "GDP", 3, "")
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if len(cells) != 3 {
		t.Errorf("heatmap cells = %d, want 3", len(cells))
	}
}

func TestListSeriesSummaries(t *testing.T) {
	u, _, repo := newIndicatorsFixture(t)
	seed(t, repo, &models.SeriesRecord{
		ID:        "UNRATE",
		Name:      "Unemployment Rate",
		Direction: models.DirectionNegative,
		Observations: []models.Observation{
			{Month: "2024-02", Value: 3.9},
			{Month: "2024-01", Value: 3.7},
		},
	})

	list, err := u.ListSeries(context.Background())
	if err != nil {
		t.Fatalf("ListSeries: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}
	s := list[0]
	if s.LatestMonth != "2024-02" || s.LatestValue != 3.9 {
		t.Errorf("latest = %s=%v, want 2024-02=3.9", s.LatestMonth, s.LatestValue)
	}
}

package trend

import (
	"testing"

	"MacroPulse/internal/domain/models"
)

func TestBuildMonthlyScenario(t *testing.T) {
	// 0% then +10%: neutral, neutral, favorable
	rec := &models.SeriesRecord{
		ID:        "X",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2024-01", Value: 100},
			{Month: "2024-02", Value: 100},
			{Month: "2024-03", Value: 110},
		},
	}
	c := mustClassifier(t, ModeDiscrete)

	cells := BuildMonthly(rec, 3, c)
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	want := []models.Level{models.LevelNeutral, models.LevelNeutral, models.LevelFavorable}
	for i, w := range want {
		if cells[i].Signal.Level != w {
			t.Fatalf("cell %d: got %v want %v", i, cells[i].Signal.Level, w)
		}
	}
}

func TestBuildMonthlyWindowBoundary(t *testing.T) {
	// The first cell inside the window is neutral even though a predecessor
	// exists; cells after it classify against full sorted order.
	rec := &models.SeriesRecord{
		ID:        "X",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2024-01", Value: 100},
			{Month: "2024-02", Value: 110},
			{Month: "2024-03", Value: 121},
		},
	}
	c := mustClassifier(t, ModeDiscrete)

	cells := BuildMonthly(rec, 2, c)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].Month != "2024-02" || cells[0].Signal.Level != models.LevelNeutral {
		t.Fatalf("window head should be neutral, got %v at %s", cells[0].Signal.Level, cells[0].Month)
	}
	if cells[1].Signal.Level != models.LevelFavorable {
		t.Fatalf("expected favorable, got %v", cells[1].Signal.Level)
	}
}

func TestBuildMonthlySortsDefensively(t *testing.T) {
	rec := &models.SeriesRecord{
		ID:        "X",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2024-03", Value: 110},
			{Month: "2024-01", Value: 100},
			{Month: "2024-02", Value: 100},
		},
	}
	c := mustClassifier(t, ModeDiscrete)

	cells := BuildMonthly(rec, 0, c)
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	for i, m := range []string{"2024-01", "2024-02", "2024-03"} {
		if cells[i].Month != m {
			t.Fatalf("cell %d: got month %s want %s", i, cells[i].Month, m)
		}
	}
	if cells[2].Signal.Level != models.LevelFavorable {
		t.Fatalf("expected favorable tail, got %v", cells[2].Signal.Level)
	}
}

func TestBuildMonthlyOneCellPerObservation(t *testing.T) {
	// Sparse history: no cells synthesized for missing calendar months.
	rec := &models.SeriesRecord{
		ID:        "X",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2023-11", Value: 100},
			{Month: "2024-02", Value: 105},
		},
	}
	c := mustClassifier(t, ModeGradient)

	cells := BuildMonthly(rec, 24, c)
	if len(cells) != 2 {
		t.Fatalf("expected one cell per observation, got %d", len(cells))
	}
}

func TestBuildMonthlyEmpty(t *testing.T) {
	c := mustClassifier(t, ModeGradient)
	if cells := BuildMonthly(&models.SeriesRecord{ID: "X"}, 12, c); len(cells) != 0 {
		t.Fatalf("expected no cells, got %d", len(cells))
	}
	if cells := BuildMonthly(nil, 12, c); cells != nil {
		t.Fatalf("nil record should yield nil")
	}
}

func TestBuildMonthlyAccelerationWindow(t *testing.T) {
	// Acceleration mode needs three values: the second cell in full history
	// still lacks a second derivative and stays neutral.
	rec := &models.SeriesRecord{
		ID:        "X",
		Direction: models.DirectionPositive,
		Observations: []models.Observation{
			{Month: "2024-01", Value: 100},
			{Month: "2024-02", Value: 101},
			{Month: "2024-03", Value: 104},
		},
	}
	c := mustClassifier(t, ModeAcceleration)

	cells := BuildMonthly(rec, 0, c)
	want := []models.Level{models.LevelNeutral, models.LevelNeutral, models.LevelFavorable}
	for i, w := range want {
		if cells[i].Signal.Level != w {
			t.Fatalf("cell %d: got %v want %v", i, cells[i].Signal.Level, w)
		}
	}
}

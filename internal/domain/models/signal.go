package models

import "time"

// Level is the discrete trend reading behind a heatmap cell.
type Level string

const (
	LevelNeutral     Level = "neutral"
	LevelFavorable   Level = "favorable"
	LevelUnfavorable Level = "unfavorable"
	// LevelMixed is the acceleration-mode yellow: moving, but the move is
	// losing steam (or a bad move that is slowing down).
	LevelMixed Level = "mixed"
)

// Signal is the classification of one month-over-month move.
// Intensity is 0..1 and drives the color gradient; Color is the heatmap hex.
type Signal struct {
	Level     Level   `json:"level"`
	Intensity float64 `json:"intensity"`
	Color     string  `json:"color"`
}

// MonthCell pairs a month key with its signal for heatmap rendering.
type MonthCell struct {
	Month  string `json:"month"`
	Signal Signal `json:"signal"`
}

// CompositePoint is one point of the aggregated index. Derived on demand
// from current SeriesRecords and weights, never persisted.
type CompositePoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// RefreshReport summarizes a batch refresh. One series failing never aborts
// the batch; its reason lands in Errors.
type RefreshReport struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
	Took      time.Duration     `json:"took"`
	StartedAt time.Time         `json:"started_at"`
}

package models

import "sort"

// Direction states whether an increase in a series' value is economically
// favorable (GDP) or unfavorable (unemployment, inflation).
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// IsValidDirection reports whether d is a supported direction.
func IsValidDirection(d Direction) bool {
	return d == DirectionPositive || d == DirectionNegative
}

// NormalizeDirection converts a raw string to a valid direction (or positive).
func NormalizeDirection(s string) Direction {
	d := Direction(s)
	if IsValidDirection(d) {
		return d
	}
	return DirectionPositive
}

// Observation is one monthly data point. Month is a "YYYY-MM" calendar key;
// a series holds at most one observation per month.
type Observation struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// SeriesRecord is the stored state of one tracked series. A refresh replaces
// Observations and preserves Name and Direction; a direction update replaces
// Direction only.
type SeriesRecord struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Direction    Direction     `json:"direction"`
	Observations []Observation `json:"observations"`
}

// SortedObservations returns the observations ordered by month ascending
// without mutating the record. Storage order is not trusted.
func (r *SeriesRecord) SortedObservations() []Observation {
	obs := make([]Observation, len(r.Observations))
	copy(obs, r.Observations)
	sort.Slice(obs, func(i, j int) bool { return obs[i].Month < obs[j].Month })
	return obs
}

// Latest returns the most recent observation, if any.
func (r *SeriesRecord) Latest() (Observation, bool) {
	if len(r.Observations) == 0 {
		return Observation{}, false
	}
	obs := r.SortedObservations()
	return obs[len(obs)-1], true
}

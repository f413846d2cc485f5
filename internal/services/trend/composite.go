package trend

import (
	"math"

	"MacroPulse/internal/domain/models"
)

// FillPolicy controls how the composite treats months before a late-starting
// series' first observation.
type FillPolicy string

const (
	// FillZero keeps the aligner's leading zeros in the weighted sum.
	FillZero FillPolicy = "zero-fill"
	// FillRenormalize excludes a series from the sum until its first
	// observation and renormalizes the remaining weights per row.
	FillRenormalize FillPolicy = "renormalize"
)

// NormalizeFillPolicy converts a raw string to a valid policy (or the default).
func NormalizeFillPolicy(s string) FillPolicy {
	if FillPolicy(s) == FillRenormalize {
		return FillRenormalize
	}
	return FillZero
}

// AdjustedSeries rebases a series to start near 1 and flips unfavorable
// directions, so "improvement" always increases the adjusted value. The
// baseline v0 is the first value of the series' own observation history.
// A zero baseline degrades to identity (positive) or negation (negative)
// rather than erroring.
func AdjustedSeries(rec *models.SeriesRecord) []models.Observation {
	if rec == nil {
		return nil
	}
	obs := rec.SortedObservations()
	if len(obs) == 0 {
		return nil
	}

	v0 := obs[0].Value
	adjusted := make([]models.Observation, len(obs))
	for i, o := range obs {
		var v float64
		switch {
		case v0 == 0 && rec.Direction == models.DirectionNegative:
			v = -o.Value
		case v0 == 0:
			v = o.Value
		case rec.Direction == models.DirectionNegative:
			v = -1*(o.Value-v0)/math.Abs(v0) + 1
		default:
			v = (o.Value-v0)/math.Abs(v0) + 1
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		adjusted[i] = models.Observation{Month: o.Month, Value: v}
	}
	return adjusted
}

// Aggregate computes the weighted composite index over the given records.
// Each series is direction-adjusted and baseline-normalized, the adjusted
// series are aligned onto one timeline, and each row is the weighted sum of
// its columns. Weights are expected normalized (sum 1); a series present in
// the table but absent from weights contributes nothing. Truncation to the
// last windowMonths rows happens after alignment, so forward-fill always
// sees the full history.
func Aggregate(records map[string]*models.SeriesRecord, weights map[string]float64, windowMonths int, policy FillPolicy) []models.CompositePoint {
	if len(records) == 0 {
		return nil
	}

	adjusted := make(map[string][]models.Observation, len(records))
	for id, rec := range records {
		adjusted[id] = AdjustedSeries(rec)
	}

	table := Align(adjusted)
	first := FirstObserved(adjusted)

	points := make([]models.CompositePoint, len(table.Months))
	for i, month := range table.Months {
		var sum float64
		switch policy {
		case FillRenormalize:
			var active float64
			for id := range table.Columns {
				if first[id] <= month {
					active += weights[id]
				}
			}
			if active > 0 {
				for id, col := range table.Columns {
					if first[id] <= month {
						sum += weights[id] / active * col[i]
					}
				}
			}
		default:
			for id, col := range table.Columns {
				sum += weights[id] * col[i]
			}
		}
		points[i] = models.CompositePoint{Month: month, Value: sum}
	}

	if windowMonths > 0 && len(points) > windowMonths {
		points = points[len(points)-windowMonths:]
	}
	return points
}

package trend

import (
	"sort"

	"MacroPulse/internal/domain/models"
)

// Table is the aligned view of multiple series on a shared monthly timeline.
// Columns are parallel to Months.
type Table struct {
	Months  []string
	Columns map[string][]float64
}

// Align merges series onto the union of their months (outer join on date).
// Gaps are forward-filled with the most recent prior value for that column;
// months before a column's first observation are filled with zero. The
// leading zero-fill understates early composite values for late-starting
// series; Aggregate offers a renormalizing policy instead.
func Align(series map[string][]models.Observation) *Table {
	monthSet := make(map[string]struct{})
	byMonth := make(map[string]map[string]float64, len(series))

	for id, obs := range series {
		col := make(map[string]float64, len(obs))
		for _, o := range obs {
			col[o.Month] = o.Value
			monthSet[o.Month] = struct{}{}
		}
		byMonth[id] = col
	}

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	columns := make(map[string][]float64, len(series))
	for id := range series {
		col := make([]float64, len(months))
		var last float64
		seen := false
		for i, m := range months {
			if v, ok := byMonth[id][m]; ok {
				last = v
				seen = true
			}
			if seen {
				col[i] = last
			}
		}
		columns[id] = col
	}

	return &Table{Months: months, Columns: columns}
}

// FirstObserved returns the earliest month with a stored observation per id.
func FirstObserved(series map[string][]models.Observation) map[string]string {
	first := make(map[string]string, len(series))
	for id, obs := range series {
		for _, o := range obs {
			if f, ok := first[id]; !ok || o.Month < f {
				first[id] = o.Month
			}
		}
	}
	return first
}

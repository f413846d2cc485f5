package trend

import "MacroPulse/internal/domain/models"

// BuildMonthly walks the series' observations in time order and produces one
// classification per stored observation inside the lookback window. The first
// cell in the window is always neutral: that is a windowing boundary, not a
// data gap. Later cells classify against the trailing observations in full
// sorted order, so the oldest visible cells still see their predecessors.
//
// Missing calendar months are not synthesized; consumers mapping cells onto a
// fixed grid treat absent months as neutral.
func BuildMonthly(rec *models.SeriesRecord, windowMonths int, c Classifier) []models.MonthCell {
	if rec == nil {
		return nil
	}
	obs := rec.SortedObservations()
	if len(obs) == 0 {
		return nil
	}

	start := 0
	if windowMonths > 0 && len(obs) > windowMonths {
		start = len(obs) - windowMonths
	}

	need := c.Window()
	cells := make([]models.MonthCell, 0, len(obs)-start)
	for g := start; g < len(obs); g++ {
		if g == start || g+1 < need {
			cells = append(cells, models.MonthCell{Month: obs[g].Month, Signal: neutralSignal()})
			continue
		}
		values := make([]float64, need)
		for i := 0; i < need; i++ {
			values[i] = obs[g+1-need+i].Value
		}
		cells = append(cells, models.MonthCell{
			Month:  obs[g].Month,
			Signal: c.Classify(values, rec.Direction),
		})
	}
	return cells
}

package models

import "errors"

var (
	// ErrSeriesNotFound means the series id is not tracked / has no record.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrUnknownWeightSeries means a weight map referenced a series id that
	// is not tracked; weights are rejected before any persisted state changes.
	ErrUnknownWeightSeries = errors.New("weight references unknown series")

	// ErrRefreshRunning means a batch refresh is already in flight.
	ErrRefreshRunning = errors.New("refresh already running")
)

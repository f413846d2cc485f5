package models

// Requests for the indicators HTTP endpoints. Defined in domain for
// consistency and reuse.

// HeatmapRequest's zero values defer to settings: months falls back to the
// persisted window, mode to the configured classifier.
type HeatmapRequest struct {
	ID     string `param:"id" json:"id" validate:"required"`
	Months int    `query:"months" json:"months" validate:"omitempty,gte=1,lte=240"`
	Mode   string `query:"mode" json:"mode" validate:"omitempty,oneof=discrete gradient acceleration"`
}

type AdjustedRequest struct {
	ID string `param:"id" json:"id" validate:"required"`
}

type CompositeRequest struct {
	Months  int                `query:"months" json:"months" validate:"omitempty,gte=1,lte=240"`
	Weights map[string]float64 `json:"weights,omitempty"`
}

type RegisterSeriesRequest struct {
	ID        string `json:"id" validate:"required,max=64"`
	Direction string `json:"direction" default:"positive" validate:"oneof=positive negative"`
}

type DirectionRequest struct {
	ID        string `param:"id" json:"id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=positive negative"`
}

type WeightsRequest struct {
	Weights map[string]float64 `json:"weights" validate:"required"`
}

type WindowRequest struct {
	Months int `json:"months" validate:"required,gte=1,lte=240"`
}

package api

import (
	"errors"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/usecase"
	xhttp "MacroPulse/pkg/http"
	xlogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// IndicatorsHandler exposes the engine over HTTP.
type IndicatorsHandler struct {
	logger     *xlogger.Logger
	indicators *usecase.Indicators
	refresher  *usecase.Refresher
}

func NewIndicatorsHandler(logger *xlogger.Logger, indicators *usecase.Indicators, refresher *usecase.Refresher) *IndicatorsHandler {
	return &IndicatorsHandler{
		logger:     logger,
		indicators: indicators,
		refresher:  refresher,
	}
}

func (h *IndicatorsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/series", h.ListSeries)
	g.POST("/series", h.RegisterSeries)
	g.DELETE("/series/:id", h.RemoveSeries)
	g.PUT("/series/:id/direction", h.SetDirection)
	g.GET("/series/:id/heatmap", h.Heatmap)
	g.GET("/series/:id/adjusted", h.Adjusted)

	g.GET("/composite", h.Composite)
	g.POST("/composite", h.CompositePreview)

	g.GET("/weights", h.Weights)
	g.PUT("/weights", h.SaveWeights)

	g.GET("/settings/window", h.Window)
	g.PUT("/settings/window", h.SaveWindow)

	g.POST("/refresh", h.Refresh)
}

func (h *IndicatorsHandler) ListSeries(c echo.Context) error {
	list, err := h.indicators.ListSeries(c.Request().Context())
	if err != nil {
		return h.fail(c, "list series", err)
	}
	return xhttp.DataResponse(c, list)
}

func (h *IndicatorsHandler) RegisterSeries(c echo.Context) error {
	req := &models.RegisterSeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.indicators.RegisterSeries(c.Request().Context(), req.ID, models.NormalizeDirection(req.Direction))
	if err != nil {
		return h.fail(c, "register series", err)
	}
	return xhttp.CreatedResponse(c, rec)
}

func (h *IndicatorsHandler) RemoveSeries(c echo.Context) error {
	id := c.Param("id")
	if err := h.indicators.RemoveSeries(c.Request().Context(), id); err != nil {
		return h.fail(c, "remove series", err)
	}
	return xhttp.SuccessResponse(c, "series removed")
}

func (h *IndicatorsHandler) SetDirection(c echo.Context) error {
	req := &models.DirectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	err := h.indicators.SetDirection(c.Request().Context(), req.ID, models.NormalizeDirection(req.Direction))
	if err != nil {
		return h.fail(c, "set direction", err)
	}
	return xhttp.SuccessResponse(c, "direction updated")
}

func (h *IndicatorsHandler) Heatmap(c echo.Context) error {
	req := &models.HeatmapRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cells, err := h.indicators.Heatmap(c.Request().Context(), req.ID, req.Months, req.Mode)
	if err != nil {
		return h.fail(c, "heatmap", err)
	}
	return xhttp.DataResponse(c, cells)
}

func (h *IndicatorsHandler) Adjusted(c echo.Context) error {
	req := &models.AdjustedRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	obs, err := h.indicators.Adjusted(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, "adjusted", err)
	}
	return xhttp.DataResponse(c, obs)
}

func (h *IndicatorsHandler) Composite(c echo.Context) error {
	// Zero defers to the persisted window setting.
	months := util.ParseIntDefault(c.QueryParam("months"), 0)

	points, err := h.indicators.Composite(c.Request().Context(), months, nil)
	if err != nil {
		return h.fail(c, "composite", err)
	}
	return xhttp.DataResponse(c, points)
}

// CompositePreview computes the composite with a one-off weight override
// without persisting anything.
func (h *IndicatorsHandler) CompositePreview(c echo.Context) error {
	req := &models.CompositeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	points, err := h.indicators.Composite(c.Request().Context(), req.Months, req.Weights)
	if err != nil {
		return h.fail(c, "composite preview", err)
	}
	return xhttp.DataResponse(c, points)
}

func (h *IndicatorsHandler) Weights(c echo.Context) error {
	w, err := h.indicators.Weights(c.Request().Context())
	if err != nil {
		return h.fail(c, "weights", err)
	}
	return xhttp.DataResponse(c, w)
}

func (h *IndicatorsHandler) SaveWeights(c echo.Context) error {
	req := &models.WeightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	w, err := h.indicators.SaveWeights(c.Request().Context(), req.Weights)
	if err != nil {
		return h.fail(c, "save weights", err)
	}
	return xhttp.DataResponse(c, w)
}

func (h *IndicatorsHandler) Window(c echo.Context) error {
	months, err := h.indicators.MonthsBack(c.Request().Context())
	if err != nil {
		return h.fail(c, "window", err)
	}
	return xhttp.DataResponse(c, map[string]int{"months": months})
}

func (h *IndicatorsHandler) SaveWindow(c echo.Context) error {
	req := &models.WindowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.indicators.SetMonthsBack(c.Request().Context(), req.Months); err != nil {
		return h.fail(c, "save window", err)
	}
	return xhttp.SuccessResponse(c, "window updated")
}

func (h *IndicatorsHandler) Refresh(c echo.Context) error {
	report, err := h.refresher.RefreshAll(c.Request().Context())
	if err != nil {
		return h.fail(c, "refresh", err)
	}
	return xhttp.DataResponse(c, report)
}

// fail maps domain errors onto HTTP responses.
func (h *IndicatorsHandler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrSeriesNotFound):
		return xhttp.NotFoundResponse(c, err.Error())
	case errors.Is(err, models.ErrUnknownWeightSeries):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.Is(err, models.ErrRefreshRunning):
		return xhttp.ConflictResponse(c, err.Error())
	default:
		h.logger.Error(op+" failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
}

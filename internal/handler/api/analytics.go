package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/usecase"
	xhttp "PairPulse/pkg/http"
	xlogger "PairPulse/pkg/logger"
)

// AnalyticsHandler serves on-demand pair analytics snapshots.
type AnalyticsHandler struct {
	logger *xlogger.Logger
	pair   *usecase.PairAnalyticsUseCase
}

func NewAnalyticsHandler(logger *xlogger.Logger, pair *usecase.PairAnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{logger: logger, pair: pair}
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/analytics/pair", h.Pair)
}

func (h *AnalyticsHandler) Pair(c echo.Context) error {
	req := &models.PairAnalyticsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.pair.Snapshot(c.Request().Context(), usecase.PairRequest{
		SymbolA:          strings.ToLower(req.SymbolA),
		SymbolB:          strings.ToLower(req.SymbolB),
		Timeframe:        domrepo.Timeframe(req.TF),
		Window:           req.Window,
		Limit:            req.Limit,
		IncludeIntercept: req.Intercept != "false",
		WithADF:          req.WithADF,
	})
	if err != nil {
		h.logger.Error("pair analytics failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

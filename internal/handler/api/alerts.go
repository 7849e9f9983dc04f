package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"PairPulse/internal/domain/models"
	"PairPulse/internal/usecase"
	xhttp "PairPulse/pkg/http"
	xlogger "PairPulse/pkg/logger"
)

// AlertsHandler exposes alert rule CRUD and the firing history.
type AlertsHandler struct {
	logger *xlogger.Logger
	engine *usecase.AlertEngine
}

func NewAlertsHandler(logger *xlogger.Logger, engine *usecase.AlertEngine) *AlertsHandler {
	return &AlertsHandler{logger: logger, engine: engine}
}

func (h *AlertsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/alerts")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.PATCH("/:id", h.Toggle)
	g.DELETE("/:id", h.Delete)
	g.GET("/history", h.History)
}

func (h *AlertsHandler) Create(c echo.Context) error {
	req := &usecase.CreateAlertParams{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rule, err := h.engine.Create(*req)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	return xhttp.CreatedResponse(c, rule)
}

func (h *AlertsHandler) List(c echo.Context) error {
	rules := h.engine.List()
	return xhttp.ListResponse(c, rules, int64(len(rules)))
}

type toggleRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *AlertsHandler) Toggle(c echo.Context) error {
	req := &toggleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id := c.Param("id")
	rule, err := h.engine.SetActive(id, *req.Active)
	if err != nil {
		if errors.Is(err, usecase.ErrAlertNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("alert rule %s not found", id))
		}
		h.logger.Error("alert toggle failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, rule)
}

func (h *AlertsHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.engine.Delete(id); err != nil {
		if errors.Is(err, usecase.ErrAlertNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("alert rule %s not found", id))
		}
		h.logger.Error("alert delete failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.NoContentResponse(c)
}

func (h *AlertsHandler) History(c echo.Context) error {
	req := &models.AlertHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	events := h.engine.Events(req.Limit)
	return xhttp.ListResponse(c, events, int64(len(events)))
}

package api

import (
	"github.com/labstack/echo/v4"

	"PairPulse/internal/buffer"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/usecase"
	xhttp "PairPulse/pkg/http"
	xlogger "PairPulse/pkg/logger"
)

// HealthHandler reports pipeline liveness: storage reachability, per-symbol
// stream states and hot buffer depths.
type HealthHandler struct {
	logger    *xlogger.Logger
	store     drepo.TickStore
	collector *usecase.TickCollector
	buf       *buffer.TickBuffer
}

func NewHealthHandler(logger *xlogger.Logger, store drepo.TickStore, collector *usecase.TickCollector, buf *buffer.TickBuffer) *HealthHandler {
	return &HealthHandler{logger: logger, store: store, collector: collector, buf: buf}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	storage := "ok"
	if err := h.store.Health(c.Request().Context()); err != nil {
		storage = "unreachable"
		h.logger.Warn("storage health check failed", xlogger.Error(err))
	}

	streams := make(map[string]interface{})
	for _, symbol := range h.collector.Watched() {
		streams[symbol] = map[string]interface{}{
			"state":    string(h.collector.State(symbol)),
			"buffered": h.buf.Len(symbol),
		}
	}

	status := "ok"
	if storage != "ok" {
		status = "degraded"
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":  status,
		"storage": storage,
		"streams": streams,
	})
}

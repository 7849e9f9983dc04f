package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"PairPulse/internal/usecase"
	xhttp "PairPulse/pkg/http"
	xlogger "PairPulse/pkg/logger"
)

const liveWriteTimeout = 5 * time.Second

// LiveHandler bridges the broadcaster to WebSocket clients. Each connection
// gets its own subscriber; a slow socket loses frames rather than stalling
// the broadcast loop.
type LiveHandler struct {
	logger      *xlogger.Logger
	broadcaster *usecase.LiveBroadcaster
	upgrader    websocket.Upgrader
}

func NewLiveHandler(logger *xlogger.Logger, broadcaster *usecase.LiveBroadcaster) *LiveHandler {
	return &LiveHandler{
		logger:      logger,
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *LiveHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/live", h.Live)
	e.GET("/api/live/latest", h.Latest)
}

// Latest returns the most recent broadcast frame without a socket.
func (h *LiveHandler) Latest(c echo.Context) error {
	payload := h.broadcaster.Latest()
	if payload == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no live data yet"))
	}
	return xhttp.SuccessResponse(c, payload)
}

func (h *LiveHandler) Live(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(sub)

	// reader goroutine: surfaces client close, inbound frames are ignored
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case payload, ok := <-sub.C():
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteJSON(payload); err != nil {
				h.logger.Debug("live socket write failed", xlogger.Error(err))
				return nil
			}
		}
	}
}

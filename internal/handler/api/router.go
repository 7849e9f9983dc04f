package api

import (
	"github.com/labstack/echo/v4"
)

// Router aggregates all API handlers into one route registrar.
type Router struct {
	data      *MarketDataHandler
	analytics *AnalyticsHandler
	alerts    *AlertsHandler
	live      *LiveHandler
	health    *HealthHandler
}

func NewRouter(data *MarketDataHandler, analytics *AnalyticsHandler, alerts *AlertsHandler, live *LiveHandler, health *HealthHandler) *Router {
	return &Router{data: data, analytics: analytics, alerts: alerts, live: live, health: health}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.data.RegisterRoutes(e)
	r.analytics.RegisterRoutes(e)
	r.alerts.RegisterRoutes(e)
	r.live.RegisterRoutes(e)
	r.health.RegisterRoutes(e)
}

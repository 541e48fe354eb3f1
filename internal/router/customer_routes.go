package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/access"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
)

// RegisterCustomer registers session-scoped endpoints under /v1/my.  Any
// signed-in user (or the local admin) may call them.
func RegisterCustomer(e *echo.Echo, h *handler.ReservationHandler, resolver access.Resolver, log *zap.Logger) {
	g := e.Group("/v1/my", middleware.RequireAccess(resolver, false, log))
	g.GET("/reservations", h.Mine)
}

package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/access"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that need neither a session nor CORS:
// the health check used by load balancers.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers /v1/auth.  Login issues access tokens; /me
// reports whatever identity the caller resolves to, anonymous included.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, limit)
	g.GET("/me", a.Me)
}

// RegisterAvailability registers the public availability endpoint.  The
// whole group answers with permissive CORS headers and OPTIONS gets 200.
// GET answers are cached; both lookups are rate limited.
func RegisterAvailability(e *echo.Echo, h *handler.AvailabilityHandler, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/availability", middleware.PermissiveCORS())
	g.POST("", h.Post, limit)
	g.GET("", h.Get, limit, cache)
	g.OPTIONS("", h.Options)
}

// RegisterAdmin registers the admin panel API.  Every route requires the
// admin role or the local admin flag.
func RegisterAdmin(e *echo.Echo, d *handler.DashboardHandler, r *handler.ReservationHandler, resolver access.Resolver, log *zap.Logger) {
	g := e.Group("/v1/admin", middleware.RequireAccess(resolver, true, log))

	g.GET("/dashboard", d.Get)
	g.PUT("/dashboard/date", d.SetDate)
	g.POST("/dashboard/advance", d.Advance)
	g.GET("/dashboard/stream", d.Stream)

	g.GET("/reservations", r.List)
	g.PATCH("/reservations/:id/status", r.UpdateStatus)
	g.GET("/tables", r.ListTables)
}

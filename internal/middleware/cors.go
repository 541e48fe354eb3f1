package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Headers browsers may send to the availability endpoint.
const corsAllowHeaders = "authorization, x-client-info, apikey, content-type"

// PermissiveCORS allows any origin and answers every OPTIONS request with
// 200 and an empty body.  Echo's CORS middleware replies 204 to
// preflights, which some embedded widgets reject.
func PermissiveCORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}

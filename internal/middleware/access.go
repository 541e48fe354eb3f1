package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/access"
	"github.com/iliyamo/table-reservation/internal/model"
)

// Context keys set by RequireAccess.
const (
	ContextIdentity = "identity"
	ContextUserID   = "user_id"
)

// RequireAccess guards a route group with the access rules.  Each request
// runs one identity check: browsers that were denied are redirected with
// 303, API clients get 401 (no session) or 403 (session without the
// admin role) with the redirect target in the body.  A failing identity
// lookup is a 500.
func RequireAccess(resolver access.Resolver, requireAdmin bool, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			check := access.NewCheck(requireAdmin)
			d, err := check.Evaluate(req.Context(), resolver, req)
			if err != nil {
				log.Error("identity resolution failed", zap.String("path", req.URL.Path), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "identity resolution failed"})
			}
			id, _ := check.Identity()
			if !d.Allowed {
				if wantsHTML(req) {
					return c.Redirect(http.StatusSeeOther, d.Redirect)
				}
				status, msg := http.StatusUnauthorized, "unauthorized"
				if id.HasSession {
					status, msg = http.StatusForbidden, "forbidden"
				}
				return c.JSON(status, echo.Map{"error": msg, "redirect": d.Redirect})
			}
			c.Set(ContextIdentity, id)
			if id.UserID != 0 {
				c.Set(ContextUserID, id.UserID)
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by RequireAccess.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(ContextIdentity).(model.Identity)
	return id, ok
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

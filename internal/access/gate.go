// Package access decides whether a viewer may see admin-scoped or
// session-scoped routes.  Every route guard in the service goes through
// CanAccess so the rules live in one place.
package access

import (
	"context"
	"net/http"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Redirect targets for denied requests.
const (
	AdminAuthPath = "/admin/auth"
	HomePath      = "/"
)

// Decision is the outcome of CanAccess: either allowed, or denied with a
// redirect target.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// Allow grants access.
func Allow() Decision { return Decision{Allowed: true} }

// DenyRedirect denies access and sends the viewer to target.
func DenyRedirect(target string) Decision { return Decision{Redirect: target} }

// CanAccess applies the access rules in order:
//  1. the local admin flag always allows;
//  2. admin routes allow the "admin" profile role;
//  3. non-admin routes allow any viewer with a session;
//  4. denied admin routes redirect to the admin login;
//  5. everything else redirects home.
func CanAccess(id model.Identity, requireAdmin bool) Decision {
	switch {
	case id.IsLocalAdmin:
		return Allow()
	case requireAdmin && id.Role() == model.RoleAdmin:
		return Allow()
	case !requireAdmin && id.HasSession:
		return Allow()
	case requireAdmin:
		return DenyRedirect(AdminAuthPath)
	default:
		return DenyRedirect(HomePath)
	}
}

// Resolver resolves the identity of the viewer behind a request.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (model.Identity, error)
}

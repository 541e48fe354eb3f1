package access

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iliyamo/table-reservation/internal/model"
)

func role(s string) *string { return &s }

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name         string
		identity     model.Identity
		requireAdmin bool
		want         Decision
	}{
		{
			name:         "localAdminBypassesAdmin",
			identity:     model.Identity{IsLocalAdmin: true},
			requireAdmin: true,
			want:         Allow(),
		},
		{
			name:         "localAdminBypassesSession",
			identity:     model.Identity{IsLocalAdmin: true},
			requireAdmin: false,
			want:         Allow(),
		},
		{
			name:         "adminRoleAllowed",
			identity:     model.Identity{ProfileRole: role("admin"), HasSession: true},
			requireAdmin: true,
			want:         Allow(),
		},
		{
			name:         "userRoleDeniedAdmin",
			identity:     model.Identity{ProfileRole: role("user"), HasSession: true},
			requireAdmin: true,
			want:         DenyRedirect("/admin/auth"),
		},
		{
			name:         "noRoleDeniedAdmin",
			identity:     model.Identity{HasSession: true},
			requireAdmin: true,
			want:         DenyRedirect("/admin/auth"),
		},
		{
			name:         "sessionAllowedForSessionRoute",
			identity:     model.Identity{HasSession: true},
			requireAdmin: false,
			want:         Allow(),
		},
		{
			name:         "adminRoleWithoutSessionDeniedSessionRoute",
			identity:     model.Identity{ProfileRole: role("admin")},
			requireAdmin: false,
			want:         DenyRedirect("/"),
		},
		{
			name:         "anonymousDeniedHome",
			identity:     model.Identity{},
			requireAdmin: false,
			want:         DenyRedirect("/"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.identity, tt.requireAdmin); got != tt.want {
				t.Errorf("CanAccess() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckLifecycle(t *testing.T) {
	c := NewCheck(true)
	if c.State() != Loading {
		t.Fatalf("State() = %v, want loading", c.State())
	}
	if _, ok := c.Decision(); ok {
		t.Fatal("Decision() should not be available while loading")
	}

	d, first := c.Resolve(model.Identity{ProfileRole: role("user"), HasSession: true})
	if !first {
		t.Error("first Resolve() should report the transition")
	}
	if d != DenyRedirect(AdminAuthPath) {
		t.Errorf("Resolve() = %+v, want redirect to admin auth", d)
	}

	d, first = c.Resolve(model.Identity{IsLocalAdmin: true})
	if first {
		t.Error("second Resolve() must not transition again")
	}
	if d.Allowed {
		t.Error("decision must stay fixed until Reset")
	}

	c.Reset()
	if c.State() != Loading {
		t.Errorf("State() after Reset = %v, want loading", c.State())
	}
	d, first = c.Resolve(model.Identity{IsLocalAdmin: true})
	if !first || !d.Allowed {
		t.Errorf("Resolve() after Reset = %+v, %v; want allowed, true", d, first)
	}
}

type resolverFunc func(ctx context.Context, r *http.Request) (model.Identity, error)

func (f resolverFunc) Resolve(ctx context.Context, r *http.Request) (model.Identity, error) {
	return f(ctx, r)
}

func TestCheckEvaluate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/dashboard", nil)

	t.Run("resolved", func(t *testing.T) {
		c := NewCheck(false)
		d, err := c.Evaluate(context.Background(), resolverFunc(func(context.Context, *http.Request) (model.Identity, error) {
			return model.Identity{HasSession: true}, nil
		}), req)
		if err != nil {
			t.Fatalf("Evaluate() unexpected error: %v", err)
		}
		if !d.Allowed || c.State() != Resolved {
			t.Errorf("Evaluate() = %+v, state %v", d, c.State())
		}
	})

	t.Run("resolverError", func(t *testing.T) {
		c := NewCheck(false)
		_, err := c.Evaluate(context.Background(), resolverFunc(func(context.Context, *http.Request) (model.Identity, error) {
			return model.Identity{}, errors.New("auth backend down")
		}), req)
		if err == nil {
			t.Fatal("Evaluate() expected error")
		}
		if c.State() != Loading {
			t.Errorf("State() = %v, want loading after failed resolution", c.State())
		}
	})
}

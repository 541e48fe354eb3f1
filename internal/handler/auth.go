package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/access"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// UserFinder is the subset of repository.UserRepo used for login.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Secret       string
	AccessTTLMin int
	Users        UserFinder
	Resolver     access.Resolver
	Log          *zap.Logger
}

func NewAuthHandler(secret string, ttlMin int, users UserFinder, resolver access.Resolver, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Secret: secret, AccessTTLMin: ttlMin, Users: users, Resolver: resolver, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64  `json:"id"`
	Email string  `json:"email"`
	Role  *string `json:"role"`
}

type loginResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

type meResp struct {
	Identity model.Identity  `json:"identity"`
	Admin    access.Decision `json:"admin"`
	Session  access.Decision `json:"session"`
}

// Login verifies email and password and returns an access token.  Unknown
// emails, inactive accounts and wrong passwords all answer 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		h.Log.Error("login lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	role := ""
	if u.Role != nil {
		role = *u.Role
	}
	tok, err := utils.NewAccessToken(h.Secret, u.ID, role, h.AccessTTLMin)
	if err != nil {
		h.Log.Error("issue access token failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		User:   userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access: tokenPart{Token: tok.Token, Expires: tok.Exp},
	})
}

// Me reports the caller's identity and what the access rules decide for
// admin and session routes.  Anonymous callers get 200 as well.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := h.Resolver.Resolve(c.Request().Context(), c.Request())
	if err != nil {
		h.Log.Error("identity resolution failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "identity resolution failed"})
	}
	return c.JSON(http.StatusOK, meResp{
		Identity: id,
		Admin:    access.CanAccess(id, true),
		Session:  access.CanAccess(id, false),
	})
}

package datasource

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/access"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// UserLookup is the subset of repository.UserRepo used for identities.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// IdentityResolver builds a viewer's Identity from the bearer token, the
// user's profile role and the local admin flag.
type IdentityResolver struct {
	secret     string
	users      UserLookup
	localAdmin bool
	log        *zap.Logger
}

func NewIdentityResolver(secret string, users UserLookup, localAdmin bool, log *zap.Logger) *IdentityResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityResolver{secret: secret, users: users, localAdmin: localAdmin, log: log}
}

var _ access.Resolver = (*IdentityResolver)(nil)

// Resolve never fails for bad or missing credentials: those simply yield
// an identity without a session.  Only a failing user lookup is an error.
func (r *IdentityResolver) Resolve(ctx context.Context, req *http.Request) (model.Identity, error) {
	id := model.Identity{IsLocalAdmin: r.localAdmin}

	raw, ok := utils.BearerToken(req.Header.Get("Authorization"))
	if !ok {
		return id, nil
	}
	claims, err := utils.ParseAccessToken(r.secret, raw)
	if err != nil {
		r.log.Debug("ignoring bearer token", zap.Error(err))
		return id, nil
	}
	u, err := r.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return id, nil
	}
	if err != nil {
		return model.Identity{}, err
	}
	if !u.IsActive {
		return id, nil
	}
	id.HasSession = true
	id.UserID = u.ID
	id.Email = u.Email
	id.ProfileRole = u.Role
	return id, nil
}

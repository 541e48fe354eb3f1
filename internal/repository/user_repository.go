package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/table-reservation/internal/model"
)

// UserRepo reads admin-panel users together with their profile role.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// A user without a profile row has no role at all, which differs from
// having a non-admin role only in what /v1/auth/me reports.
const userSelect = `SELECT u.id, u.email, u.password_hash, p.role, u.is_active, u.created_at
FROM users u
LEFT JOIN profiles p ON p.user_id = u.id`

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, userSelect+" WHERE u.email = ? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, userSelect+" WHERE u.id = ? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, q string, arg interface{}) (model.User, error) {
	var (
		u    model.User
		role sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("query user: %w", err)
	}
	if role.Valid {
		v := role.String
		u.Role = &v
	}
	return u, nil
}

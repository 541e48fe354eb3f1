package model

import "time"

// RoleAdmin is the profile role that unlocks admin-scoped routes.
const RoleAdmin = "admin"

// User represents an application user record as stored in the `users`
// table joined with its `profiles` row.  Role is nullable in the
// database: a user without a profile row has no role at all.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – profiles.role, nil when no profile exists.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         *string   // profiles.role (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
}

// Identity is what the access gate needs to know about a viewer.  It is
// resolved per request and never stored.
type Identity struct {
	IsLocalAdmin bool    `json:"is_local_admin"`
	ProfileRole  *string `json:"profile_role"`
	HasSession   bool    `json:"has_session"`
	UserID       uint64  `json:"user_id,omitempty"` // set with a session
	Email        string  `json:"email,omitempty"`   // set with a session
}

// Role returns the profile role or "" when none is set.
func (i Identity) Role() string {
	if i.ProfileRole == nil {
		return ""
	}
	return *i.ProfileRole
}

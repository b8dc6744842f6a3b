// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
)

// Valid reports whether the role is one of the known values. Roles come
// from the database and from session payloads; anything else is rejected.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAuthor
}

// User represents a CMS user. Users are seeded out-of-band; there is no
// self-service signup.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"username"` // The login name; exposed as "username" in the API
	PasswordHash string    `json:"-"`        // Never serialize the hash
	DisplayName  string    `json:"name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA enrollment
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

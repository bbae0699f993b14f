// Package auth is responsible for authentication and authorization: token
// issuance and verification, password hashing, login, token-gated
// registration, and the request middleware that resolves a caller identity.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Profile holds the public-facing attributes of a member.
type Profile struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Bio       string   `json:"bio,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	GitHub    string   `json:"github,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	Website   string   `json:"website,omitempty"`
	Avatar    string   `json:"avatar,omitempty"`
}

// User represents a registered member or administrator.
// The password hash never leaves this package in a serialized form.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Profile      Profile    `json:"profile"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Invitation is the registration-side view of an accepted application:
// the token's owning application, the email it was issued for, and whether
// it has already been consumed.
type Invitation struct {
	ApplicationID uuid.UUID
	Email         string
	Consumed      bool
}

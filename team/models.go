// Package team manages the public team-member roster.
package team

import (
	"time"

	"github.com/google/uuid"
)

// Social holds a member's public profile links.
type Social struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Email    string `json:"email,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

// Member is one entry on the team page. Inactive members are hidden from
// anonymous visitors but stay visible to administrators.
type Member struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Bio      string    `json:"bio,omitempty"`
	Image    string    `json:"image,omitempty"`
	Skills   []string  `json:"skills"`
	Social   Social    `json:"social"`
	IsActive bool      `json:"isActive"`
	JoinDate time.Time `json:"joinDate"`
}

// CreateRequest is the admin payload for adding a member.
type CreateRequest struct {
	Name   string   `json:"name" validate:"required"`
	Role   string   `json:"role" validate:"required"`
	Bio    string   `json:"bio"`
	Image  string   `json:"image"`
	Skills []string `json:"skills"`
	Social Social   `json:"social"`
}

// UpdateRequest carries the updatable member fields. Absent fields are left
// unchanged.
type UpdateRequest struct {
	Name     *string   `json:"name"`
	Role     *string   `json:"role"`
	Bio      *string   `json:"bio"`
	Image    *string   `json:"image"`
	Skills   *[]string `json:"skills"`
	Social   *Social   `json:"social"`
	IsActive *bool     `json:"isActive"`
}

// Package projects manages the project showcase: public listings plus
// member-managed project records.
package projects

import (
	"time"

	"github.com/google/uuid"
)

// Project status values.
const (
	StatusActive     = "Active"
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"
	StatusOnHold     = "On Hold"
)

// TeamMemberRef names a contributor on a project.
type TeamMemberRef struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Project is one showcase entry. Non-public projects are hidden from
// anonymous visitors.
type Project struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	FullDescription string          `json:"fullDescription,omitempty"`
	Image           string          `json:"image,omitempty"`
	Technologies    []string        `json:"technologies"`
	Status          string          `json:"status"`
	Category        string          `json:"category"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	GithubURL       string          `json:"githubUrl,omitempty"`
	DemoURL         string          `json:"demoUrl,omitempty"`
	Features        []string        `json:"features"`
	TeamMembers     []TeamMemberRef `json:"teamMembers"`
	CreatedBy       uuid.UUID       `json:"createdBy"`
	Priority        string          `json:"priority"`
	IsPublic        bool            `json:"isPublic"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CreateRequest is the payload for adding a project.
type CreateRequest struct {
	Title           string          `json:"title" validate:"required"`
	Description     string          `json:"description" validate:"required"`
	FullDescription string          `json:"fullDescription"`
	Image           string          `json:"image"`
	Technologies    []string        `json:"technologies"`
	Status          string          `json:"status" validate:"omitempty,oneof=Active Completed 'In Progress' 'On Hold'"`
	Category        string          `json:"category" validate:"required"`
	GithubURL       string          `json:"githubUrl" validate:"omitempty,url"`
	DemoURL         string          `json:"demoUrl" validate:"omitempty,url"`
	Features        []string        `json:"features"`
	TeamMembers     []TeamMemberRef `json:"teamMembers"`
	Priority        string          `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	IsPublic        *bool           `json:"isPublic"`
}

// UpdateRequest carries the updatable project fields. Absent fields are
// left unchanged.
type UpdateRequest struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	FullDescription *string          `json:"fullDescription"`
	Image           *string          `json:"image"`
	Technologies    *[]string        `json:"technologies"`
	Status          *string          `json:"status"`
	Category        *string          `json:"category"`
	EndDate         *time.Time       `json:"endDate"`
	GithubURL       *string          `json:"githubUrl"`
	DemoURL         *string          `json:"demoUrl"`
	Features        *[]string        `json:"features"`
	TeamMembers     *[]TeamMemberRef `json:"teamMembers"`
	Priority        *string          `json:"priority"`
	IsPublic        *bool            `json:"isPublic"`
}

// ListFilter selects projects.
type ListFilter struct {
	Category   string
	Status     string
	PublicOnly bool
}

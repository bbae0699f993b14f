// Package contact handles the contact form: public submission plus an
// administrative inbox with assignment and resolution tracking. Resolved
// submissions are purged after a retention window by the background sweeper.
package contact

import (
	"time"

	"github.com/google/uuid"
)

// Submission status values.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Submission is one contact-form message.
type Submission struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Subject      string     `json:"subject"`
	Message      string     `json:"message"`
	Phone        string     `json:"phone,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	ResponseDate *time.Time `json:"responseDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SubmitRequest is the public contact-form payload.
type SubmitRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
	Phone   string `json:"phone"`
}

// UpdateRequest carries the administrative fields of a submission. Absent
// fields are left unchanged.
type UpdateRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=new in_progress resolved closed"`
	Priority   *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo *string `json:"assignedTo"`
	Notes      *string `json:"notes"`
}

// ListFilter selects submissions.
type ListFilter struct {
	Status     string
	Priority   string
	AssignedTo string
	Page       int
	Limit      int
}

// Pagination describes one page of a list response.
type Pagination struct {
	Current          int `json:"current"`
	Total            int `json:"total"`
	Count            int `json:"count"`
	TotalSubmissions int `json:"totalSubmissions"`
}

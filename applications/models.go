// Package applications implements the membership application workflow:
// public submission, administrative review with a status lifecycle, and
// registration token issuance at acceptance.
package applications

import (
	"time"

	"github.com/google/uuid"
)

// Status is the review state of an application.
type Status string

const (
	StatusPending            Status = "pending"
	StatusUnderReview        Status = "under-review"
	StatusInterviewScheduled Status = "interview-scheduled"
	StatusAccepted           Status = "accepted"
	StatusRejected           Status = "rejected"
	StatusDenied             Status = "denied"
)

// Statuses lists every valid status value.
var Statuses = []Status{
	StatusPending,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusAccepted,
	StatusRejected,
	StatusDenied,
}

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// allowedTransitions maps a current status to the set of statuses a reviewer
// may move it to. Terminal statuses have no outgoing transitions; the review
// waypoints are optional, so pending may jump straight to a terminal state.
var allowedTransitions = map[Status][]Status{
	StatusPending: {
		StatusUnderReview,
		StatusInterviewScheduled,
		StatusAccepted,
		StatusRejected,
		StatusDenied,
	},
	StatusUnderReview: {
		StatusInterviewScheduled,
		StatusAccepted,
		StatusRejected,
		StatusDenied,
	},
	StatusInterviewScheduled: {
		StatusAccepted,
		StatusRejected,
		StatusDenied,
	},
	StatusAccepted: {},
	StatusRejected: {},
	StatusDenied:   {},
}

// CanTransition reports whether moving from one status to another is allowed
// by the review lifecycle. Setting the same status again is a no-op and is
// always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if to == next {
			return true
		}
	}
	return false
}

// Preferred role values.
const (
	RoleArchitect = "architect"
	RoleNeuron    = "neuron"
	RoleParameter = "parameter"
)

// Domain values.
const (
	DomainComputerVision        = "computer-vision"
	DomainNLP                   = "natural-language-processing"
	DomainDataScience           = "data-science"
	DomainGenAI                 = "gen-ai"
	DomainReinforcementLearning = "reinforcement-learning"
)

// Application is a prospective member's submission moving through review.
// RegistrationToken is set exactly when the application has been accepted
// and is consumed (RegisteredAt stamped) when the applicant registers.
type Application struct {
	ID                    uuid.UUID  `json:"id"`
	FullName              string     `json:"fullName"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone"`
	BranchYear            string     `json:"branchYear"`
	PreferredRole         string     `json:"preferredRole"`
	Domain                string     `json:"domain"`
	ProgrammingExperience string     `json:"programmingExperience,omitempty"`
	Motivation            string     `json:"motivation,omitempty"`
	PortfolioLink         string     `json:"portfolioLink,omitempty"`
	Status                Status     `json:"status"`
	SubmittedAt           time.Time  `json:"submittedAt"`
	Notes                 string     `json:"notes,omitempty"`
	ReviewedBy            string     `json:"reviewedBy,omitempty"`
	ReviewedAt            *time.Time `json:"reviewedAt,omitempty"`
	RegistrationToken     string     `json:"registrationToken,omitempty"`
	RegisteredAt          *time.Time `json:"registeredAt,omitempty"`
}

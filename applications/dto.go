package applications

// SubmitRequest is the public application submission payload.
type SubmitRequest struct {
	FullName              string `json:"fullName" validate:"required"`
	Email                 string `json:"email" validate:"required,email"`
	Phone                 string `json:"phone" validate:"required"`
	BranchYear            string `json:"branchYear" validate:"required"`
	PreferredRole         string `json:"preferredRole" validate:"required,oneof=architect neuron parameter"`
	Domain                string `json:"domain" validate:"required,oneof=computer-vision natural-language-processing data-science gen-ai reinforcement-learning"`
	ProgrammingExperience string `json:"programmingExperience"`
	Motivation            string `json:"motivation"`
	PortfolioLink         string `json:"portfolioLink" validate:"omitempty,url"`
}

// UpdateRequest carries the reviewable fields of an application. Absent
// fields are left unchanged. Force skips the transition check so an
// administrator can correct a wrong decision.
type UpdateRequest struct {
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
	ReviewedBy *string `json:"reviewedBy"`
	Force      bool    `json:"force"`
}

// ListFilter selects and pages through applications.
type ListFilter struct {
	Status    string
	Role      string
	Domain    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination describes one page of a list response.
type Pagination struct {
	Current           int `json:"current"`
	Total             int `json:"total"`
	Count             int `json:"count"`
	TotalApplications int `json:"totalApplications"`
}

// Overview holds the per-status counts.
type Overview struct {
	Total              int `json:"total"`
	Pending            int `json:"pending"`
	UnderReview        int `json:"underReview"`
	InterviewScheduled int `json:"interviewScheduled"`
	Accepted           int `json:"accepted"`
	Rejected           int `json:"rejected"`
	Denied             int `json:"denied"`
}

// CountByKey is one bucket of a grouped count.
type CountByKey struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

// Stats is the full statistics projection.
type Stats struct {
	Overview           Overview     `json:"overview"`
	RoleDistribution   []CountByKey `json:"roleDistribution"`
	DomainDistribution []CountByKey `json:"domainDistribution"`
}

// AcceptResult pairs the accepted application with the token to hand to the
// applicant. Issued is false when the application had already been accepted
// and the previously generated token is being returned again.
type AcceptResult struct {
	Application       *Application `json:"application"`
	RegistrationToken string       `json:"registrationToken"`
	Issued            bool         `json:"-"`
}

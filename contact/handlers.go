package contact

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/auth"
)

// Handlers exposes the contact form over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func submissionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("invalid submission id", err)
	}
	return id, nil
}

// HandleSubmit godoc
// @Summary Submit the contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param contactBody body contact.SubmitRequest true "Message details"
// @Success 201 {object} auth.SuccessResponse "Message received"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request"
// @Router /api/contact [post]
func (h *Handlers) HandleSubmit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		sub, err := h.service.Submit(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusCreated, map[string]interface{}{
			"id":        sub.ID,
			"subject":   sub.Subject,
			"createdAt": sub.CreatedAt,
		}, "Thank you for your message! We will get back to you soon.")
	}
}

// HandleList godoc
// @Summary List contact submissions
// @Tags Contact
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param assignedTo query string false "Filter by assignee"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse
// @Failure 403 {object} apperror.ErrorResponse "Forbidden"
// @Router /api/contact/submissions [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		filter := ListFilter{
			Status:     q.Get("status"),
			Priority:   q.Get("priority"),
			AssignedTo: q.Get("assignedTo"),
			Page:       page,
			Limit:      limit,
		}

		subs, pagination, err := h.service.List(r.Context(), filter)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "success",
			"data":       subs,
			"pagination": pagination,
			"filters": map[string]string{
				"status":     filter.Status,
				"priority":   filter.Priority,
				"assignedTo": filter.AssignedTo,
			},
		})
	}
}

// HandleGet godoc
// @Summary Get one contact submission
// @Tags Contact
// @Produce json
// @Param id path string true "Submission ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/contact/submissions/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := submissionID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		sub, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, sub, "")
	}
}

// HandleUpdate godoc
// @Summary Update a contact submission
// @Description Sets status, priority, assignee, or notes. Resolving stamps the response date.
// @Tags Contact
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param updateBody body contact.UpdateRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Submission updated"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/contact/submissions/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := submissionID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		sub, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, sub, "Submission updated successfully")
	}
}

// HandleDelete godoc
// @Summary Delete a contact submission
// @Tags Contact
// @Produce json
// @Param id path string true "Submission ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Submission deleted"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/contact/submissions/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := submissionID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, nil, "Submission deleted successfully")
	}
}

// HandleInfo godoc
// @Summary Club contact information
// @Tags Contact
// @Produce json
// @Success 200 {object} auth.SuccessResponse
// @Router /api/contact/info [get]
func (h *Handlers) HandleInfo() http.HandlerFunc {
	info := map[string]interface{}{
		"email": "contact@kali-team.com",
		"social": map[string]string{
			"linkedin": "https://linkedin.com/company/kali-team",
			"github":   "https://github.com/kali-team",
			"twitter":  "https://twitter.com/kali_team",
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth.WriteSuccess(w, http.StatusOK, info, "")
	}
}

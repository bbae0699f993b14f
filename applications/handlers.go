package applications

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/auth"
)

// Handlers exposes the application workflow over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func applicationID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("invalid application id", err)
	}
	return id, nil
}

// HandleSubmit godoc
// @Summary Submit a membership application
// @Description Creates a new application in status pending. One application per email.
// @Tags Applications
// @Accept json
// @Produce json
// @Param submitBody body applications.SubmitRequest true "Application details"
// @Success 201 {object} auth.SuccessResponse "Application submitted"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - missing or malformed fields"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - email already applied"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /api/applications [post]
func (h *Handlers) HandleSubmit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		app, err := h.service.Submit(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteSuccess(w, http.StatusCreated, map[string]interface{}{
			"id":            app.ID,
			"fullName":      app.FullName,
			"email":         app.Email,
			"preferredRole": app.PreferredRole,
			"domain":        app.Domain,
			"submittedAt":   app.SubmittedAt,
		}, "Application submitted successfully! We will contact you soon.")
	}
}

// HandleList godoc
// @Summary List applications
// @Description Returns applications filtered by status, role, and domain, paginated.
// @Tags Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Param role query string false "Filter by preferred role"
// @Param domain query string false "Filter by domain"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param sortBy query string false "Sort field" default(submittedAt)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Applications page"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden"
// @Router /api/applications [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		filter := ListFilter{
			Status:    q.Get("status"),
			Role:      q.Get("role"),
			Domain:    q.Get("domain"),
			Page:      page,
			Limit:     limit,
			SortBy:    q.Get("sortBy"),
			SortOrder: q.Get("sortOrder"),
		}

		apps, pagination, err := h.service.List(r.Context(), filter)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "success",
			"data":       apps,
			"pagination": pagination,
			"filters": map[string]string{
				"status": filter.Status,
				"role":   filter.Role,
				"domain": filter.Domain,
			},
		})
	}
}

// HandleGet godoc
// @Summary Get one application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/applications/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		app, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, app, "")
	}
}

// HandleUpdate godoc
// @Summary Update an application's review fields
// @Description Sets status, notes, or reviewer. Status changes must follow the review lifecycle unless force is set.
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param updateBody body applications.UpdateRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Application updated"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - illegal transition"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/applications/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
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

		// Default the reviewer to the authenticated admin when not given.
		if req.ReviewedBy == nil {
			if user, ok := auth.UserFromContext(r.Context()); ok {
				reviewer := user.Email
				req.ReviewedBy = &reviewer
			}
		}

		app, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, app, "Application updated successfully")
	}
}

// HandleAccept godoc
// @Summary Accept an application
// @Description Moves the application to accepted and returns a registration token for out-of-band delivery. Accepting again returns the original token.
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Application accepted"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/applications/{id}/accept [patch]
func (h *Handlers) HandleAccept() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		result, err := h.service.Accept(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":            "success",
			"data":              result.Application,
			"application":       result.Application,
			"registrationToken": result.RegistrationToken,
			"message":           "Application from " + result.Application.FullName + " has been accepted",
		})
	}
}

// HandleDeny godoc
// @Summary Deny an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Application denied"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/applications/{id}/deny [patch]
func (h *Handlers) HandleDeny() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		app, err := h.service.Deny(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, app,
			"Application from "+app.FullName+" has been denied")
	}
}

// HandleDelete godoc
// @Summary Delete an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Application deleted"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/applications/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := applicationID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		app, err := h.service.Delete(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, app, "Application deleted successfully")
	}
}

// HandleStats godoc
// @Summary Application statistics
// @Description Per-status counts plus role and domain distributions.
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Statistics"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /api/applications/stats/overview [get]
func (h *Handlers) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.service.Stats(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, stats, "")
	}
}

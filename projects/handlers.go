package projects

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/auth"
)

// Handlers exposes the project showcase over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleList godoc
// @Summary List projects
// @Description Anonymous callers see public projects only. Supports category and status filters.
// @Tags Projects
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Success 200 {object} auth.SuccessResponse
// @Router /api/projects [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			Category: q.Get("category"),
			Status:   q.Get("status"),
		}
		if user, ok := auth.UserFromContext(r.Context()); !ok || !user.IsAdmin() {
			filter.PublicOnly = true
		}

		projects, err := h.service.List(r.Context(), filter)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data":   projects,
			"count":  len(projects),
		})
	}
}

// HandleGet godoc
// @Summary Get one project by ID or slug
// @Tags Projects
// @Produce json
// @Param idOrSlug path string true "Project UUID or slug"
// @Success 200 {object} auth.SuccessResponse
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/projects/{idOrSlug} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.service.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		// Private projects stay admin-only.
		if !project.IsPublic {
			if user, ok := auth.UserFromContext(r.Context()); !ok || !user.IsAdmin() {
				auth.WriteError(w, r, apperror.NewNotFoundError("project not found", nil))
				return
			}
		}
		auth.WriteSuccess(w, http.StatusOK, project, "")
	}
}

// HandleCreate godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectBody body projects.CreateRequest true "Project details"
// @Security BearerAuth
// @Success 201 {object} auth.SuccessResponse "Project created"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request"
// @Router /api/projects [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		project, err := h.service.Create(r.Context(), user.ID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusCreated, project, "Project created successfully")
	}
}

// HandleUpdate godoc
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param projectBody body projects.UpdateRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Project updated"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/projects/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid project id", err))
			return
		}

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		project, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, project, "Project updated successfully")
	}
}

// HandleDelete godoc
// @Summary Delete a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Project deleted"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/projects/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid project id", err))
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, nil, "Project deleted successfully")
	}
}

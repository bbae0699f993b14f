package team

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/auth"
)

// Handlers exposes the team roster over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func memberID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("invalid team member id", err)
	}
	return id, nil
}

// HandleList godoc
// @Summary List team members
// @Description Anonymous callers see active members only; administrators see everyone unless ?active=true.
// @Tags Team
// @Produce json
// @Param active query bool false "Return only active members"
// @Success 200 {object} auth.SuccessResponse
// @Router /api/team [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("active") == "true"
		if user, ok := auth.UserFromContext(r.Context()); !ok || !user.IsAdmin() {
			activeOnly = true
		}

		members, err := h.service.List(r.Context(), activeOnly)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data":   members,
			"count":  len(members),
		})
	}
}

// HandleGet godoc
// @Summary Get one team member
// @Tags Team
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} auth.SuccessResponse
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/team/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := memberID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		member, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, member, "")
	}
}

// HandleCreate godoc
// @Summary Add a team member
// @Tags Team
// @Accept json
// @Produce json
// @Param memberBody body team.CreateRequest true "Member details"
// @Security BearerAuth
// @Success 201 {object} auth.SuccessResponse "Member added"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request"
// @Router /api/team [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		member, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusCreated, member, "Team member added successfully")
	}
}

// HandleUpdate godoc
// @Summary Update a team member
// @Tags Team
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param memberBody body team.UpdateRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Member updated"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/team/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := memberID(r)
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

		member, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, member, "Team member updated successfully")
	}
}

// HandleDelete godoc
// @Summary Remove a team member
// @Tags Team
// @Produce json
// @Param id path string true "Member ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Member removed"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/team/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := memberID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, nil, "Team member removed successfully")
	}
}

package blogs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/auth"
)

// Handlers exposes the blog over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleList godoc
// @Summary List blog posts
// @Description Published posts for everyone; drafts and archived posts only for administrators via ?status=.
// @Tags Blogs
// @Produce json
// @Param category query string false "Filter by category"
// @Param tag query string false "Filter by tag"
// @Param featured query bool false "Featured posts only"
// @Param status query string false "Post status" default(published)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} auth.SuccessResponse
// @Router /api/blogs [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		filter := ListFilter{
			Category: q.Get("category"),
			Tag:      q.Get("tag"),
			Featured: q.Get("featured") == "true",
			Status:   q.Get("status"),
			Page:     page,
			Limit:    limit,
		}
		// Non-admins only ever see published posts.
		if user, ok := auth.UserFromContext(r.Context()); !ok || !user.IsAdmin() {
			filter.Status = StatusPublished
		}

		posts, pagination, err := h.service.List(r.Context(), filter)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "success",
			"data":       posts,
			"pagination": pagination,
		})
	}
}

// HandleGetBySlug godoc
// @Summary Get a published post by slug
// @Description Returns the post and counts the view.
// @Tags Blogs
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} auth.SuccessResponse
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/blogs/{slug} [get]
func (h *Handlers) HandleGetBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.service.GetPublished(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, post, "")
	}
}

// HandleLike godoc
// @Summary Like a published post
// @Tags Blogs
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} auth.SuccessResponse "Updated like count"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/blogs/{slug}/like [post]
func (h *Handlers) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		likes, err := h.service.Like(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, map[string]int{"likes": likes}, "")
	}
}

// HandleCreate godoc
// @Summary Write a blog post
// @Tags Blogs
// @Accept json
// @Produce json
// @Param postBody body blogs.CreateRequest true "Post details"
// @Security BearerAuth
// @Success 201 {object} auth.SuccessResponse "Post created"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request"
// @Router /api/blogs [post]
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

		post, err := h.service.Create(r.Context(), user, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusCreated, post, "Blog post created successfully")
	}
}

// HandleUpdate godoc
// @Summary Update a blog post
// @Tags Blogs
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param postBody body blogs.UpdateRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Post updated"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/blogs/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid blog post id", err))
			return
		}

		var req UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		post, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, post, "Blog post updated successfully")
	}
}

// HandleDelete godoc
// @Summary Delete a blog post
// @Tags Blogs
// @Produce json
// @Param id path string true "Post ID"
// @Security BearerAuth
// @Success 200 {object} auth.SuccessResponse "Post deleted"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/blogs/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid blog post id", err))
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, nil, "Blog post deleted successfully")
	}
}

// HandleMeta godoc
// @Summary Blog metadata
// @Description Distinct categories, tags, and authors of published posts.
// @Tags Blogs
// @Produce json
// @Param kind path string true "categories, tags, or authors"
// @Success 200 {object} auth.SuccessResponse
// @Router /api/blogs/meta/{kind} [get]
func (h *Handlers) HandleMeta() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			values []string
			err    error
		)
		switch chi.URLParam(r, "kind") {
		case "categories":
			values, err = h.service.Categories(r.Context())
		case "tags":
			values, err = h.service.Tags(r.Context())
		case "authors":
			values, err = h.service.Authors(r.Context())
		default:
			auth.WriteError(w, r, apperror.NewNotFoundError("unknown metadata kind", nil))
			return
		}
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteSuccess(w, http.StatusOK, values, "")
	}
}

package projects

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/db"
	"github.com/user/kaliweb-go/logging"
)

// Service implements project showcase operations over PostgreSQL.
type Service struct {
	db       *pgxpool.Pool
	log      logging.Logger
	validate *validator.Validate
}

// NewService creates the projects service.
func NewService(pool *pgxpool.Pool, log logging.Logger) *Service {
	return &Service{db: pool, log: log, validate: validator.New()}
}

const projectColumns = `id, title, slug, description, full_description, image,
	technologies, status, category, start_date, end_date, github_url, demo_url,
	features, team_members, created_by, priority, is_public, created_at`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.FullDescription, &p.Image,
		&p.Technologies, &p.Status, &p.Category, &p.StartDate, &p.EndDate,
		&p.GithubURL, &p.DemoURL,
		&p.Features, &p.TeamMembers, &p.CreatedBy, &p.Priority, &p.IsPublic,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.TeamMembers == nil {
		p.TeamMembers = []TeamMemberRef{}
	}
	return &p, nil
}

// List returns projects matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Project, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.PublicOnly {
		where = append(where, "is_public")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch projects", err)
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to fetch projects", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch projects", err)
	}
	return projects, nil
}

// Get resolves a project by UUID or by slug.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*Project, error) {
	var row pgx.Row
	if id, err := uuid.Parse(idOrSlug); err == nil {
		row = s.db.QueryRow(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	} else {
		row = s.db.QueryRow(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE slug = $1`, idOrSlug)
	}

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("project not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch project", err)
	}
	return p, nil
}

// Create adds a project owned by the given user.
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, req CreateRequest) (*Project, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("title, description, and category are required", err)
	}

	slug, err := db.UniqueSlug(ctx, s.db, "projects", req.Title)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create project", err)
	}

	p := &Project{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(req.Title),
		Slug:            slug,
		Description:     req.Description,
		FullDescription: req.FullDescription,
		Image:           req.Image,
		Technologies:    req.Technologies,
		Status:          req.Status,
		Category:        req.Category,
		StartDate:       time.Now(),
		GithubURL:       req.GithubURL,
		DemoURL:         req.DemoURL,
		Features:        req.Features,
		TeamMembers:     req.TeamMembers,
		CreatedBy:       createdBy,
		Priority:        req.Priority,
		IsPublic:        true,
	}
	if p.Status == "" {
		p.Status = StatusInProgress
	}
	if p.Priority == "" {
		p.Priority = "Medium"
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.TeamMembers == nil {
		p.TeamMembers = []TeamMemberRef{}
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO projects (
			id, title, slug, description, full_description, image,
			technologies, status, category, start_date, github_url, demo_url,
			features, team_members, created_by, priority, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.Title, p.Slug, p.Description, p.FullDescription, p.Image,
		p.Technologies, p.Status, p.Category, p.StartDate, p.GithubURL, p.DemoURL,
		p.Features, p.TeamMembers, p.CreatedBy, p.Priority, p.IsPublic,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create project", err)
	}

	s.log.Info(ctx, "project created", "project_id", p.ID, "slug", p.Slug)
	return s.Get(ctx, p.ID.String())
}

// Update applies a partial update. A title change regenerates the slug.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Project, error) {
	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if req.Title != nil {
		slug, err := db.UniqueSlug(ctx, s.db, "projects", *req.Title)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to update project", err)
		}
		addSet("title", *req.Title)
		addSet("slug", slug)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.FullDescription != nil {
		addSet("full_description", *req.FullDescription)
	}
	if req.Image != nil {
		addSet("image", *req.Image)
	}
	if req.Technologies != nil {
		addSet("technologies", *req.Technologies)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if req.Category != nil {
		addSet("category", *req.Category)
	}
	if req.EndDate != nil {
		addSet("end_date", *req.EndDate)
	}
	if req.GithubURL != nil {
		addSet("github_url", *req.GithubURL)
	}
	if req.DemoURL != nil {
		addSet("demo_url", *req.DemoURL)
	}
	if req.Features != nil {
		addSet("features", *req.Features)
	}
	if req.TeamMembers != nil {
		addSet("team_members", *req.TeamMembers)
	}
	if req.Priority != nil {
		addSet("priority", *req.Priority)
	}
	if req.IsPublic != nil {
		addSet("is_public", *req.IsPublic)
	}
	if len(sets) == 0 {
		return s.Get(ctx, id.String())
	}
	addSet("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), projectColumns)

	p, err := scanProject(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("project not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update project", err)
	}
	return p, nil
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("project not found", nil)
	}
	s.log.Info(ctx, "project deleted", "project_id", id)
	return nil
}

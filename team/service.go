package team

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
	"github.com/user/kaliweb-go/logging"
)

// Service implements team-roster operations over PostgreSQL.
type Service struct {
	db       *pgxpool.Pool
	log      logging.Logger
	validate *validator.Validate
}

// NewService creates the team service.
func NewService(db *pgxpool.Pool, log logging.Logger) *Service {
	return &Service{db: db, log: log, validate: validator.New()}
}

const memberColumns = `id, name, role, bio, image, skills,
	linkedin, github, email, twitter, is_active, join_date`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.ID, &m.Name, &m.Role, &m.Bio, &m.Image, &m.Skills,
		&m.Social.LinkedIn, &m.Social.GitHub, &m.Social.Email, &m.Social.Twitter,
		&m.IsActive, &m.JoinDate,
	)
	if err != nil {
		return nil, err
	}
	if m.Skills == nil {
		m.Skills = []string{}
	}
	return &m, nil
}

// List returns team members ordered by join date. When activeOnly is set
// only active members are returned; anonymous callers always get the
// filtered view.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY join_date ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch team members", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to fetch team members", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch team members", err)
	}
	return members, nil
}

// Get returns one member by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM team_members WHERE id = $1`, id)
	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("team member not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch team member", err)
	}
	return m, nil
}

// Create adds a member to the roster.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Member, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("name and role are required", err)
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}

	m := &Member{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Role:     strings.TrimSpace(req.Role),
		Bio:      req.Bio,
		Image:    req.Image,
		Skills:   req.Skills,
		Social:   req.Social,
		IsActive: true,
		JoinDate: time.Now(),
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO team_members (
			id, name, role, bio, image, skills,
			linkedin, github, email, twitter, is_active, join_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.Name, m.Role, m.Bio, m.Image, m.Skills,
		m.Social.LinkedIn, m.Social.GitHub, m.Social.Email, m.Social.Twitter,
		m.IsActive, m.JoinDate,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to add team member", err)
	}

	s.log.Info(ctx, "team member added", "member_id", m.ID, "name", m.Name)
	return m, nil
}

// Update applies a partial update to a member.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Member, error) {
	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Role != nil {
		addSet("role", *req.Role)
	}
	if req.Bio != nil {
		addSet("bio", *req.Bio)
	}
	if req.Image != nil {
		addSet("image", *req.Image)
	}
	if req.Skills != nil {
		addSet("skills", *req.Skills)
	}
	if req.Social != nil {
		addSet("linkedin", req.Social.LinkedIn)
		addSet("github", req.Social.GitHub)
		addSet("email", req.Social.Email)
		addSet("twitter", req.Social.Twitter)
	}
	if req.IsActive != nil {
		addSet("is_active", *req.IsActive)
	}
	if len(sets) == 0 {
		return s.Get(ctx, id)
	}
	addSet("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE team_members SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), memberColumns)

	m, err := scanMember(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("team member not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update team member", err)
	}
	return m, nil
}

// Delete removes a member from the roster.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to remove team member", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("team member not found", nil)
	}
	s.log.Info(ctx, "team member removed", "member_id", id)
	return nil
}
